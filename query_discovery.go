package pith

import (
	"fmt"
	"strings"

	"github.com/pcallahan/pith/internal/store"
)

// --- Common Types ---

// Pagination controls offset+limit paging on list/search results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// SortField specifies how to order results.
type SortField string

const (
	SortByName     SortField = "name"
	SortByFQN      SortField = "fqn"
	SortByFile     SortField = "file"
	SortByRefCount SortField = "ref_count"
)

// SortOrder specifies ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort controls result ordering.
type Sort struct {
	Field SortField
	Order SortOrder
}

// DefResult extends Def with computed fields useful for discovery.
type DefResult struct {
	store.Def
	FilePath string // resolved file path
	RefCount int    // references sharing this definition's FQN
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// DefFilter specifies which definitions to include.
type DefFilter struct {
	FileID       *int64  // restrict to a single file
	ModulePrefix *string // restrict to a module and its submodules
	FQNPrefix    *string // restrict to definitions under a scope FQN
}

// --- Internal Helpers ---

// defSortColumn returns the SQL ORDER BY expression for def queries.
// Falls back to "d.fqn" for unknown fields.
func defSortColumn(field SortField) string {
	switch field {
	case SortByName:
		return "d.name"
	case SortByFQN:
		return "d.fqn"
	case SortByFile:
		return "f.path"
	case SortByRefCount:
		return "ref_count"
	default:
		return "d.fqn"
	}
}

// sortDirection returns "ASC" or "DESC".
func sortDirection(order SortOrder) string {
	if order == Desc {
		return "DESC"
	}
	return "ASC"
}

// defFilterClauses translates a DefFilter into WHERE fragments.
func defFilterClauses(filter DefFilter) (where []string, args []any) {
	if filter.FileID != nil {
		where = append(where, "d.file_id = ?")
		args = append(args, *filter.FileID)
	}
	if filter.ModulePrefix != nil && *filter.ModulePrefix != "" {
		where = append(where, "(f.module = ? OR f.module LIKE ? ESCAPE '\\')")
		args = append(args, *filter.ModulePrefix, escapeLike(*filter.ModulePrefix)+".%")
	}
	if filter.FQNPrefix != nil && *filter.FQNPrefix != "" {
		where = append(where, "(d.fqn = ? OR d.fqn LIKE ? ESCAPE '\\')")
		args = append(args, *filter.FQNPrefix, escapeLike(*filter.FQNPrefix)+".%")
	}
	return where, args
}

const defResultCols = `d.id, d.file_id, d.fqn, d.name,
	d.start_byte, d.end_byte, d.start_line, d.start_col, d.end_line, d.end_col`

// --- Search ---

// SearchDefs performs glob-style search on definition names.
// '*' is the wildcard (mapped to SQL '%').
func (q *QueryBuilder) SearchDefs(pattern string, filter DefFilter, sort Sort, page Pagination) (*PagedResult[DefResult], error) {
	page = page.normalize()

	where, args := defFilterClauses(filter)

	// Pattern matching: escape literal % and _ first, then convert * to %.
	if pattern != "" && pattern != "*" {
		likePattern := strings.ReplaceAll(escapeLike(pattern), "*", "%")
		where = append(where, "d.name LIKE ? ESCAPE '\\'")
		args = append(args, likePattern)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countSQL := `SELECT COUNT(*) FROM defs d JOIN files f ON d.file_id = f.id ` + whereClause
	var totalCount int
	if err := q.store.DB().QueryRow(countSQL, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("search defs: count: %w", err)
	}

	orderCol := defSortColumn(sort.Field)
	orderDir := sortDirection(sort.Order)

	dataSQL := fmt.Sprintf(
		`SELECT %s, f.path AS file_path,
			(SELECT COUNT(*) FROM refs r WHERE r.fqn = d.fqn) AS ref_count
		 FROM defs d
		 JOIN files f ON d.file_id = f.id
		 %s
		 ORDER BY %s %s
		 LIMIT ? OFFSET ?`,
		defResultCols, whereClause, orderCol, orderDir,
	)
	dataArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	rows, err := q.store.DB().Query(dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("search defs: query: %w", err)
	}
	defer rows.Close()

	var items []DefResult
	for rows.Next() {
		var dr DefResult
		if err := rows.Scan(
			&dr.ID, &dr.FileID, &dr.FQN, &dr.Name,
			&dr.Span.StartByte, &dr.Span.EndByte,
			&dr.Span.StartLine, &dr.Span.StartCol, &dr.Span.EndLine, &dr.Span.EndCol,
			&dr.FilePath, &dr.RefCount,
		); err != nil {
			return nil, fmt.Errorf("search defs: scan: %w", err)
		}
		items = append(items, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search defs: rows: %w", err)
	}
	if items == nil {
		items = []DefResult{}
	}

	return &PagedResult[DefResult]{Items: items, TotalCount: totalCount}, nil
}

// --- Digest Endpoints ---

// ModuleStats provides a per-module breakdown for ProjectSummary.
type ModuleStats struct {
	Module     string
	FileCount  int
	DefCount   int
	ScopeKinds map[string]int
}

// ProjectSummary provides a high-level overview of the indexed tree.
type ProjectSummary struct {
	FileCount int
	Modules   []ModuleStats
	TopDefs   []DefResult
}

// ProjectSummary returns a high-level overview of the entire index. topN
// bounds the most-referenced definitions included.
func (q *QueryBuilder) ProjectSummary(topN int) (*ProjectSummary, error) {
	summary := &ProjectSummary{}

	if err := q.store.DB().QueryRow("SELECT COUNT(*) FROM files").Scan(&summary.FileCount); err != nil {
		return nil, fmt.Errorf("project summary: file count: %w", err)
	}

	modRows, err := q.store.DB().Query(
		`SELECT f.module, COUNT(DISTINCT f.id), COUNT(d.id)
		 FROM files f
		 LEFT JOIN defs d ON d.file_id = f.id
		 GROUP BY f.module ORDER BY f.module`,
	)
	if err != nil {
		return nil, fmt.Errorf("project summary: modules: %w", err)
	}
	defer modRows.Close()

	var modules []ModuleStats
	for modRows.Next() {
		var ms ModuleStats
		if err := modRows.Scan(&ms.Module, &ms.FileCount, &ms.DefCount); err != nil {
			return nil, fmt.Errorf("project summary: scan module: %w", err)
		}
		modules = append(modules, ms)
	}
	if err := modRows.Err(); err != nil {
		return nil, fmt.Errorf("project summary: module rows: %w", err)
	}

	// Scope kind breakdown per module.
	for i := range modules {
		ms := &modules[i]
		kindRows, err := q.store.DB().Query(
			`SELECT s.kind, COUNT(*) FROM scopes s
			 JOIN files f ON s.file_id = f.id
			 WHERE f.module = ?
			 GROUP BY s.kind`,
			ms.Module,
		)
		if err != nil {
			return nil, fmt.Errorf("project summary: scope kinds for %s: %w", ms.Module, err)
		}

		ms.ScopeKinds = make(map[string]int)
		for kindRows.Next() {
			var kind string
			var count int
			if err := kindRows.Scan(&kind, &count); err != nil {
				kindRows.Close()
				return nil, fmt.Errorf("project summary: scan kind: %w", err)
			}
			ms.ScopeKinds[kind] = count
		}
		kindRows.Close()
		if err := kindRows.Err(); err != nil {
			return nil, fmt.Errorf("project summary: kind rows: %w", err)
		}
	}

	summary.Modules = modules
	if summary.Modules == nil {
		summary.Modules = []ModuleStats{}
	}

	// Top-N definitions by reference count.
	if topN > 0 {
		topSQL := fmt.Sprintf(
			`SELECT %s, f.path AS file_path,
				(SELECT COUNT(*) FROM refs r WHERE r.fqn = d.fqn) AS ref_count
			 FROM defs d
			 JOIN files f ON d.file_id = f.id
			 WHERE (SELECT COUNT(*) FROM refs r2 WHERE r2.fqn = d.fqn) > 0
			 ORDER BY ref_count DESC
			 LIMIT ?`,
			defResultCols,
		)
		topRows, err := q.store.DB().Query(topSQL, topN)
		if err != nil {
			return nil, fmt.Errorf("project summary: top defs: %w", err)
		}
		defer topRows.Close()

		for topRows.Next() {
			var dr DefResult
			if err := topRows.Scan(
				&dr.ID, &dr.FileID, &dr.FQN, &dr.Name,
				&dr.Span.StartByte, &dr.Span.EndByte,
				&dr.Span.StartLine, &dr.Span.StartCol, &dr.Span.EndLine, &dr.Span.EndCol,
				&dr.FilePath, &dr.RefCount,
			); err != nil {
				return nil, fmt.Errorf("project summary: scan top def: %w", err)
			}
			summary.TopDefs = append(summary.TopDefs, dr)
		}
		if err := topRows.Err(); err != nil {
			return nil, fmt.Errorf("project summary: top rows: %w", err)
		}
	}
	if summary.TopDefs == nil {
		summary.TopDefs = []DefResult{}
	}

	return summary, nil
}

// escapeLike escapes SQL LIKE special characters (% and _) with backslash.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
