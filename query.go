package pith

import (
	"fmt"

	"github.com/pcallahan/pith/internal/store"
)

// QueryBuilder provides a tool-facing query API over the Store.
type QueryBuilder struct {
	store *store.Store
}

// NewQueryBuilder wraps an existing Store. Engines hand out pre-wired
// builders via Engine.Query; this constructor serves read-only consumers
// that open the database themselves.
func NewQueryBuilder(s *store.Store) *QueryBuilder {
	return &QueryBuilder{store: s}
}

// Location represents a source code position range.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// DefinitionAt finds the definition sites of the name referenced at the
// given position. It looks up the reference covering (file, line, col),
// then returns the locations of every definition occurrence sharing its
// FQN. Unresolved references (builtins, attributes) yield no locations.
func (q *QueryBuilder) DefinitionAt(file string, line, col int) ([]Location, error) {
	f, err := q.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("definition at: lookup file: %w", err)
	}
	if f == nil {
		return nil, nil
	}

	ref, err := q.refAtPosition(f.ID, line, col)
	if err != nil {
		return nil, fmt.Errorf("definition at: %w", err)
	}
	if ref == nil || ref.FQN == "" {
		return nil, nil
	}

	defs, err := q.store.DefsByFQN(ref.FQN)
	if err != nil {
		return nil, fmt.Errorf("definition at: defs by fqn: %w", err)
	}
	return q.defLocations(defs)
}

// ReferencesTo finds all source locations that reference the given FQN.
func (q *QueryBuilder) ReferencesTo(fqn string) ([]Location, error) {
	refs, err := q.store.RefsByFQN(fqn)
	if err != nil {
		return nil, fmt.Errorf("references to: %w", err)
	}

	var locations []Location
	for _, r := range refs {
		loc, err := q.spanLocation(r.FileID, r.Span)
		if err != nil {
			return nil, fmt.Errorf("references to: ref location: %w", err)
		}
		if loc != nil {
			locations = append(locations, *loc)
		}
	}
	return locations, nil
}

// ReferencesAt combines the two halves of find-references: resolve the name
// at a position to its FQN, then list every reference sharing it.
func (q *QueryBuilder) ReferencesAt(file string, line, col int) ([]Location, error) {
	fqn, err := q.FQNAt(file, line, col)
	if err != nil || fqn == "" {
		return nil, err
	}
	return q.ReferencesTo(fqn)
}

// FQNAt returns the fully-qualified name of the binding or reference at the
// given position, or "" if the position covers no resolvable name.
func (q *QueryBuilder) FQNAt(file string, line, col int) (string, error) {
	f, err := q.store.FileByPath(file)
	if err != nil {
		return "", fmt.Errorf("fqn at: lookup file: %w", err)
	}
	if f == nil {
		return "", nil
	}

	if d, err := q.defAtPosition(f.ID, line, col); err != nil {
		return "", fmt.Errorf("fqn at: %w", err)
	} else if d != nil {
		return d.FQN, nil
	}

	ref, err := q.refAtPosition(f.ID, line, col)
	if err != nil {
		return "", fmt.Errorf("fqn at: %w", err)
	}
	if ref == nil {
		return "", nil
	}
	return ref.FQN, nil
}

// BindingsInScope returns the ordered binding set of the scope with the
// given FQN, or nil if no such scope is indexed.
func (q *QueryBuilder) BindingsInScope(scopeFQN string) ([]*store.Binding, error) {
	sc, err := q.store.ScopeByFQN(scopeFQN)
	if err != nil {
		return nil, fmt.Errorf("bindings in scope: %w", err)
	}
	if sc == nil {
		return nil, nil
	}
	bindings, err := q.store.BindingsByScope(sc.ID)
	if err != nil {
		return nil, fmt.Errorf("bindings in scope: %w", err)
	}
	return bindings, nil
}

// ScopesForFile returns all scopes indexed for a file, outermost first.
func (q *QueryBuilder) ScopesForFile(file string) ([]*store.Scope, error) {
	f, err := q.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("scopes for file: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	return q.store.ScopesByFile(f.ID)
}

// DefsInModule returns every definition in files belonging to a module or
// any of its submodules.
func (q *QueryBuilder) DefsInModule(module string) ([]*store.Def, error) {
	files, err := q.store.FilesInModule(module)
	if err != nil {
		return nil, fmt.Errorf("defs in module: %w", err)
	}
	var defs []*store.Def
	for _, f := range files {
		fd, err := q.store.DefsByFile(f.ID)
		if err != nil {
			return nil, fmt.Errorf("defs in module: %w", err)
		}
		defs = append(defs, fd...)
	}
	return defs, nil
}

// UnresolvedRefs returns references in a file that lexical resolution could
// not bind: builtins, attribute accesses, and names from star imports.
func (q *QueryBuilder) UnresolvedRefs(file string) ([]*store.Ref, error) {
	f, err := q.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("unresolved refs: lookup file: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	refs, err := q.store.RefsByFile(f.ID)
	if err != nil {
		return nil, fmt.Errorf("unresolved refs: %w", err)
	}
	var out []*store.Ref
	for _, r := range refs {
		if r.FQN == "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// refAtPosition finds the reference whose span covers a line/column
// position. Positions are 0-based to match the stored spans.
func (q *QueryBuilder) refAtPosition(fileID int64, line, col int) (*store.Ref, error) {
	refs, err := q.store.RefsByFile(fileID)
	if err != nil {
		return nil, err
	}
	for _, r := range refs {
		if spanCovers(r.Span, line, col) {
			return r, nil
		}
	}
	return nil, nil
}

func (q *QueryBuilder) defAtPosition(fileID int64, line, col int) (*store.Def, error) {
	defs, err := q.store.DefsByFile(fileID)
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		if spanCovers(d.Span, line, col) {
			return d, nil
		}
	}
	return nil, nil
}

// spanCovers reports whether a span contains the position. End columns are
// exclusive, matching the parser's convention.
func spanCovers(s store.Span, line, col int) bool {
	if line < s.StartLine || line > s.EndLine {
		return false
	}
	if line == s.StartLine && col < s.StartCol {
		return false
	}
	if line == s.EndLine && col >= s.EndCol {
		return false
	}
	return true
}

func (q *QueryBuilder) defLocations(defs []*store.Def) ([]Location, error) {
	var locations []Location
	for _, d := range defs {
		loc, err := q.spanLocation(d.FileID, d.Span)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			locations = append(locations, *loc)
		}
	}
	return locations, nil
}

// spanLocation resolves a file ID plus span to a path-bearing Location.
func (q *QueryBuilder) spanLocation(fileID int64, span store.Span) (*Location, error) {
	var path string
	err := q.store.DB().QueryRow("SELECT path FROM files WHERE id = ?", fileID).Scan(&path)
	if err != nil {
		return nil, err
	}
	return &Location{
		File:      path,
		StartLine: span.StartLine,
		StartCol:  span.StartCol,
		EndLine:   span.EndLine,
		EndCol:    span.EndCol,
	}, nil
}
