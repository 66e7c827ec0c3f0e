package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered facts from a BatchedStore into SQLite
// within a single transaction. Fake (negative) IDs are remapped to real
// (positive, AUTOINCREMENT) IDs, and FK references within the batch are
// rewritten using the fakeToReal mapping.
//
// Insert order respects FK dependencies: scopes first (parent_scope_id may
// point at an earlier scope in the same batch), then bindings, defs, refs.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64)

	for _, sc := range batch.Scopes {
		if sc.ParentScopeID != nil && *sc.ParentScopeID < 0 {
			realID := fakeToReal[*sc.ParentScopeID]
			sc.ParentScopeID = &realID
		}
		realID, err := insertScopeTx(tx, &sc)
		if err != nil {
			return fmt.Errorf("commit batch: scope %q: %w", sc.FQN, err)
		}
		fakeToReal[sc.ID] = realID
	}

	for _, b := range batch.Bindings {
		if b.ScopeID < 0 {
			realID, ok := fakeToReal[b.ScopeID]
			if !ok {
				return fmt.Errorf("commit batch: binding %q has scope_id=%d not in batch", b.Name, b.ScopeID)
			}
			b.ScopeID = realID
		}
		if _, err := insertBindingTx(tx, &b); err != nil {
			return fmt.Errorf("commit batch: binding %q: %w", b.Name, err)
		}
	}

	for _, d := range batch.Defs {
		if _, err := insertDefTx(tx, &d); err != nil {
			return fmt.Errorf("commit batch: def %q: %w", d.FQN, err)
		}
	}

	for _, r := range batch.Refs {
		if _, err := insertRefTx(tx, &r); err != nil {
			return fmt.Errorf("commit batch: ref %q: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// --- Transaction-scoped insert helpers ---
// These mirror the Store insert methods but accept *sql.Tx instead of s.db.

func insertScopeTx(tx *sql.Tx, sc *Scope) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO scopes (file_id, fqn, kind, parent_scope_id,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.FileID, sc.FQN, sc.Kind, sc.ParentScopeID,
		sc.Span.StartByte, sc.Span.EndByte, sc.Span.StartLine, sc.Span.StartCol,
		sc.Span.EndLine, sc.Span.EndCol,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertBindingTx(tx *sql.Tx, b *Binding) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO bindings (scope_id, name, fqn, ord) VALUES (?, ?, ?, ?)",
		b.ScopeID, b.Name, b.FQN, b.Ord,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertDefTx(tx *sql.Tx, d *Def) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO defs (file_id, fqn, name,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FileID, d.FQN, d.Name,
		d.Span.StartByte, d.Span.EndByte, d.Span.StartLine, d.Span.StartCol,
		d.Span.EndLine, d.Span.EndCol,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertRefTx(tx *sql.Tx, r *Ref) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO refs (file_id, fqn, name,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.FileID, r.FQN, r.Name,
		r.Span.StartByte, r.Span.EndByte, r.Span.StartLine, r.Span.StartCol,
		r.Span.EndLine, r.Span.EndCol,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
