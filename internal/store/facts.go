package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, module, dialect, hash, last_indexed) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Module, f.Dialect, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// UpdateFile refreshes a file's hash and index timestamp after re-indexing.
func (s *Store) UpdateFile(f *File) error {
	_, err := s.db.Exec(
		"UPDATE files SET module = ?, dialect = ?, hash = ?, last_indexed = ? WHERE id = ?",
		f.Module, f.Dialect, f.Hash, f.LastIndexed, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, module, dialect, hash, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Module, &f.Dialect, &f.Hash, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, module, dialect, hash, last_indexed FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Module, &f.Dialect, &f.Hash, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Scope operations ---

const scopeCols = `id, file_id, fqn, kind, parent_scope_id,
	start_byte, end_byte, start_line, start_col, end_line, end_col`

func (s *Store) InsertScope(sc *Scope) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO scopes (file_id, fqn, kind, parent_scope_id,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.FileID, sc.FQN, sc.Kind, sc.ParentScopeID,
		sc.Span.StartByte, sc.Span.EndByte, sc.Span.StartLine, sc.Span.StartCol,
		sc.Span.EndLine, sc.Span.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert scope: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	sc.ID = id
	return id, nil
}

func scanScope(scanner interface{ Scan(...any) error }) (*Scope, error) {
	sc := &Scope{}
	err := scanner.Scan(
		&sc.ID, &sc.FileID, &sc.FQN, &sc.Kind, &sc.ParentScopeID,
		&sc.Span.StartByte, &sc.Span.EndByte, &sc.Span.StartLine, &sc.Span.StartCol,
		&sc.Span.EndLine, &sc.Span.EndCol,
	)
	return sc, err
}

func (s *Store) queryScopes(query string, args ...any) ([]*Scope, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scopes []*Scope
	for rows.Next() {
		sc, err := scanScope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		scopes = append(scopes, sc)
	}
	return scopes, rows.Err()
}

func (s *Store) ScopesByFile(fileID int64) ([]*Scope, error) {
	return s.queryScopes("SELECT "+scopeCols+" FROM scopes WHERE file_id = ? ORDER BY id", fileID)
}

func (s *Store) ScopeByFQN(fqn string) (*Scope, error) {
	scopes, err := s.queryScopes("SELECT "+scopeCols+" FROM scopes WHERE fqn = ? LIMIT 1", fqn)
	if err != nil || len(scopes) == 0 {
		return nil, err
	}
	return scopes[0], nil
}

// --- Binding operations ---

func (s *Store) InsertBinding(b *Binding) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO bindings (scope_id, name, fqn, ord) VALUES (?, ?, ?, ?)",
		b.ScopeID, b.Name, b.FQN, b.Ord,
	)
	if err != nil {
		return 0, fmt.Errorf("insert binding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

// BindingsByScope returns a scope's binding set in insertion order.
func (s *Store) BindingsByScope(scopeID int64) ([]*Binding, error) {
	rows, err := s.db.Query(
		"SELECT id, scope_id, name, fqn, ord FROM bindings WHERE scope_id = ? ORDER BY ord", scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("bindings by scope: %w", err)
	}
	defer rows.Close()
	var bindings []*Binding
	for rows.Next() {
		b := &Binding{}
		if err := rows.Scan(&b.ID, &b.ScopeID, &b.Name, &b.FQN, &b.Ord); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// --- Def operations ---

const defCols = `id, file_id, fqn, name,
	start_byte, end_byte, start_line, start_col, end_line, end_col`

func (s *Store) InsertDef(d *Def) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO defs (file_id, fqn, name,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FileID, d.FQN, d.Name,
		d.Span.StartByte, d.Span.EndByte, d.Span.StartLine, d.Span.StartCol,
		d.Span.EndLine, d.Span.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert def: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	d.ID = id
	return id, nil
}

func scanDef(scanner interface{ Scan(...any) error }) (*Def, error) {
	d := &Def{}
	err := scanner.Scan(
		&d.ID, &d.FileID, &d.FQN, &d.Name,
		&d.Span.StartByte, &d.Span.EndByte, &d.Span.StartLine, &d.Span.StartCol,
		&d.Span.EndLine, &d.Span.EndCol,
	)
	return d, err
}

func (s *Store) queryDefs(query string, args ...any) ([]*Def, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var defs []*Def
	for rows.Next() {
		d, err := scanDef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan def: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

func (s *Store) DefsByFQN(fqn string) ([]*Def, error) {
	return s.queryDefs("SELECT "+defCols+" FROM defs WHERE fqn = ? ORDER BY file_id, start_byte", fqn)
}

func (s *Store) DefsByFile(fileID int64) ([]*Def, error) {
	return s.queryDefs("SELECT "+defCols+" FROM defs WHERE file_id = ? ORDER BY start_byte", fileID)
}

// DefAt returns the definition whose span covers the byte offset in a file,
// or nil if none does.
func (s *Store) DefAt(fileID int64, byteOffset int) (*Def, error) {
	defs, err := s.queryDefs(
		"SELECT "+defCols+" FROM defs WHERE file_id = ? AND start_byte <= ? AND end_byte > ? LIMIT 1",
		fileID, byteOffset, byteOffset,
	)
	if err != nil || len(defs) == 0 {
		return nil, err
	}
	return defs[0], nil
}

// --- Ref operations ---

const refCols = `id, file_id, fqn, name,
	start_byte, end_byte, start_line, start_col, end_line, end_col`

func (s *Store) InsertRef(r *Ref) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO refs (file_id, fqn, name,
			start_byte, end_byte, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.FileID, r.FQN, r.Name,
		r.Span.StartByte, r.Span.EndByte, r.Span.StartLine, r.Span.StartCol,
		r.Span.EndLine, r.Span.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ref: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

func scanRef(scanner interface{ Scan(...any) error }) (*Ref, error) {
	r := &Ref{}
	err := scanner.Scan(
		&r.ID, &r.FileID, &r.FQN, &r.Name,
		&r.Span.StartByte, &r.Span.EndByte, &r.Span.StartLine, &r.Span.StartCol,
		&r.Span.EndLine, &r.Span.EndCol,
	)
	return r, err
}

func (s *Store) queryRefs(query string, args ...any) ([]*Ref, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []*Ref
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) RefsByFQN(fqn string) ([]*Ref, error) {
	return s.queryRefs("SELECT "+refCols+" FROM refs WHERE fqn = ? ORDER BY file_id, start_byte", fqn)
}

func (s *Store) RefsByFile(fileID int64) ([]*Ref, error) {
	return s.queryRefs("SELECT "+refCols+" FROM refs WHERE file_id = ? ORDER BY start_byte", fileID)
}

// RefAt returns the reference whose span covers the byte offset in a file.
func (s *Store) RefAt(fileID int64, byteOffset int) (*Ref, error) {
	refs, err := s.queryRefs(
		"SELECT "+refCols+" FROM refs WHERE file_id = ? AND start_byte <= ? AND end_byte > ? LIMIT 1",
		fileID, byteOffset, byteOffset,
	)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	return refs[0], nil
}

// --- Metadata operations ---

func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata: %w", err)
	}
	return value, nil
}
