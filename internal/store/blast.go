package store

import "fmt"

// FilesReferencingFQNs returns file IDs holding references that resolve to
// any of the given FQNs. Used to compute the re-index blast radius when a
// file's definitions change.
func (s *Store) FilesReferencingFQNs(fqns []string) ([]int64, error) {
	if len(fqns) == 0 {
		return nil, nil
	}
	placeholders := placeholderList(len(fqns))
	query := "SELECT DISTINCT file_id FROM refs WHERE fqn IN (" + placeholders + ")"
	rows, err := s.db.Query(query, stringsToArgs(fqns)...)
	if err != nil {
		return nil, fmt.Errorf("files referencing fqns: %w", err)
	}
	defer rows.Close()
	var fileIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan file id: %w", err)
		}
		fileIDs = append(fileIDs, id)
	}
	return fileIDs, rows.Err()
}

// DefFQNsByFile returns the distinct definition FQNs a file contributes.
func (s *Store) DefFQNsByFile(fileID int64) ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT fqn FROM defs WHERE file_id = ?", fileID)
	if err != nil {
		return nil, fmt.Errorf("def fqns by file: %w", err)
	}
	defer rows.Close()
	var fqns []string
	for rows.Next() {
		var fqn string
		if err := rows.Scan(&fqn); err != nil {
			return nil, fmt.Errorf("scan fqn: %w", err)
		}
		fqns = append(fqns, fqn)
	}
	return fqns, rows.Err()
}

// FilesInModule returns files whose module FQN equals or is nested under
// the given dotted prefix.
func (s *Store) FilesInModule(module string) ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, path, module, dialect, hash, last_indexed FROM files WHERE module = ? OR module LIKE ? ORDER BY path",
		module, module+".%",
	)
	if err != nil {
		return nil, fmt.Errorf("files in module: %w", err)
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
