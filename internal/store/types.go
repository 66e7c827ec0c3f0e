package store

import "time"

// File is one indexed source file.
type File struct {
	ID          int64
	Path        string
	Module      string
	Dialect     string
	Hash        string
	LastIndexed time.Time
}

// Span mirrors the converter's source span: byte offsets for anchoring,
// line/column for display.
type Span struct {
	StartByte int
	EndByte   int
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Scope is one lexical scope of a file.
type Scope struct {
	ID            int64
	FileID        int64
	FQN           string
	Kind          string
	ParentScopeID *int64
	Span          Span
}

// Binding is one entry of a scope's ordered binding set.
type Binding struct {
	ID      int64
	ScopeID int64
	Name    string
	FQN     string
	Ord     int
}

// Def is a binding occurrence anchored to a source location.
type Def struct {
	ID     int64
	FileID int64
	FQN    string
	Name   string
	Span   Span
}

// Ref is a reference occurrence. FQN is empty when lexical resolution found
// no local binding.
type Ref struct {
	ID     int64
	FileID int64
	FQN    string
	Name   string
	Span   Span
}
