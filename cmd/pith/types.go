package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLILocation is a JSON-friendly source position range.
type CLILocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	FQN       string `json:"fqn,omitempty"`
}

// CLIScope is a JSON-friendly lexical scope.
type CLIScope struct {
	ID        int64  `json:"id"`
	FQN       string `json:"fqn"`
	Kind      string `json:"kind"`
	ParentFQN string `json:"parent_fqn,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// CLIBinding is one entry of a scope's ordered binding set.
type CLIBinding struct {
	Name string `json:"name"`
	FQN  string `json:"fqn"`
	Ord  int    `json:"ord"`
}

// CLIDef is a JSON-friendly definition occurrence.
type CLIDef struct {
	FQN       string `json:"fqn"`
	Name      string `json:"name"`
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
}

// CLIRef is a JSON-friendly reference occurrence. An empty FQN means
// lexical resolution found no binding.
type CLIRef struct {
	FQN       string `json:"fqn,omitempty"`
	Name      string `json:"name"`
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
}

// CLIFile is a JSON-friendly indexed file.
type CLIFile struct {
	ID      int64  `json:"id"`
	Path    string `json:"path"`
	Module  string `json:"module"`
	Dialect string `json:"dialect"`
}
