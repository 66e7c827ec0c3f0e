// Package pith builds a cross-reference index for Python source trees. It
// parses each file with tree-sitter, converts the concrete syntax tree into
// a cooked AST with binding and reference occurrences classified, resolves
// names lexically to fully-qualified names, and persists the resulting facts
// to SQLite.
//
// # Pipeline
//
// Pith derives facts per file in three passes:
//
//  1. Parse: tree-sitter parses the source into a concrete syntax tree,
//     optionally collapsing single-child productions from a configured
//     allow-list.
//
//  2. Convert: the tree is cooked into a small AST whose Name nodes carry a
//     binds/refers classification, with per-scope binding sets collected in
//     first-binding order. Defaults, annotations, return types, and class
//     bases are classified against the enclosing scope.
//
//  3. Resolve: a lexical walk assigns fully-qualified names (module FQN plus
//     dotted scope path) to every binding and reference it can see, honoring
//     global and nonlocal declarations and the invisibility of class scopes
//     to nested functions. Unresolvable names keep an empty FQN.
//
// # Usage
//
// Create an Engine, index a project, and query:
//
//	e, err := pith.New("pith.db", pith.WithConfig(cfg))
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	locs, err := q.DefinitionAt("pkg/mod.py", 10, 5)
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] answers position and FQN
// queries over the stored facts:
//
//   - [QueryBuilder.DefinitionAt]: go-to-definition for the name at a position.
//   - [QueryBuilder.ReferencesTo]: all locations referencing an FQN.
//   - [QueryBuilder.ReferencesAt]: find-references from a position.
//   - [QueryBuilder.FQNAt]: the fully-qualified name at a position.
//   - [QueryBuilder.BindingsInScope]: a scope's ordered binding set.
//   - [QueryBuilder.ScopesForFile]: the scope tree of a file.
//   - [QueryBuilder.DefsInModule]: definitions under a module prefix.
//   - [QueryBuilder.UnresolvedRefs]: names lexical resolution could not bind.
//
// # Incremental Indexing
//
// [Engine.IndexFiles] skips files whose content hash is unchanged. When a
// file changes, pith diffs its definition FQNs against the previous index
// and records which other files reference the changed names; the resulting
// impact set is available from [Engine.ImpactedFiles]. A configuration
// change (dialect or collapse list) invalidates the whole index, reported
// by [Engine.ConfigChanged].
package pith
