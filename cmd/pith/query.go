package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pcallahan/pith"
	"github.com/pcallahan/pith/internal/store"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the cross-reference index",
	Long:  "Run queries against an indexed source tree. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.AddCommand(definitionCmd)
	queryCmd.AddCommand(referencesCmd)
	queryCmd.AddCommand(fqnCmd)
	queryCmd.AddCommand(scopesCmd)
	queryCmd.AddCommand(bindingsCmd)
	queryCmd.AddCommand(defsCmd)
	queryCmd.AddCommand(unresolvedCmd)
	queryCmd.AddCommand(filesCmd)
}

// --- Helpers ---

// openStore opens the Store from the --db flag path (or default) and
// returns the repo root the stored file paths are relative to.
func openStore() (*store.Store, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("database not found: %s (run 'pith index' first)", dbPath)
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, "", err
	}
	return s, repoRoot, nil
}

// indexRelPath converts a file argument to the root-relative slash form the
// index stores. Absolute paths are made relative to repoRoot; relative ones
// are resolved against the working directory first.
func indexRelPath(file, repoRoot string) (string, error) {
	abs := file
	if !filepath.IsAbs(file) {
		var err error
		if abs, err = filepath.Abs(file); err != nil {
			return "", fmt.Errorf("resolving file path %q: %w", file, err)
		}
	}
	rel, err := filepath.Rel(repoRoot, abs)
	if err != nil {
		return "", fmt.Errorf("file %q is outside the indexed tree: %w", file, err)
	}
	return filepath.ToSlash(rel), nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// parsePositionArgs parses <file> <line> <col> positional args against the
// index's path convention.
func parsePositionArgs(args []string, repoRoot string) (file string, line, col int, err error) {
	if file, err = indexRelPath(args[0], repoRoot); err != nil {
		return
	}
	if line, err = parseIntArg(args[1], "line"); err != nil {
		return
	}
	col, err = parseIntArg(args[2], "col")
	return
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// locationToCLI converts a pith.Location to a CLILocation.
func locationToCLI(loc pith.Location, fqn string) CLILocation {
	return CLILocation{
		File:      loc.File,
		StartLine: loc.StartLine,
		StartCol:  loc.StartCol,
		EndLine:   loc.EndLine,
		EndCol:    loc.EndCol,
		FQN:       fqn,
	}
}

// lookupFilePath fetches the file path for a file ID, or "" if not found.
func lookupFilePath(s *store.Store, fileID int64) string {
	var path string
	_ = s.DB().QueryRow("SELECT path FROM files WHERE id = ?", fileID).Scan(&path)
	return path
}

// --- Position-Based Commands ---

var definitionCmd = &cobra.Command{
	Use:   "definition <file> <line> <col>",
	Short: "Find the definition of the name at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runDefinition,
}

func runDefinition(cmd *cobra.Command, args []string) error {
	s, repoRoot, err := openStore()
	if err != nil {
		return outputError("definition", err)
	}
	defer s.Close()

	file, line, col, err := parsePositionArgs(args, repoRoot)
	if err != nil {
		return outputError("definition", err)
	}

	qb := pith.NewQueryBuilder(s)
	fqn, err := qb.FQNAt(file, line, col)
	if err != nil {
		return outputError("definition", err)
	}
	locs, err := qb.DefinitionAt(file, line, col)
	if err != nil {
		return outputError("definition", err)
	}

	cliLocs := make([]CLILocation, len(locs))
	for i, loc := range locs {
		cliLocs[i] = locationToCLI(loc, fqn)
	}

	defCount := len(cliLocs)
	return outputResult(CLIResult{
		Command:    "definition",
		Results:    cliLocs,
		TotalCount: &defCount,
	})
}

var referencesCmd = &cobra.Command{
	Use:   "references [<file> <line> <col>]",
	Short: "Find all references to a name",
	Long:  "Accepts either <file> <line> <col> positional args or --fqn <name>.",
	Args:  cobra.MaximumNArgs(3),
	RunE:  runReferences,
}

func init() {
	referencesCmd.Flags().String("fqn", "", "fully-qualified name to query")
}

func runReferences(cmd *cobra.Command, args []string) error {
	s, repoRoot, err := openStore()
	if err != nil {
		return outputError("references", err)
	}
	defer s.Close()

	qb := pith.NewQueryBuilder(s)

	fqn, _ := cmd.Flags().GetString("fqn")
	if fqn == "" {
		if len(args) < 3 {
			return outputError("references", fmt.Errorf("requires either <file> <line> <col> arguments or --fqn flag"))
		}
		file, line, col, err := parsePositionArgs(args, repoRoot)
		if err != nil {
			return outputError("references", err)
		}
		if fqn, err = qb.FQNAt(file, line, col); err != nil {
			return outputError("references", err)
		}
		if fqn == "" {
			return outputError("references", fmt.Errorf("no resolvable name at %s:%d:%d", file, line, col))
		}
	}

	locs, err := qb.ReferencesTo(fqn)
	if err != nil {
		return outputError("references", err)
	}

	cliLocs := make([]CLILocation, len(locs))
	for i, loc := range locs {
		cliLocs[i] = locationToCLI(loc, fqn)
	}

	refCount := len(cliLocs)
	return outputResult(CLIResult{
		Command:    "references",
		Results:    cliLocs,
		TotalCount: &refCount,
	})
}

var fqnCmd = &cobra.Command{
	Use:   "fqn <file> <line> <col>",
	Short: "Show the fully-qualified name at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runFQN,
}

func runFQN(cmd *cobra.Command, args []string) error {
	s, repoRoot, err := openStore()
	if err != nil {
		return outputError("fqn", err)
	}
	defer s.Close()

	file, line, col, err := parsePositionArgs(args, repoRoot)
	if err != nil {
		return outputError("fqn", err)
	}

	fqn, err := pith.NewQueryBuilder(s).FQNAt(file, line, col)
	if err != nil {
		return outputError("fqn", err)
	}
	if fqn == "" {
		return outputResult(CLIResult{Command: "fqn", Results: nil})
	}

	one := 1
	return outputResult(CLIResult{
		Command:    "fqn",
		Results:    fqn,
		TotalCount: &one,
	})
}

// --- Structure Commands ---

var scopesCmd = &cobra.Command{
	Use:   "scopes <file>",
	Short: "List the lexical scopes of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScopes,
}

func runScopes(cmd *cobra.Command, args []string) error {
	s, repoRoot, err := openStore()
	if err != nil {
		return outputError("scopes", err)
	}
	defer s.Close()

	file, err := indexRelPath(args[0], repoRoot)
	if err != nil {
		return outputError("scopes", err)
	}

	scopes, err := pith.NewQueryBuilder(s).ScopesForFile(file)
	if err != nil {
		return outputError("scopes", err)
	}

	// Map scope IDs to FQNs so parents display as names, not row IDs.
	fqnByID := make(map[int64]string, len(scopes))
	for _, sc := range scopes {
		fqnByID[sc.ID] = sc.FQN
	}

	cliScopes := make([]CLIScope, len(scopes))
	for i, sc := range scopes {
		cli := CLIScope{
			ID:        sc.ID,
			FQN:       sc.FQN,
			Kind:      sc.Kind,
			StartLine: sc.Span.StartLine,
			EndLine:   sc.Span.EndLine,
		}
		if sc.ParentScopeID != nil {
			cli.ParentFQN = fqnByID[*sc.ParentScopeID]
		}
		cliScopes[i] = cli
	}

	scopeCount := len(cliScopes)
	return outputResult(CLIResult{
		Command:    "scopes",
		Results:    cliScopes,
		TotalCount: &scopeCount,
	})
}

var bindingsCmd = &cobra.Command{
	Use:   "bindings <scope-fqn>",
	Short: "List a scope's binding set in first-binding order",
	Args:  cobra.ExactArgs(1),
	RunE:  runBindings,
}

func runBindings(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return outputError("bindings", err)
	}
	defer s.Close()

	bindings, err := pith.NewQueryBuilder(s).BindingsInScope(args[0])
	if err != nil {
		return outputError("bindings", err)
	}

	cliBindings := make([]CLIBinding, len(bindings))
	for i, b := range bindings {
		cliBindings[i] = CLIBinding{Name: b.Name, FQN: b.FQN, Ord: b.Ord}
	}

	bindingCount := len(cliBindings)
	return outputResult(CLIResult{
		Command:    "bindings",
		Results:    cliBindings,
		TotalCount: &bindingCount,
	})
}

var defsCmd = &cobra.Command{
	Use:   "defs <module>",
	Short: "List definitions in a module and its submodules",
	Args:  cobra.ExactArgs(1),
	RunE:  runDefs,
}

func runDefs(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return outputError("defs", err)
	}
	defer s.Close()

	defs, err := pith.NewQueryBuilder(s).DefsInModule(args[0])
	if err != nil {
		return outputError("defs", err)
	}

	cliDefs := make([]CLIDef, len(defs))
	for i, d := range defs {
		cliDefs[i] = CLIDef{
			FQN:       d.FQN,
			Name:      d.Name,
			File:      lookupFilePath(s, d.FileID),
			StartLine: d.Span.StartLine,
			StartCol:  d.Span.StartCol,
		}
	}

	defCount := len(cliDefs)
	return outputResult(CLIResult{
		Command:    "defs",
		Results:    cliDefs,
		TotalCount: &defCount,
	})
}

var unresolvedCmd = &cobra.Command{
	Use:   "unresolved <file>",
	Short: "List references lexical resolution could not bind",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnresolved,
}

func runUnresolved(cmd *cobra.Command, args []string) error {
	s, repoRoot, err := openStore()
	if err != nil {
		return outputError("unresolved", err)
	}
	defer s.Close()

	file, err := indexRelPath(args[0], repoRoot)
	if err != nil {
		return outputError("unresolved", err)
	}

	refs, err := pith.NewQueryBuilder(s).UnresolvedRefs(file)
	if err != nil {
		return outputError("unresolved", err)
	}

	cliRefs := make([]CLIRef, len(refs))
	for i, r := range refs {
		cliRefs[i] = CLIRef{
			Name:      r.Name,
			File:      file,
			StartLine: r.Span.StartLine,
			StartCol:  r.Span.StartCol,
		}
	}

	refCount := len(cliRefs)
	return outputResult(CLIResult{
		Command:    "unresolved",
		Results:    cliRefs,
		TotalCount: &refCount,
	})
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List indexed files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return outputError("files", err)
	}
	defer s.Close()

	files, err := s.Files()
	if err != nil {
		return outputError("files", err)
	}

	cliFiles := make([]CLIFile, len(files))
	for i, f := range files {
		cliFiles[i] = CLIFile{ID: f.ID, Path: f.Path, Module: f.Module, Dialect: f.Dialect}
	}

	fileCount := len(cliFiles)
	return outputResult(CLIResult{
		Command:    "files",
		Results:    cliFiles,
		TotalCount: &fileCount,
	})
}
