package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pcallahan/pith"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pith",
	Short:         "Cross-reference indexing for Python source trees",
	Long:          "Pith parses Python files with tree-sitter, classifies binding and reference occurrences, resolves names lexically, and writes the facts to a SQLite database for position and FQN queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .pith/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

var (
	flagForce  bool
	flagSerial bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a Python source tree",
	Long:  "Parses Python files with tree-sitter, derives scopes, bindings, definitions, and references, and writes them to the SQLite database. Unchanged files are skipped by content hash.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel indexing pipeline")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	pithDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(pithDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", pithDir, err)
	}

	// Handle --force: delete the DB file entirely.
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	cfg, err := pith.LoadConfig(targetDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	engine, err := newEngine(dbPath, cfg, targetDir)
	if err != nil {
		return err
	}

	// A dialect or collapse change invalidates every stored fact. Rebuild
	// from scratch rather than serving stale trees.
	if engine.ConfigChanged() && !flagForce {
		if indexed, _ := engine.Store().Files(); len(indexed) > 0 {
			engine.Close()
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("removing stale database: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Configuration changed; rebuilding %s\n", dbPath)
			if engine, err = newEngine(dbPath, cfg, targetDir); err != nil {
				return err
			}
		}
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.IndexDirectory(ctx, targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	impacted, err := engine.ImpactedFiles()
	if err != nil {
		return fmt.Errorf("impacted files: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d file(s) affected)\n",
		targetDir, time.Since(start).Round(time.Millisecond), len(impacted))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	return nil
}

func newEngine(dbPath string, cfg pith.Config, root string) (*pith.Engine, error) {
	opts := []pith.Option{pith.WithConfig(cfg), pith.WithRoot(root)}
	if flagSerial {
		opts = append(opts, pith.WithParallel(false))
	}
	engine, err := pith.New(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return engine, nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".pith", "index.db")
}
