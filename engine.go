package pith

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pcallahan/pith/internal/convert"
	"github.com/pcallahan/pith/internal/cst"
	"github.com/pcallahan/pith/internal/resolve"
	"github.com/pcallahan/pith/internal/store"
)

// Engine orchestrates the pith pipeline: file discovery, change detection,
// per-file parse/convert/resolve, fact emission, and query access.
type Engine struct {
	store   *store.Store
	cfg     Config
	dialect cst.Dialect
	builder *cst.Builder
	root    string

	// blastRadius accumulates file IDs whose references target definitions
	// changed during the current indexing run. nil until indexing starts.
	blastRadius map[int64]bool

	// useParallel enables the parallel indexing pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig supplies the project configuration. Without it the Engine uses
// the zero Config (python3, no collapsing).
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithRoot sets the project root that file paths and module FQNs are
// derived relative to. Defaults to the current directory.
func WithRoot(root string) Option {
	return func(e *Engine) {
		e.root = root
	}
}

// WithParallel controls parallel indexing. When true (default), IndexFiles
// uses a worker pool for parsing and conversion, with a single writer
// committing batches to SQLite. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("pith: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("pith: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		root:        ".",
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.dialect, err = e.cfg.dialect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("pith: %w", err)
	}
	if e.builder, err = e.cfg.builder(); err != nil {
		s.Close()
		return nil, fmt.Errorf("pith: %w", err)
	}

	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// configHash fingerprints the settings that shape emitted facts. A change
// invalidates the whole index, since collapse and dialect decisions are
// baked into every stored tree-derived fact.
func (e *Engine) configHash() string {
	collapse := make([]string, len(e.cfg.Collapse))
	copy(collapse, e.cfg.Collapse)
	sort.Strings(collapse)

	h := sha256.New()
	fmt.Fprintf(h, "dialect:%s\n", e.dialect)
	fmt.Fprintf(h, "collapse:%s\n", strings.Join(collapse, ","))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ConfigChanged reports whether the current configuration differs from the
// one used to build the database. Returns true on first run. When true, the
// caller should delete the database and reindex from scratch.
func (e *Engine) ConfigChanged() bool {
	stored, err := e.store.GetMeta("config_hash")
	if err != nil || stored == "" {
		return true
	}
	return e.configHash() != stored
}

func (e *Engine) storeConfigHash() {
	_ = e.store.SetMeta("config_hash", e.configHash())
}

// relPath converts an absolute or root-relative path into the root-relative
// form stored in the index and used for module FQNs.
func (e *Engine) relPath(path string) string {
	rel, err := filepath.Rel(e.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IndexFiles indexes the given file paths. When WithParallel is enabled,
// uses a worker pool for concurrent parse/convert/resolve with batched
// SQLite writes. Otherwise falls back to the serial path.
//
// For each file:
//  1. Skip non-Python paths
//  2. Skip unchanged files (same content hash)
//  3. Capture old definition FQNs (for blast radius)
//  4. Delete stale facts, upsert the file record
//  5. Parse, convert, resolve, and emit facts
//  6. Compute the blast radius from changed definitions
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	// Each run reports its own impact set.
	e.blastRadius = make(map[int64]bool)
	if e.useParallel {
		return e.indexFilesParallel(ctx, paths)
	}
	return e.indexFilesSerial(ctx, paths)
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := e.indexFile(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	e.storeConfigHash()
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	item, skip, err := e.prepareFile(path)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	facts, err := e.deriveFacts(ctx, item)
	if err != nil {
		return err
	}
	if err := emitFacts(e.store, item.fileID, facts); err != nil {
		return fmt.Errorf("emit facts: %w", err)
	}

	e.accumulateBlast(item, facts)
	return nil
}

// deriveFacts runs the per-file pipeline: parse the source into a concrete
// syntax tree, convert it to the cooked AST, and resolve names. This is the
// single-threaded unit of work; parallelism exists only across files.
func (e *Engine) deriveFacts(ctx context.Context, item workItem) (*resolve.FileFacts, error) {
	root, _, err := cst.Parse(ctx, item.content, e.dialect, e.builder)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	mod, err := convert.Tree(root)
	if err != nil {
		return nil, err
	}
	return resolve.File(item.relPath, mod), nil
}

// accumulateBlast records which files hold references to definitions that
// changed in this file, for impact reporting after the run.
func (e *Engine) accumulateBlast(item workItem, facts *resolve.FileFacts) {
	newFQNs := make(map[string]bool, len(facts.Defs))
	for _, d := range facts.Defs {
		newFQNs[d.FQN] = true
	}

	var changed []string
	for _, fqn := range item.oldDefFQNs {
		if !newFQNs[fqn] {
			changed = append(changed, fqn)
		}
	}
	for fqn := range newFQNs {
		if !item.oldDefSet[fqn] {
			changed = append(changed, fqn)
		}
	}

	e.blastRadius[item.fileID] = true
	if len(changed) == 0 {
		return
	}
	if fileIDs, err := e.store.FilesReferencingFQNs(changed); err == nil {
		for _, fid := range fileIDs {
			e.blastRadius[fid] = true
		}
	}
}

// ImpactedFiles returns the paths of files touched by the last indexing
// run: re-indexed files plus files whose references target definitions that
// appeared or disappeared. The set resets at the next IndexFiles call.
func (e *Engine) ImpactedFiles() ([]string, error) {
	if len(e.blastRadius) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(e.blastRadius))
	for fid := range e.blastRadius {
		ids = append(ids, fid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var paths []string
	for _, fid := range ids {
		var path string
		err := e.store.DB().QueryRow("SELECT path FROM files WHERE id = ?", fid).Scan(&path)
		if err != nil {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// isPythonFile reports whether the path has a Python source extension.
func isPythonFile(path string) bool {
	return strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi")
}

// skipDirs are directories excluded from discovery regardless of config.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// IndexDirectory walks root and indexes all Python files. If root is inside
// a git repository, uses git ls-files to respect .gitignore. Falls back to a
// filesystem walk (skipping hidden dirs and the exclusion set) if git is
// unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	e.root = root
	paths, err := e.gitListFiles(root)
	if err != nil {
		paths, err = e.walkListFiles(root)
		if err != nil {
			return err
		}
	}
	return e.IndexFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to Python sources.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isPythonFile(line) {
			continue
		}
		paths = append(paths, filepath.Join(root, line))
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	excluded := make(map[string]bool, len(e.cfg.Exclude))
	for _, name := range e.cfg.Exclude {
		excluded[name] = true
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name] || excluded[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if isPythonFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// workItem holds everything one file's indexing needs after preparation.
type workItem struct {
	path    string
	relPath string
	fileID  int64
	content []byte

	// Pre-captured definition FQNs for blast radius computation.
	oldDefFQNs []string
	oldDefSet  map[string]bool
}

// prepareFile does the serial prep for a single file: hash check, old-fact
// capture and cleanup, file record upsert. Returns skip=true for non-Python
// or unchanged files.
func (e *Engine) prepareFile(path string) (workItem, bool, error) {
	if !isPythonFile(path) {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := store.ContentHash(content)
	rel := e.relPath(path)

	existing, err := e.store.FileByPath(rel)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return workItem{}, true, nil // unchanged
	}

	item := workItem{path: path, relPath: rel, content: content, oldDefSet: map[string]bool{}}

	if existing != nil {
		item.oldDefFQNs, err = e.store.DefFQNsByFile(existing.ID)
		if err != nil {
			return workItem{}, false, fmt.Errorf("capture old defs: %w", err)
		}
		for _, fqn := range item.oldDefFQNs {
			item.oldDefSet[fqn] = true
		}
		if err := e.store.DeleteFileData(existing.ID); err != nil {
			return workItem{}, false, fmt.Errorf("delete old facts: %w", err)
		}
		existing.Module = resolve.ModuleFQN(rel)
		existing.Dialect = e.dialect.String()
		existing.Hash = hash
		existing.LastIndexed = time.Now()
		if err := e.store.UpdateFile(existing); err != nil {
			return workItem{}, false, fmt.Errorf("update file: %w", err)
		}
		item.fileID = existing.ID
		return item, false, nil
	}

	item.fileID, err = e.store.InsertFile(&store.File{
		Path:        rel,
		Module:      resolve.ModuleFQN(rel),
		Dialect:     e.dialect.String(),
		Hash:        hash,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return workItem{}, false, fmt.Errorf("insert file: %w", err)
	}
	return item, false, nil
}
