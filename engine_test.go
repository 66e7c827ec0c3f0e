package pith

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pcallahan/pith/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(dbPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// writeFixture writes the standard single-file fixture and returns its dir.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := `import os

def greet(name):
    msg = "hello " + name
    return msg

class Greeter:
    def run(self):
        return greet("world")
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(src), 0o644))
	return dir
}

func indexFixture(t *testing.T, e *Engine, dir string) {
	t.Helper()
	require.NoError(t, e.IndexDirectory(context.Background(), dir))
}

func defFQNSet(t *testing.T, e *Engine, path string) map[string]bool {
	t.Helper()
	f, err := e.Store().FileByPath(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	fqns, err := e.Store().DefFQNsByFile(f.ID)
	require.NoError(t, err)
	set := make(map[string]bool, len(fqns))
	for _, fqn := range fqns {
		set[fqn] = true
	}
	return set
}

func TestNew_CreatesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(dbPath)
	require.NoError(t, err)
	defer e.Close()

	require.NotNil(t, e.Store())

	// Verify the DB is usable (migration ran).
	_, err = e.Store().InsertFile(&store.File{
		Path: "x.py", Module: "x", Dialect: "python3", Hash: "abc", LastIndexed: time.Now(),
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/dir/db.sqlite")
	require.Error(t, err)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	_, err := New(dbPath, WithConfig(Config{Dialect: "cobol"}))
	require.Error(t, err)

	_, err = New(dbPath, WithConfig(Config{Collapse: []string{"no_such_production"}}))
	require.Error(t, err)
}

func TestQuery_ReturnsQueryBuilder(t *testing.T) {
	e := newTestEngine(t)
	require.NotNil(t, e.Query())
}

func TestIndexFiles_SkipsNonPythonExtensions(t *testing.T) {
	e := newTestEngine(t)

	tmp := filepath.Join(t.TempDir(), "readme.txt")
	require.NoError(t, os.WriteFile(tmp, []byte("hello"), 0o644))

	require.NoError(t, e.IndexFiles(context.Background(), []string{tmp}))

	files, err := e.Store().Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIndexDirectory_RecordsFacts(t *testing.T) {
	e := newTestEngine(t)
	dir := writeFixture(t)
	indexFixture(t, e, dir)

	f, err := e.Store().FileByPath("app.py")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "app", f.Module)
	assert.Equal(t, "python3", f.Dialect)

	scopes, err := e.Store().ScopesByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, scopes, 4)
	assert.Equal(t, "app", scopes[0].FQN)
	assert.Equal(t, "module", scopes[0].Kind)
	assert.Nil(t, scopes[0].ParentScopeID)

	defs := defFQNSet(t, e, "app.py")
	for _, want := range []string{
		"app.os", "app.greet", "app.greet.name", "app.greet.msg",
		"app.Greeter", "app.Greeter.run", "app.Greeter.run.self",
	} {
		assert.True(t, defs[want], "missing def %s", want)
	}

	// The greet call inside Greeter.run skips the class scope and resolves
	// to the module-level function.
	refs, err := e.Store().RefsByFQN("app.greet")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 8, refs[0].Span.StartLine)
}

func TestIndexFiles_SkipsUnchangedFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := writeFixture(t)
	indexFixture(t, e, dir)

	f1, err := e.Store().FileByPath("app.py")
	require.NoError(t, err)

	indexFixture(t, e, dir)

	f2, err := e.Store().FileByPath("app.py")
	require.NoError(t, err)
	assert.Equal(t, f1.LastIndexed.Unix(), f2.LastIndexed.Unix(), "unchanged file should not be re-indexed")
}

func TestIndexFiles_ReindexReplacesFacts(t *testing.T) {
	e := newTestEngine(t)
	dir := writeFixture(t)
	indexFixture(t, e, dir)

	// Rewrite with a different definition set.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("total = 0\n"), 0o644))
	indexFixture(t, e, dir)

	defs := defFQNSet(t, e, "app.py")
	assert.True(t, defs["app.total"])
	assert.False(t, defs["app.greet"], "stale defs must be deleted")

	// No duplicate file rows.
	files, err := e.Store().Files()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestIndexFiles_SyntaxErrorReported(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.py"), []byte("def f(:\n"), 0o644))

	err := e.IndexDirectory(context.Background(), dir)
	require.Error(t, err)
}

func TestImpactedFiles_ListsChangedFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.py"), []byte("y = 1\n"), 0o644))
	indexFixture(t, e, dir)

	// Change only app.py and reindex. other.py is untouched by the change
	// and holds no references to app's FQNs.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("z = 2\n"), 0o644))
	indexFixture(t, e, dir)

	impacted, err := e.ImpactedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, impacted)
}

func TestIndexDirectory_WalkSkipsExcludedDirs(t *testing.T) {
	e := newTestEngine(t, WithConfig(Config{Exclude: []string{"gen"}}))
	dir := writeFixture(t)
	for _, sub := range []string{"gen", "__pycache__", ".hidden"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, sub, "skip.py"), []byte("s = 1\n"), 0o644))
	}
	indexFixture(t, e, dir)

	files, err := e.Store().Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "app.py", files[0].Path)
}

func TestIndexDirectory_PackageModuleFQNs(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	pkg := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "__init__.py"), []byte("a = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "sub.py"), []byte("b = 2\n"), 0o644))
	indexFixture(t, e, dir)

	init, err := e.Store().FileByPath("pkg/__init__.py")
	require.NoError(t, err)
	require.NotNil(t, init)
	assert.Equal(t, "pkg", init.Module)

	sub, err := e.Store().FileByPath("pkg/sub.py")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "pkg.sub", sub.Module)
}

func TestSerialAndParallel_ProduceSameFacts(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.py"),
		[]byte("def helper(x):\n    return x + 1\n"), 0o644))

	serial := newTestEngine(t, WithParallel(false))
	indexFixture(t, serial, dir)

	parallel := newTestEngine(t, WithParallel(true))
	indexFixture(t, parallel, dir)

	for _, path := range []string{"app.py", "util.py"} {
		assert.Equal(t, defFQNSet(t, serial, path), defFQNSet(t, parallel, path), "defs differ for %s", path)
	}
}

func TestConfigChanged_DetectsCollapseAndDialect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	dir := writeFixture(t)

	e, err := New(dbPath)
	require.NoError(t, err)
	assert.True(t, e.ConfigChanged(), "first run counts as changed")
	require.NoError(t, e.IndexDirectory(context.Background(), dir))
	assert.False(t, e.ConfigChanged())
	require.NoError(t, e.Close())

	e2, err := New(dbPath, WithConfig(Config{Dialect: "python2"}))
	require.NoError(t, err)
	defer e2.Close()
	assert.True(t, e2.ConfigChanged())
}
