package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestFile(t *testing.T, s *Store, path, module string) int64 {
	t.Helper()
	id, err := s.InsertFile(&File{
		Path: path, Module: module, Dialect: "python3",
		Hash: "h", LastIndexed: time.Now(),
	})
	require.NoError(t, err)
	return id
}

func TestMigrate_IsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestFile_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	id := insertTestFile(t, s, "pkg/mod.py", "pkg.mod")
	f, err := s.FileByPath("pkg/mod.py")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, id, f.ID)
	assert.Equal(t, "pkg.mod", f.Module)
	assert.Equal(t, "python3", f.Dialect)

	missing, err := s.FileByPath("nope.py")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFile_Update(t *testing.T) {
	s := newTestStore(t)

	id := insertTestFile(t, s, "m.py", "m")
	f, err := s.FileByPath("m.py")
	require.NoError(t, err)
	f.Hash = "h2"
	require.NoError(t, s.UpdateFile(f))

	f2, err := s.FileByPath("m.py")
	require.NoError(t, err)
	assert.Equal(t, id, f2.ID)
	assert.Equal(t, "h2", f2.Hash)
}

func TestScope_ParentChain(t *testing.T) {
	s := newTestStore(t)
	fID := insertTestFile(t, s, "m.py", "m")

	modID, err := s.InsertScope(&Scope{FileID: fID, FQN: "m", Kind: "module"})
	require.NoError(t, err)
	fnID, err := s.InsertScope(&Scope{
		FileID: fID, FQN: "m.f", Kind: "function", ParentScopeID: &modID,
	})
	require.NoError(t, err)

	scopes, err := s.ScopesByFile(fID)
	require.NoError(t, err)
	require.Len(t, scopes, 2)
	assert.Equal(t, "m", scopes[0].FQN)
	require.NotNil(t, scopes[1].ParentScopeID)
	assert.Equal(t, modID, *scopes[1].ParentScopeID)

	fn, err := s.ScopeByFQN("m.f")
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, fnID, fn.ID)
}

func TestBindings_PreserveOrder(t *testing.T) {
	s := newTestStore(t)
	fID := insertTestFile(t, s, "m.py", "m")
	scID, err := s.InsertScope(&Scope{FileID: fID, FQN: "m.f", Kind: "function"})
	require.NoError(t, err)

	// Insert out of ordinal order; the query must sort by ord.
	for _, b := range []Binding{
		{ScopeID: scID, Name: "c", FQN: "m.f.c", Ord: 2},
		{ScopeID: scID, Name: "a", FQN: "m.f.a", Ord: 0},
		{ScopeID: scID, Name: "b", FQN: "m.f.b", Ord: 1},
	} {
		_, err := s.InsertBinding(&b)
		require.NoError(t, err)
	}

	got, err := s.BindingsByScope(scID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
	assert.Equal(t, "c", got[2].Name)
}

func TestDefAt_CoversByteOffset(t *testing.T) {
	s := newTestStore(t)
	fID := insertTestFile(t, s, "m.py", "m")

	_, err := s.InsertDef(&Def{
		FileID: fID, FQN: "m.x", Name: "x",
		Span: Span{StartByte: 0, EndByte: 1, EndCol: 1},
	})
	require.NoError(t, err)

	d, err := s.DefAt(fID, 0)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "m.x", d.FQN)

	// End offsets are exclusive.
	d, err = s.DefAt(fID, 1)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRefs_ByFQNAcrossFiles(t *testing.T) {
	s := newTestStore(t)
	f1 := insertTestFile(t, s, "a.py", "a")
	f2 := insertTestFile(t, s, "b.py", "b")

	for _, r := range []Ref{
		{FileID: f2, FQN: "a.x", Name: "x", Span: Span{StartByte: 10, EndByte: 11}},
		{FileID: f1, FQN: "a.x", Name: "x", Span: Span{StartByte: 4, EndByte: 5}},
		{FileID: f1, FQN: "", Name: "len", Span: Span{StartByte: 0, EndByte: 3}},
	} {
		_, err := s.InsertRef(&r)
		require.NoError(t, err)
	}

	refs, err := s.RefsByFQN("a.x")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	// Ordered by file then position.
	assert.Equal(t, f1, refs[0].FileID)
	assert.Equal(t, f2, refs[1].FileID)
}

func TestDeleteFileData_RemovesFactsKeepsFile(t *testing.T) {
	s := newTestStore(t)
	fID := insertTestFile(t, s, "m.py", "m")

	scID, err := s.InsertScope(&Scope{FileID: fID, FQN: "m", Kind: "module"})
	require.NoError(t, err)
	_, err = s.InsertBinding(&Binding{ScopeID: scID, Name: "x", FQN: "m.x"})
	require.NoError(t, err)
	_, err = s.InsertDef(&Def{FileID: fID, FQN: "m.x", Name: "x"})
	require.NoError(t, err)
	_, err = s.InsertRef(&Ref{FileID: fID, FQN: "m.x", Name: "x"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFileData(fID))

	scopes, err := s.ScopesByFile(fID)
	require.NoError(t, err)
	assert.Empty(t, scopes)
	defs, err := s.DefsByFile(fID)
	require.NoError(t, err)
	assert.Empty(t, defs)
	refs, err := s.RefsByFile(fID)
	require.NoError(t, err)
	assert.Empty(t, refs)

	f, err := s.FileByPath("m.py")
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestBlastRadius_FilesReferencingFQNs(t *testing.T) {
	s := newTestStore(t)
	f1 := insertTestFile(t, s, "a.py", "a")
	f2 := insertTestFile(t, s, "b.py", "b")

	_, err := s.InsertDef(&Def{FileID: f1, FQN: "a.x", Name: "x"})
	require.NoError(t, err)
	_, err = s.InsertRef(&Ref{FileID: f2, FQN: "a.x", Name: "x"})
	require.NoError(t, err)

	fqns, err := s.DefFQNsByFile(f1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.x"}, fqns)

	files, err := s.FilesReferencingFQNs(fqns)
	require.NoError(t, err)
	assert.Equal(t, []int64{f2}, files)

	none, err := s.FilesReferencingFQNs(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFilesInModule_PrefixMatch(t *testing.T) {
	s := newTestStore(t)
	insertTestFile(t, s, "pkg/__init__.py", "pkg")
	insertTestFile(t, s, "pkg/sub.py", "pkg.sub")
	insertTestFile(t, s, "pkgx.py", "pkgx")

	files, err := s.FilesInModule("pkg")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "pkg/__init__.py", files[0].Path)
	assert.Equal(t, "pkg/sub.py", files[1].Path)
}

func TestMetadata_SetGetOverwrite(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMeta("schema_version", "1"))
	require.NoError(t, s.SetMeta("schema_version", "2"))

	v, err = s.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestContentHash_IsStable(t *testing.T) {
	a := ContentHash([]byte("x = 1\n"))
	b := ContentHash([]byte("x = 1\n"))
	c := ContentHash([]byte("x = 2\n"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
