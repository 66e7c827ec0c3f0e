package pith

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pcallahan/pith/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQueryFixture indexes the standard fixture plus a file using a builtin,
// returning a ready QueryBuilder.
func newQueryFixture(t *testing.T) *QueryBuilder {
	t.Helper()
	e := newTestEngine(t)
	dir := writeFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tools.py"),
		[]byte("def size(items):\n    return len(items)\n"), 0o644))
	indexFixture(t, e, dir)
	return e.Query()
}

func TestFQNAt_DefAndRefPositions(t *testing.T) {
	q := newQueryFixture(t)

	// Definition site: `def greet` on line 2, name at cols 4-9.
	fqn, err := q.FQNAt("app.py", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, "app.greet", fqn)

	// Reference site: `name` on line 3 at col 21.
	fqn, err = q.FQNAt("app.py", 3, 21)
	require.NoError(t, err)
	assert.Equal(t, "app.greet.name", fqn)

	// Whitespace resolves to nothing.
	fqn, err = q.FQNAt("app.py", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, fqn)
}

func TestDefinitionAt_ResolvesParamFromUse(t *testing.T) {
	q := newQueryFixture(t)

	locs, err := q.DefinitionAt("app.py", 3, 21)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "app.py", locs[0].File)
	assert.Equal(t, 2, locs[0].StartLine)
	assert.Equal(t, 10, locs[0].StartCol)
}

func TestDefinitionAt_UnknownFileOrPosition(t *testing.T) {
	q := newQueryFixture(t)

	locs, err := q.DefinitionAt("missing.py", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, locs)

	locs, err = q.DefinitionAt("app.py", 999, 0)
	require.NoError(t, err)
	assert.Nil(t, locs)
}

func TestReferencesTo_LocalVariable(t *testing.T) {
	q := newQueryFixture(t)

	locs, err := q.ReferencesTo("app.greet.msg")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 4, locs[0].StartLine)
	assert.Equal(t, 11, locs[0].StartCol)
}

func TestReferencesAt_FromDefinitionSite(t *testing.T) {
	q := newQueryFixture(t)

	// `msg = ...` on line 3, def at cols 4-7.
	locs, err := q.ReferencesAt("app.py", 3, 4)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 4, locs[0].StartLine)
}

func TestBindingsInScope_Ordered(t *testing.T) {
	q := newQueryFixture(t)

	bindings, err := q.BindingsInScope("app")
	require.NoError(t, err)
	require.Len(t, bindings, 3)
	assert.Equal(t, "os", bindings[0].Name)
	assert.Equal(t, "greet", bindings[1].Name)
	assert.Equal(t, "Greeter", bindings[2].Name)

	inner, err := q.BindingsInScope("app.greet")
	require.NoError(t, err)
	require.Len(t, inner, 2)
	assert.Equal(t, "name", inner[0].Name)
	assert.Equal(t, "msg", inner[1].Name)

	none, err := q.BindingsInScope("app.nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestScopesForFile_TreeShape(t *testing.T) {
	q := newQueryFixture(t)

	scopes, err := q.ScopesForFile("app.py")
	require.NoError(t, err)
	require.Len(t, scopes, 4)

	byFQN := make(map[string]*store.Scope, len(scopes))
	for _, sc := range scopes {
		byFQN[sc.FQN] = sc
	}
	require.Contains(t, byFQN, "app.Greeter.run")
	run := byFQN["app.Greeter.run"]
	assert.Equal(t, "function", run.Kind)
	require.NotNil(t, run.ParentScopeID)
	assert.Equal(t, byFQN["app.Greeter"].ID, *run.ParentScopeID)
}

func TestDefsInModule_CollectsPerFileDefs(t *testing.T) {
	q := newQueryFixture(t)

	defs, err := q.DefsInModule("app")
	require.NoError(t, err)
	fqns := make([]string, len(defs))
	for i, d := range defs {
		fqns[i] = d.FQN
	}
	assert.Contains(t, fqns, "app.greet")
	assert.Contains(t, fqns, "app.Greeter.run.self")
	assert.NotContains(t, fqns, "tools.size")
}

func TestUnresolvedRefs_Builtins(t *testing.T) {
	q := newQueryFixture(t)

	refs, err := q.UnresolvedRefs("tools.py")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "len", refs[0].Name)
}

func TestSpanCovers_Boundaries(t *testing.T) {
	s := store.Span{StartLine: 2, StartCol: 4, EndLine: 2, EndCol: 9}

	assert.True(t, spanCovers(s, 2, 4))
	assert.True(t, spanCovers(s, 2, 8))
	assert.False(t, spanCovers(s, 2, 9), "end column is exclusive")
	assert.False(t, spanCovers(s, 2, 3))
	assert.False(t, spanCovers(s, 1, 5))
	assert.False(t, spanCovers(s, 3, 5))
}
