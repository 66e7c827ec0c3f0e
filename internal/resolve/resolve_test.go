package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcallahan/pith/internal/convert"
	"github.com/pcallahan/pith/internal/cst"
)

func factsFor(t *testing.T, path, src string) *FileFacts {
	t.Helper()
	root, _, err := cst.Parse(context.Background(), []byte(src), cst.DialectPython3, cst.NewBuilder())
	require.NoError(t, err)
	mod, err := convert.Tree(root)
	require.NoError(t, err)
	return File(path, mod)
}

func refFQNs(f *FileFacts, name string) []string {
	var out []string
	for _, r := range f.Refs {
		if r.Name == name {
			out = append(out, r.FQN)
		}
	}
	return out
}

func defFQNs(f *FileFacts) []string {
	out := make([]string, len(f.Defs))
	for i, d := range f.Defs {
		out[i] = d.FQN
	}
	return out
}

func TestModuleFQN(t *testing.T) {
	assert.Equal(t, "pkg.sub.mod", ModuleFQN("pkg/sub/mod.py"))
	assert.Equal(t, "pkg.sub", ModuleFQN("pkg/sub/__init__.py"))
	assert.Equal(t, "mod", ModuleFQN("mod.py"))
}

func TestFile_ModuleScopeAndBindings(t *testing.T) {
	f := factsFor(t, "m.py", "x = 1\ny = x\n")

	require.Len(t, f.Scopes, 1)
	assert.Equal(t, "m", f.Scopes[0].FQN)
	assert.Equal(t, ScopeModule, f.Scopes[0].Kind)
	assert.Empty(t, f.Scopes[0].Parent)

	require.Len(t, f.Bindings, 2)
	assert.Equal(t, "m.x", f.Bindings[0].FQN)
	assert.Equal(t, 0, f.Bindings[0].Ord)
	assert.Equal(t, "m.y", f.Bindings[1].FQN)

	assert.Equal(t, []string{"m.x", "m.y"}, defFQNs(f))
	assert.Equal(t, []string{"m.x"}, refFQNs(f, "x"))
}

func TestFile_LocalResolvesBeforeGlobal(t *testing.T) {
	f := factsFor(t, "m.py", "x = 1\ndef f():\n    x = 2\n    return x\n")

	assert.Equal(t, []string{"m.f.x"}, refFQNs(f, "x"))
}

func TestFile_FreeVariableResolvesToEnclosingScope(t *testing.T) {
	f := factsFor(t, "m.py", "x = 1\ndef f():\n    return x\n")

	assert.Equal(t, []string{"m.x"}, refFQNs(f, "x"))
}

func TestFile_UnresolvedReferenceKeepsEmptyFQN(t *testing.T) {
	f := factsFor(t, "m.py", "y = len(xs)\n")

	assert.Equal(t, []string{""}, refFQNs(f, "len"))
	assert.Equal(t, []string{""}, refFQNs(f, "xs"))
}

func TestFile_GlobalRebindingResolvesToModuleScope(t *testing.T) {
	// A global-declared assignment is a reference occurrence: the slot it
	// writes belongs to the module scope.
	f := factsFor(t, "m.py", "def f():\n    global total\n    total = 1\n")

	assert.Equal(t, []string{"m.f"}, defFQNs(f))
	assert.Equal(t, []string{"m.total"}, refFQNs(f, "total"))
}

func TestFile_NonlocalBindsIntoEnclosingFunction(t *testing.T) {
	src := "def outer():\n    x = 0\n    def inner():\n        nonlocal x\n        x = 1\n"
	f := factsFor(t, "m.py", src)

	assert.Contains(t, defFQNs(f), "m.outer.x")
	// The nonlocal rebinding is a reference to the outer slot, not a
	// fresh definition.
	assert.Equal(t, []string{"m.outer.x"}, refFQNs(f, "x"))
}

func TestFile_ClassScopeInvisibleToMethods(t *testing.T) {
	src := "class C:\n    attr = 1\n    def m(self):\n        return attr\n"
	f := factsFor(t, "m.py", src)

	// attr in the method body must NOT resolve to the class attribute.
	assert.Equal(t, []string{""}, refFQNs(f, "attr"))
}

func TestFile_ClassBodySeesItsOwnBindings(t *testing.T) {
	src := "class C:\n    a = 1\n    b = a\n"
	f := factsFor(t, "m.py", src)

	assert.Equal(t, []string{"m.C.a"}, refFQNs(f, "a"))
}

func TestFile_NestedScopeFQNs(t *testing.T) {
	src := "class C:\n    def m(self):\n        v = 1\n"
	f := factsFor(t, "m.py", src)

	fqns := make([]string, len(f.Scopes))
	for i, s := range f.Scopes {
		fqns[i] = s.FQN
	}
	assert.Equal(t, []string{"m", "m.C", "m.C.m"}, fqns)
	assert.Equal(t, "m.C", f.Scopes[2].Parent)
	assert.Contains(t, defFQNs(f), "m.C.m.v")
}

func TestFile_LambdaScopesAreDistinct(t *testing.T) {
	f := factsFor(t, "m.py", "f = lambda a: a\ng = lambda a: a\n")

	var lambdas []Scope
	for _, s := range f.Scopes {
		if s.Kind == ScopeLambda {
			lambdas = append(lambdas, s)
		}
	}
	require.Len(t, lambdas, 2)
	assert.NotEqual(t, lambdas[0].FQN, lambdas[1].FQN)

	// Each lambda parameter resolves inside its own scope.
	assert.Equal(t, []string{lambdas[0].FQN + ".a", lambdas[1].FQN + ".a"}, refFQNs(f, "a"))
}

func TestFile_DefaultResolvesInEnclosingScope(t *testing.T) {
	f := factsFor(t, "m.py", "x = 1\ndef f(a=x):\n    x = 2\n")

	// The default's x is the module binding, not the local one.
	assert.Equal(t, []string{"m.x"}, refFQNs(f, "x"))
}

func TestFile_AttributeRefsStayUnresolved(t *testing.T) {
	f := factsFor(t, "m.py", "v = obj.field\n")

	assert.Equal(t, []string{""}, refFQNs(f, "field"))
	assert.Equal(t, []string{""}, refFQNs(f, "obj"))
}

func TestFile_DefSpansAnchorTheSource(t *testing.T) {
	src := "alpha = 1\n"
	f := factsFor(t, "m.py", src)

	require.Len(t, f.Defs, 1)
	d := f.Defs[0]
	assert.Equal(t, "alpha", src[d.Span.StartByte:d.Span.EndByte])
}

func TestFile_ImportDefs(t *testing.T) {
	f := factsFor(t, "m.py", "import os.path\nfrom sys import argv as a\n")

	assert.Equal(t, []string{"m.path", "m.a"}, defFQNs(f))
}
