// Package resolve is the second pass over a cooked AST: it assigns
// fully-qualified names to binding and reference occurrences and collects
// the per-file facts (scopes, bindings, definitions, references) that the
// store persists.
//
// Resolution is purely lexical. A reference that reaches the end of the
// scope chain without a match stays unresolved (empty FQN); builtins and
// cross-file imports are left to consumers with a global view.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

// ScopeKind tags the four scope-opening constructs.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeFunction ScopeKind = "function"
	ScopeClass    ScopeKind = "class"
	ScopeLambda   ScopeKind = "lambda"
)

// Scope is one lexical scope in a file.
type Scope struct {
	FQN    string
	Kind   ScopeKind
	Parent string // FQN of the enclosing scope; "" for the module scope
	Span   cst.Span
}

// Binding is one name in a scope's binding set, in insertion order.
type Binding struct {
	ScopeFQN string
	Name     string
	FQN      string
	Ord      int
}

// Def is a binding occurrence at a concrete source location.
type Def struct {
	FQN  string
	Name string
	Span cst.Span
}

// Ref is a reference occurrence. FQN is empty when lexical resolution found
// no binding (builtins, attributes, names from star imports).
type Ref struct {
	FQN  string
	Name string
	Span cst.Span
}

// FileFacts is everything resolution derives from one file.
type FileFacts struct {
	Path     string
	Module   string // module FQN, e.g. "pkg.mod"
	Scopes   []Scope
	Bindings []Binding
	Defs     []Def
	Refs     []Ref
}

// ModuleFQN derives the dotted module name for a file path relative to the
// project root: "pkg/sub/mod.py" becomes "pkg.sub.mod", and a package
// __init__.py maps to the package itself.
func ModuleFQN(relPath string) string {
	p := filepath.ToSlash(relPath)
	p = strings.TrimSuffix(p, filepath.Ext(p))
	p = strings.TrimSuffix(p, "/__init__")
	return strings.ReplaceAll(strings.Trim(p, "/"), "/", ".")
}

// File resolves one cooked module. Name nodes in the tree are annotated with
// their FQNs in place; the returned facts reference the same strings.
func File(relPath string, mod *cooked.Module) *FileFacts {
	r := &resolver{
		facts: &FileFacts{Path: relPath, Module: ModuleFQN(relPath)},
	}
	r.pushScope(r.facts.Module, ScopeModule, "", mod.Span, mod.Bindings, mod.Body...)
	r.each(mod.Body)
	r.popScope()
	return r.facts
}

type frame struct {
	fqn       string
	kind      ScopeKind
	names     map[string]struct{}
	globals   map[string]struct{}
	nonlocals map[string]struct{}
}

type resolver struct {
	facts     *FileFacts
	stack     []*frame
	lambdaSeq int
}

// pushScope records the scope and its binding set, then makes it current.
// The global/nonlocal declaration sets are collected up front because the
// declarations apply to the whole scope, not just statements after them.
func (r *resolver) pushScope(fqn string, kind ScopeKind, parent string, span cst.Span, bindings []string, body ...cooked.Node) {
	f := &frame{
		fqn:       fqn,
		kind:      kind,
		names:     make(map[string]struct{}, len(bindings)),
		globals:   make(map[string]struct{}),
		nonlocals: make(map[string]struct{}),
	}
	for _, n := range bindings {
		f.names[n] = struct{}{}
	}
	collectDecls(body, f)

	r.facts.Scopes = append(r.facts.Scopes, Scope{FQN: fqn, Kind: kind, Parent: parent, Span: span})
	for i, n := range bindings {
		r.facts.Bindings = append(r.facts.Bindings, Binding{
			ScopeFQN: fqn, Name: n, FQN: fqn + "." + n, Ord: i,
		})
	}
	r.stack = append(r.stack, f)
}

func (r *resolver) popScope() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *resolver) current() *frame { return r.stack[len(r.stack)-1] }

func (r *resolver) moduleFQN() string { return r.stack[0].fqn }

// bindingFQN names a binding occurrence in the current scope, honoring
// global and nonlocal declarations.
func (r *resolver) bindingFQN(name string) string {
	f := r.current()
	if _, ok := f.globals[name]; ok {
		return r.moduleFQN() + "." + name
	}
	if _, ok := f.nonlocals[name]; ok {
		if fqn := r.lookupEnclosing(name); fqn != "" {
			return fqn
		}
	}
	return f.fqn + "." + name
}

// lookup resolves a reference through the scope chain. Class scopes are
// visible only to code directly in the class body, so intermediate class
// frames are skipped.
func (r *resolver) lookup(name string) string {
	for i := len(r.stack) - 1; i >= 0; i-- {
		f := r.stack[i]
		if f.kind == ScopeClass && i != len(r.stack)-1 {
			continue
		}
		if _, ok := f.globals[name]; ok {
			return r.moduleFQN() + "." + name
		}
		if _, ok := f.names[name]; ok {
			return f.fqn + "." + name
		}
	}
	return ""
}

// lookupEnclosing is lookup restricted to scopes strictly above the current
// one, for nonlocal targets.
func (r *resolver) lookupEnclosing(name string) string {
	for i := len(r.stack) - 2; i >= 1; i-- {
		f := r.stack[i]
		if f.kind == ScopeClass {
			continue
		}
		if _, ok := f.names[name]; ok {
			return f.fqn + "." + name
		}
	}
	return ""
}

func (r *resolver) nextLambdaFQN(parent string) string {
	r.lambdaSeq++
	return fmt.Sprintf("%s.<lambda#%d>", parent, r.lambdaSeq)
}

// collectDecls gathers global/nonlocal declarations from a scope body
// without descending into nested scopes.
func collectDecls(body []cooked.Node, f *frame) {
	for _, n := range body {
		switch v := n.(type) {
		case *cooked.Global:
			for _, nm := range v.Names {
				if name, ok := nm.(*cooked.Name); ok {
					f.globals[name.Tok.Text] = struct{}{}
				}
			}
		case *cooked.Nonlocal:
			for _, nm := range v.Names {
				if name, ok := nm.(*cooked.Name); ok {
					f.nonlocals[name.Tok.Text] = struct{}{}
				}
			}
		case *cooked.Suite:
			collectDecls(v.Stmts, f)
		case *cooked.If:
			collectDecls([]cooked.Node{v.Then, v.Else}, f)
			collectDecls(v.Elifs, f)
		case *cooked.ElifClause:
			collectDecls([]cooked.Node{v.Then}, f)
		case *cooked.For:
			collectDecls([]cooked.Node{v.Body, v.Else}, f)
		case *cooked.While:
			collectDecls([]cooked.Node{v.Body, v.Else}, f)
		case *cooked.Try:
			collectDecls([]cooked.Node{v.Body, v.Else, v.Finally}, f)
			collectDecls(v.Handlers, f)
		case *cooked.Except:
			collectDecls([]cooked.Node{v.Body}, f)
		case *cooked.With:
			collectDecls([]cooked.Node{v.Body}, f)
		}
	}
}
