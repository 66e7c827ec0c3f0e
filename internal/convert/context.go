// Package convert turns a concrete syntax tree into the cooked AST,
// classifying every identifier occurrence as a binding or a reference and
// tracking per-scope declared names along the way.
//
// Python needs two passes to resolve local variables; this is the first.
// The second (FQN resolution) lives in internal/resolve.
package convert

// Scope accumulates the names bound in one lexical scope (module, function,
// lambda, or class body), in insertion order, together with the names
// declared global or nonlocal there.
//
// A Scope is owned exclusively by the conversion of its scope's body: it is
// created at the scope boundary, mutated only through bind/declareGlobal/
// declareNonlocal while that body converts, and captured into the
// scope-defining cooked node when the scope closes. It is never shared
// between sibling or parent scopes.
type Scope struct {
	names     []string
	seen      map[string]struct{}
	globals   map[string]struct{}
	nonlocals map[string]struct{}
}

func newScope() *Scope {
	return &Scope{
		seen:      make(map[string]struct{}),
		globals:   make(map[string]struct{}),
		nonlocals: make(map[string]struct{}),
	}
}

// bind records a binding of name in this scope. Idempotent: repeated
// bindings of the same name keep the first insertion position.
func (s *Scope) bind(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

func (s *Scope) declareGlobal(name string)   { s.globals[name] = struct{}{} }
func (s *Scope) declareNonlocal(name string) { s.nonlocals[name] = struct{}{} }

// overridden reports whether name was declared global or nonlocal in this
// scope, which suppresses binding it locally.
func (s *Scope) overridden(name string) bool {
	if _, ok := s.globals[name]; ok {
		return true
	}
	_, ok := s.nonlocals[name]
	return ok
}

// Bindings returns the bound names in insertion order.
func (s *Scope) Bindings() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Ctx is the conversion context threaded through the recursion.
//
// lhsBinds is passed by value: a parent converts a child in a binding
// context by calling binds(true), which copies the Ctx without touching the
// shared Scope. The Scope pointer is the per-scope accumulator; it is
// replaced wholesale at scope boundaries and never nested additively.
type Ctx struct {
	lhsBinds bool
	scope    *Scope
}

func newCtx() Ctx {
	return Ctx{scope: newScope()}
}

// binds returns a copy of the context with lhsBinds set to b. The scope is
// shared; only the binding mode changes.
func (c Ctx) binds(b bool) Ctx {
	c.lhsBinds = b
	return c
}
