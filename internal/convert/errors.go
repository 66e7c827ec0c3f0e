package convert

import (
	"fmt"

	"github.com/pcallahan/pith/internal/cst"
)

// Error is a fatal conversion failure: either a structural invariant
// violation (the tree does not have the shape the grammar promises — a
// parser/grammar mismatch, not a user error) or an intentionally unhandled
// production. It carries the offending node's symbol and span for diagnosis.
type Error struct {
	Sym         cst.Symbol
	Span        cst.Span
	Msg         string
	Unsupported bool
}

func (e *Error) Error() string {
	kind := "invariant violation"
	if e.Unsupported {
		kind = "unsupported production"
	}
	return fmt.Sprintf("convert: %s: %s at line %d, column %d: %s",
		kind, e.Sym, e.Span.StartLine+1, e.Span.StartCol, e.Msg)
}

// invariantf aborts the current conversion with a structural invariant
// violation. The panic is recovered at the Tree boundary; the ~90 rules
// stay free of error plumbing this way.
func invariantf(n *cst.Node, format string, args ...any) {
	panic(&Error{Sym: n.Sym, Span: n.Span, Msg: fmt.Sprintf(format, args...)})
}

// unsupported aborts with the distinct unsupported-production error, so
// grammar-table gaps are diagnosable separately from genuine bugs.
func unsupported(n *cst.Node) {
	panic(&Error{Sym: n.Sym, Span: n.Span, Msg: "intentionally not handled", Unsupported: true})
}

// assertNoBinds enforces the binding-context invariant for productions that
// may never appear on the left-hand side.
func assertNoBinds(n *cst.Node, ctx Ctx) {
	if ctx.lhsBinds {
		invariantf(n, "production cannot appear in a binding context")
	}
}
