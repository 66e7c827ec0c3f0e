package convert

import (
	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

func cvtBinaryOperator(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	op := n.Child("operator")
	if op == nil {
		invariantf(n, "binary operator without an operator token")
	}
	return &cooked.Op{
		OpTok: op,
		Args:  []cooked.Node{cvt(n.Child("left"), ctx), cvt(n.Child("right"), ctx)},
	}
}

func cvtUnaryOperator(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	op := n.Child("operator")
	if op == nil {
		// not_operator carries its keyword without a field name.
		for _, ch := range n.Children {
			if ch.Sym == cst.SymKeyword || ch.Sym == cst.SymOperator {
				op = ch
				break
			}
		}
	}
	if op == nil {
		invariantf(n, "unary operator without an operator token")
	}
	arg := n.Child("argument")
	if arg == nil {
		arg = n.Named()[0]
	}
	return &cooked.Op{OpTok: op, Args: []cooked.Node{cvt(arg, ctx)}}
}

// cvtComparison keeps a chained comparison (a < b < c) as one unit: operands
// and operator tokens in source order, one more operand than operators.
func cvtComparison(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Compare{}
	for _, ch := range n.Children {
		if ch.Sym == cst.SymOperator || ch.Sym == cst.SymKeyword {
			out.OpToks = append(out.OpToks, ch)
			continue
		}
		if !ch.Sym.IsPunct() {
			out.Args = append(out.Args, cvt(ch, ctx))
		}
	}
	if len(out.Args) != len(out.OpToks)+1 {
		invariantf(n, "comparison shape mismatch: %d operands, %d operators",
			len(out.Args), len(out.OpToks))
	}
	return out
}

// cvtConditional converts `then if test else alt`; the children arrive in
// source order, so the test is the middle named child.
func cvtConditional(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	named := n.Named()
	if len(named) != 3 {
		invariantf(n, "conditional expression expects 3 children, got %d", len(named))
	}
	return &cooked.Cond{
		Test: cvt(named[1], ctx),
		Then: cvt(named[0], ctx),
		Else: cvt(named[2], ctx),
	}
}

func cvtCall(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	fn := n.Child("function")
	if fn == nil {
		invariantf(n, "call without a function slot")
	}
	out := &cooked.Call{Fn: cvt(fn, ctx)}
	args := n.Child("arguments")
	if args == nil {
		invariantf(n, "call without an argument list")
	}
	if args.Sym == cst.SymGeneratorExpression {
		// f(x for x in xs): the bare generator is the single argument.
		out.Args = []cooked.Node{cvt(args, ctx)}
		return out
	}
	out.Args = cvtEach(args.Named(), ctx)
	return out
}

// cvtAttribute converts a.b. The object is always a reference; the binding
// context flows only into the attribute position. A bound attribute marks
// the Name but does not enter the local scope's binding set, since it lives
// on the object, not in the scope.
func cvtAttribute(n *cst.Node, ctx Ctx) cooked.Node {
	attr := n.Child("attribute")
	if attr == nil || attr.Sym != cst.SymIdentifier {
		invariantf(n, "attribute access without an attribute identifier")
	}
	return &cooked.Attribute{
		Value: cvt(n.Child("object"), ctx.binds(false)),
		Attr:  &cooked.Name{Binds: ctx.lhsBinds, Tok: attr},
	}
}

// cvtSubscript converts a[i]. A subscript target binds nothing: both the
// value and every index are references even on the left of an assignment.
func cvtSubscript(n *cst.Node, ctx Ctx) cooked.Node {
	ref := ctx.binds(false)
	out := &cooked.Subscript{Value: cvt(n.Child("value"), ref)}
	for _, ch := range n.ChildrenByField("subscript") {
		out.Indexes = append(out.Indexes, cvt(ch, ref))
	}
	return out
}

// cvtSlice assembles lower:upper:step from the positional colon layout.
func cvtSlice(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	slots := [3]cooked.Node{cooked.Omitted, cooked.Omitted, cooked.Omitted}
	slot := 0
	for _, ch := range n.Children {
		if ch.Sym == cst.SymColon {
			slot++
			continue
		}
		if ch.Sym.IsPunct() {
			continue
		}
		if slot > 2 {
			invariantf(n, "slice with more than two colons")
		}
		slots[slot] = cvt(ch, ctx)
	}
	return &cooked.Slice{Lower: slots[0], Upper: slots[1], Step: slots[2]}
}

// cvtComprehension converts the four comprehension forms. Comprehensions do
// not open a scope here: their targets bind in the enclosing scope, which
// matches how the binding set is consumed downstream.
func cvtComprehension(n *cst.Node, ctx Ctx, kind cooked.CompKind) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Comp{Kind: kind, Elt: cvt(n.Child("body"), ctx)}
	for _, ch := range n.Named() {
		switch ch.Sym {
		case cst.SymForInClause, cst.SymIfClause:
			out.Clauses = append(out.Clauses, cvt(ch, ctx))
		}
	}
	if len(out.Clauses) == 0 {
		invariantf(n, "comprehension without a for clause")
	}
	return out
}

func cvtYield(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	from := false
	for _, ch := range n.Children {
		if ch.Sym == cst.SymKeyword && ch.Text == "from" {
			from = true
			break
		}
	}
	return &cooked.Yield{Value: cvtFirstOpt(n, ctx), From: from}
}

// cvtString converts one string literal, keeping interpolated expressions
// from f-strings as references.
func cvtString(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	return &cooked.Str{Toks: []*cst.Node{n}, Interps: stringInterps(n, ctx)}
}

// cvtConcatenatedString flattens adjacent literals into one Str.
func cvtConcatenatedString(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Str{}
	for _, ch := range n.Named() {
		if ch.Sym != cst.SymString {
			invariantf(ch, "concatenated string holds string literals only")
		}
		out.Toks = append(out.Toks, ch)
		out.Interps = append(out.Interps, stringInterps(ch, ctx)...)
	}
	return out
}

func stringInterps(n *cst.Node, ctx Ctx) []cooked.Node {
	var out []cooked.Node
	for _, ch := range n.Children {
		if ch.Sym == cst.SymInterpolation {
			out = append(out, cvt(ch, ctx.binds(false)))
		}
	}
	return out
}
