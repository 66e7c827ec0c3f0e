package convert

import (
	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

func cvtExpressionStatement(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	named := n.Named()
	if len(named) != 1 {
		invariantf(n, "expected one child, got %d", len(named))
	}
	inner := cvt(named[0], ctx)
	switch inner.(type) {
	case *cooked.Assign, *cooked.AnnAssign, *cooked.AugAssign:
		return inner
	}
	return &cooked.ExprStmt{Expr: inner}
}

// cvtAssignment handles both plain and annotated assignment. The target is
// the binding slot; annotation and value are always references. A bare
// annotation (x: int) still binds its target, since it declares the name.
func cvtAssignment(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	left := n.Child("left")
	if left == nil {
		invariantf(n, "assignment without a left slot")
	}
	if typ := n.Child("type"); typ != nil {
		return &cooked.AnnAssign{
			Target:     cvt(left, ctx.binds(true)),
			Annotation: cvt(typ, ctx.binds(false)),
			Value:      cvtOpt(n.Child("right"), ctx.binds(false)),
		}
	}
	right := n.Child("right")
	if right == nil {
		invariantf(n, "assignment without a right slot")
	}
	// A chained a = b = c nests the inner assignment in the right slot;
	// its own rule binds the inner target.
	return &cooked.Assign{
		Target: cvt(left, ctx.binds(true)),
		Value:  cvt(right, ctx.binds(false)),
	}
}

// cvtAugmentedAssignment converts x += e. The target is a reference, not a
// binding: augmented assignment requires the name to already exist.
func cvtAugmentedAssignment(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	op := n.Child("operator")
	if op == nil {
		invariantf(n, "augmented assignment without an operator")
	}
	return &cooked.AugAssign{
		Target: cvt(n.Child("left"), ctx.binds(false)),
		OpTok:  op,
		Value:  cvt(n.Child("right"), ctx.binds(false)),
	}
}

func cvtNamedExpression(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	return &cooked.NamedExpr{
		Target: cvt(n.Child("name"), ctx.binds(true)),
		Value:  cvt(n.Child("value"), ctx.binds(false)),
	}
}

func cvtRaise(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	exc := cooked.Omitted
	for _, ch := range n.Named() {
		if ch.Field != "cause" {
			exc = cvt(ch, ctx)
			break
		}
	}
	return &cooked.Raise{
		Exc:  exc,
		From: cvtOpt(n.Child("cause"), ctx),
	}
}

func cvtAssert(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	named := n.Named()
	if len(named) == 0 {
		invariantf(n, "assert without a test")
	}
	msg := cooked.Omitted
	if len(named) > 1 {
		msg = cvt(named[1], ctx)
	}
	return &cooked.Assert{Test: cvt(named[0], ctx), Msg: msg}
}

// cvtPrint converts the python2 print statement. The chevron redirect
// (print >>f, x) contributes the destination slot.
func cvtPrint(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	dest := cooked.Omitted
	var args []cooked.Node
	for _, ch := range n.Named() {
		if ch.Sym == cst.SymChevron {
			dest = cvt(ch.Named()[0], ctx)
			continue
		}
		args = append(args, cvt(ch, ctx))
	}
	return &cooked.Print{Dest: dest, Args: args}
}

func cvtExec(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	named := n.Named()
	if len(named) == 0 {
		invariantf(n, "exec without code")
	}
	out := &cooked.Exec{Code: cvt(named[0], ctx), Globals: cooked.Omitted, Locals: cooked.Omitted}
	if len(named) > 1 {
		out.Globals = cvt(named[1], ctx)
	}
	if len(named) > 2 {
		out.Locals = cvt(named[2], ctx)
	}
	return out
}

// cvtScopeDecl handles global and nonlocal statements: the declared names
// are recorded in the current scope so later binding positions for them are
// suppressed. The name occurrences themselves are references.
func cvtScopeDecl(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	global := n.Sym == cst.SymGlobalStatement
	var names []cooked.Node
	for _, ch := range n.Named() {
		if ch.Sym != cst.SymIdentifier {
			invariantf(ch, "scope declaration lists identifiers only")
		}
		if global {
			ctx.scope.declareGlobal(ch.Text)
		} else {
			ctx.scope.declareNonlocal(ch.Text)
		}
		names = append(names, name(ch, ctx.binds(false)))
	}
	if global {
		return &cooked.Global{Names: names}
	}
	return &cooked.Nonlocal{Names: names}
}

func cvtIf(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	cond, cons := n.Child("condition"), n.Child("consequence")
	if cond == nil || cons == nil {
		invariantf(n, "if statement without a condition or consequence")
	}
	out := &cooked.If{
		Cond: cvt(cond, ctx),
		Then: cvt(cons, ctx),
		Else: cooked.Omitted,
	}
	for _, alt := range n.ChildrenByField("alternative") {
		if alt.Sym == cst.SymElseClause {
			out.Else = cvt(alt, ctx)
		} else {
			out.Elifs = append(out.Elifs, cvt(alt, ctx))
		}
	}
	return out
}

// cvtFor converts a for statement. The loop target binds in the enclosing
// function/module/class scope; loops do not open a scope of their own.
func cvtFor(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	left, right, body := n.Child("left"), n.Child("right"), n.Child("body")
	if left == nil || right == nil || body == nil {
		invariantf(n, "for statement without a target, iterable, or body")
	}
	return &cooked.For{
		Target: cvt(left, ctx.binds(true)),
		Iter:   cvt(right, ctx.binds(false)),
		Body:   cvt(body, ctx),
		Else:   cvtOpt(n.Child("alternative"), ctx),
	}
}

func cvtWhile(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	cond, body := n.Child("condition"), n.Child("body")
	if cond == nil || body == nil {
		invariantf(n, "while statement without a condition or body")
	}
	return &cooked.While{
		Cond: cvt(cond, ctx),
		Body: cvt(body, ctx),
		Else: cvtOpt(n.Child("alternative"), ctx),
	}
}

func cvtTry(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Try{
		Body:    cvt(n.Child("body"), ctx),
		Else:    cooked.Omitted,
		Finally: cooked.Omitted,
	}
	for _, ch := range n.Named() {
		switch ch.Sym {
		case cst.SymExceptClause:
			out.Handlers = append(out.Handlers, cvt(ch, ctx))
		case cst.SymElseClause:
			out.Else = cvt(ch, ctx)
		case cst.SymFinallyClause:
			out.Finally = cvt(ch, ctx)
		}
	}
	return out
}

// cvtExcept converts an except clause. The as-alias is a binding occurrence
// in the enclosing scope. Two grammar shapes occur: a flat
// (exception, alias, block) child list and an as_pattern wrapping both.
func cvtExcept(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	named := n.Named()
	if len(named) == 0 || named[len(named)-1].Sym != cst.SymBlock {
		invariantf(n, "except clause must end in a block")
	}
	body := cvt(named[len(named)-1], ctx)
	rest := named[:len(named)-1]

	exc, as := cooked.Omitted, cooked.Omitted
	switch len(rest) {
	case 0:
	case 1:
		exc = cvt(rest[0], ctx)
		if pat, ok := exc.(*cooked.AsName); ok {
			exc, as = pat.Name, pat.As
		}
	case 2:
		exc = cvt(rest[0], ctx)
		as = cvt(rest[1], ctx.binds(true))
	default:
		invariantf(n, "unexpected except clause shape")
	}
	return &cooked.Except{Exc: exc, As: as, Body: body}
}

func cvtWith(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	items := n.Named()
	if len(items) > 0 && items[0].Sym == cst.SymWithClause {
		items = items[0].Named()
	}
	var out []cooked.Node
	for _, ch := range items {
		if ch.Sym == cst.SymWithItem {
			out = append(out, cvt(ch, ctx))
		}
	}
	return &cooked.With{Items: out, Body: cvt(n.Child("body"), ctx)}
}

// cvtWithItem converts one with item; the as-alias, when present, binds.
func cvtWithItem(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	value := n.Child("value")
	if value == nil {
		value = n.Named()[0]
	}
	context := cvt(value, ctx)
	if pat, ok := context.(*cooked.AsName); ok {
		return &cooked.WithItem{Context: pat.Name, As: pat.As}
	}
	return &cooked.WithItem{Context: context, As: cooked.Omitted}
}

// cvtAsPattern converts `expr as target`: the value is a reference, the
// target a binding occurrence.
func cvtAsPattern(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	alias := n.Child("alias")
	if alias == nil {
		invariantf(n, "as pattern without an alias")
	}
	return &cooked.AsName{
		Name: cvt(n.Named()[0], ctx.binds(false)),
		As:   cvt(alias, ctx.binds(true)),
	}
}
