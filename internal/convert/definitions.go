package convert

import (
	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

// freshCtx starts a new lexical scope with binding mode reset. Used at the
// four scope-opening productions: module, function, lambda, class body.
func freshCtx() Ctx {
	return Ctx{scope: newScope()}
}

// cvtFunctionDefinition converts a def. The function name binds in the
// enclosing scope; parameters bind in the fresh inner scope while their
// annotations and defaults, like the return type, are evaluated at
// definition time and so convert in the enclosing context.
func cvtFunctionDefinition(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	nm := cvt(n.Child("name"), ctx.binds(true))

	inner := freshCtx()
	params := cvtParameterList(n.Child("parameters"), inner, ctx)
	ret := cvtOpt(n.Child("return_type"), ctx)
	body := cvt(n.Child("body"), inner)

	return &cooked.FuncDef{
		Name:       nm,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Bindings:   inner.scope.Bindings(),
		Span:       n.Span,
	}
}

// cvtLambda converts a lambda: a fresh anonymous scope, no name binding.
func cvtLambda(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	inner := freshCtx()
	params := cvtParameterList(n.Child("parameters"), inner, ctx)
	body := cvt(n.Child("body"), inner)
	return &cooked.Lambda{
		Params:   params,
		Body:     body,
		Bindings: inner.scope.Bindings(),
		Span:     n.Span,
	}
}

// cvtClassDefinition converts a class. The class name binds in the enclosing
// scope and the base list converts there too; only the body gets the fresh
// scope.
func cvtClassDefinition(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	nm := cvt(n.Child("name"), ctx.binds(true))

	var bases []cooked.Node
	if sup := n.Child("superclasses"); sup != nil {
		bases = cvtEach(sup.Named(), ctx)
	}

	inner := freshCtx()
	body := cvt(n.Child("body"), inner)

	return &cooked.ClassDef{
		Name:     nm,
		Bases:    bases,
		Body:     body,
		Bindings: inner.scope.Bindings(),
		Span:     n.Span,
	}
}

func cvtDecorated(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Decorated{}
	for _, ch := range n.Named() {
		if ch.Sym == cst.SymDecorator {
			out.Decorators = append(out.Decorators, cvt(ch, ctx))
			continue
		}
		out.Definition = cvt(ch, ctx)
	}
	if out.Definition == nil {
		invariantf(n, "decorated definition without a definition")
	}
	return out
}

// cvtParameterList converts a (possibly absent) parameter list. Parameter
// names bind in the inner scope; annotations and defaults convert in the
// outer one. Bare separator tokens are already filtered out upstream.
func cvtParameterList(params *cst.Node, inner, outer Ctx) []cooked.Node {
	if params == nil {
		return nil
	}
	var out []cooked.Node
	for _, ch := range params.Named() {
		out = append(out, cvtParameter(ch, inner, outer))
	}
	return out
}

func cvtParameter(n *cst.Node, inner, outer Ctx) cooked.Node {
	p := &cooked.Param{Annotation: cooked.Omitted, Default: cooked.Omitted}
	switch n.Sym {
	case cst.SymIdentifier, cst.SymTuplePattern:
		p.Target = cvt(n, inner.binds(true))
	case cst.SymDefaultParameter:
		p.Target = cvt(n.Child("name"), inner.binds(true))
		p.Default = cvt(n.Child("value"), outer.binds(false))
	case cst.SymTypedParameter:
		p.Target = cvt(n.Named()[0], inner.binds(true))
		p.Annotation = cvt(n.Child("type"), outer.binds(false))
	case cst.SymTypedDefaultParameter:
		p.Target = cvt(n.Child("name"), inner.binds(true))
		p.Annotation = cvt(n.Child("type"), outer.binds(false))
		p.Default = cvt(n.Child("value"), outer.binds(false))
	case cst.SymListSplatPattern:
		p.Target = cvt(n.Named()[0], inner.binds(true))
		p.Splat = cooked.SplatStar
	case cst.SymDictionarySplatPattern:
		p.Target = cvt(n.Named()[0], inner.binds(true))
		p.Splat = cooked.SplatDoubleStar
	default:
		invariantf(n, "unexpected parameter shape")
	}
	return p
}

// cvtSplatPattern converts *rest / **rest in an assignment target, keeping
// the binding context flowing into the wrapped pattern.
func cvtSplatPattern(n *cst.Node, ctx Ctx) cooked.Node {
	inner := cvt(n.Named()[0], ctx)
	if n.Sym == cst.SymDictionarySplatPattern {
		return &cooked.DoubleStar{Value: inner}
	}
	return &cooked.Star{Value: inner}
}
