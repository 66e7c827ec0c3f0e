package convert

import (
	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

// cvtImport converts `import a.b, c as d`. Each clause yields an AsName:
// an aliased clause binds the alias, a plain dotted clause re-binds its
// last component as the local name.
func cvtImport(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.Import{}
	for _, ch := range n.Named() {
		switch ch.Sym {
		case cst.SymAliasedImport:
			out.Names = append(out.Names, cvt(ch, ctx))
		case cst.SymDottedName, cst.SymIdentifier:
			out.Names = append(out.Names, asNameFromDotted(ch, ctx))
		default:
			invariantf(ch, "unexpected import clause")
		}
	}
	return out
}

// cvtImportFrom converts `from x import ...`. Future imports share the rule;
// they carry no module node, so From stays omitted.
func cvtImportFrom(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.ImportFrom{From: cvtOpt(n.Child("module_name"), ctx)}
	for _, ch := range n.Named() {
		if ch.Field == "module_name" {
			continue
		}
		switch ch.Sym {
		case cst.SymWildcardImport:
			out.Names = append(out.Names, &cooked.Wildcard{})
		case cst.SymAliasedImport:
			out.Names = append(out.Names, cvt(ch, ctx))
		case cst.SymDottedName, cst.SymIdentifier:
			out.Names = append(out.Names, asNameFromDotted(ch, ctx))
		default:
			invariantf(ch, "unexpected from-import clause")
		}
	}
	return out
}

// cvtAliasedImport converts `name as alias`: the dotted name is a pure
// reference, the alias binds.
func cvtAliasedImport(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	return &cooked.AsName{
		Name: cvt(n.Child("name"), ctx),
		As:   cvt(n.Child("alias"), ctx.binds(true)),
	}
}

// cvtDottedName converts a.b.c. All components are references except the
// last, which follows the inherited binding context.
func cvtDottedName(n *cst.Node, ctx Ctx) cooked.Node {
	named := n.Named()
	if len(named) == 0 {
		invariantf(n, "empty dotted name")
	}
	out := &cooked.DottedName{Names: make([]cooked.Node, 0, len(named))}
	for i, ch := range named {
		chCtx := ctx.binds(false)
		if i == len(named)-1 {
			chCtx = ctx
		}
		out.Names = append(out.Names, cvt(ch, chCtx))
	}
	return out
}

func cvtRelativeImport(n *cst.Node, ctx Ctx) cooked.Node {
	assertNoBinds(n, ctx)
	out := &cooked.RelativeImport{Module: cooked.Omitted}
	for _, ch := range n.Named() {
		switch ch.Sym {
		case cst.SymImportPrefix:
			out.Dots = len(ch.Text)
		case cst.SymDottedName, cst.SymIdentifier:
			out.Module = cvt(ch, ctx)
		default:
			invariantf(ch, "unexpected relative import component")
		}
	}
	return out
}

// asNameFromDotted makes the implicit AsName for an unaliased import clause:
// the whole path converts as references, then the last component token is
// re-visited in binding mode to introduce the local name.
func asNameFromDotted(n *cst.Node, ctx Ctx) cooked.Node {
	ref := cvt(n, ctx.binds(false))

	last := n
	if n.Sym == cst.SymDottedName {
		named := n.Named()
		last = named[len(named)-1]
	}
	if last.Sym != cst.SymIdentifier {
		invariantf(last, "import clause must end in an identifier")
	}
	return &cooked.AsName{Name: ref, As: name(last, ctx.binds(true))}
}
