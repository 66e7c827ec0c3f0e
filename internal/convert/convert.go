package convert

import (
	"github.com/pcallahan/pith/internal/cooked"
	"github.com/pcallahan/pith/internal/cst"
)

// Tree converts a whole CST (rooted at a module node) into a cooked Module.
// The module scope's captured binding set is attached to the returned node.
//
// Conversion is total over every symbol that can occur in a syntactically
// valid tree; anything else is a fatal *Error identifying the offending
// node. Rules signal failure by panicking with *Error, recovered here.
func Tree(root *cst.Node) (mod *cooked.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			mod, err = nil, ce
		}
	}()

	if root.Sym != cst.SymModule {
		invariantf(root, "conversion must start at a module node")
	}
	ctx := newCtx()
	body := cvtEach(root.Named(), ctx)
	return &cooked.Module{
		Body:     body,
		Bindings: ctx.scope.Bindings(),
		Span:     root.Span,
	}, nil
}

// cvt dispatches one CST node to its conversion rule. The switch is total
// over the closed Symbol set: a missing arm is a compile-visible gap, not a
// runtime lookup failure.
func cvt(n *cst.Node, ctx Ctx) cooked.Node {
	switch n.Sym {
	// Structure
	case cst.SymModule:
		invariantf(n, "module node below the root")
	case cst.SymBlock:
		assertNoBinds(n, ctx)
		return &cooked.Suite{Stmts: cvtEach(n.Named(), ctx)}
	case cst.SymExpressionStatement:
		return cvtExpressionStatement(n, ctx)

	// Simple statements
	case cst.SymAssignment:
		return cvtAssignment(n, ctx)
	case cst.SymAugmentedAssignment:
		return cvtAugmentedAssignment(n, ctx)
	case cst.SymNamedExpression:
		return cvtNamedExpression(n, ctx)
	case cst.SymReturnStatement:
		assertNoBinds(n, ctx)
		return &cooked.Return{Value: cvtFirstOpt(n, ctx)}
	case cst.SymDeleteStatement:
		assertNoBinds(n, ctx)
		return &cooked.Delete{Targets: cvtEach(n.Named(), ctx)}
	case cst.SymRaiseStatement:
		return cvtRaise(n, ctx)
	case cst.SymPassStatement:
		return &cooked.Pass{}
	case cst.SymBreakStatement:
		return &cooked.Break{}
	case cst.SymContinueStatement:
		return &cooked.Continue{}
	case cst.SymAssertStatement:
		return cvtAssert(n, ctx)
	case cst.SymPrintStatement:
		return cvtPrint(n, ctx)
	case cst.SymChevron:
		invariantf(n, "chevron outside a print statement")
	case cst.SymExecStatement:
		return cvtExec(n, ctx)
	case cst.SymGlobalStatement:
		return cvtScopeDecl(n, ctx)
	case cst.SymNonlocalStatement:
		return cvtScopeDecl(n, ctx)

	// Imports
	case cst.SymImportStatement:
		return cvtImport(n, ctx)
	case cst.SymImportFromStatement, cst.SymFutureImportStatement:
		return cvtImportFrom(n, ctx)
	case cst.SymAliasedImport:
		return cvtAliasedImport(n, ctx)
	case cst.SymDottedName:
		return cvtDottedName(n, ctx)
	case cst.SymRelativeImport:
		return cvtRelativeImport(n, ctx)
	case cst.SymImportPrefix:
		invariantf(n, "import prefix outside a relative import")
	case cst.SymWildcardImport:
		assertNoBinds(n, ctx)
		return &cooked.Wildcard{}

	// Compound statements
	case cst.SymIfStatement:
		return cvtIf(n, ctx)
	case cst.SymElifClause:
		assertNoBinds(n, ctx)
		return &cooked.ElifClause{
			Cond: cvt(n.Child("condition"), ctx),
			Then: cvt(n.Child("consequence"), ctx),
		}
	case cst.SymElseClause:
		assertNoBinds(n, ctx)
		return cvt(n.Child("body"), ctx)
	case cst.SymForStatement:
		return cvtFor(n, ctx)
	case cst.SymWhileStatement:
		return cvtWhile(n, ctx)
	case cst.SymTryStatement:
		return cvtTry(n, ctx)
	case cst.SymExceptClause:
		return cvtExcept(n, ctx)
	case cst.SymFinallyClause:
		assertNoBinds(n, ctx)
		return cvt(n.Named()[0], ctx)
	case cst.SymWithStatement:
		return cvtWith(n, ctx)
	case cst.SymWithClause:
		invariantf(n, "with clause outside a with statement")
	case cst.SymWithItem:
		return cvtWithItem(n, ctx)
	case cst.SymAsPattern:
		return cvtAsPattern(n, ctx)
	case cst.SymAsPatternTarget:
		return cvt(n.Named()[0], ctx)

	// Definitions
	case cst.SymFunctionDefinition:
		return cvtFunctionDefinition(n, ctx)
	case cst.SymLambda:
		return cvtLambda(n, ctx)
	case cst.SymClassDefinition:
		return cvtClassDefinition(n, ctx)
	case cst.SymDecoratedDefinition:
		return cvtDecorated(n, ctx)
	case cst.SymDecorator:
		assertNoBinds(n, ctx)
		return &cooked.Decorator{Expr: cvt(n.Named()[0], ctx)}
	case cst.SymParameters, cst.SymLambdaParameters,
		cst.SymDefaultParameter, cst.SymTypedParameter, cst.SymTypedDefaultParameter:
		invariantf(n, "parameter production outside a function header")
	case cst.SymType:
		return cvt(n.Named()[0], ctx.binds(false))

	// Assignable groupings: propagate the binding context into elements.
	case cst.SymExpressionList, cst.SymPatternList:
		return &cooked.ExprList{Exprs: cvtEach(n.Named(), ctx)}
	case cst.SymTuplePattern:
		return &cooked.Tuple{Elts: cvtEach(n.Named(), ctx)}
	case cst.SymListPattern:
		return &cooked.List{Elts: cvtEach(n.Named(), ctx)}
	case cst.SymParenthesizedExpression:
		return cvt(n.Named()[0], ctx)
	case cst.SymListSplatPattern, cst.SymDictionarySplatPattern:
		return cvtSplatPattern(n, ctx)

	// Operators
	case cst.SymBinaryOperator, cst.SymBooleanOperator:
		return cvtBinaryOperator(n, ctx)
	case cst.SymNotOperator, cst.SymUnaryOperator:
		return cvtUnaryOperator(n, ctx)
	case cst.SymComparisonOperator:
		return cvtComparison(n, ctx)
	case cst.SymConditionalExpression:
		return cvtConditional(n, ctx)

	// Calls and trailers
	case cst.SymCall:
		return cvtCall(n, ctx)
	case cst.SymArgumentList:
		assertNoBinds(n, ctx)
		return &cooked.ExprList{Exprs: cvtEach(n.Named(), ctx)}
	case cst.SymKeywordArgument:
		assertNoBinds(n, ctx)
		return &cooked.KeywordArg{
			Name:  cvt(n.Child("name"), ctx),
			Value: cvt(n.Child("value"), ctx),
		}
	case cst.SymListSplat:
		assertNoBinds(n, ctx)
		return &cooked.Star{Value: cvt(n.Named()[0], ctx)}
	case cst.SymDictionarySplat:
		assertNoBinds(n, ctx)
		return &cooked.DoubleStar{Value: cvt(n.Named()[0], ctx)}
	case cst.SymAttribute:
		return cvtAttribute(n, ctx)
	case cst.SymSubscript:
		return cvtSubscript(n, ctx)
	case cst.SymSlice:
		return cvtSlice(n, ctx)

	// Displays
	case cst.SymTuple:
		return &cooked.Tuple{Elts: cvtEach(n.Named(), ctx)}
	case cst.SymList:
		return &cooked.List{Elts: cvtEach(n.Named(), ctx)}
	case cst.SymSet:
		assertNoBinds(n, ctx)
		return &cooked.Set{Elts: cvtEach(n.Named(), ctx)}
	case cst.SymDictionary:
		assertNoBinds(n, ctx)
		return &cooked.Dict{Items: cvtEach(n.Named(), ctx)}
	case cst.SymPair:
		assertNoBinds(n, ctx)
		return &cooked.Pair{
			Key:   cvt(n.Child("key"), ctx),
			Value: cvt(n.Child("value"), ctx),
		}

	// Comprehensions
	case cst.SymListComprehension:
		return cvtComprehension(n, ctx, cooked.CompList)
	case cst.SymSetComprehension:
		return cvtComprehension(n, ctx, cooked.CompSet)
	case cst.SymDictionaryComprehension:
		return cvtComprehension(n, ctx, cooked.CompDict)
	case cst.SymGeneratorExpression:
		return cvtComprehension(n, ctx, cooked.CompGenerator)
	case cst.SymForInClause:
		assertNoBinds(n, ctx)
		return &cooked.CompFor{
			Target: cvt(n.Child("left"), ctx.binds(true)),
			Iter:   cvt(n.Child("right"), ctx.binds(false)),
		}
	case cst.SymIfClause:
		assertNoBinds(n, ctx)
		return &cooked.CompIf{Cond: cvt(n.Named()[0], ctx)}

	// Expressions
	case cst.SymAwait:
		assertNoBinds(n, ctx)
		return &cooked.Await{Value: cvt(n.Named()[0], ctx)}
	case cst.SymYield:
		return cvtYield(n, ctx)
	case cst.SymParenthesizedListSplat:
		assertNoBinds(n, ctx)
		return cvt(n.Named()[0], ctx)

	// Productions the grammar emits but conversion does not cover:
	// structural pattern matching, PEP 695 type syntax, exception groups.
	case cst.SymMatchStatement, cst.SymCaseClause, cst.SymCasePattern,
		cst.SymUnionPattern, cst.SymDictPattern, cst.SymSplatPattern,
		cst.SymClassPattern, cst.SymKeywordPattern, cst.SymComplexPattern,
		cst.SymTypeAliasStatement, cst.SymTypeParameter, cst.SymConstrainedType,
		cst.SymMemberType, cst.SymUnionType, cst.SymGenericType,
		cst.SymSplatType, cst.SymExceptGroupClause:
		unsupported(n)

	// Leaf tokens
	case cst.SymIdentifier:
		return name(n, ctx)
	case cst.SymInteger, cst.SymFloat:
		assertNoBinds(n, ctx)
		return &cooked.Number{Tok: n}
	case cst.SymString:
		return cvtString(n, ctx)
	case cst.SymConcatenatedString:
		return cvtConcatenatedString(n, ctx)
	case cst.SymInterpolation:
		assertNoBinds(n, ctx)
		return cvt(n.Named()[0], ctx)
	case cst.SymFormatSpecifier, cst.SymTypeConversion:
		unsupported(n)
	case cst.SymTrue, cst.SymFalse:
		assertNoBinds(n, ctx)
		return &cooked.BoolLit{Tok: n}
	case cst.SymNone:
		assertNoBinds(n, ctx)
		return &cooked.NoneLit{Tok: n}
	case cst.SymEllipsis:
		assertNoBinds(n, ctx)
		return &cooked.EllipsisLit{Tok: n}

	// Punctuation never reaches the dispatcher; parents filter it.
	case cst.SymComma, cst.SymDot, cst.SymStar, cst.SymDoubleStar,
		cst.SymEquals, cst.SymColon, cst.SymOperator, cst.SymKeyword:
		invariantf(n, "punctuation token reached the dispatcher")
	case cst.SymUnknown:
		invariantf(n, "node kind %q missing from the production table", n.Text)
	}
	invariantf(n, "no conversion rule")
	return nil
}

// name is the leaf rule for identifiers: the only point where the scope's
// binding set is written. A binding occurrence is suppressed when the name
// was declared global or nonlocal in the current scope.
func name(tok *cst.Node, ctx Ctx) *cooked.Name {
	if ctx.lhsBinds && !ctx.scope.overridden(tok.Text) {
		ctx.scope.bind(tok.Text)
		return &cooked.Name{Binds: true, Tok: tok}
	}
	return &cooked.Name{Binds: false, Tok: tok}
}

// --- shared helpers ---

func cvtEach(nodes []*cst.Node, ctx Ctx) []cooked.Node {
	out := make([]cooked.Node, 0, len(nodes))
	for _, ch := range nodes {
		out = append(out, cvt(ch, ctx))
	}
	return out
}

// cvtOpt converts n, or yields the omitted sentinel when the slot is absent.
func cvtOpt(n *cst.Node, ctx Ctx) cooked.Node {
	if n == nil {
		return cooked.Omitted
	}
	return cvt(n, ctx)
}

// cvtFirstOpt converts the first named child, or omitted when there is none.
func cvtFirstOpt(n *cst.Node, ctx Ctx) cooked.Node {
	named := n.Named()
	if len(named) == 0 {
		return cooked.Omitted
	}
	return cvt(named[0], ctx)
}
