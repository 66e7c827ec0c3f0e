package resolve

import (
	"github.com/pcallahan/pith/internal/cooked"
)

func (r *resolver) each(nodes []cooked.Node) {
	for _, n := range nodes {
		r.walk(n)
	}
}

// walk visits one cooked node, annotating Name occurrences and opening
// scopes at the scope-defining constructs. The switch is exhaustive over
// the cooked node set; an unhandled variant indicates a new node type that
// must be classified here.
func (r *resolver) walk(n cooked.Node) {
	switch v := n.(type) {
	case *cooked.OmittedNode:
	case *cooked.Name:
		r.name(v)

	case *cooked.Module:
		// Nested modules do not occur; File handles the root.
		r.each(v.Body)
	case *cooked.Suite:
		r.each(v.Stmts)
	case *cooked.ExprStmt:
		r.walk(v.Expr)

	case *cooked.Assign:
		r.walk(v.Target)
		r.walk(v.Value)
	case *cooked.AnnAssign:
		r.walk(v.Target)
		r.walk(v.Annotation)
		r.walk(v.Value)
	case *cooked.AugAssign:
		r.walk(v.Target)
		r.walk(v.Value)
	case *cooked.NamedExpr:
		r.walk(v.Target)
		r.walk(v.Value)
	case *cooked.Return:
		r.walk(v.Value)
	case *cooked.Delete:
		r.each(v.Targets)
	case *cooked.Raise:
		r.walk(v.Exc)
		r.walk(v.From)
	case *cooked.Assert:
		r.walk(v.Test)
		r.walk(v.Msg)
	case *cooked.Pass, *cooked.Break, *cooked.Continue, *cooked.Wildcard:
	case *cooked.Global:
		r.each(v.Names)
	case *cooked.Nonlocal:
		r.each(v.Names)
	case *cooked.Print:
		r.walk(v.Dest)
		r.each(v.Args)
	case *cooked.Exec:
		r.walk(v.Code)
		r.walk(v.Globals)
		r.walk(v.Locals)

	case *cooked.Import:
		r.each(v.Names)
	case *cooked.ImportFrom:
		r.walk(v.From)
		r.each(v.Names)
	case *cooked.AsName:
		r.walk(v.Name)
		r.walk(v.As)
	case *cooked.DottedName:
		r.each(v.Names)
	case *cooked.RelativeImport:
		r.walk(v.Module)

	case *cooked.If:
		r.walk(v.Cond)
		r.walk(v.Then)
		r.each(v.Elifs)
		r.walk(v.Else)
	case *cooked.ElifClause:
		r.walk(v.Cond)
		r.walk(v.Then)
	case *cooked.For:
		r.walk(v.Target)
		r.walk(v.Iter)
		r.walk(v.Body)
		r.walk(v.Else)
	case *cooked.While:
		r.walk(v.Cond)
		r.walk(v.Body)
		r.walk(v.Else)
	case *cooked.Try:
		r.walk(v.Body)
		r.each(v.Handlers)
		r.walk(v.Else)
		r.walk(v.Finally)
	case *cooked.Except:
		r.walk(v.Exc)
		r.walk(v.As)
		r.walk(v.Body)
	case *cooked.With:
		r.each(v.Items)
		r.walk(v.Body)
	case *cooked.WithItem:
		r.walk(v.Context)
		r.walk(v.As)

	case *cooked.FuncDef:
		r.funcDef(v)
	case *cooked.Lambda:
		r.lambda(v)
	case *cooked.ClassDef:
		r.classDef(v)
	case *cooked.Decorated:
		r.each(v.Decorators)
		r.walk(v.Definition)
	case *cooked.Decorator:
		r.walk(v.Expr)
	case *cooked.Param:
		// Handled by the scope-defining parent; a stray Param here would
		// resolve its target in the wrong scope.
		r.walk(v.Target)

	case *cooked.Op:
		r.each(v.Args)
	case *cooked.Compare:
		r.each(v.Args)
	case *cooked.Cond:
		r.walk(v.Test)
		r.walk(v.Then)
		r.walk(v.Else)

	case *cooked.Call:
		r.walk(v.Fn)
		r.each(v.Args)
	case *cooked.KeywordArg:
		r.walk(v.Value)
	case *cooked.Star:
		r.walk(v.Value)
	case *cooked.DoubleStar:
		r.walk(v.Value)
	case *cooked.Attribute:
		r.walk(v.Value)
		r.attribute(v)
	case *cooked.Subscript:
		r.walk(v.Value)
		r.each(v.Indexes)
	case *cooked.Slice:
		r.walk(v.Lower)
		r.walk(v.Upper)
		r.walk(v.Step)

	case *cooked.Tuple:
		r.each(v.Elts)
	case *cooked.List:
		r.each(v.Elts)
	case *cooked.Set:
		r.each(v.Elts)
	case *cooked.Dict:
		r.each(v.Items)
	case *cooked.Pair:
		r.walk(v.Key)
		r.walk(v.Value)

	case *cooked.Comp:
		// Clause targets bind in the enclosing scope; visit them before
		// the element so its references resolve.
		r.each(v.Clauses)
		r.walk(v.Elt)
	case *cooked.CompFor:
		r.walk(v.Target)
		r.walk(v.Iter)
	case *cooked.CompIf:
		r.walk(v.Cond)

	case *cooked.Await:
		r.walk(v.Value)
	case *cooked.Yield:
		r.walk(v.Value)
	case *cooked.ExprList:
		r.each(v.Exprs)

	case *cooked.Number, *cooked.BoolLit, *cooked.NoneLit, *cooked.EllipsisLit:
	case *cooked.Str:
		r.each(v.Interps)
	}
}

// name annotates one identifier occurrence and records the matching fact.
func (r *resolver) name(v *cooked.Name) {
	text := v.Tok.Text
	if v.Binds {
		v.FQN = r.bindingFQN(text)
		r.facts.Defs = append(r.facts.Defs, Def{FQN: v.FQN, Name: text, Span: v.Tok.Span})
		return
	}
	v.FQN = r.lookup(text)
	r.facts.Refs = append(r.facts.Refs, Ref{FQN: v.FQN, Name: text, Span: v.Tok.Span})
}

// attribute records the attribute occurrence without lexical resolution:
// attribute names live on their object, which needs type information this
// pass does not have.
func (r *resolver) attribute(v *cooked.Attribute) {
	attr, ok := v.Attr.(*cooked.Name)
	if !ok {
		r.walk(v.Attr)
		return
	}
	r.facts.Refs = append(r.facts.Refs, Ref{Name: attr.Tok.Text, Span: attr.Tok.Span})
}

func (r *resolver) funcDef(v *cooked.FuncDef) {
	r.walk(v.Name)
	fqn := r.current().fqn + ".<anon>"
	if nm, ok := v.Name.(*cooked.Name); ok && nm.FQN != "" {
		fqn = nm.FQN
	}

	// Annotations, defaults, and the return type are evaluated at
	// definition time: resolve them in the enclosing scope.
	for _, p := range v.Params {
		if param, ok := p.(*cooked.Param); ok {
			r.walk(param.Annotation)
			r.walk(param.Default)
		}
	}
	r.walk(v.ReturnType)

	r.pushScope(fqn, ScopeFunction, r.current().fqn, v.Span, v.Bindings, v.Body)
	for _, p := range v.Params {
		if param, ok := p.(*cooked.Param); ok {
			r.walk(param.Target)
		}
	}
	r.walk(v.Body)
	r.popScope()
}

func (r *resolver) lambda(v *cooked.Lambda) {
	fqn := r.nextLambdaFQN(r.current().fqn)

	for _, p := range v.Params {
		if param, ok := p.(*cooked.Param); ok {
			r.walk(param.Annotation)
			r.walk(param.Default)
		}
	}

	r.pushScope(fqn, ScopeLambda, r.current().fqn, v.Span, v.Bindings, v.Body)
	for _, p := range v.Params {
		if param, ok := p.(*cooked.Param); ok {
			r.walk(param.Target)
		}
	}
	r.walk(v.Body)
	r.popScope()
}

func (r *resolver) classDef(v *cooked.ClassDef) {
	r.walk(v.Name)
	fqn := r.current().fqn + ".<anon>"
	if nm, ok := v.Name.(*cooked.Name); ok && nm.FQN != "" {
		fqn = nm.FQN
	}

	r.each(v.Bases)

	r.pushScope(fqn, ScopeClass, r.current().fqn, v.Span, v.Bindings, v.Body)
	r.walk(v.Body)
	r.popScope()
}
