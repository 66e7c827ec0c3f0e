package cooked

import (
	"fmt"
	"strings"
)

// Dump renders a cooked tree as an indented s-expression. The output is
// deterministic and is what the golden tests compare against. Binding
// occurrences render as (bind "x"), references as (ref "x"), resolved
// references as (ref "x" → fqn).
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	sb.WriteByte('\n')
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	switch v := n.(type) {
	case *OmittedNode:
		sb.WriteString("()")
	case *Name:
		tag := "ref"
		if v.Binds {
			tag = "bind"
		}
		fmt.Fprintf(sb, "(%s %q", tag, v.Tok.Text)
		if v.FQN != "" {
			fmt.Fprintf(sb, " → %s", v.FQN)
		}
		sb.WriteByte(')')
	case *Module:
		open(sb, depth, "module")
		bindings(sb, depth, v.Bindings)
		list(sb, depth, v.Body...)
		sb.WriteByte(')')
	case *Suite:
		open(sb, depth, "suite")
		list(sb, depth, v.Stmts...)
		sb.WriteByte(')')
	case *ExprStmt:
		inline(sb, depth, "expr-stmt", v.Expr)
	case *Assign:
		inline(sb, depth, "assign", v.Target, v.Value)
	case *AnnAssign:
		inline(sb, depth, "ann-assign", v.Target, v.Annotation, v.Value)
	case *AugAssign:
		open(sb, depth, "aug-assign "+v.OpTok.Text)
		list(sb, depth, v.Target, v.Value)
		sb.WriteByte(')')
	case *NamedExpr:
		inline(sb, depth, "named-expr", v.Target, v.Value)
	case *Return:
		inline(sb, depth, "return", v.Value)
	case *Delete:
		inline(sb, depth, "delete", v.Targets...)
	case *Raise:
		inline(sb, depth, "raise", v.Exc, v.From)
	case *Assert:
		inline(sb, depth, "assert", v.Test, v.Msg)
	case *Pass:
		sb.WriteString("(pass)")
	case *Break:
		sb.WriteString("(break)")
	case *Continue:
		sb.WriteString("(continue)")
	case *Global:
		inline(sb, depth, "global", v.Names...)
	case *Nonlocal:
		inline(sb, depth, "nonlocal", v.Names...)
	case *Print:
		inline(sb, depth, "print", append([]Node{v.Dest}, v.Args...)...)
	case *Exec:
		inline(sb, depth, "exec", v.Code, v.Globals, v.Locals)
	case *Import:
		inline(sb, depth, "import", v.Names...)
	case *ImportFrom:
		inline(sb, depth, "import-from", append([]Node{v.From}, v.Names...)...)
	case *AsName:
		inline(sb, depth, "as-name", v.Name, v.As)
	case *DottedName:
		inline(sb, depth, "dotted", v.Names...)
	case *RelativeImport:
		inline(sb, depth, fmt.Sprintf("relative %d", v.Dots), v.Module)
	case *Wildcard:
		sb.WriteString("(wildcard)")
	case *If:
		open(sb, depth, "if")
		list(sb, depth, append([]Node{v.Cond, v.Then}, append(v.Elifs, v.Else)...)...)
		sb.WriteByte(')')
	case *ElifClause:
		open(sb, depth, "elif")
		list(sb, depth, v.Cond, v.Then)
		sb.WriteByte(')')
	case *For:
		open(sb, depth, "for")
		list(sb, depth, v.Target, v.Iter, v.Body, v.Else)
		sb.WriteByte(')')
	case *While:
		open(sb, depth, "while")
		list(sb, depth, v.Cond, v.Body, v.Else)
		sb.WriteByte(')')
	case *Try:
		open(sb, depth, "try")
		list(sb, depth, append([]Node{v.Body}, append(v.Handlers, v.Else, v.Finally)...)...)
		sb.WriteByte(')')
	case *Except:
		open(sb, depth, "except")
		list(sb, depth, v.Exc, v.As, v.Body)
		sb.WriteByte(')')
	case *With:
		open(sb, depth, "with")
		list(sb, depth, append(v.Items, v.Body)...)
		sb.WriteByte(')')
	case *WithItem:
		inline(sb, depth, "with-item", v.Context, v.As)
	case *FuncDef:
		open(sb, depth, "func-def")
		list(sb, depth, v.Name)
		bindings(sb, depth, v.Bindings)
		list(sb, depth, append(v.Params, v.ReturnType, v.Body)...)
		sb.WriteByte(')')
	case *Lambda:
		open(sb, depth, "lambda")
		bindings(sb, depth, v.Bindings)
		list(sb, depth, append(v.Params, v.Body)...)
		sb.WriteByte(')')
	case *ClassDef:
		open(sb, depth, "class-def")
		list(sb, depth, v.Name)
		bindings(sb, depth, v.Bindings)
		list(sb, depth, append(v.Bases, v.Body)...)
		sb.WriteByte(')')
	case *Decorated:
		open(sb, depth, "decorated")
		list(sb, depth, append(v.Decorators, v.Definition)...)
		sb.WriteByte(')')
	case *Decorator:
		inline(sb, depth, "decorator", v.Expr)
	case *Param:
		head := "param"
		switch v.Splat {
		case SplatStar:
			head = "param*"
		case SplatDoubleStar:
			head = "param**"
		}
		inline(sb, depth, head, v.Target, v.Annotation, v.Default)
	case *Op:
		inline(sb, depth, "op "+v.OpTok.Text, v.Args...)
	case *Compare:
		ops := make([]string, len(v.OpToks))
		for i, t := range v.OpToks {
			ops[i] = t.Text
		}
		inline(sb, depth, "compare ["+strings.Join(ops, " ")+"]", v.Args...)
	case *Cond:
		inline(sb, depth, "cond", v.Test, v.Then, v.Else)
	case *Call:
		inline(sb, depth, "call", append([]Node{v.Fn}, v.Args...)...)
	case *KeywordArg:
		inline(sb, depth, "kwarg", v.Name, v.Value)
	case *Star:
		inline(sb, depth, "star", v.Value)
	case *DoubleStar:
		inline(sb, depth, "double-star", v.Value)
	case *Attribute:
		inline(sb, depth, "attr", v.Value, v.Attr)
	case *Subscript:
		inline(sb, depth, "subscript", append([]Node{v.Value}, v.Indexes...)...)
	case *Slice:
		inline(sb, depth, "slice", v.Lower, v.Upper, v.Step)
	case *Tuple:
		inline(sb, depth, "tuple", v.Elts...)
	case *List:
		inline(sb, depth, "list", v.Elts...)
	case *Set:
		inline(sb, depth, "set", v.Elts...)
	case *Dict:
		inline(sb, depth, "dict", v.Items...)
	case *Pair:
		inline(sb, depth, "pair", v.Key, v.Value)
	case *Comp:
		open(sb, depth, "comp "+v.Kind.String())
		list(sb, depth, append([]Node{v.Elt}, v.Clauses...)...)
		sb.WriteByte(')')
	case *CompFor:
		inline(sb, depth, "comp-for", v.Target, v.Iter)
	case *CompIf:
		inline(sb, depth, "comp-if", v.Cond)
	case *Await:
		inline(sb, depth, "await", v.Value)
	case *Yield:
		head := "yield"
		if v.From {
			head = "yield-from"
		}
		inline(sb, depth, head, v.Value)
	case *ExprList:
		inline(sb, depth, "expr-list", v.Exprs...)
	case *Number:
		fmt.Fprintf(sb, "(number %s)", v.Tok.Text)
	case *Str:
		sb.WriteString("(string")
		if len(v.Interps) > 0 {
			list(sb, depth, v.Interps...)
		}
		sb.WriteByte(')')
	case *BoolLit:
		fmt.Fprintf(sb, "(bool %s)", v.Tok.Text)
	case *NoneLit:
		sb.WriteString("(none)")
	case *EllipsisLit:
		sb.WriteString("(ellipsis)")
	default:
		fmt.Fprintf(sb, "(?%T)", n)
	}
}

func open(sb *strings.Builder, _ int, head string) {
	sb.WriteByte('(')
	sb.WriteString(head)
}

// inline prints a head plus children on one line.
func inline(sb *strings.Builder, depth int, head string, children ...Node) {
	sb.WriteByte('(')
	sb.WriteString(head)
	for _, ch := range children {
		sb.WriteByte(' ')
		dump(sb, ch, depth)
	}
	sb.WriteByte(')')
}

// list prints children each on their own indented line.
func list(sb *strings.Builder, depth int, children ...Node) {
	for _, ch := range children {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", depth+1))
		dump(sb, ch, depth+1)
	}
}

func bindings(sb *strings.Builder, depth int, names []string) {
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("  ", depth+1))
	sb.WriteString("[" + strings.Join(names, " ") + "]")
}
