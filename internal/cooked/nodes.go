// Package cooked defines the simplified, binding-annotated AST the converter
// produces from a concrete syntax tree. The node set is closed; downstream
// passes (FQN resolution, fact emission) switch over it exhaustively.
//
// Every grammar-optional slot holds either a real subtree or the Omitted
// sentinel — never nil — so consumers never special-case missing fields.
package cooked

import "github.com/pcallahan/pith/internal/cst"

// Node is the interface implemented by every cooked-AST variant.
type Node interface {
	cookedNode()
}

// OmittedNode is the sentinel for an absent optional grammar slot.
type OmittedNode struct{}

// Omitted is the shared sentinel instance. Compare against it with ==.
var Omitted Node = &OmittedNode{}

// Name is an identifier occurrence. Binds reports whether the occurrence
// introduced a local binding in its enclosing scope; otherwise it is a
// reference to be resolved later. FQN is empty until the resolver annotates
// it, and stays empty for built-ins and unknowns.
type Name struct {
	Binds bool
	Tok   *cst.Node
	FQN   string
}

// --- Structure ---

// Module is the cooked root for one source file. Bindings is the module
// scope's captured binding set, in insertion order.
type Module struct {
	Body     []Node
	Bindings []string
	Span     cst.Span
}

// Suite is an indented statement block.
type Suite struct {
	Stmts []Node
}

// --- Simple statements ---

type ExprStmt struct {
	Expr Node
}

// Assign is a plain assignment. Value may itself be an Assign for chained
// targets (a = b = c).
type Assign struct {
	Target Node
	Value  Node
}

// AnnAssign is an annotated assignment. Value is Omitted for a bare
// annotation (x: int), which still counts as a binding of the target.
type AnnAssign struct {
	Target     Node
	Annotation Node
	Value      Node
}

// AugAssign is an augmented assignment; its target is a reference, not a
// binding, since the name must already exist.
type AugAssign struct {
	Target Node
	OpTok  *cst.Node
	Value  Node
}

// NamedExpr is a walrus expression; the target binds.
type NamedExpr struct {
	Target Node
	Value  Node
}

type Return struct {
	Value Node // Omitted for a bare return
}

type Delete struct {
	Targets []Node
}

type Raise struct {
	Exc  Node // Omitted for a bare raise
	From Node
}

type Assert struct {
	Test Node
	Msg  Node
}

type Pass struct{}
type Break struct{}
type Continue struct{}

// Global and Nonlocal carry their declared names as reference occurrences;
// the declaration's effect on the scope's binding set is applied by the
// converter, not recorded here.
type Global struct {
	Names []Node
}

type Nonlocal struct {
	Names []Node
}

// Print is the python2 print statement. Dest is the chevron redirect target.
type Print struct {
	Dest Node
	Args []Node
}

// Exec is the python2 exec statement.
type Exec struct {
	Code    Node
	Globals Node
	Locals  Node
}

// --- Imports ---

// Import is `import a.b, c as d`. Each entry is an AsName.
type Import struct {
	Names []Node
}

// ImportFrom is `from x import ...`. Names holds AsName entries, or a single
// Wildcard for a star import.
type ImportFrom struct {
	From  Node
	Names []Node
}

// AsName pairs the imported name (a reference) with the local alias it
// binds. For `import a.b` with no alias, As re-binds the last dotted
// component; for `from x import a`, Name and As share a and the alias binds.
type AsName struct {
	Name Node
	As   Node
}

// DottedName is a dotted module path; all components are references except
// possibly the last, per the binding context it was converted in.
type DottedName struct {
	Names []Node
}

// RelativeImport is the `.`/`..` prefixed module in a from-import.
// Dots counts the leading dots; Module is Omitted for a bare-dot import.
type RelativeImport struct {
	Dots   int
	Module Node
}

// Wildcard is `*` in a from-import.
type Wildcard struct{}

// --- Compound statements ---

type If struct {
	Cond  Node
	Then  Node
	Elifs []Node
	Else  Node
}

type ElifClause struct {
	Cond Node
	Then Node
}

type For struct {
	Target Node
	Iter   Node
	Body   Node
	Else   Node
}

type While struct {
	Cond Node
	Body Node
	Else Node
}

type Try struct {
	Body     Node
	Handlers []Node
	Else     Node
	Finally  Node
}

type Except struct {
	Exc  Node
	As   Node // binding occurrence, or Omitted
	Body Node
}

type With struct {
	Items []Node
	Body  Node
}

type WithItem struct {
	Context Node
	As      Node
}

// --- Definitions ---

// FuncDef is a function definition. Name binds in the enclosing scope;
// Bindings is the fresh inner scope's captured binding set.
type FuncDef struct {
	Name       Node
	Params     []Node
	ReturnType Node
	Body       Node
	Bindings   []string
	Span       cst.Span
}

// Lambda opens a fresh anonymous scope.
type Lambda struct {
	Params   []Node
	Body     Node
	Bindings []string
	Span     cst.Span
}

// ClassDef is a class definition. Bases are references converted in the
// enclosing context.
type ClassDef struct {
	Name     Node
	Bases    []Node
	Body     Node
	Bindings []string
	Span     cst.Span
}

type Decorated struct {
	Decorators []Node
	Definition Node
}

type Decorator struct {
	Expr Node
}

// SplatKind distinguishes *args / **kwargs parameters.
type SplatKind int

const (
	SplatNone SplatKind = iota
	SplatStar
	SplatDoubleStar
)

// Param is one formal parameter. Target is the binding occurrence (a Name,
// or a nested tuple pattern in python2 dialect); Annotation and Default are
// converted in the enclosing scope's context.
type Param struct {
	Target     Node
	Annotation Node
	Default    Node
	Splat      SplatKind
}

// --- Operators ---

// Op is a unary (one arg) or binary (two args) operator application.
type Op struct {
	OpTok *cst.Node
	Args  []Node
}

// Compare is a comparison chain: Args has one more element than OpToks, and
// both preserve left-to-right source order (a < b < c stays one unit).
type Compare struct {
	Args   []Node
	OpToks []*cst.Node
}

type Cond struct {
	Test Node
	Then Node
	Else Node
}

// --- Calls and trailers ---

type Call struct {
	Fn   Node
	Args []Node
}

type KeywordArg struct {
	Name  Node
	Value Node
}

// Star is *x in calls and unpacking positions.
type Star struct {
	Value Node
}

// DoubleStar is **x in calls and dict displays.
type DoubleStar struct {
	Value Node
}

type Attribute struct {
	Value Node
	Attr  Node
}

type Subscript struct {
	Value   Node
	Indexes []Node
}

type Slice struct {
	Lower Node
	Upper Node
	Step  Node
}

// --- Displays ---

type Tuple struct {
	Elts []Node
}

type List struct {
	Elts []Node
}

type Set struct {
	Elts []Node
}

type Dict struct {
	Items []Node
}

type Pair struct {
	Key   Node
	Value Node
}

// --- Comprehensions ---

// CompKind tags the four comprehension forms.
type CompKind int

const (
	CompList CompKind = iota
	CompSet
	CompDict
	CompGenerator
)

func (k CompKind) String() string {
	switch k {
	case CompList:
		return "list"
	case CompSet:
		return "set"
	case CompDict:
		return "dict"
	default:
		return "generator"
	}
}

// Comp is a comprehension. It does not open a scope: comprehension targets
// bind in the enclosing function/module/class scope.
type Comp struct {
	Kind    CompKind
	Elt     Node
	Clauses []Node
}

type CompFor struct {
	Target Node
	Iter   Node
}

type CompIf struct {
	Cond Node
}

// --- Expressions ---

type Await struct {
	Value Node
}

type Yield struct {
	Value Node // Omitted for a bare yield
	From  bool
}

// ExprList is a comma-separated expression sequence outside a display
// (unparenthesized tuples, assignment target lists).
type ExprList struct {
	Exprs []Node
}

// --- Literals ---

type Number struct {
	Tok *cst.Node
}

// Str is one or more adjacent string literal tokens. Interps holds the
// converted expressions of any f-string interpolations, as references.
type Str struct {
	Toks    []*cst.Node
	Interps []Node
}

type BoolLit struct {
	Tok *cst.Node
}

type NoneLit struct {
	Tok *cst.Node
}

type EllipsisLit struct {
	Tok *cst.Node
}

func (*OmittedNode) cookedNode()  {}
func (*Name) cookedNode()         {}
func (*Module) cookedNode()       {}
func (*Suite) cookedNode()        {}
func (*ExprStmt) cookedNode()     {}
func (*Assign) cookedNode()       {}
func (*AnnAssign) cookedNode()    {}
func (*AugAssign) cookedNode()    {}
func (*NamedExpr) cookedNode()    {}
func (*Return) cookedNode()       {}
func (*Delete) cookedNode()       {}
func (*Raise) cookedNode()        {}
func (*Assert) cookedNode()       {}
func (*Pass) cookedNode()         {}
func (*Break) cookedNode()        {}
func (*Continue) cookedNode()     {}
func (*Global) cookedNode()       {}
func (*Nonlocal) cookedNode()     {}
func (*Print) cookedNode()        {}
func (*Exec) cookedNode()         {}
func (*Import) cookedNode()       {}
func (*ImportFrom) cookedNode()   {}
func (*AsName) cookedNode()       {}
func (*DottedName) cookedNode()   {}
func (*RelativeImport) cookedNode() {}
func (*Wildcard) cookedNode()     {}
func (*If) cookedNode()           {}
func (*ElifClause) cookedNode()   {}
func (*For) cookedNode()          {}
func (*While) cookedNode()        {}
func (*Try) cookedNode()          {}
func (*Except) cookedNode()       {}
func (*With) cookedNode()         {}
func (*WithItem) cookedNode()     {}
func (*FuncDef) cookedNode()      {}
func (*Lambda) cookedNode()       {}
func (*ClassDef) cookedNode()     {}
func (*Decorated) cookedNode()    {}
func (*Decorator) cookedNode()    {}
func (*Param) cookedNode()        {}
func (*Op) cookedNode()           {}
func (*Compare) cookedNode()      {}
func (*Cond) cookedNode()         {}
func (*Call) cookedNode()         {}
func (*KeywordArg) cookedNode()   {}
func (*Star) cookedNode()         {}
func (*DoubleStar) cookedNode()   {}
func (*Attribute) cookedNode()    {}
func (*Subscript) cookedNode()    {}
func (*Slice) cookedNode()        {}
func (*Tuple) cookedNode()        {}
func (*List) cookedNode()         {}
func (*Set) cookedNode()          {}
func (*Dict) cookedNode()         {}
func (*Pair) cookedNode()         {}
func (*Comp) cookedNode()         {}
func (*CompFor) cookedNode()      {}
func (*CompIf) cookedNode()       {}
func (*Await) cookedNode()        {}
func (*Yield) cookedNode()        {}
func (*ExprList) cookedNode()     {}
func (*Number) cookedNode()       {}
func (*Str) cookedNode()          {}
func (*BoolLit) cookedNode()      {}
func (*NoneLit) cookedNode()      {}
func (*EllipsisLit) cookedNode()  {}
