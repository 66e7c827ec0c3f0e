package cst

import "fmt"

// Span is a byte range plus line/column positions in the source the tree was
// parsed from. Byte offsets are what downstream anchor emission keys on;
// line/column are carried for human-readable diagnostics only.
type Span struct {
	StartByte uint32
	EndByte   uint32
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
}

// Node is one node of the concrete syntax tree: either a composite grammar
// production with ordered children, or a leaf token carrying its literal
// text. Nodes are produced by the Builder and are read-only afterwards.
type Node struct {
	Sym      Symbol
	Children []*Node // composite only
	Text     string  // leaf only: literal source text
	Span     Span

	// Field is the tree-sitter field name this node occupies in its
	// parent ("left", "body", "name", ...), or "" for positional children.
	Field string
}

// IsLeaf reports whether the node is a token leaf.
func (n *Node) IsLeaf() bool { return n.Children == nil && n.Sym.isToken() }

// Child returns the first child occupying the given field, or nil.
func (n *Node) Child(field string) *Node {
	for _, ch := range n.Children {
		if ch.Field == field {
			return ch
		}
	}
	return nil
}

// ChildrenByField returns all children occupying the given field, in order.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, ch := range n.Children {
		if ch.Field == field {
			out = append(out, ch)
		}
	}
	return out
}

// Named returns the children that are named productions or value-carrying
// tokens, skipping punctuation and keywords.
func (n *Node) Named() []*Node {
	var out []*Node
	for _, ch := range n.Children {
		if !ch.Sym.IsPunct() {
			out = append(out, ch)
		}
	}
	return out
}

// String renders the node for diagnostics: the symbol name plus the source
// position, and the literal text for leaves.
func (n *Node) String() string {
	if n.IsLeaf() {
		return fmt.Sprintf("%s(%q)@%d:%d", n.Sym, n.Text, n.Span.StartLine+1, n.Span.StartCol)
	}
	return fmt.Sprintf("%s@%d:%d", n.Sym, n.Span.StartLine+1, n.Span.StartCol)
}
