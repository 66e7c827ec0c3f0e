package cst

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Builder turns raw grammar reductions into CST nodes. A reduction with no
// children whose symbol is a token kind becomes a leaf; everything else
// becomes a composite node — except that symbols in the collapse allow-list
// reducing to exactly one child are replaced by that child, eliding a
// redundant wrapper layer.
//
// The allow-list is empty by default; it exists for grammar tuning and must
// stay behind coverage testing before any symbol is added.
type Builder struct {
	collapse map[Symbol]bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithCollapse adds symbols to the single-child collapse allow-list.
func WithCollapse(syms ...Symbol) BuilderOption {
	return func(b *Builder) {
		for _, s := range syms {
			b.collapse[s] = true
		}
	}
}

// NewBuilder creates a Builder with an empty collapse allow-list.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{collapse: make(map[Symbol]bool)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs a single node from one grammar reduction. This is the
// low-level hook FromSitter feeds; tests exercise it directly.
func (b *Builder) Build(sym Symbol, text string, children []*Node, span Span) *Node {
	if len(children) == 0 && sym.isToken() {
		return &Node{Sym: sym, Text: text, Span: span}
	}
	if len(children) == 1 && b.collapse[sym] {
		return children[0]
	}
	return &Node{Sym: sym, Text: text, Children: children, Span: span}
}

// FromSitter converts a parsed tree-sitter node (and its subtree) into CST
// nodes, bottom-up. Comments are dropped; anonymous punctuation and keyword
// tokens are kept so operator tokens survive for the cooked tree.
func (b *Builder) FromSitter(n *sitter.Node, src []byte) *Node {
	if droppedKinds[n.Type()] {
		return nil
	}

	sym := symbolFor(n)
	span := spanOf(n)

	var children []*Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		ch := b.FromSitter(n.Child(i), src)
		if ch == nil {
			continue
		}
		ch.Field = n.FieldNameForChild(i)
		children = append(children, ch)
	}

	text := ""
	if len(children) == 0 || sym == SymString || sym == SymConcatenatedString {
		text = n.Content(src)
	}
	if sym == SymUnknown {
		// Keep the tree-sitter kind name so the converter's diagnostic
		// can name what the production table is missing.
		text = n.Type()
	}
	node := b.Build(sym, text, children, span)
	return node
}

// droppedKinds are node types with no semantic content: comments and the
// lexical plumbing inside string literals. Interpolations are kept.
var droppedKinds = map[string]bool{
	"comment":           true,
	"line_continuation": true,
	"escape_sequence":   true,
	"string_start":      true,
	"string_content":    true,
	"string_end":        true,

	// Literal {{ and }} inside f-strings.
	"escape_interpolation": true,

	// Bare parameter separators (`/`, `*`) bind nothing.
	"positional_separator": true,
	"keyword_separator":    true,
}

// symbolFor classifies a tree-sitter node. Named nodes go through the kind
// table; unrecognized named kinds map to SymUnknown, which the converter
// rejects with a grammar-mismatch error naming the kind (FromSitter stashes
// it in Text). Anonymous nodes become punctuation, keyword, or operator
// tokens.
func symbolFor(n *sitter.Node) Symbol {
	kind := n.Type()
	if n.IsNamed() {
		if sym, ok := tsKindToSymbol[kind]; ok {
			return sym
		}
		return SymUnknown
	}
	if sym, ok := anonKindToSymbol[kind]; ok {
		return sym
	}
	if len(kind) > 0 && isWordStart(kind[0]) {
		return SymKeyword
	}
	return SymOperator
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func spanOf(n *sitter.Node) Span {
	start, end := n.StartPoint(), n.EndPoint()
	return Span{
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartLine: start.Row,
		StartCol:  start.Column,
		EndLine:   end.Row,
		EndCol:    end.Column,
	}
}
