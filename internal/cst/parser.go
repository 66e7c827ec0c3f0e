package cst

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// SyntaxError reports that the parser could not produce a valid tree for the
// input. It carries the position of the first error node.
type SyntaxError struct {
	Line uint32
	Col  uint32
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d", e.Line+1, e.Col)
}

// Parse parses src under the given dialect and returns the root CST node as
// produced by the Builder, along with the (possibly normalized) source the
// node spans refer to.
//
// Inputs missing a trailing newline are normalized by appending one before
// parsing; some grammar rules only reduce at a statement terminator, and the
// appended byte never alters semantic content.
func Parse(ctx context.Context, src []byte, d Dialect, b *Builder) (*Node, []byte, error) {
	lang, ok := GrammarForDialect(d)
	if !ok {
		return nil, nil, fmt.Errorf("no grammar registered for dialect %s", d)
	}
	if len(src) == 0 || src[len(src)-1] != '\n' {
		normalized := make([]byte, len(src)+1)
		copy(normalized, src)
		normalized[len(src)] = '\n'
		src = normalized
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		line, col := firstError(root)
		return nil, nil, &SyntaxError{Line: line, Col: col}
	}

	if b == nil {
		b = NewBuilder()
	}
	node := b.FromSitter(root, src)
	return node, src, nil
}

// firstError finds the position of the first ERROR or MISSING node.
func firstError(n *sitter.Node) (line, col uint32) {
	if n.IsError() || n.IsMissing() {
		p := n.StartPoint()
		return p.Row, p.Column
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.HasError() {
			return firstError(ch)
		}
	}
	p := n.StartPoint()
	return p.Row, p.Column
}
