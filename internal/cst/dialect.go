package cst

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Dialect selects the grammar used to parse a source file.
type Dialect int

const (
	// DialectPython3 is the default.
	DialectPython3 Dialect = iota
	DialectPython2
)

// String returns the canonical dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectPython2:
		return "python2"
	default:
		return "python3"
	}
}

// ParseDialect maps a dialect name (as found in config files and CLI flags)
// to a Dialect. Accepts "python3", "python2", "3", "2".
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "", "python3", "3":
		return DialectPython3, nil
	case "python2", "2":
		return DialectPython2, nil
	}
	return DialectPython3, fmt.Errorf("unknown dialect %q", name)
}

// dialectGrammars maps dialects to tree-sitter Language objects. Both
// dialects currently share the one python grammar, which accepts the common
// syntax of the two plus the python2-only statements (print, exec) the
// converter handles. Lazily initialized via sync.Once.
var (
	dialectGrammars map[Dialect]*sitter.Language
	grammarsOnce    sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		py := python.GetLanguage()
		dialectGrammars = map[Dialect]*sitter.Language{
			DialectPython3: py,
			DialectPython2: py,
		}
	})
}

// GrammarForDialect returns the tree-sitter Language for a dialect.
// Returns (nil, false) if the dialect has no registered grammar.
func GrammarForDialect(d Dialect) (*sitter.Language, bool) {
	initGrammars()
	lang, ok := dialectGrammars[d]
	return lang, ok
}
