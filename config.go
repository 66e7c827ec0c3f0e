package pith

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pcallahan/pith/internal/cst"
)

// ConfigFileName is the project-level configuration file looked up at the
// index root.
const ConfigFileName = ".pith.yml"

// Config is the project configuration. All fields are optional; the zero
// value indexes python3 sources with no tree collapsing.
type Config struct {
	// Dialect selects the grammar variant: "python3" (default) or "python2".
	Dialect string `yaml:"dialect"`

	// Collapse lists grammar production names whose single-child reductions
	// are elided from the syntax tree. Empty by default: every name must be
	// vetted against conversion coverage before it goes here.
	Collapse []string `yaml:"collapse"`

	// Exclude lists directory names skipped during discovery, in addition
	// to the built-in set (hidden dirs, __pycache__, node_modules, vendor).
	Exclude []string `yaml:"exclude"`

	// Workers caps the indexing worker pool; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

// LoadConfig reads the config file at root, returning the zero Config when
// the file does not exist.
func LoadConfig(root string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filepath.Join(root, ConfigFileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// dialect resolves the configured dialect name.
func (c Config) dialect() (cst.Dialect, error) {
	return cst.ParseDialect(c.Dialect)
}

// builder constructs the tree builder with the configured collapse
// allow-list. Unknown production names are an error rather than a silent
// no-op, since a typo would quietly change tree shapes.
func (c Config) builder() (*cst.Builder, error) {
	syms := make([]cst.Symbol, 0, len(c.Collapse))
	for _, name := range c.Collapse {
		sym, ok := cst.SymbolByName(name)
		if !ok {
			return nil, fmt.Errorf("collapse: unknown production %q", name)
		}
		syms = append(syms, sym)
	}
	return cst.NewBuilder(cst.WithCollapse(syms...)), nil
}
