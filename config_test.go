package pith

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsZero(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_ParsesFields(t *testing.T) {
	dir := t.TempDir()
	data := `dialect: python2
collapse:
  - parenthesized_expression
exclude:
  - generated
workers: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "python2", cfg.Dialect)
	assert.Equal(t, []string{"parenthesized_expression"}, cfg.Collapse)
	assert.Equal(t, []string{"generated"}, cfg.Exclude)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(":\n  - ["), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestConfigBuilder_UnknownCollapseName(t *testing.T) {
	cfg := Config{Collapse: []string{"definitely_not_a_production"}}
	_, err := cfg.builder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown production")
}

func TestConfigDialect_Names(t *testing.T) {
	for _, tc := range []struct {
		name string
		want string
	}{
		{"", "python3"},
		{"python3", "python3"},
		{"python2", "python2"},
	} {
		cfg := Config{Dialect: tc.name}
		d, err := cfg.dialect()
		require.NoError(t, err)
		assert.Equal(t, tc.want, d.String())
	}

	_, err := Config{Dialect: "ruby"}.dialect()
	require.Error(t, err)
}
