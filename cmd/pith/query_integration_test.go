package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexFixture builds the binary and indexes a Python fixture, returning the
// binary path and fixture directory. The fixture is ready for query commands.
func indexFixture(t *testing.T) (bin, fixtureDir, dbPath string) {
	t.Helper()
	bin = buildBinary(t)
	fixtureDir = createPyFixture(t)
	dbPath = filepath.Join(fixtureDir, ".pith", "index.db")

	cmd := exec.Command(bin, "index", fixtureDir)
	cmd.Dir = fixtureDir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "index failed: %s", string(out))
	require.FileExists(t, dbPath)

	return bin, fixtureDir, dbPath
}

// runQuery executes a pith query command and returns the parsed CLIResult.
func runQuery(t *testing.T, bin, fixtureDir string, args ...string) map[string]any {
	t.Helper()
	fullArgs := append([]string{"query"}, args...)
	cmd := exec.Command(bin, fullArgs...)
	cmd.Dir = fixtureDir
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	stdout, err := cmd.Output()
	// Allow non-zero exit for error cases, but we always expect JSON on stdout.
	if err != nil && len(stdout) == 0 {
		t.Fatalf("query command failed with no output: %v", err)
	}

	var result map[string]any
	require.NoError(t, json.Unmarshal(stdout, &result), "invalid JSON output: %s", string(stdout))
	return result
}

func TestQuery_FQNAtDefinitionSite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, fixtureDir, _ := indexFixture(t)

	// The fixture defines `def greet(name)` on line 2 (0-based); col 4 is
	// inside the function name.
	result := runQuery(t, bin, fixtureDir, "fqn", "app.py", "2", "4")

	assert.Equal(t, "fqn", result["command"])
	assert.Empty(t, result["error"])
	assert.Equal(t, "app.greet", result["results"])
}

func TestQuery_Definition_FromCallSite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, fixtureDir, _ := indexFixture(t)

	// `return greet("world")` on line 8; col 15 is inside the greet call.
	result := runQuery(t, bin, fixtureDir, "definition", "app.py", "8", "15")

	assert.Equal(t, "definition", result["command"])
	assert.Empty(t, result["error"])

	results, ok := result["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, results, 1)
	loc := results[0].(map[string]any)
	assert.Equal(t, "app.py", loc["file"])
	assert.Equal(t, float64(2), loc["start_line"])
	assert.Equal(t, "app.greet", loc["fqn"])
}

func TestQuery_References_ByFQN(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, fixtureDir, _ := indexFixture(t)

	result := runQuery(t, bin, fixtureDir, "references", "--fqn", "app.greet")

	assert.Equal(t, "references", result["command"])
	assert.Empty(t, result["error"])

	results, ok := result["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, results, 1, "greet is referenced once, from Greeter.run")
	loc := results[0].(map[string]any)
	assert.Equal(t, float64(8), loc["start_line"])
}

func TestQuery_Bindings_ModuleScope(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, fixtureDir, _ := indexFixture(t)

	result := runQuery(t, bin, fixtureDir, "bindings", "app")

	assert.Equal(t, "bindings", result["command"])
	results, ok := result["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, results, 3)

	// Module bindings in first-binding order: os, greet, Greeter.
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.(map[string]any)["name"].(string)
	}
	assert.Equal(t, []string{"os", "greet", "Greeter"}, names)
}

func TestQuery_Scopes_ListsScopeTree(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin, fixtureDir, _ := indexFixture(t)

	result := runQuery(t, bin, fixtureDir, "scopes", "app.py")

	results, ok := result["results"].([]any)
	require.True(t, ok, "results should be an array")
	require.Len(t, results, 4, "module, greet, Greeter, Greeter.run")

	fqns := make([]string, len(results))
	for i, r := range results {
		fqns[i] = r.(map[string]any)["fqn"].(string)
	}
	assert.Contains(t, fqns, "app")
	assert.Contains(t, fqns, "app.greet")
	assert.Contains(t, fqns, "app.Greeter")
	assert.Contains(t, fqns, "app.Greeter.run")
}

func TestQuery_MissingDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	result := runQuery(t, bin, dir, "files")
	assert.Contains(t, result["error"], "database not found")
}
