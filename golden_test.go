package pith

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden test format.
type goldenFile struct {
	Definitions []goldenDef     `json:"definitions,omitempty"`
	References  []goldenRef     `json:"references,omitempty"`
	Bindings    []goldenBinding `json:"bindings,omitempty"`
}

type goldenDef struct {
	FQN  string `json:"fqn"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// goldenRef pins the resolution of the reference at a position. An empty
// fqn asserts the reference is unresolved.
type goldenRef struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
	FQN  string `json:"fqn"`
}

type goldenBinding struct {
	Scope string   `json:"scope"`
	Names []string `json:"names"`
}

// TestGolden walks testdata/python/ and checks each case's indexed facts
// against its golden.json.
func TestGolden(t *testing.T) {
	root := filepath.Join("testdata", "python")
	cases, err := os.ReadDir(root)
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		testDir := filepath.Join(root, c.Name())
		goldenPath := filepath.Join(testDir, "golden.json")
		srcDir := filepath.Join(testDir, "src")

		if _, err := os.Stat(goldenPath); err != nil {
			continue
		}
		if _, err := os.Stat(srcDir); err != nil {
			continue
		}

		t.Run(c.Name(), func(t *testing.T) {
			runGoldenTest(t, srcDir, goldenPath)
		})
	}
}

func runGoldenTest(t *testing.T, srcDir, goldenPath string) {
	t.Helper()

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	dbPath := filepath.Join(t.TempDir(), "golden.db")
	engine, err := New(dbPath)
	require.NoError(t, err)
	defer engine.Close()

	require.NoError(t, engine.IndexDirectory(context.Background(), srcDir))

	if len(golden.Definitions) > 0 {
		t.Run("definitions", func(t *testing.T) {
			verifyDefinitions(t, engine, golden.Definitions)
		})
	}
	if len(golden.References) > 0 {
		t.Run("references", func(t *testing.T) {
			verifyReferences(t, engine, golden.References)
		})
	}
	if len(golden.Bindings) > 0 {
		t.Run("bindings", func(t *testing.T) {
			verifyBindings(t, engine, golden.Bindings)
		})
	}
}

func verifyDefinitions(t *testing.T, engine *Engine, expected []goldenDef) {
	t.Helper()

	type defKey struct {
		FQN  string
		File string
		Line int
	}
	actual := make(map[defKey]bool)

	rows, err := engine.Store().DB().Query(
		`SELECT d.fqn, f.path, d.start_line
		 FROM defs d JOIN files f ON f.id = d.file_id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var fqn, path string
		var line int
		require.NoError(t, rows.Scan(&fqn, &path, &line))
		actual[defKey{fqn, path, line}] = true
	}
	require.NoError(t, rows.Err())

	for _, exp := range expected {
		key := defKey{exp.FQN, exp.File, exp.Line}
		assert.True(t, actual[key], "missing definition: %+v", exp)
	}
	// Golden definition lists are exhaustive: anything extra is a bug too.
	assert.Len(t, actual, len(expected), "unexpected extra definitions: %v", actual)
}

func verifyReferences(t *testing.T, engine *Engine, expected []goldenRef) {
	t.Helper()
	q := engine.Query()

	for _, exp := range expected {
		fqn, err := q.FQNAt(exp.File, exp.Line, exp.Col)
		require.NoError(t, err, "error resolving %s:%d:%d", exp.File, exp.Line, exp.Col)
		assert.Equal(t, exp.FQN, fqn, "wrong resolution at %s:%d:%d", exp.File, exp.Line, exp.Col)
	}
}

func verifyBindings(t *testing.T, engine *Engine, expected []goldenBinding) {
	t.Helper()
	q := engine.Query()

	for _, exp := range expected {
		bindings, err := q.BindingsInScope(exp.Scope)
		require.NoError(t, err)
		names := make([]string, len(bindings))
		for i, b := range bindings {
			names[i] = b.Name
		}
		assert.Equal(t, exp.Names, names, "binding set mismatch for scope %s", exp.Scope)
	}
}
