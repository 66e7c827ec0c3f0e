package pith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDefs_GlobPattern(t *testing.T) {
	q := newQueryFixture(t)

	// SQLite LIKE is case-insensitive for ASCII, so "gre*" also matches
	// Greeter.
	res, err := q.SearchDefs("gre*", DefFilter{}, Sort{Field: SortByName}, Pagination{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	// BINARY collation orders uppercase first.
	assert.Equal(t, "app.Greeter", res.Items[0].FQN)
	assert.Equal(t, "app.greet", res.Items[1].FQN)
	assert.Equal(t, "app.py", res.Items[0].FilePath)
	assert.Equal(t, 2, res.TotalCount)
}

func TestSearchDefs_ModuleFilter(t *testing.T) {
	q := newQueryFixture(t)

	mod := "tools"
	res, err := q.SearchDefs("*", DefFilter{ModulePrefix: &mod}, Sort{Field: SortByName}, Pagination{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, d := range res.Items {
		assert.Equal(t, "tools.py", d.FilePath)
	}
}

func TestSearchDefs_FQNPrefixFilter(t *testing.T) {
	q := newQueryFixture(t)

	prefix := "app.greet"
	res, err := q.SearchDefs("", DefFilter{FQNPrefix: &prefix}, Sort{Field: SortByFQN}, Pagination{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3, "greet itself plus its two locals")
	assert.Equal(t, "app.greet", res.Items[0].FQN)
	assert.Equal(t, "app.greet.msg", res.Items[1].FQN)
	assert.Equal(t, "app.greet.name", res.Items[2].FQN)
}

func TestSearchDefs_Pagination(t *testing.T) {
	q := newQueryFixture(t)

	all, err := q.SearchDefs("", DefFilter{}, Sort{Field: SortByFQN}, Pagination{})
	require.NoError(t, err)
	require.Greater(t, all.TotalCount, 2)

	page, err := q.SearchDefs("", DefFilter{}, Sort{Field: SortByFQN}, Pagination{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, all.TotalCount, page.TotalCount, "total count ignores pagination")
	assert.Equal(t, all.Items[1].FQN, page.Items[0].FQN)
}

func TestSearchDefs_RefCountSort(t *testing.T) {
	q := newQueryFixture(t)

	res, err := q.SearchDefs("", DefFilter{}, Sort{Field: SortByRefCount, Order: Desc}, Pagination{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].RefCount, res.Items[i].RefCount)
	}
}

func TestSearchDefs_NoMatches(t *testing.T) {
	q := newQueryFixture(t)

	res, err := q.SearchDefs("zzz*", DefFilter{}, Sort{}, Pagination{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalCount)
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{Offset: -5, Limit: 0}.normalize()
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, defaultLimit, p.Limit)

	p = Pagination{Limit: 9999}.normalize()
	assert.Equal(t, maxLimit, p.Limit)
}

func TestProjectSummary_ModuleBreakdown(t *testing.T) {
	q := newQueryFixture(t)

	summary, err := q.ProjectSummary(5)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FileCount)
	require.Len(t, summary.Modules, 2)

	byModule := make(map[string]ModuleStats, len(summary.Modules))
	for _, ms := range summary.Modules {
		byModule[ms.Module] = ms
	}
	app := byModule["app"]
	assert.Equal(t, 1, app.FileCount)
	assert.Equal(t, 1, app.ScopeKinds["module"])
	assert.Equal(t, 2, app.ScopeKinds["function"])
	assert.Equal(t, 1, app.ScopeKinds["class"])

	require.NotEmpty(t, summary.TopDefs)
	// Every listed top def is actually referenced.
	for _, d := range summary.TopDefs {
		assert.Greater(t, d.RefCount, 0)
	}
}
