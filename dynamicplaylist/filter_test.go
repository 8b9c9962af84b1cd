package dynamicplaylist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLeaf(t *testing.T) {
	where, args, err := Filter{Field: "genre", Op: "eq", Value: "jazz"}.Compile(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "genre = ?", where)
	assert.Equal(t, []any{"jazz"}, args)

	where, args, err = Filter{Field: "title", Op: "contains", Value: "love"}.Compile(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "title LIKE ?", where)
	assert.Equal(t, []any{"%love%"}, args)
}

func TestCompileGroups(t *testing.T) {
	filter := Filter{
		All: []Filter{
			{Field: "year", Op: "gte", Value: 1990},
			{Any: []Filter{
				{Field: "genre", Op: "eq", Value: "rock"},
				{Field: "genre", Op: "eq", Value: "metal"},
			}},
		},
	}
	where, args, err := filter.Compile(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "(year >= ? AND (genre = ? OR genre = ?))", where)
	assert.Len(t, args, 3)
}

func TestCompileListenerScopedOps(t *testing.T) {
	requester := uuid.New()

	where, args, err := Filter{Op: "isStarred"}.Compile(requester)
	require.NoError(t, err)
	assert.Contains(t, where, "annotations")
	require.NotEmpty(t, args)
	assert.Equal(t, requester, args[0])

	_, args, err = Filter{Op: "minRating", Value: float64(4)}.Compile(requester)
	require.NoError(t, err)
	assert.Equal(t, requester, args[0])
}

func TestCompileRejectsUnknowns(t *testing.T) {
	_, _, err := Filter{Field: "password", Op: "eq", Value: "x"}.Compile(uuid.Nil)
	assert.Error(t, err)

	_, _, err = Filter{Field: "genre", Op: "regex", Value: "x"}.Compile(uuid.Nil)
	assert.Error(t, err)
}

func TestCompileOrderBy(t *testing.T) {
	orderBy, err := compileOrderBy("playCount desc")
	require.NoError(t, err)
	assert.Equal(t, "playcount DESC, id", orderBy)

	orderBy, err = compileOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "RANDOM()", orderBy)

	_, err = compileOrderBy("password asc")
	assert.Error(t, err)

	_, err = compileOrderBy("year sideways")
	assert.Error(t, err)

	// whitespace-only is an error, never a panic
	_, err = compileOrderBy("  ")
	assert.Error(t, err)
}
