package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT * FROM relationships",
		"  with t AS (SELECT 1) SELECT * FROM t;",
		"EXPLAIN SELECT 1",
	}
	for _, query := range allowed {
		assert.NoError(t, CheckReadOnly(query), query)
	}

	rejected := map[string]string{
		"":                                     "query is required",
		"DELETE FROM traits":                   "read-only",
		"SELECT 1; DROP TABLE scenes":          "multiple statements",
		"UPDATE games SET current_scene_id=''": "read-only",
	}
	for query, want := range rejected {
		assert.ErrorContains(t, CheckReadOnly(query), want, query)
	}
}

func TestPositionalArgs(t *testing.T) {
	args, err := PositionalArgs(map[string]any{"2": "npc", "1": "ashfall"})
	require.NoError(t, err)
	assert.Equal(t, []any{"ashfall", "npc"}, args)

	args, err = PositionalArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = PositionalArgs(map[string]any{"1": "a", "3": "c"})
	require.ErrorContains(t, err, "missing parameter 2")

	_, err = PositionalArgs(map[string]any{"game": "ashfall"})
	require.ErrorContains(t, err, "invalid parameter")
}
