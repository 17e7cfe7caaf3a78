package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/config"
	"rolecraft/internal/evolution"
	"rolecraft/internal/store"
)

func TestParseParamPairs(t *testing.T) {
	params, err := parseParamPairs([]string{"1=ashfall", " 2 = npc ", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "ashfall", "2": "npc"}, params)

	_, err = parseParamPairs([]string{"novalue"})
	require.Error(t, err)
	_, err = parseParamPairs([]string{"=x"})
	require.Error(t, err)
}

func TestDialPicksBackendFromScheme(t *testing.T) {
	ctx := context.Background()

	db, err := dial(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close(ctx))

	_, err = dial(ctx, "mysql://localhost/rolecraft")
	require.ErrorContains(t, err, "unsupported database dsn")
}

func TestReadSuggestions(t *testing.T) {
	payload := `[{"evolution_type":"trait_add","entity":{"type":"npc","id":"mira"},"trait":"vengeful"}]`

	inputs, err := readSuggestions(strings.NewReader(payload), "-")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "trait_add", inputs[0].EvolutionType)
	assert.Equal(t, store.EntityRef{Type: store.EntityNPC, ID: "mira"}, inputs[0].Entity)

	path := filepath.Join(t.TempDir(), "suggestions.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	inputs, err = readSuggestions(strings.NewReader(""), path)
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	_, err = readSuggestions(strings.NewReader("{"), "-")
	require.ErrorContains(t, err, "decoding suggestions")
}

func TestPrintEvolution(t *testing.T) {
	oldValue, newValue := 0.5, 0.8
	target := store.EntityRef{Type: store.EntityPlayer, ID: "ash"}
	var buf bytes.Buffer
	printEvolution(&buf, store.PendingEvolution{
		ID:            "evo-1",
		Turn:          3,
		EvolutionType: store.EvolutionRelationshipChange,
		Entity:        store.EntityRef{Type: store.EntityNPC, ID: "mira"},
		Target:        &target,
		Dimension:     store.DimFear,
		OldValue:      &oldValue,
		NewValue:      &newValue,
		Reason:        "burned the village",
		Status:        store.EvolutionPending,
	})

	out := buf.String()
	assert.Contains(t, out, "npc:mira -> player:ash fear 0.50 -> 0.80")
	assert.Contains(t, out, "reason: burned the village")
	assert.NotContains(t, out, "notes:")
}

func TestInitScaffoldsLoadableProject(t *testing.T) {
	t.Chdir(t.TempDir())
	previous := configPath
	configPath = "rolecraft.yaml"
	t.Cleanup(func() { configPath = previous })

	require.NoError(t, runInit("ashfall", "sqlite://:memory:", true))
	require.ErrorContains(t, runInit("ashfall", "sqlite://:memory:", false), "already exists")

	cfg, err := config.LoadProjectConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "ashfall", cfg.Project)
	assert.Equal(t, "traits.yaml", cfg.Catalog)

	catalog, err := config.LoadCatalogOrDefault(cfg)
	require.NoError(t, err)
	assert.Len(t, catalog.Traits, len(config.DefaultCatalog().Traits))

	info, err := os.Stat("lore")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenAppWiresServices(t *testing.T) {
	dir := t.TempDir()
	previous := configPath
	configPath = filepath.Join(dir, "rolecraft.yaml")
	t.Cleanup(func() { configPath = previous })

	contents := "project: ashfall\nversion: 1\ndatabase:\n  dsn: \"sqlite://:memory:\"\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	ctx := context.Background()
	a, err := openApp(ctx)
	require.NoError(t, err)
	defer a.Close(ctx)

	created, err := a.evolution.DetectEvolutions(ctx, evolution.EventRef{ID: "ev-1", GameID: "g1", Turn: 1}, []evolution.Suggestion{
		evolution.TraitAdd{Entity: store.EntityRef{Type: store.EntityNPC, ID: "mira"}, Trait: "vengeful"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	pending, err := a.evolution.ListPending(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSplitParticipant(t *testing.T) {
	kind, id, err := splitParticipant("--actor", "Narrator:dm")
	require.NoError(t, err)
	assert.Equal(t, "narrator", kind)
	assert.Equal(t, "dm", id)

	kind, id, err = splitParticipant("--target", "")
	require.NoError(t, err)
	assert.Empty(t, kind)
	assert.Empty(t, id)

	_, _, err = splitParticipant("--actor", "mira")
	require.ErrorContains(t, err, "--actor")
}
