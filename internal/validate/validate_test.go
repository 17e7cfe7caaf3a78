package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/config"
	"rolecraft/internal/store"
	"rolecraft/internal/store/sqlite"
	"rolecraft/internal/store/storetest"
)

var mira = store.EntityRef{Type: store.EntityNPC, ID: "mira"}

func addScene(t *testing.T, db *sqlite.Client, gameID, id string, unlocked bool) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.EnsureGame(ctx, gameID, ""))
	require.NoError(t, db.CreateScene(ctx, store.Scene{ID: id, GameID: gameID, Name: id, Status: store.SceneActive, StartedTurn: 1}))
	require.NoError(t, db.InitSceneAvailability(ctx, gameID, id))
	if unlocked {
		_, err := db.UnlockScene(ctx, gameID, id, 1, "")
		require.NoError(t, err)
	}
}

func codes(report *Report) map[string]int {
	out := make(map[string]int)
	for _, issue := range report.Issues {
		out[issue.Code]++
	}
	return out
}

func TestRun_CleanGame(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	addScene(t, db, "g1", "gate", true)
	addScene(t, db, "g1", "crypt", false)
	require.NoError(t, db.UpsertSceneConnection(ctx, store.SceneConnection{GameID: "g1", FromSceneID: "gate", ToSceneID: "crypt", ConnectionType: store.ConnectionHidden}))
	require.NoError(t, db.SetCurrentScene(ctx, "g1", "gate"))
	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "honorable", AcquiredTurn: 1}))

	report, err := Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.False(t, report.HasErrors())
}

func TestRun_DanglingConnection(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	addScene(t, db, "g1", "gate", true)
	addScene(t, db, "g2", "far", true)
	require.NoError(t, db.UpsertSceneConnection(ctx, store.SceneConnection{GameID: "g1", FromSceneID: "gate", ToSceneID: "far", ConnectionType: store.ConnectionPath}))
	require.NoError(t, db.UpsertSceneConnection(ctx, store.SceneConnection{GameID: "g1", FromSceneID: "ghost", ToSceneID: "gate", ConnectionType: store.ConnectionPath}))

	report, err := Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{codeDanglingConnection: 2}, codes(report))
	assert.True(t, report.HasErrors())
	assert.Equal(t, "gate -> far", report.Issues[0].Subject)
}

func TestRun_StaleCurrentScene(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	addScene(t, db, "g1", "gate", true)
	addScene(t, db, "g2", "mill", true)

	require.NoError(t, db.SetCurrentScene(ctx, "g1", "mill"))
	report, err := Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{codeStaleCurrentScene: 1}, codes(report))

	completed := 3
	require.NoError(t, db.UpdateSceneStatus(ctx, "gate", store.SceneCompleted, &completed))
	require.NoError(t, db.SetCurrentScene(ctx, "g1", "gate"))
	report, err = Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0].Message, "completed")
}

func TestRun_MalformedPendingEvolution(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	require.NoError(t, db.EnsureGame(ctx, "g1", ""))
	newValue := 0.7
	require.NoError(t, db.CreatePendingEvolution(ctx, store.PendingEvolution{
		ID: "evo-ok", GameID: "g1", EvolutionType: store.EvolutionRelationshipChange,
		Entity: mira, Target: &store.EntityRef{Type: store.EntityPlayer, ID: "party"},
		Dimension: store.DimTrust, NewValue: &newValue,
	}))
	require.NoError(t, db.CreatePendingEvolution(ctx, store.PendingEvolution{
		ID: "evo-bad", GameID: "g1", EvolutionType: store.EvolutionTraitAdd, Entity: mira,
	}))
	require.NoError(t, db.CreatePendingEvolution(ctx, store.PendingEvolution{
		ID: "evo-done", GameID: "g1", EvolutionType: store.EvolutionTraitRemove, Entity: mira,
		Status: store.EvolutionRefused,
	}))

	report, err := Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, codeMalformedEvolution, report.Issues[0].Code)
	assert.Equal(t, "evo-bad", report.Issues[0].Subject)
}

func TestRun_WarningsOnly(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	addScene(t, db, "g1", "vault", false)
	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "sparkly", AcquiredTurn: 1}))
	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "glowing", AcquiredTurn: 1}))
	require.NoError(t, db.RemoveTrait(ctx, "g1", mira, "glowing"))

	report, err := Run(ctx, config.DefaultCatalog(), db, "g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{codeUnreachableScene: 1, codeUnknownTrait: 1}, codes(report))
	assert.False(t, report.HasErrors())
}

func TestRun_AllGames(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	addScene(t, db, "g1", "vault", false)
	addScene(t, db, "g2", "cellar", false)

	report, err := Run(ctx, config.DefaultCatalog(), db, "")
	require.NoError(t, err)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "g1", report.Issues[0].GameID)
	assert.Equal(t, "g2", report.Issues[1].GameID)

	missing, err := Run(ctx, config.DefaultCatalog(), db, "g9")
	require.NoError(t, err)
	assert.Empty(t, missing.Issues)
}

func TestRun_RequiresDependencies(t *testing.T) {
	_, err := Run(context.Background(), nil, storetest.NewSQLite(t), "")
	assert.Error(t, err)
	_, err = Run(context.Background(), config.DefaultCatalog(), nil, "")
	assert.Error(t, err)
}
