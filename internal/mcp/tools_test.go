package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/config"
	"rolecraft/internal/emergence"
	"rolecraft/internal/evolution"
	"rolecraft/internal/gamelock"
	"rolecraft/internal/notify"
	"rolecraft/internal/scene"
	"rolecraft/internal/store"
	"rolecraft/internal/store/sqlite"
	"rolecraft/internal/store/storetest"
)

var (
	party = store.EntityRef{Type: store.EntityPlayer, ID: "party"}
	mira  = store.EntityRef{Type: store.EntityNPC, ID: "mira"}
	vex   = store.EntityRef{Type: store.EntityNPC, ID: "vex"}
)

func newTestServer(t *testing.T) (*Server, *sqlite.Client, *[]notify.Kind) {
	t.Helper()
	db := storetest.NewSQLite(t)
	bus := notify.NewBus(nil)
	var kinds []notify.Kind
	bus.Subscribe("test", func(n notify.Notification) error {
		kinds = append(kinds, n.Kind())
		return nil
	})

	catalog := config.DefaultCatalog()
	server := NewServer(Services{
		Catalog:   catalog,
		Evolution: evolution.New(db, evolution.WithCatalog(catalog), evolution.WithEmitter(bus)),
		Emergence: emergence.New(db, emergence.WithEmitter(bus)),
		Scenes:    scene.New(db, scene.WithEmitter(bus)),
	}, "test")
	return server, db, &kinds
}

func TestGetEntitySummary_Validation(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, _, err := server.handleGetEntitySummary(ctx, nil, GetEntitySummaryInput{Entity: "npc:mira"})
	assert.Error(t, err)

	_, _, err = server.handleGetEntitySummary(ctx, nil, GetEntitySummaryInput{GameID: "g1", Entity: "mira"})
	assert.Error(t, err)

	_, output, err := server.handleGetEntitySummary(ctx, nil, GetEntitySummaryInput{GameID: "g1", Entity: "npc:mira"})
	require.NoError(t, err)
	assert.Equal(t, mira, output.Entity)
	assert.Empty(t, output.Traits)
	assert.Empty(t, output.Relationships)
}

func TestGetTraitCatalog(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, all, err := server.handleGetTraitCatalog(ctx, nil, GetTraitCatalogInput{})
	require.NoError(t, err)
	assert.Len(t, all.Traits, len(config.DefaultCatalog().Traits))

	_, moral, err := server.handleGetTraitCatalog(ctx, nil, GetTraitCatalogInput{Category: "Moral"})
	require.NoError(t, err)
	require.NotEmpty(t, moral.Traits)
	for _, trait := range moral.Traits {
		assert.Equal(t, "moral", trait.Category)
	}

	_, _, err = server.handleGetTraitCatalog(ctx, nil, GetTraitCatalogInput{Category: "cosmic"})
	assert.Error(t, err)
}

func TestDetectThenApproveEvolution(t *testing.T) {
	server, db, kinds := newTestServer(t)
	ctx := context.Background()

	_, detected, err := server.handleDetectEvolutions(ctx, nil, DetectEvolutionsInput{
		GameID:  "g1",
		EventID: "evt-3",
		Turn:    3,
		Suggestions: []evolution.SuggestionInput{
			{EvolutionType: "relationship_change", Entity: mira, Target: &party, Dimension: "trust", Change: 0.3, Reason: "saved her brother"},
			{EvolutionType: "trait_add", Entity: mira, Trait: "hopeful"},
		},
	})
	require.NoError(t, err)
	require.Len(t, detected.Evolutions, 2)
	first := detected.Evolutions[0]
	assert.Equal(t, "npc:mira", first.Entity)
	assert.Equal(t, "player:party", first.Target)
	assert.Equal(t, "pending", first.Status)
	assert.Empty(t, first.ResolvedAt)

	_, pending, err := server.handleListPendingEvolutions(ctx, nil, ListPendingEvolutionsInput{GameID: "g1"})
	require.NoError(t, err)
	assert.Len(t, pending.Evolutions, 2)

	_, approved, err := server.handleApproveEvolution(ctx, nil, ResolveEvolutionInput{ID: first.ID, DMNotes: "earned"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "earned", approved.DMNotes)
	assert.NotEmpty(t, approved.ResolvedAt)

	rel, err := db.GetRelationship(ctx, "g1", mira, party)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.InDelta(t, 0.8, rel.Dimensions.Trust, 1e-9)

	_, _, err = server.handleApproveEvolution(ctx, nil, ResolveEvolutionInput{ID: first.ID})
	assert.ErrorIs(t, err, evolution.ErrNotPending)

	_, pending, err = server.handleListPendingEvolutions(ctx, nil, ListPendingEvolutionsInput{GameID: "g1"})
	require.NoError(t, err)
	assert.Len(t, pending.Evolutions, 1)

	assert.Equal(t, []notify.Kind{notify.EvolutionCreated, notify.EvolutionCreated, notify.EvolutionApproved}, *kinds)
}

func TestDetectEvolutions_RejectsBadSuggestion(t *testing.T) {
	server, _, _ := newTestServer(t)

	_, _, err := server.handleDetectEvolutions(context.Background(), nil, DetectEvolutionsInput{
		GameID:      "g1",
		Suggestions: []evolution.SuggestionInput{{EvolutionType: "promotion", Entity: mira}},
	})
	assert.Error(t, err)
}

func TestEditEvolution_Retargets(t *testing.T) {
	server, db, _ := newTestServer(t)
	ctx := context.Background()

	_, err := db.SetRelationshipDimension(ctx, "g1", mira, vex, store.DimFear, 0.4, 1)
	require.NoError(t, err)
	_, detected, err := server.handleDetectEvolutions(ctx, nil, DetectEvolutionsInput{
		GameID: "g1", EventID: "evt-4", Turn: 4,
		Suggestions: []evolution.SuggestionInput{
			{EvolutionType: "relationship_change", Entity: mira, Target: &party, Dimension: "trust", Change: -0.2},
		},
	})
	require.NoError(t, err)

	newValue := 0.9
	_, edited, err := server.handleEditEvolution(ctx, nil, EditEvolutionInput{
		ID:        detected.Evolutions[0].ID,
		Target:    "npc:vex",
		Dimension: "fear",
		NewValue:  &newValue,
		DMNotes:   "she fears vex, not the party",
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Status)
	assert.Equal(t, "npc:vex", edited.Target)
	require.NotNil(t, edited.OldValue)
	assert.InDelta(t, 0.4, *edited.OldValue, 1e-9)

	rel, err := db.GetRelationship(ctx, "g1", mira, vex)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, rel.Dimensions.Fear, 1e-9)

	_, _, err = server.handleEditEvolution(ctx, nil, EditEvolutionInput{ID: detected.Evolutions[0].ID, Dimension: "loyalty"})
	assert.Error(t, err)
}

func TestRefuseEvolution_NotFound(t *testing.T) {
	server, _, _ := newTestServer(t)

	_, _, err := server.handleRefuseEvolution(context.Background(), nil, ResolveEvolutionInput{ID: "missing"})
	assert.ErrorIs(t, err, evolution.ErrNotFound)

	_, _, err = server.handleRefuseEvolution(context.Background(), nil, ResolveEvolutionInput{})
	assert.Error(t, err)
}

func TestCommitEvent_ReportsVillain(t *testing.T) {
	server, db, kinds := newTestServer(t)
	ctx := context.Background()

	_, err := db.UpsertRelationship(ctx, store.Relationship{
		GameID: "g1", From: vex, To: party, UpdatedTurn: 2,
		Dimensions: store.Dimensions{Trust: 0.1, Respect: 0.1, Affection: 0.1, Fear: 0.9, Resentment: 0.9},
	})
	require.NoError(t, err)

	_, result, err := server.handleCommitEvent(ctx, nil, CommitEventInput{
		GameID: "g1", Turn: 5, EventType: "combat",
		ActorType: "Player", ActorID: "party", TargetType: "npc", TargetID: "vex",
		Summary: "the party burned vex's ship",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.EventID)
	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, store.EmergenceVillain, result.Opportunities[0].Type)
	assert.Equal(t, vex, result.Opportunities[0].Entity)
	assert.Equal(t, []notify.Kind{notify.EmergenceVillain, notify.EmergenceDetected}, *kinds)

	count, err := db.CountEventsInTurns(ctx, "g1", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, _, err = server.handleCommitEvent(ctx, nil, CommitEventInput{GameID: "g1", Turn: -1})
	assert.Error(t, err)
}

func TestSceneTools(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	_, gate, err := server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g1", SceneID: "gate", Name: "The Gate", Turn: 1})
	require.NoError(t, err)
	assert.Equal(t, store.SceneActive, gate.Status)
	_, _, err = server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g1", SceneID: "crypt", Name: "The Crypt", Turn: 1, Locked: true})
	require.NoError(t, err)
	_, _, err = server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g1", Turn: 1})
	assert.Error(t, err)

	_, conn, err := server.handleConnectScenes(ctx, nil, ConnectScenesInput{GameID: "g1", FromSceneID: "gate", ToSceneID: "crypt", ConnectionType: "Hidden"})
	require.NoError(t, err)
	assert.Equal(t, store.ConnectionHidden, conn.ConnectionType)

	_, connected, err := server.handleListConnectedScenes(ctx, nil, SceneInput{GameID: "g1", SceneID: "gate"})
	require.NoError(t, err)
	assert.Empty(t, connected.Scenes)

	_, avail, err := server.handleUnlockScene(ctx, nil, UnlockSceneInput{GameID: "g1", SceneID: "crypt", Turn: 2, UnlockedBy: "evt-2"})
	require.NoError(t, err)
	assert.True(t, avail.Unlocked)

	_, connected, err = server.handleListConnectedScenes(ctx, nil, SceneInput{GameID: "g1", SceneID: "gate"})
	require.NoError(t, err)
	require.Len(t, connected.Scenes, 1)

	_, _, err = server.handleStartScene(ctx, nil, SceneTransitionInput{GameID: "g1", SceneID: "crypt", Turn: 3})
	require.NoError(t, err)
	_, summary, err := server.handleGetSceneSummary(ctx, nil, SceneInput{GameID: "g1", SceneID: "crypt"})
	require.NoError(t, err)
	assert.True(t, summary.IsCurrent)

	_, done, err := server.handleCompleteScene(ctx, nil, SceneTransitionInput{GameID: "g1", SceneID: "gate", Turn: 4})
	require.NoError(t, err)
	assert.Equal(t, store.SceneCompleted, done.Status)
	_, _, err = server.handleAbandonScene(ctx, nil, SceneTransitionInput{GameID: "g1", SceneID: "gate", Turn: 5})
	assert.ErrorIs(t, err, scene.ErrInvalidTransition)

	_, available, err := server.handleListAvailableScenes(ctx, nil, GameInput{GameID: "g1"})
	require.NoError(t, err)
	require.Len(t, available.Scenes, 1)
	assert.Equal(t, "crypt", available.Scenes[0].ID)

	_, _, err = server.handleGetSceneSummary(ctx, nil, SceneInput{GameID: "g2", SceneID: "crypt"})
	assert.ErrorIs(t, err, scene.ErrSceneNotFound)
}

func TestMutationsFailFastWhenGameBusy(t *testing.T) {
	server, _, _ := newTestServer(t)
	ctx := context.Background()

	release, err := server.locks.Acquire("g1", "commit_event")
	require.NoError(t, err)
	defer release()

	_, _, err = server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g1", Name: "Gate"})
	assert.ErrorIs(t, err, gamelock.ErrGameBusy)
	assert.Contains(t, err.Error(), "commit_event")

	_, _, err = server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g2", Name: "Gate"})
	assert.NoError(t, err)

	_, _, err = server.handleListAvailableScenes(ctx, nil, GameInput{GameID: "g1"})
	assert.NoError(t, err)

	release()
	_, _, err = server.handleCreateScene(ctx, nil, CreateSceneInput{GameID: "g1", Name: "Gate"})
	assert.NoError(t, err)
}
