package evolution_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/config"
	"rolecraft/internal/evolution"
	"rolecraft/internal/notify"
	"rolecraft/internal/store"
	"rolecraft/internal/store/storetest"
)

var (
	party = store.EntityRef{Type: store.EntityPlayer, ID: "party"}
	mira  = store.EntityRef{Type: store.EntityNPC, ID: "mira"}
	event = evolution.EventRef{ID: "evt-7", GameID: "g1", Turn: 7}
)

type recorder struct {
	kinds []notify.Kind
}

func (r *recorder) Emit(n notify.Notification) { r.kinds = append(r.kinds, n.Kind()) }

func newService(t *testing.T) (*evolution.Service, store.Store, *recorder) {
	t.Helper()
	db := storetest.NewSQLite(t)
	rec := &recorder{}
	seq := 0
	svc := evolution.New(db,
		evolution.WithEmitter(rec),
		evolution.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
		evolution.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("evo-%d", seq)
		}),
	)
	return svc, db, rec
}

func ptr[T any](v T) *T { return &v }

func TestDetectEvolutionsQueuesWithoutMutating(t *testing.T) {
	ctx := context.Background()
	svc, db, rec := newService(t)

	_, err := db.SetRelationshipDimension(ctx, "g1", mira, party, store.DimTrust, 0.9, 1)
	require.NoError(t, err)

	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.RelationshipChange{Entity: mira, Target: party, Dimension: store.DimTrust, Change: 0.3, Reason: "rescued"},
		evolution.RelationshipChange{Entity: mira, Target: party, Dimension: store.DimFear, Change: -0.4},
		evolution.RelationshipChange{Entity: party, Target: mira, Dimension: store.DimRespect, Change: 0.2},
		evolution.TraitAdd{Entity: mira, Trait: "vengeful", Reason: "betrayed"},
	})
	require.NoError(t, err)
	require.Len(t, created, 4)

	assert.InDelta(t, 0.9, *created[0].OldValue, 1e-9)
	assert.InDelta(t, 1.0, *created[0].NewValue, 1e-9)
	assert.InDelta(t, 0.0, *created[1].OldValue, 1e-9)
	assert.InDelta(t, 0.0, *created[1].NewValue, 1e-9)
	assert.InDelta(t, 0.5, *created[2].OldValue, 1e-9)
	assert.InDelta(t, 0.7, *created[2].NewValue, 1e-9)

	for _, evo := range created {
		assert.Equal(t, store.EvolutionPending, evo.Status)
		assert.Equal(t, 7, evo.Turn)
		assert.Equal(t, "evt-7", evo.SourceEventID)
	}

	rel, err := db.GetRelationship(ctx, "g1", mira, party)
	require.NoError(t, err)
	assert.Equal(t, 0.9, rel.Dimensions.Trust)

	reverse, err := db.GetRelationship(ctx, "g1", party, mira)
	require.NoError(t, err)
	assert.Nil(t, reverse)

	traits, err := db.ListTraits(ctx, "g1", mira, "")
	require.NoError(t, err)
	assert.Empty(t, traits)

	pending, err := svc.ListPending(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, pending, 4)
	assert.Equal(t, []notify.Kind{
		notify.EvolutionCreated, notify.EvolutionCreated, notify.EvolutionCreated, notify.EvolutionCreated,
	}, rec.kinds)
}

func TestApproveSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, db, rec := newService(t)

	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.TraitAdd{Entity: mira, Trait: "vengeful"},
	})
	require.NoError(t, err)
	id := created[0].ID

	approved, err := svc.Approve(ctx, id, "earned it")
	require.NoError(t, err)
	assert.Equal(t, store.EvolutionApproved, approved.Status)
	assert.Equal(t, "earned it", approved.DMNotes)
	require.NotNil(t, approved.ResolvedAt)

	traits, err := db.ListTraits(ctx, "g1", mira, store.TraitActive)
	require.NoError(t, err)
	require.Len(t, traits, 1)
	assert.Equal(t, "vengeful", traits[0].Trait)
	assert.Equal(t, 7, traits[0].AcquiredTurn)
	assert.Equal(t, "evt-7", traits[0].SourceEventID)

	_, err = svc.Approve(ctx, id, "")
	require.ErrorIs(t, err, evolution.ErrNotPending)
	_, err = svc.Refuse(ctx, id, "")
	require.ErrorIs(t, err, evolution.ErrNotPending)
	_, err = svc.Edit(ctx, id, evolution.Changes{Trait: ptr("ruthless")}, "")
	require.ErrorIs(t, err, evolution.ErrNotPending)

	assert.Equal(t, []notify.Kind{notify.EvolutionCreated, notify.EvolutionApproved}, rec.kinds)
}

func TestApproveRelationshipChangeSetsOneDimension(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)

	_, err := db.UpsertRelationship(ctx, store.Relationship{
		GameID: "g1", From: mira, To: party,
		Dimensions:  store.Dimensions{Trust: 0.4, Respect: 0.6, Affection: 0.2, Fear: 0.1, Resentment: 0.3, Debt: 0.5},
		UpdatedTurn: 2,
	})
	require.NoError(t, err)

	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.RelationshipChange{Entity: mira, Target: party, Dimension: store.DimResentment, Change: 0.45},
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, created[0].ID, "")
	require.NoError(t, err)

	rel, err := db.GetRelationship(ctx, "g1", mira, party)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, rel.Dimensions.Resentment, 1e-9)
	rel.Dimensions.Resentment = 0
	assert.Equal(t, store.Dimensions{Trust: 0.4, Respect: 0.6, Affection: 0.2, Fear: 0.1, Debt: 0.5}, rel.Dimensions)
	assert.Equal(t, 7, rel.UpdatedTurn)
}

func TestEditOverridesBeforeApplying(t *testing.T) {
	ctx := context.Background()
	svc, db, rec := newService(t)

	_, err := db.SetRelationshipDimension(ctx, "g1", mira, party, store.DimFear, 0.3, 1)
	require.NoError(t, err)

	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.TraitAdd{Entity: mira, Trait: "vengful"},
		evolution.RelationshipChange{Entity: mira, Target: party, Dimension: store.DimTrust, Change: -0.2},
	})
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, created[0].ID, evolution.Changes{Trait: ptr("vengeful")}, "typo")
	require.NoError(t, err)
	assert.Equal(t, store.EvolutionEdited, edited.Status)
	assert.Equal(t, "vengeful", edited.Trait)

	dim := store.DimFear
	edited, err = svc.Edit(ctx, created[1].ID, evolution.Changes{Dimension: &dim, NewValue: ptr(0.8)}, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, *edited.OldValue, 1e-9)
	assert.InDelta(t, 0.8, *edited.NewValue, 1e-9)

	traits, err := db.ListTraits(ctx, "g1", mira, store.TraitActive)
	require.NoError(t, err)
	require.Len(t, traits, 1)
	assert.Equal(t, "vengeful", traits[0].Trait)

	rel, err := db.GetRelationship(ctx, "g1", mira, party)
	require.NoError(t, err)
	assert.Equal(t, 0.8, rel.Dimensions.Fear)
	assert.Equal(t, 0.5, rel.Dimensions.Trust)

	stored, err := svc.Get(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, store.DimFear, stored.Dimension)
	assert.Equal(t, store.EvolutionEdited, stored.Status)

	assert.Equal(t, notify.EvolutionEdited, rec.kinds[len(rec.kinds)-1])
}

func TestRefuseHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)

	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "hopeful", AcquiredTurn: 1}))
	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.TraitRemove{Entity: mira, Trait: "hopeful"},
	})
	require.NoError(t, err)

	refused, err := svc.Refuse(ctx, created[0].ID, "not yet")
	require.NoError(t, err)
	assert.Equal(t, store.EvolutionRefused, refused.Status)

	traits, err := db.ListTraits(ctx, "g1", mira, store.TraitActive)
	require.NoError(t, err)
	require.Len(t, traits, 1)

	pending, err := svc.ListPending(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveTraitRemoveMarksRemoved(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)

	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "hopeful", AcquiredTurn: 1}))
	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.TraitRemove{Entity: mira, Trait: "hopeful"},
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, created[0].ID, "")
	require.NoError(t, err)

	removed, err := db.ListTraits(ctx, "g1", mira, store.TraitRemoved)
	require.NoError(t, err)
	require.Len(t, removed, 1)
}

func TestMalformedEvolutionStaysPending(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	created, err := svc.DetectEvolutions(ctx, event, []evolution.Suggestion{
		evolution.RelationshipChange{Entity: mira, Dimension: store.DimTrust, Change: 0.1},
		evolution.TraitAdd{Entity: mira},
	})
	require.NoError(t, err)
	assert.Nil(t, created[0].Target)
	assert.Nil(t, created[0].NewValue)

	for _, evo := range created {
		_, err := svc.Approve(ctx, evo.ID, "")
		require.ErrorIs(t, err, evolution.ErrMalformedEvolution)
		assert.Error(t, evolution.Malformed(evo))
	}

	pending, err := svc.ListPending(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestResolveUnknownEvolution(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Approve(context.Background(), "missing", "")
	require.ErrorIs(t, err, evolution.ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestGetEntitySummary(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)

	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "vengeful", AcquiredTurn: 2}))
	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "homebrew_trait", AcquiredTurn: 3}))
	require.NoError(t, db.AddTrait(ctx, store.Trait{GameID: "g1", Entity: mira, Trait: "hopeful", AcquiredTurn: 1}))
	require.NoError(t, db.RemoveTrait(ctx, "g1", mira, "hopeful"))

	_, err := db.UpsertRelationship(ctx, store.Relationship{
		GameID: "g1", From: mira, To: party,
		Dimensions: store.Dimensions{Trust: 0.1, Respect: 0.2, Affection: 0.1, Fear: 0.8, Resentment: 0.9},
	})
	require.NoError(t, err)
	_, err = db.UpsertRelationship(ctx, store.Relationship{
		GameID: "g1", From: party, To: mira, Dimensions: store.DefaultDimensions(),
	})
	require.NoError(t, err)

	summary, err := svc.GetEntitySummary(ctx, "g1", mira)
	require.NoError(t, err)
	assert.Equal(t, []string{"vengeful", "homebrew_trait"}, summary.TraitNames())
	assert.Equal(t, config.CategoryEmotional, summary.Traits[0].Category)
	assert.Empty(t, summary.Traits[1].Category)

	require.Len(t, summary.Relationships, 2)
	assert.Equal(t, party, summary.Relationships[0].Other)
	assert.Equal(t, "outgoing", summary.Relationships[0].Direction)
	assert.Equal(t, evolution.LabelTerrified, summary.Relationships[0].Label)
	assert.Equal(t, "incoming", summary.Relationships[1].Direction)
	assert.Equal(t, evolution.LabelIndifferent, summary.Relationships[1].Label)

	empty, err := svc.GetEntitySummary(ctx, "g1", store.EntityRef{Type: store.EntityNPC, ID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, empty.Traits)
	assert.Empty(t, empty.Relationships)
}
