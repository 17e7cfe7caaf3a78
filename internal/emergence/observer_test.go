package emergence

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolecraft/internal/notify"
	"rolecraft/internal/store"
	"rolecraft/internal/store/storetest"
)

var (
	party = store.EntityRef{Type: store.EntityPlayer, ID: "party"}
	vex   = store.EntityRef{Type: store.EntityNPC, ID: "vex"}
	mira  = store.EntityRef{Type: store.EntityNPC, ID: "mira"}
	inn   = store.EntityRef{Type: store.EntityLocation, ID: "inn"}
)

type captured struct {
	notices []notify.EmergenceNotice
}

func (c *captured) Emit(n notify.Notification) {
	if en, ok := n.(notify.EmergenceNotice); ok {
		c.notices = append(c.notices, en)
	}
}

func committed(actor, target store.EntityRef) store.Event {
	return store.Event{
		ID: "evt-1", GameID: "g1", Turn: 4, EventType: "combat",
		ActorType: string(actor.Type), ActorID: actor.ID,
		TargetType: string(target.Type), TargetID: target.ID,
	}
}

func seed(t *testing.T, db store.Store, from, to store.EntityRef, d store.Dimensions) {
	t.Helper()
	_, err := db.UpsertRelationship(context.Background(), store.Relationship{GameID: "g1", From: from, To: to, Dimensions: d, UpdatedTurn: 1})
	require.NoError(t, err)
}

func villainous() store.Dimensions {
	return store.Dimensions{Trust: 0.1, Respect: 0.2, Affection: 0.5, Fear: 0.85, Resentment: 0.8}
}

func TestVillainDetected(t *testing.T) {
	db := storetest.NewSQLite(t)
	rec := &captured{}
	obs := New(db, WithEmitter(rec))

	seed(t, db, vex, party, villainous())

	result, err := obs.OnEventCommitted(context.Background(), committed(party, inn))
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 1)

	opp := result.Opportunities[0]
	assert.Equal(t, store.EmergenceVillain, opp.Type)
	assert.Equal(t, vex, opp.Entity)
	assert.Equal(t, party, opp.Toward)
	assert.Greater(t, opp.Confidence, 0.3)
	assert.Equal(t, "npc:vex deeply fears and deeply resents player:party (little trust, little respect)", opp.Reason)
	assert.Len(t, opp.ContributingFactors, 4)
	assert.Equal(t, 4, opp.Turn)
	assert.Equal(t, "evt-1", opp.EventID)

	require.Len(t, rec.notices, 2)
	assert.Equal(t, notify.EmergenceVillain, rec.notices[0].Type)
	assert.Equal(t, notify.EmergenceDetected, rec.notices[1].Type)
	assert.Len(t, rec.notices[1].Opportunities, 1)
}

func TestVillainRequiresBothGates(t *testing.T) {
	db := storetest.NewSQLite(t)
	rec := &captured{}
	obs := New(db, WithEmitter(rec))

	d := villainous()
	d.Fear = 0.4
	seed(t, db, vex, party, d)

	result, err := obs.OnEventCommitted(context.Background(), committed(party, inn))
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
	assert.NotNil(t, result.Opportunities)
	assert.Empty(t, rec.notices)
}

func TestAllyDetectedAndBlocked(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewSQLite(t)
	obs := New(db)

	seed(t, db, mira, party, store.Dimensions{Trust: 0.85, Respect: 0.85, Affection: 0.5})

	result, err := obs.OnEventCommitted(ctx, committed(party, inn))
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 1)
	assert.Equal(t, store.EmergenceAlly, result.Opportunities[0].Type)
	assert.Equal(t, "npc:mira trusts and respects and is fond of player:party", result.Opportunities[0].Reason)
	assert.Len(t, result.Opportunities[0].ContributingFactors, 4)

	seed(t, db, mira, party, store.Dimensions{Trust: 0.85, Respect: 0.85, Affection: 0.5, Fear: 0.6})
	result, err = obs.OnEventCommitted(ctx, committed(party, inn))
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
}

func TestDuplicateFindingsAreCollapsed(t *testing.T) {
	db := storetest.NewSQLite(t)
	rec := &captured{}
	obs := New(db, WithEmitter(rec))

	stronger := villainous()
	stronger.Fear = 0.95
	seed(t, db, vex, party, villainous())
	seed(t, db, vex, mira, stronger)

	for i := 0; i < 2; i++ {
		rec.notices = nil
		result, err := obs.OnEventCommitted(context.Background(), committed(party, mira))
		require.NoError(t, err)
		require.Len(t, result.Opportunities, 1)

		opp := result.Opportunities[0]
		assert.Equal(t, vex, opp.Entity)
		assert.Equal(t, mira, opp.Toward)
		assert.Equal(t, 0.95, opp.Dimensions.Fear)

		require.Len(t, rec.notices, 2)
	}
}

func TestNonRelationshipActorsAreIgnored(t *testing.T) {
	db := storetest.NewSQLite(t)
	obs := New(db)
	seed(t, db, vex, party, villainous())

	narrator := store.Event{ID: "evt-n", GameID: "g1", Turn: 2, ActorType: "narrator", ActorID: "dm"}
	result, err := obs.OnEventCommitted(context.Background(), narrator)
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)

	place := store.Event{ID: "evt-p", GameID: "g1", Turn: 2, ActorType: "location", ActorID: "inn"}
	result, err = obs.OnEventCommitted(context.Background(), place)
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)

	count, err := db.CountEventsInTurns(context.Background(), "g1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOnlyNPCEndpointsEmerge(t *testing.T) {
	db := storetest.NewSQLite(t)
	obs := New(db, WithoutEventRecording())

	rival := store.EntityRef{Type: store.EntityCharacter, ID: "rook"}
	seed(t, db, rival, party, villainous())

	result, err := obs.OnEventCommitted(context.Background(), committed(party, inn))
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)

	count, err := db.CountEventsInTurns(context.Background(), "g1", 0, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLowConfidenceIsDiscarded(t *testing.T) {
	db := storetest.NewSQLite(t)
	obs := New(db)

	seed(t, db, vex, party, store.Dimensions{Trust: 0.5, Respect: 0.6, Affection: 0.5, Fear: 0.62, Resentment: 0.55})

	result, err := obs.OnEventCommitted(context.Background(), committed(party, inn))
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
	assert.Less(t, obs.CalculateConfidence(store.EmergenceVillain, store.Dimensions{Trust: 0.5, Respect: 0.6, Affection: 0.5, Fear: 0.62, Resentment: 0.55}), 0.3)
}

func TestCalculateConfidenceStaysInRange(t *testing.T) {
	th := DefaultThresholds()
	values := []float64{0, 0.1, 0.3, 0.5, 0.6, 0.8, 1, -2, 3, math.NaN()}

	for _, kind := range []store.EmergenceType{store.EmergenceVillain, store.EmergenceAlly} {
		for _, a := range values {
			for _, b := range values {
				for _, c := range values {
					d := store.Dimensions{Trust: a, Respect: b, Affection: c, Fear: b, Resentment: a, Debt: c}
					got := th.Confidence(kind, d)
					if got < 0 || got > 1 || got != got {
						t.Fatalf("Confidence(%s, %+v) = %v, outside [0, 1]", kind, d, got)
					}
				}
			}
		}
		all := func(v float64) store.Dimensions {
			return store.Dimensions{Trust: v, Respect: v, Affection: v, Fear: v, Resentment: v, Debt: v}
		}
		assert.GreaterOrEqual(t, th.Confidence(kind, all(0)), 0.0)
		assert.LessOrEqual(t, th.Confidence(kind, all(1)), 1.0)
	}
}

func TestVillainConfidenceValue(t *testing.T) {
	th := DefaultThresholds()
	// (0.625 + 0.6) / 2 + 0.1 + 0.1 + 0.1 - 0.1 (affection 0.5)
	assert.InDelta(t, 0.8125, th.Confidence(store.EmergenceVillain, villainous()), 1e-9)
}

func TestAllyConfidenceRewardsMultiplePaths(t *testing.T) {
	th := DefaultThresholds()

	single := store.Dimensions{Trust: 0.85, Respect: 0.85, Affection: 0.2}
	double := store.Dimensions{Trust: 0.85, Respect: 0.85, Affection: 0.5}
	triple := store.Dimensions{Trust: 0.85, Respect: 0.85, Affection: 0.5, Debt: 0.8}

	assert.InDelta(t, 0.625, th.Confidence(store.EmergenceAlly, single), 1e-9)
	assert.InDelta(t, (0.625+0.35)/2+0.1, th.Confidence(store.EmergenceAlly, double), 1e-9)
	assert.InDelta(t, (0.625+0.35+0.6)/3+0.2, th.Confidence(store.EmergenceAlly, triple), 1e-9)
}

func TestConfiguredThresholdsApply(t *testing.T) {
	db := storetest.NewSQLite(t)
	th := DefaultThresholds()
	th.VillainFear = 0.9
	obs := New(db, WithThresholds(th))

	seed(t, db, vex, party, villainous())

	result, err := obs.OnEventCommitted(context.Background(), committed(party, inn))
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
}
