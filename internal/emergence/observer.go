// Package emergence watches committed events for NPCs whose feelings have
// crossed the line into villainy or alliance.
package emergence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rolecraft/internal/notify"
	"rolecraft/internal/store"
)

type Store interface {
	ListRelationshipsFor(ctx context.Context, gameID string, entity store.EntityRef) ([]store.Relationship, error)
	RecordEvent(ctx context.Context, event store.Event) error
}

type Observer struct {
	store      Store
	thresholds Thresholds
	emitter    notify.Emitter
	log        *zap.Logger
	record     bool
	now        func() time.Time
}

type Option func(*Observer)

func WithThresholds(t Thresholds) Option {
	return func(o *Observer) { o.thresholds = t }
}

func WithEmitter(e notify.Emitter) Option {
	return func(o *Observer) { o.emitter = e }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Observer) {
		if l != nil {
			o.log = l
		}
	}
}

// WithoutEventRecording stops the observer from writing committed events to
// the store, for hosts that record events themselves.
func WithoutEventRecording() Option {
	return func(o *Observer) { o.record = false }
}

func WithClock(now func() time.Time) Option {
	return func(o *Observer) { o.now = now }
}

func New(st Store, opts ...Option) *Observer {
	o := &Observer{
		store:      st,
		thresholds: DefaultThresholds(),
		log:        zap.NewNop(),
		record:     true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.Named("emergence")
	return o
}

type Result struct {
	GameID        string              `json:"game_id"`
	EventID       string              `json:"event_id"`
	Opportunities []store.Opportunity `json:"opportunities"`
}

// CalculateConfidence scores d for the given type using the observer's
// thresholds.
func (o *Observer) CalculateConfidence(kind store.EmergenceType, d store.Dimensions) float64 {
	return o.thresholds.Confidence(kind, d)
}

// OnEventCommitted inspects the relationships around the event's actor and
// NPC target and reports NPCs ready to emerge. Events without a
// relationship-bearing actor yield an empty result.
func (o *Observer) OnEventCommitted(ctx context.Context, event store.Event) (*Result, error) {
	result := &Result{GameID: event.GameID, EventID: event.ID, Opportunities: make([]store.Opportunity, 0)}

	if o.record {
		if err := o.store.RecordEvent(ctx, event); err != nil {
			return nil, err
		}
	}

	actor, ok := event.Actor()
	if !ok || !holdsRelationships(actor.Type) {
		return result, nil
	}

	scan := []store.EntityRef{actor}
	if target, ok := event.Target(); ok && target.Type == store.EntityNPC && target != actor {
		scan = append(scan, target)
	}

	seen := make(map[string]int)
	for _, entity := range scan {
		rels, err := o.store.ListRelationshipsFor(ctx, event.GameID, entity)
		if err != nil {
			return nil, fmt.Errorf("scanning relationships of %s in game %s: %w", entity, event.GameID, err)
		}
		for _, rel := range rels {
			other := rel.Other(entity)
			if other.Type != store.EntityNPC || other == entity {
				continue
			}
			for _, opp := range o.check(event, other, entity, rel.Dimensions.Clamped()) {
				key := opp.Entity.String() + "|" + string(opp.Type)
				if i, dup := seen[key]; dup {
					if opp.Confidence > result.Opportunities[i].Confidence {
						result.Opportunities[i] = opp
					}
					continue
				}
				seen[key] = len(result.Opportunities)
				result.Opportunities = append(result.Opportunities, opp)
			}
		}
	}

	o.publish(result)
	return result, nil
}

func holdsRelationships(t store.EntityType) bool {
	switch t {
	case store.EntityPlayer, store.EntityCharacter, store.EntityNPC:
		return true
	}
	return false
}

func (o *Observer) check(event store.Event, npc, toward store.EntityRef, d store.Dimensions) []store.Opportunity {
	var found []store.Opportunity
	if opp, ok := o.checkVillainEmergence(npc, toward, d); ok {
		found = append(found, o.stamp(event, opp))
	}
	if opp, ok := o.checkAllyEmergence(npc, toward, d); ok {
		found = append(found, o.stamp(event, opp))
	}
	return found
}

func (o *Observer) stamp(event store.Event, opp store.Opportunity) store.Opportunity {
	opp.GameID = event.GameID
	opp.EventID = event.ID
	opp.Turn = event.Turn
	return opp
}

func (o *Observer) checkVillainEmergence(npc, toward store.EntityRef, d store.Dimensions) (store.Opportunity, bool) {
	t := o.thresholds
	if d.Fear < t.VillainFear || d.Resentment < t.VillainResentment {
		return store.Opportunity{}, false
	}

	confidence := t.Confidence(store.EmergenceVillain, d)
	if confidence < t.MinConfidence {
		o.log.Debug("villain finding below confidence floor",
			zap.Stringer("npc", npc), zap.Float64("confidence", confidence))
		return store.Opportunity{}, false
	}

	factors := []store.ContributingFactor{
		{Dimension: store.DimFear, Value: d.Fear, Threshold: t.VillainFear},
		{Dimension: store.DimResentment, Value: d.Resentment, Threshold: t.VillainResentment},
	}
	fears, resents := "fears", "resents"
	if d.Fear >= highThreshold {
		fears = "deeply fears"
	}
	if d.Resentment >= highThreshold {
		resents = "deeply resents"
	}
	reason := fmt.Sprintf("%s %s and %s %s", npc, fears, resents, toward)

	var extras []string
	if d.Trust < villainLowTrust {
		extras = append(extras, "little trust")
		factors = append(factors, store.ContributingFactor{Dimension: store.DimTrust, Value: d.Trust, Threshold: villainLowTrust})
	}
	if d.Respect < villainLowRespect {
		extras = append(extras, "little respect")
		factors = append(factors, store.ContributingFactor{Dimension: store.DimRespect, Value: d.Respect, Threshold: villainLowRespect})
	}
	if len(extras) > 0 {
		reason += " (" + strings.Join(extras, ", ") + ")"
	}

	return store.Opportunity{
		Type:                store.EmergenceVillain,
		Entity:              npc,
		Toward:              toward,
		Confidence:          confidence,
		Reason:              reason,
		ContributingFactors: factors,
		Dimensions:          d,
	}, true
}

func (o *Observer) checkAllyEmergence(npc, toward store.EntityRef, d store.Dimensions) (store.Opportunity, bool) {
	t := o.thresholds
	paths := t.qualifyingAllyPaths(d)
	if len(paths) == 0 {
		return store.Opportunity{}, false
	}
	if allyBlocked(d) {
		o.log.Debug("ally finding blocked by fear or resentment", zap.Stringer("npc", npc))
		return store.Opportunity{}, false
	}

	confidence := t.Confidence(store.EmergenceAlly, d)
	if confidence < t.MinConfidence {
		o.log.Debug("ally finding below confidence floor",
			zap.Stringer("npc", npc), zap.Float64("confidence", confidence))
		return store.Opportunity{}, false
	}

	phrases := make([]string, 0, len(paths))
	factors := make([]store.ContributingFactor, 0, 2*len(paths))
	for _, p := range paths {
		phrases = append(phrases, p.phrase)
		factors = append(factors, p.first.factor(d), p.second.factor(d))
	}

	return store.Opportunity{
		Type:                store.EmergenceAlly,
		Entity:              npc,
		Toward:              toward,
		Confidence:          confidence,
		Reason:              fmt.Sprintf("%s %s %s", npc, joinPhrases(phrases), toward),
		ContributingFactors: factors,
		Dimensions:          d,
	}, true
}

func joinPhrases(phrases []string) string {
	if len(phrases) <= 1 {
		return strings.Join(phrases, "")
	}
	return strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]
}

func (o *Observer) publish(result *Result) {
	if len(result.Opportunities) == 0 {
		return
	}
	o.log.Debug("emergence detected",
		zap.String("game_id", result.GameID),
		zap.String("event_id", result.EventID),
		zap.Int("count", len(result.Opportunities)),
	)
	if o.emitter == nil {
		return
	}

	at := o.now()
	for _, opp := range result.Opportunities {
		var kind notify.Kind
		switch opp.Type {
		case store.EmergenceVillain:
			kind = notify.EmergenceVillain
		case store.EmergenceAlly:
			kind = notify.EmergenceAlly
		default:
			continue
		}
		o.emitter.Emit(notify.EmergenceNotice{
			Type:          kind,
			GameID:        result.GameID,
			EventID:       result.EventID,
			Opportunities: []store.Opportunity{opp},
			At:            at,
		})
	}
	o.emitter.Emit(notify.EmergenceNotice{
		Type:          notify.EmergenceDetected,
		GameID:        result.GameID,
		EventID:       result.EventID,
		Opportunities: result.Opportunities,
		At:            at,
	})
}
