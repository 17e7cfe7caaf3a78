package evolution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rolecraft/internal/notify"
	"rolecraft/internal/store"
)

// EventRef identifies the committed event a batch of suggestions came from.
type EventRef struct {
	ID     string
	GameID string
	Turn   int
}

// DetectEvolutions queues one pending evolution per suggestion. Relationship
// deltas are resolved against the current dimension value (or its default)
// into clamped absolute old/new values. Nothing outside the review queue is
// written.
func (s *Service) DetectEvolutions(ctx context.Context, event EventRef, suggestions []Suggestion) ([]store.PendingEvolution, error) {
	created := make([]store.PendingEvolution, 0, len(suggestions))
	for i, suggestion := range suggestions {
		evo, err := s.pendingFor(ctx, event, suggestion)
		if err != nil {
			return created, fmt.Errorf("suggestion %d: %w", i, err)
		}
		if err := s.store.CreatePendingEvolution(ctx, evo); err != nil {
			return created, fmt.Errorf("queuing suggestion %d for game %s: %w", i, event.GameID, err)
		}
		s.log.Debug("evolution queued",
			zap.String("id", evo.ID),
			zap.String("game_id", evo.GameID),
			zap.String("type", string(evo.EvolutionType)),
			zap.Stringer("entity", evo.Entity),
		)
		created = append(created, evo)
		s.emit(notify.EvolutionCreated, evo)
	}
	return created, nil
}

func (s *Service) pendingFor(ctx context.Context, event EventRef, suggestion Suggestion) (store.PendingEvolution, error) {
	evo := store.PendingEvolution{
		ID:            s.newID(),
		GameID:        event.GameID,
		Turn:          event.Turn,
		SourceEventID: event.ID,
		EvolutionType: suggestion.Kind(),
		Status:        store.EvolutionPending,
		CreatedAt:     s.now(),
	}

	switch sg := suggestion.(type) {
	case TraitAdd:
		evo.Entity, evo.Trait, evo.Reason = sg.Entity, sg.Trait, sg.Reason
		if sg.Trait != "" && !s.catalog.IsKnownTrait(sg.Trait) {
			s.log.Warn("suggested trait is not in the catalog",
				zap.String("game_id", event.GameID),
				zap.String("trait", sg.Trait),
			)
		}
	case TraitRemove:
		evo.Entity, evo.Trait, evo.Reason = sg.Entity, sg.Trait, sg.Reason
	case RelationshipChange:
		evo.Entity, evo.Dimension, evo.Reason = sg.Entity, sg.Dimension, sg.Reason
		if !sg.Target.IsZero() {
			target := sg.Target
			evo.Target = &target
		}
		if evo.Target != nil && sg.Dimension.Valid() {
			current, err := s.currentValue(ctx, event.GameID, sg.Entity, sg.Target, sg.Dimension)
			if err != nil {
				return evo, err
			}
			oldValue := store.Clamp(current)
			newValue := store.Clamp(current + sg.Change)
			evo.OldValue, evo.NewValue = &oldValue, &newValue
		}
	default:
		return evo, fmt.Errorf("%w: unsupported suggestion %T", ErrMalformedEvolution, suggestion)
	}
	return evo, nil
}

func (s *Service) currentValue(ctx context.Context, gameID string, from, to store.EntityRef, dim store.Dimension) (float64, error) {
	rel, err := s.store.GetRelationship(ctx, gameID, from, to)
	if err != nil {
		return 0, err
	}
	if rel == nil {
		return dim.Default(), nil
	}
	return rel.Dimensions.Get(dim), nil
}
