package evolution

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rolecraft/internal/notify"
	"rolecraft/internal/store"
)

// Changes overrides fields of a pending evolution during Edit. Nil fields are
// left as proposed.
type Changes struct {
	Entity    *store.EntityRef
	Trait     *string
	Target    *store.EntityRef
	Dimension *store.Dimension
	NewValue  *float64
	Reason    *string
}

func (c Changes) retargets() bool {
	return c.Entity != nil || c.Target != nil || c.Dimension != nil
}

// Approve applies a pending evolution as proposed and marks it approved.
func (s *Service) Approve(ctx context.Context, id, dmNotes string) (*store.PendingEvolution, error) {
	evo, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, evo, store.EvolutionApproved, notify.EvolutionApproved, dmNotes)
}

// Edit overrides fields of a pending evolution, applies the edited record and
// marks it edited. When a relationship change is pointed at a different pair
// or dimension, its old value is re-read from the store.
func (s *Service) Edit(ctx context.Context, id string, changes Changes, dmNotes string) (*store.PendingEvolution, error) {
	evo, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Entity != nil {
		evo.Entity = *changes.Entity
	}
	if changes.Trait != nil {
		evo.Trait = strings.TrimSpace(*changes.Trait)
	}
	if changes.Target != nil {
		target := *changes.Target
		evo.Target = &target
	}
	if changes.Dimension != nil {
		evo.Dimension = *changes.Dimension
	}
	if changes.Reason != nil {
		evo.Reason = *changes.Reason
	}
	if evo.EvolutionType == store.EvolutionRelationshipChange && changes.retargets() &&
		evo.Target != nil && evo.Dimension.Valid() {
		current, err := s.currentValue(ctx, evo.GameID, evo.Entity, *evo.Target, evo.Dimension)
		if err != nil {
			return nil, fmt.Errorf("re-reading relationship for evolution %s: %w", id, err)
		}
		oldValue := store.Clamp(current)
		evo.OldValue = &oldValue
	}
	if changes.NewValue != nil {
		newValue := store.Clamp(*changes.NewValue)
		evo.NewValue = &newValue
	}

	updated, err := s.store.UpdatePendingEvolution(ctx, *evo)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: %s in game %s", ErrNotPending, id, evo.GameID)
	}

	return s.commit(ctx, evo, store.EvolutionEdited, notify.EvolutionEdited, dmNotes)
}

// Refuse marks a pending evolution refused without touching traits or
// relationships.
func (s *Service) Refuse(ctx context.Context, id, dmNotes string) (*store.PendingEvolution, error) {
	evo, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, evo, store.EvolutionRefused, notify.EvolutionRefused, dmNotes)
}

func (s *Service) loadPending(ctx context.Context, id string) (*store.PendingEvolution, error) {
	evo, err := s.store.GetPendingEvolution(ctx, id)
	if err != nil {
		return nil, err
	}
	if evo == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if evo.Status != store.EvolutionPending {
		return nil, fmt.Errorf("%w: %s in game %s is %s", ErrNotPending, id, evo.GameID, evo.Status)
	}
	return evo, nil
}

func (s *Service) commit(ctx context.Context, evo *store.PendingEvolution, status store.EvolutionStatus, kind notify.Kind, dmNotes string) (*store.PendingEvolution, error) {
	if err := s.apply(ctx, *evo); err != nil {
		return nil, fmt.Errorf("applying evolution %s in game %s: %w", evo.ID, evo.GameID, err)
	}
	return s.resolve(ctx, evo, status, kind, dmNotes)
}

func (s *Service) resolve(ctx context.Context, evo *store.PendingEvolution, status store.EvolutionStatus, kind notify.Kind, dmNotes string) (*store.PendingEvolution, error) {
	at := s.now()
	ok, err := s.store.ResolvePendingEvolution(ctx, evo.ID, status, dmNotes, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s in game %s", ErrNotPending, evo.ID, evo.GameID)
	}

	evo.Status = status
	evo.DMNotes = dmNotes
	evo.ResolvedAt = &at

	s.log.Debug("evolution resolved",
		zap.String("id", evo.ID),
		zap.String("game_id", evo.GameID),
		zap.String("status", string(status)),
	)
	s.emit(kind, *evo)
	return evo, nil
}

// apply writes the evolution through to traits or relationships.
func (s *Service) apply(ctx context.Context, evo store.PendingEvolution) error {
	if err := Malformed(evo); err != nil {
		return fmt.Errorf("evolution %s: %w", evo.ID, err)
	}

	switch evo.EvolutionType {
	case store.EvolutionTraitAdd:
		return s.store.AddTrait(ctx, store.Trait{
			GameID:        evo.GameID,
			Entity:        evo.Entity,
			Trait:         evo.Trait,
			AcquiredTurn:  evo.Turn,
			SourceEventID: evo.SourceEventID,
			Status:        store.TraitActive,
		})
	case store.EvolutionTraitRemove:
		return s.store.RemoveTrait(ctx, evo.GameID, evo.Entity, evo.Trait)
	case store.EvolutionRelationshipChange:
		_, err := s.store.SetRelationshipDimension(ctx, evo.GameID, evo.Entity, *evo.Target, evo.Dimension, *evo.NewValue, evo.Turn)
		return err
	default:
		return fmt.Errorf("%w: unknown evolution type %q", ErrMalformedEvolution, evo.EvolutionType)
	}
}

// Malformed reports why a stored evolution could not be applied, or nil.
func Malformed(evo store.PendingEvolution) error {
	if evo.Entity.IsZero() {
		return fmt.Errorf("%w: no entity", ErrMalformedEvolution)
	}
	switch evo.EvolutionType {
	case store.EvolutionTraitAdd, store.EvolutionTraitRemove:
		if evo.Trait == "" {
			return fmt.Errorf("%w: %s without trait", ErrMalformedEvolution, evo.EvolutionType)
		}
	case store.EvolutionRelationshipChange:
		if evo.Target == nil || !evo.Dimension.Valid() || evo.NewValue == nil {
			return fmt.Errorf("%w: relationship_change without target, dimension or new value", ErrMalformedEvolution)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedEvolution, evo.EvolutionType)
	}
	return nil
}
