package evolution

import (
	"context"
	"fmt"

	"rolecraft/internal/config"
	"rolecraft/internal/store"
)

type EntitySummary struct {
	GameID        string                `json:"game_id"`
	Entity        store.EntityRef       `json:"entity"`
	Traits        []TraitSummary        `json:"traits"`
	Relationships []RelationshipSummary `json:"relationships"`
}

type TraitSummary struct {
	Name         string               `json:"name"`
	Category     config.TraitCategory `json:"category,omitempty"`
	AcquiredTurn int                  `json:"acquired_turn"`
}

// RelationshipSummary describes one relationship from the point of view of
// the summarized entity. Direction is "outgoing" when the entity holds the
// feelings and "incoming" when they are held toward it.
type RelationshipSummary struct {
	Other       store.EntityRef  `json:"other"`
	Direction   string           `json:"direction"`
	Dimensions  store.Dimensions `json:"dimensions"`
	Label       Label            `json:"label"`
	UpdatedTurn int              `json:"updated_turn"`
}

// TraitNames returns the active trait names in acquisition order.
func (s EntitySummary) TraitNames() []string {
	names := make([]string, 0, len(s.Traits))
	for _, t := range s.Traits {
		names = append(names, t.Name)
	}
	return names
}

// GetEntitySummary collects an entity's active traits and every relationship
// touching it. It only reads.
func (s *Service) GetEntitySummary(ctx context.Context, gameID string, entity store.EntityRef) (*EntitySummary, error) {
	traits, err := s.store.ListTraits(ctx, gameID, entity, store.TraitActive)
	if err != nil {
		return nil, fmt.Errorf("loading traits for %s in game %s: %w", entity, gameID, err)
	}
	rels, err := s.store.ListRelationshipsFor(ctx, gameID, entity)
	if err != nil {
		return nil, fmt.Errorf("loading relationships for %s in game %s: %w", entity, gameID, err)
	}

	summary := &EntitySummary{
		GameID:        gameID,
		Entity:        entity,
		Traits:        make([]TraitSummary, 0, len(traits)),
		Relationships: make([]RelationshipSummary, 0, len(rels)),
	}
	for _, t := range traits {
		summary.Traits = append(summary.Traits, TraitSummary{
			Name:         t.Trait,
			Category:     s.catalog.Category(t.Trait),
			AcquiredTurn: t.AcquiredTurn,
		})
	}
	for _, rel := range rels {
		direction := "outgoing"
		if rel.From != entity {
			direction = "incoming"
		}
		summary.Relationships = append(summary.Relationships, RelationshipSummary{
			Other:       rel.Other(entity),
			Direction:   direction,
			Dimensions:  rel.Dimensions,
			Label:       ComputeAggregateLabel(rel.Dimensions),
			UpdatedTurn: rel.UpdatedTurn,
		})
	}
	return summary, nil
}
