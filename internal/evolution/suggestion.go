package evolution

import (
	"fmt"
	"strings"

	"rolecraft/internal/store"
)

// Suggestion is a proposed change produced upstream. The concrete types are
// TraitAdd, TraitRemove and RelationshipChange.
type Suggestion interface {
	Kind() store.EvolutionType
	isSuggestion()
}

type TraitAdd struct {
	Entity store.EntityRef
	Trait  string
	Reason string
}

type TraitRemove struct {
	Entity store.EntityRef
	Trait  string
	Reason string
}

// RelationshipChange moves one dimension of Entity's feelings toward Target
// by the signed Change.
type RelationshipChange struct {
	Entity    store.EntityRef
	Target    store.EntityRef
	Dimension store.Dimension
	Change    float64
	Reason    string
}

func (TraitAdd) Kind() store.EvolutionType           { return store.EvolutionTraitAdd }
func (TraitRemove) Kind() store.EvolutionType        { return store.EvolutionTraitRemove }
func (RelationshipChange) Kind() store.EvolutionType { return store.EvolutionRelationshipChange }

func (TraitAdd) isSuggestion()           {}
func (TraitRemove) isSuggestion()        {}
func (RelationshipChange) isSuggestion() {}

// SuggestionInput is the JSON form accepted by the CLI and MCP tools.
type SuggestionInput struct {
	EvolutionType string           `json:"evolution_type" jsonschema:"one of trait_add, trait_remove, relationship_change"`
	Entity        store.EntityRef  `json:"entity" jsonschema:"entity the change applies to"`
	Trait         string           `json:"trait,omitempty" jsonschema:"trait name for trait_add and trait_remove"`
	Target        *store.EntityRef `json:"target,omitempty" jsonschema:"other endpoint for relationship_change"`
	Dimension     string           `json:"dimension,omitempty" jsonschema:"trust, respect, affection, fear, resentment or debt"`
	Change        float64          `json:"change,omitempty" jsonschema:"signed delta applied to the current dimension value"`
	Reason        string           `json:"reason,omitempty" jsonschema:"why the change is proposed"`
}

// Suggestion converts the wire form into its tagged variant. Only the shape
// needed to pick a variant is checked here; missing payload fields surface
// when the evolution is applied.
func (in SuggestionInput) Suggestion() (Suggestion, error) {
	if !in.Entity.Type.Valid() || strings.TrimSpace(in.Entity.ID) == "" {
		return nil, fmt.Errorf("suggestion entity %q is not a valid entity reference", in.Entity.String())
	}

	switch store.EvolutionType(strings.TrimSpace(in.EvolutionType)) {
	case store.EvolutionTraitAdd:
		return TraitAdd{Entity: in.Entity, Trait: strings.TrimSpace(in.Trait), Reason: in.Reason}, nil
	case store.EvolutionTraitRemove:
		return TraitRemove{Entity: in.Entity, Trait: strings.TrimSpace(in.Trait), Reason: in.Reason}, nil
	case store.EvolutionRelationshipChange:
		change := RelationshipChange{
			Entity:    in.Entity,
			Dimension: store.Dimension(strings.ToLower(strings.TrimSpace(in.Dimension))),
			Change:    in.Change,
			Reason:    in.Reason,
		}
		if in.Target != nil {
			change.Target = *in.Target
		}
		return change, nil
	default:
		return nil, fmt.Errorf("unknown evolution type %q", in.EvolutionType)
	}
}

// ParseSuggestions converts a batch, failing on the first bad entry.
func ParseSuggestions(inputs []SuggestionInput) ([]Suggestion, error) {
	suggestions := make([]Suggestion, 0, len(inputs))
	for i, in := range inputs {
		s, err := in.Suggestion()
		if err != nil {
			return nil, fmt.Errorf("suggestion %d: %w", i, err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}
