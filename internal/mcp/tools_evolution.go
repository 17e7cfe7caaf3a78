package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rolecraft/internal/config"
	"rolecraft/internal/evolution"
	"rolecraft/internal/store"
)

type GetEntitySummaryInput struct {
	GameID string `json:"game_id" jsonschema:"game to read from"`
	Entity string `json:"entity" jsonschema:"entity as type:id, e.g. npc:mira"`
}

type GetTraitCatalogInput struct {
	Category string `json:"category,omitempty" jsonschema:"moral, emotional, capability or reputation"`
}

type TraitOutput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

type TraitCatalogOutput struct {
	Traits []TraitOutput `json:"traits"`
}

type ListPendingEvolutionsInput struct {
	GameID string `json:"game_id" jsonschema:"game to list"`
}

type EvolutionsOutput struct {
	Evolutions []EvolutionOutput `json:"evolutions"`
}

type DetectEvolutionsInput struct {
	GameID      string                      `json:"game_id" jsonschema:"game the event belongs to"`
	EventID     string                      `json:"event_id" jsonschema:"id of the committed event"`
	Turn        int                         `json:"turn" jsonschema:"turn the event happened on"`
	Suggestions []evolution.SuggestionInput `json:"suggestions" jsonschema:"proposed trait and relationship changes"`
}

type ResolveEvolutionInput struct {
	ID      string `json:"id" jsonschema:"pending evolution id"`
	DMNotes string `json:"dm_notes,omitempty" jsonschema:"reviewer notes kept with the record"`
}

type EditEvolutionInput struct {
	ID        string   `json:"id" jsonschema:"pending evolution id"`
	DMNotes   string   `json:"dm_notes,omitempty" jsonschema:"reviewer notes kept with the record"`
	Entity    string   `json:"entity,omitempty" jsonschema:"replacement entity as type:id"`
	Trait     *string  `json:"trait,omitempty" jsonschema:"replacement trait name"`
	Target    string   `json:"target,omitempty" jsonschema:"replacement relationship target as type:id"`
	Dimension string   `json:"dimension,omitempty" jsonschema:"replacement relationship dimension"`
	NewValue  *float64 `json:"new_value,omitempty" jsonschema:"replacement absolute value between 0 and 1"`
	Reason    *string  `json:"reason,omitempty" jsonschema:"replacement reason"`
}

func (s *Server) handleGetEntitySummary(ctx context.Context, req *sdk.CallToolRequest, input GetEntitySummaryInput) (*sdk.CallToolResult, evolution.EntitySummary, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, evolution.EntitySummary{}, err
	}
	entity, err := parseEntity("entity", input.Entity)
	if err != nil {
		return nil, evolution.EntitySummary{}, err
	}
	summary, err := s.evolution.GetEntitySummary(ctx, input.GameID, entity)
	if err != nil {
		return nil, evolution.EntitySummary{}, err
	}
	if summary == nil {
		return nil, evolution.EntitySummary{}, fmt.Errorf("no summary for %s in game %s", entity, input.GameID)
	}
	return nil, *summary, nil
}

func (s *Server) handleGetTraitCatalog(ctx context.Context, req *sdk.CallToolRequest, input GetTraitCatalogInput) (*sdk.CallToolResult, TraitCatalogOutput, error) {
	defs := s.catalog.Traits
	if category := strings.TrimSpace(input.Category); category != "" {
		c := config.TraitCategory(strings.ToLower(category))
		if !c.Valid() {
			return nil, TraitCatalogOutput{}, fmt.Errorf("unknown trait category: %s", category)
		}
		defs = s.catalog.ByCategory(c)
	}

	output := make([]TraitOutput, 0, len(defs))
	for _, def := range defs {
		output = append(output, TraitOutput{Name: def.Name, Category: string(def.Category), Description: def.Description})
	}
	return nil, TraitCatalogOutput{Traits: output}, nil
}

func (s *Server) handleListPendingEvolutions(ctx context.Context, req *sdk.CallToolRequest, input ListPendingEvolutionsInput) (*sdk.CallToolResult, EvolutionsOutput, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, EvolutionsOutput{}, err
	}
	evos, err := s.evolution.ListPending(ctx, input.GameID)
	if err != nil {
		return nil, EvolutionsOutput{}, err
	}
	return nil, EvolutionsOutput{Evolutions: evolutionOutputs(evos)}, nil
}

func (s *Server) handleDetectEvolutions(ctx context.Context, req *sdk.CallToolRequest, input DetectEvolutionsInput) (*sdk.CallToolResult, EvolutionsOutput, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, EvolutionsOutput{}, err
	}
	suggestions, err := evolution.ParseSuggestions(input.Suggestions)
	if err != nil {
		return nil, EvolutionsOutput{}, err
	}

	var created []store.PendingEvolution
	err = s.mutate(input.GameID, "detect_evolutions", func() error {
		var err error
		created, err = s.evolution.DetectEvolutions(ctx, evolution.EventRef{
			ID:     input.EventID,
			GameID: input.GameID,
			Turn:   input.Turn,
		}, suggestions)
		return err
	})
	if err != nil {
		return nil, EvolutionsOutput{}, err
	}
	return nil, EvolutionsOutput{Evolutions: evolutionOutputs(created)}, nil
}

func (s *Server) handleApproveEvolution(ctx context.Context, req *sdk.CallToolRequest, input ResolveEvolutionInput) (*sdk.CallToolResult, EvolutionOutput, error) {
	return s.resolveEvolution(ctx, input.ID, "approve_evolution", func() (*store.PendingEvolution, error) {
		return s.evolution.Approve(ctx, input.ID, input.DMNotes)
	})
}

func (s *Server) handleRefuseEvolution(ctx context.Context, req *sdk.CallToolRequest, input ResolveEvolutionInput) (*sdk.CallToolResult, EvolutionOutput, error) {
	return s.resolveEvolution(ctx, input.ID, "refuse_evolution", func() (*store.PendingEvolution, error) {
		return s.evolution.Refuse(ctx, input.ID, input.DMNotes)
	})
}

func (s *Server) handleEditEvolution(ctx context.Context, req *sdk.CallToolRequest, input EditEvolutionInput) (*sdk.CallToolResult, EvolutionOutput, error) {
	changes, err := editChanges(input)
	if err != nil {
		return nil, EvolutionOutput{}, err
	}
	return s.resolveEvolution(ctx, input.ID, "edit_evolution", func() (*store.PendingEvolution, error) {
		return s.evolution.Edit(ctx, input.ID, changes, input.DMNotes)
	})
}

// resolveEvolution looks up the evolution's game so the resolution holds the
// right game while it runs.
func (s *Server) resolveEvolution(ctx context.Context, id, tool string, fn func() (*store.PendingEvolution, error)) (*sdk.CallToolResult, EvolutionOutput, error) {
	if strings.TrimSpace(id) == "" {
		return nil, EvolutionOutput{}, fmt.Errorf("id is required")
	}
	evo, err := s.evolution.Get(ctx, id)
	if err != nil {
		return nil, EvolutionOutput{}, err
	}
	if evo == nil {
		return nil, EvolutionOutput{}, fmt.Errorf("%w: %s", evolution.ErrNotFound, id)
	}

	var resolved *store.PendingEvolution
	err = s.mutate(evo.GameID, tool, func() error {
		var err error
		resolved, err = fn()
		return err
	})
	if err != nil {
		return nil, EvolutionOutput{}, err
	}
	return nil, evolutionOutput(*resolved), nil
}

func editChanges(input EditEvolutionInput) (evolution.Changes, error) {
	changes := evolution.Changes{
		Trait:    input.Trait,
		NewValue: input.NewValue,
		Reason:   input.Reason,
	}
	if input.Entity != "" {
		entity, err := parseEntity("entity", input.Entity)
		if err != nil {
			return evolution.Changes{}, err
		}
		changes.Entity = &entity
	}
	if input.Target != "" {
		target, err := parseEntity("target", input.Target)
		if err != nil {
			return evolution.Changes{}, err
		}
		changes.Target = &target
	}
	if input.Dimension != "" {
		dim, err := store.ParseDimension(input.Dimension)
		if err != nil {
			return evolution.Changes{}, err
		}
		changes.Dimension = &dim
	}
	return changes, nil
}
