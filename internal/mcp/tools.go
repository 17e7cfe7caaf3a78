package mcp

import (
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rolecraft/internal/store"
)

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity_summary",
		Description: "Return an entity's active traits and every relationship touching it, with aggregate labels",
	}, s.handleGetEntitySummary)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_trait_catalog",
		Description: "List the traits entities can acquire, optionally for one category",
	}, s.handleGetTraitCatalog)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_pending_evolutions",
		Description: "List trait and relationship changes awaiting review for a game",
	}, s.handleListPendingEvolutions)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "detect_evolutions",
		Description: "Queue suggested trait and relationship changes from a committed event for review",
	}, s.handleDetectEvolutions)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "approve_evolution",
		Description: "Apply a pending evolution as proposed",
	}, s.handleApproveEvolution)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "edit_evolution",
		Description: "Change fields of a pending evolution and apply it",
	}, s.handleEditEvolution)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "refuse_evolution",
		Description: "Discard a pending evolution without applying it",
	}, s.handleRefuseEvolution)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "commit_event",
		Description: "Record a committed event and report NPCs ready to emerge as villains or allies",
	}, s.handleCommitEvent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_scene",
		Description: "Create an active scene, unlocked unless locked is set",
	}, s.handleCreateScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "start_scene",
		Description: "Make a scene the game's current scene, unlocking it if needed",
	}, s.handleStartScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "complete_scene",
		Description: "Mark an active scene completed",
	}, s.handleCompleteScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "abandon_scene",
		Description: "Mark an active scene abandoned",
	}, s.handleAbandonScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "unlock_scene",
		Description: "Make a locked scene available",
	}, s.handleUnlockScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "connect_scenes",
		Description: "Add or update a directed connection between two scenes",
	}, s.handleConnectScenes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_available_scenes",
		Description: "List unlocked scenes that are still active",
	}, s.handleListAvailableScenes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_connected_scenes",
		Description: "List unlocked scenes reachable from a scene",
	}, s.handleListConnectedScenes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_scene_summary",
		Description: "Return a scene with its event count, unlock state and whether it is current",
	}, s.handleGetSceneSummary)
}

func requireGame(gameID string) error {
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game_id is required")
	}
	return nil
}

func parseEntity(field, value string) (store.EntityRef, error) {
	ref, err := store.ParseEntityRef(value)
	if err != nil {
		return store.EntityRef{}, fmt.Errorf("%s: %w", field, err)
	}
	return ref, nil
}

// EvolutionOutput flattens a pending evolution for tool results: entity
// references use the type:id form and timestamps are RFC 3339 strings.
type EvolutionOutput struct {
	ID            string   `json:"id"`
	GameID        string   `json:"game_id"`
	Turn          int      `json:"turn"`
	SourceEventID string   `json:"source_event_id,omitempty"`
	EvolutionType string   `json:"evolution_type"`
	Entity        string   `json:"entity"`
	Trait         string   `json:"trait,omitempty"`
	Target        string   `json:"target,omitempty"`
	Dimension     string   `json:"dimension,omitempty"`
	OldValue      *float64 `json:"old_value,omitempty"`
	NewValue      *float64 `json:"new_value,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Status        string   `json:"status"`
	DMNotes       string   `json:"dm_notes,omitempty"`
	CreatedAt     string   `json:"created_at"`
	ResolvedAt    string   `json:"resolved_at,omitempty"`
}

func evolutionOutput(evo store.PendingEvolution) EvolutionOutput {
	out := EvolutionOutput{
		ID:            evo.ID,
		GameID:        evo.GameID,
		Turn:          evo.Turn,
		SourceEventID: evo.SourceEventID,
		EvolutionType: string(evo.EvolutionType),
		Entity:        evo.Entity.String(),
		Trait:         evo.Trait,
		Dimension:     string(evo.Dimension),
		OldValue:      evo.OldValue,
		NewValue:      evo.NewValue,
		Reason:        evo.Reason,
		Status:        string(evo.Status),
		DMNotes:       evo.DMNotes,
		CreatedAt:     evo.CreatedAt.UTC().Format(time.RFC3339),
	}
	if evo.Target != nil {
		out.Target = evo.Target.String()
	}
	if evo.ResolvedAt != nil {
		out.ResolvedAt = evo.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func evolutionOutputs(evos []store.PendingEvolution) []EvolutionOutput {
	out := make([]EvolutionOutput, 0, len(evos))
	for _, evo := range evos {
		out = append(out, evolutionOutput(evo))
	}
	return out
}
