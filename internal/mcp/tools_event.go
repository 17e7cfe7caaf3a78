package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rolecraft/internal/emergence"
	"rolecraft/internal/store"
)

type CommitEventInput struct {
	GameID     string `json:"game_id" jsonschema:"game the event belongs to"`
	EventID    string `json:"event_id,omitempty" jsonschema:"event id; generated when empty"`
	Turn       int    `json:"turn" jsonschema:"turn the event happened on"`
	EventType  string `json:"event_type,omitempty" jsonschema:"free-form event kind, e.g. combat or dialogue"`
	ActorType  string `json:"actor_type,omitempty" jsonschema:"player, character, npc, location or narrator"`
	ActorID    string `json:"actor_id,omitempty" jsonschema:"actor id"`
	TargetType string `json:"target_type,omitempty" jsonschema:"target entity type"`
	TargetID   string `json:"target_id,omitempty" jsonschema:"target id"`
	Summary    string `json:"summary,omitempty" jsonschema:"one-line description of what happened"`
}

func (s *Server) handleCommitEvent(ctx context.Context, req *sdk.CallToolRequest, input CommitEventInput) (*sdk.CallToolResult, emergence.Result, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, emergence.Result{}, err
	}
	if input.Turn < 0 {
		return nil, emergence.Result{}, fmt.Errorf("turn must not be negative")
	}
	event := store.Event{
		ID:         strings.TrimSpace(input.EventID),
		GameID:     input.GameID,
		Turn:       input.Turn,
		EventType:  input.EventType,
		ActorType:  strings.ToLower(strings.TrimSpace(input.ActorType)),
		ActorID:    strings.TrimSpace(input.ActorID),
		TargetType: strings.ToLower(strings.TrimSpace(input.TargetType)),
		TargetID:   strings.TrimSpace(input.TargetID),
		Summary:    input.Summary,
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var result *emergence.Result
	err := s.mutate(input.GameID, "commit_event", func() error {
		var err error
		result, err = s.emergence.OnEventCommitted(ctx, event)
		return err
	})
	if err != nil {
		return nil, emergence.Result{}, err
	}
	return nil, *result, nil
}
