package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rolecraft/internal/scene"
	"rolecraft/internal/store"
)

type CreateSceneInput struct {
	GameID      string `json:"game_id" jsonschema:"game the scene belongs to"`
	SceneID     string `json:"scene_id,omitempty" jsonschema:"scene id; generated when empty"`
	Name        string `json:"name" jsonschema:"scene name"`
	Description string `json:"description,omitempty" jsonschema:"what the scene is about"`
	SceneType   string `json:"scene_type,omitempty" jsonschema:"free-form scene kind, e.g. combat or social"`
	LocationID  string `json:"location_id,omitempty" jsonschema:"location the scene takes place in"`
	Mood        string `json:"mood,omitempty" jsonschema:"tone of the scene"`
	Stakes      string `json:"stakes,omitempty" jsonschema:"what is at risk"`
	Turn        int    `json:"turn" jsonschema:"turn the scene starts on"`
	Locked      bool   `json:"locked,omitempty" jsonschema:"keep the scene unavailable until it is unlocked"`
}

type SceneTransitionInput struct {
	GameID  string `json:"game_id" jsonschema:"game the scene belongs to"`
	SceneID string `json:"scene_id" jsonschema:"scene id"`
	Turn    int    `json:"turn" jsonschema:"turn the transition happens on"`
}

type UnlockSceneInput struct {
	GameID     string `json:"game_id" jsonschema:"game the scene belongs to"`
	SceneID    string `json:"scene_id" jsonschema:"scene id"`
	Turn       int    `json:"turn" jsonschema:"turn the scene becomes available"`
	UnlockedBy string `json:"unlocked_by,omitempty" jsonschema:"event or scene that unlocked it"`
}

type ConnectScenesInput struct {
	GameID         string `json:"game_id" jsonschema:"game both scenes belong to"`
	FromSceneID    string `json:"from_scene_id" jsonschema:"source scene id"`
	ToSceneID      string `json:"to_scene_id" jsonschema:"destination scene id"`
	ConnectionType string `json:"connection_type,omitempty" jsonschema:"path, conditional, hidden, one-way or teleport; defaults to path"`
	Requirements   string `json:"requirements,omitempty" jsonschema:"what it takes to use the connection"`
	Description    string `json:"description,omitempty" jsonschema:"how the scenes are linked"`
}

type GameInput struct {
	GameID string `json:"game_id" jsonschema:"game id"`
}

type SceneInput struct {
	GameID  string `json:"game_id" jsonschema:"game the scene belongs to"`
	SceneID string `json:"scene_id" jsonschema:"scene id"`
}

type ScenesOutput struct {
	Scenes []store.Scene `json:"scenes"`
}

type ConnectedScenesOutput struct {
	Scenes []store.ConnectedScene `json:"scenes"`
}

func (s *Server) handleCreateScene(ctx context.Context, req *sdk.CallToolRequest, input CreateSceneInput) (*sdk.CallToolResult, store.Scene, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, store.Scene{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, store.Scene{}, fmt.Errorf("name is required")
	}

	var created *store.Scene
	err := s.mutate(input.GameID, "create_scene", func() error {
		var err error
		created, err = s.scenes.CreateScene(ctx, scene.CreateInput{
			ID:          input.SceneID,
			GameID:      input.GameID,
			Name:        input.Name,
			Description: input.Description,
			SceneType:   input.SceneType,
			LocationID:  input.LocationID,
			Mood:        input.Mood,
			Stakes:      input.Stakes,
			Turn:        input.Turn,
			StartLocked: input.Locked,
		})
		return err
	})
	if err != nil {
		return nil, store.Scene{}, err
	}
	return nil, *created, nil
}

func (s *Server) handleStartScene(ctx context.Context, req *sdk.CallToolRequest, input SceneTransitionInput) (*sdk.CallToolResult, store.Scene, error) {
	return s.transition(ctx, input, "start_scene", s.scenes.StartScene)
}

func (s *Server) handleCompleteScene(ctx context.Context, req *sdk.CallToolRequest, input SceneTransitionInput) (*sdk.CallToolResult, store.Scene, error) {
	return s.transition(ctx, input, "complete_scene", s.scenes.CompleteScene)
}

func (s *Server) handleAbandonScene(ctx context.Context, req *sdk.CallToolRequest, input SceneTransitionInput) (*sdk.CallToolResult, store.Scene, error) {
	return s.transition(ctx, input, "abandon_scene", s.scenes.AbandonScene)
}

type transitionFunc func(ctx context.Context, gameID, sceneID string, turn int) (*store.Scene, error)

func (s *Server) transition(ctx context.Context, input SceneTransitionInput, tool string, fn transitionFunc) (*sdk.CallToolResult, store.Scene, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, store.Scene{}, err
	}
	if strings.TrimSpace(input.SceneID) == "" {
		return nil, store.Scene{}, fmt.Errorf("scene_id is required")
	}

	var updated *store.Scene
	err := s.mutate(input.GameID, tool, func() error {
		var err error
		updated, err = fn(ctx, input.GameID, input.SceneID, input.Turn)
		return err
	})
	if err != nil {
		return nil, store.Scene{}, err
	}
	return nil, *updated, nil
}

func (s *Server) handleUnlockScene(ctx context.Context, req *sdk.CallToolRequest, input UnlockSceneInput) (*sdk.CallToolResult, store.SceneAvailability, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, store.SceneAvailability{}, err
	}

	var avail *store.SceneAvailability
	err := s.mutate(input.GameID, "unlock_scene", func() error {
		var err error
		avail, err = s.scenes.UnlockScene(ctx, input.GameID, input.SceneID, input.Turn, input.UnlockedBy)
		return err
	})
	if err != nil {
		return nil, store.SceneAvailability{}, err
	}
	if avail == nil {
		return nil, store.SceneAvailability{}, fmt.Errorf("no availability recorded for scene %s", input.SceneID)
	}
	return nil, *avail, nil
}

func (s *Server) handleConnectScenes(ctx context.Context, req *sdk.CallToolRequest, input ConnectScenesInput) (*sdk.CallToolResult, store.SceneConnection, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, store.SceneConnection{}, err
	}
	conn := store.SceneConnection{
		GameID:         input.GameID,
		FromSceneID:    input.FromSceneID,
		ToSceneID:      input.ToSceneID,
		ConnectionType: store.ConnectionType(strings.ToLower(strings.TrimSpace(input.ConnectionType))),
		Requirements:   input.Requirements,
		Description:    input.Description,
	}
	if conn.ConnectionType == "" {
		conn.ConnectionType = store.ConnectionPath
	}

	err := s.mutate(input.GameID, "connect_scenes", func() error {
		return s.scenes.ConnectScenes(ctx, conn)
	})
	if err != nil {
		return nil, store.SceneConnection{}, err
	}
	return nil, conn, nil
}

func (s *Server) handleListAvailableScenes(ctx context.Context, req *sdk.CallToolRequest, input GameInput) (*sdk.CallToolResult, ScenesOutput, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, ScenesOutput{}, err
	}
	scenes, err := s.scenes.GetAvailableScenes(ctx, input.GameID)
	if err != nil {
		return nil, ScenesOutput{}, err
	}
	return nil, ScenesOutput{Scenes: scenes}, nil
}

func (s *Server) handleListConnectedScenes(ctx context.Context, req *sdk.CallToolRequest, input SceneInput) (*sdk.CallToolResult, ConnectedScenesOutput, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, ConnectedScenesOutput{}, err
	}
	connected, err := s.scenes.GetConnectedScenes(ctx, input.GameID, input.SceneID)
	if err != nil {
		return nil, ConnectedScenesOutput{}, err
	}
	return nil, ConnectedScenesOutput{Scenes: connected}, nil
}

func (s *Server) handleGetSceneSummary(ctx context.Context, req *sdk.CallToolRequest, input SceneInput) (*sdk.CallToolResult, scene.Summary, error) {
	if err := requireGame(input.GameID); err != nil {
		return nil, scene.Summary{}, err
	}
	summary, err := s.scenes.GetSceneSummary(ctx, input.GameID, input.SceneID)
	if err != nil {
		return nil, scene.Summary{}, err
	}
	if summary == nil {
		return nil, scene.Summary{}, fmt.Errorf("%w: %s in game %s", scene.ErrSceneNotFound, input.SceneID, input.GameID)
	}
	return nil, *summary, nil
}
