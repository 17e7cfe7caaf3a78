package scene

import (
	"context"

	"rolecraft/internal/store"
)

type Summary struct {
	Scene        store.Scene `json:"scene"`
	EventCount   int         `json:"event_count"`
	IsCurrent    bool        `json:"is_current"`
	Unlocked     bool        `json:"unlocked"`
	UnlockedTurn *int        `json:"unlocked_turn,omitempty"`
	UnlockedBy   string      `json:"unlocked_by,omitempty"`
}

// GetSceneSummary returns nil when the scene does not exist in gameID.
// Events are counted when their turn lies between the scene's start and
// completion turns, inclusive; an active scene counts up to now.
func (m *Manager) GetSceneSummary(ctx context.Context, gameID, sceneID string) (*Summary, error) {
	scene, err := m.store.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene == nil || scene.GameID != gameID {
		return nil, nil
	}

	count, err := m.store.CountEventsInTurns(ctx, gameID, scene.StartedTurn, scene.CompletedTurn)
	if err != nil {
		return nil, err
	}
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	avail, err := m.store.GetSceneAvailability(ctx, gameID, sceneID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Scene:      *scene,
		EventCount: count,
		IsCurrent:  game != nil && game.CurrentSceneID == sceneID,
	}
	if avail != nil {
		summary.Unlocked = avail.Unlocked
		summary.UnlockedTurn = avail.UnlockedTurn
		summary.UnlockedBy = avail.UnlockedBy
	}
	return summary, nil
}
