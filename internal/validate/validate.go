// Package validate checks stored game state for integrity problems that the
// services cannot rule out on their own, such as edges written by hand or
// records that predate a catalog change.
package validate

import (
	"context"
	"fmt"

	"rolecraft/internal/config"
	"rolecraft/internal/evolution"
	"rolecraft/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingConnection = "dangling_connection"
	codeStaleCurrentScene  = "stale_current_scene"
	codeMalformedEvolution = "malformed_evolution"
	codeUnreachableScene   = "unreachable_scene"
	codeUnknownTrait       = "unknown_trait"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	GameID   string   `json:"game_id"`
	Subject  string   `json:"subject"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

type Store interface {
	ListGames(ctx context.Context) ([]store.Game, error)
	GetGame(ctx context.Context, gameID string) (*store.Game, error)
	ListScenes(ctx context.Context, gameID string) ([]store.Scene, error)
	GetSceneAvailability(ctx context.Context, gameID, sceneID string) (*store.SceneAvailability, error)
	ListSceneConnections(ctx context.Context, gameID string) ([]store.SceneConnection, error)
	ListPendingEvolutions(ctx context.Context, gameID string, status store.EvolutionStatus) ([]store.PendingEvolution, error)
	ListGameTraits(ctx context.Context, gameID string, status store.TraitStatus) ([]store.Trait, error)
}

// Run validates gameID, or every game when gameID is empty. A game that does
// not exist yields an empty report.
func Run(ctx context.Context, catalog *config.Catalog, db Store, gameID string) (*Report, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}

	var games []store.Game
	if gameID == "" {
		all, err := db.ListGames(ctx)
		if err != nil {
			return nil, fmt.Errorf("list games: %w", err)
		}
		games = all
	} else {
		game, err := db.GetGame(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("get game %s: %w", gameID, err)
		}
		if game != nil {
			games = append(games, *game)
		}
	}

	report := &Report{Issues: make([]Issue, 0)}
	for _, game := range games {
		issues, err := validateGame(ctx, catalog, db, game)
		if err != nil {
			return nil, fmt.Errorf("validating game %s: %w", game.ID, err)
		}
		report.Issues = append(report.Issues, issues...)
	}
	return report, nil
}

func validateGame(ctx context.Context, catalog *config.Catalog, db Store, game store.Game) ([]Issue, error) {
	scenes, err := db.ListScenes(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Scene, len(scenes))
	for _, scene := range scenes {
		byID[scene.ID] = scene
	}

	var issues []Issue
	issue := func(severity Severity, code, subject, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: severity,
			Code:     code,
			Message:  fmt.Sprintf(format, args...),
			GameID:   game.ID,
			Subject:  subject,
		})
	}

	if id := game.CurrentSceneID; id != "" {
		current, ok := byID[id]
		switch {
		case !ok:
			issue(SeverityError, codeStaleCurrentScene, id, "current scene %s does not exist in the game", id)
		case current.Status.Terminal():
			issue(SeverityError, codeStaleCurrentScene, id, "current scene %s is %s", id, current.Status)
		}
	}

	connections, err := db.ListSceneConnections(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	incoming := make(map[string]int)
	for _, conn := range connections {
		subject := conn.FromSceneID + " -> " + conn.ToSceneID
		_, fromOK := byID[conn.FromSceneID]
		_, toOK := byID[conn.ToSceneID]
		if !fromOK {
			issue(SeverityError, codeDanglingConnection, subject, "connection source %s does not exist", conn.FromSceneID)
		}
		if !toOK {
			issue(SeverityError, codeDanglingConnection, subject, "connection destination %s does not exist", conn.ToSceneID)
		}
		if fromOK && toOK {
			incoming[conn.ToSceneID]++
		}
	}

	for _, scene := range scenes {
		if scene.Status.Terminal() || incoming[scene.ID] > 0 {
			continue
		}
		avail, err := db.GetSceneAvailability(ctx, game.ID, scene.ID)
		if err != nil {
			return nil, err
		}
		if avail == nil || !avail.Unlocked {
			issue(SeverityWarn, codeUnreachableScene, scene.ID, "locked scene %s has no incoming connection", scene.ID)
		}
	}

	pending, err := db.ListPendingEvolutions(ctx, game.ID, store.EvolutionPending)
	if err != nil {
		return nil, err
	}
	for _, evo := range pending {
		if err := evolution.Malformed(evo); err != nil {
			issue(SeverityError, codeMalformedEvolution, evo.ID, "pending evolution %s: %v", evo.ID, err)
		}
	}

	traits, err := db.ListGameTraits(ctx, game.ID, store.TraitActive)
	if err != nil {
		return nil, err
	}
	for _, trait := range traits {
		if !catalog.IsKnownTrait(trait.Trait) {
			issue(SeverityWarn, codeUnknownTrait, trait.Entity.String(), "active trait %q is not in the catalog", trait.Trait)
		}
	}

	return issues, nil
}
