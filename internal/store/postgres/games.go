package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

func (c *Client) EnsureGame(ctx context.Context, gameID, name string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO games (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`,
		gameID, name,
	)
	if err != nil {
		return fmt.Errorf("ensuring game %s: %w", gameID, err)
	}
	return nil
}

func scanGame(row rowScanner) (store.Game, error) {
	var game store.Game
	var current *string
	err := row.Scan(&game.ID, &game.Name, &current, &game.CreatedAt)
	if current != nil {
		game.CurrentSceneID = *current
	}
	return game, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*store.Game, error) {
	game, err := scanGame(c.pool.QueryRow(ctx,
		"SELECT id, name, current_scene_id, created_at FROM games WHERE id = $1", gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting game %s: %w", gameID, err)
	}
	return &game, nil
}

func (c *Client) ListGames(ctx context.Context) ([]store.Game, error) {
	rows, err := c.pool.Query(ctx, "SELECT id, name, current_scene_id, created_at FROM games ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := make([]store.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating game rows: %w", err)
	}
	return games, nil
}

func (c *Client) SetCurrentScene(ctx context.Context, gameID, sceneID string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO games (id, current_scene_id) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET current_scene_id = EXCLUDED.current_scene_id`,
		gameID, sceneID,
	)
	if err != nil {
		return fmt.Errorf("setting current scene for game %s: %w", gameID, err)
	}
	return nil
}

func (c *Client) ClearCurrentScene(ctx context.Context, gameID, sceneID string) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		"UPDATE games SET current_scene_id = NULL WHERE id = $1 AND current_scene_id = $2",
		gameID, sceneID,
	)
	if err != nil {
		return false, fmt.Errorf("clearing current scene for game %s: %w", gameID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) RecordEvent(ctx context.Context, event store.Event) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"INSERT INTO games (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", event.GameID,
	); err != nil {
		return fmt.Errorf("ensuring game %s: %w", event.GameID, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO events (id, game_id, turn, event_type, actor_type, actor_id, target_type, target_id, summary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`,
		event.ID, event.GameID, event.Turn, event.EventType,
		event.ActorType, event.ActorID, event.TargetType, event.TargetID, event.Summary,
	)
	if err != nil {
		return fmt.Errorf("recording event %s: %w", event.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (c *Client) CountEventsInTurns(ctx context.Context, gameID string, fromTurn int, toTurn *int) (int, error) {
	var count int
	err := c.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events
WHERE game_id = $1 AND turn >= $2 AND ($3::INTEGER IS NULL OR turn <= $3)`,
		gameID, fromTurn, toTurn,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events for game %s: %w", gameID, err)
	}
	return count, nil
}
