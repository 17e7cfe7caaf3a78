package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rolecraft/internal/store"
)

func (c *Client) EnsureGame(ctx context.Context, gameID, name string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO games (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		gameID, name, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("ensuring game %s: %w", gameID, err)
	}
	return nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*store.Game, error) {
	var game store.Game
	var current sql.NullString
	var createdAt string
	err := c.db.QueryRowContext(ctx,
		"SELECT id, name, current_scene_id, created_at FROM games WHERE id = ?",
		gameID,
	).Scan(&game.ID, &game.Name, &current, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting game %s: %w", gameID, err)
	}
	game.CurrentSceneID = current.String
	if game.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) ListGames(ctx context.Context) ([]store.Game, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id, name, current_scene_id, created_at FROM games ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := make([]store.Game, 0)
	for rows.Next() {
		var game store.Game
		var current sql.NullString
		var createdAt string
		if err := rows.Scan(&game.ID, &game.Name, &current, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		game.CurrentSceneID = current.String
		if game.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating game rows: %w", err)
	}
	return games, nil
}

func (c *Client) SetCurrentScene(ctx context.Context, gameID, sceneID string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO games (id, current_scene_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET current_scene_id = excluded.current_scene_id`,
		gameID, sceneID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("setting current scene for game %s: %w", gameID, err)
	}
	return nil
}

func (c *Client) ClearCurrentScene(ctx context.Context, gameID, sceneID string) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		"UPDATE games SET current_scene_id = NULL WHERE id = ? AND current_scene_id = ?",
		gameID, sceneID,
	)
	if err != nil {
		return false, fmt.Errorf("clearing current scene for game %s: %w", gameID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clearing current scene for game %s: %w", gameID, err)
	}
	return affected > 0, nil
}

func (c *Client) RecordEvent(ctx context.Context, event store.Event) error {
	if err := c.EnsureGame(ctx, event.GameID, ""); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO events (id, game_id, turn, event_type, actor_type, actor_id, target_type, target_id, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.GameID, event.Turn, event.EventType,
		event.ActorType, event.ActorID, event.TargetType, event.TargetID, event.Summary,
	)
	if err != nil {
		return fmt.Errorf("recording event %s: %w", event.ID, err)
	}
	return nil
}

func (c *Client) CountEventsInTurns(ctx context.Context, gameID string, fromTurn int, toTurn *int) (int, error) {
	var count int
	var err error
	if toTurn == nil {
		err = c.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM events WHERE game_id = ? AND turn >= ?",
			gameID, fromTurn,
		).Scan(&count)
	} else {
		err = c.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM events WHERE game_id = ? AND turn >= ? AND turn <= ?",
			gameID, fromTurn, *toTurn,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("counting events for game %s: %w", gameID, err)
	}
	return count, nil
}
