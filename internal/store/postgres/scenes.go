package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

const sceneColumns = `s.id, s.game_id, s.name, s.description, s.scene_type, s.location_id,
    s.mood, s.stakes, s.status, s.started_turn, s.completed_turn`

func scanScene(row rowScanner, extra ...any) (store.Scene, error) {
	var scene store.Scene
	var status string
	dest := []any{
		&scene.ID, &scene.GameID, &scene.Name, &scene.Description, &scene.SceneType, &scene.LocationID,
		&scene.Mood, &scene.Stakes, &status, &scene.StartedTurn, &scene.CompletedTurn,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return scene, err
	}
	scene.Status = store.SceneStatus(status)
	return scene, nil
}

func collectScenes(rows pgx.Rows) ([]store.Scene, error) {
	defer rows.Close()

	scenes := make([]store.Scene, 0)
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scene: %w", err)
		}
		scenes = append(scenes, scene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene rows: %w", err)
	}
	return scenes, nil
}

func (c *Client) CreateScene(ctx context.Context, scene store.Scene) error {
	status := scene.Status
	if status == "" {
		status = store.SceneActive
	}
	_, err := c.pool.Exec(ctx,
		`INSERT INTO scenes (id, game_id, name, description, scene_type, location_id, mood, stakes, status, started_turn, completed_turn)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		scene.ID, scene.GameID, scene.Name, scene.Description, scene.SceneType, scene.LocationID,
		scene.Mood, scene.Stakes, string(status), scene.StartedTurn, scene.CompletedTurn,
	)
	if err != nil {
		return fmt.Errorf("creating scene %s: %w", scene.ID, err)
	}
	return nil
}

func (c *Client) GetScene(ctx context.Context, sceneID string) (*store.Scene, error) {
	scene, err := scanScene(c.pool.QueryRow(ctx,
		`SELECT `+sceneColumns+` FROM scenes s WHERE s.id = $1`, sceneID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting scene %s: %w", sceneID, err)
	}
	return &scene, nil
}

func (c *Client) ListScenes(ctx context.Context, gameID string) ([]store.Scene, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+sceneColumns+` FROM scenes s WHERE s.game_id = $1 ORDER BY s.seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying scenes for game %s: %w", gameID, err)
	}
	return collectScenes(rows)
}

func (c *Client) UpdateSceneStatus(ctx context.Context, sceneID string, status store.SceneStatus, completedTurn *int) error {
	_, err := c.pool.Exec(ctx,
		"UPDATE scenes SET status = $1, completed_turn = $2 WHERE id = $3",
		string(status), completedTurn, sceneID,
	)
	if err != nil {
		return fmt.Errorf("updating scene %s: %w", sceneID, err)
	}
	return nil
}

func (c *Client) InitSceneAvailability(ctx context.Context, gameID, sceneID string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO scene_availability (game_id, scene_id, unlocked) VALUES ($1, $2, FALSE)
ON CONFLICT (game_id, scene_id) DO NOTHING`,
		gameID, sceneID,
	)
	if err != nil {
		return fmt.Errorf("initialising availability for scene %s: %w", sceneID, err)
	}
	return nil
}

func (c *Client) UnlockScene(ctx context.Context, gameID, sceneID string, turn int, unlockedBy string) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`INSERT INTO scene_availability (game_id, scene_id, unlocked, unlocked_turn, unlocked_by)
VALUES ($1, $2, TRUE, $3, $4)
ON CONFLICT (game_id, scene_id) DO UPDATE SET
    unlocked = TRUE,
    unlocked_turn = EXCLUDED.unlocked_turn,
    unlocked_by = EXCLUDED.unlocked_by
WHERE NOT scene_availability.unlocked`,
		gameID, sceneID, turn, unlockedBy,
	)
	if err != nil {
		return false, fmt.Errorf("unlocking scene %s: %w", sceneID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) GetSceneAvailability(ctx context.Context, gameID, sceneID string) (*store.SceneAvailability, error) {
	var avail store.SceneAvailability
	err := c.pool.QueryRow(ctx,
		`SELECT game_id, scene_id, unlocked, unlocked_turn, unlocked_by
FROM scene_availability WHERE game_id = $1 AND scene_id = $2`,
		gameID, sceneID,
	).Scan(&avail.GameID, &avail.SceneID, &avail.Unlocked, &avail.UnlockedTurn, &avail.UnlockedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting availability for scene %s: %w", sceneID, err)
	}
	return &avail, nil
}

func (c *Client) ListAvailableScenes(ctx context.Context, gameID string) ([]store.Scene, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+sceneColumns+` FROM scenes s
JOIN scene_availability a ON a.scene_id = s.id AND a.game_id = s.game_id
WHERE s.game_id = $1 AND a.unlocked AND s.status = 'active'
ORDER BY s.seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying available scenes for game %s: %w", gameID, err)
	}
	return collectScenes(rows)
}

func (c *Client) UpsertSceneConnection(ctx context.Context, conn store.SceneConnection) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO scene_connections (game_id, from_scene_id, to_scene_id, connection_type, requirements, description)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (game_id, from_scene_id, to_scene_id) DO UPDATE SET
    connection_type = EXCLUDED.connection_type,
    requirements = EXCLUDED.requirements,
    description = EXCLUDED.description`,
		conn.GameID, conn.FromSceneID, conn.ToSceneID, string(conn.ConnectionType), conn.Requirements, conn.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting connection %s -> %s: %w", conn.FromSceneID, conn.ToSceneID, err)
	}
	return nil
}

func (c *Client) ListSceneConnections(ctx context.Context, gameID string) ([]store.SceneConnection, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT game_id, from_scene_id, to_scene_id, connection_type, requirements, description
FROM scene_connections WHERE game_id = $1 ORDER BY id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying connections for game %s: %w", gameID, err)
	}
	defer rows.Close()

	conns := make([]store.SceneConnection, 0)
	for rows.Next() {
		var conn store.SceneConnection
		var connType string
		if err := rows.Scan(&conn.GameID, &conn.FromSceneID, &conn.ToSceneID, &connType, &conn.Requirements, &conn.Description); err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		conn.ConnectionType = store.ConnectionType(connType)
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection rows: %w", err)
	}
	return conns, nil
}

func (c *Client) ListConnectedScenes(ctx context.Context, gameID, fromSceneID string) ([]store.ConnectedScene, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+sceneColumns+`,
    c.connection_type, c.requirements, c.description, a.unlocked_turn
FROM scene_connections c
JOIN scenes s ON s.id = c.to_scene_id AND s.game_id = c.game_id
JOIN scene_availability a ON a.scene_id = c.to_scene_id AND a.game_id = c.game_id
WHERE c.game_id = $1 AND c.from_scene_id = $2 AND a.unlocked
ORDER BY c.id`,
		gameID, fromSceneID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying connected scenes from %s: %w", fromSceneID, err)
	}
	defer rows.Close()

	results := make([]store.ConnectedScene, 0)
	for rows.Next() {
		var connType string
		var turn *int
		conn := store.SceneConnection{GameID: gameID, FromSceneID: fromSceneID}
		scene, err := scanScene(rows, &connType, &conn.Requirements, &conn.Description, &turn)
		if err != nil {
			return nil, fmt.Errorf("scanning connected scene: %w", err)
		}
		conn.ToSceneID = scene.ID
		conn.ConnectionType = store.ConnectionType(connType)
		results = append(results, store.ConnectedScene{Scene: scene, Connection: conn, UnlockedTurn: turn})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connected scene rows: %w", err)
	}
	return results, nil
}
