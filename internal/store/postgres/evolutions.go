package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

const evolutionColumns = `id, game_id, turn, source_event_id, evolution_type, entity_type, entity_id,
    trait, target_type, target_id, dimension, old_value, new_value, reason, status, dm_notes,
    created_at, resolved_at`

func clampedPtr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := store.Clamp(*value)
	return &v
}

func targetColumns(target *store.EntityRef) (string, string) {
	if target == nil {
		return "", ""
	}
	return string(target.Type), target.ID
}

func scanEvolution(row rowScanner) (store.PendingEvolution, error) {
	var evo store.PendingEvolution
	var evolutionType, entityType, targetType, targetID, dimension, status string

	err := row.Scan(
		&evo.ID, &evo.GameID, &evo.Turn, &evo.SourceEventID, &evolutionType, &entityType, &evo.Entity.ID,
		&evo.Trait, &targetType, &targetID, &dimension, &evo.OldValue, &evo.NewValue, &evo.Reason, &status, &evo.DMNotes,
		&evo.CreatedAt, &evo.ResolvedAt,
	)
	if err != nil {
		return evo, err
	}

	evo.EvolutionType = store.EvolutionType(evolutionType)
	evo.Entity.Type = store.EntityType(entityType)
	evo.Dimension = store.Dimension(dimension)
	evo.Status = store.EvolutionStatus(status)
	if targetType != "" || targetID != "" {
		evo.Target = &store.EntityRef{Type: store.EntityType(targetType), ID: targetID}
	}
	return evo, nil
}

func (c *Client) CreatePendingEvolution(ctx context.Context, evo store.PendingEvolution) error {
	targetType, targetID := targetColumns(evo.Target)
	status := evo.Status
	if status == "" {
		status = store.EvolutionPending
	}
	createdAt := evo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := c.pool.Exec(ctx,
		`INSERT INTO pending_evolutions (`+evolutionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NULL)`,
		evo.ID, evo.GameID, evo.Turn, evo.SourceEventID, string(evo.EvolutionType),
		string(evo.Entity.Type), evo.Entity.ID, evo.Trait, targetType, targetID, string(evo.Dimension),
		clampedPtr(evo.OldValue), clampedPtr(evo.NewValue), evo.Reason, string(status), evo.DMNotes,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("creating pending evolution %s: %w", evo.ID, err)
	}
	return nil
}

func (c *Client) GetPendingEvolution(ctx context.Context, id string) (*store.PendingEvolution, error) {
	evo, err := scanEvolution(c.pool.QueryRow(ctx,
		`SELECT `+evolutionColumns+` FROM pending_evolutions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending evolution %s: %w", id, err)
	}
	return &evo, nil
}

func (c *Client) UpdatePendingEvolution(ctx context.Context, evo store.PendingEvolution) (bool, error) {
	targetType, targetID := targetColumns(evo.Target)
	tag, err := c.pool.Exec(ctx,
		`UPDATE pending_evolutions SET
    entity_type = $1, entity_id = $2, trait = $3, target_type = $4, target_id = $5,
    dimension = $6, old_value = $7, new_value = $8, reason = $9
WHERE id = $10 AND status = 'pending'`,
		string(evo.Entity.Type), evo.Entity.ID, evo.Trait, targetType, targetID,
		string(evo.Dimension), clampedPtr(evo.OldValue), clampedPtr(evo.NewValue), evo.Reason,
		evo.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating pending evolution %s: %w", evo.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) ResolvePendingEvolution(ctx context.Context, id string, status store.EvolutionStatus, dmNotes string, at time.Time) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`UPDATE pending_evolutions SET status = $1, dm_notes = $2, resolved_at = $3
WHERE id = $4 AND status = 'pending'`,
		string(status), dmNotes, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("resolving pending evolution %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) ListPendingEvolutions(ctx context.Context, gameID string, status store.EvolutionStatus) ([]store.PendingEvolution, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+evolutionColumns+` FROM pending_evolutions
WHERE game_id = $1 AND ($2::TEXT = '' OR status = $2)
ORDER BY seq`,
		gameID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending evolutions for game %s: %w", gameID, err)
	}
	defer rows.Close()

	results := make([]store.PendingEvolution, 0)
	for rows.Next() {
		evo, err := scanEvolution(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pending evolution: %w", err)
		}
		results = append(results, evo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending evolution rows: %w", err)
	}
	return results, nil
}
