package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rolecraft/internal/store"
)

const evolutionColumns = `id, game_id, turn, source_event_id, evolution_type, entity_type, entity_id,
	trait, target_type, target_id, dimension, old_value, new_value, reason, status, dm_notes,
	created_at, resolved_at`

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: store.Clamp(*value), Valid: true}
}

func targetColumns(target *store.EntityRef) (string, string) {
	if target == nil {
		return "", ""
	}
	return string(target.Type), target.ID
}

func scanEvolution(row rowScanner) (store.PendingEvolution, error) {
	var evo store.PendingEvolution
	var evolutionType, entityType, targetType, targetID, dimension, status, createdAt string
	var oldValue, newValue sql.NullFloat64
	var resolvedAt sql.NullString

	err := row.Scan(
		&evo.ID, &evo.GameID, &evo.Turn, &evo.SourceEventID, &evolutionType, &entityType, &evo.Entity.ID,
		&evo.Trait, &targetType, &targetID, &dimension, &oldValue, &newValue, &evo.Reason, &status, &evo.DMNotes,
		&createdAt, &resolvedAt,
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
	if oldValue.Valid {
		v := oldValue.Float64
		evo.OldValue = &v
	}
	if newValue.Valid {
		v := newValue.Float64
		evo.NewValue = &v
	}
	if evo.CreatedAt, err = parseTime(createdAt); err != nil {
		return evo, err
	}
	if resolvedAt.Valid {
		t, err := parseTime(resolvedAt.String)
		if err != nil {
			return evo, err
		}
		evo.ResolvedAt = &t
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

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pending_evolutions (`+evolutionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		evo.ID, evo.GameID, evo.Turn, evo.SourceEventID, string(evo.EvolutionType),
		string(evo.Entity.Type), evo.Entity.ID, evo.Trait, targetType, targetID, string(evo.Dimension),
		nullFloat(evo.OldValue), nullFloat(evo.NewValue), evo.Reason, string(status), evo.DMNotes,
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("creating pending evolution %s: %w", evo.ID, err)
	}
	return nil
}

func (c *Client) GetPendingEvolution(ctx context.Context, id string) (*store.PendingEvolution, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+evolutionColumns+` FROM pending_evolutions WHERE id = ?`, id)
	evo, err := scanEvolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pending evolution %s: %w", id, err)
	}
	return &evo, nil
}

func (c *Client) UpdatePendingEvolution(ctx context.Context, evo store.PendingEvolution) (bool, error) {
	targetType, targetID := targetColumns(evo.Target)
	res, err := c.db.ExecContext(ctx,
		`UPDATE pending_evolutions SET
			entity_type = ?, entity_id = ?, trait = ?, target_type = ?, target_id = ?,
			dimension = ?, old_value = ?, new_value = ?, reason = ?
		WHERE id = ? AND status = 'pending'`,
		string(evo.Entity.Type), evo.Entity.ID, evo.Trait, targetType, targetID,
		string(evo.Dimension), nullFloat(evo.OldValue), nullFloat(evo.NewValue), evo.Reason,
		evo.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating pending evolution %s: %w", evo.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating pending evolution %s: %w", evo.ID, err)
	}
	return affected > 0, nil
}

func (c *Client) ResolvePendingEvolution(ctx context.Context, id string, status store.EvolutionStatus, dmNotes string, at time.Time) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE pending_evolutions SET status = ?, dm_notes = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), dmNotes, formatTime(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("resolving pending evolution %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolving pending evolution %s: %w", id, err)
	}
	return affected > 0, nil
}

func (c *Client) ListPendingEvolutions(ctx context.Context, gameID string, status store.EvolutionStatus) ([]store.PendingEvolution, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+evolutionColumns+` FROM pending_evolutions
		WHERE game_id = ? AND (? = '' OR status = ?)
		ORDER BY rowid`,
		gameID, string(status), string(status),
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
