package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

const relationshipColumns = `game_id, from_type, from_id, to_type, to_id,
    trust, respect, affection, fear, resentment, debt, updated_turn`

func scanRelationship(row rowScanner) (store.Relationship, error) {
	var rel store.Relationship
	var fromType, toType string
	err := row.Scan(
		&rel.GameID, &fromType, &rel.From.ID, &toType, &rel.To.ID,
		&rel.Dimensions.Trust, &rel.Dimensions.Respect, &rel.Dimensions.Affection,
		&rel.Dimensions.Fear, &rel.Dimensions.Resentment, &rel.Dimensions.Debt,
		&rel.UpdatedTurn,
	)
	rel.From.Type = store.EntityType(fromType)
	rel.To.Type = store.EntityType(toType)
	return rel, err
}

func (c *Client) GetRelationship(ctx context.Context, gameID string, from, to store.EntityRef) (*store.Relationship, error) {
	rel, err := scanRelationship(c.pool.QueryRow(ctx,
		`SELECT `+relationshipColumns+` FROM relationships
WHERE game_id = $1 AND from_type = $2 AND from_id = $3 AND to_type = $4 AND to_id = $5`,
		gameID, string(from.Type), from.ID, string(to.Type), to.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting relationship %s -> %s: %w", from, to, err)
	}
	return &rel, nil
}

func (c *Client) ListRelationshipsFor(ctx context.Context, gameID string, entity store.EntityRef) ([]store.Relationship, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+relationshipColumns+` FROM relationships
WHERE game_id = $1
  AND ((from_type = $2 AND from_id = $3) OR (to_type = $2 AND to_id = $3))
ORDER BY id`,
		gameID, string(entity.Type), entity.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying relationships for %s: %w", entity, err)
	}
	defer rows.Close()

	results := make([]store.Relationship, 0)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		results = append(results, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationship rows: %w", err)
	}
	return results, nil
}

func (c *Client) UpsertRelationship(ctx context.Context, rel store.Relationship) (*store.Relationship, error) {
	dims := rel.Dimensions.Clamped()
	stored, err := scanRelationship(c.pool.QueryRow(ctx,
		`INSERT INTO relationships (`+relationshipColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (game_id, from_type, from_id, to_type, to_id) DO UPDATE SET
    trust = EXCLUDED.trust,
    respect = EXCLUDED.respect,
    affection = EXCLUDED.affection,
    fear = EXCLUDED.fear,
    resentment = EXCLUDED.resentment,
    debt = EXCLUDED.debt,
    updated_turn = EXCLUDED.updated_turn
RETURNING `+relationshipColumns,
		rel.GameID, string(rel.From.Type), rel.From.ID, string(rel.To.Type), rel.To.ID,
		dims.Trust, dims.Respect, dims.Affection, dims.Fear, dims.Resentment, dims.Debt,
		rel.UpdatedTurn,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting relationship %s -> %s: %w", rel.From, rel.To, err)
	}
	return &stored, nil
}

func (c *Client) SetRelationshipDimension(ctx context.Context, gameID string, from, to store.EntityRef, dim store.Dimension, value float64, turn int) (*store.Relationship, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("invalid relationship dimension: %s", dim)
	}
	dims := store.DefaultDimensions().With(dim, value)

	// dim is validated above, so interpolating the column name is safe.
	query := fmt.Sprintf(`INSERT INTO relationships (`+relationshipColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (game_id, from_type, from_id, to_type, to_id) DO UPDATE SET
    %[1]s = EXCLUDED.%[1]s,
    updated_turn = EXCLUDED.updated_turn
RETURNING `+relationshipColumns, string(dim))

	stored, err := scanRelationship(c.pool.QueryRow(ctx, query,
		gameID, string(from.Type), from.ID, string(to.Type), to.ID,
		dims.Trust, dims.Respect, dims.Affection, dims.Fear, dims.Resentment, dims.Debt,
		turn,
	))
	if err != nil {
		return nil, fmt.Errorf("setting %s on relationship %s -> %s: %w", dim, from, to, err)
	}
	return &stored, nil
}
