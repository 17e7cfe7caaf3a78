package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

const traitColumns = `game_id, entity_type, entity_id, trait, acquired_turn, source_event_id, status`

func (c *Client) AddTrait(ctx context.Context, trait store.Trait) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO traits (`+traitColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, 'active')
ON CONFLICT (game_id, entity_type, entity_id, trait) DO UPDATE SET
    acquired_turn = EXCLUDED.acquired_turn,
    source_event_id = EXCLUDED.source_event_id,
    status = 'active'
WHERE traits.status <> 'active'`,
		trait.GameID, string(trait.Entity.Type), trait.Entity.ID, trait.Trait,
		trait.AcquiredTurn, trait.SourceEventID,
	)
	if err != nil {
		return fmt.Errorf("adding trait %s to %s: %w", trait.Trait, trait.Entity, err)
	}
	return nil
}

func (c *Client) RemoveTrait(ctx context.Context, gameID string, entity store.EntityRef, trait string) error {
	_, err := c.pool.Exec(ctx,
		`UPDATE traits SET status = 'removed'
WHERE game_id = $1 AND entity_type = $2 AND entity_id = $3 AND trait = $4`,
		gameID, string(entity.Type), entity.ID, trait,
	)
	if err != nil {
		return fmt.Errorf("removing trait %s from %s: %w", trait, entity, err)
	}
	return nil
}

func (c *Client) ListTraits(ctx context.Context, gameID string, entity store.EntityRef, status store.TraitStatus) ([]store.Trait, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+traitColumns+` FROM traits
WHERE game_id = $1 AND entity_type = $2 AND entity_id = $3
  AND ($4::TEXT = '' OR status = $4)
ORDER BY acquired_turn, id`,
		gameID, string(entity.Type), entity.ID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("querying traits for %s: %w", entity, err)
	}
	return collectTraits(rows)
}

func (c *Client) ListGameTraits(ctx context.Context, gameID string, status store.TraitStatus) ([]store.Trait, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+traitColumns+` FROM traits
WHERE game_id = $1 AND ($2::TEXT = '' OR status = $2)
ORDER BY entity_type, entity_id, acquired_turn, id`,
		gameID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("querying traits for game %s: %w", gameID, err)
	}
	return collectTraits(rows)
}

func collectTraits(rows pgx.Rows) ([]store.Trait, error) {
	defer rows.Close()

	traits := make([]store.Trait, 0)
	for rows.Next() {
		var trait store.Trait
		var entityType, status string
		if err := rows.Scan(&trait.GameID, &entityType, &trait.Entity.ID, &trait.Trait,
			&trait.AcquiredTurn, &trait.SourceEventID, &status); err != nil {
			return nil, fmt.Errorf("scanning trait: %w", err)
		}
		trait.Entity.Type = store.EntityType(entityType)
		trait.Status = store.TraitStatus(status)
		traits = append(traits, trait)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trait rows: %w", err)
	}
	return traits, nil
}
