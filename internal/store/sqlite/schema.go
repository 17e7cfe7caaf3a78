package sqlite

import (
	"context"
	"fmt"
	"strings"
)

const ddl = `
CREATE TABLE IF NOT EXISTS games (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	current_scene_id TEXT,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	turn        INTEGER NOT NULL,
	event_type  TEXT NOT NULL DEFAULT '',
	actor_type  TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT '',
	target_type TEXT NOT NULL DEFAULT '',
	target_id   TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS relationships (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id      TEXT NOT NULL,
	from_type    TEXT NOT NULL,
	from_id      TEXT NOT NULL,
	to_type      TEXT NOT NULL,
	to_id        TEXT NOT NULL,
	trust        REAL NOT NULL DEFAULT 0.5 CHECK (trust BETWEEN 0.0 AND 1.0),
	respect      REAL NOT NULL DEFAULT 0.5 CHECK (respect BETWEEN 0.0 AND 1.0),
	affection    REAL NOT NULL DEFAULT 0.5 CHECK (affection BETWEEN 0.0 AND 1.0),
	fear         REAL NOT NULL DEFAULT 0.0 CHECK (fear BETWEEN 0.0 AND 1.0),
	resentment   REAL NOT NULL DEFAULT 0.0 CHECK (resentment BETWEEN 0.0 AND 1.0),
	debt         REAL NOT NULL DEFAULT 0.0 CHECK (debt BETWEEN 0.0 AND 1.0),
	updated_turn INTEGER NOT NULL DEFAULT 0,
	CONSTRAINT uq_relationship UNIQUE (game_id, from_type, from_id, to_type, to_id)
);

CREATE TABLE IF NOT EXISTS traits (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id         TEXT NOT NULL,
	entity_type     TEXT NOT NULL,
	entity_id       TEXT NOT NULL,
	trait           TEXT NOT NULL,
	acquired_turn   INTEGER NOT NULL,
	source_event_id TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'faded', 'removed')),
	CONSTRAINT uq_trait UNIQUE (game_id, entity_type, entity_id, trait)
);

CREATE TABLE IF NOT EXISTS pending_evolutions (
	id              TEXT PRIMARY KEY,
	game_id         TEXT NOT NULL,
	turn            INTEGER NOT NULL,
	source_event_id TEXT NOT NULL DEFAULT '',
	evolution_type  TEXT NOT NULL CHECK (evolution_type IN ('trait_add', 'trait_remove', 'relationship_change')),
	entity_type     TEXT NOT NULL,
	entity_id       TEXT NOT NULL,
	trait           TEXT NOT NULL DEFAULT '',
	target_type     TEXT NOT NULL DEFAULT '',
	target_id       TEXT NOT NULL DEFAULT '',
	dimension       TEXT NOT NULL DEFAULT '',
	old_value       REAL CHECK (old_value IS NULL OR old_value BETWEEN 0.0 AND 1.0),
	new_value       REAL CHECK (new_value IS NULL OR new_value BETWEEN 0.0 AND 1.0),
	reason          TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'edited', 'refused')),
	dm_notes        TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	resolved_at     TEXT
);

CREATE TABLE IF NOT EXISTS scenes (
	id             TEXT PRIMARY KEY,
	game_id        TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	scene_type     TEXT NOT NULL DEFAULT '',
	location_id    TEXT NOT NULL DEFAULT '',
	mood           TEXT NOT NULL DEFAULT '',
	stakes         TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'abandoned')),
	started_turn   INTEGER NOT NULL,
	completed_turn INTEGER
);

CREATE TABLE IF NOT EXISTS scene_availability (
	game_id       TEXT NOT NULL,
	scene_id      TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
	unlocked      INTEGER NOT NULL DEFAULT 0,
	unlocked_turn INTEGER,
	unlocked_by   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (game_id, scene_id)
);

CREATE TABLE IF NOT EXISTS scene_connections (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id         TEXT NOT NULL,
	from_scene_id   TEXT NOT NULL,
	to_scene_id     TEXT NOT NULL,
	connection_type TEXT NOT NULL DEFAULT 'path' CHECK (connection_type IN ('path', 'conditional', 'hidden', 'one-way', 'teleport')),
	requirements    TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	CONSTRAINT uq_scene_connection UNIQUE (game_id, from_scene_id, to_scene_id)
);

CREATE INDEX IF NOT EXISTS idx_events_game_turn ON events (game_id, turn);
CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships (game_id, from_type, from_id);
CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships (game_id, to_type, to_id);
CREATE INDEX IF NOT EXISTS idx_traits_entity ON traits (game_id, entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_pending_game_status ON pending_evolutions (game_id, status);
CREATE INDEX IF NOT EXISTS idx_scenes_game ON scenes (game_id);
CREATE INDEX IF NOT EXISTS idx_scene_connections_from ON scene_connections (game_id, from_scene_id);
`

func (c *Client) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
