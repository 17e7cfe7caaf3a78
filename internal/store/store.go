package store

import (
	"context"
	"time"
)

// Store is the durable record of games, relationships, traits, pending
// evolutions and scenes. Lookups that match nothing return nil or an empty
// slice, never an error.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	EnsureGame(ctx context.Context, gameID, name string) error
	GetGame(ctx context.Context, gameID string) (*Game, error)
	ListGames(ctx context.Context) ([]Game, error)
	SetCurrentScene(ctx context.Context, gameID, sceneID string) error
	// ClearCurrentScene clears the pointer only when it still names sceneID.
	ClearCurrentScene(ctx context.Context, gameID, sceneID string) (bool, error)

	RecordEvent(ctx context.Context, event Event) error
	CountEventsInTurns(ctx context.Context, gameID string, fromTurn int, toTurn *int) (int, error)

	GetRelationship(ctx context.Context, gameID string, from, to EntityRef) (*Relationship, error)
	ListRelationshipsFor(ctx context.Context, gameID string, entity EntityRef) ([]Relationship, error)
	UpsertRelationship(ctx context.Context, rel Relationship) (*Relationship, error)
	SetRelationshipDimension(ctx context.Context, gameID string, from, to EntityRef, dim Dimension, value float64, turn int) (*Relationship, error)

	AddTrait(ctx context.Context, trait Trait) error
	RemoveTrait(ctx context.Context, gameID string, entity EntityRef, trait string) error
	ListTraits(ctx context.Context, gameID string, entity EntityRef, status TraitStatus) ([]Trait, error)
	ListGameTraits(ctx context.Context, gameID string, status TraitStatus) ([]Trait, error)

	CreatePendingEvolution(ctx context.Context, evolution PendingEvolution) error
	GetPendingEvolution(ctx context.Context, id string) (*PendingEvolution, error)
	// UpdatePendingEvolution rewrites the proposal fields of a record that is
	// still pending and reports whether it did.
	UpdatePendingEvolution(ctx context.Context, evolution PendingEvolution) (bool, error)
	// ResolvePendingEvolution moves a pending record to a terminal status and
	// reports false when the record was not pending.
	ResolvePendingEvolution(ctx context.Context, id string, status EvolutionStatus, dmNotes string, at time.Time) (bool, error)
	ListPendingEvolutions(ctx context.Context, gameID string, status EvolutionStatus) ([]PendingEvolution, error)

	CreateScene(ctx context.Context, scene Scene) error
	GetScene(ctx context.Context, sceneID string) (*Scene, error)
	ListScenes(ctx context.Context, gameID string) ([]Scene, error)
	UpdateSceneStatus(ctx context.Context, sceneID string, status SceneStatus, completedTurn *int) error

	InitSceneAvailability(ctx context.Context, gameID, sceneID string) error
	// UnlockScene reports whether the scene went from locked to unlocked.
	UnlockScene(ctx context.Context, gameID, sceneID string, turn int, unlockedBy string) (bool, error)
	GetSceneAvailability(ctx context.Context, gameID, sceneID string) (*SceneAvailability, error)
	ListAvailableScenes(ctx context.Context, gameID string) ([]Scene, error)

	UpsertSceneConnection(ctx context.Context, conn SceneConnection) error
	ListSceneConnections(ctx context.Context, gameID string) ([]SceneConnection, error)
	ListConnectedScenes(ctx context.Context, gameID, fromSceneID string) ([]ConnectedScene, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
