// Package scene runs the scene lifecycle and the unlock graph that decides
// which scenes a game can move to next.
package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rolecraft/internal/notify"
	"rolecraft/internal/store"
)

var (
	ErrSceneNotFound     = errors.New("scene not found")
	ErrGameMismatch      = errors.New("scene belongs to another game")
	ErrInvalidTransition = errors.New("invalid scene transition")
)

type Store interface {
	EnsureGame(ctx context.Context, gameID, name string) error
	GetGame(ctx context.Context, gameID string) (*store.Game, error)
	SetCurrentScene(ctx context.Context, gameID, sceneID string) error
	ClearCurrentScene(ctx context.Context, gameID, sceneID string) (bool, error)
	CountEventsInTurns(ctx context.Context, gameID string, fromTurn int, toTurn *int) (int, error)

	CreateScene(ctx context.Context, scene store.Scene) error
	GetScene(ctx context.Context, sceneID string) (*store.Scene, error)
	UpdateSceneStatus(ctx context.Context, sceneID string, status store.SceneStatus, completedTurn *int) error

	InitSceneAvailability(ctx context.Context, gameID, sceneID string) error
	UnlockScene(ctx context.Context, gameID, sceneID string, turn int, unlockedBy string) (bool, error)
	GetSceneAvailability(ctx context.Context, gameID, sceneID string) (*store.SceneAvailability, error)
	ListAvailableScenes(ctx context.Context, gameID string) ([]store.Scene, error)

	UpsertSceneConnection(ctx context.Context, conn store.SceneConnection) error
	ListConnectedScenes(ctx context.Context, gameID, fromSceneID string) ([]store.ConnectedScene, error)
}

type Manager struct {
	store   Store
	emitter notify.Emitter
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Manager)

func WithEmitter(e notify.Emitter) Option {
	return func(m *Manager) { m.emitter = e }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func New(st Store, opts ...Option) *Manager {
	m := &Manager{
		store: st,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("scene")
	return m
}

type CreateInput struct {
	// ID is generated when empty.
	ID          string
	GameID      string
	Name        string
	Description string
	SceneType   string
	LocationID  string
	Mood        string
	Stakes      string
	Turn        int
	// StartLocked keeps the scene out of the available set until it is
	// unlocked or started.
	StartLocked bool
}

// CreateScene adds an active scene at in.Turn and, unless StartLocked is set,
// unlocks it at the same turn.
func (m *Manager) CreateScene(ctx context.Context, in CreateInput) (*store.Scene, error) {
	if strings.TrimSpace(in.GameID) == "" {
		return nil, fmt.Errorf("creating scene: game id is required")
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = m.newID()
	}

	scene := store.Scene{
		ID:          id,
		GameID:      in.GameID,
		Name:        in.Name,
		Description: in.Description,
		SceneType:   in.SceneType,
		LocationID:  in.LocationID,
		Mood:        in.Mood,
		Stakes:      in.Stakes,
		Status:      store.SceneActive,
		StartedTurn: in.Turn,
	}

	if err := m.store.EnsureGame(ctx, in.GameID, ""); err != nil {
		return nil, err
	}
	if err := m.store.CreateScene(ctx, scene); err != nil {
		return nil, err
	}
	if err := m.store.InitSceneAvailability(ctx, in.GameID, id); err != nil {
		return nil, err
	}
	if !in.StartLocked {
		if _, err := m.store.UnlockScene(ctx, in.GameID, id, in.Turn, ""); err != nil {
			return nil, err
		}
	}

	m.log.Debug("scene created",
		zap.String("game_id", in.GameID),
		zap.String("scene_id", id),
		zap.Bool("locked", in.StartLocked),
	)
	m.emit(notify.SceneCreated, scene, in.Turn)
	return &scene, nil
}

// StartScene makes the scene current, unlocking it first if needed.
func (m *Manager) StartScene(ctx context.Context, gameID, sceneID string, turn int) (*store.Scene, error) {
	scene, err := m.load(ctx, gameID, sceneID)
	if err != nil {
		return nil, err
	}
	if scene.Status.Terminal() {
		return nil, fmt.Errorf("%w: scene %s in game %s is %s", ErrInvalidTransition, sceneID, gameID, scene.Status)
	}

	unlocked, err := m.store.UnlockScene(ctx, gameID, sceneID, turn, "")
	if err != nil {
		return nil, err
	}
	if err := m.store.SetCurrentScene(ctx, gameID, sceneID); err != nil {
		return nil, err
	}

	m.log.Debug("scene started",
		zap.String("game_id", gameID),
		zap.String("scene_id", sceneID),
		zap.Bool("unlocked_now", unlocked),
	)
	m.emit(notify.SceneStarted, *scene, turn)
	return scene, nil
}

func (m *Manager) CompleteScene(ctx context.Context, gameID, sceneID string, turn int) (*store.Scene, error) {
	return m.finish(ctx, gameID, sceneID, turn, store.SceneCompleted, notify.SceneCompleted)
}

func (m *Manager) AbandonScene(ctx context.Context, gameID, sceneID string, turn int) (*store.Scene, error) {
	return m.finish(ctx, gameID, sceneID, turn, store.SceneAbandoned, notify.SceneAbandoned)
}

// finish moves an active scene to a terminal status. The game's current
// scene pointer is cleared only when it names this scene.
func (m *Manager) finish(ctx context.Context, gameID, sceneID string, turn int, status store.SceneStatus, kind notify.Kind) (*store.Scene, error) {
	scene, err := m.load(ctx, gameID, sceneID)
	if err != nil {
		return nil, err
	}
	if scene.Status.Terminal() {
		return nil, fmt.Errorf("%w: scene %s in game %s is already %s", ErrInvalidTransition, sceneID, gameID, scene.Status)
	}

	completed := turn
	if err := m.store.UpdateSceneStatus(ctx, sceneID, status, &completed); err != nil {
		return nil, err
	}
	cleared, err := m.store.ClearCurrentScene(ctx, gameID, sceneID)
	if err != nil {
		return nil, err
	}

	scene.Status = status
	scene.CompletedTurn = &completed

	m.log.Debug("scene finished",
		zap.String("game_id", gameID),
		zap.String("scene_id", sceneID),
		zap.String("status", string(status)),
		zap.Bool("was_current", cleared),
	)
	m.emit(kind, *scene, turn)
	return scene, nil
}

// UnlockScene marks a scene playable. Unlocking an unlocked scene keeps its
// original unlock turn and source.
func (m *Manager) UnlockScene(ctx context.Context, gameID, sceneID string, turn int, unlockedBy string) (*store.SceneAvailability, error) {
	if _, err := m.load(ctx, gameID, sceneID); err != nil {
		return nil, err
	}
	if _, err := m.store.UnlockScene(ctx, gameID, sceneID, turn, unlockedBy); err != nil {
		return nil, err
	}
	return m.store.GetSceneAvailability(ctx, gameID, sceneID)
}

// ConnectScenes records a directed edge between two scenes of the same game.
func (m *Manager) ConnectScenes(ctx context.Context, conn store.SceneConnection) error {
	if conn.ConnectionType == "" {
		conn.ConnectionType = store.ConnectionPath
	}
	if !conn.ConnectionType.Valid() {
		return fmt.Errorf("connecting %s -> %s: unknown connection type %q", conn.FromSceneID, conn.ToSceneID, conn.ConnectionType)
	}
	if conn.FromSceneID == conn.ToSceneID {
		return fmt.Errorf("connecting %s to itself: %w", conn.FromSceneID, ErrInvalidTransition)
	}
	if _, err := m.load(ctx, conn.GameID, conn.FromSceneID); err != nil {
		return err
	}
	if _, err := m.load(ctx, conn.GameID, conn.ToSceneID); err != nil {
		return err
	}
	return m.store.UpsertSceneConnection(ctx, conn)
}

// GetAvailableScenes lists unlocked scenes that are still active. Completed
// and abandoned scenes are never available.
func (m *Manager) GetAvailableScenes(ctx context.Context, gameID string) ([]store.Scene, error) {
	return m.store.ListAvailableScenes(ctx, gameID)
}

// GetConnectedScenes follows outgoing connections and keeps only unlocked
// destinations.
func (m *Manager) GetConnectedScenes(ctx context.Context, gameID, fromSceneID string) ([]store.ConnectedScene, error) {
	return m.store.ListConnectedScenes(ctx, gameID, fromSceneID)
}

func (m *Manager) GetCurrentScene(ctx context.Context, gameID string) (*store.Scene, error) {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil || game == nil || game.CurrentSceneID == "" {
		return nil, err
	}
	scene, err := m.store.GetScene(ctx, game.CurrentSceneID)
	if err != nil || scene == nil || scene.GameID != gameID {
		return nil, err
	}
	return scene, nil
}

func (m *Manager) load(ctx context.Context, gameID, sceneID string) (*store.Scene, error) {
	scene, err := m.store.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, fmt.Errorf("%w: %s in game %s", ErrSceneNotFound, sceneID, gameID)
	}
	if scene.GameID != gameID {
		return nil, fmt.Errorf("%w: scene %s belongs to game %s, not %s", ErrGameMismatch, sceneID, scene.GameID, gameID)
	}
	return scene, nil
}

func (m *Manager) emit(kind notify.Kind, scene store.Scene, turn int) {
	if m.emitter == nil {
		return
	}
	m.emitter.Emit(notify.SceneNotice{Type: kind, GameID: scene.GameID, Scene: scene, Turn: turn, At: m.now()})
}
