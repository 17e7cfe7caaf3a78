// Package evolution turns trait and relationship suggestions into a review
// queue and writes approved changes through to the store.
package evolution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rolecraft/internal/config"
	"rolecraft/internal/notify"
	"rolecraft/internal/store"
)

var (
	ErrNotFound           = errors.New("pending evolution not found")
	ErrNotPending         = errors.New("pending evolution already resolved")
	ErrMalformedEvolution = errors.New("malformed evolution")
)

// Store is the slice of store.Store the service reads and writes.
type Store interface {
	GetRelationship(ctx context.Context, gameID string, from, to store.EntityRef) (*store.Relationship, error)
	ListRelationshipsFor(ctx context.Context, gameID string, entity store.EntityRef) ([]store.Relationship, error)
	SetRelationshipDimension(ctx context.Context, gameID string, from, to store.EntityRef, dim store.Dimension, value float64, turn int) (*store.Relationship, error)

	AddTrait(ctx context.Context, trait store.Trait) error
	RemoveTrait(ctx context.Context, gameID string, entity store.EntityRef, trait string) error
	ListTraits(ctx context.Context, gameID string, entity store.EntityRef, status store.TraitStatus) ([]store.Trait, error)

	CreatePendingEvolution(ctx context.Context, evo store.PendingEvolution) error
	GetPendingEvolution(ctx context.Context, id string) (*store.PendingEvolution, error)
	UpdatePendingEvolution(ctx context.Context, evo store.PendingEvolution) (bool, error)
	ResolvePendingEvolution(ctx context.Context, id string, status store.EvolutionStatus, dmNotes string, at time.Time) (bool, error)
	ListPendingEvolutions(ctx context.Context, gameID string, status store.EvolutionStatus) ([]store.PendingEvolution, error)
}

type Service struct {
	store   Store
	catalog *config.Catalog
	emitter notify.Emitter
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

type Option func(*Service)

func WithEmitter(e notify.Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithCatalog(c *config.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		catalog: config.DefaultCatalog(),
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("evolution")
	return s
}

func (s *Service) emit(kind notify.Kind, evo store.PendingEvolution) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(notify.EvolutionNotice{Type: kind, GameID: evo.GameID, Evolution: evo, At: s.now()})
}

// ListPending returns the review queue for a game, oldest first.
func (s *Service) ListPending(ctx context.Context, gameID string) ([]store.PendingEvolution, error) {
	return s.store.ListPendingEvolutions(ctx, gameID, store.EvolutionPending)
}

func (s *Service) Get(ctx context.Context, id string) (*store.PendingEvolution, error) {
	return s.store.GetPendingEvolution(ctx, id)
}
