package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"rolecraft/internal/config"
	"rolecraft/internal/emergence"
	"rolecraft/internal/evolution"
	"rolecraft/internal/gamelock"
	"rolecraft/internal/observability"
	"rolecraft/internal/scene"
)

// Services are the components the tools call into. They are built by the
// caller so that every surface shares one notification bus.
type Services struct {
	Catalog   *config.Catalog
	Evolution *evolution.Service
	Emergence *emergence.Observer
	Scenes    *scene.Manager
	Logger    *zap.Logger
}

type Server struct {
	catalog   *config.Catalog
	evolution *evolution.Service
	emergence *emergence.Observer
	scenes    *scene.Manager
	locks     *gamelock.Registry
	log       *zap.Logger
	mcp       *sdk.Server
}

func NewServer(services Services, version string) *Server {
	catalog := services.Catalog
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	s := &Server{
		catalog:   catalog,
		evolution: services.Evolution,
		emergence: services.Emergence,
		scenes:    services.Scenes,
		locks:     gamelock.New(),
		log:       observability.OrNop(services.Logger).Named("mcp"),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "rolecraft",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// mutate runs fn while holding gameID. A second mutation for the same game
// fails with gamelock.ErrGameBusy instead of waiting.
func (s *Server) mutate(gameID, tool string, fn func() error) error {
	start := time.Now()
	err := s.locks.Do(gameID, tool, fn)
	if err != nil {
		s.log.Debug("tool failed",
			zap.String("tool", tool),
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		return err
	}
	s.log.Debug("tool completed",
		zap.String("tool", tool),
		zap.String("game_id", gameID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
