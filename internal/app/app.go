package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargedash/internal/clients"
	"chargedash/internal/config"
	httpserver "chargedash/internal/http"
	"chargedash/internal/http/handlers"
	"chargedash/internal/http/middleware"
	"chargedash/internal/invoice"
	"chargedash/internal/session"
	"chargedash/internal/storage"
	"chargedash/internal/view"
)

// App wires dashboard daemon dependencies.
type App struct {
	server      *httpserver.Server
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	var kv storage.Store
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		redisClient = client
		kv = storage.NewRedisStore(client)
	} else {
		logger.Warn("no redis configured, session will not survive restarts")
		kv = storage.NewMemoryStore()
	}

	httpClient := clients.NewDefaultHTTPClient(cfg.BackendTimeout())
	base := clients.NewBaseClient(cfg.Backend.BaseURL, httpClient, logger)
	authClient := clients.NewAuthClient(base)
	chargingClient := clients.NewChargingClient(base)

	sessions := session.NewStore(authClient, kv, logger)
	if err := sessions.Restore(context.Background()); err != nil {
		logger.Warn("failed to restore persisted session", zap.Error(err))
	}

	recordsSvc := clients.NewSessionRecords(chargingClient, sessions)
	surface := invoice.NewFileSurface(cfg.Invoice.OutputDir)
	controller := view.NewController(recordsSvc, surface, logger)
	pdfGen := invoice.NewPDFGenerator(cfg.Invoice.OutputDir)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:    handlers.NewAuthHandlers(sessions, controller, logger),
		Records: handlers.NewRecordsHandlers(controller, pdfGen, logger),
		Health:  handlers.NewHealthHandler(),
	}, middleware.RequireSession(sessions), cfg.CORSOrigins())

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server:      server,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
