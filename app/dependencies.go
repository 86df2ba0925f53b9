// Package app is the central wiring point for dependency injection.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upb/shipment-ledger/auth"
	"github.com/upb/shipment-ledger/config"
	"github.com/upb/shipment-ledger/handlers"
	"github.com/upb/shipment-ledger/middleware"
	"github.com/upb/shipment-ledger/models"
	"github.com/upb/shipment-ledger/repositories"
	"github.com/upb/shipment-ledger/repositories/memory"
	"github.com/upb/shipment-ledger/repositories/postgres"
	"github.com/upb/shipment-ledger/services/clock"
	"github.com/upb/shipment-ledger/services/notifier"
	"github.com/upb/shipment-ledger/services/recorder"
	"github.com/upb/shipment-ledger/services/registry"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Repository factory, nil when running on the in-memory stores
	RepoFactory *postgres.RepositoryFactory

	// Stores
	Shipments repositories.ShipmentRepository
	Events    repositories.EventRepository
	TxManager repositories.TransactionManager

	// Collaborators
	Clock    clock.Clock
	Notifier *notifier.Service

	// Core services, wrapped for single-writer sequential apply
	Registry handlers.RegistryService
	Recorder handlers.RecorderService

	// Auth
	Tokens         *auth.TokenService
	AuthMiddleware *middleware.AuthMiddleware

	// DB pinger for readiness, nil for the in-memory backend
	DBHealth handlers.Pinger
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Clock:  clock.NewSystemClock(),
	}

	if err := deps.initStores(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize stores: %w", err)
	}
	if err := deps.initNotifier(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}
	deps.initServices()
	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initStores initializes PostgreSQL stores when configured, or falls back
// to the in-memory keyed stores.
func (d *Dependencies) initStores(ctx context.Context, cfg *config.Config) error {
	if !cfg.Database.Configured() {
		d.Logger.Info("no database configured, using in-memory stores")
		d.Shipments = memory.NewShipmentStore()
		d.Events = memory.NewEventStore()
		d.TxManager = memory.NewTransactionManager()
		return nil
	}

	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}
	d.RepoFactory = factory

	if err := factory.GetDB().PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	repos := factory.NewRepositories()
	d.Shipments = repos.Shipments
	d.Events = repos.Events
	d.TxManager = factory.GetTransactionManager()
	d.DBHealth = factory.GetDB()

	d.Logger.Info("database stores initialized",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initNotifier initializes and starts the notification bus.
func (d *Dependencies) initNotifier(cfg *config.Config) error {
	sink := &notifier.LogSink{Logger: d.Logger}
	d.Notifier = notifier.NewService(sink, d.Logger, notifier.Config{
		BufferSize:  cfg.Notifier.BufferSize,
		WorkerCount: cfg.Notifier.WorkerCount,
	})
	return d.Notifier.Start()
}

// initServices wires the registry and recorder cores. The cores assume
// single-writer sequential apply, so the HTTP host serializes operations
// through one mutex before they reach the stores.
func (d *Dependencies) initServices() {
	reg := registry.NewService(d.Shipments, d.TxManager, d.Clock, d.Notifier, d.Logger)
	rec := recorder.NewService(d.Events, reg, d.TxManager, d.Clock, d.Notifier, d.Logger)

	mu := &sync.Mutex{}
	d.Registry = &serializedRegistry{mu: mu, inner: reg}
	d.Recorder = &serializedRecorder{mu: mu, inner: rec}
}

// initAuth initializes the token service and auth middleware.
func (d *Dependencies) initAuth(cfg *config.Config) error {
	authCfg := cfg.Auth
	if authCfg.Secret == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("auth secret is required in production")
		}
		// Development fallback so the service is usable out of the box.
		authCfg.Secret = "dev-only-insecure-secret"
		d.Logger.Warn("AUTH_JWT_SECRET not set, using insecure development secret")
	}

	tokens, err := auth.NewTokenService(authCfg)
	if err != nil {
		return err
	}
	d.Tokens = tokens
	d.AuthMiddleware = middleware.NewAuthMiddleware(tokens, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Notifier != nil {
		if err := d.Notifier.Stop(5 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop notifier: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

// serializedRegistry guards registry operations with the host's operation
// mutex. Reads go through the same lock: no operation may observe a
// partially applied state of another.
type serializedRegistry struct {
	mu    *sync.Mutex
	inner *registry.Service
}

func (s *serializedRegistry) RegisterShipment(ctx context.Context, id, owner string, products []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.RegisterShipment(ctx, id, owner, products)
}

func (s *serializedRegistry) Get(ctx context.Context, id string) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Get(ctx, id)
}

func (s *serializedRegistry) ListByOwner(ctx context.Context, owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ListByOwner(ctx, owner)
}

// serializedRecorder guards recorder operations with the host's operation mutex.
type serializedRecorder struct {
	mu    *sync.Mutex
	inner *recorder.Service
}

func (s *serializedRecorder) RecordEvent(ctx context.Context, event *models.ShippingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.RecordEvent(ctx, event)
}

func (s *serializedRecorder) Get(ctx context.Context, id string) (*models.ShippingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Get(ctx, id)
}

func (s *serializedRecorder) ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShippingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ListByShipment(ctx, shipmentID)
}
