package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/db"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/handlers"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/metrics"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository/postgres"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/auth"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/auth/tokenmanager"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/comment"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/post"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/pruner"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pruner *pruner.Pruner
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config. Err: %w", err)
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)
	m := metrics.New()

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService := user.NewService(user.DefaultHasher, storage)
	authService, err := auth.NewService(
		auth.Config{Logger: logger.With("component", "auth"), Recorder: m},
		tokenManager,
		userService,
		storage,
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	router := handlers.NewRouter(
		handlers.RouterConfig{Logger: logger, Metrics: m, CORSOrigins: c.CORSOrigins},
		authService,
		userService,
		post.NewService(storage),
		comment.NewService(storage),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		pruner:     pruner.New(c.PruneInterval, storage, logger, m),
		pool:       pool,
	}, nil
}

// Run starts http server and pruner and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	prunerStopped := s.pruner.Run(srvCtx)
	idleConnsClosed := make(chan struct{})

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-prunerStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
