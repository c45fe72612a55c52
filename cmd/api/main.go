package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otop-atlas/api/internal/di"
	"github.com/otop-atlas/api/internal/handlers"
	"github.com/otop-atlas/api/internal/platform/config"
	"github.com/otop-atlas/api/internal/platform/observability"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	router, cleanup := buildRouter(ctx, cfg, logger)
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

// buildRouter assembles the container and routes. A dataset failure does
// not abort the process; the API comes up degraded so health endpoints
// and orchestration keep working.
func buildRouter(ctx context.Context, cfg config.Config, logger *zap.Logger) (chi.Router, func()) {
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger),
		observability.TraceMiddleware(),
		observability.RequestLoggerMiddleware(),
		observability.RecoveryMiddleware(logger),
	}

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("starting in degraded mode", zap.Error(err))
		return handlers.NewRouter(
			handlers.WithMiddlewares(middlewares...),
			handlers.WithLoadError(err),
		), func() {}
	}

	svc := container.Services
	var image handlers.MapImageSource
	if container.MapImage != nil {
		image = container.MapImage
	}

	return handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithCatalogRoutes(handlers.NewCatalogHandlers(svc.Catalog, svc.Renderer).Routes),
		handlers.WithSessionRoutes(handlers.NewSessionHandlers(svc.Sessions).Routes),
		handlers.WithMapRoutes(handlers.NewMapHandlers(svc.Catalog, svc.Map, image).Routes),
	), container.Close
}
