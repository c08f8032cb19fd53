package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/pex/internal/config"
)

// Run serves until ctx is cancelled, then shuts down within
// cfg.Server.ShutdownTimeout, waiting for in-flight loads.
func Run(ctx context.Context, cfg *config.Config) error {
	server := NewServer(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	var startErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			startErr = err
		}
	case <-ctx.Done():
		slog.Info("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		if startErr == nil {
			startErr = err
		}
	}

	if startErr != nil {
		return fmt.Errorf("server: %w", startErr)
	}
	slog.Info("server stopped")
	return nil
}
