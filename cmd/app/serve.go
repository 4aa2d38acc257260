package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trinitydb/impossible-trinity/internal/api"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, database, err := bootstrap()
	if err != nil {
		return err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database.DB -> %w", err)
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = config.Watch(configPath, func(e fsnotify.Event, updated *config.AppConfig) {
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.Stringer("log_level", logger.Level()))
	})
	if err != nil {
		zap.L().Warn("config hot reload disabled", zap.Error(err))
	}

	s := api.NewServer(conf, database)
	go s.RunLimiterCleanup(ctx)

	srv := &http.Server{
		Addr:    ":" + conf.API.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown -> %w", err)
	}
	zap.L().Info("server exited")

	return nil
}
