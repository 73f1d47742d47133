package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docforge/internal/bootstrap"
	"docforge/internal/bootstrap/config"
	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/transport/httpapi"
	"docforge/internal/usecase/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and websocket event feed",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		// Dispatch mode follows the config file while the server runs.
		if err := config.Watch(ctx, cfgFile, func(mode string) {
			parsed, err := domain.ParseDispatchMode(mode)
			if err != nil {
				logging.Warn(ctx, "ignoring invalid dispatch mode from config", slog.String("mode", mode))
				return
			}
			svc.SetDispatchMode(parsed)
			logging.Info(ctx, "dispatch mode updated", slog.String("mode", mode))
		}); err != nil {
			logging.Warn(ctx, "config watch unavailable", slog.Any("err", errs.Loggable(err)))
		}

		api := httpapi.NewServer(svc)
		server := &http.Server{
			Addr:         app.Config.HTTP.Addr,
			Handler:      api.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  2 * time.Minute,
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", server.Addr))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "server stopped"); err != nil {
			return errs.Wrap(err, "write serve output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
