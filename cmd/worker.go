package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docforge/internal/bootstrap"
	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
	"docforge/internal/usecase/pipeline"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Worker runtime commands",
}

var workerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume queued jobs until interrupted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		unsubscribe, err := svc.StartWorker(ctx)
		if err != nil {
			logging.Error(ctx, "start worker failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start worker")
		}

		logging.Info(ctx, "worker consuming jobs", slog.String("queue_subject", app.Config.Queue.Subject))
		<-ctx.Done()

		if err := unsubscribe(); err != nil {
			logging.Warn(ctx, "worker unsubscribe failed", slog.Any("err", errs.Loggable(err)))
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "worker stopped"); err != nil {
			return errs.Wrap(err, "write worker output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.AddCommand(workerRunCmd)
}
