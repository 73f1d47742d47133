package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"docforge/internal/bootstrap"
	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
	"docforge/internal/usecase/pipeline"
)

var suggestionCmd = &cobra.Command{
	Use:   "suggestion",
	Short: "Manage documentation update suggestions",
}

var suggestionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List update suggestions",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		items, err := svc.ListSuggestions(ctx, tenantFlag(cmd))
		if err != nil {
			logging.Error(ctx, "list suggestions failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list suggestions")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no suggestions"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"s%d [%s] job=%s title=%s updated=%s\n",
				item.SuggestionID,
				item.Status,
				dash(item.JobRef),
				item.Title,
				item.UpdatedAt,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var suggestionResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Apply, dismiss or reopen a suggestion",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		suggestionID, _ := cmd.Flags().GetUint64("suggestion")
		status, _ := cmd.Flags().GetString("status")
		resolution, _ := cmd.Flags().GetString("resolution")

		item, err := svc.UpdateSuggestion(ctx, pipeline.UpdateSuggestionInput{
			SuggestionID: suggestionID,
			Status:       status,
			Resolution:   resolution,
		})
		if err != nil {
			logging.Error(ctx, "resolve suggestion failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "resolve suggestion")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated suggestion: s%d status=%s\n", item.SuggestionID, item.Status); err != nil {
			return errs.Wrap(err, "write resolve output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(suggestionCmd)
	suggestionCmd.AddCommand(suggestionListCmd)
	suggestionCmd.AddCommand(suggestionResolveCmd)

	suggestionListCmd.Flags().String("tenant", "", "Tenant identifier (empty for all tenants)")

	suggestionResolveCmd.Flags().Uint64("suggestion", 0, "Suggestion id")
	suggestionResolveCmd.Flags().String("status", "", "Target status (OPEN|APPLIED|DISMISSED)")
	suggestionResolveCmd.Flags().String("resolution", "", "Optional resolution note")
	_ = suggestionResolveCmd.MarkFlagRequired("suggestion")
	_ = suggestionResolveCmd.MarkFlagRequired("status")
}
