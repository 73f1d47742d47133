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

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Run quality checks and manage findings",
}

var qualityCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the quality rule engine against a stored document",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		documentID, _ := cmd.Flags().GetUint64("document")
		findings, err := svc.RunDocumentQualityCheck(ctx, documentID)
		if err != nil {
			logging.Error(ctx, "quality check failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run quality check")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "quality check finished: d%d findings=%d\n", documentID, len(findings)); err != nil {
			return errs.Wrap(err, "write check output")
		}
		return printFindings(cmd, findings)
	}),
}

var qualityFindingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "List stored findings for a document",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		documentID, _ := cmd.Flags().GetUint64("document")
		findings, err := svc.ListDocumentFindings(ctx, documentID)
		if err != nil {
			logging.Error(ctx, "list findings failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list findings")
		}

		if len(findings) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no findings"); err != nil {
				return errs.Wrap(err, "write findings output")
			}
			return nil
		}
		return printFindings(cmd, findings)
	}),
}

var qualityResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Record or clear a finding resolution",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		findingID, _ := cmd.Flags().GetUint64("finding")
		resolution, _ := cmd.Flags().GetString("resolution")

		item, err := svc.UpdateFindingResolution(ctx, findingID, resolution)
		if err != nil {
			logging.Error(ctx, "resolve finding failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "resolve finding")
		}

		state := "cleared"
		if item.Resolution != "" {
			state = "resolved"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s finding: f%d\n", state, item.FindingID); err != nil {
			return errs.Wrap(err, "write resolve output")
		}
		return nil
	}),
}

func printFindings(cmd *cobra.Command, findings []pipeline.FindingItem) error {
	for _, finding := range findings {
		resolved := ""
		if finding.Resolution != "" {
			resolved = fmt.Sprintf(" resolved=%s", finding.Resolution)
		}
		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"f%d [%s/%s] %s location=%s%s\n",
			finding.FindingID,
			finding.Severity,
			finding.Category,
			finding.Message,
			dash(finding.Location),
			resolved,
		); err != nil {
			return errs.Wrap(err, "write finding")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(qualityCmd)
	qualityCmd.AddCommand(qualityCheckCmd)
	qualityCmd.AddCommand(qualityFindingsCmd)
	qualityCmd.AddCommand(qualityResolveCmd)

	qualityCheckCmd.Flags().Uint64("document", 0, "Document id")
	_ = qualityCheckCmd.MarkFlagRequired("document")

	qualityFindingsCmd.Flags().Uint64("document", 0, "Document id")
	_ = qualityFindingsCmd.MarkFlagRequired("document")

	qualityResolveCmd.Flags().Uint64("finding", 0, "Finding id")
	qualityResolveCmd.Flags().String("resolution", "", "Resolution note (empty to clear)")
	_ = qualityResolveCmd.MarkFlagRequired("finding")
}
