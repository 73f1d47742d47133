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

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage documentation generation jobs",
}

var jobCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a generation job and dispatch it per the configured mode",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		intent, _ := cmd.Flags().GetString("intent")
		payload, _ := cmd.Flags().GetString("payload")
		title, _ := cmd.Flags().GetString("title")
		actor, _ := cmd.Flags().GetString("actor")

		result, err := svc.CreateJob(ctx, pipeline.CreateJobInput{
			TenantID:    tenantFlag(cmd),
			Intent:      intent,
			Payload:     payload,
			DocumentID:  optionalIDFlag(cmd, "document"),
			ConnectorID: optionalIDFlag(cmd, "connector"),
			Title:       title,
			Actor:       actor,
		})
		if err != nil {
			logging.Error(ctx, "create job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create job")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created job: %s status=%s dispatched=%s\n", result.JobRef, result.Status, result.Dispatched); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs for a tenant",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		items, err := svc.ListJobs(ctx, tenantFlag(cmd), status)
		if err != nil {
			logging.Error(ctx, "list jobs failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list jobs")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no jobs"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s [%s] tenant=%s intent=%s findings=%d suggestions=%d updated=%s\n",
				item.JobRef,
				item.Status,
				dash(item.TenantID),
				item.Intent,
				len(item.Findings),
				len(item.Suggestions),
				item.UpdatedAt,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var jobShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show job detail, findings, suggestions and lifecycle events",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		jobRef, _ := cmd.Flags().GetString("job")
		detail, err := svc.GetJob(ctx, jobRef)
		if err != nil {
			logging.Error(ctx, "show job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "show job")
		}

		return printJobDetail(cmd, detail)
	}),
}

var jobProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Run draft generation and quality checks for a job",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		jobRef, _ := cmd.Flags().GetString("job")
		detail, err := svc.ProcessJob(ctx, jobRef)
		if err != nil {
			logging.Error(ctx, "process job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "process job")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "processed job: %s status=%s findings=%d\n", detail.JobRef, detail.Status, len(detail.Findings)); err != nil {
			return errs.Wrap(err, "write process output")
		}
		return nil
	}),
}

var jobRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Reset a job to PENDING and dispatch it again",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		jobRef, _ := cmd.Flags().GetString("job")
		actor, _ := cmd.Flags().GetString("actor")
		result, err := svc.RetryJob(ctx, jobRef, actor)
		if err != nil {
			logging.Error(ctx, "retry job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "retry job")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "retried job: %s status=%s dispatched=%s\n", result.JobRef, result.Status, result.Dispatched); err != nil {
			return errs.Wrap(err, "write retry output")
		}
		return nil
	}),
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a non-terminal job",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		jobRef, _ := cmd.Flags().GetString("job")
		actor, _ := cmd.Flags().GetString("actor")
		if err := svc.CancelJob(ctx, jobRef, actor); err != nil {
			logging.Error(ctx, "cancel job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "cancel job")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "cancelled job: %s\n", jobRef); err != nil {
			return errs.Wrap(err, "write cancel output")
		}
		return nil
	}),
}

var jobApproveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a job, marking its draft as accepted",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		jobRef, _ := cmd.Flags().GetString("job")
		actor, _ := cmd.Flags().GetString("actor")
		if err := svc.ApproveJob(ctx, jobRef, actor); err != nil {
			logging.Error(ctx, "approve job failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "approve job")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "approved job: %s\n", jobRef); err != nil {
			return errs.Wrap(err, "write approve output")
		}
		return nil
	}),
}

func printJobDetail(cmd *cobra.Command, detail pipeline.JobDetail) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "JobRef: %s\n", detail.JobRef); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if _, err := fmt.Fprintf(out, "Status: %s\n", detail.Status); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if _, err := fmt.Fprintf(out, "Tenant: %s\n", dash(detail.TenantID)); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if _, err := fmt.Fprintf(out, "Intent: %s\n", detail.Intent); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if _, err := fmt.Fprintf(out, "CreatedAt: %s\n", detail.CreatedAt); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if _, err := fmt.Fprintf(out, "UpdatedAt: %s\n", detail.UpdatedAt); err != nil {
		return errs.Wrap(err, "write show output")
	}
	if detail.CompletedAt != "" {
		if _, err := fmt.Fprintf(out, "CompletedAt: %s\n", detail.CompletedAt); err != nil {
			return errs.Wrap(err, "write show output")
		}
	}
	if detail.Error != "" {
		if _, err := fmt.Fprintf(out, "Error: %s\n", detail.Error); err != nil {
			return errs.Wrap(err, "write show output")
		}
	}
	if detail.ResultDraft != "" {
		if _, err := fmt.Fprintf(out, "\nDraft:\n%s\n", detail.ResultDraft); err != nil {
			return errs.Wrap(err, "write show draft")
		}
	}

	if len(detail.Findings) > 0 {
		if _, err := fmt.Fprintln(out, "\nFindings:"); err != nil {
			return errs.Wrap(err, "write show findings")
		}
		for _, finding := range detail.Findings {
			if _, err := fmt.Fprintf(
				out,
				"- f%d [%s/%s] %s location=%s\n",
				finding.FindingID,
				finding.Severity,
				finding.Category,
				finding.Message,
				dash(finding.Location),
			); err != nil {
				return errs.Wrap(err, "write show finding")
			}
		}
	}

	if len(detail.Suggestions) > 0 {
		if _, err := fmt.Fprintln(out, "\nSuggestions:"); err != nil {
			return errs.Wrap(err, "write show suggestions")
		}
		for _, suggestion := range detail.Suggestions {
			if _, err := fmt.Fprintf(
				out,
				"- s%d [%s] %s\n",
				suggestion.SuggestionID,
				suggestion.Status,
				suggestion.Title,
			); err != nil {
				return errs.Wrap(err, "write show suggestion")
			}
		}
	}

	if len(detail.Events) == 0 {
		if _, err := fmt.Fprintln(out, "\nEvents: none"); err != nil {
			return errs.Wrap(err, "write show events")
		}
		return nil
	}

	if _, err := fmt.Fprintln(out, "\nEvents:"); err != nil {
		return errs.Wrap(err, "write show events")
	}
	for _, event := range detail.Events {
		if _, err := fmt.Fprintf(
			out,
			"- e%d actor=%s at=%s\n%s\n\n",
			event.EventID,
			event.Actor,
			event.CreatedAt,
			event.Body,
		); err != nil {
			return errs.Wrap(err, "write show event")
		}
	}

	return nil
}

func optionalIDFlag(cmd *cobra.Command, name string) *uint64 {
	value, _ := cmd.Flags().GetUint64(name)
	if value == 0 {
		return nil
	}
	return &value
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobCreateCmd)
	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobProcessCmd)
	jobCmd.AddCommand(jobRetryCmd)
	jobCmd.AddCommand(jobCancelCmd)
	jobCmd.AddCommand(jobApproveCmd)

	jobCreateCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")
	jobCreateCmd.Flags().String("intent", "", "Generation intent, for example RUNBOOK or API_DOC")
	jobCreateCmd.Flags().String("payload", "", "Source payload JSON")
	jobCreateCmd.Flags().Uint64("document", 0, "Optional target document id")
	jobCreateCmd.Flags().Uint64("connector", 0, "Optional source connector id")
	jobCreateCmd.Flags().String("title", "", "Optional title for the update suggestion")
	jobCreateCmd.Flags().String("actor", "", "Event actor (default: system)")
	_ = jobCreateCmd.MarkFlagRequired("intent")

	jobListCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")
	jobListCmd.Flags().String("status", "", "Filter by status (PENDING|RUNNING|COMPLETED|FAILED|CANCELLED)")

	jobShowCmd.Flags().String("job", "", "JobRef, for example job#12")
	_ = jobShowCmd.MarkFlagRequired("job")

	jobProcessCmd.Flags().String("job", "", "JobRef, for example job#12")
	_ = jobProcessCmd.MarkFlagRequired("job")

	jobRetryCmd.Flags().String("job", "", "JobRef, for example job#12")
	jobRetryCmd.Flags().String("actor", "", "Event actor (default: system)")
	_ = jobRetryCmd.MarkFlagRequired("job")

	jobCancelCmd.Flags().String("job", "", "JobRef, for example job#12")
	jobCancelCmd.Flags().String("actor", "", "Event actor (default: system)")
	_ = jobCancelCmd.MarkFlagRequired("job")

	jobApproveCmd.Flags().String("job", "", "JobRef, for example job#12")
	jobApproveCmd.Flags().String("actor", "", "Event actor (default: system)")
	_ = jobApproveCmd.MarkFlagRequired("job")
}
