package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docforge/internal/bootstrap"
	"docforge/internal/bootstrap/logging"
	"docforge/internal/errs"
	"docforge/internal/usecase/pipeline"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
}

var documentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a document for quality checks and generation targets",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		title, _ := cmd.Flags().GetString("title")
		content, err := resolveContent(cmd)
		if err != nil {
			return err
		}

		item, err := svc.AddDocument(ctx, tenantFlag(cmd), title, content)
		if err != nil {
			logging.Error(ctx, "add document failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "add document")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "added document: d%d title=%s\n", item.DocumentID, item.Title); err != nil {
			return errs.Wrap(err, "write add output")
		}
		return nil
	}),
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents visible to a tenant (tenant + global)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		items, err := svc.ListDocuments(ctx, tenantFlag(cmd))
		if err != nil {
			logging.Error(ctx, "list documents failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list documents")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no documents"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"d%d tenant=%s title=%s updated=%s\n",
				item.DocumentID,
				dash(item.TenantID),
				item.Title,
				item.UpdatedAt,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

func resolveContent(cmd *cobra.Command) (string, error) {
	inline, _ := cmd.Flags().GetString("content")
	contentFile, _ := cmd.Flags().GetString("content-file")

	if strings.TrimSpace(inline) != "" && strings.TrimSpace(contentFile) != "" {
		return "", errors.New("content and content-file are mutually exclusive")
	}

	if strings.TrimSpace(contentFile) != "" {
		raw, err := os.ReadFile(contentFile)
		if err != nil {
			return "", errs.Wrapf(err, "read content file %q", contentFile)
		}
		inline = string(raw)
	}

	if strings.TrimSpace(inline) == "" {
		return "", errors.New("content is required (set --content or --content-file)")
	}
	return inline, nil
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)

	documentAddCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")
	documentAddCmd.Flags().String("title", "", "Document title")
	documentAddCmd.Flags().String("content", "", "Document content")
	documentAddCmd.Flags().String("content-file", "", "Path to document content file")
	_ = documentAddCmd.MarkFlagRequired("title")

	documentListCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")
}
