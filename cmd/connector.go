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

var connectorCmd = &cobra.Command{
	Use:   "connector",
	Short: "Manage data source connectors",
}

var connectorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a connector for a tenant",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		connectorType, _ := cmd.Flags().GetString("type")
		config, _ := cmd.Flags().GetString("connector-config")

		item, err := svc.CreateConnector(ctx, pipeline.CreateConnectorInput{
			TenantID: tenantFlag(cmd),
			Name:     name,
			Type:     connectorType,
			Config:   config,
		})
		if err != nil {
			logging.Error(ctx, "create connector failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create connector")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created connector: c%d type=%s name=%s\n", item.ConnectorID, item.Type, item.Name); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var connectorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connectors visible to a tenant (tenant + global)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		items, err := svc.ListConnectors(ctx, tenantFlag(cmd))
		if err != nil {
			logging.Error(ctx, "list connectors failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list connectors")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no connectors"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			status := "inactive"
			if item.IsActive {
				status = "active"
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"c%d [%s] tenant=%s type=%s name=%s\n",
				item.ConnectorID,
				status,
				dash(item.TenantID),
				item.Type,
				item.Name,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var connectorActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Mark a connector as active",
	RunE:  withApp(setConnectorActive(true)),
}

var connectorDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Mark a connector as inactive",
	RunE:  withApp(setConnectorActive(false)),
}

func setConnectorActive(active bool) func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
	return func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		connectorID, _ := cmd.Flags().GetUint64("connector")
		if err := svc.SetConnectorActive(ctx, connectorID, active); err != nil {
			logging.Error(ctx, "update connector failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update connector")
		}

		state := "deactivated"
		if active {
			state = "activated"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s connector: c%d\n", state, connectorID); err != nil {
			return errs.Wrap(err, "write connector output")
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(connectorCmd)
	connectorCmd.AddCommand(connectorCreateCmd)
	connectorCmd.AddCommand(connectorListCmd)
	connectorCmd.AddCommand(connectorActivateCmd)
	connectorCmd.AddCommand(connectorDeactivateCmd)

	connectorCreateCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")
	connectorCreateCmd.Flags().String("name", "", "Connector name")
	connectorCreateCmd.Flags().String("type", "", "Connector type (GIT|TICKET_SYSTEM|DOCUMENT_REPO|CUSTOM)")
	connectorCreateCmd.Flags().String("connector-config", "", "Connector configuration JSON")
	_ = connectorCreateCmd.MarkFlagRequired("name")

	connectorListCmd.Flags().String("tenant", "", "Tenant identifier (empty for global)")

	connectorActivateCmd.Flags().Uint64("connector", 0, "Connector id")
	_ = connectorActivateCmd.MarkFlagRequired("connector")
	connectorDeactivateCmd.Flags().Uint64("connector", 0, "Connector id")
	_ = connectorDeactivateCmd.MarkFlagRequired("connector")
}
