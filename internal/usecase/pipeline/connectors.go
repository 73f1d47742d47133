package pipeline

import (
	"context"
	"errors"
	"strings"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/errs"
	"docforge/internal/ports"
)

// ListConnectors returns the connectors visible to the tenant: tenant-owned
// plus global, active first, then most recently updated.
func (s *Service) ListConnectors(ctx context.Context, tenantID *string) ([]ConnectorItem, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("pipeline repository is required")
	}

	connectors, err := s.repo.ListConnectors(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	items := make([]ConnectorItem, 0, len(connectors))
	for _, connector := range connectors {
		items = append(items, mapConnectorItem(connector))
	}
	return items, nil
}

// CreateConnector registers a named source. The type is normalized to upper
// case and the config is validated against the per-type schema, then stored
// in serialized form. A nil tenant registers a global connector.
func (s *Service) CreateConnector(ctx context.Context, input CreateConnectorInput) (ConnectorItem, error) {
	if ctx == nil {
		return ConnectorItem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ConnectorItem{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ConnectorItem{}, errors.New("pipeline repository is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ConnectorItem{}, errors.New("connector name is required")
	}

	connectorType := domain.NormalizeConnectorType(input.Type)
	configJSON, err := domain.NormalizeConnectorConfig(connectorType, input.Config)
	if err != nil {
		return ConnectorItem{}, err
	}

	now := nowUTCString()
	created, err := s.repo.CreateConnector(ctx, ports.Connector{
		TenantID:   input.TenantID,
		Name:       name,
		Type:       connectorType,
		ConfigJSON: configJSON,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return ConnectorItem{}, err
	}
	return mapConnectorItem(created), nil
}

// SetConnectorActive toggles dispatch eligibility. Jobs already created keep
// their connector reference either way.
func (s *Service) SetConnectorActive(ctx context.Context, connectorID uint64, isActive bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("pipeline repository is required")
	}

	return s.repo.SetConnectorActive(ctx, connectorID, isActive, nowUTCString())
}

func mapConnectorItem(connector ports.Connector) ConnectorItem {
	return ConnectorItem{
		ConnectorID: connector.ConnectorID,
		TenantID:    derefString(connector.TenantID),
		Name:        connector.Name,
		Type:        connector.Type,
		Config:      connector.ConfigJSON,
		IsActive:    connector.IsActive,
		UpdatedAt:   connector.UpdatedAt,
	}
}
