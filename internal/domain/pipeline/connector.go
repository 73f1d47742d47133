package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ConnectorGit          = "GIT"
	ConnectorTicketSystem = "TICKET_SYSTEM"
	ConnectorDocumentRepo = "DOCUMENT_REPO"
	ConnectorCustom       = "CUSTOM"
)

// NormalizeConnectorType upper-cases the enum-like connector type. Unknown
// values are kept (the registry is extensible) but get no schema validation.
func NormalizeConnectorType(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return ConnectorCustom
	}
	return t
}

var connectorSchemas = map[string]*jsonschema.Schema{
	ConnectorGit: mustCompileSchema("git.json", `{
		"type": "object",
		"properties": {
			"url":    {"type": "string", "minLength": 1},
			"branch": {"type": "string"}
		},
		"required": ["url"]
	}`),
	ConnectorTicketSystem: mustCompileSchema("ticket_system.json", `{
		"type": "object",
		"properties": {
			"baseUrl": {"type": "string", "minLength": 1},
			"project": {"type": "string"}
		},
		"required": ["baseUrl"]
	}`),
	ConnectorDocumentRepo: mustCompileSchema("document_repo.json", `{
		"type": "object",
		"properties": {
			"url":  {"type": "string"},
			"path": {"type": "string"}
		},
		"anyOf": [
			{"required": ["url"]},
			{"required": ["path"]}
		]
	}`),
}

func mustCompileSchema(name string, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// NormalizeConnectorConfig returns a storable JSON form of the raw config and
// validates it against the per-type schema. A value that is not JSON at all is
// stored as a JSON string so nothing downstream has to guess its encoding.
func NormalizeConnectorConfig(connectorType string, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "{}", nil
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		encoded, marshalErr := json.Marshal(trimmed)
		if marshalErr != nil {
			return "", marshalErr
		}
		return string(encoded), nil
	}

	if schema, ok := connectorSchemas[connectorType]; ok {
		if err := schema.Validate(value); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidConnectorConfig, err)
		}
	}

	return trimmed, nil
}

// ConnectorConfigName extracts a human-readable hint from a stored config for
// prompt assembly; empty when the config has no recognizable source field.
func ConnectorConfigName(storedConfig string) string {
	var fields map[string]any
	if err := json.Unmarshal([]byte(storedConfig), &fields); err != nil {
		return ""
	}

	for _, key := range []string{"url", "baseUrl", "path"} {
		if v, ok := fields[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
