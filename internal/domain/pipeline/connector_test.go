package pipeline

import (
	"errors"
	"testing"
)

func TestNormalizeConnectorType(t *testing.T) {
	if got := NormalizeConnectorType(" git "); got != ConnectorGit {
		t.Fatalf("NormalizeConnectorType(git) = %q", got)
	}
	if got := NormalizeConnectorType(""); got != ConnectorCustom {
		t.Fatalf("NormalizeConnectorType(empty) = %q", got)
	}
	if got := NormalizeConnectorType("wiki"); got != "WIKI" {
		t.Fatalf("NormalizeConnectorType(wiki) = %q", got)
	}
}

func TestNormalizeConnectorConfigValidatesSchema(t *testing.T) {
	config, err := NormalizeConnectorConfig(ConnectorGit, `{"url": "https://git.example.com/docs.git", "branch": "main"}`)
	if err != nil {
		t.Fatalf("NormalizeConnectorConfig() error = %v", err)
	}
	if config == "" || config == "{}" {
		t.Fatalf("NormalizeConnectorConfig() = %q", config)
	}

	if _, err := NormalizeConnectorConfig(ConnectorGit, `{"branch": "main"}`); !errors.Is(err, ErrInvalidConnectorConfig) {
		t.Fatalf("NormalizeConnectorConfig(missing url) error = %v", err)
	}

	if _, err := NormalizeConnectorConfig(ConnectorTicketSystem, `{"project": "OPS"}`); !errors.Is(err, ErrInvalidConnectorConfig) {
		t.Fatalf("NormalizeConnectorConfig(missing baseUrl) error = %v", err)
	}
}

func TestNormalizeConnectorConfigEmptyAndNonJSON(t *testing.T) {
	config, err := NormalizeConnectorConfig(ConnectorCustom, "  ")
	if err != nil {
		t.Fatalf("NormalizeConnectorConfig(empty) error = %v", err)
	}
	if config != "{}" {
		t.Fatalf("NormalizeConnectorConfig(empty) = %q", config)
	}

	config, err = NormalizeConnectorConfig(ConnectorCustom, "host=internal-wiki")
	if err != nil {
		t.Fatalf("NormalizeConnectorConfig(non-json) error = %v", err)
	}
	if config != `"host=internal-wiki"` {
		t.Fatalf("NormalizeConnectorConfig(non-json) = %q", config)
	}
}

func TestConnectorConfigName(t *testing.T) {
	if got := ConnectorConfigName(`{"url": "https://git.example.com/docs.git"}`); got != "https://git.example.com/docs.git" {
		t.Fatalf("ConnectorConfigName(url) = %q", got)
	}
	if got := ConnectorConfigName(`{"baseUrl": "https://tickets.example.com"}`); got != "https://tickets.example.com" {
		t.Fatalf("ConnectorConfigName(baseUrl) = %q", got)
	}
	if got := ConnectorConfigName(`"host=internal-wiki"`); got != "" {
		t.Fatalf("ConnectorConfigName(string) = %q", got)
	}
	if got := ConnectorConfigName(`{}`); got != "" {
		t.Fatalf("ConnectorConfigName(empty) = %q", got)
	}
}
