package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "docforge/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "docforge/internal/infrastructure/persistence/sqlite/uow"
	"docforge/internal/ports"
	"docforge/internal/usecase/pipeline"
)

type staticGenerator struct {
	draft string
}

func (g *staticGenerator) Generate(_ context.Context, _ ports.DraftContext) (string, error) {
	return g.draft, nil
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pipeline.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(
		&model.Connector{},
		&model.Document{},
		&model.GenerationJob{},
		&model.JobEvent{},
		&model.QualityFinding{},
		&model.UpdateSuggestion{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	generator := &staticGenerator{draft: "# Draft\n\n## Context\n\nGenerated content, pending review.\n"}
	svc := pipeline.NewService(
		sqliterepo.NewPipelineRepository(db),
		sqliteuow.NewUnitOfWork(db),
		nil,
		nil,
		generator,
		domain.DispatchPolicy{Mode: domain.DispatchManual},
	)
	return NewServer(svc).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", rec.Code)
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/jobs/",
		`{"tenantId":"acme","intent":"create","actor":"alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /jobs = %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	decodeBody(t, rec, &created)
	if created["jobRef"] != "job#1" {
		t.Fatalf("jobRef = %q, want job#1", created["jobRef"])
	}
	if created["status"] != string(domain.StatusPending) {
		t.Fatalf("status = %q, want PENDING", created["status"])
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/1/process", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /jobs/1/process = %d: %s", rec.Code, rec.Body.String())
	}
	var detail jobDetailJSON
	decodeBody(t, rec, &detail)
	if detail.Status != string(domain.StatusCompleted) {
		t.Fatalf("processed status = %q, want COMPLETED", detail.Status)
	}
	if detail.ResultDraft == "" {
		t.Fatalf("processed job missing result draft")
	}
	if detail.CompletedAt == "" {
		t.Fatalf("processed job missing completedAt")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/jobs/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /jobs/1 = %d", rec.Code)
	}
	decodeBody(t, rec, &detail)
	if detail.JobRef != "job#1" || detail.TenantID != "acme" {
		t.Fatalf("detail = %+v", detail)
	}
	if len(detail.Events) == 0 {
		t.Fatalf("expected lifecycle events on job detail")
	}

	// Cancelling a completed job conflicts with its terminal state.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/1/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("POST /jobs/1/cancel = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/1/retry", `{"actor":"bob"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /jobs/1/retry = %d: %s", rec.Code, rec.Body.String())
	}
	var retried map[string]string
	decodeBody(t, rec, &retried)
	if retried["status"] != string(domain.StatusPending) {
		t.Fatalf("retried status = %q, want PENDING", retried["status"])
	}
}

func TestJobErrorStatusCodes(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/jobs/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /jobs/99 = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/jobs/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /jobs/abc = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/", `{"tenantId":"acme"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /jobs without intent = %d, want 400", rec.Code)
	}
}

func TestConnectorEndpoints(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/connectors/",
		`{"tenantId":"acme","name":"docs-repo","type":"git","config":"{\"url\":\"https://git.example.com/docs.git\"}"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /connectors = %d: %s", rec.Code, rec.Body.String())
	}
	var connector connectorJSON
	decodeBody(t, rec, &connector)
	if connector.Type != "GIT" || !connector.IsActive {
		t.Fatalf("connector = %+v", connector)
	}

	// A GIT connector without a url fails schema validation.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/connectors/",
		`{"name":"broken","type":"git","config":"{}"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST invalid connector = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/connectors/1/deactivate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /connectors/1/deactivate = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/connectors/?tenant=acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /connectors = %d", rec.Code)
	}
	var connectors []connectorJSON
	decodeBody(t, rec, &connectors)
	if len(connectors) != 1 || connectors[0].IsActive {
		t.Fatalf("connectors = %+v", connectors)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/connectors/99/activate", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /connectors/99/activate = %d, want 404", rec.Code)
	}
}

func TestDocumentQualityEndpoints(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/documents/",
		`{"tenantId":"acme","title":"Runbook","content":"<h1>Runbook</h1><p>password: abc123</p>"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /documents = %d: %s", rec.Code, rec.Body.String())
	}
	var document documentJSON
	decodeBody(t, rec, &document)
	if document.DocumentID == 0 || document.Title != "Runbook" {
		t.Fatalf("document = %+v", document)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/documents/1/quality-check", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /documents/1/quality-check = %d: %s", rec.Code, rec.Body.String())
	}
	var findings []findingJSON
	decodeBody(t, rec, &findings)
	if len(findings) == 0 {
		t.Fatalf("expected findings for document with a credential")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/documents/1/findings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /documents/1/findings = %d", rec.Code)
	}
	decodeBody(t, rec, &findings)
	if len(findings) == 0 {
		t.Fatalf("expected persisted findings")
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/findings/1/resolution",
		`{"resolution":"rotated the credential"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /findings/1/resolution = %d: %s", rec.Code, rec.Body.String())
	}
	var finding findingJSON
	decodeBody(t, rec, &finding)
	if finding.Resolution != "rotated the credential" || finding.ResolvedAt == "" {
		t.Fatalf("finding = %+v", finding)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/documents/99/quality-check", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /documents/99/quality-check = %d, want 404", rec.Code)
	}
}

func TestSuggestionEndpoints(t *testing.T) {
	router := setupRouter(t)

	// A titled job auto-creates an update suggestion on completion.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/documents/",
		`{"tenantId":"acme","title":"Guide","content":"Maintained by the infra team. Updated after each review."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /documents = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/",
		`{"tenantId":"acme","intent":"update","documentId":1,"title":"Refresh the guide"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /jobs = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/jobs/1/process", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /jobs/1/process = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/suggestions/?tenant=acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /suggestions = %d", rec.Code)
	}
	var suggestions []suggestionJSON
	decodeBody(t, rec, &suggestions)
	if len(suggestions) != 1 || suggestions[0].Status != domain.SuggestionOpen {
		t.Fatalf("suggestions = %+v", suggestions)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/suggestions/1",
		`{"status":"applied","resolution":"merged"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /suggestions/1 = %d: %s", rec.Code, rec.Body.String())
	}
	var suggestion suggestionJSON
	decodeBody(t, rec, &suggestion)
	if suggestion.Status != domain.SuggestionApplied || suggestion.ResolvedAt == "" {
		t.Fatalf("suggestion = %+v", suggestion)
	}

	// Reopening clears the reviewer decision.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/suggestions/1", `{"status":"open"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST reopen suggestion = %d: %s", rec.Code, rec.Body.String())
	}
	suggestion = suggestionJSON{}
	decodeBody(t, rec, &suggestion)
	if suggestion.Status != domain.SuggestionOpen || suggestion.Resolution != "" || suggestion.ResolvedAt != "" {
		t.Fatalf("reopened suggestion = %+v", suggestion)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/suggestions/99", `{"status":"applied"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /suggestions/99 = %d, want 404", rec.Code)
	}
}
