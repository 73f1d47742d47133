package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"docforge/internal/infrastructure/persistence/sqlite/model"
	"docforge/internal/ports"
)

func setupPipelineRepository(t *testing.T) *PipelineRepository {
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
	return NewPipelineRepository(db)
}

func createJob(t *testing.T, repo *PipelineRepository, tenantID *string) ports.GenerationJob {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	job, err := repo.CreateJob(context.Background(), ports.GenerationJob{
		TenantID:    tenantID,
		Intent:      "CREATE",
		PayloadJSON: "{}",
		Status:      "PENDING",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func strptr(v string) *string { return &v }

func TestListConnectorsScopesTenantPlusGlobal(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, connector := range []ports.Connector{
		{TenantID: strptr("acme"), Name: "acme-git", Type: "GIT", ConfigJSON: "{}", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{TenantID: strptr("globex"), Name: "globex-git", Type: "GIT", ConfigJSON: "{}", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{TenantID: nil, Name: "shared-wiki", Type: "DOCUMENT_REPO", ConfigJSON: "{}", IsActive: true, CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := repo.CreateConnector(ctx, connector); err != nil {
			t.Fatalf("create connector %s: %v", connector.Name, err)
		}
	}

	items, err := repo.ListConnectors(ctx, strptr("acme"))
	if err != nil {
		t.Fatalf("ListConnectors() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListConnectors(acme) len = %d", len(items))
	}
	for _, item := range items {
		if item.Name == "globex-git" {
			t.Fatalf("ListConnectors(acme) leaked %s", item.Name)
		}
	}

	globalOnly, err := repo.ListConnectors(ctx, nil)
	if err != nil {
		t.Fatalf("ListConnectors(nil) error = %v", err)
	}
	if len(globalOnly) != 1 || globalOnly[0].Name != "shared-wiki" {
		t.Fatalf("ListConnectors(nil) = %+v", globalOnly)
	}
}

func TestListConnectorsOrdersActiveFirst(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	inactive, err := repo.CreateConnector(ctx, ports.Connector{
		Name: "old", Type: "GIT", ConfigJSON: "{}", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create connector: %v", err)
	}
	if _, err := repo.CreateConnector(ctx, ports.Connector{
		Name: "fresh", Type: "GIT", ConfigJSON: "{}", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create connector: %v", err)
	}

	later := time.Now().UTC().Add(time.Second).Format(time.RFC3339Nano)
	if err := repo.SetConnectorActive(ctx, inactive.ConnectorID, false, later); err != nil {
		t.Fatalf("SetConnectorActive() error = %v", err)
	}

	items, err := repo.ListConnectors(ctx, nil)
	if err != nil {
		t.Fatalf("ListConnectors() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListConnectors() len = %d", len(items))
	}
	if !items[0].IsActive || items[0].Name != "fresh" {
		t.Fatalf("ListConnectors() first = %+v", items[0])
	}
}

func TestListJobsScopesStrictlyByTenant(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()

	acmeJob := createJob(t, repo, strptr("acme"))
	createJob(t, repo, strptr("globex"))
	globalJob := createJob(t, repo, nil)

	acmeJobs, err := repo.ListJobs(ctx, ports.JobFilter{TenantID: strptr("acme")})
	if err != nil {
		t.Fatalf("ListJobs(acme) error = %v", err)
	}
	if len(acmeJobs) != 1 || acmeJobs[0].JobID != acmeJob.JobID {
		t.Fatalf("ListJobs(acme) = %+v", acmeJobs)
	}

	globalJobs, err := repo.ListJobs(ctx, ports.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs(nil) error = %v", err)
	}
	if len(globalJobs) != 1 || globalJobs[0].JobID != globalJob.JobID {
		t.Fatalf("ListJobs(nil) = %+v", globalJobs)
	}
}

func TestListJobsFiltersByStatus(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	first := createJob(t, repo, nil)
	createJob(t, repo, nil)

	if err := repo.MarkJobFailed(ctx, first.JobID, "boom", now); err != nil {
		t.Fatalf("MarkJobFailed() error = %v", err)
	}

	failed, err := repo.ListJobs(ctx, ports.JobFilter{Status: "FAILED"})
	if err != nil {
		t.Fatalf("ListJobs(FAILED) error = %v", err)
	}
	if len(failed) != 1 || failed[0].JobID != first.JobID {
		t.Fatalf("ListJobs(FAILED) = %+v", failed)
	}
}

func TestMarkJobMissingReturnsNotFound(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if err := repo.MarkJobRunning(ctx, 99, now); !errors.Is(err, ports.ErrJobNotFound) {
		t.Fatalf("MarkJobRunning(missing) error = %v", err)
	}
	if _, err := repo.GetJob(ctx, 99); !errors.Is(err, ports.ErrJobNotFound) {
		t.Fatalf("GetJob(missing) error = %v", err)
	}
}

func TestResetJobForRetryClearsResultFields(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	job := createJob(t, repo, nil)
	if err := repo.MarkJobRunning(ctx, job.JobID, now); err != nil {
		t.Fatalf("MarkJobRunning() error = %v", err)
	}
	if err := repo.MarkJobCompleted(ctx, job.JobID, "# Draft", now); err != nil {
		t.Fatalf("MarkJobCompleted() error = %v", err)
	}

	if err := repo.ResetJobForRetry(ctx, job.JobID, now); err != nil {
		t.Fatalf("ResetJobForRetry() error = %v", err)
	}

	got, err := repo.GetJob(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != "PENDING" {
		t.Fatalf("status after reset = %q", got.Status)
	}
	if got.ResultDraft != nil || got.CompletedAt != nil || got.Error != nil {
		t.Fatalf("reset left result fields: %+v", got)
	}
}

func TestMarkJobFailedClearsDraftAndCompletedAt(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	job := createJob(t, repo, nil)
	if err := repo.MarkJobCompleted(ctx, job.JobID, "# Draft", now); err != nil {
		t.Fatalf("MarkJobCompleted() error = %v", err)
	}
	if err := repo.MarkJobFailed(ctx, job.JobID, "generator unavailable", now); err != nil {
		t.Fatalf("MarkJobFailed() error = %v", err)
	}

	got, err := repo.GetJob(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != "FAILED" {
		t.Fatalf("status = %q", got.Status)
	}
	if got.Error == nil || *got.Error != "generator unavailable" {
		t.Fatalf("error = %v", got.Error)
	}
	if got.ResultDraft != nil || got.CompletedAt != nil {
		t.Fatalf("failed job kept result fields: %+v", got)
	}
}

func TestReplaceJobFindingsDoesNotAccumulate(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	job := createJob(t, repo, nil)

	firstBatch := []ports.QualityFinding{
		{JobID: &job.JobID, Category: "STRUCTURE", Severity: "WARNING", Message: "first", CreatedAt: now},
		{JobID: &job.JobID, Category: "COMPLIANCE", Severity: "INFO", Message: "second", CreatedAt: now},
	}
	if err := repo.ReplaceJobFindings(ctx, job.JobID, firstBatch); err != nil {
		t.Fatalf("ReplaceJobFindings(first) error = %v", err)
	}

	secondBatch := []ports.QualityFinding{
		{JobID: &job.JobID, Category: "TERMINOLOGY", Severity: "INFO", Message: "third", CreatedAt: now},
	}
	if err := repo.ReplaceJobFindings(ctx, job.JobID, secondBatch); err != nil {
		t.Fatalf("ReplaceJobFindings(second) error = %v", err)
	}

	findings, err := repo.ListJobFindings(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ListJobFindings() error = %v", err)
	}
	if len(findings) != 1 || findings[0].Message != "third" {
		t.Fatalf("ListJobFindings() = %+v", findings)
	}
}

func TestReplaceDocumentFindingsLeavesJobFindingsAlone(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	document, err := repo.CreateDocument(ctx, ports.Document{
		Title: "Runbook", Content: "text", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	job := createJob(t, repo, nil)

	jobFinding := []ports.QualityFinding{
		{JobID: &job.JobID, DocumentID: &document.DocumentID, Category: "STRUCTURE", Severity: "WARNING", Message: "from job", CreatedAt: now},
	}
	if err := repo.ReplaceJobFindings(ctx, job.JobID, jobFinding); err != nil {
		t.Fatalf("ReplaceJobFindings() error = %v", err)
	}

	documentFinding := []ports.QualityFinding{
		{DocumentID: &document.DocumentID, Category: "STYLE", Severity: "WARNING", Message: "from scan", CreatedAt: now},
	}
	if err := repo.ReplaceDocumentFindings(ctx, document.DocumentID, documentFinding); err != nil {
		t.Fatalf("ReplaceDocumentFindings() error = %v", err)
	}
	if err := repo.ReplaceDocumentFindings(ctx, document.DocumentID, documentFinding); err != nil {
		t.Fatalf("ReplaceDocumentFindings(rerun) error = %v", err)
	}

	docFindings, err := repo.ListDocumentFindings(ctx, document.DocumentID)
	if err != nil {
		t.Fatalf("ListDocumentFindings() error = %v", err)
	}
	if len(docFindings) != 1 || docFindings[0].Message != "from scan" {
		t.Fatalf("ListDocumentFindings() = %+v", docFindings)
	}

	jobFindings, err := repo.ListJobFindings(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ListJobFindings() error = %v", err)
	}
	if len(jobFindings) != 1 || jobFindings[0].Message != "from job" {
		t.Fatalf("ListJobFindings() = %+v", jobFindings)
	}
}

func TestListSuggestionsScopedByOwningJobTenant(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	acmeJob := createJob(t, repo, strptr("acme"))
	globexJob := createJob(t, repo, strptr("globex"))

	for _, suggestion := range []ports.UpdateSuggestion{
		{JobID: acmeJob.JobID, Title: "acme doc", Status: "OPEN", CreatedAt: now, UpdatedAt: now},
		{JobID: globexJob.JobID, Title: "globex doc", Status: "OPEN", CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := repo.CreateSuggestion(ctx, suggestion); err != nil {
			t.Fatalf("create suggestion: %v", err)
		}
	}

	acmeSuggestions, err := repo.ListSuggestions(ctx, strptr("acme"))
	if err != nil {
		t.Fatalf("ListSuggestions(acme) error = %v", err)
	}
	if len(acmeSuggestions) != 1 || acmeSuggestions[0].Title != "acme doc" {
		t.Fatalf("ListSuggestions(acme) = %+v", acmeSuggestions)
	}

	all, err := repo.ListSuggestions(ctx, nil)
	if err != nil {
		t.Fatalf("ListSuggestions(nil) error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListSuggestions(nil) len = %d", len(all))
	}
}

func TestJobEventsOrderedByInsertion(t *testing.T) {
	repo := setupPipelineRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	job := createJob(t, repo, nil)
	for _, body := range []string{"created", "started", "completed"} {
		if err := repo.AppendJobEvent(ctx, ports.JobEventCreate{
			JobID:     job.JobID,
			Actor:     "pipeline",
			Body:      body,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("append event %q: %v", body, err)
		}
	}

	events, err := repo.ListJobEvents(ctx, job.JobID)
	if err != nil {
		t.Fatalf("ListJobEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ListJobEvents() len = %d", len(events))
	}
	if events[0].Body != "created" || events[2].Body != "completed" {
		t.Fatalf("ListJobEvents() order = %q,%q,%q", events[0].Body, events[1].Body, events[2].Body)
	}
}
