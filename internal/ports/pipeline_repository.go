package ports

import (
	"context"
	"errors"
)

var (
	ErrJobNotFound        = errors.New("generation job not found")
	ErrConnectorNotFound  = errors.New("connector not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrSuggestionNotFound = errors.New("update suggestion not found")
	ErrFindingNotFound    = errors.New("quality finding not found")
)

type Connector struct {
	ConnectorID uint64
	TenantID    *string
	Name        string
	Type        string
	ConfigJSON  string
	IsActive    bool
	CreatedAt   string
	UpdatedAt   string
}

type GenerationJob struct {
	JobID       uint64
	TenantID    *string
	Intent      string
	PayloadJSON string
	DocumentID  *uint64
	ConnectorID *uint64
	Status      string
	ResultDraft *string
	Error       *string
	CreatedAt   string
	UpdatedAt   string
	CompletedAt *string
}

type JobFilter struct {
	TenantID *string
	Status   string
}

type QualityFinding struct {
	FindingID  uint64
	JobID      *uint64
	DocumentID *uint64
	Category   string
	Severity   string
	Message    string
	Location   *string
	Resolution *string
	ResolvedAt *string
	CreatedAt  string
}

type UpdateSuggestion struct {
	SuggestionID uint64
	JobID        uint64
	DocumentID   *uint64
	Title        string
	Summary      string
	DiffPreview  *string
	Status       string
	Resolution   *string
	ResolvedAt   *string
	CreatedAt    string
	UpdatedAt    string
}

type Document struct {
	DocumentID uint64
	TenantID   *string
	Title      string
	Content    string
	CreatedAt  string
	UpdatedAt  string
}

type JobEvent struct {
	EventID   uint64
	JobID     uint64
	Actor     string
	Body      string
	CreatedAt string
}

type JobEventCreate struct {
	JobID     uint64
	Actor     string
	Body      string
	CreatedAt string
}

type PipelineReadRepository interface {
	// ListConnectors returns tenant-owned plus global connectors,
	// active ones first, then most recently updated.
	ListConnectors(ctx context.Context, tenantID *string) ([]Connector, error)
	GetConnector(ctx context.Context, connectorID uint64) (Connector, error)

	GetJob(ctx context.Context, jobID uint64) (GenerationJob, error)
	// ListJobs scopes strictly by tenant: a nil tenant means global-scoped
	// jobs only, never all tenants.
	ListJobs(ctx context.Context, filter JobFilter) ([]GenerationJob, error)
	ListJobEvents(ctx context.Context, jobID uint64) ([]JobEvent, error)

	ListJobFindings(ctx context.Context, jobID uint64) ([]QualityFinding, error)
	ListDocumentFindings(ctx context.Context, documentID uint64) ([]QualityFinding, error)
	GetFinding(ctx context.Context, findingID uint64) (QualityFinding, error)

	GetSuggestion(ctx context.Context, suggestionID uint64) (UpdateSuggestion, error)
	// ListSuggestions scopes by the owning job's tenant; a nil tenant returns
	// every suggestion, most recently updated first.
	ListSuggestions(ctx context.Context, tenantID *string) ([]UpdateSuggestion, error)

	GetDocument(ctx context.Context, documentID uint64) (Document, error)
	ListDocuments(ctx context.Context, tenantID *string) ([]Document, error)
}

type PipelineRepository interface {
	PipelineReadRepository

	CreateConnector(ctx context.Context, connector Connector) (Connector, error)
	SetConnectorActive(ctx context.Context, connectorID uint64, isActive bool, updatedAt string) error

	CreateJob(ctx context.Context, job GenerationJob) (GenerationJob, error)
	MarkJobRunning(ctx context.Context, jobID uint64, updatedAt string) error
	MarkJobCompleted(ctx context.Context, jobID uint64, resultDraft string, completedAt string) error
	MarkJobFailed(ctx context.Context, jobID uint64, errorMessage string, updatedAt string) error
	MarkJobCancelled(ctx context.Context, jobID uint64, completedAt string) error
	MarkJobApproved(ctx context.Context, jobID uint64, completedAt string) error
	ResetJobForRetry(ctx context.Context, jobID uint64, updatedAt string) error

	// ReplaceJobFindings deletes the job's prior batch and inserts the new
	// one; reruns never accumulate stale findings.
	ReplaceJobFindings(ctx context.Context, jobID uint64, findings []QualityFinding) error
	DeleteJobFindings(ctx context.Context, jobID uint64) error
	// ReplaceDocumentFindings is the job-less analogue, scoped to findings
	// carrying a document id and no job id.
	ReplaceDocumentFindings(ctx context.Context, documentID uint64, findings []QualityFinding) error
	SetFindingResolution(ctx context.Context, findingID uint64, resolution *string, resolvedAt *string) error

	CreateSuggestion(ctx context.Context, suggestion UpdateSuggestion) (UpdateSuggestion, error)
	UpdateSuggestionStatus(ctx context.Context, suggestionID uint64, status string, resolution *string, resolvedAt *string, updatedAt string) error

	CreateDocument(ctx context.Context, document Document) (Document, error)

	AppendJobEvent(ctx context.Context, input JobEventCreate) error
}
