package pipeline

import (
	"sync"

	domain "docforge/internal/domain/pipeline"
	"docforge/internal/ports"
)

// Service orchestrates the documentation generation pipeline: connector
// registry, job lifecycle, dispatch, quality findings and suggestions.
// The job record is only ever mutated through the named transitions
// (process/approve/retry/cancel); nothing else writes job fields.
type Service struct {
	repo      ports.PipelineRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	queue     ports.JobQueue
	generator ports.DraftGenerator

	policyMu sync.RWMutex
	policy   domain.DispatchPolicy

	transitionMu sync.RWMutex
	onTransition func(JobTransition)
}

// NewService wires the pipeline usecases. The dispatch policy is fixed at
// construction (tests exercise all modes without ambient state); SetDispatchMode
// exists for config hot-reload only.
func NewService(
	repo ports.PipelineRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	queue ports.JobQueue,
	generator ports.DraftGenerator,
	policy domain.DispatchPolicy,
) *Service {
	return &Service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		queue:     queue,
		generator: generator,
		policy:    policy,
	}
}

// SetDispatchMode swaps the dispatch mode for subsequent create/retry events.
func (s *Service) SetDispatchMode(mode domain.DispatchMode) {
	s.policyMu.Lock()
	s.policy.Mode = mode
	s.policyMu.Unlock()
}

func (s *Service) dispatchMode() domain.DispatchMode {
	s.policyMu.RLock()
	defer s.policyMu.RUnlock()
	return s.policy.Mode
}

// JobTransition is emitted after every committed lifecycle transition, for
// the websocket feed and other observers.
type JobTransition struct {
	JobRef   string
	TenantID string
	Status   string
	At       string
}

// OnTransition registers a single observer for committed job transitions.
func (s *Service) OnTransition(fn func(JobTransition)) {
	s.transitionMu.Lock()
	s.onTransition = fn
	s.transitionMu.Unlock()
}

func (s *Service) notifyTransition(t JobTransition) {
	s.transitionMu.RLock()
	fn := s.onTransition
	s.transitionMu.RUnlock()
	if fn != nil {
		fn(t)
	}
}

type CreateConnectorInput struct {
	TenantID *string
	Name     string
	Type     string
	Config   string
}

type ConnectorItem struct {
	ConnectorID uint64
	TenantID    string
	Name        string
	Type        string
	Config      string
	IsActive    bool
	UpdatedAt   string
}

type CreateJobInput struct {
	TenantID    *string
	Intent      string
	Payload     string
	DocumentID  *uint64
	ConnectorID *uint64
	Title       string
	Actor       string
}

type CreateJobResult struct {
	JobRef     string
	Status     string
	Dispatched string
}

type FindingItem struct {
	FindingID  uint64
	JobRef     string
	DocumentID uint64
	Category   string
	Severity   string
	Message    string
	Location   string
	Resolution string
	ResolvedAt string
}

type SuggestionItem struct {
	SuggestionID uint64
	JobRef       string
	DocumentID   uint64
	Title        string
	Summary      string
	DiffPreview  string
	Status       string
	Resolution   string
	ResolvedAt   string
	UpdatedAt    string
}

type JobListItem struct {
	JobRef      string
	TenantID    string
	Intent      string
	Status      string
	CreatedAt   string
	UpdatedAt   string
	CompletedAt string
	Error       string
	Findings    []FindingItem
	Suggestions []SuggestionItem
}

type EventItem struct {
	EventID   uint64
	Actor     string
	CreatedAt string
	Body      string
}

type JobDetail struct {
	JobRef      string
	TenantID    string
	Intent      string
	Payload     string
	DocumentID  uint64
	ConnectorID uint64
	Status      string
	ResultDraft string
	Error       string
	CreatedAt   string
	UpdatedAt   string
	CompletedAt string
	Findings    []FindingItem
	Suggestions []SuggestionItem
	Events      []EventItem
}

type UpdateSuggestionInput struct {
	SuggestionID uint64
	Status       string
	Resolution   string
}

type DocumentItem struct {
	DocumentID uint64
	TenantID   string
	Title      string
	UpdatedAt  string
}
