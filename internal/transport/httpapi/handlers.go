package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	"docforge/internal/ports"
	"docforge/internal/usecase/pipeline"
)

type connectorJSON struct {
	ConnectorID uint64 `json:"connectorId"`
	TenantID    string `json:"tenantId,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Config      string `json:"config"`
	IsActive    bool   `json:"isActive"`
	UpdatedAt   string `json:"updatedAt"`
}

type findingJSON struct {
	FindingID  uint64 `json:"findingId"`
	JobRef     string `json:"jobRef,omitempty"`
	DocumentID uint64 `json:"documentId,omitempty"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	ResolvedAt string `json:"resolvedAt,omitempty"`
}

type suggestionJSON struct {
	SuggestionID uint64 `json:"suggestionId"`
	JobRef       string `json:"jobRef,omitempty"`
	DocumentID   uint64 `json:"documentId,omitempty"`
	Title        string `json:"title"`
	Summary      string `json:"summary,omitempty"`
	DiffPreview  string `json:"diffPreview,omitempty"`
	Status       string `json:"status"`
	Resolution   string `json:"resolution,omitempty"`
	ResolvedAt   string `json:"resolvedAt,omitempty"`
	UpdatedAt    string `json:"updatedAt"`
}

type jobListItemJSON struct {
	JobRef      string           `json:"jobRef"`
	TenantID    string           `json:"tenantId,omitempty"`
	Intent      string           `json:"intent"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	CompletedAt string           `json:"completedAt,omitempty"`
	Error       string           `json:"error,omitempty"`
	Findings    []findingJSON    `json:"findings"`
	Suggestions []suggestionJSON `json:"suggestions"`
}

type eventJSON struct {
	EventID   uint64 `json:"eventId"`
	Actor     string `json:"actor"`
	CreatedAt string `json:"createdAt"`
	Body      string `json:"body"`
}

type jobDetailJSON struct {
	JobRef      string           `json:"jobRef"`
	TenantID    string           `json:"tenantId,omitempty"`
	Intent      string           `json:"intent"`
	Payload     string           `json:"payload,omitempty"`
	DocumentID  uint64           `json:"documentId,omitempty"`
	ConnectorID uint64           `json:"connectorId,omitempty"`
	Status      string           `json:"status"`
	ResultDraft string           `json:"resultDraft,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	CompletedAt string           `json:"completedAt,omitempty"`
	Findings    []findingJSON    `json:"findings"`
	Suggestions []suggestionJSON `json:"suggestions"`
	Events      []eventJSON      `json:"events"`
}

type documentJSON struct {
	DocumentID uint64 `json:"documentId"`
	TenantID   string `json:"tenantId,omitempty"`
	Title      string `json:"title"`
	UpdatedAt  string `json:"updatedAt"`
}

type createConnectorRequest struct {
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Config   string `json:"config"`
}

type createJobRequest struct {
	TenantID    string  `json:"tenantId"`
	Intent      string  `json:"intent"`
	Payload     string  `json:"payload"`
	DocumentID  *uint64 `json:"documentId"`
	ConnectorID *uint64 `json:"connectorId"`
	Title       string  `json:"title"`
	Actor       string  `json:"actor"`
}

type actorRequest struct {
	Actor string `json:"actor"`
}

type updateSuggestionRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

type addDocumentRequest struct {
	TenantID string `json:"tenantId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type resolveFindingRequest struct {
	Resolution string `json:"resolution"`
}

func (s *Server) listConnectors(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListConnectors(r.Context(), tenantQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]connectorJSON, 0, len(items))
	for _, item := range items {
		out = append(out, mapConnectorJSON(item))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) createConnector(w http.ResponseWriter, r *http.Request) {
	var req createConnectorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.CreateConnector(r.Context(), pipeline.CreateConnectorInput{
		TenantID: optionalString(req.TenantID),
		Name:     req.Name,
		Type:     req.Type,
		Config:   req.Config,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, mapConnectorJSON(item))
}

func (s *Server) activateConnector(w http.ResponseWriter, r *http.Request) {
	s.setConnectorActive(w, r, true)
}

func (s *Server) deactivateConnector(w http.ResponseWriter, r *http.Request) {
	s.setConnectorActive(w, r, false)
}

func (s *Server) setConnectorActive(w http.ResponseWriter, r *http.Request, active bool) {
	connectorID, ok := pathID(w, r, "connectorID")
	if !ok {
		return
	}
	if err := s.svc.SetConnectorActive(r.Context(), connectorID, active); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"isActive": active})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := s.svc.ListJobs(r.Context(), tenantQuery(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]jobListItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, jobListItemJSON{
			JobRef:      item.JobRef,
			TenantID:    item.TenantID,
			Intent:      item.Intent,
			Status:      item.Status,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
			CompletedAt: item.CompletedAt,
			Error:       item.Error,
			Findings:    mapFindingsJSON(item.Findings),
			Suggestions: mapSuggestionsJSON(item.Suggestions),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.svc.CreateJob(r.Context(), pipeline.CreateJobInput{
		TenantID:    optionalString(req.TenantID),
		Intent:      req.Intent,
		Payload:     req.Payload,
		DocumentID:  req.DocumentID,
		ConnectorID: req.ConnectorID,
		Title:       req.Title,
		Actor:       req.Actor,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{
		"jobRef":     result.JobRef,
		"status":     result.Status,
		"dispatched": result.Dispatched,
	})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	jobRef, ok := pathJobRef(w, r)
	if !ok {
		return
	}
	detail, err := s.svc.GetJob(r.Context(), jobRef)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapJobDetailJSON(detail))
}

func (s *Server) processJob(w http.ResponseWriter, r *http.Request) {
	jobRef, ok := pathJobRef(w, r)
	if !ok {
		return
	}
	detail, err := s.svc.ProcessJob(r.Context(), jobRef)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapJobDetailJSON(detail))
}

func (s *Server) retryJob(w http.ResponseWriter, r *http.Request) {
	jobRef, ok := pathJobRef(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	result, err := s.svc.RetryJob(r.Context(), jobRef, req.Actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"jobRef":     result.JobRef,
		"status":     result.Status,
		"dispatched": result.Dispatched,
	})
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	jobRef, ok := pathJobRef(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	if err := s.svc.CancelJob(r.Context(), jobRef, req.Actor); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"jobRef": jobRef, "status": string(domain.StatusCancelled)})
}

func (s *Server) approveJob(w http.ResponseWriter, r *http.Request) {
	jobRef, ok := pathJobRef(w, r)
	if !ok {
		return
	}
	var req actorRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	if err := s.svc.ApproveJob(r.Context(), jobRef, req.Actor); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"jobRef": jobRef, "approved": "true"})
}

func (s *Server) listSuggestions(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListSuggestions(r.Context(), tenantQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSuggestionsJSON(items))
}

func (s *Server) updateSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestionID, ok := pathID(w, r, "suggestionID")
	if !ok {
		return
	}
	var req updateSuggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.UpdateSuggestion(r.Context(), pipeline.UpdateSuggestionInput{
		SuggestionID: suggestionID,
		Status:       req.Status,
		Resolution:   req.Resolution,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSuggestionJSON(item))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ListDocuments(r.Context(), tenantQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]documentJSON, 0, len(items))
	for _, item := range items {
		out = append(out, documentJSON{
			DocumentID: item.DocumentID,
			TenantID:   item.TenantID,
			Title:      item.Title,
			UpdatedAt:  item.UpdatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) addDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.AddDocument(r.Context(), optionalString(req.TenantID), req.Title, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, documentJSON{
		DocumentID: item.DocumentID,
		TenantID:   item.TenantID,
		Title:      item.Title,
		UpdatedAt:  item.UpdatedAt,
	})
}

func (s *Server) runQualityCheck(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	findings, err := s.svc.RunDocumentQualityCheck(r.Context(), documentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapFindingsJSON(findings))
}

func (s *Server) listDocumentFindings(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentID")
	if !ok {
		return
	}
	findings, err := s.svc.ListDocumentFindings(r.Context(), documentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapFindingsJSON(findings))
}

func (s *Server) resolveFinding(w http.ResponseWriter, r *http.Request) {
	findingID, ok := pathID(w, r, "findingID")
	if !ok {
		return
	}
	var req resolveFindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.UpdateFindingResolution(r.Context(), findingID, req.Resolution)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapFindingJSON(item))
}

func mapConnectorJSON(item pipeline.ConnectorItem) connectorJSON {
	return connectorJSON{
		ConnectorID: item.ConnectorID,
		TenantID:    item.TenantID,
		Name:        item.Name,
		Type:        item.Type,
		Config:      item.Config,
		IsActive:    item.IsActive,
		UpdatedAt:   item.UpdatedAt,
	}
}

func mapFindingJSON(item pipeline.FindingItem) findingJSON {
	return findingJSON{
		FindingID:  item.FindingID,
		JobRef:     item.JobRef,
		DocumentID: item.DocumentID,
		Category:   item.Category,
		Severity:   item.Severity,
		Message:    item.Message,
		Location:   item.Location,
		Resolution: item.Resolution,
		ResolvedAt: item.ResolvedAt,
	}
}

func mapFindingsJSON(items []pipeline.FindingItem) []findingJSON {
	out := make([]findingJSON, 0, len(items))
	for _, item := range items {
		out = append(out, mapFindingJSON(item))
	}
	return out
}

func mapSuggestionJSON(item pipeline.SuggestionItem) suggestionJSON {
	return suggestionJSON{
		SuggestionID: item.SuggestionID,
		JobRef:       item.JobRef,
		DocumentID:   item.DocumentID,
		Title:        item.Title,
		Summary:      item.Summary,
		DiffPreview:  item.DiffPreview,
		Status:       item.Status,
		Resolution:   item.Resolution,
		ResolvedAt:   item.ResolvedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func mapSuggestionsJSON(items []pipeline.SuggestionItem) []suggestionJSON {
	out := make([]suggestionJSON, 0, len(items))
	for _, item := range items {
		out = append(out, mapSuggestionJSON(item))
	}
	return out
}

func mapJobDetailJSON(detail pipeline.JobDetail) jobDetailJSON {
	events := make([]eventJSON, 0, len(detail.Events))
	for _, event := range detail.Events {
		events = append(events, eventJSON{
			EventID:   event.EventID,
			Actor:     event.Actor,
			CreatedAt: event.CreatedAt,
			Body:      event.Body,
		})
	}
	return jobDetailJSON{
		JobRef:      detail.JobRef,
		TenantID:    detail.TenantID,
		Intent:      detail.Intent,
		Payload:     detail.Payload,
		DocumentID:  detail.DocumentID,
		ConnectorID: detail.ConnectorID,
		Status:      detail.Status,
		ResultDraft: detail.ResultDraft,
		Error:       detail.Error,
		CreatedAt:   detail.CreatedAt,
		UpdatedAt:   detail.UpdatedAt,
		CompletedAt: detail.CompletedAt,
		Findings:    mapFindingsJSON(detail.Findings),
		Suggestions: mapSuggestionsJSON(detail.Suggestions),
		Events:      events,
	}
}

func tenantQuery(r *http.Request) *string {
	return optionalString(r.URL.Query().Get("tenant"))
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func pathJobRef(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID, ok := pathID(w, r, "jobID")
	if !ok {
		return "", false
	}
	return domain.FormatJobRef(jobID), true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body, for actions whose request fields
// are all optional.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return decodeJSON(w, r, target)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn(r.Context(), "write response failed", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrJobNotFound),
		errors.Is(err, ports.ErrConnectorNotFound),
		errors.Is(err, ports.ErrDocumentNotFound),
		errors.Is(err, ports.ErrSuggestionNotFound),
		errors.Is(err, ports.ErrFindingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRetryRunningJob),
		errors.Is(err, domain.ErrCancelTerminalJob),
		errors.Is(err, domain.ErrApproveCancelledJob),
		errors.Is(err, domain.ErrProcessCancelledJob):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrJobRefRequired),
		errors.Is(err, domain.ErrInvalidJobRef),
		errors.Is(err, domain.ErrIntentRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidConnectorConfig):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", err))
	}
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}
