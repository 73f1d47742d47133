package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"docforge/internal/usecase/pipeline"
)

// Server exposes the pipeline over a JSON API plus a websocket event feed.
type Server struct {
	svc *pipeline.Service
	hub *Hub
}

func NewServer(svc *pipeline.Service) *Server {
	s := &Server{
		svc: svc,
		hub: NewHub(),
	}
	svc.OnTransition(s.hub.Broadcast)
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/connectors", func(r chi.Router) {
			r.Get("/", s.listConnectors)
			r.Post("/", s.createConnector)
			r.Post("/{connectorID}/activate", s.activateConnector)
			r.Post("/{connectorID}/deactivate", s.deactivateConnector)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.listJobs)
			r.Post("/", s.createJob)
			r.Get("/{jobID}", s.getJob)
			r.Post("/{jobID}/process", s.processJob)
			r.Post("/{jobID}/retry", s.retryJob)
			r.Post("/{jobID}/cancel", s.cancelJob)
			r.Post("/{jobID}/approve", s.approveJob)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", s.listSuggestions)
			r.Post("/{suggestionID}", s.updateSuggestion)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Post("/", s.addDocument)
			r.Post("/{documentID}/quality-check", s.runQualityCheck)
			r.Get("/{documentID}/findings", s.listDocumentFindings)
		})

		r.Post("/findings/{findingID}/resolution", s.resolveFinding)
	})

	r.Get("/ws/events", s.hub.ServeHTTP)

	return r
}
