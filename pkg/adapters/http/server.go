package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Service is the interpreter surface the HTTP adapter needs. *turing.Service satisfies it.
type Service interface {
	CreateDefinition(ctx context.Context, spec schema.DefinitionSpec) (*domain.Definition, error)
	Definition(ctx context.Context, id string) (*domain.Definition, error)
	ListDefinitions(ctx context.Context) ([]domain.DefinitionRef, error)
	OpenSymbols(ctx context.Context, definitionID string, symbols []string) (session.Opened, error)
	Get(ctx context.Context, instanceID string) (session.View, error)
	Step(ctx context.Context, instanceID string) (domain.StepOutcome, error)
	Run(ctx context.Context, instanceID string, maxSteps int) (domain.RunOutcome, error)
	ResetSymbols(ctx context.Context, instanceID string, symbols []string) (domain.Snapshot, error)
	Close(ctx context.Context, instanceID string) error
	History(ctx context.Context, instanceID string) ([]domain.StepRecord, error)
	Sessions(ctx context.Context) ([]string, error)
}

var _ Service = (*turing.Service)(nil)

// Server holds the handlers of the JSON API.
type Server struct {
	Service Service
	Streams *StreamManager
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) http.Handler {
	server := &Server{Service: svc, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)
	return enableCORS(server.Routes())
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/definitions", func(r chi.Router) {
		r.Get("/", s.ListDefinitions)
		r.Post("/", s.CreateDefinition)
		r.Get("/{id}", s.GetDefinition)
		r.Get("/{id}/graph", s.GetDefinitionGraph)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.OpenSession)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.CloseSession)
		r.Post("/{id}/step", s.Step)
		r.Post("/{id}/run", s.Run)
		r.Post("/{id}/reset", s.Reset)
		r.Get("/{id}/history", s.GetHistory)
		r.Get("/{id}/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "error", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "turing-http",
		"version":     strings.TrimSpace(turing.Version),
		"api_version": apiVersion,
	})
}

// CreateDefinition handles the POST /definitions request.
func (s *Server) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var spec schema.DefinitionSpec
	if !s.decode(w, r, &spec) {
		return
	}
	def, err := s.Service.CreateDefinition(r.Context(), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, CreatedResponse{
		ID:      def.ID(),
		Message: fmt.Sprintf("definition %q created", def.Name()),
	})
}

// ListDefinitions handles the GET /definitions request.
func (s *Server) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	refs, err := s.Service.ListDefinitions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if refs == nil {
		refs = []domain.DefinitionRef{}
	}
	s.writeJSON(w, http.StatusOK, refs)
}

// GetDefinition handles the GET /definitions/{id} request.
func (s *Server) GetDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := s.Service.Definition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def.Summary())
}

// GetDefinitionGraph handles the GET /definitions/{id}/graph request.
func (s *Server) GetDefinitionGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Service.Definition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var sessionID *string
	if err := runtime.BindQueryParameter("form", true, false, "session", r.URL.Query(), &sessionID); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid session parameter: %v", err)})
		return
	}

	var overlay *graph.GraphOverlay
	if sessionID != nil && *sessionID != "" {
		overlay, err = s.overlay(r.Context(), *sessionID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(def.Summary(), overlay)))
}

func (s *Server) overlay(ctx context.Context, instanceID string) (*graph.GraphOverlay, error) {
	view, err := s.Service.Get(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	records, err := s.Service.History(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	ov := &graph.GraphOverlay{CurrentState: view.Snapshot.CurrentState}
	for _, rec := range records {
		ov.VisitedStates = append(ov.VisitedStates, rec.StateBefore)
	}
	return ov, nil
}

// OpenSession handles the POST /sessions request.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body OpenRequest
	if !s.decode(w, r, &body) {
		return
	}
	opened, err := s.Service.OpenSymbols(r.Context(), body.DefinitionID, body.Symbols())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, OpenedResponse{
		InstanceID: opened.InstanceID,
		State:      opened.Snapshot,
		Definition: opened.Definition,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.Sessions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{
		InstanceID:   view.InstanceID,
		DefinitionID: view.DefinitionID,
		State:        view.Snapshot,
	})
}

// Step handles the POST /sessions/{id}/step request.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	withHistory, ok := s.historyParam(w, r)
	if !ok {
		return
	}
	out, err := s.Service.Step(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, out.Snapshot)

	resp := StepResponse{State: out.Snapshot, Applied: out.Applied}
	if withHistory {
		resp.Step = out.Record
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Run handles the POST /sessions/{id}/run request.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	withHistory, ok := s.historyParam(w, r)
	if !ok {
		return
	}
	var body RunRequest
	if !s.decode(w, r, &body) {
		return
	}
	out, err := s.Service.Run(r.Context(), id, body.MaxSteps)
	// A run that only detects the halt still changes the snapshot.
	if err == nil || out.Applied > 0 {
		s.publish(id, out.Snapshot)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := RunResponse{State: out.Snapshot, Applied: out.Applied}
	if withHistory {
		resp.History = out.Records
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Reset handles the POST /sessions/{id}/reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body TapeRequest
	if !s.decode(w, r, &body) {
		return
	}
	snap, err := s.Service.ResetSymbols(r.Context(), id, body.Symbols())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, snap)
	s.writeJSON(w, http.StatusOK, StateResponse{State: snap})
}

// GetHistory handles the GET /sessions/{id}/history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.Service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.StepRecord{}
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Records: records})
}

// CloseSession handles the DELETE /sessions/{id} request.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Service.Close(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Broadcast(id, Event{Name: "closed", Data: fmt.Sprintf("{%q:%q}", "instance_id", id)})
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	view, err := s.Service.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: Subscribing to session updates", "instance_id", id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if data, err := json.Marshal(view.Snapshot); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "instance_id", id)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
			if ev.Name == "closed" {
				return
			}
		}
	}
}

// -- Helpers --

func (s *Server) publish(instanceID string, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("SSE: Snapshot encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(instanceID, Event{Name: "snapshot", Data: string(data)})
}

// historyParam binds ?history=bool, defaulting to true.
func (s *Server) historyParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var history *bool
	if err := runtime.BindQueryParameter("form", true, false, "history", r.URL.Query(), &history); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid history parameter: %v", err)})
		return false, false
	}
	return history == nil || *history, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// writeError maps domain errors to status codes:
// validation 422, invalid input 400, not found 404, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Rule:  string(verr.Rule),
			Field: verr.Field,
			Value: verr.Value,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case turing.IsNotFound(err):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
