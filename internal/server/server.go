// Package server exposes the orchestrator engine over a JSON HTTP API and a
// websocket transcript stream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/transcript"
)

const (
	maxBodyBytes           = 1 << 20
	defaultShutdownTimeout = 5 * time.Second
	streamBuffer           = 256
)

// Config configures a Server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Bus carries transcript appends to stream clients. Without it the
	// stream endpoint is not registered.
	Bus    *event.Bus
	Logger *logging.Logger
}

// Server serves one Engine.
type Server struct {
	engine          *orchestrator.Engine
	bus             *event.Bus
	logger          *logging.Logger
	addr            string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// New creates a Server for engine.
func New(engine *orchestrator.Engine, cfg Config) *Server {
	s := &Server{
		engine:          engine,
		bus:             cfg.Bus,
		logger:          cfg.Logger,
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.logger == nil {
		s.logger = logging.NopLogger()
	}
	s.logger = s.logger.With("component", "server")
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/init", s.handleInit)
	mux.HandleFunc("POST /api/message", s.handleMessage)
	mux.HandleFunc("GET /api/feed", s.handleFeed)
	mux.HandleFunc("GET /api/conversations/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/conversations/{id}/members", s.handleMembers)
	mux.HandleFunc("POST /api/add-agent", s.handleAddAgent)
	mux.HandleFunc("POST /api/add-agents", s.handleAddAgents)
	mux.HandleFunc("GET /api/roles", s.handleRoles)
	mux.HandleFunc("GET /api/recommend", s.handleRecommend)
	mux.HandleFunc("GET /api/orchestrator", s.handleGetSettings)
	mux.HandleFunc("PUT /api/orchestrator", s.handlePutSettings)
	if s.bus != nil {
		stream := websocket.Server{Handler: s.handleStream}
		mux.Handle("GET /api/stream", stream)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("listening", "addr", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

type initResponse struct {
	ConversationID string             `json:"conversation_id"`
	Events         []transcript.Event `json:"events"`
}

type messageRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type addAgentRequest struct {
	ConversationID string   `json:"conversation_id"`
	RoleID         string   `json:"role_id"`
	RoleIDs        []string `json:"role_ids"`
}

type membersResponse struct {
	ConversationID string             `json:"conversation_id"`
	Members        []string           `json:"members"`
	Events         []transcript.Event `json:"events,omitempty"`
}

type feedResponse struct {
	Events []transcript.Event `json:"events"`
	LastID int64              `json:"last_id"`
}

type rolesResponse struct {
	Roles       []roles.Role `json:"roles"`
	Recommended []string     `json:"recommended,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	id, events := s.engine.Start(r.Context())
	writeJSON(w, http.StatusOK, initResponse{ConversationID: id, Events: events})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ConversationID == "" {
		s.writeError(w, errors.NewValidationError("conversation_id is required").
			WithField("conversation_id").WithCause(errors.ErrInvalidInput))
		return
	}
	res, err := s.engine.HandleMessage(r.Context(), req.ConversationID, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	events := s.engine.Feed(since)
	writeJSON(w, http.StatusOK, feedResponse{Events: nonNil(events), LastID: lastID(events, since)})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	events, err := s.engine.Events(r.PathValue("id"), since)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Events: nonNil(events), LastID: lastID(events, since)})
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	members, err := s.engine.Members(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{ConversationID: id, Members: nonNil(members)})
}

func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var req addAgentRequest
	if !s.decode(w, r, &req) {
		return
	}
	var ids []string
	if strings.TrimSpace(req.RoleID) != "" {
		ids = []string{strings.TrimSpace(req.RoleID)}
	}
	s.addMembers(w, r, req.ConversationID, ids)
}

func (s *Server) handleAddAgents(w http.ResponseWriter, r *http.Request) {
	var req addAgentRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.addMembers(w, r, req.ConversationID, req.RoleIDs)
}

func (s *Server) addMembers(w http.ResponseWriter, r *http.Request, conversationID string, ids []string) {
	events, err := s.engine.AddMembers(r.Context(), conversationID, ids)
	if err != nil {
		s.writeError(w, err)
		return
	}
	members, err := s.engine.Members(r.Context(), conversationID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{ConversationID: conversationID, Members: members, Events: events})
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	reg := s.engine.Registry()
	ids := reg.AllIDs()
	out := make([]roles.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := reg.ByID(id); ok {
			out = append(out, role)
		}
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: out, Recommended: reg.Recommended()})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, errors.NewValidationError("limit must be a non-negative integer").
				WithField("limit").WithValue(raw).WithCause(errors.ErrInvalidInput))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, rolesResponse{Roles: s.engine.Recommend(limit)})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Settings())
}

// handlePutSettings decodes the body over the current settings, so a
// partial update leaves the other fields unchanged.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.engine.Settings()
	if !s.decode(w, r, &settings) {
		return
	}
	stored, err := s.engine.UpdateSettings(settings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.NewValidationError("invalid JSON body").WithCause(errors.Join(errors.ErrInvalidInput, err)))
		return false
	}
	return true
}

// writeError responds with the error's message when it is safe to show;
// other server errors get a generic body and are logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", msg, "retryable", errors.IsRetryable(err))
		if !errors.IsUserFacing(err) {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsValidation(err), errors.Is(err, errors.ErrEmptyMessage), errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.IsNotFound(err), errors.Is(err, errors.ErrConversationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sinceParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError("since must be a non-negative integer").
			WithField("since").WithValue(raw).WithCause(errors.ErrInvalidInput)
	}
	return n, nil
}

func lastID(events []transcript.Event, since int64) int64 {
	if len(events) == 0 {
		return since
	}
	return events[len(events)-1].ID
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
