package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/engine"
	"github.com/wricardo/knights-tour/tour/service"
	"github.com/wricardo/knights-tour/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.TourService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case no
// websocket updates are published.
func NewServer(tourService service.TourService, hub *websocket.Hub) *Server {
	s := &Server{
		service: tourService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Tour sessions
	api.HandleFunc("/tours", s.handleCreateTour).Methods("POST")
	api.HandleFunc("/tours", s.handleListTours).Methods("GET")
	api.HandleFunc("/tours/{id}", s.handleGetTour).Methods("GET")
	api.HandleFunc("/tours/{id}", s.handleDeleteTour).Methods("DELETE")

	// Tour operations
	api.HandleFunc("/tours/{id}/state", s.handleGetTourState).Methods("GET")
	api.HandleFunc("/tours/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/tours/{id}/candidates", s.handleGetCandidates).Methods("GET")
	api.HandleFunc("/tours/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/tours/{id}/bulk-step", s.handleBulkStep).Methods("POST")
	api.HandleFunc("/tours/{id}/run", s.handleRun).Methods("POST")
	api.HandleFunc("/tours/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/tours/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can mount extra handlers
func (s *Server) Router() *mux.Router {
	return s.router
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Debug("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinel errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTourFinished), errors.Is(err, service.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidConfig), errors.Is(err, service.ErrInvalidStart):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeOptionalBody decodes a JSON body when one is present
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Tour Session Handlers

type createTourRequest struct {
	ConfigID   string           `json:"config_id,omitempty"`
	ConfigName string           `json:"config_name,omitempty"`
	Seed       *int64           `json:"seed,omitempty"`
	Start      *engine.Position `json:"start,omitempty"`
}

func (s *Server) handleCreateTour(w http.ResponseWriter, r *http.Request) {
	var req createTourRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), service.CreateOptions{
		ConfigName: configID,
		Seed:       req.Seed,
		Start:      req.Start,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"session_id": info.ID,
		"config":     info.ConfigName,
	}).Info("tour created")

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	if status := query.Get("status"); status != "" {
		filtered := make([]*service.SessionInfo, 0, len(sessions))
		for _, info := range sessions {
			if info.TourState != nil && string(info.TourState.Status) == status {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteTour(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Tour %s deleted", sessionID),
	})
}

// Tour Operation Handlers

func (s *Server) handleGetTourState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetTourState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.Render(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, board)
}

func (s *Server) handleGetCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.service.GetCandidates(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Step(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, result.TourState, result.Events)

	fields := logrus.Fields{
		"session_id": sessionID,
		"status":     result.TourState.Status,
	}
	if result.Move != nil {
		fields["from"] = result.Move.From
		fields["to"] = result.Move.To
		fields["move"] = result.Move.MoveNumber
	}
	logrus.WithFields(fields).Debug("step")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulkStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		N     int  `json:"n"`
		Reset bool `json:"reset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.N <= 0 {
		respondError(w, http.StatusBadRequest, "n must be a positive number of steps")
		return
	}

	result, err := s.service.BulkStep(r.Context(), sessionID, req.N, req.Reset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publish(sessionID, result.TourState, result.Events)

	logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"executed":   result.MovesExecuted,
		"requested":  result.RequestedMoves,
		"stop":       result.StopReasonCode,
		"end":        result.EndPos,
		"visited":    result.VisitedEnd,
	}).Debug("bulk step")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Run(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		if state, err := s.service.GetTourState(r.Context(), sessionID); err == nil {
			s.hub.BroadcastToSession(sessionID, state)
		}
		if result.MovesExecuted > 0 {
			s.hub.BroadcastEvent(sessionID, result.StopReasonCode, result.Result)
		}
	}

	logrus.WithFields(logrus.Fields{
		"session_id": sessionID,
		"executed":   result.MovesExecuted,
		"stop":       result.StopReasonCode,
		"visited":    result.Result.Visited,
		"cells":      result.Result.Cells,
	}).Info("tour run")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
		s.hub.BroadcastEvent(sessionID, service.EventReset, state.Start)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Tour reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// publish pushes the new state and the finishing event, if any, to
// websocket clients watching the session
func (s *Server) publish(sessionID string, state *engine.TourState, events []service.TourEvent) {
	if s.hub == nil {
		return
	}

	s.hub.BroadcastToSession(sessionID, state)
	for _, event := range events {
		if event.Type == service.EventComplete || event.Type == service.EventStuck {
			s.hub.BroadcastEvent(sessionID, event.Type, event)
		}
	}
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var boardConfig engine.BoardConfig

	if err := json.NewDecoder(r.Body).Decode(&boardConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if boardConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	if strings.ContainsAny(boardConfig.Name, `/\`) {
		respondError(w, http.StatusBadRequest, "Config name must not contain path separators")
		return
	}

	if err := s.service.SaveConfig(r.Context(), boardConfig.Name, &boardConfig); err != nil {
		status := statusForError(err)
		respondError(w, status, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": boardConfig.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
