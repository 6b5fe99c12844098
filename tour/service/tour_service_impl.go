package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/engine"
)

// tourServiceImpl implements the TourService interface
type tourServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager

	// mu serializes every operation, reads included: looking a session up
	// stamps its access time and engines are not safe for concurrent use.
	mu sync.Mutex
}

// NewTourService creates a new tour service instance
func NewTourService(sessions SessionManager, configs ConfigManager) TourService {
	return &tourServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given display name, used for consistent API responses
func (s *tourServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new tour session
func (s *tourServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configID := opts.ConfigName
	var config *engine.BoardConfig
	if configID != "" {
		var err error
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	if start := opts.Start; start != nil {
		if start.Row < 0 || start.Row >= config.Rows || start.Col < 0 || start.Col >= config.Cols {
			return nil, fmt.Errorf("%w: (%d,%d) is outside the %dx%d board",
				ErrInvalidStart, start.Row, start.Col, config.Rows, config.Cols)
		}
	}

	// Let the session manager generate the ID
	sess, err := s.sessions.Create("", configID, config, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"session": sess.ID,
		"config":  configID,
		"start":   fmt.Sprintf("(%d,%d)", sess.Engine.GetState().Start.Row, sess.Engine.GetState().Start.Col),
	}).Debug("tour session created")

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *tourServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *tourServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *tourServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Step makes a single Warnsdorff move
func (s *tourServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Engine.IsFinished() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrTourFinished, sessionID, sess.Engine.Status())
	}

	entry, ok := sess.Engine.Step()
	state := sess.Engine.GetState()

	result := &StepResult{
		Success:        ok,
		TourState:      state,
		StopReasonCode: stopReasonCode(state.Status),
	}

	if ok {
		result.Move = entry
		result.Events = s.extractStepEvents(sess, *entry)
		result.Message = fmt.Sprintf("Knight moved to %s", squareLabel(entry.To, sess.Config))
	} else {
		result.Message = "No legal move from " + squareLabel(state.Position, sess.Config)
	}
	if msg := finishMessage(sess); msg != "" {
		result.Message = msg
	}

	s.autoSave(sessionID, "step")

	return result, nil
}

// BulkStep makes up to n moves, stopping early when the tour finishes
func (s *tourServiceImpl) BulkStep(ctx context.Context, sessionID string, n int, reset bool) (*BulkStepResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of steps must be positive, got %d", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkStepResult{
		RequestedMoves: n,
		Events:         make([]TourEvent, 0),
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, TourEvent{
			Type:      EventReset,
			Message:   "Tour reset to its start square",
			Timestamp: time.Now(),
		})
	}

	// Limit steps to prevent abuse
	if n > engine.MaxBulkSteps {
		result.Truncated = true
		result.Limit = engine.MaxBulkSteps
		n = engine.MaxBulkSteps
	}

	result.StartPos = sess.Engine.GetPosition()
	result.VisitedStart = sess.Engine.GetBoard().VisitedCount()

	for i := 0; i < n; i++ {
		if sess.Engine.IsFinished() {
			result.StoppedOnMove = i + 1
			break
		}

		entry, ok := sess.Engine.Step()
		if !ok {
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, *entry)
		result.Events = append(result.Events, s.extractStepEvents(sess, *entry)...)
	}

	state := sess.Engine.GetState()
	result.TourState = state
	result.Success = result.MovesExecuted > 0
	result.StopReasonCode = stopReasonCode(state.Status)
	result.StoppedReason = finishMessage(sess)
	result.EndPos = state.Position
	result.VisitedEnd = sess.Engine.GetBoard().VisitedCount()
	result.Finished = sess.Engine.IsFinished()
	if !result.Finished {
		result.Candidates = sess.Engine.Candidates()
	}

	s.autoSave(sessionID, "bulk step")

	return result, nil
}

// Run steps the tour until it is complete or stuck
func (s *tourServiceImpl) Run(ctx context.Context, sessionID string) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := len(sess.Engine.GetMoveHistory())
	tour := sess.Engine.Run()
	executed := len(sess.Engine.GetMoveHistory()) - before

	logrus.WithFields(logrus.Fields{
		"session": sessionID,
		"moves":   executed,
		"visited": tour.Visited,
		"cells":   tour.Cells,
		"status":  tour.Status,
	}).Debug("tour run finished")

	s.autoSave(sessionID, "run")

	return &RunResult{
		MovesExecuted:  executed,
		StopReasonCode: stopReasonCode(tour.Status),
		Result:         tour,
		Board:          engine.RenderBoard(sess.Engine.GetBoard(), tour.Status),
	}, nil
}

// Reset restarts a tour from its start square
func (s *tourServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.TourState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()

	s.autoSave(sessionID, "reset")

	return state, nil
}

// GetTourState retrieves the current tour state
func (s *tourServiceImpl) GetTourState(ctx context.Context, sessionID string) (*engine.TourState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *tourServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetCandidates lists the squares reachable from the knight with their scores
func (s *tourServiceImpl) GetCandidates(ctx context.Context, sessionID string) (*CandidatesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &CandidatesResponse{
		Position:   sess.Engine.GetPosition(),
		Status:     sess.Engine.Status(),
		Candidates: sess.Engine.Candidates(),
	}, nil
}

// Render draws the session's board as text
func (s *tourServiceImpl) Render(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return "", err
	}

	return engine.RenderBoard(sess.Engine.GetBoard(), sess.Engine.Status()), nil
}

// ListConfigs returns available board configurations
func (s *tourServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *tourServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *tourServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *tourServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		logrus.WithField("session", sessionID).WithError(err).Debug("failed to update last access time")
	}
	return sess, nil
}

func (s *tourServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		TourState:      sess.Engine.GetState(),
		BoardConfig:    sess.Config,
	}
}

// autoSave persists a session; failures are logged and never fail the call
func (s *tourServiceImpl) autoSave(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logrus.WithFields(logrus.Fields{
			"session": sessionID,
			"op":      op,
		}).WithError(err).Warn("failed to persist session")
	}
}

// extractStepEvents generates events from a single move
func (s *tourServiceImpl) extractStepEvents(sess *Session, entry engine.MoveHistoryEntry) []TourEvent {
	now := time.Now()
	events := []TourEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Move %d to %s", entry.MoveNumber, squareLabel(entry.To, sess.Config)),
		Timestamp: now,
		Position:  entry.To,
	}}

	switch sess.Engine.Status() {
	case engine.Complete:
		events = append(events, TourEvent{
			Type:      EventComplete,
			Message:   finishMessage(sess),
			Timestamp: now,
			Position:  entry.To,
		})
	case engine.Stuck:
		events = append(events, TourEvent{
			Type:      EventStuck,
			Message:   finishMessage(sess),
			Timestamp: now,
			Position:  entry.To,
		})
	}

	return events
}

func stopReasonCode(status engine.Status) string {
	switch status {
	case engine.Complete:
		return string(engine.Complete)
	case engine.Stuck:
		return string(engine.Stuck)
	default:
		return ""
	}
}

func finishMessage(sess *Session) string {
	board := sess.Engine.GetBoard()
	switch sess.Engine.Status() {
	case engine.Complete:
		return fmt.Sprintf("Tour complete: all %d squares visited", board.Cells())
	case engine.Stuck:
		return fmt.Sprintf("Knight stuck at %s after visiting %d of %d squares",
			squareLabel(board.Position(), sess.Config), board.VisitedCount(), board.Cells())
	default:
		return ""
	}
}

// squareLabel names a square in algebraic notation where the board allows it
func squareLabel(pos engine.Position, config *engine.BoardConfig) string {
	if name := engine.SquareName(pos, config.Rows, config.Cols); name != "" {
		return name
	}
	return fmt.Sprintf("(%d,%d)", pos.Row, pos.Col)
}
