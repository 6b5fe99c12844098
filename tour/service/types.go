package service

import (
	"time"

	"github.com/wricardo/knights-tour/tour/engine"
)

// Event types emitted by tour operations
const (
	EventMove     = "move"
	EventComplete = "complete"
	EventStuck    = "stuck"
	EventReset    = "reset"
)

// CreateOptions selects the board and start square for a new tour. Start
// wins over Seed; with neither the start square is drawn from the clock.
type CreateOptions struct {
	ConfigName string           `json:"config_name,omitempty"`
	Seed       *int64           `json:"seed,omitempty"`
	Start      *engine.Position `json:"start,omitempty"`
}

// SessionInfo provides information about a tour session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	TourState      *engine.TourState   `json:"tour_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// StepResult contains the result of a single step
type StepResult struct {
	Success        bool                     `json:"success"`
	TourState      *engine.TourState        `json:"tour_state"`
	Move           *engine.MoveHistoryEntry `json:"move,omitempty"`
	Message        string                   `json:"message"`
	Events         []TourEvent              `json:"events,omitempty"`
	StopReasonCode string                   `json:"stop_reason_code,omitempty"` // complete|stuck
}

// BulkStepResult contains the result of several steps
type BulkStepResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	TourState      *engine.TourState `json:"tour_state"`
	Events         []TourEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // complete|stuck
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index within this call
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos     engine.Position `json:"start_pos"`
	EndPos       engine.Position `json:"end_pos"`
	VisitedStart int             `json:"visited_start"`
	VisitedEnd   int             `json:"visited_end"`

	// Per-step trace (only for this call)
	Steps []engine.MoveHistoryEntry `json:"steps,omitempty"`

	// Final status aids
	Finished   bool               `json:"finished"`
	Candidates []engine.Candidate `json:"candidates,omitempty"`
}

// RunResult contains a tour driven to completion or to a dead end
type RunResult struct {
	MovesExecuted  int                `json:"moves_executed"`
	StopReasonCode string             `json:"stop_reason_code"`
	Result         *engine.TourResult `json:"result"`
	Board          string             `json:"board"`
}

// TourEvent represents something that happened while stepping a tour
type TourEvent struct {
	Type      string          `json:"type"` // "move", "complete", "stuck", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// CandidatesResponse lists the squares the knight may move to next
type CandidatesResponse struct {
	Position   engine.Position    `json:"position"`
	Status     engine.Status      `json:"status"`
	Candidates []engine.Candidate `json:"candidates"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Offsets     int    `json:"offsets"`
}
