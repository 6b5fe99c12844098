package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for tour operations
type Engine interface {
	// Tour state management
	GetState() *TourState
	SetState(state *TourState) error
	Reset() *TourState
	Status() Status
	IsFinished() bool
	GetPosition() Position
	GetBoard() *Board

	// Heuristic
	Accessibility(row, col int) int
	NextMove(row, col int) (Position, bool)
	Candidates() []Candidate

	// Movement operations
	Step() (*MoveHistoryEntry, bool)
	BulkStep(n int) []MoveHistoryEntry
	Run() *TourResult
	Result() *TourResult

	// Configuration
	GetConfig() *BoardConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// TourEngine implements the Engine interface. It owns one board; callers
// that share an engine across goroutines must serialize access.
type TourEngine struct {
	config *BoardConfig
	board  *Board
	state  *TourState
}

// NewEngine creates a tour engine whose start square is drawn from rng
func NewEngine(config *BoardConfig, rng RandomSource) (*TourEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewClockSource()
	}
	return newEngine(config, RandomStart(rng, config.Rows, config.Cols)), nil
}

// NewEngineWithSeed creates a tour engine with a reproducible start square
func NewEngineWithSeed(config *BoardConfig, seed int64) (*TourEngine, error) {
	e, err := NewEngine(config, NewSeededSource(seed))
	if err != nil {
		return nil, err
	}
	e.state.Seed = &seed
	return e, nil
}

// NewEngineAt creates a tour engine starting on an explicit square
func NewEngineAt(config *BoardConfig, start Position) (*TourEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	if start.Row < 0 || start.Row >= config.Rows || start.Col < 0 || start.Col >= config.Cols {
		return nil, fmt.Errorf("start square (%d,%d) is outside the %dx%d board",
			start.Row, start.Col, config.Rows, config.Cols)
	}
	return newEngine(config, start), nil
}

// NewEngineWithDefaults creates an engine on the classic board with a clock-seeded start
func NewEngineWithDefaults() *TourEngine {
	config := DefaultBoardConfig()
	return newEngine(config, RandomStart(NewClockSource(), config.Rows, config.Cols))
}

func newEngine(config *BoardConfig, start Position) *TourEngine {
	e := &TourEngine{config: config}
	e.board, e.state = initTour(config, start)
	return e
}

// initTour builds a fresh board with the knight on start
func initTour(config *BoardConfig, start Position) (*Board, *TourState) {
	board := NewBoard(config.Rows, config.Cols)
	board.Initialize(start.Row, start.Col)

	state := &TourState{
		Position:     start,
		Start:        start,
		Status:       Running,
		NextLabel:    FirstLabel,
		ConfigName:   config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	updateStatus(board, config.Offsets, state)
	return board, state
}

// updateStatus moves a running tour to Complete or Stuck once no further
// move can be made
func updateStatus(board *Board, offsets []Offset, state *TourState) {
	if state.Status != Running {
		return
	}
	if state.NextLabel > board.Cells() {
		state.Status = Complete
		return
	}
	pos := board.Position()
	if Accessibility(board, offsets, pos.Row, pos.Col) == 0 {
		state.Status = Stuck
	}
}

// GetState returns a snapshot of the tour state. The snapshot shares
// nothing with the engine, so later moves never change it.
func (e *TourEngine) GetState() *TourState {
	snapshot := *e.state
	snapshot.Labels = e.board.Labels()
	snapshot.Position = e.board.Position()
	snapshot.MoveHistory = append([]MoveHistoryEntry{}, e.state.MoveHistory...)
	snapshot.CurrentMoves = append([]MoveHistoryEntry{}, e.state.CurrentMoves...)
	if e.state.Seed != nil {
		seed := *e.state.Seed
		snapshot.Seed = &seed
	}
	return &snapshot
}

// SetState replaces the tour state (used for persistence loading). The
// labels must describe a tour in progress on this engine's board: the start
// sentinel on Start, labels 2..k each placed once with the knight on k, and
// NextLabel equal to k+1. Status is derived from the labels.
func (e *TourEngine) SetState(state *TourState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Labels) != e.config.Rows {
		return fmt.Errorf("state has %d rows, config %q expects %d", len(state.Labels), e.config.Name, e.config.Rows)
	}
	for i, row := range state.Labels {
		if len(row) != e.config.Cols {
			return fmt.Errorf("state row %d has %d columns, config %q expects %d", i, len(row), e.config.Name, e.config.Cols)
		}
	}
	switch state.Status {
	case Running, Complete, Stuck:
	default:
		return fmt.Errorf("state has unknown status %q", state.Status)
	}

	board := BoardFromLabels(state.Labels, state.Position)
	for _, pos := range []Position{state.Start, state.Position} {
		if !board.InBounds(pos.Row, pos.Col) {
			return fmt.Errorf("square (%d,%d) is outside the %dx%d board", pos.Row, pos.Col, e.config.Rows, e.config.Cols)
		}
	}
	if board.Label(state.Start.Row, state.Start.Col) != StartLabel {
		return fmt.Errorf("start square (%d,%d) does not hold the start marker", state.Start.Row, state.Start.Col)
	}
	if err := VerifyTour(state.Labels, e.config.Offsets); err != nil {
		return fmt.Errorf("state labels: %w", err)
	}
	if visited := board.VisitedCount(); state.NextLabel != visited+1 {
		return fmt.Errorf("state next label %d does not follow %d visited squares", state.NextLabel, visited)
	}
	current := board.Label(state.Position.Row, state.Position.Col)
	if state.NextLabel == FirstLabel {
		if state.Position != state.Start {
			return fmt.Errorf("knight at (%d,%d) but no move was made from the start square", state.Position.Row, state.Position.Col)
		}
	} else if current != state.NextLabel-1 {
		return fmt.Errorf("knight at (%d,%d) is not on the last label %d", state.Position.Row, state.Position.Col, state.NextLabel-1)
	}

	restored := *state
	restored.Labels = nil
	restored.MoveHistory = append([]MoveHistoryEntry{}, state.MoveHistory...)
	restored.CurrentMoves = append([]MoveHistoryEntry{}, state.CurrentMoves...)
	restored.Status = Running
	updateStatus(board, e.config.Offsets, &restored)

	e.board = board
	e.state = &restored
	return nil
}

// Reset restarts the tour from the same start square. Cumulative history
// and totals are preserved; only the current segment is cleared.
func (e *TourEngine) Reset() *TourState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves
	seed := e.state.Seed

	e.board, e.state = initTour(e.config, e.state.Start)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.Seed = seed

	return e.GetState()
}

// Status returns the tour status
func (e *TourEngine) Status() Status {
	return e.state.Status
}

// IsFinished reports whether the tour is complete or stuck
func (e *TourEngine) IsFinished() bool {
	return e.state.Status != Running
}

// GetPosition returns the knight's current position
func (e *TourEngine) GetPosition() Position {
	return e.board.Position()
}

// GetBoard returns the live board
func (e *TourEngine) GetBoard() *Board {
	return e.board
}

// Accessibility scores (row, col) against the current board
func (e *TourEngine) Accessibility(row, col int) int {
	return Accessibility(e.board, e.config.Offsets, row, col)
}

// NextMove returns the square Warnsdorff's rule picks from (row, col)
func (e *TourEngine) NextMove(row, col int) (Position, bool) {
	return NextMove(e.board, e.config.Offsets, row, col)
}

// Candidates lists the legal moves from the knight's position
func (e *TourEngine) Candidates() []Candidate {
	pos := e.board.Position()
	return ListCandidates(e.board, e.config.Offsets, pos.Row, pos.Col)
}

// Step makes one move. It returns false, and makes no move, once the tour
// is complete or stuck.
func (e *TourEngine) Step() (*MoveHistoryEntry, bool) {
	if e.state.Status != Running {
		return nil, false
	}

	from := e.board.Position()
	next, ok := e.NextMove(from.Row, from.Col)
	if !ok {
		e.state.Status = Stuck
		return nil, false
	}

	entry := MoveHistoryEntry{
		MoveNumber:    e.state.NextLabel,
		From:          from,
		To:            next,
		Square:        SquareName(next, e.config.Rows, e.config.Cols),
		Accessibility: e.Accessibility(next.Row, next.Col),
		Candidates:    e.Accessibility(from.Row, from.Col),
		Timestamp:     time.Now().Unix(),
	}

	e.board.MarkVisited(next.Row, next.Col, e.state.NextLabel)
	e.state.NextLabel++
	e.state.Position = next
	e.addMoveToHistory(entry)
	updateStatus(e.board, e.config.Offsets, e.state)

	return &entry, true
}

// BulkStep makes up to n moves, stopping early when the tour finishes
func (e *TourEngine) BulkStep(n int) []MoveHistoryEntry {
	moves := make([]MoveHistoryEntry, 0, max(n, 0))
	for i := 0; i < n; i++ {
		entry, ok := e.Step()
		if !ok {
			break
		}
		moves = append(moves, *entry)
	}
	return moves
}

// Run steps until the tour is complete or stuck
func (e *TourEngine) Run() *TourResult {
	for {
		if _, ok := e.Step(); !ok {
			break
		}
	}
	return e.Result()
}

// Result summarizes the tour as it stands
func (e *TourEngine) Result() *TourResult {
	return BuildResult(e.board, e.state.Status)
}

// GetConfig returns the board configuration
func (e *TourEngine) GetConfig() *BoardConfig {
	return e.config
}

// GetMoveHistory returns a copy of the cumulative move history
func (e *TourEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry{}, e.state.MoveHistory...)
}

// GetLastMove returns the last move made, or nil if no moves
func (e *TourEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	last := e.state.MoveHistory[len(e.state.MoveHistory)-1]
	return &last
}

func (e *TourEngine) addMoveToHistory(entry MoveHistoryEntry) {
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
}

// BuildResult reconstructs the path from a board's labels
func BuildResult(b *Board, status Status) *TourResult {
	path := make([]Position, b.Cells())
	visited := 0
	var start Position

	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			switch label := b.Label(r, c); {
			case label == StartLabel:
				start = Position{Row: r, Col: c}
				path[0] = start
				visited++
			case label >= FirstLabel && label <= b.Cells():
				path[label-1] = Position{Row: r, Col: c}
				visited++
			}
		}
	}

	return &TourResult{
		Status:  status,
		Moves:   max(visited-1, 0),
		Visited: visited,
		Cells:   b.Cells(),
		Start:   start,
		End:     b.Position(),
		Path:    path[:visited],
		Labels:  b.Labels(),
	}
}
