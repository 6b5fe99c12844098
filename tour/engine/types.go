package engine

// Status represents the lifecycle stage of a tour
type Status string

const (
	Running  Status = "running"
	Complete Status = "complete"
	Stuck    Status = "stuck"

	// Board labels
	Unvisited  = 0
	StartLabel = -1
	FirstLabel = 2

	// Validation constants
	DefaultBoardSize    = 8
	MinBoardSize        = 1
	MaxBoardSize        = 26
	MaxOffsets          = 16
	MaxBulkSteps        = 1000
	WebSocketBufferSize = 256
)

// Position represents row,col coordinates on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Offset is a knight-move delta applied to a Position
type Offset struct {
	DRow int `json:"dr" yaml:"dr"`
	DCol int `json:"dc" yaml:"dc"`
}

// DefaultOffsets is the classic knight-move table. Its order decides
// tie-breaks and must not change.
var DefaultOffsets = []Offset{
	{-2, -1},
	{2, -1},
	{-1, -2},
	{1, -2},
	{-2, 1},
	{2, 1},
	{-1, 2},
	{1, 2},
}

// BoardConfig describes board dimensions and the move table, loaded from JSON or YAML
type BoardConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Rows        int      `json:"rows" yaml:"rows"`
	Cols        int      `json:"cols" yaml:"cols"`
	Offsets     []Offset `json:"offsets" yaml:"offsets"`
}

// Candidate is a legal destination from the current position together with its score
type Candidate struct {
	Position      Position `json:"position"`
	Offset        Offset   `json:"offset"`
	Accessibility int      `json:"accessibility"`
	Chosen        bool     `json:"chosen,omitempty"`
}

// MoveHistoryEntry represents a single move in the tour history
type MoveHistoryEntry struct {
	MoveNumber    int      `json:"move_number"`
	From          Position `json:"from"`
	To            Position `json:"to"`
	Square        string   `json:"square,omitempty"`
	Accessibility int      `json:"accessibility"`
	Candidates    int      `json:"candidates"`
	Timestamp     int64    `json:"timestamp"`
}

// TourState represents the complete, serializable state of a tour
type TourState struct {
	Labels     [][]int  `json:"labels"`
	Position   Position `json:"position"`
	Start      Position `json:"start"`
	Status     Status   `json:"status"`
	NextLabel  int      `json:"next_label"`
	ConfigName string   `json:"config_name"`
	Seed       *int64   `json:"seed,omitempty"`

	// MoveHistory is cumulative across resets; CurrentMoves only covers
	// the moves since the last reset.
	MoveHistory  []MoveHistoryEntry `json:"move_history"`
	TotalMoves   int                `json:"total_moves"`
	CurrentMoves []MoveHistoryEntry `json:"current_moves"`
}

// TourResult summarizes a finished (or halted) tour
type TourResult struct {
	Status  Status     `json:"status"`
	Moves   int        `json:"moves"`
	Visited int        `json:"visited"`
	Cells   int        `json:"cells"`
	Start   Position   `json:"start"`
	End     Position   `json:"end"`
	Path    []Position `json:"path"`
	Labels  [][]int    `json:"labels"`
}
