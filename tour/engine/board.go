package engine

// Board holds visitation labels and the knight's current position.
// The zero value is not usable; create boards with NewBoard.
type Board struct {
	labels [][]int
	pos    Position
}

// NewBoard creates an empty rows x cols board
func NewBoard(rows, cols int) *Board {
	labels := make([][]int, rows)
	for i := range labels {
		labels[i] = make([]int, cols)
	}
	return &Board{labels: labels}
}

// BoardFromLabels rebuilds a board from a label grid and a current position
func BoardFromLabels(labels [][]int, pos Position) *Board {
	return &Board{labels: copyLabels(labels), pos: pos}
}

// Rows returns the number of rows
func (b *Board) Rows() int {
	return len(b.labels)
}

// Cols returns the number of columns
func (b *Board) Cols() int {
	if len(b.labels) == 0 {
		return 0
	}
	return len(b.labels[0])
}

// Cells returns the total number of squares
func (b *Board) Cells() int {
	return b.Rows() * b.Cols()
}

// InBounds reports whether (row, col) lies on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Rows() && col >= 0 && col < b.Cols()
}

// IsLegal reports whether the knight may land on (row, col): the square
// must be on the board and unvisited. The start square counts as visited.
func (b *Board) IsLegal(row, col int) bool {
	return b.InBounds(row, col) && b.labels[row][col] == Unvisited
}

// MarkVisited labels a square and moves the knight onto it. The caller
// guarantees the square was legal and the label is the next in sequence.
func (b *Board) MarkVisited(row, col, label int) {
	b.labels[row][col] = label
	b.pos = Position{Row: row, Col: col}
}

// Initialize places the knight on its start square. It must be called
// exactly once on an empty board.
func (b *Board) Initialize(row, col int) {
	b.MarkVisited(row, col, StartLabel)
}

// Label returns the label at (row, col)
func (b *Board) Label(row, col int) int {
	return b.labels[row][col]
}

// Position returns the knight's current position
func (b *Board) Position() Position {
	return b.pos
}

// VisitedCount counts the nonzero squares
func (b *Board) VisitedCount() int {
	count := 0
	for _, row := range b.labels {
		for _, label := range row {
			if label != Unvisited {
				count++
			}
		}
	}
	return count
}

// Labels returns a copy of the label grid
func (b *Board) Labels() [][]int {
	return copyLabels(b.labels)
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	return BoardFromLabels(b.labels, b.pos)
}

func copyLabels(labels [][]int) [][]int {
	out := make([][]int, len(labels))
	for i, row := range labels {
		out[i] = append([]int(nil), row...)
	}
	return out
}
