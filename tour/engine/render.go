package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

const (
	startMarker = "S♞"
	endMarker   = "E♞"
	emptyMarker = "."
)

// RenderBoard draws the board as text: column letters across the top, row
// numbers down the side, the start square as S♞, the last square of a
// complete tour as E♞, visit order elsewhere and '.' for unvisited squares.
func RenderBoard(b *Board, status Status) string {
	digits := labelDigits(b.Cells())
	width := digits + 2
	end := b.Position()

	var sb strings.Builder
	sb.WriteString("  ")
	for c := 0; c < b.Cols(); c++ {
		fmt.Fprintf(&sb, "%*c", width, 'a'+c)
	}
	sb.WriteString("\n")

	for r := 0; r < b.Rows(); r++ {
		fmt.Fprintf(&sb, "\n%2d", r)
		for c := 0; c < b.Cols(); c++ {
			label := b.Label(r, c)
			switch {
			case label == StartLabel:
				fmt.Fprintf(&sb, "%*s", width, startMarker)
			case label == Unvisited:
				fmt.Fprintf(&sb, "%*s", width, emptyMarker)
			case status == Complete && r == end.Row && c == end.Col:
				fmt.Fprintf(&sb, "%*s", width, endMarker)
			default:
				fmt.Fprintf(&sb, "%*.*d", width, digits, label)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Render draws a tour state
func Render(state *TourState) string {
	return RenderBoard(BoardFromLabels(state.Labels, state.Position), state.Status)
}

// SquareName returns the algebraic name of a square on a standard 8x8
// board, with row 0 as the eighth rank. Other board sizes have no name.
func SquareName(pos Position, rows, cols int) string {
	if rows != DefaultBoardSize || cols != DefaultBoardSize {
		return ""
	}
	if pos.Row < 0 || pos.Row >= rows || pos.Col < 0 || pos.Col >= cols {
		return ""
	}
	return chess.NewSquare(chess.File(pos.Col), chess.Rank(rows-1-pos.Row)).String()
}

// ColumnName returns the header letter of a column
func ColumnName(col int) string {
	return string(rune('a' + col))
}

// labelDigits is the zero-padded width of a label, at least two digits
func labelDigits(cells int) int {
	return max(2, len(strconv.Itoa(cells)))
}
