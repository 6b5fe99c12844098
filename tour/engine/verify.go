package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoStart        = errors.New("tour has no start square")
	ErrMultipleStarts = errors.New("tour has more than one start square")
	ErrBadLabel       = errors.New("tour label out of range")
	ErrRepeatedLabel  = errors.New("tour label used more than once")
	ErrGap            = errors.New("tour labels are not contiguous")
	ErrIllegalStep    = errors.New("tour contains an illegal knight step")
)

// VerifyTour checks that a label grid records a legal path: one start
// square, labels 2..k each used once with no gaps, and every consecutive
// pair of squares one offset apart.
func VerifyTour(labels [][]int, offsets []Offset) error {
	cells := 0
	for _, row := range labels {
		cells += len(row)
	}

	path := make([]*Position, cells+1)
	var start *Position
	highest := 0

	for r, row := range labels {
		for c, label := range row {
			pos := Position{Row: r, Col: c}
			switch {
			case label == Unvisited:
				continue
			case label == StartLabel:
				if start != nil {
					return fmt.Errorf("%w: (%d,%d) and (%d,%d)", ErrMultipleStarts, start.Row, start.Col, r, c)
				}
				start = &pos
			case label < FirstLabel || label > cells:
				return fmt.Errorf("%w: %d at (%d,%d)", ErrBadLabel, label, r, c)
			case path[label] != nil:
				return fmt.Errorf("%w: %d", ErrRepeatedLabel, label)
			default:
				path[label] = &pos
				highest = max(highest, label)
			}
		}
	}

	if start == nil {
		return ErrNoStart
	}

	prev := *start
	for label := FirstLabel; label <= highest; label++ {
		if path[label] == nil {
			return fmt.Errorf("%w: %d missing", ErrGap, label)
		}
		next := *path[label]
		if !IsKnightStep(offsets, prev, next) {
			return fmt.Errorf("%w: move %d (%d,%d)->(%d,%d)", ErrIllegalStep, label, prev.Row, prev.Col, next.Row, next.Col)
		}
		prev = next
	}

	return nil
}
