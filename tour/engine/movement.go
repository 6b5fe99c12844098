package engine

// Accessibility counts how many offsets from (row, col) land on a legal
// square. It never mutates the board; the result is in [0, len(offsets)].
func Accessibility(b *Board, offsets []Offset, row, col int) int {
	count := 0
	for _, off := range offsets {
		if b.IsLegal(row+off.DRow, col+off.DCol) {
			count++
		}
	}
	return count
}

// NextMove applies Warnsdorff's rule from (row, col): among the legal
// destinations, in table order, it keeps the one with the strictly lowest
// accessibility, so earlier offsets win ties. It returns false when no
// destination is legal.
func NextMove(b *Board, offsets []Offset, row, col int) (Position, bool) {
	best := Position{}
	found := false
	minScore := len(offsets) + 1

	for _, off := range offsets {
		r, c := row+off.DRow, col+off.DCol
		if !b.IsLegal(r, c) {
			continue
		}
		if score := Accessibility(b, offsets, r, c); score < minScore {
			minScore = score
			best = Position{Row: r, Col: c}
			found = true
		}
	}

	return best, found
}

// ListCandidates returns every legal destination from (row, col) with its
// accessibility, marking the one NextMove would choose.
func ListCandidates(b *Board, offsets []Offset, row, col int) []Candidate {
	candidates := []Candidate{}
	chosen := -1
	minScore := len(offsets) + 1

	for _, off := range offsets {
		r, c := row+off.DRow, col+off.DCol
		if !b.IsLegal(r, c) {
			continue
		}
		score := Accessibility(b, offsets, r, c)
		if score < minScore {
			minScore = score
			chosen = len(candidates)
		}
		candidates = append(candidates, Candidate{
			Position:      Position{Row: r, Col: c},
			Offset:        off,
			Accessibility: score,
		})
	}

	if chosen >= 0 {
		candidates[chosen].Chosen = true
	}
	return candidates
}

// IsKnightStep reports whether from -> to matches one of the offsets
func IsKnightStep(offsets []Offset, from, to Position) bool {
	for _, off := range offsets {
		if from.Row+off.DRow == to.Row && from.Col+off.DCol == to.Col {
			return true
		}
	}
	return false
}
