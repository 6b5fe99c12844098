package engine

import (
	"math/rand"
	"time"
)

// RandomSource picks the start square. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic source for the given seed
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// NewClockSource returns a source seeded from the wall clock
func NewClockSource() RandomSource {
	return NewSeededSource(time.Now().UnixNano())
}

// RandomStart draws a start square, row first and then column
func RandomStart(rng RandomSource, rows, cols int) Position {
	row := rng.Intn(rows)
	col := rng.Intn(cols)
	return Position{Row: row, Col: col}
}
