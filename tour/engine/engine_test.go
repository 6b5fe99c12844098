package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig(rows, cols int) *BoardConfig {
	return &BoardConfig{
		Name:        "small",
		Description: "Synthetic board for engine tests",
		Rows:        rows,
		Cols:        cols,
		Offsets:     DefaultOffsets,
	}
}

// lineConfig moves one square to the right at a time
func lineConfig(cols int) *BoardConfig {
	return &BoardConfig{
		Name:        "line",
		Description: "Single row with a one-step move table",
		Rows:        1,
		Cols:        cols,
		Offsets:     []Offset{{DRow: 0, DCol: 1}},
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngineWithSeed(DefaultBoardConfig(), 42)
	require.NoError(t, err)

	expected := RandomStart(NewSeededSource(42), 8, 8)
	assert.Equal(t, expected, engine.GetPosition())
	assert.Equal(t, Running, engine.Status())
	assert.False(t, engine.IsFinished())

	state := engine.GetState()
	assert.Equal(t, expected, state.Start)
	assert.Equal(t, FirstLabel, state.NextLabel)
	assert.Equal(t, "classic", state.ConfigName)
	require.NotNil(t, state.Seed)
	assert.Equal(t, int64(42), *state.Seed)
	assert.Equal(t, StartLabel, state.Labels[expected.Row][expected.Col])
	assert.Equal(t, 1, engine.GetBoard().VisitedCount())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultBoardConfig()
	config.Name = ""

	_, err := NewEngine(config, NewSeededSource(1))
	assert.Error(t, err)
}

func TestNewEngine_NilSourceUsesClock(t *testing.T) {
	engine, err := NewEngine(DefaultBoardConfig(), nil)
	require.NoError(t, err)

	pos := engine.GetPosition()
	assert.True(t, engine.GetBoard().InBounds(pos.Row, pos.Col))
}

func TestNewEngineAt_OutOfBounds(t *testing.T) {
	_, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 8, Col: 0})
	assert.Error(t, err)

	_, err = NewEngineAt(DefaultBoardConfig(), Position{Row: 0, Col: -1})
	assert.Error(t, err)
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	require.NotNil(t, engine)

	assert.Equal(t, 8, engine.GetBoard().Rows())
	assert.Equal(t, Running, engine.Status())
}

func TestEngine_RunSmallBoardGetsStuck(t *testing.T) {
	engine, err := NewEngineAt(smallConfig(3, 3), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	result := engine.Run()

	assert.Equal(t, Stuck, result.Status)
	assert.Equal(t, 7, result.Moves)
	assert.Equal(t, 8, result.Visited)
	assert.Equal(t, 9, result.Cells)
	assert.Equal(t, Position{Row: 1, Col: 2}, result.End)
	assert.Equal(t, [][]int{
		{-1, 6, 3},
		{4, 0, 8},
		{7, 2, 5},
	}, result.Labels)
	assert.Equal(t, []Position{
		{0, 0}, {2, 1}, {0, 2}, {1, 0}, {2, 2}, {0, 1}, {2, 0}, {1, 2},
	}, result.Path)

	history := engine.GetMoveHistory()
	require.Len(t, history, 7)
	assert.Equal(t, 2, history[0].MoveNumber)
	assert.Equal(t, 2, history[0].Candidates)
	assert.Equal(t, 1, history[0].Accessibility)
	assert.Equal(t, "", history[0].Square)
	assert.Equal(t, 8, engine.GetLastMove().MoveNumber)
}

func TestEngine_StuckIsTerminal(t *testing.T) {
	engine, err := NewEngineAt(smallConfig(3, 3), Position{Row: 0, Col: 0})
	require.NoError(t, err)
	engine.Run()

	before := engine.GetBoard().Labels()
	entry, ok := engine.Step()
	assert.False(t, ok)
	assert.Nil(t, entry)
	assert.Empty(t, engine.BulkStep(5))
	assert.Equal(t, before, engine.GetBoard().Labels())
	assert.True(t, engine.IsFinished())
}

func TestEngine_CentreOfSmallBoardStartsStuck(t *testing.T) {
	engine, err := NewEngineAt(smallConfig(3, 3), Position{Row: 1, Col: 1})
	require.NoError(t, err)

	assert.Equal(t, Stuck, engine.Status())
	result := engine.Run()
	assert.Equal(t, 0, result.Moves)
	assert.Equal(t, 1, result.Visited)
}

func TestEngine_SingleSquareIsComplete(t *testing.T) {
	engine, err := NewEngineAt(smallConfig(1, 1), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	assert.Equal(t, Complete, engine.Status())
	assert.Equal(t, Complete, engine.Run().Status)
}

func TestEngine_LineCompletes(t *testing.T) {
	engine, err := NewEngineAt(lineConfig(4), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	result := engine.Run()
	assert.Equal(t, Complete, result.Status)
	assert.Equal(t, 3, result.Moves)
	assert.Equal(t, [][]int{{-1, 2, 3, 4}}, result.Labels)
	assert.Equal(t, Position{Row: 0, Col: 3}, result.End)
}

func TestEngine_LineGetsStuck(t *testing.T) {
	engine, err := NewEngineAt(lineConfig(4), Position{Row: 0, Col: 1})
	require.NoError(t, err)

	result := engine.Run()
	assert.Equal(t, Stuck, result.Status)
	assert.Equal(t, 2, result.Moves)
	assert.Equal(t, [][]int{{0, -1, 2, 3}}, result.Labels)
}

func TestEngine_FullBoardFromEverySquare(t *testing.T) {
	completes := 0

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			engine, err := NewEngineAt(DefaultBoardConfig(), Position{Row: row, Col: col})
			require.NoError(t, err)

			result := engine.Run()

			require.NoError(t, VerifyTour(result.Labels, DefaultOffsets))
			require.LessOrEqual(t, result.Moves, 63)
			require.Equal(t, result.Moves+1, result.Visited)
			require.Equal(t, result.Visited, engine.GetBoard().VisitedCount())
			require.Len(t, engine.GetMoveHistory(), result.Moves)

			seen := make(map[Position]bool, len(result.Path))
			for _, pos := range result.Path {
				require.False(t, seen[pos], "square (%d,%d) visited twice", pos.Row, pos.Col)
				seen[pos] = true
			}

			if result.Status == Complete {
				completes++
				require.Equal(t, 64, result.Visited)
			} else {
				require.Equal(t, Stuck, result.Status)
				require.Less(t, result.Visited, 64)
			}
		}
	}

	assert.Greater(t, completes, 0)
}

func TestEngine_Reproducible(t *testing.T) {
	for _, seed := range []int64{1, 7, 2024} {
		a, err := NewEngineWithSeed(DefaultBoardConfig(), seed)
		require.NoError(t, err)
		b, err := NewEngineWithSeed(DefaultBoardConfig(), seed)
		require.NoError(t, err)

		for {
			ma, okA := a.Step()
			mb, okB := b.Step()
			require.Equal(t, okA, okB)
			if !okA {
				break
			}
			assert.Equal(t, ma.To, mb.To)
		}
		assert.Equal(t, a.Result().Labels, b.Result().Labels)
	}
}

func TestEngine_BulkStep(t *testing.T) {
	engine, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	moves := engine.BulkStep(5)
	require.Len(t, moves, 5)

	assert.Equal(t, Position{Row: 2, Col: 1}, moves[0].To)
	assert.Equal(t, "b6", moves[0].Square)
	for i, m := range moves {
		assert.Equal(t, FirstLabel+i, m.MoveNumber)
		if i > 0 {
			assert.Equal(t, moves[i-1].To, m.From)
		}
	}
	assert.Equal(t, FirstLabel+5, engine.GetState().NextLabel)
}

func TestEngine_Candidates(t *testing.T) {
	engine, err := NewEngineAt(smallConfig(3, 3), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	candidates := engine.Candidates()
	require.Len(t, candidates, 2)
	assert.True(t, candidates[0].Chosen)

	next, ok := engine.NextMove(0, 0)
	require.True(t, ok)
	assert.Equal(t, candidates[0].Position, next)
	assert.Equal(t, 1, engine.Accessibility(next.Row, next.Col))
}

func TestEngine_Reset(t *testing.T) {
	engine, err := NewEngineWithSeed(DefaultBoardConfig(), 5)
	require.NoError(t, err)
	start := engine.GetPosition()

	engine.BulkStep(10)
	state := engine.Reset()

	assert.Equal(t, start, state.Position)
	assert.Equal(t, start, state.Start)
	assert.Equal(t, FirstLabel, state.NextLabel)
	assert.Equal(t, Running, state.Status)
	assert.Equal(t, 1, engine.GetBoard().VisitedCount())
	assert.Len(t, state.MoveHistory, 10, "cumulative history survives reset")
	assert.Equal(t, 10, state.TotalMoves)
	assert.Empty(t, state.CurrentMoves)
	require.NotNil(t, state.Seed)
	assert.Equal(t, int64(5), *state.Seed)

	engine.BulkStep(3)
	assert.Len(t, engine.GetMoveHistory(), 13)
	assert.Len(t, engine.GetState().CurrentMoves, 3)
}

func TestEngine_SetStateRoundTrip(t *testing.T) {
	original, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 4, Col: 3})
	require.NoError(t, err)
	original.BulkStep(20)

	data, err := json.Marshal(original.GetState())
	require.NoError(t, err)
	var restoredState TourState
	require.NoError(t, json.Unmarshal(data, &restoredState))

	restored, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 0, Col: 0})
	require.NoError(t, err)
	require.NoError(t, restored.SetState(&restoredState))

	assert.Equal(t, original.GetPosition(), restored.GetPosition())
	assert.Equal(t, original.GetBoard().Labels(), restored.GetBoard().Labels())

	// Both continue identically
	assert.Equal(t, original.Run().Labels, restored.Run().Labels)
}

func TestEngine_SetStateErrors(t *testing.T) {
	engine, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 0, Col: 0})
	require.NoError(t, err)

	assert.Error(t, engine.SetState(nil))
	assert.Error(t, engine.SetState(&TourState{Labels: [][]int{{-1}}}))

	ragged := make([][]int, 8)
	for i := range ragged {
		ragged[i] = make([]int, 8)
	}
	ragged[3] = make([]int, 7)
	assert.Error(t, engine.SetState(&TourState{Labels: ragged}))
}

func TestEngine_GetStateIsSnapshot(t *testing.T) {
	engine, err := NewEngineWithSeed(DefaultBoardConfig(), 5)
	require.NoError(t, err)
	engine.BulkStep(2)

	state := engine.GetState()
	labels := engine.GetBoard().Labels()
	engine.BulkStep(3)

	assert.Equal(t, FirstLabel+2, state.NextLabel)
	assert.Len(t, state.MoveHistory, 2)
	assert.Len(t, state.CurrentMoves, 2)
	assert.Equal(t, labels, state.Labels)
	assert.Equal(t, state.MoveHistory[1].To, state.Position)

	// Writing to a snapshot leaves the engine alone
	state.Labels[0][0] = 99
	state.MoveHistory[0].MoveNumber = 99
	*state.Seed = 99
	assert.NotEqual(t, 99, engine.GetBoard().Label(0, 0))
	assert.Equal(t, FirstLabel, engine.GetMoveHistory()[0].MoveNumber)
	assert.Equal(t, int64(5), *engine.GetState().Seed)
}

func TestEngine_SetStateRebuildsStatus(t *testing.T) {
	// A 3x3 tour from the corner gets stuck after eight squares
	original, err := NewEngineAt(smallConfig(3, 3), Position{Row: 0, Col: 0})
	require.NoError(t, err)
	original.Run()
	require.Equal(t, Stuck, original.Status())

	state := original.GetState()
	state.Status = Running

	restored, err := NewEngineAt(smallConfig(3, 3), Position{Row: 1, Col: 1})
	require.NoError(t, err)
	require.NoError(t, restored.SetState(state))

	assert.Equal(t, Stuck, restored.Status())
	_, ok := restored.Step()
	assert.False(t, ok)
}

func TestEngine_SetStateRejectsInconsistentState(t *testing.T) {
	source, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 0, Col: 0})
	require.NoError(t, err)
	source.BulkStep(5)

	tests := []struct {
		name   string
		modify func(s *TourState)
	}{
		{name: "position out of bounds", modify: func(s *TourState) { s.Position = Position{Row: 8, Col: 0} }},
		{name: "start out of bounds", modify: func(s *TourState) { s.Start = Position{Row: 0, Col: -1} }},
		{name: "start square without marker", modify: func(s *TourState) { s.Start = s.Position }},
		{name: "next label ahead of the board", modify: func(s *TourState) { s.NextLabel += 3 }},
		{name: "next label behind the board", modify: func(s *TourState) { s.NextLabel = FirstLabel }},
		{name: "knight off its last square", modify: func(s *TourState) { s.Position = s.MoveHistory[2].To }},
		{name: "unknown status", modify: func(s *TourState) { s.Status = "paused" }},
		{name: "illegal step in labels", modify: func(s *TourState) {
			prev, last := s.MoveHistory[3].To, s.MoveHistory[4].To
			s.Labels[last.Row][last.Col] = Unvisited
			for r := range s.Labels {
				for c := range s.Labels[r] {
					pos := Position{Row: r, Col: c}
					if s.Labels[r][c] == Unvisited && pos != last && !IsKnightStep(DefaultOffsets, prev, pos) {
						s.Labels[r][c] = FirstLabel + 4
						s.Position = pos
						return
					}
				}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := source.GetState()
			tt.modify(state)

			target, err := NewEngineAt(DefaultBoardConfig(), Position{Row: 3, Col: 3})
			require.NoError(t, err)
			before := target.GetState()

			assert.Error(t, target.SetState(state))
			assert.Equal(t, before, target.GetState(), "a rejected state must not replace the tour")
		})
	}
}

func TestBuildResult_PartialBoard(t *testing.T) {
	b := NewBoard(5, 5)
	b.Initialize(0, 0)
	b.MarkVisited(1, 2, 2)
	b.MarkVisited(3, 3, 3)

	result := BuildResult(b, Running)
	assert.Equal(t, Running, result.Status)
	assert.Equal(t, 2, result.Moves)
	assert.Equal(t, []Position{{0, 0}, {1, 2}, {3, 3}}, result.Path)
	assert.Equal(t, Position{Row: 0, Col: 0}, result.Start)
	assert.Equal(t, Position{Row: 3, Col: 3}, result.End)
}
