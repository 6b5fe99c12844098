// Package engine provides the core tour logic for the knight's tour solver.
//
// The engine package implements the tour mechanics including:
//   - Board labelling and legality checks
//   - Warnsdorff accessibility scoring and move selection
//   - Tour state management and persistence
//   - Configuration loading and validation (JSON or YAML)
//   - Text rendering and tour verification
//
// Core Types:
//
// The Engine interface defines the main contract for tour operations,
// implemented by TourEngine. TourState represents the current tour state,
// while BoardConfig defines board dimensions and the move table.
//
// Usage:
//
//	config := engine.DefaultBoardConfig()
//
//	tourEngine, err := engine.NewEngineWithSeed(config, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := tourEngine.Run()
//	fmt.Print(engine.RenderBoard(tourEngine.GetBoard(), result.Status))
//
// Tour Rules:
//
// The knight starts on a random square labelled -1 and repeatedly moves to
// the unvisited square with the fewest onward moves, taking the first such
// square in move-table order on ties. Each square it lands on is labelled
// with the next move number starting at 2. The tour is complete once every
// square is labelled, or stuck when the knight has no unvisited square to
// move to.
package engine
