// Command analyze runs a Warnsdorff tour from every square of every board
// configuration in a directory (configs by default, or the directory given
// as the only argument). Each finished tour is checked with VerifyTour, and
// the report shows how many starts complete, how many get stuck, and the
// shortest stuck run.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/config"
	"github.com/wricardo/knights-tour/tour/engine"
	"golang.org/x/sync/errgroup"
)

// StuckRun records where a tour got stuck and how far it got
type StuckRun struct {
	Start   engine.Position
	End     engine.Position
	Visited int
}

// Analysis summarizes the tours of one board configuration
type Analysis struct {
	ConfigID string
	Name     string
	Rows     int
	Cols     int
	Starts   int
	Complete int
	Stuck    int

	// Shortest is nil when every start completes
	Shortest *StuckRun
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open config directory")
	}

	results, err := analyzeAll(context.Background(), manager)
	if err != nil {
		logrus.WithError(err).Fatal("analysis failed")
	}

	for _, a := range results {
		printAnalysis(a)
	}
}

// analyzeAll analyzes every listed configuration concurrently. Results keep
// the order of ListConfigs.
func analyzeAll(ctx context.Context, manager *config.Manager) ([]*Analysis, error) {
	infos, err := manager.ListConfigs()
	if err != nil {
		return nil, err
	}

	results := make([]*Analysis, len(infos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, info := range infos {
		g.Go(func() error {
			boardConfig, err := manager.LoadConfig(info.ConfigID)
			if err != nil {
				return fmt.Errorf("config %s: %w", info.ConfigID, err)
			}

			analysis, err := analyzeConfig(ctx, boardConfig)
			if err != nil {
				return fmt.Errorf("config %s: %w", info.ConfigID, err)
			}
			analysis.ConfigID = info.ConfigID
			results[i] = analysis
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeConfig runs one tour per start square
func analyzeConfig(ctx context.Context, boardConfig *engine.BoardConfig) (*Analysis, error) {
	analysis := &Analysis{
		ConfigID: boardConfig.Name,
		Name:     boardConfig.Name,
		Rows:     boardConfig.Rows,
		Cols:     boardConfig.Cols,
	}

	for r := 0; r < boardConfig.Rows; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for c := 0; c < boardConfig.Cols; c++ {
			start := engine.Position{Row: r, Col: c}

			tourEngine, err := engine.NewEngineAt(boardConfig, start)
			if err != nil {
				return nil, err
			}

			result := tourEngine.Run()
			if err := engine.VerifyTour(result.Labels, boardConfig.Offsets); err != nil {
				return nil, fmt.Errorf("tour from (%d,%d) failed verification: %w", r, c, err)
			}

			analysis.Starts++
			switch result.Status {
			case engine.Complete:
				analysis.Complete++
			case engine.Stuck:
				analysis.Stuck++
				if analysis.Shortest == nil || result.Visited < analysis.Shortest.Visited {
					analysis.Shortest = &StuckRun{Start: start, End: result.End, Visited: result.Visited}
				}
			default:
				return nil, fmt.Errorf("tour from (%d,%d) ended in status %s", r, c, result.Status)
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"config":   boardConfig.Name,
		"complete": analysis.Complete,
		"stuck":    analysis.Stuck,
	}).Debug("config analyzed")

	return analysis, nil
}

func printAnalysis(a *Analysis) {
	cells := a.Rows * a.Cols

	fmt.Printf("\n=== Analyzing %s ===\n", a.ConfigID)
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Board: %d x %d (%d squares)\n", a.Rows, a.Cols, cells)
	fmt.Printf("Starts: %d\n", a.Starts)
	fmt.Printf("Complete: %d\n", a.Complete)
	fmt.Printf("Stuck: %d\n", a.Stuck)

	if a.Shortest == nil {
		fmt.Printf("✅ Every start square completes the tour\n")
		return
	}

	s := a.Shortest
	fmt.Printf("⚠️  Shortest stuck run: from (%d, %d) to (%d, %d), %d of %d squares visited\n",
		s.Start.Row, s.Start.Col, s.End.Row, s.End.Col, s.Visited, cells)
}
