// Command knights-tour builds a knight's tour with Warnsdorff's heuristic.
//
// With no arguments it picks a random start square on the classic 8x8 board,
// runs the tour and prints the board with the visit order of every square.
// Two subcommands expose tours as long-lived sessions:
//  1. "serve" runs the HTTP server with the REST API, WebSocket and /mcp endpoint
//  2. "mcp" runs an MCP stdio server backed by the REST API
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/knights-tour/tour/config"
	"github.com/wricardo/knights-tour/tour/engine"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Knight's Tour"
)

// ExitStuck is the exit code of a stuck tour under --strict
const ExitStuck = 2

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("error loading .env file")
		}
	} else {
		logrus.Debug("loaded environment variables from .env file")
	}

	// Exit errors terminate inside Run with their own code
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

// newCommand builds the root command and its subcommands
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "knights-tour",
		Usage:   "build a knight's tour with Warnsdorff's heuristic",
		Version: Version,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed for the random start square",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultConfigName,
				Usage: "board configuration name, or path to a .json/.yaml file",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing board configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the tour result as JSON instead of the board",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: fmt.Sprintf("exit with code %d when the knight gets stuck", ExitStuck),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: runTour,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
		},
	}
}

// setupLogging configures the standard logger from the --debug flag
func setupLogging(cmd *cli.Command) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cmd.Bool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// runTour is the default action: one tour, printed to stdout
func runTour(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	boardConfig, err := loadBoardConfig(cmd.String("config"), cmd.String("config-dir"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var seed *int64
	if cmd.IsSet("seed") {
		s := cmd.Int64("seed")
		seed = &s
	}

	result, err := printTour(os.Stdout, boardConfig, seed, cmd.Bool("json"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cmd.Bool("strict") && result.Status == engine.Stuck {
		return cli.Exit(fmt.Sprintf("knight got stuck after visiting %d of %d squares",
			result.Visited, result.Cells), ExitStuck)
	}
	return nil
}

// loadBoardConfig resolves --config as a file path first and then as a name
// in the config directory. The classic board needs no directory at all.
func loadBoardConfig(name, dir string) (*engine.BoardConfig, error) {
	switch filepath.Ext(name) {
	case ".json", ".yaml", ".yml":
		return engine.LoadBoardConfig(name)
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		if name == config.DefaultConfigName {
			return engine.DefaultBoardConfig(), nil
		}
		return nil, err
	}
	return manager.LoadConfig(name)
}

// printTour runs one tour to the end and writes it to w
func printTour(w io.Writer, boardConfig *engine.BoardConfig, seed *int64, asJSON bool) (*engine.TourResult, error) {
	var (
		tourEngine *engine.TourEngine
		err        error
	)
	if seed != nil {
		tourEngine, err = engine.NewEngineWithSeed(boardConfig, *seed)
	} else {
		tourEngine, err = engine.NewEngine(boardConfig, nil)
	}
	if err != nil {
		return nil, err
	}

	result := tourEngine.Run()
	logrus.WithFields(logrus.Fields{
		"config":  boardConfig.Name,
		"start":   fmt.Sprintf("(%d,%d)", result.Start.Row, result.Start.Col),
		"visited": result.Visited,
		"status":  result.Status,
	}).Debug("tour finished")

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return result, encoder.Encode(result)
	}

	_, err = io.WriteString(w, engine.RenderBoard(tourEngine.GetBoard(), result.Status))
	return result, err
}
