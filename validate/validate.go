// Command validate checks the board configuration files in a directory
// (configs by default, or the directory given as the only argument). It
// checks:
//   - JSON or YAML structure
//   - Name, description and board dimensions
//   - The move offset table (non-empty, no (0,0), no duplicates)
//   - Connectivity: whether every square can be reached from (0,0) at all
//
// A disconnected board is reported but stays valid; no tour on it can
// complete.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/knights-tour/tour/engine"
	"go.uber.org/multierr"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseBoardConfig(filePath, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid format: %v", err))
		return result
	}

	if err := engine.ValidateBoardConfig(config); err != nil {
		result.Valid = false
		for _, e := range multierr.Errors(err) {
			result.Errors = append(result.Errors, strings.TrimPrefix(e.Error(), "config validation: "))
		}
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", config.Rows, config.Cols))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Offsets: %d", len(config.Offsets)))
	result.Errors = append(result.Errors, validateConnectivity(config.Rows, config.Cols, config.Offsets).Errors...)

	return result
}

// validateConnectivity flood-fills the move graph from (0,0) and reports the
// squares the piece can never reach. The result is always valid; the
// messages are informational.
func validateConnectivity(rows, cols int, offsets []engine.Offset) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if rows <= 0 || cols <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate connectivity: empty board")
		return result
	}

	reached := engine.NewBoard(rows, cols)
	reached.Initialize(0, 0)
	queue := []engine.Position{{Row: 0, Col: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, off := range offsets {
			r, c := current.Row+off.DRow, current.Col+off.DCol
			if reached.IsLegal(r, c) {
				reached.MarkVisited(r, c, engine.FirstLabel)
				queue = append(queue, engine.Position{Row: r, Col: c})
			}
		}
	}

	var unreachable []string
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if reached.Label(r, c) == engine.Unvisited {
				unreachable = append(unreachable, fmt.Sprintf("(%d,%d)", r, c))
			}
		}
	}

	if len(unreachable) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("⚠ Connectivity: %d/%d squares unreachable, no complete tour exists: %s",
			len(unreachable), rows*cols, strings.Join(unreachable, " ")))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: all %d squares reachable", rows*cols))
	}

	return result
}

// findConfigFiles lists the JSON and YAML files in dir
func findConfigFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every config file, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := findConfigFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
