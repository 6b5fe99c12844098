package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ValidateBoardConfig validates a board configuration, reporting every
// problem found rather than only the first one
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	var err error

	if config.Name == "" {
		err = multierr.Append(err, fmt.Errorf("config validation: name is required"))
	}
	if config.Description == "" {
		err = multierr.Append(err, fmt.Errorf("config validation: description is required"))
	}

	if config.Rows < MinBoardSize || config.Rows > MaxBoardSize {
		err = multierr.Append(err, fmt.Errorf("config validation: rows must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.Rows))
	}
	if config.Cols < MinBoardSize || config.Cols > MaxBoardSize {
		err = multierr.Append(err, fmt.Errorf("config validation: cols must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.Cols))
	}

	if len(config.Offsets) == 0 {
		err = multierr.Append(err, fmt.Errorf("config validation: offsets must not be empty"))
	}
	if len(config.Offsets) > MaxOffsets {
		err = multierr.Append(err, fmt.Errorf("config validation: at most %d offsets allowed, got %d",
			MaxOffsets, len(config.Offsets)))
	}

	seen := make(map[Offset]int, len(config.Offsets))
	for i, off := range config.Offsets {
		if off.DRow == 0 && off.DCol == 0 {
			err = multierr.Append(err, fmt.Errorf("config validation: offset %d is (0,0)", i+1))
			continue
		}
		if prev, ok := seen[off]; ok {
			err = multierr.Append(err, fmt.Errorf("config validation: offset %d (%d,%d) duplicates offset %d",
				i+1, off.DRow, off.DCol, prev))
			continue
		}
		seen[off] = i + 1
	}

	return err
}

// DefaultBoardConfig returns the classic 8x8 board with the standard knight table
func DefaultBoardConfig() *BoardConfig {
	offsets := make([]Offset, len(DefaultOffsets))
	copy(offsets, DefaultOffsets)

	return &BoardConfig{
		Name:        "classic",
		Description: "Standard 8x8 chessboard with the classic knight move table",
		Rows:        DefaultBoardSize,
		Cols:        DefaultBoardSize,
		Offsets:     offsets,
	}
}

// ParseBoardConfig decodes a configuration. The format is chosen from the
// file extension: .yaml and .yml are YAML, anything else is JSON.
func ParseBoardConfig(filename string, data []byte) (*BoardConfig, error) {
	var config BoardConfig

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config '%s': %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config '%s': %w", filename, err)
		}
	}

	// A config that leaves out the move table gets the classic knight moves
	if config.Offsets == nil {
		config.Offsets = DefaultBoardConfig().Offsets
	}

	return &config, nil
}

// LoadBoardConfig loads and validates a configuration file
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseBoardConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateBoardConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}

	return config, nil
}
