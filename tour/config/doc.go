// Package config provides board configuration management for the knight's tour.
//
// The config package handles:
//   - Loading board configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Board configurations are stored in the configs directory as .json, .yaml
// or .yml files. Each configuration defines:
//   - name and description
//   - rows and cols (1 to 26 each)
//   - offsets, the ordered move table; the order breaks accessibility ties
//
// A file that leaves out offsets gets the classic knight table.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	boardConfig, err := manager.LoadConfig("small")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	configs, err := manager.ListConfigs()
//
// The classic 8x8 board is always available, even when no classic file is
// present in the directory.
package config
