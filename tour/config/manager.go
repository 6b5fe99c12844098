package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/engine"
	"github.com/wricardo/knights-tour/tour/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigName is the config used when none is requested
const DefaultConfigName = "classic"

// extensions are tried in order when resolving a config name to a file
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles board configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.BoardConfig
	configs       map[string]*engine.BoardConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.BoardConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry its file
// extension; without one, .json, .yaml and .yml are tried in turn. The
// built-in classic board answers for "classic" when no such file exists.
func (m *Manager) LoadConfig(name string) (*engine.BoardConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	configPath, err := m.resolve(name)
	if err != nil {
		if id == DefaultConfigName {
			config := engine.DefaultBoardConfig()
			m.configs[id] = config
			return config, nil
		}
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseBoardConfig(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateBoardConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			logrus.WithField("file", entry.Name()).WithError(err).Debug("skipping invalid config")
			continue
		}
		seen[id] = true

		configs = append(configs, configInfo(entry.Name(), id, config))
	}

	if !seen[DefaultConfigName] {
		configs = append(configs, configInfo("", DefaultConfigName, engine.DefaultBoardConfig()))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations so they are reread from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// SaveConfig validates a configuration and writes it to disk. Names ending
// in .yaml or .yml are written as YAML, everything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.BoardConfig) error {
	if err := engine.ValidateBoardConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	filename := name
	if !isConfigFile(filename) {
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// loadDefaultConfig picks classic, then the first valid config, then the built-in board
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		logrus.WithError(err).Warn("classic config is unusable, falling back")

		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = engine.DefaultBoardConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			config = engine.DefaultBoardConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// resolve finds the file backing a config name
func (m *Manager) resolve(name string) (string, error) {
	if isConfigFile(name) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrConfigNotFound
}

func configInfo(filename, id string, config *engine.BoardConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Rows:        config.Rows,
		Cols:        config.Cols,
		Offsets:     len(config.Offsets),
	}
}

func isConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID strips a config file extension
func configID(name string) string {
	if isConfigFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
