package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/knights-tour/tour/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrTourFinished         = errors.New("tour already finished")
	ErrInvalidStart         = errors.New("invalid start square")
)

// TourService defines all tour-related operations
type TourService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Tour Operations
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	BulkStep(ctx context.Context, sessionID string, n int, reset bool) (*BulkStepResult, error)
	Run(ctx context.Context, sessionID string) (*RunResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.TourState, error)

	// Tour State
	GetTourState(ctx context.Context, sessionID string) (*engine.TourState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetCandidates(ctx context.Context, sessionID string) (*CandidatesResponse, error)
	Render(ctx context.Context, sessionID string) (string, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, configID string, config *engine.BoardConfig, opts CreateOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Session represents an active tour session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.TourEngine
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewTourEngine builds the engine for a new session from its create options
func NewTourEngine(config *engine.BoardConfig, opts CreateOptions) (*engine.TourEngine, error) {
	switch {
	case opts.Start != nil:
		return engine.NewEngineAt(config, *opts.Start)
	case opts.Seed != nil:
		return engine.NewEngineWithSeed(config, *opts.Seed)
	default:
		return engine.NewEngine(config, nil)
	}
}
