// Package common provides shared wiring for command implementations.
package common

import (
	"fmt"

	"github.com/CyborPunk-2077/article-scraper/internal/config"
	"github.com/CyborPunk-2077/article-scraper/internal/logger"
)

// CommandDeps holds the dependencies every command starts from.
type CommandDeps struct {
	Logger logger.Interface
	Config *config.Config
}

// NewCommandDeps loads the configuration and creates the logger. It assumes
// viper has been initialized by the root command.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	deps := &CommandDeps{
		Logger: log,
		Config: cfg,
	}
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return deps, nil
}

// Validate ensures all required dependencies are present.
func (d *CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}
