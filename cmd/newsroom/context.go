package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"newsroom/internal/config"
	"newsroom/internal/logging"
	"newsroom/internal/metrics"
	"newsroom/internal/pipeline"
	"newsroom/internal/store"
)

// orchestratorFactory builds the pipeline for a command. Tests replace it to
// run commands against fake model clients.
type orchestratorFactory func(cfg *config.Config, st *store.Store, logger *slog.Logger) *pipeline.Orchestrator

func defaultOrchestrator(cfg *config.Config, st *store.Store, logger *slog.Logger) *pipeline.Orchestrator {
	return pipeline.NewFromConfig(cfg, st, logger, metrics.Default())
}

type commandContext struct {
	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	newOrchestrator orchestratorFactory
}

func newCommandContext() *commandContext {
	return &commandContext{newOrchestrator: defaultOrchestrator}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger writes to stderr so stdout stays clean for tables and JSON, and to
// the shared log file.
func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if override := strings.TrimSpace(c.logLevelFlag); override != "" {
		level = override
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, logging.LogFilePath(cfg))
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
		ComponentLevels:  cfg.Logging.StageOverrides,
	})
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func (c *commandContext) withPipeline(fn func(*pipeline.Orchestrator) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger()
	if err != nil {
		return err
	}
	return c.withStore(func(st *store.Store) error {
		factory := c.newOrchestrator
		if factory == nil {
			factory = defaultOrchestrator
		}
		return fn(factory(cfg, st, logger))
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
