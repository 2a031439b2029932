package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"ejectd/internal/cmdexec"
	"ejectd/internal/config"
	"ejectd/internal/drive"
	"ejectd/internal/history"
	"ejectd/internal/logging"
)

// commandContext carries lazily constructed dependencies shared by every
// subcommand.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		fallback := config.Default()
		return &fallback
	}
	return cfg
}

func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.log = logger
	})
	return c.log
}

func (c *commandContext) executor() cmdexec.Executor {
	return cmdexec.New(c.configValue().CommandTimeout())
}

func (c *commandContext) driveCommands() drive.Commands {
	cfg := c.configValue()
	return drive.Commands{
		Lsblk:     cfg.Commands.Lsblk,
		Findmnt:   cfg.Commands.Findmnt,
		Udisksctl: cfg.Commands.Udisksctl,
	}
}

func (c *commandContext) lister() *drive.Lister {
	return drive.NewLister(c.executor(), c.logger(), c.driveCommands())
}

func (c *commandContext) ejector() *drive.Ejector {
	return drive.NewEjector(c.executor(), c.logger(), c.driveCommands())
}

// openHistory returns the history store, or nil when history is disabled.
// Store failures are logged and degrade to no history rather than blocking
// an eject.
func (c *commandContext) openHistory() *history.Store {
	cfg := c.configValue()
	if !cfg.History.Enabled {
		return nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		c.logger().Warn("history unavailable", logging.Error(err))
		return nil
	}
	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		c.logger().Warn("history unavailable", logging.Error(err))
		return nil
	}
	return store
}
