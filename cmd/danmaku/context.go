package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"danmaku/internal/config"
	"danmaku/internal/logging"
	"danmaku/internal/settings"
	"danmaku/internal/translate"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds the command logger. console adds stderr output next to the
// log file.
func (c *commandContext) logger(console bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) withSettings(fn func(*settings.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := settings.Open(cfg)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// currentStyle returns the persisted style, falling back to the configured one.
func (c *commandContext) currentStyle(ctx context.Context, store *settings.Store) (translate.StyleKey, bool, error) {
	raw, _, err := store.Style(ctx)
	if err != nil {
		return "", false, err
	}
	if raw != "" {
		if key, parseErr := translate.ParseStyle(raw); parseErr == nil {
			return key, true, nil
		}
	}
	key, err := translate.ParseStyle(c.configValue().Pipeline.Style)
	if err != nil {
		return translate.DefaultStyle, false, nil
	}
	return key, false, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
