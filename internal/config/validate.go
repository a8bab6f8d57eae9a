package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The API key is checked
// separately by ValidateLLM because only translating commands need it.
func (c *Config) Validate() error {
	if err := c.validateLLMShape(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateDanmaku(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateLLM reports whether the translation backend can be constructed.
func (c *Config) ValidateLLM() error {
	if err := c.validateLLMShape(); err != nil {
		return err
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("llm.api_key is required. Set DANMAKU_API_KEY env var or edit %s (create with 'danmaku config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateLLMShape() error {
	switch c.LLM.Provider {
	case providerDeepSeek, providerOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", providerDeepSeek, providerOpenAI, c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Style == "" {
		return errors.New("pipeline.style must be set")
	}
	return nil
}

func (c *Config) validateDanmaku() error {
	if err := ensurePositiveMap(map[string]int{
		"danmaku.lanes":       c.Danmaku.Lanes,
		"danmaku.max_visible": c.Danmaku.MaxVisible,
	}); err != nil {
		return err
	}
	if c.Danmaku.SaturationPercent < 0 || c.Danmaku.SaturationPercent > 100 {
		return errors.New("danmaku.saturation_percent must be between 0 and 100")
	}
	switch c.Danmaku.Motion {
	case "auto", "transition", "sampling":
	default:
		return fmt.Errorf("danmaku.motion must be auto, transition, or sampling, got %q", c.Danmaku.Motion)
	}
	return nil
}

func (c *Config) validatePlayer() error {
	switch c.Player.Service {
	case "file", "stub":
	default:
		return fmt.Errorf("player.service must be file or stub, got %q", c.Player.Service)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
