package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizePipeline()
	c.normalizeDanmaku()
	c.normalizeSubtitles()
	c.normalizePlayer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		if c.LLM.Provider == providerOpenAI {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		} else {
			c.LLM.BaseURL = defaultDeepSeekURL
		}
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, name := range []string{"DANMAKU_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_API_KEY"} {
			if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.MinIntervalMS < 0 {
		c.Pipeline.MinIntervalMS = 0
	}
	if c.Pipeline.RetryDelayMS <= 0 {
		c.Pipeline.RetryDelayMS = defaultRetryDelayMS
	}
	c.Pipeline.Style = strings.ToUpper(strings.TrimSpace(c.Pipeline.Style))
	if c.Pipeline.Style == "" {
		c.Pipeline.Style = defaultStyle
	}
}

func (c *Config) normalizeDanmaku() {
	c.Danmaku.Motion = strings.ToLower(strings.TrimSpace(c.Danmaku.Motion))
	if c.Danmaku.Motion == "" {
		c.Danmaku.Motion = defaultMotion
	}
	if c.Danmaku.CompletionDelayMS < 0 {
		c.Danmaku.CompletionDelayMS = 0
	}
	if c.Danmaku.EmitIntervalMS <= 0 {
		c.Danmaku.EmitIntervalMS = defaultEmitIntervalMS
	}
	if c.Danmaku.SweepIntervalMS <= 0 {
		c.Danmaku.SweepIntervalMS = defaultSweepIntervalMS
	}
	if c.Danmaku.ReportIntervalMS <= 0 {
		c.Danmaku.ReportIntervalMS = defaultReportIntervalMS
	}
	if c.Danmaku.FrameIntervalMS <= 0 {
		c.Danmaku.FrameIntervalMS = defaultFrameIntervalMS
	}
}

func (c *Config) normalizeSubtitles() {
	if c.Subtitles.RetentionMS < 0 {
		c.Subtitles.RetentionMS = 0
	}
	if strings.TrimSpace(c.Subtitles.Delimiter) == "" {
		c.Subtitles.Delimiter = defaultDelimiter
	}
}

func (c *Config) normalizePlayer() {
	c.Player.Service = strings.ToLower(strings.TrimSpace(c.Player.Service))
	if c.Player.Service == "" {
		c.Player.Service = defaultPlayerService
	}
	if c.Player.TickIntervalMS <= 0 {
		c.Player.TickIntervalMS = defaultTickIntervalMS
	}
	c.Player.Language = strings.ToLower(strings.TrimSpace(c.Player.Language))
	if c.Player.Language == "" {
		c.Player.Language = defaultLanguage
	}
	if len(c.Player.Files) > 0 {
		files := make(map[string]string, len(c.Player.Files))
		for lang, path := range c.Player.Files {
			key := strings.ToLower(strings.TrimSpace(lang))
			if key == "" {
				continue
			}
			if expanded, err := expandPath(strings.TrimSpace(path)); err == nil {
				files[key] = expanded
			}
		}
		c.Player.Files = files
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
