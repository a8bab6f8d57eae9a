package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// LLM contains chat completion connection settings for the translation backend.
type LLM struct {
	// Provider selects the backend implementation: "deepseek" (raw HTTP) or "openai" (SDK).
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
}

// Pipeline contains translation pipeline timing and the initial style.
type Pipeline struct {
	MinIntervalMS int    `toml:"min_interval_ms"`
	RetryDelayMS  int    `toml:"retry_delay_ms"`
	Style         string `toml:"style"`
}

// Danmaku contains lane, capacity, and animation settings.
type Danmaku struct {
	Lanes             int     `toml:"lanes"`
	MaxVisible        int     `toml:"max_visible"`
	EmitIntervalMS    int     `toml:"emit_interval_ms"`
	CompletionDelayMS int     `toml:"completion_delay_ms"`
	SweepIntervalMS   int     `toml:"sweep_interval_ms"`
	SaturationPercent float64 `toml:"saturation_percent"`
	ReportIntervalMS  int     `toml:"report_interval_ms"`
	FrameIntervalMS   int     `toml:"frame_interval_ms"`
	// Motion selects the animation driver: "auto", "transition", or "sampling".
	Motion string `toml:"motion"`
}

// Subtitles contains subtitle window settings.
type Subtitles struct {
	RetentionMS int    `toml:"retention_ms"`
	Delimiter   string `toml:"delimiter"`
}

// Player contains the playback source settings.
type Player struct {
	// Service selects the player integration: "file" or "stub".
	Service        string            `toml:"service"`
	TickIntervalMS int               `toml:"tick_interval_ms"`
	Language       string            `toml:"language"`
	Files          map[string]string `toml:"files"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the overlay.
//
// Configuration sections by subsystem:
//   - Paths: state (settings store, lock) and log directories
//   - LLM: translation backend connection
//   - Pipeline: rate limiting, retry delay, and initial style
//   - Danmaku: lane pool, capacity, and motion driver
//   - Subtitles: visibility retention and fragment delimiter
//   - Player: subtitle source and playback tick
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Danmaku   Danmaku   `toml:"danmaku"`
	Subtitles Subtitles `toml:"subtitles"`
	Player    Player    `toml:"player"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("danmaku.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SettingsPath returns the SQLite settings database location.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Paths.StateDir, "settings.db")
}

// LockPath returns the overlay single-instance lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "overlay.lock")
}

// LogPath returns the overlay log file location, or "" when file logging is disabled.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "danmaku.log")
}

// MinInterval is the minimum spacing between two backend dispatches.
func (p Pipeline) MinInterval() time.Duration { return millis(p.MinIntervalMS) }

// RetryDelay is the delay before the single retry of a failed translation.
func (p Pipeline) RetryDelay() time.Duration { return millis(p.RetryDelayMS) }

// EmitInterval is the spacing between fragments of one multi-fragment result.
func (d Danmaku) EmitInterval() time.Duration { return millis(d.EmitIntervalMS) }

// CompletionDelay is the confirmation delay between motion end and retirement.
func (d Danmaku) CompletionDelay() time.Duration { return millis(d.CompletionDelayMS) }

// SweepInterval is the period of the lane reconciliation sweep.
func (d Danmaku) SweepInterval() time.Duration { return millis(d.SweepIntervalMS) }

// ReportInterval is the minimum spacing between extent reports.
func (d Danmaku) ReportInterval() time.Duration { return millis(d.ReportIntervalMS) }

// FrameInterval is the sampling driver frame period.
func (d Danmaku) FrameInterval() time.Duration { return millis(d.FrameIntervalMS) }

// Retention is how long the most recently ended cue stays visible.
func (s Subtitles) Retention() time.Duration { return millis(s.RetentionMS) }

// TickInterval is the playback time tracker period.
func (p Player) TickInterval() time.Duration { return millis(p.TickIntervalMS) }

// Timeout is the per-request HTTP timeout for the translation backend.
func (l LLM) Timeout() time.Duration { return time.Duration(l.TimeoutSeconds) * time.Second }

func millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
