package config

const (
	defaultConfigPath        = "~/.config/danmaku/config.toml"
	defaultStateDir          = "~/.local/share/danmaku"
	defaultLogDir            = "~/.local/share/danmaku/logs"
	providerDeepSeek         = "deepseek"
	providerOpenAI           = "openai"
	defaultProvider          = providerDeepSeek
	defaultDeepSeekURL       = "https://api.deepseek.com/v1/chat/completions"
	defaultOpenAIBaseURL     = "https://api.deepseek.com/v1/"
	defaultModel             = "deepseek-chat"
	defaultReferer           = "https://github.com/danmaku/danmaku"
	defaultTitle             = "Danmaku Overlay"
	defaultTimeoutSeconds    = 30
	defaultTemperature       = 0.2
	defaultMinIntervalMS     = 1500
	defaultRetryDelayMS      = 3000
	defaultStyle             = "FUNNY"
	defaultLanes             = 10
	defaultMaxVisible        = 12
	defaultEmitIntervalMS    = 1000
	defaultCompletionDelayMS = 100
	defaultSweepIntervalMS   = 2000
	defaultSaturationPercent = 80
	defaultReportIntervalMS  = 100
	defaultFrameIntervalMS   = 16
	defaultMotion            = "auto"
	defaultRetentionMS       = 2000
	defaultDelimiter         = "||"
	defaultPlayerService     = "file"
	defaultTickIntervalMS    = 1000
	defaultLanguage          = "en"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		LLM: LLM{
			Provider:       defaultProvider,
			Model:          defaultModel,
			Referer:        defaultReferer,
			Title:          defaultTitle,
			TimeoutSeconds: defaultTimeoutSeconds,
			Temperature:    defaultTemperature,
		},
		Pipeline: Pipeline{
			MinIntervalMS: defaultMinIntervalMS,
			RetryDelayMS:  defaultRetryDelayMS,
			Style:         defaultStyle,
		},
		Danmaku: Danmaku{
			Lanes:             defaultLanes,
			MaxVisible:        defaultMaxVisible,
			EmitIntervalMS:    defaultEmitIntervalMS,
			CompletionDelayMS: defaultCompletionDelayMS,
			SweepIntervalMS:   defaultSweepIntervalMS,
			SaturationPercent: defaultSaturationPercent,
			ReportIntervalMS:  defaultReportIntervalMS,
			FrameIntervalMS:   defaultFrameIntervalMS,
			Motion:            defaultMotion,
		},
		Subtitles: Subtitles{
			RetentionMS: defaultRetentionMS,
			Delimiter:   defaultDelimiter,
		},
		Player: Player{
			Service:        defaultPlayerService,
			TickIntervalMS: defaultTickIntervalMS,
			Language:       defaultLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
