package main

import (
	"fmt"

	"danmaku/internal/config"
	"danmaku/internal/services"
	"danmaku/internal/services/llm"
	"danmaku/internal/services/openaichat"
	"danmaku/internal/translate"
)

type namedBackend interface {
	translate.Backend
	Name() string
}

func newBackend(cfg *config.Config) (namedBackend, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "llm", "configure", "", err)
	}
	switch cfg.LLM.Provider {
	case "openai":
		return openaichat.New(openaichat.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Referer:     cfg.LLM.Referer,
			Title:       cfg.LLM.Title,
			Timeout:     cfg.LLM.Timeout(),
			Temperature: cfg.LLM.Temperature,
		}), nil
	case "deepseek":
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			Temperature:    cfg.LLM.Temperature,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}
}

func pipelineConfig(cfg *config.Config, style translate.StyleKey) translate.Config {
	return translate.Config{
		MinInterval: cfg.Pipeline.MinInterval(),
		RetryDelay:  cfg.Pipeline.RetryDelay(),
		Style:       style,
	}
}
