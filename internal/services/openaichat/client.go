// Package openaichat adapts the official OpenAI Go SDK to the translation
// backend contract. Any OpenAI compatible base URL works, including DeepSeek.
package openaichat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"danmaku/internal/services"
)

const (
	defaultModel       = "deepseek-chat"
	defaultTemperature = 0.2
	defaultTimeout     = 30 * time.Second
	component          = "openaichat"
)

// Config captures the SDK connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Referer     string
	Title       string
	Timeout     time.Duration
	Temperature float64
	HTTPClient  *http.Client
}

// Client issues chat completions through the SDK.
type Client struct {
	sdk         openai.Client
	model       string
	temperature float64
	hasKey      bool
}

// New constructs a client. SDK level retries are disabled; the translation
// pipeline owns retry policy.
func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts = append(opts, option.WithRequestTimeout(timeout))
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Client{
		sdk:         openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		hasKey:      strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Name identifies the backend in logs.
func (c *Client) Name() string {
	return "openai:" + c.model
}

// Complete sends one chat completion and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.hasKey {
		return "", services.Wrap(services.ErrConfiguration, component, "complete", "api key required", nil)
	}
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", services.Wrap(services.ErrMalformedResponse, component, "decode response", "empty choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout || apiErr.StatusCode == http.StatusGatewayTimeout:
			return services.Wrap(services.ErrTimeout, component, "request", "", err)
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, component, "request", "", err)
		default:
			return fmt.Errorf("%s request: %w", component, err)
		}
	}
	if strings.Contains(err.Error(), "unmarshal") || strings.Contains(err.Error(), "invalid character") {
		return services.Wrap(services.ErrMalformedResponse, component, "decode response", "", err)
	}
	return services.Wrap(services.ClassifyTransport(err), component, "request", "", err)
}
