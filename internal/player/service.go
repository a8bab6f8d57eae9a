package player

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"danmaku/internal/config"
	"danmaku/internal/services"
	"danmaku/internal/subtitles"
)

// EventKind classifies player events.
type EventKind string

const (
	// EventCaptions announces that captions for VideoID in Lang are available at URL.
	EventCaptions EventKind = "captions"
	// EventLangChanged reports that the viewer switched caption language.
	EventLangChanged EventKind = "lang_changed"
	// EventLoaded reports that the player finished loading.
	EventLoaded EventKind = "loaded"
)

// Event is one notification from the player.
type Event struct {
	Kind    EventKind
	VideoID string
	Lang    string
	URL     string
}

// LangChanged builds a language switch event.
func LangChanged(lang string) Event {
	return Event{Kind: EventLangChanged, Lang: lang}
}

// Service is the overlay's view of a player integration.
type Service interface {
	Name() string
	Init(ctx context.Context) error
	Subtitles(ctx context.Context, lang string) ([]subtitles.Cue, error)
	Events() <-chan Event
}

// Select builds the service named by the player configuration. Unknown or
// unconfigured sources fall back to Stub.
func Select(cfg config.Player, logger *slog.Logger) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Service)) {
	case "file":
		if len(cfg.Files) == 0 {
			return NewStub(logger), nil
		}
		return NewFileService(cfg.Files, logger), nil
	case "stub", "":
		return NewStub(logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "player", "select",
			fmt.Sprintf("unsupported player service %q", cfg.Service), nil)
	}
}
