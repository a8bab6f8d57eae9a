package player

import (
	"context"
	"log/slog"

	"danmaku/internal/logging"
	"danmaku/internal/subtitles"
)

// Stub stands in when no supported player source is configured.
type Stub struct {
	logger *slog.Logger
	events chan Event
}

// NewStub returns a service that never yields cues.
func NewStub(logger *slog.Logger) *Stub {
	return &Stub{
		logger: logging.NewComponentLogger(logger, "player"),
		events: make(chan Event),
	}
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Init(context.Context) error {
	s.logger.Warn("no supported player source configured; captions disabled",
		logging.String(logging.FieldEventType, "player_unsupported"),
		logging.String(logging.FieldErrorHint, "pass --subs or set player.files in config"),
	)
	return nil
}

func (s *Stub) Subtitles(context.Context, string) ([]subtitles.Cue, error) {
	s.logger.Debug("subtitles requested from stub player")
	return nil, nil
}

func (s *Stub) Events() <-chan Event { return s.events }
