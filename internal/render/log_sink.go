package render

import (
	"log/slog"
	"sync/atomic"

	"danmaku/internal/danmaku"
	"danmaku/internal/logging"
)

var _ danmaku.Sink = (*LogSink)(nil)

// LogSink reports fragment lifecycle events to a logger. Movement is only
// counted.
type LogSink struct {
	logger *slog.Logger
	shown  atomic.Int64
	moves  atomic.Int64
	done   atomic.Int64
}

// NewLogSink builds a headless sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.NewComponentLogger(logger, "render")}
}

func (s *LogSink) FragmentShown(v danmaku.View) {
	s.shown.Add(1)
	s.logger.Info("danmaku",
		logging.FragmentID(v.ID),
		logging.Lane(v.Lane),
		logging.String("text", v.Text),
		logging.String("color", v.Color),
	)
}

func (s *LogSink) FragmentMoved(int64, float64) {
	s.moves.Add(1)
}

func (s *LogSink) FragmentCompleted(id int64) {
	s.done.Add(1)
	s.logger.Debug("danmaku completed", logging.FragmentID(id))
}

// Counts returns how many fragments were shown, moved, and completed.
func (s *LogSink) Counts() (shown, moves, completed int64) {
	return s.shown.Load(), s.moves.Load(), s.done.Load()
}
