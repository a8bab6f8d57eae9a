package danmaku

// Sink receives fragment lifecycle events for rendering.
type Sink interface {
	FragmentShown(View)
	FragmentMoved(id int64, extent float64)
	FragmentCompleted(id int64)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) FragmentShown(View) {}

func (NopSink) FragmentMoved(int64, float64) {}

func (NopSink) FragmentCompleted(int64) {}
