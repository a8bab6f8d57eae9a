package motion

import "sync"

// SamplingDriver advances each fragment on a frame ticker and throttles
// extent reports to the report interval.
type SamplingDriver struct {
	opts Options
}

// NewSamplingDriver builds a manual frame driver.
func NewSamplingDriver(opts Options) *SamplingDriver {
	return &SamplingDriver{opts: opts.withDefaults()}
}

func (d *SamplingDriver) Name() string { return StrategySampling }

// Animate starts the frame loop for one fragment.
func (d *SamplingDriver) Animate(_ int64, text string, report func(float64), done func()) Animation {
	clk := d.opts.Clock
	duration := Duration(text)
	start := clk.Now()
	r := &run{report: report, done: done}

	var mu sync.Mutex
	lastReport := start
	r.emit(StartExtent)

	r.add(clk.Every(d.opts.FrameInterval, func() {
		now := clk.Now()
		progress := float64(now.Sub(start)) / float64(duration)
		if progress >= 1 {
			r.finish()
			return
		}
		mu.Lock()
		due := now.Sub(lastReport) >= d.opts.ReportInterval
		if due {
			lastReport = now
		}
		mu.Unlock()
		if due {
			r.emit(Extent(progress))
		}
	}))
	return r
}

var _ Driver = (*SamplingDriver)(nil)
