package motion

// TransitionDriver delegates interpolation to the renderer and keeps one end
// timer plus a report-interval sampler per fragment.
type TransitionDriver struct {
	renderer TransitionCapable
	opts     Options
}

// NewTransitionDriver builds a declarative driver for renderer.
func NewTransitionDriver(renderer TransitionCapable, opts Options) *TransitionDriver {
	return &TransitionDriver{renderer: renderer, opts: opts.withDefaults()}
}

func (d *TransitionDriver) Name() string { return StrategyTransition }

// Animate starts the renderer transition and schedules reports.
func (d *TransitionDriver) Animate(id int64, text string, report func(float64), done func()) Animation {
	clk := d.opts.Clock
	duration := Duration(text)
	start := clk.Now()
	r := &run{report: report, done: done}

	d.renderer.StartTransition(Transition{
		ID:       id,
		From:     StartExtent,
		To:       EndExtent,
		Start:    start,
		Duration: duration,
	})
	r.emit(StartExtent)

	r.add(clk.Every(d.opts.ReportInterval, func() {
		progress := float64(clk.Now().Sub(start)) / float64(duration)
		if progress >= 1 {
			return
		}
		r.emit(Extent(progress))
	}))
	r.add(clk.AfterFunc(duration, r.finish))
	return r
}

var _ Driver = (*TransitionDriver)(nil)
