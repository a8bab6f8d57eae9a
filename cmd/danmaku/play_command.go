package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"danmaku/internal/config"
	"danmaku/internal/danmaku"
	"danmaku/internal/language"
	"danmaku/internal/logging"
	"danmaku/internal/motion"
	"danmaku/internal/overlay"
	"danmaku/internal/player"
	"danmaku/internal/render"
	"danmaku/internal/settings"
	"danmaku/internal/track"
	"danmaku/internal/translate"
)

type playOptions struct {
	subs     string
	lang     string
	headless bool
	speed    float64
	duration time.Duration
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a subtitle track with the danmaku overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.subs, "subs", "", "Subtitle file to play (overrides player.files)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Subtitle language to select")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Log danmaku instead of drawing to the terminal")
	cmd.Flags().Float64Var(&opts.speed, "speed", 1, "Playback speed multiplier")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this much wall time (0 runs until quit)")
	return cmd
}

func runPlay(cmd *cobra.Command, ctx *commandContext, opts playOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	headless := opts.headless || !stdoutIsTerminal()
	logger, err := ctx.logger(headless)
	if err != nil {
		return err
	}
	sessionID := uuid.NewString()
	logger = logger.With(logging.SessionID(sessionID))

	playerCfg, lang := playerConfig(cfg, opts)
	service, err := player.Select(playerCfg, logger)
	if err != nil {
		return err
	}

	store, err := settings.Open(cfg)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	defer store.Close()

	style, err := translate.ParseStyle(cfg.Pipeline.Style)
	if err != nil {
		style = translate.DefaultStyle
	}
	pipeline := translate.New(pipelineConfig(cfg, style), backend, translate.WithLogger(logger))

	var (
		sink     danmaku.Sink
		terminal *render.Terminal
	)
	if headless {
		sink = render.NewLogSink(logger)
	} else {
		screen, err := render.OpenScreen()
		if err != nil {
			return err
		}
		terminal = render.NewTerminal(screen, render.WithLogger(logger))
		defer terminal.Close()
		sink = terminal
	}

	driver, err := motion.Select(cfg.Danmaku.Motion, sink, motion.Options{
		ReportInterval: cfg.Danmaku.ReportInterval(),
		FrameInterval:  cfg.Danmaku.FrameInterval(),
	})
	if err != nil {
		return err
	}
	lanes := track.New(cfg.Danmaku.Lanes,
		track.WithSaturation(cfg.Danmaku.SaturationPercent),
		track.WithLogger(logger),
	)
	manager := danmaku.NewManager(danmaku.Config{
		MaxVisible:      cfg.Danmaku.MaxVisible,
		EmitInterval:    cfg.Danmaku.EmitInterval(),
		CompletionDelay: cfg.Danmaku.CompletionDelay(),
		SweepInterval:   cfg.Danmaku.SweepInterval(),
		Delimiter:       cfg.Subtitles.Delimiter,
	}, lanes, driver, sink, danmaku.WithLogger(logger))

	playback := player.NewPlayback(nil, opts.speed, 0)

	var ov *overlay.Overlay
	var lastTime atomic.Value
	lastTime.Store(player.FormatTime(0))
	updateStatus := func() {
		if terminal == nil || ov == nil {
			return
		}
		terminal.SetStatus(statusLine(lastTime.Load().(string), pipeline.Style(), playback.Paused()))
	}
	tracker := player.NewTimeTracker(playback, nil, cfg.Player.TickInterval(), func(ts string) {
		lastTime.Store(ts)
		updateStatus()
	}, logger)

	ov, err = overlay.New(overlay.Config{
		Retention: cfg.Subtitles.Retention(),
		Language:  lang,
	}, overlay.Deps{
		Pipeline: pipeline,
		Manager:  manager,
		Service:  service,
		Playback: playback,
		Store:    store,
		Tracker:  tracker,
	},
		overlay.WithLogger(logger),
		overlay.WithLock(cfg.LockPath()),
		overlay.WithSessionID(sessionID),
	)
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if opts.duration > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, opts.duration)
		defer cancelTimeout()
	}

	if err := ov.Start(runCtx); err != nil {
		return err
	}
	updateStatus()

	if terminal != nil {
		go terminal.Run(runCtx, cfg.Danmaku.FrameInterval())
		handleKeys(runCtx, cancel, terminal.Events(runCtx), ov, logger, updateStatus)
	} else {
		<-runCtx.Done()
	}

	ov.Stop()
	stats := ov.Stats()
	fmt.Fprintf(cmd.OutOrStdout(),
		"Session %s: style=%s lang=%s cues=%d requests=%d delivered=%d dropped=%d\n",
		ov.SessionID(), stats.Style, stats.Language, stats.Cues, stats.Requests, stats.Delivered, stats.Dropped,
	)
	return nil
}

func playerConfig(cfg *config.Config, opts playOptions) (config.Player, string) {
	playerCfg := cfg.Player
	lang := language.Normalize(opts.lang)
	subs := strings.TrimSpace(opts.subs)
	if lang == "" && subs != "" {
		lang = language.FromFilename(subs)
	}
	if lang == "" {
		lang = language.Normalize(playerCfg.Language)
	}
	if subs != "" {
		if lang == "" {
			lang = "default"
		}
		playerCfg.Service = "file"
		playerCfg.Files = map[string]string{lang: subs}
	} else {
		playerCfg.Files = maps.Clone(cfg.Player.Files)
	}
	return playerCfg, lang
}

func handleKeys(ctx context.Context, quit context.CancelFunc, events <-chan tcell.Event, ov *overlay.Overlay, logger *slog.Logger, refresh func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				quit()
				return
			}
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			switch {
			case key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC:
				quit()
				return
			case key.Key() != tcell.KeyRune:
				continue
			case key.Rune() == 'q':
				quit()
				return
			case key.Rune() == ' ':
				ov.TogglePause()
			default:
				style, ok := styleForKey(key.Rune())
				if !ok {
					continue
				}
				if err := ov.SetStyle(ctx, style); err != nil {
					logging.WarnWithContext(logger, "style switch failed", "style_switch_failed",
						logging.Style(string(style)),
						logging.Error(err),
						logging.String(logging.FieldImpact, "previous style stays active"),
					)
				}
			}
			refresh()
		}
	}
}

// styleForKey maps the digit keys onto the style catalogue in order.
func styleForKey(r rune) (translate.StyleKey, bool) {
	styles := translate.Styles()
	idx := int(r - '1')
	if idx < 0 || idx >= len(styles) {
		return "", false
	}
	return styles[idx].Key, true
}

func statusLine(ts string, style translate.StyleKey, paused bool) string {
	label := string(style)
	if s, ok := translate.Lookup(style); ok {
		label = fmt.Sprintf("%s %s", s.Key, s.Label)
	}
	state := "playing"
	if paused {
		state = "paused"
	}
	return fmt.Sprintf(" %s  %s  %s  [space] pause  [1-5] style  [q] quit", ts, state, label)
}
