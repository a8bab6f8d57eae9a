package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"danmaku/internal/settings"
	"danmaku/internal/splitter"
	"danmaku/internal/translate"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var styleFlag string

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Generate danmaku for lines of subtitle text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			backend, err := newBackend(cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			var style translate.StyleKey
			if strings.TrimSpace(styleFlag) != "" {
				if style, err = translate.ParseStyle(styleFlag); err != nil {
					return err
				}
			} else if err := ctx.withSettings(func(store *settings.Store) error {
				style, _, err = ctx.currentStyle(cmd.Context(), store)
				return err
			}); err != nil {
				return err
			}

			pipeline := translate.New(pipelineConfig(cfg, style), backend, translate.WithLogger(logger))
			defer pipeline.Stop()

			rows := make([][]string, 0, len(args))
			failures := 0
			for i, text := range args {
				if i > 0 {
					if err := sleepContext(cmd.Context(), cfg.Pipeline.MinInterval()); err != nil {
						return err
					}
				}
				result := pipeline.Translate(cmd.Context(), text)
				var fragments []string
				if translate.IsErrorResult(result) || result == "" {
					failures++
				} else {
					fragments = splitter.Split(result, cfg.Subtitles.Delimiter)
				}
				display := strings.Join(fragments, " / ")
				if display == "" {
					display = result
				}
				rows = append(rows, []string{text, display, strconv.Itoa(len(fragments))})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Style: %s via %s\n", style, backend.Name())
			fmt.Fprintln(out, renderTable(
				[]column{wrapped("Source", 40), wrapped("Danmaku", 60), right("Fragments")},
				rows,
			))
			if failures > 0 {
				return fmt.Errorf("%d of %d translations failed", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&styleFlag, "style", "s", "", "Caption style key (FUNNY, ACADEMIC, MEME, MOVIE, DUSHE)")
	return cmd
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
