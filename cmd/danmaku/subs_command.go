package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"danmaku/internal/player"
	"danmaku/internal/subtitles"
)

func newSubsCommand(ctx *commandContext) *cobra.Command {
	var atFlag string

	cmd := &cobra.Command{
		Use:   "subs FILE",
		Short: "Inspect a subtitle file and the cues visible at a timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cues, stats, err := subtitles.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if strings.TrimSpace(atFlag) == "" {
				fmt.Fprintf(out, "Cues: %d (skipped %d advertisements, %d empty)\n", stats.Cues, stats.Advertisements, stats.Empty)
				fmt.Fprintln(out, renderTable(
					[]column{right("#"), left("Start"), left("End"), wrapped("Text", 60)},
					cueRows(cues, 0, false),
				))
				return nil
			}

			at, err := parseTimestamp(atFlag)
			if err != nil {
				return err
			}
			window := subtitles.Window(cues, at, cfg.Subtitles.Retention())
			if len(window) == 0 {
				fmt.Fprintf(out, "No cues visible at %s\n", player.FormatTime(at))
				return nil
			}
			fmt.Fprintf(out, "Visible at %s\n", player.FormatTime(at))
			fmt.Fprintln(out, renderTable(
				[]column{right("#"), left("Start"), left("End"), wrapped("Text", 60), left("Retained")},
				cueRows(window, at, true),
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&atFlag, "at", "", "Playback position (HH:MM:SS[.fff], MM:SS, seconds, or a duration like 1m2s)")
	return cmd
}

func cueRows(cues []subtitles.Cue, at time.Duration, retained bool) [][]string {
	rows := make([][]string, 0, len(cues))
	for i, cue := range cues {
		row := []string{
			strconv.Itoa(i + 1),
			formatCueTime(cue.Start),
			formatCueTime(cue.End),
			strings.ReplaceAll(cue.Text, "\n", " "),
		}
		if retained {
			row = append(row, yesNo(!cue.Covers(at)))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatCueTime(d time.Duration) string {
	ms := d.Milliseconds() % 1000
	return fmt.Sprintf("%s.%03d", player.FormatTime(d), ms)
}

// parseTimestamp accepts HH:MM:SS(.fff), MM:SS(.fff), plain seconds, or a Go
// duration string.
func parseTimestamp(raw string) (time.Duration, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if strings.ContainsAny(value, "hms") {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("timestamp %q is negative", raw)
		}
		return d, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parse timestamp %q: too many fields", raw)
	}
	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("parse timestamp %q: invalid seconds", raw)
	}
	total := time.Duration(seconds * float64(time.Second))
	unit := time.Minute
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse timestamp %q: invalid field %q", raw, parts[i])
		}
		total += time.Duration(n) * unit
		unit *= 60
	}
	return total.Round(time.Millisecond), nil
}
