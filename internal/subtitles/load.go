package subtitles

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asticode/go-astisub"
)

// LoadStats reports what Load kept and skipped.
type LoadStats struct {
	Cues           int
	Advertisements int
	Empty          int
}

// Load parses a subtitle file, chosen by extension, into cleaned cues sorted
// by start time.
func Load(path string) ([]Cue, LoadStats, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open subtitles %s: %w", filepath.Base(path), err)
	}
	cues, stats := fromAstisub(subs)
	return cues, stats, nil
}

// ReadSRT parses SRT content from r.
func ReadSRT(r io.Reader) ([]Cue, LoadStats, error) {
	subs, err := astisub.ReadFromSRT(r)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read srt: %w", err)
	}
	cues, stats := fromAstisub(subs)
	return cues, stats, nil
}

func fromAstisub(subs *astisub.Subtitles) ([]Cue, LoadStats) {
	var stats LoadStats
	cues := make([]Cue, 0, len(subs.Items))
	for _, item := range subs.Items {
		text := Clean(itemText(item))
		switch {
		case text == "":
			stats.Empty++
			continue
		case IsAdvertisement(text):
			stats.Advertisements++
			continue
		}
		start, end := item.StartAt, item.EndAt
		if end < start {
			start, end = end, start
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Start < cues[j].Start })
	stats.Cues = len(cues)
	return cues, stats
}

func itemText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		var b strings.Builder
		for _, li := range line.Items {
			b.WriteString(li.Text)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, " ")
}
