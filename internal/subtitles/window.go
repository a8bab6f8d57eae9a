package subtitles

import "time"

// DefaultRetention keeps the last ended cue visible briefly so short gaps
// between cues do not blank the overlay.
const DefaultRetention = 2000 * time.Millisecond

// Cue is one subtitle interval. Start <= End.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Covers reports whether t falls inside the cue, bounds included.
func (c Cue) Covers(t time.Duration) bool {
	return c.Start <= t && t <= c.End
}

// Window returns every cue with Start <= t <= End in input order. When none
// match, it returns the single most recently ended cue if t-End <= retention,
// and nil otherwise. cues is not modified.
func Window(cues []Cue, t, retention time.Duration) []Cue {
	var active []Cue
	for _, cue := range cues {
		if cue.Covers(t) {
			active = append(active, cue)
		}
	}
	if len(active) > 0 {
		return active
	}

	best := -1
	for i, cue := range cues {
		if cue.End > t {
			continue
		}
		if best < 0 || cue.End > cues[best].End {
			best = i
		}
	}
	if best >= 0 && t-cues[best].End <= retention {
		return []Cue{cues[best]}
	}
	return nil
}

// Texts extracts cue text in order.
func Texts(cues []Cue) []string {
	out := make([]string, 0, len(cues))
	for _, cue := range cues {
		out = append(out, cue.Text)
	}
	return out
}
