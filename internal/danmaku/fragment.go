package danmaku

import (
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"
)

// State is a fragment lifecycle stage.
type State int

const (
	StateCreated State = iota
	StateVisible
	StateCompleting
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateVisible:
		return "visible"
	case StateCompleting:
		return "completing"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Fragment is one independently animated caption.
type Fragment struct {
	ID        int64
	Text      string
	Color     string
	FontSize  string
	Lane      int
	Top       float64
	Extent    float64
	State     State
	CreatedAt time.Time
}

// View is the render-facing projection of a fragment.
type View struct {
	ID       int64
	Text     string
	Lane     int
	Top      float64
	Extent   float64
	Color    string
	FontSize string
}

func (f Fragment) View() View {
	return View{
		ID:       f.ID,
		Text:     f.Text,
		Lane:     f.Lane,
		Top:      f.Top,
		Extent:   f.Extent,
		Color:    f.Color,
		FontSize: f.FontSize,
	}
}

var lastID atomic.Int64

// nextID hands out process-wide fragment IDs. IDs are never reused.
func nextID() int64 {
	return lastID.Add(1)
}

var (
	emojis = []string{"😂", "😍", "🤣", "😊", "😁", "👍", "🔥", "✨", "💯", "🎉", "👀", "💪", "❤️", "🙌", "🤔"}

	// Palette is the set of fragment colours.
	Palette = []string{
		"#FFFFFF", "#00FFFF", "#FFA500", "#FF69B4", "#1E90FF", "#FFFF00",
		"#7CFC00", "#FF00FF", "#FF6347", "#00FF7F", "#F0E68C", "#87CEFA",
	}

	fontSizes = []string{"1.0em", "1.1em", "1.2em", "1.3em", "1.4em"}
)

// Decoration is the per-fragment look chosen once at creation.
type Decoration struct {
	Text     string
	Color    string
	FontSize string
}

// Decorator picks emoji, colour, and font size for new fragments.
type Decorator struct {
	rng *rand.Rand
}

// NewDecorator builds a decorator. A nil source uses a random seed.
func NewDecorator(rng *rand.Rand) *Decorator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Decorator{rng: rng}
}

// Decorate adds a random emoji before or after text unless it already has
// one, and picks a colour and font size.
func (d *Decorator) Decorate(text string) Decoration {
	text = strings.TrimSpace(text)
	if !HasEmoji(text) {
		emoji := emojis[d.rng.IntN(len(emojis))]
		if d.rng.IntN(2) == 0 {
			text = emoji + " " + text
		} else {
			text = text + " " + emoji
		}
	}
	return Decoration{
		Text:     text,
		Color:    Palette[d.rng.IntN(len(Palette))],
		FontSize: fontSizes[d.rng.IntN(len(fontSizes))],
	}
}

// HasEmoji reports whether text contains a pictograph in U+1F300..U+1F6FF.
func HasEmoji(text string) bool {
	for _, r := range text {
		if r >= 0x1F300 && r <= 0x1F6FF {
			return true
		}
	}
	return false
}
