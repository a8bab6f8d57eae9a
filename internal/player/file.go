package player

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"danmaku/internal/language"
	"danmaku/internal/logging"
	"danmaku/internal/subtitles"
)

const eventBuffer = 16

// FileService serves subtitle files keyed by language code.
type FileService struct {
	logger  *slog.Logger
	files   map[string]string
	videoID string
	events  chan Event

	mu    sync.Mutex
	lang  string
	cache map[string][]subtitles.Cue
}

// NewFileService maps language codes to subtitle file paths. Codes are
// normalized, and the video ID is derived from the first file's base name.
func NewFileService(files map[string]string, logger *slog.Logger) *FileService {
	normalized := make(map[string]string, len(files))
	for lang, path := range files {
		normalized[language.Normalize(lang)] = path
	}
	return &FileService{
		logger:  logging.NewComponentLogger(logger, "player"),
		files:   normalized,
		videoID: deriveVideoID(normalized),
		events:  make(chan Event, eventBuffer),
		cache:   make(map[string][]subtitles.Cue),
	}
}

func (f *FileService) Name() string { return "file" }

// VideoID identifies the loaded video.
func (f *FileService) VideoID() string { return f.videoID }

// Languages lists configured language codes in sorted order.
func (f *FileService) Languages() []string {
	langs := make([]string, 0, len(f.files))
	for lang := range f.files {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Init announces every configured caption track and then the loaded event.
func (f *FileService) Init(ctx context.Context) error {
	for _, lang := range f.Languages() {
		u := url.URL{Scheme: "file", Path: f.files[lang]}
		if !f.emit(ctx, Event{Kind: EventCaptions, VideoID: f.videoID, Lang: lang, URL: u.String()}) {
			return ctx.Err()
		}
	}
	f.emit(ctx, Event{Kind: EventLoaded, VideoID: f.videoID})
	f.logger.Info("player loaded",
		logging.VideoID(f.videoID),
		logging.Int("tracks", len(f.files)),
	)
	return ctx.Err()
}

// Subtitles returns cues for lang. Unknown or empty languages yield no cues.
func (f *FileService) Subtitles(ctx context.Context, lang string) ([]subtitles.Cue, error) {
	lang = language.Normalize(lang)
	if lang == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	cues, ok := f.cache[lang]
	f.mu.Unlock()
	if ok {
		return cues, nil
	}

	path, ok := f.files[lang]
	if !ok {
		f.logger.Warn("no subtitles for language",
			logging.String("lang", lang),
			logging.String(logging.FieldEventType, "subtitles_missing"),
			logging.String(logging.FieldErrorHint, "add the language under player.files"),
		)
		return nil, nil
	}
	cues, stats, err := subtitles.Load(path)
	if err != nil {
		return nil, err
	}
	f.logger.Info("subtitles loaded",
		logging.String("lang", lang),
		logging.String("language", language.DisplayName(lang)),
		logging.Int("cues", stats.Cues),
		logging.Int("advertisements", stats.Advertisements),
		logging.Int("empty", stats.Empty),
	)

	f.mu.Lock()
	f.cache[lang] = cues
	f.mu.Unlock()
	return cues, nil
}

// SetLanguage switches the active caption language and announces it.
func (f *FileService) SetLanguage(ctx context.Context, lang string) {
	lang = language.Normalize(lang)
	f.mu.Lock()
	if f.lang == lang {
		f.mu.Unlock()
		return
	}
	f.lang = lang
	f.mu.Unlock()
	f.emit(ctx, LangChanged(lang))
}

// Language returns the active caption language.
func (f *FileService) Language() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lang
}

func (f *FileService) Events() <-chan Event { return f.events }

func (f *FileService) emit(ctx context.Context, ev Event) bool {
	select {
	case f.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func deriveVideoID(files map[string]string) string {
	langs := make([]string, 0, len(files))
	for lang := range files {
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return ""
	}
	sort.Strings(langs)
	base := filepath.Base(files[langs[0]])
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if language.FromFilename(files[langs[0]]) != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
