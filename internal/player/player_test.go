package player_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"danmaku/internal/clock"
	"danmaku/internal/config"
	"danmaku/internal/player"
	"danmaku/internal/services"
	"danmaku/internal/testsupport"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Player
		want    string
		wantErr bool
	}{
		{"file with tracks", config.Player{Service: "file", Files: map[string]string{"en": "/tmp/a.srt"}}, "file", false},
		{"file without tracks", config.Player{Service: "file"}, "stub", false},
		{"stub", config.Player{Service: "stub"}, "stub", false},
		{"unknown", config.Player{Service: "netflix"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := player.Select(tt.cfg, nil)
			if tt.wantErr {
				if !errors.Is(err, services.ErrConfiguration) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if svc.Name() != tt.want {
				t.Fatalf("got %s, want %s", svc.Name(), tt.want)
			}
		})
	}
}

func TestFileServiceInitAnnouncesTracks(t *testing.T) {
	dir := t.TempDir()
	en := testsupport.WriteSRT(t, filepath.Join(dir, "movie.en.srt"),
		testsupport.Cue{Start: time.Second, End: 2 * time.Second, Text: "Hello"})
	zh := testsupport.WriteSRT(t, filepath.Join(dir, "movie.zh.srt"),
		testsupport.Cue{Start: time.Second, End: 2 * time.Second, Text: "你好"})

	svc := player.NewFileService(map[string]string{"EN": en, "zh": zh}, nil)
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if svc.VideoID() != "movie" {
		t.Fatalf("unexpected video id %q", svc.VideoID())
	}

	var got []player.Event
	for range 3 {
		got = append(got, <-svc.Events())
	}
	if got[0].Kind != player.EventCaptions || got[0].Lang != "en" || got[0].VideoID != "movie" {
		t.Fatalf("unexpected first event %+v", got[0])
	}
	if got[0].URL != "file://"+filepath.ToSlash(en) {
		t.Fatalf("unexpected url %q", got[0].URL)
	}
	if got[1].Lang != "zh" {
		t.Fatalf("unexpected second event %+v", got[1])
	}
	if got[2].Kind != player.EventLoaded {
		t.Fatalf("expected loaded event, got %+v", got[2])
	}
}

func TestFileServiceSubtitles(t *testing.T) {
	dir := t.TempDir()
	en := testsupport.WriteSRT(t, filepath.Join(dir, "clip.srt"),
		testsupport.Cue{Start: 10 * time.Second, End: 12 * time.Second, Text: "Hello there"},
		testsupport.Cue{Start: 3 * time.Second, End: 4 * time.Second, Text: "First"},
	)
	svc := player.NewFileService(map[string]string{"en": en}, nil)
	ctx := context.Background()

	cues, err := svc.Subtitles(ctx, "en")
	if err != nil {
		t.Fatalf("Subtitles: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "First" || cues[1].Text != "Hello there" {
		t.Fatalf("unexpected cues %+v", cues)
	}

	for _, lang := range []string{"", "fr"} {
		cues, err := svc.Subtitles(ctx, lang)
		if err != nil || cues != nil {
			t.Fatalf("lang %q: expected no cues, got %v %v", lang, cues, err)
		}
	}
}

func TestFileServiceSetLanguageEmitsOnce(t *testing.T) {
	svc := player.NewFileService(map[string]string{"en": "/nope.srt"}, nil)
	ctx := context.Background()
	svc.SetLanguage(ctx, "EN")
	svc.SetLanguage(ctx, "en")

	ev := <-svc.Events()
	if ev != player.LangChanged("en") {
		t.Fatalf("unexpected event %+v", ev)
	}
	select {
	case ev := <-svc.Events():
		t.Fatalf("unexpected extra event %+v", ev)
	default:
	}
	if svc.Language() != "en" {
		t.Fatalf("language = %q", svc.Language())
	}
}

func TestStubYieldsNothing(t *testing.T) {
	stub := player.NewStub(nil)
	if err := stub.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cues, err := stub.Subtitles(context.Background(), "en")
	if err != nil || len(cues) != 0 {
		t.Fatalf("expected no cues, got %v %v", cues, err)
	}
}

func TestPlaybackAdvancesOnlyWhilePlaying(t *testing.T) {
	fake := clock.NewFake(epoch)
	pb := player.NewPlayback(fake, 2, time.Minute)

	fake.Advance(5 * time.Second)
	if pb.Position() != 0 {
		t.Fatalf("paused playback moved to %v", pb.Position())
	}

	pb.Play()
	fake.Advance(3 * time.Second)
	if pb.Position() != 6*time.Second {
		t.Fatalf("expected 6s at 2x, got %v", pb.Position())
	}

	if paused := pb.Toggle(); !paused {
		t.Fatal("expected toggle to pause")
	}
	fake.Advance(10 * time.Second)
	if pb.Position() != 6*time.Second {
		t.Fatalf("paused position drifted to %v", pb.Position())
	}

	pb.SetSpeed(1)
	pb.Play()
	fake.Advance(time.Second)
	if pb.Position() != 7*time.Second {
		t.Fatalf("expected 7s, got %v", pb.Position())
	}

	pb.Seek(2 * time.Minute)
	if pb.Position() != time.Minute || !pb.Ended() {
		t.Fatalf("seek should clamp to duration, got %v", pb.Position())
	}
	pb.Seek(-time.Second)
	if pb.Position() != 0 {
		t.Fatalf("seek should clamp to zero, got %v", pb.Position())
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59*time.Second + 900*time.Millisecond, "00:00:59"},
		{time.Hour + 28*time.Minute + 29*time.Second, "01:28:29"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := player.FormatTime(tt.in); got != tt.want {
			t.Fatalf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeTrackerReportsChanges(t *testing.T) {
	fake := clock.NewFake(epoch)
	pb := player.NewPlayback(fake, 1, 0)
	var seen []string
	tracker := player.NewTimeTracker(pb, fake, 0, func(s string) { seen = append(seen, s) }, nil)
	tracker.Start()

	fake.Advance(time.Second)
	pb.Play()
	fake.Advance(2 * time.Second)
	pb.Pause()
	fake.Advance(2 * time.Second)
	tracker.Stop()
	pb.Play()
	fake.Advance(5 * time.Second)

	want := []string{"00:00:00", "00:00:01", "00:00:02"}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("got %v, want %v", seen, want)
		}
	}
	if tracker.Current() != "00:00:02" {
		t.Fatalf("current = %q", tracker.Current())
	}
}

func TestFileServiceNormalizesLanguageKeys(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteSRT(t, filepath.Join(dir, "show.chs.srt"),
		testsupport.Cue{Start: 0, End: time.Second, Text: "你好"})

	svc := player.NewFileService(map[string]string{"CHS": path}, nil)
	if got := svc.Languages(); len(got) != 1 || got[0] != "zh-hans" {
		t.Fatalf("languages = %v", got)
	}
	if svc.VideoID() != "show" {
		t.Fatalf("unexpected video id %q", svc.VideoID())
	}
	cues, err := svc.Subtitles(context.Background(), "zh_Hans")
	if err != nil || len(cues) != 1 {
		t.Fatalf("Subtitles(zh_Hans) = %v, %v", cues, err)
	}
}
