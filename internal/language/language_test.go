package language

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{" eng ", "en"},
		{"English", "en"},
		{"fre", "fr"},
		{"chi", "zh"},
		{"zho", "zh"},
		{"chs", "zh-hans"},
		{"CHT", "zh-hant"},
		{"zh-Hans", "zh-hans"},
		{"zh_TW", "zh-tw"},
		{"default", "default"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestKnown(t *testing.T) {
	for _, code := range []string{"en", "eng", "chs", "ja", "zh-Hant"} {
		if !Known(code) {
			t.Errorf("Known(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "default", "x1"} {
		if Known(code) {
			t.Errorf("Known(%q) = true, want false", code)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("eng"); got != "English" {
		t.Errorf("DisplayName(eng) = %q, want English", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(\"\") = %q, want Unknown", got)
	}
	if got := DisplayName("default"); got != "DEFAULT" {
		t.Errorf("DisplayName(default) = %q, want DEFAULT", got)
	}
	if got := DisplayName("zh"); got == "" || got == "ZH" {
		t.Errorf("DisplayName(zh) = %q, want a native name", got)
	}
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/videos/movie.en.srt", "en"},
		{"movie.chs.ass", "zh-hans"},
		{"Show.S01E01.eng.srt", "en"},
		{"movie.srt", ""},
		{"movie.final.srt", ""},
	}
	for _, tt := range tests {
		if got := FromFilename(tt.path); got != tt.expected {
			t.Errorf("FromFilename(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{"EN", "eng", "", "chs", "zh-Hans", "ja"})
	want := []string{"en", "zh-hans", "ja"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList(nil) != nil {
		t.Fatal("NormalizeList(nil) should be nil")
	}
}
