package language

import (
	"path/filepath"
	"strings"

	textlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases covers legacy ISO 639-2 codes, English words, and the script
// shorthands common in fan subtitle file names.
var aliases = map[string]string{
	"eng":     "en",
	"english": "en",
	"spa":     "es",
	"fra":     "fr",
	"fre":     "fr",
	"deu":     "de",
	"ger":     "de",
	"ita":     "it",
	"por":     "pt",
	"jpn":     "ja",
	"jp":      "ja",
	"kor":     "ko",
	"rus":     "ru",
	"zho":     "zh",
	"chi":     "zh",
	"chinese": "zh",
	"chs":     "zh-hans",
	"sc":      "zh-hans",
	"gb":      "zh-hans",
	"cht":     "zh-hant",
	"tc":      "zh-hant",
	"big5":    "zh-hant",
}

// Normalize returns the lowercase BCP 47 form of code. Codes that do not parse
// as a language tag are trimmed and lowercased so arbitrary track keys still
// round-trip.
func Normalize(code string) string {
	cleaned := strings.ToLower(strings.TrimSpace(code))
	if cleaned == "" {
		return ""
	}
	cleaned = strings.ReplaceAll(cleaned, "_", "-")
	if mapped, ok := aliases[cleaned]; ok {
		return mapped
	}
	tag, err := textlang.Parse(cleaned)
	if err != nil {
		return cleaned
	}
	return strings.ToLower(tag.String())
}

// Known reports whether code names a recognized language.
func Known(code string) bool {
	cleaned := Normalize(code)
	if cleaned == "" {
		return false
	}
	tag, err := textlang.Parse(cleaned)
	if err != nil {
		return false
	}
	base, confidence := tag.Base()
	return confidence != textlang.No && base.String() != "und"
}

// DisplayName returns the language's own name for code, "Unknown" for empty
// input, or the uppercased code when it is not a language.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if normalized == "" {
		return "Unknown"
	}
	if !Known(normalized) {
		return strings.ToUpper(normalized)
	}
	tag := textlang.Make(normalized)
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(normalized)
}

// FromFilename extracts the language tag from names like "movie.en.srt" or
// "movie.chs.ass". It returns "" when the name carries no recognizable tag.
func FromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(base)
	if ext == "" || len(ext) > 9 {
		return ""
	}
	candidate := strings.TrimPrefix(ext, ".")
	if !Known(candidate) {
		return ""
	}
	return Normalize(candidate)
}

// NormalizeList normalizes and deduplicates codes, preserving first-seen order.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized := Normalize(code)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
