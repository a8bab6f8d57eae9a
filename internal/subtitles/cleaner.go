package subtitles

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)opensubtitles`),
	regexp.MustCompile(`(?i)subtitles? by`),
	regexp.MustCompile(`(?i)synced? and corrected`),
	regexp.MustCompile(`(?i)advertise (your|yours?) product`),
	regexp.MustCompile(`(?i)http(s)?://`),
	regexp.MustCompile(`(?i)\bwww\.`),
	regexp.MustCompile(`(?i)\bsubscene\b`),
	regexp.MustCompile(`(?i)\byts\b`),
	regexp.MustCompile(`(?i)\byify\b`),
}

var (
	markupTag   = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	assOverride = regexp.MustCompile(`\{\\[^}]*\}`)
)

// Clean strips markup, applies NFC normalization, and collapses whitespace so
// identical lines compare equal regardless of source encoding.
func Clean(text string) string {
	text = markupTag.ReplaceAllString(text, "")
	text = assOverride.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\N`, " ")
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(text), " ")
}

// IsAdvertisement reports whether a cue is a subtitle-site credit or link
// rather than dialogue.
func IsAdvertisement(text string) bool {
	payload := strings.ToLower(strings.TrimSpace(text))
	if payload == "" {
		return false
	}
	for _, pattern := range adPatterns {
		if pattern.MatchString(payload) {
			return true
		}
	}
	return false
}
