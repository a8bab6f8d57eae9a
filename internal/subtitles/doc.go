// Package subtitles loads subtitle cues and answers which of them are on
// screen at a given playback time.
//
// Load reads SRT, WebVTT, SSA/ASS, STL, and TTML files through go-astisub and
// normalizes cue text. Window is a pure function over a cue list: every cue
// covering t, or else the most recently ended cue while it is still inside
// the retention period.
package subtitles
