// Package player abstracts the video player the overlay follows.
//
// A Service supplies subtitle cues per language and announces caption
// availability and language switches on its Events channel. FileService
// reads subtitle files from disk; Stub is selected when no source is
// configured and never yields cues.
//
// Playback models the player's clock (position, pause state, speed) and
// TimeTracker turns it into the once-a-second HH:MM:SS readout shown next to
// the captions.
package player
