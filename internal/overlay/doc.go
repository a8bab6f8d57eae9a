// Package overlay runs one danmaku session against a player.
//
// The Overlay owns the loop that ties the other packages together: it samples
// the playback position, picks the visible subtitle cues, requests a caption
// result for each newly displayed line, and submits usable results to the
// danmaku manager. It keeps showing the last displayed cues when the window
// momentarily empties, suspends new danmaku while playback is paused, and
// re-requests the displayed lines whenever the caption style changes.
//
// Only one overlay may run per state directory; Start takes an advisory file
// lock (gofrs/flock) and fails with ErrAlreadyRunning when another session
// holds it. Each session carries a UUID used as the session_id log field.
package overlay
