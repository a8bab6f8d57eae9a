// Package danmaku schedules caption fragments onto lanes and tracks them from
// creation until they leave the screen.
//
// A Manager accepts pipeline results through Submit, splits them into
// fragments, and emits multi-fragment results one at a time at a fixed
// interval. Each fragment gets a lane from the track allocator and an
// animation from the motion driver. Only the newest fragment on a lane drives
// that lane's extent. When a fragment's animation completes, the manager waits
// a short confirmation delay, reconciles the lane, removes the fragment, and
// tells the sink to unmount it.
//
// Sink methods are called with the manager lock held so renderers observe
// events in order. A Sink must not call back into the Manager.
package danmaku
