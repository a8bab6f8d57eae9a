// Package render draws danmaku fragments.
//
// Terminal implements danmaku.Sink on a tcell screen. It accepts declarative
// transitions, so motion.Select picks the transition driver for it and the
// renderer interpolates positions on every frame. LogSink is the headless
// counterpart that only logs lifecycle events.
package render
