// Command danmaku overlays machine-generated scrolling captions on a
// subtitle-driven playback.
//
// Subcommands:
//
//	play       run the overlay against a subtitle file (terminal or headless)
//	translate  generate danmaku for one or more lines of text
//	style      list, show, or persist the caption style
//	subs       inspect a subtitle file and its visibility window
//	config     create or validate the configuration file
package main
