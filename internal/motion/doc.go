// Package motion animates danmaku fragments from the right edge of the
// container to fully past the left edge and reports their horizontal extent
// while they travel.
//
// Two drivers implement the same contract. TransitionDriver hands the start
// time and duration to a renderer that interpolates on its own and only
// samples the trajectory for extent reports. SamplingDriver drives the
// animation manually on a frame ticker for renderers that cannot interpolate.
// Select picks one at startup by probing the renderer.
//
// Both drivers report at most once per report interval, finish with a final
// report at EndExtent, and call done exactly once unless the animation is
// stopped first.
package motion
