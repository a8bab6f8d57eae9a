// Package track owns the fixed pool of horizontal lanes danmaku fragments
// travel in.
//
// Each lane holds a single extent: the horizontal boundary, in percent of the
// container width, of the newest fragment placed on it. Zero means the lane
// is free. Assign picks the least occupied lane and falls back to a random
// lane when every lane is saturated, so overlap is possible only under
// saturation. Indices outside the pool are logged and ignored; nothing here
// panics across the package contract.
package track
