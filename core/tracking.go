package core

import "github.com/latticegpu/wgpucore/core/track"

// TrackerIndex and InvalidTrackerIndex are re-exported from the track
// package so that resource types in this package (Buffer, Texture, ...)
// can describe their tracking identity without every caller importing
// track directly.
type TrackerIndex = track.TrackerIndex

// InvalidTrackerIndex marks a resource that has not been assigned a slot
// in any device tracker (for example, a buffer created without a device).
const InvalidTrackerIndex = track.InvalidTrackerIndex
