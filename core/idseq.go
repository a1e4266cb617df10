package core

import "sync/atomic"

// Synthetic ID sequences for HAL-integrated resources that are identified
// by pointer (no Hub registry entry) but still need an ID[Marker] value so
// the Binder can compare them for equality, grounded on wgpu-native's
// Binder operating over BindGroupLayoutId/BindGroupId rather than raw
// pointers.
var (
	bindGroupLayoutSeq atomic.Uint32
	pipelineLayoutSeq  atomic.Uint32
	bindGroupSeq       atomic.Uint32
)

func newBindGroupLayoutID() BindGroupLayoutID {
	return NewID[bindGroupLayoutMarker](Index(bindGroupLayoutSeq.Add(1)), 1)
}

func newPipelineLayoutID() PipelineLayoutID {
	return NewID[pipelineLayoutMarker](Index(pipelineLayoutSeq.Add(1)), 1)
}

func newBindGroupID() BindGroupID {
	return NewID[bindGroupMarker](Index(bindGroupSeq.Add(1)), 1)
}
