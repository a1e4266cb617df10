package core

import (
	"sync/atomic"

	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// Resource placeholder types - will be properly defined later.
// These types represent the actual WebGPU resources managed by the hub.

// Adapter represents a physical GPU adapter.
type Adapter struct {
	// Info contains information about the adapter.
	Info types.AdapterInfo
	// Features contains the features supported by the adapter.
	Features types.Features
	// Limits contains the resource limits of the adapter.
	Limits types.Limits
	// Backend identifies which graphics backend this adapter uses.
	Backend types.Backend
}

// Device represents a logical GPU device.
//
// A Device constructed through the legacy ID-based API (DeviceCreateBuffer
// and friends) carries only the Adapter/Label/Features/Limits/Queue fields;
// its HAL-integration fields are left nil and it behaves as already
// destroyed (see IsValid). A Device constructed with NewDevice owns a real
// hal.Device and participates in snatch-guarded destruction.
type Device struct {
	// Adapter is the adapter this device was created from.
	Adapter AdapterID
	// Label is a debug label for the device.
	Label string
	// Features contains the features enabled on this device.
	Features types.Features
	// Limits contains the resource limits of this device.
	Limits types.Limits
	// Queue is the device's default queue.
	Queue QueueID

	// raw wraps the backend device handle so the HAL object can be
	// snatched for destruction while command encoders concurrently read
	// it under the same device's snatch lock. Nil for legacy ID-based
	// devices.
	raw *Snatchable[hal.Device]
	// adapterRef is the adapter this HAL device was opened from.
	adapterRef *Adapter
	// snatchLock guards every Snatchable owned by resources of this
	// device (buffers, textures, ...). Nil for legacy ID-based devices.
	snatchLock *SnatchLock
	// valid is nil for legacy ID-based devices (always reported invalid),
	// non-nil and true once NewDevice has run until Destroy fires.
	valid *atomic.Bool
	// associatedQueue is the Queue created for this device, set once by
	// whatever constructs the pair (CreateDevice equivalent for the HAL
	// path).
	associatedQueue atomic.Pointer[Queue]
	// trackers is the device-wide resource tracker: the ground truth
	// usage state every pass/queue submission stitches transitions
	// against.
	trackers *track.TrackerSet
	// allocators hand out TrackerIndex values to newly created resources.
	allocators *track.TrackerIndexAllocators
	// lifecycle holds the mapped/referenced/active/free queues the
	// maintenance loop drains.
	lifecycle *lifecycleState
	// passCache tracks framebuffer cache keys for the maintain() triage sweep.
	passCache *passCache
}

// Queue represents a command queue for a device.
type Queue struct {
	// Device is the device this queue belongs to.
	Device DeviceID
	// Label is a debug label for the queue.
	Label string
}

// Buffer represents a GPU buffer.
//
// A zero-value Buffer{} (the legacy ID-based placeholder) has no HAL
// backing and is considered permanently destroyed; see HasHAL/IsDestroyed.
type Buffer struct {
	// raw wraps the backend buffer handle so it can be destroyed exactly
	// once while still being read by concurrent command recording. Nil
	// for legacy ID-based buffers.
	raw *Snatchable[hal.Buffer]
	// device is the owning device; Raw/Destroy take its SnatchLock.
	device *Device
	// usage is the set of ways this buffer may be used.
	usage types.BufferUsage
	// size is the size requested by the application, in bytes. The HAL
	// may have been given a larger, alignment-padded size.
	size uint64
	// label is a debug label.
	label string
	// destroyed marks this buffer as snatched; nil for legacy buffers.
	destroyed *atomic.Bool
	// mapState tracks CPU-mapping lifecycle; nil for legacy buffers.
	mapState *atomic.Int32
	// initTracker records which byte ranges have been written, so
	// unwritten regions can be lazily zero-cleared before they're read.
	initTracker *BufferInitTracker
	// trackingData gives this buffer's tracker index within its
	// device's resource tracker.
	trackingData *track.TrackingData
	// lifeGuard records the last queue submission that referenced this
	// buffer, so the lifecycle engine knows when a deferred Destroy can
	// actually free the backend handle. Nil for legacy buffers.
	lifeGuard *LifeGuard
}

// Texture represents a GPU texture.
//
// A zero-value Texture{} (the legacy ID-based placeholder) has no HAL
// backing and is considered permanently destroyed; see HasHAL/IsDestroyed.
type Texture struct {
	raw             hal.Texture
	device          *Device
	usage           types.TextureUsage
	format          types.TextureFormat
	sampleCount     uint32
	mipLevelCount   uint32
	arrayLayerCount uint32
	label           string
	destroyed       *atomic.Bool
	trackingData    *track.TrackingData
	lifeGuard       *LifeGuard
}

// TextureView represents a view into a texture.
type TextureView struct {
	raw          hal.TextureView
	device       *Device
	texture      *Texture
	format       types.TextureFormat
	destroyed    *atomic.Bool
	trackingData *track.TrackingData
	lifeGuard    *LifeGuard
}

// Sampler represents a texture sampler.
type Sampler struct {
	raw    hal.Sampler
	device *Device
}

// BindGroupLayout represents the layout of a bind group.
//
// id is a synthetic identifier minted at creation (see idseq.go), distinct
// from trackingData's tracker index: it exists purely so the pass-level
// Binder (which operates on ID[Marker] values, not pointers) can compare
// bind group layouts for equality without a Hub registry lookup.
type BindGroupLayout struct {
	raw          hal.BindGroupLayout
	device       *Device
	id           BindGroupLayoutID
	entries      []types.BindGroupLayoutEntry
	trackingData *track.TrackingData
}

// PipelineLayout represents the layout of a pipeline.
type PipelineLayout struct {
	raw              hal.PipelineLayout
	device           *Device
	id               PipelineLayoutID
	bindGroupLayouts []*BindGroupLayout
}

// bindGroupBufferUse records one buffer a bind group references, and the
// usage it contributes, so the buffer's usage can be merged into a pass's
// tracker scope when the group is bound (§4.3 set_bind_group).
type bindGroupBufferUse struct {
	index  track.TrackerIndex
	usage  track.BufferUses
	buffer *Buffer
}

// bindGroupTextureUse is bindGroupBufferUse's texture counterpart.
type bindGroupTextureUse struct {
	index   track.TrackerIndex
	rng     track.SubresourceRange
	usage   track.TextureUses
	texture *Texture
}

// BindGroup represents a collection of resources bound together.
//
// It caches the transitive closure of buffer/texture tracker indices its
// entries reference (computed once at creation, grounded on wgpu-native's
// BindGroup::used), so CoreRenderPassEncoder/CoreComputePassEncoder.SetBindGroup
// can merge that usage into the pass's tracker scope without re-walking the
// bind group's descriptor on every bind.
type BindGroup struct {
	raw                hal.BindGroup
	device             *Device
	id                 BindGroupID
	layout             *BindGroupLayout
	dynamicOffsetCount int
	bufferUses         []bindGroupBufferUse
	textureUses        []bindGroupTextureUse
	trackingData       *track.TrackingData
	lifeGuard          *LifeGuard
}

// ShaderModule represents a compiled shader module.
type ShaderModule struct{}

// RenderPipeline represents a render pipeline.
//
// context/sampleCount are cached from the descriptor's fragment targets and
// depth/stencil state at creation time, so SetPipeline can check
// compatibility against the active render pass without re-deriving them
// from the HAL pipeline object (§4.3 "p.context.compatible(pass.context)").
type RenderPipeline struct {
	raw           hal.RenderPipeline
	device        *Device
	layout        *PipelineLayout
	context       RenderPassContext
	sampleCount   uint32
	vertexLayouts []types.VertexBufferLayout
}

// ComputePipeline represents a compute pipeline.
type ComputePipeline struct {
	raw    hal.ComputePipeline
	device *Device
	layout *PipelineLayout
}

// CommandEncoder represents a command encoder.
type CommandEncoder struct{}

// CommandBuffer represents a recorded command buffer.
type CommandBuffer struct{}

// QuerySet represents a set of queries.
type QuerySet struct{}

// Surface represents a rendering surface.
type Surface struct{}
