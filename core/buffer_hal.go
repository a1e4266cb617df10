package core

import (
	"sync/atomic"

	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// NewBuffer wraps a backend buffer as a HAL-backed core Buffer owned by
// device. The buffer is not registered in the device's tracker here;
// callers that need it tracked (CreateBuffer's caller, or bind group
// creation) insert it via device.Allocators()/device.Trackers().
func NewBuffer(halBuffer hal.Buffer, device *Device, usage types.BufferUsage, size uint64, label string) *Buffer {
	destroyed := &atomic.Bool{}
	mapState := &atomic.Int32{}

	// TrackingData is allocated lazily against a nil allocator until the
	// buffer is actually inserted into its device's tracker (bind group
	// creation, or first use in a command encoder); until then its index
	// is InvalidTrackerIndex.
	return &Buffer{
		raw:          NewSnatchable(halBuffer),
		device:       device,
		usage:        usage,
		size:         size,
		label:        label,
		destroyed:    destroyed,
		mapState:     mapState,
		initTracker:  NewBufferInitTracker(size),
		trackingData: track.NewTrackingData(nil),
		lifeGuard:    NewLifeGuard(),
	}
}

// HasHAL reports whether this buffer owns a real backend handle.
func (b *Buffer) HasHAL() bool {
	return b.raw != nil
}

// Device returns the owning device, or nil for a legacy ID-based buffer.
func (b *Buffer) Device() *Device {
	return b.device
}

// Usage returns the buffer's usage flags.
func (b *Buffer) Usage() types.BufferUsage {
	return b.usage
}

// Size returns the size requested when the buffer was created.
func (b *Buffer) Size() uint64 {
	return b.size
}

// Label returns the buffer's debug label.
func (b *Buffer) Label() string {
	return b.label
}

// Raw returns the backend buffer handle, or nil if the buffer has no HAL
// backing or has already been destroyed. Callers must be holding a
// SnatchGuard from the owning device's SnatchLock.
func (b *Buffer) Raw(guard *SnatchGuard) hal.Buffer {
	if b.raw == nil {
		return nil
	}
	ptr := b.raw.Get(guard)
	if ptr == nil {
		return nil
	}
	return *ptr
}

// IsDestroyed reports whether the buffer has been destroyed. A buffer
// with no HAL backing (the legacy ID-based placeholder) is always
// considered destroyed.
func (b *Buffer) IsDestroyed() bool {
	if !b.HasHAL() {
		return true
	}
	if b.destroyed == nil {
		return false
	}
	return b.destroyed.Load()
}

// Destroy snatches and destroys the backend buffer. Safe to call more
// than once; only the first call has any effect.
func (b *Buffer) Destroy() {
	if !b.HasHAL() || b.destroyed == nil {
		return
	}
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	if b.device == nil || b.device.snatchLock == nil {
		return
	}
	// Resolve the backend device handle before taking the write guard:
	// halRaw() takes its own read guard on the same lock, which would
	// deadlock against sync.RWMutex if taken while the write guard below
	// is held.
	halDevice := b.device.halRaw()

	guard := b.device.snatchLock.Write()
	defer guard.Release()

	ptr := b.raw.Snatch(guard)
	if ptr == nil {
		return
	}
	if halDevice != nil {
		halDevice.DestroyBuffer(*ptr)
	}
}

// MapState returns the buffer's current CPU-mapping state.
func (b *Buffer) MapState() BufferMapState {
	if b.mapState == nil {
		return BufferMapStateIdle
	}
	return BufferMapState(b.mapState.Load())
}

// SetMapState updates the buffer's CPU-mapping state.
func (b *Buffer) SetMapState(state BufferMapState) {
	if b.mapState == nil {
		return
	}
	b.mapState.Store(int32(state))
}

// IsInitialized reports whether [offset, offset+size) has been written.
func (b *Buffer) IsInitialized(offset, size uint64) bool {
	return b.initTracker.IsInitialized(offset, size)
}

// MarkInitialized records [offset, offset+size) as written.
func (b *Buffer) MarkInitialized(offset, size uint64) {
	b.initTracker.MarkInitialized(offset, size)
}

// TrackingData returns this buffer's tracker-index assignment.
func (b *Buffer) TrackingData() *track.TrackingData {
	return b.trackingData
}

// ensureTracked allocates this buffer a real index in its device's buffer
// tracker allocator the first time it is actually used (queue submission,
// bind group creation, ...), rather than eagerly at creation. Returns
// InvalidTrackerIndex for a legacy or deviceless buffer.
func (b *Buffer) ensureTracked() track.TrackerIndex {
	if b.device == nil || b.device.allocators == nil {
		return track.InvalidTrackerIndex
	}
	if b.trackingData == nil || !b.trackingData.Index().IsValid() {
		b.trackingData = track.NewTrackingData(b.device.allocators.Buffers)
	}
	return b.trackingData.Index()
}
