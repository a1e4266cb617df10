package core

import (
	"fmt"
	"sync/atomic"

	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// validBufferUsageMask is the union of every BufferUsage flag this
// implementation recognizes. Any bit outside this mask is a caller error.
const validBufferUsageMask = types.BufferUsageMapRead |
	types.BufferUsageMapWrite |
	types.BufferUsageCopySrc |
	types.BufferUsageCopyDst |
	types.BufferUsageIndex |
	types.BufferUsageVertex |
	types.BufferUsageUniform |
	types.BufferUsageStorage |
	types.BufferUsageIndirect |
	types.BufferUsageQueryResolve

// NewDevice wraps an opened hal.Device as a HAL-backed core Device, ready
// to create resources and record commands against.
func NewDevice(halDevice hal.Device, adapter *Adapter, features types.Features, limits types.Limits, label string) *Device {
	valid := &atomic.Bool{}
	valid.Store(true)

	return &Device{
		Label:      label,
		Features:   features,
		Limits:     limits,
		raw:        NewSnatchable(halDevice),
		adapterRef: adapter,
		snatchLock: NewSnatchLock(),
		valid:      valid,
		trackers:   track.NewTrackerSet(),
		allocators: track.NewTrackerIndexAllocators(),
		lifecycle:  newLifecycleState(),
		passCache:  newPassCache(),
	}
}

// HasHAL reports whether this device owns a real backend device handle.
func (d *Device) HasHAL() bool {
	return d.raw != nil
}

// IsValid reports whether the device has not yet been destroyed. A
// legacy ID-based Device (no HAL integration) is always reported invalid.
func (d *Device) IsValid() bool {
	return d.valid != nil && d.valid.Load()
}

// SnatchLock returns the lock guarding every Snatchable resource owned by
// this device, or nil for a legacy ID-based device.
func (d *Device) SnatchLock() *SnatchLock {
	return d.snatchLock
}

// Raw returns the backend device handle, or nil if this Device has no HAL
// backing or has already been destroyed. The caller must be holding
// guard, obtained from SnatchLock().
func (d *Device) Raw(guard *SnatchGuard) hal.Device {
	if d.raw == nil {
		return nil
	}
	ptr := d.raw.Get(guard)
	if ptr == nil {
		return nil
	}
	return *ptr
}

// halRaw is an internal convenience for methods (CreateBuffer, maintain,
// ...) that need the backend handle but aren't handed a guard by their
// caller; it acquires and releases its own read guard.
func (d *Device) halRaw() hal.Device {
	if d.raw == nil || d.snatchLock == nil {
		return nil
	}
	guard := d.snatchLock.Read()
	defer guard.Release()
	return d.Raw(guard)
}

// checkValid returns ErrDeviceDestroyed if the device is no longer valid.
func (d *Device) checkValid() error {
	if !d.IsValid() {
		return fmt.Errorf("device %q: %w", d.Label, ErrDeviceDestroyed)
	}
	return nil
}

// Destroy tears down the backend device. Safe to call multiple times;
// only the first call has any effect.
func (d *Device) Destroy() {
	if d.valid == nil {
		return
	}
	if !d.valid.CompareAndSwap(true, false) {
		return
	}
	if d.raw == nil || d.snatchLock == nil {
		return
	}
	guard := d.snatchLock.Write()
	defer guard.Release()
	if ptr := d.raw.Snatch(guard); ptr != nil {
		(*ptr).Destroy()
	}
}

// AssociatedQueue returns the Queue created alongside this device, or nil
// if none has been set yet.
func (d *Device) AssociatedQueue() *Queue {
	return d.associatedQueue.Load()
}

// SetAssociatedQueue records the Queue created alongside this device.
func (d *Device) SetAssociatedQueue(queue *Queue) {
	d.associatedQueue.Store(queue)
}

// Trackers returns the device-wide resource tracker set.
func (d *Device) Trackers() *track.TrackerSet {
	return d.trackers
}

// Allocators returns the device's tracker-index allocators.
func (d *Device) Allocators() *track.TrackerIndexAllocators {
	return d.allocators
}

// CreateBuffer validates desc against this device's limits and creates a
// backend buffer, mirroring wgpu-core's Global::device_create_buffer
// validation order: destroyed device, zero size, oversize, usage
// emptiness/validity, then the MAP_READ/MAP_WRITE exclusivity rule.
func (d *Device) CreateBuffer(desc *types.BufferDescriptor) (*Buffer, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, NewValidationError("Buffer", "descriptor", "must not be nil")
	}
	if desc.Size == 0 {
		return nil, &CreateBufferError{Kind: CreateBufferErrorZeroSize, Label: desc.Label}
	}
	if desc.Size > d.Limits.MaxBufferSize {
		return nil, &CreateBufferError{
			Kind:          CreateBufferErrorMaxBufferSize,
			Label:         desc.Label,
			RequestedSize: desc.Size,
			MaxSize:       d.Limits.MaxBufferSize,
		}
	}
	if desc.Usage == 0 {
		return nil, &CreateBufferError{Kind: CreateBufferErrorEmptyUsage, Label: desc.Label}
	}
	if desc.Usage&^validBufferUsageMask != 0 {
		return nil, &CreateBufferError{Kind: CreateBufferErrorInvalidUsage, Label: desc.Label}
	}
	if desc.Usage&types.BufferUsageMapRead != 0 && desc.Usage&types.BufferUsageMapWrite != 0 {
		return nil, &CreateBufferError{Kind: CreateBufferErrorMapReadWriteExclusive, Label: desc.Label}
	}

	halDevice := d.halRaw()
	if halDevice == nil {
		return nil, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label, HALError: ErrDeviceDestroyed}
	}

	alignedSize := desc.Size
	if rem := alignedSize % 4; rem != 0 {
		alignedSize += 4 - rem
	}

	halBuf, err := halDevice.CreateBuffer(&hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             alignedSize,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	})
	if err != nil {
		return nil, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label, HALError: err}
	}

	buf := NewBuffer(halBuf, d, desc.Usage, desc.Size, desc.Label)
	if desc.MappedAtCreation {
		buf.SetMapState(BufferMapStateMapped)
		buf.MarkInitialized(0, desc.Size)
	}
	return buf, nil
}
