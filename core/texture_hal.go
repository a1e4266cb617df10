package core

import (
	"sync/atomic"

	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// NewTexture wraps a backend texture as a HAL-backed core Texture owned by
// device. Like NewBuffer, tracking is allocated lazily via ensureTracked.
func NewTexture(halTexture hal.Texture, device *Device, desc *types.TextureDescriptor) *Texture {
	mipLevelCount := uint32(1)
	sampleCount := uint32(1)
	var format types.TextureFormat
	var usage types.TextureUsage
	var label string
	arrayLayerCount := uint32(1)
	if desc != nil {
		if desc.MipLevelCount > 0 {
			mipLevelCount = desc.MipLevelCount
		}
		if desc.SampleCount > 0 {
			sampleCount = desc.SampleCount
		}
		format = desc.Format
		usage = desc.Usage
		label = desc.Label
		if desc.Size.DepthOrArrayLayers > 0 {
			arrayLayerCount = desc.Size.DepthOrArrayLayers
		}
	}
	return &Texture{
		raw:             halTexture,
		device:          device,
		usage:           usage,
		format:          format,
		sampleCount:     sampleCount,
		mipLevelCount:   mipLevelCount,
		arrayLayerCount: arrayLayerCount,
		label:           label,
		destroyed:       &atomic.Bool{},
		trackingData:    track.NewTrackingData(nil),
		lifeGuard:       NewLifeGuard(),
	}
}

// HasHAL reports whether this texture owns a real backend handle.
func (t *Texture) HasHAL() bool { return t.raw != nil }

// LifeGuard returns the texture's submission-tracking life guard.
func (t *Texture) LifeGuard() *LifeGuard { return t.lifeGuard }

// Device returns the owning device.
func (t *Texture) Device() *Device { return t.device }

// Format returns the texture's pixel format.
func (t *Texture) Format() types.TextureFormat { return t.format }

// Usage returns the texture's usage flags.
func (t *Texture) Usage() types.TextureUsage { return t.usage }

// SampleCount returns the number of samples per pixel.
func (t *Texture) SampleCount() uint32 { return t.sampleCount }

// MipLevelCount returns the number of mip levels.
func (t *Texture) MipLevelCount() uint32 { return t.mipLevelCount }

// ArrayLayerCount returns the number of array layers.
func (t *Texture) ArrayLayerCount() uint32 { return t.arrayLayerCount }

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// Raw returns the backend texture handle, or nil once destroyed.
func (t *Texture) Raw() hal.Texture {
	if t.destroyed != nil && t.destroyed.Load() {
		return nil
	}
	return t.raw
}

// IsDestroyed reports whether the texture has been destroyed.
func (t *Texture) IsDestroyed() bool {
	if !t.HasHAL() {
		return true
	}
	if t.destroyed == nil {
		return false
	}
	return t.destroyed.Load()
}

// Destroy destroys the backend texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if !t.HasHAL() || t.destroyed == nil {
		return
	}
	if !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	t.raw.Destroy()
}

// TrackingData returns this texture's tracker-index assignment.
func (t *Texture) TrackingData() *track.TrackingData { return t.trackingData }

// ensureTracked allocates this texture a real index in its device's
// texture tracker allocator the first time it is actually used.
func (t *Texture) ensureTracked() track.TrackerIndex {
	if t.device == nil || t.device.allocators == nil {
		return track.InvalidTrackerIndex
	}
	if t.trackingData == nil || !t.trackingData.Index().IsValid() {
		t.trackingData = track.NewTrackingData(t.device.allocators.Textures)
	}
	return t.trackingData.Index()
}

// fullRange is the conservative whole-resource subresource range used when
// a caller (e.g. bind group creation) references a texture without a more
// precise view-derived range.
func (t *Texture) fullRange() track.SubresourceRange {
	return track.SubresourceRange{
		Aspects:    types.TextureAspectAll,
		LevelStart: 0,
		LevelEnd:   t.mipLevelCount,
		LayerStart: 0,
		LayerEnd:   t.arrayLayerCount,
	}
}

// NewTextureView wraps a backend texture view as a HAL-backed core
// TextureView, carrying enough metadata (format, sample count, inherited
// from its parent texture) for render-pass attachment validation.
func NewTextureView(halView hal.TextureView, device *Device, texture *Texture, desc *types.TextureViewDescriptor) *TextureView {
	format := types.TextureFormatUndefined
	if texture != nil {
		format = texture.Format()
	}
	if desc != nil && desc.Format != types.TextureFormatUndefined {
		format = desc.Format
	}
	return &TextureView{
		raw:          halView,
		device:       device,
		texture:      texture,
		format:       format,
		destroyed:    &atomic.Bool{},
		trackingData: track.NewTrackingData(nil),
		lifeGuard:    NewLifeGuard(),
	}
}

// HasHAL reports whether this view owns a real backend handle.
func (v *TextureView) HasHAL() bool { return v.raw != nil }

// LifeGuard returns the view's submission-tracking life guard.
func (v *TextureView) LifeGuard() *LifeGuard { return v.lifeGuard }

// Device returns the owning device.
func (v *TextureView) Device() *Device { return v.device }

// Texture returns the texture this view was created from.
func (v *TextureView) Texture() *Texture { return v.texture }

// Format returns the view's effective pixel format.
func (v *TextureView) Format() types.TextureFormat { return v.format }

// SampleCount returns the sample count of the underlying texture.
func (v *TextureView) SampleCount() uint32 {
	if v.texture == nil {
		return 1
	}
	return v.texture.SampleCount()
}

// Raw returns the backend texture view handle, or nil once destroyed.
func (v *TextureView) Raw() hal.TextureView {
	if v.destroyed != nil && v.destroyed.Load() {
		return nil
	}
	return v.raw
}

// IsDestroyed reports whether the view has been destroyed.
func (v *TextureView) IsDestroyed() bool {
	if !v.HasHAL() {
		return true
	}
	if v.destroyed == nil {
		return false
	}
	return v.destroyed.Load()
}

// Destroy destroys the backend texture view. Safe to call more than once.
func (v *TextureView) Destroy() {
	if !v.HasHAL() || v.destroyed == nil {
		return
	}
	if !v.destroyed.CompareAndSwap(false, true) {
		return
	}
	v.raw.Destroy()
}

// TrackingData returns this view's tracker-index assignment.
func (v *TextureView) TrackingData() *track.TrackingData { return v.trackingData }

// ensureTracked allocates this view a real index in its device's view
// tracker allocator the first time it is actually used.
func (v *TextureView) ensureTracked() track.TrackerIndex {
	if v.device == nil || v.device.allocators == nil {
		return track.InvalidTrackerIndex
	}
	if v.trackingData == nil || !v.trackingData.Index().IsValid() {
		v.trackingData = track.NewTrackingData(v.device.allocators.TextureViews)
	}
	return v.trackingData.Index()
}
