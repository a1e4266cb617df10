package core

import (
	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// NewBindGroupLayout wraps a backend bind group layout, minting a synthetic
// BindGroupLayoutID so Binder can compare layouts by value.
func NewBindGroupLayout(raw hal.BindGroupLayout, device *Device, entries []types.BindGroupLayoutEntry) *BindGroupLayout {
	return &BindGroupLayout{
		raw:          raw,
		device:       device,
		id:           newBindGroupLayoutID(),
		entries:      entries,
		trackingData: track.NewTrackingData(nil),
	}
}

// HasHAL reports whether this layout owns a real backend handle.
func (l *BindGroupLayout) HasHAL() bool { return l.raw != nil }

// Raw returns the backend bind group layout handle.
func (l *BindGroupLayout) Raw() hal.BindGroupLayout { return l.raw }

// ID returns this layout's synthetic identifier.
func (l *BindGroupLayout) ID() BindGroupLayoutID { return l.id }

// Entries returns the layout's binding declarations.
func (l *BindGroupLayout) Entries() []types.BindGroupLayoutEntry { return l.entries }

// Destroy destroys the backend bind group layout.
func (l *BindGroupLayout) Destroy() {
	if l.raw != nil {
		l.raw.Destroy()
	}
}

// NewPipelineLayout wraps a backend pipeline layout, minting a synthetic
// PipelineLayoutID for the Binder and recording the bind group layouts it
// was built from (needed by SetPipeline to re-expect each slot).
func NewPipelineLayout(raw hal.PipelineLayout, device *Device, bindGroupLayouts []*BindGroupLayout) *PipelineLayout {
	return &PipelineLayout{
		raw:              raw,
		device:           device,
		id:               newPipelineLayoutID(),
		bindGroupLayouts: bindGroupLayouts,
	}
}

// HasHAL reports whether this layout owns a real backend handle.
func (l *PipelineLayout) HasHAL() bool { return l.raw != nil }

// Raw returns the backend pipeline layout handle.
func (l *PipelineLayout) Raw() hal.PipelineLayout { return l.raw }

// ID returns this layout's synthetic identifier.
func (l *PipelineLayout) ID() PipelineLayoutID { return l.id }

// BindGroupLayoutAt returns the bind group layout expected at slot i, or
// nil if the pipeline layout has fewer than i+1 slots.
func (l *PipelineLayout) BindGroupLayoutAt(i int) *BindGroupLayout {
	if i < 0 || i >= len(l.bindGroupLayouts) {
		return nil
	}
	return l.bindGroupLayouts[i]
}

// Count returns the number of bind group layout slots.
func (l *PipelineLayout) Count() int { return len(l.bindGroupLayouts) }

// Destroy destroys the backend pipeline layout.
func (l *PipelineLayout) Destroy() {
	if l.raw != nil {
		l.raw.Destroy()
	}
}

// BindGroupEntryResource associates one bind group entry with the actual
// core resource it references (if any), so NewBindGroup can compute the
// transitive closure of buffer/texture tracker usage the group contributes
// when bound into a pass (grounded on wgpu-native's BindGroup::used).
type BindGroupEntryResource struct {
	Buffer       *Buffer
	BufferUsage  track.BufferUses
	TextureView  *TextureView
	TextureUsage track.TextureUses
}

// NewBindGroup wraps a backend bind group, computing and caching the set
// of buffer/texture tracker indices (and the usage each contributes) that
// resources holds, so SetBindGroup never has to re-walk entries.
func NewBindGroup(raw hal.BindGroup, device *Device, layout *BindGroupLayout, dynamicOffsetCount int, resources []BindGroupEntryResource) *BindGroup {
	g := &BindGroup{
		raw:                raw,
		device:             device,
		id:                 newBindGroupID(),
		layout:             layout,
		dynamicOffsetCount: dynamicOffsetCount,
		trackingData:       track.NewTrackingData(nil),
		lifeGuard:          NewLifeGuard(),
	}

	for _, r := range resources {
		if r.Buffer != nil {
			idx := r.Buffer.ensureTracked()
			if idx.IsValid() {
				g.bufferUses = append(g.bufferUses, bindGroupBufferUse{index: idx, usage: r.BufferUsage, buffer: r.Buffer})
			}
		}
		if r.TextureView != nil {
			tex := r.TextureView.Texture()
			if tex != nil {
				idx := tex.ensureTracked()
				if idx.IsValid() {
					g.textureUses = append(g.textureUses, bindGroupTextureUse{
						index:   idx,
						rng:     tex.fullRange(),
						usage:   r.TextureUsage,
						texture: tex,
					})
				}
			}
		}
	}

	return g
}

// HasHAL reports whether this bind group owns a real backend handle.
func (g *BindGroup) HasHAL() bool { return g.raw != nil }

// Raw returns the backend bind group handle.
func (g *BindGroup) Raw() hal.BindGroup { return g.raw }

// ID returns this bind group's synthetic identifier.
func (g *BindGroup) ID() BindGroupID { return g.id }

// Layout returns the bind group layout this group was created against.
func (g *BindGroup) Layout() *BindGroupLayout { return g.layout }

// DynamicOffsetCount returns the number of dynamic offsets SetBindGroup
// must be given for this group.
func (g *BindGroup) DynamicOffsetCount() int { return g.dynamicOffsetCount }

// LifeGuard returns the bind group's submission-tracking life guard.
func (g *BindGroup) LifeGuard() *LifeGuard { return g.lifeGuard }

// ensureTracked allocates this bind group a real index in its device's
// bind-group tracker allocator the first time it is actually bound.
func (g *BindGroup) ensureTracked() track.TrackerIndex {
	if g.device == nil || g.device.allocators == nil {
		return track.InvalidTrackerIndex
	}
	if g.trackingData == nil || !g.trackingData.Index().IsValid() {
		g.trackingData = track.NewTrackingData(g.device.allocators.BindGroups)
	}
	return g.trackingData.Index()
}

// mergeUsageInto merges this bind group's cached buffer/texture usage into
// scope, so binding it into a pass extends the pass's tracker scope with
// every resource the group transitively references (§4.3 set_bind_group).
func (g *BindGroup) mergeUsageInto(scope *track.UsageScope) error {
	bufferIndices := make([]track.TrackerIndex, 0, len(g.bufferUses))
	for _, bu := range g.bufferUses {
		if err := scope.Buffers.SetUsage(bu.index, bu.usage); err != nil {
			return err
		}
		bufferIndices = append(bufferIndices, bu.index)
	}
	textureIndices := make([]track.TrackerIndex, 0, len(g.textureUses))
	for _, tu := range g.textureUses {
		if err := scope.Textures.SetUsage(tu.index, tu.rng, tu.usage); err != nil {
			return err
		}
		textureIndices = append(textureIndices, tu.index)
	}
	if idx := g.ensureTracked(); idx.IsValid() {
		scope.BindGroups.Insert(idx, bufferIndices, textureIndices)
	}
	return nil
}

// Destroy destroys the backend bind group.
func (g *BindGroup) Destroy() {
	if g.raw != nil {
		g.raw.Destroy()
	}
}
