package core

import (
	"sync"

	"github.com/latticegpu/wgpucore/types"
)

// colorAttachmentKey is the render-pass-compatibility-relevant slice of a
// color attachment: the HAL render pass object only depends on format,
// load/store ops, and whether a resolve target is present, not on which
// concrete view is bound.
type colorAttachmentKey struct {
	Format     types.TextureFormat
	LoadOp     types.LoadOp
	StoreOp    types.StoreOp
	HasResolve bool
}

// depthStencilAttachmentKey is colorAttachmentKey's depth/stencil counterpart.
type depthStencilAttachmentKey struct {
	Format         types.TextureFormat
	DepthLoadOp    types.LoadOp
	DepthStoreOp   types.StoreOp
	StencilLoadOp  types.LoadOp
	StencilStoreOp types.StoreOp
}

// RenderPassKey identifies a backend render pass object: two BeginRenderPass
// calls that produce an equal RenderPassKey can share the same compiled HAL
// render pass, grounded on wgpu-native's RenderPassContext-keyed render pass
// cache (command/render.rs). Every field is comparable, so RenderPassKey is
// usable directly as a map key.
type RenderPassKey struct {
	ColorCount      int
	Colors          [MaxColorTargets]colorAttachmentKey
	HasDepthStencil bool
	DepthStencil    depthStencilAttachmentKey
	SampleCount     uint32
}

// FramebufferKey identifies a backend framebuffer object: the concrete set
// of views (and resolve targets) bound to a render pass instance. Two
// BeginRenderPass calls binding the identical views can share the same
// framebuffer even if neither the RenderPassKey nor the views themselves
// have changed. Built from view pointer identity rather than content, since
// two distinct TextureView objects are never interchangeable framebuffer
// attachments even if they happen to agree on format.
type FramebufferKey struct {
	ColorCount      int
	Colors          [MaxColorTargets]*TextureView
	ResolveTargets  [MaxColorTargets]*TextureView
	DepthStencil    *TextureView
}

// viewSlice returns every non-nil view key references, for passCache.touch
// to check for destruction during triage.
func (k FramebufferKey) viewSlice() []*TextureView {
	views := make([]*TextureView, 0, 2*k.ColorCount+1)
	for i := 0; i < k.ColorCount; i++ {
		if k.Colors[i] != nil {
			views = append(views, k.Colors[i])
		}
		if k.ResolveTargets[i] != nil {
			views = append(views, k.ResolveTargets[i])
		}
	}
	if k.DepthStencil != nil {
		views = append(views, k.DepthStencil)
	}
	return views
}

// renderPassKeyFromDescriptor computes the RenderPassKey a BeginRenderPass
// call's descriptor would produce, reusing renderPassContextFromDescriptor's
// sample-count validation (scenario E6) so a mismatched descriptor is
// rejected before a cache lookup is attempted.
func renderPassKeyFromDescriptor(desc *RenderPassDescriptor) (RenderPassKey, error) {
	context, err := renderPassContextFromDescriptor(desc)
	if err != nil {
		return RenderPassKey{}, err
	}

	var key RenderPassKey
	key.SampleCount = context.SampleCount
	key.ColorCount = len(desc.ColorAttachments)
	for i, ca := range desc.ColorAttachments {
		if i >= MaxColorTargets {
			break
		}
		var format types.TextureFormat
		if ca.View != nil {
			format = ca.View.Format()
		}
		key.Colors[i] = colorAttachmentKey{
			Format:     format,
			LoadOp:     ca.LoadOp,
			StoreOp:    ca.StoreOp,
			HasResolve: ca.ResolveTarget != nil,
		}
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		key.HasDepthStencil = true
		var format types.TextureFormat
		if ds.View != nil {
			format = ds.View.Format()
		}
		key.DepthStencil = depthStencilAttachmentKey{
			Format:         format,
			DepthLoadOp:    ds.DepthLoadOp,
			DepthStoreOp:   ds.DepthStoreOp,
			StencilLoadOp:  ds.StencilLoadOp,
			StencilStoreOp: ds.StencilStoreOp,
		}
	}
	return key, nil
}

// framebufferKeyFromDescriptor computes the FramebufferKey for a
// BeginRenderPass call's descriptor.
func framebufferKeyFromDescriptor(desc *RenderPassDescriptor) FramebufferKey {
	var key FramebufferKey
	key.ColorCount = len(desc.ColorAttachments)
	for i, ca := range desc.ColorAttachments {
		if i >= MaxColorTargets {
			break
		}
		key.Colors[i] = ca.View
		key.ResolveTargets[i] = ca.ResolveTarget
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		key.DepthStencil = ds.View
	}
	return key
}

// framebufferCacheEntry is one cached framebuffer, along with the last
// submission index any pass using it was recorded in. triage evicts an entry
// as soon as any view it references has been destroyed; lastUsed is not
// consulted.
type framebufferCacheEntry struct {
	views        []*TextureView
	lastUsed     SubmissionIndex
}

// passCache holds a device's cached render-pass and framebuffer keys,
// mirroring wgpu-native's RenderPassCache/FramebufferCache. The actual
// backend render-pass/framebuffer objects live behind the HAL
// (BeginRenderPass is handed the full descriptor every time and is free to
// cache internally); this cache's job is the "Triage framebuffers" sweep
// (§4.4 step 3): drop bookkeeping for framebuffers whose views were
// destroyed, so the cache does not grow without bound across a long-running
// session.
type passCache struct {
	mu           sync.Mutex
	framebuffers map[FramebufferKey]*framebufferCacheEntry
	// renderPasses counts how many times a given attachment shape has begun
	// a pass, so repeated use of the same RenderPassKey (the common case of
	// rendering the same scene shape every frame) is visible to callers
	// inspecting cache pressure, without this package owning a cache of the
	// backend render-pass objects themselves (the HAL is free to cache
	// those internally).
	renderPasses map[RenderPassKey]int
}

func newPassCache() *passCache {
	return &passCache{
		framebuffers: make(map[FramebufferKey]*framebufferCacheEntry),
		renderPasses: make(map[RenderPassKey]int),
	}
}

// touchRenderPass records that key's attachment shape was used to begin a
// pass.
func (c *passCache) touchRenderPass(key RenderPassKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderPasses[key]++
}

// touch records that key's framebuffer was used in submission idx,
// inserting a fresh entry the first time it is seen.
func (c *passCache) touch(key FramebufferKey, views []*TextureView, idx SubmissionIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.framebuffers[key]
	if !ok {
		entry = &framebufferCacheEntry{views: views}
		c.framebuffers[key] = entry
	}
	entry.lastUsed = idx
}

// triage drops every cached framebuffer entry that references a destroyed
// view, mirroring wgpu-native's Device::maintain "triage framebuffers" step.
func (c *passCache) triage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.framebuffers {
		stale := false
		for _, v := range entry.views {
			if v == nil || v.IsDestroyed() {
				stale = true
				break
			}
		}
		if stale {
			delete(c.framebuffers, key)
		}
	}
}
