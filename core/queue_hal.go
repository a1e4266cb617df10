package core

import (
	"fmt"

	"github.com/latticegpu/wgpucore/core/track"
	"github.com/latticegpu/wgpucore/hal"
)

// toTrackUsage maps a command buffer's locally-recorded BufferUses bitset
// (set while recording, in command.go) onto the tracker package's more
// granular usage flags. Storage usage is recorded conservatively as
// read-write, since CommandBufferMutable does not yet distinguish a
// storage buffer's access direction.
func toTrackUsage(uses BufferUses) track.BufferUses {
	var out track.BufferUses
	if uses&BufferUsesVertex != 0 {
		out |= track.BufferUsesVertex
	}
	if uses&BufferUsesIndex != 0 {
		out |= track.BufferUsesIndex
	}
	if uses&BufferUsesUniform != 0 {
		out |= track.BufferUsesUniform
	}
	if uses&BufferUsesStorage != 0 {
		out |= track.BufferUsesStorageRead | track.BufferUsesStorageWrite
	}
	if uses&BufferUsesIndirect != 0 {
		out |= track.BufferUsesIndirect
	}
	if uses&BufferUsesCopySrc != 0 {
		out |= track.BufferUsesCopySrc
	}
	if uses&BufferUsesCopyDst != 0 {
		out |= track.BufferUsesCopyDst
	}
	return out
}

// toTrackTextureUsage is toTrackUsage's texture counterpart, bridging
// CommandBufferMutable.usedTextures onto track.TextureUses.
func toTrackTextureUsage(uses TextureUses) track.TextureUses {
	var out track.TextureUses
	if uses&TextureUsesSampled != 0 {
		out |= track.TextureUsesSampled
	}
	if uses&TextureUsesStorage != 0 {
		out |= track.TextureUsesStorageRead | track.TextureUsesStorageWrite
	}
	if uses&TextureUsesRenderAttachment != 0 {
		out |= track.TextureUsesOutputAttachment
	}
	if uses&TextureUsesCopySrc != 0 {
		out |= track.TextureUsesCopySrc
	}
	if uses&TextureUsesCopyDst != 0 {
		out |= track.TextureUsesCopyDst
	}
	return out
}

// Submit is the queue-submission stitching point: wgpu-core's
// Queue::submit, numbered steps 1-6. It acquires a submission index, walks
// each command buffer's recorded usage to stamp last-submission-index on
// every buffer it touched and to build a "transit" command buffer of
// barriers bridging the device tracker's prior state into this
// submission's StitchInit, submits the resulting list through queue, then
// runs a non-blocking maintain() and registers the submission so a later
// maintain(true) or Device.Poll can retire it.
func (d *Device) Submit(queue hal.Queue, commandBuffers []*CoreCommandBuffer) (SubmissionIndex, error) {
	if err := d.checkValid(); err != nil {
		return 0, err
	}
	if queue == nil {
		return 0, ErrDeviceDestroyed
	}

	guard := d.snatchLock.Read()
	halDevice := d.Raw(guard)
	if halDevice == nil {
		guard.Release()
		return 0, ErrDeviceDestroyed
	}

	// Step 1: acquire the submission index before touching any resource,
	// so every LifeGuard.UseAt below stamps the index this submission will
	// ultimately be registered under.
	index := d.lifecycle.allocateSubmissionIndex()

	halBuffers := make([]hal.CommandBuffer, 0, len(commandBuffers)*2)
	var touchedBuffers []*Buffer
	var touchedTextures []*Texture
	var touchedViews []*TextureView
	var touchedBindGroups []*BindGroup

	for _, cb := range commandBuffers {
		if cb == nil || cb.mutable == nil {
			continue
		}

		// §4.5: this loop body walks registries in rank order (bind groups,
		// then command buffers, then buffers, then textures) — assert it
		// stays that way as the submit path grows.
		token := NewAccessToken().Acquire(RankBindGroups)
		token = token.Acquire(RankCommandBuffers)
		token = token.Acquire(RankBuffers)
		token = token.Acquire(RankTextures)

		scope := track.NewUsageScope()
		indexToBuffer := make(map[track.TrackerIndex]*Buffer, len(cb.mutable.usedBuffers))
		for buf, uses := range cb.mutable.usedBuffers {
			idx := buf.ensureTracked()
			if !idx.IsValid() {
				continue
			}
			indexToBuffer[idx] = buf
			if err := scope.Buffers.SetUsage(idx, toTrackUsage(uses)); err != nil {
				guard.Release()
				return 0, fmt.Errorf("queue submit: %w", err)
			}
		}

		indexToTexture := make(map[track.TrackerIndex]*Texture, len(cb.mutable.usedTextures))
		for tex, uses := range cb.mutable.usedTextures {
			idx := tex.ensureTracked()
			if !idx.IsValid() {
				continue
			}
			indexToTexture[idx] = tex
			if err := scope.Textures.SetUsage(idx, tex.fullRange(), toTrackTextureUsage(uses)); err != nil {
				guard.Release()
				return 0, fmt.Errorf("queue submit: %w", err)
			}
		}

		// Step 2: stitch this command buffer's usage into the device
		// tracker, using the tracker's pre-submission state as every
		// transition's From (Stitch::Init).
		transit := d.trackers.MergeReplace(scope, track.StitchInit)

		var bufferBarriers []hal.BufferBarrier
		for _, t := range transit.Buffers {
			if !t.Usage.NeedsBarrier() {
				continue
			}
			buf, ok := indexToBuffer[t.Index]
			if !ok {
				continue
			}
			halBuf := buf.Raw(guard)
			if halBuf == nil {
				continue
			}
			bufferBarriers = append(bufferBarriers, t.IntoHAL(halBuf))
		}

		var textureBarriers []hal.TextureBarrier
		for _, t := range transit.Textures {
			if !t.NeedsBarrier() {
				continue
			}
			tex, ok := indexToTexture[t.Index]
			if !ok {
				continue
			}
			halTex := tex.Raw()
			if halTex == nil {
				continue
			}
			textureBarriers = append(textureBarriers, t.IntoHAL(halTex))
		}

		if len(bufferBarriers) > 0 || len(textureBarriers) > 0 {
			transitEncoder, err := halDevice.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "(transit)"})
			if err != nil {
				guard.Release()
				return 0, fmt.Errorf("queue submit: transit encoder: %w", err)
			}
			if err := transitEncoder.BeginEncoding(""); err != nil {
				guard.Release()
				return 0, fmt.Errorf("queue submit: transit encoder: %w", err)
			}
			if len(bufferBarriers) > 0 {
				transitEncoder.TransitionBuffers(bufferBarriers)
			}
			if len(textureBarriers) > 0 {
				transitEncoder.TransitionTextures(textureBarriers)
			}
			transitBuf, err := transitEncoder.EndEncoding()
			if err != nil {
				guard.Release()
				return 0, fmt.Errorf("queue submit: transit encoder: %w", err)
			}
			// Prepended ahead of this command buffer's own list, per the
			// barrier-before-use ordering the transitions were computed for.
			halBuffers = append(halBuffers, transitBuf)
		}

		halBuffers = append(halBuffers, cb.Raw())

		for buf := range cb.mutable.usedBuffers {
			touchedBuffers = append(touchedBuffers, buf)
		}
		for tex := range cb.mutable.usedTextures {
			touchedTextures = append(touchedTextures, tex)
		}
		for view := range cb.mutable.usedViews {
			touchedViews = append(touchedViews, view)
		}
		for group := range cb.mutable.usedBindGroups {
			touchedBindGroups = append(touchedBindGroups, group)
		}
	}

	// Step 3/4: create the submission fence and submit the finished list.
	fence, err := halDevice.CreateFence()
	if err != nil {
		guard.Release()
		return 0, fmt.Errorf("queue submit: create fence: %w", err)
	}

	if err := queue.Submit(halBuffers, fence, uint64(index)); err != nil {
		guard.Release()
		return 0, fmt.Errorf("queue submit: %w", err)
	}

	guard.Release()

	for _, buf := range touchedBuffers {
		if buf.lifeGuard != nil {
			buf.lifeGuard.UseAt(index)
		}
	}
	for _, tex := range touchedTextures {
		if tex.lifeGuard != nil {
			tex.lifeGuard.UseAt(index)
		}
	}
	for _, view := range touchedViews {
		if view.lifeGuard != nil {
			view.lifeGuard.UseAt(index)
		}
	}
	for _, group := range touchedBindGroups {
		if group.LifeGuard() != nil {
			group.LifeGuard().UseAt(index)
		}
	}

	// Step 5: a non-blocking maintenance pass, mirroring Queue::submit's
	// trailing maintain(false), run before this submission is registered
	// so it only ever retires strictly earlier submissions.
	d.maintain(false)

	// Step 6: register the submission so a later maintain() can retire it
	// once its fence signals.
	d.lifecycle.pushActive(index, fence)

	return index, nil
}
