package core

import "github.com/latticegpu/wgpucore/types"

// AttachmentData is the per-slot attachment shape shared by a render
// pipeline and a render pass: one format per color slot plus an optional
// depth/stencil format, grounded on wgpu-native's device.rs AttachmentData<T>.
type AttachmentData[T comparable] struct {
	Colors       []T
	ResolveTargets []bool
	DepthStencil *T
}

// compatible reports whether a and other describe the same attachment
// shape: same color slot count with equal formats in every slot, and
// matching presence/value of the depth-stencil slot.
func (a AttachmentData[T]) compatible(other AttachmentData[T]) bool {
	if len(a.Colors) != len(other.Colors) {
		return false
	}
	for i := range a.Colors {
		if a.Colors[i] != other.Colors[i] {
			return false
		}
	}
	if (a.DepthStencil == nil) != (other.DepthStencil == nil) {
		return false
	}
	if a.DepthStencil != nil && *a.DepthStencil != *other.DepthStencil {
		return false
	}
	return true
}

// RenderPassContext is the attachment shape a render pass establishes (or a
// render pipeline was built against): color/depth-stencil formats plus the
// shared sample count every attachment must carry (§4.3, scenario E6).
type RenderPassContext struct {
	Attachments AttachmentData[types.TextureFormat]
	SampleCount uint32
}

// compatible implements the §4.3 SetPipeline check: "p.context.compatible(pass.context)".
func (c RenderPassContext) compatible(other RenderPassContext) bool {
	return c.SampleCount == other.SampleCount && c.Attachments.compatible(other.Attachments)
}

// renderPassContextFromDescriptor derives the attachment shape and sample
// count a BeginRenderPass call establishes, and asserts every attachment
// shares one sample count (scenario E6: mismatched sample counts must be
// rejected before any backend command is issued).
func renderPassContextFromDescriptor(desc *RenderPassDescriptor) (RenderPassContext, error) {
	var ctx RenderPassContext
	sampleCount := uint32(0)

	checkSampleCount := func(view *TextureView, role string) error {
		if view == nil {
			return nil
		}
		vsc := view.SampleCount()
		if sampleCount == 0 {
			sampleCount = vsc
			return nil
		}
		if vsc != sampleCount {
			return &RenderPassSampleCountMismatchError{Role: role, Expected: sampleCount, Got: vsc}
		}
		return nil
	}

	for i, ca := range desc.ColorAttachments {
		if err := checkSampleCount(ca.View, "color attachment"); err != nil {
			return RenderPassContext{}, err
		}
		var format types.TextureFormat
		if ca.View != nil {
			format = ca.View.Format()
		}
		ctx.Attachments.Colors = append(ctx.Attachments.Colors, format)
		_ = i
	}

	if desc.DepthStencilAttachment != nil {
		if err := checkSampleCount(desc.DepthStencilAttachment.View, "depth/stencil attachment"); err != nil {
			return RenderPassContext{}, err
		}
		if desc.DepthStencilAttachment.View != nil {
			format := desc.DepthStencilAttachment.View.Format()
			ctx.Attachments.DepthStencil = &format
		}
	}

	if sampleCount == 0 {
		sampleCount = 1
	}
	ctx.SampleCount = sampleCount
	return ctx, nil
}

// RenderPassSampleCountMismatchError is returned when a render pass's
// attachments do not all share one sample count (§4.3, scenario E6).
type RenderPassSampleCountMismatchError struct {
	Role     string
	Expected uint32
	Got      uint32
}

func (e *RenderPassSampleCountMismatchError) Error() string {
	return "render pass " + e.Role + " sample count " + itoa(e.Got) + " does not match pass sample count " + itoa(e.Expected)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
