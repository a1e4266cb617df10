package core

import (
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// NewRenderPipeline wraps a backend render pipeline, caching the attachment
// context (formats + sample count) it was built against so SetPipeline can
// check compatibility against the active render pass without re-deriving
// it from the HAL object, plus the vertex buffer layouts so Draw calls can
// be bounds-checked against the buffers actually bound (§4.3 is_ready()).
func NewRenderPipeline(raw hal.RenderPipeline, device *Device, layout *PipelineLayout, context RenderPassContext, sampleCount uint32, vertexLayouts []types.VertexBufferLayout) *RenderPipeline {
	return &RenderPipeline{
		raw:           raw,
		device:        device,
		layout:        layout,
		context:       context,
		sampleCount:   sampleCount,
		vertexLayouts: vertexLayouts,
	}
}

// HasHAL reports whether this pipeline owns a real backend handle.
func (p *RenderPipeline) HasHAL() bool { return p.raw != nil }

// Raw returns the backend render pipeline handle.
func (p *RenderPipeline) Raw() hal.RenderPipeline { return p.raw }

// Layout returns the pipeline layout this pipeline was created with.
func (p *RenderPipeline) Layout() *PipelineLayout { return p.layout }

// Context returns the attachment shape this pipeline was built against.
func (p *RenderPipeline) Context() RenderPassContext { return p.context }

// SampleCount returns the pipeline's multisample count.
func (p *RenderPipeline) SampleCount() uint32 { return p.sampleCount }

// VertexLayouts returns the vertex buffer layouts this pipeline expects.
func (p *RenderPipeline) VertexLayouts() []types.VertexBufferLayout { return p.vertexLayouts }

// Destroy destroys the backend render pipeline.
func (p *RenderPipeline) Destroy() {
	if p.raw != nil {
		p.raw.Destroy()
	}
}

// NewComputePipeline wraps a backend compute pipeline.
func NewComputePipeline(raw hal.ComputePipeline, device *Device, layout *PipelineLayout) *ComputePipeline {
	return &ComputePipeline{
		raw:    raw,
		device: device,
		layout: layout,
	}
}

// HasHAL reports whether this pipeline owns a real backend handle.
func (p *ComputePipeline) HasHAL() bool { return p.raw != nil }

// Raw returns the backend compute pipeline handle.
func (p *ComputePipeline) Raw() hal.ComputePipeline { return p.raw }

// Layout returns the pipeline layout this pipeline was created with.
func (p *ComputePipeline) Layout() *PipelineLayout { return p.layout }

// Destroy destroys the backend compute pipeline.
func (p *ComputePipeline) Destroy() {
	if p.raw != nil {
		p.raw.Destroy()
	}
}
