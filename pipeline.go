package wgpu

import (
	"github.com/latticegpu/wgpucore/core"
	"github.com/latticegpu/wgpucore/hal"
)

// RenderPipeline represents a configured render pipeline.
type RenderPipeline struct {
	hal      hal.RenderPipeline
	core     *core.RenderPipeline
	device   *Device
	released bool
}

// coreRenderPipeline returns the underlying core.RenderPipeline.
func (p *RenderPipeline) coreRenderPipeline() *core.RenderPipeline { return p.core }

// Release destroys the render pipeline.
func (p *RenderPipeline) Release() {
	if p.released {
		return
	}
	p.released = true
	halDevice := p.device.halDevice()
	if halDevice != nil {
		halDevice.DestroyRenderPipeline(p.hal)
	}
}

// ComputePipeline represents a configured compute pipeline.
type ComputePipeline struct {
	hal      hal.ComputePipeline
	core     *core.ComputePipeline
	device   *Device
	released bool
}

// coreComputePipeline returns the underlying core.ComputePipeline.
func (p *ComputePipeline) coreComputePipeline() *core.ComputePipeline { return p.core }

// Release destroys the compute pipeline.
func (p *ComputePipeline) Release() {
	if p.released {
		return
	}
	p.released = true
	halDevice := p.device.halDevice()
	if halDevice != nil {
		halDevice.DestroyComputePipeline(p.hal)
	}
}
