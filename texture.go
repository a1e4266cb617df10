package wgpu

import (
	"github.com/latticegpu/wgpucore/core"
	"github.com/latticegpu/wgpucore/hal"
)

// Texture represents a GPU texture.
type Texture struct {
	hal      hal.Texture
	core     *core.Texture
	device   *Device
	format   TextureFormat
	released bool
}

// Format returns the texture format.
func (t *Texture) Format() TextureFormat { return t.format }

// coreTexture returns the underlying core.Texture.
func (t *Texture) coreTexture() *core.Texture { return t.core }

// Release destroys the texture.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	halDevice := t.device.halDevice()
	if halDevice != nil {
		halDevice.DestroyTexture(t.hal)
	}
}

// TextureView represents a view into a texture.
type TextureView struct {
	hal      hal.TextureView
	core     *core.TextureView
	device   *Device
	texture  *Texture
	released bool
}

// coreTextureView returns the underlying core.TextureView.
func (v *TextureView) coreTextureView() *core.TextureView { return v.core }

// Release destroys the texture view.
func (v *TextureView) Release() {
	if v.released {
		return
	}
	v.released = true
	halDevice := v.device.halDevice()
	if halDevice != nil {
		halDevice.DestroyTextureView(v.hal)
	}
}
