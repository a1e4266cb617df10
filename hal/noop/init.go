package noop

import "github.com/latticegpu/wgpucore/hal"

// init registers the noop backend with the HAL registry.
func init() {
	hal.RegisterBackend(API{})
}
