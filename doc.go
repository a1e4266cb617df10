// Package wgpu provides a safe, ergonomic WebGPU API for Go applications.
//
// This package wraps the lower-level hal/ and core/ packages into a user-friendly
// API aligned with the W3C WebGPU specification.
//
// # Quick Start
//
// Import this package and a backend registration package:
//
//	import (
//	    "github.com/latticegpu/wgpucore"
//	    _ "github.com/latticegpu/wgpucore/hal/noop"
//	)
//
//	instance, err := wgpu.CreateInstance(nil)
//	// ...
//
// # Resource Lifecycle
//
// All GPU resources must be explicitly released with Release().
// Resources are reference-counted internally. Methods called on a released
// object return ErrReleased.
//
// # Backend Registration
//
// Backends are registered via blank imports. The noop backend is the only
// backend package in this module:
//
//	_ "github.com/latticegpu/wgpucore/hal/noop"
//
// # Thread Safety
//
// Instance, Adapter, and Device are safe for concurrent use.
// Encoders (CommandEncoder, RenderPassEncoder, ComputePassEncoder) are NOT thread-safe.
package wgpu
