package core

import "fmt"

// AccessRank orders the Hub's registries so multi-registry operations always
// acquire them in the same sequence, avoiding the classic lock-order
// deadlock (goroutine A locks buffers then textures while goroutine B locks
// textures then buffers). The order matches spec.md §3's declared rank:
// adapters, devices, swap chains, pipeline layouts, bind group layouts,
// bind groups, command buffers, render/compute passes, buffers, textures,
// texture views, samplers.
type AccessRank int

const (
	RankAdapters AccessRank = iota
	RankDevices
	RankSwapChains
	RankPipelineLayouts
	RankBindGroupLayouts
	RankBindGroups
	RankCommandBuffers
	RankPasses
	RankBuffers
	RankTextures
	RankTextureViews
	RankSamplers
)

func (r AccessRank) String() string {
	switch r {
	case RankAdapters:
		return "adapters"
	case RankDevices:
		return "devices"
	case RankSwapChains:
		return "swapchains"
	case RankPipelineLayouts:
		return "pipelineLayouts"
	case RankBindGroupLayouts:
		return "bindGroupLayouts"
	case RankBindGroups:
		return "bindGroups"
	case RankCommandBuffers:
		return "commandBuffers"
	case RankPasses:
		return "passes"
	case RankBuffers:
		return "buffers"
	case RankTextures:
		return "textures"
	case RankTextureViews:
		return "textureViews"
	case RankSamplers:
		return "samplers"
	default:
		return fmt.Sprintf("rank(%d)", int(r))
	}
}

// AccessToken threads the highest registry rank a call path has already
// acquired through any code that subsequently needs to lock another
// registry, so a second acquisition can be checked against it. This is the
// Go realization of spec.md §4.5's "assert-check the order" note for a
// language without compile-time rank types: Rust's wgpu-core encodes the
// same discipline with a typestate token consumed and re-issued by each
// lock; Acquire here is the runtime equivalent.
//
// The token returned by NewAccessToken (held == -1) means "nothing acquired
// yet" and may acquire any rank. The zero value AccessToken{} instead
// records RankAdapters as held.
type AccessToken struct {
	held AccessRank
}

// NewAccessToken returns a token suitable for starting a fresh call chain,
// holding nothing yet.
func NewAccessToken() AccessToken {
	return AccessToken{held: -1}
}

// Acquire checks that rank is strictly greater than whatever this token
// already holds, then returns a new token recording rank as held. Violating
// the order is a programming error in this package, not a user-facing
// failure, so it panics rather than returning an error — but only when
// DebugMode is enabled, matching this package's existing debug-only
// assertion convention (debug.go's resource leak tracker is the same
// opt-in-cost pattern).
func (t AccessToken) Acquire(rank AccessRank) AccessToken {
	if DebugMode() && t.held >= 0 && rank <= t.held {
		panic(fmt.Sprintf("core: access token violation: acquiring rank %s while holding %s", rank, t.held))
	}
	return AccessToken{held: rank}
}

// Held reports the highest rank currently recorded on the token, and
// whether any rank has been acquired at all.
func (t AccessToken) Held() (rank AccessRank, ok bool) {
	if t.held < 0 {
		return 0, false
	}
	return t.held, true
}
