package core

import "sync/atomic"

// SubmissionIndex is a monotonically increasing queue-submission counter.
// A resource's last-submission-index records the most recent submission
// that referenced it, letting the lifecycle engine know when it is safe
// to reclaim: once that submission's fence has signaled.
type SubmissionIndex = uint64

// LifeGuard is embedded in every resource that the device lifecycle engine
// tracks for deferred destruction: an atomic strong-reference count plus
// the index of the most recent queue submission that touched it.
//
// Grounded on wgpu-native's resource.rs LifeGuard (itself Arc-like
// ref-counting plus a submission_index atomic); Go's GC replaces Rust's
// Arc, so the count here tracks explicit internal uses (pending command
// buffers, bound resources, in-flight host maps) rather than own/drop.
type LifeGuard struct {
	refCount        atomic.Int64
	submissionIndex atomic.Uint64
}

// NewLifeGuard creates a life guard with a single implicit reference, held
// by the resource's creator until Drop is called.
func NewLifeGuard() *LifeGuard {
	lg := &LifeGuard{}
	lg.refCount.Store(1)
	return lg
}

// AddRef increments the strong count, returning the new count.
func (lg *LifeGuard) AddRef() int64 {
	return lg.refCount.Add(1)
}

// Drop decrements the strong count, returning true if it reached zero
// (the resource has no more referents and may be queued for destruction
// once its last submission retires).
func (lg *LifeGuard) Drop() bool {
	return lg.refCount.Add(-1) == 0
}

// RefCount returns the current strong count.
func (lg *LifeGuard) RefCount() int64 {
	return lg.refCount.Load()
}

// UseAt records that submission index idx referenced this resource. Queue
// submission calls this for every resource a command buffer touches;
// maintain() only reclaims a resource once the fence for its
// LastSubmission has signaled.
func (lg *LifeGuard) UseAt(idx SubmissionIndex) {
	for {
		cur := lg.submissionIndex.Load()
		if idx <= cur {
			return
		}
		if lg.submissionIndex.CompareAndSwap(cur, idx) {
			return
		}
	}
}

// LastSubmission returns the most recent submission index that referenced
// this resource, or 0 if it was never submitted.
func (lg *LifeGuard) LastSubmission() SubmissionIndex {
	return lg.submissionIndex.Load()
}
