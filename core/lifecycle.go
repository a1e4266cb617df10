package core

import (
	"sync"
	"time"

	"github.com/latticegpu/wgpucore/hal"
)

// HostMap distinguishes a MapAsync request's intended access direction,
// mirroring wgpu-native's HostMap enum (device.rs).
type HostMap int

const (
	// HostMapRead requests the buffer be made readable by the host.
	HostMapRead HostMap = iota
	// HostMapWrite requests the buffer be made writable by the host.
	HostMapWrite
)

// BufferMapAsyncStatus is the outcome reported to a MapAsync callback.
type BufferMapAsyncStatus int

const (
	// BufferMapAsyncStatusSuccess means the buffer is now mapped.
	BufferMapAsyncStatusSuccess BufferMapAsyncStatus = iota
	// BufferMapAsyncStatusError means mapping failed (device lost, or the
	// buffer was destroyed before its submission retired).
	BufferMapAsyncStatusError
)

// BufferMapOperation is a pending host-map request, grounded on
// wgpu-native's BufferMapOperation.
type BufferMapOperation struct {
	buffer   *Buffer
	kind     HostMap
	offset   uint64
	size     uint64
	callback func(BufferMapAsyncStatus)
}

// activeSubmission groups the resources and pending map operations that
// must wait for one particular queue submission's fence before they can
// be reclaimed or completed, mirroring wgpu-native's ActiveSubmission.
type activeSubmission struct {
	index          SubmissionIndex
	fence          hal.Fence
	deferredDrop   []*Buffer
	mapOperations  []*BufferMapOperation
}

// lifecycleState is a device's deferred-destruction and host-map
// scheduling engine: the mapped/referenced/active/free/ready_to_map
// queues from wgpu-native's PendingResources, adapted to a GC'd runtime
// where LifeGuard tracks "is anything other than the device's own
// bookkeeping still using this" rather than Rust's Arc strong count.
type lifecycleState struct {
	mu sync.Mutex

	// mapped holds MapAsync requests not yet assigned to a submission.
	mapped []*BufferMapOperation

	// active holds one entry per in-flight submission, oldest first.
	active []*activeSubmission

	// readyToMap holds map operations whose submission has already
	// retired (or that were never submitted) and can complete now.
	readyToMap []*BufferMapOperation

	nextSubmission SubmissionIndex
}

func newLifecycleState() *lifecycleState {
	// Submission indices start at 1, so that 0 reliably means "never
	// submitted" for LifeGuard.LastSubmission().
	return &lifecycleState{nextSubmission: 1}
}

// allocateSubmissionIndex hands out the next submission index. Callers use
// the returned index to stamp LifeGuard.UseAt on every resource a command
// buffer touches before the submission's activeSubmission entry exists, per
// wgpu-core's Queue::submit step 1.
func (l *lifecycleState) allocateSubmissionIndex() SubmissionIndex {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.nextSubmission
	l.nextSubmission++
	return idx
}

// pushActive registers an activeSubmission entry for a submission index
// already allocated by allocateSubmissionIndex, fenced by fence. This is
// Queue::submit's final step, run after the backend Submit call succeeds.
func (l *lifecycleState) pushActive(index SubmissionIndex, fence hal.Fence) *activeSubmission {
	l.mu.Lock()
	defer l.mu.Unlock()

	sub := &activeSubmission{index: index, fence: fence}
	l.active = append(l.active, sub)
	return sub
}

// deferDestroy records that buffer must not be handed back to the HAL
// for destruction until submission idx has retired.
func (l *lifecycleState) deferDestroy(idx SubmissionIndex, buffer *Buffer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, sub := range l.active {
		if sub.index == idx {
			sub.deferredDrop = append(sub.deferredDrop, buffer)
			return
		}
	}
	// Submission already retired (or never existed): safe to destroy now.
	buffer.Destroy()
}

// mapAsync enqueues a host-map request. It does not block; the request
// completes (and its callback fires) once maintain() observes that the
// buffer's last-writing submission has retired.
func (l *lifecycleState) mapAsync(op *BufferMapOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mapped = append(l.mapped, op)
}

// triageMapped assigns each pending MapAsync request to the active
// submission it must wait on, or to readyToMap if that submission has
// already retired or the buffer was never submitted.
func (l *lifecycleState) triageMapped() {
	pending := l.mapped
	l.mapped = nil

	for _, op := range pending {
		idx := op.buffer.lastSubmission()
		assigned := false
		for _, sub := range l.active {
			if sub.index == idx {
				sub.mapOperations = append(sub.mapOperations, op)
				assigned = true
				break
			}
		}
		if !assigned {
			l.readyToMap = append(l.readyToMap, op)
		}
	}
}

// cleanup waits (if forceWait) or polls the active submissions' fences,
// oldest first, and retires the longest prefix of active whose fences have
// signaled, stopping at the first one that has not: their deferred-destroy
// buffers are actually destroyed and their mapped-pending operations move
// to readyToMap. Returns the highest submission index retired, or 0 if
// none were.
func (l *lifecycleState) cleanup(device hal.Device, forceWait bool) SubmissionIndex {
	var lastDone SubmissionIndex

	i := 0
	for i < len(l.active) {
		sub := l.active[i]
		done := true
		if sub.fence != nil && device != nil {
			timeout := time.Duration(0)
			if forceWait {
				timeout = cleanupWaitTimeout
			}
			signaled, err := device.Wait(sub.fence, uint64(sub.index), timeout)
			done = err == nil && signaled
		}
		if !done {
			break
		}

		for _, buf := range sub.deferredDrop {
			buf.Destroy()
		}
		l.readyToMap = append(l.readyToMap, sub.mapOperations...)
		lastDone = sub.index

		l.active = append(l.active[:i], l.active[i+1:]...)
		// Do not advance i: the next element has shifted into position i.
	}

	return lastDone
}

// handleMapping drains readyToMap, firing each operation's callback.
// Actual host-pointer production is backend-specific and out of this
// package's scope (the HAL boundary here has no map/unmap surface); a
// Success status means the buffer's writer has retired and it is safe
// for a backend that does expose mapping to hand back a pointer.
func (l *lifecycleState) handleMapping() {
	l.mu.Lock()
	ops := l.readyToMap
	l.readyToMap = nil
	l.mu.Unlock()

	for _, op := range ops {
		op.buffer.SetMapState(BufferMapStateMapped)
		if op.callback != nil {
			op.callback(BufferMapAsyncStatusSuccess)
		}
	}
}

// maintain runs the full device maintenance step: triage pending map
// requests against in-flight submissions, retire submissions whose
// fences have signaled (destroying anything deferred on them), and fire
// callbacks for maps that are now ready. Mirrors wgpu-native's
// Device::maintain.
func (d *Device) maintain(forceWait bool) {
	if d.lifecycle == nil {
		return
	}
	d.lifecycle.mu.Lock()
	d.lifecycle.triageMapped()
	d.lifecycle.mu.Unlock()

	d.lifecycle.cleanup(d.halRaw(), forceWait)
	d.lifecycle.handleMapping()

	// Step 3: triage framebuffers, dropping cache entries whose views have
	// since been destroyed.
	if d.passCache != nil {
		d.passCache.triage()
	}
}

// Maintain polls (or, with wait=true, blocks on) the device's in-flight
// submissions, retiring deferred destructions and completing host maps
// whose data is now available.
func (d *Device) Maintain(wait bool) {
	d.maintain(wait)
}

// lastSubmission is a small helper so lifecycleState doesn't need to
// import LifeGuard directly; buffers that never allocate a LifeGuard
// report 0 (never submitted).
func (b *Buffer) lastSubmission() SubmissionIndex {
	if b.lifeGuard == nil {
		return 0
	}
	return b.lifeGuard.LastSubmission()
}
