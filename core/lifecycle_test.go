package core

import (
	"sync/atomic"
	"testing"
)

func TestLifeGuard_RefCounting(t *testing.T) {
	lg := NewLifeGuard()
	if lg.RefCount() != 1 {
		t.Fatalf("RefCount() = %d, want 1", lg.RefCount())
	}
	lg.AddRef()
	if lg.RefCount() != 2 {
		t.Fatalf("RefCount() = %d, want 2", lg.RefCount())
	}
	if lg.Drop() {
		t.Error("Drop() should not report zero after only one of two refs dropped")
	}
	if !lg.Drop() {
		t.Error("Drop() should report zero once the last ref is dropped")
	}
}

func TestLifeGuard_UseAtIsMonotonic(t *testing.T) {
	lg := NewLifeGuard()
	if lg.LastSubmission() != 0 {
		t.Fatalf("LastSubmission() = %d, want 0 before any use", lg.LastSubmission())
	}
	lg.UseAt(5)
	lg.UseAt(3)
	if lg.LastSubmission() != 5 {
		t.Errorf("LastSubmission() = %d, want 5 (monotonic max)", lg.LastSubmission())
	}
	lg.UseAt(9)
	if lg.LastSubmission() != 9 {
		t.Errorf("LastSubmission() = %d, want 9", lg.LastSubmission())
	}
}

func TestLifecycleState_AllocateSubmissionIndex(t *testing.T) {
	l := newLifecycleState()
	a := l.allocateSubmissionIndex()
	b := l.allocateSubmissionIndex()
	if a == 0 {
		t.Error("submission indices should start above zero")
	}
	if b != a+1 {
		t.Errorf("allocateSubmissionIndex() should be monotonically increasing, got %d then %d", a, b)
	}
}

func TestLifecycleState_DeferDestroyOnActiveSubmission(t *testing.T) {
	l := newLifecycleState()
	idx := l.allocateSubmissionIndex()
	l.pushActive(idx, nil)

	buf := &Buffer{destroyed: nil}
	l.deferDestroy(idx, buf)

	if len(l.active[0].deferredDrop) != 1 {
		t.Fatalf("expected buffer to be deferred on the active submission, got %d entries", len(l.active[0].deferredDrop))
	}
}

func TestLifecycleState_DeferDestroyOnRetiredSubmissionDestroysImmediately(t *testing.T) {
	l := newLifecycleState()
	idx := l.allocateSubmissionIndex()
	// No pushActive: idx is not tracked as in-flight, simulating an already
	// retired (or never submitted) submission.

	// deferDestroy on an untracked index should call buf.Destroy() directly;
	// a legacy Buffer{} with no HAL backing treats Destroy() as a no-op, so
	// this just needs to not panic and not register anything.
	plain := &Buffer{}
	l.deferDestroy(idx, plain)
	if len(l.active) != 0 {
		t.Error("no active submission should have been created")
	}
}

func TestLifecycleState_MapAsyncTriageAssignsToActiveSubmission(t *testing.T) {
	l := newLifecycleState()
	idx := l.allocateSubmissionIndex()
	l.pushActive(idx, nil)

	buf := &Buffer{lifeGuard: NewLifeGuard(), mapState: &atomic.Int32{}}
	buf.lifeGuard.UseAt(idx)

	var gotStatus BufferMapAsyncStatus
	op := &BufferMapOperation{
		buffer: buf,
		kind:   HostMapRead,
		callback: func(s BufferMapAsyncStatus) {
			gotStatus = s
		},
	}
	l.mapAsync(op)
	l.triageMapped()

	if len(l.active[0].mapOperations) != 1 {
		t.Fatalf("expected the map operation to be assigned to the active submission, got %d", len(l.active[0].mapOperations))
	}
	if len(l.readyToMap) != 0 {
		t.Error("map operation should not be ready yet; its submission has not retired")
	}

	// Retire the submission and confirm the map op now completes.
	cleaned := l.cleanup(nil, false)
	if cleaned != idx {
		t.Errorf("cleanup() retired index %d, want %d", cleaned, idx)
	}
	l.handleMapping()
	if gotStatus != BufferMapAsyncStatusSuccess {
		t.Error("map callback should have fired with Success once its submission retired")
	}
	if buf.MapState() != BufferMapStateMapped {
		t.Error("buffer should be Mapped after its map operation completes")
	}
}

func TestLifecycleState_MapAsyncNeverSubmittedGoesReadyImmediately(t *testing.T) {
	l := newLifecycleState()
	buf := &Buffer{lifeGuard: NewLifeGuard()}

	var called bool
	l.mapAsync(&BufferMapOperation{
		buffer:   buf,
		callback: func(BufferMapAsyncStatus) { called = true },
	})
	l.triageMapped()
	if len(l.readyToMap) != 1 {
		t.Fatal("a map op on a never-submitted buffer should go straight to readyToMap")
	}
	l.handleMapping()
	if !called {
		t.Error("callback should have fired")
	}
}

func TestDevice_MaintainNilLifecycleIsNoOp(t *testing.T) {
	d := &Device{}
	d.Maintain(false) // must not panic
}
