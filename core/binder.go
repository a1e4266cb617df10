package core

// bindGroupMask is a one-bit-per-slot mask over the binder's slots.
type bindGroupMask = uint8

// LayoutChange is the result of Binder.ExpectLayout for a single slot.
type LayoutChange int

const (
	// LayoutChangeUnchanged means the expected layout at this slot did not
	// change from the previous call.
	LayoutChangeUnchanged LayoutChange = iota

	// LayoutChangeMatch means the newly expected layout matches whatever
	// bind group is already provided at this slot; it may be rebound
	// immediately without the application reprovidng it.
	LayoutChangeMatch

	// LayoutChangeMismatch means the newly expected layout does not match
	// the provided bind group (or none is provided); this slot, and every
	// slot above it, is invalid until reprovided.
	LayoutChangeMismatch
)

// boundGroup is what a slot remembers about the bind group it was last
// given, grounded on wgpu-native's BindGroupPair.
type boundGroup struct {
	layout BindGroupLayoutID
	group  BindGroupID
}

// bindGroupEntry is per-slot binder state, grounded on wgpu-native's
// BindGroupEntry (command/bind.rs). The expected/provided layout is the
// bind group LAYOUT at this slot (BindGroupLayoutId in wgpu-native), not
// the pipeline layout as a whole.
type bindGroupEntry struct {
	expectedLayout    BindGroupLayoutID
	hasExpectedLayout bool
	provided          *boundGroup
	dynamicOffsets    []uint32
}

// provisionResult mirrors wgpu-native's Provision enum.
type provisionResult struct {
	changed      bool
	wasCompatible bool
}

// provide records a newly bound group at this slot. Returns
// provisionResult{changed: false} if the binding is unchanged (same group,
// same offsets).
func (e *bindGroupEntry) provide(groupID BindGroupID, layout BindGroupLayoutID, offsets []uint32) provisionResult {
	wasCompatible := true
	if e.provided != nil {
		if e.provided.group == groupID && sameOffsets(offsets, e.dynamicOffsets) {
			return provisionResult{changed: false}
		}
		wasCompatible = e.hasExpectedLayout && e.expectedLayout == e.provided.layout
	}
	e.provided = &boundGroup{layout: layout, group: groupID}
	e.dynamicOffsets = append(e.dynamicOffsets[:0], offsets...)
	return provisionResult{changed: true, wasCompatible: wasCompatible}
}

func sameOffsets(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// expectLayout records the layout a newly bound pipeline expects at this
// slot, returning how that changes the slot's validity.
func (e *bindGroupEntry) expectLayout(layout BindGroupLayoutID) LayoutChange {
	if e.hasExpectedLayout && e.expectedLayout == layout {
		return LayoutChangeUnchanged
	}
	e.expectedLayout = layout
	e.hasExpectedLayout = true
	if e.provided != nil && e.provided.layout == layout {
		return LayoutChangeMatch
	}
	return LayoutChangeMismatch
}

// isValid reports whether this slot satisfies its expectation: either it
// expects nothing, or it has a provided group whose layout matches.
func (e *bindGroupEntry) isValid() bool {
	if !e.hasExpectedLayout {
		return true
	}
	if e.provided == nil {
		return false
	}
	return e.expectedLayout == e.provided.layout
}

// actualValue returns the bind group id currently satisfying this slot's
// expectation, if any.
func (e *bindGroupEntry) actualValue() (BindGroupID, bool) {
	if !e.hasExpectedLayout || e.provided == nil || e.provided.layout != e.expectedLayout {
		return BindGroupID{}, false
	}
	return e.provided.group, true
}

// Binder is the incremental bind-group slot state machine: it reconciles a
// pipeline layout's per-slot expectations with bind groups the application
// has provided, and decides the minimal set of slots the backend must
// re-issue a descriptor-set bind for.
//
// Grounded on wgpu-native's command/bind.rs Binder/BindGroupEntry.
type Binder struct {
	pipelineLayout    PipelineLayoutID
	hasPipelineLayout bool
	entries           [MaxBindGroups]bindGroupEntry
}

// NewBinder creates an empty binder with no expectations and no bindings.
func NewBinder() *Binder {
	return &Binder{}
}

// SetPipelineLayout records the pipeline layout to report from ProvideEntry
// once a rebind becomes necessary.
func (b *Binder) SetPipelineLayout(layout PipelineLayoutID) {
	b.pipelineLayout = layout
	b.hasPipelineLayout = true
}

// ResetExpectations clears expected layouts at indices >= length. Called
// when a pipeline with fewer bind groups than the previous one is bound.
func (b *Binder) ResetExpectations(length int) {
	for i := length; i < MaxBindGroups; i++ {
		b.entries[i].hasExpectedLayout = false
	}
}

// ProvideEntry records a bind group provided at index. If the new binding
// is identical to what is already there (same group, same offsets), it
// returns ok=false with no follow-ups: nothing needs to change backend-side.
// Otherwise it returns the pipeline layout to bind against, plus the groups
// of the valid slots above index, up to the end of the compatible prefix,
// that must be re-bound in the same call (and their combined dynamic
// offsets).
func (b *Binder) ProvideEntry(index int, groupID BindGroupID, layout BindGroupLayoutID, offsets []uint32) (pipelineLayout PipelineLayoutID, followUps []BindGroupID, followUpOffsets []uint32, ok bool) {
	result := b.entries[index].provide(groupID, layout, offsets)
	if !result.changed {
		return PipelineLayoutID{}, nil, nil, false
	}

	compatibleCount := b.compatibleCount()
	if index >= compatibleCount {
		return PipelineLayoutID{}, nil, nil, false
	}
	if !b.hasPipelineLayout {
		return PipelineLayoutID{}, nil, nil, false
	}

	end := compatibleCount
	if !result.wasCompatible {
		end = MaxBindGroups
		if compatibleCount < end {
			end = compatibleCount
		}
	}

	for i := index + 1; i < end; i++ {
		if group, has := b.entries[i].actualValue(); has {
			followUps = append(followUps, group)
			followUpOffsets = append(followUpOffsets, b.entries[i].dynamicOffsets...)
		}
	}
	return b.pipelineLayout, followUps, followUpOffsets, true
}

// ExpectLayout updates the expectation at index for a newly bound pipeline.
func (b *Binder) ExpectLayout(index int, layout BindGroupLayoutID) LayoutChange {
	return b.entries[index].expectLayout(layout)
}

// InvalidMask returns a 1-bit per slot whose expected layout has no
// matching provided group. is_ready() is invalidMask() == 0.
func (b *Binder) InvalidMask() bindGroupMask {
	var mask bindGroupMask
	for i := range b.entries {
		if !b.entries[i].isValid() {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// IsReady reports whether every expected slot currently has a compatible
// bind group provided.
func (b *Binder) IsReady() bool {
	return b.InvalidMask() == 0
}

// compatibleCount is the length of the longest prefix of slots whose
// provided layouts all match their expectations.
func (b *Binder) compatibleCount() int {
	for i := range b.entries {
		if !b.entries[i].isValid() {
			return i
		}
	}
	return len(b.entries)
}
