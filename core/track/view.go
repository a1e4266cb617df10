package track

// ViewTracker is a flat "used" set of texture-view tracker indices. Views
// carry no usage state of their own — synchronization happens through the
// texture they reference — so merging is plain set union with no
// transitions, per the spec's view/bind-group tracker rule.
type ViewTracker struct {
	used map[TrackerIndex]bool
}

// NewViewTracker creates a new, empty view tracker.
func NewViewTracker() *ViewTracker {
	return &ViewTracker{used: make(map[TrackerIndex]bool)}
}

// Insert adds index to the set.
func (t *ViewTracker) Insert(index TrackerIndex) {
	t.used[index] = true
}

// Remove drops index from the set.
func (t *ViewTracker) Remove(index TrackerIndex) {
	delete(t.used, index)
}

// Contains reports whether index is in the set.
func (t *ViewTracker) Contains(index TrackerIndex) bool {
	return t.used[index]
}

// Len returns the number of tracked views.
func (t *ViewTracker) Len() int {
	return len(t.used)
}

// MergeExtend unions other into t. View merges never conflict.
func (t *ViewTracker) MergeExtend(other *ViewTracker) {
	for index := range other.used {
		t.used[index] = true
	}
}

// Each calls fn once per tracked index, in no particular order.
func (t *ViewTracker) Each(fn func(TrackerIndex)) {
	for index := range t.used {
		fn(index)
	}
}
