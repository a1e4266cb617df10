package track

// BindGroupTracker is a flat "used" set of bind-group tracker indices, each
// carrying the transitive closure of buffer/texture tracker indices that
// bind group's entries reference. Merging a bind group's closure into a
// pass tracker is how draw/dispatch synchronization against its bound
// resources is achieved (spec §4.1, "Tracker set").
type BindGroupTracker struct {
	used    map[TrackerIndex]bool
	buffers map[TrackerIndex][]TrackerIndex // bind group index -> buffer indices it references
	textures map[TrackerIndex][]TrackerIndex // bind group index -> texture indices it references
}

// NewBindGroupTracker creates a new, empty bind-group tracker.
func NewBindGroupTracker() *BindGroupTracker {
	return &BindGroupTracker{
		used:     make(map[TrackerIndex]bool),
		buffers:  make(map[TrackerIndex][]TrackerIndex),
		textures: make(map[TrackerIndex][]TrackerIndex),
	}
}

// Insert adds a bind group to the set along with the buffer/texture tracker
// indices it transitively references (its BindGroupDescriptor entries).
func (t *BindGroupTracker) Insert(index TrackerIndex, referencedBuffers, referencedTextures []TrackerIndex) {
	t.used[index] = true
	t.buffers[index] = referencedBuffers
	t.textures[index] = referencedTextures
}

// Remove drops a bind group from the set.
func (t *BindGroupTracker) Remove(index TrackerIndex) {
	delete(t.used, index)
	delete(t.buffers, index)
	delete(t.textures, index)
}

// Contains reports whether index is in the set.
func (t *BindGroupTracker) Contains(index TrackerIndex) bool {
	return t.used[index]
}

// Len returns the number of tracked bind groups.
func (t *BindGroupTracker) Len() int {
	return len(t.used)
}

// MergeExtend unions other into t.
func (t *BindGroupTracker) MergeExtend(other *BindGroupTracker) {
	for index := range other.used {
		t.used[index] = true
		t.buffers[index] = other.buffers[index]
		t.textures[index] = other.textures[index]
	}
}

// ReferencedBuffers returns the buffer tracker indices index's bindings
// touch, for propagating usage into a buffer tracker/scope.
func (t *BindGroupTracker) ReferencedBuffers(index TrackerIndex) []TrackerIndex {
	return t.buffers[index]
}

// ReferencedTextures returns the texture tracker indices index's bindings
// touch, for propagating usage into a texture tracker/scope.
func (t *BindGroupTracker) ReferencedTextures(index TrackerIndex) []TrackerIndex {
	return t.textures[index]
}
