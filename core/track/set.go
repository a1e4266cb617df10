package track

// TrackerSet bundles the four per-resource-kind trackers that together
// describe everything a command encoder, pass, or device has touched.
// MergeExtend/MergeReplace on a set fan out to each component, which is the
// unified merge/stitch algebra the spec calls for.
type TrackerSet struct {
	Buffers    *BufferTracker
	Textures   *TextureTracker
	Views      *ViewTracker
	BindGroups *BindGroupTracker
}

// NewTrackerSet creates an empty tracker set, suitable for a device's
// top-level tracker or a fresh pass/encoder scope.
func NewTrackerSet() *TrackerSet {
	return &TrackerSet{
		Buffers:    NewBufferTracker(),
		Textures:   NewTextureTracker(),
		Views:      NewViewTracker(),
		BindGroups: NewBindGroupTracker(),
	}
}

// UsageScope is the per-pass/per-encoder accumulator merged into a
// TrackerSet at a stitch point; it mirrors TrackerSet but over the *Scope
// types, which validate-before-commit within the scope itself.
type UsageScope struct {
	Buffers    *BufferUsageScope
	Textures   *TextureUsageScope
	Views      *ViewTracker
	BindGroups *BindGroupTracker
}

// NewUsageScope creates an empty usage scope for a new pass or encoder.
func NewUsageScope() *UsageScope {
	return &UsageScope{
		Buffers:    NewBufferUsageScope(),
		Textures:   NewTextureUsageScope(),
		Views:      NewViewTracker(),
		BindGroups: NewBindGroupTracker(),
	}
}

// MergeExtend merges scope into t component-wise, failing on the first
// conflict reported by any component.
func (t *TrackerSet) MergeExtend(scope *UsageScope) error {
	if err := t.Buffers.MergeExtend(scope.Buffers); err != nil {
		return err
	}
	if err := t.Textures.MergeExtend(scope.Textures); err != nil {
		return err
	}
	t.Views.MergeExtend(scope.Views)
	t.BindGroups.MergeExtend(scope.BindGroups)
	return nil
}

// StitchTransitions is the concatenated result of a TrackerSet.MergeReplace:
// buffer transitions first, then texture transitions, matching the order
// PendingTransition/TextureTransition are lowered into barrier commands.
type StitchTransitions struct {
	Buffers  []PendingTransition
	Textures []TextureTransition
}

// MergeReplace merges scope into t, returning every transition a stitch
// point (pass end or queue submit) must lower into backend barriers.
func (t *TrackerSet) MergeReplace(scope *UsageScope, stitch Stitch) StitchTransitions {
	t.Views.MergeExtend(scope.Views)
	t.BindGroups.MergeExtend(scope.BindGroups)
	return StitchTransitions{
		Buffers:  t.Buffers.MergeReplace(scope.Buffers, stitch),
		Textures: t.Textures.MergeReplace(scope.Textures, stitch),
	}
}
