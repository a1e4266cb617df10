package track

// Stitch selects which state a merge uses as the "from" side of a transition
// when bridging a child tracker's usage into a parent tracker.
type Stitch int

const (
	// StitchInit uses the parent's state as recorded before any transitions
	// were applied in the current merge sequence. Queue submission uses this
	// to bridge the device tracker's accumulated state into a fresh
	// submission's transit command list.
	StitchInit Stitch = iota

	// StitchLast uses the parent's state as last observed after a sequence
	// of transitions already applied earlier in the same merge sequence.
	// Pass end uses this to bridge a pass-local tracker into the parent
	// command buffer's running usage.
	StitchLast
)

// String returns a human-readable name for the stitch mode.
func (s Stitch) String() string {
	switch s {
	case StitchInit:
		return "Init"
	case StitchLast:
		return "Last"
	default:
		return "Unknown"
	}
}
