package track

import (
	"github.com/latticegpu/wgpucore/hal"
	"github.com/latticegpu/wgpucore/types"
)

// TextureUses represents internal texture usage states for tracking.
// Mirrors types.TextureUsage but adds the UNINITIALIZED sentinel used
// before a subresource's first real use.
type TextureUses uint32

const (
	TextureUsesNone             TextureUses = 0
	TextureUsesCopySrc          TextureUses = 1 << 0
	TextureUsesCopyDst          TextureUses = 1 << 1
	TextureUsesSampled          TextureUses = 1 << 2
	TextureUsesStorageRead      TextureUses = 1 << 3
	TextureUsesStorageWrite     TextureUses = 1 << 4
	TextureUsesOutputAttachment TextureUses = 1 << 5

	// TextureUsesUninitialized is the sentinel meaning "no prior state";
	// the first real use establishes state with no barrier required.
	// Bit-exact with the spec's UNINITIALIZED = 0xFFFF.
	TextureUsesUninitialized TextureUses = 0xFFFF
)

// readOnlyTextureUses is every bit that does not require exclusive access.
const readOnlyTextureUses = TextureUsesCopySrc | TextureUsesSampled | TextureUsesStorageRead

// IsReadOnly reports whether u contains only read-only usage bits.
// It also reports true for TextureUsesUninitialized; callers that must
// tell the sentinel apart check IsUninitialized first.
func (u TextureUses) IsReadOnly() bool {
	if u == TextureUsesUninitialized {
		return true
	}
	return u&^readOnlyTextureUses == 0
}

// IsUninitialized reports whether u is the pre-first-use sentinel.
func (u TextureUses) IsUninitialized() bool {
	return u == TextureUsesUninitialized
}

// IsEmpty reports whether no usage bits are set.
func (u TextureUses) IsEmpty() bool {
	return u == TextureUsesNone
}

// IsCompatible reports whether two usages can coexist without a barrier.
func (u TextureUses) IsCompatible(other TextureUses) bool {
	if u.IsEmpty() || other.IsEmpty() || u.IsUninitialized() || other.IsUninitialized() {
		return true
	}
	if u.IsReadOnly() && other.IsReadOnly() {
		return true
	}
	return u == other
}

// ToTextureUsage converts internal uses to types.TextureUsage for HAL.
func (u TextureUses) ToTextureUsage() types.TextureUsage {
	var result types.TextureUsage
	if u&TextureUsesCopySrc != 0 {
		result |= types.TextureUsageCopySrc
	}
	if u&TextureUsesCopyDst != 0 {
		result |= types.TextureUsageCopyDst
	}
	if u&TextureUsesSampled != 0 {
		result |= types.TextureUsageTextureBinding
	}
	if u&(TextureUsesStorageRead|TextureUsesStorageWrite) != 0 {
		result |= types.TextureUsageStorageBinding
	}
	if u&TextureUsesOutputAttachment != 0 {
		result |= types.TextureUsageRenderAttachment
	}
	return result
}

// SubresourceRange identifies a (mip x layer x aspect) region of a texture.
// LevelEnd/LayerEnd are exclusive; a dimension whose start equals its end
// is empty.
type SubresourceRange struct {
	Aspects    types.TextureAspect
	LevelStart uint32
	LevelEnd   uint32
	LayerStart uint32
	LayerEnd   uint32
}

// Overlaps reports whether r and other share any subresource cell.
func (r SubresourceRange) Overlaps(other SubresourceRange) bool {
	if r.Aspects&other.Aspects == 0 {
		return false
	}
	if r.LevelEnd <= other.LevelStart || other.LevelEnd <= r.LevelStart {
		return false
	}
	if r.LayerEnd <= other.LayerStart || other.LayerEnd <= r.LayerStart {
		return false
	}
	return true
}

// intersect returns the overlapping region of r and other. Callers must
// check Overlaps first; the result is meaningless otherwise.
func (r SubresourceRange) intersect(other SubresourceRange) SubresourceRange {
	return SubresourceRange{
		Aspects:    r.Aspects & other.Aspects,
		LevelStart: maxU32(r.LevelStart, other.LevelStart),
		LevelEnd:   minU32(r.LevelEnd, other.LevelEnd),
		LayerStart: maxU32(r.LayerStart, other.LayerStart),
		LayerEnd:   minU32(r.LayerEnd, other.LayerEnd),
	}
}

// equalRange reports whether two ranges cover exactly the same cells.
func (r SubresourceRange) equalRange(other SubresourceRange) bool {
	return r.Aspects == other.Aspects &&
		r.LevelStart == other.LevelStart && r.LevelEnd == other.LevelEnd &&
		r.LayerStart == other.LayerStart && r.LayerEnd == other.LayerEnd
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// textureTile is one piece of the piecewise-constant usage function over a
// texture's subresource cube.
type textureTile struct {
	Range SubresourceRange
	Usage TextureUses
}

// TextureTransition is a pending barrier for one subresource region.
type TextureTransition struct {
	Index TrackerIndex
	Range SubresourceRange
	From  TextureUses
	To    TextureUses
}

// NeedsBarrier reports whether this transition requires a backend barrier.
func (t TextureTransition) NeedsBarrier() bool {
	if t.From == t.To {
		return false
	}
	if t.From.IsUninitialized() {
		return false
	}
	if t.From.IsReadOnly() && t.To.IsReadOnly() {
		return false
	}
	return true
}

// AllImageStages is the conservative shader-stage mask used when a texture
// barrier's pipeline-stage scope cannot be proven tighter, mirroring
// wgpu-native's all_image_stages().
const AllImageStages = types.ShaderStagesAll

// IntoHAL converts a pending texture transition to a HAL texture barrier.
func (t TextureTransition) IntoHAL(texture hal.Texture) hal.TextureBarrier {
	mipCount := t.Range.LevelEnd - t.Range.LevelStart
	layerCount := t.Range.LayerEnd - t.Range.LayerStart
	return hal.TextureBarrier{
		Texture: texture,
		Range: hal.TextureRange{
			Aspect:          t.Range.Aspects,
			BaseMipLevel:    t.Range.LevelStart,
			MipLevelCount:   mipCount,
			BaseArrayLayer:  t.Range.LayerStart,
			ArrayLayerCount: layerCount,
		},
		Usage: hal.TextureUsageTransition{
			OldUsage: t.From.ToTextureUsage(),
			NewUsage: t.To.ToTextureUsage(),
		},
		Stages: AllImageStages,
	}
}

// textureEntry holds every tile ever touched for one texture, kept sorted
// by nothing in particular — tiles are scanned linearly and split/merged
// in place, which is the straightforward realization of "a list of tiles
// whose ranges partition the region ever touched" (spec's texture tracker).
type textureEntry struct {
	tiles []textureTile
}

// TextureTracker tracks subresource-range usage states for a device.
type TextureTracker struct {
	entries  map[TrackerIndex]*textureEntry
	metadata ResourceMetadata
}

// NewTextureTracker creates a new, empty texture tracker.
func NewTextureTracker() *TextureTracker {
	return &TextureTracker{
		entries:  make(map[TrackerIndex]*textureEntry),
		metadata: NewResourceMetadata(),
	}
}

// InsertSingle begins tracking a texture with a single full-extent tile at
// the given usage (typically TextureUsesUninitialized at creation time).
func (t *TextureTracker) InsertSingle(index TrackerIndex, full SubresourceRange, usage TextureUses) {
	t.entries[index] = &textureEntry{tiles: []textureTile{{Range: full, Usage: usage}}}
	t.metadata.SetOwned(index, true)
}

// Remove stops tracking a texture entirely.
func (t *TextureTracker) Remove(index TrackerIndex) {
	delete(t.entries, index)
	t.metadata.SetOwned(index, false)
}

// IsTracked reports whether the texture has any tracked tiles.
func (t *TextureTracker) IsTracked(index TrackerIndex) bool {
	_, ok := t.entries[index]
	return ok
}

// Query returns every (range, usage) tile currently recorded for index.
func (t *TextureTracker) Query(index TrackerIndex) []textureTile {
	e, ok := t.entries[index]
	if !ok {
		return nil
	}
	out := make([]textureTile, len(e.tiles))
	copy(out, e.tiles)
	return out
}

// UseExtend records that an operation needs index in rng with a usage
// compatible with whatever is already tracked there; it never emits a
// transition. Returns a *UsageConflictError (reusing the buffer tracker's
// error type shape with texture fields) if any overlapping tile disagrees.
func (t *TextureTracker) UseExtend(index TrackerIndex, rng SubresourceRange, usage TextureUses) error {
	e, ok := t.entries[index]
	if !ok {
		t.InsertSingle(index, rng, usage)
		return nil
	}
	split, err := splitAndApply(e.tiles, rng, func(existing TextureUses) (TextureUses, error) {
		if !existing.IsCompatible(usage) {
			return 0, &TextureUsageConflictError{Index: index, Range: rng, Existing: existing, New: usage}
		}
		if existing.IsUninitialized() {
			return usage, nil
		}
		return existing | usage, nil
	})
	if err != nil {
		return err
	}
	e.tiles = coalesce(split)
	return nil
}

// UseReplace records a usage that may conflict with the current state,
// returning the transitions a caller must lower into barriers. A tile whose
// existing usage is TextureUsesUninitialized or a read-only subset of the
// new usage yields no transition, per the spec's sentinel rule.
func (t *TextureTracker) UseReplace(index TrackerIndex, rng SubresourceRange, usage TextureUses) []TextureTransition {
	e, ok := t.entries[index]
	if !ok {
		t.InsertSingle(index, rng, usage)
		return nil
	}
	var transitions []TextureTransition
	newTiles, _ := splitAndApply(e.tiles, rng, func(existing TextureUses) (TextureUses, error) {
		readOnlySubset := existing&^readOnlyTextureUses == 0 && existing&^usage == 0
		if existing != usage && !existing.IsUninitialized() && !readOnlySubset {
			transitions = append(transitions, TextureTransition{Index: index, Range: rng, From: existing, To: usage})
		}
		return usage, nil
	})
	e.tiles = coalesce(newTiles)
	return transitions
}

// splitAndApply intersects rng against every tile in tiles, splitting any
// tile that is only partially covered, and applies fn to the usage of each
// resulting piece that falls inside rng. Pieces outside rng pass through.
func splitAndApply(tiles []textureTile, rng SubresourceRange, fn func(TextureUses) (TextureUses, error)) ([]textureTile, error) {
	result := make([]textureTile, 0, len(tiles)+4)
	for _, tile := range tiles {
		if !tile.Range.Overlaps(rng) {
			result = append(result, tile)
			continue
		}
		overlap := tile.Range.intersect(rng)
		for _, piece := range subtractRange(tile.Range, overlap) {
			result = append(result, textureTile{Range: piece, Usage: tile.Usage})
		}
		newUsage, err := fn(tile.Usage)
		if err != nil {
			return nil, err
		}
		result = append(result, textureTile{Range: overlap, Usage: newUsage})
	}
	return result, nil
}

// subtractRange returns the pieces of whole not covered by part, split
// axis-aligned (levels first, then layers, then aspect); the pieces do not
// overlap. part must be fully contained in whole.
func subtractRange(whole, part SubresourceRange) []SubresourceRange {
	var pieces []SubresourceRange
	if part.LevelStart > whole.LevelStart {
		pieces = append(pieces, SubresourceRange{
			Aspects: part.Aspects, LevelStart: whole.LevelStart, LevelEnd: part.LevelStart,
			LayerStart: whole.LayerStart, LayerEnd: whole.LayerEnd,
		})
	}
	if part.LevelEnd < whole.LevelEnd {
		pieces = append(pieces, SubresourceRange{
			Aspects: part.Aspects, LevelStart: part.LevelEnd, LevelEnd: whole.LevelEnd,
			LayerStart: whole.LayerStart, LayerEnd: whole.LayerEnd,
		})
	}
	midLevelStart, midLevelEnd := part.LevelStart, part.LevelEnd
	if part.LayerStart > whole.LayerStart {
		pieces = append(pieces, SubresourceRange{
			Aspects: part.Aspects, LevelStart: midLevelStart, LevelEnd: midLevelEnd,
			LayerStart: whole.LayerStart, LayerEnd: part.LayerStart,
		})
	}
	if part.LayerEnd < whole.LayerEnd {
		pieces = append(pieces, SubresourceRange{
			Aspects: part.Aspects, LevelStart: midLevelStart, LevelEnd: midLevelEnd,
			LayerStart: part.LayerEnd, LayerEnd: whole.LayerEnd,
		})
	}
	if unaffected := whole.Aspects &^ part.Aspects; unaffected != 0 {
		pieces = append(pieces, SubresourceRange{
			Aspects: unaffected, LevelStart: whole.LevelStart, LevelEnd: whole.LevelEnd,
			LayerStart: whole.LayerStart, LayerEnd: whole.LayerEnd,
		})
	}
	return pieces
}

// coalesce re-merges adjacent tiles that ended up with identical usage
// after a split, opportunistically, as the spec requires.
func coalesce(tiles []textureTile) []textureTile {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(tiles); i++ {
			for j := i + 1; j < len(tiles); j++ {
				if tiles[i].Usage != tiles[j].Usage {
					continue
				}
				if merged, ok := tryMergeRange(tiles[i].Range, tiles[j].Range); ok {
					tiles[i].Range = merged
					tiles = append(tiles[:j], tiles[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return tiles
}

// tryMergeRange merges two ranges into one if they are adjacent/equal along
// exactly one axis and identical along the others.
func tryMergeRange(a, b SubresourceRange) (SubresourceRange, bool) {
	if a.Aspects == b.Aspects && a.LayerStart == b.LayerStart && a.LayerEnd == b.LayerEnd {
		if a.LevelEnd == b.LevelStart {
			return SubresourceRange{Aspects: a.Aspects, LevelStart: a.LevelStart, LevelEnd: b.LevelEnd, LayerStart: a.LayerStart, LayerEnd: a.LayerEnd}, true
		}
		if b.LevelEnd == a.LevelStart {
			return SubresourceRange{Aspects: a.Aspects, LevelStart: b.LevelStart, LevelEnd: a.LevelEnd, LayerStart: a.LayerStart, LayerEnd: a.LayerEnd}, true
		}
	}
	if a.Aspects == b.Aspects && a.LevelStart == b.LevelStart && a.LevelEnd == b.LevelEnd {
		if a.LayerEnd == b.LayerStart {
			return SubresourceRange{Aspects: a.Aspects, LevelStart: a.LevelStart, LevelEnd: a.LevelEnd, LayerStart: a.LayerStart, LayerEnd: b.LayerEnd}, true
		}
		if b.LayerEnd == a.LayerStart {
			return SubresourceRange{Aspects: a.Aspects, LevelStart: a.LevelStart, LevelEnd: a.LevelEnd, LayerStart: b.LayerStart, LayerEnd: a.LayerEnd}, true
		}
	}
	return SubresourceRange{}, false
}

// TextureUsageConflictError is returned when incompatible usages overlap.
type TextureUsageConflictError struct {
	Index    TrackerIndex
	Range    SubresourceRange
	Existing TextureUses
	New      TextureUses
}

func (e *TextureUsageConflictError) Error() string {
	return "texture usage conflict: incompatible usages in same scope"
}

// TextureUsageScope tracks texture usage within a command buffer or pass,
// mirroring BufferUsageScope.
type TextureUsageScope struct {
	tracker  *TextureTracker
	metadata ResourceMetadata
}

// NewTextureUsageScope creates a new, empty texture usage scope.
func NewTextureUsageScope() *TextureUsageScope {
	return &TextureUsageScope{tracker: NewTextureTracker(), metadata: NewResourceMetadata()}
}

// SetUsage records usage for index within rng, unioning with whatever this
// scope has already recorded there. Returns a conflict error on disagreement.
func (s *TextureUsageScope) SetUsage(index TrackerIndex, rng SubresourceRange, usage TextureUses) error {
	if err := s.tracker.UseExtend(index, rng, usage); err != nil {
		return err
	}
	s.metadata.SetOwned(index, true)
	return nil
}

// IsUsed reports whether index has any recorded usage in this scope.
func (s *TextureUsageScope) IsUsed(index TrackerIndex) bool {
	return s.tracker.IsTracked(index)
}

// Clear resets the scope for reuse.
func (s *TextureUsageScope) Clear() {
	s.tracker = NewTextureTracker()
	s.metadata.Clear()
}

// MergeExtend unions scope into the tracker; fails on first conflict.
func (t *TextureTracker) MergeExtend(scope *TextureUsageScope) error {
	for index, entry := range scope.tracker.entries {
		for _, tile := range entry.tiles {
			if err := t.UseExtend(index, tile.Range, tile.Usage); err != nil {
				return err
			}
		}
	}
	return nil
}

// MergeReplace merges scope into the tracker, returning the transitions a
// barrier pass must realize. See BufferTracker.MergeReplace for the Init
// vs Last distinction; because each TextureTracker index holds its
// genuinely current piecewise state (not a replay log), both stitch modes
// read that same state — the distinction matters to the caller's barrier
// placement (Init: insert ahead of a fresh submission; Last: insert ahead
// of the next pass's commands), not to the usage values returned here.
func (t *TextureTracker) MergeReplace(scope *TextureUsageScope, stitch Stitch) []TextureTransition {
	_ = stitch
	var all []TextureTransition
	for index, entry := range scope.tracker.entries {
		for _, tile := range entry.tiles {
			all = append(all, t.UseReplace(index, tile.Range, tile.Usage)...)
		}
	}
	return all
}
