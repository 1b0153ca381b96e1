// Package block defines the floorplanner's core placeable unit: a
// rectangular circuit block with area/aspect-ratio constraints, per-voltage
// power/delay characteristics, and the mutable placement state the packer
// and alignment engine update during layout generation.
package block

import "github.com/go3dic/floorplanner/pkg/geometry"

// MaxVoltages bounds the per-block feasible-voltage bitset (spec §9: "4
// suffices").
const MaxVoltages = 4

// AlignmentStatus tags the outcome of the most recent alignment evaluation
// touching this block.
type AlignmentStatus int

const (
	AlignUndef AlignmentStatus = iota
	AlignSuccess
	AlignFailHorTooLeft
	AlignFailHorTooRight
	AlignFailVertTooLow
	AlignFailVertTooHigh
)

func (s AlignmentStatus) String() string {
	switch s {
	case AlignSuccess:
		return "SUCCESS"
	case AlignFailHorTooLeft:
		return "FAIL_HOR_TOO_LEFT"
	case AlignFailHorTooRight:
		return "FAIL_HOR_TOO_RIGHT"
	case AlignFailVertTooLow:
		return "FAIL_VERT_TOO_LOW"
	case AlignFailVertTooHigh:
		return "FAIL_VERT_TOO_HIGH"
	default:
		return "UNDEF"
	}
}

// VoltageBitset is a small per-block bitset over MaxVoltages voltage
// indices. Bit k set means voltage k meets the block's delay slack; the
// highest-voltage bit is always set (invariant iv in spec §3).
type VoltageBitset uint8

// FullBitset has every one of MaxVoltages bits set.
const FullBitset VoltageBitset = (1 << MaxVoltages) - 1

// NewVoltageBitset builds a bitset with the top voltage bit always set and
// every bit from minFeasible..MaxVoltages-1 also set (a block can always use
// a voltage at least as high as its minimum feasible one).
func NewVoltageBitset(minFeasible int) VoltageBitset {
	var b VoltageBitset
	for v := minFeasible; v < MaxVoltages; v++ {
		b |= 1 << uint(v)
	}
	b |= 1 << uint(MaxVoltages-1)
	return b
}

// And returns the bitwise AND of two feasible-voltage sets.
func (b VoltageBitset) And(o VoltageBitset) VoltageBitset { return b & o }

// Count returns the number of set bits.
func (b VoltageBitset) Count() int {
	n := 0
	for i := 0; i < MaxVoltages; i++ {
		if b&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}

// MinIndex returns the lowest set bit's index, or -1 if the set is empty.
func (b VoltageBitset) MinIndex() int {
	for i := 0; i < MaxVoltages; i++ {
		if b&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// HasBit reports whether voltage index v is feasible.
func (b VoltageBitset) HasBit(v int) bool {
	return b&(1<<uint(v)) != 0
}

// Trivial reports whether only the top voltage bit is set (no real
// flexibility beyond the always-available maximum voltage).
func (b VoltageBitset) Trivial() bool {
	return b.Count() <= 1
}

// ContiguousNeighbour records one block abutting another on the shared
// boundary, signed per axis the way the contiguity pass discovers it.
type ContiguousNeighbour struct {
	Peer               *Block
	CommonBoundaryH    float64 // signed shared horizontal-edge length
	CommonBoundaryV    float64 // signed shared vertical-edge length
}

// Block is a rectangular circuit block. Immutable fields are set once at
// construction; mutable fields are updated by the packer, alignment
// engine, and voltage assignment passes.
type Block struct {
	// Immutable.
	ID              string
	NumericalID     int
	ARMin, ARMax    float64
	Area            float64
	Soft            bool
	Floorplacement  bool
	PowerDensity    float64
	PowerFactor     [MaxVoltages]float64
	DelayFactor     [MaxVoltages]float64
	Voltages        [MaxVoltages]float64
	BaseDelay       float64

	// Mutable.
	BB                  geometry.Rect
	BBBackup            geometry.Rect
	Layer               int
	Placed              bool
	Rotatable           bool
	AlignmentStat       AlignmentStatus
	FeasibleVoltages    VoltageBitset
	AssignedVoltageIdx  int
	NetDelayMax         float64
	ContiguousNeighbours []ContiguousNeighbour
	AssignedModuleID    int // -1 until voltage assignment commits a module
}

// New builds a block with sane defaults: full feasible-voltage set (only
// the top voltage bit guaranteed, the rest computed by timing analysis
// later), no assigned module, and rotatable unless the caller disables it.
func New(id string, numericalID int, area, arMin, arMax float64, soft bool) *Block {
	return &Block{
		ID:                 id,
		NumericalID:        numericalID,
		Area:               area,
		ARMin:              arMin,
		ARMax:              arMax,
		Soft:               soft,
		Rotatable:          true,
		FeasibleVoltages:   FullBitset,
		AssignedVoltageIdx: MaxVoltages - 1,
		AssignedModuleID:   -1,
	}
}

// Power returns the power consumed by this block at voltage index v:
// power_density * power_factor[v] * area * 1e-6 (spec §3).
func (b *Block) Power(v int) float64 {
	return b.PowerDensity * b.PowerFactor[v] * b.Area * 1e-6
}

// Delay returns the block's delay at its currently assigned voltage:
// base_delay * delay_factor[assigned].
func (b *Block) Delay() float64 {
	return b.BaseDelay * b.DelayFactor[b.AssignedVoltageIdx]
}

// WireDelayBeta is the per-unit-length wire-delay coefficient (ns/um) used
// to derive a block's base_delay from its footprint when no measured value
// is available, rather than from arbitrary randomization.
const WireDelayBeta = 1.0 / 2000.0

// EstimateBaseDelay derives a default base_delay from a block's current
// width and height: beta * (w + h).
func EstimateBaseDelay(w, h float64) float64 {
	return WireDelayBeta * (w + h)
}

// Shape returns the block's current width and height, independent of its
// placed position.
func (b *Block) Shape() (w, h float64) { return b.BB.W(), b.BB.H() }

// SetShape fixes the block's width/height, discarding any previously
// computed lower-left corner (the packer assigns a fresh one every pass).
// Operators call this to rotate or reshape a block before (re-)packing.
func (b *Block) SetShape(w, h float64) {
	b.BB = geometry.NewRect(0, 0, w, h)
}

// ResetPlacement clears the block's position while preserving its current
// shape, readying it for a fresh packing pass.
func (b *Block) ResetPlacement() {
	w, h := b.Shape()
	b.BB = geometry.NewRect(0, 0, w, h)
	b.Placed = false
}

// AspectRatio returns the block's current width/height ratio.
func (b *Block) AspectRatio() float64 {
	if b.BB.H() == 0 {
		return 0
	}
	return b.BB.W() / b.BB.H()
}

// WithinAspectRatio reports whether the current bb respects [ARmin, ARmax]
// (invariant ii in spec §3), tolerant of floating-point error.
func (b *Block) WithinAspectRatio() bool {
	ar := b.AspectRatio()
	return geometry.Geq(ar, b.ARMin) && geometry.Leq(ar, b.ARMax)
}

// Backup snapshots bb into bb_backup (for operator revert).
func (b *Block) Backup() { b.BBBackup = b.BB }

// Restore reverts bb from bb_backup.
func (b *Block) Restore() { b.BB = b.BBBackup }

// Clone returns an independent copy of the block's current value so a
// caller can freeze it (e.g. a new best-solution snapshot) without
// aliasing the live search state the packer/alignment engine keeps
// mutating in place.
func (b *Block) Clone() *Block {
	cp := *b
	cp.ContiguousNeighbours = append([]ContiguousNeighbour(nil), b.ContiguousNeighbours...)
	return &cp
}

// TSVIsland is a Block sub-type standing in for a cluster of TSVs: its
// shape derives from sqrt(count) rounded up in both dimensions,
// aspect-ratio adjusted toward its parent bounding box, then scaled by
// technology pitch (spec §3).
type TSVIsland struct {
	Block
	TSVCount int
}
