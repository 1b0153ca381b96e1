// Package operators implements the seven layout-generation moves the SA
// driver applies to a candidate layout (spec §4.O), plus the policy that
// selects among them each iteration. It imports pkg/sa for the shared
// Operator interface and SelectionContext rather than the other way
// around, so pkg/sa stays free of any concrete-move knowledge -- the same
// split the teacher draws between pkg/fuzz (what fault to inject) and
// pkg/injection (how to inject it).
package operators

import (
	"math"
	"math/rand"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/sa"
)

// Kind identifies one of the seven operators (spec §4.O numbering).
type Kind int

const (
	SwapBlocksKind Kind = iota + 1
	MoveTupleKind
	SwitchInsertionDirKind
	SwitchTupleJunctsKind
	ShapeBlockKind
	SwapBlocksEnforceKind
	SwapAlignmentCoordinatesKind
)

// Pool bundles everything an operator needs to pick random targets: the
// layout it mutates and the alignment requests active on it (ops 6/7 use
// these to target a specific failing constraint rather than a uniformly
// random block pair).
type Pool struct {
	Layout      *cbl.Layout
	Alignments  []*alignment.Request
	MaxJuncts   int
}

// Select implements the spec §4.O selection policy: a layout-fit counter
// of zero forces a move that touches a block still exceeding the die
// outline (approximated here as "any operator" since outline membership
// is the caller's concern via which blocks it lets Pool expose); phase-two
// reheat chooses between the two alignment-repair operators; otherwise one
// of the five general-purpose operators is drawn uniformly.
func Select(p *Pool) sa.OperatorSource {
	return func(ctx sa.SelectionContext, rng *rand.Rand) sa.Operator {
		if ctx.Phase == sa.Phase2 && ctx.Reheat && len(p.Alignments) > 0 {
			if rng.Intn(2) == 0 {
				return newSwapBlocksEnforce(p, rng)
			}
			return newSwapAlignmentCoordinates(p, rng)
		}

		switch Kind(1 + rng.Intn(5)) {
		case SwapBlocksKind:
			return newSwapBlocks(p, ctx.Phase, rng)
		case MoveTupleKind:
			return newMoveTuple(p, ctx.Phase, rng)
		case SwitchInsertionDirKind:
			return newSwitchInsertionDir(p, rng)
		case SwitchTupleJunctsKind:
			return newSwitchTupleJuncts(p, rng)
		default:
			return newShapeBlock(p, rng)
		}
	}
}

// powerAwareReject reports whether the pair currently at (d1,b1)/(d2,b2)
// already respects power-aware layering -- lower-power blocks kept in the
// lower die -- so that swapping them would invert it (spec §4.O selection
// policy (a)). Every operator but op 6 (swapBlocksEnforce) honours this.
func powerAwareReject(d1 int, b1 *block.Block, d2 int, b2 *block.Block) bool {
	switch {
	case d1 < d2:
		return b1.PowerDensity < b2.PowerDensity
	case d2 < d1:
		return b2.PowerDensity < b1.PowerDensity
	default:
		return false
	}
}

// floorplacementReject reports whether a swap/move touching b1 or b2 must
// be rejected because the search is still in phase one, where large
// "floorplacement" macros are pinned to cool convergence (spec §4.O
// selection policy (b)).
func floorplacementReject(phase sa.Phase, b1, b2 *block.Block) bool {
	return phase == sa.Phase1 && (b1.Floorplacement || b2.Floorplacement)
}

func randDie(p *Pool, rng *rand.Rand) int {
	return rng.Intn(len(p.Layout.Dies))
}

// nonEmptyDie returns the index of a die with at least one tuple, or -1 if
// every die is empty.
func nonEmptyDie(p *Pool, rng *rand.Rand) int {
	n := len(p.Layout.Dies)
	start := rng.Intn(n)
	for i := 0; i < n; i++ {
		d := (start + i) % n
		if p.Layout.Dies[d].Len() > 0 {
			return d
		}
	}
	return -1
}

// --- 1. SwapBlocks -----------------------------------------------------

// swapBlocks exchanges the tuples at two positions, possibly across dies
// (spec §4.O op 1). A same-die swap of a tuple with itself is a no-op and
// reported as a failed application (spec §7(c)).
type swapBlocks struct {
	p          *Pool
	phase      sa.Phase
	d1, i1     int
	d2, i2     int
	applied    bool
}

func newSwapBlocks(p *Pool, phase sa.Phase, rng *rand.Rand) *swapBlocks {
	return &swapBlocks{p: p, phase: phase}
}

func (op *swapBlocks) Apply(rng *rand.Rand) bool {
	d1 := nonEmptyDie(op.p, rng)
	if d1 < 0 {
		return false
	}
	d2 := randDie(op.p, rng)
	c1 := op.p.Layout.Dies[d1]
	i1 := rng.Intn(c1.Len())

	var c2 *cbl.CBL
	var i2 int
	if d2 == d1 {
		if c1.Len() < 2 {
			return false
		}
		i2 = rng.Intn(c1.Len())
		if i2 == i1 {
			return false
		}
		c2 = c1
	} else {
		c2 = op.p.Layout.Dies[d2]
		if c2.Len() == 0 {
			return false
		}
		i2 = rng.Intn(c2.Len())
	}

	b1, b2 := c1.Tuples[i1].Block, c2.Tuples[i2].Block
	if powerAwareReject(d1, b1, d2, b2) || floorplacementReject(op.phase, b1, b2) {
		return false
	}

	op.d1, op.i1, op.d2, op.i2 = d1, i1, d2, i2

	if d1 == d2 {
		c1.Swap(i1, i2)
	} else {
		b1 := c1.Tuples[i1].Block
		b2 := c2.Tuples[i2].Block
		c1.Tuples[i1].Block, c2.Tuples[i2].Block = b2, b1
		b1.Layer, b2.Layer = d2, d1
	}
	op.applied = true
	return true
}

func (op *swapBlocks) Revert() {
	if !op.applied {
		return
	}
	c1 := op.p.Layout.Dies[op.d1]
	c2 := op.p.Layout.Dies[op.d2]
	if op.d1 == op.d2 {
		c1.Swap(op.i1, op.i2)
		return
	}
	b1 := c1.Tuples[op.i1].Block
	b2 := c2.Tuples[op.i2].Block
	c1.Tuples[op.i1].Block, c2.Tuples[op.i2].Block = b2, b1
	b1.Layer, b2.Layer = op.d2, op.d1
}

// --- 2. MoveTuple -------------------------------------------------------

// moveTuple relocates one tuple from its die to a position in another die
// (spec §4.O op 2): a move within the same die is rejected, since that
// degenerates to a sequence permutation already covered by swap.
type moveTuple struct {
	p           *Pool
	phase       sa.Phase
	srcDie, src int
	dstDie, dst int
	tuple       cbl.Tuple
	applied     bool
}

func newMoveTuple(p *Pool, phase sa.Phase, rng *rand.Rand) *moveTuple {
	return &moveTuple{p: p, phase: phase}
}

func (op *moveTuple) Apply(rng *rand.Rand) bool {
	if len(op.p.Layout.Dies) < 2 {
		return false
	}
	srcDie := nonEmptyDie(op.p, rng)
	if srcDie < 0 {
		return false
	}
	dstDie := rng.Intn(len(op.p.Layout.Dies))
	if dstDie == srcDie {
		dstDie = (dstDie + 1) % len(op.p.Layout.Dies)
	}

	src := op.p.Layout.Dies[srcDie]
	dst := op.p.Layout.Dies[dstDie]

	srcIdx := rng.Intn(src.Len())
	t := src.Tuples[srcIdx]
	dstIdx := 0
	if dst.Len() > 0 {
		dstIdx = rng.Intn(dst.Len() + 1)
	}

	if dst.Len() > 0 {
		pivot := dstIdx
		if pivot >= dst.Len() {
			pivot = dst.Len() - 1
		}
		neighbour := dst.Tuples[pivot].Block
		if powerAwareReject(srcDie, t.Block, dstDie, neighbour) || floorplacementReject(op.phase, t.Block, neighbour) {
			return false
		}
	} else if floorplacementReject(op.phase, t.Block, t.Block) {
		return false
	}

	op.srcDie, op.src, op.dstDie, op.dst, op.tuple = srcDie, srcIdx, dstDie, dstIdx, t
	t.Block.Layer = dstDie

	src.Tuples = append(src.Tuples[:srcIdx], src.Tuples[srcIdx+1:]...)
	dst.Tuples = append(dst.Tuples, cbl.Tuple{})
	copy(dst.Tuples[dstIdx+1:], dst.Tuples[dstIdx:])
	dst.Tuples[dstIdx] = t

	op.applied = true
	return true
}

func (op *moveTuple) Revert() {
	if !op.applied {
		return
	}
	dst := op.p.Layout.Dies[op.dstDie]
	src := op.p.Layout.Dies[op.srcDie]

	dst.Tuples = append(dst.Tuples[:op.dst], dst.Tuples[op.dst+1:]...)
	src.Tuples = append(src.Tuples, cbl.Tuple{})
	copy(src.Tuples[op.src+1:], src.Tuples[op.src:])
	src.Tuples[op.src] = op.tuple
	op.tuple.Block.Layer = op.srcDie
}

// --- 3. SwitchInsertionDir ----------------------------------------------

// switchInsertionDir flips one tuple's L between HORIZONTAL and VERTICAL
// (spec §4.O op 3).
type switchInsertionDir struct {
	p       *Pool
	die, idx int
	applied bool
}

func newSwitchInsertionDir(p *Pool, rng *rand.Rand) *switchInsertionDir {
	return &switchInsertionDir{p: p}
}

func (op *switchInsertionDir) Apply(rng *rand.Rand) bool {
	die := nonEmptyDie(op.p, rng)
	if die < 0 {
		return false
	}
	c := op.p.Layout.Dies[die]
	idx := rng.Intn(c.Len())
	op.die, op.idx = die, idx
	c.Tuples[idx].L = c.Tuples[idx].L.Flip()
	op.applied = true
	return true
}

func (op *switchInsertionDir) Revert() {
	if !op.applied {
		return
	}
	c := op.p.Layout.Dies[op.die]
	c.Tuples[op.idx].L = c.Tuples[op.idx].L.Flip()
}

// --- 4. SwitchTupleJuncts -----------------------------------------------

// switchTupleJuncts assigns a tuple a new junction count T in [0, maxT]
// (spec §4.O op 4), where maxT is bounded by how many blocks have already
// been placed ahead of it (T can never exceed the number of relevant
// blocks available to pop).
type switchTupleJuncts struct {
	p        *Pool
	die, idx int
	prevT    int
	applied  bool
}

func newSwitchTupleJuncts(p *Pool, rng *rand.Rand) *switchTupleJuncts {
	return &switchTupleJuncts{p: p}
}

func (op *switchTupleJuncts) Apply(rng *rand.Rand) bool {
	die := nonEmptyDie(op.p, rng)
	if die < 0 {
		return false
	}
	c := op.p.Layout.Dies[die]
	idx := rng.Intn(c.Len())
	maxT := idx
	if op.p.MaxJuncts > 0 && op.p.MaxJuncts < maxT {
		maxT = op.p.MaxJuncts
	}
	if maxT <= 0 {
		return false
	}
	newT := rng.Intn(maxT + 1)
	if newT == c.Tuples[idx].T {
		return false
	}
	op.die, op.idx, op.prevT = die, idx, c.Tuples[idx].T
	c.Tuples[idx].T = newT
	op.applied = true
	return true
}

func (op *switchTupleJuncts) Revert() {
	if !op.applied {
		return
	}
	op.p.Layout.Dies[op.die].Tuples[op.idx].T = op.prevT
}

// --- 5. ShapeBlock -------------------------------------------------------

// shapeBlock reshapes one block (spec §4.O op 5), drawing one of four
// moves depending on the block's kind: hard blocks either do a simple
// 90-degree rotation (w/h swap) or, with the enhanced variant, rotate only
// if doing so would not grow the row's or column's governing dimension;
// soft blocks either sample a new aspect ratio uniformly within
// [ARmin, ARmax] (simple) or stretch/shrink one edge to align with the
// nearest other block's boundary on that die (enhanced). Hard, non-
// rotatable blocks reject the move.
type shapeBlock struct {
	p            *Pool
	die, idx     int
	prevW, prevH float64
	applied      bool
}

func newShapeBlock(p *Pool, rng *rand.Rand) *shapeBlock { return &shapeBlock{p: p} }

func (op *shapeBlock) Apply(rng *rand.Rand) bool {
	die := nonEmptyDie(op.p, rng)
	if die < 0 {
		return false
	}
	c := op.p.Layout.Dies[die]
	idx := rng.Intn(c.Len())
	b := c.Tuples[idx].Block
	if !b.Soft && !b.Rotatable {
		return false
	}

	w, h := b.Shape()
	op.die, op.idx, op.prevW, op.prevH = die, idx, w, h

	var ok bool
	if b.Soft {
		if rng.Intn(2) == 0 {
			ok = op.simpleSoftShape(b, rng)
		} else {
			ok = op.enhancedSoftShape(b, rng, c)
		}
	} else if rng.Intn(2) == 0 {
		b.SetShape(h, w)
		ok = true
	} else {
		ok = op.enhancedHardRotate(b, c)
	}
	if !ok {
		return false
	}

	op.applied = true
	return true
}

func (op *shapeBlock) simpleSoftShape(b *block.Block, rng *rand.Rand) bool {
	ar := b.ARMin + rng.Float64()*(b.ARMax-b.ARMin)
	if ar <= 0 {
		return false
	}
	newW := sqrtArea(b.Area * ar)
	newH := b.Area / newW
	b.SetShape(newW, newH)
	return true
}

// enhancedHardRotate rotates b only if the row/column-maximum dimension on
// c would not grow, the way Chen et al.'s enhanced rotation limits itself
// to moves that keep compaction achievable (original_source
// LayoutOperations.cpp performOpEnhancedHardBlockRotation).
func (op *shapeBlock) enhancedHardRotate(b *block.Block, c *cbl.CBL) bool {
	w, h := b.Shape()

	var gain, loss float64
	if w > h {
		rowMaxHeight := h
		for _, t := range c.Tuples {
			if t.Block != b && geometry.Eq(t.Block.BB.LL.Y, b.BB.LL.Y) {
				if t.Block.BB.H() > rowMaxHeight {
					rowMaxHeight = t.Block.BB.H()
				}
			}
		}
		gain = w - h
		loss = w - rowMaxHeight
	} else {
		colMaxWidth := w
		for _, t := range c.Tuples {
			if t.Block != b && geometry.Eq(t.Block.BB.LL.X, b.BB.LL.X) {
				if t.Block.BB.W() > colMaxWidth {
					colMaxWidth = t.Block.BB.W()
				}
			}
		}
		gain = h - w
		loss = h - colMaxWidth
	}

	if loss <= 0 {
		b.SetShape(h, w)
		return true
	}
	return false
}

// enhancedSoftShape stretches or shrinks one edge of b so it aligns with
// the nearest other block's boundary on c, picking one of the four
// directions uniformly (original_source LayoutOperations.cpp
// performOpEnhancedSoftBlockShaping, op-codes 10-13).
func (op *shapeBlock) enhancedSoftShape(b *block.Block, rng *rand.Rand, c *cbl.CBL) bool {
	var boundary float64
	var newW, newH float64

	switch rng.Intn(4) {
	case 0: // stretch right front to the nearest right front beyond it
		boundary = 2 * b.BB.UR.X
		for _, t := range c.Tuples {
			if t.Block != b && t.Block.BB.UR.X > b.BB.UR.X {
				boundary = math.Min(boundary, t.Block.BB.UR.X)
			}
		}
		newW = boundary - b.BB.LL.X
	case 1: // shrink right front down to the nearest left front below it
		for _, t := range c.Tuples {
			if t.Block != b && t.Block.BB.LL.X < b.BB.UR.X {
				boundary = math.Max(boundary, t.Block.BB.LL.X)
			}
		}
		newW = boundary - b.BB.LL.X
	case 2: // stretch top front to the nearest top front beyond it
		boundary = 2 * b.BB.UR.Y
		for _, t := range c.Tuples {
			if t.Block != b && t.Block.BB.UR.Y > b.BB.UR.Y {
				boundary = math.Min(boundary, t.Block.BB.UR.Y)
			}
		}
		newH = boundary - b.BB.LL.Y
		newW = b.Area / newH
		if newW <= 0 {
			return false
		}
		b.SetShape(newW, newH)
		return b.WithinAspectRatio()
	default: // shrink top front down to the nearest bottom front below it
		for _, t := range c.Tuples {
			if t.Block != b && t.Block.BB.LL.Y < b.BB.UR.Y {
				boundary = math.Max(boundary, t.Block.BB.LL.Y)
			}
		}
		newH = boundary - b.BB.LL.Y
		newW = b.Area / newH
		if newW <= 0 {
			return false
		}
		b.SetShape(newW, newH)
		return b.WithinAspectRatio()
	}

	if newW <= 0 {
		return false
	}
	newH = b.Area / newW
	b.SetShape(newW, newH)
	return b.WithinAspectRatio()
}

func (op *shapeBlock) Revert() {
	if !op.applied {
		return
	}
	op.p.Layout.Dies[op.die].Tuples[op.idx].Block.SetShape(op.prevW, op.prevH)
}

func sqrtArea(a float64) float64 {
	if a <= 0 {
		return 1
	}
	lo, hi := 0.0, a+1
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if mid*mid < a {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// --- 6. SwapBlocksEnforce ------------------------------------------------

// swapBlocksEnforce is swapBlocks restricted to a pair drawn from a failing
// alignment request's two partner blocks (spec §4.O op 6): reheat-phase
// cooling uses it to directly attack the constraint currently preventing
// convergence rather than hoping a uniformly random swap happens to help.
type swapBlocksEnforce struct {
	inner *swapBlocks
	si, sj *block.Block
}

func newSwapBlocksEnforce(p *Pool, rng *rand.Rand) *swapBlocksEnforce {
	return &swapBlocksEnforce{inner: &swapBlocks{p: p}}
}

func (op *swapBlocksEnforce) Apply(rng *rand.Rand) bool {
	if len(op.inner.p.Alignments) == 0 {
		return false
	}
	req := op.inner.p.Alignments[rng.Intn(len(op.inner.p.Alignments))]
	if req.Fulfilled {
		return false
	}
	si, sj := req.SI, req.SJ
	op.si, op.sj = si, sj

	d1, i1, ok1 := locate(op.inner.p.Layout, si)
	d2, i2, ok2 := locate(op.inner.p.Layout, sj)
	if !ok1 || !ok2 {
		return false
	}
	op.inner.d1, op.inner.i1, op.inner.d2, op.inner.i2 = d1, i1, d2, i2

	c1 := op.inner.p.Layout.Dies[d1]
	c2 := op.inner.p.Layout.Dies[d2]
	if d1 == d2 {
		c1.Swap(i1, i2)
	} else {
		c1.Tuples[i1].Block, c2.Tuples[i2].Block = sj, si
		si.Layer, sj.Layer = d2, d1
	}
	op.inner.applied = true
	return true
}

func (op *swapBlocksEnforce) Revert() { op.inner.Revert() }

func locate(l *cbl.Layout, b *block.Block) (die, idx int, ok bool) {
	for d, c := range l.Dies {
		for i, t := range c.Tuples {
			if t.Block == b {
				return d, i, true
			}
		}
	}
	return 0, 0, false
}

// --- 7. SwapAlignmentCoordinates -----------------------------------------

// swapAlignmentCoordinates exchanges a FLEXIBLE request's X and Y partial
// alignments (spec §4.O op 7): TypeX/AlignX trade places with TypeY/AlignY.
// Unlike op 6 it never touches the CBL tuple sequence or block placement
// directly -- it perturbs the constraint itself, relying on the next
// alignment evaluation/packing pass to react to the swapped axes. The
// operator is self-inverse: applying it twice restores the original
// request.
type swapAlignmentCoordinates struct {
	p       *Pool
	req     *alignment.Request
	applied bool
}

func newSwapAlignmentCoordinates(p *Pool, rng *rand.Rand) *swapAlignmentCoordinates {
	return &swapAlignmentCoordinates{p: p}
}

func (op *swapAlignmentCoordinates) Apply(rng *rand.Rand) bool {
	var candidates []*alignment.Request
	for _, req := range op.p.Alignments {
		if req.Handling == alignment.Flexible && !req.Fulfilled {
			candidates = append(candidates, req)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	req := candidates[rng.Intn(len(candidates))]
	op.req = req
	op.swap()
	op.applied = true
	return true
}

func (op *swapAlignmentCoordinates) swap() {
	op.req.TypeX, op.req.TypeY = op.req.TypeY, op.req.TypeX
	op.req.AlignX, op.req.AlignY = op.req.AlignY, op.req.AlignX
}

func (op *swapAlignmentCoordinates) Revert() {
	if !op.applied {
		return
	}
	op.swap()
}
