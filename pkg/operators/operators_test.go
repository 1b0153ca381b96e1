package operators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/sa"
)

func twoDieLayout() (*cbl.Layout, *block.Block, *block.Block) {
	l := cbl.NewLayout(2)
	a := block.New("a", 0, 8, 0.5, 2, true)
	a.SetShape(4, 2)
	b := block.New("b", 1, 8, 0.5, 2, true)
	b.SetShape(4, 2)

	l.Dies[0].Append(cbl.Tuple{Block: a, L: cbl.Horizontal, T: 0})
	l.Dies[0].Append(cbl.Tuple{Block: b, L: cbl.Horizontal, T: 0})
	a.Layer, b.Layer = 0, 0
	return l, a, b
}

func TestSwapBlocksSameDieRevert(t *testing.T) {
	l, a, b := twoDieLayout()
	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(1))

	op := newSwapBlocks(p, sa.Phase2, rng)
	ok := op.Apply(rng)
	assert.True(t, ok)
	assert.Equal(t, b, l.Dies[0].Tuples[0].Block)
	assert.Equal(t, a, l.Dies[0].Tuples[1].Block)

	op.Revert()
	assert.Equal(t, a, l.Dies[0].Tuples[0].Block)
	assert.Equal(t, b, l.Dies[0].Tuples[1].Block)
}

func TestMoveTupleAcrossDiesRevert(t *testing.T) {
	l, a, _ := twoDieLayout()
	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(7))

	op := newMoveTuple(p, sa.Phase2, rng)
	applied := false
	for i := 0; i < 50 && !applied; i++ {
		applied = op.Apply(rng)
	}
	assert.True(t, applied)

	op.Revert()
	assert.Equal(t, 2, l.Dies[0].Len())
	assert.Equal(t, 0, l.Dies[1].Len())
	assert.Equal(t, 0, a.Layer)
}

func TestSwitchInsertionDirFlipsAndReverts(t *testing.T) {
	l, _, _ := twoDieLayout()
	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(3))

	op := newSwitchInsertionDir(p, rng)
	op.Apply(rng)
	flipped := l.Dies[op.die].Tuples[op.idx].L
	op.Revert()
	original := l.Dies[op.die].Tuples[op.idx].L
	assert.NotEqual(t, flipped, original)
}

func TestShapeBlockRevertsToOriginalShape(t *testing.T) {
	l, a, _ := twoDieLayout()
	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(9))

	w0, h0 := a.Shape()
	op := newShapeBlock(p, rng)
	ok := op.Apply(rng)
	assert.True(t, ok)

	op.Revert()
	w1, h1 := a.Shape()
	assert.InDelta(t, w0, w1, 1e-9)
	assert.InDelta(t, h0, h1, 1e-9)
}

func TestSwapAlignmentCoordinatesSwapsAndReverts(t *testing.T) {
	l, a, b := twoDieLayout()

	req := alignment.New(1, alignment.Flexible, 1, a, b, alignment.Offset, 2.0, alignment.Min, 1.0)
	p := &Pool{Layout: l, Alignments: []*alignment.Request{req}}
	rng := rand.New(rand.NewSource(2))

	op := newSwapAlignmentCoordinates(p, rng)
	ok := op.Apply(rng)
	assert.True(t, ok)
	assert.Equal(t, alignment.Min, req.TypeX)
	assert.InDelta(t, 1.0, req.AlignX, 1e-9)
	assert.Equal(t, alignment.Offset, req.TypeY)
	assert.InDelta(t, 2.0, req.AlignY, 1e-9)

	op.Revert()
	assert.Equal(t, alignment.Offset, req.TypeX)
	assert.InDelta(t, 2.0, req.AlignX, 1e-9)
	assert.Equal(t, alignment.Min, req.TypeY)
	assert.InDelta(t, 1.0, req.AlignY, 1e-9)
}

// a STRICT request is never a candidate for op 7 (spec §4.O: "for a
// FLEXIBLE request").
func TestSwapAlignmentCoordinatesRejectsStrictRequest(t *testing.T) {
	l, a, b := twoDieLayout()
	req := alignment.New(1, alignment.Strict, 1, a, b, alignment.Offset, 2.0, alignment.Undef, 0)
	p := &Pool{Layout: l, Alignments: []*alignment.Request{req}}
	rng := rand.New(rand.NewSource(2))

	op := newSwapAlignmentCoordinates(p, rng)
	ok := op.Apply(rng)
	assert.False(t, ok)
}

// TestSwapBlocksRejectsPowerInversion is spec §4.O selection policy (a):
// die 0's block already has lower power than die 1's, so swapping them
// would put the higher-power block below the lower-power one.
func TestSwapBlocksRejectsPowerInversion(t *testing.T) {
	l := cbl.NewLayout(2)
	lo := block.New("lo", 0, 4, 0.5, 2, false)
	lo.SetShape(2, 2)
	hi := block.New("hi", 1, 4, 0.5, 2, false)
	hi.SetShape(2, 2)
	lo.PowerDensity, hi.PowerDensity = 1.0, 5.0
	l.Dies[0].Append(cbl.Tuple{Block: lo, L: cbl.Horizontal})
	l.Dies[1].Append(cbl.Tuple{Block: hi, L: cbl.Horizontal})
	lo.Layer, hi.Layer = 0, 1

	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		op := newSwapBlocks(p, sa.Phase2, rng)
		assert.False(t, op.Apply(rng))
	}
}

// TestMoveTupleRejectsFloorplacementInPhaseOne is spec §4.O selection
// policy (b): a floorplacement block is pinned while phase one runs.
func TestMoveTupleRejectsFloorplacementInPhaseOne(t *testing.T) {
	l, a, b := twoDieLayout()
	a.Floorplacement = true
	b.Floorplacement = true

	p := &Pool{Layout: l}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		op := newMoveTuple(p, sa.Phase1, rng)
		assert.False(t, op.Apply(rng))
	}
}

// TestShapeBlockEnhancedHardRotationRejectsGrowingRow exercises the
// enhanced hard-block rotation branch: rotating a 10x2 block whose row
// neighbour is only 2 tall would raise the row's governing height from 2
// to 10, so the enhanced rotation rejects the move (original_source
// LayoutOperations performOpEnhancedHardBlockRotation).
func TestShapeBlockEnhancedHardRotationRejectsGrowingRow(t *testing.T) {
	l := cbl.NewLayout(1)
	wide := block.New("wide", 0, 20, 0.5, 2, false)
	wide.SetShape(10, 2)
	wide.BB = geometry.NewRect(0, 0, 10, 2)
	neighbour := block.New("neighbour", 1, 6, 0.5, 2, false)
	neighbour.SetShape(3, 2)
	neighbour.BB = geometry.NewRect(10, 0, 13, 2)

	l.Dies[0].Append(cbl.Tuple{Block: wide, L: cbl.Horizontal})
	l.Dies[0].Append(cbl.Tuple{Block: neighbour, L: cbl.Horizontal})

	op := &shapeBlock{p: &Pool{Layout: l}}
	ok := op.enhancedHardRotate(wide, l.Dies[0])
	assert.False(t, ok, "rotating would grow the row's governing height")

	w, h := wide.Shape()
	assert.InDelta(t, 10.0, w, 1e-9)
	assert.InDelta(t, 2.0, h, 1e-9)
}

func TestSelectUsesEnforceOpsDuringReheat(t *testing.T) {
	l, a, b := twoDieLayout()
	req := alignment.New(1, alignment.Strict, 1, a, b, alignment.Offset, 2.0, alignment.Undef, 0)
	p := &Pool{Layout: l, Alignments: []*alignment.Request{req}}
	source := Select(p)
	rng := rand.New(rand.NewSource(4))

	ctxReheat := sa.SelectionContext{Phase: sa.Phase2, Reheat: true}
	op := source(ctxReheat, rng)
	assert.NotNil(t, op)
	_, isEnforce := op.(*swapBlocksEnforce)
	_, isSwapCoords := op.(*swapAlignmentCoordinates)
	assert.True(t, isEnforce || isSwapCoords, "reheat must draw one of the alignment-repair operators, got %T", op)
}
