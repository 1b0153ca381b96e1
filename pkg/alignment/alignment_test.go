package alignment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go3dic/floorplanner/pkg/block"
)

func placedBlock(id string, llx, lly, urx, ury float64) *block.Block {
	b := block.New(id, 0, (urx-llx)*(ury-lly), 0.1, 10, false)
	b.BB.LL.X, b.BB.LL.Y, b.BB.UR.X, b.BB.UR.Y = llx, lly, urx, ury
	return b
}

func TestEvaluateMinOverlapSatisfied(t *testing.T) {
	si := placedBlock("si", 0, 0, 4, 4)
	sj := placedBlock("sj", 2, 0, 6, 4)

	req := New(1, Strict, 1, si, sj, Min, 1.0, Undef, 0)
	ev := req.Evaluate()

	assert.True(t, req.Fulfilled)
	assert.Equal(t, 0.0, ev.Cost)
}

func TestEvaluateMinOverlapFailsWhenDisjoint(t *testing.T) {
	si := placedBlock("si", 0, 0, 2, 2)
	sj := placedBlock("sj", 10, 0, 12, 2)

	req := New(1, Strict, 1, si, sj, Min, 1.0, Undef, 0)
	ev := req.Evaluate()

	assert.False(t, req.Fulfilled)
	assert.Greater(t, ev.Cost, 0.0)
	assert.Equal(t, block.AlignFailHorTooLeft, si.AlignmentStat)
	assert.Equal(t, block.AlignFailHorTooRight, sj.AlignmentStat)
}

func TestEvaluateOffsetSatisfied(t *testing.T) {
	si := placedBlock("si", 0, 0, 2, 2)
	sj := placedBlock("sj", 5, 0, 7, 2)

	req := New(1, Strict, 1, si, sj, Offset, 5.0, Undef, 0)
	ev := req.Evaluate()

	assert.True(t, req.Fulfilled)
	assert.Equal(t, 0.0, ev.Cost)
}

func TestEvaluateOffsetMismatchWeightedBySignals(t *testing.T) {
	si := placedBlock("si", 0, 0, 2, 2)
	sj := placedBlock("sj", 8, 0, 10, 2)

	req := New(1, Flexible, 3, si, sj, Offset, 5.0, Undef, 0)
	ev := req.Evaluate()

	assert.False(t, req.Fulfilled)
	assert.InDelta(t, 3.0, ev.ActualMismatch, 1e-9)
	assert.InDelta(t, 9.0, ev.Cost, 1e-9)
}

func TestVerticalBusMinOverlapBothAxes(t *testing.T) {
	si := placedBlock("si", 0, 0, 4, 4)
	sj := placedBlock("sj", 0, 0, 4, 4)
	req := New(1, Strict, 1, si, sj, Min, 1.0, Min, 1.0)
	assert.True(t, req.VerticalBus())
}
