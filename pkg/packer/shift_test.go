package packer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/cbl"
)

func TestShiftCurrentBlockOffsetMovesBlockRight(t *testing.T) {
	si := newShapedBlock("si", 0, 4, 2)
	sj := newShapedBlock("sj", 1, 4, 2)
	sj.BB.LL.X, sj.BB.LL.Y, sj.BB.UR.X, sj.BB.UR.Y = 2, 0, 6, 2

	c := cbl.New()
	c.Append(cbl.Tuple{Block: si, L: cbl.Horizontal, T: 0})
	c.Append(cbl.Tuple{Block: sj, L: cbl.Horizontal, T: 0})

	req := alignment.New(1, alignment.Strict, 1, si, sj, alignment.Offset, 5.0, alignment.Undef, 0)

	shifted := ShiftCurrentBlock(c, sj, cbl.Horizontal, req, false)

	assert.True(t, shifted)
	assert.InDelta(t, 5.0, sj.BB.LL.X, 1e-9)
}

func TestShiftCurrentBlockDryRunLeavesBlockInPlace(t *testing.T) {
	si := newShapedBlock("si", 0, 4, 2)
	sj := newShapedBlock("sj", 1, 4, 2)
	sj.BB.LL.X, sj.BB.LL.Y, sj.BB.UR.X, sj.BB.UR.Y = 2, 0, 6, 2

	c := cbl.New()
	c.Append(cbl.Tuple{Block: si, L: cbl.Horizontal, T: 0})
	c.Append(cbl.Tuple{Block: sj, L: cbl.Horizontal, T: 0})

	req := alignment.New(1, alignment.Strict, 1, si, sj, alignment.Offset, 5.0, alignment.Undef, 0)

	shifted := ShiftCurrentBlock(c, sj, cbl.Horizontal, req, true)

	assert.True(t, shifted)
	assert.InDelta(t, 2.0, sj.BB.LL.X, 1e-9, "dry run must not mutate the block")
}
