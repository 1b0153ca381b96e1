package packer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
)

func newShapedBlock(id string, numID int, w, h float64) *block.Block {
	b := block.New(id, numID, w*h, 0.1, 10, false)
	b.SetShape(w, h)
	return b
}

func TestPlaceAllTwoBlocksSideBySide(t *testing.T) {
	a := newShapedBlock("a", 0, 4, 2)
	bb := newShapedBlock("b", 1, 3, 2)

	c := cbl.New()
	c.Append(cbl.Tuple{Block: a, L: cbl.Horizontal, T: 0})
	c.Append(cbl.Tuple{Block: bb, L: cbl.Horizontal, T: 0})

	PlaceAll(c, false)

	assert.InDelta(t, 0.0, a.BB.LL.X, 1e-9)
	assert.InDelta(t, 0.0, a.BB.LL.Y, 1e-9)
	assert.InDelta(t, 4.0, bb.BB.LL.X, 1e-9, "b must sit to the right of a")
	assert.InDelta(t, 0.0, bb.BB.LL.Y, 1e-9)

	require.Equal(t, c.Hi.Front(), c.Vi.Front(), "corner-block invariant must hold after a legal insertion")
}

func TestPlaceAllVerticalStack(t *testing.T) {
	a := newShapedBlock("a", 0, 4, 2)
	bb := newShapedBlock("b", 1, 4, 3)

	c := cbl.New()
	c.Append(cbl.Tuple{Block: a, L: cbl.Vertical, T: 0})
	c.Append(cbl.Tuple{Block: bb, L: cbl.Vertical, T: 0})

	PlaceAll(c, false)

	assert.InDelta(t, 0.0, a.BB.LL.Y, 1e-9)
	assert.InDelta(t, 2.0, bb.BB.LL.Y, 1e-9, "b must sit above a")
	assert.InDelta(t, 0.0, bb.BB.LL.X, 1e-9)

	require.Equal(t, c.Hi.Front(), c.Vi.Front())
}

func TestPlaceAllNoOverlap(t *testing.T) {
	a := newShapedBlock("a", 0, 5, 5)
	bb := newShapedBlock("b", 1, 3, 6)
	cc := newShapedBlock("c", 2, 2, 2)

	c := cbl.New()
	c.Append(cbl.Tuple{Block: a, L: cbl.Horizontal, T: 0})
	c.Append(cbl.Tuple{Block: bb, L: cbl.Horizontal, T: 0})
	c.Append(cbl.Tuple{Block: cc, L: cbl.Vertical, T: 1})

	PlaceAll(c, false)

	blocks := []*block.Block{a, bb, cc}
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			ri := blocks[i].BB
			rj := blocks[j].BB
			overlapX := minF(ri.UR.X, rj.UR.X) - maxF(ri.LL.X, rj.LL.X)
			overlapY := minF(ri.UR.Y, rj.UR.Y) - maxF(ri.LL.Y, rj.LL.Y)
			assert.False(t, overlapX > 1e-9 && overlapY > 1e-9, "blocks %s and %s must not overlap", blocks[i].ID, blocks[j].ID)
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
