package packer

import (
	"math"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// ShiftCurrentBlock moves shiftBlock along dir to better satisfy req
// against its partner block (spec §4.A's shift-during-generation step;
// pkg/floorplan.Generate calls it once per unfulfilled same-die request,
// after the die has been packed). It shifts only as far as already-placed
// blocks allow, and reports whether a (positive) shift was found -- with
// dryRun set, the report is computed but shiftBlock is left untouched,
// letting the caller probe feasibility before committing to a rebuild of
// the placement stacks.
func ShiftCurrentBlock(c *cbl.CBL, shiftBlock *block.Block, dir cbl.Direction, req *alignment.Request, dryRun bool) bool {
	reference := req.SJ
	if shiftBlock == req.SJ {
		reference = req.SI
	}

	if dir == cbl.Horizontal {
		var overlapOffset, rng float64
		switch {
		case req.RangeX():
			rng = math.Min(shiftBlock.BB.W(), reference.BB.W())
			rng = math.Min(rng, req.AlignX)
			overlapOffset = shiftBlock.BB.UR.X - reference.BB.LL.X
		case req.OffsetX():
			rng = req.AlignX
			overlapOffset = shiftBlock.BB.LL.X - reference.BB.LL.X
		}

		if overlapOffset >= rng {
			return false
		}
		shiftX := rng - overlapOffset

		neighborFound := false
		neighborX := 0.0
		for _, t := range c.Tuples {
			if t.Block == shiftBlock {
				break
			}
			if geometry.LeftOfIntersecting(shiftBlock.BB, t.Block.BB, true) {
				if !neighborFound || t.Block.BB.LL.X < neighborX {
					neighborX = t.Block.BB.LL.X
				}
				neighborFound = true
			}
		}
		if neighborFound {
			shiftX = math.Min(shiftX, neighborX-shiftBlock.BB.UR.X)
		}

		shifted := shiftX > 0
		if !dryRun {
			shiftBlock.BB = shiftBlock.BB.Translate(shiftX, 0)
		}
		return shifted
	}

	var overlapOffset, rng float64
	switch {
	case req.RangeY():
		rng = math.Min(shiftBlock.BB.H(), reference.BB.H())
		rng = math.Min(rng, req.AlignY)
		overlapOffset = shiftBlock.BB.UR.Y - reference.BB.LL.Y
	case req.OffsetY():
		rng = req.AlignY
		overlapOffset = shiftBlock.BB.LL.Y - reference.BB.LL.Y
	}

	if overlapOffset >= rng {
		return false
	}
	shiftY := rng - overlapOffset

	neighborFound := false
	neighborY := 0.0
	for _, t := range c.Tuples {
		if t.Block == shiftBlock {
			break
		}
		if geometry.BelowIntersecting(shiftBlock.BB, t.Block.BB, true) {
			if !neighborFound || t.Block.BB.LL.Y < neighborY {
				neighborY = t.Block.BB.LL.Y
			}
			neighborFound = true
		}
	}
	if neighborFound {
		shiftY = math.Min(shiftY, neighborY-shiftBlock.BB.UR.Y)
	}

	shifted := shiftY > 0
	if !dryRun {
		shiftBlock.BB = shiftBlock.BB.Translate(0, shiftY)
	}
	return shifted
}
