package floorplan

import (
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/packer"
)

// Floorplanner owns one Problem and the diagnostics accumulated by the
// most recently evaluated candidate layout -- spec §6 reporting needs
// these (peak temperature, hotspot/island counts, voltage savings) after
// the search finishes, not just the scalar cost the driver optimizes.
type Floorplanner struct {
	Problem *Problem

	lastAvgTemp     float64
	lastMaxTemp     float64
	lastIslands     int
	lastHotspots    int
	lastModules     int
	lastPowerSaving float64
}

// New builds a Floorplanner for problem.
func New(problem *Problem) *Floorplanner {
	return &Floorplanner{Problem: problem}
}

// Generate packs every die from scratch, attempts a post-pack shift for
// each still-unfulfilled alignment request, then runs the configured
// number of compaction passes alternating axis (spec §4.P compaction,
// §4.A shift-during-generation).
//
// The reference algorithm invokes the alignment shift mid-pack, per
// tuple, while that tuple's relevant-block window is still on the stack.
// Threading that hook through PlaceTuple's signature would touch every
// packer call site for a narrow win, so this runs the shift pass once
// after PlaceAll completes instead: RebuildPlacementStacks already exists
// to repair the insertion stacks after an out-of-band move, and a single
// post-pack pass gets to attempt every outstanding request rather than
// only the ones whose partner happened to still be in the window when its
// tuple was placed.
func (f *Floorplanner) Generate(layout *cbl.Layout, alignmentEnabled bool) {
	for _, die := range layout.Dies {
		packer.PlaceAll(die, alignmentEnabled)
	}

	if alignmentEnabled {
		f.shiftAlignments(layout)
	}

	iterations := f.Problem.Config.Limits.PackingIterations
	for i := 0; i < iterations; i++ {
		dir := cbl.Horizontal
		if i%2 == 1 {
			dir = cbl.Vertical
		}
		for _, die := range layout.Dies {
			packer.PerformPacking(die, dir)
		}
	}
}

// shiftAlignments attempts ShiftCurrentBlock for every alignment request
// not yet fulfilled, probing with a dry run before committing and
// rebuilding the die's insertion stacks on success.
func (f *Floorplanner) shiftAlignments(layout *cbl.Layout) {
	for _, req := range f.Problem.Alignments {
		if req.Fulfilled {
			continue
		}
		if req.SI.Layer != req.SJ.Layer {
			continue // shift-during-generation only ever targets same-die pairs
		}
		die := layout.Dies[req.SJ.Layer]

		var dir cbl.Direction
		switch {
		case req.RangeX() || req.OffsetX():
			dir = cbl.Horizontal
		case req.RangeY() || req.OffsetY():
			dir = cbl.Vertical
		default:
			continue
		}

		if !packer.ShiftCurrentBlock(die, req.SJ, dir, req, true) {
			continue
		}
		packer.ShiftCurrentBlock(die, req.SJ, dir, req, false)
		packer.RebuildPlacementStacks(die, req.SJ, dir, nil)
	}
}
