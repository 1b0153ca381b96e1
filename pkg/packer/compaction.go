package packer

import (
	"sort"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// PerformPacking applies one pass of post-packing compaction along dir
// (spec §4.P, parameter packing_iterations controls how many passes the
// caller runs, alternating axes): blocks already at the die boundary, and
// any block tagged AlignSuccess by the alignment engine, keep their
// position; every other block snaps its leading coordinate to the nearest
// front of the already-processed, axis-overlapping neighbours to its left
// (or below), stopping early once those neighbours fully cover its own
// cross-axis extent.
func PerformPacking(c *cbl.CBL, dir cbl.Direction) {
	blocks := make([]*block.Block, len(c.Tuples))
	for i, t := range c.Tuples {
		blocks[i] = t.Block
	}

	if dir == cbl.Horizontal {
		sort.SliceStable(blocks, func(i, j int) bool {
			a, b := blocks[i], blocks[j]
			if !geometry.Eq(a.BB.LL.X, b.BB.LL.X) {
				return a.BB.LL.X < b.BB.LL.X
			}
			if !geometry.Eq(a.BB.UR.X, b.BB.UR.X) {
				return a.BB.UR.X < b.BB.UR.X
			}
			return a.BB.LL.Y < b.BB.LL.Y
		})

		for i, cur := range blocks {
			if cur.BB.LL.X == 0 || cur.AlignmentStat == block.AlignSuccess {
				continue
			}

			x := 0.0
			var checked []geometry.Rect
			rangeChecked := 0.0

			for j := i - 1; j >= 0; j-- {
				neighbor := blocks[j]
				if !geometry.LeftOfIntersecting(neighbor.BB, cur.BB, true) {
					continue
				}
				if neighbor.BB.UR.X > x {
					x = neighbor.BB.UR.X
				}

				intersect := geometry.DetermineIntersection(neighbor.BB, cur.BB)
				rangeChecked += intersect.H()
				for _, r := range checked {
					prev := geometry.DetermineIntersection(intersect, r)
					if prev.H() > 0 {
						rangeChecked -= prev.H()
					}
				}
				checked = append(checked, intersect)

				if geometry.Eq(cur.BB.H(), rangeChecked) {
					break
				}
			}

			w, h := cur.Shape()
			cur.BB = geometry.NewRect(x, cur.BB.LL.Y, x+w, cur.BB.LL.Y+h)
		}
		return
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if !geometry.Eq(a.BB.LL.Y, b.BB.LL.Y) {
			return a.BB.LL.Y < b.BB.LL.Y
		}
		if !geometry.Eq(a.BB.UR.Y, b.BB.UR.Y) {
			return a.BB.UR.Y < b.BB.UR.Y
		}
		return a.BB.LL.X < b.BB.LL.X
	})

	for i, cur := range blocks {
		if cur.BB.LL.Y == 0 || cur.AlignmentStat == block.AlignSuccess {
			continue
		}

		y := 0.0
		var checked []geometry.Rect
		rangeChecked := 0.0

		for j := i - 1; j >= 0; j-- {
			neighbor := blocks[j]
			if !geometry.BelowIntersecting(neighbor.BB, cur.BB, true) {
				continue
			}
			if neighbor.BB.UR.Y > y {
				y = neighbor.BB.UR.Y
			}

			intersect := geometry.DetermineIntersection(neighbor.BB, cur.BB)
			rangeChecked += intersect.W()
			for _, r := range checked {
				prev := geometry.DetermineIntersection(intersect, r)
				if prev.W() > 0 {
					rangeChecked -= prev.W()
				}
			}
			checked = append(checked, intersect)

			if geometry.Eq(cur.BB.W(), rangeChecked) {
				break
			}
		}

		w, h := cur.Shape()
		cur.BB = geometry.NewRect(cur.BB.LL.X, y, cur.BB.LL.X+w, y+h)
	}
}
