// Package voltage implements the contiguous-neighbour graph and the
// bottom-up/top-down compound-module voltage-island assignment (spec
// §4.V). Grounded on katalvlaran-lvlath's graph/adjacency-list
// construction style for the contiguity pass, and on the teacher's
// memoized-registry idiom (pkg/fuzz/precompile/registry.go: a map keyed by
// a canonical id that is never rebuilt) for the compound-module
// memoization table keyed by a block bit-vector.
//
// Open question (spec §9): the reference implementation never built
// inter-die contiguity, so voltage assignment here considers only
// intra-die (same-layer) adjacency, exactly as spec.md inherits.
package voltage

import (
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// BuildContiguity (re)computes every block's ContiguousNeighbours field
// from the current placement of layout, die by die. Two blocks on the same
// die are contiguous when they share a positive-length boundary segment on
// either axis (spec §4.V: abutting vertical or horizontal edges).
func BuildContiguity(layout *cbl.Layout) {
	for _, die := range layout.Dies {
		blocks := make([]*block.Block, 0, die.Len())
		for _, t := range die.Tuples {
			t.Block.ContiguousNeighbours = nil
			blocks = append(blocks, t.Block)
		}
		for i := 0; i < len(blocks); i++ {
			for j := i + 1; j < len(blocks); j++ {
				a, b := blocks[i], blocks[j]

				if vLen, sign, ok := verticalAbutment(a.BB, b.BB); ok {
					a.ContiguousNeighbours = append(a.ContiguousNeighbours,
						block.ContiguousNeighbour{Peer: b, CommonBoundaryV: sign * vLen})
					b.ContiguousNeighbours = append(b.ContiguousNeighbours,
						block.ContiguousNeighbour{Peer: a, CommonBoundaryV: -sign * vLen})
				}
				if hLen, sign, ok := horizontalAbutment(a.BB, b.BB); ok {
					a.ContiguousNeighbours = append(a.ContiguousNeighbours,
						block.ContiguousNeighbour{Peer: b, CommonBoundaryH: sign * hLen})
					b.ContiguousNeighbours = append(b.ContiguousNeighbours,
						block.ContiguousNeighbour{Peer: a, CommonBoundaryH: -sign * hLen})
				}
			}
		}
	}
}

// verticalAbutment reports whether a's right edge touches b's left edge (or
// vice versa) and, if so, the length of their shared y-span and the sign (+1
// if b sits to a's right, -1 if to a's left).
func verticalAbutment(a, b geometry.Rect) (length, sign float64, ok bool) {
	switch {
	case geometry.Eq(a.UR.X, b.LL.X):
		sign = 1
	case geometry.Eq(b.UR.X, a.LL.X):
		sign = -1
	default:
		return 0, 0, false
	}
	lo := max64(a.LL.Y, b.LL.Y)
	hi := min64(a.UR.Y, b.UR.Y)
	if hi <= lo {
		return 0, 0, false
	}
	return hi - lo, sign, true
}

// horizontalAbutment mirrors verticalAbutment for the x-span of a top/bottom
// touching pair.
func horizontalAbutment(a, b geometry.Rect) (length, sign float64, ok bool) {
	switch {
	case geometry.Eq(a.UR.Y, b.LL.Y):
		sign = 1
	case geometry.Eq(b.UR.Y, a.LL.Y):
		sign = -1
	default:
		return 0, 0, false
	}
	lo := max64(a.LL.X, b.LL.X)
	hi := min64(a.UR.X, b.UR.X)
	if hi <= lo {
		return 0, 0, false
	}
	return hi - lo, sign, true
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
