// Package packer implements the O(n) corner-block-list packing algorithm
// (spec §4.P): walking a die's tuple sequence left to right, maintaining the
// two insertion-stack deques Hi/Vi, and deriving each block's lower-left
// corner from the relevant blocks popped off the stack for its direction.
package packer

import (
	"sort"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// PlaceAll packs every tuple of c in sequence order, starting from an empty
// Hi/Vi and PI=0. alignmentEnabled selects the extended placed-blocks
// boundary check (required once any block may have been shifted by the
// alignment engine during this same pass).
func PlaceAll(c *cbl.CBL, alignmentEnabled bool) {
	c.Hi = &cbl.Deque{}
	c.Vi = &cbl.Deque{}
	c.PI = 0
	for _, t := range c.Tuples {
		t.Block.ResetPlacement()
	}
	for c.PI < c.Len() {
		PlaceTuple(c, alignmentEnabled)
	}
}

// PlaceTuple places the tuple at c.PI: pops the relevant blocks for its
// insertion direction, derives the block's lower-left corner, updates the
// Hi/Vi stacks, marks it placed, and advances PI.
func PlaceTuple(c *cbl.CBL, alignmentEnabled bool) []*block.Block {
	t := c.Tuples[c.PI]
	cur := t.Block
	w, h := cur.Shape()

	relevant := popRelevantBlocks(c, t)

	if t.L == cbl.Horizontal {
		y := determineY(c, cur, t.L, relevant, false)
		cur.BB = geometry.NewRect(cur.BB.LL.X, y, cur.BB.LL.X+w, y+h)
		x := determineX(c, cur, t.L, relevant, alignmentEnabled)
		cur.BB = geometry.NewRect(x, y, x+w, y+h)
	} else {
		x := determineX(c, cur, t.L, relevant, false)
		cur.BB = geometry.NewRect(x, cur.BB.LL.Y, x+w, cur.BB.LL.Y+h)
		y := determineY(c, cur, t.L, relevant, alignmentEnabled)
		cur.BB = geometry.NewRect(x, y, x+w, y+h)
	}

	updatePlacementStacks(c, cur, t.L, relevant)
	cur.Placed = true
	c.PI++

	return relevant
}

// popRelevantBlocks pops min(T+1, stack size) blocks off the stack matching
// the tuple's direction (Hi for HORIZONTAL, Vi for VERTICAL), front first.
// The returned slice preserves pop order (index 0 = original stack front).
func popRelevantBlocks(c *cbl.CBL, t cbl.Tuple) []*block.Block {
	stack := c.Hi
	if t.L == cbl.Vertical {
		stack = c.Vi
	}

	n := t.T + 1
	if n > stack.Len() {
		n = stack.Len()
	}

	relevant := make([]*block.Block, 0, n)
	for len(relevant) < n {
		relevant = append(relevant, stack.PopFront())
	}
	return relevant
}

// determineX derives the current block's ll.x. For VERTICAL insertion, x is
// the primary coordinate: the left die boundary if Vi is now empty,
// otherwise the minimal ll.x among the relevant blocks. For HORIZONTAL
// insertion, x is the secondary (y-dependent) coordinate: the rightmost
// front of the blocks vertically overlapping cur, checked against either
// just the relevant blocks or (extendedCheck) every already-placed block --
// required once alignment may have shifted blocks off their stack-implied
// positions.
func determineX(c *cbl.CBL, cur *block.Block, dir cbl.Direction, relevant []*block.Block, extendedCheck bool) float64 {
	if dir == cbl.Vertical {
		if c.Vi.Len() == 0 {
			return 0
		}
		x := relevant[0].BB.LL.X
		for _, b := range relevant[1:] {
			if b.BB.LL.X < x {
				x = b.BB.LL.X
			}
		}
		return x
	}

	x := 0.0
	if extendedCheck {
		for _, t := range c.Tuples {
			if !t.Block.Placed {
				break
			}
			if geometry.IntersectsVertical(cur.BB, t.Block.BB) && t.Block.BB.UR.X > x {
				x = t.Block.BB.UR.X
			}
		}
	} else {
		for _, b := range relevant {
			if geometry.IntersectsVertical(cur.BB, b.BB) && b.BB.UR.X > x {
				x = b.BB.UR.X
			}
		}
	}
	return x
}

// determineY mirrors determineX for the y coordinate.
func determineY(c *cbl.CBL, cur *block.Block, dir cbl.Direction, relevant []*block.Block, extendedCheck bool) float64 {
	if dir == cbl.Horizontal {
		if c.Hi.Len() == 0 {
			return 0
		}
		y := relevant[0].BB.LL.Y
		for _, b := range relevant[1:] {
			if b.BB.LL.Y < y {
				y = b.BB.LL.Y
			}
		}
		return y
	}

	y := 0.0
	if extendedCheck {
		for _, t := range c.Tuples {
			if !t.Block.Placed {
				break
			}
			if geometry.IntersectsHorizontal(cur.BB, t.Block.BB) && t.Block.BB.UR.Y > y {
				y = t.Block.BB.UR.Y
			}
		}
	} else {
		for _, b := range relevant {
			if geometry.IntersectsHorizontal(cur.BB, b.BB) && b.BB.UR.Y > y {
				y = b.BB.UR.Y
			}
		}
	}
	return y
}

// updatePlacementStacks folds cur into Hi/Vi after it has been placed.
func updatePlacementStacks(c *cbl.CBL, cur *block.Block, dir cbl.Direction, relevant []*block.Block) {
	if dir == cbl.Horizontal {
		// Orthogonal stack Vi: add cur only if no relevant block sits
		// above it (checked on y alone, independent of x-overlap, so
		// Hi/Vi never disagree on which block is the corner).
		addToStack := true
		for _, b := range relevant {
			if geometry.BelowIntersecting(cur.BB, b.BB, false) {
				addToStack = false
				break
			}
		}
		if addToStack {
			c.Vi.PushFront(cur)
		}

		// Parallel stack Hi: cur is always one of the right-most
		// blocks now. Re-push any relevant block not dominated
		// (left-of, vertically overlapping) by cur, iterating in
		// reverse to retain their original stack order.
		c.Hi.PushFront(cur)
		for i := len(relevant) - 1; i >= 0; i-- {
			b := relevant[i]
			if !geometry.LeftOfIntersecting(b.BB, cur.BB, true) {
				c.Hi.PushFront(b)
			}
		}
	} else {
		addToStack := true
		for _, b := range relevant {
			if geometry.LeftOfIntersecting(cur.BB, b.BB, false) {
				addToStack = false
				break
			}
		}
		if addToStack {
			c.Hi.PushFront(cur)
		}

		c.Vi.PushFront(cur)
		for i := len(relevant) - 1; i >= 0; i-- {
			b := relevant[i]
			if !geometry.BelowIntersecting(b.BB, cur.BB, true) {
				c.Vi.PushFront(b)
			}
		}
	}
}

// RebuildPlacementStacks repairs Hi/Vi after cur has been moved by the
// alignment engine's shiftCurrentBlock, which can invalidate the incremental
// assumptions updatePlacementStacks relies on (even the implied insertion
// direction may differ post-shift). It drops now-covered entries from both
// stacks, re-admits the relevant blocks and cur itself where still
// uncovered, and re-sorts each stack along its parallel dimension. If the
// two stacks end up with different corner blocks, it tries dropping entries
// from the front of one stack (then, if that empties it, the other) until
// the corners agree again.
func RebuildPlacementStacks(c *cbl.CBL, cur *block.Block, dir cbl.Direction, relevant []*block.Block) {
	leftOf := func(a, b geometry.Rect) bool { return geometry.LeftOfIntersecting(a, b, true) }
	below := func(a, b geometry.Rect) bool { return geometry.BelowIntersecting(a, b, true) }

	rebuildOne(c, c.Hi, cur, dir, cbl.Horizontal, relevant, leftOf)
	sortDescending(c.Hi, func(a, b geometry.Rect) bool {
		return !geometry.BelowIntersecting(a, b, false)
	})

	rebuildOne(c, c.Vi, cur, dir, cbl.Vertical, relevant, below)
	sortDescending(c.Vi, func(a, b geometry.Rect) bool {
		return !geometry.LeftOfIntersecting(a, b, false)
	})

	if c.Hi.Front() == c.Vi.Front() {
		return
	}

	hiBackup := c.Hi.Clone()
	for c.Hi.Front() != c.Vi.Front() {
		if c.Hi.Len() == 0 {
			break
		}
		c.Hi.PopFront()
	}

	if c.Hi.Len() == 0 {
		c.Hi = hiBackup

		viBackup := c.Vi.Clone()
		for c.Hi.Front() != c.Vi.Front() {
			if c.Vi.Len() == 0 {
				break
			}
			c.Vi.PopFront()
		}

		if c.Vi.Len() == 0 {
			c.Vi = viBackup
		}
	}
}

// rebuildOne applies the three steps of RebuildPlacementStacks to a single
// stack: a) drop entries now covered by cur (per isCovered) and, when dir
// matches stackDir, re-admit the relevant blocks not covered by cur; b) push
// cur to the back unless some already-placed block covers it.
func rebuildOne(c *cbl.CBL, stack *cbl.Deque, cur *block.Block, dir, stackDir cbl.Direction, relevant []*block.Block, isCovered func(a, b geometry.Rect) bool) {
	kept := make([]*block.Block, 0, stack.Len())
	for _, b := range stack.Items() {
		if !isCovered(b.BB, cur.BB) {
			kept = append(kept, b)
		}
	}
	stack.SetItems(kept)

	if dir == stackDir {
		for _, b := range relevant {
			if !isCovered(b.BB, cur.BB) {
				stack.PushFront(b)
			}
		}
	}

	covered := false
	for _, t := range c.Tuples {
		if !t.Block.Placed {
			break
		}
		if isCovered(cur.BB, t.Block.BB) {
			covered = true
			break
		}
	}
	if !covered {
		stack.PushBack(cur)
	}
}

// sortDescending stable-sorts a deque's contents so that less(a, b) places a
// before b.
func sortDescending(d *cbl.Deque, less func(a, b geometry.Rect) bool) {
	items := append([]*block.Block(nil), d.Items()...)
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i].BB, items[j].BB)
	})
	d.SetItems(items)
}
