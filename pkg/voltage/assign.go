package voltage

import (
	"math"
	"sort"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// Weights holds the top-down module-selection weighting coefficients (spec
// §4.V: w_sav, w_cor, w_var, w_cnt).
type Weights struct {
	Sav, Cor, Var, Cnt float64
}

func denom(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// bounds captures the global extremes SelectModules's cost formula
// normalises each term against.
type bounds struct {
	maxSav, minSav   float64
	maxCorners       float64
	maxCount         float64
}

func computeBounds(modules []*Module) bounds {
	b := bounds{maxSav: math.Inf(-1), minSav: math.Inf(1), maxCorners: math.Inf(-1), maxCount: math.Inf(-1)}
	for _, m := range modules {
		if m.PowerSavingAvg > b.maxSav {
			b.maxSav = m.PowerSavingAvg
		}
		if m.PowerSavingAvg < b.minSav {
			b.minSav = m.PowerSavingAvg
		}
		if float64(m.CornersPowerRing) > b.maxCorners {
			b.maxCorners = float64(m.CornersPowerRing)
		}
		if float64(len(m.Blocks)) > b.maxCount {
			b.maxCount = float64(len(m.Blocks))
		}
	}
	return b
}

// cost evaluates the spec §4.V top-down selection cost formula.
// lookaheadVar adds a variance term over the already-selected modules'
// average power densities (SelectModules passes a nonzero value only when
// w.Var > 0, after the first selection).
func cost(m *Module, b bounds, w Weights, lookaheadVar float64) float64 {
	savTerm := w.Sav * (b.maxSav - m.PowerSavingAvg) / denom(b.maxSav-b.minSav)
	corTerm := w.Cor * (float64(m.CornersPowerRing) - 4) / denom(b.maxCorners-4)
	varTerm := w.Var * lookaheadVar
	cntTerm := w.Cnt * (b.maxCount - float64(len(m.Blocks))) / denom(b.maxCount-1)
	return savTerm + corTerm + varTerm + cntTerm
}

// SelectModules runs the top-down greedy selection (spec §4.V): repeatedly
// commit the cheapest surviving candidate, then discard every remaining
// module sharing any now-committed block. When merge is true, a final pass
// merges any two selected modules that share a contiguous neighbour and
// agree on minimum voltage index.
func SelectModules(modules []*Module, w Weights, merge bool) []*Module {
	if len(modules) == 0 {
		return nil
	}
	b := computeBounds(modules)

	remaining := append([]*Module(nil), modules...)
	var selected []*Module
	committed := map[int]bool{}

	for len(remaining) > 0 {
		lookahead := map[*Module]float64{}
		if w.Var > 0 && len(selected) > 0 {
			for _, m := range remaining {
				lookahead[m] = lookaheadVariance(selected, m)
			}
		}

		sort.Slice(remaining, func(i, j int) bool {
			return cost(remaining[i], b, w, lookahead[remaining[i]]) < cost(remaining[j], b, w, lookahead[remaining[j]])
		})

		best := remaining[0]
		best.Cost = cost(best, b, w, lookahead[best])
		selected = append(selected, best)
		for id := range best.BlockIDs {
			committed[id] = true
		}
		for _, blk := range best.Blocks {
			blk.AssignedVoltageIdx = best.Feasible.MinIndex()
			blk.AssignedModuleID = best.ID
		}

		var next []*Module
		for _, m := range remaining[1:] {
			shared := false
			for id := range m.BlockIDs {
				if committed[id] {
					shared = true
					break
				}
			}
			if !shared {
				next = append(next, m)
			}
		}
		remaining = next
	}

	if merge {
		selected = mergeSelected(selected)
	}
	return selected
}

// lookaheadVariance estimates the variance contribution candidate m would
// add to the already-selected modules' average power densities, the
// look-ahead spec §4.V uses to re-sort survivors once w_var > 0.
func lookaheadVariance(selected []*Module, m *Module) float64 {
	vals := make([]float64, 0, len(selected)+1)
	for _, s := range selected {
		vals = append(vals, s.PowerDensAvgLayer)
	}
	vals = append(vals, m.PowerDensAvgLayer)

	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var variance float64
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(vals))
}

// mergeSelected merges any two selected modules sharing a contiguous
// neighbour and agreeing on minimum voltage index (spec §4.V finalise
// step), recomputing corners conservatively as corners_A + corners_B - 2.
// Repeats to a fixed point since a merge can create a new adjacency.
func mergeSelected(modules []*Module) []*Module {
	cur := append([]*Module(nil), modules...)
	for {
		merged := false
		for i := 0; i < len(cur) && !merged; i++ {
			for j := i + 1; j < len(cur); j++ {
				a, bm := cur[i], cur[j]
				if a.Feasible.MinIndex() != bm.Feasible.MinIndex() {
					continue
				}
				if !shareContiguousNeighbour(a, bm) {
					continue
				}
				combined := mergeModules(a, bm)
				next := make([]*Module, 0, len(cur)-1)
				for k, m := range cur {
					if k != i && k != j {
						next = append(next, m)
					}
				}
				next = append(next, combined)
				cur = next
				merged = true
				break
			}
		}
		if !merged {
			break
		}
	}
	return cur
}

// mergeModules combines a and bm's block sets and outlines into a single
// module, recomputing corners conservatively and re-deriving power
// statistics from the combined block set.
func mergeModules(a, bm *Module) *Module {
	ids := make(map[int]bool, len(a.BlockIDs)+len(bm.BlockIDs))
	for id := range a.BlockIDs {
		ids[id] = true
	}
	for id := range bm.BlockIDs {
		ids[id] = true
	}
	blocks := append(append([]*block.Block(nil), a.Blocks...), bm.Blocks...)
	outline := append(append([]geometry.Rect(nil), a.Outline...), bm.Outline...)

	m := &Module{
		ID:               a.ID,
		Die:              a.Die,
		Blocks:           blocks,
		BlockIDs:         ids,
		Feasible:         a.Feasible,
		Outline:          outline,
		CornersPowerRing: a.CornersPowerRing + bm.CornersPowerRing - 2,
	}
	m.computePowerStats()
	return m
}

func shareContiguousNeighbour(a, bm *Module) bool {
	for _, blk := range a.Blocks {
		for _, cn := range blk.ContiguousNeighbours {
			if bm.BlockIDs[cn.Peer.NumericalID] {
				return true
			}
		}
	}
	return false
}
