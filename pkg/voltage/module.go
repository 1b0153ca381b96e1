package voltage

import (
	"math"
	"sort"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// Module is a candidate voltage island: a contiguous set of blocks sharing
// at least one feasible voltage (spec §3 CompoundModule).
type Module struct {
	ID               int
	Die              int
	Blocks           []*block.Block
	BlockIDs         map[int]bool
	Feasible         block.VoltageBitset
	Outline          []geometry.Rect
	CornersPowerRing int
	OutlineCost      float64

	// Cost is filled in by SelectModules once every candidate's global
	// position (relative to the min/max across all candidates) is known.
	Cost float64

	PowerSavingAvg     float64
	PowerDensAvgLayer  float64
	PowerStdDevLayer   float64
}

func bitsetKey(ids map[int]bool) string {
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)
	// A fixed-width four-byte encoding per sorted id, comma-separated, is
	// unambiguous and fast to compare; the
	// memoization table only needs equality, not ordering.
	key := make([]byte, 0, len(sorted)*5)
	for _, id := range sorted {
		key = append(key, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(key)
}

// EnumerateModules runs the bottom-up compound-module enumeration for one
// die (spec §4.V): starting from every single-block module, it repeatedly
// grows by one contiguous neighbour, pruning per the three rules --
// trivial-AND skip, no-change deferral to the single lowest-outline-cost
// candidate, and immediate branching on any proper-subset AND. Modules are
// memoised by block-id set so no set of blocks is ever explored twice.
func EnumerateModules(die int, blocks []*block.Block) []*Module {
	memo := map[string]bool{}
	var results []*Module
	nextID := 0

	var grow func(m *Module)
	grow = func(m *Module) {
		key := bitsetKey(m.BlockIDs)
		if memo[key] {
			return
		}
		memo[key] = true
		m.ID = nextID
		nextID++
		results = append(results, m)

		type candidate struct {
			peer     *block.Block
			feasible block.VoltageBitset
		}
		var deferred []candidate

		seen := map[int]bool{}
		for _, b := range m.Blocks {
			for _, cn := range b.ContiguousNeighbours {
				if m.BlockIDs[cn.Peer.NumericalID] || seen[cn.Peer.NumericalID] {
					continue
				}
				seen[cn.Peer.NumericalID] = true

				and := m.Feasible.And(cn.Peer.FeasibleVoltages)
				switch {
				case and.Count() <= 1 && !(m.Feasible.Trivial() && cn.Peer.FeasibleVoltages.Trivial()):
					continue
				case and == m.Feasible:
					deferred = append(deferred, candidate{cn.Peer, and})
				default:
					grow(growModule(m, cn.Peer, and, blocks))
				}
			}
		}

		if len(deferred) == 0 {
			return
		}
		best := deferred[0]
		bestCost := outlineCost(m, best.peer, blocks)
		for _, c := range deferred[1:] {
			oc := outlineCost(m, c.peer, blocks)
			if oc < bestCost {
				bestCost = oc
				best = c
			}
		}
		grow(growModule(m, best.peer, best.feasible, blocks))
	}

	for _, b := range blocks {
		m := &Module{
			Die:      die,
			Blocks:   []*block.Block{b},
			BlockIDs: map[int]bool{b.NumericalID: true},
			Feasible: b.FeasibleVoltages,
			Outline:  []geometry.Rect{b.BB},
		}
		grow(m)
	}
	return results
}

// outlineCost models the intrusion a neighbour's inclusion would cause
// (spec §4.V): the module's last outline rect is extended to the bounding
// box with the neighbour, then every block not in the module whose feasible
// voltage set differs from the module's is tested for intersection with
// that extended rect; cost is the summed intrusion area over the extended
// rect's area.
func outlineCost(m *Module, neighbour *block.Block, allBlocks []*block.Block) float64 {
	last := m.Outline[len(m.Outline)-1]
	extended := geometry.BoundingBox(last, neighbour.BB)
	if extended.Area() <= 0 {
		return 0
	}

	newFeasible := m.Feasible.And(neighbour.FeasibleVoltages)
	var intrusion float64
	for _, b := range allBlocks {
		if m.BlockIDs[b.NumericalID] || b == neighbour {
			continue
		}
		if b.FeasibleVoltages == newFeasible {
			continue
		}
		inter := geometry.DetermineIntersection(extended, b.BB)
		intrusion += inter.Area()
	}
	return intrusion / extended.Area()
}

// growModule returns a new module extending m with neighbour, recomputing
// its outline (splitting into two sub-rects, and incrementing the
// power-ring corner count by 2, whenever the extension intrudes on a
// differently-voltaged block) and its power statistics.
func growModule(m *Module, neighbour *block.Block, feasible block.VoltageBitset, allBlocks []*block.Block) *Module {
	ids := make(map[int]bool, len(m.BlockIDs)+1)
	for id := range m.BlockIDs {
		ids[id] = true
	}
	ids[neighbour.NumericalID] = true

	blocks := append(append([]*block.Block(nil), m.Blocks...), neighbour)

	last := m.Outline[len(m.Outline)-1]
	extended := geometry.BoundingBox(last, neighbour.BB)

	nm := &Module{
		Die:              m.Die,
		Blocks:           blocks,
		BlockIDs:         ids,
		Feasible:         feasible,
		CornersPowerRing: m.CornersPowerRing,
	}

	oc := outlineCost(m, neighbour, allBlocks)
	nm.OutlineCost = oc
	if oc == 0 {
		nm.Outline = append(append([]geometry.Rect(nil), m.Outline[:len(m.Outline)-1]...), extended)
	} else {
		nm.Outline = append(append([]geometry.Rect(nil), m.Outline...), neighbour.BB)
		nm.CornersPowerRing += 2
	}

	nm.computePowerStats()
	return nm
}

// computePowerStats derives PowerSavingAvg, PowerDensAvgLayer, and
// PowerStdDevLayer from the module's current voltage assignment (its
// feasible set's lowest index, the voltage it would actually be committed
// at).
func (m *Module) computePowerStats() {
	idx := m.Feasible.MinIndex()
	if idx < 0 {
		return
	}
	var savingSum, densSum float64
	for _, b := range m.Blocks {
		top := len(b.Voltages) - 1
		saving := b.Power(top) - b.Power(idx)
		savingSum += saving
		densSum += b.Power(idx)
	}
	n := float64(len(m.Blocks))
	m.PowerSavingAvg = savingSum / n
	avgDens := densSum / n
	m.PowerDensAvgLayer = avgDens

	var variance float64
	for _, b := range m.Blocks {
		d := b.Power(idx) - avgDens
		variance += d * d
	}
	m.PowerStdDevLayer = math.Sqrt(variance / n)
}
