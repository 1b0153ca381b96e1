// Package routing implements the routing-utilisation estimate and the
// wirelength/wire-power/TSV-power/Elmore-delay analyses (spec §4.R).
// Grounded on edp1096-toy-spice's pkg/matrix fixed-size numeric grid
// conventions, since no routing/EDA library appears anywhere in the
// retrieval pack.
package routing

import (
	"math"

	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/netlist"
)

// GridDim is the routing-utilisation grid's side length (spec §4.R: 64x64
// per layer).
const GridDim = 64

// AlphaSwitching is the fixed switching-activity factor used by both wire
// and TSV dynamic power (spec §4.R: alpha = 0.1).
const AlphaSwitching = 0.1

// Grid is one layer's 64x64 routing-utilisation accumulator.
type Grid [GridDim][GridDim]float64

// Technology bundles the physical constants the routing/power/delay
// analyses need (SPEC_FULL.md §1 configuration section).
type Technology struct {
	DieW, DieH           float64
	DieThickness         float64
	BondThickness        float64
	RWire, CWire         float64
	RTSV, CTSV           float64
	Voltage, Frequency   float64
}

// BinDims returns the per-axis bin size for the utilisation grid over a die
// of the given outline.
func BinDims(dieW, dieH float64) (binW, binH float64) {
	return dieW / GridDim, dieH / GridDim
}

// projectedBB returns the bounding box of a net's sinks that sit on the
// given layer (the "per-die projected net bounding box" spec §4.R's HPWL
// formula uses).
func projectedBB(n *netlist.Net, layer int) (geometry.Rect, bool) {
	var bb geometry.Rect
	first := true
	for _, s := range n.Sinks {
		if s.Layer != layer {
			continue
		}
		if first {
			bb = s.BB
			first = false
			continue
		}
		bb = geometry.BoundingBox(bb, s.BB)
	}
	return bb, !first
}

// HPWLPerLayer returns net n's half-perimeter wirelength on each layer it
// touches, plus the TSV portion contributed by the (k-1) layer transitions
// it spans (spec §4.R): each transition adds die_thickness + bond_thickness.
func HPWLPerLayer(n *netlist.Net, tech Technology) (perLayer map[int]float64, tsvLength float64) {
	perLayer = make(map[int]float64)
	for _, layer := range n.Layers() {
		bb, ok := projectedBB(n, layer)
		if !ok {
			continue
		}
		perLayer[layer] = bb.W() + bb.H()
	}
	k := len(n.Layers())
	if k > 1 {
		tsvLength = float64(k-1) * (tech.DieThickness + tech.BondThickness)
	}
	return perLayer, tsvLength
}

// HPWL returns the total (all-layer + TSV) wirelength for one net.
func HPWL(n *netlist.Net, tech Technology) float64 {
	perLayer, tsv := HPWLPerLayer(n, tech)
	var total float64
	for _, wl := range perLayer {
		total += wl
	}
	return total + tsv
}

// AccumulateUtilisation adds net n's uniform contribution to grids (one per
// layer it touches), following Meister's model: weight * (bbw+bbh) /
// (bbw*bbh) spread uniformly over every bin intersecting the net's
// per-layer bounding box (spec §4.R).
func AccumulateUtilisation(grids []Grid, n *netlist.Net, tech Technology) {
	binW, binH := BinDims(tech.DieW, tech.DieH)
	perLayer, _ := HPWLPerLayer(n, tech)

	for layer, wl := range perLayer {
		if layer < 0 || layer >= len(grids) {
			continue
		}
		bb, ok := projectedBB(n, layer)
		if !ok {
			continue
		}
		area := bb.W() * bb.H()
		if area <= 0 {
			continue
		}
		density := n.Weight * wl / area

		x0 := int(math.Floor(bb.LL.X / binW))
		x1 := int(math.Ceil(bb.UR.X / binW))
		y0 := int(math.Floor(bb.LL.Y / binH))
		y1 := int(math.Ceil(bb.UR.Y / binH))

		g := &grids[layer]
		for y := clampInt(y0, 0, GridDim); y < clampInt(y1, 0, GridDim); y++ {
			for x := clampInt(x0, 0, GridDim); x < clampInt(x1, 0, GridDim); x++ {
				binRect := geometry.NewRect(float64(x)*binW, float64(y)*binH, float64(x+1)*binW, float64(y+1)*binH)
				inter := geometry.DetermineIntersection(bb, binRect)
				if inter.Area() <= 0 {
					continue
				}
				g[y][x] += density * inter.Area() / (binW * binH)
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Cost returns the routing-utilisation cost term: the sum of every bin's
// accumulated utilisation across every layer's grid.
func Cost(grids []Grid) float64 {
	var sum float64
	for _, g := range grids {
		for y := 0; y < GridDim; y++ {
			for x := 0; x < GridDim; x++ {
				sum += g[y][x]
			}
		}
	}
	return sum
}

// WirePower returns a net's dynamic wire power: alpha * C_wire * WL * V^2 *
// f (spec §4.R).
func WirePower(wl float64, tech Technology) float64 {
	return AlphaSwitching * tech.CWire * wl * tech.Voltage * tech.Voltage * tech.Frequency
}

// TSVPower returns a net's dynamic TSV power: alpha * C_TSV * V^2 * f,
// independent of TSV length (spec §4.R).
func TSVPower(tech Technology) float64 {
	return AlphaSwitching * tech.CTSV * tech.Voltage * tech.Voltage * tech.Frequency
}

// ElmoreDelay returns the net's Elmore-model delay: 0.5*R_wire*C_wire*WL^2 +
// 0.5*R_TSV*C_TSV*TSV^2 (spec §4.R).
func ElmoreDelay(wl, tsvLength float64, tech Technology) float64 {
	return 0.5*tech.RWire*tech.CWire*wl*wl + 0.5*tech.RTSV*tech.CTSV*tsvLength*tsvLength
}
