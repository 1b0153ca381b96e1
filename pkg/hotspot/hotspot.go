// Package hotspot implements Lindeberg-style grey-level blob detection over
// a thermal map (spec §4.H) and the signal-TSV clustering pass that
// consumes the resulting hotspots to seat TSV islands. Grounded on
// pkg/monitoring/detector/failure_detector.go's criterion-evaluation-and-
// classification idiom, generalized here from "a Prometheus query crosses
// a threshold" to "a bin dominates its 8-neighbourhood".
package hotspot

import (
	"sort"

	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/thermal"
)

// Hotspot is one connected thermal-map region whose temperature rises
// monotonically to a local maximum.
type Hotspot struct {
	ID           int
	PeakTemp     float64
	BaseTemp     float64
	StillGrowing bool
	Bins         [][2]int
	BB           geometry.Rect // expanded 2x for signal-net clustering
	Score        float64
}

type binRef struct {
	x, y int
	temp float64
}

// Detect walks the thermal map's non-background bins (temp != background)
// in descending temperature order, classifying each against its
// higher-temperature 8-neighbours (spec §4.H blob detection): a bin with no
// hotter neighbour seeds a new hotspot; a bin whose hotter neighbours all
// belong to the same still-growing hotspot extends it; a bin touching
// background becomes background itself; a bin whose hotter neighbours span
// two or more distinct hotspots is the base level shared by those hotspots.
func Detect(tm *thermal.Map, background float64) []*Hotspot {
	bins := flatten(tm, background)
	sort.Slice(bins, func(i, j int) bool { return bins[i].temp > bins[j].temp })

	owner := make(map[[2]int]int) // bin -> hotspot index, -1 = background
	var hotspots []*Hotspot

	for _, b := range bins {
		key := [2]int{b.x, b.y}
		hotterOwners := map[int]bool{}
		anyBackground := false
		for _, n := range tm[b.y][b.x].Neighbours {
			nx, ny := n[0], n[1]
			if tm[ny][nx].Temp <= b.temp {
				continue // not strictly hotter
			}
			id, seen := owner[[2]int{nx, ny}]
			if !seen {
				continue
			}
			if id < 0 {
				anyBackground = true
				continue
			}
			hotterOwners[id] = true
		}

		switch {
		case anyBackground:
			owner[key] = -1
		case len(hotterOwners) == 0:
			h := &Hotspot{ID: len(hotspots), PeakTemp: b.temp, StillGrowing: true}
			h.Bins = append(h.Bins, key)
			hotspots = append(hotspots, h)
			owner[key] = h.ID
		case len(hotterOwners) == 1:
			var id int
			for k := range hotterOwners {
				id = k
			}
			if hotspots[id].StillGrowing {
				hotspots[id].Bins = append(hotspots[id].Bins, key)
				owner[key] = id
			} else {
				owner[key] = -1
			}
		default:
			// Base level shared by >= 2 hotspots.
			for id := range hotterOwners {
				hotspots[id].StillGrowing = false
				hotspots[id].BaseTemp = b.temp
			}
			owner[key] = -1
		}
	}

	for _, h := range hotspots {
		if h.StillGrowing {
			min := h.Bins[0]
			minTemp := tm[min[1]][min[0]].Temp
			for _, k := range h.Bins[1:] {
				t := tm[k[1]][k[0]].Temp
				if t < minTemp {
					minTemp = t
					min = k
				}
			}
			h.BaseTemp = minTemp
			_ = min
		}
		h.Score = (h.PeakTemp - h.BaseTemp) * h.PeakTemp * h.PeakTemp / 1e6
		h.BB = expandedBB(h, tm)
	}

	return hotspots
}

func flatten(tm *thermal.Map, background float64) []binRef {
	var out []binRef
	for y := 0; y < thermal.MapDim; y++ {
		for x := 0; x < thermal.MapDim; x++ {
			t := tm[y][x].Temp
			if t == background {
				continue
			}
			out = append(out, binRef{x: x, y: y, temp: t})
		}
	}
	return out
}

// expandedBB returns the hotspot's bin bounding box expanded 2x around its
// center (spec §4.H: "expand the enclosing bounding box by 2x to widen the
// capture region for signal-net clustering").
func expandedBB(h *Hotspot, tm *thermal.Map) geometry.Rect {
	bb := tm[h.Bins[0][1]][h.Bins[0][0]].BB
	for _, k := range h.Bins[1:] {
		bb = geometry.BoundingBox(bb, tm[k[1]][k[0]].BB)
	}
	cx := (bb.LL.X + bb.UR.X) / 2
	cy := (bb.LL.Y + bb.UR.Y) / 2
	w, hh := bb.W(), bb.H()
	return geometry.NewRect(cx-w, cy-hh, cx+w, cy+hh)
}
