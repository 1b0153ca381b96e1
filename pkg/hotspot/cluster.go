package hotspot

import (
	"math"
	"sort"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/netlist"
)

// Cluster is a working TSV cluster grown from one layer's crossing nets
// (spec §4.H signal-TSV clustering).
type Cluster struct {
	Rect      geometry.Rect
	Nets      []*netlist.Net
	SeatScore float64
}

// ClusterNets groups nets crossing layer into TSV clusters, bounded by
// perClusterLimit members apiece (spec §4.H): nets are processed in
// shrinking bounding-box-area order; each cluster opens on the first
// unclustered net, seats itself against the first overlapping hotspot (in
// score-descending order), then greedily absorbs subsequent nets whose
// bounding box still intersects the shrinking cluster rect.
func ClusterNets(layer int, nets []*netlist.Net, hotspots []*Hotspot, perClusterLimit int) []*Cluster {
	crossing := make([]*netlist.Net, 0, len(nets))
	for _, n := range nets {
		if n.CrossesLayer(layer) {
			crossing = append(crossing, n)
		}
	}
	sort.Slice(crossing, func(i, j int) bool {
		return netBB(crossing[i]).Area() > netBB(crossing[j]).Area()
	})

	byScore := append([]*Hotspot(nil), hotspots...)
	sort.Slice(byScore, func(i, j int) bool { return byScore[i].Score > byScore[j].Score })

	var clusters []*Cluster
	var cur *Cluster

	for _, n := range crossing {
		bb := netBB(n)
		if cur == nil {
			cur = &Cluster{Rect: bb}
			for _, h := range byScore {
				if geometry.DetermineIntersection(cur.Rect, h.BB).Area() > 0 {
					cur.SeatScore = h.Score
					break
				}
			}
			cur.Nets = append(cur.Nets, n)
			continue
		}

		inter := geometry.DetermineIntersection(cur.Rect, bb)
		if inter.Area() > 0 && len(cur.Nets) < perClusterLimit {
			cur.Rect = inter
			cur.Nets = append(cur.Nets, n)
			continue
		}

		clusters = append(clusters, cur)
		cur = &Cluster{Rect: bb}
		for _, h := range byScore {
			if geometry.DetermineIntersection(cur.Rect, h.BB).Area() > 0 {
				cur.SeatScore = h.Score
				break
			}
		}
		cur.Nets = append(cur.Nets, n)
	}
	if cur != nil {
		clusters = append(clusters, cur)
	}
	return clusters
}

func netBB(n *netlist.Net) geometry.Rect {
	var bb geometry.Rect
	first := true
	for _, s := range n.Sinks {
		if first {
			bb = s.BB
			first = false
			continue
		}
		bb = geometry.BoundingBox(bb, s.BB)
	}
	return bb
}

// MaterializeIslands turns each cluster into a TSV_Island (spec §3): shape
// derives from sqrt(count) rounded up in both dimensions, aspect-ratio
// adjusted toward the cluster rect within [0.5, 2.0], then scaled by the
// technology TSV pitch; already-placed islands on the same layer are
// greedily shifted apart until overlap-free (spec §4.H / invariant 6).
func MaterializeIslands(clusters []*Cluster, layer int, pitch float64, startID int, existing []*block.TSVIsland) []*block.TSVIsland {
	out := make([]*block.TSVIsland, 0, len(clusters))
	placed := append([]*block.TSVIsland(nil), existing...)

	for i, c := range clusters {
		count := len(c.Nets)
		side := math.Ceil(math.Sqrt(float64(count)))
		w, h := side, side

		ar := 1.0
		if c.Rect.H() > 0 {
			ar = c.Rect.W() / c.Rect.H()
		}
		ar = math.Max(0.5, math.Min(2.0, ar))
		if ar >= 1 {
			w = side * math.Sqrt(ar)
			h = side / math.Sqrt(ar)
		} else {
			w = side * math.Sqrt(ar)
			h = side / math.Sqrt(ar)
		}
		w *= pitch
		h *= pitch

		isl := &block.TSVIsland{
			Block:    *block.New("tsv_island", startID+i, w*h, 0.5, 2.0, false),
			TSVCount: count,
		}
		isl.Layer = layer
		isl.BB = geometry.NewRect(c.Rect.LL.X, c.Rect.LL.Y, c.Rect.LL.X+w, c.Rect.LL.Y+h)

		for iter := 0; iter < 1000; iter++ {
			moved := false
			for _, p := range placed {
				if p.Layer != layer {
					continue
				}
				if geometry.RectsIntersect(isl.BB, p.BB) {
					isl.BB = geometry.GreedyShiftingRemoveIntersection(isl.BB, p.BB)
					moved = true
				}
			}
			if !moved {
				break
			}
		}

		placed = append(placed, isl)
		out = append(out, isl)
	}
	return out
}
