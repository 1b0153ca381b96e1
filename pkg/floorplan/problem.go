// Package floorplan wires the packer, alignment engine, and every
// analysis pass (routing/TSV, thermal, hotspot, voltage) into the single
// sa.CostFunc the simulated-annealing driver needs, and drives a full run
// from an initial random layout to a reported best solution.
package floorplan

import (
	"math/rand"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/config"
	"github.com/go3dic/floorplanner/pkg/netlist"
)

// Problem bundles everything one floorplanning run needs: the block set,
// the netlist connecting them, any alignment constraints, and the
// technology/run configuration (SPEC_FULL.md §1).
type Problem struct {
	Blocks     []*block.Block
	Nets       []*netlist.Net
	Alignments []*alignment.Request
	Config     *config.Config
}

// NewRandomLayout builds an initial CBL layout: every block is appended as
// a fresh tuple with a random insertion direction and zero junctions,
// scattered across dies in a random order (spec §4.P: the packer imposes
// no requirement on the initial tuple sequence beyond S/L/T staying
// parallel arrays).
func NewRandomLayout(p *Problem, rng *rand.Rand) *cbl.Layout {
	layers := p.Config.Technology.Layers
	layout := cbl.NewLayout(layers)

	order := rng.Perm(len(p.Blocks))
	for _, idx := range order {
		b := p.Blocks[idx]
		die := rng.Intn(layers)
		b.Layer = die
		dir := cbl.Horizontal
		if rng.Intn(2) == 1 {
			dir = cbl.Vertical
		}
		layout.Dies[die].Append(cbl.Tuple{Block: b, L: dir, T: 0})
	}
	return layout
}
