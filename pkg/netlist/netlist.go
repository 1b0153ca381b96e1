// Package netlist defines the Net data type connecting blocks. Reading
// netlist files is an out-of-scope external collaborator (spec §1); this
// package only carries the in-memory representation the routing, HPWL, and
// TSV-clustering analyses consume.
package netlist

import "github.com/go3dic/floorplanner/pkg/block"

// TerminalPin marks a net sink that connects to an I/O pin rather than a
// block ("Pterminals" in the benchmark format, spec §6).
const TerminalPin = "Pterminals"

// Net is a single signal connecting a set of block sinks (plus, optionally,
// I/O terminals).
type Net struct {
	Name    string
	Degree  int
	Sinks   []*block.Block
	HasPins bool
	Weight  float64
}

// Layers returns the distinct layer indices this net's sinks currently
// occupy (used by HPWL's per-die projection and by signal-TSV clustering's
// "nets that cross this layer" selection).
func (n *Net) Layers() []int {
	seen := make(map[int]bool)
	var layers []int
	for _, s := range n.Sinks {
		if !seen[s.Layer] {
			seen[s.Layer] = true
			layers = append(layers, s.Layer)
		}
	}
	return layers
}

// CrossesLayer reports whether the net has a sink on layer l.
func (n *Net) CrossesLayer(l int) bool {
	for _, s := range n.Sinks {
		if s.Layer == l {
			return true
		}
	}
	return false
}
