package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/netlist"
)

func sinkAt(id string, numID, layer int, llx, lly, urx, ury float64) *block.Block {
	b := block.New(id, numID, (urx-llx)*(ury-lly), 0.1, 10, false)
	b.BB = geometry.NewRect(llx, lly, urx, ury)
	b.Layer = layer
	return b
}

func baseTech() Technology {
	return Technology{
		DieW: 1000, DieH: 1000,
		DieThickness: 50, BondThickness: 5,
		RWire: 0.0001, CWire: 0.0002,
		RTSV: 0.01, CTSV: 0.001,
		Voltage: 1.0, Frequency: 1e9,
	}
}

func TestHPWLSingleLayerNet(t *testing.T) {
	a := sinkAt("a", 0, 0, 0, 0, 4, 2)
	b := sinkAt("b", 1, 0, 4, 0, 7, 3)
	n := &netlist.Net{Name: "n0", Sinks: []*block.Block{a, b}, Weight: 1.0}

	wl := HPWL(n, baseTech())
	// bbox is (0,0)-(7,3): bbw+bbh = 10, no TSV portion (single layer).
	assert.InDelta(t, 10.0, wl, 1e-9)
}

func TestHPWLAddsTSVPortionForMultiLayerNet(t *testing.T) {
	a := sinkAt("a", 0, 0, 0, 0, 2, 2)
	b := sinkAt("b", 1, 1, 0, 0, 2, 2)
	tech := baseTech()
	n := &netlist.Net{Name: "n0", Sinks: []*block.Block{a, b}, Weight: 1.0}

	perLayer, tsvLen := HPWLPerLayer(n, tech)
	assert.Len(t, perLayer, 2)
	assert.InDelta(t, tech.DieThickness+tech.BondThickness, tsvLen, 1e-9)

	wl := HPWL(n, tech)
	assert.InDelta(t, perLayer[0]+perLayer[1]+tsvLen, wl, 1e-9)
}

func TestAccumulateUtilisationAddsPositiveDensityWithinNetBB(t *testing.T) {
	tech := baseTech()
	a := sinkAt("a", 0, 0, 0, 0, 2, 2)
	b := sinkAt("b", 1, 0, 62, 62, 64, 64)
	n := &netlist.Net{Name: "n0", Sinks: []*block.Block{a, b}, Weight: 1.0}

	grids := make([]Grid, 1)
	AccumulateUtilisation(grids, n, tech)

	var sum float64
	for y := 0; y < GridDim; y++ {
		for x := 0; x < GridDim; x++ {
			sum += grids[0][y][x]
		}
	}
	assert.Greater(t, sum, 0.0)
	assert.InDelta(t, sum, Cost(grids), 1e-9)
}

func TestAccumulateUtilisationIgnoresNetsOutOfGridRange(t *testing.T) {
	tech := baseTech()
	a := sinkAt("a", 0, 5, 0, 0, 2, 2)
	n := &netlist.Net{Name: "n0", Sinks: []*block.Block{a}, Weight: 1.0}

	grids := make([]Grid, 1) // only layer 0 exists
	AccumulateUtilisation(grids, n, tech)

	assert.InDelta(t, 0.0, Cost(grids), 1e-9)
}

func TestWirePowerAndTSVPowerScaleWithVoltageSquared(t *testing.T) {
	tech := baseTech()
	p1 := WirePower(10, tech)
	tech.Voltage *= 2
	p2 := WirePower(10, tech)
	assert.InDelta(t, p1*4, p2, 1e-12)

	tsv1 := TSVPower(baseTech())
	tech2 := baseTech()
	tech2.Voltage *= 2
	tsv2 := TSVPower(tech2)
	assert.InDelta(t, tsv1*4, tsv2, 1e-12)
}

func TestElmoreDelayCombinesWireAndTSVTerms(t *testing.T) {
	tech := baseTech()
	d := ElmoreDelay(100, 10, tech)
	wireTerm := 0.5 * tech.RWire * tech.CWire * 100 * 100
	tsvTerm := 0.5 * tech.RTSV * tech.CTSV * 10 * 10
	assert.InDelta(t, wireTerm+tsvTerm, d, 1e-12)
}
