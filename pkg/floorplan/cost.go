package floorplan

import (
	"math"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/geometry"
	"github.com/go3dic/floorplanner/pkg/hotspot"
	"github.com/go3dic/floorplanner/pkg/routing"
	"github.com/go3dic/floorplanner/pkg/sa"
	"github.com/go3dic/floorplanner/pkg/thermal"
	"github.com/go3dic/floorplanner/pkg/voltage"
)

// CostFunc returns the sa.CostFunc the driver calls every candidate move:
// re-pack/compact the layout, then evaluate every analysis pass against
// the freshly packed result.
func (f *Floorplanner) CostFunc() sa.CostFunc {
	return func(l *cbl.Layout) sa.CostInputs {
		f.Generate(l, true)
		return f.Evaluate(l)
	}
}

// Evaluate runs every analysis pass against layout's current placement and
// assembles the resulting sa.CostInputs (spec §2 data-flow: packing
// already happened in Generate; alignment residuals & TSV-island
// derivation -> contiguity -> voltage assignment -> timing -> thermal
// analyser -> leakage).
//
// Thermal/TSV derivation is two-pass per evaluation rather than one, to
// resolve an otherwise-circular dependency: TSV-island placement needs
// hotspot/blob detection (spec §4.H), which needs an already-convolved
// thermal map, but that same map's construction needs TSV density adapted
// into the power maps first (spec §4.T). Caching a map across iterations
// isn't an option either (spec §5: every analysis is a pure function of
// the current CBL snapshot), so each evaluation builds an initial
// TSV-less thermal map solely to seed hotspot detection, then rebuilds the
// real one with TSV adaptation applied.
func (f *Floorplanner) Evaluate(layout *cbl.Layout) sa.CostInputs {
	cfg := f.Problem.Config
	tech := cfg.Technology

	areaCost, outlineCost, fitting, fittingRatio := f.areaOutlineCost(layout)

	routingTech := routing.Technology{
		DieW: tech.DieWidth, DieH: tech.DieHeight,
		DieThickness: tech.DieThickness, BondThickness: tech.BondThickness,
		RWire: tech.RWire, CWire: tech.CWire,
		RTSV: tech.RTSV, CTSV: tech.CTSV,
		Voltage: tech.Voltage, Frequency: tech.Frequency,
	}

	grids := make([]routing.Grid, tech.Layers)
	var hpwlTotal, timingTotal, tsvLengthTotal float64
	for _, n := range f.Problem.Nets {
		wl := routing.HPWL(n, routingTech)
		hpwlTotal += wl
		_, tsvLen := routing.HPWLPerLayer(n, routingTech)
		tsvLengthTotal += tsvLen
		routing.AccumulateUtilisation(grids, n, routingTech)

		delay := routing.ElmoreDelay(wl, tsvLen, routingTech)
		for _, s := range n.Sinks {
			sinkDelay := delay + s.Delay()
			if sinkDelay > s.NetDelayMax {
				s.NetDelayMax = sinkDelay
			}
			timingTotal += sinkDelay
		}
	}
	routingCost := routing.Cost(grids)

	voltage.BuildContiguity(layout)
	var voltageCost, savingSum float64
	var moduleCount int
	for dieIdx, die := range layout.Dies {
		blocks := dieBlocks(die)
		if len(blocks) == 0 {
			continue
		}
		modules := voltage.EnumerateModules(dieIdx, blocks)
		weights := voltage.Weights{
			Sav: cfg.Voltage.WeightSaving, Cor: cfg.Voltage.WeightCorners,
			Var: cfg.Voltage.WeightVar, Cnt: cfg.Voltage.WeightCount,
		}
		selected := voltage.SelectModules(modules, weights, cfg.Voltage.MergeModules)
		for _, m := range selected {
			voltageCost += m.Cost
			savingSum += m.PowerSavingAvg
		}
		moduleCount += len(selected)
	}

	var alignmentCost float64
	for _, req := range f.Problem.Alignments {
		alignmentCost += req.Evaluate().Cost
	}

	thermalParams := thermal.Params{
		DieW: tech.DieWidth, DieH: tech.DieHeight,
		ImpulseFactor:                  cfg.Thermal.ImpulseFactor,
		ImpulseFactorScalingExponent:   cfg.Thermal.ImpulseFactorScalingExponent,
		MaskBoundaryValue:              cfg.Thermal.MaskBoundaryValue,
		PowerDensityScalingPaddingZone: cfg.Thermal.PowerDensityScalingPaddingZone,
		PowerDensityScalingTSVRegion:   cfg.Thermal.PowerDensityScalingTSVRegion,
		TempOffset:                     cfg.Thermal.TempOffset,
	}
	kernels := thermal.Kernels(tech.Layers, thermalParams)

	maps := thermal.BuildPowerMaps(tech.Layers, f.Problem.Blocks, thermalParams)
	seedMap := thermal.Convolve(maps, kernels, thermalParams)
	hotspots := hotspot.Detect(&seedMap, thermalParams.TempOffset)

	var islands []*block.TSVIsland
	nextID := 0
	for layer := 0; layer < tech.Layers; layer++ {
		clusters := hotspot.ClusterNets(layer, f.Problem.Nets, hotspots, cfg.Limits.TSVPerClusterLimit)
		layerIslands := hotspot.MaterializeIslands(clusters, layer, tech.TSVPitch, nextID, islands)
		islands = append(islands, layerIslands...)
		nextID += len(layerIslands)
	}

	thermal.ApplyTSVAdaptation(maps, islands, thermalParams)
	finalMap := thermal.Convolve(maps, kernels, thermalParams)
	avgTemp, maxTemp, thermalCost := thermal.Cost(&finalMap)

	// The TSV cost term adds every net's through-silicon-via span, scaled
	// by the switching-activity factor routing.AlphaSwitching, to the raw
	// island count; C_tsv, V^2 and f do not enter it, and no separate TSV
	// routing-utilisation grid exists alongside the signal one.
	tsvCost := tsvLengthTotal*routing.AlphaSwitching + float64(len(islands))

	leakage := f.thermalLeakage(&finalMap, thermalParams)

	f.lastAvgTemp = avgTemp
	f.lastMaxTemp = maxTemp
	f.lastIslands = len(islands)
	f.lastHotspots = len(hotspots)
	f.lastModules = moduleCount
	if moduleCount > 0 {
		f.lastPowerSaving = savingSum / float64(moduleCount)
	}

	return sa.CostInputs{
		AreaCost:       areaCost,
		OutlineCost:    outlineCost,
		Fitting:        fitting,
		FittingRatio:   fittingRatio,
		HPWL:           hpwlTotal,
		Routing:        routingCost,
		TSV:            tsvCost,
		Alignment:      alignmentCost,
		Thermal:        thermalCost,
		Voltage:        voltageCost,
		Timing:         timingTotal,
		ThermalLeakage: leakage,
	}
}

// thermalLeakage approximates leakage power's well-known temperature
// dependence: each block's committed power is scaled by its local bin's
// temperature relative to the ambient TempOffset baseline, so a hotter
// region costs more even at a fixed voltage assignment.
func (f *Floorplanner) thermalLeakage(tm *thermal.Map, p thermal.Params) float64 {
	if p.TempOffset == 0 {
		return 0
	}
	binW, binH := thermal.BinDims(p.DieW, p.DieH)
	var total float64
	for _, b := range f.Problem.Blocks {
		cx := b.BB.LL.X + b.BB.W()/2
		cy := b.BB.LL.Y + b.BB.H()/2
		bx := clampBin(int(cx / binW))
		by := clampBin(int(cy / binH))
		temp := tm[by][bx].Temp
		total += b.Power(b.AssignedVoltageIdx) * (temp / p.TempOffset)
	}
	return total
}

func clampBin(v int) int {
	if v < 0 {
		return 0
	}
	if v >= thermal.MapDim {
		return thermal.MapDim - 1
	}
	return v
}

func dieBlocks(die *cbl.CBL) []*block.Block {
	out := make([]*block.Block, die.Len())
	for i, t := range die.Tuples {
		out[i] = t.Block
	}
	return out
}

// areaOutlineCost computes the two mismatch sub-terms the SA cost function
// blends independently (spec §4.S): areaCost is the packing-density slack
// between each die's blocks bounding box and the blocks' summed area --
// always meaningful, even once every die fits -- and outlineCost is the
// outline-overflow of that bounding box beyond the configured die outline,
// which is driven toward zero as layouts start fitting. A die with no
// blocks counts as fitting (nothing to overflow, nothing to pack).
func (f *Floorplanner) areaOutlineCost(layout *cbl.Layout) (areaCost, outlineCost float64, fitting bool, fittingRatio float64) {
	tech := f.Problem.Config.Technology
	fitting = true
	fitCount := 0

	for _, die := range layout.Dies {
		if die.Len() == 0 {
			fitCount++
			continue
		}

		var bbox geometry.Rect
		var areaSum float64
		first := true
		for _, t := range die.Tuples {
			areaSum += t.Block.Area
			if first {
				bbox = t.Block.BB
				first = false
			} else {
				bbox = geometry.BoundingBox(bbox, t.Block.BB)
			}
		}

		overflowW := math.Max(0, bbox.W()-tech.DieWidth)
		overflowH := math.Max(0, bbox.H()-tech.DieHeight)
		if overflowW <= 1e-6 && overflowH <= 1e-6 {
			fitCount++
		} else {
			fitting = false
		}
		outlineCost += overflowW + overflowH

		if areaSum > 0 {
			areaCost += math.Max(0, bbox.Area()-areaSum) / areaSum
		}
	}

	fittingRatio = float64(fitCount) / float64(len(layout.Dies))
	return areaCost, outlineCost, fitting, fittingRatio
}
