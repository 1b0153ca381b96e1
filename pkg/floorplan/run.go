package floorplan

import (
	"math/rand"
	"time"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
	"github.com/go3dic/floorplanner/pkg/operators"
	"github.com/go3dic/floorplanner/pkg/reporting"
	"github.com/go3dic/floorplanner/pkg/sa"
)

// Run drives one full floorplanning search to completion: packs an initial
// layout, hands the configured SA schedule/weights/operator pool to
// sa.Driver, and re-evaluates the winning layout once more to build its
// reported cost breakdown and per-layer statistics (spec §4.S / §6).
func (f *Floorplanner) Run(layout *cbl.Layout, seed int64) (sa.Result, *reporting.Summary) {
	cfg := f.Problem.Config

	pool := &operators.Pool{
		Layout:     layout,
		Alignments: f.Problem.Alignments,
		MaxJuncts:  len(f.Problem.Blocks),
	}

	driver := &sa.Driver{
		Schedule: sa.Schedule{
			TempFactorPhase1:      cfg.SA.TempFactorPhase1,
			TempFactorPhase1Limit: cfg.SA.TempFactorPhase1Limit,
			TempFactorPhase2:      cfg.SA.TempFactorPhase2,
			TempFactorPhase3:      cfg.SA.TempFactorPhase3,
			TempInitFactor:        cfg.SA.TempInitFactor,
			LoopFactor:            cfg.SA.LoopFactor,
			LoopLimit:             cfg.SA.LoopLimit,
		},
		Weights: sa.Weights{
			AreaOutline:    cfg.Weights.AreaOutline,
			HPWL:           cfg.Weights.HPWL,
			Routing:        cfg.Weights.Routing,
			TSV:            cfg.Weights.TSV,
			Alignment:      cfg.Weights.Alignment,
			Thermal:        cfg.Weights.Thermal,
			Voltage:        cfg.Weights.Voltage,
			Timing:         cfg.Weights.Timing,
			ThermalLeakage: cfg.Weights.ThermalLeakage,
		},
		Cost: f.CostFunc(),
		Ops:  operators.Select(pool),
		Rng:  rand.New(rand.NewSource(seed)),
	}

	result := driver.Run(layout, len(f.Problem.Blocks))

	// Evaluate reads nets and thermal inputs through the problem's own
	// blocks, so copy the best snapshot's block state back onto them first.
	live := make(map[int]*block.Block, len(f.Problem.Blocks))
	for _, b := range f.Problem.Blocks {
		live[b.NumericalID] = b
	}
	for _, die := range result.Best.Dies {
		for _, t := range die.Tuples {
			if b, ok := live[t.Block.NumericalID]; ok {
				*b = *t.Block
			}
		}
	}

	final := f.Evaluate(result.Best)
	summary := f.buildSummary(result, final)
	return result, summary
}

func (f *Floorplanner) buildSummary(result sa.Result, final sa.CostInputs) *reporting.Summary {
	cfg := f.Problem.Config
	total := final.AreaCost + final.OutlineCost + final.HPWL + final.Routing + final.TSV +
		final.Alignment + final.Thermal + final.Voltage + final.Timing + final.ThermalLeakage

	breakdown := reporting.CostBreakdown{
		AreaOutline:    final.AreaCost + final.OutlineCost,
		HPWL:           final.HPWL,
		Routing:        final.Routing,
		TSV:            final.TSV,
		Alignment:      final.Alignment,
		Thermal:        final.Thermal,
		Voltage:        final.Voltage,
		Timing:         final.Timing,
		ThermalLeakage: final.ThermalLeakage,
		Total:          total,
	}

	// Peak/avg temp and TSV/hotspot counts come from the single combined
	// thermal map (thermal.Convolve sums every layer's contribution into
	// one Map), so every die reports the same run-wide figures rather than
	// a true per-layer breakdown.
	layers := make([]reporting.LayerStats, len(result.Best.Dies))
	for i, die := range result.Best.Dies {
		var areaUsed float64
		for _, t := range die.Tuples {
			areaUsed += t.Block.Area
		}
		outline := cfg.Technology.DieWidth * cfg.Technology.DieHeight
		layers[i] = reporting.LayerStats{
			Layer:        i,
			AreaUsed:     areaUsed,
			AreaOutline:  outline,
			Utilisation:  areaUsed / outline,
			PeakTemp:     f.lastMaxTemp,
			AvgTemp:      f.lastAvgTemp,
			TSVCount:     f.lastIslands,
			HotspotCount: f.lastHotspots,
		}
	}

	reheats := 0
	if result.Reheated {
		reheats = 1
	}

	return &reporting.Summary{
		EndTime:         time.Time{},
		TotalIterations: result.Iterations,
		FirstFitIter:    result.IterationFirstValid,
		Reheats:         reheats,
		BestCost:        breakdown,
		Layers:          layers,
		Voltage: reporting.VoltageStats{
			ModuleCount:    f.lastModules,
			AvgPowerSaving: f.lastPowerSaving,
		},
	}
}
