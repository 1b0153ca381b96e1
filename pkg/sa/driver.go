package sa

import (
	"math"
	"math/rand"

	"github.com/go3dic/floorplanner/pkg/cbl"
)

// CostFunc evaluates the full CostInputs for a candidate layout. Supplied
// by the caller (pkg/floorplan) so this package never imports the concrete
// analysis passes.
type CostFunc func(l *cbl.Layout) CostInputs

// Result is what Run reports back once the schedule completes.
type Result struct {
	Best                *cbl.Layout
	BestCost            float64
	IterationFirstValid int // -1 if no layout ever fit
	Iterations          int
	Reheated            bool
}

// Driver runs the simulated-annealing search over a layout (spec §4.S).
type Driver struct {
	Schedule Schedule
	Weights  Weights
	Cost     CostFunc
	Ops      OperatorSource
	Rng      *rand.Rand
}

// Run executes the full three-phase schedule starting from layout l,
// mutating it in place and returning the best layout seen by fitting cost.
// Only fitting layouts are retained as best: if none ever fits, Best is a
// copy of the starting layout and BestCost is +Inf.
func (d *Driver) Run(l *cbl.Layout, blockCount int) Result {
	phase := Phase1
	iValid := -1
	reheatFired := false
	reheat := &ReheatTracker{}

	samples := d.sampleInitialCosts(l, blockCount)
	t0 := InitialTemperature(d.Schedule, samples)
	temp := t0

	var norm Normalizers
	best := l.CloneDeep()
	bestCost := math.Inf(1)
	layoutFitCounter := 0

	innerMax := InnerLoopMax(d.Schedule, blockCount)
	loopLimit := d.Schedule.LoopLimit
	if loopLimit <= 0 {
		loopLimit = innerMax
	}

	cur := d.Cost(l)
	curCost := Cost(phase, d.Weights, norm, cur)

	pendingReheat := false

	i := 0
	for i < loopLimit {
		stepCostSum := 0.0

		for j := 0; j < innerMax; j++ {
			ctx := SelectionContext{Phase: phase, Reheat: pendingReheat, LayoutFitCounter: layoutFitCounter}
			op := d.Ops(ctx, d.Rng)
			if op == nil || !op.Apply(d.Rng) {
				continue
			}

			candidate := d.Cost(l)
			candCost := Cost(phase, d.Weights, norm, candidate)

			delta := candCost - curCost
			accept := delta <= 0
			if !accept && temp > 0 {
				accept = d.Rng.Float64() < math.Exp(-delta/temp)
			}

			if !accept {
				op.Revert()
				stepCostSum += curCost
				continue
			}

			curCost = candCost
			cur = candidate
			stepCostSum += curCost

			if cur.Fitting {
				layoutFitCounter++
				firstFit := iValid < 0
				if firstFit {
					iValid = i
					phase = Phase2
					norm = RecordNormalizers(cur)
					curCost = Cost(phase, d.Weights, norm, cur)
				}

				fc := FittingCost(phase, d.Weights, norm, cur)
				if fc < bestCost {
					bestCost = fc
					best = l.CloneDeep()
				}

				if firstFit {
					// Break out to recompute cost under the new
					// objective -- letting the remaining trials in
					// this step run under phase one's cost function
					// would drift stepCostSum's average between two
					// incompatible scales.
					break
				}
			}
		}

		avg := stepCostSum / float64(innerMax)
		if !reheatFired && phase == Phase2 && reheat.Push(avg) {
			reheatFired = true
			pendingReheat = true
		}

		temp = TempUpdate(d.Schedule, temp, t0, i, iValid, loopLimit, pendingReheat)
		pendingReheat = false // reheat is a single temperature kick, not a sticky state
		i++
	}

	return Result{
		Best:                best,
		BestCost:            bestCost,
		IterationFirstValid: iValid,
		Iterations:          i,
		Reheated:            reheat.fired,
	}
}

// sampleInitialCosts runs a short downhill-only search at T=0 to gather
// cost samples for InitialTemperature (spec §4.S initial-temperature
// sampling loop).
func (d *Driver) sampleInitialCosts(l *cbl.Layout, blockCount int) []float64 {
	n := SamplingLoopCount(blockCount)
	samples := make([]float64, 0, n)

	cur := d.Cost(l)
	curCost := Cost(Phase1, d.Weights, Normalizers{}, cur)

	for i := 0; i < n; i++ {
		ctx := SelectionContext{Phase: Phase1}
		op := d.Ops(ctx, d.Rng)
		if op == nil || !op.Apply(d.Rng) {
			continue
		}

		cand := d.Cost(l)
		candCost := Cost(Phase1, d.Weights, Normalizers{}, cand)
		samples = append(samples, candCost)

		if candCost <= curCost {
			curCost = candCost
		} else {
			op.Revert()
		}
	}
	return samples
}
