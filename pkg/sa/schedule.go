package sa

import "math"

// TempUpdate advances the annealing temperature for the next step, given
// the current temperature, loop index i, the index at which the first
// fitting layout was seen (iValid, or -1 if none yet), and whether to apply
// the one-time reheat on this step (spec §4.S three-phase cooling).
//
// Phase one (iValid < 0) ramps the temperature down slowly by
// TempFactorPhase1, clamped so it never drops the temperature by more than
// TempFactorPhase1Limit relative to T0 -- the search is still hunting for
// any layout that fits the die outline and should not freeze prematurely.
// Phase two cools geometrically, accelerating as the loop approaches
// LoopLimit. Phase three (reheat) multiplies by TempFactorPhase3 > 1 once,
// the single escape hatch when the search has stalled (see ReheatTracker).
func TempUpdate(sch Schedule, temp float64, t0 float64, i, iValid, loopLimit int, reheat bool) float64 {
	if reheat {
		return temp * sch.TempFactorPhase3
	}

	if iValid < 0 {
		next := temp * sch.TempFactorPhase1
		if next < t0*sch.TempFactorPhase1Limit {
			return t0 * sch.TempFactorPhase1Limit
		}
		return next
	}

	remaining := float64(loopLimit-iValid) - float64(i-iValid)
	span := float64(loopLimit - iValid)
	if span <= 0 {
		span = 1
	}
	factor := sch.TempFactorPhase2 * (remaining / span)
	if factor < 0 {
		factor = 0
	}
	return temp * factor
}

// InnerLoopMax returns the number of accept/reject trials run at a given
// temperature step: |blocks|^loop_factor (spec §4.S inner loop).
func InnerLoopMax(sch Schedule, blockCount int) int {
	n := math.Pow(float64(blockCount), sch.LoopFactor)
	if n < 1 {
		n = 1
	}
	return int(math.Ceil(n))
}

// SamplingLoopCount returns the number of downhill-only moves sampled to
// derive the initial temperature (spec §4.S: SA_SAMPLING_LOOP_FACTOR *
// |blocks|).
func SamplingLoopCount(blockCount int) int {
	n := int(math.Ceil(SamplingLoopFactor * float64(blockCount)))
	if n < 1 {
		n = 1
	}
	return n
}

// InitialTemperature derives T0 from a slice of per-move sampled costs
// (spec §4.S: T0 = stddev(samples) * temp_init_factor).
func InitialTemperature(sch Schedule, samples []float64) float64 {
	return stdDev(samples) * sch.TempInitFactor
}

func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

// ReheatTracker accumulates the trailing per-step average costs and fires
// once when their standard deviation falls below ReheatStdDevCostLimit
// (spec §4.S phase three trigger). It only ever reports true once; callers
// that see it fire should stop asking (reheat happens a single time).
type ReheatTracker struct {
	samples []float64
	fired   bool
}

// Push records this step's average cost and reports whether reheat should
// fire now.
func (r *ReheatTracker) Push(avgCost float64) bool {
	if r.fired {
		return false
	}
	r.samples = append(r.samples, avgCost)
	if len(r.samples) > ReheatCostSamples {
		r.samples = r.samples[len(r.samples)-ReheatCostSamples:]
	}
	if len(r.samples) < ReheatCostSamples {
		return false
	}
	if stdDev(r.samples) < ReheatStdDevCostLimit {
		r.fired = true
		return true
	}
	return false
}
