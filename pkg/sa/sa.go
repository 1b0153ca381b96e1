// Package sa implements the simulated-annealing search driving layout
// generation (spec §4.S): the three-phase adaptive cooling schedule, the
// two-phase (outline-only, then full-weighted) cost function, and the
// Metropolis accept/revert inner loop. It is deliberately decoupled from
// the concrete layout operators (pkg/operators) and analysis passes
// (thermal/voltage/routing/alignment): those are supplied through the
// Operator and CostInputs types so this package only owns the schedule and
// acceptance logic, the way pkg/core/orchestrator/orchestrator.go owns a
// state machine without knowing what each state's work entails.
package sa

import "math/rand"

// Phase is the SA driver's current cost-function regime.
type Phase int

const (
	// Phase1 runs before any candidate layout has fit within the die
	// outline: the cost function considers only area/outline mismatch,
	// un-normalised.
	Phase1 Phase = iota
	// Phase2 runs after the first fitting layout: the cost function
	// blends every weighted term, each normalised by its phase-two
	// starting value.
	Phase2
)

func (p Phase) String() string {
	if p == Phase1 {
		return "PHASE1"
	}
	return "PHASE2"
}

// ReheatCostSamples is the number of trailing per-step average costs the
// reheat trigger inspects (spec §4.S: SA_REHEAT_COST_SAMPLES).
const ReheatCostSamples = 3

// ReheatStdDevCostLimit is the standard-deviation threshold below which the
// search is considered stuck and reheat (phase 3) fires once (spec §4.S:
// SA_REHEAT_STD_DEV_COST_LIMIT).
const ReheatStdDevCostLimit = 1e-4

// SamplingLoopFactor scales the number of downhill-only moves sampled to
// derive the initial temperature (spec §4.S: SA_SAMPLING_LOOP_FACTOR).
const SamplingLoopFactor = 2.0

// Schedule bundles every cooling-related constant a technology/run
// configuration supplies (spec §6 "SA weights and cooling factors";
// SPEC_FULL.md §1 config section).
type Schedule struct {
	TempFactorPhase1      float64
	TempFactorPhase1Limit float64
	TempFactorPhase2      float64
	TempFactorPhase3      float64
	TempInitFactor        float64
	LoopFactor            float64
	LoopLimit             int
}

// LastOp records the (die, tuple) coordinates of the most recently applied
// operator, the bookkeeping spec §4.S requires so every operator can be
// exactly reverted without the driver re-deriving what changed.
type LastOp struct {
	Die1, Die2     int
	Tuple1, Tuple2 int
	Juncts         int
}

// Operator is one of the seven layout-generation moves (spec §4.O). Apply
// mutates the layout in place and reports whether its preconditions held --
// false is an "operator failed" outcome (spec §7(c): empty die, tuple out
// of range, identical same-die swap), not an error, and the driver simply
// draws a fresh operator. Revert undoes the most recently applied operator
// bit-for-bit (spec §8 property 8).
type Operator interface {
	Apply(rng *rand.Rand) bool
	Revert()
}

// SelectionContext carries everything the operator-selection policy (spec
// §4.O "Selection policy") needs to pick among op 1-7 for this iteration.
type SelectionContext struct {
	Phase           Phase
	Reheat          bool
	LayoutFitCounter int
	// FailingRequest is set when phase-three cooling should target a
	// specific failing alignment via ops 6/7; nil otherwise.
	FailingRequest interface{}
}

// OperatorSource draws the next operator to try, given the current
// selection context.
type OperatorSource func(ctx SelectionContext, rng *rand.Rand) Operator
