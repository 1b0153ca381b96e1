package sa

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go3dic/floorplanner/pkg/cbl"
)

func testSchedule() Schedule {
	return Schedule{
		TempFactorPhase1:      0.99,
		TempFactorPhase1Limit: 0.5,
		TempFactorPhase2:      0.98,
		TempFactorPhase3:      1.5,
		TempInitFactor:        1.0,
		LoopFactor:            1.0,
		LoopLimit:             20,
	}
}

func TestTempUpdatePhase1RampsDownSlowly(t *testing.T) {
	sch := testSchedule()
	temp := sch.TempUpdateTestHelper(t, 1.0, 1.0)
	assert.InDelta(t, 0.99, temp, 1e-9)
}

// TempUpdateTestHelper is a tiny indirection so the phase-1 clamp test
// reads as a single assertion rather than repeating TempUpdate's full
// argument list inline.
func (sch Schedule) TempUpdateTestHelper(t *testing.T, temp, t0 float64) float64 {
	t.Helper()
	return TempUpdate(sch, temp, t0, 0, -1, 20, false)
}

func TestTempUpdatePhase1NeverBelowLimit(t *testing.T) {
	sch := testSchedule()
	temp := 0.51
	for i := 0; i < 50; i++ {
		temp = TempUpdate(sch, temp, 1.0, i, -1, 20, false)
	}
	assert.GreaterOrEqual(t, temp, 0.5-1e-9)
}

func TestTempUpdatePhase2CoolsTowardZero(t *testing.T) {
	sch := testSchedule()
	temp := 10.0
	temp = TempUpdate(sch, temp, 10.0, 19, 0, 20, false)
	// 10 * 0.98 * (1 - 19/20) = 0.49
	assert.InDelta(t, 0.49, temp, 1e-9)
}

func TestTempUpdateReheatMultipliesUp(t *testing.T) {
	sch := testSchedule()
	temp := TempUpdate(sch, 2.0, 10.0, 5, 0, 20, true)
	assert.InDelta(t, 3.0, temp, 1e-9)
}

func TestInnerLoopMaxAtLeastOne(t *testing.T) {
	sch := Schedule{LoopFactor: 1.0}
	assert.Equal(t, 1, InnerLoopMax(sch, 0))
}

func TestInnerLoopMaxScalesWithLoopFactor(t *testing.T) {
	sch := Schedule{LoopFactor: 2.0}
	assert.Equal(t, 100, InnerLoopMax(sch, 10))
}

func TestReheatTrackerFiresOnceOnLowVariance(t *testing.T) {
	r := &ReheatTracker{}
	assert.False(t, r.Push(1.0))
	assert.False(t, r.Push(1.0))
	assert.True(t, r.Push(1.0))
	// Already fired -- stays quiet even if variance stays low.
	assert.False(t, r.Push(1.0))
}

func TestReheatTrackerStaysQuietOnHighVariance(t *testing.T) {
	r := &ReheatTracker{}
	r.Push(1.0)
	r.Push(100.0)
	assert.False(t, r.Push(1.0))
}

func TestCostPhase1IsRawAreaPlusOutline(t *testing.T) {
	c := Cost(Phase1, Weights{}, Normalizers{}, CostInputs{AreaCost: 30, OutlineCost: 12})
	assert.InDelta(t, 42, c, 1e-9)
}

func TestCostPhase2NormalizesAndWeighsTerms(t *testing.T) {
	w := Weights{AreaOutline: 1, HPWL: 2}
	norm := Normalizers{AreaCost: 10, HPWL: 5}
	in := CostInputs{AreaCost: 10, FittingRatio: 1.0, HPWL: 5}
	c := Cost(Phase2, w, norm, in)
	// At FittingRatio==1 the area term carries full weight (1*10/10=1)
	// and the outline term's (1-ratio)/2 weight collapses to zero; HPWL
	// contributes 2 * (5/5) = 2.
	assert.InDelta(t, 3.0, c, 1e-9)
}

func TestFittingCostIgnoresFittingRatio(t *testing.T) {
	w := Weights{AreaOutline: 1}
	norm := Normalizers{AreaCost: 10}
	in := CostInputs{AreaCost: 10, FittingRatio: 1.0}
	c := FittingCost(Phase2, w, norm, in)
	assert.InDelta(t, 1.0, c, 1e-9)
}

// countingOp is a minimal Operator stub: every Apply call perturbs a
// counter that the test's CostFunc reads back as the area/outline cost,
// and Revert undoes it, so the driver's accept/reject bookkeeping can be
// exercised without a real layout/packer round trip.
type countingOp struct {
	state  *float64
	before float64
	delta  float64
}

func (o *countingOp) Apply(rng *rand.Rand) bool {
	o.before = *o.state
	*o.state += o.delta
	return true
}

func (o *countingOp) Revert() { *o.state = o.before }

func TestDriverRunConvergesAndReportsFirstValid(t *testing.T) {
	state := 10.0
	layout := cbl.NewLayout(1)

	cost := func(l *cbl.Layout) CostInputs {
		fit := state <= 0
		ratio := 0.0
		if fit {
			ratio = 1.0
		}
		return CostInputs{AreaCost: state, Fitting: fit, FittingRatio: ratio}
	}

	ops := func(ctx SelectionContext, rng *rand.Rand) Operator {
		delta := -1.0
		if rng.Float64() < 0.2 {
			delta = 1.0
		}
		return &countingOp{state: &state, delta: delta}
	}

	d := &Driver{
		Schedule: testSchedule(),
		Weights:  Weights{AreaOutline: 1},
		Cost:     cost,
		Ops:      ops,
		Rng:      rand.New(rand.NewSource(1)),
	}

	res := d.Run(layout, 4)
	assert.GreaterOrEqual(t, res.IterationFirstValid, 0)
	assert.NotNil(t, res.Best)
}
