package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go3dic/floorplanner/pkg/block"
)

func baseParams() Params {
	return Params{
		DieW:                           1000,
		DieH:                           1000,
		ImpulseFactor:                  1.0,
		ImpulseFactorScalingExponent:   1.0,
		MaskBoundaryValue:              0.01,
		PowerDensityScalingPaddingZone: 0.5,
		PowerDensityScalingTSVRegion:   0.8,
		TempOffset:                     25.0,
	}
}

func TestKernelsAreSymmetricAndPeakAtCenter(t *testing.T) {
	p := baseParams()
	ks := Kernels(2, p)
	require.Len(t, ks, 2)

	for _, k := range ks {
		require.Len(t, k, MaskDim)
		half := MaskDim / 2
		for d := 1; d <= half; d++ {
			assert.InDelta(t, k[half-d], k[half+d], 1e-12, "kernel must be symmetric")
		}
		for d := 1; d <= half; d++ {
			assert.LessOrEqual(t, k[half-d], k[half-d+1]+1e-12, "kernel must decrease away from center")
		}
	}

	// Deeper layers (higher index i) have a lower peak since
	// peak = impulse_factor / i^exponent.
	assert.Greater(t, ks[0][MaskDim/2], ks[1][MaskDim/2])
}

func TestKernelsBoundaryTapMatchesMaskBoundaryValue(t *testing.T) {
	p := baseParams()
	ks := Kernels(1, p)
	k := ks[0]
	half := MaskDim / 2
	assert.InDelta(t, p.MaskBoundaryValue, k[0], 1e-9)
	assert.InDelta(t, p.MaskBoundaryValue, k[MaskDim-1], 1e-9)
	assert.Greater(t, k[half], p.MaskBoundaryValue)
}

func TestBuildPowerMapsAccumulatesInteriorBinFully(t *testing.T) {
	p := baseParams()
	binW, binH := BinDims(p.DieW, p.DieH)

	// Place a block entirely within one interior bin, away from the die
	// boundary so no padding-extension branch fires.
	cx := p.DieW / 2
	b := block.New("b0", 0, binW*binH, 0.5, 2, false)
	b.BB.LL.X, b.BB.LL.Y = cx, cx
	b.BB.UR.X, b.BB.UR.Y = cx+binW, cx+binH
	b.PowerDensity = 2.0
	b.Layer = 0

	maps := BuildPowerMaps(1, []*block.Block{b}, p)
	require.Len(t, maps, 1)

	binX := int(math.Round(cx/binW)) + PaddedBins
	binY := int(math.Round(cx/binH)) + PaddedBins
	assert.InDelta(t, 2.0, maps[0][binY][binX].PowerDensity, 1e-6)
}

func TestConvolveIsLinearInPower(t *testing.T) {
	p := baseParams()
	kernels := Kernels(1, p)

	b := block.New("b0", 0, 1, 0.5, 2, false)
	b.BB.LL.X, b.BB.LL.Y = 500, 500
	b.BB.UR.X, b.BB.UR.Y = 510, 510
	b.PowerDensity = 1.0
	b.Layer = 0

	maps1 := BuildPowerMaps(1, []*block.Block{b}, p)
	tm1 := Convolve(maps1, kernels, Params{DieW: p.DieW, DieH: p.DieH})

	const k = 3.0
	b2 := *b
	b2.PowerDensity = k
	maps2 := BuildPowerMaps(1, []*block.Block{&b2}, p)
	tm2 := Convolve(maps2, kernels, Params{DieW: p.DieW, DieH: p.DieH})

	for y := 0; y < MapDim; y++ {
		for x := 0; x < MapDim; x++ {
			assert.InDelta(t, tm1[y][x].Temp*k, tm2[y][x].Temp, 1e-6,
				"scaling every block's power by k must scale every thermal bin by k (spec invariant 7)")
		}
	}
}

func TestConvolveAddsTempOffsetElementwise(t *testing.T) {
	p := baseParams()
	kernels := Kernels(1, p)
	maps := make([]PowerMap, 1) // no power anywhere

	tm := Convolve(maps, kernels, p)
	for y := 0; y < MapDim; y++ {
		for x := 0; x < MapDim; x++ {
			assert.InDelta(t, p.TempOffset, tm[y][x].Temp, 1e-9)
		}
	}
}

func TestCostIsAvgTimesMax(t *testing.T) {
	var tm Map
	for y := 0; y < MapDim; y++ {
		for x := 0; x < MapDim; x++ {
			tm[y][x].Temp = 10
		}
	}
	tm[5][5].Temp = 100

	avg, maxT, cost := Cost(&tm)
	assert.InDelta(t, 100.0, maxT, 1e-9)
	assert.InDelta(t, avg*maxT, cost, 1e-9)
}

func TestApplyTSVAdaptationScalesPowerDown(t *testing.T) {
	p := baseParams()
	p.PowerDensityScalingTSVRegion = 0.5 // TSVs lower local heating

	maps := make([]PowerMap, 1)
	maps[0][10][10].PowerDensity = 4.0

	isl := &block.TSVIsland{}
	isl.Layer = 0
	binW, binH := BinDims(p.DieW, p.DieH)
	x, y := 10-PaddedBins, 10-PaddedBins // die bin 5 is padded bin 10
	isl.BB.LL.X, isl.BB.LL.Y = float64(x)*binW, float64(y)*binH
	isl.BB.UR.X, isl.BB.UR.Y = float64(x+1)*binW, float64(y+1)*binH

	ApplyTSVAdaptation(maps, []*block.TSVIsland{isl}, p)

	assert.InDelta(t, 100.0, maps[0][10][10].TSVDensity, 1e-6)
	// power * (1 + (0.5-1)*100/100) == power * 0.5
	assert.InDelta(t, 2.0, maps[0][10][10].PowerDensity, 1e-6)
}

func TestNeighboursOfRespectsGridBounds(t *testing.T) {
	corner := neighboursOf(0, 0)
	assert.Len(t, corner, 3)

	interior := neighboursOf(5, 5)
	assert.Len(t, interior, 8)
}
