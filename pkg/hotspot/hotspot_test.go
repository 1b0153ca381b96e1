package hotspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go3dic/floorplanner/pkg/thermal"
)

const background = 300.0

func uniformMap() *thermal.Map {
	var tm thermal.Map
	for y := 0; y < thermal.MapDim; y++ {
		for x := 0; x < thermal.MapDim; x++ {
			tm[y][x].Temp = background
			tm[y][x].X, tm[y][x].Y = x, y
			tm[y][x].Neighbours = neighboursOfForTest(x, y)
		}
	}
	return &tm
}

// neighboursOfForTest mirrors thermal.neighboursOf (unexported) since the
// test needs the same 8-neighbour adjacency the package precomputes.
func neighboursOfForTest(x, y int) [][2]int {
	var out [][2]int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx >= 0 && nx < thermal.MapDim && ny >= 0 && ny < thermal.MapDim {
				out = append(out, [2]int{nx, ny})
			}
		}
	}
	return out
}

// TestDetectIsolatedHotPixel is spec scenario S3: a single hot bin at
// (10,10)=350K on an otherwise background 300K map must produce exactly
// one hotspot whose peak and base temperature both equal 350 (no lower
// boundary exists since every neighbour is background) with no other bins.
func TestDetectIsolatedHotPixel(t *testing.T) {
	tm := uniformMap()
	tm[10][10].Temp = 350

	hotspots := Detect(tm, background)

	require.Len(t, hotspots, 1)
	h := hotspots[0]
	assert.InDelta(t, 350.0, h.PeakTemp, 1e-9)
	assert.InDelta(t, 350.0, h.BaseTemp, 1e-9)
	assert.Len(t, h.Bins, 1)
	assert.Equal(t, [2]int{10, 10}, h.Bins[0])
}

func TestDetectTwoSeparateHotspotsMergeBaseLevel(t *testing.T) {
	tm := uniformMap()
	// Two separate peaks, each sitting atop a shared lower ridge bin so
	// the ridge bin becomes the base level for both.
	tm[10][10].Temp = 400
	tm[10][12].Temp = 400
	tm[10][11].Temp = 350 // adjacent to both peaks

	hotspots := Detect(tm, background)

	require.Len(t, hotspots, 2)
	for _, h := range hotspots {
		assert.InDelta(t, 400.0, h.PeakTemp, 1e-9)
		assert.InDelta(t, 350.0, h.BaseTemp, 1e-9)
		assert.False(t, h.StillGrowing)
	}
}

func TestDetectNoHotspotsOnFlatMap(t *testing.T) {
	tm := uniformMap()
	hotspots := Detect(tm, background)
	assert.Empty(t, hotspots)
}

func TestDetectScoreRewardsHigherPeakMinusBase(t *testing.T) {
	tm := uniformMap()
	// Two separate two-bin hotspots with the same peak-minus-base delta
	// (5K) but different peaks: score = (peak-base)*peak^2 must favour
	// the hotter one.
	tm[5][5].Temp = 310
	tm[6][5].Temp = 305
	tm[30][30].Temp = 450
	tm[31][30].Temp = 445

	hotspots := Detect(tm, background)
	require.Len(t, hotspots, 2)

	var lowScore, highScore float64
	for _, h := range hotspots {
		if h.PeakTemp > 400 {
			highScore = h.Score
		} else {
			lowScore = h.Score
		}
	}
	assert.Greater(t, highScore, lowScore)
}
