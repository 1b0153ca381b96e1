// Package thermal implements the power-blurring thermal analyser (spec
// §4.T): padded per-layer power-map construction, TSV-density adaptation of
// those maps, a separable 1-D Gaussian convolution down to a 64x64 thermal
// map, and the scalar thermal cost the SA driver consumes. Grounded on
// pkg/monitoring/collector/collector.go's fixed-shape numeric
// sampling-grid accumulation idiom (generalized here from "collect
// time-series samples" to "accumulate a 2-D power map").
package thermal

import (
	"math"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

const (
	// MapDim is the thermal map's side length (spec §3: THERMAL_MAP_DIM).
	MapDim = 64
	// MaskDim is the Gaussian kernel's tap count (spec §3: THERMAL_MASK_DIM).
	MaskDim = 11
	// PaddedBins is the one-sided padding width in bins (MaskDim-1)/2.
	PaddedBins = (MaskDim - 1) / 2
	// PaddedDim is the padded power map's side length (spec §3:
	// POWER_MAPS_DIM = THERMAL_MAP_DIM + THERMAL_MASK_DIM - 1).
	PaddedDim = MapDim + MaskDim - 1
)

// PowerBin is one bin of a per-layer padded power map.
type PowerBin struct {
	PowerDensity float64
	TSVDensity   float64
}

// PowerMap is one layer's padded power map.
type PowerMap [PaddedDim][PaddedDim]PowerBin

// ThermalBin is one bin of the 64x64 thermal map.
type ThermalBin struct {
	Temp       float64
	X, Y       int
	BB         geometry.Rect
	HotspotID  int
	Neighbours [][2]int
}

// Map is the final 64x64 thermal map.
type Map [MapDim][MapDim]ThermalBin

// Params bundles every thermal constant a technology/run configuration
// supplies (SPEC_FULL.md §1 configuration section).
type Params struct {
	DieW, DieH                     float64
	ImpulseFactor                  float64
	ImpulseFactorScalingExponent   float64
	MaskBoundaryValue              float64
	PowerDensityScalingPaddingZone float64
	PowerDensityScalingTSVRegion   float64
	TempOffset                     float64
}

// BinDims returns the per-axis bin size for a die of the given outline
// dimensions over the fixed MapDim x MapDim grid.
func BinDims(dieW, dieH float64) (binW, binH float64) {
	return dieW / MapDim, dieH / MapDim
}

var neighbourOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// neighboursOf returns the in-bounds 8-neighbourhood of (x, y), the
// adjacency spec §3 says is "precomputed once" -- here recomputed for every
// bin each time Convolve builds a thermal map.
func neighboursOf(x, y int) [][2]int {
	out := make([][2]int, 0, 8)
	for _, o := range neighbourOffsets {
		nx, ny := x+o[0], y+o[1]
		if nx >= 0 && nx < MapDim && ny >= 0 && ny < MapDim {
			out = append(out, [2]int{nx, ny})
		}
	}
	return out
}

// Kernels builds one length-MaskDim 1-D Gaussian kernel per layer (spec
// §4.T masks): for layer index i (1-based, counting from the hottest
// layer), the peak is impulse_factor / i^impulse_factor_scaling_exponent,
// and the spread is solved so the kernel's extreme tap (offset 5, the
// half-width of an 11-tap kernel) equals mask_boundary_value.
func Kernels(layers int, p Params) [][]float64 {
	out := make([][]float64, layers)
	for i := 1; i <= layers; i++ {
		peak := p.ImpulseFactor / math.Pow(float64(i), p.ImpulseFactorScalingExponent)
		out[i-1] = kernel(peak, p.MaskBoundaryValue)
	}
	return out
}

// kernel builds one symmetric 11-tap Gaussian kernel with the given peak
// (tap 0, the center) such that the boundary tap (offset 5) equals
// boundary. No flipping is needed for convolution since the kernel is
// symmetric by construction.
func kernel(peak, boundary float64) []float64 {
	k := make([]float64, MaskDim)
	half := MaskDim / 2
	if peak <= 0 || boundary <= 0 || boundary >= peak {
		// Degenerate: no meaningful spread: concentrate all mass on
		// the center tap.
		k[half] = peak
		return k
	}
	// peak * exp(-25/(2*sigma^2)) == boundary
	sigma := math.Sqrt(-25.0 / (2.0 * math.Log(boundary/peak)))
	for d := -half; d <= half; d++ {
		k[d+half] = peak * math.Exp(-float64(d*d)/(2*sigma*sigma))
	}
	return k
}

// BuildPowerMaps accumulates one padded power map per layer from blocks'
// current placement (spec §4.T power-map generation): each block's bounding
// box is enlarged by the padding offset, and every touched bin accumulates
// power_density weighted by the fractional area of the block that falls in
// that bin; bins inside the padding zone are additionally scaled by
// PowerDensityScalingPaddingZone.
func BuildPowerMaps(layers int, blocks []*block.Block, p Params) []PowerMap {
	binW, binH := BinDims(p.DieW, p.DieH)
	maps := make([]PowerMap, layers)

	for _, b := range blocks {
		if b.Layer < 0 || b.Layer >= layers {
			continue
		}
		enlarged := paddedBounds(b.BB, p.DieW, p.DieH, binW, binH)
		accumulate(&maps[b.Layer], enlarged, b.PowerDensity, binW, binH, p.PowerDensityScalingPaddingZone)
	}
	return maps
}

// paddedBounds maps a block's die-space bounding box into padded-grid
// coordinates, extending it into the padding zone on any edge that
// touches (within 1% of the die outline) the die boundary so boundary
// blocks benefit from the symmetric convolution tail (spec §4.T).
func paddedBounds(bb geometry.Rect, dieW, dieH, binW, binH float64) geometry.Rect {
	offX := float64(PaddedBins) * binW
	offY := float64(PaddedBins) * binH
	tolX := 0.01 * dieW
	tolY := 0.01 * dieH

	llx := bb.LL.X + offX
	if bb.LL.X <= tolX {
		llx = 0
	}
	lly := bb.LL.Y + offY
	if bb.LL.Y <= tolY {
		lly = 0
	}
	urx := bb.UR.X + offX
	if dieW-bb.UR.X <= tolX {
		urx = float64(PaddedDim) * binW
	}
	ury := bb.UR.Y + offY
	if dieH-bb.UR.Y <= tolY {
		ury = float64(PaddedDim) * binH
	}
	return geometry.NewRect(llx, lly, urx, ury)
}

// accumulate adds powerDensity, weighted by fractional bin overlap, into
// every bin of m touched by enlarged.
func accumulate(m *PowerMap, enlarged geometry.Rect, powerDensity, binW, binH, paddingScale float64) {
	x0 := int(math.Floor(enlarged.LL.X / binW))
	x1 := int(math.Ceil(enlarged.UR.X / binW))
	y0 := int(math.Floor(enlarged.LL.Y / binH))
	y1 := int(math.Ceil(enlarged.UR.Y / binH))

	for y := max(y0, 0); y < min(y1, PaddedDim); y++ {
		for x := max(x0, 0); x < min(x1, PaddedDim); x++ {
			binRect := geometry.NewRect(float64(x)*binW, float64(y)*binH, float64(x+1)*binW, float64(y+1)*binH)
			inter := geometry.DetermineIntersection(enlarged, binRect)
			area := inter.Area()
			if area <= 0 {
				continue
			}
			frac := area / (binW * binH)
			contribution := powerDensity * frac
			if x < PaddedBins || x >= PaddedDim-PaddedBins || y < PaddedBins || y >= PaddedDim-PaddedBins {
				contribution *= paddingScale
			}
			m[y][x].PowerDensity += contribution
		}
	}
}

// ApplyTSVAdaptation accumulates each TSV island's footprint into its
// layer's TSV-density bins (clamped to 100) and then scales that layer's
// power bins by 1 + (PowerDensityScalingTSVRegion-1)*TSVDensity/100 (spec
// §4.T TSV adaptation): a scaling factor below 1 models TSVs lowering
// effective local heating.
func ApplyTSVAdaptation(maps []PowerMap, islands []*block.TSVIsland, p Params) {
	binW, binH := BinDims(p.DieW, p.DieH)

	for _, isl := range islands {
		if isl.Layer < 0 || isl.Layer >= len(maps) {
			continue
		}
		enlarged := paddedBounds(isl.BB, p.DieW, p.DieH, binW, binH)
		x0 := int(math.Floor(enlarged.LL.X / binW))
		x1 := int(math.Ceil(enlarged.UR.X / binW))
		y0 := int(math.Floor(enlarged.LL.Y / binH))
		y1 := int(math.Ceil(enlarged.UR.Y / binH))

		m := &maps[isl.Layer]
		for y := max(y0, 0); y < min(y1, PaddedDim); y++ {
			for x := max(x0, 0); x < min(x1, PaddedDim); x++ {
				binRect := geometry.NewRect(float64(x)*binW, float64(y)*binH, float64(x+1)*binW, float64(y+1)*binH)
				inter := geometry.DetermineIntersection(enlarged, binRect)
				area := inter.Area()
				if area <= 0 {
					continue
				}
				frac := area / (binW * binH)
				m[y][x].TSVDensity = math.Min(100, m[y][x].TSVDensity+100*frac)
			}
		}
	}

	for i := range maps {
		m := &maps[i]
		for y := 0; y < PaddedDim; y++ {
			for x := 0; x < PaddedDim; x++ {
				d := m[y][x].TSVDensity
				if d == 0 {
					continue
				}
				scale := 1 + (p.PowerDensityScalingTSVRegion-1)*d/100
				m[y][x].PowerDensity *= scale
			}
		}
	}
}

// Convolve performs the separable 2-D Gaussian convolution (spec §4.T):
// one horizontal pass per layer's padded power map into a temporary map,
// then a vertical pass of that temporary map into the 64x64 thermal map,
// offset by the padding so thermal bin (x,y) aligns with power bin
// (x+PaddedBins, y+PaddedBins). Every layer's contribution is summed, and
// TempOffset is added elementwise at the end.
func Convolve(maps []PowerMap, kernels [][]float64, p Params) Map {
	var result [MapDim][MapDim]float64

	for li, m := range maps {
		k := kernels[li]
		var tmp [PaddedDim][MapDim]float64
		// Horizontal pass: for each padded row, produce MapDim output
		// columns (one per final thermal column).
		for y := 0; y < PaddedDim; y++ {
			for ox := 0; ox < MapDim; ox++ {
				var acc float64
				for t := 0; t < MaskDim; t++ {
					acc += m[y][ox+t].PowerDensity * k[t]
				}
				tmp[y][ox] = acc
			}
		}
		// Vertical pass: for each of the MapDim output columns,
		// convolve down to MapDim output rows.
		for ox := 0; ox < MapDim; ox++ {
			for oy := 0; oy < MapDim; oy++ {
				var acc float64
				for t := 0; t < MaskDim; t++ {
					acc += tmp[oy+t][ox] * k[t]
				}
				result[oy][ox] += acc
			}
		}
	}

	var tm Map
	for y := 0; y < MapDim; y++ {
		for x := 0; x < MapDim; x++ {
			binW, binH := BinDims(p.DieW, p.DieH)
			tm[y][x] = ThermalBin{
				Temp:       result[y][x] + p.TempOffset,
				X:          x,
				Y:          y,
				BB:         geometry.NewRect(float64(x)*binW, float64(y)*binH, float64(x+1)*binW, float64(y+1)*binH),
				HotspotID:  -1,
				Neighbours: neighboursOf(x, y),
			}
		}
	}
	return tm
}

// Cost returns the thermal cost term the SA driver consumes: avg_temp *
// max_temp (spec §4.T).
func Cost(tm *Map) (avg, maxT, cost float64) {
	maxT = math.Inf(-1)
	var sum float64
	for y := 0; y < MapDim; y++ {
		for x := 0; x < MapDim; x++ {
			t := tm[y][x].Temp
			sum += t
			if t > maxT {
				maxT = t
			}
		}
	}
	avg = sum / (MapDim * MapDim)
	return avg, maxT, avg * maxT
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
