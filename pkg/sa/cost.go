package sa

// CostInputs bundles the scalar cost terms every analysis pass contributes
// for one candidate layout (spec §4.S two-phase cost function). Each term
// is already the raw, un-normalised metric (e.g. HPWL in microns, thermal
// cost in avg*max degrees); Cost() handles phase selection and
// normalisation so pkg/sa never imports pkg/thermal/pkg/voltage/pkg/routing
// directly.
type CostInputs struct {
	AreaCost       float64 // packing-density slack (bbox area vs summed block area)
	OutlineCost    float64 // outline-overflow mismatch (bbox vs configured die outline)
	Fitting        bool    // whether this layout fits within the die outline
	FittingRatio   float64 // fraction of dies that currently fit, in [0,1]
	HPWL           float64
	Routing        float64
	TSV            float64
	Alignment      float64
	Thermal        float64
	Voltage        float64
	Timing         float64
	ThermalLeakage float64
}

// Weights holds the phase-two weighting coefficients applied to each
// normalized cost term (spec §6 "SA weights").
type Weights struct {
	AreaOutline    float64
	HPWL           float64
	Routing        float64
	TSV            float64
	Alignment      float64
	Thermal        float64
	Voltage        float64
	Timing         float64
	ThermalLeakage float64
}

// Normalizers holds the phase-two starting values every later cost term is
// divided by, so terms of very different magnitude (microns vs degrees vs
// a unitless mismatch count) contribute comparably to the weighted sum.
// They are recorded once, the iteration a layout first fits.
type Normalizers struct {
	AreaCost       float64
	OutlineCost    float64
	HPWL           float64
	Routing        float64
	TSV            float64
	Alignment      float64
	Thermal        float64
	Voltage        float64
	Timing         float64
	ThermalLeakage float64
}

func safeDiv(v, n float64) float64 {
	if n == 0 {
		return 0
	}
	return v / n
}

// RecordNormalizers captures in's current values as the divisors for every
// later phase-two cost evaluation. Called exactly once, at the iteration
// the first fitting layout is produced.
func RecordNormalizers(in CostInputs) Normalizers {
	return Normalizers{
		AreaCost:       in.AreaCost,
		OutlineCost:    in.OutlineCost,
		HPWL:           in.HPWL,
		Routing:        in.Routing,
		TSV:            in.TSV,
		Alignment:      in.Alignment,
		Thermal:        in.Thermal,
		Voltage:        in.Voltage,
		Timing:         in.Timing,
		ThermalLeakage: in.ThermalLeakage,
	}
}

// Cost evaluates the total SA cost for phase. In Phase1, only the
// un-normalised area+outline mismatch counts -- every other analysis pass
// is skipped since no layout has fit yet and none of those terms are
// meaningful for a layout that doesn't even pack within the outline. In
// Phase2, the packing-density area term and the outline-overflow term are
// normalized and weighted independently: area carries weight (1+ratio)/2,
// rising to full weight once every die fits, while outline carries weight
// (1-ratio)/2, fading to zero -- the search keeps pressing on packing
// density even after the outline constraint itself is satisfied.
func Cost(phase Phase, w Weights, norm Normalizers, in CostInputs) float64 {
	if phase == Phase1 {
		return in.AreaCost + in.OutlineCost
	}

	areaTerm := w.AreaOutline * 0.5 * (1 + in.FittingRatio) * safeDiv(in.AreaCost, norm.AreaCost)
	outlineTerm := w.AreaOutline * 0.5 * (1 - in.FittingRatio) * safeDiv(in.OutlineCost, norm.OutlineCost)

	return areaTerm + outlineTerm +
		w.HPWL*safeDiv(in.HPWL, norm.HPWL) +
		w.Routing*safeDiv(in.Routing, norm.Routing) +
		w.TSV*safeDiv(in.TSV, norm.TSV) +
		w.Alignment*safeDiv(in.Alignment, norm.Alignment) +
		w.Thermal*safeDiv(in.Thermal, norm.Thermal) +
		w.Voltage*safeDiv(in.Voltage, norm.Voltage) +
		w.Timing*safeDiv(in.Timing, norm.Timing) +
		w.ThermalLeakage*safeDiv(in.ThermalLeakage, norm.ThermalLeakage)
}

// FittingCost evaluates the cost variant used for best-solution retention:
// identical to Cost in Phase2 except the area/outline term is not blended
// down by FittingRatio (spec §4.S: best-solution comparisons always use
// fitting_ratio=1.0, so a layout is only ever preferred for being strictly
// better once it already fits).
func FittingCost(phase Phase, w Weights, norm Normalizers, in CostInputs) float64 {
	if phase == Phase1 {
		return in.AreaCost + in.OutlineCost
	}

	areaTerm := w.AreaOutline * safeDiv(in.AreaCost, norm.AreaCost)

	return areaTerm +
		w.HPWL*safeDiv(in.HPWL, norm.HPWL) +
		w.Routing*safeDiv(in.Routing, norm.Routing) +
		w.TSV*safeDiv(in.TSV, norm.TSV) +
		w.Alignment*safeDiv(in.Alignment, norm.Alignment) +
		w.Thermal*safeDiv(in.Thermal, norm.Thermal) +
		w.Voltage*safeDiv(in.Voltage, norm.Voltage) +
		w.Timing*safeDiv(in.Timing, norm.Timing) +
		w.ThermalLeakage*safeDiv(in.ThermalLeakage, norm.ThermalLeakage)
}
