package reporting

import "time"

// Summary is the results-summary output artifact spec §6 names: total
// iterations run, the iteration the first fitting layout appeared, the
// best layout's cost breakdown, and per-layer statistics.
type Summary struct {
	RunID          string    `json:"run_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       string    `json:"duration"`
	TotalIterations int      `json:"total_iterations"`
	FirstFitIter   int       `json:"first_fit_iteration"`
	Reheats        int       `json:"reheats"`

	BestCost   CostBreakdown `json:"best_cost"`
	Layers     []LayerStats  `json:"layers"`
	Voltage    VoltageStats  `json:"voltage"`

	Errors []string `json:"errors,omitempty"`
}

// CostBreakdown mirrors sa.CostInputs/Weights so a finished run's best
// layout can be reported term by term (spec §6 "best cost breakdown").
type CostBreakdown struct {
	AreaOutline    float64 `json:"area_outline"`
	HPWL           float64 `json:"hpwl"`
	Routing        float64 `json:"routing"`
	TSV            float64 `json:"tsv"`
	Alignment      float64 `json:"alignment"`
	Thermal        float64 `json:"thermal"`
	Voltage        float64 `json:"voltage"`
	Timing         float64 `json:"timing"`
	ThermalLeakage float64 `json:"thermal_leakage"`
	Total          float64 `json:"total"`
}

// LayerStats captures one die's per-layer area utilisation, thermal
// extremes, and TSV count (spec §6 "per-layer stats").
type LayerStats struct {
	Layer         int     `json:"layer"`
	AreaUsed      float64 `json:"area_used"`
	AreaOutline   float64 `json:"area_outline"`
	Utilisation   float64 `json:"utilisation"`
	PeakTemp      float64 `json:"peak_temp"`
	AvgTemp       float64 `json:"avg_temp"`
	TSVCount      int     `json:"tsv_count"`
	HotspotCount  int     `json:"hotspot_count"`
}

// VoltageStats summarizes the voltage-island assignment outcome.
type VoltageStats struct {
	ModuleCount    int     `json:"module_count"`
	AvgPowerSaving float64 `json:"avg_power_saving"`
}

// TemperatureStep is one logged SA iteration (spec §6 "temperature-schedule
// log").
type TemperatureStep struct {
	Iteration   int     `json:"iteration"`
	Phase       string  `json:"phase"`
	Temperature float64 `json:"temperature"`
	Cost        float64 `json:"cost"`
	Accepted    bool    `json:"accepted"`
}
