// Package config holds the parameter configuration a floorplanning run
// needs: technology/voltage tables, SA cooling constants, cost weights,
// and thermal/TSV constants (SPEC_FULL.md §1). This is parameter
// configuration only -- it never parses the legacy blocks/nets/power file
// formats, which stay out of scope (spec §1 Non-goals, §6).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a floorplanner run.
type Config struct {
	Technology TechnologyConfig `yaml:"technology"`
	SA         SAConfig         `yaml:"sa"`
	Weights    WeightsConfig    `yaml:"weights"`
	Thermal    ThermalConfig    `yaml:"thermal"`
	Voltage    VoltageConfig    `yaml:"voltage"`
	Limits     LimitsConfig     `yaml:"limits"`
	Logging    LoggingConfig    `yaml:"logging"`
	Reporting  ReportingConfig  `yaml:"reporting"`
}

// TechnologyConfig carries the die/TSV physical constants spec §6's
// "technology / voltages file" would otherwise supply.
type TechnologyConfig struct {
	Layers        int     `yaml:"layers"`
	DieWidth      float64 `yaml:"die_width"`
	DieHeight     float64 `yaml:"die_height"`
	DieThickness  float64 `yaml:"die_thickness"`
	BondThickness float64 `yaml:"bond_thickness"`
	TSVPitch      float64 `yaml:"tsv_pitch"`
	TSVDiameter   float64 `yaml:"tsv_diameter"`
	RWire         float64 `yaml:"r_wire"`
	CWire         float64 `yaml:"c_wire"`
	RTSV          float64 `yaml:"r_tsv"`
	CTSV          float64 `yaml:"c_tsv"`
	Voltage       float64 `yaml:"voltage"`
	Frequency     float64 `yaml:"frequency"`

	// Voltages, PowerFactor, and DelayFactor are indexed 0..MaxVoltages-1,
	// lowest voltage first (spec §3: voltages[v], power_factor[v],
	// delay_factor[v]).
	Voltages    [4]float64 `yaml:"voltages"`
	PowerFactor [4]float64 `yaml:"power_factor"`
	DelayFactor [4]float64 `yaml:"delay_factor"`
}

// SAConfig carries every constant spec §4.S names for the three-phase
// cooling schedule and inner loop.
type SAConfig struct {
	TempFactorPhase1      float64 `yaml:"temp_factor_phase1"`
	TempFactorPhase1Limit float64 `yaml:"temp_factor_phase1_limit"`
	TempFactorPhase2      float64 `yaml:"temp_factor_phase2"`
	TempFactorPhase3      float64 `yaml:"temp_factor_phase3"`
	TempInitFactor        float64 `yaml:"temp_init_factor"`
	LoopFactor            float64 `yaml:"loop_factor"`
	LoopLimit             int     `yaml:"loop_limit"`
}

// WeightsConfig carries the phase-two cost-term weights (spec §6 "SA
// weights").
type WeightsConfig struct {
	AreaOutline    float64 `yaml:"area_outline"`
	HPWL           float64 `yaml:"hpwl"`
	Routing        float64 `yaml:"routing"`
	TSV            float64 `yaml:"tsv"`
	Alignment      float64 `yaml:"alignment"`
	Thermal        float64 `yaml:"thermal"`
	Voltage        float64 `yaml:"voltage"`
	Timing         float64 `yaml:"timing"`
	ThermalLeakage float64 `yaml:"thermal_leakage"`
}

// ThermalConfig carries the power-blurring constants (spec §4.T).
type ThermalConfig struct {
	ImpulseFactor                  float64 `yaml:"impulse_factor"`
	ImpulseFactorScalingExponent   float64 `yaml:"impulse_factor_scaling_exponent"`
	MaskBoundaryValue              float64 `yaml:"mask_boundary_value"`
	PowerDensityScalingPaddingZone float64 `yaml:"power_density_scaling_padding_zone"`
	PowerDensityScalingTSVRegion   float64 `yaml:"power_density_scaling_tsv_region"`
	TempOffset                     float64 `yaml:"temp_offset"`
}

// VoltageConfig carries the top-down module-selection weights (spec
// §4.V: w_sav, w_cor, w_var, w_cnt).
type VoltageConfig struct {
	WeightSaving  float64 `yaml:"w_sav"`
	WeightCorners float64 `yaml:"w_cor"`
	WeightVar     float64 `yaml:"w_var"`
	WeightCount   float64 `yaml:"w_cnt"`
	MergeModules  bool    `yaml:"merge_selected_modules"`
}

// LimitsConfig carries the standalone thresholds that sit outside any one
// analysis pass (floorplacement pinning, TSV cluster sizing, the delay
// threshold) and the number of post-pack compaction passes.
type LimitsConfig struct {
	FPAreaRatioLimit   float64 `yaml:"fp_area_ratio_limit"`
	TSVPerClusterLimit int     `yaml:"tsv_per_cluster_limit"`
	DelayThreshold     float64 `yaml:"delay_threshold"`

	// PackingIterations is the number of compaction passes (alternating
	// horizontal and vertical) pkg/floorplan.Generate runs after the
	// initial PlaceAll pass and its single alignment-shift sweep (spec §4.P
	// compaction).
	PackingIterations int `yaml:"packing_iterations"`
}

// LoggingConfig controls pkg/reporting.Logger construction.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReportingConfig controls where run outputs land.
type ReportingConfig struct {
	OutputDir        string `yaml:"output_dir"`
	TemperatureLog   bool   `yaml:"temperature_log"`
	MetricsAddr      string `yaml:"metrics_addr"`
}

// DefaultConfig returns a configuration with the reference constants
// spec.md names wherever it gives one, and conservative defaults
// otherwise.
func DefaultConfig() *Config {
	return &Config{
		Technology: TechnologyConfig{
			Layers:        2,
			DieWidth:      1000,
			DieHeight:     1000,
			DieThickness:  50,
			BondThickness: 5,
			TSVPitch:      5,
			TSVDiameter:   2,
			RWire:         0.0001,
			CWire:         0.0002,
			RTSV:          0.01,
			CTSV:          0.001,
			Voltage:       1.0,
			Frequency:     1e9,
			Voltages:      [4]float64{0.7, 0.8, 0.9, 1.0},
			PowerFactor:   [4]float64{0.49, 0.64, 0.81, 1.0},
			DelayFactor:   [4]float64{1.43, 1.25, 1.11, 1.0},
		},
		SA: SAConfig{
			TempFactorPhase1:      0.995,
			TempFactorPhase1Limit: 0.2,
			TempFactorPhase2:      0.95,
			TempFactorPhase3:      4.0,
			TempInitFactor:        1.5,
			LoopFactor:            1.33,
			LoopLimit:             20000,
		},
		Weights: WeightsConfig{
			AreaOutline:    1.0,
			HPWL:           1.0,
			Routing:        1.0,
			TSV:            1.0,
			Alignment:      1.0,
			Thermal:        1.0,
			Voltage:        1.0,
			Timing:         1.0,
			ThermalLeakage: 1.0,
		},
		Thermal: ThermalConfig{
			ImpulseFactor:                  1.0,
			ImpulseFactorScalingExponent:   1.0,
			MaskBoundaryValue:              0.01,
			PowerDensityScalingPaddingZone: 0.5,
			PowerDensityScalingTSVRegion:   0.8,
			TempOffset:                     25.0,
		},
		Voltage: VoltageConfig{
			WeightSaving:  1.0,
			WeightCorners: 1.0,
			WeightVar:     0.0,
			WeightCount:   1.0,
			MergeModules:  true,
		},
		Limits: LimitsConfig{
			FPAreaRatioLimit:   5.0,
			TSVPerClusterLimit: 16,
			DelayThreshold:     1.0,
			PackingIterations:  4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Reporting: ReportingConfig{
			OutputDir:      "./out",
			TemperatureLog: true,
			MetricsAddr:    "",
		},
	}
}

// Load reads configuration from a YAML file (./floorplanner.yaml when path
// is empty), falling back to DefaultConfig when that file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "floorplanner.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values that would make a run
// meaningless (zero/negative die outline, loop limit, or layer count).
func (c *Config) Validate() error {
	if c.Technology.Layers < 1 {
		return fmt.Errorf("technology.layers must be at least 1")
	}
	if c.Technology.DieWidth <= 0 || c.Technology.DieHeight <= 0 {
		return fmt.Errorf("technology.die_width and die_height must be positive")
	}
	if c.SA.LoopLimit < 1 {
		return fmt.Errorf("sa.loop_limit must be at least 1")
	}
	if c.Limits.TSVPerClusterLimit < 1 {
		return fmt.Errorf("limits.tsv_per_cluster_limit must be at least 1")
	}
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}
	return nil
}
