package floorplan

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/go3dic/floorplanner/pkg/alignment"
	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/config"
	"github.com/go3dic/floorplanner/pkg/netlist"
)

// NewSyntheticProblem builds a small built-in benchmark problem: blockCount
// blocks of random area/power within the die outline, each feasible from a
// random minimum voltage index upward, wired into netCount random 2-4 pin
// nets, with up to blockCount/4 zero-range MIN alignment requests (no
// signals) between randomly drawn distinct block pairs (spec §6: a
// runnable entry point needs *a* way to obtain a Problem, not a legacy
// benchmark-file parser).
func NewSyntheticProblem(cfg *config.Config, blockCount, netCount int, rng *rand.Rand) *Problem {
	tech := cfg.Technology
	dieArea := tech.DieWidth * tech.DieHeight
	avgArea := dieArea * float64(tech.Layers) / float64(blockCount) * 0.6

	blocks := make([]*block.Block, blockCount)
	for i := 0; i < blockCount; i++ {
		area := avgArea * (0.5 + rng.Float64())
		b := block.New(fmt.Sprintf("b%d", i), i, area, 0.33, 3.0, true)
		b.SetShape(math.Sqrt(area), math.Sqrt(area))
		b.PowerDensity = 0.2 + rng.Float64()*0.8
		b.PowerFactor = tech.PowerFactor
		b.DelayFactor = tech.DelayFactor
		b.Voltages = tech.Voltages
		b.BaseDelay = block.EstimateBaseDelay(b.Shape()) * (0.9 + 0.2*rng.Float64())
		minFeasible := rng.Intn(block.MaxVoltages)
		b.FeasibleVoltages = block.NewVoltageBitset(minFeasible)
		blocks[i] = b
	}

	nets := make([]*netlist.Net, netCount)
	for i := 0; i < netCount; i++ {
		degree := 2 + rng.Intn(3)
		sinks := make([]*block.Block, degree)
		for j := 0; j < degree; j++ {
			sinks[j] = blocks[rng.Intn(blockCount)]
		}
		nets[i] = &netlist.Net{
			Name:   fmt.Sprintf("n%d", i),
			Degree: degree,
			Sinks:  sinks,
			Weight: 1.0,
		}
	}

	var alignments []*alignment.Request
	alignCount := blockCount / 4
	for i := 0; i < alignCount; i++ {
		si := blocks[rng.Intn(blockCount)]
		sj := blocks[rng.Intn(blockCount)]
		if si == sj {
			continue
		}
		req := alignment.New(i, alignment.Strict, 0, si, sj, alignment.Min, 0, alignment.Min, 0)
		alignments = append(alignments, req)
	}

	return &Problem{Blocks: blocks, Nets: nets, Alignments: alignments, Config: cfg}
}

// problemFile is the minimal JSON problem description the run command
// accepts as an alternative to the synthetic benchmark: just enough to
// name blocks, their area/power, and the nets connecting them.
type problemFile struct {
	Blocks []struct {
		ID           string  `json:"id"`
		Area         float64 `json:"area"`
		ARMin        float64 `json:"ar_min"`
		ARMax        float64 `json:"ar_max"`
		PowerDensity float64 `json:"power_density"`
		BaseDelay    float64 `json:"base_delay"`
		MinVoltage   int     `json:"min_voltage"`
	} `json:"blocks"`
	Nets []struct {
		Name   string   `json:"name"`
		Sinks  []string `json:"sinks"`
		Weight float64  `json:"weight"`
	} `json:"nets"`
	Alignments []struct {
		SI     string  `json:"si"`
		SJ     string  `json:"sj"`
		AlignX float64 `json:"align_x"`
		AlignY float64 `json:"align_y"`
	} `json:"alignments"`
}

// LoadProblemJSON reads a minimal JSON problem description from path
// (spec §6 CLI: "a minimal JSON problem description" as the alternative
// to the built-in synthetic benchmark).
func LoadProblemJSON(path string, cfg *config.Config) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	var pf problemFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse problem file: %w", err)
	}

	tech := cfg.Technology
	byID := make(map[string]*block.Block, len(pf.Blocks))
	blocks := make([]*block.Block, len(pf.Blocks))
	for i, bd := range pf.Blocks {
		arMin, arMax := bd.ARMin, bd.ARMax
		if arMin == 0 {
			arMin = 0.33
		}
		if arMax == 0 {
			arMax = 3.0
		}
		b := block.New(bd.ID, i, bd.Area, arMin, arMax, true)
		b.SetShape(math.Sqrt(bd.Area), math.Sqrt(bd.Area))
		b.PowerDensity = bd.PowerDensity
		b.PowerFactor = tech.PowerFactor
		b.DelayFactor = tech.DelayFactor
		b.Voltages = tech.Voltages
		b.BaseDelay = bd.BaseDelay
		b.FeasibleVoltages = block.NewVoltageBitset(bd.MinVoltage)
		blocks[i] = b
		byID[bd.ID] = b
	}

	nets := make([]*netlist.Net, 0, len(pf.Nets))
	for _, nd := range pf.Nets {
		sinks := make([]*block.Block, 0, len(nd.Sinks))
		for _, id := range nd.Sinks {
			b, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("net %s references unknown block %s", nd.Name, id)
			}
			sinks = append(sinks, b)
		}
		weight := nd.Weight
		if weight == 0 {
			weight = 1.0
		}
		nets = append(nets, &netlist.Net{Name: nd.Name, Degree: len(sinks), Sinks: sinks, Weight: weight})
	}

	var alignments []*alignment.Request
	for i, ad := range pf.Alignments {
		si, ok := byID[ad.SI]
		if !ok {
			return nil, fmt.Errorf("alignment %d references unknown block %s", i, ad.SI)
		}
		sj, ok := byID[ad.SJ]
		if !ok {
			return nil, fmt.Errorf("alignment %d references unknown block %s", i, ad.SJ)
		}
		alignments = append(alignments, alignment.New(i, alignment.Strict, 0, si, sj, alignment.Min, ad.AlignX, alignment.Min, ad.AlignY))
	}

	return &Problem{Blocks: blocks, Nets: nets, Alignments: alignments, Config: cfg}, nil
}
