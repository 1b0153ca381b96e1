package reporting

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutputFormat selects how ProgressReporter renders each event.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ProgressReporter reports simulated-annealing run progress: phase
// transitions, temperature-schedule steps, reheat events, and new best
// solutions (spec §6 "temperature-schedule log").
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportPhaseTransition reports the SA driver entering a new cost-function
// phase.
func (pr *ProgressReporter) ReportPhaseTransition(from, to string, iteration int) {
	switch pr.format {
	case FormatJSON:
		pr.emitJSON(map[string]interface{}{
			"event":     "phase_transition",
			"from":      from,
			"to":        to,
			"iteration": iteration,
		})
	default:
		fmt.Printf("[PHASE] iter=%d %s -> %s\n", iteration, from, to)
	}
	pr.logger.WithIteration(iteration).Debug("phase transition", "from", from, "to", to)
}

// ReportTemperatureStep logs one SA iteration's temperature and cost
// (spec §6 temperature-schedule log).
func (pr *ProgressReporter) ReportTemperatureStep(step TemperatureStep) {
	switch pr.format {
	case FormatJSON:
		pr.emitJSON(step)
	default:
		status := "rejected"
		if step.Accepted {
			status = "accepted"
		}
		fmt.Printf("[STEP %d] phase=%s T=%.6f cost=%.6f %s\n",
			step.Iteration, step.Phase, step.Temperature, step.Cost, status)
	}
	pr.logger.WithIteration(step.Iteration).WithPhase(step.Phase).
		Debug("temperature step", FieldTemp, step.Temperature, FieldCost, step.Cost, "accepted", step.Accepted)
}

// ReportReheat reports a phase-three reheat firing.
func (pr *ProgressReporter) ReportReheat(iteration int, newTemp float64) {
	switch pr.format {
	case FormatJSON:
		pr.emitJSON(map[string]interface{}{
			"event":     "reheat",
			"iteration": iteration,
			"new_temp":  newTemp,
		})
	default:
		fmt.Printf("[REHEAT] iter=%d new_temp=%.6f\n", iteration, newTemp)
	}
	pr.logger.WithIteration(iteration).Info("reheat fired", FieldTemp, newTemp)
}

// ReportBestSolution reports a new best-solution acceptance.
func (pr *ProgressReporter) ReportBestSolution(iteration int, cost float64) {
	switch pr.format {
	case FormatJSON:
		pr.emitJSON(map[string]interface{}{
			"event":     "best_solution",
			"iteration": iteration,
			"cost":      cost,
		})
	default:
		fmt.Printf("[BEST] iter=%d cost=%.6f\n", iteration, cost)
	}
	pr.logger.WithIteration(iteration).Info("new best solution", FieldCost, cost)
}

// ReportRunComplete reports the run's terminal summary line.
func (pr *ProgressReporter) ReportRunComplete(summary *Summary) {
	switch pr.format {
	case FormatJSON:
		pr.emitJSON(map[string]interface{}{
			"event":      "run_complete",
			"iterations": summary.TotalIterations,
			"best_cost":  summary.BestCost.Total,
			"duration":   summary.Duration,
		})
	default:
		fmt.Printf("[DONE] iterations=%d best_cost=%.6f duration=%s\n",
			summary.TotalIterations, summary.BestCost.Total, summary.Duration)
	}
}

func (pr *ProgressReporter) emitJSON(v interface{}) {
	payload := map[string]interface{}{"timestamp": time.Now()}
	if m, ok := v.(map[string]interface{}); ok {
		for k, val := range m {
			payload[k] = val
		}
	} else {
		data, err := json.Marshal(v)
		if err != nil {
			pr.logger.Error("failed to marshal progress event", "error", err)
			return
		}
		fmt.Println(string(data))
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		pr.logger.Error("failed to marshal progress event", "error", err)
		return
	}
	fmt.Println(string(data))
}
