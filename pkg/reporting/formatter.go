package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// ReportFormat is a results-summary output format.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Formatter renders a Summary to the requested output format.
type Formatter struct {
	logger *Logger
}

// NewFormatter creates a new results formatter.
func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{logger: logger}
}

// GenerateReport writes summary to outputPath in the requested format.
func (f *Formatter) GenerateReport(summary *Summary, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatText:
		return f.generateTextReport(summary, outputPath)
	case ReportFormatJSON:
		return f.generateJSONReport(summary, outputPath)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// FormatText renders summary as the plain-text layout used by the CLI's
// stdout and by generateTextReport.
func (f *Formatter) FormatText(summary *Summary) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Floorplan run %s\n", summary.RunID)
	fmt.Fprintf(&buf, "Started:  %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "Duration: %s\n", summary.Duration)
	fmt.Fprintf(&buf, "Iterations: %d (first fit at %d, %d reheats)\n\n",
		summary.TotalIterations, summary.FirstFitIter, summary.Reheats)

	fmt.Fprintln(&buf, "Best cost breakdown:")
	c := summary.BestCost
	fmt.Fprintf(&buf, "  area/outline     %10.4f\n", c.AreaOutline)
	fmt.Fprintf(&buf, "  hpwl             %10.4f\n", c.HPWL)
	fmt.Fprintf(&buf, "  routing          %10.4f\n", c.Routing)
	fmt.Fprintf(&buf, "  tsv              %10.4f\n", c.TSV)
	fmt.Fprintf(&buf, "  alignment        %10.4f\n", c.Alignment)
	fmt.Fprintf(&buf, "  thermal          %10.4f\n", c.Thermal)
	fmt.Fprintf(&buf, "  voltage          %10.4f\n", c.Voltage)
	fmt.Fprintf(&buf, "  timing           %10.4f\n", c.Timing)
	fmt.Fprintf(&buf, "  thermal_leakage  %10.4f\n", c.ThermalLeakage)
	fmt.Fprintf(&buf, "  total            %10.4f\n\n", c.Total)

	layers := append([]LayerStats(nil), summary.Layers...)
	sort.Slice(layers, func(i, j int) bool { return layers[i].Layer < layers[j].Layer })
	fmt.Fprintln(&buf, "Per-layer stats:")
	for _, l := range layers {
		fmt.Fprintf(&buf, "  layer %d: util=%.1f%% peak=%.1fC avg=%.1fC tsv=%d hotspots=%d\n",
			l.Layer, l.Utilisation*100, l.PeakTemp, l.AvgTemp, l.TSVCount, l.HotspotCount)
	}

	fmt.Fprintf(&buf, "\nVoltage islands: %d modules, avg saving %.4f\n",
		summary.Voltage.ModuleCount, summary.Voltage.AvgPowerSaving)

	if len(summary.Errors) > 0 {
		fmt.Fprintln(&buf, "\nErrors:")
		for _, e := range summary.Errors {
			fmt.Fprintf(&buf, "  - %s\n", e)
		}
	}

	return buf.String()
}

func (f *Formatter) generateTextReport(summary *Summary, outputPath string) error {
	text := f.FormatText(summary)
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	f.logger.Info("text report generated", "path", outputPath)
	return nil
}

func (f *Formatter) generateJSONReport(summary *Summary, outputPath string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	f.logger.Info("JSON report generated", "path", outputPath)
	return nil
}
