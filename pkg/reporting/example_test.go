package reporting_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go3dic/floorplanner/pkg/reporting"
)

// Example demonstrates constructing a Logger and emitting structured log
// lines. The lines go to io.Discard, so the example prints nothing.
func Example() {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelInfo,
		Format: reporting.LogFormatText,
		Output: io.Discard,
	})

	logger.Info("run starting", "layers", 2)
	logger.Info("first fitting layout found", "iteration", 4213)
	logger.Info("run complete", "iterations", 20000)

	// Output:
}

func TestStorageSummaryRoundTrip(t *testing.T) {
	logger := reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelError, Output: os.Stdout})
	storage := reporting.NewStorage(logger)

	dir := t.TempDir()
	path := dir + "/summary.json"

	summary := &reporting.Summary{
		RunID:           "run-1",
		StartTime:       time.Now().Add(-time.Minute),
		EndTime:         time.Now(),
		Duration:        "1m0s",
		TotalIterations: 1000,
		FirstFitIter:    42,
		BestCost:        reporting.CostBreakdown{Total: 1.5},
		Layers: []reporting.LayerStats{
			{Layer: 0, Utilisation: 0.7, PeakTemp: 85.2, AvgTemp: 60.1, TSVCount: 12},
		},
	}

	require.NoError(t, storage.SaveSummary(summary, path))
	loaded, err := storage.LoadSummary(path)
	require.NoError(t, err)
	require.Equal(t, summary.RunID, loaded.RunID)
	require.Equal(t, summary.TotalIterations, loaded.TotalIterations)
	require.Len(t, loaded.Layers, 1)
}

func TestFormatterText(t *testing.T) {
	logger := reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelError, Output: os.Stdout})
	f := reporting.NewFormatter(logger)

	summary := &reporting.Summary{
		RunID:           "run-2",
		TotalIterations: 500,
		BestCost:        reporting.CostBreakdown{Total: 2.25},
	}

	text := f.FormatText(summary)
	require.Contains(t, text, "run-2")
	require.Contains(t, text, "total")
}
