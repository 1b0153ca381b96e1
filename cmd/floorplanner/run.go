package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/go3dic/floorplanner/pkg/floorplan"
	"github.com/go3dic/floorplanner/pkg/reporting"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the floorplanning engine to completion",
	Long:  `Builds a problem (synthetic benchmark or JSON description) and runs simulated annealing to completion, writing the reporting outputs.`,
	RunE:  runFloorplan,
}

func init() {
	runCmd.Flags().String("problem", "", "path to a JSON problem description (default: built-in synthetic benchmark)")
	runCmd.Flags().Int("blocks", 20, "block count for the synthetic benchmark (ignored with --problem)")
	runCmd.Flags().Int("nets", 30, "net count for the synthetic benchmark (ignored with --problem)")
	runCmd.Flags().Int64("seed", 1, "PRNG seed for the initial layout and SA search")
	runCmd.Flags().String("format", "text", "results output format (text, json)")
	runCmd.Flags().Bool("solution", true, "write the .solution CBL round-trip file")
}

func runFloorplan(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := reporting.LogLevel(cfg.Logging.Level)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(cfg.Logging.Format),
		Output: os.Stdout,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", fmt.Sprintf("%v", r))
			err = fmt.Errorf("floorplanner run failed: %v", r)
		}
	}()

	logger.Info("floorplanner starting", "version", version)

	problemPath, _ := cmd.Flags().GetString("problem")
	blockCount, _ := cmd.Flags().GetInt("blocks")
	netCount, _ := cmd.Flags().GetInt("nets")
	seed, _ := cmd.Flags().GetInt64("seed")
	outputFormat, _ := cmd.Flags().GetString("format")
	writeSolution, _ := cmd.Flags().GetBool("solution")

	rng := rand.New(rand.NewSource(seed))

	var problem *floorplan.Problem
	if problemPath != "" {
		logger.Info("loading problem", "path", problemPath)
		problem, err = floorplan.LoadProblemJSON(problemPath, cfg)
		if err != nil {
			return fmt.Errorf("failed to load problem: %w", err)
		}
	} else {
		logger.Info("building synthetic benchmark", "blocks", blockCount, "nets", netCount)
		problem = floorplan.NewSyntheticProblem(cfg, blockCount, netCount, rng)
	}

	var metrics *reporting.Metrics
	if cfg.Reporting.MetricsAddr != "" {
		metrics = reporting.NewMetrics()
		go func() {
			if serveErr := metrics.Serve(cfg.Reporting.MetricsAddr); serveErr != nil {
				logger.Warn("metrics server stopped", "error", serveErr)
			}
		}()
		logger.Info("metrics listening", "addr", cfg.Reporting.MetricsAddr)
	}

	fp := floorplan.New(problem)
	layout := floorplan.NewRandomLayout(problem, rng)

	start := time.Now()
	result, summary := fp.Run(layout, seed)
	summary.StartTime = start
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(start).String()

	if metrics != nil {
		metrics.Iterations.Add(float64(result.Iterations))
		metrics.BestCost.Set(result.BestCost)
		if len(summary.Layers) > 0 {
			metrics.PeakTemp.Set(summary.Layers[0].PeakTemp)
		}
	}

	if err := os.MkdirAll(cfg.Reporting.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	storage := reporting.NewStorage(logger)
	if writeSolution {
		solutionPath := filepath.Join(cfg.Reporting.OutputDir, "best.solution")
		if err := storage.SaveSolution(result.Best, solutionPath); err != nil {
			logger.Warn("failed to save solution", "error", err)
		}
	}
	if err := storage.SaveSummary(summary, filepath.Join(cfg.Reporting.OutputDir, "summary.json")); err != nil {
		logger.Warn("failed to save summary", "error", err)
	}

	formatter := reporting.NewFormatter(logger)
	reportPath := filepath.Join(cfg.Reporting.OutputDir, "report."+outputFormat)
	if err := formatter.GenerateReport(summary, reporting.ReportFormat(outputFormat), reportPath); err != nil {
		logger.Warn("failed to generate report", "error", err)
	}

	progress := reporting.NewProgressReporter(reporting.OutputFormat(outputFormat), logger)
	progress.ReportRunComplete(summary)

	logger.Info("floorplanner run complete", "iterations", result.Iterations, "best_cost", result.BestCost)
	return nil
}
