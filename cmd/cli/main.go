package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"golift/adapters/excel"
	"golift/adapters/rng"
	"golift/adapters/stats"
	"golift/app"
	"golift/domain/experiment"
	"golift/internal"
	"golift/internal/testkit"
	"golift/ui"
)

func main() {
	_ = godotenv.Load()
	logger := internal.NewDefaultLogger()

	scenario := flag.String("scenario", testkit.ScenarioClearWinner,
		"synthetic scenario: "+strings.Join(testkit.Scenarios(), ", "))
	seed := flag.Int64("seed", 42, "random seed for synthetic data and simulations")
	format := flag.String("format", "json", "output format: json or markdown")
	simulations := flag.Int("simulations", stats.DefaultSimulations, "Bayesian simulation count")
	results := flag.String("results", os.Getenv("RESULTS_FILE"),
		"analyze a results export (csv or xlsx) instead of a synthetic scenario")
	flag.Parse()

	var exp *experiment.Experiment
	var err error
	if *results != "" {
		exp, err = importedExperiment(*results)
	} else {
		exp, err = testkit.NewGenerator(*seed).Build(*scenario, time.Now())
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	intel := app.NewIntelligenceService().Analyze(exp)

	if *format == "markdown" {
		fmt.Print(ui.BuildMarkdownReport(exp, intel))
		return
	}

	out := map[string]interface{}{
		"experiment":   exp,
		"intelligence": intel,
	}
	if bayes, ok := bayesianFor(exp, *seed, *simulations); ok {
		out["bayesian"] = bayes
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to encode output: %v", err)
		os.Exit(1)
	}
}

// importedExperiment builds an ad-hoc experiment around a results export,
// named after the file it came from.
func importedExperiment(path string) (*experiment.Experiment, error) {
	rows, err := excel.NewResultsReader().Import(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return app.ExperimentFromRows(name, rows)
}

// bayesianFor runs the win-probability simulation for two-arm experiments
// with results attached.
func bayesianFor(exp *experiment.Experiment, seed int64, simulations int) (stats.WinProbability, bool) {
	control, ok := exp.ControlResult()
	if !ok {
		return stats.WinProbability{}, false
	}

	var treatment experiment.VariantResult
	found := false
	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		if r, ok := exp.ResultFor(v.ID); ok {
			treatment = r
			found = true
			break
		}
	}
	if !found {
		return stats.WinProbability{}, false
	}

	engine := stats.NewBayesianEngine(rng.NewSeededSource())
	result, err := engine.WinProbability("cli-"+exp.ID.String(), seed,
		control.Conversions, control.SampleSize,
		treatment.Conversions, treatment.SampleSize, simulations)
	if err != nil {
		return stats.WinProbability{}, false
	}
	return result, true
}
