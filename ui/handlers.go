package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"golift/adapters/stats"
	"golift/domain/core"
	"golift/domain/experiment"
	"golift/internal/errors"
)

// sampleSizeRequest mirrors the planning form inputs
type sampleSizeRequest struct {
	BaselineRate      float64 `json:"baseline_rate"`
	RelativeMDE       float64 `json:"relative_mde"`
	Power             float64 `json:"power"`
	SignificanceLevel float64 `json:"significance_level"`
	DailyTraffic      int     `json:"daily_traffic"`
	AllocationPercent float64 `json:"allocation_percent"`
}

type sampleSizeResponse struct {
	stats.SampleSize
	EstimatedDays int `json:"estimated_days,omitempty"`
}

func (a *App) handleSampleSize(w http.ResponseWriter, r *http.Request) {
	var req sampleSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	power := req.Power
	if power == 0 {
		power = a.cfg.DefaultPower
	}
	significance := req.SignificanceLevel
	if significance == 0 {
		significance = a.cfg.DefaultSignificanceLevel
	}
	size, err := stats.CalculateSampleSize(req.BaselineRate, req.RelativeMDE, power, significance)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := sampleSizeResponse{SampleSize: size}
	if req.DailyTraffic > 0 {
		days, err := stats.EstimateDuration(size.Total, req.DailyTraffic, req.AllocationPercent)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		resp.EstimatedDays = days
	}
	a.writeJSON(w, http.StatusOK, resp)
}

// significanceRequest carries raw arm counts
type significanceRequest struct {
	ControlConversions   int     `json:"control_conversions"`
	ControlN             int     `json:"control_n"`
	TreatmentConversions int     `json:"treatment_conversions"`
	TreatmentN           int     `json:"treatment_n"`
	SignificanceLevel    float64 `json:"significance_level"`
	Simulations          int     `json:"simulations"`
	Seed                 *int64  `json:"seed"`
}

type significanceResponse struct {
	Frequentist stats.SignificanceResult `json:"frequentist"`
	Bayesian    stats.WinProbability     `json:"bayesian"`
}

func (a *App) handleSignificance(w http.ResponseWriter, r *http.Request) {
	var req significanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	significance := req.SignificanceLevel
	if significance == 0 {
		significance = a.cfg.DefaultSignificanceLevel
	}
	freq, err := stats.AnalyzeResults(req.ControlConversions, req.ControlN,
		req.TreatmentConversions, req.TreatmentN, significance)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	seed := a.cfg.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	simulations := req.Simulations
	if simulations == 0 {
		simulations = a.cfg.Simulations
	}
	bayes, err := a.bayes.WinProbability("api-significance", seed,
		req.ControlConversions, req.ControlN,
		req.TreatmentConversions, req.TreatmentN, simulations)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	a.writeJSON(w, http.StatusOK, significanceResponse{Frequentist: freq, Bayesian: bayes})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var exp experiment.Experiment
	if err := json.NewDecoder(r.Body).Decode(&exp); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid experiment payload: %w", err))
		return
	}
	a.writeJSON(w, http.StatusOK, a.intel.Analyze(&exp))
}

func (a *App) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	exps, err := a.portfolioExperiments(r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	agg, err := a.portfolio.Aggregate(r.Context(), exps)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, agg)
}

// portfolioExperiments loads from the repository when wired, otherwise
// serves the seeded demo scenarios.
func (a *App) portfolioExperiments(r *http.Request) ([]*experiment.Experiment, error) {
	if a.repo != nil {
		return a.repo.List(r.Context())
	}
	gen := a.demoGenerator()
	now := time.Now()
	var exps []*experiment.Experiment
	for _, scenario := range demoScenarios() {
		exp, err := gen.Build(scenario, now)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	return exps, nil
}

func (a *App) handleDemo(w http.ResponseWriter, r *http.Request) {
	exp, ok := a.buildDemo(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"experiment":   exp,
		"intelligence": a.intel.Analyze(exp),
	})
}

func (a *App) handleDemoReport(w http.ResponseWriter, r *http.Request) {
	exp, ok := a.buildDemo(w, r)
	if !ok {
		return
	}
	a.writeReport(w, exp)
}

func (a *App) buildDemo(w http.ResponseWriter, r *http.Request) (*experiment.Experiment, bool) {
	scenario := chi.URLParam(r, "scenario")
	exp, err := a.demoGenerator().Build(scenario, time.Now())
	if err != nil {
		a.writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return exp, true
}

func (a *App) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := a.repo.List(r.Context())
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, exps)
}

func (a *App) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, ok := a.loadExperiment(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"experiment":   exp,
		"intelligence": a.intel.Analyze(exp),
	})
}

func (a *App) handleExperimentReport(w http.ResponseWriter, r *http.Request) {
	exp, ok := a.loadExperiment(w, r)
	if !ok {
		return
	}
	a.writeReport(w, exp)
}

// createExperimentRequest mirrors the experiment setup form
type createExperimentRequest struct {
	Name       string                       `json:"name"`
	Hypothesis string                       `json:"hypothesis"`
	Variants   []experiment.Variant         `json:"variants"`
	Metrics    []experiment.Metric          `json:"metrics"`
	Stats      experiment.StatisticalConfig `json:"stats"`
}

func (a *App) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req createExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	exp, err := a.experiments.Create(r.Context(), req.Name, req.Hypothesis, req.Variants, req.Metrics, req.Stats)
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusCreated, exp)
}

func (a *App) handleStartExperiment(w http.ResponseWriter, r *http.Request) {
	a.applyLifecycle(w, r, a.experiments.Start)
}

func (a *App) handlePauseExperiment(w http.ResponseWriter, r *http.Request) {
	a.applyLifecycle(w, r, a.experiments.Pause)
}

func (a *App) handleArchiveExperiment(w http.ResponseWriter, r *http.Request) {
	a.applyLifecycle(w, r, a.experiments.Archive)
}

type completeExperimentRequest struct {
	Winner     core.VariantID `json:"winner"`
	Conclusion string         `json:"conclusion"`
}

func (a *App) handleCompleteExperiment(w http.ResponseWriter, r *http.Request) {
	var req completeExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	a.applyLifecycle(w, r, func(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
		return a.experiments.Complete(ctx, id, req.Winner, req.Conclusion)
	})
}

// importResultsRequest names the export file to read; an empty path falls
// back to the configured results file.
type importResultsRequest struct {
	Path string `json:"path"`
}

func (a *App) handleImportResults(w http.ResponseWriter, r *http.Request) {
	var req importResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	path := req.Path
	if path == "" {
		path = a.importCfg.ResultsFile
	}
	if path == "" {
		a.writeError(w, http.StatusBadRequest, core.NewValidationError("path", "no results file given and none configured"))
		return
	}
	a.applyLifecycle(w, r, func(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
		return a.experiments.ImportResults(ctx, id, path)
	})
}

func (a *App) applyLifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, core.ExperimentID) (*experiment.Experiment, error)) {
	id, err := core.ParseExperimentID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	exp, err := op(r.Context(), id)
	if err != nil {
		a.writeError(w, statusForError(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, exp)
}

func statusForError(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsTransitionError(err):
		return http.StatusConflict
	case core.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) loadExperiment(w http.ResponseWriter, r *http.Request) (*experiment.Experiment, bool) {
	id, err := core.ParseExperimentID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	exp, err := a.repo.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		a.writeError(w, status, err)
		return nil, false
	}
	return exp, true
}

func (a *App) writeReport(w http.ResponseWriter, exp *experiment.Experiment) {
	html := RenderHTMLReport(exp, a.intel.Analyze(exp))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	a.logger.Warn("request failed: %v", err)
	a.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.CodeOf(err),
	})
}
