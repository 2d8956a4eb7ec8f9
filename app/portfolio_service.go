package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// Rollup thresholds for portfolio-level recommendations
const (
	lowWinRateThreshold    = 0.3
	lowWinRateMinCompleted = 3
	peekingCountThreshold  = 2
	concurrencyThreshold   = 5
	maxCommonRisks         = 5
	maxRecentWinners       = 5
	analysisParallelism    = 8
)

// PortfolioService aggregates intelligence across experiments
type PortfolioService struct {
	intel *IntelligenceService
}

// NewPortfolioService creates a portfolio rollup service
func NewPortfolioService(intel *IntelligenceService) *PortfolioService {
	return &PortfolioService{intel: intel}
}

// Aggregate builds the cross-experiment rollup. Running experiments are
// analyzed in parallel; each analysis takes an immutable snapshot so the
// fan-out is safe.
func (s *PortfolioService) Aggregate(ctx context.Context, exps []*experiment.Experiment) (intelligence.AggregateInsights, error) {
	agg := intelligence.AggregateInsights{TotalExperiments: len(exps)}

	var running, completed []*experiment.Experiment
	for _, exp := range exps {
		switch exp.Status {
		case experiment.StatusRunning:
			running = append(running, exp)
		case experiment.StatusCompleted:
			completed = append(completed, exp)
		case experiment.StatusDraft:
			agg.Drafts++
		}
	}
	agg.Running = len(running)
	agg.Completed = len(completed)

	s.rollupCompleted(completed, &agg)
	if err := s.rollupRunning(ctx, running, &agg); err != nil {
		return intelligence.AggregateInsights{}, err
	}

	agg.Recommendations = s.recommendations(agg)
	return agg, nil
}

// rollupCompleted computes win rate, average effect size and the recent
// winner list. The effect size averages every positive significant
// improvement across completed experiments, declared winner or not.
// Winners keep input order; no recency sort is applied.
func (s *PortfolioService) rollupCompleted(completed []*experiment.Experiment, agg *intelligence.AggregateInsights) {
	winners := 0
	var improvements []float64
	for _, exp := range completed {
		for _, r := range exp.Results {
			if r.IsSignificant && r.Improvement > 0 {
				improvements = append(improvements, r.Improvement)
			}
		}

		if exp.Winner.IsEmpty() {
			continue
		}
		winners++

		improvement := 0.0
		if r, ok := exp.ResultFor(exp.Winner); ok {
			improvement = r.Improvement
		}

		if len(agg.RecentWinners) < maxRecentWinners {
			winnerName := ""
			if v, ok := exp.VariantByID(exp.Winner); ok {
				winnerName = v.Name
			}
			agg.RecentWinners = append(agg.RecentWinners, intelligence.WinnerSummary{
				ExperimentID: exp.ID,
				Name:         exp.Name,
				WinnerID:     exp.Winner,
				WinnerName:   winnerName,
				Improvement:  improvement,
			})
		}
	}

	if len(completed) > 0 {
		agg.WinRate = float64(winners) / float64(len(completed))
	}
	if len(improvements) > 0 {
		if mean, err := stats.Mean(improvements); err == nil {
			agg.AverageEffectSize = mean
		}
	}
}

// rollupRunning analyzes running experiments concurrently and builds the
// risk histogram and median progress.
func (s *PortfolioService) rollupRunning(ctx context.Context, running []*experiment.Experiment, agg *intelligence.AggregateInsights) error {
	if len(running) == 0 {
		return nil
	}

	var mu sync.Mutex
	riskCounts := make(map[intelligence.RiskType]int)
	progresses := make([]float64, 0, len(running))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(analysisParallelism)
	for _, exp := range running {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bundle := s.intel.Analyze(exp)

			mu.Lock()
			defer mu.Unlock()
			for _, r := range bundle.Risks {
				riskCounts[r.Type]++
			}
			progresses = append(progresses, exp.Progress())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	agg.CommonRisks = topRisks(riskCounts, maxCommonRisks)
	if median, err := stats.Median(progresses); err == nil {
		agg.MedianProgress = median
	}
	return nil
}

// recommendations emits portfolio-level guidance from rollup thresholds
func (s *PortfolioService) recommendations(agg intelligence.AggregateInsights) []string {
	var recs []string
	if agg.Completed >= lowWinRateMinCompleted && agg.WinRate < lowWinRateThreshold {
		recs = append(recs, fmt.Sprintf(
			"Win rate is %.0f%%; consider bolder hypotheses or larger minimum detectable effects", agg.WinRate*100))
	}
	if peeking := riskCount(agg.CommonRisks, intelligence.RiskPeeking); peeking > peekingCountThreshold {
		recs = append(recs, fmt.Sprintf(
			"%d running experiments show peeking risk; agree on fixed decision points before launch", peeking))
	}
	if agg.Running > concurrencyThreshold {
		recs = append(recs, fmt.Sprintf(
			"%d experiments are running concurrently; watch for overlapping audiences and interaction effects", agg.Running))
	}
	return recs
}

func topRisks(counts map[intelligence.RiskType]int, limit int) []intelligence.RiskCount {
	out := make([]intelligence.RiskCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, intelligence.RiskCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func riskCount(counts []intelligence.RiskCount, t intelligence.RiskType) int {
	for _, rc := range counts {
		if rc.Type == t {
			return rc.Count
		}
	}
	return 0
}
