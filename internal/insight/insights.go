package insight

import (
	"fmt"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// Thresholds for insight generation
const (
	negativeImprovementFloor = -0.05
	progressHalfway          = 0.5
	revenueOpportunityFloor  = 100.0 // projected incremental revenue in dollars
)

// Generate produces human-readable observations from one experiment
// snapshot. Insights carry no ordering contract beyond emission order.
func Generate(exp *experiment.Experiment) []intelligence.Insight {
	insights := make([]intelligence.Insight, 0, 4)

	control, hasControl := exp.Control()

	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		r, ok := exp.ResultFor(v.ID)
		if !ok || !r.IsSignificant {
			continue
		}
		switch {
		case r.Improvement > 0:
			insights = append(insights, intelligence.Insight{
				Kind:  intelligence.InsightPositive,
				Title: "Significant improvement detected",
				Message: fmt.Sprintf("%s is outperforming the control by %.1f%% with statistical significance",
					v.Name, r.Improvement*100),
			})
		case r.Improvement < negativeImprovementFloor:
			insights = append(insights, intelligence.Insight{
				Kind:  intelligence.InsightNegative,
				Title: "Significant regression detected",
				Message: fmt.Sprintf("%s is underperforming the control by %.1f%% with statistical significance",
					v.Name, -r.Improvement*100),
			})
		}
	}

	progress := exp.Progress()
	if progress >= 1 {
		insights = append(insights, intelligence.Insight{
			Kind:    intelligence.InsightNeutral,
			Title:   "Planned sample reached",
			Message: fmt.Sprintf("Collected %d of %d required samples", exp.TotalSamples(), exp.RequiredSampleSize),
		})
	} else if progress >= progressHalfway {
		insights = append(insights, intelligence.Insight{
			Kind:    intelligence.InsightNeutral,
			Title:   "Halfway to planned sample",
			Message: fmt.Sprintf("Collected %d of %d required samples (%.0f%%)", exp.TotalSamples(), exp.RequiredSampleSize, progress*100),
		})
	}

	if hasControl {
		if gain, name, ok := bestRevenueGain(exp, control); ok && gain > revenueOpportunityFloor {
			insights = append(insights, intelligence.Insight{
				Kind:    intelligence.InsightPositive,
				Title:   "Revenue opportunity",
				Message: fmt.Sprintf("%s projects $%.0f incremental revenue over the control", name, gain),
			})
		}
	}

	return insights
}

// bestRevenueGain projects incremental revenue per non-control variant as
// the per-user revenue lift over control applied to the variant's sample.
func bestRevenueGain(exp *experiment.Experiment, control experiment.Variant) (float64, string, bool) {
	controlResult, ok := exp.ResultFor(control.ID)
	if !ok {
		return 0, "", false
	}

	best := 0.0
	bestName := ""
	found := false
	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		r, ok := exp.ResultFor(v.ID)
		if !ok {
			continue
		}
		gain := (r.AvgRevenue - controlResult.AvgRevenue) * float64(r.SampleSize)
		if !found || gain > best {
			best = gain
			bestName = v.Name
			found = true
		}
	}
	return best, bestName, found
}
