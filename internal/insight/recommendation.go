package insight

import (
	"fmt"
	"math"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// Recommendation rule thresholds. Rules are evaluated strictly in priority
// order; the first match wins.
const (
	winnerImprovementFloor = 0.05
	winnerProgressFloor    = 0.5
	loserImprovementFloor  = -0.10
	loserProgressFloor     = 0.3
	extendImprovementFloor = 0.02
	assumedDailySamples    = 500.0
)

// Recommend turns results and detected risks into a single recommended
// action with a confidence score.
func Recommend(exp *experiment.Experiment, risks []intelligence.Risk) intelligence.Recommendation {
	// Rule 1: nothing measured yet
	if len(exp.Results) == 0 {
		return intelligence.Recommendation{
			Action:     intelligence.ActionContinue,
			Confidence: 0.9,
			Reason:     "No results collected yet",
		}
	}

	// Rule 2: critical risks short-circuit everything, including winners
	if criticals := messagesAtLevel(risks, intelligence.RiskCritical); len(criticals) > 0 {
		return intelligence.Recommendation{
			Action:     intelligence.ActionInvestigate,
			Confidence: 0.9,
			Reason:     "Critical data-quality risk detected",
			Details:    criticals,
		}
	}

	progress := exp.Progress()
	winner, winnerFound := bestSignificantVariant(exp)

	// Rule 3: confident winner
	if winnerFound && winner.result.Improvement > winnerImprovementFloor &&
		progress >= winnerProgressFloor && !hasLevel(risks, intelligence.RiskHigh) {
		return intelligence.Recommendation{
			Action:     intelligence.ActionStopWinner,
			Confidence: clamp01(0.95 - float64(len(risks))*0.1),
			Reason: fmt.Sprintf("%s shows a significant %.1f%% improvement at %.0f%% of the planned sample",
				winner.variant.Name, winner.result.Improvement*100, progress*100),
		}
	}

	// Rule 4: confident loser
	if loser, found := worstSignificantVariant(exp); found &&
		loser.result.Improvement < loserImprovementFloor && progress >= loserProgressFloor {
		return intelligence.Recommendation{
			Action:     intelligence.ActionStopNoEffect,
			Confidence: 0.85,
			Reason: fmt.Sprintf("%s shows a significant %.1f%% regression; the change is hurting",
				loser.variant.Name, loser.result.Improvement*100),
		}
	}

	if progress >= 1 && !anySignificant(exp) {
		// Rule 5: trend without significance
		if best, found := bestImprovement(exp); found && best > extendImprovementFloor {
			return intelligence.Recommendation{
				Action:     intelligence.ActionExtend,
				Confidence: 0.7,
				Reason: fmt.Sprintf("Planned sample reached with a promising %.1f%% trend short of significance",
					best*100),
			}
		}
		// Rule 6: flat at full sample
		return intelligence.Recommendation{
			Action:     intelligence.ActionStopNoEffect,
			Confidence: 0.8,
			Reason:     "Planned sample reached with no meaningful difference between variants",
		}
	}

	// Rule 7: default
	details := []string(nil)
	if remaining := exp.RequiredSampleSize - exp.TotalSamples(); remaining > 0 {
		eta := int(math.Ceil(float64(remaining) / assumedDailySamples))
		details = append(details, fmt.Sprintf("approximately %d days remaining at %d samples/day",
			eta, int(assumedDailySamples)))
	}
	return intelligence.Recommendation{
		Action:     intelligence.ActionContinue,
		Confidence: clamp01(0.9 - float64(len(risks))*0.1),
		Reason:     fmt.Sprintf("Experiment at %.0f%% of planned sample; keep collecting", progress*100),
		Details:    details,
	}
}

type variantOutcome struct {
	variant experiment.Variant
	result  experiment.VariantResult
}

func bestSignificantVariant(exp *experiment.Experiment) (variantOutcome, bool) {
	best := variantOutcome{}
	found := false
	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		r, ok := exp.ResultFor(v.ID)
		if !ok || !r.IsSignificant {
			continue
		}
		if !found || r.Improvement > best.result.Improvement {
			best = variantOutcome{variant: v, result: r}
			found = true
		}
	}
	return best, found
}

func worstSignificantVariant(exp *experiment.Experiment) (variantOutcome, bool) {
	worst := variantOutcome{}
	found := false
	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		r, ok := exp.ResultFor(v.ID)
		if !ok || !r.IsSignificant {
			continue
		}
		if !found || r.Improvement < worst.result.Improvement {
			worst = variantOutcome{variant: v, result: r}
			found = true
		}
	}
	return worst, found
}

func bestImprovement(exp *experiment.Experiment) (float64, bool) {
	best := 0.0
	found := false
	for _, v := range exp.Variants {
		if v.IsControl {
			continue
		}
		r, ok := exp.ResultFor(v.ID)
		if !ok {
			continue
		}
		if !found || r.Improvement > best {
			best = r.Improvement
			found = true
		}
	}
	return best, found
}

func anySignificant(exp *experiment.Experiment) bool {
	for _, r := range exp.Results {
		if r.IsSignificant {
			return true
		}
	}
	return false
}

func hasLevel(risks []intelligence.Risk, level intelligence.RiskLevel) bool {
	for _, r := range risks {
		if r.Level == level {
			return true
		}
	}
	return false
}

func messagesAtLevel(risks []intelligence.Risk, level intelligence.RiskLevel) []string {
	var msgs []string
	for _, r := range risks {
		if r.Level == level {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
