package intelligence

import (
	"golift/domain/core"
)

// ============================================================================
// RISKS
// ============================================================================

// RiskType tags the detector that produced a risk
type RiskType string

const (
	RiskSampleRatioMismatch RiskType = "sample_ratio_mismatch"
	RiskNoveltyEffect       RiskType = "novelty_effect"
	RiskPeeking             RiskType = "peeking"
	RiskUnderpowered        RiskType = "underpowered"
	RiskMetricQuality       RiskType = "metric_quality"
)

// RiskLevel grades risk severity
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Penalty returns the health-score deduction for a severity level
func (l RiskLevel) Penalty() int {
	switch l {
	case RiskCritical:
		return 40
	case RiskHigh:
		return 25
	case RiskMedium:
		return 15
	case RiskLow:
		return 5
	default:
		return 0
	}
}

// Risk is one detector finding for one experiment snapshot.
// Ephemeral: recomputed on every analysis call, never persisted.
type Risk struct {
	Type           RiskType  `json:"type"`
	Level          RiskLevel `json:"level"`
	Message        string    `json:"message"`
	Details        string    `json:"details,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// ============================================================================
// INSIGHTS AND RECOMMENDATION
// ============================================================================

// InsightKind classifies insight sentiment
type InsightKind string

const (
	InsightPositive InsightKind = "positive"
	InsightNegative InsightKind = "negative"
	InsightNeutral  InsightKind = "neutral"
)

// Insight is a human-readable observation about one experiment
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Action is the recommended next step for an experiment
type Action string

const (
	ActionContinue     Action = "continue"
	ActionStopWinner   Action = "stop_winner"
	ActionStopNoEffect Action = "stop_no_effect"
	ActionExtend       Action = "extend"
	ActionInvestigate  Action = "investigate"
)

// Recommendation is the single recommended action with confidence
type Recommendation struct {
	Action     Action   `json:"action"`
	Confidence float64  `json:"confidence"` // 0-1
	Reason     string   `json:"reason"`
	Details    []string `json:"details,omitempty"`
}

// ============================================================================
// ANALYSIS BUNDLES
// ============================================================================

// DataQuality flags summarize snapshot trustworthiness.
// SampleRatioOK is true when no sample ratio mismatch was detected.
type DataQuality struct {
	SampleRatioOK    bool `json:"sample_ratio_ok"`
	SufficientSample bool `json:"sufficient_sample"`
	ResultsPresent   bool `json:"results_present"`
}

// Intelligence is the per-analysis output bundle. Purely derived; it has no
// lifecycle beyond the call that produced it.
type Intelligence struct {
	ExperimentID   core.ExperimentID `json:"experiment_id"`
	Risks          []Risk            `json:"risks"`
	Insights       []Insight         `json:"insights"`
	Recommendation Recommendation    `json:"recommendation"`
	HealthScore    int               `json:"health_score"` // 0-100
	DataQuality    DataQuality       `json:"data_quality"`
}

// RiskCount is one bucket of the cross-experiment risk histogram
type RiskCount struct {
	Type  RiskType `json:"type"`
	Count int      `json:"count"`
}

// WinnerSummary references a completed experiment with a declared winner
type WinnerSummary struct {
	ExperimentID core.ExperimentID `json:"experiment_id"`
	Name         string            `json:"name"`
	WinnerID     core.VariantID    `json:"winner_id"`
	WinnerName   string            `json:"winner_name"`
	Improvement  float64           `json:"improvement"`
}

// AggregateInsights is the cross-experiment rollup
type AggregateInsights struct {
	TotalExperiments  int             `json:"total_experiments"`
	Running           int             `json:"running"`
	Completed         int             `json:"completed"`
	Drafts            int             `json:"drafts"`
	WinRate           float64         `json:"win_rate"`            // completed-with-winner / completed
	AverageEffectSize float64         `json:"average_effect_size"` // mean positive significant improvement
	MedianProgress    float64         `json:"median_progress"`     // across running experiments
	CommonRisks       []RiskCount     `json:"common_risks"`        // top 5, running experiments only
	RecentWinners     []WinnerSummary `json:"recent_winners"`      // first 5 in input order
	Recommendations   []string        `json:"recommendations"`
}
