package risk

import (
	"fmt"
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// MetricQualityDetector flags implausible conversion rates and noisy
// control measurements.
type MetricQualityDetector struct{}

// NewMetricQualityDetector creates a metric-quality detector
func NewMetricQualityDetector() *MetricQualityDetector {
	return &MetricQualityDetector{}
}

// Name returns the detector tag
func (d *MetricQualityDetector) Name() intelligence.RiskType {
	return intelligence.RiskMetricQuality
}

// Detect flags any conversion rate above 90% or below 0.1% as implausible.
// Failing that, a control confidence interval wider than half the control
// rate is reported as high variance.
func (d *MetricQualityDetector) Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk {
	for _, r := range exp.Results {
		if r.SampleSize == 0 {
			continue
		}
		if r.ConversionRate > implausiblyHighRate || r.ConversionRate < implausiblyLowRate {
			return &intelligence.Risk{
				Type:  d.Name(),
				Level: intelligence.RiskMedium,
				Message: fmt.Sprintf("Conversion rate %.2f%% for variant %s looks implausible",
					r.ConversionRate*100, r.VariantID),
				Details:        "rates above 90% or below 0.1% usually indicate a tracking or definition problem",
				Recommendation: "Verify the metric definition and event instrumentation",
			}
		}
	}

	control, ok := exp.ControlResult()
	if ok && control.ConversionRate > 0 && control.CIWidth() > highVarianceCIRatio*control.ConversionRate {
		return &intelligence.Risk{
			Type:  d.Name(),
			Level: intelligence.RiskLow,
			Message: fmt.Sprintf("Control confidence interval spans %.0f%% of its own rate",
				control.CIWidth()/control.ConversionRate*100),
			Details:        "a wide control interval makes lift estimates unstable",
			Recommendation: "Collect more samples before reading too much into the lift",
		}
	}

	return nil
}
