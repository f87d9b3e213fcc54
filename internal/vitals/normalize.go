package vitals

import (
	"time"

	"github.com/araddon/dateparse"
)

// Range types for the three distribution bands, in positional order.
// The upstream feed reports bands ascending by min, so the first band is
// always GOOD and the last POOR.
const (
	RangeGood             = "GOOD"
	RangeNeedsImprovement = "NEEDS_IMPROVEMENT"
	RangePoor             = "POOR"
)

// RangeTypes maps band position to range type.
var RangeTypes = [3]string{RangeGood, RangeNeedsImprovement, RangePoor}

// TestPlan is the insert tuple for one measurement run.
type TestPlan struct {
	Url             string
	TestDate        time.Time
	OverallCategory string
}

// MetricPlan is the insert tuple for one metric, before its owning test id
// is known.
type MetricPlan struct {
	MetricName string
	Percentile float64
	Category   string
}

// Plan is the pure output of normalization: one test tuple, the metric
// tuples in report order, and the raw bands per metric name. Distribution
// tuples cannot be materialized yet because they need metric ids.
type Plan struct {
	Test          TestPlan
	Metrics       []MetricPlan
	Distributions map[string][]DistributionBand
}

// BandsFor returns the three distribution bands for a metric name. Any
// other band count (0, 1, 2, 4...) yields ok=false: partial distributions
// are dropped, never stored malformed.
func (p *Plan) BandsFor(metricName string) ([]DistributionBand, bool) {
	bands, ok := p.Distributions[metricName]
	if !ok || len(bands) != 3 {
		return nil, false
	}
	return bands, true
}

// Normalize converts one raw snapshot into an insert plan. It is a pure
// transformation: unknown metric keys are ignored, absent metrics produce no
// tuples, and a snapshot without a page identifier or analysis timestamp
// fails with MalformedSnapshotError.
func Normalize(snap *Snapshot) (*Plan, error) {
	if snap.ID == "" {
		return nil, &MalformedSnapshotError{Field: "id"}
	}
	if snap.AnalysisUTCTimestamp == "" {
		return nil, &MalformedSnapshotError{Field: "analysisUTCTimestamp"}
	}
	testDate, err := dateparse.ParseAny(snap.AnalysisUTCTimestamp)
	if err != nil {
		return nil, &MalformedSnapshotError{Field: "analysisUTCTimestamp"}
	}

	plan := &Plan{
		Test: TestPlan{
			Url:             snap.ID,
			TestDate:        testDate.UTC(),
			OverallCategory: snap.LoadingExperience.OverallCategory,
		},
		Distributions: make(map[string][]DistributionBand),
	}

	for _, key := range MetricKeys {
		data, ok := snap.LoadingExperience.Metrics[key]
		if !ok {
			continue
		}
		plan.Metrics = append(plan.Metrics, MetricPlan{
			MetricName: key,
			Percentile: data.Percentile,
			Category:   data.Category,
		})
		plan.Distributions[key] = data.Distributions
	}

	return plan, nil
}
