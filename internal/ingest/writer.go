package ingest

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vitalscope/vitalscope/internal/domain"
	"github.com/vitalscope/vitalscope/internal/vitals"
)

// Result reports what one ingestion wrote.
type Result struct {
	Success            bool  `json:"success"`
	TestId             int64 `json:"test_id,string"`
	MetricsCount       int   `json:"metrics_count"`
	DistributionsCount int   `json:"distributions_count"`
}

// Writer persists a normalization plan in strict parent-before-child order:
// test, then metrics tagged with the test id, then distributions tagged with
// their metric ids. Each stage either fully succeeds or the whole operation
// fails with a stage-tagged PersistenceError. No rollback is attempted:
// earlier stages stay written, and a retry creates a brand-new test rather
// than upserting, so a failed ingestion is simply not-yet-ingested.
type Writer struct {
	tests         TestRepository
	metrics       MetricRepository
	distributions DistributionRepository
}

// NewWriter creates a writer over the three table repositories.
func NewWriter(tests TestRepository, metrics MetricRepository, distributions DistributionRepository) *Writer {
	return &Writer{tests: tests, metrics: metrics, distributions: distributions}
}

// Persist runs the three write stages for one plan and device type.
func (w *Writer) Persist(ctx context.Context, plan *vitals.Plan, deviceType string) (*Result, error) {
	// Stage 1: test row, id assigned by the store.
	test := &domain.PagespeedTest{
		Url:             plan.Test.Url,
		TestDate:        plan.Test.TestDate,
		DeviceType:      deviceType,
		OverallCategory: plan.Test.OverallCategory,
	}
	if err := w.tests.Create(ctx, test); err != nil {
		return nil, &vitals.PersistenceError{Stage: vitals.StageTests, Err: errors.Wrap(err, "insert test")}
	}

	// Stage 2: metric rows in one batch, tagged with the test id.
	metricRows := make([]*domain.PagespeedMetric, 0, len(plan.Metrics))
	for _, m := range plan.Metrics {
		metricRows = append(metricRows, &domain.PagespeedMetric{
			TestId:     test.ID,
			MetricName: m.MetricName,
			Percentile: m.Percentile,
			Category:   m.Category,
		})
	}
	if err := w.metrics.CreateBatch(ctx, metricRows); err != nil {
		return nil, &vitals.PersistenceError{Stage: vitals.StageMetrics, Err: errors.Wrap(err, "insert metrics")}
	}

	// Stage 3: distribution rows, materialized now that metric ids exist.
	// Metrics with any band count other than three contribute no rows.
	var distributionRows []*domain.PagespeedDistribution
	for _, m := range metricRows {
		bands, ok := plan.BandsFor(m.MetricName)
		if !ok {
			continue
		}
		for i, band := range bands {
			row := &domain.PagespeedDistribution{
				MetricId:   m.ID,
				RangeType:  vitals.RangeTypes[i],
				MinValue:   band.Min,
				MaxValue:   band.Max,
				Proportion: band.Proportion,
			}
			// The top band is unbounded above regardless of what the
			// source reported.
			if i == len(bands)-1 {
				row.MaxValue = nil
			}
			distributionRows = append(distributionRows, row)
		}
	}
	if err := w.distributions.CreateBatch(ctx, distributionRows); err != nil {
		return nil, &vitals.PersistenceError{Stage: vitals.StageDistributions, Err: errors.Wrap(err, "insert distributions")}
	}

	return &Result{
		Success:            true,
		TestId:             test.ID,
		MetricsCount:       len(metricRows),
		DistributionsCount: len(distributionRows),
	}, nil
}
