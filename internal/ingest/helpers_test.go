package ingest

import (
	"context"
	"time"

	"github.com/vitalscope/vitalscope/internal/domain"
	"github.com/vitalscope/vitalscope/internal/vitals"
)

// In-memory repository fakes. Ids are assigned on insert, mirroring the
// store's autoincrement behavior.

type fakeTestRepo struct {
	rows   []*domain.PagespeedTest
	nextId int64
	err    error
}

func (r *fakeTestRepo) Create(_ context.Context, test *domain.PagespeedTest) error {
	if r.err != nil {
		return r.err
	}
	r.nextId++
	test.ID = r.nextId
	copied := *test
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeTestRepo) ListByUrlDevice(_ context.Context, url, deviceType string) ([]domain.PagespeedTest, error) {
	var out []domain.PagespeedTest
	for _, t := range r.rows {
		if t.Url == url && t.DeviceType == deviceType {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTestRepo) List(_ context.Context) ([]domain.PagespeedTest, error) {
	var out []domain.PagespeedTest
	for _, t := range r.rows {
		out = append(out, *t)
	}
	return out, nil
}

type fakeMetricRepo struct {
	rows   []*domain.PagespeedMetric
	nextId int64
	err    error
}

func (r *fakeMetricRepo) CreateBatch(_ context.Context, metrics []*domain.PagespeedMetric) error {
	if r.err != nil {
		return r.err
	}
	for _, m := range metrics {
		r.nextId++
		m.ID = r.nextId
		copied := *m
		r.rows = append(r.rows, &copied)
	}
	return nil
}

func (r *fakeMetricRepo) ListByTestIds(_ context.Context, testIds []int64) ([]domain.PagespeedMetric, error) {
	ids := make(map[int64]bool, len(testIds))
	for _, id := range testIds {
		ids[id] = true
	}
	var out []domain.PagespeedMetric
	for _, m := range r.rows {
		if ids[m.TestId] {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeDistributionRepo struct {
	rows   []*domain.PagespeedDistribution
	nextId int64
	err    error
}

func (r *fakeDistributionRepo) CreateBatch(_ context.Context, distributions []*domain.PagespeedDistribution) error {
	if r.err != nil {
		return r.err
	}
	for _, d := range distributions {
		r.nextId++
		d.ID = r.nextId
		copied := *d
		r.rows = append(r.rows, &copied)
	}
	return nil
}

func (r *fakeDistributionRepo) ListByMetricId(_ context.Context, metricId int64) ([]domain.PagespeedDistribution, error) {
	var out []domain.PagespeedDistribution
	for _, d := range r.rows {
		if d.MetricId == metricId {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	snap *vitals.Snapshot
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _, _ string) (*vitals.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func ptr(v float64) *float64 { return &v }

func threeBands() []vitals.DistributionBand {
	return []vitals.DistributionBand{
		{Min: 0, Max: ptr(2500), Proportion: 0.7},
		{Min: 2500, Max: ptr(4000), Proportion: 0.2},
		{Min: 4000, Max: ptr(99999), Proportion: 0.1},
	}
}

func fullSnapshot() *vitals.Snapshot {
	metrics := make(map[string]vitals.MetricData)
	for _, key := range vitals.MetricKeys {
		metrics[key] = vitals.MetricData{
			Percentile:    1500,
			Category:      "FAST",
			Distributions: threeBands(),
		}
	}
	return &vitals.Snapshot{
		ID:                   "https://example.com/",
		AnalysisUTCTimestamp: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
		LoadingExperience: vitals.LoadingExperience{
			Metrics:         metrics,
			OverallCategory: "FAST",
		},
	}
}

func newFakes() (*fakeTestRepo, *fakeMetricRepo, *fakeDistributionRepo, *Writer) {
	tests := &fakeTestRepo{}
	metrics := &fakeMetricRepo{}
	distributions := &fakeDistributionRepo{}
	return tests, metrics, distributions, NewWriter(tests, metrics, distributions)
}
