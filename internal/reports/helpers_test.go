package reports

import (
	"context"
	"sort"

	"github.com/vitalscope/vitalscope/internal/domain"
)

type memTestRepo struct {
	rows []domain.PagespeedTest
}

func (r *memTestRepo) Create(_ context.Context, test *domain.PagespeedTest) error {
	test.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, *test)
	return nil
}

func (r *memTestRepo) ListByUrlDevice(_ context.Context, url, deviceType string) ([]domain.PagespeedTest, error) {
	var out []domain.PagespeedTest
	for _, t := range r.rows {
		if t.Url == url && t.DeviceType == deviceType {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestDate.Before(out[j].TestDate) })
	return out, nil
}

func (r *memTestRepo) List(_ context.Context) ([]domain.PagespeedTest, error) {
	out := append([]domain.PagespeedTest(nil), r.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].TestDate.After(out[j].TestDate) })
	return out, nil
}

type memMetricRepo struct {
	rows []domain.PagespeedMetric
}

func (r *memMetricRepo) CreateBatch(_ context.Context, metrics []*domain.PagespeedMetric) error {
	for _, m := range metrics {
		m.ID = int64(len(r.rows) + 1)
		r.rows = append(r.rows, *m)
	}
	return nil
}

func (r *memMetricRepo) ListByTestIds(_ context.Context, testIds []int64) ([]domain.PagespeedMetric, error) {
	ids := make(map[int64]bool, len(testIds))
	for _, id := range testIds {
		ids[id] = true
	}
	var out []domain.PagespeedMetric
	for _, m := range r.rows {
		if ids[m.TestId] {
			out = append(out, m)
		}
	}
	return out, nil
}

type memDistributionRepo struct {
	rows []domain.PagespeedDistribution
}

func (r *memDistributionRepo) CreateBatch(_ context.Context, distributions []*domain.PagespeedDistribution) error {
	for _, d := range distributions {
		d.ID = int64(len(r.rows) + 1)
		r.rows = append(r.rows, *d)
	}
	return nil
}

func (r *memDistributionRepo) ListByMetricId(_ context.Context, metricId int64) ([]domain.PagespeedDistribution, error) {
	var out []domain.PagespeedDistribution
	for _, d := range r.rows {
		if d.MetricId == metricId {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinValue < out[j].MinValue })
	return out, nil
}

func ptr(v float64) *float64 { return &v }
