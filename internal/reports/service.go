package reports

import (
	"context"
	"time"

	"github.com/vitalscope/vitalscope/internal/domain"
	"github.com/vitalscope/vitalscope/internal/ingest"
	"github.com/vitalscope/vitalscope/internal/vitals"
)

// SummaryRow is one test with its metrics keyed by short name, the shape
// the dashboard consumes.
type SummaryRow struct {
	Id              int64                         `json:"id,string"`
	Url             string                        `json:"url"`
	TestDate        time.Time                     `json:"test_date"`
	DeviceType      string                        `json:"device_type"`
	OverallCategory string                        `json:"overall_category"`
	Metrics         map[string]vitals.MetricValue `json:"metrics"`
}

// BandView is one distribution band annotated for rendering.
type BandView struct {
	RangeType  string          `json:"range_type"`
	MinValue   float64         `json:"min_value"`
	MaxValue   *float64        `json:"max_value"`
	Proportion float64         `json:"proportion"`
	Category   vitals.Category `json:"category"`
}

// MetricAnnotation carries everything the rendering layer needs for one
// metric of one test: category label, color key, band boundaries, and the
// percentile pin placement when one exists.
type MetricAnnotation struct {
	MetricName string            `json:"metric_name"`
	ShortName  string            `json:"short_name"`
	Percentile float64           `json:"percentile"`
	Category   vitals.Category   `json:"category"`
	Bands      []BandView        `json:"bands"`
	Placement  *vitals.Placement `json:"placement,omitempty"`
}

// Service reads persisted tests and shapes them for charts and summaries.
type Service struct {
	tests         ingest.TestRepository
	metrics       ingest.MetricRepository
	distributions ingest.DistributionRepository
}

func NewService(tests ingest.TestRepository, metrics ingest.MetricRepository, distributions ingest.DistributionRepository) *Service {
	return &Service{tests: tests, metrics: metrics, distributions: distributions}
}

// Summary returns every test newest-first with its metrics folded in.
func (s *Service) Summary(ctx context.Context) ([]SummaryRow, error) {
	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildRows(ctx, tests)
}

// Reports loads the chronologically sorted tests-with-metrics series for
// one (url, device) pair.
func (s *Service) Reports(ctx context.Context, url, deviceType string) ([]vitals.Report, error) {
	tests, err := s.tests.ListByUrlDevice(ctx, url, deviceType)
	if err != nil {
		return nil, err
	}
	rows, err := s.buildRows(ctx, tests)
	if err != nil {
		return nil, err
	}
	reports := make([]vitals.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, vitals.Report{
			TestId:          row.Id,
			Url:             row.Url,
			TestDate:        row.TestDate,
			DeviceType:      row.DeviceType,
			OverallCategory: row.OverallCategory,
			Metrics:         row.Metrics,
		})
	}
	return reports, nil
}

// Aggregate produces the daily or weekly chart series for one (url, device)
// pair. An empty filtered set yields an empty series.
func (s *Service) Aggregate(ctx context.Context, url, deviceType string, mode vitals.Mode) ([]vitals.AggregatedPoint, error) {
	reports, err := s.Reports(ctx, url, deviceType)
	if err != nil {
		return nil, err
	}
	return vitals.Aggregate(reports, url, deviceType, mode), nil
}

// Annotate builds the per-metric rendering annotations for one test.
func (s *Service) Annotate(ctx context.Context, testId int64) ([]MetricAnnotation, error) {
	metrics, err := s.metrics.ListByTestIds(ctx, []int64{testId})
	if err != nil {
		return nil, err
	}

	annotations := make([]MetricAnnotation, 0, len(metrics))
	for _, m := range metrics {
		short := vitals.ShortName(m.MetricName)
		rows, err := s.distributions.ListByMetricId(ctx, m.ID)
		if err != nil {
			return nil, err
		}

		bands := make([]vitals.DistributionBand, 0, len(rows))
		views := make([]BandView, 0, len(rows))
		for _, d := range rows {
			bands = append(bands, vitals.DistributionBand{
				Min:        d.MinValue,
				Max:        d.MaxValue,
				Proportion: d.Proportion,
			})
			views = append(views, BandView{
				RangeType:  d.RangeType,
				MinValue:   d.MinValue,
				MaxValue:   d.MaxValue,
				Proportion: d.Proportion,
				Category:   vitals.CategorizeBand(short, d.MinValue, d.MaxValue),
			})
		}

		annotation := MetricAnnotation{
			MetricName: m.MetricName,
			ShortName:  short,
			Percentile: m.Percentile,
			Category:   vitals.Categorize(short, m.Percentile),
			Bands:      views,
		}
		if placement, ok := vitals.PlacePercentile(short, m.Percentile, bands); ok {
			annotation.Placement = &placement
		}
		annotations = append(annotations, annotation)
	}
	return annotations, nil
}

func (s *Service) buildRows(ctx context.Context, tests []domain.PagespeedTest) ([]SummaryRow, error) {
	if len(tests) == 0 {
		return []SummaryRow{}, nil
	}
	ids := make([]int64, 0, len(tests))
	for _, t := range tests {
		ids = append(ids, t.ID)
	}
	metrics, err := s.metrics.ListByTestIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byTest := make(map[int64]map[string]vitals.MetricValue, len(tests))
	for _, m := range metrics {
		if byTest[m.TestId] == nil {
			byTest[m.TestId] = make(map[string]vitals.MetricValue)
		}
		byTest[m.TestId][vitals.ShortName(m.MetricName)] = vitals.MetricValue{
			Value:    m.Percentile,
			Category: m.Category,
		}
	}

	rows := make([]SummaryRow, 0, len(tests))
	for _, t := range tests {
		values := byTest[t.ID]
		if values == nil {
			values = map[string]vitals.MetricValue{}
		}
		rows = append(rows, SummaryRow{
			Id:              t.ID,
			Url:             t.Url,
			TestDate:        t.TestDate,
			DeviceType:      t.DeviceType,
			OverallCategory: t.OverallCategory,
			Metrics:         values,
		})
	}
	return rows, nil
}
