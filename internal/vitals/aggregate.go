package vitals

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Chart window limits.
const (
	LimitDays   = 14
	LimitWeeks  = 6
	DaysPerWeek = 7
)

// Mode selects the aggregation shape.
type Mode string

const (
	ModeDaily  Mode = "daily"
	ModeWeekly Mode = "weekly"
)

// MetricValue is one metric's reported value and source category on a test.
type MetricValue struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// Report is one persisted test with its metrics, keyed by short metric name.
type Report struct {
	TestId          int64                  `json:"id"`
	Url             string                 `json:"url"`
	TestDate        time.Time              `json:"test_date"`
	DeviceType      string                 `json:"device_type"`
	OverallCategory string                 `json:"overall_category"`
	Metrics         map[string]MetricValue `json:"metrics"`
}

// AggregatedPoint is one chart sample: a single test in daily mode, or the
// mean of all tests sharing a week-of-month bucket in weekly mode.
type AggregatedPoint struct {
	Label      string             `json:"label"`
	Date       time.Time          `json:"date"`
	Count      int                `json:"count"`
	TestIds    []int64            `json:"test_ids"`
	Values     map[string]float64 `json:"values"`
	Categories map[string]string  `json:"categories,omitempty"`
}

// WeekOfMonth computes the 1-based calendar week a date falls in within its
// month: ceil((dayOfMonth + weekdayOfFirstOfMonth - 1) / 7) with Monday=1
// and Sunday=7. Week boundaries reset at each month, so a "Week 1" may span
// fewer than seven days.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	dow := int(first.Weekday())
	if dow == 0 {
		dow = 7
	}
	return (t.Day() + dow - 1 + 6) / 7
}

// Aggregate filters reports by exact url and device type match, sorts them
// ascending by test date, and produces the chart series for the requested
// mode. Daily mode keeps the most recent LimitDays tests verbatim; weekly
// mode averages each (year, month, week-of-month) bucket and keeps the most
// recent LimitWeeks buckets. An empty filtered set yields an empty series.
func Aggregate(reports []Report, url, deviceType string, mode Mode) []AggregatedPoint {
	filtered := make([]Report, 0, len(reports))
	for _, r := range reports {
		if r.Url == url && r.DeviceType == deviceType {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].TestDate.Before(filtered[j].TestDate)
	})

	if mode == ModeWeekly {
		return aggregateWeekly(filtered)
	}
	return aggregateDaily(filtered)
}

func aggregateDaily(reports []Report) []AggregatedPoint {
	if len(reports) > LimitDays {
		reports = reports[len(reports)-LimitDays:]
	}
	points := make([]AggregatedPoint, 0, len(reports))
	for _, r := range reports {
		values := make(map[string]float64, len(r.Metrics))
		categories := make(map[string]string, len(r.Metrics))
		for name, m := range r.Metrics {
			values[name] = m.Value
			categories[name] = m.Category
		}
		points = append(points, AggregatedPoint{
			Label:      r.TestDate.Format("Jan 2"),
			Date:       r.TestDate,
			Count:      1,
			TestIds:    []int64{r.TestId},
			Values:     values,
			Categories: categories,
		})
	}
	return points
}

type weekBucket struct {
	label   string
	date    time.Time
	testIds []int64
	samples map[string][]float64
}

func aggregateWeekly(reports []Report) []AggregatedPoint {
	buckets := make(map[string]*weekBucket)
	var order []string

	for _, r := range reports {
		week := WeekOfMonth(r.TestDate)
		key := fmt.Sprintf("%s-W%d", r.TestDate.Format("2006-01"), week)
		b, ok := buckets[key]
		if !ok {
			b = &weekBucket{
				label:   fmt.Sprintf("Week %d %s", week, r.TestDate.Month().String()),
				date:    r.TestDate,
				samples: make(map[string][]float64),
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.testIds = append(b.testIds, r.TestId)
		for name, m := range r.Metrics {
			b.samples[name] = append(b.samples[name], m.Value)
		}
	}

	if len(order) > LimitWeeks {
		order = order[len(order)-LimitWeeks:]
	}

	points := make([]AggregatedPoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		values := make(map[string]float64, len(b.samples))
		for name, samples := range b.samples {
			mean, err := stats.Mean(samples)
			if err != nil {
				continue
			}
			values[name] = mean
		}
		points = append(points, AggregatedPoint{
			Label:   b.label,
			Date:    b.date,
			Count:   len(b.testIds),
			TestIds: b.testIds,
			Values:  values,
		})
	}
	return points
}
