package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/vitalscope/vitalscope/internal/vitals"
)

func TestPersistFullSnapshot(t *testing.T) {
	tests, metrics, distributions, writer := newFakes()

	plan, err := vitals.Normalize(fullSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	result, err := writer.Persist(context.Background(), plan, "mobile")
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	if !result.Success {
		t.Error("expected Success")
	}
	if result.MetricsCount != 5 {
		t.Errorf("MetricsCount = %d, want 5", result.MetricsCount)
	}
	if result.DistributionsCount != 15 {
		t.Errorf("DistributionsCount = %d, want 15", result.DistributionsCount)
	}
	if len(tests.rows) != 1 || len(metrics.rows) != 5 || len(distributions.rows) != 15 {
		t.Fatalf("rows = %d/%d/%d, want 1/5/15",
			len(tests.rows), len(metrics.rows), len(distributions.rows))
	}

	testRow := tests.rows[0]
	if testRow.ID != result.TestId {
		t.Errorf("TestId = %d, want %d", result.TestId, testRow.ID)
	}
	if testRow.DeviceType != "mobile" {
		t.Errorf("DeviceType = %s", testRow.DeviceType)
	}

	// Every metric row carries the test id; every distribution row carries
	// a real metric id.
	metricIds := make(map[int64]string)
	for _, m := range metrics.rows {
		if m.TestId != testRow.ID {
			t.Errorf("metric %s TestId = %d, want %d", m.MetricName, m.TestId, testRow.ID)
		}
		metricIds[m.ID] = m.MetricName
	}
	perMetric := make(map[int64][]string)
	for _, d := range distributions.rows {
		if _, ok := metricIds[d.MetricId]; !ok {
			t.Errorf("distribution references unknown metric id %d", d.MetricId)
		}
		perMetric[d.MetricId] = append(perMetric[d.MetricId], d.RangeType)
	}
	for id, ranges := range perMetric {
		if len(ranges) != 3 {
			t.Errorf("metric %d has %d bands, want 3", id, len(ranges))
			continue
		}
		for i, want := range vitals.RangeTypes {
			if ranges[i] != want {
				t.Errorf("metric %d band %d = %s, want %s", id, i, ranges[i], want)
			}
		}
	}

	// The POOR band is stored unbounded even when the source reported a max.
	for _, d := range distributions.rows {
		switch d.RangeType {
		case vitals.RangePoor:
			if d.MaxValue != nil {
				t.Errorf("POOR band MaxValue = %v, want nil", *d.MaxValue)
			}
		default:
			if d.MaxValue == nil {
				t.Errorf("%s band MaxValue = nil, want bounded", d.RangeType)
			}
		}
	}
}

func TestPersistPartialBandsWriteNothing(t *testing.T) {
	for _, count := range []int{0, 1, 2, 4} {
		snap := fullSnapshot()
		for _, key := range vitals.MetricKeys {
			data := snap.LoadingExperience.Metrics[key]
			data.Distributions = data.Distributions[:0]
			for i := 0; i < count; i++ {
				data.Distributions = append(data.Distributions,
					vitals.DistributionBand{Min: float64(i), Proportion: 0.1})
			}
			snap.LoadingExperience.Metrics[key] = data
		}
		plan, err := vitals.Normalize(snap)
		if err != nil {
			t.Fatal(err)
		}

		_, metrics, distributions, writer := newFakes()
		result, err := writer.Persist(context.Background(), plan, "mobile")
		if err != nil {
			t.Fatalf("band count %d: Persist() error = %v", count, err)
		}
		if result.DistributionsCount != 0 || len(distributions.rows) != 0 {
			t.Errorf("band count %d: wrote %d distributions, want 0", count, len(distributions.rows))
		}
		if len(metrics.rows) != 5 {
			t.Errorf("band count %d: wrote %d metrics, want 5", count, len(metrics.rows))
		}
	}
}

func TestPersistStageFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(*fakeTestRepo, *fakeMetricRepo, *fakeDistributionRepo)
		wantStage string
		// rows already written when the failing stage is reached
		wantTests   int
		wantMetrics int
	}{
		{
			name:      "test stage",
			setup:     func(t *fakeTestRepo, _ *fakeMetricRepo, _ *fakeDistributionRepo) { t.err = boom },
			wantStage: vitals.StageTests,
		},
		{
			name:      "metric stage",
			setup:     func(_ *fakeTestRepo, m *fakeMetricRepo, _ *fakeDistributionRepo) { m.err = boom },
			wantStage: vitals.StageMetrics,
			wantTests: 1,
		},
		{
			name:        "distribution stage",
			setup:       func(_ *fakeTestRepo, _ *fakeMetricRepo, d *fakeDistributionRepo) { d.err = boom },
			wantStage:   vitals.StageDistributions,
			wantTests:   1,
			wantMetrics: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testRepo, metricRepo, distRepo, writer := newFakes()
			tt.setup(testRepo, metricRepo, distRepo)

			plan, err := vitals.Normalize(fullSnapshot())
			if err != nil {
				t.Fatal(err)
			}
			_, err = writer.Persist(context.Background(), plan, "mobile")

			var persistence *vitals.PersistenceError
			if !errors.As(err, &persistence) {
				t.Fatalf("Persist() error = %v, want PersistenceError", err)
			}
			if persistence.Stage != tt.wantStage {
				t.Errorf("Stage = %s, want %s", persistence.Stage, tt.wantStage)
			}
			if !errors.Is(err, boom) {
				t.Error("expected the cause to be preserved")
			}
			// No rollback: earlier stages stay written.
			if len(testRepo.rows) != tt.wantTests {
				t.Errorf("tests written = %d, want %d", len(testRepo.rows), tt.wantTests)
			}
			if len(metricRepo.rows) != tt.wantMetrics {
				t.Errorf("metrics written = %d, want %d", len(metricRepo.rows), tt.wantMetrics)
			}
		})
	}
}
