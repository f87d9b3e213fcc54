package vitals

import (
	"errors"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func sampleBands() []DistributionBand {
	return []DistributionBand{
		{Min: 0, Max: f(2500), Proportion: 0.7},
		{Min: 2500, Max: f(4000), Proportion: 0.2},
		{Min: 4000, Proportion: 0.1},
	}
}

func sampleSnapshot() *Snapshot {
	metrics := make(map[string]MetricData)
	for _, key := range MetricKeys {
		metrics[key] = MetricData{
			Percentile:    1200,
			Category:      "FAST",
			Distributions: sampleBands(),
		}
	}
	return &Snapshot{
		ID:                   "https://example.com/",
		AnalysisUTCTimestamp: "2025-03-05T10:30:00.000Z",
		LoadingExperience: LoadingExperience{
			ID:              "https://example.com/",
			Metrics:         metrics,
			OverallCategory: "FAST",
		},
	}
}

func TestNormalizeFullSnapshot(t *testing.T) {
	plan, err := Normalize(sampleSnapshot())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if plan.Test.Url != "https://example.com/" {
		t.Errorf("Test.Url = %s", plan.Test.Url)
	}
	want := time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC)
	if !plan.Test.TestDate.Equal(want) {
		t.Errorf("Test.TestDate = %v, want %v", plan.Test.TestDate, want)
	}
	if plan.Test.OverallCategory != "FAST" {
		t.Errorf("Test.OverallCategory = %s", plan.Test.OverallCategory)
	}
	if len(plan.Metrics) != 5 {
		t.Fatalf("len(Metrics) = %d, want 5", len(plan.Metrics))
	}
	// Metric tuples come out in report order with the long source keys.
	for i, key := range MetricKeys {
		if plan.Metrics[i].MetricName != key {
			t.Errorf("Metrics[%d].MetricName = %s, want %s", i, plan.Metrics[i].MetricName, key)
		}
	}
	for _, key := range MetricKeys {
		bands, ok := plan.BandsFor(key)
		if !ok || len(bands) != 3 {
			t.Errorf("BandsFor(%s) = %v, %v; want 3 bands", key, bands, ok)
		}
	}
}

func TestNormalizeIgnoresUnknownKeys(t *testing.T) {
	snap := sampleSnapshot()
	snap.LoadingExperience.Metrics["FIRST_INPUT_DELAY_MS"] = MetricData{Percentile: 10}

	plan, err := Normalize(snap)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(plan.Metrics) != 5 {
		t.Errorf("len(Metrics) = %d, want 5", len(plan.Metrics))
	}
}

func TestNormalizeAbsentMetricProducesNoTuple(t *testing.T) {
	snap := sampleSnapshot()
	delete(snap.LoadingExperience.Metrics, KeyINP)
	delete(snap.LoadingExperience.Metrics, KeyTTFB)

	plan, err := Normalize(snap)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(plan.Metrics) != 3 {
		t.Errorf("len(Metrics) = %d, want 3", len(plan.Metrics))
	}
	if _, ok := plan.BandsFor(KeyINP); ok {
		t.Error("expected no bands for absent metric")
	}
}

func TestNormalizePartialBandsDropped(t *testing.T) {
	for _, count := range []int{0, 1, 2, 4} {
		snap := sampleSnapshot()
		data := snap.LoadingExperience.Metrics[KeyLCP]
		bands := make([]DistributionBand, count)
		for i := range bands {
			bands[i] = DistributionBand{Min: float64(i * 1000), Proportion: 0.1}
		}
		data.Distributions = bands
		snap.LoadingExperience.Metrics[KeyLCP] = data

		plan, err := Normalize(snap)
		if err != nil {
			t.Fatalf("band count %d: Normalize() error = %v", count, err)
		}
		if _, ok := plan.BandsFor(KeyLCP); ok {
			t.Errorf("band count %d: expected bands to be dropped", count)
		}
		// The metric tuple itself still exists.
		if len(plan.Metrics) != 5 {
			t.Errorf("band count %d: len(Metrics) = %d, want 5", count, len(plan.Metrics))
		}
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing id", func(s *Snapshot) { s.ID = "" }},
		{"missing timestamp", func(s *Snapshot) { s.AnalysisUTCTimestamp = "" }},
		{"unparseable timestamp", func(s *Snapshot) { s.AnalysisUTCTimestamp = "not-a-date" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			tt.mutate(snap)
			_, err := Normalize(snap)
			var malformed *MalformedSnapshotError
			if !errors.As(err, &malformed) {
				t.Errorf("Normalize() error = %v, want MalformedSnapshotError", err)
			}
		})
	}
}

func TestParseSnapshot(t *testing.T) {
	body := []byte(`{
		"id": "https://example.com/",
		"analysisUTCTimestamp": "2025-03-05T10:30:00.000Z",
		"loadingExperience": {
			"overall_category": "AVERAGE",
			"metrics": {
				"LARGEST_CONTENTFUL_PAINT_MS": {
					"percentile": 2800,
					"category": "AVERAGE",
					"distributions": [
						{"min": 0, "max": 2500, "proportion": 0.6},
						{"min": 2500, "max": 4000, "proportion": 0.3},
						{"min": 4000, "proportion": 0.1}
					]
				}
			}
		}
	}`)

	snap, err := ParseSnapshot(body)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	lcp, ok := snap.LoadingExperience.Metrics[KeyLCP]
	if !ok {
		t.Fatal("expected LCP metric")
	}
	if lcp.Percentile != 2800 {
		t.Errorf("Percentile = %v, want 2800", lcp.Percentile)
	}
	if lcp.Distributions[2].Max != nil {
		t.Error("expected open-ended third band")
	}
	if *lcp.Distributions[1].Max != 4000 {
		t.Errorf("second band max = %v, want 4000", *lcp.Distributions[1].Max)
	}
}
