package vitals

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DistributionBand is one histogram bucket of a metric. Max is absent for
// the open-ended top bucket.
type DistributionBand struct {
	Min        float64  `json:"min"`
	Max        *float64 `json:"max,omitempty"`
	Proportion float64  `json:"proportion"`
}

// MetricData is one metric entry of a loading experience.
type MetricData struct {
	Percentile    float64            `json:"percentile"`
	Distributions []DistributionBand `json:"distributions"`
	Category      string             `json:"category"`
}

// LoadingExperience carries the field-data section of a snapshot.
type LoadingExperience struct {
	ID              string                `json:"id"`
	Metrics         map[string]MetricData `json:"metrics"`
	OverallCategory string                `json:"overall_category"`
	InitialUrl      string                `json:"initial_url"`
}

// Snapshot is one raw performance-API response for a URL and device type.
type Snapshot struct {
	ID                   string            `json:"id"`
	LoadingExperience    LoadingExperience `json:"loadingExperience"`
	AnalysisUTCTimestamp string            `json:"analysisUTCTimestamp"`
}

// ParseSnapshot decodes a raw API response body.
func ParseSnapshot(body []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
