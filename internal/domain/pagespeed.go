package domain

import "time"

// PagespeedTest is one measurement run for a URL on a device type.
// Rows are append-only: ingestion never updates or deletes a test.
type PagespeedTest struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id,string"`
	Url             string    `gorm:"index" json:"url" form:"url"`
	TestDate        time.Time `gorm:"index" json:"test_date" form:"test_date"`
	DeviceType      string    `gorm:"index" json:"device_type" form:"device_type"`
	OverallCategory string    `json:"overall_category" form:"overall_category"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName Specify table name
func (PagespeedTest) TableName() string {
	return "ps_test"
}

// PagespeedMetric is one named measurement belonging to a test.
// MetricName keeps the long source key (e.g. LARGEST_CONTENTFUL_PAINT_MS).
type PagespeedMetric struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id,string"`
	TestId     int64     `gorm:"index" json:"test_id" form:"test_id"`
	MetricName string    `gorm:"index" json:"metric_name" form:"metric_name"`
	Percentile float64   `json:"percentile" form:"percentile"`
	Category   string    `json:"category" form:"category"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (PagespeedMetric) TableName() string {
	return "ps_metric"
}

// PagespeedDistribution is one histogram band for a metric.
// MaxValue is nil only for the POOR band (unbounded above).
type PagespeedDistribution struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id,string"`
	MetricId   int64     `gorm:"index" json:"metric_id" form:"metric_id"`
	RangeType  string    `json:"range_type" form:"range_type"`
	MinValue   float64   `json:"min_value" form:"min_value"`
	MaxValue   *float64  `json:"max_value" form:"max_value"`
	Proportion float64   `json:"proportion" form:"proportion"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (PagespeedDistribution) TableName() string {
	return "ps_distribution"
}
