package vitals

// Core Web Vitals metric keys as reported by the upstream API.
const (
	KeyLCP  = "LARGEST_CONTENTFUL_PAINT_MS"
	KeyCLS  = "CUMULATIVE_LAYOUT_SHIFT_SCORE"
	KeyFCP  = "FIRST_CONTENTFUL_PAINT_MS"
	KeyTTFB = "EXPERIMENTAL_TIME_TO_FIRST_BYTE"
	KeyINP  = "INTERACTION_TO_NEXT_PAINT"
)

// MetricKeys lists the recognized source keys in report order.
// Keys outside this list are ignored by the normalizer.
var MetricKeys = []string{KeyLCP, KeyCLS, KeyFCP, KeyTTFB, KeyINP}

// shortNames maps source keys to the short names used in summaries and charts.
var shortNames = map[string]string{
	KeyLCP:  "LCP",
	KeyCLS:  "CLS",
	KeyFCP:  "FCP",
	KeyTTFB: "TTFB",
	KeyINP:  "INP",
}

// ShortName returns the chart name for a source metric key, or the key
// itself when it is not a recognized Core Web Vital.
func ShortName(key string) string {
	if s, ok := shortNames[key]; ok {
		return s
	}
	return key
}

// Threshold holds the fixed category boundaries for one metric.
// Good is inclusive: value <= Good classifies as Good.
type Threshold struct {
	Good             float64
	NeedsImprovement float64
}

// thresholds is process-wide read-only configuration. CLS boundaries are in
// natural 0-1 scale, all others in milliseconds.
var thresholds = map[string]Threshold{
	"LCP":  {Good: 2500, NeedsImprovement: 4000},
	"CLS":  {Good: 0.1, NeedsImprovement: 0.25},
	"FCP":  {Good: 1800, NeedsImprovement: 3000},
	"TTFB": {Good: 800, NeedsImprovement: 1800},
	"INP":  {Good: 200, NeedsImprovement: 500},
}

// ThresholdFor returns the threshold pair for a short metric name.
func ThresholdFor(metric string) (Threshold, bool) {
	t, ok := thresholds[metric]
	return t, ok
}

// Category color keys consumed by the rendering layer.
const (
	ColorGood        = "#4ADE80"
	ColorImprovement = "#FACC15"
	ColorPoor        = "#F87171"
	ColorUnknown     = "#cbd5e1"
)
