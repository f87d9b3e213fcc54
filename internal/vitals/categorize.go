package vitals

// Category is the rating of a value or band against the threshold table.
type Category struct {
	Name  string
	Color string
}

var (
	CategoryGood        = Category{Name: "Good", Color: ColorGood}
	CategoryImprovement = Category{Name: "Improvement", Color: ColorImprovement}
	CategoryPoor        = Category{Name: "Poor", Color: ColorPoor}
	CategoryUnknown     = Category{Name: "Unknown", Color: ColorUnknown}
)

// Categorize rates a percentile value for a short metric name. Boundaries
// are inclusive on the lower category: value == Good still rates Good.
// CLS percentiles arrive in natural 0-1 scale and compare directly.
func Categorize(metric string, value float64) Category {
	t, ok := ThresholdFor(metric)
	if !ok {
		return CategoryUnknown
	}
	if value <= t.Good {
		return CategoryGood
	}
	if value <= t.NeedsImprovement {
		return CategoryImprovement
	}
	return CategoryPoor
}

// CategorizeBand rates a stored distribution band. Stored CLS band bounds
// are hundredths-scaled integers and are divided by 100 before comparison.
// A band rates Good only when its max is bounded and fully below the Good
// threshold; a band straddling the Good boundary rates Improvement.
func CategorizeBand(metric string, min float64, max *float64) Category {
	t, ok := ThresholdFor(metric)
	if !ok {
		return CategoryUnknown
	}
	min, max = scaleBand(metric, min, max)
	if max != nil && *max <= t.Good {
		return CategoryGood
	}
	if min >= t.NeedsImprovement {
		return CategoryPoor
	}
	return CategoryImprovement
}

// scaleBand converts stored CLS band bounds from hundredths to 0-1 scale.
func scaleBand(metric string, min float64, max *float64) (float64, *float64) {
	if metric != "CLS" {
		return min, max
	}
	min = min / 100
	if max != nil {
		scaled := *max / 100
		max = &scaled
	}
	return min, max
}
