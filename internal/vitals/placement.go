package vitals

// Placement locates a metric's percentile within its distribution bands for
// rendering: which band holds the pin and the horizontal offset within that
// band's segment, as a fraction of the band's upper bound.
type Placement struct {
	Band     int // 0-based index into the bands
	Offset   float64
	Category Category
}

// PlacePercentile finds the band containing percentile and computes
// offset = percentile / (band.max ?? band.min). Stored CLS bands are
// hundredths-scaled and are normalized before comparison. When the
// percentile falls outside every band, ok is false and no pin is rendered;
// callers must not clamp.
func PlacePercentile(metric string, percentile float64, bands []DistributionBand) (Placement, bool) {
	for i, band := range bands {
		min, max := scaleBand(metric, band.Min, band.Max)
		if percentile < min {
			continue
		}
		if max != nil && percentile > *max {
			continue
		}
		bound := min
		if max != nil {
			bound = *max
		}
		var offset float64
		if bound != 0 {
			offset = percentile / bound
		}
		return Placement{
			Band:     i,
			Offset:   offset,
			Category: CategorizeBand(metric, band.Min, band.Max),
		}, true
	}
	return Placement{}, false
}
