package reports

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/vitalscope/vitalscope/internal/vitals"
)

// csvPoint flattens an aggregated point into fixed CSV columns.
type csvPoint struct {
	Label   string  `csv:"label"`
	Date    string  `csv:"date"`
	Count   int     `csv:"count"`
	TestIds string  `csv:"test_ids"`
	LCP     float64 `csv:"lcp"`
	CLS     float64 `csv:"cls"`
	FCP     float64 `csv:"fcp"`
	TTFB    float64 `csv:"ttfb"`
	INP     float64 `csv:"inp"`
}

// WriteCSV exports an aggregation series, one row per point. Values stay in
// source units (milliseconds, raw CLS).
func WriteCSV(w io.Writer, points []vitals.AggregatedPoint) error {
	rows := make([]csvPoint, 0, len(points))
	for _, p := range points {
		ids := make([]string, 0, len(p.TestIds))
		for _, id := range p.TestIds {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		rows = append(rows, csvPoint{
			Label:   p.Label,
			Date:    p.Date.Format("2006-01-02"),
			Count:   p.Count,
			TestIds: strings.Join(ids, ";"),
			LCP:     p.Values["LCP"],
			CLS:     p.Values["CLS"],
			FCP:     p.Values["FCP"],
			TTFB:    p.Values["TTFB"],
			INP:     p.Values["INP"],
		})
	}
	return gocsv.Marshal(&rows, w)
}
