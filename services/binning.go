package services

import (
	"bikeshare-dashboard/models"
)

const rentalBinCount = 3

// RentalBins computes three equal-width intervals over the min/max count of
// t. Edges are relative to t, so a different filtered range gives different
// edges. ok is false for an empty table.
func RentalBins(t *models.Table) (models.RentalBins, bool) {
	if t.IsEmpty() {
		return models.RentalBins{}, false
	}
	lo, hi := t.Records[0].Count, t.Records[0].Count
	for _, r := range t.Records[1:] {
		if r.Count < lo {
			lo = r.Count
		}
		if r.Count > hi {
			hi = r.Count
		}
	}

	width := float64(hi-lo) / rentalBinCount
	bins := models.RentalBins{Min: lo, Max: hi, Width: width}
	for i := range bins.Edges {
		bins.Edges[i] = float64(lo) + width*float64(i)
	}
	bins.Edges[rentalBinCount] = float64(hi)
	return bins, true
}

// CategoryFor places count into a bin. Intervals are [min, min+w),
// [min+w, min+2w) and [min+2w, max]. When every count is equal the single
// value maps to Low. Counts outside [min, max] are clamped to the end bins.
func CategoryFor(bins models.RentalBins, count int) models.RentalCategory {
	span := bins.Max - bins.Min
	if span <= 0 {
		return models.CategoryLow
	}
	// Integer arithmetic keeps boundary values exact: c == min+k*w exactly
	// when 3*(c-min) == k*span.
	idx := rentalBinCount * (count - bins.Min) / span
	if count < bins.Min {
		idx = 0
	}
	if idx >= rentalBinCount {
		idx = rentalBinCount - 1
	}
	return models.RentalCategories()[idx]
}

// Categorize returns a copy of t with Category set on every record using
// bins computed over t itself. An empty table yields an empty table.
func Categorize(t *models.Table) *models.Table {
	bins, ok := RentalBins(t)
	if !ok {
		return t.WithRecords(make([]models.DailyRecord, 0))
	}
	out := make([]models.DailyRecord, len(t.Records))
	for i, r := range t.Records {
		r.Category = CategoryFor(bins, r.Count)
		out[i] = r
	}
	return t.WithRecords(out)
}
