package services

import (
	"math"

	"bikeshare-dashboard/models"
)

// DefaultCorrelationExclusions are the date and categorical columns dropped
// before correlating.
var DefaultCorrelationExclusions = []string{
	models.ColDate, models.ColSeason, models.ColYear, models.ColMonth, models.ColHoliday,
	models.ColWeekday, models.ColWorkingDay, models.ColWeatherCondition, models.ColYearMonth,
}

// CorrelationMatrix computes pairwise Pearson coefficients over the numeric
// columns of t that are not excluded, in source column order. Each pair uses
// the rows where both values are present. Pairs with fewer than two such
// rows or a zero-variance side are NaN, including the diagonal.
func CorrelationMatrix(t *models.Table, excluded []string) models.CorrelationMatrix {
	skip := make(map[string]bool, len(excluded))
	for _, c := range excluded {
		skip[c] = true
	}

	var (
		cols   []string
		series [][]float64
	)
	for _, c := range t.NumericColumns() {
		if skip[c] {
			continue
		}
		vals, _ := t.Numeric(c)
		cols = append(cols, c)
		series = append(series, vals)
	}

	n := len(cols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(series[i], series[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return models.CorrelationMatrix{Columns: cols, Values: values}
}

func pearson(x, y []float64) float64 {
	var (
		n          int
		sumX, sumY float64
	)
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		n++
		sumX += x[i]
		sumY += y[i]
	}
	if n < 2 {
		return math.NaN()
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var sxy, sxx, syy float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx, dy := x[i]-meanX, y[i]-meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	r := sxy / math.Sqrt(sxx*syy)
	// Rounding can push |r| marginally past 1.
	return math.Max(-1, math.Min(1, r))
}
