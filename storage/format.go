package storage

import (
	"math"
	"strconv"

	"bikeshare-dashboard/models"
)

// exportColumns returns the columns written by exporters: the source
// columns, plus rental_category once the table has been categorized.
func exportColumns(t *models.Table) []string {
	cols := append([]string(nil), t.Columns...)
	if len(cols) == 0 {
		cols = append(cols, models.RequiredColumns...)
	}
	for _, r := range t.Records {
		if r.Category != models.CategoryNone {
			return append(cols, models.ColRentalCategory)
		}
	}
	return cols
}

// cellText formats one record field the way the source CSV encodes it.
func cellText(r *models.DailyRecord, column string) string {
	switch column {
	case models.ColDate:
		return r.Date.Format("2006-01-02")
	case models.ColCount:
		return strconv.Itoa(r.Count)
	case models.ColWeekday:
		return strconv.Itoa(int(r.Weekday))
	case models.ColWorkingDay:
		return flagText(r.WorkingDay)
	case models.ColWeatherCondition:
		return strconv.Itoa(int(r.Weather))
	case models.ColSeason:
		return strconv.Itoa(int(r.Season))
	case models.ColYear:
		return strconv.Itoa(r.Year)
	case models.ColMonth:
		return strconv.Itoa(int(r.Month))
	case models.ColHoliday:
		return flagText(r.Holiday)
	case models.ColYearMonth:
		return r.YearMonth
	case models.ColRentalCategory:
		return r.Category.String()
	}
	v, ok := r.Covariates[column]
	if !ok || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flagText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
