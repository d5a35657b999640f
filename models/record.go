package models

import (
	"math"
	"time"
)

// Column names of the source table.
const (
	ColDate             = "date"
	ColCount            = "count"
	ColWeekday          = "weekday"
	ColWorkingDay       = "workingday"
	ColWeatherCondition = "weather_condition"
	ColSeason           = "season"
	ColYear             = "year"
	ColMonth            = "month"
	ColHoliday          = "holiday"
	ColYearMonth        = "year_month"
	ColRentalCategory   = "rental_category"
)

// RequiredColumns must be present in every source.
var RequiredColumns = []string{
	ColDate, ColCount, ColWeekday, ColWorkingDay, ColWeatherCondition,
	ColSeason, ColYear, ColMonth, ColHoliday, ColYearMonth,
}

// DailyRecord is one row of the daily rentals table.
type DailyRecord struct {
	Date       time.Time
	Count      int
	Weekday    Weekday
	WorkingDay bool
	Weather    WeatherCondition
	Season     Season
	Year       int
	Month      time.Month
	Holiday    bool
	YearMonth  string

	// Covariates holds the remaining numeric columns (temperature,
	// humidity, ...). Missing cells are NaN.
	Covariates map[string]float64

	// Category is derived by binning and is CategoryNone until then.
	Category RentalCategory
}

// Table is an ordered sequence of records plus the source column order.
type Table struct {
	Columns []string
	Records []DailyRecord
}

// NormalizeDate truncates t to midnight UTC of its calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of records; safe on a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// IsEmpty reports whether the table has no records.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// WithRecords returns a table sharing t's columns and holding recs.
func (t *Table) WithRecords(recs []DailyRecord) *Table {
	var cols []string
	if t != nil {
		cols = t.Columns
	}
	return &Table{Columns: cols, Records: recs}
}

// Numeric returns the values of a numeric column, or false when the column
// is unknown or not numeric (date, year_month).
func (t *Table) Numeric(column string) ([]float64, bool) {
	get, ok := numericAccessor(t, column)
	if !ok {
		return nil, false
	}
	out := make([]float64, t.Len())
	for i := range t.Records {
		out[i] = get(&t.Records[i])
	}
	return out, true
}

// NumericColumns lists the numeric columns in source order.
func (t *Table) NumericColumns() []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, c := range t.Columns {
		if _, ok := numericAccessor(t, c); ok {
			out = append(out, c)
		}
	}
	return out
}

func numericAccessor(t *Table, column string) (func(*DailyRecord) float64, bool) {
	switch column {
	case ColCount:
		return func(r *DailyRecord) float64 { return float64(r.Count) }, true
	case ColWeekday:
		return func(r *DailyRecord) float64 { return float64(r.Weekday) }, true
	case ColWorkingDay:
		return func(r *DailyRecord) float64 { return boolFloat(r.WorkingDay) }, true
	case ColWeatherCondition:
		return func(r *DailyRecord) float64 { return float64(r.Weather) }, true
	case ColSeason:
		return func(r *DailyRecord) float64 { return float64(r.Season) }, true
	case ColYear:
		return func(r *DailyRecord) float64 { return float64(r.Year) }, true
	case ColMonth:
		return func(r *DailyRecord) float64 { return float64(r.Month) }, true
	case ColHoliday:
		return func(r *DailyRecord) float64 { return boolFloat(r.Holiday) }, true
	case ColDate, ColYearMonth, ColRentalCategory:
		return nil, false
	}
	if t == nil || !t.hasColumn(column) {
		return nil, false
	}
	return func(r *DailyRecord) float64 {
		v, ok := r.Covariates[column]
		if !ok {
			return math.NaN()
		}
		return v
	}, true
}

func (t *Table) hasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
