// Package testutil builds deterministic daily rental fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"time"

	"bikeshare-dashboard/models"
)

// FixtureHeader is the column layout of the cleaned day dataset.
const FixtureHeader = "instant,date,season,year,month,holiday,weekday,workingday,weather_condition,temp,atemp,humidity,windspeed,casual,registered,count,year_month"

// Day returns midnight UTC of the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyCSV renders days consecutive rows starting at start. Counts follow a
// fixed pattern so every run produces the same bytes.
func DailyCSV(start time.Time, days int) string {
	var b strings.Builder
	b.WriteString(FixtureHeader)
	b.WriteByte('\n')
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		b.WriteString(csvRow(i+1, d, fixtureCount(i)))
		b.WriteByte('\n')
	}
	return b.String()
}

func csvRow(instant int, d time.Time, count int) string {
	wd := d.Weekday()
	working := 1
	if wd == time.Saturday || wd == time.Sunday {
		working = 0
	}
	weather := instant%3 + 1
	temp := 0.2 + float64(count%500)/1000
	casual := count / 5
	return fmt.Sprintf("%d,%s,%d,%d,%d,0,%d,%d,%d,%.3f,%.3f,%.3f,%.3f,%d,%d,%d,%s",
		instant, d.Format("2006-01-02"), seasonOf(d.Month()), d.Year(), int(d.Month()),
		int(wd), working, weather, temp, temp*0.9, 0.5+float64(instant%7)/20, 0.1+float64(instant%5)/50,
		casual, count-casual, count, d.Format("2006-01"))
}

func fixtureCount(i int) int {
	return 1000 + (i*37)%5000
}

func seasonOf(m time.Month) int {
	switch m {
	case time.March, time.April, time.May:
		return 1
	case time.June, time.July, time.August:
		return 2
	case time.September, time.October, time.November:
		return 3
	}
	return 4
}

// Record builds a minimal valid record for day d.
func Record(d time.Time, count int) models.DailyRecord {
	wd := d.Weekday()
	return models.DailyRecord{
		Date:       models.NormalizeDate(d),
		Count:      count,
		Weekday:    models.Weekday(wd),
		WorkingDay: wd != time.Saturday && wd != time.Sunday,
		Weather:    models.WeatherClear,
		Season:     models.Season(seasonOf(d.Month())),
		Year:       d.Year(),
		Month:      d.Month(),
		YearMonth:  d.Format("2006-01"),
		Covariates: map[string]float64{},
	}
}

// Table builds a table of consecutive days from start with the given counts.
func Table(start time.Time, counts ...int) *models.Table {
	recs := make([]models.DailyRecord, len(counts))
	for i, c := range counts {
		recs[i] = Record(start.AddDate(0, 0, i), c)
	}
	return &models.Table{Columns: append([]string(nil), models.RequiredColumns...), Records: recs}
}
