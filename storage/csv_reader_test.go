package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/testutil"
	"bikeshare-dashboard/utils"
)

func readString(t *testing.T, data string) (*models.Table, error) {
	t.Helper()
	return ReadCSV(context.Background(), strings.NewReader(data), "test.csv", utils.Discard())
}

func TestReadCSVFullDataset(t *testing.T) {
	table, err := readString(t, testutil.DailyCSV(testutil.Day(2011, time.January, 1), 731))
	require.NoError(t, err)

	require.Equal(t, 731, table.Len())
	assert.Equal(t, testutil.Day(2011, time.January, 1), table.Records[0].Date)
	assert.Equal(t, testutil.Day(2012, time.December, 31), table.Records[730].Date)

	first := table.Records[0]
	assert.Equal(t, models.Weekday(time.Saturday), first.Weekday)
	assert.False(t, first.WorkingDay)
	assert.Equal(t, models.Season(4), first.Season)
	assert.Equal(t, time.January, first.Month)
	assert.Equal(t, "2011-01", first.YearMonth)
	assert.Contains(t, first.Covariates, "temp")
	assert.Contains(t, first.Covariates, "instant")

	assert.Equal(t, []string{
		"instant", "date", "season", "year", "month", "holiday", "weekday", "workingday",
		"weather_condition", "temp", "atemp", "humidity", "windspeed", "casual", "registered",
		"count", "year_month",
	}, table.Columns)
}

func TestReadCSVSortsByDate(t *testing.T) {
	data := testutil.FixtureHeader + "\n" +
		"2,2011-01-02,4,2011,1,0,0,0,2,0.2,0.2,0.5,0.1,10,90,100,2011-01\n" +
		"1,2011-01-01,4,2011,1,0,6,0,1,0.3,0.3,0.5,0.1,20,180,200,2011-01\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 200, table.Records[0].Count)
	assert.Equal(t, 100, table.Records[1].Count)
}

func TestReadCSVAcceptsNamesAndTimestamps(t *testing.T) {
	data := "date,count,weekday,workingday,weather_condition,season,year,month,holiday,year_month,note\n" +
		"2011-01-03 00:00:00,1349,Monday,1,Clear/Partly Cloudy,Springer,2011,Jan,0,2011-01,hello\n"

	_, err := readString(t, data)
	require.Error(t, err, "unknown season alias must be rejected")

	data = strings.Replace(data, "Springer", "Spring", 1)
	table, err := readString(t, data)
	require.NoError(t, err)

	r := table.Records[0]
	assert.Equal(t, testutil.Day(2011, time.January, 3), r.Date)
	assert.Equal(t, models.Weekday(time.Monday), r.Weekday)
	assert.Equal(t, models.WeatherClear, r.Weather)
	assert.Equal(t, time.January, r.Month)
	assert.NotContains(t, table.Columns, "note", "text columns are dropped")
}

func TestReadCSVEmptyCovariateIsNaN(t *testing.T) {
	data := "date,count,weekday,workingday,weather_condition,season,year,month,holiday,year_month,temp\n" +
		"2011-01-01,10,6,0,1,1,2011,1,0,2011-01,\n" +
		"2011-01-02,20,0,0,1,1,2011,1,0,2011-01,0.25\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(table.Records[0].Covariates["temp"]))
	assert.Equal(t, 0.25, table.Records[1].Covariates["temp"])
}

func TestReadCSVErrors(t *testing.T) {
	good := "date,count,weekday,workingday,weather_condition,season,year,month,holiday,year_month\n"

	tests := []struct {
		name    string
		data    string
		wantErr error
		column  string
	}{
		{"empty", "", ErrEmptySource, ""},
		{"missing column", "date,count\n2011-01-01,5\n", ErrMissingColumn, "weekday"},
		{"bad date", good + "01/13/2011,5,1,1,1,1,2011,1,0,2011-01\n", ErrMalformedRow, "date"},
		{"negative count", good + "2011-01-01,-5,1,1,1,1,2011,1,0,2011-01\n", ErrMalformedRow, "count"},
		{"fractional count", good + "2011-01-01,5.5,1,1,1,1,2011,1,0,2011-01\n", ErrMalformedRow, "count"},
		{"bad weather", good + "2011-01-01,5,1,1,7,1,2011,1,0,2011-01\n", ErrMalformedRow, "weather_condition"},
		{"bad weekday", good + "2011-01-01,5,9,1,1,1,2011,1,0,2011-01\n", ErrMalformedRow, "weekday"},
		{"ragged row", good + "2011-01-01,5,1\n", ErrMalformedRow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.data)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.column, le.Column)
		})
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), utils.Discard())

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestCSVSourceLoadIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.DailyCSV(testutil.Day(2011, time.January, 1), 60)), 0o644))

	src := NewCSVSource(path, utils.Discard())
	a, err := src.Load(context.Background())
	require.NoError(t, err)
	b, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestReadCSVKeepsDuplicates(t *testing.T) {
	data := "date,count,weekday,workingday,weather_condition,season,year,month,holiday,year_month\n" +
		"2011-01-01,10,6,0,1,1,2011,1,0,2011-01\n" +
		"2011-01-01,99,6,0,1,1,2011,1,0,2011-01\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 10, table.Records[0].Count, "stable sort keeps source order for equal dates")
}

func TestParseDate(t *testing.T) {
	want := testutil.Day(2012, time.February, 29)
	for _, raw := range []string{"2012-02-29", "2012-02-29 17:45:00", "2012-02-29T23:59:59Z", "2012/02/29"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseDate("29.02.2012")
	assert.Error(t, err)
}
