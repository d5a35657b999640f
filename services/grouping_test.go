package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/testutil"
)

func keysOf(stats []models.GroupStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Key
	}
	return out
}

func TestGroupSummaryWeatherOrderAndStats(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.January, 1), 10, 20, 30, 40, 50)
	table.Records[0].Weather = models.WeatherLightRain
	table.Records[1].Weather = models.WeatherClear
	table.Records[2].Weather = models.WeatherLightRain
	table.Records[3].Weather = models.WeatherClear
	table.Records[4].Weather = models.WeatherClear

	stats, err := GroupSummary(table, GroupWeather)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, keysOf(stats))

	sunny := stats[0]
	assert.Equal(t, models.WeatherClear.String(), sunny.Label)
	assert.Equal(t, 3, sunny.N)
	assert.Equal(t, 110, sunny.Sum)
	assert.Equal(t, 36.67, sunny.Mean)
	assert.Equal(t, 20.0, sunny.Min)
	assert.Equal(t, 30.0, sunny.Q1)
	assert.Equal(t, 40.0, sunny.Median)
	assert.Equal(t, 45.0, sunny.Q3)
	assert.Equal(t, 50.0, sunny.Max)

	rain := stats[1]
	assert.Equal(t, 2, rain.N)
	assert.Equal(t, 20.0, rain.Mean)
	assert.Equal(t, 15.0, rain.Q1)
	assert.Equal(t, 20.0, rain.Median)
}

func TestGroupSummaryWeekdayStartsMonday(t *testing.T) {
	// 2011-01-02 is a Sunday.
	table := testutil.Table(testutil.Day(2011, time.January, 2), 1, 2, 3, 4, 5, 6, 7)

	stats, err := GroupSummary(table, GroupWeekday)
	require.NoError(t, err)
	require.Len(t, stats, 7)
	assert.Equal(t, models.Weekday(time.Monday).String(), stats[0].Label)
	assert.Equal(t, models.Weekday(time.Sunday).String(), stats[6].Label)
	assert.Equal(t, 1, stats[6].Sum)
}

func TestGroupSummaryWeekdayWorkingDay(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.January, 1), 100, 200, 300)

	stats, err := GroupSummary(table, GroupWeekdayWorkingDay)
	require.NoError(t, err)
	// Saturday and Sunday are non-working, Monday is working.
	require.Len(t, stats, 3)
	assert.Equal(t, "1/true", stats[0].Key)
	assert.Equal(t, "6/false", stats[1].Key)
	assert.Equal(t, "0/false", stats[2].Key)
}

func TestGroupSummaryYearMonth(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.December, 30), 1, 2, 3, 4)

	stats, err := GroupSummary(table, GroupYearMonth)
	require.NoError(t, err)
	assert.Equal(t, []string{"2011-12", "2012-01"}, keysOf(stats))
	assert.Equal(t, "Dec 2011", stats[0].Label)
	assert.Equal(t, 3, stats[0].Sum)
	assert.Equal(t, 7, stats[1].Sum)
}

func TestGroupSummaryRentalCategorySkipsUncategorized(t *testing.T) {
	table := testutil.Table(testutil.Day(2011, time.January, 1), 10, 20, 30)

	stats, err := GroupSummary(table, GroupRentalCategory)
	require.NoError(t, err)
	assert.Empty(t, stats)

	stats, err = GroupSummary(Categorize(table), GroupRentalCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"Low", "Medium", "High"}, keysOf(stats))
}

func TestGroupSummaryEmptyAndUnknown(t *testing.T) {
	stats, err := GroupSummary(&models.Table{}, GroupSeason)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)

	_, err = GroupSummary(&models.Table{}, GroupKey("colour"))
	assert.Error(t, err)
}

func TestParseGroupKey(t *testing.T) {
	for _, k := range GroupKeys() {
		got, ok := ParseGroupKey(string(k))
		assert.True(t, ok, k)
		assert.Equal(t, k, got)
	}
	_, ok := ParseGroupKey("nope")
	assert.False(t, ok)
}

func TestQuantile(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.75, quantile(data, 0.25))
	assert.Equal(t, 2.5, quantile(data, 0.5))
	assert.Equal(t, 3.25, quantile(data, 0.75))
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.5))
}
