package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/testutil"
	"bikeshare-dashboard/utils"
)

func render(t *testing.T, sel Selection) string {
	t.Helper()
	view := NewDataView(fullDataset(t), utils.Discard())
	var buf bytes.Buffer
	NewReportPrinter(&buf).Print(view.Render(sel))
	return buf.String()
}

func TestReportPrinterTotalsAndDay(t *testing.T) {
	out := render(t, Selection{
		Start: testutil.Day(2011, time.January, 1),
		End:   testutil.Day(2011, time.January, 7),
		Day:   testutil.Day(2011, time.January, 2),
	})

	total := 0
	for i := 0; i < 7; i++ {
		total += 1000 + (i*37)%5000
	}
	assert.Contains(t, out, "BIKE SHARING DASHBOARD")
	assert.Contains(t, out, "2011-01-01 .. 2011-01-07")
	assert.Contains(t, out, "7,777")
	assert.Equal(t, 7777, total)
	assert.Contains(t, out, "02 January 2011")
	assert.Contains(t, out, "1,037")
	assert.Contains(t, out, dataSourceCredit)
}

func TestReportPrinterMissingDay(t *testing.T) {
	out := render(t, Selection{
		Start: testutil.Day(2011, time.January, 1),
		End:   testutil.Day(2011, time.January, 7),
		Day:   testutil.Day(2014, time.March, 9),
	})
	assert.Contains(t, out, "No data for 09 March 2014")
}

func TestReportPrinterViews(t *testing.T) {
	tests := []struct {
		view models.ViewKind
		want string
	}{
		{models.ViewTrend, "Busiest day"},
		{models.ViewWeekday, "Monday / Working day"},
		{models.ViewWeather, "Mean rentals"},
		{models.ViewCorrelation, "Days per rental category"},
	}
	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			out := render(t, Selection{
				Start: testutil.Day(2011, time.January, 1),
				End:   testutil.Day(2011, time.March, 31),
				Day:   testutil.Day(2011, time.January, 1),
				View:  tt.view,
			})
			assert.Contains(t, out, tt.view.Title())
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestReportPrinterEmptyView(t *testing.T) {
	out := render(t, Selection{
		Start: testutil.Day(2011, time.June, 2),
		End:   testutil.Day(2011, time.June, 1),
		Day:   testutil.Day(2011, time.June, 1),
		View:  models.ViewWeather,
	})
	assert.Contains(t, out, "No data for the selected date range.")
	assert.NotContains(t, out, "Busiest day")
}
