// Package charts turns dashboard views into go-echarts pages.
package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"bikeshare-dashboard/models"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
)

func boolPtr(b bool) *bool { return &b }

func baseOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true), Top: "bottom"}),
		charts.WithGridOpts(opts.Grid{
			ContainLabel: boolPtr(true),
			Left:         "3%",
			Right:        "4%",
			Bottom:       "12%",
		}),
	}
}

// Build returns the charts for one view. An empty view yields a single
// placeholder chart titled with the no-data message.
func Build(v *models.View) []components.Charter {
	if v == nil || v.Empty {
		return []components.Charter{noData(v)}
	}

	switch v.Kind {
	case models.ViewTrend:
		return []components.Charter{DailyLine(v.Daily), MonthlyLine(v.Monthly)}
	case models.ViewWeekday:
		return []components.Charter{
			BoxPlot("Daily rentals by weekday and working day", v.Distribution),
			MeanBar("Mean rentals by weekday and working day", v.Distribution),
		}
	case models.ViewWeather:
		return []components.Charter{
			BoxPlot("Daily rentals by weather condition", v.Distribution),
			MeanBar("Mean rentals by weather condition", v.Distribution),
		}
	case models.ViewCorrelation:
		out := make([]components.Charter, 0, 2)
		if v.Correlation != nil {
			out = append(out, Heatmap(*v.Correlation))
		}
		out = append(out, CategoryBar(v.Categories, v.Bins))
		return out
	}
	return []components.Charter{noData(v)}
}

// DailyLine plots count per day.
func DailyLine(points []models.SeriesPoint) *charts.Line {
	dates := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		dates[i] = p.Date.Format("2006-01-02")
		data[i] = opts.LineData{Value: p.Count}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("Daily bike rentals", ""),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rentals"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)...)
	line.SetXAxis(dates).AddSeries("Rentals", data)
	return line
}

// MonthlyLine draws one series per year over Jan..Dec. Months without data
// are left as gaps.
func MonthlyLine(stats []models.GroupStat) *charts.Line {
	byYear := make(map[int][]opts.LineData)
	var years []int
	for _, s := range stats {
		var year, month int
		if _, err := fmt.Sscanf(s.Key, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
			continue
		}
		series, ok := byYear[year]
		if !ok {
			series = make([]opts.LineData, 12)
			for i := range series {
				series[i] = opts.LineData{Value: "-"}
			}
			years = append(years, year)
		}
		series[month-1] = opts.LineData{Value: s.Mean}
		byYear[year] = series
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("Mean rentals per month", "one line per year"),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean rentals"}),
	)...)
	line.SetXAxis(models.MonthLabels())
	// stats arrive sorted by year then month, so years is ascending.
	for _, y := range years {
		line.AddSeries(strconv.Itoa(y), byYear[y])
	}
	return line
}

// BoxPlot draws min/q1/median/q3/max per group.
func BoxPlot(title string, stats []models.GroupStat) *charts.BoxPlot {
	labels := make([]string, len(stats))
	data := make([]opts.BoxPlotData, len(stats))
	for i, s := range stats {
		labels[i] = s.Label
		data[i] = opts.BoxPlotData{Name: s.Label, Value: []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(append(baseOptions(title, ""),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rentals"}),
	)...)
	box.SetXAxis(labels).AddSeries("Rentals", data)
	return box
}

// MeanBar draws the mean count per group.
func MeanBar(title string, stats []models.GroupStat) *charts.Bar {
	labels := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, s := range stats {
		labels[i] = s.Label
		data[i] = opts.BarData{Value: s.Mean}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(baseOptions(title, ""),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean rentals"}),
	)...)
	bar.SetXAxis(labels).AddSeries("Mean", data)
	return bar
}

// CategoryBar counts days per rental category. bins, when present, is shown
// in the subtitle.
func CategoryBar(stats []models.GroupStat, bins *models.RentalBins) *charts.Bar {
	labels := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, s := range stats {
		labels[i] = s.Label
		data[i] = opts.BarData{Value: s.N}
	}

	subtitle := ""
	if bins != nil {
		subtitle = fmt.Sprintf("Low < %.0f <= Medium < %.0f <= High", bins.Edges[1], bins.Edges[2])
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(baseOptions("Days per rental category", subtitle),
		charts.WithYAxisOpts(opts.YAxis{Name: "Days"}),
	)...)
	bar.SetXAxis(labels).AddSeries("Days", data)
	return bar
}

// Heatmap renders the correlation matrix. Undefined coefficients are drawn
// as empty cells.
func Heatmap(m models.CorrelationMatrix) *charts.HeatMap {
	data := make([]opts.HeatMapData, 0, len(m.Columns)*len(m.Columns))
	for i := range m.Columns {
		for j := range m.Columns {
			var cell interface{} = "-"
			if v := m.Values[i][j]; !math.IsNaN(v) {
				cell = math.Round(v*100) / 100
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, cell}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(baseOptions("Correlation matrix", "Pearson"),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      m.Columns,
			AxisLabel: &opts.AxisLabel{Rotate: 45},
			SplitArea: &opts.SplitArea{Show: boolPtr(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      m.Columns,
			SplitArea: &opts.SplitArea{Show: boolPtr(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: boolPtr(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#f7f7f7", "#a50026"}},
		}),
	)...)
	hm.SetXAxis(m.Columns).AddSeries("correlation", data, charts.WithLabelOpts(opts.Label{Show: boolPtr(true)}))
	return hm
}

func noData(v *models.View) *charts.Bar {
	title := "No data"
	if v != nil {
		title = v.Title
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(title, "No data for the selected date range.")...)
	return bar
}

// RenderPage writes a standalone HTML page with the charts of d's view.
func RenderPage(w io.Writer, d *models.Dashboard) error {
	page := components.NewPage()
	page.PageTitle = "Bike Sharing Dashboard"
	page.SetLayout(components.PageFlexLayout)

	var v *models.View
	if d != nil {
		v = d.View
	}
	page.AddCharts(Build(v)...)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("charts: render page: %w", err)
	}
	return nil
}
