package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bikeshare-dashboard/models"
)

const dataSourceCredit = "https://www.kaggle.com/code/ramanchandra/bike-sharing-data-analysis"

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// ReportPrinter renders a Dashboard for the terminal.
type ReportPrinter struct {
	out     io.Writer
	numbers *message.Printer
}

// NewReportPrinter writes to out with English number formatting.
func NewReportPrinter(out io.Writer) *ReportPrinter {
	return &ReportPrinter{out: out, numbers: message.NewPrinter(language.English)}
}

// Print writes the totals, the selected-day result and the view.
func (p *ReportPrinter) Print(d *models.Dashboard) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Fprintf(p.out, "\n%s\n", bannerStyle.Render(sep))
	fmt.Fprintf(p.out, "%s\n", bannerStyle.Render("  BIKE SHARING DASHBOARD"))
	fmt.Fprintf(p.out, "%s\n\n", bannerStyle.Render(sep))

	fmt.Fprintf(p.out, "%s\n  %s\n", headingStyle.Render("  Selection"), thin)
	fmt.Fprintf(p.out, "  Range         : %s .. %s\n", d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"))
	fmt.Fprintf(p.out, "  Available     : %s .. %s\n", d.MinDate.Format("2006-01-02"), d.MaxDate.Format("2006-01-02"))
	fmt.Fprintf(p.out, "  Days in range : %s\n", valueStyle.Render(p.numbers.Sprintf("%d", d.Days)))
	fmt.Fprintf(p.out, "  Total rentals : %s\n\n", valueStyle.Render(p.numbers.Sprintf("%d", d.Total)))

	fmt.Fprintf(p.out, "%s\n  %s\n", headingStyle.Render("  Rentals on a Single Day"), thin)
	if d.DayFound {
		fmt.Fprintf(p.out, "  %s: %s bikes\n\n", d.Day.Format("02 January 2006"),
			valueStyle.Render(p.numbers.Sprintf("%d", d.DayCount)))
	} else {
		fmt.Fprintf(p.out, "  %s\n\n", warnStyle.Render("No data for "+d.Day.Format("02 January 2006")))
	}

	if d.View != nil {
		p.printView(d.View, thin)
	}

	fmt.Fprintf(p.out, "  Data source: %s\n", dataSourceCredit)
	fmt.Fprintf(p.out, "%s\n\n", bannerStyle.Render(sep))
}

func (p *ReportPrinter) printView(v *models.View, thin string) {
	fmt.Fprintf(p.out, "%s\n  %s\n", headingStyle.Render("  "+v.Title), thin)
	if v.Empty {
		fmt.Fprintf(p.out, "  %s\n\n", warnStyle.Render("No data for the selected date range."))
		return
	}

	switch v.Kind {
	case models.ViewTrend:
		p.printTrend(v)
	case models.ViewWeekday, models.ViewWeather:
		p.printDistribution(v.Distribution)
	case models.ViewCorrelation:
		p.printCorrelation(v)
	}
	fmt.Fprintln(p.out)
}

func (p *ReportPrinter) printTrend(v *models.View) {
	first, last := v.Daily[0], v.Daily[len(v.Daily)-1]
	peak := first
	for _, pt := range v.Daily {
		if pt.Count > peak.Count {
			peak = pt
		}
	}
	fmt.Fprintf(p.out, "  Daily points  : %d (%s .. %s)\n", len(v.Daily),
		first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02"))
	fmt.Fprintf(p.out, "  Busiest day   : %s (%s)\n\n", peak.Date.Format("2006-01-02"),
		p.numbers.Sprintf("%d", peak.Count))

	fmt.Fprintf(p.out, "  Mean rentals per month\n")
	p.printBars(v.Monthly, func(s models.GroupStat) float64 { return s.Mean })
}

func (p *ReportPrinter) printDistribution(stats []models.GroupStat) {
	fmt.Fprintf(p.out, "  %-36s %5s %8s %8s %8s %8s\n", "Group", "Days", "Min", "Median", "Max", "Mean")
	for _, s := range stats {
		fmt.Fprintf(p.out, "  %-36s %5d %8.0f %8.0f %8.0f %8.2f\n",
			truncate(s.Label, 36), s.N, s.Min, s.Median, s.Max, s.Mean)
	}
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "  Mean rentals\n")
	p.printBars(stats, func(s models.GroupStat) float64 { return s.Mean })
}

func (p *ReportPrinter) printCorrelation(v *models.View) {
	m := v.Correlation
	if m != nil && len(m.Columns) > 0 {
		fmt.Fprintf(p.out, "  %-12s", "")
		for _, c := range m.Columns {
			fmt.Fprintf(p.out, " %9s", truncate(c, 9))
		}
		fmt.Fprintln(p.out)
		for i, c := range m.Columns {
			fmt.Fprintf(p.out, "  %-12s", truncate(c, 12))
			for _, val := range m.Values[i] {
				if math.IsNaN(val) {
					fmt.Fprintf(p.out, " %9s", "n/a")
					continue
				}
				fmt.Fprintf(p.out, " %9.2f", val)
			}
			fmt.Fprintln(p.out)
		}
		fmt.Fprintln(p.out)
	}

	if v.Bins != nil {
		fmt.Fprintf(p.out, "  Bins: Low [%.2f, %.2f)  Medium [%.2f, %.2f)  High [%.2f, %.2f]\n\n",
			v.Bins.Edges[0], v.Bins.Edges[1], v.Bins.Edges[1], v.Bins.Edges[2], v.Bins.Edges[2], v.Bins.Edges[3])
	}
	fmt.Fprintf(p.out, "  Days per rental category\n")
	p.printBars(v.Categories, func(s models.GroupStat) float64 { return float64(s.N) })
}

// printBars draws one bar per group scaled to the largest value.
func (p *ReportPrinter) printBars(stats []models.GroupStat, value func(models.GroupStat) float64) {
	const width = 30
	max := 0.0
	for _, s := range stats {
		if v := value(s); v > max {
			max = v
		}
	}
	for _, s := range stats {
		v := value(s)
		n := 0
		if max > 0 {
			n = int(math.Round(v / max * width))
		}
		fmt.Fprintf(p.out, "  %-36s %s %s\n", truncate(s.Label, 36),
			barStyle.Render(strings.Repeat("█", n)), p.numbers.Sprintf("%.0f", v))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
