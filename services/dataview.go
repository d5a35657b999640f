package services

import (
	"time"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/utils"
)

// DateBounds returns the earliest and latest date in t. ok is false for an
// empty table.
func DateBounds(t *models.Table) (min, max time.Time, ok bool) {
	if t.IsEmpty() {
		return time.Time{}, time.Time{}, false
	}
	min, max = t.Records[0].Date, t.Records[0].Date
	for _, r := range t.Records[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return models.NormalizeDate(min), models.NormalizeDate(max), true
}

// FilterByRange returns the records whose normalized date lies in
// [start, end]. start after end yields an empty table.
func FilterByRange(t *models.Table, start, end time.Time) *models.Table {
	start, end = models.NormalizeDate(start), models.NormalizeDate(end)
	out := make([]models.DailyRecord, 0)
	if t.IsEmpty() || start.After(end) {
		return t.WithRecords(out)
	}
	for _, r := range t.Records {
		d := models.NormalizeDate(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return t.WithRecords(out)
}

// LookupDay returns the first record, in table order, whose normalized date
// equals day.
func LookupDay(t *models.Table, day time.Time) (models.DailyRecord, bool) {
	day = models.NormalizeDate(day)
	if t == nil {
		return models.DailyRecord{}, false
	}
	for _, r := range t.Records {
		if models.NormalizeDate(r.Date).Equal(day) {
			return r, true
		}
	}
	return models.DailyRecord{}, false
}

// TotalCount sums count over t.
func TotalCount(t *models.Table) int {
	total := 0
	if t == nil {
		return total
	}
	for _, r := range t.Records {
		total += r.Count
	}
	return total
}

// Selection is the user's input for one interaction. Zero dates mean "not
// chosen".
type Selection struct {
	Start time.Time
	End   time.Time
	Day   time.Time
	View  models.ViewKind
}

// Normalize applies the dashboard's picker rules: an unset range covers the
// whole table and a single date means start=end. A range that overlaps the
// bounds is clamped to them; one that misses them entirely is kept as given
// so it matches nothing. The day is never clamped and defaults to the first
// date.
func (s Selection) Normalize(min, max time.Time) Selection {
	out := s
	switch {
	case out.Start.IsZero() && out.End.IsZero():
		out.Start, out.End = min, max
	case out.End.IsZero():
		out.End = out.Start
	case out.Start.IsZero():
		out.Start = out.End
	}
	out.Start = models.NormalizeDate(out.Start)
	out.End = models.NormalizeDate(out.End)
	if !out.Start.After(max) && !out.End.Before(min) {
		out.Start = clampDate(out.Start, min, max)
		out.End = clampDate(out.End, min, max)
	}

	if out.Day.IsZero() {
		out.Day = min
	}
	out.Day = models.NormalizeDate(out.Day)
	return out
}

func clampDate(d, min, max time.Time) time.Time {
	if d.Before(min) {
		return min
	}
	if d.After(max) {
		return max
	}
	return d
}

// DataView is the session object: it owns the immutable base table and
// recomputes everything a view needs from it on each interaction.
type DataView struct {
	base    *models.Table
	logger  *utils.Logger
	minDate time.Time
	maxDate time.Time
	ok      bool
}

// NewDataView wraps a loaded table. The table must not be modified afterwards.
func NewDataView(table *models.Table, logger *utils.Logger) *DataView {
	if table == nil {
		table = &models.Table{}
	}
	min, max, ok := DateBounds(table)
	return &DataView{base: table, logger: logger, minDate: min, maxDate: max, ok: ok}
}

// Table returns the base table.
func (v *DataView) Table() *models.Table { return v.base }

// Bounds returns the date range available for selection.
func (v *DataView) Bounds() (min, max time.Time, ok bool) {
	return v.minDate, v.maxDate, v.ok
}

// Render runs one full recompute for sel: filter, total, single-day lookup
// and, when sel.View is set, the view data. sel is used as given; callers
// that take raw user input should Normalize it first.
func (v *DataView) Render(sel Selection) *models.Dashboard {
	filtered := FilterByRange(v.base, sel.Start, sel.End)

	d := &models.Dashboard{
		Start:    models.NormalizeDate(sel.Start),
		End:      models.NormalizeDate(sel.End),
		MinDate:  v.minDate,
		MaxDate:  v.maxDate,
		Total:    TotalCount(filtered),
		Days:     filtered.Len(),
		Day:      models.NormalizeDate(sel.Day),
		Filtered: filtered,
	}

	if rec, ok := LookupDay(v.base, sel.Day); ok {
		d.DayFound = true
		d.DayCount = rec.Count
		d.Record = &rec
	}

	if sel.View != "" {
		d.View = BuildView(sel.View, filtered)
	}

	if v.logger != nil {
		v.logger.Debug("[dataview] %s..%s -> %d days, total %d, view %q",
			d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"), d.Days, d.Total, sel.View)
	}
	return d
}
