package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// GroupStat holds aggregate statistics of count for one group.
type GroupStat struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	N      int     `json:"n"`
	Sum    int     `json:"sum"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// CorrelationMatrix is a square Pearson correlation matrix. NaN marks an
// undefined coefficient (zero variance or too few rows).
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// At returns the coefficient for a pair of column names.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m CorrelationMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes NaN cells as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return nil, err
	}
	if m.Columns == nil {
		cols = []byte("[]")
	}
	buf.WriteString(`{"columns":`)
	buf.Write(cols)
	buf.WriteString(`,"values":[`)
	for i, row := range m.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf.WriteString("null")
				continue
			}
			buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		buf.WriteByte(']')
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// RentalBins describes the three equal-width count intervals.
type RentalBins struct {
	Min   int        `json:"min"`
	Max   int        `json:"max"`
	Width float64    `json:"width"`
	Edges [4]float64 `json:"edges"`
}

// SeriesPoint is one point of the daily trend line.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ViewKind names one of the canned dashboard views.
type ViewKind string

const (
	ViewTrend       ViewKind = "trend"
	ViewWeekday     ViewKind = "weekday"
	ViewWeather     ViewKind = "weather"
	ViewCorrelation ViewKind = "correlation"
)

// ViewKinds lists the views in menu order.
func ViewKinds() []ViewKind {
	return []ViewKind{ViewTrend, ViewWeekday, ViewWeather, ViewCorrelation}
}

// ParseViewKind returns false for an unknown view name.
func ParseViewKind(s string) (ViewKind, bool) {
	for _, k := range ViewKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Title is the heading shown above the view.
func (k ViewKind) Title() string {
	switch k {
	case ViewTrend:
		return "Bike Rental Trend"
	case ViewWeekday:
		return "Rental Distribution by Weekday"
	case ViewWeather:
		return "Weather Effect on Rentals"
	case ViewCorrelation:
		return "Correlation and Rental Categories"
	}
	return string(k)
}

// View is the data behind one canned chart view. Empty means the selected
// range has no records and the caller must show a "no data" state.
type View struct {
	Kind  ViewKind `json:"kind"`
	Title string   `json:"title"`
	Empty bool     `json:"empty"`

	Daily   []SeriesPoint `json:"daily,omitempty"`
	Monthly []GroupStat   `json:"monthly,omitempty"`

	// Distribution carries both box statistics and the mean per group.
	Distribution []GroupStat `json:"distribution,omitempty"`

	Correlation *CorrelationMatrix `json:"correlation,omitempty"`
	Bins        *RentalBins        `json:"bins,omitempty"`
	Categories  []GroupStat        `json:"categories,omitempty"`
}

// Dashboard is everything one interaction produces.
type Dashboard struct {
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	MinDate  time.Time    `json:"min_date"`
	MaxDate  time.Time    `json:"max_date"`
	Total    int          `json:"total"`
	Days     int          `json:"days"`
	Day      time.Time    `json:"day"`
	DayFound bool         `json:"day_found"`
	DayCount int          `json:"day_count"`
	Record   *DailyRecord `json:"-"`
	Filtered *Table       `json:"-"`
	View     *View        `json:"view,omitempty"`
}
