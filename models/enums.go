package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// enumEntry describes one value of a categorical column. Entries are listed
// in declared order, which is the order every grouping and chart uses.
type enumEntry struct {
	code    int
	name    string
	label   string
	aliases []string
}

func lookupEnum(entries []enumEntry, raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		for _, e := range entries {
			if e.code == n {
				return e.code, true
			}
		}
		return 0, false
	}
	for _, e := range entries {
		if strings.ToLower(e.name) == s || strings.ToLower(e.label) == s {
			return e.code, true
		}
		for _, a := range e.aliases {
			if a == s {
				return e.code, true
			}
		}
	}
	return 0, false
}

func findEnum(entries []enumEntry, code int) (enumEntry, bool) {
	for _, e := range entries {
		if e.code == code {
			return e, true
		}
	}
	return enumEntry{}, false
}

func orderOf(entries []enumEntry, code int) int {
	for i, e := range entries {
		if e.code == code {
			return i
		}
	}
	return len(entries)
}

// Weekday uses time.Weekday numbering (Sunday=0).
type Weekday int

var weekdays = []enumEntry{
	{int(time.Monday), "Monday", "Mon", []string{"mon"}},
	{int(time.Tuesday), "Tuesday", "Tue", []string{"tue", "tues"}},
	{int(time.Wednesday), "Wednesday", "Wed", []string{"wed"}},
	{int(time.Thursday), "Thursday", "Thu", []string{"thu", "thur", "thurs"}},
	{int(time.Friday), "Friday", "Fri", []string{"fri"}},
	{int(time.Saturday), "Saturday", "Sat", []string{"sat"}},
	{int(time.Sunday), "Sunday", "Sun", []string{"sun"}},
}

// Weekdays lists all weekdays in display order, Monday first.
func Weekdays() []Weekday {
	out := make([]Weekday, len(weekdays))
	for i, e := range weekdays {
		out[i] = Weekday(e.code)
	}
	return out
}

// ParseWeekday accepts a 0-6 code (Sunday=0) or a day name.
func ParseWeekday(raw string) (Weekday, error) {
	code, ok := lookupEnum(weekdays, raw)
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", raw)
	}
	return Weekday(code), nil
}

func (w Weekday) String() string {
	if e, ok := findEnum(weekdays, int(w)); ok {
		return e.name
	}
	return fmt.Sprintf("Weekday(%d)", int(w))
}

// Short returns the three-letter day name.
func (w Weekday) Short() string {
	if e, ok := findEnum(weekdays, int(w)); ok {
		return e.label
	}
	return w.String()
}

// Order is the position in display order.
func (w Weekday) Order() int { return orderOf(weekdays, int(w)) }

// WeatherCondition is the ordinal weather severity, 1 (clear) to 4 (heavy rain).
type WeatherCondition int

const (
	WeatherClear WeatherCondition = iota + 1
	WeatherCloudy
	WeatherLightRain
	WeatherHeavyRain
)

var weatherConditions = []enumEntry{
	{int(WeatherClear), "Clear", "Clear / Partly Cloudy", []string{"clear/partly cloudy", "clear", "cerah"}},
	{int(WeatherCloudy), "Cloudy", "Mist / Cloudy", []string{"misty/cloudy", "mist", "misty", "mist/cloudy", "berawan"}},
	{int(WeatherLightRain), "Light Rain", "Light Rain / Snow", []string{"light snow/rain", "light rain/snow", "light rain", "light snow", "hujan ringan"}},
	{int(WeatherHeavyRain), "Heavy Rain", "Heavy Rain / Snow", []string{"heavy rain/snow", "heavy snow/rain", "heavy rain", "heavy snow", "hujan deras"}},
}

// WeatherConditions lists all conditions by increasing severity.
func WeatherConditions() []WeatherCondition {
	out := make([]WeatherCondition, len(weatherConditions))
	for i, e := range weatherConditions {
		out[i] = WeatherCondition(e.code)
	}
	return out
}

// ParseWeatherCondition accepts a 1-4 code or a condition name.
func ParseWeatherCondition(raw string) (WeatherCondition, error) {
	code, ok := lookupEnum(weatherConditions, raw)
	if !ok {
		return 0, fmt.Errorf("unknown weather condition %q", raw)
	}
	return WeatherCondition(code), nil
}

func (w WeatherCondition) String() string {
	if e, ok := findEnum(weatherConditions, int(w)); ok {
		return e.name
	}
	return fmt.Sprintf("WeatherCondition(%d)", int(w))
}

// Label is the longer human-readable description.
func (w WeatherCondition) Label() string {
	if e, ok := findEnum(weatherConditions, int(w)); ok {
		return e.label
	}
	return w.String()
}

func (w WeatherCondition) Order() int { return orderOf(weatherConditions, int(w)) }

// Season follows the 1 (spring) to 4 (winter) coding.
type Season int

var seasons = []enumEntry{
	{1, "Spring", "Spring", nil},
	{2, "Summer", "Summer", nil},
	{3, "Fall", "Fall", []string{"autumn"}},
	{4, "Winter", "Winter", nil},
}

// Seasons lists all seasons in declared order.
func Seasons() []Season {
	out := make([]Season, len(seasons))
	for i, e := range seasons {
		out[i] = Season(e.code)
	}
	return out
}

func ParseSeason(raw string) (Season, error) {
	code, ok := lookupEnum(seasons, raw)
	if !ok {
		return 0, fmt.Errorf("unknown season %q", raw)
	}
	return Season(code), nil
}

func (s Season) String() string {
	if e, ok := findEnum(seasons, int(s)); ok {
		return e.name
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

func (s Season) Order() int { return orderOf(seasons, int(s)) }

var months = func() []enumEntry {
	out := make([]enumEntry, 12)
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		out[m-1] = enumEntry{int(m), name, name[:3], []string{strings.ToLower(name[:3])}}
	}
	return out
}()

// ParseMonth accepts 1-12 or an English month name.
func ParseMonth(raw string) (time.Month, error) {
	code, ok := lookupEnum(months, raw)
	if !ok {
		return 0, fmt.Errorf("unknown month %q", raw)
	}
	return time.Month(code), nil
}

// MonthLabels returns the three-letter month labels Jan..Dec.
func MonthLabels() []string {
	out := make([]string, len(months))
	for i, e := range months {
		out[i] = e.label
	}
	return out
}

// RentalCategory is the derived rental level of a day. The zero value means
// the record has not been categorized.
type RentalCategory int

const (
	CategoryNone RentalCategory = iota
	CategoryLow
	CategoryMedium
	CategoryHigh
)

var rentalCategories = []enumEntry{
	{int(CategoryLow), "Low", "Low", nil},
	{int(CategoryMedium), "Medium", "Medium", nil},
	{int(CategoryHigh), "High", "High", nil},
}

// RentalCategories lists Low, Medium, High.
func RentalCategories() []RentalCategory {
	return []RentalCategory{CategoryLow, CategoryMedium, CategoryHigh}
}

func ParseRentalCategory(raw string) (RentalCategory, error) {
	code, ok := lookupEnum(rentalCategories, raw)
	if !ok {
		return CategoryNone, fmt.Errorf("unknown rental category %q", raw)
	}
	return RentalCategory(code), nil
}

func (c RentalCategory) String() string {
	if e, ok := findEnum(rentalCategories, int(c)); ok {
		return e.name
	}
	return ""
}

func (c RentalCategory) Order() int { return orderOf(rentalCategories, int(c)) }

// ParseFlag reads the boolean columns (workingday, holiday).
func ParseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "t":
		return true, nil
	case "0", "false", "no", "n", "f":
		return false, nil
	}
	return false, fmt.Errorf("unknown flag value %q", raw)
}

// WorkingDayLabel names the workingday flag.
func WorkingDayLabel(working bool) string {
	if working {
		return "Working day"
	}
	return "Weekend / Holiday"
}
