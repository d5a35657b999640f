package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"bikeshare-dashboard/models"
)

// GroupKey names a grouping used by the distribution and mean views.
type GroupKey string

const (
	GroupWeather           GroupKey = "weather"
	GroupWeekday           GroupKey = "weekday"
	GroupWorkingDay        GroupKey = "workingday"
	GroupWeekdayWorkingDay GroupKey = "weekday_workingday"
	GroupSeason            GroupKey = "season"
	GroupMonth             GroupKey = "month"
	GroupYear              GroupKey = "year"
	GroupYearMonth         GroupKey = "year_month_of_year"
	GroupRentalCategory    GroupKey = "rental_category"
)

// groupValue identifies a record's group. order sorts groups in the
// enumeration's declared order.
type groupValue struct {
	key   string
	label string
	order int
}

var groupers = map[GroupKey]func(*models.DailyRecord) (groupValue, bool){
	GroupWeather: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.Itoa(int(r.Weather)), r.Weather.String(), r.Weather.Order()}, true
	},
	GroupWeekday: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.Itoa(int(r.Weekday)), r.Weekday.String(), r.Weekday.Order()}, true
	},
	GroupWorkingDay: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.FormatBool(r.WorkingDay), models.WorkingDayLabel(r.WorkingDay), boolOrder(r.WorkingDay)}, true
	},
	GroupWeekdayWorkingDay: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{
			key:   fmt.Sprintf("%d/%t", int(r.Weekday), r.WorkingDay),
			label: r.Weekday.String() + " / " + models.WorkingDayLabel(r.WorkingDay),
			order: r.Weekday.Order()*2 + boolOrder(r.WorkingDay),
		}, true
	},
	GroupSeason: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.Itoa(int(r.Season)), r.Season.String(), r.Season.Order()}, true
	},
	GroupMonth: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.Itoa(int(r.Month)), r.Month.String(), int(r.Month)}, true
	},
	GroupYear: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{strconv.Itoa(r.Year), strconv.Itoa(r.Year), r.Year}, true
	},
	GroupYearMonth: func(r *models.DailyRecord) (groupValue, bool) {
		return groupValue{
			key:   fmt.Sprintf("%d-%02d", r.Year, int(r.Month)),
			label: fmt.Sprintf("%s %d", r.Month.String()[:3], r.Year),
			order: r.Year*100 + int(r.Month),
		}, true
	},
	GroupRentalCategory: func(r *models.DailyRecord) (groupValue, bool) {
		if r.Category == models.CategoryNone {
			return groupValue{}, false
		}
		return groupValue{r.Category.String(), r.Category.String(), r.Category.Order()}, true
	},
}

func boolOrder(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GroupKeys lists the supported keys in a stable order.
func GroupKeys() []GroupKey {
	return []GroupKey{
		GroupWeather, GroupWeekday, GroupWorkingDay, GroupWeekdayWorkingDay,
		GroupSeason, GroupMonth, GroupYear, GroupYearMonth, GroupRentalCategory,
	}
}

// ParseGroupKey returns false for an unknown key.
func ParseGroupKey(s string) (GroupKey, bool) {
	k := GroupKey(s)
	_, ok := groupers[k]
	return k, ok
}

// GroupSummary aggregates count per group of key. Only groups that have
// records are returned, in the declared order of the grouping. Records
// without a value for the key (uncategorized rows for rental_category) are
// skipped.
func GroupSummary(t *models.Table, key GroupKey) ([]models.GroupStat, error) {
	grouper, ok := groupers[key]
	if !ok {
		return nil, fmt.Errorf("services: unknown group key %q", key)
	}
	if t.IsEmpty() {
		return []models.GroupStat{}, nil
	}

	type bucket struct {
		gv     groupValue
		counts []float64
		sum    int
	}
	buckets := make(map[string]*bucket)
	for i := range t.Records {
		r := &t.Records[i]
		gv, ok := grouper(r)
		if !ok {
			continue
		}
		b, exists := buckets[gv.key]
		if !exists {
			b = &bucket{gv: gv}
			buckets[gv.key] = b
		}
		b.counts = append(b.counts, float64(r.Count))
		b.sum += r.Count
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].gv.order != ordered[j].gv.order {
			return ordered[i].gv.order < ordered[j].gv.order
		}
		return ordered[i].gv.key < ordered[j].gv.key
	})

	out := make([]models.GroupStat, 0, len(ordered))
	for _, b := range ordered {
		sort.Float64s(b.counts)
		n := len(b.counts)
		out = append(out, models.GroupStat{
			Key:    b.gv.key,
			Label:  b.gv.label,
			N:      n,
			Sum:    b.sum,
			Mean:   round2(float64(b.sum) / float64(n)),
			Min:    b.counts[0],
			Q1:     quantile(b.counts, 0.25),
			Median: quantile(b.counts, 0.5),
			Q3:     quantile(b.counts, 0.75),
			Max:    b.counts[n-1],
		})
	}
	return out, nil
}

// quantile uses linear interpolation between closest ranks on sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
