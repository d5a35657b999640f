package services

import (
	"bikeshare-dashboard/models"
)

// BuildView derives the data for one canned view from the filtered table.
// An empty table produces a View with Empty set and nothing else.
func BuildView(kind models.ViewKind, filtered *models.Table) *models.View {
	v := &models.View{Kind: kind, Title: kind.Title()}
	if filtered.IsEmpty() {
		v.Empty = true
		return v
	}

	switch kind {
	case models.ViewTrend:
		v.Daily = make([]models.SeriesPoint, len(filtered.Records))
		for i, r := range filtered.Records {
			v.Daily[i] = models.SeriesPoint{Date: r.Date, Count: r.Count}
		}
		v.Monthly = mustGroup(filtered, GroupYearMonth)

	case models.ViewWeekday:
		v.Distribution = mustGroup(filtered, GroupWeekdayWorkingDay)

	case models.ViewWeather:
		v.Distribution = mustGroup(filtered, GroupWeather)

	case models.ViewCorrelation:
		m := CorrelationMatrix(filtered, DefaultCorrelationExclusions)
		v.Correlation = &m
		if bins, ok := RentalBins(filtered); ok {
			v.Bins = &bins
		}
		v.Categories = categoryCounts(mustGroup(Categorize(filtered), GroupRentalCategory))
	}
	return v
}

// mustGroup is GroupSummary for keys known to exist.
func mustGroup(t *models.Table, key GroupKey) []models.GroupStat {
	stats, err := GroupSummary(t, key)
	if err != nil {
		panic(err)
	}
	return stats
}

// categoryCounts lists Low, Medium and High in order, with zero-day
// categories included so the count chart always has three bars.
func categoryCounts(stats []models.GroupStat) []models.GroupStat {
	byKey := make(map[string]models.GroupStat, len(stats))
	for _, s := range stats {
		byKey[s.Key] = s
	}
	out := make([]models.GroupStat, 0, 3)
	for _, c := range models.RentalCategories() {
		s, ok := byKey[c.String()]
		if !ok {
			s = models.GroupStat{Key: c.String(), Label: c.String()}
		}
		out = append(out, s)
	}
	return out
}
