package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/utils"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// CSVSource loads the daily table from a delimited text file.
type CSVSource struct {
	path   string
	logger *utils.Logger
}

// NewCSVSource creates a CSVSource for the file at path.
func NewCSVSource(path string, logger *utils.Logger) *CSVSource {
	return &CSVSource{path: path, logger: logger}
}

func (s *CSVSource) Name() string { return s.path }

// Load opens and parses the file. Every failure is a *LoadError.
func (s *CSVSource) Load(ctx context.Context) (*models.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Source: s.path, Err: fmt.Errorf("%w: %v", ErrSourceNotFound, err)}
		}
		return nil, &LoadError{Source: s.path, Err: err}
	}
	defer f.Close()

	return ReadCSV(ctx, f, s.path, s.logger)
}

// ReadCSV parses a daily rentals CSV stream. name is used in errors.
func ReadCSV(ctx context.Context, r io.Reader, name string, logger *utils.Logger) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: name, Err: ErrEmptySource}
		}
		return nil, &LoadError{Source: name, Line: 1, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &LoadError{Source: name, Column: col, Err: ErrMissingColumn}
		}
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, &LoadError{Source: name, Err: err}
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &LoadError{Source: name, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		rows = append(rows, row)
	}

	covariates := numericExtras(header, rows)
	columns := make([]string, 0, len(header))
	for _, h := range header {
		if isRequired(h) || covariates[h] {
			columns = append(columns, h)
		} else if logger != nil {
			logger.Debug("[loader] Ignoring non-numeric column %q", h)
		}
	}

	records := make([]models.DailyRecord, 0, len(rows))
	for i, row := range rows {
		rec, col, err := parseRecord(row, idx, header, covariates)
		if err != nil {
			return nil, &LoadError{Source: name, Line: i + 2, Column: col, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		records = append(records, rec)
	}

	sortRecords(records)
	warnDuplicates(records, name, logger)

	if logger != nil {
		logger.Info("[loader] Loaded %d records from %s", len(records), name)
	}
	return &models.Table{Columns: columns, Records: records}, nil
}

func parseRecord(row []string, idx map[string]int, header []string, covariates map[string]bool) (models.DailyRecord, string, error) {
	var rec models.DailyRecord
	cell := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := ParseDate(cell(models.ColDate))
	if err != nil {
		return rec, models.ColDate, err
	}
	rec.Date = date

	count, err := parseCount(cell(models.ColCount))
	if err != nil {
		return rec, models.ColCount, err
	}
	rec.Count = count

	if rec.Weekday, err = models.ParseWeekday(cell(models.ColWeekday)); err != nil {
		return rec, models.ColWeekday, err
	}
	if rec.WorkingDay, err = models.ParseFlag(cell(models.ColWorkingDay)); err != nil {
		return rec, models.ColWorkingDay, err
	}
	if rec.Weather, err = models.ParseWeatherCondition(cell(models.ColWeatherCondition)); err != nil {
		return rec, models.ColWeatherCondition, err
	}
	if rec.Season, err = models.ParseSeason(cell(models.ColSeason)); err != nil {
		return rec, models.ColSeason, err
	}
	if rec.Year, err = strconv.Atoi(cell(models.ColYear)); err != nil {
		return rec, models.ColYear, fmt.Errorf("invalid year %q", cell(models.ColYear))
	}
	if rec.Month, err = models.ParseMonth(cell(models.ColMonth)); err != nil {
		return rec, models.ColMonth, err
	}
	if rec.Holiday, err = models.ParseFlag(cell(models.ColHoliday)); err != nil {
		return rec, models.ColHoliday, err
	}
	rec.YearMonth = cell(models.ColYearMonth)

	rec.Covariates = make(map[string]float64, len(covariates))
	for i, h := range header {
		if !covariates[h] {
			continue
		}
		raw := ""
		if i < len(row) {
			raw = strings.TrimSpace(row[i])
		}
		if raw == "" {
			rec.Covariates[h] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, h, fmt.Errorf("invalid number %q", raw)
		}
		rec.Covariates[h] = v
	}
	return rec, "", nil
}

// ParseDate accepts the ISO-like layouts the dataset uses and returns the
// normalized calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseCount(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("invalid count %q", raw)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

// numericExtras returns the non-required columns whose non-empty cells all
// parse as numbers.
func numericExtras(header []string, rows [][]string) map[string]bool {
	out := make(map[string]bool)
	for i, h := range header {
		if isRequired(h) || h == models.ColRentalCategory {
			continue
		}
		numeric := true
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric {
			out[h] = true
		}
	}
	return out
}

func isRequired(col string) bool {
	for _, c := range models.RequiredColumns {
		if c == col {
			return true
		}
	}
	return false
}

func sortRecords(records []models.DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

func warnDuplicates(records []models.DailyRecord, name string, logger *utils.Logger) {
	seen := utils.NewKeySet()
	dups := 0
	for _, r := range records {
		if !seen.Add(r.Date.Format("2006-01-02")) {
			dups++
			if logger != nil {
				logger.Warn("[loader] Duplicate date %s in %s, first occurrence wins on lookup",
					r.Date.Format("2006-01-02"), name)
			}
		}
	}
	if dups > 0 && logger != nil {
		logger.Warn("[loader] %s has %d duplicate dates", name, dups)
	}
}
