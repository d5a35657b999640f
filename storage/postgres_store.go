package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/utils"
)

// PostgresStore keeps the daily table in PostgreSQL. It is both a
// TableSource (DATA_SOURCE=postgres) and the sink of the import command.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) Name() string { return "postgres:daily_rentals" }

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_rentals (
			date              DATE        PRIMARY KEY,
			count             INTEGER     NOT NULL CHECK (count >= 0),
			weekday           SMALLINT    NOT NULL,
			workingday        BOOLEAN     NOT NULL,
			weather_condition SMALLINT    NOT NULL,
			season            SMALLINT    NOT NULL,
			year              INTEGER     NOT NULL,
			month             SMALLINT    NOT NULL,
			holiday           BOOLEAN     NOT NULL,
			year_month        TEXT        NOT NULL DEFAULT '',
			covariates        JSONB       NOT NULL DEFAULT '{}'::jsonb,
			imported_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_daily_rentals_weather ON daily_rentals(weather_condition);
		CREATE INDEX IF NOT EXISTS idx_daily_rentals_weekday ON daily_rentals(weekday);

		CREATE TABLE IF NOT EXISTS daily_rentals_columns (
			position INTEGER PRIMARY KEY,
			name     TEXT    NOT NULL
		);
	`)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Clear deletes all existing rows.
func (ps *PostgresStore) Clear(ctx context.Context) error {
	return clearTables(ctx, ps.db)
}

func clearTables(ctx context.Context, db execer) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM daily_rentals; DELETE FROM daily_rentals_columns"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the stored table with t in a single transaction. On any
// failure the previously stored table is left untouched.
func (ps *PostgresStore) Write(ctx context.Context, t *models.Table) error {
	if t.IsEmpty() {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	if err := writeColumns(ctx, tx, t.Columns); err != nil {
		return err
	}

	const batchSize = 100
	for i := 0; i < len(t.Records); i += batchSize {
		end := i + batchSize
		if end > len(t.Records) {
			end = len(t.Records)
		}
		if err := insertBatch(ctx, tx, t.Records[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	ps.logger.Info("[postgres] Stored %d daily records", t.Len())
	return nil
}

func writeColumns(ctx context.Context, db execer, cols []string) error {
	if len(cols) == 0 {
		return nil
	}
	valueStrings := make([]string, 0, len(cols))
	valueArgs := make([]interface{}, 0, len(cols)*2)
	for i, c := range cols {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d)", 2*i+1, 2*i+2))
		valueArgs = append(valueArgs, i, c)
	}
	query := "INSERT INTO daily_rentals_columns (position, name) VALUES " + strings.Join(valueStrings, ",")
	if _, err := db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: write column order: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, db execer, batch []models.DailyRecord) error {
	const fields = 11
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*fields)

	for idx, r := range batch {
		covariates, err := encodeCovariates(r.Covariates)
		if err != nil {
			return err
		}
		base := idx * fields
		placeholders := make([]string, fields)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", base+k+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.Date, r.Count, int(r.Weekday), r.WorkingDay, int(r.Weather), int(r.Season),
			r.Year, int(r.Month), r.Holiday, r.YearMonth, string(covariates))
	}

	query := fmt.Sprintf(`
		INSERT INTO daily_rentals (date, count, weekday, workingday, weather_condition,
			season, year, month, holiday, year_month, covariates)
		VALUES %s
		ON CONFLICT (date) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// Load reads the stored table ordered by date.
func (ps *PostgresStore) Load(ctx context.Context) (*models.Table, error) {
	cols, err := ps.columns(ctx)
	if err != nil {
		return nil, &LoadError{Source: ps.Name(), Err: err}
	}

	rows, err := ps.db.QueryContext(ctx, `
		SELECT date, count, weekday, workingday, weather_condition, season,
		       year, month, holiday, year_month, covariates
		FROM daily_rentals
		ORDER BY date
	`)
	if err != nil {
		return nil, &LoadError{Source: ps.Name(), Err: fmt.Errorf("postgres: fetch all: %w", err)}
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var (
			r                               models.DailyRecord
			date                            time.Time
			weekday, weather, season, month int
			covariates                      []byte
		)
		if err := rows.Scan(&date, &r.Count, &weekday, &r.WorkingDay, &weather, &season,
			&r.Year, &month, &r.Holiday, &r.YearMonth, &covariates); err != nil {
			return nil, &LoadError{Source: ps.Name(), Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		r.Date = models.NormalizeDate(date)
		if col, err := decodeCodes(&r, weekday, weather, season, month); err != nil {
			return nil, &LoadError{Source: ps.Name(), Line: len(records) + 1, Column: col, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		if r.Covariates, err = decodeCovariates(covariates); err != nil {
			return nil, &LoadError{Source: ps.Name(), Line: len(records) + 1, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: ps.Name(), Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: ps.Name(), Err: fmt.Errorf("%w: daily_rentals is empty, run import first", ErrSourceNotFound)}
	}
	if len(cols) == 0 {
		cols = defaultColumns(records)
	}

	ps.logger.Info("[postgres] Loaded %d daily records", len(records))
	return &models.Table{Columns: cols, Records: records}, nil
}

// decodeCodes checks the stored categorical codes the same way the CSV
// reader does. It returns the offending column on failure.
func decodeCodes(r *models.DailyRecord, weekday, weather, season, month int) (string, error) {
	var err error
	if r.Weekday, err = models.ParseWeekday(strconv.Itoa(weekday)); err != nil {
		return models.ColWeekday, err
	}
	if r.Weather, err = models.ParseWeatherCondition(strconv.Itoa(weather)); err != nil {
		return models.ColWeatherCondition, err
	}
	if r.Season, err = models.ParseSeason(strconv.Itoa(season)); err != nil {
		return models.ColSeason, err
	}
	if r.Month, err = models.ParseMonth(strconv.Itoa(month)); err != nil {
		return models.ColMonth, err
	}
	return "", nil
}

func (ps *PostgresStore) columns(ctx context.Context) ([]string, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT name FROM daily_rentals_columns ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch column order: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("postgres: scan column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// encodeCovariates stores NaN as JSON null.
func encodeCovariates(m map[string]float64) ([]byte, error) {
	out := make(map[string]*float64, len(m))
	for k, v := range m {
		v := v
		if math.IsNaN(v) {
			out[k] = nil
			continue
		}
		out[k] = &v
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode covariates: %w", err)
	}
	return b, nil
}

func decodeCovariates(b []byte) (map[string]float64, error) {
	var raw map[string]*float64
	if len(b) > 0 {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = math.NaN()
			continue
		}
		out[k] = *v
	}
	return out, nil
}

// defaultColumns rebuilds a column order when none was stored: the required
// columns followed by covariates sorted by name.
func defaultColumns(records []models.DailyRecord) []string {
	cols := append([]string(nil), models.RequiredColumns...)
	seen := make(map[string]bool)
	var extra []string
	for _, r := range records {
		for k := range r.Covariates {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}
