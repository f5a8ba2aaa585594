package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

// Repo serves comparable listings from a local SQLite file. Used for
// single-node deployments and local development where a Postgres reference
// store is overkill.
type Repo struct {
	db *sql.DB
}

// Open connects to the listing database and ensures its schema exists.
func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS comparable_listing (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			make TEXT NOT NULL,
			model TEXT NOT NULL,
			year INTEGER NOT NULL,
			price REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comparable_make_model_year
			ON comparable_listing (make, model, year);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repo) ListComparables(ctx context.Context, filter ports.ComparableFilter) ([]domain.ComparableListing, error) {
	query := `
		SELECT make, model, year, price
		FROM comparable_listing
		WHERE make = ? AND model = ? AND year BETWEEN ? AND ?
		ORDER BY year DESC, price
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query,
		filter.Make, filter.Model, filter.YearMin, filter.YearMax, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list comparables: %w", err)
	}
	defer rows.Close()

	var listings []domain.ComparableListing
	for rows.Next() {
		var l domain.ComparableListing
		if err := rows.Scan(&l.Make, &l.Model, &l.Year, &l.Price); err != nil {
			return nil, fmt.Errorf("scan comparable: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comparables: %w", err)
	}
	return listings, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert adds one reference listing. Exposed for seeding and tests; the
// prediction engine itself never writes.
func (r *Repo) Insert(ctx context.Context, l domain.ComparableListing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comparable_listing (make, model, year, price) VALUES (?, ?, ?, ?)`,
		l.Make, l.Model, l.Year, l.Price)
	if err != nil {
		return fmt.Errorf("insert comparable: %w", err)
	}
	return nil
}
