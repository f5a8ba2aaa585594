package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

type comparableRepo struct {
	pool *pgxpool.Pool
}

// NewComparableRepository reads the reference listing dataset from
// Postgres. The engine only ever reads this table.
func NewComparableRepository(pool *pgxpool.Pool) ports.ComparableRepository {
	return &comparableRepo{pool: pool}
}

func (r *comparableRepo) ListComparables(ctx context.Context, filter ports.ComparableFilter) ([]domain.ComparableListing, error) {
	query := `
		SELECT make, model, year, price
		FROM comparable_listing
		WHERE make = $1 AND model = $2 AND year BETWEEN $3 AND $4
		ORDER BY year DESC, price
		LIMIT $5
	`
	rows, err := r.pool.Query(ctx, query,
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

func (r *comparableRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
