package ports

import (
	"context"

	"carwiseiq/internal/core/domain"
)

// ComparableFilter selects reference listings for calibration.
type ComparableFilter struct {
	Make    string
	Model   string
	YearMin int
	YearMax int
	Limit   int
}

// ComparableRepository reads the external reference dataset of market
// listings. This core never writes to it.
type ComparableRepository interface {
	ListComparables(ctx context.Context, filter ComparableFilter) ([]domain.ComparableListing, error)
	Ping(ctx context.Context) error
}
