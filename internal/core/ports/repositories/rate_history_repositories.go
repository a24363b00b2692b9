package repositories

import (
	"context"
	"time"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// RateHistoryReader defines read operations for rate change history
type RateHistoryReader interface {
	// ListRateHistory retrieves history entries for a currency, newest first.
	// nextToken is the opaque pagination cursor from a previous page; empty for
	// the first page.
	ListRateHistory(ctx context.Context, companyID, currencyID string, limit int, nextToken string) ([]domain.RateHistoryEntry, string, error)

	// ListRateHistoryInRange retrieves the entries whose change time falls
	// inside [from, to], oldest first, for statistics computation.
	ListRateHistoryInRange(ctx context.Context, companyID, currencyID string, from, to time.Time) ([]domain.RateHistoryEntry, error)

	// FindRateAt retrieves the rate that was in effect at the given moment, or
	// nil when the history starts after it.
	FindRateAt(ctx context.Context, companyID, currencyID string, at time.Time) (*domain.RateHistoryEntry, error)
}

// RateHistoryWriter defines write operations for rate change history.
// History is append-only; there are no update or delete operations.
type RateHistoryWriter interface {
	// SaveRateHistoryEntry appends a history entry.
	SaveRateHistoryEntry(ctx context.Context, entry domain.RateHistoryEntry) error
}

// RateHistoryRepositoryFacade combines all rate history repository interfaces
type RateHistoryRepositoryFacade interface {
	RateHistoryReader
	RateHistoryWriter
}
