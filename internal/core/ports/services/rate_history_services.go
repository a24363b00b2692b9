package services

import (
	"context"
	"time"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// RateHistoryReaderSvc defines read operations over the rate change audit trail
type RateHistoryReaderSvc interface {
	// ListRateHistory retrieves history entries for a currency, newest first,
	// with cursor pagination.
	ListRateHistory(ctx context.Context, companyID, currencyID string, limit int, nextToken string) ([]domain.RateHistoryEntry, string, error)

	// GetRateAt retrieves the rate that was in effect at the given moment.
	GetRateAt(ctx context.Context, companyID, currencyID string, at time.Time) (*domain.RateHistoryEntry, error)

	// GetCurrencyStatistics computes min, max, average and volatility over the
	// history entries in [from, to].
	GetCurrencyStatistics(ctx context.Context, companyID, currencyID string, from, to time.Time) (*domain.CurrencyStatistics, error)
}

// RateHistoryWriterSvc defines the rate mutation operation. Every change to a
// live rate goes through here so the audit trail never misses an update.
type RateHistoryWriterSvc interface {
	// UpdateRate applies a new exchange rate to a currency and records the
	// change atomically. Returns the updated currency and the history entry.
	UpdateRate(ctx context.Context, companyID, currencyID string, req dto.UpdateRateRequest, updaterUserID string) (*domain.Currency, *domain.RateHistoryEntry, error)
}

// RateHistorySvcFacade combines the rate history service interfaces
type RateHistorySvcFacade interface {
	RateHistoryReaderSvc
	RateHistoryWriterSvc
}
