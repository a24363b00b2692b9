package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByID retrieves a specific currency by its id, scoped to a company.
	FindCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error)

	// FindCurrencyByCode retrieves a specific currency by its ISO code, scoped to a company.
	FindCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error)

	// FindBaseCurrency retrieves the company's base currency, if one is flagged.
	FindBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error)

	// ListCurrencies retrieves currencies for a company. When activeOnly is set,
	// inactive currencies are filtered out.
	ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateCurrency persists changes to an existing currency.
	UpdateCurrency(ctx context.Context, currency domain.Currency) error

	// DeactivateCurrency soft-deletes a currency by clearing its active flag.
	DeactivateCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error

	// SetBaseCurrency atomically clears the previous base flag and sets the new
	// one so at most one base currency exists per company at any time.
	SetBaseCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error

	// UpdateRateWithHistory applies a new exchange rate and appends the matching
	// history entry within a single transaction. The currency row is locked for
	// the duration so concurrent updates to the same currency serialize.
	UpdateRateWithHistory(ctx context.Context, companyID, currencyID string, newRate decimal.Decimal, entry domain.RateHistoryEntry) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
// This is a facade for clients that need access to all operations
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
