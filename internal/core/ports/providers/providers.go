// Package providers defines the ports through which the core obtains
// exchange rates from external sources.
package providers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a quote produced by a provider.
type Rate struct {
	FromCurrency string
	ToCurrency   string
	Value        decimal.Decimal
	Provider     string
	QuotedAt     time.Time
}

// ProviderStatus describes one provider's health for diagnostics endpoints.
type ProviderStatus struct {
	Name       string     `json:"name"`
	Available  bool       `json:"available"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
	Currencies []string   `json:"currencies"`
	LastError  string     `json:"last_error,omitempty"`
}

// RateProvider is implemented by each external rate source (central bank
// scraper, exchange API, static table). Implementations must be safe for
// concurrent use.
type RateProvider interface {
	// Name returns the provider's stable identifier.
	Name() string

	// GetRate retrieves the rate for converting one unit of fromCurrency into
	// toCurrency. A non-nil at asks for the rate on that day; sources that
	// only expose live rates reject historical dates. Returns
	// apperrors.ErrCurrencyUnsupported when the pair is outside the
	// provider's coverage and apperrors.ErrProviderUnavailable when the
	// source cannot be reached or cannot serve the requested date.
	GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*Rate, error)

	// SupportedCurrencies returns the codes the provider can quote.
	SupportedCurrencies() []string

	// Refresh forces a re-fetch from the underlying source, bypassing any
	// provider-local cache.
	Refresh(ctx context.Context) error

	// IsAvailable reports whether the provider considers itself usable.
	IsAvailable(ctx context.Context) bool

	// LastUpdateTime returns when the provider last obtained fresh data, or
	// nil if it never has.
	LastUpdateTime() *time.Time
}

// RateSource is the interface the conversion service consumes. A manager
// implementation multiplexes several RateProviders behind it.
type RateSource interface {
	// GetRate resolves a rate by consulting providers in priority order.
	GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*Rate, error)

	// RefreshAll refreshes every provider, returning per-provider errors
	// keyed by provider name. An empty map means every refresh succeeded.
	RefreshAll(ctx context.Context) map[string]error

	// ProvidersStatus reports the health of each configured provider.
	ProvidersStatus(ctx context.Context) []ProviderStatus
}
