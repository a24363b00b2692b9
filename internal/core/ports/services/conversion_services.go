package services

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// ConversionSvcFacade exposes currency conversion backed by the provider chain.
type ConversionSvcFacade interface {
	// Convert converts an amount between two currencies, using the configured
	// providers with fallback and caching.
	Convert(ctx context.Context, companyID string, req dto.ConvertRequest) (*domain.ConversionResult, error)

	// GetRate resolves the current rate for a currency pair without
	// converting an amount.
	GetRate(ctx context.Context, fromCurrency, toCurrency string) (*providers.Rate, error)

	// RefreshProviders forces every provider to re-fetch its data. The
	// returned map holds per-provider errors keyed by name.
	RefreshProviders(ctx context.Context) map[string]error

	// ProvidersStatus reports the health of each configured provider.
	ProvidersStatus(ctx context.Context) []providers.ProviderStatus

	// CacheStats returns cumulative conversion cache hit and miss counters.
	CacheStats() (hits, misses int64)
}
