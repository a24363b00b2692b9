package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/utils/ratecache"
)

// amountPrecision quantizes converted amounts. Rates keep their full
// precision; only amounts are rounded.
const amountPrecision = 2

// ConversionService converts amounts between currencies using the provider
// chain, with a TTL cache in front of it.
type ConversionService struct {
	BaseService
	source providers.RateSource
	cache  *ratecache.Cache
}

// NewConversionService creates a new ConversionService. A nil cache gets the
// default TTL and size bound.
func NewConversionService(source providers.RateSource, cache *ratecache.Cache) *ConversionService {
	if cache == nil {
		cache = ratecache.New(ratecache.DefaultTTL, ratecache.DefaultMaxEntries)
	}
	return &ConversionService{source: source, cache: cache}
}

// Convert converts an amount between two currencies.
func (s *ConversionService) Convert(ctx context.Context, companyID string, req dto.ConvertRequest) (*domain.ConversionResult, error) {
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
	}

	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	// Identity conversions never touch providers or the cache.
	if from == to {
		return &domain.ConversionResult{
			OriginalAmount:   req.Amount,
			OriginalCurrency: from,
			ConvertedAmount:  req.Amount.Round(amountPrecision),
			TargetCurrency:   to,
			RateUsed:         decimal.NewFromInt(1),
			Provider:         "direct",
			ConvertedAt:      time.Now(),
		}, nil
	}

	rate, provider, err := s.resolveRate(ctx, from, to, req.Date)
	if err != nil {
		return nil, err
	}

	return &domain.ConversionResult{
		OriginalAmount:   req.Amount,
		OriginalCurrency: from,
		ConvertedAmount:  req.Amount.Mul(rate).Round(amountPrecision),
		TargetCurrency:   to,
		RateUsed:         rate,
		Provider:         provider,
		ConvertedAt:      time.Now(),
	}, nil
}

// resolveRate answers from the cache when possible and asks the provider
// chain otherwise. The provider call happens outside any cache lock.
func (s *ConversionService) resolveRate(ctx context.Context, from, to string, at *time.Time) (decimal.Decimal, string, error) {
	key := ratecache.Key(from, to, at)

	if rate, provider, ok := s.cache.Get(key); ok {
		s.LogDebug(ctx, "conversion cache hit", slog.String("from", from), slog.String("to", to))
		return rate, provider, nil
	}

	quote, err := s.source.GetRate(ctx, from, to, at)
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("exchange rate unavailable for %s->%s: %w", from, to, err)
	}

	s.cache.Put(key, quote.Value, quote.Provider)
	return quote.Value, quote.Provider, nil
}

// GetRate resolves the current rate for a pair without converting.
func (s *ConversionService) GetRate(ctx context.Context, fromCurrency, toCurrency string) (*providers.Rate, error) {
	from := strings.ToUpper(fromCurrency)
	to := strings.ToUpper(toCurrency)

	if from == to {
		return &providers.Rate{
			FromCurrency: from,
			ToCurrency:   to,
			Value:        decimal.NewFromInt(1),
			Provider:     "direct",
			QuotedAt:     time.Now(),
		}, nil
	}

	rate, provider, err := s.resolveRate(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}
	return &providers.Rate{
		FromCurrency: from,
		ToCurrency:   to,
		Value:        rate,
		Provider:     provider,
		QuotedAt:     time.Now(),
	}, nil
}

// RefreshProviders forces every provider to re-fetch and clears the
// conversion cache so stale quotes do not outlive the refresh.
func (s *ConversionService) RefreshProviders(ctx context.Context) map[string]error {
	errs := s.source.RefreshAll(ctx)
	s.cache.Clear()
	return errs
}

// ProvidersStatus reports the health of each configured provider.
func (s *ConversionService) ProvidersStatus(ctx context.Context) []providers.ProviderStatus {
	return s.source.ProvidersStatus(ctx)
}

// CacheStats returns cumulative conversion cache hit and miss counters.
func (s *ConversionService) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}
