// Package fxproviders implements the external exchange rate sources behind
// the providers.RateProvider port: the BCV website scraper, the Binance
// ticker client and a static table for development and offline operation.
//
// All providers quote against the VES anchor. A provider's table stores how
// many VES one unit of the foreign currency is worth; rates for arbitrary
// pairs are derived from the table by reciprocal and triangulation.
package fxproviders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

const anchorCurrency = "VES"

// ratePrecision bounds derived rates (reciprocals, cross rates) so quotes
// stay within the storage precision of the rate columns.
const ratePrecision = 10

// historical reports whether at refers to a day before today. Every provider
// in this package only quotes live rates.
func historical(at *time.Time) bool {
	if at == nil {
		return false
	}
	y, m, d := time.Now().UTC().Date()
	return at.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// deriveRate resolves from->to out of a VES-per-unit table. Returns false
// when the pair cannot be served from the table.
func deriveRate(table map[string]decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	one := decimal.NewFromInt(1)

	// Foreign -> anchor: the table value itself.
	if to == anchorCurrency {
		v, ok := table[from]
		if !ok || v.IsZero() {
			return decimal.Decimal{}, false
		}
		return v, true
	}

	// Anchor -> foreign: reciprocal of the table value.
	if from == anchorCurrency {
		v, ok := table[to]
		if !ok || v.IsZero() {
			return decimal.Decimal{}, false
		}
		return one.DivRound(v, ratePrecision), true
	}

	// Foreign -> foreign: triangulate through the anchor.
	fv, fok := table[from]
	tv, tok := table[to]
	if !fok || !tok || tv.IsZero() {
		return decimal.Decimal{}, false
	}
	return fv.DivRound(tv, ratePrecision), true
}

// StaticProvider serves rates from a fixed in-memory table. It backs
// development environments and acts as the last-resort fallback when the
// live providers are down.
type StaticProvider struct {
	mu          sync.RWMutex
	rates       map[string]decimal.Decimal // VES per one unit of key
	lastRefresh *time.Time
}

// DefaultStaticRates returns the built-in rate table.
func DefaultStaticRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"USD":  decimal.RequireFromString("36.50"),
		"EUR":  decimal.RequireFromString("39.80"),
		"CNY":  decimal.RequireFromString("5.10"),
		"BRL":  decimal.RequireFromString("7.30"),
		"USDT": decimal.RequireFromString("36.80"),
	}
}

// NewStaticProvider builds a static provider. A nil table falls back to the
// built-in rates.
func NewStaticProvider(rates map[string]decimal.Decimal) *StaticProvider {
	if rates == nil {
		rates = DefaultStaticRates()
	}
	now := time.Now()
	return &StaticProvider{rates: rates, lastRefresh: &now}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*providers.Rate, error) {
	if historical(at) {
		return nil, fmt.Errorf("static provider has no historical rates: %w", apperrors.ErrProviderUnavailable)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := deriveRate(p.rates, fromCurrency, toCurrency)
	if !ok {
		return nil, fmt.Errorf("static provider has no rate for %s->%s: %w", fromCurrency, toCurrency, apperrors.ErrCurrencyUnsupported)
	}
	return &providers.Rate{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Value:        value,
		Provider:     p.Name(),
		QuotedAt:     time.Now(),
	}, nil
}

func (p *StaticProvider) SupportedCurrencies() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	codes := make([]string, 0, len(p.rates)+1)
	for code := range p.rates {
		codes = append(codes, code)
	}
	codes = append(codes, anchorCurrency)
	return codes
}

// SetRate replaces one table entry. Used by tests and admin tooling.
func (p *StaticProvider) SetRate(code string, value decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates[code] = value
}

func (p *StaticProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.lastRefresh = &now
	return nil
}

func (p *StaticProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *StaticProvider) LastUpdateTime() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}
