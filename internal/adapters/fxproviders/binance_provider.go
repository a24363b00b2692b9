package fxproviders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

const (
	binanceAPIURL     = "https://api.binance.com/api/v3"
	binanceUSDTSymbol = "USDTVES"
)

// BinanceProvider quotes the USDT/VES pair off the public Binance ticker.
// It tracks the parallel market, which is why it sits behind the official
// source in the default fallback order.
type BinanceProvider struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	ttl     time.Duration

	mu          sync.RWMutex
	usdtVES     decimal.Decimal
	lastRefresh *time.Time
	lastErr     error
}

// NewBinanceProvider builds the ticker client. Crypto moves fast, so the
// default TTL is five minutes.
func NewBinanceProvider(ttl time.Duration, logger *slog.Logger) *BinanceProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BinanceProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		baseURL: binanceAPIURL,
		ttl:     ttl,
	}
}

func (p *BinanceProvider) Name() string { return "binance" }

func (p *BinanceProvider) GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*providers.Rate, error) {
	if historical(at) {
		return nil, fmt.Errorf("binance only exposes the current rate: %w", apperrors.ErrProviderUnavailable)
	}

	if err := p.refreshIfStale(ctx); err != nil {
		p.mu.RLock()
		empty := p.usdtVES.IsZero()
		p.mu.RUnlock()
		if empty {
			return nil, err
		}
		p.logger.Warn("binance refresh failed, serving stale rate", slog.String("error", err.Error()))
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	table := map[string]decimal.Decimal{"USDT": p.usdtVES}
	value, ok := deriveRate(table, fromCurrency, toCurrency)
	if !ok {
		return nil, fmt.Errorf("binance has no rate for %s->%s: %w", fromCurrency, toCurrency, apperrors.ErrCurrencyUnsupported)
	}
	return &providers.Rate{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Value:        value,
		Provider:     p.Name(),
		QuotedAt:     time.Now(),
	}, nil
}

func (p *BinanceProvider) SupportedCurrencies() []string {
	return []string{"USDT", anchorCurrency}
}

func (p *BinanceProvider) refreshIfStale(ctx context.Context) error {
	p.mu.RLock()
	last := p.lastRefresh
	p.mu.RUnlock()

	if last != nil && time.Since(*last) <= p.ttl {
		return nil
	}
	return p.Refresh(ctx)
}

func (p *BinanceProvider) Refresh(ctx context.Context) error {
	url := fmt.Sprintf("%s/ticker/price?symbol=%s", p.baseURL, binanceUSDTSymbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.fail(fmt.Errorf("cannot reach binance: %w", apperrors.ErrProviderUnavailable))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.fail(fmt.Errorf("binance returned status %d: %w", resp.StatusCode, apperrors.ErrProviderUnavailable))
	}

	var ticker struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return p.fail(fmt.Errorf("cannot decode binance ticker: %w", apperrors.ErrProviderUnavailable))
	}
	if ticker.Price.LessThanOrEqual(decimal.Zero) {
		return p.fail(fmt.Errorf("binance returned non-positive price %s: %w", ticker.Price, apperrors.ErrProviderUnavailable))
	}

	now := time.Now()
	p.mu.Lock()
	p.usdtVES = ticker.Price
	p.lastRefresh = &now
	p.lastErr = nil
	p.mu.Unlock()

	p.logger.Info("refreshed binance rate", slog.String("symbol", binanceUSDTSymbol), slog.String("price", ticker.Price.String()))
	return nil
}

func (p *BinanceProvider) fail(err error) error {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	return err
}

func (p *BinanceProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/ping", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *BinanceProvider) LastUpdateTime() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

// LastError returns the most recent refresh failure.
func (p *BinanceProvider) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
