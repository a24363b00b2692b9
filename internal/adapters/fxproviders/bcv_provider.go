package fxproviders

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

const bcvURL = "https://www.bcv.org.ve/"

// BCV publishes each currency inside a div with a stable element id.
var bcvSelectors = map[string]string{
	"USD": "#dolar",
	"EUR": "#euro",
	"CNY": "#yuan",
	"TRY": "#lira",
	"RUB": "#rublo",
}

// BCVProvider scrapes the official exchange rates off the central bank's
// homepage. Scraped rates are held for a TTL so the site is not hit on
// every conversion.
type BCVProvider struct {
	client *http.Client
	logger *slog.Logger
	ttl    time.Duration

	mu          sync.RWMutex
	rates       map[string]decimal.Decimal
	lastRefresh *time.Time
	lastErr     error
}

// NewBCVProvider builds the scraper. verifyTLS should stay enabled outside
// of development; the BCV certificate chain is frequently broken, so
// operators can turn verification off via configuration.
func NewBCVProvider(ttl time.Duration, verifyTLS bool, logger *slog.Logger) *BCVProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	transport := &http.Transport{}
	if !verifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &BCVProvider{
		client: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		logger: logger,
		ttl:    ttl,
		rates:  make(map[string]decimal.Decimal),
	}
}

func (p *BCVProvider) Name() string { return "bcv" }

func (p *BCVProvider) GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*providers.Rate, error) {
	if historical(at) {
		return nil, fmt.Errorf("bcv only exposes the current rate: %w", apperrors.ErrProviderUnavailable)
	}

	if err := p.refreshIfStale(ctx); err != nil {
		p.mu.RLock()
		empty := len(p.rates) == 0
		p.mu.RUnlock()
		// A stale table still beats no answer; fail only when empty.
		if empty {
			return nil, err
		}
		p.logger.Warn("bcv refresh failed, serving stale rates", slog.String("error", err.Error()))
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := deriveRate(p.rates, fromCurrency, toCurrency)
	if !ok {
		return nil, fmt.Errorf("bcv has no rate for %s->%s: %w", fromCurrency, toCurrency, apperrors.ErrCurrencyUnsupported)
	}
	return &providers.Rate{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Value:        value,
		Provider:     p.Name(),
		QuotedAt:     time.Now(),
	}, nil
}

func (p *BCVProvider) SupportedCurrencies() []string {
	codes := make([]string, 0, len(bcvSelectors)+1)
	for code := range bcvSelectors {
		codes = append(codes, code)
	}
	codes = append(codes, anchorCurrency)
	return codes
}

func (p *BCVProvider) refreshIfStale(ctx context.Context) error {
	p.mu.RLock()
	last := p.lastRefresh
	p.mu.RUnlock()

	if last != nil && time.Since(*last) <= p.ttl {
		return nil
	}
	return p.Refresh(ctx)
}

func (p *BCVProvider) Refresh(ctx context.Context) error {
	doc, err := p.fetchDocument(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	parsed := make(map[string]decimal.Decimal)
	for code, selector := range bcvSelectors {
		text := strings.TrimSpace(doc.Find(selector + " strong").First().Text())
		if text == "" {
			continue
		}
		value, perr := parseBCVNumber(text)
		if perr != nil {
			p.logger.Warn("failed to parse bcv rate", slog.String("currency", code), slog.String("raw", text), slog.String("error", perr.Error()))
			continue
		}
		parsed[code] = value
	}

	if len(parsed) == 0 {
		err := fmt.Errorf("no rates found on bcv page: %w", apperrors.ErrProviderUnavailable)
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	now := time.Now()
	p.mu.Lock()
	for code, value := range parsed {
		p.rates[code] = value
	}
	p.lastRefresh = &now
	p.lastErr = nil
	p.mu.Unlock()

	p.logger.Info("refreshed bcv rates", slog.Int("count", len(parsed)))
	return nil
}

func (p *BCVProvider) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bcvURL, nil)
	if err != nil {
		return nil, err
	}
	// The site rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach bcv: %w", apperrors.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bcv returned status %d: %w", resp.StatusCode, apperrors.ErrProviderUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot parse bcv page: %w", apperrors.ErrProviderUnavailable)
	}
	return doc, nil
}

// parseBCVNumber handles the Venezuelan number format ("36,50" or
// "1.234,56") the site publishes.
func parseBCVNumber(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	return decimal.NewFromString(cleaned)
}

func (p *BCVProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, bcvURL, nil)
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

func (p *BCVProvider) LastUpdateTime() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

// LastError returns the most recent refresh failure, if the latest refresh
// did not succeed.
func (p *BCVProvider) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
