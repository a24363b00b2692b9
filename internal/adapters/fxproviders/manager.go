package fxproviders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

// DefaultProviderTimeout bounds each individual provider call made by the
// manager.
const DefaultProviderTimeout = 30 * time.Second

// Manager multiplexes several providers behind the RateSource port. Providers
// are consulted in the order given; a failing provider is absorbed and the
// next one is tried.
type Manager struct {
	providers []providers.RateProvider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewManager builds a manager over the given providers in priority order.
func NewManager(provs []providers.RateProvider, timeout time.Duration, logger *slog.Logger) (*Manager, error) {
	if len(provs) == 0 {
		return nil, errors.New("no exchange rate providers configured")
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Manager{providers: provs, timeout: timeout, logger: logger}, nil
}

// GetRate tries each provider in order and returns the first quote. When
// every provider fails or declines, the last cause is wrapped under
// apperrors.ErrNoApplicableRate.
func (m *Manager) GetRate(ctx context.Context, fromCurrency, toCurrency string, at *time.Time) (*providers.Rate, error) {
	var lastErr error

	for _, p := range m.providers {
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		rate, err := p.GetRate(callCtx, fromCurrency, toCurrency, at)
		cancel()

		if err == nil {
			m.logger.Debug("resolved rate",
				slog.String("from", fromCurrency),
				slog.String("to", toCurrency),
				slog.String("rate", rate.Value.String()),
				slog.String("provider", p.Name()))
			return rate, nil
		}

		lastErr = err
		m.logger.Warn("provider failed, trying next",
			slog.String("provider", p.Name()),
			slog.String("from", fromCurrency),
			slog.String("to", toCurrency),
			slog.String("error", err.Error()))

		// A cancelled parent context is not a provider problem; stop early.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("all providers failed for %s->%s: %w (last: %v)", fromCurrency, toCurrency, apperrors.ErrNoApplicableRate, lastErr)
}

// RefreshAll refreshes every provider and collects per-provider errors.
func (m *Manager) RefreshAll(ctx context.Context) map[string]error {
	errs := make(map[string]error)
	for _, p := range m.providers {
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		if err := p.Refresh(callCtx); err != nil {
			errs[p.Name()] = err
			m.logger.Warn("provider refresh failed", slog.String("provider", p.Name()), slog.String("error", err.Error()))
		}
		cancel()
	}
	return errs
}

// ProvidersStatus reports each provider's availability and coverage.
func (m *Manager) ProvidersStatus(ctx context.Context) []providers.ProviderStatus {
	statuses := make([]providers.ProviderStatus, 0, len(m.providers))
	for _, p := range m.providers {
		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		status := providers.ProviderStatus{
			Name:       p.Name(),
			Available:  p.IsAvailable(callCtx),
			LastUpdate: p.LastUpdateTime(),
			Currencies: p.SupportedCurrencies(),
		}
		cancel()

		if le, ok := p.(interface{ LastError() error }); ok {
			if err := le.LastError(); err != nil {
				status.LastError = err.Error()
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Providers exposes the configured chain, in priority order.
func (m *Manager) Providers() []providers.RateProvider {
	return m.providers
}
