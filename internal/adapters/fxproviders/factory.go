package fxproviders

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

// FactoryConfig carries the knobs each provider constructor needs.
type FactoryConfig struct {
	BCVCacheTTL     time.Duration
	BinanceCacheTTL time.Duration
	VerifyTLS       bool
}

// NewProvider builds a single provider by name. Known names are "bcv",
// "binance" and "static".
func NewProvider(name string, cfg FactoryConfig, logger *slog.Logger) (providers.RateProvider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bcv":
		return NewBCVProvider(cfg.BCVCacheTTL, cfg.VerifyTLS, logger), nil
	case "binance":
		return NewBinanceProvider(cfg.BinanceCacheTTL, logger), nil
	case "static":
		return NewStaticProvider(nil), nil
	default:
		return nil, fmt.Errorf("unknown exchange rate provider %q (available: bcv, binance, static)", name)
	}
}

// NewManagerFromNames builds the fallback chain from an ordered list of
// provider names. Unknown names are skipped with a warning; construction
// fails only when no provider at all could be built.
func NewManagerFromNames(names []string, cfg FactoryConfig, timeout time.Duration, logger *slog.Logger) (*Manager, error) {
	provs := make([]providers.RateProvider, 0, len(names))
	for _, name := range names {
		p, err := NewProvider(name, cfg, logger)
		if err != nil {
			logger.Warn("skipping exchange rate provider", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		provs = append(provs, p)
		logger.Info("added exchange rate provider", slog.String("name", p.Name()))
	}
	return NewManager(provs, timeout, logger)
}
