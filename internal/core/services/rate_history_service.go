package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/utils"
)

// variationPrecision quantizes the relative change percentage.
const variationPrecision = 4

// RateHistoryService owns every change to a currency's live rate and its
// append-only audit trail. No other code path mutates rates.
type RateHistoryService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	historyRepo  portsrepo.RateHistoryRepositoryFacade
	analytics    *utils.PosthogClientWrapper
}

// NewRateHistoryService creates a new RateHistoryService. analytics may be
// an uninitialized wrapper; events are then dropped silently.
func NewRateHistoryService(currencyRepo portsrepo.CurrencyRepositoryFacade, historyRepo portsrepo.RateHistoryRepositoryFacade, analytics *utils.PosthogClientWrapper) *RateHistoryService {
	return &RateHistoryService{
		currencyRepo: currencyRepo,
		historyRepo:  historyRepo,
		analytics:    analytics,
	}
}

// UpdateRate applies a new exchange rate and records the change. The live
// rate write and the history append happen in one repository transaction
// under a per-currency row lock, so the history never diverges from the
// applied rates.
func (s *RateHistoryService) UpdateRate(ctx context.Context, companyID, currencyID string, req dto.UpdateRateRequest, updaterUserID string) (*domain.Currency, *domain.RateHistoryEntry, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load currency for rate update: %w", err)
	}
	if currency.IsBase {
		return nil, nil, fmt.Errorf("%w: the base currency rate is fixed at 1", apperrors.ErrValidation)
	}

	oldRate := currency.ExchangeRate
	difference := req.Rate.Sub(oldRate)

	var variation *decimal.Decimal
	if !oldRate.IsZero() {
		v := difference.Div(oldRate).Mul(decimal.NewFromInt(100)).Round(variationPrecision)
		variation = &v
	}

	kind := domain.RateChangeManual
	if req.Kind != "" {
		kind = domain.RateChangeKind(req.Kind)
	}

	entry := domain.RateHistoryEntry{
		HistoryID:        uuid.NewString(),
		CurrencyID:       currencyID,
		CompanyID:        companyID,
		OldRate:          oldRate,
		NewRate:          req.Rate,
		Difference:       difference,
		VariationPercent: variation,
		ChangedBy:        updaterUserID,
		ChangeKind:       kind,
		ChangeSource:     req.Source,
		ChangeReason:     req.Reason,
		ProviderMetadata: req.ProviderMetadata,
		ChangedAt:        time.Now(),
	}

	if err := s.currencyRepo.UpdateRateWithHistory(ctx, companyID, currencyID, req.Rate, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to apply rate update: %w", err)
	}

	// Reload so callers see the applied rate and recomputed factor.
	updated, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload currency after rate update: %w", err)
	}

	s.LogInfo(ctx, "rate updated",
		slog.String("currency_id", currencyID),
		slog.String("code", updated.Code),
		slog.String("old_rate", oldRate.String()),
		slog.String("new_rate", req.Rate.String()),
		slog.String("kind", string(kind)))

	if s.analytics != nil {
		s.analytics.CaptureRateChange(updaterUserID, updated.Code, oldRate.String(), req.Rate.String(), req.Source)
	}

	return updated, &entry, nil
}

// ListRateHistory retrieves history entries for a currency, newest first.
func (s *RateHistoryService) ListRateHistory(ctx context.Context, companyID, currencyID string, limit int, nextToken string) ([]domain.RateHistoryEntry, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, token, err := s.historyRepo.ListRateHistory(ctx, companyID, currencyID, limit, nextToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list rate history in service: %w", err)
	}
	return entries, token, nil
}

// GetRateAt retrieves the rate that was in effect at the given moment.
func (s *RateHistoryService) GetRateAt(ctx context.Context, companyID, currencyID string, at time.Time) (*domain.RateHistoryEntry, error) {
	entry, err := s.historyRepo.FindRateAt(ctx, companyID, currencyID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve historical rate in service: %w", err)
	}
	return entry, nil
}

// GetCurrencyStatistics aggregates the history entries in [from, to].
func (s *RateHistoryService) GetCurrencyStatistics(ctx context.Context, companyID, currencyID string, from, to time.Time) (*domain.CurrencyStatistics, error) {
	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency for statistics: %w", err)
	}

	entries, err := s.historyRepo.ListRateHistoryInRange(ctx, companyID, currencyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for statistics: %w", err)
	}

	stats := domain.CurrencyStatistics{
		CurrencyCode: currency.Code,
		CurrencyName: currency.Name,
		CurrentRate:  currency.ExchangeRate,
		IsBase:       currency.IsBase,
		TotalChanges: len(entries),
	}
	if len(entries) == 0 {
		return &stats, nil
	}

	first := entries[0]
	last := entries[len(entries)-1]
	stats.FirstChange = &first
	stats.LastChange = &last

	var sum decimal.Decimal
	var counted int
	for _, e := range entries {
		if e.VariationPercent == nil {
			continue
		}
		v := *e.VariationPercent
		sum = sum.Add(v)
		if counted == 0 {
			stats.MinVariationPct = v
			stats.MaxVariationPct = v
		} else {
			if v.LessThan(stats.MinVariationPct) {
				stats.MinVariationPct = v
			}
			if v.GreaterThan(stats.MaxVariationPct) {
				stats.MaxVariationPct = v
			}
		}
		counted++
	}
	if counted > 0 {
		stats.AvgVariationPct = sum.DivRound(decimal.NewFromInt(int64(counted)), variationPrecision)
	}

	return &stats, nil
}
