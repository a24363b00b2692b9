package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// UpdateRateRequest defines the data needed to change a currency's rate.
type UpdateRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
	// Kind is the change trigger: manual, scheduled or provider. Defaults to
	// manual when empty.
	Kind             string `json:"kind" binding:"omitempty,oneof=manual scheduled provider"`
	Source           string `json:"source"`
	Reason           string `json:"reason"`
	ProviderMetadata string `json:"providerMetadata"`
}

// RateHistoryResponse defines the data returned for one history entry.
type RateHistoryResponse struct {
	HistoryID  string `json:"historyID"`
	CurrencyID string `json:"currencyID"`

	OldRate          decimal.Decimal  `json:"oldRate"`
	NewRate          decimal.Decimal  `json:"newRate"`
	Difference       decimal.Decimal  `json:"difference"`
	VariationPercent *decimal.Decimal `json:"variationPercent,omitempty"`

	ChangedBy    string    `json:"changedBy"`
	ChangeKind   string    `json:"changeKind"`
	ChangeSource string    `json:"changeSource,omitempty"`
	ChangeReason string    `json:"changeReason,omitempty"`
	ChangedAt    time.Time `json:"changedAt"`
}

// ListRateHistoryResponse wraps a page of history entries with the cursor for
// the next page.
type ListRateHistoryResponse struct {
	Entries   []RateHistoryResponse `json:"entries"`
	NextToken string                `json:"nextToken,omitempty"`
}

// ToRateHistoryResponse converts a domain.RateHistoryEntry to its DTO
func ToRateHistoryResponse(e *domain.RateHistoryEntry) RateHistoryResponse {
	return RateHistoryResponse{
		HistoryID:        e.HistoryID,
		CurrencyID:       e.CurrencyID,
		OldRate:          e.OldRate,
		NewRate:          e.NewRate,
		Difference:       e.Difference,
		VariationPercent: e.VariationPercent,
		ChangedBy:        e.ChangedBy,
		ChangeKind:       string(e.ChangeKind),
		ChangeSource:     e.ChangeSource,
		ChangeReason:     e.ChangeReason,
		ChangedAt:        e.ChangedAt,
	}
}

// ToListRateHistoryResponse converts a page of entries plus its cursor.
func ToListRateHistoryResponse(entries []domain.RateHistoryEntry, nextToken string) ListRateHistoryResponse {
	res := make([]RateHistoryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToRateHistoryResponse(&e)
	}
	return ListRateHistoryResponse{Entries: res, NextToken: nextToken}
}

// CurrencyStatisticsResponse defines the aggregated history statistics.
type CurrencyStatisticsResponse struct {
	CurrencyCode    string               `json:"currencyCode"`
	CurrencyName    string               `json:"currencyName"`
	CurrentRate     decimal.Decimal      `json:"currentRate"`
	IsBase          bool                 `json:"isBase"`
	TotalChanges    int                  `json:"totalChanges"`
	AvgVariationPct decimal.Decimal      `json:"avgVariationPercent"`
	MaxVariationPct decimal.Decimal      `json:"maxVariationPercent"`
	MinVariationPct decimal.Decimal      `json:"minVariationPercent"`
	FirstChange     *RateHistoryResponse `json:"firstChange,omitempty"`
	LastChange      *RateHistoryResponse `json:"lastChange,omitempty"`
}

// ToCurrencyStatisticsResponse converts a domain.CurrencyStatistics to its DTO
func ToCurrencyStatisticsResponse(s *domain.CurrencyStatistics) CurrencyStatisticsResponse {
	resp := CurrencyStatisticsResponse{
		CurrencyCode:    s.CurrencyCode,
		CurrencyName:    s.CurrencyName,
		CurrentRate:     s.CurrentRate,
		IsBase:          s.IsBase,
		TotalChanges:    s.TotalChanges,
		AvgVariationPct: s.AvgVariationPct,
		MaxVariationPct: s.MaxVariationPct,
		MinVariationPct: s.MinVariationPct,
	}
	if s.FirstChange != nil {
		first := ToRateHistoryResponse(s.FirstChange)
		resp.FirstChange = &first
	}
	if s.LastChange != nil {
		last := ToRateHistoryResponse(s.LastChange)
		resp.LastChange = &last
	}
	return resp
}
