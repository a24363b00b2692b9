package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateChangeKind classifies what triggered a rate change.
type RateChangeKind string

const (
	RateChangeManual    RateChangeKind = "manual"
	RateChangeScheduled RateChangeKind = "scheduled"
	RateChangeProvider  RateChangeKind = "provider"
)

// RateHistoryEntry is an append-only record of one rate change. Entries are
// created once per change and never updated or deleted.
type RateHistoryEntry struct {
	HistoryID  string `json:"historyID"` // Primary key (UUID)
	CurrencyID string `json:"currencyID"`
	CompanyID  string `json:"companyID"`

	OldRate    decimal.Decimal `json:"oldRate"`
	NewRate    decimal.Decimal `json:"newRate"`
	Difference decimal.Decimal `json:"difference"`
	// VariationPercent is (new-old)/old*100 quantized to 4 digits;
	// nil when the old rate was zero.
	VariationPercent *decimal.Decimal `json:"variationPercent,omitempty"`

	ChangedBy        string         `json:"changedBy"` // UserID reference (the actor)
	ChangeKind       RateChangeKind `json:"changeKind"`
	ChangeSource     string         `json:"changeSource"` // e.g. "bcv", "binance", "admin-ui"
	ChangeReason     string         `json:"changeReason,omitempty"`
	ProviderMetadata string         `json:"providerMetadata,omitempty"` // opaque, provider-specific

	ChangedAt time.Time `json:"changedAt"`
}

// CurrencyStatistics aggregates a currency's full rate history.
type CurrencyStatistics struct {
	CurrencyCode     string            `json:"currencyCode"`
	CurrencyName     string            `json:"currencyName"`
	CurrentRate      decimal.Decimal   `json:"currentRate"`
	IsBase           bool              `json:"isBase"`
	TotalChanges     int               `json:"totalChanges"`
	AvgVariationPct  decimal.Decimal   `json:"avgVariationPercent"`
	MaxVariationPct  decimal.Decimal   `json:"maxVariationPercent"`
	MinVariationPct  decimal.Decimal   `json:"minVariationPercent"`
	FirstChange      *RateHistoryEntry `json:"firstChange,omitempty"`
	LastChange       *RateHistoryEntry `json:"lastChange,omitempty"`
}
