package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// CreateSnapshotRequest defines the data needed to freeze a transaction's
// monetary context. The base-currency amount, rate and tax breakdown are
// computed server-side at creation time.
type CreateSnapshotRequest struct {
	TransactionKind string `json:"transactionKind" binding:"required"`
	TransactionID   string `json:"transactionID" binding:"required"`

	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,currencycode"`

	PaymentMethod string         `json:"paymentMethod"`
	Metadata      map[string]any `json:"metadata"`
}

// TaxLineResponse is the frozen view of one tax inside a snapshot.
type TaxLineResponse struct {
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	RuleID        string          `json:"ruleID"`
}

// SnapshotResponse defines the data returned for a transaction snapshot.
type SnapshotResponse struct {
	SnapshotID      string `json:"snapshotID"`
	TransactionKind string `json:"transactionKind"`
	TransactionID   string `json:"transactionID"`

	PaymentAmount   decimal.Decimal `json:"paymentAmount"`
	PaymentCurrency string          `json:"paymentCurrency"`
	BaseAmount      decimal.Decimal `json:"baseAmount"`
	BaseCurrency    string          `json:"baseCurrency"`

	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
	ExchangeRateProvider string          `json:"exchangeRateProvider"`
	ExchangeRateDate     time.Time       `json:"exchangeRateDate"`

	Taxes    map[string]TaxLineResponse `json:"taxes"`
	Metadata map[string]any             `json:"metadata,omitempty"`

	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
	IsFinalized bool      `json:"isFinalized"`
}

// ToSnapshotResponse converts a domain.TransactionSnapshot to its DTO
func ToSnapshotResponse(s *domain.TransactionSnapshot) SnapshotResponse {
	taxes := make(map[string]TaxLineResponse, len(s.Taxes))
	for kind, line := range s.Taxes {
		taxes[string(kind)] = TaxLineResponse{
			Rate:          line.Rate,
			TaxableAmount: line.TaxableAmount,
			TaxAmount:     line.TaxAmount,
			RuleID:        line.RuleID,
		}
	}
	return SnapshotResponse{
		SnapshotID:           s.SnapshotID,
		TransactionKind:      s.TransactionKind,
		TransactionID:        s.TransactionID,
		PaymentAmount:        s.PaymentAmount.Amount,
		PaymentCurrency:      s.PaymentAmount.Currency,
		BaseAmount:           s.BaseAmount.Amount,
		BaseCurrency:         s.BaseAmount.Currency,
		ExchangeRate:         s.ExchangeRate,
		ExchangeRateProvider: s.ExchangeRateProvider,
		ExchangeRateDate:     s.ExchangeRateDate,
		Taxes:                taxes,
		Metadata:             s.Metadata,
		CreatedAt:            s.CreatedAt,
		CreatedBy:            s.CreatedBy,
		IsFinalized:          s.IsFinalized,
	}
}

// ToListSnapshotResponse converts a slice of domain.TransactionSnapshot DTOs
func ToListSnapshotResponse(snaps []domain.TransactionSnapshot) []SnapshotResponse {
	res := make([]SnapshotResponse, len(snaps))
	for i, s := range snaps {
		res[i] = ToSnapshotResponse(&s)
	}
	return res
}
