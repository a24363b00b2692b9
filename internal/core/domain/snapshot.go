package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money pairs an amount with its currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// TaxLine is the frozen view of one tax inside a snapshot.
type TaxLine struct {
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	RuleID        string          `json:"ruleID"`
}

// TransactionSnapshot freezes the exact rate, tax breakdown and monetary
// amounts used for one business transaction. It is finalized at creation;
// no operation anywhere in the system mutates a stored snapshot.
// Corrections require a new transaction and a reversing entry.
type TransactionSnapshot struct {
	SnapshotID string `json:"snapshotID"` // Primary key (UUID)
	CompanyID  string `json:"companyID"`

	TransactionKind string `json:"transactionKind"` // "invoice", "purchase", ...
	TransactionID   string `json:"transactionID"`

	PaymentAmount Money `json:"paymentAmount"` // in the payment currency
	BaseAmount    Money `json:"baseAmount"`    // in the company's base currency

	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
	ExchangeRateProvider string          `json:"exchangeRateProvider"`
	ExchangeRateDate     time.Time       `json:"exchangeRateDate"`

	Taxes    map[TaxKind]TaxLine `json:"taxes"`
	Metadata map[string]any      `json:"metadata,omitempty"` // line items, counterparties

	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
	IsFinalized bool      `json:"isFinalized"` // always true once created
}

// ConversionResult is the immutable outcome of one currency conversion.
type ConversionResult struct {
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"` // 2-digit quantized
	TargetCurrency   string          `json:"targetCurrency"`
	RateUsed         decimal.Decimal `json:"rateUsed"`
	Provider         string          `json:"provider"` // "direct", "cache", or a provider name
	ConvertedAt      time.Time       `json:"convertedAt"`
}
