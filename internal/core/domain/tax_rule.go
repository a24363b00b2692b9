package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxKind identifies a category of tax.
type TaxKind string

const (
	TaxIVA       TaxKind = "iva"       // value-added tax
	TaxIGTF      TaxKind = "igtf"      // financial-transaction tax
	TaxISLR      TaxKind = "islr"      // income-tax retention
	TaxMunicipal TaxKind = "municipal" // municipal tax
	TaxCustom    TaxKind = "custom"
)

// TaxRule is a versioned, priority-ordered tax rule. Rules are append-only:
// a rule may be superseded by registering a higher-priority rule, but it is
// never retro-edited; calculations capture the matched rule's state inline.
type TaxRule struct {
	RuleID    string `json:"ruleID"` // Primary key (UUID)
	CompanyID string `json:"companyID"`

	Kind TaxKind         `json:"kind"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"` // percentage, e.g. 16 for 16%

	IsActive   bool       `json:"isActive"`
	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"` // nil = open-ended

	MinAmount *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount *decimal.Decimal `json:"maxAmount,omitempty"`
	// Currency restricts the rule to one currency code; empty matches any.
	Currency   string            `json:"currency,omitempty"`
	Conditions map[string]string `json:"conditions,omitempty"`

	// Priority orders rule selection; higher wins. Ties are broken by
	// registration order (first registered wins).
	Priority int `json:"priority"`
	// Sequence is the registration order assigned by the store.
	Sequence int64 `json:"sequence"`

	AuditFields
}

// IsApplicable reports whether the rule matches a transaction of the given
// amount and currency at the given instant.
func (r TaxRule) IsApplicable(amount decimal.Decimal, currency string, at time.Time) bool {
	if !r.IsActive {
		return false
	}
	if at.Before(r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && at.After(*r.ValidUntil) {
		return false
	}
	if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
		return false
	}
	if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
		return false
	}
	if r.Currency != "" && r.Currency != currency {
		return false
	}
	return true
}

// Calculate returns the tax owed on amount under this rule, quantized to
// 2 digits half-up per the global rounding contract.
func (r TaxRule) Calculate(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Rate).Div(decimal.NewFromInt(100)).Round(2)
}

// TaxCalculation is the ephemeral result of matching one rule against an
// amount. It is never persisted on its own, only inside a TransactionSnapshot.
type TaxCalculation struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	Kind          TaxKind         `json:"kind"`
	RuleName      string          `json:"ruleName"`
	RuleID        string          `json:"ruleID"`
	Rate          decimal.Decimal `json:"rate"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}
