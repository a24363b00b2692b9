package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// CreateTaxRuleRequest defines the data needed to register a new tax rule.
type CreateTaxRuleRequest struct {
	Kind string          `json:"kind" binding:"required,oneof=iva igtf islr municipal custom"`
	Name string          `json:"name" binding:"required"`
	Rate decimal.Decimal `json:"rate" binding:"required"`

	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`

	MinAmount  *decimal.Decimal  `json:"minAmount"`
	MaxAmount  *decimal.Decimal  `json:"maxAmount"`
	Currency   string            `json:"currency" binding:"omitempty,currencycode"`
	Conditions map[string]string `json:"conditions"`

	Priority int `json:"priority"`
}

// UpdateTaxRuleRequest defines the patchable tax rule fields. Nil fields are
// left untouched.
type UpdateTaxRuleRequest struct {
	Name       *string          `json:"name,omitempty"`
	Rate       *decimal.Decimal `json:"rate,omitempty"`
	IsActive   *bool            `json:"isActive,omitempty"`
	ValidUntil *time.Time       `json:"validUntil,omitempty"`
	MinAmount  *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount  *decimal.Decimal `json:"maxAmount,omitempty"`
	Priority   *int             `json:"priority,omitempty"`
}

// TaxRuleResponse defines the data returned for a tax rule.
type TaxRuleResponse struct {
	RuleID string          `json:"ruleID"`
	Kind   string          `json:"kind"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`

	IsActive   bool       `json:"isActive"`
	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	MinAmount  *decimal.Decimal  `json:"minAmount,omitempty"`
	MaxAmount  *decimal.Decimal  `json:"maxAmount,omitempty"`
	Currency   string            `json:"currency,omitempty"`
	Conditions map[string]string `json:"conditions,omitempty"`

	Priority int `json:"priority"`

	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToTaxRuleResponse converts a domain.TaxRule to TaxRuleResponse DTO
func ToTaxRuleResponse(rule *domain.TaxRule) TaxRuleResponse {
	return TaxRuleResponse{
		RuleID:        rule.RuleID,
		Kind:          string(rule.Kind),
		Name:          rule.Name,
		Rate:          rule.Rate,
		IsActive:      rule.IsActive,
		ValidFrom:     rule.ValidFrom,
		ValidUntil:    rule.ValidUntil,
		MinAmount:     rule.MinAmount,
		MaxAmount:     rule.MaxAmount,
		Currency:      rule.Currency,
		Conditions:    rule.Conditions,
		Priority:      rule.Priority,
		CreatedAt:     rule.CreatedAt,
		CreatedBy:     rule.CreatedBy,
		LastUpdatedAt: rule.LastUpdatedAt,
		LastUpdatedBy: rule.LastUpdatedBy,
	}
}

// ToListTaxRuleResponse converts a slice of domain.TaxRule to a slice of TaxRuleResponse DTOs
func ToListTaxRuleResponse(rules []domain.TaxRule) []TaxRuleResponse {
	res := make([]TaxRuleResponse, len(rules))
	for i, rule := range rules {
		res[i] = ToTaxRuleResponse(&rule)
	}
	return res
}

// CalculateTaxesRequest defines the input of a tax computation.
type CalculateTaxesRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,currencycode"`
	// Kind limits the computation to one tax kind; empty computes every
	// applicable kind.
	Kind string `json:"kind" binding:"omitempty,oneof=iva igtf islr municipal custom"`
}

// TaxCalculationResponse defines the outcome for one computed tax.
type TaxCalculationResponse struct {
	Kind          string          `json:"kind"`
	RuleID        string          `json:"ruleID,omitempty"`
	RuleName      string          `json:"ruleName,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}

// ToTaxCalculationResponse converts a domain.TaxCalculation to its DTO
func ToTaxCalculationResponse(calc *domain.TaxCalculation) TaxCalculationResponse {
	return TaxCalculationResponse{
		Kind:          string(calc.Kind),
		RuleID:        calc.RuleID,
		RuleName:      calc.RuleName,
		Rate:          calc.Rate,
		TaxableAmount: calc.TaxableAmount,
		TaxAmount:     calc.TaxAmount,
		CalculatedAt:  calc.CalculatedAt,
	}
}

// ToListTaxCalculationResponse converts a slice of domain.TaxCalculation DTOs
func ToListTaxCalculationResponse(calcs []domain.TaxCalculation) []TaxCalculationResponse {
	res := make([]TaxCalculationResponse, len(calcs))
	for i, calc := range calcs {
		res[i] = ToTaxCalculationResponse(&calc)
	}
	return res
}
