package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// TaxRuleReaderSvc defines read operations for tax rules
type TaxRuleReaderSvc interface {
	// GetTaxRuleByID retrieves a specific tax rule.
	GetTaxRuleByID(ctx context.Context, companyID, ruleID string) (*domain.TaxRule, error)

	// ListTaxRules retrieves tax rules ordered by descending priority. An
	// empty kind lists every kind.
	ListTaxRules(ctx context.Context, companyID string, kind domain.TaxKind, activeOnly bool) ([]domain.TaxRule, error)
}

// TaxRuleWriterSvc defines write operations for tax rules
type TaxRuleWriterSvc interface {
	// CreateTaxRule persists a new tax rule.
	CreateTaxRule(ctx context.Context, companyID string, req dto.CreateTaxRuleRequest, creatorUserID string) (*domain.TaxRule, error)

	// UpdateTaxRule applies the allow-listed fields of the patch request.
	UpdateTaxRule(ctx context.Context, companyID, ruleID string, req dto.UpdateTaxRuleRequest, updaterUserID string) (*domain.TaxRule, error)

	// DeactivateTaxRule soft-deletes a tax rule.
	DeactivateTaxRule(ctx context.Context, companyID, ruleID, updaterUserID string) error
}

// TaxCalculatorSvc defines the tax computation operations
type TaxCalculatorSvc interface {
	// CalculateTax computes the tax of one kind for an amount. When no active
	// rule applies, the result carries a zero amount and no rule reference.
	CalculateTax(ctx context.Context, companyID string, kind domain.TaxKind, amount decimal.Decimal, currencyCode string) (*domain.TaxCalculation, error)

	// CalculateAllTaxes computes every applicable tax kind for an amount.
	CalculateAllTaxes(ctx context.Context, companyID string, amount decimal.Decimal, currencyCode string) ([]domain.TaxCalculation, error)
}

// TaxRuleSvcFacade combines all tax-related service interfaces
type TaxRuleSvcFacade interface {
	TaxRuleReaderSvc
	TaxRuleWriterSvc
	TaxCalculatorSvc
}
