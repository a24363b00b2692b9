package repositories

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// TaxRuleReader defines read operations for tax rules
type TaxRuleReader interface {
	// FindTaxRuleByID retrieves a specific tax rule, scoped to a company.
	FindTaxRuleByID(ctx context.Context, companyID, ruleID string) (*domain.TaxRule, error)

	// ListTaxRules retrieves tax rules for a company ordered by priority
	// descending, then insertion order. When kind is non-empty only rules of
	// that kind are returned; when activeOnly is set inactive rules are
	// filtered out.
	ListTaxRules(ctx context.Context, companyID string, kind domain.TaxKind, activeOnly bool) ([]domain.TaxRule, error)

	// ListActiveTaxKinds retrieves the distinct kinds that have at least one
	// active rule for the company.
	ListActiveTaxKinds(ctx context.Context, companyID string) ([]domain.TaxKind, error)
}

// TaxRuleWriter defines write operations for tax rules
type TaxRuleWriter interface {
	// SaveTaxRule persists a new tax rule.
	SaveTaxRule(ctx context.Context, rule domain.TaxRule) error

	// UpdateTaxRule persists changes to an existing tax rule.
	UpdateTaxRule(ctx context.Context, rule domain.TaxRule) error

	// DeactivateTaxRule soft-deletes a tax rule by clearing its active flag.
	DeactivateTaxRule(ctx context.Context, companyID, ruleID, updatedBy string) error
}

// TaxRuleRepositoryFacade combines all tax rule repository interfaces
type TaxRuleRepositoryFacade interface {
	TaxRuleReader
	TaxRuleWriter
}
