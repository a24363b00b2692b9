package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// TaxRuleService provides the priority-ordered tax rule engine.
type TaxRuleService struct {
	BaseService
	taxRuleRepo portsrepo.TaxRuleRepositoryFacade
}

// NewTaxRuleService creates a new TaxRuleService.
func NewTaxRuleService(taxRuleRepo portsrepo.TaxRuleRepositoryFacade) *TaxRuleService {
	return &TaxRuleService{taxRuleRepo: taxRuleRepo}
}

// CreateTaxRule registers a new tax rule. Rules are append-only: superseding
// a rule means registering a higher-priority one, not editing in place.
func (s *TaxRuleService) CreateTaxRule(ctx context.Context, companyID string, req dto.CreateTaxRuleRequest, creatorUserID string) (*domain.TaxRule, error) {
	if req.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate cannot be negative", apperrors.ErrValidation)
	}
	if req.MinAmount != nil && req.MaxAmount != nil && req.MinAmount.GreaterThan(*req.MaxAmount) {
		return nil, fmt.Errorf("%w: minimum amount exceeds maximum amount", apperrors.ErrValidation)
	}

	now := time.Now()
	validFrom := now
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil && req.ValidUntil.Before(validFrom) {
		return nil, fmt.Errorf("%w: validity window ends before it starts", apperrors.ErrValidation)
	}

	rule := domain.TaxRule{
		RuleID:     uuid.NewString(),
		CompanyID:  companyID,
		Kind:       domain.TaxKind(req.Kind),
		Name:       req.Name,
		Rate:       req.Rate,
		IsActive:   true,
		ValidFrom:  validFrom,
		ValidUntil: req.ValidUntil,
		MinAmount:  req.MinAmount,
		MaxAmount:  req.MaxAmount,
		Currency:   strings.ToUpper(req.Currency),
		Conditions: req.Conditions,
		Priority:   req.Priority,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.taxRuleRepo.SaveTaxRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create tax rule in service: %w", err)
	}
	return &rule, nil
}

// GetTaxRuleByID retrieves a specific tax rule.
func (s *TaxRuleService) GetTaxRuleByID(ctx context.Context, companyID, ruleID string) (*domain.TaxRule, error) {
	rule, err := s.taxRuleRepo.FindTaxRuleByID(ctx, companyID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax rule in service: %w", err)
	}
	return rule, nil
}

// ListTaxRules retrieves tax rules ordered by descending priority.
func (s *TaxRuleService) ListTaxRules(ctx context.Context, companyID string, kind domain.TaxKind, activeOnly bool) ([]domain.TaxRule, error) {
	rules, err := s.taxRuleRepo.ListTaxRules(ctx, companyID, kind, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax rules in service: %w", err)
	}
	return rules, nil
}

// UpdateTaxRule applies the allow-listed fields of the patch request.
func (s *TaxRuleService) UpdateTaxRule(ctx context.Context, companyID, ruleID string, req dto.UpdateTaxRuleRequest, updaterUserID string) (*domain.TaxRule, error) {
	rule, err := s.taxRuleRepo.FindTaxRuleByID(ctx, companyID, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rule for update: %w", err)
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Rate != nil {
		if req.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: tax rate cannot be negative", apperrors.ErrValidation)
		}
		rule.Rate = *req.Rate
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.ValidUntil != nil {
		rule.ValidUntil = req.ValidUntil
	}
	if req.MinAmount != nil {
		rule.MinAmount = req.MinAmount
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = req.MaxAmount
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	rule.LastUpdatedAt = time.Now()
	rule.LastUpdatedBy = updaterUserID

	if err := s.taxRuleRepo.UpdateTaxRule(ctx, *rule); err != nil {
		return nil, fmt.Errorf("failed to update tax rule in service: %w", err)
	}
	return rule, nil
}

// DeactivateTaxRule soft-deletes a tax rule.
func (s *TaxRuleService) DeactivateTaxRule(ctx context.Context, companyID, ruleID, updaterUserID string) error {
	if err := s.taxRuleRepo.DeactivateTaxRule(ctx, companyID, ruleID, updaterUserID); err != nil {
		return fmt.Errorf("failed to deactivate tax rule in service: %w", err)
	}
	return nil
}

// CalculateTax computes the tax of one kind for an amount. Rules arrive from
// the repository ordered by priority descending, registration order ascending;
// the first applicable rule wins. No applicable rule is not an error: the
// result carries a zero amount and no rule reference.
func (s *TaxRuleService) CalculateTax(ctx context.Context, companyID string, kind domain.TaxKind, amount decimal.Decimal, currencyCode string) (*domain.TaxCalculation, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
	}
	currencyCode = strings.ToUpper(currencyCode)

	rules, err := s.taxRuleRepo.ListTaxRules(ctx, companyID, kind, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rules for calculation: %w", err)
	}

	now := time.Now()
	for _, rule := range rules {
		if !rule.IsApplicable(amount, currencyCode, now) {
			continue
		}
		return &domain.TaxCalculation{
			TaxableAmount: amount,
			Kind:          kind,
			RuleName:      rule.Name,
			RuleID:        rule.RuleID,
			Rate:          rule.Rate,
			TaxAmount:     rule.Calculate(amount),
			CalculatedAt:  now,
		}, nil
	}

	return &domain.TaxCalculation{
		TaxableAmount: amount,
		Kind:          kind,
		Rate:          decimal.Zero,
		TaxAmount:     decimal.Zero.Round(2),
		CalculatedAt:  now,
	}, nil
}

// CalculateAllTaxes computes every tax kind that has at least one active rule.
func (s *TaxRuleService) CalculateAllTaxes(ctx context.Context, companyID string, amount decimal.Decimal, currencyCode string) ([]domain.TaxCalculation, error) {
	kinds, err := s.taxRuleRepo.ListActiveTaxKinds(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tax kinds: %w", err)
	}

	results := make([]domain.TaxCalculation, 0, len(kinds))
	for _, kind := range kinds {
		calc, err := s.CalculateTax(ctx, companyID, kind, amount, currencyCode)
		if err != nil {
			return nil, err
		}
		// Kinds whose rules all declined contribute nothing.
		if calc.RuleID == "" {
			continue
		}
		results = append(results, *calc)
	}
	return results, nil
}
