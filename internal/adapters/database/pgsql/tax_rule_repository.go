package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
)

const taxRuleColumns = `
	rule_id, company_id, kind, name, rate, is_active, valid_from, valid_until,
	min_amount, max_amount, currency, conditions, priority, sequence,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTaxRuleRepository struct {
	pool *pgxpool.Pool
}

// NewPgxTaxRuleRepository creates a new repository for tax rules.
func NewPgxTaxRuleRepository(pool *pgxpool.Pool) portsrepo.TaxRuleRepositoryFacade {
	return &PgxTaxRuleRepository{pool: pool}
}

func scanTaxRule(row pgx.Row) (domain.TaxRule, error) {
	var r domain.TaxRule
	var kind string
	err := row.Scan(
		&r.RuleID,
		&r.CompanyID,
		&kind,
		&r.Name,
		&r.Rate,
		&r.IsActive,
		&r.ValidFrom,
		&r.ValidUntil,
		&r.MinAmount,
		&r.MaxAmount,
		&r.Currency,
		&r.Conditions,
		&r.Priority,
		&r.Sequence,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.LastUpdatedAt,
		&r.LastUpdatedBy,
	)
	if err != nil {
		return domain.TaxRule{}, err
	}
	r.Kind = domain.TaxKind(kind)
	return r, nil
}

// SaveTaxRule persists a new tax rule. The sequence column is assigned by the
// database so registration order survives as the tie-breaker.
func (r *PgxTaxRuleRepository) SaveTaxRule(ctx context.Context, rule domain.TaxRule) error {
	query := `
		INSERT INTO tax_rules (
			rule_id, company_id, kind, name, rate, is_active, valid_from, valid_until,
			min_amount, max_amount, currency, conditions, priority,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		rule.RuleID,
		rule.CompanyID,
		string(rule.Kind),
		rule.Name,
		rule.Rate,
		rule.IsActive,
		rule.ValidFrom,
		rule.ValidUntil,
		rule.MinAmount,
		rule.MaxAmount,
		rule.Currency,
		rule.Conditions,
		rule.Priority,
		rule.CreatedAt,
		rule.CreatedBy,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save tax rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// FindTaxRuleByID retrieves a tax rule, scoped to a company.
func (r *PgxTaxRuleRepository) FindTaxRuleByID(ctx context.Context, companyID, ruleID string) (*domain.TaxRule, error) {
	query := `SELECT ` + taxRuleColumns + ` FROM tax_rules WHERE company_id = $1 AND rule_id = $2;`
	rule, err := scanTaxRule(r.pool.QueryRow(ctx, query, companyID, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tax rule %s: %w", ruleID, err)
	}
	return &rule, nil
}

// ListTaxRules retrieves rules ordered by priority descending, then by
// registration order, which is the selection order tax calculation walks.
func (r *PgxTaxRuleRepository) ListTaxRules(ctx context.Context, companyID string, kind domain.TaxKind, activeOnly bool) ([]domain.TaxRule, error) {
	args := []any{companyID}
	query := `SELECT ` + taxRuleColumns + ` FROM tax_rules WHERE company_id = $1`
	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, string(kind))
	}
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY priority DESC, sequence ASC;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax rules: %w", err)
	}
	defer rows.Close()

	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TaxRule, error) {
		return scanTaxRule(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tax rules: %w", err)
	}
	return rules, nil
}

// ListActiveTaxKinds retrieves the distinct kinds with at least one active rule.
func (r *PgxTaxRuleRepository) ListActiveTaxKinds(ctx context.Context, companyID string) ([]domain.TaxKind, error) {
	query := `SELECT DISTINCT kind FROM tax_rules WHERE company_id = $1 AND is_active ORDER BY kind;`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tax kinds: %w", err)
	}
	defer rows.Close()

	kinds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TaxKind, error) {
		var kind string
		if err := row.Scan(&kind); err != nil {
			return "", err
		}
		return domain.TaxKind(kind), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan active tax kinds: %w", err)
	}
	return kinds, nil
}

// UpdateTaxRule persists changes to an existing tax rule. The sequence and
// company scoping never change.
func (r *PgxTaxRuleRepository) UpdateTaxRule(ctx context.Context, rule domain.TaxRule) error {
	query := `
		UPDATE tax_rules SET
			name = $3, rate = $4, is_active = $5, valid_from = $6, valid_until = $7,
			min_amount = $8, max_amount = $9, currency = $10, conditions = $11,
			priority = $12, last_updated_at = $13, last_updated_by = $14
		WHERE company_id = $1 AND rule_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query,
		rule.CompanyID,
		rule.RuleID,
		rule.Name,
		rule.Rate,
		rule.IsActive,
		rule.ValidFrom,
		rule.ValidUntil,
		rule.MinAmount,
		rule.MaxAmount,
		rule.Currency,
		rule.Conditions,
		rule.Priority,
		rule.LastUpdatedAt,
		rule.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update tax rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateTaxRule soft-deletes a tax rule by clearing its active flag.
func (r *PgxTaxRuleRepository) DeactivateTaxRule(ctx context.Context, companyID, ruleID, updatedBy string) error {
	query := `
		UPDATE tax_rules SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND rule_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query, companyID, ruleID, time.Now(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate tax rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
