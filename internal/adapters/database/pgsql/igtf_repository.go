package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
)

const igtfConfigColumns = `
	config_id, company_id, currency_id, is_special_contributor, rate,
	min_amount_local, min_amount_foreign, is_exempt,
	exempt_transaction_kinds, applicable_payment_methods,
	valid_from, valid_until, created_at, created_by, last_updated_at, last_updated_by`

type PgxIGTFConfigRepository struct {
	pool *pgxpool.Pool
}

// NewPgxIGTFConfigRepository creates a new repository for IGTF configuration.
func NewPgxIGTFConfigRepository(pool *pgxpool.Pool) portsrepo.IGTFConfigRepositoryFacade {
	return &PgxIGTFConfigRepository{pool: pool}
}

// FindIGTFConfig retrieves the configuration in force for a company and
// currency, or nil when none has been saved yet. Configurations are kept
// historically; only rows whose validity window covers now are candidates,
// and the latest window wins.
func (r *PgxIGTFConfigRepository) FindIGTFConfig(ctx context.Context, companyID, currencyID string) (*domain.IGTFConfig, error) {
	query := `
		SELECT ` + igtfConfigColumns + ` FROM igtf_config
		WHERE company_id = $1
		  AND currency_id = $2
		  AND valid_from <= NOW()
		  AND (valid_until IS NULL OR valid_until >= NOW())
		ORDER BY valid_from DESC, created_at DESC
		LIMIT 1;
	`
	var c domain.IGTFConfig
	err := r.pool.QueryRow(ctx, query, companyID, currencyID).Scan(
		&c.ConfigID,
		&c.CompanyID,
		&c.CurrencyID,
		&c.IsSpecialContributor,
		&c.Rate,
		&c.MinAmountLocal,
		&c.MinAmountForeign,
		&c.IsExempt,
		&c.ExemptTransactionKinds,
		&c.ApplicablePaymentMethods,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find igtf config: %w", err)
	}
	return &c, nil
}

// SaveIGTFConfig appends a new configuration. Older rows stay for audit; the
// reader only ever serves the most recent one.
func (r *PgxIGTFConfigRepository) SaveIGTFConfig(ctx context.Context, config domain.IGTFConfig) error {
	query := `
		INSERT INTO igtf_config (` + igtfConfigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		config.ConfigID,
		config.CompanyID,
		config.CurrencyID,
		config.IsSpecialContributor,
		config.Rate,
		config.MinAmountLocal,
		config.MinAmountForeign,
		config.IsExempt,
		config.ExemptTransactionKinds,
		config.ApplicablePaymentMethods,
		config.ValidFrom,
		config.ValidUntil,
		config.CreatedAt,
		config.CreatedBy,
		config.LastUpdatedAt,
		config.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save igtf config %s: %w", config.ConfigID, err)
	}
	return nil
}
