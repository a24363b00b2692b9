package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
)

const currencyColumns = `
	currency_id, company_id, code, name, symbol, exchange_rate, decimal_places,
	is_base, is_active, is_non_standard, conversion_factor, conversion_method,
	applies_igtf, igtf_rate, igtf_exempt, igtf_min_amount,
	rate_update_method, rate_source_url, last_rate_update, next_rate_update,
	notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewPgxCurrencyRepository creates a new repository for currency data.
func NewPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{pool: pool}
}

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var c domain.Currency
	var conversionMethod, rateUpdateMethod string
	err := row.Scan(
		&c.CurrencyID,
		&c.CompanyID,
		&c.Code,
		&c.Name,
		&c.Symbol,
		&c.ExchangeRate,
		&c.DecimalPlaces,
		&c.IsBase,
		&c.IsActive,
		&c.IsNonStandard,
		&c.ConversionFactor,
		&conversionMethod,
		&c.AppliesIGTF,
		&c.IGTFRate,
		&c.IGTFExempt,
		&c.IGTFMinAmount,
		&rateUpdateMethod,
		&c.RateSourceURL,
		&c.LastRateUpdate,
		&c.NextRateUpdate,
		&c.Notes,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	c.ConversionMethod = domain.ConversionMethod(conversionMethod)
	c.RateUpdateMethod = domain.RateUpdateMethod(rateUpdateMethod)
	return &c, nil
}

// SaveCurrency inserts a new currency.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25);
	`
	_, err := r.pool.Exec(ctx, query,
		currency.CurrencyID,
		currency.CompanyID,
		currency.Code,
		currency.Name,
		currency.Symbol,
		currency.ExchangeRate,
		currency.DecimalPlaces,
		currency.IsBase,
		currency.IsActive,
		currency.IsNonStandard,
		currency.ConversionFactor,
		string(currency.ConversionMethod),
		currency.AppliesIGTF,
		currency.IGTFRate,
		currency.IGTFExempt,
		currency.IGTFMinAmount,
		string(currency.RateUpdateMethod),
		currency.RateSourceURL,
		currency.LastRateUpdate,
		currency.NextRateUpdate,
		currency.Notes,
		currency.CreatedAt,
		currency.CreatedBy,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", currency.Code, err)
	}
	return nil
}

// FindCurrencyByID retrieves a currency by its id, scoped to a company.
func (r *PgxCurrencyRepository) FindCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE company_id = $1 AND currency_id = $2;`
	currency, err := scanCurrency(r.pool.QueryRow(ctx, query, companyID, currencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by id %s: %w", currencyID, err)
	}
	return currency, nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE company_id = $1 AND code = $2;`
	currency, err := scanCurrency(r.pool.QueryRow(ctx, query, companyID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	return currency, nil
}

// FindBaseCurrency retrieves the company's base currency.
func (r *PgxCurrencyRepository) FindBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE company_id = $1 AND is_base;`
	currency, err := scanCurrency(r.pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find base currency: %w", err)
	}
	return currency, nil
}

// ListCurrencies retrieves a company's currencies ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY code;`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		c, err := scanCurrency(row)
		if err != nil {
			return domain.Currency{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return currencies, nil
}

// UpdateCurrency persists changes to an existing currency.
func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		UPDATE currencies SET
			name = $3, symbol = $4, decimal_places = $5, is_active = $6,
			applies_igtf = $7, igtf_rate = $8, igtf_exempt = $9, igtf_min_amount = $10,
			rate_update_method = $11, rate_source_url = $12, next_rate_update = $13,
			notes = $14, last_updated_at = $15, last_updated_by = $16
		WHERE company_id = $1 AND currency_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query,
		currency.CompanyID,
		currency.CurrencyID,
		currency.Name,
		currency.Symbol,
		currency.DecimalPlaces,
		currency.IsActive,
		currency.AppliesIGTF,
		currency.IGTFRate,
		currency.IGTFExempt,
		currency.IGTFMinAmount,
		string(currency.RateUpdateMethod),
		currency.RateSourceURL,
		currency.NextRateUpdate,
		currency.Notes,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update currency %s: %w", currency.CurrencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateCurrency soft-deletes a currency by clearing its active flag.
func (r *PgxCurrencyRepository) DeactivateCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error {
	query := `
		UPDATE currencies SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND currency_id = $2;
	`
	tag, err := r.pool.Exec(ctx, query, companyID, currencyID, time.Now(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate currency %s: %w", currencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetBaseCurrency atomically moves the base flag: the previous holder is
// cleared and the new currency set inside one transaction.
func (r *PgxCurrencyRepository) SetBaseCurrency(ctx context.Context, companyID, currencyID, updatedBy string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now()

	clearQuery := `
		UPDATE currencies SET is_base = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE company_id = $1 AND is_base;
	`
	if _, err := tx.Exec(ctx, clearQuery, companyID, now, updatedBy); err != nil {
		return fmt.Errorf("failed to clear previous base currency: %w", err)
	}

	// The new base becomes the unit of account: rate 1, no conversion.
	setQuery := `
		UPDATE currencies SET
			is_base = TRUE, exchange_rate = 1, conversion_factor = NULL,
			conversion_method = 'undefined', last_updated_at = $3, last_updated_by = $4
		WHERE company_id = $1 AND currency_id = $2;
	`
	tag, err := tx.Exec(ctx, setQuery, companyID, currencyID, now, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set base currency %s: %w", currencyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit base currency change: %w", err)
	}
	return nil
}

// UpdateRateWithHistory applies a new rate and appends the history entry in
// one transaction. The currency row is locked first so concurrent updates to
// the same currency serialize; the locked value is authoritative for the
// history's old-rate fields.
func (r *PgxCurrencyRepository) UpdateRateWithHistory(ctx context.Context, companyID, currencyID string, newRate decimal.Decimal, entry domain.RateHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var lockedRate decimal.Decimal
	var conversionMethod string
	lockQuery := `
		SELECT exchange_rate, conversion_method FROM currencies
		WHERE company_id = $1 AND currency_id = $2
		FOR UPDATE;
	`
	if err := tx.QueryRow(ctx, lockQuery, companyID, currencyID).Scan(&lockedRate, &conversionMethod); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock currency %s: %w", currencyID, err)
	}

	// Recompute against the locked value in case the service read raced a
	// concurrent update.
	if !lockedRate.Equal(entry.OldRate) {
		entry.OldRate = lockedRate
		entry.Difference = newRate.Sub(lockedRate)
		entry.VariationPercent = nil
		if !lockedRate.IsZero() {
			v := entry.Difference.Div(lockedRate).Mul(decimal.NewFromInt(100)).Round(4)
			entry.VariationPercent = &v
		}
	}

	var factor *decimal.Decimal
	switch domain.ConversionMethod(conversionMethod) {
	case domain.ConversionInverse:
		f := newRate
		factor = &f
	case domain.ConversionDirect, domain.ConversionCross:
		f := decimal.NewFromInt(1).DivRound(newRate, 10)
		factor = &f
	}

	updateQuery := `
		UPDATE currencies SET
			exchange_rate = $3, conversion_factor = $4, last_rate_update = $5,
			last_updated_at = $5, last_updated_by = $6
		WHERE company_id = $1 AND currency_id = $2;
	`
	if _, err := tx.Exec(ctx, updateQuery, companyID, currencyID, newRate, factor, entry.ChangedAt, entry.ChangedBy); err != nil {
		return fmt.Errorf("failed to apply rate to currency %s: %w", currencyID, err)
	}

	historyQuery := `
		INSERT INTO currency_rate_history (
			history_id, currency_id, company_id, old_rate, new_rate, difference,
			variation_percent, changed_by, change_kind, change_source, change_reason,
			provider_metadata, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	if _, err := tx.Exec(ctx, historyQuery,
		entry.HistoryID,
		entry.CurrencyID,
		entry.CompanyID,
		entry.OldRate,
		newRate,
		entry.Difference,
		entry.VariationPercent,
		entry.ChangedBy,
		string(entry.ChangeKind),
		entry.ChangeSource,
		entry.ChangeReason,
		entry.ProviderMetadata,
		entry.ChangedAt,
	); err != nil {
		return fmt.Errorf("failed to append rate history for currency %s: %w", currencyID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate update for currency %s: %w", currencyID, err)
	}
	return nil
}
