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
	"github.com/andeserp/fxcore_backend/internal/utils/pagination"
)

const rateHistoryColumns = `
	history_id, currency_id, company_id, old_rate, new_rate, difference,
	variation_percent, changed_by, change_kind, change_source, change_reason,
	provider_metadata, changed_at`

type PgxRateHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRateHistoryRepository creates a new repository for rate change history.
func NewPgxRateHistoryRepository(pool *pgxpool.Pool) portsrepo.RateHistoryRepositoryFacade {
	return &PgxRateHistoryRepository{pool: pool}
}

func scanRateHistoryEntry(row pgx.Row) (domain.RateHistoryEntry, error) {
	var e domain.RateHistoryEntry
	var changeKind string
	err := row.Scan(
		&e.HistoryID,
		&e.CurrencyID,
		&e.CompanyID,
		&e.OldRate,
		&e.NewRate,
		&e.Difference,
		&e.VariationPercent,
		&e.ChangedBy,
		&changeKind,
		&e.ChangeSource,
		&e.ChangeReason,
		&e.ProviderMetadata,
		&e.ChangedAt,
	)
	if err != nil {
		return domain.RateHistoryEntry{}, err
	}
	e.ChangeKind = domain.RateChangeKind(changeKind)
	return e, nil
}

// SaveRateHistoryEntry appends a history entry. History is append-only so
// there is no matching update or delete.
func (r *PgxRateHistoryRepository) SaveRateHistoryEntry(ctx context.Context, entry domain.RateHistoryEntry) error {
	query := `
		INSERT INTO currency_rate_history (` + rateHistoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.pool.Exec(ctx, query,
		entry.HistoryID,
		entry.CurrencyID,
		entry.CompanyID,
		entry.OldRate,
		entry.NewRate,
		entry.Difference,
		entry.VariationPercent,
		entry.ChangedBy,
		string(entry.ChangeKind),
		entry.ChangeSource,
		entry.ChangeReason,
		entry.ProviderMetadata,
		entry.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rate history entry %s: %w", entry.HistoryID, err)
	}
	return nil
}

// ListRateHistory retrieves history entries for a currency newest first,
// using (changed_at, history_id) keyset pagination. One extra row is fetched
// to decide whether a next page exists.
func (r *PgxRateHistoryRepository) ListRateHistory(ctx context.Context, companyID, currencyID string, limit int, nextToken string) ([]domain.RateHistoryEntry, string, error) {
	args := []any{companyID, currencyID}
	query := `
		SELECT ` + rateHistoryColumns + ` FROM currency_rate_history
		WHERE company_id = $1 AND currency_id = $2`

	if nextToken != "" {
		changedAt, historyID, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (changed_at, history_id) < ($3, $4)`
		args = append(args, changedAt, historyID)
	}
	query += fmt.Sprintf(` ORDER BY changed_at DESC, history_id DESC LIMIT %d;`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query rate history: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RateHistoryEntry, error) {
		return scanRateHistoryEntry(row)
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan rate history: %w", err)
	}

	var newNextToken string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		newNextToken = pagination.EncodeToken(last.ChangedAt, last.HistoryID)
	}
	return entries, newNextToken, nil
}

// ListRateHistoryInRange retrieves the entries whose change time falls inside
// [from, to], oldest first.
func (r *PgxRateHistoryRepository) ListRateHistoryInRange(ctx context.Context, companyID, currencyID string, from, to time.Time) ([]domain.RateHistoryEntry, error) {
	query := `
		SELECT ` + rateHistoryColumns + ` FROM currency_rate_history
		WHERE company_id = $1 AND currency_id = $2 AND changed_at >= $3 AND changed_at <= $4
		ORDER BY changed_at ASC, history_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, companyID, currencyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate history range: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RateHistoryEntry, error) {
		return scanRateHistoryEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate history range: %w", err)
	}
	return entries, nil
}

// FindRateAt retrieves the change that was most recently in effect at the
// given moment. Returns nil without error when the history starts after it.
func (r *PgxRateHistoryRepository) FindRateAt(ctx context.Context, companyID, currencyID string, at time.Time) (*domain.RateHistoryEntry, error) {
	query := `
		SELECT ` + rateHistoryColumns + ` FROM currency_rate_history
		WHERE company_id = $1 AND currency_id = $2 AND changed_at <= $3
		ORDER BY changed_at DESC, history_id DESC
		LIMIT 1;
	`
	entry, err := scanRateHistoryEntry(r.pool.QueryRow(ctx, query, companyID, currencyID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rate at %s: %w", at.Format(time.RFC3339), err)
	}
	return &entry, nil
}
