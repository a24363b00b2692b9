package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
)

const snapshotColumns = `
	snapshot_id, company_id, transaction_kind, transaction_id,
	payment_amount, payment_currency, base_amount, base_currency,
	exchange_rate, exchange_rate_provider, exchange_rate_date,
	taxes, metadata, created_at, created_by, is_finalized`

// PgxSnapshotRepository persists transaction snapshots. Snapshots are
// write-once: the repository exposes no update or delete statement and the
// table carries no updatable audit columns.
type PgxSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewPgxSnapshotRepository creates a new repository for transaction snapshots.
func NewPgxSnapshotRepository(pool *pgxpool.Pool) portsrepo.SnapshotRepositoryFacade {
	return &PgxSnapshotRepository{pool: pool}
}

func scanSnapshot(row pgx.Row) (domain.TransactionSnapshot, error) {
	var s domain.TransactionSnapshot
	err := row.Scan(
		&s.SnapshotID,
		&s.CompanyID,
		&s.TransactionKind,
		&s.TransactionID,
		&s.PaymentAmount.Amount,
		&s.PaymentAmount.Currency,
		&s.BaseAmount.Amount,
		&s.BaseAmount.Currency,
		&s.ExchangeRate,
		&s.ExchangeRateProvider,
		&s.ExchangeRateDate,
		&s.Taxes,
		&s.Metadata,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.IsFinalized,
	)
	if err != nil {
		return domain.TransactionSnapshot{}, err
	}
	return s, nil
}

// SaveSnapshot persists a new snapshot.
func (r *PgxSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.TransactionSnapshot) error {
	query := `
		INSERT INTO transaction_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		snapshot.SnapshotID,
		snapshot.CompanyID,
		snapshot.TransactionKind,
		snapshot.TransactionID,
		snapshot.PaymentAmount.Amount,
		snapshot.PaymentAmount.Currency,
		snapshot.BaseAmount.Amount,
		snapshot.BaseAmount.Currency,
		snapshot.ExchangeRate,
		snapshot.ExchangeRateProvider,
		snapshot.ExchangeRateDate,
		snapshot.Taxes,
		snapshot.Metadata,
		snapshot.CreatedAt,
		snapshot.CreatedBy,
		snapshot.IsFinalized,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snapshot.SnapshotID, err)
	}
	return nil
}

// FindSnapshotByID retrieves a snapshot, scoped to a company.
func (r *PgxSnapshotRepository) FindSnapshotByID(ctx context.Context, companyID, snapshotID string) (*domain.TransactionSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM transaction_snapshots WHERE company_id = $1 AND snapshot_id = $2;`
	snapshot, err := scanSnapshot(r.pool.QueryRow(ctx, query, companyID, snapshotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find snapshot %s: %w", snapshotID, err)
	}
	return &snapshot, nil
}

// ListSnapshotsByTransaction retrieves the snapshots recorded for one
// business transaction, newest first.
func (r *PgxSnapshotRepository) ListSnapshotsByTransaction(ctx context.Context, companyID, transactionKind, transactionID string) ([]domain.TransactionSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + ` FROM transaction_snapshots
		WHERE company_id = $1 AND transaction_kind = $2 AND transaction_id = $3
		ORDER BY created_at DESC, snapshot_id DESC;
	`
	rows, err := r.pool.Query(ctx, query, companyID, transactionKind, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TransactionSnapshot, error) {
		return scanSnapshot(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	return snapshots, nil
}
