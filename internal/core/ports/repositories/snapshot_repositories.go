package repositories

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// SnapshotReader defines read operations for transaction snapshots
type SnapshotReader interface {
	// FindSnapshotByID retrieves a specific snapshot, scoped to a company.
	FindSnapshotByID(ctx context.Context, companyID, snapshotID string) (*domain.TransactionSnapshot, error)

	// ListSnapshotsByTransaction retrieves the snapshots recorded for a
	// transaction, newest first.
	ListSnapshotsByTransaction(ctx context.Context, companyID, transactionKind, transactionID string) ([]domain.TransactionSnapshot, error)
}

// SnapshotWriter defines write operations for transaction snapshots.
// Snapshots are immutable once written: the port deliberately exposes no
// update or delete operation, so corrections are new snapshots.
type SnapshotWriter interface {
	// SaveSnapshot persists a new snapshot.
	SaveSnapshot(ctx context.Context, snapshot domain.TransactionSnapshot) error
}

// SnapshotRepositoryFacade combines all snapshot repository interfaces
type SnapshotRepositoryFacade interface {
	SnapshotReader
	SnapshotWriter
}
