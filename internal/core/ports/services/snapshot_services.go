package services

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// SnapshotSvcFacade exposes the immutable transaction snapshot operations.
type SnapshotSvcFacade interface {
	// CreateSnapshot captures the full monetary context of a transaction at
	// payment time. Snapshots are never modified after creation.
	CreateSnapshot(ctx context.Context, companyID string, req dto.CreateSnapshotRequest, creatorUserID string) (*domain.TransactionSnapshot, error)

	// GetSnapshotByID retrieves a specific snapshot.
	GetSnapshotByID(ctx context.Context, companyID, snapshotID string) (*domain.TransactionSnapshot, error)

	// ListSnapshotsByTransaction retrieves the snapshots recorded for a
	// transaction, newest first.
	ListSnapshotsByTransaction(ctx context.Context, companyID, transactionKind, transactionID string) ([]domain.TransactionSnapshot, error)
}
