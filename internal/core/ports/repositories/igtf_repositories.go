package repositories

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// IGTFConfigReader defines read operations for IGTF configuration
type IGTFConfigReader interface {
	// FindIGTFConfig retrieves the IGTF configuration currently in force for a
	// company and paying currency, or nil when none has been saved yet.
	FindIGTFConfig(ctx context.Context, companyID, currencyID string) (*domain.IGTFConfig, error)
}

// IGTFConfigWriter defines write operations for IGTF configuration
type IGTFConfigWriter interface {
	// SaveIGTFConfig persists the IGTF configuration, replacing any previous one.
	SaveIGTFConfig(ctx context.Context, config domain.IGTFConfig) error
}

// IGTFConfigRepositoryFacade combines the IGTF configuration repository interfaces
type IGTFConfigRepositoryFacade interface {
	IGTFConfigReader
	IGTFConfigWriter
}
