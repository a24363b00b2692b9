// Package pgsql contains the PostgreSQL-backed implementations of the
// repository ports, built on pgx connection pools.
package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRepo:    NewPgxCurrencyRepository(pool),
		RateHistoryRepo: NewPgxRateHistoryRepository(pool),
		TaxRuleRepo:     NewPgxTaxRuleRepository(pool),
		SnapshotRepo:    NewPgxSnapshotRepository(pool),
		IGTFConfigRepo:  NewPgxIGTFConfigRepository(pool),
	}
}
