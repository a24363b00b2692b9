package services

import (
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/utils"
	"github.com/andeserp/fxcore_backend/internal/utils/ratecache"
	"github.com/andeserp/fxcore_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, rateSource providers.RateSource, analytics *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo, repos.IGTFConfigRepo, cfg.StrongCurrencies, cfg.WeakCurrencies)
	container.RateHistory = NewRateHistoryService(repos.CurrencyRepo, repos.RateHistoryRepo, analytics)
	container.Conversion = NewConversionService(rateSource, ratecache.New(cfg.FXCacheTTL, ratecache.DefaultMaxEntries))
	container.TaxRule = NewTaxRuleService(repos.TaxRuleRepo)
	container.Snapshot = NewSnapshotService(repos.SnapshotRepo, container.Currency, container.Conversion, container.TaxRule)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CurrencySvcFacade    = (*CurrencyService)(nil)
	_ portssvc.RateHistorySvcFacade = (*RateHistoryService)(nil)
	_ portssvc.ConversionSvcFacade  = (*ConversionService)(nil)
	_ portssvc.TaxRuleSvcFacade     = (*TaxRuleService)(nil)
	_ portssvc.SnapshotSvcFacade    = (*SnapshotService)(nil)
)
