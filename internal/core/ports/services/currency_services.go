package services

import (
	"context"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByID retrieves a specific currency by its id.
	GetCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error)

	// GetCurrencyByCode retrieves a specific currency by its ISO code.
	GetCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error)

	// GetBaseCurrency retrieves the company's base currency.
	GetBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error)

	// ListCurrencies retrieves the company's currencies.
	ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, companyID string, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// UpdateCurrency applies the allow-listed fields of the patch request.
	UpdateCurrency(ctx context.Context, companyID, currencyID string, req dto.UpdateCurrencyRequest, updaterUserID string) (*domain.Currency, error)

	// DeactivateCurrency soft-deletes a currency.
	DeactivateCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error

	// SetBaseCurrency marks a currency as the company's base, clearing the
	// flag from the previous base currency.
	SetBaseCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error
}

// CurrencyIGTFSvc defines the IGTF surcharge operations
type CurrencyIGTFSvc interface {
	// CalculateIGTF computes the foreign-currency transaction surcharge for a
	// payment, applying exemptions and the configured minimum amount.
	CalculateIGTF(ctx context.Context, companyID string, req dto.IGTFCalculationRequest) (*domain.IGTFResult, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
	CurrencyIGTFSvc
}
