package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portsrepo "github.com/andeserp/fxcore_backend/internal/core/ports/repositories"
	"github.com/andeserp/fxcore_backend/internal/dto"
)

// factorPrecision bounds derived conversion factors.
const factorPrecision = 10

// CurrencyService provides business logic for tenant currency configuration,
// including conversion method derivation and IGTF determination.
type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	igtfRepo     portsrepo.IGTFConfigRepositoryFacade

	// Strong and weak classification sets come from configuration, never
	// from rate magnitude: a devaluation must not silently flip a
	// currency's conversion method.
	strongCurrencies map[string]bool
	weakCurrencies   map[string]bool
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, igtfRepo portsrepo.IGTFConfigRepositoryFacade, strongCurrencies, weakCurrencies []string) *CurrencyService {
	strong := make(map[string]bool, len(strongCurrencies))
	for _, c := range strongCurrencies {
		strong[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	weak := make(map[string]bool, len(weakCurrencies))
	for _, c := range weakCurrencies {
		weak[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	return &CurrencyService{
		currencyRepo:     currencyRepo,
		igtfRepo:         igtfRepo,
		strongCurrencies: strong,
		weakCurrencies:   weak,
	}
}

// validateCode enforces the structural 3-alpha-uppercase requirement.
func validateCode(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("%w: currency code must be exactly 3 letters", apperrors.ErrValidation)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: currency code must be uppercase letters", apperrors.ErrValidation)
		}
	}
	return nil
}

// deriveConversion computes a currency's conversion factor and method from
// its classification and rate. The base currency carries neither.
func (s *CurrencyService) deriveConversion(code string, rate decimal.Decimal, isBase bool) (*decimal.Decimal, domain.ConversionMethod) {
	if isBase {
		return nil, domain.ConversionUndefined
	}
	if s.strongCurrencies[code] {
		factor := decimal.NewFromInt(1).DivRound(rate, factorPrecision)
		return &factor, domain.ConversionDirect
	}
	if s.weakCurrencies[code] {
		factor := rate
		return &factor, domain.ConversionInverse
	}
	factor := decimal.NewFromInt(1).DivRound(rate, factorPrecision)
	return &factor, domain.ConversionCross
}

// CreateCurrency handles the creation of a new currency.
func (s *CurrencyService) CreateCurrency(ctx context.Context, companyID string, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	code := strings.ToUpper(req.Code)
	if err := validateCode(code); err != nil {
		return nil, err
	}

	if existing, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: currency code '%s' already registered", apperrors.ErrDuplicate, code)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check currency code '%s': %w", code, err)
	}

	rate := req.ExchangeRate
	if req.IsBase {
		// The base currency is the unit of account: its rate is 1 and it
		// must not displace an existing base.
		if existingBase, err := s.currencyRepo.FindBaseCurrency(ctx, companyID); err == nil && existingBase != nil {
			return nil, fmt.Errorf("%w: company already has base currency '%s'", apperrors.ErrValidation, existingBase.Code)
		} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check base currency: %w", err)
		}
		rate = decimal.NewFromInt(1)
	} else if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	decimalPlaces := 2
	if req.DecimalPlaces != nil {
		decimalPlaces = *req.DecimalPlaces
	}

	updateMethod := domain.RateUpdateManual
	if req.RateUpdateMethod != "" {
		updateMethod = domain.RateUpdateMethod(req.RateUpdateMethod)
	}

	factor, method := s.deriveConversion(code, rate, req.IsBase)

	now := time.Now()
	currency := domain.Currency{
		CurrencyID:       uuid.NewString(),
		CompanyID:        companyID,
		Code:             code,
		Name:             req.Name,
		Symbol:           req.Symbol,
		ExchangeRate:     rate,
		DecimalPlaces:    decimalPlaces,
		IsBase:           req.IsBase,
		IsActive:         true,
		IsNonStandard:    !domain.IsISO4217(code),
		ConversionFactor: factor,
		ConversionMethod: method,
		AppliesIGTF:      req.AppliesIGTF,
		IGTFRate:         req.IGTFRate,
		IGTFExempt:       req.IGTFExempt,
		IGTFMinAmount:    req.IGTFMinAmount,
		RateUpdateMethod: updateMethod,
		RateSourceURL:    req.RateSourceURL,
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	if currency.IsNonStandard {
		s.LogInfo(ctx, "registered non-standard currency code", slog.String("code", code))
	}

	return &currency, nil
}

// GetCurrencyByID retrieves a specific currency by its id.
func (s *CurrencyService) GetCurrencyByID(ctx context.Context, companyID, currencyID string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency in service: %w", err)
	}
	return currency, nil
}

// GetCurrencyByCode retrieves a specific currency by its ISO code.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, companyID, currencyCode string) (*domain.Currency, error) {
	code := strings.ToUpper(currencyCode)
	if err := validateCode(code); err != nil {
		return nil, err
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, companyID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency in service: %w", err)
	}
	return currency, nil
}

// GetBaseCurrency retrieves the company's base currency.
func (s *CurrencyService) GetBaseCurrency(ctx context.Context, companyID string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindBaseCurrency(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get base currency in service: %w", err)
	}
	return currency, nil
}

// ListCurrencies retrieves the company's currencies.
func (s *CurrencyService) ListCurrencies(ctx context.Context, companyID string, activeOnly bool) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, companyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	return currencies, nil
}

// UpdateCurrency applies the allow-listed fields of the patch request.
// The code, rate and base flag cannot be changed here.
func (s *CurrencyService) UpdateCurrency(ctx context.Context, companyID, currencyID string, req dto.UpdateCurrencyRequest, updaterUserID string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency for update: %w", err)
	}

	if req.Name != nil {
		currency.Name = *req.Name
	}
	if req.Symbol != nil {
		currency.Symbol = *req.Symbol
	}
	if req.DecimalPlaces != nil {
		currency.DecimalPlaces = *req.DecimalPlaces
	}
	if req.IsActive != nil {
		if currency.IsBase && !*req.IsActive {
			return nil, fmt.Errorf("%w: cannot deactivate the base currency", apperrors.ErrValidation)
		}
		currency.IsActive = *req.IsActive
	}
	if req.AppliesIGTF != nil {
		currency.AppliesIGTF = *req.AppliesIGTF
	}
	if req.IGTFRate != nil {
		if req.IGTFRate.IsNegative() {
			return nil, fmt.Errorf("%w: IGTF rate cannot be negative", apperrors.ErrValidation)
		}
		currency.IGTFRate = *req.IGTFRate
	}
	if req.IGTFExempt != nil {
		currency.IGTFExempt = *req.IGTFExempt
	}
	if req.IGTFMinAmount != nil {
		currency.IGTFMinAmount = *req.IGTFMinAmount
	}
	if req.RateUpdateMethod != nil {
		currency.RateUpdateMethod = domain.RateUpdateMethod(*req.RateUpdateMethod)
	}
	if req.RateSourceURL != nil {
		currency.RateSourceURL = *req.RateSourceURL
	}
	if req.Notes != nil {
		currency.Notes = *req.Notes
	}

	currency.LastUpdatedAt = time.Now()
	currency.LastUpdatedBy = updaterUserID

	if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
		return nil, fmt.Errorf("failed to update currency in service: %w", err)
	}
	return currency, nil
}

// DeactivateCurrency soft-deletes a currency.
func (s *CurrencyService) DeactivateCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error {
	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return fmt.Errorf("failed to load currency for deactivation: %w", err)
	}
	if currency.IsBase {
		return fmt.Errorf("%w: cannot deactivate the base currency", apperrors.ErrValidation)
	}
	if err := s.currencyRepo.DeactivateCurrency(ctx, companyID, currencyID, updaterUserID); err != nil {
		return fmt.Errorf("failed to deactivate currency in service: %w", err)
	}
	return nil
}

// SetBaseCurrency marks a currency as the company's base. The repository
// clears the previous holder's flag in the same transaction, so exactly one
// base currency exists at any time.
func (s *CurrencyService) SetBaseCurrency(ctx context.Context, companyID, currencyID, updaterUserID string) error {
	currency, err := s.currencyRepo.FindCurrencyByID(ctx, companyID, currencyID)
	if err != nil {
		return fmt.Errorf("failed to load currency for base change: %w", err)
	}
	if !currency.IsActive {
		return fmt.Errorf("%w: cannot make an inactive currency the base", apperrors.ErrValidation)
	}
	if currency.IsBase {
		return nil
	}
	if err := s.currencyRepo.SetBaseCurrency(ctx, companyID, currencyID, updaterUserID); err != nil {
		return fmt.Errorf("failed to set base currency in service: %w", err)
	}
	s.LogInfo(ctx, "base currency changed", slog.String("currency_id", currencyID), slog.String("code", currency.Code))
	return nil
}

// CalculateIGTF computes the foreign-currency transaction surcharge for a
// payment. The base currency never attracts IGTF regardless of flags.
func (s *CurrencyService) CalculateIGTF(ctx context.Context, companyID string, req dto.IGTFCalculationRequest) (*domain.IGTFResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	currency, err := s.GetCurrencyByCode(ctx, companyID, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	notApplied := func(reason string) *domain.IGTFResult {
		return &domain.IGTFResult{Amount: decimal.Zero.Round(2), Applied: false, Rate: decimal.Zero, Reason: reason}
	}

	if currency.IsBase {
		return notApplied("base currency payments are outside IGTF scope"), nil
	}
	if currency.IGTFExempt {
		return notApplied("currency is IGTF exempt"), nil
	}
	if !currency.AppliesIGTF {
		return notApplied("IGTF not configured for currency"), nil
	}

	rate := currency.IGTFRate
	minAmount := currency.IGTFMinAmount

	// A tenant-level configuration for the paying currency overrides the
	// per-currency defaults while its validity window is open.
	cfg, err := s.igtfRepo.FindIGTFConfig(ctx, companyID, currency.CurrencyID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load IGTF config: %w", err)
	}
	if cfg != nil {
		now := time.Now()
		inWindow := !now.Before(cfg.ValidFrom) && (cfg.ValidUntil == nil || !now.After(*cfg.ValidUntil))
		if inWindow {
			if cfg.IsExempt {
				return notApplied("tenant is IGTF exempt"), nil
			}
			if req.TransactionKind != "" {
				for _, kind := range cfg.ExemptTransactionKinds {
					if kind == req.TransactionKind {
						return notApplied("transaction kind is IGTF exempt"), nil
					}
				}
			}
			if req.PaymentMethod != "" && !cfg.AllowsPaymentMethod(req.PaymentMethod) {
				return notApplied("payment method outside IGTF scope"), nil
			}
			rate = cfg.Rate
			minAmount = cfg.MinAmountForeign
		}
	}

	if req.Amount.LessThan(minAmount) {
		return notApplied("amount below IGTF minimum threshold"), nil
	}

	amount := req.Amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	return &domain.IGTFResult{
		Amount:  amount,
		Applied: true,
		Rate:    rate,
		Reason:  "foreign currency payment above threshold",
	}, nil
}
