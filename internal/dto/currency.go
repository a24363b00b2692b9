package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	Code          string          `json:"code" binding:"required,currencycode"`
	Name          string          `json:"name" binding:"required"`
	Symbol        string          `json:"symbol" binding:"required"`
	DecimalPlaces *int            `json:"decimalPlaces" binding:"omitempty,min=0,max=18"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IsBase        bool            `json:"isBase"`

	AppliesIGTF   bool            `json:"appliesIGTF"`
	IGTFRate      decimal.Decimal `json:"igtfRate"`
	IGTFExempt    bool            `json:"igtfExempt"`
	IGTFMinAmount decimal.Decimal `json:"igtfMinAmount"`

	RateUpdateMethod string `json:"rateUpdateMethod" binding:"omitempty,oneof=manual scheduled-api scraper"`
	RateSourceURL    string `json:"rateSourceURL"`
	Notes            string `json:"notes"`
}

// UpdateCurrencyRequest defines the patchable currency fields. Nil fields are
// left untouched. Code, exchange rate and the base flag are deliberately
// absent: codes are immutable, rates change only through the rate update
// endpoint, and the base flag only through the set-base endpoint.
type UpdateCurrencyRequest struct {
	Name          *string          `json:"name,omitempty"`
	Symbol        *string          `json:"symbol,omitempty"`
	DecimalPlaces *int             `json:"decimalPlaces,omitempty" binding:"omitempty,min=0,max=18"`
	IsActive      *bool            `json:"isActive,omitempty"`
	AppliesIGTF   *bool            `json:"appliesIGTF,omitempty"`
	IGTFRate      *decimal.Decimal `json:"igtfRate,omitempty"`
	IGTFExempt    *bool            `json:"igtfExempt,omitempty"`
	IGTFMinAmount *decimal.Decimal `json:"igtfMinAmount,omitempty"`

	RateUpdateMethod *string `json:"rateUpdateMethod,omitempty" binding:"omitempty,oneof=manual scheduled-api scraper"`
	RateSourceURL    *string `json:"rateSourceURL,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyID string `json:"currencyID"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`

	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	DecimalPlaces int             `json:"decimalPlaces"`

	IsBase        bool `json:"isBase"`
	IsActive      bool `json:"isActive"`
	IsNonStandard bool `json:"isNonStandard"`

	ConversionFactor *decimal.Decimal `json:"conversionFactor,omitempty"`
	ConversionMethod string           `json:"conversionMethod"`

	AppliesIGTF   bool            `json:"appliesIGTF"`
	IGTFRate      decimal.Decimal `json:"igtfRate"`
	IGTFExempt    bool            `json:"igtfExempt"`
	IGTFMinAmount decimal.Decimal `json:"igtfMinAmount"`

	RateUpdateMethod string     `json:"rateUpdateMethod"`
	RateSourceURL    string     `json:"rateSourceURL,omitempty"`
	LastRateUpdate   *time.Time `json:"lastRateUpdate,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyID:       curr.CurrencyID,
		Code:             curr.Code,
		Name:             curr.Name,
		Symbol:           curr.Symbol,
		ExchangeRate:     curr.ExchangeRate,
		DecimalPlaces:    curr.DecimalPlaces,
		IsBase:           curr.IsBase,
		IsActive:         curr.IsActive,
		IsNonStandard:    curr.IsNonStandard,
		ConversionFactor: curr.ConversionFactor,
		ConversionMethod: string(curr.ConversionMethod),
		AppliesIGTF:      curr.AppliesIGTF,
		IGTFRate:         curr.IGTFRate,
		IGTFExempt:       curr.IGTFExempt,
		IGTFMinAmount:    curr.IGTFMinAmount,
		RateUpdateMethod: string(curr.RateUpdateMethod),
		RateSourceURL:    curr.RateSourceURL,
		LastRateUpdate:   curr.LastRateUpdate,
		Notes:            curr.Notes,
		CreatedAt:        curr.CreatedAt,
		CreatedBy:        curr.CreatedBy,
		LastUpdatedAt:    curr.LastUpdatedAt,
		LastUpdatedBy:    curr.LastUpdatedBy,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, curr := range currencies {
		res[i] = ToCurrencyResponse(&curr)
	}
	return res
}

// IGTFCalculationRequest defines the input for an IGTF determination.
type IGTFCalculationRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode    string          `json:"currencyCode" binding:"required,currencycode"`
	PaymentMethod   string          `json:"paymentMethod"`
	TransactionKind string          `json:"transactionKind"`
}

// IGTFCalculationResponse defines the outcome of an IGTF determination.
type IGTFCalculationResponse struct {
	Amount  decimal.Decimal `json:"amount"`
	Applied bool            `json:"applied"`
	Rate    decimal.Decimal `json:"rate"`
	Reason  string          `json:"reason"`
}

// ToIGTFCalculationResponse converts a domain.IGTFResult to its DTO
func ToIGTFCalculationResponse(res *domain.IGTFResult) IGTFCalculationResponse {
	return IGTFCalculationResponse{
		Amount:  res.Amount,
		Applied: res.Applied,
		Rate:    res.Rate,
		Reason:  res.Reason,
	}
}
