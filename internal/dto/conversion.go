package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andeserp/fxcore_backend/internal/core/domain"
	"github.com/andeserp/fxcore_backend/internal/core/ports/providers"
)

// ConvertRequest defines the input of a currency conversion.
type ConvertRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	FromCurrency string          `json:"fromCurrency" binding:"required,currencycode"`
	ToCurrency   string          `json:"toCurrency" binding:"required,currencycode"`
	// Date asks for the rate on a specific day. Nil means the current rate.
	// Providers that only expose live rates reject historical dates.
	Date *time.Time `json:"date,omitempty"`
}

// ConversionResponse defines the outcome of a currency conversion.
type ConversionResponse struct {
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	OriginalCurrency string          `json:"originalCurrency"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	TargetCurrency   string          `json:"targetCurrency"`
	RateUsed         decimal.Decimal `json:"rateUsed"`
	Provider         string          `json:"provider"`
	ConvertedAt      time.Time       `json:"convertedAt"`
}

// ToConversionResponse converts a domain.ConversionResult to its DTO
func ToConversionResponse(res *domain.ConversionResult) ConversionResponse {
	return ConversionResponse{
		OriginalAmount:   res.OriginalAmount,
		OriginalCurrency: res.OriginalCurrency,
		ConvertedAmount:  res.ConvertedAmount,
		TargetCurrency:   res.TargetCurrency,
		RateUsed:         res.RateUsed,
		Provider:         res.Provider,
		ConvertedAt:      res.ConvertedAt,
	}
}

// RateResponse defines a resolved rate for a currency pair.
type RateResponse struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	Provider     string          `json:"provider"`
	QuotedAt     time.Time       `json:"quotedAt"`
}

// ToRateResponse converts a providers.Rate to its DTO
func ToRateResponse(r *providers.Rate) RateResponse {
	return RateResponse{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Rate:         r.Value,
		Provider:     r.Provider,
		QuotedAt:     r.QuotedAt,
	}
}

// RefreshProvidersResponse reports the outcome of a forced provider refresh.
type RefreshProvidersResponse struct {
	Refreshed bool              `json:"refreshed"`
	Errors    map[string]string `json:"errors,omitempty"`
}
