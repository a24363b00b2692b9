package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionMethod describes how a currency's rate relates to the base currency.
type ConversionMethod string

const (
	// ConversionDirect applies to currencies stronger than the base: the
	// stored rate is base-units-per-foreign-unit and the conversion factor
	// is its reciprocal.
	ConversionDirect ConversionMethod = "direct"
	// ConversionInverse applies to currencies weaker than the base: the
	// stored rate is already the conversion factor.
	ConversionInverse ConversionMethod = "inverse"
	// ConversionCross triangulates through the base currency.
	ConversionCross ConversionMethod = "cross"
	// ConversionUndefined is reserved for the base currency itself.
	ConversionUndefined ConversionMethod = "undefined"
)

// RateUpdateMethod describes how a currency's rate is kept current.
type RateUpdateMethod string

const (
	RateUpdateManual    RateUpdateMethod = "manual"
	RateUpdateScheduled RateUpdateMethod = "scheduled-api"
	RateUpdateScraper   RateUpdateMethod = "scraper"
)

// Currency is a tenant-owned currency configuration, including its live
// exchange rate against the tenant's base currency and its IGTF settings.
// Exactly one currency per company carries IsBase=true.
type Currency struct {
	CurrencyID string `json:"currencyID"` // Primary key (UUID)
	CompanyID  string `json:"companyID"`  // Owning tenant

	Code   string `json:"code"` // 3-letter ISO 4217 or registered extension
	Name   string `json:"name"`
	Symbol string `json:"symbol"`

	// ExchangeRate is expressed against the company's base currency and may
	// carry up to 10 fractional digits. Amounts surfaced to callers are
	// always 2-digit quantized; the rate itself is not.
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	DecimalPlaces int             `json:"decimalPlaces"`

	IsBase   bool `json:"isBase"`
	IsActive bool `json:"isActive"`

	// IsNonStandard marks codes that passed structural validation but are
	// not in the ISO 4217 reference table (crypto or regional extensions).
	IsNonStandard bool `json:"isNonStandard"`

	ConversionFactor *decimal.Decimal `json:"conversionFactor,omitempty"` // nil for the base currency
	ConversionMethod ConversionMethod `json:"conversionMethod"`

	AppliesIGTF   bool            `json:"appliesIGTF"`
	IGTFRate      decimal.Decimal `json:"igtfRate"`
	IGTFExempt    bool            `json:"igtfExempt"`
	IGTFMinAmount decimal.Decimal `json:"igtfMinAmount"`

	RateUpdateMethod RateUpdateMethod `json:"rateUpdateMethod"`
	RateSourceURL    string           `json:"rateSourceURL,omitempty"`
	LastRateUpdate   *time.Time       `json:"lastRateUpdate,omitempty"`
	NextRateUpdate   *time.Time       `json:"nextRateUpdate,omitempty"`

	Notes string `json:"notes,omitempty"`

	AuditFields
}
