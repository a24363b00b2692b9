package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IGTFConfig is the per-company, per-currency configuration of the
// financial-transaction tax. At most one configuration may be active for a
// (company, currency) pair at any instant, enforced by validity-window
// non-overlap at the persistence layer.
type IGTFConfig struct {
	ConfigID   string `json:"configID"` // Primary key (UUID)
	CompanyID  string `json:"companyID"`
	CurrencyID string `json:"currencyID"`

	IsSpecialContributor bool            `json:"isSpecialContributor"`
	Rate                 decimal.Decimal `json:"rate"` // percentage

	MinAmountLocal   decimal.Decimal `json:"minAmountLocal"`
	MinAmountForeign decimal.Decimal `json:"minAmountForeign"`

	IsExempt                 bool     `json:"isExempt"`
	ExemptTransactionKinds   []string `json:"exemptTransactionKinds,omitempty"`
	ApplicablePaymentMethods []string `json:"applicablePaymentMethods,omitempty"`

	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	AuditFields
}

// AllowsPaymentMethod reports whether the given payment method is inside
// the configured applicable-methods list. An empty list allows any method.
func (c IGTFConfig) AllowsPaymentMethod(method string) bool {
	if len(c.ApplicablePaymentMethods) == 0 {
		return true
	}
	for _, m := range c.ApplicablePaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// IGTFResult describes the outcome of one IGTF determination.
type IGTFResult struct {
	Amount  decimal.Decimal `json:"amount"` // 2-digit quantized
	Applied bool            `json:"applied"`
	Rate    decimal.Decimal `json:"rate"`
	Reason  string          `json:"reason"`
}
