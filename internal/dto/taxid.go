package dto

// ValidateTaxIDRequest defines the input for fiscal identifier validation.
type ValidateTaxIDRequest struct {
	TaxID string `json:"taxID" binding:"required"`
}

// ValidateTaxIDResponse reports the validation outcome. Formatted holds the
// canonical dash-separated form when the identifier is valid.
type ValidateTaxIDResponse struct {
	TaxID     string `json:"taxID"`
	Valid     bool   `json:"valid"`
	Formatted string `json:"formatted,omitempty"`
}
