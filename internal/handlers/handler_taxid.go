package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/utils/taxid"
)

// registerTaxIDRoutes registers the fiscal identifier validation route.
// Validation is a pure computation, so the handler calls the utility directly.
func registerTaxIDRoutes(rg *gin.RouterGroup) {
	rg.POST("/tax-ids/validate", validateTaxID)
}

// validateTaxID godoc
// @Summary Validate a fiscal identifier
// @Description Checks a RIF-style identifier's structure and check digit, returning the canonical form when valid
// @Tags tax-ids
// @Accept  json
// @Produce  json
// @Param   taxID body dto.ValidateTaxIDRequest true "Identifier to validate"
// @Success 200 {object} dto.ValidateTaxIDResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /tax-ids/validate [post]
func validateTaxID(c *gin.Context) {
	var req dto.ValidateTaxIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp := dto.ValidateTaxIDResponse{
		TaxID: req.TaxID,
		Valid: taxid.Validate(req.TaxID),
	}
	if resp.Valid {
		resp.Formatted = taxid.Format(req.TaxID)
	}
	c.JSON(http.StatusOK, resp)
}
