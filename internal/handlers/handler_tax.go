package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	"github.com/andeserp/fxcore_backend/internal/core/domain"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/middleware"
)

// taxHandler handles HTTP requests for tax rules and tax computation.
type taxHandler struct {
	taxService portssvc.TaxRuleSvcFacade
}

func newTaxHandler(ts portssvc.TaxRuleSvcFacade) *taxHandler {
	return &taxHandler{taxService: ts}
}

// registerTaxRoutes registers the tax rule and calculation routes.
func registerTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxRuleSvcFacade) {
	h := newTaxHandler(taxService)

	rules := rg.Group("/tax-rules")
	{
		rules.POST("", h.createTaxRule)
		rules.GET("", h.listTaxRules)
		rules.GET("/:ruleID", h.getTaxRule)
		rules.PUT("/:ruleID", h.updateTaxRule)
		rules.DELETE("/:ruleID", h.deactivateTaxRule)
	}

	rg.POST("/taxes/calculate", h.calculateTaxes)
}

// createTaxRule godoc
// @Summary Register a tax rule
// @Description Adds a priority-ordered tax rule for the company
// @Tags taxes
// @Accept  json
// @Produce  json
// @Param   rule body dto.CreateTaxRuleRequest true "Rule details"
// @Success 201 {object} dto.TaxRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /tax-rules [post]
func (h *taxHandler) createTaxRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rule, err := h.taxService.CreateTaxRule(c.Request.Context(), companyID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create tax rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tax rule"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaxRuleResponse(rule))
}

// listTaxRules godoc
// @Summary List tax rules
// @Description Retrieves rules ordered by priority descending, optionally filtered by kind
// @Tags taxes
// @Produce  json
// @Param   kind query string false "Tax kind (iva, igtf, islr, municipal, custom)"
// @Param   active query bool false "Only active rules"
// @Success 200 {array} dto.TaxRuleResponse
// @Security BearerAuth
// @Router /tax-rules [get]
func (h *taxHandler) listTaxRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	kind := domain.TaxKind(c.Query("kind"))
	activeOnly := c.Query("active") == "true"

	rules, err := h.taxService.ListTaxRules(c.Request.Context(), companyID, kind, activeOnly)
	if err != nil {
		logger.Error("Failed to list tax rules", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tax rules"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListTaxRuleResponse(rules))
}

// getTaxRule godoc
// @Summary Get a tax rule
// @Tags taxes
// @Produce  json
// @Param   ruleID path string true "Rule ID"
// @Success 200 {object} dto.TaxRuleResponse
// @Failure 404 {object} map[string]string "Tax rule not found"
// @Security BearerAuth
// @Router /tax-rules/{ruleID} [get]
func (h *taxHandler) getTaxRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	rule, err := h.taxService.GetTaxRuleByID(c.Request.Context(), companyID, c.Param("ruleID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tax rule not found"})
		} else {
			logger.Error("Failed to get tax rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tax rule"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxRuleResponse(rule))
}

// updateTaxRule godoc
// @Summary Update a tax rule
// @Description Patches the allow-listed rule fields
// @Tags taxes
// @Accept  json
// @Produce  json
// @Param   ruleID path string true "Rule ID"
// @Param   rule body dto.UpdateTaxRuleRequest true "Fields to update"
// @Success 200 {object} dto.TaxRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Tax rule not found"
// @Security BearerAuth
// @Router /tax-rules/{ruleID} [put]
func (h *taxHandler) updateTaxRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rule, err := h.taxService.UpdateTaxRule(c.Request.Context(), companyID, c.Param("ruleID"), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tax rule not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update tax rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tax rule"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToTaxRuleResponse(rule))
}

// deactivateTaxRule godoc
// @Summary Deactivate a tax rule
// @Tags taxes
// @Param   ruleID path string true "Rule ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Tax rule not found"
// @Security BearerAuth
// @Router /tax-rules/{ruleID} [delete]
func (h *taxHandler) deactivateTaxRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.taxService.DeactivateTaxRule(c.Request.Context(), companyID, c.Param("ruleID"), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tax rule not found"})
		} else {
			logger.Error("Failed to deactivate tax rule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate tax rule"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// calculateTaxes godoc
// @Summary Calculate taxes for an amount
// @Description Computes one kind when given, otherwise every kind with an applicable active rule
// @Tags taxes
// @Accept  json
// @Produce  json
// @Param   input body dto.CalculateTaxesRequest true "Amount and currency"
// @Success 200 {array} dto.TaxCalculationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /taxes/calculate [post]
func (h *taxHandler) calculateTaxes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.CalculateTaxesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if req.Kind != "" {
		calc, err := h.taxService.CalculateTax(c.Request.Context(), companyID, domain.TaxKind(req.Kind), req.Amount, req.CurrencyCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				logger.Error("Failed to calculate tax", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate tax"})
			}
			return
		}
		c.JSON(http.StatusOK, []dto.TaxCalculationResponse{dto.ToTaxCalculationResponse(calc)})
		return
	}

	calcs, err := h.taxService.CalculateAllTaxes(c.Request.Context(), companyID, req.Amount, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to calculate taxes", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate taxes"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToListTaxCalculationResponse(calcs))
}
