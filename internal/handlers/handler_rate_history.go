package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/middleware"
)

// rateHistoryHandler handles HTTP requests for rate changes and their audit trail.
type rateHistoryHandler struct {
	rateHistoryService portssvc.RateHistorySvcFacade
}

func newRateHistoryHandler(rhs portssvc.RateHistorySvcFacade) *rateHistoryHandler {
	return &rateHistoryHandler{rateHistoryService: rhs}
}

// registerRateHistoryRoutes registers the rate mutation and history routes
// under the currencies group.
func registerRateHistoryRoutes(rg *gin.RouterGroup, rateHistoryService portssvc.RateHistorySvcFacade) {
	h := newRateHistoryHandler(rateHistoryService)

	currencies := rg.Group("/currencies")
	{
		currencies.PUT("/:currencyID/rate", h.updateRate)
		currencies.GET("/:currencyID/history", h.listRateHistory)
		currencies.GET("/:currencyID/rate-at", h.getRateAt)
		currencies.GET("/:currencyID/statistics", h.getStatistics)
	}
}

// updateRate godoc
// @Summary Update a currency's exchange rate
// @Description Applies a new rate and appends the audit history entry atomically
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Param   rate body dto.UpdateRateRequest true "New rate and change context"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid rate or base currency"
// @Failure 404 {object} map[string]string "Currency not found"
// @Security BearerAuth
// @Router /currencies/{currencyID}/rate [put]
func (h *rateHistoryHandler) updateRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, userID, ok := requireIdentity(c)
	if !ok {
		return
	}
	currencyID := c.Param("currencyID")

	var req dto.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	currency, entry, err := h.rateHistoryService.UpdateRate(c.Request.Context(), companyID, currencyID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rate"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": dto.ToCurrencyResponse(currency),
		"change":   dto.ToRateHistoryResponse(entry),
	})
}

// listRateHistory godoc
// @Summary List a currency's rate history
// @Description Retrieves rate change entries newest first, with cursor pagination
// @Tags rates
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Param   limit query int false "Page size (default 50, max 100)"
// @Param   nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListRateHistoryResponse
// @Failure 400 {object} map[string]string "Invalid pagination token"
// @Security BearerAuth
// @Router /currencies/{currencyID}/history [get]
func (h *rateHistoryHandler) listRateHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	currencyID := c.Param("currencyID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	nextToken := c.Query("nextToken")

	entries, token, err := h.rateHistoryService.ListRateHistory(c.Request.Context(), companyID, currencyID, limit, nextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list rate history", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rate history"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToListRateHistoryResponse(entries, token))
}

// getRateAt godoc
// @Summary Resolve a historical rate
// @Description Retrieves the rate that was in effect at the given RFC3339 instant
// @Tags rates
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Param   at query string true "Instant (RFC3339)"
// @Success 200 {object} dto.RateHistoryResponse
// @Failure 400 {object} map[string]string "Invalid timestamp"
// @Failure 404 {object} map[string]string "No rate recorded at that instant"
// @Security BearerAuth
// @Router /currencies/{currencyID}/rate-at [get]
func (h *rateHistoryHandler) getRateAt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	currencyID := c.Param("currencyID")

	at, err := time.Parse(time.RFC3339, c.Query("at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp, expected RFC3339"})
		return
	}

	entry, err := h.rateHistoryService.GetRateAt(c.Request.Context(), companyID, currencyID, at)
	if err != nil {
		logger.Error("Failed to resolve historical rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve historical rate"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No rate recorded at that instant"})
		return
	}
	c.JSON(http.StatusOK, dto.ToRateHistoryResponse(entry))
}

// getStatistics godoc
// @Summary Get rate statistics
// @Description Aggregates min, max and average variation over a date range
// @Tags rates
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Param   from query string false "Range start (RFC3339, default 30 days ago)"
// @Param   to query string false "Range end (RFC3339, default now)"
// @Success 200 {object} dto.CurrencyStatisticsResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Security BearerAuth
// @Router /currencies/{currencyID}/statistics [get]
func (h *rateHistoryHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}
	currencyID := c.Param("currencyID")

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp, expected RFC3339"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp, expected RFC3339"})
			return
		}
		to = parsed
	}

	stats, err := h.rateHistoryService.GetCurrencyStatistics(c.Request.Context(), companyID, currencyID, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		} else {
			logger.Error("Failed to compute statistics", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyStatisticsResponse(stats))
}
