package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/dto"
	"github.com/andeserp/fxcore_backend/internal/middleware"
)

// conversionHandler handles HTTP requests for currency conversion and the
// provider chain.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
}

func newConversionHandler(cs portssvc.ConversionSvcFacade) *conversionHandler {
	return &conversionHandler{conversionService: cs}
}

// registerConversionRoutes registers the conversion and provider routes.
// refreshLimiter throttles the forced refresh endpoint, which hits external
// providers on every call.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade, refreshLimiter gin.HandlerFunc) {
	h := newConversionHandler(conversionService)

	fx := rg.Group("/fx")
	{
		fx.POST("/convert", h.convert)
		fx.GET("/rate", h.getRate)
		fx.GET("/providers", h.providersStatus)
		fx.POST("/providers/refresh", refreshLimiter, h.refreshProviders)
		fx.GET("/cache/stats", h.cacheStats)
	}
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Converts using the provider chain with fallback and caching
// @Tags fx
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertRequest true "Conversion input"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 502 {object} map[string]string "No provider could quote the pair"
// @Security BearerAuth
// @Router /fx/convert [post]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.conversionService.Convert(c.Request.Context(), companyID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNoApplicableRate) {
			logger.Warn("No provider could quote pair",
				slog.String("from", req.FromCurrency), slog.String("to", req.ToCurrency))
			c.JSON(http.StatusBadGateway, gin.H{"error": "No exchange rate available for the requested pair"})
		} else {
			logger.Error("Failed to convert", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(result))
}

// getRate godoc
// @Summary Get the current rate for a pair
// @Description Resolves the rate without converting an amount
// @Tags fx
// @Produce  json
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Missing pair"
// @Failure 502 {object} map[string]string "No provider could quote the pair"
// @Security BearerAuth
// @Router /fx/rate [get]
func (h *conversionHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both 'from' and 'to' query parameters are required"})
		return
	}

	rate, err := h.conversionService.GetRate(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoApplicableRate) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "No exchange rate available for the requested pair"})
		} else {
			logger.Error("Failed to get rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rate"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// providersStatus godoc
// @Summary Report provider health
// @Description Lists every configured rate provider with availability and last update
// @Tags fx
// @Produce  json
// @Success 200 {array} providers.ProviderStatus
// @Security BearerAuth
// @Router /fx/providers [get]
func (h *conversionHandler) providersStatus(c *gin.Context) {
	statuses := h.conversionService.ProvidersStatus(c.Request.Context())
	c.JSON(http.StatusOK, statuses)
}

// refreshProviders godoc
// @Summary Force a provider refresh
// @Description Re-fetches every provider's data and clears the conversion cache
// @Tags fx
// @Produce  json
// @Success 200 {object} dto.RefreshProvidersResponse
// @Failure 429 {object} map[string]string "Too many requests"
// @Security BearerAuth
// @Router /fx/providers/refresh [post]
func (h *conversionHandler) refreshProviders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	errs := h.conversionService.RefreshProviders(c.Request.Context())

	resp := dto.RefreshProvidersResponse{
		Refreshed: len(errs) == 0,
		Errors:    make(map[string]string, len(errs)),
	}
	for name, err := range errs {
		logger.Warn("Provider refresh failed", slog.String("provider", name), slog.String("error", err.Error()))
		resp.Errors[name] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// cacheStats godoc
// @Summary Conversion cache counters
// @Description Returns cumulative cache hit and miss counters
// @Tags fx
// @Produce  json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /fx/cache/stats [get]
func (h *conversionHandler) cacheStats(c *gin.Context) {
	hits, misses := h.conversionService.CacheStats()
	c.JSON(http.StatusOK, gin.H{"hits": hits, "misses": misses})
}
