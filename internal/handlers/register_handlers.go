package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/andeserp/fxcore_backend/cmd/docs"
	portssvc "github.com/andeserp/fxcore_backend/internal/core/ports/services"
	"github.com/andeserp/fxcore_backend/internal/middleware"
	"github.com/andeserp/fxcore_backend/pkg/config"
)

// requireIdentity resolves the tenant and user from the authenticated request
// context. Writes a 401 and returns ok=false when either is missing.
func requireIdentity(c *gin.Context) (companyID, userID string, ok bool) {
	companyID, ok = middleware.GetCompanyIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	userID, ok = middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	return companyID, userID, true
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerBindingValidations()

	r.GET("/", getHome)

	// Health check route, outside authentication.
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Forced provider refreshes hit external services; throttle them per IP.
	refreshLimiter := middleware.RateLimit(limiter.New(memory.NewStore(), limiter.Rate{
		Period: cfg.FXRefreshLimitPeriod,
		Limit:  cfg.FXRefreshLimitCount,
	}))

	registerCurrencyRoutes(v1, services.Currency)
	registerRateHistoryRoutes(v1, services.RateHistory)
	registerConversionRoutes(v1, services.Conversion, refreshLimiter)
	registerTaxRoutes(v1, services.TaxRule)
	registerSnapshotRoutes(v1, services.Snapshot)
	registerTaxIDRoutes(v1)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		// no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
