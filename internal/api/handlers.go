package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/middleware"
	"github.com/dalfonso89/currency-converter/internal/models"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HandlerConfig holds the dependencies of the HTTP handlers
type HandlerConfig struct {
	Logger           *logger.Logger
	ConverterService *service.ConverterService
	RateLimiter      *ratelimit.Limiter
	MetricsHandler   http.Handler
}

// Handlers contains all HTTP handlers
type Handlers struct {
	logger           *logger.Logger
	startTime        time.Time
	converterService *service.ConverterService
	rateLimiter      *ratelimit.Limiter
	metricsHandler   http.Handler
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		logger:           handlerConfig.Logger,
		startTime:        time.Now(),
		converterService: handlerConfig.ConverterService,
		rateLimiter:      handlerConfig.RateLimiter,
		metricsHandler:   handlerConfig.MetricsHandler,
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimiter.Middleware())
	}

	router.GET("/health", handlers.HealthCheck)
	if handlers.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(handlers.metricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/currencies", handlers.GetCurrencies)
		apiV1.GET("/convert", handlers.Convert)
		apiV1.GET("/rates", handlers.GetRates)
		apiV1.POST("/rates/refresh", handlers.RefreshRates)
		apiV1.GET("/status", handlers.GetStatus)
	}

	return router
}

// HealthCheck reports liveness; it does not call the upstream API
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	context.JSON(http.StatusOK, models.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(handlers.startTime).String(),
	})
}

// GetCurrencies returns the selectable currency codes
func (handlers *Handlers) GetCurrencies(context *gin.Context) {
	currencies := handlers.converterService.Currencies()
	context.JSON(http.StatusOK, models.CurrenciesResponse{
		Currencies: currencies,
		Count:      len(currencies),
	})
}

// Convert converts ?amount= from ?from= to ?to= with the current rates
func (handlers *Handlers) Convert(context *gin.Context) {
	var query models.ConvertQuery
	if bindError := context.ShouldBindQuery(&query); bindError != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "invalid query", bindError.Error())
		return
	}

	result, convertError := handlers.converterService.ConvertInput(query.Amount, query.From, query.To)
	if errors.Is(convertError, service.ErrInvalidAmount) {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "Invalid input", "amount must be a number")
		return
	}
	if convertError != nil {
		handlers.writeErrorResponse(context, http.StatusInternalServerError, "conversion failed", convertError.Error())
		return
	}

	context.JSON(http.StatusOK, models.ConvertResponse{
		From:      result.From,
		To:        result.To,
		Amount:    result.Amount,
		Converted: result.Converted,
		Formatted: result.Formatted,
		Result:    service.ResultLine(result.Converted, result.To),
		Fallback:  result.Fallback,
	})
}

// GetRates returns the table currently in effect
func (handlers *Handlers) GetRates(context *gin.Context) {
	snapshot := handlers.converterService.Rates()

	response := models.RatesResponse{
		Rates: snapshot.Rates(),
		Count: snapshot.Len(),
	}
	if updatedAt := snapshot.UpdatedAt(); !updatedAt.IsZero() {
		response.UpdatedAt = &updatedAt
	}

	context.JSON(http.StatusOK, response)
}

// RefreshRates runs one refresh and reports its outcome
func (handlers *Handlers) RefreshRates(context *gin.Context) {
	outcome := handlers.converterService.Refresh(context.Request.Context())

	statusCode := http.StatusOK
	if !outcome.Succeeded() {
		statusCode = http.StatusBadGateway
	}

	context.JSON(statusCode, toRefreshResponse(outcome))
}

// GetStatus returns the connectivity indicator and table state
func (handlers *Handlers) GetStatus(context *gin.Context) {
	status := handlers.converterService.Status()

	response := models.StatusResponse{
		Internet:  string(status.Connectivity),
		RateCount: status.RateCount,
	}
	if !status.RatesAsOf.IsZero() {
		response.RatesAsOf = &status.RatesAsOf
	}
	if status.LastOutcome != nil {
		lastRefresh := toRefreshResponse(*status.LastOutcome)
		response.LastRefresh = &lastRefresh
	}

	context.JSON(http.StatusOK, response)
}

func toRefreshResponse(outcome service.RefreshOutcome) models.RefreshResponse {
	response := models.RefreshResponse{
		Outcome:            outcome.Kind.String(),
		StatusCode:         outcome.StatusCode,
		RateCount:          outcome.RateCount,
		InternetAccessible: outcome.InternetAccessible,
		CompletedAt:        outcome.CompletedAt,
	}
	if outcome.Err != nil {
		response.Error = outcome.Err.Error()
	}
	return response
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	context.JSON(statusCode, models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	})
}
