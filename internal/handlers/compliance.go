package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fundlens/fundlens-go/internal/cache"
	"github.com/fundlens/fundlens-go/internal/database"
	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/fundlens/fundlens-go/internal/services"
	"github.com/fundlens/fundlens-go/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ComplianceHandler exposes the analytics and compliance engine over HTTP.
// The engine stays pure; this layer does all fetching, caching, persistence
// and serialization.
type ComplianceHandler struct {
	repo        *database.FundRepository
	engine      *services.ComplianceEngine
	calculator  *services.MetricsCalculator
	trend       *services.TrendAnalyzer
	reportCache *cache.ReportCache
	notifier    *services.AlertNotifier
	logger      *logrus.Logger
}

// NewComplianceHandler creates a handler wired to the engine and storage.
func NewComplianceHandler(
	repo *database.FundRepository,
	engine *services.ComplianceEngine,
	calculator *services.MetricsCalculator,
	trend *services.TrendAnalyzer,
	reportCache *cache.ReportCache,
	notifier *services.AlertNotifier,
	logger *logrus.Logger,
) *ComplianceHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ComplianceHandler{
		repo:        repo,
		engine:      engine,
		calculator:  calculator,
		trend:       trend,
		reportCache: reportCache,
		notifier:    notifier,
		logger:      logger,
	}
}

// EvaluateCompliance handles POST /api/v1/compliance/evaluate with an inline
// fund, series and allocations. Nothing is persisted.
func (h *ComplianceHandler) EvaluateCompliance(c *gin.Context) {
	var req models.ComplianceEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	report := h.engine.EvaluateCompliance(&req.Fund, models.ReturnSeries(req.Series), req.Allocations)
	c.JSON(http.StatusOK, report)
}

// GetFundCompliance handles GET /api/v1/compliance/funds/:id. The latest
// report is served from cache when fresh; otherwise the fund is loaded,
// evaluated, persisted as a snapshot and cached.
func (h *ComplianceHandler) GetFundCompliance(c *gin.Context) {
	fundID := c.Param("id")
	ctx := c.Request.Context()

	if h.reportCache != nil {
		if report, ok := h.reportCache.Get(ctx, fundID); ok {
			c.JSON(http.StatusOK, report)
			return
		}
	}

	fund, series, allocations, ok := h.loadFundInputs(c, fundID)
	if !ok {
		return
	}

	report := h.engine.EvaluateCompliance(fund, series, allocations)

	if err := h.repo.SaveComplianceReport(ctx, report); err != nil {
		h.logger.WithError(err).WithField("fund_id", fundID).Warn("Failed to persist compliance report snapshot")
	}
	if h.reportCache != nil {
		if err := h.reportCache.Set(ctx, fundID, report); err != nil {
			h.logger.WithError(err).WithField("fund_id", fundID).Warn("Failed to cache compliance report")
		}
	}

	c.JSON(http.StatusOK, report)
}

// GetComplianceHistory handles GET /api/v1/compliance/funds/:id/history.
func (h *ComplianceHandler) GetComplianceHistory(c *gin.Context) {
	fundID := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	reports, err := h.repo.GetComplianceHistory(c.Request.Context(), fundID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch compliance history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fund_id":   fundID,
		"reports":   reports,
		"count":     len(reports),
		"timestamp": time.Now(),
	})
}

// GetFundMetrics handles GET /api/v1/analytics/funds/:id/metrics.
func (h *ComplianceHandler) GetFundMetrics(c *gin.Context) {
	fundID := c.Param("id")

	series, err := h.repo.GetPerformanceHistory(c.Request.Context(), fundID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch performance history", "details": err.Error()})
		return
	}

	bundle := h.calculator.ComputeMetrics(series)
	response := models.FundMetricsResponse{
		FundID:  fundID,
		Metrics: bundle,
		PerformanceRiskLevel: services.PerformanceRiskLevel(
			bundle.Volatility.InexactFloat64(),
			bundle.MaxDrawdown.InexactFloat64(),
		),
		Timestamp: time.Now(),
	}

	// Trend needs a longer history; omit it rather than fail the request.
	if trend, err := h.trend.AnalyzeNAVTrend(fundID, series); err == nil {
		response.NAVTrend = trend.Signal
	}

	c.JSON(http.StatusOK, response)
}

// GetNAVTrend handles GET /api/v1/analytics/funds/:id/trend.
func (h *ComplianceHandler) GetNAVTrend(c *gin.Context) {
	fundID := c.Param("id")

	series, err := h.repo.GetPerformanceHistory(c.Request.Context(), fundID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch performance history", "details": err.Error()})
		return
	}

	trend, err := h.trend.AnalyzeNAVTrend(fundID, series)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Trend unavailable", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trend)
}

// CalculatePersonalReturn handles POST /api/v1/analytics/pror. Invalid input
// surfaces as a 400, the single hard-error path in the engine.
func (h *ComplianceHandler) CalculatePersonalReturn(c *gin.Context) {
	var req models.PersonalReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pror, err := services.PersonalRateOfReturn(
		req.BeginningValue.InexactFloat64(),
		req.EndingValue.InexactFloat64(),
		req.Contributions.InexactFloat64(),
		req.Withdrawals.InexactFloat64(),
		req.PeriodMonths,
	)
	if err != nil {
		if utils.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input parameters", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate personal return", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PersonalReturnResponse{
		PersonalReturn: decimal.NewFromFloat(pror),
		PeriodMonths:   req.PeriodMonths,
		Timestamp:      time.Now(),
	})
}

// GetFundAlerts handles GET /api/v1/compliance/funds/:id/alerts. With
// notify=true and a configured notifier, triggered alerts are also delivered.
func (h *ComplianceHandler) GetFundAlerts(c *gin.Context) {
	fundID := c.Param("id")
	ctx := c.Request.Context()

	fund, series, _, ok := h.loadFundInputs(c, fundID)
	if !ok {
		return
	}

	alerts := h.engine.CheckAlerts(fund, series)

	if c.Query("notify") == "true" && h.notifier != nil && h.notifier.Enabled() {
		if err := h.notifier.NotifyAlerts(ctx, fund, alerts); err != nil {
			h.logger.WithError(err).WithField("fund_id", fundID).Warn("Failed to deliver alert notification")
		}
	}

	c.JSON(http.StatusOK, models.AlertsResponse{
		FundID:    fundID,
		Alerts:    alerts,
		Count:     len(alerts),
		Timestamp: time.Now(),
	})
}

// ListFunds handles GET /api/v1/funds.
func (h *ComplianceHandler) ListFunds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	funds, err := h.repo.ListFunds(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list funds", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.FundsResponse{
		Funds:     funds,
		Count:     len(funds),
		Timestamp: time.Now(),
	})
}

// loadFundInputs fetches the fund, series and allocations, writing the error
// response itself when anything fails.
func (h *ComplianceHandler) loadFundInputs(c *gin.Context, fundID string) (*models.FundProfile, models.ReturnSeries, []models.AllocationRecord, bool) {
	ctx := c.Request.Context()

	fund, err := h.repo.GetFund(ctx, fundID)
	if err != nil {
		if errors.Is(err, database.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fund not found"})
			return nil, nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fund", "details": err.Error()})
		return nil, nil, nil, false
	}

	series, err := h.repo.GetPerformanceHistory(ctx, fundID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch performance history", "details": err.Error()})
		return nil, nil, nil, false
	}

	allocations, err := h.repo.GetAllocations(ctx, fundID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch allocations", "details": err.Error()})
		return nil, nil, nil, false
	}

	return fund, series, allocations, true
}
