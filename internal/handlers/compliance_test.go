package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fundlens/fundlens-go/internal/cache"
	"github.com/fundlens/fundlens-go/internal/database"
	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/fundlens/fundlens-go/internal/services"
	"github.com/fundlens/fundlens-go/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, withCache bool) (*ComplianceHandler, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	var reportCache *cache.ReportCache
	if withCache {
		_, client := testutil.NewMiniredisClient(t)
		reportCache = cache.NewReportCache(client, 15*time.Minute)
	}

	calculator := services.NewMetricsCalculator()
	handler := NewComplianceHandler(
		database.NewFundRepository(mock),
		services.NewComplianceEngine(services.DefaultComplianceLimits(), calculator, logger),
		calculator,
		services.NewTrendAnalyzer(logger),
		reportCache,
		services.NewAlertNotifier("", "", logger),
		logger,
	)
	return handler, mock
}

func newTestRouter(h *ComplianceHandler) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/funds", h.ListFunds)
	v1.POST("/compliance/evaluate", h.EvaluateCompliance)
	v1.GET("/compliance/funds/:id", h.GetFundCompliance)
	v1.GET("/compliance/funds/:id/history", h.GetComplianceHistory)
	v1.GET("/compliance/funds/:id/alerts", h.GetFundAlerts)
	v1.GET("/analytics/funds/:id/metrics", h.GetFundMetrics)
	v1.GET("/analytics/funds/:id/trend", h.GetNAVTrend)
	v1.POST("/analytics/pror", h.CalculatePersonalReturn)
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fundRows() *pgxmock.Rows {
	now := time.Now()
	inception := now.AddDate(-10, 0, 0)
	return pgxmock.NewRows([]string{
		"id", "name", "family", "type", "management_fee", "expense_ratio",
		"inception_date", "created_at", "updated_at",
	}).AddRow(
		"fund-1", "Test Growth Fund", "Test Family", models.FundType("Balanced"),
		decimal.NewFromFloat(1.5), decimal.NewFromFloat(0.5),
		&inception, now, now,
	)
}

func performanceRows(n int) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "fund_id", "period", "nav", "period_return", "benchmark_return", "aum", "created_at",
	})
	for i := 0; i < n; i++ {
		aum := 50000000.0
		if i == n-1 {
			aum = 12000000.0
		}
		rows.AddRow("p", "fund-1", "2025-01", decimal.NewFromFloat(25.0),
			decimal.NewFromFloat(1.0), decimal.NewFromFloat(1.0),
			decimal.NewFromFloat(aum), time.Now())
	}
	return rows
}

func allocationRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "fund_id", "investment_type", "allocation", "risk_rating", "created_at",
	}).AddRow("a-1", "fund-1", "REITs", decimal.NewFromFloat(10.0), 5, time.Now())
}

func TestEvaluateComplianceInline(t *testing.T) {
	handler, _ := newTestHandler(t, false)
	router := newTestRouter(handler)

	req := models.ComplianceEvaluationRequest{
		Fund: models.FundProfile{
			ID:            "fund-1",
			Name:          "Inline Fund",
			Type:          models.FundTypeBalanced,
			ManagementFee: decimal.NewFromFloat(3.0),
			ExpenseRatio:  decimal.NewFromFloat(3.5),
		},
	}

	w := performJSON(router, http.MethodPost, "/api/v1/compliance/evaluate", req)
	require.Equal(t, http.StatusOK, w.Code)

	var report models.ComplianceReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.False(t, report.OverallCompliant)
	assert.Contains(t, report.Violations, "fee_disclosure")
	assert.Len(t, report.Checks, 5)
}

func TestEvaluateComplianceInlineBadBody(t *testing.T) {
	handler, _ := newTestHandler(t, false)
	router := newTestRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/evaluate", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFundCompliancePersistsAndCaches(t *testing.T) {
	handler, mock := newTestHandler(t, true)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, name, family, type").
		WithArgs("fund-1").WillReturnRows(fundRows())
	mock.ExpectQuery("SELECT id, fund_id, period, nav").
		WithArgs("fund-1", 120).WillReturnRows(performanceRows(12))
	mock.ExpectQuery("SELECT id, fund_id, investment_type").
		WithArgs("fund-1").WillReturnRows(allocationRows())
	mock.ExpectExec("INSERT INTO compliance_reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w := performJSON(router, http.MethodGet, "/api/v1/compliance/funds/fund-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report models.ComplianceReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.OverallCompliant)
	assert.Equal(t, "fund-1", report.FundID)

	require.NoError(t, mock.ExpectationsWereMet())

	// Second request is served from cache; no further queries expected.
	w = performJSON(router, http.MethodGet, "/api/v1/compliance/funds/fund-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFundComplianceNotFound(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, name, family, type").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "family", "type", "management_fee", "expense_ratio",
			"inception_date", "created_at", "updated_at",
		}))

	w := performJSON(router, http.MethodGet, "/api/v1/compliance/funds/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFundMetrics(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, fund_id, period, nav").
		WithArgs("fund-1", 120).WillReturnRows(performanceRows(12))

	w := performJSON(router, http.MethodGet, "/api/v1/analytics/funds/fund-1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FundMetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fund-1", resp.FundID)
	require.NotNil(t, resp.Metrics)
	assert.Equal(t, 12, resp.Metrics.Observations)
	assert.Equal(t, "Low", resp.PerformanceRiskLevel)
	assert.Equal(t, services.TrendStable, resp.NAVTrend)
}

func TestGetNAVTrendInsufficientHistory(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, fund_id, period, nav").
		WithArgs("fund-1", 120).WillReturnRows(performanceRows(5))

	w := performJSON(router, http.MethodGet, "/api/v1/analytics/funds/fund-1/trend", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCalculatePersonalReturn(t *testing.T) {
	handler, _ := newTestHandler(t, false)
	router := newTestRouter(handler)

	req := models.PersonalReturnRequest{
		BeginningValue: decimal.NewFromInt(10000),
		EndingValue:    decimal.NewFromInt(12000),
		Contributions:  decimal.NewFromInt(1000),
		Withdrawals:    decimal.Zero,
		PeriodMonths:   12,
	}

	w := performJSON(router, http.MethodPost, "/api/v1/analytics/pror", req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PersonalReturnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9.09, resp.PersonalReturn.InexactFloat64())
	assert.Equal(t, 12, resp.PeriodMonths)
}

func TestCalculatePersonalReturnInvalidInput(t *testing.T) {
	handler, _ := newTestHandler(t, false)
	router := newTestRouter(handler)

	req := models.PersonalReturnRequest{
		BeginningValue: decimal.Zero,
		EndingValue:    decimal.NewFromInt(1000),
		PeriodMonths:   12,
	}

	w := performJSON(router, http.MethodPost, "/api/v1/analytics/pror", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid input parameters")
}

func TestGetFundAlerts(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, name, family, type").
		WithArgs("fund-1").WillReturnRows(fundRows())
	mock.ExpectQuery("SELECT id, fund_id, period, nav").
		WithArgs("fund-1", 120).WillReturnRows(performanceRows(12))
	mock.ExpectQuery("SELECT id, fund_id, investment_type").
		WithArgs("fund-1").WillReturnRows(allocationRows())

	w := performJSON(router, http.MethodGet, "/api/v1/compliance/funds/fund-1/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AlertsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fund-1", resp.FundID)
	assert.Equal(t, 0, resp.Count)
}

func TestListFunds(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	mock.ExpectQuery("SELECT id, name, family, type").
		WithArgs(100).WillReturnRows(fundRows())

	w := performJSON(router, http.MethodGet, "/api/v1/funds", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FundsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Test Growth Fund", resp.Funds[0].Name)
}

func TestGetComplianceHistory(t *testing.T) {
	handler, mock := newTestHandler(t, false)
	router := newTestRouter(handler)

	payload := []byte(`{"id":"report-1","fund_id":"fund-1","overall_compliant":true}`)
	mock.ExpectQuery("SELECT report").
		WithArgs("fund-1", 12).
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(payload))

	w := performJSON(router, http.MethodGet, "/api/v1/compliance/funds/fund-1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"report-1"`)
}
