package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsBundle is the set of statistics computed for one return series.
// A bundle is built fresh per call and never mutated afterwards.
type MetricsBundle struct {
	Volatility       decimal.Decimal `json:"volatility"`
	MaxDrawdown      decimal.Decimal `json:"max_drawdown"`
	SharpeRatio      decimal.Decimal `json:"sharpe_ratio"`
	SortinoRatio     decimal.Decimal `json:"sortino_ratio"`
	TreynorRatio     decimal.Decimal `json:"treynor_ratio"`
	Beta             decimal.Decimal `json:"beta"`
	Correlation      decimal.Decimal `json:"correlation"`
	InformationRatio decimal.Decimal `json:"information_ratio"`
	JensensAlpha     decimal.Decimal `json:"jensens_alpha"`
	ValueAtRisk      decimal.Decimal `json:"value_at_risk"`
	ConditionalVaR   decimal.Decimal `json:"conditional_var"`
	VaRConfidence    decimal.Decimal `json:"var_confidence"`
	AnnualizedReturn decimal.Decimal `json:"annualized_return"`
	Observations     int             `json:"observations"`
	ComputedAt       time.Time       `json:"computed_at"`
}

// CheckResult is the outcome of a single compliance check.
type CheckResult struct {
	Name      string                 `json:"name"`
	Severity  string                 `json:"severity"`
	Compliant bool                   `json:"compliant"`
	Messages  []string               `json:"messages,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Recommendation is a remediation action derived from a failed check.
type Recommendation struct {
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	Message      string `json:"message"`
	DeadlineDays int    `json:"deadline_days"`
}

// ComplianceReport is the aggregate verdict for one evaluation. It is
// constructed once per call and immutable thereafter; the caller persists
// snapshots for trend reporting.
type ComplianceReport struct {
	ID               string           `json:"id" db:"id"`
	FundID           string           `json:"fund_id" db:"fund_id"`
	OverallCompliant bool             `json:"overall_compliant" db:"overall_compliant"`
	Checks           []CheckResult    `json:"checks"`
	Violations       []string         `json:"violations"`
	Warnings         []string         `json:"warnings"`
	RiskScore        int              `json:"risk_score" db:"risk_score"`
	RiskLevel        string           `json:"risk_level" db:"risk_level"`
	Recommendations  []Recommendation `json:"recommendations"`
	EvaluatedAt      time.Time        `json:"evaluated_at" db:"evaluated_at"`
}

// Alert is an independent threshold trigger evaluated against raw fund and
// series data, separate from the compliance report.
type Alert struct {
	ID          string          `json:"id"`
	FundID      string          `json:"fund_id"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	Value       decimal.Decimal `json:"value"`
	Threshold   decimal.Decimal `json:"threshold"`
	TriggeredAt time.Time       `json:"triggered_at"`
}

// ComplianceEvaluationRequest carries an inline fund, series and allocations
// for a one-shot evaluation without touching storage.
type ComplianceEvaluationRequest struct {
	Fund        FundProfile          `json:"fund" binding:"required"`
	Series      []PerformanceSnapshot `json:"series"`
	Allocations []AllocationRecord   `json:"allocations"`
}

// PersonalReturnRequest carries the cash-flow figures for a personal rate of
// return calculation.
type PersonalReturnRequest struct {
	BeginningValue decimal.Decimal `json:"beginning_value"`
	EndingValue    decimal.Decimal `json:"ending_value"`
	Contributions  decimal.Decimal `json:"contributions"`
	Withdrawals    decimal.Decimal `json:"withdrawals"`
	PeriodMonths   int             `json:"period_months"`
}

// PersonalReturnResponse is the result of a personal rate of return
// calculation.
type PersonalReturnResponse struct {
	PersonalReturn decimal.Decimal `json:"personal_return"`
	PeriodMonths   int             `json:"period_months"`
	Timestamp      time.Time       `json:"timestamp"`
}

// FundMetricsResponse bundles metrics with the reporting layer's
// volatility/drawdown risk level and NAV trend signal.
type FundMetricsResponse struct {
	FundID               string         `json:"fund_id"`
	Metrics              *MetricsBundle `json:"metrics"`
	PerformanceRiskLevel string         `json:"performance_risk_level"`
	NAVTrend             string         `json:"nav_trend,omitempty"`
	Timestamp            time.Time      `json:"timestamp"`
}

// AlertsResponse lists the alerts triggered for a fund.
type AlertsResponse struct {
	FundID    string    `json:"fund_id"`
	Alerts    []Alert   `json:"alerts"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// FundsResponse lists fund profiles.
type FundsResponse struct {
	Funds     []FundProfile `json:"funds"`
	Count     int           `json:"count"`
	Timestamp time.Time     `json:"timestamp"`
}
