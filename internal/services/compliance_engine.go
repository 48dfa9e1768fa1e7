package services

import (
	"fmt"
	"time"

	"github.com/fundlens/fundlens-go/internal/config"
	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// SeverityViolation marks a hard gate: failure flips the overall verdict.
	SeverityViolation = "violation"
	// SeverityWarning marks a soft gate: failure is tracked but does not
	// flip the overall verdict.
	SeverityWarning = "warning"

	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"

	AlertSeverityWarning = "WARNING"
	AlertSeverityInfo    = "INFO"
)

const (
	CheckConcentrationLimits   = "concentration_limits"
	CheckRiskDisclosure        = "risk_disclosure"
	CheckPerformanceReporting  = "performance_reporting"
	CheckFeeDisclosure         = "fee_disclosure"
	CheckLiquidityRequirements = "liquidity_requirements"
)

// Remediation deadlines in days, fixed per check category.
var remediationDeadlines = map[string]int{
	CheckConcentrationLimits:   30,
	CheckFeeDisclosure:         15,
	CheckRiskDisclosure:        60,
	CheckLiquidityRequirements: 90,
}

// evaluationContext bundles the caller-supplied inputs for one evaluation.
type evaluationContext struct {
	fund        *models.FundProfile
	series      models.ReturnSeries
	allocations []models.AllocationRecord
}

// complianceCheck is one named rule: an evaluator plus its severity tier.
// Checks are composed as data so new rules slot in without touching the
// aggregation loop.
type complianceCheck struct {
	name     string
	severity string
	evaluate func(*evaluationContext) models.CheckResult
}

// ComplianceEngine applies the fixed rule set to a fund, its performance
// history and its alternative-investment allocations. Evaluation is a single
// pure pass; the engine holds no per-fund state and concurrent evaluations
// need no coordination.
type ComplianceEngine struct {
	limits     config.ComplianceConfig
	calculator *MetricsCalculator
	logger     *logrus.Logger
	checks     []complianceCheck
}

// NewComplianceEngine creates an engine with the given thresholds.
func NewComplianceEngine(limits config.ComplianceConfig, calculator *MetricsCalculator, logger *logrus.Logger) *ComplianceEngine {
	if logger == nil {
		logger = logrus.New()
	}
	engine := &ComplianceEngine{
		limits:     limits,
		calculator: calculator,
		logger:     logger,
	}
	engine.checks = []complianceCheck{
		{CheckConcentrationLimits, SeverityViolation, engine.checkConcentrationLimits},
		{CheckRiskDisclosure, SeverityWarning, engine.checkRiskDisclosure},
		{CheckPerformanceReporting, SeverityWarning, engine.checkPerformanceReporting},
		{CheckFeeDisclosure, SeverityViolation, engine.checkFeeDisclosure},
		{CheckLiquidityRequirements, SeverityWarning, engine.checkLiquidityRequirements},
	}
	return engine
}

// DefaultComplianceLimits returns the standard regulatory thresholds.
func DefaultComplianceLimits() config.ComplianceConfig {
	return config.ComplianceConfig{
		MaxSingleAllocation:  20.0,
		MaxManagementFee:     2.5,
		MaxExpenseRatio:      3.0,
		MaxTotalFees:         4.0,
		MinObservations:      12,
		MinAUM:               10000000.0,
		MaxLiquidityRatio:    30.0,
		VolatilityAlertLimit: 25.0,
		ExpenseAlertLimit:    2.0,
	}
}

// EvaluateCompliance runs every check once and aggregates the results.
// Failed violation-tier checks flip the overall flag; failed warning-tier
// checks are surfaced separately. The returned report is immutable.
func (e *ComplianceEngine) EvaluateCompliance(fund *models.FundProfile, series models.ReturnSeries, allocations []models.AllocationRecord) *models.ComplianceReport {
	ctx := &evaluationContext{fund: fund, series: series, allocations: allocations}

	report := &models.ComplianceReport{
		ID:               uuid.New().String(),
		FundID:           fund.ID,
		OverallCompliant: true,
		Violations:       []string{},
		Warnings:         []string{},
		Recommendations:  []models.Recommendation{},
		EvaluatedAt:      time.Now(),
	}

	for _, check := range e.checks {
		result := check.evaluate(ctx)
		result.Name = check.name
		result.Severity = check.severity
		report.Checks = append(report.Checks, result)

		if result.Compliant {
			continue
		}
		switch check.severity {
		case SeverityViolation:
			report.Violations = append(report.Violations, check.name)
			report.OverallCompliant = false
		case SeverityWarning:
			report.Warnings = append(report.Warnings, check.name)
		}
		if rec, ok := e.recommendationFor(check.name, check.severity, result); ok {
			report.Recommendations = append(report.Recommendations, rec)
		}
	}

	report.RiskScore = e.ComputeRiskScore(fund)
	report.RiskLevel = RiskLevelFromScore(report.RiskScore)

	e.logger.WithFields(logrus.Fields{
		"fund_id":    fund.ID,
		"compliant":  report.OverallCompliant,
		"violations": len(report.Violations),
		"warnings":   len(report.Warnings),
		"risk_score": report.RiskScore,
	}).Info("Compliance evaluation completed")

	return report
}

// checkConcentrationLimits flags any single allocation above the limit and
// reports the aggregate concentration risk.
func (e *ComplianceEngine) checkConcentrationLimits(ctx *evaluationContext) models.CheckResult {
	result := models.CheckResult{Compliant: true}

	weights := make([]float64, len(ctx.allocations))
	var breaches []map[string]interface{}
	for i, alloc := range ctx.allocations {
		pct := alloc.Allocation.InexactFloat64()
		weights[i] = pct
		if pct > e.limits.MaxSingleAllocation {
			result.Compliant = false
			result.Messages = append(result.Messages, fmt.Sprintf(
				"%s allocation %.2f%% exceeds %.2f%% limit",
				alloc.InvestmentType, pct, e.limits.MaxSingleAllocation))
			breaches = append(breaches, map[string]interface{}{
				"investment_type": alloc.InvestmentType,
				"allocation":      pct,
				"limit":           e.limits.MaxSingleAllocation,
			})
		}
	}

	result.Details = map[string]interface{}{
		"concentration_risk": ConcentrationRisk(weights),
		"allocation_count":   len(ctx.allocations),
	}
	if len(breaches) > 0 {
		result.Details["breaches"] = breaches
	}
	return result
}

// checkRiskDisclosure verifies the disclosure attributes are present and
// reports the profile risk score alongside.
func (e *ComplianceEngine) checkRiskDisclosure(ctx *evaluationContext) models.CheckResult {
	result := models.CheckResult{Compliant: true}

	var missing []string
	if ctx.fund.Type == "" {
		missing = append(missing, "fund type")
	}
	if ctx.fund.ManagementFee.IsZero() {
		missing = append(missing, "management fee")
	}
	if ctx.fund.ExpenseRatio.IsZero() {
		missing = append(missing, "expense ratio")
	}
	if ctx.fund.InceptionDate == nil {
		missing = append(missing, "inception date")
	}
	if len(missing) > 0 {
		result.Compliant = false
		for _, field := range missing {
			result.Messages = append(result.Messages, fmt.Sprintf("missing required disclosure: %s", field))
		}
	}

	score := e.ComputeRiskScore(ctx.fund)
	result.Details = map[string]interface{}{
		"risk_score": score,
		"risk_level": RiskLevelFromScore(score),
	}
	return result
}

// checkPerformanceReporting requires a minimum reporting history. No data at
// all is a distinct failure from too little data.
func (e *ComplianceEngine) checkPerformanceReporting(ctx *evaluationContext) models.CheckResult {
	result := models.CheckResult{
		Compliant: true,
		Details: map[string]interface{}{
			"observations": len(ctx.series),
			"required":     e.limits.MinObservations,
		},
	}

	switch {
	case len(ctx.series) == 0:
		result.Compliant = false
		result.Messages = append(result.Messages, "no performance data reported")
	case len(ctx.series) < e.limits.MinObservations:
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"only %d of %d required observations reported",
			len(ctx.series), e.limits.MinObservations))
	}
	return result
}

// checkFeeDisclosure reports each fee breach as its own message.
func (e *ComplianceEngine) checkFeeDisclosure(ctx *evaluationContext) models.CheckResult {
	result := models.CheckResult{Compliant: true}

	managementFee := ctx.fund.ManagementFee.InexactFloat64()
	expenseRatio := ctx.fund.ExpenseRatio.InexactFloat64()
	totalFees := managementFee + expenseRatio

	if managementFee > e.limits.MaxManagementFee {
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"management fee %.2f%% exceeds %.2f%% maximum", managementFee, e.limits.MaxManagementFee))
	}
	if expenseRatio > e.limits.MaxExpenseRatio {
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"expense ratio %.2f%% exceeds %.2f%% maximum", expenseRatio, e.limits.MaxExpenseRatio))
	}
	if totalFees > e.limits.MaxTotalFees {
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"total fees %.2f%% exceed %.2f%% maximum", totalFees, e.limits.MaxTotalFees))
	}

	result.Details = map[string]interface{}{
		"management_fee": managementFee,
		"expense_ratio":  expenseRatio,
		"total_fees":     totalFees,
	}
	return result
}

// checkLiquidityRequirements requires a minimum AUM on the latest
// observation and a bounded liquidity ratio. Average daily volume is
// approximated as 1% of mean AUM across the series.
func (e *ComplianceEngine) checkLiquidityRequirements(ctx *evaluationContext) models.CheckResult {
	result := models.CheckResult{Compliant: true}

	latest := ctx.series.Latest()
	if latest == nil {
		result.Compliant = false
		result.Messages = append(result.Messages, "no performance data available for liquidity assessment")
		return result
	}

	latestAUM := latest.AUM.InexactFloat64()
	meanAUM := mean(ctx.series.AUMs())
	avgDailyVolume := meanAUM * 0.01

	liquidityRatio := 0.0
	if avgDailyVolume > 0 {
		liquidityRatio = latestAUM / avgDailyVolume
	}

	if latestAUM < e.limits.MinAUM {
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"assets under management %.0f below %.0f minimum", latestAUM, e.limits.MinAUM))
	}
	if liquidityRatio > e.limits.MaxLiquidityRatio {
		result.Compliant = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"liquidity ratio %.2f exceeds %.2f maximum", liquidityRatio, e.limits.MaxLiquidityRatio))
	}

	result.Details = map[string]interface{}{
		"aum":              latestAUM,
		"liquidity_ratio":  round2(liquidityRatio),
		"avg_daily_volume": round2(avgDailyVolume),
	}
	return result
}

// recommendationFor maps a failed check to its remediation action. Checks
// without a fixed deadline produce no recommendation.
func (e *ComplianceEngine) recommendationFor(name, severity string, result models.CheckResult) (models.Recommendation, bool) {
	deadline, ok := remediationDeadlines[name]
	if !ok {
		return models.Recommendation{}, false
	}

	priority := PriorityMedium
	if severity == SeverityViolation {
		priority = PriorityHigh
	}

	message := ""
	switch name {
	case CheckConcentrationLimits:
		message = "Rebalance alternative investment allocations below the single-position limit"
	case CheckFeeDisclosure:
		message = "Review and reduce fund fees to regulated maximums"
	case CheckRiskDisclosure:
		message = "Complete the missing fund disclosure attributes"
	case CheckLiquidityRequirements:
		message = "Restore minimum asset levels or reduce the liquidity ratio"
	}

	return models.Recommendation{
		Category:     name,
		Priority:     priority,
		Message:      message,
		DeadlineDays: deadline,
	}, true
}

// Per-type base scores. Unknown types score a neutral 5.
var fundTypeBaseScores = map[models.FundType]int{
	models.FundTypeFixedIncome:    2,
	models.FundTypeBalanced:       4,
	models.FundTypeCanadianEquity: 6,
	models.FundTypeGlobalEquity:   7,
	models.FundTypeRealEstate:     7,
	models.FundTypeSector:         8,
	models.FundTypeAlternative:    9,
}

// ComputeRiskScore derives the 1-10 profile risk score: a per-type base plus
// expense-ratio and fund-age add-ons, capped at 10.
func (e *ComplianceEngine) ComputeRiskScore(fund *models.FundProfile) int {
	score, ok := fundTypeBaseScores[fund.Type]
	if !ok {
		score = 5
	}

	expenseRatio := fund.ExpenseRatio.InexactFloat64()
	if expenseRatio > 2.0 {
		score += 2
	} else if expenseRatio > 1.5 {
		score++
	}

	if fund.InceptionDate != nil {
		age := fund.AgeYears(time.Now())
		if age < 3 {
			score += 2
		} else if age < 5 {
			score++
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// bucketRiskLevel maps a value onto the shared five-level scale using the
// given ascending breakpoints.
func bucketRiskLevel(value float64, bounds [4]float64) string {
	switch {
	case value <= bounds[0]:
		return "Low"
	case value <= bounds[1]:
		return "Low-Medium"
	case value <= bounds[2]:
		return "Medium"
	case value <= bounds[3]:
		return "Medium-High"
	default:
		return "High"
	}
}

// RiskLevelFromScore buckets the profile risk score. Distinct from
// PerformanceRiskLevel, which buckets a volatility/drawdown composite on the
// same scale; the two must not be conflated.
func RiskLevelFromScore(score int) string {
	return bucketRiskLevel(float64(score), [4]float64{3, 5, 7, 9})
}

// PerformanceRiskLevel buckets the volatility/drawdown composite used by the
// reporting layer.
func PerformanceRiskLevel(volatility, maxDrawdown float64) string {
	composite := 0.6*volatility + 0.4*maxDrawdown
	return bucketRiskLevel(composite, [4]float64{10, 20, 30, 40})
}

// CheckAlerts evaluates the regulatory alert triggers directly against raw
// fund and series data. Alerts are independent of the compliance report.
func (e *ComplianceEngine) CheckAlerts(fund *models.FundProfile, series models.ReturnSeries) []models.Alert {
	now := time.Now()
	alerts := []models.Alert{}

	volatility := Volatility(series.Returns())
	if volatility > e.limits.VolatilityAlertLimit {
		alerts = append(alerts, models.Alert{
			ID:          uuid.New().String(),
			FundID:      fund.ID,
			Type:        "volatility",
			Severity:    AlertSeverityWarning,
			Message:     fmt.Sprintf("volatility %.2f exceeds %.2f threshold", volatility, e.limits.VolatilityAlertLimit),
			Value:       decimal.NewFromFloat(volatility),
			Threshold:   decimal.NewFromFloat(e.limits.VolatilityAlertLimit),
			TriggeredAt: now,
		})
	}

	expenseRatio := fund.ExpenseRatio.InexactFloat64()
	if expenseRatio > e.limits.ExpenseAlertLimit {
		alerts = append(alerts, models.Alert{
			ID:          uuid.New().String(),
			FundID:      fund.ID,
			Type:        "expense_ratio",
			Severity:    AlertSeverityWarning,
			Message:     fmt.Sprintf("expense ratio %.2f exceeds %.2f threshold", expenseRatio, e.limits.ExpenseAlertLimit),
			Value:       fund.ExpenseRatio,
			Threshold:   decimal.NewFromFloat(e.limits.ExpenseAlertLimit),
			TriggeredAt: now,
		})
	}

	if fund.InceptionDate != nil {
		if age := fund.AgeYears(now); age < 1 {
			alerts = append(alerts, models.Alert{
				ID:          uuid.New().String(),
				FundID:      fund.ID,
				Type:        "fund_age",
				Severity:    AlertSeverityInfo,
				Message:     fmt.Sprintf("fund is %.1f years old; limited performance history", age),
				Value:       decimal.NewFromFloat(round2(age)),
				Threshold:   decimal.NewFromInt(1),
				TriggeredAt: now,
			})
		}
	}

	return alerts
}
