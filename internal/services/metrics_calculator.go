package services

import (
	"time"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/shopspring/decimal"
)

// MetricsCalculator produces the full metrics bundle for a return series.
type MetricsCalculator struct {
	RiskFreeRate  float64 // per-period risk-free rate, percent
	VaRConfidence float64 // confidence level for VaR and CVaR, 0-1
}

// NewMetricsCalculator creates a calculator with the standard configuration.
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{
		RiskFreeRate:  2.0,
		VaRConfidence: 0.95,
	}
}

// NewMetricsCalculatorWithConfig creates a calculator with explicit rates.
func NewMetricsCalculatorWithConfig(riskFreeRate, varConfidence float64) *MetricsCalculator {
	return &MetricsCalculator{
		RiskFreeRate:  riskFreeRate,
		VaRConfidence: varConfidence,
	}
}

// ComputeMetrics builds a fresh bundle from the series. Every call is
// independent and deterministic given the same inputs; an empty series
// produces a bundle of the engine's degenerate-data defaults.
func (mc *MetricsCalculator) ComputeMetrics(series models.ReturnSeries) *models.MetricsBundle {
	returns := series.Returns()
	benchmarks := series.BenchmarkReturns()
	navs := series.NAVs()

	return &models.MetricsBundle{
		Volatility:       decimal.NewFromFloat(Volatility(returns)),
		MaxDrawdown:      decimal.NewFromFloat(MaxDrawdown(navs)),
		SharpeRatio:      decimal.NewFromFloat(SharpeRatio(returns, mc.RiskFreeRate)),
		SortinoRatio:     decimal.NewFromFloat(SortinoRatio(returns, mc.RiskFreeRate)),
		TreynorRatio:     decimal.NewFromFloat(TreynorRatio(returns, benchmarks, mc.RiskFreeRate)),
		Beta:             decimal.NewFromFloat(Beta(returns, benchmarks)),
		Correlation:      decimal.NewFromFloat(Correlation(returns, benchmarks)),
		InformationRatio: decimal.NewFromFloat(InformationRatio(returns, benchmarks)),
		JensensAlpha:     decimal.NewFromFloat(JensensAlpha(returns, benchmarks, mc.RiskFreeRate)),
		ValueAtRisk:      decimal.NewFromFloat(ValueAtRisk(returns, mc.VaRConfidence)),
		ConditionalVaR:   decimal.NewFromFloat(ConditionalVaR(returns, mc.VaRConfidence)),
		VaRConfidence:    decimal.NewFromFloat(mc.VaRConfidence),
		AnnualizedReturn: decimal.NewFromFloat(AnnualizedReturn(returns, len(returns))),
		Observations:     len(series),
		ComputedAt:       time.Now(),
	}
}
