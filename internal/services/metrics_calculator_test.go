package services

import (
	"testing"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsCalculatorDefaults(t *testing.T) {
	calc := NewMetricsCalculator()
	assert.Equal(t, 2.0, calc.RiskFreeRate)
	assert.Equal(t, 0.95, calc.VaRConfidence)
}

func TestComputeMetricsEmptySeries(t *testing.T) {
	calc := NewMetricsCalculator()

	bundle := calc.ComputeMetrics(models.ReturnSeries{})

	require.NotNil(t, bundle)
	assert.Equal(t, 0, bundle.Observations)
	assert.True(t, bundle.Volatility.IsZero())
	assert.True(t, bundle.MaxDrawdown.IsZero())
	assert.True(t, bundle.SharpeRatio.IsZero())
	// Beta defaults to market neutral even with no data.
	assert.True(t, bundle.Beta.Equal(decimal.NewFromInt(1)))
	assert.False(t, bundle.ComputedAt.IsZero())
}

func TestComputeMetricsSteadySeries(t *testing.T) {
	calc := NewMetricsCalculator()
	series := testSeries(12, 1.0, 25.0, 50000000)

	bundle := calc.ComputeMetrics(series)

	assert.Equal(t, 12, bundle.Observations)
	assert.True(t, bundle.Volatility.IsZero())
	assert.True(t, bundle.MaxDrawdown.IsZero())
	assert.True(t, bundle.SharpeRatio.IsZero())
	// Fund and benchmark are both flat, so the benchmark variance defaults
	// beta to 1 and correlation to 0.
	assert.True(t, bundle.Beta.Equal(decimal.NewFromInt(1)))
	assert.True(t, bundle.Correlation.IsZero())
	assert.Equal(t, 12.68, bundle.AnnualizedReturn.InexactFloat64())
	assert.Equal(t, 1.0, bundle.ValueAtRisk.InexactFloat64())
	assert.Equal(t, 0.95, bundle.VaRConfidence.InexactFloat64())
}

func TestComputeMetricsUsesConfiguredRates(t *testing.T) {
	series := models.ReturnSeries{
		{Return: decimal.NewFromFloat(-10), NAV: decimal.NewFromFloat(20), BenchmarkReturn: decimal.NewFromFloat(-8)},
		{Return: decimal.NewFromFloat(-5), NAV: decimal.NewFromFloat(21), BenchmarkReturn: decimal.NewFromFloat(-4)},
		{Return: decimal.NewFromFloat(0), NAV: decimal.NewFromFloat(22), BenchmarkReturn: decimal.NewFromFloat(1)},
		{Return: decimal.NewFromFloat(5), NAV: decimal.NewFromFloat(23), BenchmarkReturn: decimal.NewFromFloat(4)},
		{Return: decimal.NewFromFloat(10), NAV: decimal.NewFromFloat(24), BenchmarkReturn: decimal.NewFromFloat(9)},
	}

	strict := NewMetricsCalculatorWithConfig(2.0, 0.95)
	loose := NewMetricsCalculatorWithConfig(2.0, 0.75)

	strictBundle := strict.ComputeMetrics(series)
	looseBundle := loose.ComputeMetrics(series)

	assert.Equal(t, -10.0, strictBundle.ValueAtRisk.InexactFloat64())
	assert.Equal(t, -5.0, looseBundle.ValueAtRisk.InexactFloat64())
	assert.Equal(t, -7.5, looseBundle.ConditionalVaR.InexactFloat64())
}
