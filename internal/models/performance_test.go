package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnSeriesAccessors(t *testing.T) {
	series := ReturnSeries{
		{
			NAV:             decimal.NewFromFloat(25.5),
			Return:          decimal.NewFromFloat(1.2),
			BenchmarkReturn: decimal.NewFromFloat(0.8),
			AUM:             decimal.NewFromFloat(50000000),
		},
		{
			NAV:             decimal.NewFromFloat(26.0),
			Return:          decimal.NewFromFloat(-0.5),
			BenchmarkReturn: decimal.NewFromFloat(0.1),
			AUM:             decimal.NewFromFloat(51000000),
		},
	}

	assert.Equal(t, []float64{1.2, -0.5}, series.Returns())
	assert.Equal(t, []float64{25.5, 26.0}, series.NAVs())
	assert.Equal(t, []float64{0.8, 0.1}, series.BenchmarkReturns())
	assert.Equal(t, []float64{50000000, 51000000}, series.AUMs())
}

func TestReturnSeriesLatest(t *testing.T) {
	var empty ReturnSeries
	assert.Nil(t, empty.Latest())

	series := ReturnSeries{
		{Period: "2025-06"},
		{Period: "2025-07"},
	}
	latest := series.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, "2025-07", latest.Period)
}

func TestReturnSeriesEmptyAccessors(t *testing.T) {
	var empty ReturnSeries
	assert.Empty(t, empty.Returns())
	assert.Empty(t, empty.NAVs())
	assert.Empty(t, empty.BenchmarkReturns())
	assert.Empty(t, empty.AUMs())
}
