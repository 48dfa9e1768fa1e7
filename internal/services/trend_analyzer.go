package services

import (
	"fmt"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	TrendImproving     = "improving"
	TrendDeteriorating = "deteriorating"
	TrendStable        = "stable"
)

// NAVTrendResult is the reporting layer's view of where a fund's valuation
// is heading, alongside the volatility/drawdown risk level.
type NAVTrendResult struct {
	FundID               string          `json:"fund_id"`
	Signal               string          `json:"signal"`
	ShortSMA             decimal.Decimal `json:"short_sma"`
	LongSMA              decimal.Decimal `json:"long_sma"`
	EMA                  decimal.Decimal `json:"ema"`
	PerformanceRiskLevel string          `json:"performance_risk_level"`
	Observations         int             `json:"observations"`
	CalculatedAt         time.Time       `json:"calculated_at"`
}

// TrendAnalyzer assesses NAV direction over a fund's performance history.
type TrendAnalyzer struct {
	ShortPeriod int
	LongPeriod  int
	logger      *logrus.Logger
}

// NewTrendAnalyzer creates an analyzer with periods sized for monthly data.
func NewTrendAnalyzer(logger *logrus.Logger) *TrendAnalyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &TrendAnalyzer{
		ShortPeriod: 3,
		LongPeriod:  12,
		logger:      logger,
	}
}

// AnalyzeNAVTrend compares short and long moving averages of the NAV series.
// It needs at least LongPeriod observations.
func (ta *TrendAnalyzer) AnalyzeNAVTrend(fundID string, series models.ReturnSeries) (*NAVTrendResult, error) {
	navs := series.NAVs()
	if len(navs) < ta.LongPeriod {
		return nil, fmt.Errorf("insufficient history: need at least %d observations, got %d", ta.LongPeriod, len(navs))
	}

	shortSMA := ta.lastSMA(navs, ta.ShortPeriod)
	longSMA := ta.lastSMA(navs, ta.LongPeriod)
	ema := ta.lastEMA(navs, ta.ShortPeriod)

	signal := TrendStable
	// A half-percent band around the long average filters noise.
	band := longSMA * 0.005
	switch {
	case shortSMA > longSMA+band:
		signal = TrendImproving
	case shortSMA < longSMA-band:
		signal = TrendDeteriorating
	}

	result := &NAVTrendResult{
		FundID:               fundID,
		Signal:               signal,
		ShortSMA:             decimal.NewFromFloat(round2(shortSMA)),
		LongSMA:              decimal.NewFromFloat(round2(longSMA)),
		EMA:                  decimal.NewFromFloat(round2(ema)),
		PerformanceRiskLevel: PerformanceRiskLevel(Volatility(series.Returns()), MaxDrawdown(navs)),
		Observations:         len(navs),
		CalculatedAt:         time.Now(),
	}

	ta.logger.WithFields(logrus.Fields{
		"fund_id": fundID,
		"signal":  signal,
	}).Debug("NAV trend calculated")

	return result, nil
}

func (ta *TrendAnalyzer) lastSMA(values []float64, period int) float64 {
	sma := trend.NewSmaWithPeriod[float64](period)
	result := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	if len(result) == 0 {
		return 0
	}
	return result[len(result)-1]
}

func (ta *TrendAnalyzer) lastEMA(values []float64, period int) float64 {
	ema := trend.NewEmaWithPeriod[float64](period)
	result := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
	if len(result) == 0 {
		return 0
	}
	return result[len(result)-1]
}
