package services

import (
	"math"
	"sort"

	"github.com/fundlens/fundlens-go/internal/utils"
	"github.com/shopspring/decimal"
)

// Stateless statistics over return and valuation sequences. Every function
// is deterministic and side-effect free; degenerate input (empty sequences,
// length mismatches, zero-variance denominators) degrades to a defined
// default instead of failing. PersonalRateOfReturn is the single exception
// and returns a utils.ValidationError for a non-positive base value.
//
// Internal accumulation runs at full float64 precision; rounding to two
// decimals for percentage-like quantities and three for ratios happens only
// as the final step.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by n, not n-1.
func populationVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64) float64 {
	return math.Sqrt(populationVariance(values))
}

// covariance assumes a and b are index-aligned and equal length.
func covariance(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	meanA := mean(a)
	meanB := mean(b)
	sum := 0.0
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a))
}

// rawBeta is the unrounded covariance/variance ratio with the market-neutral
// default of 1 for mismatched, empty or zero-variance benchmark input.
func rawBeta(returns, benchmarkReturns []float64) float64 {
	if len(returns) == 0 || len(returns) != len(benchmarkReturns) {
		return 1
	}
	benchVariance := populationVariance(benchmarkReturns)
	if benchVariance == 0 {
		return 1
	}
	return covariance(returns, benchmarkReturns) / benchVariance
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round3(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}

// Volatility is the population standard deviation of a return sequence.
// Empty and single-element sequences have no dispersion and yield 0.
func Volatility(returns []float64) float64 {
	return round2(populationStdDev(returns))
}

// MaxDrawdown scans the valuations tracking the running peak and reports the
// largest relative decline from that peak as a percentage.
func MaxDrawdown(valuations []float64) float64 {
	if len(valuations) < 2 {
		return 0
	}
	peak := valuations[0]
	maxDrawdown := 0.0
	for _, v := range valuations {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return round2(maxDrawdown * 100)
}

// SharpeRatio is the excess mean return over the risk-free rate per unit of
// volatility. Zero volatility yields 0.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	vol := populationStdDev(returns)
	if vol == 0 {
		return 0
	}
	return round3((mean(returns) - riskFreeRate) / vol)
}

// SortinoRatio replaces the Sharpe denominator with the downside deviation:
// the dispersion of observations below the sequence mean, normalized by the
// full sequence length rather than the downside-subset length.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	m := mean(returns)
	downsideSum := 0.0
	downsideCount := 0
	for _, r := range returns {
		if r < m {
			diff := r - m
			downsideSum += diff * diff
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return 0
	}
	downsideDeviation := math.Sqrt(downsideSum / float64(len(returns)))
	if downsideDeviation == 0 {
		return 0
	}
	return round3((m - riskFreeRate) / downsideDeviation)
}

// TreynorRatio is the excess mean return per unit of beta. Zero beta yields 0.
func TreynorRatio(returns, benchmarkReturns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	beta := rawBeta(returns, benchmarkReturns)
	if beta == 0 {
		return 0
	}
	return round3((mean(returns) - riskFreeRate) / beta)
}

// Beta is the covariance of the fund and benchmark sequences over the
// benchmark variance. Mismatched, empty or flat benchmark input defaults to
// the market-neutral 1.
func Beta(returns, benchmarkReturns []float64) float64 {
	return round3(rawBeta(returns, benchmarkReturns))
}

// Correlation is the Pearson correlation coefficient. Mismatched, empty or
// zero-variance input yields 0.
func Correlation(seriesA, seriesB []float64) float64 {
	if len(seriesA) == 0 || len(seriesA) != len(seriesB) {
		return 0
	}
	stdA := populationStdDev(seriesA)
	stdB := populationStdDev(seriesB)
	if stdA == 0 || stdB == 0 {
		return 0
	}
	return round3(covariance(seriesA, seriesB) / (stdA * stdB))
}

// InformationRatio is the mean pairwise excess return over the benchmark per
// unit of tracking error. Zero tracking error or mismatched input yields 0.
func InformationRatio(returns, benchmarkReturns []float64) float64 {
	if len(returns) == 0 || len(returns) != len(benchmarkReturns) {
		return 0
	}
	excess := make([]float64, len(returns))
	for i := range returns {
		excess[i] = returns[i] - benchmarkReturns[i]
	}
	trackingError := populationStdDev(excess)
	if trackingError == 0 {
		return 0
	}
	return round3(mean(excess) / trackingError)
}

// JensensAlpha is the mean return in excess of the CAPM-expected return
// implied by beta and the benchmark mean.
func JensensAlpha(returns, benchmarkReturns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	beta := rawBeta(returns, benchmarkReturns)
	expected := riskFreeRate + beta*(mean(benchmarkReturns)-riskFreeRate)
	return round2(mean(returns) - expected)
}

// varThreshold returns the unrounded historical-simulation VaR: the element
// at index floor((1-confidence)*n) of the ascending-sorted returns. The
// index arithmetic is deliberate, including its behavior at small n.
func varThreshold(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ValueAtRisk is the historical-simulation VaR at the given confidence.
func ValueAtRisk(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return round2(varThreshold(returns, confidence))
}

// ConditionalVaR is the mean of all returns at or below the VaR threshold,
// or the VaR value itself when no observation qualifies.
func ConditionalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := varThreshold(returns, confidence)
	tailSum := 0.0
	tailCount := 0
	for _, r := range returns {
		if r <= threshold {
			tailSum += r
			tailCount++
		}
	}
	if tailCount == 0 {
		return round2(threshold)
	}
	return round2(tailSum / float64(tailCount))
}

// ConcentrationRisk is the Herfindahl-Hirschman Index over normalized
// allocation weights, scaled to 0-100. A single full allocation scores 100.
func ConcentrationRisk(allocations []float64) float64 {
	total := 0.0
	for _, a := range allocations {
		total += a
	}
	if total == 0 {
		return 0
	}
	hhi := 0.0
	for _, a := range allocations {
		weight := a / total
		hhi += weight * weight
	}
	return round2(hhi * 100)
}

// AnnualizedReturn compounds the period returns and annualizes the result
// over the stated period count in months, expressed as a percentage.
func AnnualizedReturn(periodReturns []float64, periodCount int) float64 {
	if len(periodReturns) == 0 || periodCount <= 0 {
		return 0
	}
	compound := 1.0
	for _, r := range periodReturns {
		compound *= 1 + r/100
	}
	if compound <= 0 {
		return round2(-100)
	}
	annualized := math.Pow(compound, 12/float64(periodCount)) - 1
	return round2(annualized * 100)
}

// PersonalRateOfReturn is the money-weighted personal return over a period,
// weighting contributions by the fraction of a year they were invested.
// It fails with a ValidationError for a non-positive beginning value or
// weighted denominator, the one place where a silent default would be
// economically misleading.
func PersonalRateOfReturn(beginningValue, endingValue, contributions, withdrawals float64, periodMonths int) (float64, error) {
	if beginningValue <= 0 {
		return 0, utils.NewValidationError("beginning value must be positive")
	}
	netCashFlow := contributions - withdrawals
	weightedContributions := contributions * float64(periodMonths) / 12
	denominator := beginningValue + weightedContributions
	if denominator <= 0 {
		return 0, utils.NewValidationErrorf("weighted base value %.2f must be positive", denominator)
	}
	pror := (endingValue - beginningValue - netCashFlow) / denominator * 100
	return round2(pror), nil
}
