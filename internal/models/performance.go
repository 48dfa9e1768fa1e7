package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceSnapshot is one periodic observation of a fund: per-unit NAV,
// the period return, the benchmark return for the same period and the assets
// under management at period end.
type PerformanceSnapshot struct {
	ID              string          `json:"id" db:"id"`
	FundID          string          `json:"fund_id" db:"fund_id"`
	Period          string          `json:"period" db:"period"`
	NAV             decimal.Decimal `json:"nav" db:"nav"`
	Return          decimal.Decimal `json:"return" db:"return"`
	BenchmarkReturn decimal.Decimal `json:"benchmark_return" db:"benchmark_return"`
	AUM             decimal.Decimal `json:"aum" db:"aum"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// ReturnSeries is a chronological, index-aligned sequence of snapshots.
// A series may be empty; derived statistics degrade to defined defaults.
type ReturnSeries []PerformanceSnapshot

// Returns extracts the period return column.
func (s ReturnSeries) Returns() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Return.InexactFloat64()
	}
	return out
}

// NAVs extracts the valuation column.
func (s ReturnSeries) NAVs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.NAV.InexactFloat64()
	}
	return out
}

// BenchmarkReturns extracts the benchmark return column.
func (s ReturnSeries) BenchmarkReturns() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.BenchmarkReturn.InexactFloat64()
	}
	return out
}

// AUMs extracts the assets-under-management column.
func (s ReturnSeries) AUMs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.AUM.InexactFloat64()
	}
	return out
}

// Latest returns the most recent observation, or nil for an empty series.
func (s ReturnSeries) Latest() *PerformanceSnapshot {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}
