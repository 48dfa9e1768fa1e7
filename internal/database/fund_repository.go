package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fundlens/fundlens-go/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrFundNotFound is returned when a fund id has no row.
var ErrFundNotFound = errors.New("fund not found")

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// FundRepository handles storage for funds, their performance history,
// allocations and persisted compliance report snapshots. The engine itself
// never touches storage; handlers load through this repository first.
type FundRepository struct {
	pool DatabasePool
}

// NewFundRepository creates a new fund repository.
func NewFundRepository(pool DatabasePool) *FundRepository {
	return &FundRepository{
		pool: pool,
	}
}

// GetFund loads one fund profile by id.
func (r *FundRepository) GetFund(ctx context.Context, fundID string) (*models.FundProfile, error) {
	query := `
		SELECT id, name, family, type, management_fee, expense_ratio, inception_date, created_at, updated_at
		FROM funds
		WHERE id = $1`

	var fund models.FundProfile
	err := r.pool.QueryRow(ctx, query, fundID).Scan(
		&fund.ID, &fund.Name, &fund.Family, &fund.Type,
		&fund.ManagementFee, &fund.ExpenseRatio, &fund.InceptionDate,
		&fund.CreatedAt, &fund.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFundNotFound
		}
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return &fund, nil
}

// ListFunds returns fund profiles ordered by name.
func (r *FundRepository) ListFunds(ctx context.Context, limit int) ([]models.FundProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, name, family, type, management_fee, expense_ratio, inception_date, created_at, updated_at
		FROM funds
		ORDER BY name
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []models.FundProfile
	for rows.Next() {
		var fund models.FundProfile
		if err := rows.Scan(
			&fund.ID, &fund.Name, &fund.Family, &fund.Type,
			&fund.ManagementFee, &fund.ExpenseRatio, &fund.InceptionDate,
			&fund.CreatedAt, &fund.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	return funds, rows.Err()
}

// GetPerformanceHistory loads the fund's observations in chronological
// order, which the series invariants require.
func (r *FundRepository) GetPerformanceHistory(ctx context.Context, fundID string, limit int) (models.ReturnSeries, error) {
	if limit <= 0 {
		limit = 120
	}
	query := `
		SELECT id, fund_id, period, nav, period_return, benchmark_return, aum, created_at
		FROM fund_performance
		WHERE fund_id = $1
		ORDER BY period ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, fundID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance history: %w", err)
	}
	defer rows.Close()

	var series models.ReturnSeries
	for rows.Next() {
		var snap models.PerformanceSnapshot
		if err := rows.Scan(
			&snap.ID, &snap.FundID, &snap.Period, &snap.NAV,
			&snap.Return, &snap.BenchmarkReturn, &snap.AUM, &snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance snapshot: %w", err)
		}
		series = append(series, snap)
	}
	return series, rows.Err()
}

// GetAllocations loads the fund's alternative-investment allocation records.
func (r *FundRepository) GetAllocations(ctx context.Context, fundID string) ([]models.AllocationRecord, error) {
	query := `
		SELECT id, fund_id, investment_type, allocation, risk_rating, created_at
		FROM fund_allocations
		WHERE fund_id = $1
		ORDER BY allocation DESC`

	rows, err := r.pool.Query(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}
	defer rows.Close()

	var allocations []models.AllocationRecord
	for rows.Next() {
		var alloc models.AllocationRecord
		if err := rows.Scan(
			&alloc.ID, &alloc.FundID, &alloc.InvestmentType,
			&alloc.Allocation, &alloc.RiskRating, &alloc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}

// SaveComplianceReport persists one evaluation snapshot for trend reporting.
func (r *FundRepository) SaveComplianceReport(ctx context.Context, report *models.ComplianceReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize compliance report: %w", err)
	}

	query := `
		INSERT INTO compliance_reports (id, fund_id, overall_compliant, risk_score, risk_level, violations, warnings, report, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		report.ID, report.FundID, report.OverallCompliant,
		report.RiskScore, report.RiskLevel,
		report.Violations, report.Warnings, payload, report.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save compliance report: %w", err)
	}
	return nil
}

// GetComplianceHistory loads persisted report snapshots, newest first.
func (r *FundRepository) GetComplianceHistory(ctx context.Context, fundID string, limit int) ([]models.ComplianceReport, error) {
	if limit <= 0 {
		limit = 12
	}
	query := `
		SELECT report
		FROM compliance_reports
		WHERE fund_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, fundID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance history: %w", err)
	}
	defer rows.Close()

	var reports []models.ComplianceReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan compliance report: %w", err)
		}
		var report models.ComplianceReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("failed to deserialize compliance report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
