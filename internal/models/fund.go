package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundType identifies the category a fund belongs to. The set is closed;
// unknown values are tolerated but scored with a neutral default.
type FundType string

const (
	FundTypeFixedIncome    FundType = "Fixed Income"
	FundTypeBalanced       FundType = "Balanced"
	FundTypeCanadianEquity FundType = "Canadian Equity"
	FundTypeGlobalEquity   FundType = "Global Equity"
	FundTypeRealEstate     FundType = "Real Estate"
	FundTypeSector         FundType = "Sector"
	FundTypeAlternative    FundType = "Alternative"
)

// FundProfile holds the static attributes of a fund. The engine never
// mutates a profile; callers supply one per evaluation.
type FundProfile struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Family        string          `json:"family" db:"family"`
	Type          FundType        `json:"type" db:"type"`
	ManagementFee decimal.Decimal `json:"management_fee" db:"management_fee"`
	ExpenseRatio  decimal.Decimal `json:"expense_ratio" db:"expense_ratio"`
	InceptionDate *time.Time      `json:"inception_date,omitempty" db:"inception_date"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// AgeYears returns the fund age in fractional years, or 0 when the
// inception date is unknown.
func (f *FundProfile) AgeYears(now time.Time) float64 {
	if f.InceptionDate == nil || f.InceptionDate.After(now) {
		return 0
	}
	return now.Sub(*f.InceptionDate).Hours() / (24 * 365.25)
}

// AllocationRecord is a single alternative-investment line held by a fund.
// Allocation is a percentage of the fund (0-100); lines are not required to
// sum to 100.
type AllocationRecord struct {
	ID             string          `json:"id" db:"id"`
	FundID         string          `json:"fund_id" db:"fund_id"`
	InvestmentType string          `json:"investment_type" db:"investment_type"`
	Allocation     decimal.Decimal `json:"allocation" db:"allocation"`
	RiskRating     int             `json:"risk_rating" db:"risk_rating"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
