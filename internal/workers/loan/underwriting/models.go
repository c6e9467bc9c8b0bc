package underwriting

import (
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"
)

type Input struct {
	ApplicationID      string                 `json:"applicationId"`
	LoanAmount         float64                `json:"loanAmount"`
	ProductType        string                 `json:"productType"`
	TenureYears        int                    `json:"tenureYears"`
	Customer           models.CustomerProfile `json:"customer"`
	DocumentationScore float64                `json:"documentationScore"`
	Qualification      QualificationSummary   `json:"qualification"`
	Credit             CreditSummary          `json:"credit"`
	Asset              AssetSummary           `json:"asset"`
}

// QualificationSummary mirrors the fields the qualification stage emits that
// underwriting consumes.
type QualificationSummary struct {
	Outcome  string                          `json:"outcome"`
	FOIR     finance.FOIRResult              `json:"foir"`
	Capacity finance.BorrowingCapacityResult `json:"capacity"`
}

// CreditSummary mirrors the credit-assessment branch output.
type CreditSummary struct {
	Verdict         string                        `json:"verdict"`
	CreditRisk      finance.CreditRiskResult      `json:"creditRisk"`
	IncomeStability finance.IncomeStabilityResult `json:"incomeStability"`
}

// AssetSummary mirrors the asset-valuation branch output.
type AssetSummary struct {
	Verdict        string                       `json:"verdict"`
	AssessedValue  float64                      `json:"assessedValue"`
	LTV            finance.LTVResult            `json:"ltv"`
	CollateralRisk finance.CollateralRiskResult `json:"collateralRisk"`
}

type Output struct {
	ApplicationID string                     `json:"applicationId"`
	Decision      models.Decision            `json:"decision"`
	Terms         *models.LoanTerms          `json:"terms,omitempty"`
	CombinedRisk  finance.CombinedRiskResult `json:"combinedRisk"`
	Compliance    []policy.ComplianceCheck   `json:"compliance"`
	Violations    int                        `json:"violations"`
	Remarks       string                     `json:"remarks"`
}
