package creditassessment

import (
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
)

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	LoanAmount    float64                `json:"loanAmount"`
	Customer      models.CustomerProfile `json:"customer"`
}

type Output struct {
	ApplicationID   string                        `json:"applicationId"`
	Verdict         string                        `json:"verdict"`
	ScoreRating     string                        `json:"scoreRating"`
	ScoreRiskLevel  string                        `json:"scoreRiskLevel"`
	CreditRisk      finance.CreditRiskResult      `json:"creditRisk"`
	IncomeStability finance.IncomeStabilityResult `json:"incomeStability"`
	DebtMetrics     finance.DebtMetrics           `json:"debtMetrics"`
	Report          CreditReport                  `json:"report"`
	Remarks         string                        `json:"remarks"`
}

// CreditReport carries the bureau facts the risk scoring needs beyond what
// the applicant self-declares.
type CreditReport struct {
	PaymentHistoryScore float64 `json:"paymentHistoryScore"`
	OutstandingDebt     float64 `json:"outstandingDebt"`
	CreditLimit         float64 `json:"creditLimit"`
}
