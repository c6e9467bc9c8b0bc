package assetvaluation

import (
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
)

type Input struct {
	ApplicationID string                    `json:"applicationId"`
	LoanAmount    float64                   `json:"loanAmount"`
	Collateral    *models.CollateralProfile `json:"collateral"`
}

type Output struct {
	ApplicationID  string                       `json:"applicationId"`
	Verdict        string                       `json:"verdict"`
	AssessedValue  float64                      `json:"assessedValue"`
	DeclaredValue  float64                      `json:"declaredValue"`
	Valuation      finance.PropertyValuation    `json:"valuation"`
	LTV            finance.LTVResult            `json:"ltv"`
	CollateralRisk finance.CollateralRiskResult `json:"collateralRisk"`
	Encumbrance    PropertyRecord               `json:"encumbrance"`
	Remarks        string                       `json:"remarks"`
}
