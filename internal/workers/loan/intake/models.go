package intake

import "loan-workers/internal/models"

type Input struct {
	CustomerName string                    `json:"customerName" form:"customerName"`
	LoanAmount   float64                   `json:"loanAmount" form:"loanAmount"`
	Purpose      string                    `json:"purpose" form:"purpose"`
	ProductType  string                    `json:"productType" form:"productType"`
	TenureYears  int                       `json:"tenureYears" form:"tenureYears"`
	Contact      string                    `json:"contact,omitempty" form:"contact"`
	Email        string                    `json:"email,omitempty" form:"email"`
	Customer     models.CustomerProfile    `json:"customer" form:"customer"`
	Collateral   *models.CollateralProfile `json:"collateral,omitempty" form:"collateral"`
}

type Output struct {
	ApplicationID string             `json:"applicationId"`
	Application   models.Application `json:"application"`
	Verdict       string             `json:"verdict"`
	Checks        []EligibilityCheck `json:"checks"`
	Remarks       string             `json:"remarks"`
}

type EligibilityCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}
