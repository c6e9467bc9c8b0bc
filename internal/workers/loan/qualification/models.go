package qualification

import (
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
)

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	LoanAmount    float64                `json:"loanAmount"`
	ProductType   string                 `json:"productType"`
	TenureYears   int                    `json:"tenureYears"`
	Customer      models.CustomerProfile `json:"customer"`
}

type Output struct {
	ApplicationID string                          `json:"applicationId"`
	Outcome       string                          `json:"outcome"`
	Checks        []Check                         `json:"checks"`
	PassedChecks  int                             `json:"passedChecks"`
	ProposedEMI   float64                         `json:"proposedEmi"`
	FOIR          finance.FOIRResult              `json:"foir"`
	Capacity      finance.BorrowingCapacityResult `json:"capacity"`
	Remarks       string                          `json:"remarks"`
}

type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}
