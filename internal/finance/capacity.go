package finance

import (
	"math"

	"loan-workers/internal/policy"
)

// BorrowingCapacityResult is the reverse-annuity sizing of the largest loan
// an applicant can service.
type BorrowingCapacityResult struct {
	AvailableEMI      float64 `json:"availableEmi"`
	MaxLoanAmount     float64 `json:"maxLoanAmount"`
	RecommendedAmount float64 `json:"recommendedAmount"`
	MaxTenureYears    int     `json:"maxTenureYears"`
	Status            string  `json:"status"`
}

// MaxPrincipalForEMI inverts the EMI formula: the largest principal a given
// monthly installment can service at the rate over the tenure.
func MaxPrincipalForEMI(emi, annualRatePercent float64, tenureMonths int) float64 {
	if emi <= 0 || tenureMonths <= 0 {
		return 0
	}

	n := float64(tenureMonths)
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return RoundCurrency(emi * n)
	}

	pow := math.Pow(1+r, n)
	return RoundCurrency(emi * (pow - 1) / (r * pow))
}

// BorrowingCapacity inverts the EMI formula to solve for principal given the
// EMI headroom left after existing obligations. Non-positive headroom or
// tenure short-circuits to a zero/FAIL result.
func BorrowingCapacity(monthlyIncome, existingEMIs float64, age int, productType string, annualRatePercent float64) BorrowingCapacityResult {
	availableEMI := monthlyIncome*policy.CapacityIncomeFraction - existingEMIs
	if availableEMI <= 0 {
		return BorrowingCapacityResult{Status: "FAIL"}
	}

	product := policy.ProductFor(productType)
	maxTenure := product.MaxAgeAtMaturity - age
	if maxTenure > policy.MaxTenureYears {
		maxTenure = policy.MaxTenureYears
	}
	if maxTenure <= 0 {
		return BorrowingCapacityResult{
			AvailableEMI: RoundCurrency(availableEMI),
			Status:       "FAIL",
		}
	}

	maxLoan := MaxPrincipalForEMI(availableEMI, annualRatePercent, maxTenure*12)

	return BorrowingCapacityResult{
		AvailableEMI:      RoundCurrency(availableEMI),
		MaxLoanAmount:     maxLoan,
		RecommendedAmount: RoundCurrency(maxLoan * 0.8),
		MaxTenureYears:    maxTenure,
		Status:            "PASS",
	}
}
