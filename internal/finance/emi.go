// Package finance implements the deterministic loan calculators: EMI and
// amortization math, obligation and loan-to-value ratios, property valuation,
// borrowing capacity, and risk scoring. All functions are pure; degenerate
// inputs (zero income, zero value, zero rate) return explicit zero or FAIL
// results instead of NaN.
package finance

import "math"

// EMI computes the equated monthly installment for an amortizing loan.
// For a zero rate the installment degrades to straight-line principal/n.
func EMI(principal, annualRatePercent float64, tenureMonths int) float64 {
	if principal <= 0 || tenureMonths <= 0 {
		return 0
	}

	r := annualRatePercent / 100 / 12
	if r == 0 {
		return principal / float64(tenureMonths)
	}

	pow := math.Pow(1+r, float64(tenureMonths))
	return principal * r * pow / (pow - 1)
}

// TotalCost summarizes the lifetime cost of a loan at the given terms.
type TotalCost struct {
	EMI           float64 `json:"emi"`
	TotalPayment  float64 `json:"totalPayment"`
	TotalInterest float64 `json:"totalInterest"`
}

// ComputeTotalCost returns EMI plus total payment and interest over the full
// tenure.
func ComputeTotalCost(principal, annualRatePercent float64, tenureMonths int) TotalCost {
	emi := EMI(principal, annualRatePercent, tenureMonths)
	total := emi * float64(tenureMonths)
	return TotalCost{
		EMI:           emi,
		TotalPayment:  total,
		TotalInterest: total - principal,
	}
}

// RoundCurrency rounds to 2 decimal places.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundToThousand rounds to the nearest 1000 currency units.
func roundToThousand(v float64) float64 {
	return math.Round(v/1000) * 1000
}
