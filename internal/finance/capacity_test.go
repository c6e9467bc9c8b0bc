package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowingCapacity(t *testing.T) {
	result := BorrowingCapacity(75_000, 10_000, 35, "Home Loan", 8.5)

	require.Equal(t, "PASS", result.Status)
	assert.InDelta(t, 27_500, result.AvailableEMI, 0.01)
	assert.Equal(t, 30, result.MaxTenureYears)
	assert.Greater(t, result.MaxLoanAmount, 0.0)
	assert.InDelta(t, result.MaxLoanAmount*0.8, result.RecommendedAmount, 1)

	// The capacity must invert back: servicing the max loan over the max
	// tenure consumes exactly the available EMI.
	emi := EMI(result.MaxLoanAmount, 8.5, result.MaxTenureYears*12)
	assert.InDelta(t, result.AvailableEMI, emi, 1)
}

func TestMaxPrincipalForEMI_RoundTripsWithEMI(t *testing.T) {
	principal := MaxPrincipalForEMI(35_000, 8.5, 240)

	assert.Greater(t, principal, 0.0)
	assert.InDelta(t, 35_000, EMI(principal, 8.5, 240), 1)
}

func TestMaxPrincipalForEMI_Degenerate(t *testing.T) {
	assert.Zero(t, MaxPrincipalForEMI(0, 8.5, 240))
	assert.Zero(t, MaxPrincipalForEMI(-100, 8.5, 240))
	assert.Zero(t, MaxPrincipalForEMI(10_000, 8.5, 0))
	assert.InDelta(t, 120_000, MaxPrincipalForEMI(10_000, 0, 12), 0.01)
}

func TestBorrowingCapacity_TenureLimitedByAge(t *testing.T) {
	result := BorrowingCapacity(100_000, 0, 60, "Home Loan", 8.5)

	require.Equal(t, "PASS", result.Status)
	assert.Equal(t, 10, result.MaxTenureYears)
}

func TestBorrowingCapacity_NoHeadroom(t *testing.T) {
	result := BorrowingCapacity(50_000, 30_000, 35, "Home Loan", 8.5)

	assert.Equal(t, "FAIL", result.Status)
	assert.Zero(t, result.MaxLoanAmount)
	assert.Zero(t, result.RecommendedAmount)
}

func TestBorrowingCapacity_ZeroIncome(t *testing.T) {
	result := BorrowingCapacity(0, 0, 35, "Home Loan", 8.5)

	assert.Equal(t, "FAIL", result.Status)
	assert.Zero(t, result.MaxLoanAmount)
}

func TestBorrowingCapacity_TooOldForProduct(t *testing.T) {
	result := BorrowingCapacity(100_000, 0, 70, "Home Loan", 8.5)

	assert.Equal(t, "FAIL", result.Status)
	assert.Zero(t, result.MaxLoanAmount)
}

func TestBorrowingCapacity_ZeroRate(t *testing.T) {
	result := BorrowingCapacity(60_000, 10_000, 40, "Home Loan", 0)

	require.Equal(t, "PASS", result.Status)
	// 20,000 headroom over 30 years of interest-free installments.
	assert.InDelta(t, 20_000*360, result.MaxLoanAmount, 0.01)
}

func TestBorrowingCapacity_PersonalLoanMaturity(t *testing.T) {
	// Personal loans mature by 65, so a 50-year-old gets 15 years.
	result := BorrowingCapacity(80_000, 5_000, 50, "Personal Loan", 10)

	require.Equal(t, "PASS", result.Status)
	assert.Equal(t, 15, result.MaxTenureYears)
}
