package qualification

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		ApplicationID: "LN-test-0001",
		LoanAmount:    4_000_000,
		ProductType:   "Home Loan",
		TenureYears:   20,
		Customer: models.CustomerProfile{
			Age:           35,
			MonthlyIncome: 75_000,
			ExistingEMIs:  10_000,
			CreditScore:   750,
		},
	}
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute_QualifiesStrongApplicant(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, models.QualificationQualified, output.Outcome)
	assert.Equal(t, totalChecks, output.PassedChecks)
	require.Len(t, output.Checks, totalChecks)
	for _, c := range output.Checks {
		assert.True(t, c.Passed, c.Name)
	}
	assert.InDelta(t, 34_713, output.ProposedEMI, 5)
	assert.Equal(t, "PASS", output.FOIR.Status)
	assert.Equal(t, "PASS", output.Capacity.Status)
}

func TestExecute_ConditionalWhenCreditReportMissing(t *testing.T) {
	input := createTestInput()
	input.Customer.CreditScore = 0

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.QualificationConditional, output.Outcome)
	assert.Equal(t, totalChecks-1, output.PassedChecks)
}

func TestExecute_NotQualifiedWhenMostChecksFail(t *testing.T) {
	input := createTestInput()
	input.Customer.Age = 70
	input.Customer.MonthlyIncome = 15_000
	input.Customer.ExistingEMIs = 10_000

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.QualificationNotQualified, output.Outcome)
	assert.Less(t, output.PassedChecks, conditionalThreshold)
}

func TestExecute_LargerLoanNeverPassesMoreChecks(t *testing.T) {
	h := newHandler(t)

	base, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	inflated := createTestInput()
	inflated.LoanAmount = 8_000_000

	stretched, err := h.Execute(context.Background(), inflated)
	require.NoError(t, err)

	assert.LessOrEqual(t, stretched.PassedChecks, base.PassedChecks)
	assert.NotEqual(t, models.QualificationQualified, stretched.Outcome)
}

func TestExecute_UnknownProductFallsBackToHomeLoanRules(t *testing.T) {
	input := createTestInput()
	input.ProductType = "Yacht Loan"

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.QualificationQualified, output.Outcome)
}

func TestExecute_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero loan amount", func(in *Input) { in.LoanAmount = 0 }},
		{"negative loan amount", func(in *Input) { in.LoanAmount = -1 }},
		{"zero tenure", func(in *Input) { in.TenureYears = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)

			_, err := newHandler(t).Execute(context.Background(), input)
			assert.Error(t, err)
		})
	}
}
