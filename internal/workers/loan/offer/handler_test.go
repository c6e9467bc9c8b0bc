package offer

import (
	"context"
	"testing"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		ApplicationID: "LN-test-0001",
		CustomerName:  "Asha Verma",
		ProductType:   "Home Loan",
		Decision: models.Decision{
			Outcome:   models.DecisionApproved,
			Authority: "Standard",
		},
		Terms: &models.LoanTerms{
			ApprovedAmount:       4_000_000,
			InterestRate:         8.5,
			TenureMonths:         240,
			EMI:                  34_712.93,
			ProcessingFee:        20_000,
			DocumentationCharges: 5_000,
		},
	}
}

func newHandler(t *testing.T) *Handler {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	h.now = func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return h
}

func TestExecute_GeneratesOfferForApproval(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.True(t, output.Generated)
	require.NotNil(t, output.Offer)

	offer := output.Offer
	assert.NotEmpty(t, offer.OfferID)
	assert.Equal(t, "LN-test-0001", offer.ApplicationID)
	assert.InDelta(t, 34_713, offer.TotalCost.EMI, 1)
	assert.Greater(t, offer.TotalCost.TotalInterest, 0.0)
	require.Len(t, offer.ScheduleHead, 12)
	require.Len(t, offer.ScheduleTail, 12)
	assert.Equal(t, 1, offer.ScheduleHead[0].Month)
	assert.Equal(t, 240, offer.ScheduleTail[11].Month)
	assert.InDelta(t, 0, offer.ScheduleTail[11].Balance, 0.01)
	assert.Equal(t, offer.IssuedAt.AddDate(0, 0, 30), offer.ValidUntil)
}

func TestExecute_CarriesConditionsIntoOffer(t *testing.T) {
	input := createTestInput()
	input.Decision.Outcome = models.DecisionApprovedCond
	input.Decision.Conditions = []string{"Resolve policy breach: credit_score at 640.0 (limit 650.0)."}

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output.Offer)
	assert.Equal(t, input.Decision.Conditions, output.Offer.Conditions)
}

func TestExecute_SkipsNegativeDecisions(t *testing.T) {
	tests := []struct {
		name    string
		outcome models.DecisionOutcome
	}{
		{"declined", models.DecisionDeclined},
		{"referred", models.DecisionReferred},
		{"not qualified", models.DecisionNotQualified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			input.Decision.Outcome = tt.outcome

			output, err := newHandler(t).Execute(context.Background(), input)

			require.NoError(t, err)
			assert.False(t, output.Generated)
			assert.Nil(t, output.Offer)
			assert.Contains(t, output.Remarks, string(tt.outcome))
		})
	}
}

func TestExecute_RejectsPositiveDecisionWithoutTerms(t *testing.T) {
	input := createTestInput()
	input.Terms = nil

	_, err := newHandler(t).Execute(context.Background(), input)
	assert.Error(t, err)
}

func TestExecute_ShortTenureReturnsWholeSchedule(t *testing.T) {
	input := createTestInput()
	input.Terms.ApprovedAmount = 120_000
	input.Terms.TenureMonths = 12
	input.Terms.InterestRate = 10

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output.Offer)
	assert.Len(t, output.Offer.ScheduleHead, 12)
	assert.Empty(t, output.Offer.ScheduleTail)
}
