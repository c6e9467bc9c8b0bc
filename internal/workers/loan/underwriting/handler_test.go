package underwriting

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/finance"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		ApplicationID:      "LN-test-0001",
		LoanAmount:         4_000_000,
		ProductType:        "Home Loan",
		TenureYears:        20,
		DocumentationScore: 100,
		Customer: models.CustomerProfile{
			Age:         35,
			CreditScore: 750,
		},
		Qualification: QualificationSummary{
			Outcome: models.QualificationQualified,
			FOIR: finance.FOIRResult{
				ProposedFOIR:       59.62,
				MaxFOIR:            60,
				Status:             "PASS",
				AvailableForNewEMI: 35_000,
			},
		},
		Credit: CreditSummary{
			Verdict:         models.VerdictPass,
			CreditRisk:      finance.CreditRiskResult{RiskScore: 16.7, Category: "LOW"},
			IncomeStability: finance.IncomeStabilityResult{Score: 90, Rating: "HIGH"},
		},
		Asset: AssetSummary{
			Verdict:       models.VerdictPass,
			AssessedValue: 5_122_000,
			LTV: finance.LTVResult{
				ActualLTV:       78.09,
				MaxLTVAllowed:   80,
				MaxLoanAtMaxLTV: 4_097_600,
				Status:          "WITHIN_LIMITS",
			},
			CollateralRisk: finance.CollateralRiskResult{RiskScore: 20, Category: "LOW", Acceptable: true},
		},
	}
}

func newHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute_ApprovesCleanApplication(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, output.Decision.Outcome)
	assert.Equal(t, "Standard", output.Decision.Authority)
	assert.Equal(t, "LOW", output.CombinedRisk.Category)
	assert.InDelta(t, 86.66, output.CombinedRisk.CombinedScore, 0.1)
	assert.Zero(t, output.Violations)

	require.NotNil(t, output.Terms)
	assert.InDelta(t, 4_000_000, output.Terms.ApprovedAmount, 1)
	assert.Equal(t, 8.5, output.Terms.InterestRate)
	assert.Equal(t, 240, output.Terms.TenureMonths)
	assert.InDelta(t, 34_713, output.Terms.EMI, 1)
	assert.InDelta(t, 20_000, output.Terms.ProcessingFee, 1)
	assert.Equal(t, 5_000.0, output.Terms.DocumentationCharges)
}

func TestExecute_ConditionsOnPolicyBreach(t *testing.T) {
	input := createTestInput()
	input.Customer.CreditScore = 640
	input.Credit.CreditRisk = finance.CreditRiskResult{RiskScore: 34.5, Category: "MEDIUM"}

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprovedCond, output.Decision.Outcome)
	assert.Equal(t, "Senior Management", output.Decision.Authority)
	assert.Equal(t, 1, output.Violations)
	require.NotEmpty(t, output.Decision.Conditions)
	assert.Contains(t, output.Decision.Conditions[0], "credit_score")
	require.NotNil(t, output.Terms)
}

func TestExecute_RefersMultiplePolicyBreaches(t *testing.T) {
	input := createTestInput()
	input.Customer.CreditScore = 640
	input.LoanAmount = 60_000_000

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	// Two breaches exceed what a conditional approval may carry, even with
	// every stage passed.
	assert.Equal(t, 2, output.Violations)
	assert.Equal(t, models.DecisionReferred, output.Decision.Outcome)
	assert.Equal(t, "Credit Committee", output.Decision.Authority)
	assert.Nil(t, output.Terms)
}

func TestExecute_WeakCreditBranchRaisesRate(t *testing.T) {
	input := createTestInput()
	input.Credit.CreditRisk = finance.CreditRiskResult{RiskScore: 34.2, Category: "MEDIUM"}

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "LOW", output.CombinedRisk.Category)
	require.NotNil(t, output.Terms)
	// The credit branch alone carries the MEDIUM spread into pricing.
	assert.Equal(t, 9.0, output.Terms.InterestRate)
}

func TestExecute_RefersMixedAssessment(t *testing.T) {
	input := createTestInput()
	input.Asset.Verdict = models.VerdictFail
	input.Asset.LTV.ActualLTV = 85
	input.Asset.LTV.Status = "EXCEEDS_LIMIT"
	input.Asset.CollateralRisk = finance.CollateralRiskResult{RiskScore: 60, Category: "HIGH"}

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReferred, output.Decision.Outcome)
	assert.Equal(t, "Credit Committee", output.Decision.Authority)
	assert.Nil(t, output.Terms)
}

func TestExecute_DeclinesWeakApplication(t *testing.T) {
	input := createTestInput()
	input.Customer.CreditScore = 520
	input.Credit.Verdict = models.VerdictFail
	input.Credit.CreditRisk = finance.CreditRiskResult{RiskScore: 70, Category: "VERY_HIGH"}
	input.Credit.IncomeStability = finance.IncomeStabilityResult{Score: 40, Rating: "LOW"}
	input.Asset.Verdict = models.VerdictFail
	input.Asset.CollateralRisk = finance.CollateralRiskResult{RiskScore: 80, Category: "HIGH"}
	input.DocumentationScore = 20

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeclined, output.Decision.Outcome)
	assert.Nil(t, output.Terms)
}

func TestExecute_RefersWhenDocumentationIsThin(t *testing.T) {
	input := createTestInput()
	input.DocumentationScore = 40

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionReferred, output.Decision.Outcome)
	assert.Nil(t, output.Terms)
}

func TestExecute_PassesThroughNotQualified(t *testing.T) {
	input := createTestInput()
	input.Qualification.Outcome = models.QualificationNotQualified

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionNotQualified, output.Decision.Outcome)
	assert.Nil(t, output.Terms)
}

func TestExecute_CapsApprovedAmountAtLTVCeiling(t *testing.T) {
	input := createTestInput()
	input.Asset.LTV.MaxLoanAtMaxLTV = 3_500_000

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output.Terms)
	assert.InDelta(t, 3_500_000, output.Terms.ApprovedAmount, 1)
	assert.Less(t, output.Terms.EMI, 34_713.0)
}

func TestExecute_TenureLimitedByAgeAtMaturity(t *testing.T) {
	input := createTestInput()
	input.Customer.Age = 55
	input.TenureYears = 25

	output, err := newHandler(t).Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output.Terms)
	assert.Equal(t, 15*12, output.Terms.TenureMonths)
}
