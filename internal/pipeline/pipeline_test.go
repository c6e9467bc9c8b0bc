package pipeline

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/completion"
	"loan-workers/internal/docstore"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"
	"loan-workers/internal/workers/loan/audit"
	"loan-workers/internal/workers/loan/intake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct{ sent int }

func (f *fakeEmail) SendEmail(_ context.Context, _, _, _ string) (string, error) {
	f.sent++
	return "msg-email", nil
}

type fakeSMS struct{ sent int }

func (f *fakeSMS) SendSMS(_ context.Context, _, _ string) (string, error) {
	f.sent++
	return "msg-sms", nil
}

type fakeIndexer struct {
	docIDs []string
}

func (f *fakeIndexer) IndexReport(_ context.Context, docID string, _ *audit.Report) error {
	f.docIDs = append(f.docIDs, docID)
	return nil
}

func seedDocuments(t *testing.T, store docstore.Store, customerID string) {
	t.Helper()
	for _, name := range []string{
		"aadhaar card.pdf",
		"pan card.pdf",
		"form16 2024.pdf",
		"bank statement jan.pdf",
		"cibil report.pdf",
		"property sale deed.pdf",
	} {
		require.NoError(t, store.SaveDocument(context.Background(), customerID, name, []byte("content")))
	}
}

func createTestRequest() *Request {
	return &Request{
		CustomerID: "asha-verma",
		Input: intake.Input{
			CustomerName: "Asha Verma",
			LoanAmount:   4_000_000,
			Purpose:      "Home purchase",
			ProductType:  "Home Loan",
			TenureYears:  20,
			Email:        "asha.verma@example.com",
			Contact:      "+91 98765 43210",
			Customer: models.CustomerProfile{
				Age:                35,
				MonthlyIncome:      75_000,
				EmploymentYears:    8,
				EmployerType:       "MNC",
				ExistingEMIs:       10_000,
				CreditScore:        750,
				CreditHistoryYears: 8,
				RecentInquiries:    1,
			},
			Collateral: &models.CollateralProfile{
				PropertyType:  "Residential",
				LocationTier:  "Metro City",
				AreaSqft:      660,
				AgeYears:      3,
				QualityGrade:  "Good",
				LegalStatus:   "Clear",
				DeclaredValue: 5_000_000,
			},
		},
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *fakeEmail, *fakeSMS, *fakeIndexer) {
	store := docstore.NewDirStore(t.TempDir())
	seedDocuments(t, store, "asha-verma")

	email := &fakeEmail{}
	sms := &fakeSMS{}
	indexer := &fakeIndexer{}

	p := New(Options{
		Logger:     logger.NewTestLogger(t),
		Store:      store,
		Completion: completion.NewStubClient(),
		Tools:      completion.NewLoanToolRegistry(store),
		Email:      email,
		SMS:        sms,
		Indexer:    indexer,
	})
	return p, email, sms, indexer
}

func TestProcess_ApprovesStrongApplication(t *testing.T) {
	p, email, sms, indexer := newTestPipeline(t)

	result, err := p.Process(context.Background(), createTestRequest())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, result.Decision.Outcome)
	assert.Equal(t, "Standard", result.Decision.Authority)

	require.NotNil(t, result.Terms)
	assert.InDelta(t, 4_000_000, result.Terms.ApprovedAmount, 1)
	assert.Equal(t, 8.5, result.Terms.InterestRate)
	assert.InDelta(t, 34_713, result.Terms.EMI, 1)

	require.NotNil(t, result.Offer)
	assert.Len(t, result.Offer.ScheduleHead, 12)

	assert.Equal(t, 1, email.sent)
	assert.Equal(t, 1, sms.sent)
	assert.Len(t, result.Notifications, 2)

	assert.True(t, result.Indexed)
	require.NotNil(t, result.AuditReport)
	assert.Equal(t, []string{result.Application.ID}, indexer.docIDs)
	assert.NotEmpty(t, result.Application.ConversationLog)
}

func TestProcess_StageOrderIsDeterministic(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)

	result, err := p.Process(context.Background(), createTestRequest())

	require.NoError(t, err)
	var stages []string
	for _, sr := range result.Application.StageResults {
		stages = append(stages, sr.Stage)
	}
	assert.Equal(t, []string{
		"INTAKE",
		"DOC_VERIFICATION",
		"QUALIFICATION",
		"CREDIT_ASSESSMENT",
		"ASSET_VALUATION",
		"UNDERWRITING",
		"OFFER_GENERATION",
		"COMMUNICATION",
		"AUDIT",
	}, stages)
}

func TestProcess_WeakerCreditGetsConditions(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	req := createTestRequest()
	req.Customer.CreditScore = 600

	result, err := p.Process(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprovedCond, result.Decision.Outcome)
	require.NotEmpty(t, result.Decision.Conditions)
	assert.Contains(t, result.Decision.Conditions[0], "credit_score")
	require.NotNil(t, result.Offer)

	// The weaker bureau profile pushes the credit branch to MEDIUM, which
	// must show up in the priced rate.
	require.NotNil(t, result.Terms)
	assert.Greater(t, result.Terms.InterestRate, policy.BaseRatePercent)
	assert.InDelta(t, policy.BaseRatePercent+policy.RateSpread("MEDIUM"), result.Terms.InterestRate, 0.001)
}

func TestProcess_IneligibleIntakeDeclinesEarly(t *testing.T) {
	p, email, _, _ := newTestPipeline(t)
	req := createTestRequest()
	req.Customer.Age = 19
	req.TenureYears = 10

	result, err := p.Process(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionDeclined, result.Decision.Outcome)
	assert.Nil(t, result.Offer)
	assert.Nil(t, result.Terms)

	// The short path still notifies the applicant and records the trail.
	assert.Equal(t, 1, email.sent)
	require.NotNil(t, result.AuditReport)

	var stages []string
	for _, sr := range result.Application.StageResults {
		stages = append(stages, sr.Stage)
	}
	assert.Equal(t, []string{"INTAKE", "OFFER_GENERATION", "COMMUNICATION", "AUDIT"}, stages)
}

func TestProcess_MissingDocumentsDegradeDecision(t *testing.T) {
	store := docstore.NewDirStore(t.TempDir())
	p := New(Options{
		Logger: logger.NewTestLogger(t),
		Store:  store,
	})

	result, err := p.Process(context.Background(), createTestRequest())

	require.NoError(t, err)
	docStage, found := result.Application.FindStageResult("DOC_VERIFICATION")
	require.True(t, found)
	assert.Equal(t, models.VerdictFail, docStage.Verdict)
	// Doc verification failing keeps the application out of a clean approval.
	assert.NotEqual(t, models.DecisionApproved, result.Decision.Outcome)
}

func TestProcess_NoDocumentStoreStillCompletes(t *testing.T) {
	p := New(Options{Logger: logger.NewTestLogger(t)})

	result, err := p.Process(context.Background(), createTestRequest())

	require.NoError(t, err)
	docStage, found := result.Application.FindStageResult("DOC_VERIFICATION")
	require.True(t, found)
	assert.Equal(t, models.VerdictPending, docStage.Verdict)
	// An unverified file never gets a clean approval.
	assert.NotEqual(t, models.DecisionApproved, result.Decision.Outcome)
	require.NotNil(t, result.AuditReport)
}

func TestProcess_RejectsMalformedRequest(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	req := createTestRequest()
	req.LoanAmount = 0

	_, err := p.Process(context.Background(), req)
	assert.Error(t, err)
}

func TestProcess_RunsWithoutOptionalCollaborators(t *testing.T) {
	store := docstore.NewDirStore(t.TempDir())
	seedDocuments(t, store, "asha-verma")
	p := New(Options{
		Logger: logger.NewTestLogger(t),
		Store:  store,
	})

	result, err := p.Process(context.Background(), createTestRequest())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, result.Decision.Outcome)
	assert.False(t, result.Indexed)
	assert.Empty(t, result.Notifications)
	assert.Empty(t, result.Application.ConversationLog)
}
