package creditassessment

import (
	"context"

	"loan-workers/internal/models"
)

// ReportProvider fetches a credit report for an applicant. Implementations
// wrap a bureau integration; the default derives a deterministic report from
// the declared profile so assessments are reproducible without one.
type ReportProvider interface {
	FetchReport(ctx context.Context, applicationID string, customer models.CustomerProfile) (CreditReport, error)
}

type staticProvider struct{}

// NewStaticProvider returns the built-in deterministic report provider.
func NewStaticProvider() ReportProvider {
	return staticProvider{}
}

func (staticProvider) FetchReport(_ context.Context, _ string, customer models.CustomerProfile) (CreditReport, error) {
	var paymentHistory float64
	switch {
	case customer.CreditScore >= 750:
		paymentHistory = 95
	case customer.CreditScore >= 700:
		paymentHistory = 85
	case customer.CreditScore >= 650:
		paymentHistory = 75
	case customer.CreditScore >= 550:
		paymentHistory = 60
	default:
		paymentHistory = 40
	}

	return CreditReport{
		PaymentHistoryScore: paymentHistory,
		OutstandingDebt:     (customer.ExistingEMIs + customer.OtherObligations) * 12,
		CreditLimit:         customer.MonthlyIncome * 10,
	}, nil
}
