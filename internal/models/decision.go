package models

// Verdict values used by stage results.
const (
	VerdictPass        = "PASS"
	VerdictFail        = "FAIL"
	VerdictConditional = "CONDITIONAL"
	VerdictPending     = "PENDING"
	VerdictError       = "ERROR"
)

// Qualification outcomes.
const (
	QualificationQualified    = "QUALIFIED"
	QualificationConditional  = "CONDITIONALLY_QUALIFIED"
	QualificationNotQualified = "NOT_QUALIFIED"
)

// DecisionOutcome enumerates terminal underwriting outcomes.
type DecisionOutcome string

const (
	DecisionApproved     DecisionOutcome = "APPROVED"
	DecisionApprovedCond DecisionOutcome = "APPROVED_WITH_CONDITIONS"
	DecisionReferred     DecisionOutcome = "REFERRED"
	DecisionDeclined     DecisionOutcome = "DECLINED"
	DecisionNotQualified DecisionOutcome = "NOT_QUALIFIED"
)

// Decision is produced exactly once by the stage that issues it.
type Decision struct {
	Outcome    DecisionOutcome `json:"outcome"`
	Rationale  string          `json:"rationale"`
	Conditions []string        `json:"conditions,omitempty"`
	Authority  string          `json:"authority,omitempty"`
}

// IsPositive reports whether the decision allows the offer stage to produce
// loan terms.
func (d Decision) IsPositive() bool {
	return d.Outcome == DecisionApproved || d.Outcome == DecisionApprovedCond
}

// LoanTerms is derived by underwriting and consumed by offer generation.
type LoanTerms struct {
	ApprovedAmount       float64 `json:"approvedAmount"`
	InterestRate         float64 `json:"interestRate"`
	TenureMonths         int     `json:"tenureMonths"`
	EMI                  float64 `json:"emi"`
	ProcessingFee        float64 `json:"processingFee"`
	DocumentationCharges float64 `json:"documentationCharges"`
}

// AmortizationEntry is one month of a repayment schedule.
type AmortizationEntry struct {
	Month     int     `json:"month"`
	EMI       float64 `json:"emi"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}
