// Package policy holds the canonical lending policy table. Every stage reads
// the same table so thresholds cannot drift between checks.
package policy

// Deployment-tunable limits. ApplyOverrides may adjust these at startup;
// they are never mutated after the workers begin polling.
var (
	BaseRatePercent = 8.5
	MaxFOIRPercent  = 60.0
	LoanCap         = 50_000_000.0
)

// ApplyOverrides replaces the tunable limits with configured values. Zero
// values keep the canonical defaults.
func ApplyOverrides(baseRatePercent, maxFOIRPercent, loanCap float64) {
	if baseRatePercent > 0 {
		BaseRatePercent = baseRatePercent
	}
	if maxFOIRPercent > 0 {
		MaxFOIRPercent = maxFOIRPercent
	}
	if loanCap > 0 {
		LoanCap = loanCap
	}
}

// Core policy limits.
const (
	MinCreditScore = 650
	MinAge         = 21
	MaxAge         = 65
	MaxLTVPercent  = 80.0

	// Headroom fraction of income available for a new EMI when sizing
	// borrowing capacity.
	CapacityIncomeFraction = 0.5

	MaxTenureYears   = 30
	MaxAgeAtMaturity = 70

	ProcessingFeePercent = 0.5
	DocumentationCharges = 5000.0
)

// FOIR health bands.
const (
	FOIRHealthyMax  = 30.0
	FOIRModerateMax = 50.0
)

// RateSpread returns the percentage-point spread added to the base rate for
// a combined risk category.
func RateSpread(riskCategory string) float64 {
	switch riskCategory {
	case "LOW":
		return 0
	case "MEDIUM":
		return 0.5
	case "HIGH":
		return 1.5
	default:
		return 2.5
	}
}

var riskSeverity = map[string]int{
	"LOW":       0,
	"MEDIUM":    1,
	"HIGH":      2,
	"VERY_HIGH": 3,
}

// WorseRiskCategory returns the more severe of two risk categories. Unknown
// categories rank worst, matching RateSpread's default spread.
func WorseRiskCategory(a, b string) string {
	sa, oka := riskSeverity[a]
	sb, okb := riskSeverity[b]
	switch {
	case !oka:
		return a
	case !okb:
		return b
	case sb > sa:
		return b
	default:
		return a
	}
}

// LTVCeiling returns the maximum loan-to-value percentage for a property type.
func LTVCeiling(propertyType string) float64 {
	switch propertyType {
	case "Residential":
		return 80
	case "Residential - Under Construction":
		return 75
	case "Commercial":
		return 70
	case "Plot":
		return 60
	case "Industrial":
		return 65
	case "Mixed Use":
		return 65
	default:
		return 75
	}
}

// Product describes the eligibility envelope for one loan product.
type Product struct {
	Name             string
	MinAge           int
	MaxAge           int
	MaxAgeAtMaturity int
	MinMonthlyIncome float64
	// IncomeMultiplier caps the loan at a multiple of monthly income.
	IncomeMultiplier float64
}

var products = map[string]Product{
	"Home Loan": {
		Name:             "Home Loan",
		MinAge:           21,
		MaxAge:           65,
		MaxAgeAtMaturity: 70,
		MinMonthlyIncome: 25_000,
		IncomeMultiplier: 60,
	},
	"Personal Loan": {
		Name:             "Personal Loan",
		MinAge:           21,
		MaxAge:           60,
		MaxAgeAtMaturity: 65,
		MinMonthlyIncome: 15_000,
		IncomeMultiplier: 20,
	},
	"Business Loan": {
		Name:             "Business Loan",
		MinAge:           25,
		MaxAge:           65,
		MaxAgeAtMaturity: 70,
		MinMonthlyIncome: 50_000,
		IncomeMultiplier: 48,
	},
	"Vehicle Loan": {
		Name:             "Vehicle Loan",
		MinAge:           21,
		MaxAge:           65,
		MaxAgeAtMaturity: 70,
		MinMonthlyIncome: 20_000,
		IncomeMultiplier: 36,
	},
}

// ProductFor returns the product definition for a product type, falling back
// to the Home Loan envelope for unknown types.
func ProductFor(productType string) Product {
	if p, ok := products[productType]; ok {
		return p
	}
	return products["Home Loan"]
}

// ComplianceCheck is one named policy check with its observed value.
type ComplianceCheck struct {
	Name      string  `json:"name"`
	Compliant bool    `json:"compliant"`
	Observed  float64 `json:"observed"`
	Limit     float64 `json:"limit"`
}

// ComplianceInput carries the facts the policy checks inspect.
type ComplianceInput struct {
	LTVPercent  float64
	CreditScore int
	FOIRPercent float64
	Age         int
	LoanAmount  float64
}

// CheckCompliance runs the five policy checks and reports each outcome.
func CheckCompliance(in ComplianceInput) []ComplianceCheck {
	return []ComplianceCheck{
		{Name: "ltv", Compliant: in.LTVPercent <= MaxLTVPercent, Observed: in.LTVPercent, Limit: MaxLTVPercent},
		{Name: "credit_score", Compliant: in.CreditScore >= MinCreditScore, Observed: float64(in.CreditScore), Limit: MinCreditScore},
		{Name: "foir", Compliant: in.FOIRPercent <= MaxFOIRPercent, Observed: in.FOIRPercent, Limit: MaxFOIRPercent},
		{Name: "age", Compliant: in.Age >= MinAge && in.Age <= MaxAge, Observed: float64(in.Age), Limit: MaxAge},
		{Name: "loan_amount", Compliant: in.LoanAmount <= LoanCap, Observed: in.LoanAmount, Limit: LoanCap},
	}
}

// Violations counts failed checks.
func Violations(checks []ComplianceCheck) int {
	n := 0
	for _, c := range checks {
		if !c.Compliant {
			n++
		}
	}
	return n
}

// ApprovalAuthority maps the violation count to the sign-off level required.
func ApprovalAuthority(violations int) string {
	switch {
	case violations == 0:
		return "Standard"
	case violations == 1:
		return "Senior Management"
	default:
		return "Credit Committee"
	}
}
