package finance

import "math"

// CreditRiskResult scores an applicant's credit profile; lower is better.
type CreditRiskResult struct {
	RiskScore            float64            `json:"riskScore"`
	Category             string             `json:"category"`
	ProbabilityOfDefault float64            `json:"probabilityOfDefault"`
	Components           map[string]float64 `json:"components"`
}

// CreditRiskScore blends five normalized credit components into a 0-100 risk
// score (lower = better) with a category and an implied default probability.
func CreditRiskScore(creditScore int, paymentHistoryScore, utilizationPercent, historyYears float64, recentInquiries int) CreditRiskResult {
	scoreComp := math.Min(100, math.Max(0, float64(creditScore-300)/6))
	paymentComp := math.Min(100, math.Max(0, paymentHistoryScore))
	utilizationComp := math.Max(0, 100-utilizationPercent*1.5)
	historyComp := math.Min(100, historyYears*12)
	inquiryComp := math.Max(0, 100-float64(recentInquiries)*15)

	weighted := scoreComp*0.35 +
		paymentComp*0.25 +
		utilizationComp*0.20 +
		historyComp*0.10 +
		inquiryComp*0.10

	riskScore := 100 - weighted

	var category string
	var pdFactor float64
	switch {
	case riskScore <= 20:
		category, pdFactor = "LOW", 0.1
	case riskScore <= 40:
		category, pdFactor = "MEDIUM", 0.15
	case riskScore <= 60:
		category, pdFactor = "HIGH", 0.25
	default:
		category, pdFactor = "VERY_HIGH", 0.4
	}

	return CreditRiskResult{
		RiskScore:            RoundCurrency(riskScore),
		Category:             category,
		ProbabilityOfDefault: RoundCurrency(riskScore * pdFactor),
		Components: map[string]float64{
			"creditScore":    RoundCurrency(scoreComp),
			"paymentHistory": RoundCurrency(paymentComp),
			"utilization":    RoundCurrency(utilizationComp),
			"history":        RoundCurrency(historyComp),
			"inquiries":      RoundCurrency(inquiryComp),
		},
	}
}

// CollateralRiskResult scores how risky a property is as security.
type CollateralRiskResult struct {
	RiskScore         float64 `json:"riskScore"`
	Category          string  `json:"category"`
	Marketability     string  `json:"marketability"`
	LiquidationMonths int     `json:"liquidationMonths"`
	Acceptable        bool    `json:"acceptable"`
}

// CollateralRiskScore accumulates risk points for property type, location,
// age and legal clarity. Higher points mean a harder asset to liquidate.
func CollateralRiskScore(propertyType, locationTier string, ageYears int, legalStatus string) CollateralRiskResult {
	points := 0.0

	switch propertyType {
	case "Residential":
		points += 10
	case "Commercial":
		points += 25
	case "Plot":
		points += 30
	default:
		points += 20
	}

	switch locationTier {
	case "Metro City":
		points += 5
	case "Tier 1 City":
		points += 10
	default:
		points += 20
	}

	switch {
	case ageYears <= 5:
		points += 5
	case ageYears <= 15:
		points += 10
	default:
		points += 20
	}

	if legalStatus != "Clear" {
		points += 30
	}

	var category, marketability string
	var months int
	switch {
	case points <= 25:
		category, marketability, months = "LOW", "HIGH", 3
	case points <= 50:
		category, marketability, months = "MEDIUM", "MEDIUM", 6
	default:
		category, marketability, months = "HIGH", "LOW", 12
	}

	return CollateralRiskResult{
		RiskScore:         points,
		Category:          category,
		Marketability:     marketability,
		LiquidationMonths: months,
		Acceptable:        category != "HIGH",
	}
}

// CombinedRiskResult is the blended risk position across all dimensions;
// higher combined score is better.
type CombinedRiskResult struct {
	CombinedScore float64 `json:"combinedScore"`
	Category      string  `json:"category"`
}

// CombinedRiskScore blends credit and collateral risk (inverted, since lower
// is better there) with income-stability and documentation scores (higher is
// better).
func CombinedRiskScore(creditRisk, collateralRisk, incomeStability, documentation float64) CombinedRiskResult {
	combined := (100-creditRisk)*0.35 +
		(100-collateralRisk)*0.25 +
		incomeStability*0.25 +
		documentation*0.15

	var category string
	switch {
	case combined >= 80:
		category = "LOW"
	case combined >= 60:
		category = "MEDIUM"
	case combined >= 40:
		category = "HIGH"
	default:
		category = "VERY_HIGH"
	}

	return CombinedRiskResult{
		CombinedScore: RoundCurrency(combined),
		Category:      category,
	}
}

// IncomeStabilityResult rates how dependable an applicant's income is.
type IncomeStabilityResult struct {
	Score    float64 `json:"score"`
	Rating   string  `json:"rating"`
	Tenure   float64 `json:"tenureScore"`
	Employer float64 `json:"employerScore"`
}

// IncomeStability averages employment tenure with employer-type strength.
func IncomeStability(employmentYears float64, employerType string) IncomeStabilityResult {
	tenure := math.Min(100, employmentYears*15)

	var employer float64
	switch employerType {
	case "Government", "PSU":
		employer = 90
	case "MNC":
		employer = 80
	default:
		employer = 70
	}

	score := (tenure + employer) / 2

	rating := "LOW"
	switch {
	case score >= 80:
		rating = "HIGH"
	case score >= 60:
		rating = "MEDIUM"
	}

	return IncomeStabilityResult{
		Score:    RoundCurrency(score),
		Rating:   rating,
		Tenure:   RoundCurrency(tenure),
		Employer: employer,
	}
}

// CreditScoreRating maps a bureau score into a band and risk level.
func CreditScoreRating(creditScore int) (rating, riskLevel string) {
	switch {
	case creditScore >= 750:
		return "EXCELLENT", "VERY_LOW"
	case creditScore >= 700:
		return "GOOD", "LOW"
	case creditScore >= 650:
		return "FAIR", "MEDIUM"
	case creditScore >= 550:
		return "POOR", "HIGH"
	default:
		return "VERY_POOR", "VERY_HIGH"
	}
}
