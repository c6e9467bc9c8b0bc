package finance

import (
	"math"

	"loan-workers/internal/policy"
)

// PropertyValuation is the estimated market and forced-sale value of a
// property.
type PropertyValuation struct {
	MarketValue     float64 `json:"marketValue"`
	ForcedSaleValue float64 `json:"forcedSaleValue"`
	RatePerSqft     float64 `json:"ratePerSqft"`
	Confidence      string  `json:"confidence"`
}

func locationBaseRate(tier string) float64 {
	switch tier {
	case "Metro City":
		return 8000
	case "Tier 1 City":
		return 6000
	case "Tier 2 City":
		return 4000
	case "Tier 3 City":
		return 2500
	default:
		return 5000
	}
}

func propertyTypeMultiplier(propertyType string) float64 {
	switch propertyType {
	case "Residential":
		return 1.0
	case "Commercial":
		return 1.2
	case "Industrial":
		return 0.8
	case "Plot":
		return 0.7
	case "Mixed Use":
		return 1.1
	default:
		return 1.0
	}
}

func qualityMultiplier(grade string) float64 {
	switch grade {
	case "Excellent":
		return 1.2
	case "Good":
		return 1.0
	case "Average":
		return 0.85
	case "Below Average":
		return 0.7
	default:
		return 1.0
	}
}

// PropertyValue estimates market value from location rate, area, type and
// quality multipliers, discounted for age. Market value is rounded to the
// nearest 1000; forced-sale value is 75% of market.
func PropertyValue(propertyType, locationTier string, areaSqft float64, ageYears int, qualityGrade string) PropertyValuation {
	if areaSqft <= 0 {
		return PropertyValuation{Confidence: "LOW"}
	}

	base := locationBaseRate(locationTier)
	typeMult := propertyTypeMultiplier(propertyType)
	qualMult := qualityMultiplier(qualityGrade)
	depreciation := math.Min(0.15, float64(ageYears)*0.01)

	market := base * areaSqft * typeMult * qualMult * (1 - depreciation)
	market = roundToThousand(market)

	confidence := "MODERATE"
	if qualMult >= 1.0 {
		confidence = "HIGH"
	}

	return PropertyValuation{
		MarketValue:     market,
		ForcedSaleValue: roundToThousand(market * 0.75),
		RatePerSqft:     RoundCurrency(base * typeMult * qualMult),
		Confidence:      confidence,
	}
}

// LTVResult reports the loan-to-value position against the policy ceiling
// for the property type.
type LTVResult struct {
	ActualLTV       float64 `json:"actualLtv"`
	MaxLTVAllowed   float64 `json:"maxLtvAllowed"`
	MaxLoanAtMaxLTV float64 `json:"maxLoanAtMaxLtv"`
	Status          string  `json:"status"`
}

// LTV computes the loan-to-value ratio. A zero property value yields LTV 0
// with status EXCEEDS_LIMIT so the degenerate case can never look compliant.
func LTV(propertyValue, loanAmount float64, propertyType string) LTVResult {
	ceiling := policy.LTVCeiling(propertyType)

	if propertyValue <= 0 {
		return LTVResult{
			MaxLTVAllowed: ceiling,
			Status:        "EXCEEDS_LIMIT",
		}
	}

	actual := loanAmount / propertyValue * 100

	status := "WITHIN_LIMITS"
	if actual > ceiling {
		status = "EXCEEDS_LIMIT"
	}

	return LTVResult{
		ActualLTV:       RoundCurrency(actual),
		MaxLTVAllowed:   ceiling,
		MaxLoanAtMaxLTV: RoundCurrency(propertyValue * ceiling / 100),
		Status:          status,
	}
}
