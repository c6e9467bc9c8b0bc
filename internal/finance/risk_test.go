package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditRiskScore(t *testing.T) {
	tests := []struct {
		name             string
		creditScore      int
		paymentHistory   float64
		utilization      float64
		historyYears     float64
		inquiries        int
		expectedCategory string
	}{
		{
			name:             "strong profile is low risk",
			creditScore:      780,
			paymentHistory:   95,
			utilization:      20,
			historyYears:     10,
			inquiries:        1,
			expectedCategory: "LOW",
		},
		{
			name:             "mid profile is medium risk",
			creditScore:      700,
			paymentHistory:   80,
			utilization:      40,
			historyYears:     6,
			inquiries:        2,
			expectedCategory: "MEDIUM",
		},
		{
			name:             "weak profile is high risk",
			creditScore:      620,
			paymentHistory:   60,
			utilization:      70,
			historyYears:     3,
			inquiries:        4,
			expectedCategory: "HIGH",
		},
		{
			name:             "floor profile is very high risk",
			creditScore:      330,
			paymentHistory:   10,
			utilization:      100,
			historyYears:     0.5,
			inquiries:        10,
			expectedCategory: "VERY_HIGH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CreditRiskScore(tt.creditScore, tt.paymentHistory, tt.utilization, tt.historyYears, tt.inquiries)

			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.GreaterOrEqual(t, result.RiskScore, 0.0)
			assert.LessOrEqual(t, result.RiskScore, 100.0)
			assert.GreaterOrEqual(t, result.ProbabilityOfDefault, 0.0)
			require.Len(t, result.Components, 5)
		})
	}
}

func TestCreditRiskScore_LowerScoreMeansHigherRisk(t *testing.T) {
	strong := CreditRiskScore(750, 90, 25, 8, 1)
	weak := CreditRiskScore(600, 90, 25, 8, 1)

	assert.Less(t, strong.RiskScore, weak.RiskScore)
}

func TestCreditRiskScore_Idempotent(t *testing.T) {
	first := CreditRiskScore(720, 85, 30, 6, 2)
	second := CreditRiskScore(720, 85, 30, 6, 2)

	assert.Equal(t, first, second)
}

func TestCollateralRiskScore(t *testing.T) {
	tests := []struct {
		name               string
		propertyType       string
		locationTier       string
		ageYears           int
		legalStatus        string
		expectedCategory   string
		expectedMonths     int
		expectedAcceptable bool
	}{
		{
			name:               "new residential in metro with clear title",
			propertyType:       "Residential",
			locationTier:       "Metro City",
			ageYears:           3,
			legalStatus:        "Clear",
			expectedCategory:   "LOW",
			expectedMonths:     3,
			expectedAcceptable: true,
		},
		{
			name:               "commercial in tier 1",
			propertyType:       "Commercial",
			locationTier:       "Tier 1 City",
			ageYears:           10,
			legalStatus:        "Clear",
			expectedCategory:   "MEDIUM",
			expectedMonths:     6,
			expectedAcceptable: true,
		},
		{
			name:               "old plot with disputed title",
			propertyType:       "Plot",
			locationTier:       "Tier 3 City",
			ageYears:           20,
			legalStatus:        "Disputed",
			expectedCategory:   "HIGH",
			expectedMonths:     12,
			expectedAcceptable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CollateralRiskScore(tt.propertyType, tt.locationTier, tt.ageYears, tt.legalStatus)

			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.Equal(t, tt.expectedMonths, result.LiquidationMonths)
			assert.Equal(t, tt.expectedAcceptable, result.Acceptable)
		})
	}
}

func TestCombinedRiskScore(t *testing.T) {
	tests := []struct {
		name             string
		creditRisk       float64
		collateralRisk   float64
		incomeStability  float64
		documentation    float64
		expectedCategory string
	}{
		{"all strong", 10, 15, 90, 90, "LOW"},
		{"middling", 40, 40, 65, 60, "MEDIUM"},
		{"weak", 60, 55, 50, 45, "HIGH"},
		{"poor across the board", 90, 80, 20, 10, "VERY_HIGH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CombinedRiskScore(tt.creditRisk, tt.collateralRisk, tt.incomeStability, tt.documentation)

			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.GreaterOrEqual(t, result.CombinedScore, 0.0)
			assert.LessOrEqual(t, result.CombinedScore, 100.0)
		})
	}
}

func TestIncomeStability(t *testing.T) {
	government := IncomeStability(8, "Government")
	assert.Equal(t, "HIGH", government.Rating)

	private := IncomeStability(1, "Private")
	assert.Equal(t, "LOW", private.Rating)

	mnc := IncomeStability(3, "MNC")
	assert.Equal(t, "MEDIUM", mnc.Rating)
}

func TestCreditScoreRating(t *testing.T) {
	tests := []struct {
		score     int
		rating    string
		riskLevel string
	}{
		{780, "EXCELLENT", "VERY_LOW"},
		{720, "GOOD", "LOW"},
		{660, "FAIR", "MEDIUM"},
		{580, "POOR", "HIGH"},
		{500, "VERY_POOR", "VERY_HIGH"},
	}

	for _, tt := range tests {
		rating, riskLevel := CreditScoreRating(tt.score)
		assert.Equal(t, tt.rating, rating)
		assert.Equal(t, tt.riskLevel, riskLevel)
	}
}
