package finance

import "loan-workers/internal/policy"

// FOIRResult reports fixed-obligation-to-income ratios before and after the
// proposed loan.
type FOIRResult struct {
	CurrentFOIR        float64 `json:"currentFoir"`
	ProposedFOIR       float64 `json:"proposedFoir"`
	MaxFOIR            float64 `json:"maxFoir"`
	Status             string  `json:"status"`
	Health             string  `json:"health"`
	AvailableForNewEMI float64 `json:"availableForNewEmi"`
}

// FOIR computes the obligation ratios against monthly income. Zero income
// short-circuits to an explicit FAIL result.
func FOIR(monthlyIncome, existingEMIs, proposedEMI, otherObligations float64) FOIRResult {
	if monthlyIncome <= 0 {
		return FOIRResult{
			MaxFOIR: policy.MaxFOIRPercent,
			Status:  "FAIL",
			Health:  "HIGH",
		}
	}

	current := (existingEMIs + otherObligations) / monthlyIncome * 100
	proposed := (existingEMIs + proposedEMI + otherObligations) / monthlyIncome * 100

	status := "PASS"
	if proposed > policy.MaxFOIRPercent {
		status = "FAIL"
	}

	health := "HIGH"
	switch {
	case proposed <= policy.FOIRHealthyMax:
		health = "HEALTHY"
	case proposed <= policy.FOIRModerateMax:
		health = "MODERATE"
	}

	available := monthlyIncome*policy.MaxFOIRPercent/100 - existingEMIs - otherObligations
	if available < 0 {
		available = 0
	}

	return FOIRResult{
		CurrentFOIR:        RoundCurrency(current),
		ProposedFOIR:       RoundCurrency(proposed),
		MaxFOIR:            policy.MaxFOIRPercent,
		Status:             status,
		Health:             health,
		AvailableForNewEMI: RoundCurrency(available),
	}
}

// DebtMetrics summarizes revolving-credit usage.
type DebtMetrics struct {
	UtilizationPercent  float64 `json:"utilizationPercent"`
	UtilizationRating   string  `json:"utilizationRating"`
	DebtToIncomePercent float64 `json:"debtToIncomePercent"`
}

// ComputeDebtMetrics rates credit utilization and annualized debt-to-income.
func ComputeDebtMetrics(outstanding, creditLimit, monthlyIncome float64) DebtMetrics {
	m := DebtMetrics{}

	if creditLimit > 0 {
		m.UtilizationPercent = RoundCurrency(outstanding / creditLimit * 100)
	}
	switch {
	case m.UtilizationPercent <= 30:
		m.UtilizationRating = "EXCELLENT"
	case m.UtilizationPercent <= 50:
		m.UtilizationRating = "GOOD"
	case m.UtilizationPercent <= 70:
		m.UtilizationRating = "FAIR"
	default:
		m.UtilizationRating = "POOR"
	}

	if monthlyIncome > 0 {
		m.DebtToIncomePercent = RoundCurrency(outstanding / (monthlyIncome * 12) * 100)
	}

	return m
}
