package finance

import "loan-workers/internal/models"

// Amortize produces the full month-by-month repayment schedule. The final
// balance reaches zero up to floating rounding; callers wanting a display
// window can slice the result with ScheduleWindow.
func Amortize(principal, annualRatePercent float64, tenureMonths int) []models.AmortizationEntry {
	if principal <= 0 || tenureMonths <= 0 {
		return nil
	}

	emi := EMI(principal, annualRatePercent, tenureMonths)
	r := annualRatePercent / 100 / 12

	schedule := make([]models.AmortizationEntry, 0, tenureMonths)
	balance := principal

	for month := 1; month <= tenureMonths; month++ {
		interest := balance * r
		principalPart := emi - interest
		if month == tenureMonths {
			// Absorb rounding drift into the last installment.
			principalPart = balance
		}
		balance -= principalPart

		schedule = append(schedule, models.AmortizationEntry{
			Month:     month,
			EMI:       RoundCurrency(emi),
			Principal: RoundCurrency(principalPart),
			Interest:  RoundCurrency(interest),
			Balance:   RoundCurrency(balance),
		})
	}

	return schedule
}

// ScheduleWindow returns the first and last n entries of a schedule for
// display. Short schedules are returned whole (tail nil).
func ScheduleWindow(schedule []models.AmortizationEntry, n int) (head, tail []models.AmortizationEntry) {
	if len(schedule) <= 2*n {
		return schedule, nil
	}
	return schedule[:n], schedule[len(schedule)-n:]
}
