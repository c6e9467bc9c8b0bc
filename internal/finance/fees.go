package finance

// FeeStructureResult itemizes the upfront charges on a sanctioned amount.
type FeeStructureResult struct {
	ProcessingFee        float64 `json:"processingFee"`
	DocumentationCharges float64 `json:"documentationCharges"`
	Total                float64 `json:"total"`
}

// FeeStructure computes the upfront charges for a sanctioned principal: a
// percentage-of-principal processing fee plus flat documentation charges.
func FeeStructure(principal, processingFeePercent, documentationCharges float64) FeeStructureResult {
	if principal <= 0 {
		return FeeStructureResult{DocumentationCharges: documentationCharges, Total: documentationCharges}
	}
	fee := RoundCurrency(principal * processingFeePercent / 100)
	return FeeStructureResult{
		ProcessingFee:        fee,
		DocumentationCharges: documentationCharges,
		Total:                RoundCurrency(fee + documentationCharges),
	}
}
