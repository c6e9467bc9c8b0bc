package completion

import (
	"context"
	"fmt"

	"loan-workers/internal/common/validation"
	"loan-workers/internal/docstore"
	"loan-workers/internal/finance"
	"loan-workers/internal/policy"
)

func numberProp(desc string) validation.Property {
	return validation.Property{Type: "number", Description: desc}
}

func stringProp(desc string) validation.Property {
	return validation.Property{Type: "string", Description: desc}
}

func objectSchema(props map[string]validation.Property, required ...string) validation.JSONSchema {
	return validation.JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func floatArg(args map[string]interface{}, key string) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	if v, ok := args[key].(int); ok {
		return float64(v)
	}
	return 0
}

func intArg(args map[string]interface{}, key string) int {
	return int(floatArg(args, key))
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// NewLoanToolRegistry builds the registry of calculator and document tools
// the collaborator may invoke during any stage.
func NewLoanToolRegistry(store docstore.Store) *ToolRegistry {
	r := NewToolRegistry()

	r.Register(ToolSchema{
		Name:        ToolCalculateEMI,
		Description: "Compute the equated monthly installment for a loan",
		Parameters: objectSchema(map[string]validation.Property{
			"principal":    numberProp("loan principal"),
			"annualRate":   numberProp("annual interest rate percent"),
			"tenureMonths": numberProp("tenure in months"),
		}, "principal", "annualRate", "tenureMonths"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.ComputeTotalCost(
			floatArg(args, "principal"),
			floatArg(args, "annualRate"),
			intArg(args, "tenureMonths"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolAmortizationSchedule,
		Description: "Produce the month-by-month repayment schedule",
		Parameters: objectSchema(map[string]validation.Property{
			"principal":    numberProp("loan principal"),
			"annualRate":   numberProp("annual interest rate percent"),
			"tenureMonths": numberProp("tenure in months"),
		}, "principal", "annualRate", "tenureMonths"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		schedule := finance.Amortize(
			floatArg(args, "principal"),
			floatArg(args, "annualRate"),
			intArg(args, "tenureMonths"),
		)
		head, tail := finance.ScheduleWindow(schedule, 12)
		return map[string]interface{}{
			"months": len(schedule),
			"head":   head,
			"tail":   tail,
		}, nil
	})

	r.Register(ToolSchema{
		Name:        ToolCalculateFOIR,
		Description: "Compute fixed obligation to income ratios",
		Parameters: objectSchema(map[string]validation.Property{
			"monthlyIncome":    numberProp("gross monthly income"),
			"existingEmis":     numberProp("existing monthly EMIs"),
			"proposedEmi":      numberProp("EMI of the proposed loan"),
			"otherObligations": numberProp("other fixed monthly obligations"),
		}, "monthlyIncome", "proposedEmi"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.FOIR(
			floatArg(args, "monthlyIncome"),
			floatArg(args, "existingEmis"),
			floatArg(args, "proposedEmi"),
			floatArg(args, "otherObligations"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolCalculateLTV,
		Description: "Compute loan-to-value against the policy ceiling",
		Parameters: objectSchema(map[string]validation.Property{
			"propertyValue": numberProp("assessed property value"),
			"loanAmount":    numberProp("requested loan amount"),
			"propertyType":  stringProp("property type"),
		}, "propertyValue", "loanAmount", "propertyType"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.LTV(
			floatArg(args, "propertyValue"),
			floatArg(args, "loanAmount"),
			stringArg(args, "propertyType"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolPropertyValuation,
		Description: "Estimate market and forced-sale value of a property",
		Parameters: objectSchema(map[string]validation.Property{
			"propertyType": stringProp("property type"),
			"locationTier": stringProp("location tier"),
			"areaSqft":     numberProp("built-up area in sqft"),
			"ageYears":     numberProp("property age in years"),
			"qualityGrade": stringProp("construction quality grade"),
		}, "propertyType", "locationTier", "areaSqft"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.PropertyValue(
			stringArg(args, "propertyType"),
			stringArg(args, "locationTier"),
			floatArg(args, "areaSqft"),
			intArg(args, "ageYears"),
			stringArg(args, "qualityGrade"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolBorrowingCapacity,
		Description: "Size the maximum serviceable loan for an applicant",
		Parameters: objectSchema(map[string]validation.Property{
			"monthlyIncome": numberProp("gross monthly income"),
			"existingEmis":  numberProp("existing monthly EMIs"),
			"age":           numberProp("applicant age"),
			"productType":   stringProp("loan product"),
			"annualRate":    numberProp("annual interest rate percent"),
		}, "monthlyIncome", "age"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		rate := floatArg(args, "annualRate")
		if rate == 0 {
			rate = policy.BaseRatePercent
		}
		return finance.BorrowingCapacity(
			floatArg(args, "monthlyIncome"),
			floatArg(args, "existingEmis"),
			intArg(args, "age"),
			stringArg(args, "productType"),
			rate,
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolCreditRiskScore,
		Description: "Score credit risk from bureau facts",
		Parameters: objectSchema(map[string]validation.Property{
			"creditScore":         numberProp("bureau credit score"),
			"paymentHistoryScore": numberProp("payment history score 0-100"),
			"utilizationPercent":  numberProp("credit utilization percent"),
			"historyYears":        numberProp("years of credit history"),
			"recentInquiries":     numberProp("inquiries in recent months"),
		}, "creditScore"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.CreditRiskScore(
			intArg(args, "creditScore"),
			floatArg(args, "paymentHistoryScore"),
			floatArg(args, "utilizationPercent"),
			floatArg(args, "historyYears"),
			intArg(args, "recentInquiries"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolCollateralRiskScore,
		Description: "Score collateral risk for a property",
		Parameters: objectSchema(map[string]validation.Property{
			"propertyType": stringProp("property type"),
			"locationTier": stringProp("location tier"),
			"ageYears":     numberProp("property age in years"),
			"legalStatus":  stringProp("legal title status"),
		}, "propertyType", "locationTier"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.CollateralRiskScore(
			stringArg(args, "propertyType"),
			stringArg(args, "locationTier"),
			intArg(args, "ageYears"),
			stringArg(args, "legalStatus"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolCombinedRiskScore,
		Description: "Blend credit, collateral, income and documentation risk",
		Parameters: objectSchema(map[string]validation.Property{
			"creditRisk":      numberProp("credit risk score, lower is better"),
			"collateralRisk":  numberProp("collateral risk score, lower is better"),
			"incomeStability": numberProp("income stability score, higher is better"),
			"documentation":   numberProp("documentation score, higher is better"),
		}, "creditRisk", "collateralRisk", "incomeStability", "documentation"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return finance.CombinedRiskScore(
			floatArg(args, "creditRisk"),
			floatArg(args, "collateralRisk"),
			floatArg(args, "incomeStability"),
			floatArg(args, "documentation"),
		), nil
	})

	r.Register(ToolSchema{
		Name:        ToolListDocuments,
		Description: "List a customer's uploaded documents",
		Parameters: objectSchema(map[string]validation.Property{
			"customerId": stringProp("customer identifier"),
		}, "customerId"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		if store == nil {
			return nil, fmt.Errorf("document store not configured")
		}
		return store.ListDocuments(ctx, stringArg(args, "customerId"))
	})

	r.Register(ToolSchema{
		Name:        ToolCategorizeDocument,
		Description: "Infer the category of a document from its filename",
		Parameters: objectSchema(map[string]validation.Property{
			"filename": stringProp("document filename"),
		}, "filename"),
	}, func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return docstore.Categorize(stringArg(args, "filename")), nil
	})

	return r
}
