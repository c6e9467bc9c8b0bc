package underwriting

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-underwriting"
	StageName = "UNDERWRITING"
	StageNum  = 5

	referralScoreFloor    = 50.0
	minDocumentationScore = 60.0
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "UNDERWRITING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Qualification.Outcome == models.QualificationNotQualified {
		return &Output{
			ApplicationID: input.ApplicationID,
			Decision: models.Decision{
				Outcome:   models.DecisionNotQualified,
				Rationale: "Applicant did not meet the qualification criteria.",
			},
			Remarks: "Underwriting skipped detailed assessment for a non-qualified applicant.",
		}, nil
	}

	combined := finance.CombinedRiskScore(
		input.Credit.CreditRisk.RiskScore,
		input.Asset.CollateralRisk.RiskScore,
		input.Credit.IncomeStability.Score,
		input.DocumentationScore,
	)

	compliance := policy.CheckCompliance(policy.ComplianceInput{
		LTVPercent:  input.Asset.LTV.ActualLTV,
		CreditScore: input.Customer.CreditScore,
		FOIRPercent: input.Qualification.FOIR.ProposedFOIR,
		Age:         input.Customer.Age,
		LoanAmount:  input.LoanAmount,
	})
	violations := policy.Violations(compliance)
	compliant := violations == 0

	allPassed := input.Qualification.Outcome == models.QualificationQualified &&
		input.Credit.Verdict == models.VerdictPass &&
		input.Asset.Verdict == models.VerdictPass &&
		input.DocumentationScore >= minDocumentationScore

	decision := h.decide(input, combined, compliance, violations, allPassed, compliant)

	output := &Output{
		ApplicationID: input.ApplicationID,
		Decision:      decision,
		CombinedRisk:  combined,
		Compliance:    compliance,
		Violations:    violations,
		Remarks: fmt.Sprintf("Combined risk %s (%.1f), %d policy violation(s).",
			combined.Category, combined.CombinedScore, violations),
	}

	if decision.IsPositive() {
		output.Terms = h.deriveTerms(input, combined)
	}

	h.logger.Info("underwriting decided", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"outcome":       string(decision.Outcome),
		"combinedScore": combined.CombinedScore,
		"violations":    violations,
	})

	return output, nil
}

func (h *Handler) decide(input *Input, combined finance.CombinedRiskResult, compliance []policy.ComplianceCheck, violations int, allPassed, compliant bool) models.Decision {
	lowRisk := combined.Category == "LOW" || combined.Category == "MEDIUM"

	switch {
	case allPassed && compliant && lowRisk:
		return models.Decision{
			Outcome:   models.DecisionApproved,
			Rationale: fmt.Sprintf("All stages passed with %s combined risk and full policy compliance.", combined.Category),
			Authority: policy.ApprovalAuthority(0),
		}

	// A conditional approval tolerates at most one policy breach; more than
	// one breach goes to manual review even when every stage passed.
	case allPassed && violations <= 1:
		var conditions []string
		for _, c := range compliance {
			if !c.Compliant {
				conditions = append(conditions, fmt.Sprintf("Resolve policy breach: %s at %.1f (limit %.1f).", c.Name, c.Observed, c.Limit))
			}
		}
		if !lowRisk {
			conditions = append(conditions, fmt.Sprintf("Mitigate %s combined risk before disbursal.", combined.Category))
		}
		return models.Decision{
			Outcome:    models.DecisionApprovedCond,
			Rationale:  "Assessments passed but approval is subject to conditions.",
			Conditions: conditions,
			Authority:  policy.ApprovalAuthority(violations),
		}

	case combined.CombinedScore >= referralScoreFloor:
		return models.Decision{
			Outcome:   models.DecisionReferred,
			Rationale: fmt.Sprintf("Mixed assessment results at combined score %.1f require manual review.", combined.CombinedScore),
			Authority: "Credit Committee",
		}

	default:
		return models.Decision{
			Outcome:   models.DecisionDeclined,
			Rationale: fmt.Sprintf("Combined score %.1f with failed assessments is below the referral floor.", combined.CombinedScore),
		}
	}
}

func (h *Handler) deriveTerms(input *Input, combined finance.CombinedRiskResult) *models.LoanTerms {
	product := policy.ProductFor(input.ProductType)

	maxTenureYears := product.MaxAgeAtMaturity - input.Customer.Age
	if maxTenureYears > policy.MaxTenureYears {
		maxTenureYears = policy.MaxTenureYears
	}
	tenureYears := input.TenureYears
	if tenureYears > maxTenureYears {
		tenureYears = maxTenureYears
	}
	tenureMonths := tenureYears * 12

	// Pricing keys on the worse of the blended position and the credit
	// branch alone, so a weak bureau profile moves the rate even when the
	// collateral keeps the combined category low.
	pricingCategory := policy.WorseRiskCategory(combined.Category, input.Credit.CreditRisk.Category)
	rate := policy.BaseRatePercent + policy.RateSpread(pricingCategory)

	approved := input.LoanAmount
	if input.Asset.LTV.MaxLoanAtMaxLTV > 0 {
		approved = math.Min(approved, input.Asset.LTV.MaxLoanAtMaxLTV)
	}
	if headroom := finance.MaxPrincipalForEMI(input.Qualification.FOIR.AvailableForNewEMI, rate, tenureMonths); headroom > 0 {
		approved = math.Min(approved, headroom)
	}

	emi := finance.EMI(approved, rate, tenureMonths)
	fees := finance.FeeStructure(approved, policy.ProcessingFeePercent, policy.DocumentationCharges)

	return &models.LoanTerms{
		ApprovedAmount:       finance.RoundCurrency(approved),
		InterestRate:         rate,
		TenureMonths:         tenureMonths,
		EMI:                  finance.RoundCurrency(emi),
		ProcessingFee:        fees.ProcessingFee,
		DocumentationCharges: fees.DocumentationCharges,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, message string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"errorCode": errorCode,
		"error":     message,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(message).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
