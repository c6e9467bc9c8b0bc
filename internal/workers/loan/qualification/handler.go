package qualification

import (
	"context"
	"encoding/json"
	"fmt"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/finance"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-qualification"
	StageName = "QUALIFICATION"
	StageNum  = 3

	totalChecks          = 5
	conditionalThreshold = 3
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
		h.failJob(client, job, "QUALIFICATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.LoanAmount <= 0 || input.TenureYears <= 0 {
		return nil, fmt.Errorf("loanAmount and tenureYears must be positive")
	}

	cust := input.Customer
	product := policy.ProductFor(input.ProductType)

	proposedEMI := finance.EMI(input.LoanAmount, policy.BaseRatePercent, input.TenureYears*12)
	foir := finance.FOIR(cust.MonthlyIncome, cust.ExistingEMIs, proposedEMI, cust.OtherObligations)
	capacity := finance.BorrowingCapacity(cust.MonthlyIncome, cust.ExistingEMIs, cust.Age, input.ProductType, policy.BaseRatePercent)

	checks := []Check{
		{
			Name:   "age_for_product",
			Passed: cust.Age >= product.MinAge && cust.Age <= product.MaxAge,
			Detail: fmt.Sprintf("age %d, %s allows %d-%d", cust.Age, product.Name, product.MinAge, product.MaxAge),
		},
		{
			Name:   "minimum_income",
			Passed: cust.MonthlyIncome >= product.MinMonthlyIncome,
			Detail: fmt.Sprintf("income %.0f, minimum %.0f", cust.MonthlyIncome, product.MinMonthlyIncome),
		},
		{
			Name:   "foir_within_ceiling",
			Passed: foir.Status == "PASS",
			Detail: fmt.Sprintf("proposed FOIR %.1f%%, ceiling %.0f%%", foir.ProposedFOIR, foir.MaxFOIR),
		},
		{
			Name:   "credit_report_available",
			Passed: cust.CreditScore > 0,
			Detail: fmt.Sprintf("credit score %d", cust.CreditScore),
		},
		{
			Name:   "positive_borrowing_capacity",
			Passed: capacity.Status == "PASS",
			Detail: fmt.Sprintf("available EMI %.0f, capacity %.0f", capacity.AvailableEMI, capacity.MaxLoanAmount),
		},
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	var outcome string
	switch {
	case passed == totalChecks:
		outcome = models.QualificationQualified
	case passed >= conditionalThreshold:
		outcome = models.QualificationConditional
	default:
		outcome = models.QualificationNotQualified
	}

	h.logger.Info("qualification assessed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"outcome":       outcome,
		"passedChecks":  passed,
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Outcome:       outcome,
		Checks:        checks,
		PassedChecks:  passed,
		ProposedEMI:   finance.RoundCurrency(proposedEMI),
		FOIR:          foir,
		Capacity:      capacity,
		Remarks:       fmt.Sprintf("%d of %d qualification checks passed.", passed, totalChecks),
	}, nil
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
