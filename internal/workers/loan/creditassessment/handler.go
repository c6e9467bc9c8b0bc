package creditassessment

import (
	"context"
	"encoding/json"
	"fmt"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/finance"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-credit-assessment"
	StageName = "CREDIT_ASSESSMENT"
	StageNum  = 4
)

type Handler struct {
	config   *Config
	provider ReportProvider
	logger   logger.Logger
}

func NewHandler(config *Config, provider ReportProvider, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "CREDIT_ASSESSMENT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	cust := input.Customer

	if cust.CreditScore <= 0 {
		return &Output{
			ApplicationID: input.ApplicationID,
			Verdict:       models.VerdictFail,
			Remarks:       "No credit report available for applicant.",
		}, nil
	}

	report, err := h.provider.FetchReport(ctx, input.ApplicationID, cust)
	if err != nil {
		return nil, fmt.Errorf("fetch credit report: %w", err)
	}

	debt := finance.ComputeDebtMetrics(report.OutstandingDebt, report.CreditLimit, cust.MonthlyIncome)
	credit := finance.CreditRiskScore(
		cust.CreditScore,
		report.PaymentHistoryScore,
		debt.UtilizationPercent,
		cust.CreditHistoryYears,
		cust.RecentInquiries,
	)
	stability := finance.IncomeStability(cust.EmploymentYears, cust.EmployerType)
	rating, riskLevel := finance.CreditScoreRating(cust.CreditScore)

	verdict := models.VerdictFail
	if credit.Category == "LOW" || credit.Category == "MEDIUM" {
		verdict = models.VerdictPass
	}

	h.logger.Info("credit assessed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"verdict":       verdict,
		"riskCategory":  credit.Category,
		"riskScore":     credit.RiskScore,
	})

	return &Output{
		ApplicationID:   input.ApplicationID,
		Verdict:         verdict,
		ScoreRating:     rating,
		ScoreRiskLevel:  riskLevel,
		CreditRisk:      credit,
		IncomeStability: stability,
		DebtMetrics:     debt,
		Report:          report,
		Remarks: fmt.Sprintf("Credit risk %s (score %.1f), bureau rating %s.",
			credit.Category, credit.RiskScore, rating),
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
		Retries(1).
		ErrorMessage(message).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
