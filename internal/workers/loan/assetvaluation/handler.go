package assetvaluation

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
	TaskType  = "loan-asset-valuation"
	StageName = "ASSET_VALUATION"
	StageNum  = 4
)

type Handler struct {
	config   *Config
	provider PropertyDataProvider
	logger   logger.Logger
}

func NewHandler(config *Config, provider PropertyDataProvider, log logger.Logger) *Handler {
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
		h.failJob(client, job, "ASSET_VALUATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Collateral == nil {
		return &Output{
			ApplicationID: input.ApplicationID,
			Verdict:       models.VerdictFail,
			Remarks:       "No collateral declared for a secured product.",
		}, nil
	}

	col := input.Collateral

	record, err := h.provider.FetchRecord(ctx, input.ApplicationID, *col)
	if err != nil {
		return nil, fmt.Errorf("fetch property record: %w", err)
	}

	valuation := finance.PropertyValue(col.PropertyType, col.LocationTier, col.AreaSqft, col.AgeYears, col.QualityGrade)

	assessed := valuation.MarketValue
	remarks := fmt.Sprintf("Assessed at %.0f (%s confidence).", assessed, valuation.Confidence)
	if assessed <= 0 && col.DeclaredValue > 0 {
		// Without area data the model cannot price the asset; fall back to
		// the declared value at low confidence.
		assessed = col.DeclaredValue
		remarks = fmt.Sprintf("No area data; using declared value %.0f at LOW confidence.", assessed)
	}

	// Risk scoring uses the registry's legal status, not the declared one.
	ltv := finance.LTV(assessed, input.LoanAmount, col.PropertyType)
	risk := finance.CollateralRiskScore(col.PropertyType, col.LocationTier, col.AgeYears, record.LegalStatus)

	verdict := models.VerdictFail
	if ltv.Status == "WITHIN_LIMITS" && risk.Acceptable && record.TitleClear {
		verdict = models.VerdictPass
	}
	if !record.TitleClear {
		remarks = fmt.Sprintf("%s Encumbrance check: %s.", remarks, record.EncumbranceStatus)
	}

	h.logger.Info("asset valued", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"verdict":       verdict,
		"assessedValue": assessed,
		"ltv":           ltv.ActualLTV,
		"riskCategory":  risk.Category,
		"encumbrance":   record.EncumbranceStatus,
	})

	return &Output{
		ApplicationID:  input.ApplicationID,
		Verdict:        verdict,
		AssessedValue:  assessed,
		DeclaredValue:  col.DeclaredValue,
		Valuation:      valuation,
		LTV:            ltv,
		CollateralRisk: risk,
		Encumbrance:    record,
		Remarks:        remarks,
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
