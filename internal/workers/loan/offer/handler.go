package offer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/finance"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType  = "loan-offer-generation"
	StageName = "OFFER_GENERATION"
	StageNum  = 6
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
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
		h.failJob(client, job, "OFFER_GENERATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if !input.Decision.IsPositive() {
		return &Output{
			ApplicationID: input.ApplicationID,
			Generated:     false,
			Remarks:       fmt.Sprintf("No offer for a %s decision.", input.Decision.Outcome),
		}, nil
	}

	if input.Terms == nil {
		return nil, fmt.Errorf("positive decision without loan terms")
	}

	terms := *input.Terms
	schedule := finance.Amortize(terms.ApprovedAmount, terms.InterestRate, terms.TenureMonths)
	head, tail := finance.ScheduleWindow(schedule, h.config.SchedulePeek)

	issued := h.now().UTC()
	offer := &LoanOffer{
		OfferID:       "OF-" + uuid.NewString(),
		ApplicationID: input.ApplicationID,
		CustomerName:  input.CustomerName,
		ProductType:   input.ProductType,
		Terms:         terms,
		TotalCost:     finance.ComputeTotalCost(terms.ApprovedAmount, terms.InterestRate, terms.TenureMonths),
		ScheduleHead:  head,
		ScheduleTail:  tail,
		Conditions:    input.Decision.Conditions,
		IssuedAt:      issued,
		ValidUntil:    issued.AddDate(0, 0, h.config.ValidityDays),
	}

	h.logger.Info("offer generated", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"offerId":        offer.OfferID,
		"approvedAmount": terms.ApprovedAmount,
		"emi":            terms.EMI,
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Generated:     true,
		Offer:         offer,
		Remarks: fmt.Sprintf("Offer of %.0f at %.2f%% over %d months, valid until %s.",
			terms.ApprovedAmount, terms.InterestRate, terms.TenureMonths, offer.ValidUntil.Format("2006-01-02")),
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
