package communication

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-communication"
	StageName = "COMMUNICATION"
	StageNum  = 7
)

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	errs   *errors.ErrorHandler
	logger logger.Logger
}

// NewHandler builds the communication stage. Either sender may be nil, which
// disables that channel.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	fieldLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
		errs:   errors.NewErrorHandler(fieldLog),
		logger: fieldLog,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errs.HandleJobError(context.Background(), client, job, errors.NewInputInvalidError("variables", fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// A delivery failure retries on the broker; exhausted retries become
		// a BPMN error a manual-notification path can catch.
		h.errs.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	subject, body := h.compose(input)

	var records []NotificationRecord
	delivered := 0

	if h.email != nil && input.Email != "" {
		rec := NotificationRecord{Channel: "EMAIL", Recipient: input.Email}
		if id, err := h.email.SendEmail(ctx, input.Email, subject, body); err != nil {
			rec.Status = "FAILED"
			rec.Error = err.Error()
			h.logger.WithError(err).Warn("email delivery failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
		} else {
			rec.Status = "SENT"
			rec.MessageID = id
			delivered++
		}
		records = append(records, rec)
	}

	if h.sms != nil && input.Contact != "" {
		rec := NotificationRecord{Channel: "SMS", Recipient: input.Contact}
		if id, err := h.sms.SendSMS(ctx, input.Contact, h.composeSMS(input)); err != nil {
			rec.Status = "FAILED"
			rec.Error = err.Error()
			h.logger.WithError(err).Warn("sms delivery failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
			})
		} else {
			rec.Status = "SENT"
			rec.MessageID = id
			delivered++
		}
		records = append(records, rec)
	}

	if len(records) > 0 && delivered == 0 {
		return nil, errors.NewNotificationSendFailedError("all", fmt.Errorf("no channel delivered for %s", input.ApplicationID))
	}

	h.logger.Info("notifications dispatched", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"attempted":     len(records),
		"delivered":     delivered,
	})

	return &Output{
		ApplicationID: input.ApplicationID,
		Notifications: records,
		Delivered:     delivered,
		Remarks:       fmt.Sprintf("%d of %d notification(s) delivered.", delivered, len(records)),
	}, nil
}

func (h *Handler) compose(input *Input) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", input.CustomerName)

	switch input.Decision.Outcome {
	case models.DecisionApproved, models.DecisionApprovedCond:
		fmt.Fprintf(&b, "Congratulations! Your loan application %s has been approved.\n", input.ApplicationID)
		if s := input.OfferSummary; s != nil {
			fmt.Fprintf(&b, "\nSanctioned amount: %.0f\nInterest rate: %.2f%% p.a.\nTenure: %d months\nMonthly EMI: %.0f\n", s.ApprovedAmount, s.InterestRate, s.TenureMonths, s.EMI)
			if s.ValidUntil != "" {
				fmt.Fprintf(&b, "The offer is valid until %s.\n", s.ValidUntil)
			}
		}
		for _, c := range input.Decision.Conditions {
			fmt.Fprintf(&b, "Condition: %s\n", c)
		}
		subject = fmt.Sprintf("Loan application %s approved", input.ApplicationID)

	case models.DecisionReferred:
		fmt.Fprintf(&b, "Your loan application %s is under manual review. Our credit team will contact you shortly.\n", input.ApplicationID)
		subject = fmt.Sprintf("Loan application %s under review", input.ApplicationID)

	default:
		fmt.Fprintf(&b, "We regret to inform you that your loan application %s could not be approved at this time.\n", input.ApplicationID)
		fmt.Fprintf(&b, "Reason: %s\n", input.Decision.Rationale)
		subject = fmt.Sprintf("Update on loan application %s", input.ApplicationID)
	}

	b.WriteString("\nRegards,\nLoan Processing Team\n")
	return subject, b.String()
}

func (h *Handler) composeSMS(input *Input) string {
	switch input.Decision.Outcome {
	case models.DecisionApproved, models.DecisionApprovedCond:
		if s := input.OfferSummary; s != nil {
			return fmt.Sprintf("Loan %s approved: %.0f at %.2f%%, EMI %.0f. Check your email for the offer.",
				input.ApplicationID, s.ApprovedAmount, s.InterestRate, s.EMI)
		}
		return fmt.Sprintf("Loan %s approved. Check your email for the offer.", input.ApplicationID)
	case models.DecisionReferred:
		return fmt.Sprintf("Loan %s is under manual review. We will contact you shortly.", input.ApplicationID)
	default:
		return fmt.Sprintf("Loan %s could not be approved. Check your email for details.", input.ApplicationID)
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

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
