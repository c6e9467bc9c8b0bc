package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-audit"
	StageName = "AUDIT"
	StageNum  = 8
)

type Handler struct {
	config  *Config
	indexer Indexer
	logger  logger.Logger
	now     func() time.Time
}

// NewHandler builds the audit stage. A nil indexer disables persistence to
// the search store; the report is still assembled and returned.
func NewHandler(config *Config, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:     time.Now,
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
		h.failJob(client, job, "AUDIT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	app := input.Application

	verdicts := make(map[string]string, len(app.StageResults))
	for _, sr := range app.StageResults {
		verdicts[sr.Stage] = sr.Verdict
	}

	stageAudits := auditStages(app.StageResults)
	compliance := checkCompliance(input, verdicts)

	report := &Report{
		ApplicationID:     app.ID,
		CustomerName:      app.CustomerName,
		ProductType:       app.ProductType,
		RequestedAmount:   app.LoanAmount,
		Outcome:           string(input.Decision.Outcome),
		Decision:          input.Decision,
		Terms:             input.Terms,
		Stages:            app.StageResults,
		StageVerdicts:     verdicts,
		StageAudits:       stageAudits,
		Compliance:        compliance,
		ConversationTurns: len(app.ConversationLog),
		SubmittedAt:       app.SubmittedAt,
		CompletedAt:       h.now().UTC(),
	}

	indexed := false
	remarks := fmt.Sprintf("Audit trail assembled across %d stage(s).", len(report.Stages))
	if h.indexer != nil {
		if err := h.indexer.IndexReport(ctx, app.ID, report); err != nil {
			// The trail must survive an index outage; the report still
			// travels with the process variables.
			h.logger.WithError(err).Warn("audit index failed", map[string]interface{}{
				"applicationId": app.ID,
				"index":         h.config.Index,
			})
			remarks = fmt.Sprintf("Audit trail assembled; indexing failed: %v", err)
		} else {
			indexed = true
		}
	}

	h.logger.Info("audit recorded", map[string]interface{}{
		"applicationId": app.ID,
		"outcome":       report.Outcome,
		"stages":        len(report.Stages),
		"compliance":    compliance.Overall,
		"indexed":       indexed,
	})

	return &Output{
		ApplicationID: app.ID,
		Report:        report,
		Indexed:       indexed,
		Remarks:       remarks,
	}, nil
}

// auditStages reviews every recorded stage against its checkpoints. A stage
// that errored or failed is flagged rather than hidden behind the terminal
// decision.
func auditStages(stages []models.StageResult) []StageAudit {
	audits := make([]StageAudit, 0, len(stages))
	for _, sr := range stages {
		completed := Checkpoint{Name: "stage_completed", Status: "PASS",
			Detail: fmt.Sprintf("stage finished with verdict %s", sr.Verdict)}
		if sr.Verdict == models.VerdictError {
			completed.Status = "FAIL"
			completed.Detail = "stage raised an error and produced no result"
		}

		recorded := Checkpoint{Name: "outcome_recorded", Status: "PASS"}
		if sr.Remarks == "" {
			recorded.Status = "WARN"
			recorded.Detail = "no remarks recorded for the stage"
		}

		stamped := Checkpoint{Name: "timestamp_present", Status: "PASS"}
		if sr.Timestamp == "" {
			stamped.Status = "FAIL"
			stamped.Detail = "stage result carries no timestamp"
		}

		result := "PASS"
		switch sr.Verdict {
		case models.VerdictError:
			result = "FAIL"
		case models.VerdictFail, models.VerdictPending:
			result = "WARN"
		}

		audits = append(audits, StageAudit{
			Stage:       sr.Stage,
			StageNum:    sr.StageNum,
			Result:      result,
			Checkpoints: []Checkpoint{completed, recorded, stamped},
		})
	}
	return audits
}

// checkCompliance runs the regulatory checklist: KYC identity evidence,
// fair-practice disclosures, rate disclosure within the policy band, and
// completeness of the audit trail itself.
func checkCompliance(input *Input, verdicts map[string]string) ComplianceChecklist {
	app := input.Application

	kyc := ComplianceArea{Area: "KYC_AML"}
	switch verdicts["DOC_VERIFICATION"] {
	case models.VerdictPass:
		kyc.Checks = append(kyc.Checks,
			Checkpoint{Name: "identity_verification", Status: "PASS", Detail: "PAN and Aadhaar evidence verified"},
			Checkpoint{Name: "address_verification", Status: "PASS", Detail: "address proof verified"})
	case models.VerdictPending:
		kyc.Checks = append(kyc.Checks,
			Checkpoint{Name: "identity_verification", Status: "WARN", Detail: "document verification deferred"})
	default:
		kyc.Checks = append(kyc.Checks,
			Checkpoint{Name: "identity_verification", Status: "FAIL", Detail: "identity documents not verified"})
	}

	fair := ComplianceArea{Area: "FAIR_PRACTICES"}
	rationale := Checkpoint{Name: "decision_rationale_recorded", Status: "PASS"}
	if input.Decision.Rationale == "" {
		rationale.Status = "FAIL"
		rationale.Detail = "decision carries no rationale"
	}
	fair.Checks = append(fair.Checks, rationale)
	if input.Decision.Outcome == models.DecisionApprovedCond {
		disclosed := Checkpoint{Name: "conditions_disclosed", Status: "PASS"}
		if len(input.Decision.Conditions) == 0 {
			disclosed.Status = "FAIL"
			disclosed.Detail = "conditional approval without stated conditions"
		}
		fair.Checks = append(fair.Checks, disclosed)
	}

	pricing := ComplianceArea{Area: "RATE_DISCLOSURE"}
	if input.Decision.IsPositive() {
		disclosed := Checkpoint{Name: "interest_rate_disclosed", Status: "PASS"}
		if input.Terms == nil || input.Terms.InterestRate <= 0 {
			disclosed.Status = "FAIL"
			disclosed.Detail = "approved application without a disclosed rate"
		} else {
			ceiling := policy.BaseRatePercent + policy.RateSpread("VERY_HIGH")
			disclosed.Detail = fmt.Sprintf("rate %.2f%% within policy band %.2f-%.2f%%",
				input.Terms.InterestRate, policy.BaseRatePercent, ceiling)
			if input.Terms.InterestRate < policy.BaseRatePercent || input.Terms.InterestRate > ceiling {
				disclosed.Status = "FAIL"
				disclosed.Detail = fmt.Sprintf("rate %.2f%% outside policy band", input.Terms.InterestRate)
			}
		}
		pricing.Checks = append(pricing.Checks, disclosed)
	} else {
		pricing.Checks = append(pricing.Checks,
			Checkpoint{Name: "interest_rate_disclosed", Status: "PASS", Detail: "no terms issued for this outcome"})
	}

	trail := ComplianceArea{Area: "AUDIT_TRAIL"}
	stamped := Checkpoint{Name: "trail_complete", Status: "PASS",
		Detail: fmt.Sprintf("%d stage(s) recorded with timestamps", len(app.StageResults))}
	if len(app.StageResults) == 0 {
		stamped.Status = "FAIL"
		stamped.Detail = "no stage results recorded"
	} else {
		for _, sr := range app.StageResults {
			if sr.Timestamp == "" {
				stamped.Status = "FAIL"
				stamped.Detail = fmt.Sprintf("stage %s carries no timestamp", sr.Stage)
				break
			}
		}
	}
	trail.Checks = append(trail.Checks, stamped)

	checklist := ComplianceChecklist{Areas: []ComplianceArea{kyc, fair, pricing, trail}}
	for i := range checklist.Areas {
		area := &checklist.Areas[i]
		area.Status = "COMPLIANT"
		for _, c := range area.Checks {
			if c.Status == "FAIL" {
				area.Status = "NON_COMPLIANT"
				checklist.IssuesFound++
			} else if c.Status == "WARN" && area.Status == "COMPLIANT" {
				area.Status = "ATTENTION"
			}
		}
	}

	checklist.Overall = "FULLY_COMPLIANT"
	for _, area := range checklist.Areas {
		if area.Status == "NON_COMPLIANT" {
			checklist.Overall = "REVIEW_REQUIRED"
			break
		}
	}
	return checklist
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
