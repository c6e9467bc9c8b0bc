package verifydocs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/docstore"
	"loan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "loan-verify-documents"
	StageName = "DOC_VERIFICATION"
	StageNum  = 2
)

type Handler struct {
	config *Config
	store  docstore.Store
	logger logger.Logger
}

func NewHandler(config *Config, store docstore.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
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
		h.failJob(client, job, "DOC_VERIFICATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("customerId is required")
	}

	// Without a document store the stage cannot verify anything; it defers
	// with a PENDING verdict instead of failing the application.
	if h.store == nil {
		return &Output{
			ApplicationID: input.ApplicationID,
			Verdict:       models.VerdictPending,
			Remarks:       "No document store configured; verification deferred.",
		}, nil
	}

	docs, err := h.store.ListDocuments(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	byCategory := map[models.DocumentCategory][]string{}
	for _, d := range docs {
		byCategory[d.Category] = append(byCategory[d.Category], d.Name)
	}

	identity := h.checkIdentity(byCategory[models.CategoryIdentity])
	income := h.checkPresence("INCOME", byCategory[models.CategoryIncome], "income proof")
	address := h.checkPresence("ADDRESS", h.addressEvidence(byCategory), "address proof")
	banking := h.checkPresence("BANKING", byCategory[models.CategoryBanking], "bank statement")
	credit := h.checkPresence("CREDIT", byCategory[models.CategoryCredit], "credit report")

	checks := []CategoryCheck{identity, income, address, banking, credit}

	verified := 0
	for _, c := range checks {
		if c.Verified {
			verified++
		}
	}
	score := float64(verified) / float64(len(checks)) * 100

	// The verification verdict hinges on the three mandatory categories;
	// banking and credit evidence only move the documentation score.
	verdict := models.VerdictFail
	if identity.Verified && income.Verified && address.Verified {
		verdict = models.VerdictPass
	}

	remarks := fmt.Sprintf("%d of %d document categories verified.", verified, len(checks))

	h.logger.Info("documents verified", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"documents":     len(docs),
		"verdict":       verdict,
		"score":         score,
	})

	return &Output{
		ApplicationID:      input.ApplicationID,
		Verdict:            verdict,
		Documents:          docs,
		CategoryChecks:     checks,
		DocumentationScore: score,
		Remarks:            remarks,
	}, nil
}

// checkIdentity requires both an Aadhaar and a PAN document.
func (h *Handler) checkIdentity(found []string) CategoryCheck {
	hasAadhaar, hasPAN := false, false
	for _, name := range found {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "aadhaar") || strings.Contains(lower, "adhaar") {
			hasAadhaar = true
		}
		if strings.Contains(lower, "pan") {
			hasPAN = true
		}
	}

	missing := []string{}
	if !hasAadhaar {
		missing = append(missing, "aadhaar")
	}
	if !hasPAN {
		missing = append(missing, "pan")
	}

	return CategoryCheck{
		Category: "IDENTITY",
		Verified: hasAadhaar && hasPAN,
		Found:    found,
		Missing:  missing,
	}
}

func (h *Handler) checkPresence(category string, found []string, requirement string) CategoryCheck {
	check := CategoryCheck{
		Category: category,
		Verified: len(found) > 0,
		Found:    found,
	}
	if !check.Verified {
		check.Missing = []string{requirement}
	}
	return check
}

// addressEvidence accepts dedicated address documents or an Aadhaar, which
// doubles as address proof.
func (h *Handler) addressEvidence(byCategory map[models.DocumentCategory][]string) []string {
	evidence := append([]string{}, byCategory[models.CategoryAddress]...)
	for _, name := range byCategory[models.CategoryIdentity] {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "aadhaar") || strings.Contains(lower, "adhaar") {
			evidence = append(evidence, name)
		}
	}
	return evidence
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
