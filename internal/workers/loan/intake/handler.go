package intake

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/validation"
	"loan-workers/internal/models"
	"loan-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType  = "loan-intake"
	StageName = "INTAKE"
	StageNum  = 1
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

// NewHandler builds the intake stage. A nil db disables record persistence;
// the application still travels through the process variables.
func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		h.failJob(client, job, "INTAKE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, fmt.Errorf("customerName is required")
	}
	if input.LoanAmount <= 0 {
		return nil, fmt.Errorf("loanAmount must be positive")
	}
	if input.TenureYears <= 0 {
		return nil, fmt.Errorf("tenureYears must be positive")
	}
	if input.Email != "" && !validation.ValidateEmail(input.Email) {
		return nil, fmt.Errorf("email is malformed")
	}
	if input.Contact != "" && !validation.ValidatePhone(input.Contact) {
		return nil, fmt.Errorf("contact number is malformed")
	}

	checks := h.basicEligibility(input)

	verdict := models.VerdictPass
	failed := []string{}
	for _, c := range checks {
		if !c.Passed {
			verdict = models.VerdictFail
			failed = append(failed, c.Name)
		}
	}

	remarks := "Application accepted for processing."
	if verdict == models.VerdictFail {
		remarks = fmt.Sprintf("Basic eligibility failed: %s.", strings.Join(failed, ", "))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	app := models.Application{
		ID:           "LN-" + uuid.NewString(),
		CustomerName: input.CustomerName,
		LoanAmount:   input.LoanAmount,
		Purpose:      input.Purpose,
		ProductType:  input.ProductType,
		TenureYears:  input.TenureYears,
		Contact:      input.Contact,
		Email:        input.Email,
		Customer:     input.Customer,
		Collateral:   input.Collateral,
		SubmittedAt:  now,
		CurrentStage: StageName,
	}

	if h.db != nil {
		if err := h.recordApplication(ctx, &app, verdict); err != nil {
			return nil, err
		}
	}

	h.logger.Info("intake assessed", map[string]interface{}{
		"applicationId": app.ID,
		"verdict":       verdict,
		"failedChecks":  len(failed),
	})

	return &Output{
		ApplicationID: app.ID,
		Application:   app,
		Verdict:       verdict,
		Checks:        checks,
		Remarks:       remarks,
	}, nil
}

// basicEligibility runs the quick pre-screen before any document or bureau
// work is spent on the application.
func (h *Handler) basicEligibility(input *Input) []EligibilityCheck {
	cust := input.Customer
	checks := []EligibilityCheck{}

	ageOK := cust.Age >= policy.MinAge && cust.Age <= policy.MaxAge
	checks = append(checks, EligibilityCheck{
		Name:   "age_range",
		Passed: ageOK,
		Detail: fmt.Sprintf("age %d, allowed %d-%d", cust.Age, policy.MinAge, policy.MaxAge),
	})

	// Rough EMI estimate with a 10% cushion, measured against disposable
	// income; a real quote comes later from the calculators.
	months := float64(input.TenureYears * 12)
	estimatedEMI := input.LoanAmount / months * 1.1
	disposable := cust.MonthlyIncome - cust.ExistingEMIs
	affordable := disposable > 0 && estimatedEMI/disposable < 0.5
	checks = append(checks, EligibilityCheck{
		Name:   "estimated_affordability",
		Passed: affordable,
		Detail: fmt.Sprintf("estimated EMI %.0f vs disposable income %.0f", estimatedEMI, disposable),
	})

	maturityOK := cust.Age+input.TenureYears <= policy.MaxAgeAtMaturity
	checks = append(checks, EligibilityCheck{
		Name:   "age_at_maturity",
		Passed: maturityOK,
		Detail: fmt.Sprintf("age at maturity %d, max %d", cust.Age+input.TenureYears, policy.MaxAgeAtMaturity),
	})

	return checks
}

// recordApplication persists the application row and its intake audit entry.
// The audit entry is non-critical; only the application insert can fail the
// stage.
func (h *Handler) recordApplication(ctx context.Context, app *models.Application, verdict string) error {
	applicationJSON, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application record: %w", err)
	}

	status := "submitted"
	if verdict == models.VerdictFail {
		status = "rejected"
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, customer_name, product_type, loan_amount,
			application_data, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		app.ID,
		app.CustomerName,
		app.ProductType,
		app.LoanAmount,
		applicationJSON,
		status,
		app.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application record: %w", err)
	}

	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"customerName": app.CustomerName,
		"productType":  app.ProductType,
		"loanAmount":   app.LoanAmount,
		"verdict":      verdict,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_received",
		"application",
		app.ID,
		auditDetailsJSON,
		app.SubmittedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	return nil
}

// EnsureSchema creates the intake tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS applications (
			id               TEXT PRIMARY KEY,
			customer_name    TEXT NOT NULL,
			product_type     TEXT NOT NULL,
			loan_amount      NUMERIC NOT NULL,
			application_data JSONB NOT NULL,
			status           TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return fmt.Errorf("create applications table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			id            BIGSERIAL PRIMARY KEY,
			event_type    TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id   TEXT NOT NULL,
			details       JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return fmt.Errorf("create audit_log table: %w", err)
	}
	return nil
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
