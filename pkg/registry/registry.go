package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"loan-workers/internal/common/validation"
)

// LoadRegistry reads an activity registry from a JSON file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks every activity ID against the naming convention and
// rejects duplicate task types.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]string, len(r.Activities))
	for _, act := range r.Activities {
		if err := validation.ValidateActivityNaming(act.ID); err != nil {
			return fmt.Errorf("activity %q: %w", act.ID, err)
		}
		if act.TaskType == "" {
			return fmt.Errorf("activity %q: taskType is required", act.ID)
		}
		if prev, ok := seen[act.TaskType]; ok {
			return fmt.Errorf("task type %q claimed by both %q and %q", act.TaskType, prev, act.ID)
		}
		seen[act.TaskType] = act.ID
	}
	return nil
}

// FindByTaskType returns the activity registered for a task type, or nil.
func (r *ActivityRegistry) FindByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// BuiltIn returns the registry for the nine loan-processing stages. The
// worker manager uses it when no registry file is configured.
func BuiltIn() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01",
		Activities: []Activity{
			{
				ID:          "loan.application.intake",
				DisplayName: "Application Intake",
				Description: "Validates a raw loan application, assigns an application ID and runs basic eligibility checks.",
				Category:    "loan-processing",
				Version:     "1.0.0",
				TaskType:    "loan-intake",
				Stage:       1,
				ErrorCodes:  []string{"INPUT_INVALID"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"intake", "validation"},
			},
			{
				ID:          "loan.documents.verification",
				DisplayName: "Document Verification",
				Description: "Checks submitted documents against the product checklist and scores completeness.",
				Category:    "loan-processing",
				Version:     "1.0.0",
				TaskType:    "loan-verify-documents",
				Stage:       2,
				ErrorCodes:  []string{"DOCSTORE_UNAVAILABLE"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"documents"},
			},
			{
				ID:          "loan.application.qualification",
				DisplayName: "Qualification",
				Description: "Runs income, FOIR and borrowing-capacity checks against product rules.",
				Category:    "loan-processing",
				Version:     "1.0.0",
				TaskType:    "loan-qualification",
				Stage:       3,
				ErrorCodes:  []string{"INPUT_INVALID", "DEGENERATE_CASE"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"qualification", "finance"},
			},
			{
				ID:          "loan.assessment.credit",
				DisplayName: "Credit Assessment",
				Description: "Fetches a credit report and scores credit risk, income stability and debt metrics.",
				Category:    "loan-assessment",
				Version:     "1.0.0",
				TaskType:    "loan-credit-assessment",
				Stage:       4,
				ErrorCodes:  []string{"EXTERNAL_SERVICE_ERROR"},
				Timeout:     "30s",
				Retries:     1,
				Tags:        []string{"credit", "risk"},
			},
			{
				ID:          "loan.assessment.collateral",
				DisplayName: "Asset Valuation",
				Description: "Values declared collateral, computes LTV and scores collateral risk.",
				Category:    "loan-assessment",
				Version:     "1.0.0",
				TaskType:    "loan-asset-valuation",
				Stage:       4,
				ErrorCodes:  []string{"INPUT_INVALID"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"collateral", "risk"},
			},
			{
				ID:          "loan.decision.underwriting",
				DisplayName: "Underwriting",
				Description: "Combines stage verdicts with compliance checks into a decision and loan terms.",
				Category:    "loan-decision",
				Version:     "1.0.0",
				TaskType:    "loan-underwriting",
				Stage:       5,
				ErrorCodes:  []string{"INPUT_INVALID"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"underwriting", "decision"},
			},
			{
				ID:          "loan.decision.offer",
				DisplayName: "Offer Generation",
				Description: "Builds the formal offer letter with repayment schedule for positive decisions.",
				Category:    "loan-decision",
				Version:     "1.0.0",
				TaskType:    "loan-offer-generation",
				Stage:       6,
				ErrorCodes:  []string{"INPUT_INVALID"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"offer"},
			},
			{
				ID:          "loan.notify.communication",
				DisplayName: "Customer Communication",
				Description: "Sends the decision to the applicant over email and SMS.",
				Category:    "loan-notification",
				Version:     "1.0.0",
				TaskType:    "loan-communication",
				Stage:       7,
				ErrorCodes:  []string{"NOTIFICATION_SEND_FAILED"},
				Timeout:     "30s",
				Retries:     2,
				Tags:        []string{"email", "sms"},
			},
			{
				ID:          "loan.trail.audit",
				DisplayName: "Audit Trail",
				Description: "Assembles the full processing trail and indexes it for search.",
				Category:    "loan-audit",
				Version:     "1.0.0",
				TaskType:    "loan-audit",
				Stage:       8,
				ErrorCodes:  []string{"AUDIT_INDEX_FAILED"},
				Timeout:     "30s",
				Retries:     3,
				Tags:        []string{"audit"},
			},
		},
	}
}
