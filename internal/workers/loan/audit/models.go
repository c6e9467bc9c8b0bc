package audit

import (
	"time"

	"loan-workers/internal/models"
)

type Input struct {
	Application models.Application `json:"application"`
	Decision    models.Decision    `json:"decision"`
	Terms       *models.LoanTerms  `json:"terms,omitempty"`
}

type Output struct {
	ApplicationID string  `json:"applicationId"`
	Report        *Report `json:"report"`
	Indexed       bool    `json:"indexed"`
	Remarks       string  `json:"remarks"`
}

// Report is the immutable compliance trail for one processed application.
type Report struct {
	ApplicationID     string               `json:"applicationId"`
	CustomerName      string               `json:"customerName"`
	ProductType       string               `json:"productType"`
	RequestedAmount   float64              `json:"requestedAmount"`
	Outcome           string               `json:"outcome"`
	Decision          models.Decision      `json:"decision"`
	Terms             *models.LoanTerms    `json:"terms,omitempty"`
	Stages            []models.StageResult `json:"stages"`
	StageVerdicts     map[string]string    `json:"stageVerdicts"`
	StageAudits       []StageAudit         `json:"stageAudits"`
	Compliance        ComplianceChecklist  `json:"compliance"`
	ConversationTurns int                  `json:"conversationTurns"`
	SubmittedAt       string               `json:"submittedAt"`
	CompletedAt       time.Time            `json:"completedAt"`
}

// Checkpoint is one named audit check with its observed status.
type Checkpoint struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// StageAudit reviews one completed stage against its expected checkpoints.
type StageAudit struct {
	Stage       string       `json:"stage"`
	StageNum    int          `json:"stageNum"`
	Result      string       `json:"result"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// ComplianceArea groups related regulatory checks.
type ComplianceArea struct {
	Area   string       `json:"area"`
	Status string       `json:"status"`
	Checks []Checkpoint `json:"checks"`
}

// ComplianceChecklist is the regulatory review across all areas.
type ComplianceChecklist struct {
	Areas       []ComplianceArea `json:"areas"`
	Overall     string           `json:"overall"`
	IssuesFound int              `json:"issuesFound"`
}
