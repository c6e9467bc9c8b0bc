package verifydocs

import "loan-workers/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
	CustomerID    string `json:"customerId"`
}

type Output struct {
	ApplicationID      string            `json:"applicationId"`
	Verdict            string            `json:"verdict"`
	Documents          []models.Document `json:"documents"`
	CategoryChecks     []CategoryCheck   `json:"categoryChecks"`
	DocumentationScore float64           `json:"documentationScore"`
	Remarks            string            `json:"remarks"`
}

// CategoryCheck records whether one evidence category is satisfied.
type CategoryCheck struct {
	Category string   `json:"category"`
	Verified bool     `json:"verified"`
	Found    []string `json:"found,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}
