// Package results persists the terminal state of processed loan
// applications and serves lookups for the API surface.
package results

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one persisted pipeline outcome. Result holds the full terminal
// state as JSON so the schema never chases the pipeline's shape.
type Record struct {
	ApplicationID string          `json:"applicationId"`
	CustomerName  string          `json:"customerName"`
	ProductType   string          `json:"productType"`
	LoanAmount    float64         `json:"loanAmount"`
	Outcome       string          `json:"outcome"`
	CompletedAt   time.Time       `json:"completedAt"`
	Result        json.RawMessage `json:"result"`
}

// Summary is the listing view of a record, without the full result payload.
type Summary struct {
	ApplicationID string    `json:"applicationId"`
	CustomerName  string    `json:"customerName"`
	ProductType   string    `json:"productType"`
	LoanAmount    float64   `json:"loanAmount"`
	Outcome       string    `json:"outcome"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Store persists and retrieves processed-application records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, applicationID string) (*Record, error)
	List(ctx context.Context, limit int) ([]Summary, error)
}

func (r *Record) summary() Summary {
	return Summary{
		ApplicationID: r.ApplicationID,
		CustomerName:  r.CustomerName,
		ProductType:   r.ProductType,
		LoanAmount:    r.LoanAmount,
		Outcome:       r.Outcome,
		CompletedAt:   r.CompletedAt,
	}
}
