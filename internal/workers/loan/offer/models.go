package offer

import (
	"time"

	"loan-workers/internal/finance"
	"loan-workers/internal/models"
)

type Input struct {
	ApplicationID string            `json:"applicationId"`
	CustomerName  string            `json:"customerName"`
	ProductType   string            `json:"productType"`
	Decision      models.Decision   `json:"decision"`
	Terms         *models.LoanTerms `json:"terms"`
}

type Output struct {
	ApplicationID string     `json:"applicationId"`
	Generated     bool       `json:"generated"`
	Offer         *LoanOffer `json:"offer,omitempty"`
	Remarks       string     `json:"remarks"`
}

// LoanOffer is the sanctioned offer presented to the applicant.
type LoanOffer struct {
	OfferID       string                     `json:"offerId"`
	ApplicationID string                     `json:"applicationId"`
	CustomerName  string                     `json:"customerName"`
	ProductType   string                     `json:"productType"`
	Terms         models.LoanTerms           `json:"terms"`
	TotalCost     finance.TotalCost          `json:"totalCost"`
	ScheduleHead  []models.AmortizationEntry `json:"scheduleHead"`
	ScheduleTail  []models.AmortizationEntry `json:"scheduleTail,omitempty"`
	Conditions    []string                   `json:"conditions,omitempty"`
	IssuedAt      time.Time                  `json:"issuedAt"`
	ValidUntil    time.Time                  `json:"validUntil"`
}
