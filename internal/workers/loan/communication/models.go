package communication

import "loan-workers/internal/models"

type Input struct {
	ApplicationID string          `json:"applicationId"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	Contact       string          `json:"contact"`
	Decision      models.Decision `json:"decision"`
	OfferSummary  *OfferSummary   `json:"offerSummary,omitempty"`
}

// OfferSummary carries the offer facts worth repeating in a notification.
type OfferSummary struct {
	ApprovedAmount float64 `json:"approvedAmount"`
	InterestRate   float64 `json:"interestRate"`
	TenureMonths   int     `json:"tenureMonths"`
	EMI            float64 `json:"emi"`
	ValidUntil     string  `json:"validUntil"`
}

type Output struct {
	ApplicationID string               `json:"applicationId"`
	Notifications []NotificationRecord `json:"notifications"`
	Delivered     int                  `json:"delivered"`
	Remarks       string               `json:"remarks"`
}

// NotificationRecord is the outcome of one delivery attempt.
type NotificationRecord struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
