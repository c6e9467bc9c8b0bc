package models

// DocumentCategory groups customer documents by what they evidence.
type DocumentCategory string

const (
	CategoryIdentity DocumentCategory = "IDENTITY"
	CategoryIncome   DocumentCategory = "INCOME"
	CategoryAddress  DocumentCategory = "ADDRESS"
	CategoryBanking  DocumentCategory = "BANKING"
	CategoryCredit   DocumentCategory = "CREDIT"
	CategoryProperty DocumentCategory = "PROPERTY"
	CategoryOther    DocumentCategory = "OTHER"
)

// Document is one file in a customer's document folder.
type Document struct {
	Name      string           `json:"name"`
	SizeBytes int64            `json:"sizeBytes"`
	Category  DocumentCategory `json:"category"`
}
