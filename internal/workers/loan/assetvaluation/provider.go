package assetvaluation

import (
	"context"
	"strings"

	"loan-workers/internal/models"
)

// PropertyRecord carries the verified legal position of a collateral asset
// as seen by the registry, independent of what the applicant declared.
type PropertyRecord struct {
	EncumbranceStatus string `json:"encumbranceStatus"`
	TitleClear        bool   `json:"titleClear"`
	LegalStatus       string `json:"legalStatus"`
}

// PropertyDataProvider fetches the registry record for a collateral asset.
// Implementations wrap a land-registry integration; the default derives a
// deterministic record from the declared profile so valuations are
// reproducible without one.
type PropertyDataProvider interface {
	FetchRecord(ctx context.Context, applicationID string, collateral models.CollateralProfile) (PropertyRecord, error)
}

type staticProvider struct{}

// NewStaticProvider returns the built-in deterministic registry provider.
func NewStaticProvider() PropertyDataProvider {
	return staticProvider{}
}

func (staticProvider) FetchRecord(_ context.Context, _ string, collateral models.CollateralProfile) (PropertyRecord, error) {
	status := strings.ToLower(collateral.LegalStatus)

	rec := PropertyRecord{
		EncumbranceStatus: "NONE",
		TitleClear:        true,
		LegalStatus:       collateral.LegalStatus,
	}

	switch {
	case strings.Contains(status, "dispute"):
		rec.EncumbranceStatus = "DISPUTED"
		rec.TitleClear = false
	case strings.Contains(status, "mortgage"), strings.Contains(status, "lien"), strings.Contains(status, "encumber"):
		rec.EncumbranceStatus = "ENCUMBERED"
		rec.TitleClear = false
	case status == "":
		rec.EncumbranceStatus = "UNVERIFIED"
		rec.TitleClear = false
		rec.LegalStatus = "Unknown"
	}

	return rec, nil
}
