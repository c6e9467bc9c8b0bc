package verifydocs

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/docstore"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, files ...string) docstore.Store {
	t.Helper()
	store := docstore.NewDirStore(t.TempDir())
	for _, name := range files {
		require.NoError(t, store.SaveDocument(context.Background(), "cust-001", name, []byte("content")))
	}
	return store
}

func newHandler(t *testing.T, store docstore.Store) *Handler {
	return NewHandler(LoadConfig(), store, logger.NewTestLogger(t))
}

func fullDocumentSet() []string {
	return []string{
		"aadhaar_card.pdf",
		"pan_card.pdf",
		"salary_slips.pdf",
		"bank_statement_6months.pdf",
		"cibil_report.pdf",
	}
}

func TestExecute_AllCategoriesVerified(t *testing.T) {
	store := newTestStore(t, fullDocumentSet()...)
	h := newHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LN-1",
		CustomerID:    "cust-001",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictPass, output.Verdict)
	assert.Len(t, output.Documents, 5)
	assert.InDelta(t, 100, output.DocumentationScore, 0.01)

	for _, c := range output.CategoryChecks {
		assert.True(t, c.Verified, c.Category)
	}
}

func TestExecute_MissingPANFailsIdentity(t *testing.T) {
	store := newTestStore(t, "aadhaar_card.pdf", "salary_slips.pdf", "bank_statement.pdf")
	h := newHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LN-2",
		CustomerID:    "cust-001",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictFail, output.Verdict)

	var identity CategoryCheck
	for _, c := range output.CategoryChecks {
		if c.Category == "IDENTITY" {
			identity = c
		}
	}
	assert.False(t, identity.Verified)
	assert.Contains(t, identity.Missing, "pan")
}

func TestExecute_AadhaarDoublesAsAddressProof(t *testing.T) {
	store := newTestStore(t, "aadhaar_card.pdf", "pan_card.pdf", "payslip_jan.pdf")
	h := newHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LN-3",
		CustomerID:    "cust-001",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictPass, output.Verdict)

	// Banking and credit evidence is absent, so the score reflects 3/5.
	assert.InDelta(t, 60, output.DocumentationScore, 0.01)
}

func TestExecute_EmptyFolderFailsEverything(t *testing.T) {
	store := newTestStore(t)
	h := newHandler(t, store)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LN-4",
		CustomerID:    "cust-001",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictFail, output.Verdict)
	assert.Zero(t, output.DocumentationScore)
	assert.Empty(t, output.Documents)
}

func TestExecute_RequiresCustomerID(t *testing.T) {
	h := newHandler(t, newTestStore(t))

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "LN-5"})
	assert.Error(t, err)
}

func TestExecute_NoStoreDefersVerification(t *testing.T) {
	h := newHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{
		ApplicationID: "LN-6",
		CustomerID:    "cust-001",
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictPending, output.Verdict)
	assert.Zero(t, output.DocumentationScore)
}
