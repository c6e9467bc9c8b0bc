package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/docstore"
	"loan-workers/internal/models"
	"loan-workers/internal/pipeline"
	"loan-workers/internal/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocuments(t *testing.T, store docstore.Store, customerID string) {
	t.Helper()
	for _, name := range []string{
		"aadhaar card.pdf",
		"pan card.pdf",
		"form16 2024.pdf",
		"bank statement jan.pdf",
		"cibil report.pdf",
		"property sale deed.pdf",
	} {
		require.NoError(t, store.SaveDocument(context.Background(), customerID, name, []byte("content")))
	}
}

func newTestServer(t *testing.T) (*Server, docstore.Store) {
	t.Helper()
	store := docstore.NewDirStore(t.TempDir())
	seedDocuments(t, store, "asha-verma")

	p := pipeline.New(pipeline.Options{
		Logger: logger.NewTestLogger(t),
		Store:  store,
	})
	resultStore := results.NewFileStore(t.TempDir())

	return NewServer(p, store, resultStore, logger.NewTestLogger(t)), store
}

func processBody() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"customerId":   "asha-verma",
		"customerName": "Asha Verma",
		"loanAmount":   4_000_000,
		"purpose":      "Home purchase",
		"productType":  "Home Loan",
		"tenureYears":  20,
		"email":        "asha.verma@example.com",
		"contact":      "+91 98765 43210",
		"customer": map[string]interface{}{
			"age":                35,
			"monthlyIncome":      75_000,
			"employmentYears":    8,
			"employerType":       "MNC",
			"existingEmis":       10_000,
			"creditScore":        750,
			"creditHistoryYears": 8,
			"recentInquiries":    1,
		},
		"collateral": map[string]interface{}{
			"propertyType":  "Residential",
			"locationTier":  "Metro City",
			"areaSqft":      660,
			"ageYears":      3,
			"qualityGrade":  "Good",
			"legalStatus":   "Clear",
			"declaredValue": 5_000_000,
		},
	})
	return body
}

func TestProcessLoan_ApprovesAndStoresResult(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/loan/process", bytes.NewReader(processBody()))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp processResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "APPROVED", resp.FinalDecision)
	assert.Equal(t, string(models.DecisionApproved), resp.Outcome)
	assert.NotEmpty(t, resp.ApplicationID)

	// The stored record is immediately retrievable.
	getReq := httptest.NewRequest(http.MethodGet, "/results/"+resp.ApplicationID, nil)
	getRR := httptest.NewRecorder()
	server.Handler().ServeHTTP(getRR, getReq)
	assert.Equal(t, http.StatusOK, getRR.Code)
}

func TestProcessLoan_RejectsMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/loan/process", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INPUT_INVALID")
	assert.Contains(t, rr.Body.String(), `"status":"error"`)
}

func TestProcessLoan_AcceptsFormEncodedRequest(t *testing.T) {
	server, _ := newTestServer(t)

	form := url.Values{}
	form.Set("customerId", "asha-verma")
	form.Set("customerName", "Asha Verma")
	form.Set("loanAmount", "4000000")
	form.Set("purpose", "Home purchase")
	form.Set("productType", "Home Loan")
	form.Set("tenureYears", "20")
	form.Set("email", "asha.verma@example.com")
	form.Set("contact", "+91 98765 43210")
	form.Set("age", "35")
	form.Set("monthlyIncome", "75000")
	form.Set("employmentYears", "8")
	form.Set("employerType", "MNC")
	form.Set("existingEmis", "10000")
	form.Set("creditScore", "750")
	form.Set("creditHistoryYears", "8")
	form.Set("recentInquiries", "1")

	req := httptest.NewRequest(http.MethodPost, "/loan/process", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp processResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.NotEmpty(t, resp.ApplicationID)
	assert.NotEmpty(t, resp.Outcome)
}

func TestProcessLoan_RejectsInvalidApplication(t *testing.T) {
	server, _ := newTestServer(t)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(processBody(), &payload))
	payload["loanAmount"] = 0
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/loan/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"error"`)
}

func multipartBody(t *testing.T, customerID, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("customerId", customerID))
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	server, store := newTestServer(t)

	body, contentType := multipartBody(t, "new-customer", "salary slip march.pdf")
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "INCOME")

	docs, err := store.ListDocuments(context.Background(), "new-customer")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "salary slip march.pdf", docs[0].Name)
}

func TestUploadDocument_RejectsDisallowedExtension(t *testing.T) {
	server, _ := newTestServer(t)

	body, contentType := multipartBody(t, "new-customer", "malware.exe")
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "file type not allowed")
}

func TestListDocuments(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents?customerId=asha-verma", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Count     int               `json:"count"`
		Documents []models.Document `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Count)
}

func TestListDocuments_RequiresCustomerID(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteDocument(t *testing.T) {
	server, store := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/documents/pan%20card.pdf?customerId=asha-verma", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)

	docs, err := store.ListDocuments(context.Background(), "asha-verma")
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestGetResult_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/results/LN-missing", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "RESULT_NOT_FOUND")
}

func TestListResults_AfterProcessing(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/loan/process", bytes.NewReader(processBody()))
	req.Header.Set("Content-Type", "application/json")
	server.Handler().ServeHTTP(httptest.NewRecorder(), req)

	listReq := httptest.NewRequest(http.MethodGet, "/results", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, listReq)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestMapFinalDecision(t *testing.T) {
	tests := []struct {
		outcome  string
		expected string
	}{
		{"APPROVED", "APPROVED"},
		{"APPROVED_WITH_CONDITIONS", "APPROVED"},
		{"DECLINED", "REJECTED"},
		{"REJECTED", "REJECTED"},
		{"REFERRED", "REFERRED"},
		{"UNDER_REVIEW", "REFERRED"},
		{"NOT_QUALIFIED", "PENDING"},
		{"", "PENDING"},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFinalDecision(tt.outcome))
		})
	}
}
