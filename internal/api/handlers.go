package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"loan-workers/internal/common/errors"
	"loan-workers/internal/docstore"
	"loan-workers/internal/pipeline"
	"loan-workers/internal/results"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

type processResponse struct {
	Status        string           `json:"status"`
	ApplicationID string           `json:"applicationId"`
	FinalDecision string           `json:"finalDecision"`
	Outcome       string           `json:"outcome"`
	Result        *pipeline.Result `json:"result"`
}

func (s *Server) processLoan(c *gin.Context) {
	// ShouldBind accepts both form fields and a JSON body, keyed off the
	// request content type.
	var req pipeline.Request
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"error":   string(errors.ErrCodeInputInvalid),
			"message": err.Error(),
		})
		return
	}

	result, err := s.pipeline.Process(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "error",
			"error":   string(errors.ErrCodeInputInvalid),
			"message": err.Error(),
		})
		return
	}

	s.persistResult(c, result)

	c.JSON(http.StatusOK, processResponse{
		Status:        "completed",
		ApplicationID: result.Application.ID,
		FinalDecision: MapFinalDecision(string(result.Decision.Outcome)),
		Outcome:       string(result.Decision.Outcome),
		Result:        result,
	})
}

func (s *Server) persistResult(c *gin.Context, result *pipeline.Result) {
	if s.results == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.WithError(err).Error("marshal result", nil)
		return
	}

	rec := &results.Record{
		ApplicationID: result.Application.ID,
		CustomerName:  result.Application.CustomerName,
		ProductType:   result.Application.ProductType,
		LoanAmount:    result.Application.LoanAmount,
		Outcome:       string(result.Decision.Outcome),
		CompletedAt:   result.CompletedAt,
		Result:        payload,
	}
	if err := s.results.Save(c.Request.Context(), rec); err != nil {
		// The response still carries the full result; losing the stored copy
		// is logged, not surfaced.
		s.logger.WithError(err).Error("persist result", map[string]interface{}{
			"applicationId": rec.ApplicationID,
		})
	}
}

func (s *Server) uploadDocument(c *gin.Context) {
	customerID := c.PostForm("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": "customerId is required",
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": "file is required",
		})
		return
	}
	defer file.Close()

	if !docstore.ExtensionAllowed(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": "file type not allowed",
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeDocstoreUnavailable),
			"message": err.Error(),
		})
		return
	}

	if err := s.store.SaveDocument(c.Request.Context(), customerID, header.Filename, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeDocstoreUnavailable),
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"customerId": customerID,
		"name":       header.Filename,
		"category":   docstore.Categorize(header.Filename),
		"sizeBytes":  len(data),
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	customerID := c.Query("customerId")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": "customerId is required",
		})
		return
	}

	docs, err := s.store.ListDocuments(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeDocstoreUnavailable),
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customerId": customerID,
		"documents":  docs,
		"count":      len(docs),
	})
}

func (s *Server) deleteDocument(c *gin.Context) {
	customerID := c.Query("customerId")
	name := c.Param("name")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": "customerId is required",
		})
		return
	}

	if err := s.store.DeleteDocument(c.Request.Context(), customerID, name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   string(errors.ErrCodeInputInvalid),
			"message": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listResults(c *gin.Context) {
	if s.results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   string(errors.ErrCodeResultStoreFailed),
			"message": "result store not configured",
		})
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	summaries, err := s.results.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeResultStoreFailed),
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": summaries,
		"count":   len(summaries),
	})
}

func (s *Server) getResult(c *gin.Context) {
	if s.results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   string(errors.ErrCodeResultStoreFailed),
			"message": "result store not configured",
		})
		return
	}

	rec, err := s.results.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   string(errors.ErrCodeResultNotFound),
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applicationId": rec.ApplicationID,
		"outcome":       rec.Outcome,
		"finalDecision": MapFinalDecision(rec.Outcome),
		"completedAt":   rec.CompletedAt,
		"result":        json.RawMessage(rec.Result),
	})
}
