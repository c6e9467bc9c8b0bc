// Package api exposes the loan pipeline and its stores over HTTP.
package api

import (
	"net/http"
	"strings"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/docstore"
	"loan-workers/internal/pipeline"
	"loan-workers/internal/results"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP routes to the pipeline and stores.
type Server struct {
	engine   *gin.Engine
	pipeline *pipeline.Pipeline
	store    docstore.Store
	results  results.Store
	logger   logger.Logger
}

// NewServer builds the router. The results store may be nil; result
// endpoints then report the store as unavailable.
func NewServer(p *pipeline.Pipeline, store docstore.Store, resultStore results.Store, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		pipeline: p,
		store:    store,
		results:  resultStore,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger(s.logger))

	s.engine.GET("/health", s.health)
	s.engine.POST("/loan/process", s.processLoan)
	s.engine.POST("/documents/upload", s.uploadDocument)
	s.engine.GET("/documents", s.listDocuments)
	s.engine.DELETE("/documents/:name", s.deleteDocument)
	s.engine.GET("/results", s.listResults)
	s.engine.GET("/results/:id", s.getResult)

	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MapFinalDecision normalizes a terminal outcome into the coarse status the
// API exposes.
func MapFinalDecision(outcome string) string {
	lower := strings.ToLower(outcome)
	switch {
	case strings.Contains(lower, "approve"):
		return "APPROVED"
	case strings.Contains(lower, "reject"), strings.Contains(lower, "denied"), strings.Contains(lower, "declin"):
		return "REJECTED"
	case strings.Contains(lower, "refer"), strings.Contains(lower, "review"):
		return "REFERRED"
	default:
		return "PENDING"
	}
}
