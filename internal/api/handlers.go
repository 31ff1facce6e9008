// Package api is the place-schema HTTP API.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/place-schema/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
	"github.com/jonesrussell/north-cloud/place-schema/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/place-schema/internal/schema"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

// Handler serves the /api/v1 routes.
type Handler struct {
	schema *service.SchemaService
	verify *service.VerifyService
	logger logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(schemaService *service.SchemaService, verifyService *service.VerifyService, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{schema: schemaService, verify: verifyService, logger: log}
}

// CreateIndexRequest is the body of POST /api/v1/indexes.
type CreateIndexRequest struct {
	IndexName string `binding:"required" json:"index_name"`
	// Ensure accepts an existing index with the current mapping version.
	Ensure bool `json:"ensure"`
}

// VerifyRequest is the optional body of POST /api/v1/verify.
type VerifyRequest struct {
	Scenarios []string `json:"scenarios"`
	Offline   bool     `json:"offline"`
}

// GetSchema handles GET /api/v1/schema
func (h *Handler) GetSchema(c *gin.Context) {
	c.Header("X-Mapping-Version", schema.MappingVersion)
	c.JSON(http.StatusOK, h.schema.Body())
}

// CreateIndex handles POST /api/v1/indexes
func (h *Handler) CreateIndex(c *gin.Context) {
	var req CreateIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log(c).Warn("Invalid create index request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	create := h.schema.CreateIndex
	if req.Ensure {
		create = h.schema.EnsureIndex
	}

	info, err := create(c.Request.Context(), req.IndexName)
	if err != nil {
		h.respondError(c, "Failed to create index", err, logger.String("index_name", req.IndexName))
		return
	}

	status := http.StatusOK
	if info.Created {
		status = http.StatusCreated
	}
	c.JSON(status, info)
}

// DeleteIndex handles DELETE /api/v1/indexes/:index_name
func (h *Handler) DeleteIndex(c *gin.Context) {
	indexName := c.Param("index_name")

	if err := h.schema.DeleteIndex(c.Request.Context(), indexName); err != nil {
		h.respondError(c, "Failed to delete index", err, logger.String("index_name", indexName))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "index deleted successfully", "index_name": indexName})
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.schema.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to analyze values", err, logger.String("field", req.Field))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify handles POST /api/v1/verify. A failed verification is a 422 with
// the full report.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.log(c).Info("Running contract verification",
		logger.Strings("scenarios", req.Scenarios),
		logger.Bool("offline", req.Offline),
	)

	var (
		report *contract.Report
		err    error
	)
	if req.Offline {
		report, err = h.verify.VerifyOffline(req.Scenarios...)
	} else {
		report, err = h.verify.Verify(c.Request.Context(), req.Scenarios...)
	}
	if err != nil {
		h.respondError(c, "Failed to run verification", err)
		return
	}

	status := http.StatusOK
	if !report.Passed() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

// log returns the request-scoped logger set by the request ID middleware.
func (h *Handler) log(c *gin.Context) logger.Logger {
	return logger.FromContextOr(c.Request.Context(), h.logger)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error, fields ...logger.Field) {
	status := statusFor(err)
	fields = append(fields, logger.Error(err), logger.Int("status", status))
	if status >= http.StatusInternalServerError {
		h.log(c).Error(msg, fields...)
	} else {
		h.log(c).Warn(msg, fields...)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, elasticsearch.ErrIndexNotFound):
		return http.StatusNotFound
	case errors.Is(err, elasticsearch.ErrIndexExists), errors.Is(err, service.ErrMappingVersion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
