package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-yaml"

	"github.com/prasenjit/swagger-hub/internal/hub"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

// Handler handles API requests
type Handler struct {
	provider       hub.DocumentProvider
	store          storage.Storage
	statsCollector *stats.Collector
	logger         *slog.Logger
}

// NewHandler creates a new API handler
func NewHandler(provider hub.DocumentProvider, store storage.Storage, statsCollector *stats.Collector, logger *slog.Logger) *Handler {
	return &Handler{
		provider:       provider,
		store:          store,
		statsCollector: statsCollector,
		logger:         logger,
	}
}

// GetAggregateJSON serves the merged document as JSON
func (h *Handler) GetAggregateJSON(c *gin.Context) {
	data, ok := h.aggregate(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetAggregateYAML serves the merged document as YAML, keeping the key order
// of the JSON rendering
func (h *Handler) GetAggregateYAML(c *gin.Context) {
	data, ok := h.aggregate(c)
	if !ok {
		return
	}

	out, err := yaml.JSONToYAML(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}

func (h *Handler) aggregate(c *gin.Context) ([]byte, bool) {
	doc, err := h.provider.Aggregate(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build aggregate document", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return data, true
}

// ListDocuments returns the configured documents without fetching them
func (h *Handler) ListDocuments(c *gin.Context) {
	opts := h.provider.Option().Documents

	result := make([]map[string]interface{}, len(opts))
	for i, opt := range opts {
		result[i] = map[string]interface{}{
			"index":          i,
			"baseAddress":    opt.BaseAddress.String(),
			"documentUrl":    opt.DocumentURL,
			"location":       opt.DocumentLocation().String(),
			"urlSuffix":      opt.URLSuffix,
			"isDirectCall":   opt.IsDirectCall,
			"parameterCount": len(opt.Parameters),
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetDocument fetches a single document
func (h *Handler) GetDocument(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document index"})
		return
	}

	doc, err := h.provider.Document(c.Request.Context(), index)
	if err != nil {
		if errors.Is(err, hub.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index":     doc.Index,
		"location":  doc.Location,
		"version":   doc.Version,
		"stale":     doc.Stale,
		"requestId": doc.RequestID,
		"fetchedAt": doc.FetchedAt,
		"spec":      doc.Spec,
	})
}

// ListSnapshots returns the stored snapshots without their content
func (h *Handler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.store.GetAllSnapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := make([]map[string]interface{}, len(snapshots))
	for i, s := range snapshots {
		result[i] = map[string]interface{}{
			"key":       s.Key,
			"index":     s.Index,
			"version":   s.Version,
			"size":      len(s.Content),
			"requestId": s.RequestID,
			"fetchedAt": s.FetchedAt,
		}
	}

	c.JSON(http.StatusOK, result)
}

// DeleteSnapshot removes the snapshot of the location given as ?location=
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	if err := h.store.DeleteSnapshot(location); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStats returns fetch statistics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.statsCollector.GetHubStats())
}

// ResetStats resets all statistics
func (h *Handler) ResetStats(c *gin.Context) {
	h.statsCollector.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Statistics reset"})
}

// HealthCheck returns health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"documents": len(h.provider.Option().Documents),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
