package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/repository"
	"github.com/factlens/social-factcheck-go/internal/pipeline"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

// AdminHandler exposes read-only views over the stored pipeline results.
type AdminHandler struct {
	pipeline    pipeline.Service
	contentRepo repository.ContentRepository
	verifyRepo  repository.VerificationRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	pipelineSvc pipeline.Service,
	contentRepo repository.ContentRepository,
	verifyRepo repository.VerificationRepository,
) *AdminHandler {
	return &AdminHandler{
		pipeline:    pipelineSvc,
		contentRepo: contentRepo,
		verifyRepo:  verifyRepo,
	}
}

// GetStats handles GET /api/v1/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.pipeline.GlobalStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetContent handles GET /api/v1/contents/:platform/:content_id. The latest
// verification, when one exists, rides along.
func (h *AdminHandler) GetContent(c *gin.Context) {
	p, err := platform.Parse(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.contentRepo.GetByNativeID(c.Request.Context(), p, c.Param("content_id"))
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return
	}

	response := gin.H{"content": record}

	verification, err := h.verifyRepo.GetLatestByContentID(c.Request.Context(), record.ID)
	if err == nil {
		response["verification"] = verification
	} else if !db.IsNotFound(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load verification"})
		return
	}

	c.JSON(http.StatusOK, response)
}
