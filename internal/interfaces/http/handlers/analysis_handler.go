package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/services"
)

type AnalysisHandler struct {
	service services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// StartAnalysis triggers the pipeline for a media item. Duplicate
// triggers return the existing analysis id instead of creating a
// second job.
func (h *AnalysisHandler) StartAnalysis(c *gin.Context) {
	mediaID := c.Param("media_id")

	resp, err := h.service.StartAnalysis(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) GetAnalysisStatus(c *gin.Context) {
	mediaID := c.Param("media_id")

	resp, err := h.service.GetAnalysisStatus(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "not_found",
				"message": "No analysis found for this media",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": resp})
}

func (h *AnalysisHandler) GetAnalysisResult(c *gin.Context) {
	mediaID := c.Param("media_id")

	resp, err := h.service.GetAnalysisResult(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch resp.Status {
	case models.AnalysisStatusProcessing:
		c.JSON(http.StatusOK, gin.H{
			"status":  "processing",
			"message": "Analysis is still in progress",
			"data":    resp,
		})
	case models.AnalysisStatusFailed:
		c.JSON(http.StatusOK, gin.H{
			"status":  "failed",
			"message": "Analysis failed",
			"data":    resp,
		})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": resp})
	}
}
