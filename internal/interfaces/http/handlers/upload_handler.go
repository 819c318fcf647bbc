package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/services"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/storage"
)

type UploadHandler struct {
	store           *storage.Store
	mediaRepo       repositories.MediaRepository
	analysisService services.AnalysisService
}

func NewUploadHandler(store *storage.Store, mediaRepo repositories.MediaRepository, analysisService services.AnalysisService) *UploadHandler {
	return &UploadHandler{
		store:           store,
		mediaRepo:       mediaRepo,
		analysisService: analysisService,
	}
}

// GeneratePresignedURL issues a signed upload URL and creates the
// pending media row the client will upload against.
func (h *UploadHandler) GeneratePresignedURL(c *gin.Context) {
	fileName := c.Query("file_name")
	fileType := c.Query("file_type")
	if fileName == "" || fileType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_name and file_type are required"})
		return
	}

	userID := c.GetString("user_id")
	objectPath := fmt.Sprintf("%s/%d_%s", userID, time.Now().UnixNano(), fileName)

	uploadURL, err := h.store.SignedUploadURL(c.Request.Context(), objectPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	mediaType := models.MediaTypeAudio
	if strings.HasPrefix(fileType, "video") {
		mediaType = models.MediaTypeVideo
	}

	media := &models.Media{
		UserID:       userID,
		Type:         mediaType,
		UploadStatus: models.UploadStatusPending,
		URL:          objectPath,
	}
	if err := h.mediaRepo.CreateMedia(c.Request.Context(), media); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": uploadURL,
		"file_url":   h.store.PublicURL(objectPath),
		"file_path":  objectPath,
		"media_id":   media.ID,
	})
}

type completeUploadRequest struct {
	Duration *int    `json:"duration"`
	Language *string `json:"language"`
}

// CompleteUpload marks the upload finished and kicks off the analysis
// pipeline: the upload-completion event. The client may report playback
// metadata it learned during upload.
func (h *UploadHandler) CompleteUpload(c *gin.Context) {
	mediaID := c.Param("media_id")

	var req completeUploadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.mediaRepo.UpdateMediaStatus(c.Request.Context(), mediaID, models.UploadStatusCompleted); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Duration != nil || req.Language != nil {
		if err := h.mediaRepo.UpdateMediaMetadata(c.Request.Context(), mediaID, req.Duration, req.Language); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	resp, err := h.analysisService.StartAnalysis(c.Request.Context(), mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *UploadHandler) GetUserMedia(c *gin.Context) {
	userID := c.GetString("user_id")

	media, err := h.mediaRepo.GetUserMedia(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if media == nil {
		media = []*models.Media{}
	}

	c.JSON(http.StatusOK, gin.H{"media": media})
}
