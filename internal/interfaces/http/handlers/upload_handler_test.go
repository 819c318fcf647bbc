package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/services"
)

type fakeMediaRepo struct {
	media []*models.Media

	statusID     string
	status       models.UploadStatus
	metadataID   string
	duration     *int
	language     *string
	metadataSets int
}

func (r *fakeMediaRepo) CreateMedia(_ context.Context, _ *models.Media) error { return nil }

func (r *fakeMediaRepo) GetMediaByID(_ context.Context, _ string) (*models.Media, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeMediaRepo) GetUserMedia(_ context.Context, _ string) ([]*models.Media, error) {
	return r.media, nil
}

func (r *fakeMediaRepo) UpdateMediaStatus(_ context.Context, id string, status models.UploadStatus) error {
	r.statusID = id
	r.status = status
	return nil
}

func (r *fakeMediaRepo) UpdateMediaDetails(_ context.Context, _ string, _, _, _ *string) error {
	return nil
}

func (r *fakeMediaRepo) UpdateMediaMetadata(_ context.Context, id string, duration *int, language *string) error {
	r.metadataID = id
	r.duration = duration
	r.language = language
	r.metadataSets++
	return nil
}

type fakeAnalysisService struct {
	startedMediaID string
}

func (s *fakeAnalysisService) StartAnalysis(_ context.Context, mediaID string) (*services.StartAnalysisResponse, error) {
	s.startedMediaID = mediaID
	return &services.StartAnalysisResponse{
		AnalysisID: "analysis-1",
		Status:     models.AnalysisStatusProcessing,
		Message:    "Analysis started in background",
	}, nil
}

func (s *fakeAnalysisService) GetAnalysisStatus(_ context.Context, _ string) (*services.AnalysisStatusResponse, error) {
	return nil, repositories.ErrNotFound
}

func (s *fakeAnalysisService) GetAnalysisResult(_ context.Context, _ string) (*services.AnalysisResultResponse, error) {
	return nil, repositories.ErrNotFound
}

func newUploadRouter(repo *fakeMediaRepo, svc *fakeAnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUploadHandler(nil, repo, svc)

	router := gin.New()
	router.POST("/media/:media_id/complete", handler.CompleteUpload)
	router.GET("/media", handler.GetUserMedia)
	return router
}

func TestCompleteUploadBackfillsPlaybackMetadata(t *testing.T) {
	repo := &fakeMediaRepo{}
	svc := &fakeAnalysisService{}
	router := newUploadRouter(repo, svc)

	body := `{"duration": 132, "language": "en"}`
	req := httptest.NewRequest(http.MethodPost, "/media/media-1/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if repo.statusID != "media-1" || repo.status != models.UploadStatusCompleted {
		t.Errorf("status update = (%q, %q)", repo.statusID, repo.status)
	}
	if repo.metadataID != "media-1" {
		t.Fatal("playback metadata was not backfilled")
	}
	if repo.duration == nil || *repo.duration != 132 {
		t.Errorf("duration = %v, want 132", repo.duration)
	}
	if repo.language == nil || *repo.language != "en" {
		t.Errorf("language = %v, want en", repo.language)
	}
	if svc.startedMediaID != "media-1" {
		t.Error("analysis was not triggered")
	}
}

func TestCompleteUploadWithoutBody(t *testing.T) {
	repo := &fakeMediaRepo{}
	router := newUploadRouter(repo, &fakeAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/media/media-1/complete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if repo.status != models.UploadStatusCompleted {
		t.Error("upload was not marked completed")
	}
	if repo.metadataSets != 0 {
		t.Errorf("metadata updated %d times without a body, want 0", repo.metadataSets)
	}
}

func TestGetUserMediaEmptyList(t *testing.T) {
	router := newUploadRouter(&fakeMediaRepo{media: nil}, &fakeAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/media", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"media":[]`) {
		t.Errorf("empty listing should serialize an empty array, got %s", w.Body.String())
	}
}
