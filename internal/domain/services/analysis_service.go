package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
)

// AnalysisService is the trigger layer of the pipeline: it creates the
// processing record before scheduling the worker, so status queries
// never observe a requested analysis that does not exist yet.
type AnalysisService interface {
	StartAnalysis(ctx context.Context, mediaID string) (*StartAnalysisResponse, error)
	GetAnalysisStatus(ctx context.Context, mediaID string) (*AnalysisStatusResponse, error)
	GetAnalysisResult(ctx context.Context, mediaID string) (*AnalysisResultResponse, error)
}

// AnalysisQueue is the scheduling dependency, one enqueued task per
// pipeline run.
type AnalysisQueue interface {
	EnqueueAnalysis(ctx context.Context, job queue.AnalysisJob) error
}

type StartAnalysisResponse struct {
	AnalysisID string                `json:"analysis_id"`
	Status     models.AnalysisStatus `json:"status"`
	Message    string                `json:"message"`
}

type AnalysisStatusResponse struct {
	AnalysisID string                `json:"analysis_id"`
	Status     models.AnalysisStatus `json:"status"`
	HasResults bool                  `json:"has_results"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

type AnalysisResultResponse struct {
	AnalysisID    string                `json:"analysis_id"`
	Status        models.AnalysisStatus `json:"status"`
	Meta          json.RawMessage       `json:"meta,omitempty"`
	Transcription *string               `json:"transcription,omitempty"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type analysisService struct {
	analysisRepo repositories.AnalysisRepository
	mediaRepo    repositories.MediaRepository
	queue        AnalysisQueue
}

func NewAnalysisService(analysisRepo repositories.AnalysisRepository, mediaRepo repositories.MediaRepository, q AnalysisQueue) AnalysisService {
	return &analysisService{
		analysisRepo: analysisRepo,
		mediaRepo:    mediaRepo,
		queue:        q,
	}
}

func (s *analysisService) StartAnalysis(ctx context.Context, mediaID string) (*StartAnalysisResponse, error) {
	if _, err := s.mediaRepo.GetMediaByID(ctx, mediaID); err != nil {
		return nil, fmt.Errorf("media lookup failed: %w", err)
	}

	// Best-effort duplicate suppression: a processing or done analysis
	// for the same media short-circuits. The read-then-write check is
	// racy under concurrent triggers; the worker aborts cleanly when it
	// loses the race.
	existing, err := s.analysisRepo.GetActiveAnalysis(ctx, mediaID)
	if err == nil {
		message := "Analysis already exists for this media"
		if existing.Status == models.AnalysisStatusProcessing {
			message = "Analysis is already in progress"
		}
		return &StartAnalysisResponse{
			AnalysisID: existing.ID,
			Status:     existing.Status,
			Message:    message,
		}, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing analysis: %w", err)
	}

	analysis := &models.Analysis{
		MediaID: mediaID,
		Status:  models.AnalysisStatusProcessing,
	}
	if err := s.analysisRepo.CreateAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	job := queue.AnalysisJob{AnalysisID: analysis.ID, MediaID: mediaID}
	if err := s.queue.EnqueueAnalysis(ctx, job); err != nil {
		// Do not leave an orphaned processing row behind a job that was
		// never scheduled.
		if failErr := s.analysisRepo.FailAnalysis(ctx, analysis.ID, "failed to schedule analysis"); failErr != nil {
			log.Printf("failed to mark unscheduled analysis %s as failed: %v", analysis.ID, failErr)
		}
		return nil, fmt.Errorf("failed to enqueue analysis: %w", err)
	}

	return &StartAnalysisResponse{
		AnalysisID: analysis.ID,
		Status:     models.AnalysisStatusProcessing,
		Message:    "Analysis started in background",
	}, nil
}

func (s *analysisService) GetAnalysisStatus(ctx context.Context, mediaID string) (*AnalysisStatusResponse, error) {
	analysis, err := s.analysisRepo.GetLatestAnalysisByMediaID(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("analysis lookup failed: %w", err)
	}

	return &AnalysisStatusResponse{
		AnalysisID: analysis.ID,
		Status:     analysis.Status,
		HasResults: analysis.Status == models.AnalysisStatusDone && analysis.Meta != nil,
		CreatedAt:  analysis.CreatedAt,
		UpdatedAt:  analysis.UpdatedAt,
	}, nil
}

func (s *analysisService) GetAnalysisResult(ctx context.Context, mediaID string) (*AnalysisResultResponse, error) {
	analysis, err := s.analysisRepo.GetLatestAnalysisByMediaID(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("analysis lookup failed: %w", err)
	}

	resp := &AnalysisResultResponse{
		AnalysisID: analysis.ID,
		Status:     analysis.Status,
		CreatedAt:  analysis.CreatedAt,
		UpdatedAt:  analysis.UpdatedAt,
	}

	switch analysis.Status {
	case models.AnalysisStatusDone:
		resp.Meta = analysis.Meta
		resp.Transcription = analysis.Transcription
	case models.AnalysisStatusFailed:
		resp.Error = "Unknown error"
		var failure models.AnalysisError
		if analysis.Meta != nil && json.Unmarshal(analysis.Meta, &failure) == nil && failure.Error != "" {
			resp.Error = failure.Error
		}
	}

	return resp, nil
}
