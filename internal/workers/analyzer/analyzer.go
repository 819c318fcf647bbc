package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
)

// JobQueue is the slice of the queue the orchestrator needs: draining
// jobs and emitting progress events.
type JobQueue interface {
	DequeueAnalysis(ctx context.Context) (*queue.AnalysisJob, error)
	PublishAnalysisUpdate(ctx context.Context, analysisID string, update interface{}) error
}

// Deps carries everything the orchestrator needs. Clients are
// constructed at startup and injected; nothing is created at import
// time.
type Deps struct {
	AnalysisRepo repositories.AnalysisRepository
	MediaRepo    repositories.MediaRepository
	Queue        JobQueue
	Fetcher      Fetcher
	Audio        AudioExtractor
	Transcriber  Transcriber
	Synthesizer  Synthesizer
	Enricher     Enricher
	Notifier     CompletionNotifier
	TempDir      string
	Workers      int
}

// Analyzer drives one analysis job through the fixed stage order:
// fetch, extract audio (video only), transcribe, synthesize, enrich
// with thumbnails (video only), persist, notify. The first failing
// stage short-circuits the run into the failed state.
type Analyzer struct {
	analysisRepo repositories.AnalysisRepository
	mediaRepo    repositories.MediaRepository
	queue        JobQueue
	fetcher      Fetcher
	audio        AudioExtractor
	transcriber  Transcriber
	synthesizer  Synthesizer
	enricher     Enricher
	notifier     CompletionNotifier
	tempDir      string
	workers      int
}

func New(deps Deps) *Analyzer {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	tempDir := deps.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "media-analysis")
	}

	return &Analyzer{
		analysisRepo: deps.AnalysisRepo,
		mediaRepo:    deps.MediaRepo,
		queue:        deps.Queue,
		fetcher:      deps.Fetcher,
		audio:        deps.Audio,
		transcriber:  deps.Transcriber,
		synthesizer:  deps.Synthesizer,
		enricher:     deps.Enricher,
		notifier:     deps.Notifier,
		tempDir:      tempDir,
		workers:      workers,
	}
}

func (a *Analyzer) Run(ctx context.Context) {
	if err := a.validateSystemRequirements(); err != nil {
		log.Fatalf("System requirements not met: %v", err)
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			a.workerLoop(ctx, workerID)
		}(i + 1)
	}

	<-ctx.Done()
	log.Println("Shutting down analysis workers...")
	wg.Wait()
	log.Println("All analysis workers stopped")
}

func (a *Analyzer) workerLoop(ctx context.Context, workerID int) {
	log.Printf("Analysis worker %d ready", workerID)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Analysis worker %d shutting down", workerID)
			return
		default:
			job, err := a.queue.DequeueAnalysis(ctx)
			if err != nil {
				if !errors.Is(err, queue.ErrQueueEmpty) && ctx.Err() == nil {
					log.Printf("Worker %d queue error: %v", workerID, err)
					time.Sleep(500 * time.Millisecond)
				}
				continue
			}

			if job != nil {
				start := time.Now()
				log.Printf("Worker %d: processing analysis %s for media %s", workerID, job.AnalysisID, job.MediaID)

				if err := a.ProcessJob(ctx, job); err != nil {
					log.Printf("Worker %d: analysis %s failed: %v", workerID, job.AnalysisID, err)
				} else {
					log.Printf("Worker %d: analysis %s finished in %v", workerID, job.AnalysisID, time.Since(start))
				}
			}
		}
	}
}

// ProcessJob runs the whole pipeline for one enqueued job. The returned
// error is for process-level logging; the persisted failed state is
// already written by the time it surfaces.
func (a *Analyzer) ProcessJob(ctx context.Context, job *queue.AnalysisJob) error {
	analysis, err := a.analysisRepo.GetProcessingAnalysis(ctx, job.MediaID)
	if errors.Is(err, repositories.ErrNotFound) {
		// Scheduling race or duplicate trigger; nothing to do.
		log.Printf("No processing analysis for media %s, skipping job", job.MediaID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load analysis: %w", err)
	}

	media, err := a.mediaRepo.GetMediaByID(ctx, job.MediaID)
	if err != nil {
		return a.failAnalysis(ctx, analysis.ID, "load_media", err)
	}

	workDir, err := os.MkdirTemp(a.tempDir, "analysis-")
	if err != nil {
		return a.failAnalysis(ctx, analysis.ID, "workspace", err)
	}
	// The scratch workspace must not outlive the job on any exit path.
	defer os.RemoveAll(workDir)

	a.publishProgress(ctx, analysis.ID, "downloading", 10)

	extension := "mp3"
	if media.Type == models.MediaTypeVideo {
		extension = "mp4"
	}
	mediaPath := filepath.Join(workDir, "source."+extension)

	if err := a.fetcher.Fetch(ctx, media.URL, mediaPath); err != nil {
		return a.failAnalysis(ctx, analysis.ID, "fetch", err)
	}

	audioPath := mediaPath
	if media.Type == models.MediaTypeVideo {
		a.publishProgress(ctx, analysis.ID, "extracting_audio", 25)
		audioPath = filepath.Join(workDir, "audio.mp3")
		if err := a.audio.Extract(ctx, mediaPath, audioPath); err != nil {
			return a.failAnalysis(ctx, analysis.ID, "extract_audio", err)
		}
	}

	a.publishProgress(ctx, analysis.ID, "transcribing", 50)
	transcript, err := a.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return a.failAnalysis(ctx, analysis.ID, "transcribe", err)
	}

	a.publishProgress(ctx, analysis.ID, "summarizing", 70)
	result, err := a.synthesizer.Synthesize(ctx, transcript)
	if err != nil {
		return a.failAnalysis(ctx, analysis.ID, "synthesize", err)
	}

	if media.Type == models.MediaTypeVideo {
		a.publishProgress(ctx, analysis.ID, "extracting_thumbnails", 85)
		a.enricher.Enrich(ctx, mediaPath, result)
	} else {
		// Audio sources get explicit null thumbnails, no extraction.
		result.ThumbnailURL = nil
		for _, chapter := range result.Chapters {
			chapter.ThumbnailURL = nil
		}
	}

	meta, err := json.Marshal(result)
	if err != nil {
		return a.failAnalysis(ctx, analysis.ID, "persist", err)
	}

	if err := a.mediaRepo.UpdateMediaDetails(ctx, media.ID, &result.VideoTitle, &result.Description, result.ThumbnailURL); err != nil {
		return a.failAnalysis(ctx, analysis.ID, "persist", err)
	}

	if err := a.analysisRepo.CompleteAnalysis(ctx, analysis.ID, transcript, meta); err != nil {
		return a.failAnalysis(ctx, analysis.ID, "persist", err)
	}

	a.publishProgress(ctx, analysis.ID, "completed", 100)
	a.notifier.NotifyAnalysisComplete(ctx, media.UserID, result.VideoTitle)

	return nil
}

// failAnalysis is the single boundary that turns any stage error into
// the persisted failed state, then re-surfaces it for logging.
func (a *Analyzer) failAnalysis(ctx context.Context, analysisID, stage string, stageErr error) error {
	log.Printf("Analysis %s failed at %s: %v", analysisID, stage, stageErr)

	if err := a.analysisRepo.FailAnalysis(ctx, analysisID, stageErr.Error()); err != nil {
		log.Printf("Failed to record failure for analysis %s: %v", analysisID, err)
	}

	a.publishProgress(ctx, analysisID, stage+"_failed", 0)
	return fmt.Errorf("%s: %w", stage, stageErr)
}

func (a *Analyzer) publishProgress(ctx context.Context, analysisID, stage string, progress int) {
	if a.queue == nil {
		return
	}

	update := map[string]interface{}{
		"analysis_id": analysisID,
		"status":      stage,
		"progress":    progress,
		"timestamp":   time.Now().Unix(),
	}

	if err := a.queue.PublishAnalysisUpdate(ctx, analysisID, update); err != nil {
		log.Printf("Failed to publish progress update: %v", err)
	}
}

func (a *Analyzer) validateSystemRequirements() error {
	if err := exec.Command("ffmpeg", "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH")
	}

	if err := os.MkdirAll(a.tempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory %s: %w", a.tempDir, err)
	}

	testFile := filepath.Join(a.tempDir, "test.tmp")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("temp directory is not writable: %s", a.tempDir)
	}
	os.Remove(testFile)

	log.Println("System requirements validated")
	return nil
}
