package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/queue"
)

type fakeAnalysisRepo struct {
	analysis *models.Analysis

	completedID            string
	completedTranscription string
	completedMeta          json.RawMessage

	failedID      string
	failedMessage string

	completed chan string
}

func (r *fakeAnalysisRepo) CreateAnalysis(_ context.Context, _ *models.Analysis) error {
	return nil
}

func (r *fakeAnalysisRepo) GetAnalysisByID(_ context.Context, _ string) (*models.Analysis, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeAnalysisRepo) GetLatestAnalysisByMediaID(_ context.Context, _ string) (*models.Analysis, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeAnalysisRepo) GetProcessingAnalysis(_ context.Context, mediaID string) (*models.Analysis, error) {
	if r.analysis == nil || r.analysis.MediaID != mediaID {
		return nil, repositories.ErrNotFound
	}
	return r.analysis, nil
}

func (r *fakeAnalysisRepo) GetActiveAnalysis(_ context.Context, _ string) (*models.Analysis, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeAnalysisRepo) CompleteAnalysis(_ context.Context, id string, transcription string, meta json.RawMessage) error {
	r.completedID = id
	r.completedTranscription = transcription
	r.completedMeta = meta
	if r.completed != nil {
		r.completed <- id
	}
	return nil
}

func (r *fakeAnalysisRepo) FailAnalysis(_ context.Context, id string, errMessage string) error {
	r.failedID = id
	r.failedMessage = errMessage
	return nil
}

type fakeMediaRepo struct {
	media *models.Media

	detailsID    string
	detailsTitle *string
	detailsThumb *string
}

func (r *fakeMediaRepo) CreateMedia(_ context.Context, _ *models.Media) error { return nil }

func (r *fakeMediaRepo) GetMediaByID(_ context.Context, id string) (*models.Media, error) {
	if r.media == nil || r.media.ID != id {
		return nil, repositories.ErrNotFound
	}
	return r.media, nil
}

func (r *fakeMediaRepo) GetUserMedia(_ context.Context, _ string) ([]*models.Media, error) {
	return nil, nil
}

func (r *fakeMediaRepo) UpdateMediaStatus(_ context.Context, _ string, _ models.UploadStatus) error {
	return nil
}

func (r *fakeMediaRepo) UpdateMediaDetails(_ context.Context, id string, title, _ *string, thumbnailURL *string) error {
	r.detailsID = id
	r.detailsTitle = title
	r.detailsThumb = thumbnailURL
	return nil
}

func (r *fakeMediaRepo) UpdateMediaMetadata(_ context.Context, _ string, _ *int, _ *string) error {
	return nil
}

type fakeFetcher struct {
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _, localPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(localPath, []byte("media bytes"), 0644)
}

type fakeAudio struct {
	err   error
	calls int
}

func (f *fakeAudio) Extract(_ context.Context, _, audioPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(audioPath, []byte("audio bytes"), 0644)
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	return f.transcript, f.err
}

type fakeSynthesizer struct {
	result *models.StructuredAnalysis
	err    error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string) (*models.StructuredAnalysis, error) {
	return f.result, f.err
}

type fakeEnricher struct {
	calls int
	thumb string
}

func (f *fakeEnricher) Enrich(_ context.Context, _ string, analysis *models.StructuredAnalysis) {
	f.calls++
	analysis.ThumbnailURL = &f.thumb
	for _, chapter := range analysis.Chapters {
		url := f.thumb
		chapter.ThumbnailURL = &url
	}
}

type fakeNotifier struct {
	calls  int
	userID string
	title  string
}

func (f *fakeNotifier) NotifyAnalysisComplete(_ context.Context, userID, title string) {
	f.calls++
	f.userID = userID
	f.title = title
}

type pipelineFixture struct {
	analyzer     *Analyzer
	analysisRepo *fakeAnalysisRepo
	mediaRepo    *fakeMediaRepo
	fetcher      *fakeFetcher
	audio        *fakeAudio
	transcriber  *fakeTranscriber
	synthesizer  *fakeSynthesizer
	enricher     *fakeEnricher
	notifier     *fakeNotifier
	tempDir      string
}

func newPipelineFixture(t *testing.T, mediaType models.MediaType) *pipelineFixture {
	t.Helper()

	f := &pipelineFixture{
		analysisRepo: &fakeAnalysisRepo{
			analysis: &models.Analysis{
				ID:      "analysis-1",
				MediaID: "media-1",
				Status:  models.AnalysisStatusProcessing,
			},
		},
		mediaRepo: &fakeMediaRepo{
			media: &models.Media{
				ID:     "media-1",
				UserID: "user-1",
				Type:   mediaType,
				URL:    "user-1/recording",
			},
		},
		fetcher:     &fakeFetcher{},
		audio:       &fakeAudio{},
		transcriber: &fakeTranscriber{transcript: "[0.00s] hello everyone\n"},
		synthesizer: &fakeSynthesizer{
			result: &models.StructuredAnalysis{
				VideoTitle:  "Weekly sync",
				Description: "Team status updates.",
				Chapters: []*models.Chapter{
					{ChapterTitle: "Opening", Timestamp: "[0.00s]", Content: "Greetings."},
				},
				FinalDecision: "Continue as planned.",
				ActionItems:   []string{"Send minutes"},
				Summary:       "A routine weekly sync.",
			},
		},
		enricher: &fakeEnricher{thumb: "http://store/frames/cover.jpg"},
		notifier: &fakeNotifier{},
		tempDir:  t.TempDir(),
	}

	f.analyzer = New(Deps{
		AnalysisRepo: f.analysisRepo,
		MediaRepo:    f.mediaRepo,
		Fetcher:      f.fetcher,
		Audio:        f.audio,
		Transcriber:  f.transcriber,
		Synthesizer:  f.synthesizer,
		Enricher:     f.enricher,
		Notifier:     f.notifier,
		TempDir:      f.tempDir,
		Workers:      1,
	})
	return f
}

func (f *pipelineFixture) job() *queue.AnalysisJob {
	return &queue.AnalysisJob{AnalysisID: "analysis-1", MediaID: "media-1"}
}

func assertScratchCleaned(t *testing.T, tempDir string) {
	t.Helper()
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch workspace left behind: %d entries in %s", len(entries), tempDir)
	}
}

func TestProcessJobVideoRoundTrip(t *testing.T) {
	f := newPipelineFixture(t, models.MediaTypeVideo)

	if err := f.analyzer.ProcessJob(context.Background(), f.job()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.audio.calls != 1 {
		t.Errorf("audio extraction called %d times, want 1", f.audio.calls)
	}
	if f.enricher.calls != 1 {
		t.Errorf("enricher called %d times, want 1", f.enricher.calls)
	}
	if f.analysisRepo.completedID != "analysis-1" {
		t.Fatalf("analysis not completed: %q", f.analysisRepo.completedID)
	}
	if f.analysisRepo.failedID != "" {
		t.Errorf("analysis unexpectedly failed: %q", f.analysisRepo.failedMessage)
	}
	if f.analysisRepo.completedTranscription != "[0.00s] hello everyone\n" {
		t.Errorf("transcription = %q", f.analysisRepo.completedTranscription)
	}

	var meta models.StructuredAnalysis
	if err := json.Unmarshal(f.analysisRepo.completedMeta, &meta); err != nil {
		t.Fatalf("meta is not valid JSON: %v", err)
	}
	if meta.VideoTitle != "Weekly sync" {
		t.Errorf("meta video_title = %q", meta.VideoTitle)
	}
	if meta.ThumbnailURL == nil || *meta.ThumbnailURL != "http://store/frames/cover.jpg" {
		t.Errorf("meta thumbnail_url = %v", meta.ThumbnailURL)
	}
	if len(meta.ActionItems) != 1 || meta.FinalDecision == "" || meta.Summary == "" {
		t.Error("meta is missing structured fields")
	}

	if f.mediaRepo.detailsID != "media-1" {
		t.Error("media details were not backfilled")
	}
	if f.mediaRepo.detailsTitle == nil || *f.mediaRepo.detailsTitle != "Weekly sync" {
		t.Errorf("backfilled title = %v", f.mediaRepo.detailsTitle)
	}

	if f.notifier.calls != 1 || f.notifier.userID != "user-1" || f.notifier.title != "Weekly sync" {
		t.Errorf("notifier = %+v", f.notifier)
	}

	assertScratchCleaned(t, f.tempDir)
}

func TestProcessJobAudioSkipsVideoStages(t *testing.T) {
	f := newPipelineFixture(t, models.MediaTypeAudio)

	if err := f.analyzer.ProcessJob(context.Background(), f.job()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.audio.calls != 0 {
		t.Errorf("audio extraction ran %d times for an audio source", f.audio.calls)
	}
	if f.enricher.calls != 0 {
		t.Errorf("enricher ran %d times for an audio source", f.enricher.calls)
	}

	var meta models.StructuredAnalysis
	if err := json.Unmarshal(f.analysisRepo.completedMeta, &meta); err != nil {
		t.Fatalf("meta is not valid JSON: %v", err)
	}
	if meta.ThumbnailURL != nil {
		t.Error("audio analysis should persist a null cover thumbnail")
	}
	for i, chapter := range meta.Chapters {
		if chapter.ThumbnailURL != nil {
			t.Errorf("chapter %d should persist a null thumbnail", i)
		}
	}

	// The null must be present in the serialized JSON, not omitted.
	var raw map[string]interface{}
	if err := json.Unmarshal(f.analysisRepo.completedMeta, &raw); err != nil {
		t.Fatal(err)
	}
	if value, ok := raw["thumbnail_url"]; !ok || value != nil {
		t.Errorf("serialized thumbnail_url = %v (present=%v), want explicit null", value, ok)
	}
}

func TestProcessJobStageFailuresMarkAnalysisFailed(t *testing.T) {
	stageErr := fmt.Errorf("stage blew up")

	tests := []struct {
		name  string
		setup func(*pipelineFixture)
	}{
		{"fetch", func(f *pipelineFixture) { f.fetcher.err = stageErr }},
		{"extract_audio", func(f *pipelineFixture) { f.audio.err = stageErr }},
		{"transcribe", func(f *pipelineFixture) { f.transcriber.err = stageErr }},
		{"synthesize", func(f *pipelineFixture) { f.synthesizer.err = stageErr; f.synthesizer.result = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, models.MediaTypeVideo)
			tt.setup(f)

			err := f.analyzer.ProcessJob(context.Background(), f.job())
			if err == nil {
				t.Fatal("expected error")
			}
			if f.analysisRepo.failedID != "analysis-1" {
				t.Error("analysis was not marked failed")
			}
			if f.analysisRepo.failedMessage != stageErr.Error() {
				t.Errorf("failure message = %q", f.analysisRepo.failedMessage)
			}
			if f.analysisRepo.completedID != "" {
				t.Error("analysis must not complete after a stage failure")
			}
			if f.notifier.calls != 0 {
				t.Error("failed runs must not notify")
			}
			assertScratchCleaned(t, f.tempDir)
		})
	}
}

func TestProcessJobSkipsWhenNoProcessingAnalysis(t *testing.T) {
	f := newPipelineFixture(t, models.MediaTypeVideo)
	f.analysisRepo.analysis = nil

	if err := f.analyzer.ProcessJob(context.Background(), f.job()); err != nil {
		t.Fatalf("stale job should be dropped cleanly: %v", err)
	}
	if f.fetcher.calls != 0 {
		t.Error("no stage should run for a stale job")
	}
	if f.analysisRepo.failedID != "" || f.analysisRepo.completedID != "" {
		t.Error("stale job must not touch analysis state")
	}
}

// scriptedQueue serves one empty poll, then the job, then blocks until
// shutdown like a real blocking dequeue.
type scriptedQueue struct {
	job   *queue.AnalysisJob
	calls int32
}

func (q *scriptedQueue) DequeueAnalysis(ctx context.Context) (*queue.AnalysisJob, error) {
	switch atomic.AddInt32(&q.calls, 1) {
	case 1:
		return nil, queue.ErrQueueEmpty
	case 2:
		return q.job, nil
	default:
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func (q *scriptedQueue) PublishAnalysisUpdate(_ context.Context, _ string, _ interface{}) error {
	return nil
}

func TestWorkerLoopTreatsEmptyPollsAsIdle(t *testing.T) {
	f := newPipelineFixture(t, models.MediaTypeAudio)
	f.analysisRepo.completed = make(chan string, 1)

	sq := &scriptedQueue{job: f.job()}
	worker := New(Deps{
		AnalysisRepo: f.analysisRepo,
		MediaRepo:    f.mediaRepo,
		Queue:        sq,
		Fetcher:      f.fetcher,
		Audio:        f.audio,
		Transcriber:  f.transcriber,
		Synthesizer:  f.synthesizer,
		Enricher:     f.enricher,
		Notifier:     f.notifier,
		TempDir:      f.tempDir,
		Workers:      1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.workerLoop(ctx, 1)

	select {
	case id := <-f.analysisRepo.completed:
		if id != "analysis-1" {
			t.Errorf("completed analysis %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job after an empty poll was never processed")
	}

	if calls := atomic.LoadInt32(&sq.calls); calls < 2 {
		t.Errorf("dequeue called %d times, want at least 2", calls)
	}
}

func TestProcessJobFailsWhenMediaMissing(t *testing.T) {
	f := newPipelineFixture(t, models.MediaTypeVideo)
	f.mediaRepo.media = nil

	if err := f.analyzer.ProcessJob(context.Background(), f.job()); err == nil {
		t.Fatal("expected error")
	}
	if f.analysisRepo.failedID != "analysis-1" {
		t.Error("analysis should be failed when its media row is gone")
	}
}
