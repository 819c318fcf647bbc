package analyzer

import (
	"context"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

// ObjectStore is the slice of the content store the pipeline needs:
// signed reads for fetching sources, direct writes for thumbnails.
type ObjectStore interface {
	SignedDownloadURL(ctx context.Context, objectPath string) (string, error)
	Upload(ctx context.Context, localPath, destPath, contentType string) (string, error)
}

// Fetcher retrieves a stored object into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, objectPath, localPath string) error
}

// AudioExtractor strips the audio track out of a video container.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// Transcriber turns a local audio file into a time-annotated transcript,
// one "[<seconds>s] <text>" segment per line.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Synthesizer turns a transcript into the structured analysis payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, transcript string) (*models.StructuredAnalysis, error)
}

// Enricher fills in cover and chapter thumbnails for video sources.
// It never fails the job: a chapter that cannot be captured keeps an
// explicit null thumbnail.
type Enricher interface {
	Enrich(ctx context.Context, videoPath string, analysis *models.StructuredAnalysis)
}

// CompletionNotifier delivers the best-effort "analysis ready" message.
type CompletionNotifier interface {
	NotifyAnalysisComplete(ctx context.Context, userID, title string)
}
