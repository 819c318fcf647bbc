package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

// coverFrameOffsetSeconds is where the cover thumbnail is taken from.
const coverFrameOffsetSeconds = 10.0

// FrameExtractor decodes exactly one frame at the given offset.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, offsetSeconds float64, outputPath string) error
}

// FFmpegFrameExtractor seeks the decoder to the target offset and grabs
// a single frame.
type FFmpegFrameExtractor struct{}

func (FFmpegFrameExtractor) ExtractFrame(ctx context.Context, videoPath string, offsetSeconds float64, outputPath string) error {
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-ss", fmt.Sprintf("%.3f", offsetSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("frame extraction failed: %w: %s", err, string(output))
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return fmt.Errorf("frame was not created: %s", outputPath)
	}

	return nil
}

// FrameEnricher captures a cover frame and one frame per chapter and
// uploads them. Every frame is independent: one failure downgrades that
// single thumbnail to null without touching its siblings or the job.
type FrameEnricher struct {
	store     ObjectStore
	extractor FrameExtractor
	pool      *WorkerPool
}

func NewFrameEnricher(store ObjectStore, extractor FrameExtractor, pool *WorkerPool) *FrameEnricher {
	return &FrameEnricher{
		store:     store,
		extractor: extractor,
		pool:      pool,
	}
}

func (e *FrameEnricher) Enrich(ctx context.Context, videoPath string, analysis *models.StructuredAnalysis) {
	analysis.ThumbnailURL = e.captureFrame(ctx, videoPath, coverFrameOffsetSeconds)

	for i, chapter := range analysis.Chapters {
		offset, err := ParseChapterTimestamp(chapter.Timestamp)
		if err != nil {
			// Keep the chapter; just record that no thumbnail exists.
			log.Printf("Skipping thumbnail for chapter %d: %v", i, err)
			chapter.ThumbnailURL = nil
			continue
		}

		chapter.ThumbnailURL = e.captureFrame(ctx, videoPath, offset)
	}
}

// captureFrame extracts one frame into a uniquely named temp file next
// to the video, uploads it under a fresh key, and removes the temp file
// regardless of upload outcome. Returns nil when anything goes wrong.
func (e *FrameEnricher) captureFrame(ctx context.Context, videoPath string, offsetSeconds float64) *string {
	framePath := filepath.Join(filepath.Dir(videoPath), fmt.Sprintf("frame_%s.jpg", uuid.New().String()))

	err := e.pool.Do(ctx, func() error {
		return e.extractor.ExtractFrame(ctx, videoPath, offsetSeconds, framePath)
	})
	if err != nil {
		log.Printf("Failed to extract frame at %.2fs: %v", offsetSeconds, err)
		return nil
	}
	defer os.Remove(framePath)

	frameURL, err := e.store.Upload(ctx, framePath, fmt.Sprintf("frames/%s.jpg", uuid.New().String()), "image/jpeg")
	if err != nil {
		log.Printf("Failed to upload frame at %.2fs: %v", offsetSeconds, err)
		return nil
	}

	return &frameURL
}

// ParseChapterTimestamp parses the "[XX.XXs]" literal carried in
// chapter timestamps into seconds.
func ParseChapterTimestamp(timestamp string) (float64, error) {
	trimmed := strings.Trim(strings.TrimSpace(timestamp), "[]s")
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable chapter timestamp %q", timestamp)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative chapter timestamp %q", timestamp)
	}
	return seconds, nil
}
