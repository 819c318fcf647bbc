package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// FFmpegAudioExtractor shells out to ffmpeg to strip a video container
// down to its audio track. The subprocess is blocking, so every
// invocation goes through the shared worker pool.
type FFmpegAudioExtractor struct {
	pool *WorkerPool
}

func NewAudioExtractor(pool *WorkerPool) *FFmpegAudioExtractor {
	return &FFmpegAudioExtractor{pool: pool}
}

func (e *FFmpegAudioExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	return e.pool.Do(ctx, func() error {
		cmd := exec.CommandContext(ctx,
			"ffmpeg",
			"-i", videoPath,
			"-q:a", "0",
			"-map", "a",
			"-y",
			audioPath,
		)

		output, err := cmd.CombinedOutput()
		if err != nil {
			log.Printf("ffmpeg audio extraction error: %v, output: %s", err, string(output))
			return fmt.Errorf("audio extraction failed: %w: %s", err, string(output))
		}

		if _, err := os.Stat(audioPath); os.IsNotExist(err) {
			return fmt.Errorf("audio file was not created: %s", audioPath)
		}

		return nil
	})
}
