package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxSegmentWords forces a transcript line break every 30 words,
// independent of sentence or silence boundaries.
const maxSegmentWords = 30

// WordTiming is one word with its start/end offsets in seconds, as
// returned by the speech-recognition service.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type transcriptionResponse struct {
	Text  string       `json:"text"`
	Words []WordTiming `json:"words"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GroqTranscriber sends audio to Groq's Whisper endpoint with
// word-level timestamps and rebuilds the segmented transcript locally.
type GroqTranscriber struct {
	apiKey     string
	baseURL    string
	model      string
	language   string
	pool       *WorkerPool
	httpClient *http.Client
}

func NewGroqTranscriber(apiKey, baseURL, model, language string, pool *WorkerPool) *GroqTranscriber {
	return &GroqTranscriber{
		apiKey:   apiKey,
		baseURL:  baseURL,
		model:    model,
		language: language,
		pool:     pool,
		// Long recordings take minutes to transcribe.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (t *GroqTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()

	var response *transcriptionResponse
	err := t.pool.Do(ctx, func() error {
		var reqErr error
		response, reqErr = t.requestTranscription(ctx, audioPath)
		return reqErr
	})
	if err != nil {
		return "", err
	}

	log.Printf("Transcription took %v (%d words)", time.Since(start), len(response.Words))

	return formatTranscript(buildSegments(response.Words)), nil
}

func (t *GroqTranscriber) requestTranscription(ctx context.Context, audioPath string) (*transcriptionResponse, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}

	writer.WriteField("model", t.model)
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("timestamp_granularities[]", "word")
	writer.WriteField("language", t.language)
	writer.WriteField("temperature", "0")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response transcriptionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("transcription API error: %s", response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription API error: HTTP %d", resp.StatusCode)
	}

	return &response, nil
}

type transcriptSegment struct {
	words []WordTiming
	start float64
	end   float64
}

func (s transcriptSegment) text() string {
	parts := make([]string, len(s.words))
	for i, w := range s.words {
		parts[i] = strings.TrimSpace(w.Word)
	}
	return strings.Join(parts, " ")
}

// buildSegments greedily accumulates consecutive words, starting a new
// segment once the current one holds maxSegmentWords. Segment start and
// end come from the first and last word.
func buildSegments(words []WordTiming) []transcriptSegment {
	var segments []transcriptSegment
	var current *transcriptSegment

	for _, word := range words {
		if current == nil || len(current.words) >= maxSegmentWords {
			if current != nil {
				segments = append(segments, *current)
			}
			current = &transcriptSegment{
				words: []WordTiming{word},
				start: word.Start,
				end:   word.End,
			}
			continue
		}

		current.words = append(current.words, word)
		current.end = word.End
	}

	if current != nil {
		segments = append(segments, *current)
	}

	return segments
}

func formatTranscript(segments []transcriptSegment) string {
	var b strings.Builder
	for _, segment := range segments {
		fmt.Fprintf(&b, "[%.2fs] %s\n", segment.start, segment.text())
	}
	return b.String()
}
