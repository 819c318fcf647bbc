package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

const analysisSystemPrompt = `Analyze the transcription and return a JSON object with the following fields:
- video_title: A concise, descriptive title for the content
- description: A brief overview of the content
- chapters: An array of chapters, each containing:
  - chapter_title: A concise title for the chapter
  - timestamp: The timestamp in [XX.XXs] format where the chapter starts
  - content: A detailed summary of what was discussed
- final_decision: The main conclusion or decision reached
- action_items: A list of concrete next steps or tasks
- summary: A comprehensive summary of the entire content

Important: Preserve the exact timestamps from the transcription.`

// OpenAISynthesizer asks a completion model for the structured analysis
// as a single JSON object and decodes it into typed form. Malformed
// output fails the job; there is no repair or re-prompt.
type OpenAISynthesizer struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAISynthesizer(apiKey, baseURL, model string) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, transcript string) (*models.StructuredAnalysis, error) {
	requestBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": analysisSystemPrompt},
			{"role": "user", "content": transcript},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("completion API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response from completion API")
	}

	return ParseStructuredAnalysis(response.Choices[0].Message.Content)
}

// ParseStructuredAnalysis validates the model output at the provider
// boundary, rejecting malformed shapes immediately.
func ParseStructuredAnalysis(content string) (*models.StructuredAnalysis, error) {
	analysis := &models.StructuredAnalysis{}
	if err := json.Unmarshal([]byte(content), analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis JSON: %w", err)
	}
	return analysis, nil
}
