package models

import (
	"encoding/json"
	"time"
)

// Analysis is one execution record of the media analysis pipeline.
// A closed analysis (done or failed) is never reopened; a re-run
// creates a fresh row for the same media.
type Analysis struct {
	ID            string          `json:"id" db:"id"`
	MediaID       string          `json:"media_id" db:"media_id"`
	Status        AnalysisStatus  `json:"status" db:"status"`
	Transcription *string         `json:"transcription,omitempty" db:"transcription"`
	Meta          json.RawMessage `json:"meta,omitempty" db:"meta"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// StructuredAnalysis is the result payload persisted into Analysis.Meta
// once a pipeline run succeeds. The chapter order is the order the
// model returned them in and is treated as chronological.
type StructuredAnalysis struct {
	VideoTitle    string     `json:"video_title"`
	Description   string     `json:"description"`
	Chapters      []*Chapter `json:"chapters"`
	FinalDecision string     `json:"final_decision"`
	ActionItems   []string   `json:"action_items"`
	Summary       string     `json:"summary"`
	// ThumbnailURL is the cover frame. Explicitly null for audio sources.
	ThumbnailURL *string `json:"thumbnail_url"`
}

type Chapter struct {
	ChapterTitle string `json:"chapter_title"`
	// Timestamp is the literal "[XX.XXs]" marker carried over verbatim
	// from the transcript.
	Timestamp    string  `json:"timestamp"`
	Content      string  `json:"content"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type AnalysisError struct {
	Error string `json:"error"`
}

type AnalysisStatus string

const (
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusDone       AnalysisStatus = "done"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)
