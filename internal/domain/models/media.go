package models

import (
	"time"
)

// Media is a stored recording. URL holds the bucket-relative object
// path; the public variants are derived by the storage layer. Title,
// description and thumbnail are backfilled by the analysis pipeline
// once a run completes.
type Media struct {
	ID           string       `json:"id" db:"id"`
	UserID       string       `json:"user_id" db:"user_id"`
	Type         MediaType    `json:"type" db:"type"`
	UploadStatus UploadStatus `json:"upload_status" db:"upload_status"`
	URL          string       `json:"url" db:"url"`
	Title        *string      `json:"title,omitempty" db:"title"`
	Description  *string      `json:"description,omitempty" db:"description"`
	ThumbnailURL *string      `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Duration     *int         `json:"duration,omitempty" db:"duration"`
	Language     *string      `json:"language,omitempty" db:"language"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)
