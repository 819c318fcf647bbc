package models

import (
	"time"
)

// ChatMessage is one turn of the per-media conversation. The insights
// role holds the analysis summary seeded into the thread once, so the
// assistant always answers with the meeting context in view.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	MediaID   string    `json:"media_id" db:"media_id"`
	UserType  ChatRole  `json:"user_type" db:"user_type"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleInsights  ChatRole = "insights"
)
