package models

import (
	"time"
)

type User struct {
	ID                 string     `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	FullName           *string    `json:"full_name,omitempty" db:"full_name"`
	AvatarURL          *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	PhoneNumber        *string    `json:"phone_number,omitempty" db:"phone_number"`
	NotificationActive bool       `json:"notification_active" db:"notification_active"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	LastLogin          *time.Time `json:"last_login,omitempty" db:"last_login"`
}
