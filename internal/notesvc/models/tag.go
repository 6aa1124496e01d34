package models

import "time"

const MaxTagNameLength = 64

type Tag struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	CreatedAt     time.Time `json:"-"`
}
