package models

import "time"

const DefaultTemplateType = "plain"

type Card struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"owner_id"`
	Title        *string    `json:"title"`
	ContentMD    string     `json:"content_md"`
	TemplateType string     `json:"template_type"` // plain, flashcard, checklist ...
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Card) Deleted() *time.Time { return c.DeletedAt }

// CardVersion is an immutable snapshot of a card's content.
type CardVersion struct {
	ID            int64     `json:"id"`
	CardID        int64     `json:"card_id"`
	VersionNumber int       `json:"version_number"`
	ContentMD     string    `json:"content_md"`
	CreatedAt     time.Time `json:"created_at"`
}

// CardFilter narrows a card listing. Zero values mean "no filter".
type CardFilter struct {
	OwnerID      int64
	TemplateType string
	Tag          string
	Limit        int
	Offset       int
}
