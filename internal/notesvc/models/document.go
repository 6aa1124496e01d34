package models

import "time"

const (
	DefaultGridRows = 3
	DefaultGridCols = 3
)

type Document struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Title     string     `json:"title"`
	GridRows  int        `json:"grid_rows"`
	GridCols  int        `json:"grid_cols"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (d *Document) Deleted() *time.Time { return d.DeletedAt }

// DocumentCard places a card on a document grid. Row and Col are the
// top-left anchor cell; Position orders overlapping placements.
type DocumentCard struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	CardID     int64     `json:"card_id"`
	Row        int       `json:"row"`
	Col        int       `json:"col"`
	SpanRows   int       `json:"span_rows"`
	SpanCols   int       `json:"span_cols"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentFilter struct {
	OwnerID int64
	Tag     string
	Limit   int
	Offset  int
}
