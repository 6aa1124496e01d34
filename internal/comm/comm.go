package comm

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const SubjectPrefix = "notes.events."

const (
	CardCreated        = "card.created"
	CardVersioned      = "card.versioned"
	CardDeleted        = "card.deleted"
	TagsAssigned       = "tags.assigned"
	DocumentCreated    = "document.created"
	DocumentDeleted    = "document.deleted"
	DocumentCardPlaced = "document.card_placed"
	OTPRequested       = "otp.requested"
)

// Event is the envelope of every message the note service publishes.
type Event struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"` // service instance id
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

func NewEvent(source, eventType string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		Source: source,
		Time:   time.Now().UTC(),
		Data:   raw,
	}, nil
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

type CardData struct {
	CardID        int64 `json:"card_id"`
	OwnerID       int64 `json:"owner_id"`
	VersionNumber int   `json:"version_number,omitempty"`
}

type TagsAssignedData struct {
	CardID  int64    `json:"card_id"`
	OwnerID int64    `json:"owner_id"`
	Tags    []string `json:"tags"`
}

type DocumentData struct {
	DocumentID int64 `json:"document_id"`
	OwnerID    int64 `json:"owner_id"`
}

type CardPlacedData struct {
	DocumentID     int64 `json:"document_id"`
	CardID         int64 `json:"card_id"`
	DocumentCardID int64 `json:"document_card_id"`
	OwnerID        int64 `json:"owner_id"`
}

// OTPRequestedData never carries the code itself.
type OTPRequestedData struct {
	UserID            int64     `json:"user_id"`
	MaskedDestination string    `json:"masked_destination"`
	ExpiresAt         time.Time `json:"expires_at"`
}
