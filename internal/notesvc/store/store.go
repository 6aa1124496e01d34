package store

import (
	"context"
	"errors"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPhoneTaken       = errors.New("phone already registered")
	ErrConflict         = errors.New("concurrent write conflict")
	ErrInvalidPlacement = errors.New("row and col must be non-negative")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type UserRepository interface {
	// Create fills ID and timestamps. Duplicate email gives ErrAlreadyExists,
	// duplicate phone ErrPhoneTaken.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type CardRepository interface {
	Create(ctx context.Context, c *models.Card) error
	// GetByID returns soft-deleted cards too; visibility is the caller's call.
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	Update(ctx context.Context, c *models.Card) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	// List returns visible cards ordered by creation.
	List(ctx context.Context, f models.CardFilter) ([]*models.Card, error)
}

// CardVersionRepository is append-only.
type CardVersionRepository interface {
	// Append stores content as the next version of cardID. Losing a race for
	// the same number gives ErrConflict.
	Append(ctx context.Context, cardID int64, content string) (*models.CardVersion, error)
	ListByCard(ctx context.Context, cardID int64) ([]*models.CardVersion, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	Update(ctx context.Context, d *models.Document) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, f models.DocumentFilter) ([]*models.Document, error)
}

type DocumentCardRepository interface {
	// Create gives ErrAlreadyExists for a repeated (document, card) pair and
	// ErrInvalidPlacement for a negative row or col.
	Create(ctx context.Context, dc *models.DocumentCard) error
	Exists(ctx context.Context, documentID, cardID int64) (bool, error)
	// ListByDocument orders placements by position.
	ListByDocument(ctx context.Context, documentID int64) ([]*models.DocumentCard, error)
}

type TagRepository interface {
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// Create is get-or-create: an existing name returns the stored tag.
	Create(ctx context.Context, name string, isAI bool) (*models.Tag, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tag, error)
	ListByCard(ctx context.Context, cardID int64) ([]*models.Tag, error)
	// Assign links a tag to a card. Repeating it is a no-op.
	Assign(ctx context.Context, cardID, tagID int64) error
}

type OTPRepository interface {
	Create(ctx context.Context, o *models.OTP) error
	// Consume marks one matching, unconsumed, unexpired code as consumed and
	// reports whether it found one.
	Consume(ctx context.Context, userID int64, code string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repositories is the set of stores bound to one unit of work.
type Repositories interface {
	Users() UserRepository
	Cards() CardRepository
	Versions() CardVersionRepository
	Documents() DocumentRepository
	DocumentCards() DocumentCardRepository
	Tags() TagRepository
	OTPs() OTPRepository
}

// Manager runs fn as a single unit of work: it commits when fn returns nil
// and rolls back on error or panic.
type Manager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
