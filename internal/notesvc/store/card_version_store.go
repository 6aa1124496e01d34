package store

import (
	"context"
	"fmt"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
)

type CardVersionStore struct {
	db db.DBTX
}

func NewCardVersionStore(db db.DBTX) *CardVersionStore {
	return &CardVersionStore{db: db}
}

// Append numbers the new row max+1 in the same statement. Two writers that
// read the same max collide on uq_card_version; the loser gets ErrConflict.
func (s *CardVersionStore) Append(ctx context.Context, cardID int64, content string) (*models.CardVersion, error) {
	const query = `
INSERT INTO card_versions (card_id, version_number, content_md)
SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2
FROM card_versions
WHERE card_id = $1
RETURNING id, card_id, version_number, content_md, created_at;
`
	v := &models.CardVersion{}
	err := s.db.QueryRow(ctx, query, cardID, content).Scan(
		&v.ID,
		&v.CardID,
		&v.VersionNumber,
		&v.ContentMD,
		&v.CreatedAt,
	)
	if err != nil {
		if c, ok := constraintViolation(err, pgUniqueViolation); ok && c == "uq_card_version" {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("could not append version for card %d: %w", cardID, err)
	}

	return v, nil
}

func (s *CardVersionStore) ListByCard(ctx context.Context, cardID int64) ([]*models.CardVersion, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, card_id, version_number, content_md, created_at
        FROM card_versions
        WHERE card_id = $1
        ORDER BY version_number
    `, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := []*models.CardVersion{}
	for rows.Next() {
		var v models.CardVersion
		if err := rows.Scan(&v.ID, &v.CardID, &v.VersionNumber, &v.ContentMD, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, &v)
	}

	return versions, rows.Err()
}
