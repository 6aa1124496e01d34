package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/jackc/pgx/v5"
)

type TagStore struct {
	db db.DBTX
}

func NewTagStore(db db.DBTX) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRow(ctx, `
        SELECT id, name, is_ai_generated, created_at FROM tags WHERE name = $1
    `, name).Scan(&t.ID, &t.Name, &t.IsAIGenerated, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// Create inserts with ON CONFLICT DO NOTHING. When nothing was inserted the
// existing row is read back.
func (s *TagStore) Create(ctx context.Context, name string, isAI bool) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRow(ctx, `
        INSERT INTO tags (name, is_ai_generated)
        VALUES ($1, $2)
        ON CONFLICT (name) DO NOTHING
        RETURNING id, name, is_ai_generated, created_at
    `, name, isAI).Scan(&t.ID, &t.Name, &t.IsAIGenerated, &t.CreatedAt)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("could not create tag %q: %w", name, err)
	}

	existing, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("could not load existing tag %q: %w", name, err)
	}

	return existing, nil
}

func (s *TagStore) List(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.db.Query(ctx, `
        SELECT id, name, is_ai_generated, created_at
        FROM tags
        ORDER BY id
        LIMIT $1 OFFSET $2
    `, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectTags(rows)
}

func (s *TagStore) ListByCard(ctx context.Context, cardID int64) ([]*models.Tag, error) {
	rows, err := s.db.Query(ctx, `
        SELECT t.id, t.name, t.is_ai_generated, t.created_at
        FROM tags t
        JOIN card_tags ct ON ct.tag_id = t.id
        WHERE ct.card_id = $1
        ORDER BY t.name
    `, cardID)
	if err != nil {
		return nil, err
	}

	return collectTags(rows)
}

func (s *TagStore) Assign(ctx context.Context, cardID, tagID int64) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO card_tags (card_id, tag_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `, cardID, tagID)
	if err != nil {
		return fmt.Errorf("could not assign tag %d to card %d: %w", tagID, cardID, err)
	}

	return nil
}

func collectTags(rows pgx.Rows) ([]*models.Tag, error) {
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsAIGenerated, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}

	return tags, rows.Err()
}
