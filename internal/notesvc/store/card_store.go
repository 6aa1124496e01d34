package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/jackc/pgx/v5"
)

type CardStore struct {
	db db.DBTX
}

func NewCardStore(db db.DBTX) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `c.id, c.owner_id, c.title, c.content_md, c.template_type, c.deleted_at, c.created_at, c.updated_at`

func (s *CardStore) Create(ctx context.Context, c *models.Card) error {
	if c.TemplateType == "" {
		c.TemplateType = models.DefaultTemplateType
	}

	query := `
        INSERT INTO cards (owner_id, title, content_md, template_type)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at;
    `
	err := s.db.QueryRow(ctx, query, c.OwnerID, c.Title, c.ContentMD, c.TemplateType).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create card: %w", err)
	}

	return nil
}

func (s *CardStore) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	row := s.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards c WHERE c.id = $1`, id)
	return scanCard(row)
}

func (s *CardStore) Update(ctx context.Context, c *models.Card) error {
	query := `
        UPDATE cards
        SET title = $2, content_md = $3, template_type = $4, updated_at = now()
        WHERE id = $1 AND ` + models.VisibleClause + `
        RETURNING updated_at;
    `
	err := s.db.QueryRow(ctx, query, c.ID, c.Title, c.ContentMD, c.TemplateType).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("could not update card %d: %w", c.ID, err)
	}

	return nil
}

func (s *CardStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE cards SET deleted_at = $2, updated_at = $2
        WHERE id = $1 AND `+models.VisibleClause, id, at)
	if err != nil {
		return fmt.Errorf("could not delete card %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *CardStore) List(ctx context.Context, f models.CardFilter) ([]*models.Card, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)

	q := newQuery(`SELECT ` + cardColumns + ` FROM cards c WHERE c.` + models.VisibleClause)
	q.where("c.owner_id = ?", f.OwnerID)
	if f.TemplateType != "" {
		q.where("c.template_type = ?", f.TemplateType)
	}
	if f.Tag != "" {
		q.where(`EXISTS (
            SELECT 1 FROM card_tags ct JOIN tags t ON t.id = ct.tag_id
            WHERE ct.card_id = c.id AND t.name = ?)`, f.Tag)
	}
	q.suffix(" ORDER BY c.created_at, c.id LIMIT ? OFFSET ?", limit, offset)

	rows, err := s.db.Query(ctx, q.sql(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []*models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

func scanCard(row pgx.Row) (*models.Card, error) {
	c := &models.Card{}
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.ContentMD,
		&c.TemplateType,
		&c.DeletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// query assembles a SELECT with optional AND conditions, numbering each "?"
// as the next $n placeholder.
type query struct {
	b    strings.Builder
	args []any
}

func newQuery(base string) *query {
	q := &query{}
	q.b.WriteString(base)
	return q
}

func (q *query) where(cond string, args ...any) {
	q.b.WriteString(" AND ")
	q.write(cond, args)
}

func (q *query) suffix(s string, args ...any) {
	q.write(s, args)
}

func (q *query) write(s string, args []any) {
	for _, a := range args {
		i := strings.IndexByte(s, '?')
		if i < 0 {
			break
		}
		q.args = append(q.args, a)
		q.b.WriteString(s[:i])
		q.b.WriteString("$" + strconv.Itoa(len(q.args)))
		s = s[i+1:]
	}
	q.b.WriteString(s)
}

func (q *query) sql() string { return q.b.String() }
