package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/jackc/pgx/v5"
)

type DocumentStore struct {
	db db.DBTX
}

func NewDocumentStore(db db.DBTX) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `d.id, d.owner_id, d.title, d.grid_rows, d.grid_cols, d.deleted_at, d.created_at, d.updated_at`

func (s *DocumentStore) Create(ctx context.Context, d *models.Document) error {
	if d.GridRows == 0 {
		d.GridRows = models.DefaultGridRows
	}
	if d.GridCols == 0 {
		d.GridCols = models.DefaultGridCols
	}

	query := `
        INSERT INTO documents (owner_id, title, grid_rows, grid_cols)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at;
    `
	err := s.db.QueryRow(ctx, query, d.OwnerID, d.Title, d.GridRows, d.GridCols).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create document: %w", err)
	}

	return nil
}

func (s *DocumentStore) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	row := s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents d WHERE d.id = $1`, id)
	return scanDocument(row)
}

func (s *DocumentStore) Update(ctx context.Context, d *models.Document) error {
	query := `
        UPDATE documents
        SET title = $2, grid_rows = $3, grid_cols = $4, updated_at = now()
        WHERE id = $1 AND ` + models.VisibleClause + `
        RETURNING updated_at;
    `
	err := s.db.QueryRow(ctx, query, d.ID, d.Title, d.GridRows, d.GridCols).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("could not update document %d: %w", d.ID, err)
	}

	return nil
}

func (s *DocumentStore) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE documents SET deleted_at = $2, updated_at = $2
        WHERE id = $1 AND `+models.VisibleClause, id, at)
	if err != nil {
		return fmt.Errorf("could not delete document %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// List filters by tag through placements: a document matches when any card
// placed on it carries the tag.
func (s *DocumentStore) List(ctx context.Context, f models.DocumentFilter) ([]*models.Document, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)

	q := newQuery(`SELECT ` + documentColumns + ` FROM documents d WHERE d.` + models.VisibleClause)
	q.where("d.owner_id = ?", f.OwnerID)
	if f.Tag != "" {
		q.where(`EXISTS (
            SELECT 1 FROM document_cards dc
            JOIN card_tags ct ON ct.card_id = dc.card_id
            JOIN tags t ON t.id = ct.tag_id
            WHERE dc.document_id = d.id AND t.name = ?)`, f.Tag)
	}
	q.suffix(" ORDER BY d.created_at, d.id LIMIT ? OFFSET ?", limit, offset)

	rows, err := s.db.Query(ctx, q.sql(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.GridRows,
		&d.GridCols,
		&d.DeletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return d, nil
}
