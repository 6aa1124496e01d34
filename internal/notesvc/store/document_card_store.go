package store

import (
	"context"
	"fmt"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
)

type DocumentCardStore struct {
	db db.DBTX
}

func NewDocumentCardStore(db db.DBTX) *DocumentCardStore {
	return &DocumentCardStore{db: db}
}

func (s *DocumentCardStore) Create(ctx context.Context, dc *models.DocumentCard) error {
	if dc.SpanRows == 0 {
		dc.SpanRows = 1
	}
	if dc.SpanCols == 0 {
		dc.SpanCols = 1
	}

	query := `
        INSERT INTO document_cards (document_id, card_id, "row", col, span_rows, span_cols, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at;
    `
	err := s.db.QueryRow(ctx, query,
		dc.DocumentID, dc.CardID, dc.Row, dc.Col, dc.SpanRows, dc.SpanCols, dc.Position,
	).Scan(&dc.ID, &dc.CreatedAt, &dc.UpdatedAt)
	if err != nil {
		if c, ok := constraintViolation(err, pgUniqueViolation); ok && c == "uq_doc_card_unique" {
			return ErrAlreadyExists
		}
		if c, ok := constraintViolation(err, pgCheckViolation); ok && c == "ck_doc_card_non_negative" {
			return ErrInvalidPlacement
		}
		return fmt.Errorf("could not place card %d on document %d: %w", dc.CardID, dc.DocumentID, err)
	}

	return nil
}

func (s *DocumentCardStore) Exists(ctx context.Context, documentID, cardID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM document_cards WHERE document_id = $1 AND card_id = $2)
    `, documentID, cardID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (s *DocumentCardStore) ListByDocument(ctx context.Context, documentID int64) ([]*models.DocumentCard, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, document_id, card_id, "row", col, span_rows, span_cols, position, created_at, updated_at
        FROM document_cards
        WHERE document_id = $1
        ORDER BY position, id
    `, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	placements := []*models.DocumentCard{}
	for rows.Next() {
		var dc models.DocumentCard
		err := rows.Scan(
			&dc.ID,
			&dc.DocumentID,
			&dc.CardID,
			&dc.Row,
			&dc.Col,
			&dc.SpanRows,
			&dc.SpanCols,
			&dc.Position,
			&dc.CreatedAt,
			&dc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		placements = append(placements, &dc)
	}

	return placements, rows.Err()
}
