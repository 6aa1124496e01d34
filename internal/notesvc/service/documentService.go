package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avvvet/hobheap-services/internal/comm"
	"github.com/avvvet/hobheap-services/internal/notesvc/broker"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	log "github.com/sirupsen/logrus"
)

type DocumentService struct {
	store  store.Manager
	events broker.Publisher
	now    func() time.Time
}

func NewDocumentService(m store.Manager, events broker.Publisher) *DocumentService {
	return &DocumentService{store: m, events: events, now: time.Now}
}

type DocumentInput struct {
	Title    string
	GridRows int
	GridCols int
}

type DocumentPatch struct {
	Title    *string
	GridRows *int
	GridCols *int
}

// Placement positions a card on a document grid. Zero spans mean 1.
type Placement struct {
	CardID   int64
	Row      int
	Col      int
	SpanRows int
	SpanCols int
	Position int
}

func validateDocumentTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitleLength)
	}
	return nil
}

func validateGrid(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: grid_rows and grid_cols must be at least 1", ErrInvalidInput)
	}
	return nil
}

func (s *DocumentService) CreateDocument(ctx context.Context, ownerID int64, in DocumentInput) (*models.Document, error) {
	if in.GridRows == 0 {
		in.GridRows = models.DefaultGridRows
	}
	if in.GridCols == 0 {
		in.GridCols = models.DefaultGridCols
	}
	if err := validateDocumentTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateGrid(in.GridRows, in.GridCols); err != nil {
		return nil, err
	}

	d := &models.Document{
		OwnerID:  ownerID,
		Title:    in.Title,
		GridRows: in.GridRows,
		GridCols: in.GridCols,
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		return r.Documents().Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(comm.DocumentCreated, comm.DocumentData{DocumentID: d.ID, OwnerID: ownerID})
	log.WithFields(log.Fields{"document_id": d.ID, "owner_id": ownerID}).Info("document created")
	return d, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, ownerID, documentID int64) (*models.Document, error) {
	var d *models.Document
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		d, err = ownedDocument(ctx, r, ownerID, documentID)
		return err
	})
	return d, err
}

func (s *DocumentService) UpdateDocument(ctx context.Context, ownerID, documentID int64, patch DocumentPatch) (*models.Document, error) {
	var d *models.Document
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		d, err = ownedDocument(ctx, r, ownerID, documentID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			d.Title = *patch.Title
		}
		if patch.GridRows != nil {
			d.GridRows = *patch.GridRows
		}
		if patch.GridCols != nil {
			d.GridCols = *patch.GridCols
		}
		if err := validateDocumentTitle(d.Title); err != nil {
			return err
		}
		if err := validateGrid(d.GridRows, d.GridCols); err != nil {
			return err
		}

		return notFound(r.Documents().Update(ctx, d))
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDocument soft-deletes the document. A second delete gives ErrNotFound.
func (s *DocumentService) DeleteDocument(ctx context.Context, ownerID, documentID int64) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if _, err := ownedDocument(ctx, r, ownerID, documentID); err != nil {
			return err
		}
		return notFound(r.Documents().SoftDelete(ctx, documentID, s.now()))
	})
	if err != nil {
		return err
	}

	s.events.Publish(comm.DocumentDeleted, comm.DocumentData{DocumentID: documentID, OwnerID: ownerID})
	log.WithFields(log.Fields{"document_id": documentID, "owner_id": ownerID}).Info("document deleted")
	return nil
}

// ListDocuments lists the caller's visible documents, optionally only those
// holding a card tagged with tag.
func (s *DocumentService) ListDocuments(ctx context.Context, ownerID int64, f models.DocumentFilter) ([]*models.Document, error) {
	f.OwnerID = ownerID
	var docs []*models.Document
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		docs, err = r.Documents().List(ctx, f)
		return err
	})
	return docs, err
}

// AddCard places a card on a document. Both must be visible and owned by
// the caller, and a card can be placed on a document only once. Overlapping
// placements are allowed.
func (s *DocumentService) AddCard(ctx context.Context, ownerID, documentID int64, p Placement) (*models.DocumentCard, error) {
	if p.Row < 0 || p.Col < 0 {
		return nil, ErrInvalidPlacement
	}
	if p.SpanRows == 0 {
		p.SpanRows = 1
	}
	if p.SpanCols == 0 {
		p.SpanCols = 1
	}
	if p.SpanRows < 1 || p.SpanCols < 1 {
		return nil, fmt.Errorf("%w: span_rows and span_cols must be at least 1", ErrInvalidInput)
	}

	dc := &models.DocumentCard{
		DocumentID: documentID,
		CardID:     p.CardID,
		Row:        p.Row,
		Col:        p.Col,
		SpanRows:   p.SpanRows,
		SpanCols:   p.SpanCols,
		Position:   p.Position,
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if _, err := ownedDocument(ctx, r, ownerID, documentID); err != nil {
			return err
		}
		if _, err := ownedCard(ctx, r, ownerID, p.CardID); err != nil {
			return err
		}

		exists, err := r.DocumentCards().Exists(ctx, documentID, p.CardID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicatePlacement
		}

		return r.DocumentCards().Create(ctx, dc)
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return nil, ErrDuplicatePlacement
	case errors.Is(err, store.ErrInvalidPlacement):
		return nil, ErrInvalidPlacement
	case err != nil:
		return nil, err
	}

	s.events.Publish(comm.DocumentCardPlaced, comm.CardPlacedData{
		DocumentID:     documentID,
		CardID:         p.CardID,
		DocumentCardID: dc.ID,
		OwnerID:        ownerID,
	})
	return dc, nil
}

// ListCards returns the placements of a document ordered by position.
func (s *DocumentService) ListCards(ctx context.Context, ownerID, documentID int64) ([]*models.DocumentCard, error) {
	var placements []*models.DocumentCard
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		if _, err := ownedDocument(ctx, r, ownerID, documentID); err != nil {
			return err
		}
		placements, err = r.DocumentCards().ListByDocument(ctx, documentID)
		return err
	})
	return placements, err
}
