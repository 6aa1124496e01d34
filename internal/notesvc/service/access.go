package service

import (
	"context"
	"errors"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
)

// ownedCard loads a visible card owned by ownerID. Absent, foreign and
// soft-deleted cards all give ErrNotFound.
func ownedCard(ctx context.Context, r store.Repositories, ownerID, cardID int64) (*models.Card, error) {
	c, err := r.Cards().GetByID(ctx, cardID)
	if err != nil {
		return nil, notFound(err)
	}
	if !models.IsVisible(c) || c.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return c, nil
}

func ownedDocument(ctx context.Context, r store.Repositories, ownerID, documentID int64) (*models.Document, error) {
	d, err := r.Documents().GetByID(ctx, documentID)
	if err != nil {
		return nil, notFound(err)
	}
	if !models.IsVisible(d) || d.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return d, nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
