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

const (
	maxTitleLength        = 255
	maxTemplateTypeLength = 50

	// versionAttempts bounds how often an update is replayed after losing
	// the version number race.
	versionAttempts = 3
)

type CardService struct {
	store  store.Manager
	events broker.Publisher
	now    func() time.Time
}

func NewCardService(m store.Manager, events broker.Publisher) *CardService {
	return &CardService{store: m, events: events, now: time.Now}
}

type CardInput struct {
	Title        *string
	ContentMD    string
	TemplateType string
}

// CardPatch is a partial update; nil fields are left unchanged.
type CardPatch struct {
	Title        *string
	ContentMD    *string
	TemplateType *string
}

func validateTitle(title *string) error {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLength {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitleLength)
	}
	return nil
}

func validateTemplateType(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: template_type must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(t) > maxTemplateTypeLength {
		return fmt.Errorf("%w: template_type is longer than %d characters", ErrInvalidInput, maxTemplateTypeLength)
	}
	return nil
}

// CreateCard stores the card together with its first version.
func (s *CardService) CreateCard(ctx context.Context, ownerID int64, in CardInput) (*models.Card, error) {
	if in.TemplateType == "" {
		in.TemplateType = models.DefaultTemplateType
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateTemplateType(in.TemplateType); err != nil {
		return nil, err
	}

	c := &models.Card{
		OwnerID:      ownerID,
		Title:        in.Title,
		ContentMD:    in.ContentMD,
		TemplateType: in.TemplateType,
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if err := r.Cards().Create(ctx, c); err != nil {
			return err
		}
		_, err := r.Versions().Append(ctx, c.ID, c.ContentMD)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(comm.CardCreated, comm.CardData{CardID: c.ID, OwnerID: ownerID, VersionNumber: 1})
	log.WithFields(log.Fields{"card_id": c.ID, "owner_id": ownerID}).Info("card created")
	return c, nil
}

func (s *CardService) GetCard(ctx context.Context, ownerID, cardID int64) (*models.Card, error) {
	var c *models.Card
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		c, err = ownedCard(ctx, r, ownerID, cardID)
		return err
	})
	return c, err
}

// UpdateCard applies patch. A changed content_md appends a version; other
// fields never do. The whole unit of work is replayed when a concurrent
// update took the same version number.
func (s *CardService) UpdateCard(ctx context.Context, ownerID, cardID int64, patch CardPatch) (*models.Card, error) {
	if err := validateTitle(patch.Title); err != nil {
		return nil, err
	}
	if patch.TemplateType != nil {
		if err := validateTemplateType(*patch.TemplateType); err != nil {
			return nil, err
		}
	}

	var (
		c       *models.Card
		version *models.CardVersion
		err     error
	)
	for attempt := 1; attempt <= versionAttempts; attempt++ {
		err = s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
			version = nil
			c, err = ownedCard(ctx, r, ownerID, cardID)
			if err != nil {
				return err
			}

			if patch.Title != nil {
				c.Title = patch.Title
			}
			if patch.TemplateType != nil {
				c.TemplateType = *patch.TemplateType
			}
			if patch.ContentMD != nil && *patch.ContentMD != c.ContentMD {
				c.ContentMD = *patch.ContentMD
				if version, err = r.Versions().Append(ctx, c.ID, c.ContentMD); err != nil {
					return err
				}
			}

			return notFound(r.Cards().Update(ctx, c))
		})
		if !errors.Is(err, store.ErrConflict) {
			break
		}
		log.WithFields(log.Fields{"card_id": cardID, "attempt": attempt}).Warn("card version conflict")
	}
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	if version != nil {
		s.events.Publish(comm.CardVersioned, comm.CardData{CardID: c.ID, OwnerID: ownerID, VersionNumber: version.VersionNumber})
	}
	return c, nil
}

// DeleteCard soft-deletes the card. Its versions are kept.
func (s *CardService) DeleteCard(ctx context.Context, ownerID, cardID int64) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if _, err := ownedCard(ctx, r, ownerID, cardID); err != nil {
			return err
		}
		return notFound(r.Cards().SoftDelete(ctx, cardID, s.now()))
	})
	if err != nil {
		return err
	}

	s.events.Publish(comm.CardDeleted, comm.CardData{CardID: cardID, OwnerID: ownerID})
	log.WithFields(log.Fields{"card_id": cardID, "owner_id": ownerID}).Info("card deleted")
	return nil
}

// ListCards lists the caller's visible cards. f.OwnerID is overwritten.
func (s *CardService) ListCards(ctx context.Context, ownerID int64, f models.CardFilter) ([]*models.Card, error) {
	f.OwnerID = ownerID
	var cards []*models.Card
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		cards, err = r.Cards().List(ctx, f)
		return err
	})
	return cards, err
}

// ListVersions returns the history of a card the caller owns, oldest first.
// The history outlives a soft delete, so only existence and ownership are
// checked here.
func (s *CardService) ListVersions(ctx context.Context, ownerID, cardID int64) ([]*models.CardVersion, error) {
	var versions []*models.CardVersion
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		c, err := r.Cards().GetByID(ctx, cardID)
		if err != nil {
			return notFound(err)
		}
		if c.OwnerID != ownerID {
			return ErrNotFound
		}
		versions, err = r.Versions().ListByCard(ctx, cardID)
		return err
	})
	return versions, err
}
