package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avvvet/hobheap-services/internal/comm"
	"github.com/avvvet/hobheap-services/internal/notesvc/broker"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	log "github.com/sirupsen/logrus"
)

type TagService struct {
	store  store.Manager
	events broker.Publisher
}

func NewTagService(m store.Manager, events broker.Publisher) *TagService {
	return &TagService{store: m, events: events}
}

type TagAssignment struct {
	CardID int64         `json:"card_id"`
	Tags   []*models.Tag `json:"tags"`
}

func normalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: tag name must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > models.MaxTagNameLength {
		return "", fmt.Errorf("%w: tag name is longer than %d characters", ErrInvalidInput, models.MaxTagNameLength)
	}
	return name, nil
}

// CreateTag is get-or-create by name.
func (s *TagService) CreateTag(ctx context.Context, name string, isAI bool) (*models.Tag, error) {
	name, err := normalizeTagName(name)
	if err != nil {
		return nil, err
	}

	var t *models.Tag
	err = s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		t, err = r.Tags().Create(ctx, name, isAI)
		return err
	})
	return t, err
}

func (s *TagService) ListTags(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		tags, err = r.Tags().List(ctx, limit, offset)
		return err
	})
	return tags, err
}

// AssignTags gets or creates every named tag and links it to the card.
// Names already linked are left as they are. The result holds the requested
// tags in request order, duplicates removed.
func (s *TagService) AssignTags(ctx context.Context, ownerID, cardID int64, names []string) (*TagAssignment, error) {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		n, err := normalizeTagName(n)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}

	tags := make([]*models.Tag, 0, len(unique))
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		if _, err := ownedCard(ctx, r, ownerID, cardID); err != nil {
			return err
		}
		tags = tags[:0]
		for _, n := range unique {
			t, err := r.Tags().Create(ctx, n, false)
			if err != nil {
				return err
			}
			if err := r.Tags().Assign(ctx, cardID, t.ID); err != nil {
				return err
			}
			tags = append(tags, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(comm.TagsAssigned, comm.TagsAssignedData{CardID: cardID, OwnerID: ownerID, Tags: unique})
	log.WithFields(log.Fields{"card_id": cardID, "tags": len(unique)}).Info("tags assigned")
	return &TagAssignment{CardID: cardID, Tags: tags}, nil
}

// CardTags lists the tags of a visible card the caller owns, by name.
func (s *TagService) CardTags(ctx context.Context, ownerID, cardID int64) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		if _, err := ownedCard(ctx, r, ownerID, cardID); err != nil {
			return err
		}
		tags, err = r.Tags().ListByCard(ctx, cardID)
		return err
	})
	return tags, err
}
