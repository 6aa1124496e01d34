package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	log "github.com/sirupsen/logrus"
)

// UserService struct represents the user service layer
type UserService struct {
	store store.Manager
}

// NewUserService creates a new UserService instance
func NewUserService(m store.Manager) *UserService {
	return &UserService{store: m}
}

type RegisterInput struct {
	Email string
	Phone *string
}

// Register creates a user. The email must be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	if in.Phone != nil && utf8.RuneCountInString(*in.Phone) > 32 {
		return nil, fmt.Errorf("%w: phone is longer than 32 characters", ErrInvalidInput)
	}

	u := &models.User{Email: email, Phone: in.Phone}
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		return r.Users().Create(ctx, u)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrPhoneTaken):
			return nil, ErrPhoneTaken
		}
		return nil, err
	}

	log.WithFields(log.Fields{"user_id": u.ID}).Info("user registered")
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		u, err = r.Users().GetByID(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		users, err = r.Users().List(ctx, limit, offset)
		return err
	})
	return users, err
}
