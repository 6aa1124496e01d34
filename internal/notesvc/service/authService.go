package service

import (
	"context"
	"errors"
	"strings"

	"github.com/avvvet/hobheap-services/internal/comm"
	"github.com/avvvet/hobheap-services/internal/notesvc/auth"
	"github.com/avvvet/hobheap-services/internal/notesvc/broker"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/avvvet/hobheap-services/internal/ratelimit"
	log "github.com/sirupsen/logrus"
)

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type OTPIssued struct {
	UserID            int64  `json:"user_id"`
	MaskedDestination string `json:"masked_destination"`
	Sent              bool   `json:"sent"`
}

// AuthService implements the passwordless sign-in flows. Every flow is
// throttled per email by limiter before the store is touched.
type AuthService struct {
	store   store.Manager
	otp     *OTPService
	tokens  *auth.TokenAuth
	limiter ratelimit.Limiter
	events  broker.Publisher
}

func NewAuthService(m store.Manager, otp *OTPService, tokens *auth.TokenAuth, limiter ratelimit.Limiter, events broker.Publisher) *AuthService {
	return &AuthService{
		store:   m,
		otp:     otp,
		tokens:  tokens,
		limiter: limiter,
		events:  events,
	}
}

func rateKey(flow, email string) string {
	return flow + ":" + strings.ToLower(email)
}

// MaskEmail keeps the first two characters and the domain.
func MaskEmail(email string) string {
	domain := email
	if i := strings.LastIndex(email, "@"); i >= 0 {
		domain = email[i+1:]
	}
	runes := []rune(email)
	return string(runes[:min(2, len(runes))]) + "***" + domain
}

// Login issues a token without a code check. An unknown email gives
// ErrUnknownUser.
func (s *AuthService) Login(ctx context.Context, email string) (*AccessToken, error) {
	key := rateKey("login", email)
	if err := s.limiter.CheckAndIncrement(key); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		user, err = r.Users().GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.limiter.Reset(key)

	log.WithFields(log.Fields{"user_id": user.ID}).Info("login token issued")
	return token, nil
}

// RequestOTP stores a fresh code for the user. Repeated requests are never
// reset, so the window caps how many codes an address can receive.
func (s *AuthService) RequestOTP(ctx context.Context, email string) (*OTPIssued, error) {
	if err := s.limiter.CheckAndIncrement(rateKey("otp_req", email)); err != nil {
		return nil, err
	}

	var (
		user *models.User
		otp  *models.OTP
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		user, err = r.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		otp, err = s.otp.Issue(ctx, r, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	masked := MaskEmail(email)
	s.events.Publish(comm.OTPRequested, comm.OTPRequestedData{
		UserID:            user.ID,
		MaskedDestination: masked,
		ExpiresAt:         otp.ExpiresAt,
	})
	log.WithFields(log.Fields{"user_id": user.ID, "expires_at": otp.ExpiresAt}).Info("otp issued")

	return &OTPIssued{UserID: user.ID, MaskedDestination: masked, Sent: true}, nil
}

// VerifyOTP consumes code and issues a token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AccessToken, error) {
	key := rateKey("otp_verify", email)
	if err := s.limiter.CheckAndIncrement(key); err != nil {
		return nil, err
	}

	var (
		user *models.User
		ok   bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		user, err = r.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		ok, err = s.otp.Validate(ctx, r, user.ID, code)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ok {
		log.WithFields(log.Fields{"user_id": user.ID}).Warn("otp verification failed")
		return nil, ErrInvalidCode
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.limiter.Reset(key)

	return token, nil
}

func (s *AuthService) issue(userID int64) (*AccessToken, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &AccessToken{AccessToken: token, TokenType: "bearer"}, nil
}
