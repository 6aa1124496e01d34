package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	log "github.com/sirupsen/logrus"
)

// OTPService issues and validates one-time sign-in codes. Issue and Validate
// run inside the caller's unit of work.
type OTPService struct {
	store    store.Manager
	length   int
	ttl      time.Duration
	now      func() time.Time
	generate func(length int) (string, error)
}

func NewOTPService(m store.Manager, length int, ttl time.Duration) *OTPService {
	return &OTPService{
		store:    m,
		length:   length,
		ttl:      ttl,
		now:      time.Now,
		generate: GenerateCode,
	}
}

// GenerateCode returns length decimal digits drawn from crypto/rand.
func GenerateCode(length int) (string, error) {
	digits := make([]byte, length)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func (s *OTPService) Issue(ctx context.Context, r store.Repositories, userID int64) (*models.OTP, error) {
	code, err := s.generate(s.length)
	if err != nil {
		return nil, fmt.Errorf("could not generate otp: %w", err)
	}

	o := &models.OTP{
		UserID:    userID,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := r.OTPs().Create(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate consumes a matching live code. A wrong, expired or already used
// code returns false and changes nothing.
func (s *OTPService) Validate(ctx context.Context, r store.Repositories, userID int64, code string) (bool, error) {
	if len(code) != s.length {
		return false, nil
	}
	return r.OTPs().Consume(ctx, userID, code, s.now())
}

// Cleanup deletes every expired code.
func (s *OTPService) Cleanup(ctx context.Context) (int64, error) {
	var n int64
	err := s.store.RunInTx(ctx, func(ctx context.Context, r store.Repositories) (err error) {
		n, err = r.OTPs().DeleteExpired(ctx, s.now())
		return err
	})
	return n, err
}

// RunCleanup calls Cleanup every interval until ctx is done. Each tick also
// runs the extra housekeeping funcs, e.g. a rate limiter sweep.
func (s *OTPService) RunCleanup(ctx context.Context, interval time.Duration, extra ...func()) {
	if interval <= 0 {
		log.Info("otp cleanup disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Cleanup(ctx)
			if err != nil {
				log.Errorf("otp cleanup error: %v", err)
			} else if n > 0 {
				log.WithFields(log.Fields{"deleted": n}).Info("expired otps removed")
			}
			for _, fn := range extra {
				fn()
			}
		}
	}
}
