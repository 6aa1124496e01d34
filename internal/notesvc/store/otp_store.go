package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/db"
	"github.com/avvvet/hobheap-services/internal/notesvc/models"
)

type OTPStore struct {
	db db.DBTX
}

func NewOTPStore(db db.DBTX) *OTPStore {
	return &OTPStore{db: db}
}

func (s *OTPStore) Create(ctx context.Context, o *models.OTP) error {
	err := s.db.QueryRow(ctx, `
        INSERT INTO otps (user_id, code, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, consumed, created_at
    `, o.UserID, o.Code, o.ExpiresAt).Scan(&o.ID, &o.Consumed, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("could not create otp for user %d: %w", o.UserID, err)
	}

	return nil
}

// Consume flips exactly one row. The outer consumed = FALSE guard makes two
// concurrent validations of the same code succeed at most once.
func (s *OTPStore) Consume(ctx context.Context, userID int64, code string, now time.Time) (bool, error) {
	const query = `
UPDATE otps SET consumed = TRUE
WHERE id = (
    SELECT id FROM otps
    WHERE user_id = $1 AND code = $2 AND consumed = FALSE AND expires_at > $3
    ORDER BY id
    LIMIT 1
)
AND consumed = FALSE;
`
	tag, err := s.db.Exec(ctx, query, userID, code, now)
	if err != nil {
		return false, fmt.Errorf("could not consume otp for user %d: %w", userID, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *OTPStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM otps WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("could not delete expired otps: %w", err)
	}

	return tag.RowsAffected(), nil
}
