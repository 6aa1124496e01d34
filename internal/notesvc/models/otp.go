package models

import "time"

// OTP is a one-time sign-in code. It is valid while not consumed and
// ExpiresAt is in the future.
type OTP struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *OTP) Valid(now time.Time) bool {
	return !o.Consumed && o.ExpiresAt.After(now)
}
