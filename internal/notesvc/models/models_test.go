package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsVisible(t *testing.T) {
	now := time.Now()
	var nilCard *Card

	assert.False(t, IsVisible(nil))
	assert.False(t, IsVisible(nilCard))
	assert.True(t, IsVisible(&Card{ID: 1}))
	assert.False(t, IsVisible(&Card{ID: 1, DeletedAt: &now}))
	assert.True(t, IsVisible(&Document{ID: 1}))
	assert.False(t, IsVisible(&Document{ID: 1, DeletedAt: &now}))
}

func TestOTPValid(t *testing.T) {
	now := time.Date(2024, 8, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&OTP{ExpiresAt: now.Add(time.Minute)}).Valid(now))
	assert.False(t, (&OTP{ExpiresAt: now}).Valid(now), "expiry is exclusive")
	assert.False(t, (&OTP{ExpiresAt: now.Add(time.Minute), Consumed: true}).Valid(now))
}
