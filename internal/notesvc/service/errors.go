package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrUnknownUser        = errors.New("user not registered")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrDuplicatePlacement = errors.New("card already added")
	ErrInvalidPlacement   = errors.New("row and col must be non-negative")
	ErrInvalidInput       = errors.New("invalid input")
	ErrVersionConflict    = errors.New("card was modified concurrently, retry")
)
