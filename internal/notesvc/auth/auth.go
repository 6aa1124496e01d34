// Package auth issues and verifies the bearer tokens of the note API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth"
)

var ErrInvalidSubject = errors.New("token subject is not a user id")

type TokenAuth struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
	now func() time.Time
}

func New(secret string, ttl time.Duration) *TokenAuth {
	return &TokenAuth{
		ja:  jwtauth.New("HS256", []byte(secret), nil),
		ttl: ttl,
		now: time.Now,
	}
}

// JWTAuth is handed to jwtauth.Verifier in the router.
func (a *TokenAuth) JWTAuth() *jwtauth.JWTAuth {
	return a.ja
}

// Issue signs a token whose sub is userID and which expires after the
// configured TTL.
func (a *TokenAuth) Issue(userID int64) (string, error) {
	now := a.now()
	claims := map[string]interface{}{
		"sub": strconv.FormatInt(userID, 10),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(a.ttl))

	_, tokenString, err := a.ja.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature and expiry and returns the user id.
func (a *TokenAuth) Verify(tokenString string) (int64, error) {
	token, err := jwtauth.VerifyToken(a.ja, tokenString)
	if err != nil {
		return 0, err
	}
	return ParseSubject(token.Subject())
}

// SubjectFromClaims reads the user id from claims as returned by
// jwtauth.FromContext.
func SubjectFromClaims(claims map[string]interface{}) (int64, error) {
	sub, _ := claims["sub"].(string)
	return ParseSubject(sub)
}

func ParseSubject(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}
