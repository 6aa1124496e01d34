package auth

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	a := New("secret", time.Hour)

	token, err := a.Issue(42)
	require.NoError(t, err)

	id, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestVerify_Expired(t *testing.T) {
	a := New("secret", time.Hour)
	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := a.Issue(42)
	require.NoError(t, err)

	_, err = a.Verify(token)
	assert.ErrorIs(t, err, jwtauth.ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := New("secret", time.Hour).Issue(42)
	require.NoError(t, err)

	_, err = New("other", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := New("secret", time.Hour).Verify("not-a-token")
	assert.Error(t, err)
}

func TestVerify_NonNumericSubject(t *testing.T) {
	a := New("secret", time.Hour)
	claims := map[string]interface{}{"sub": "alice"}
	jwtauth.SetExpiryIn(claims, time.Hour)
	_, token, err := a.JWTAuth().Encode(claims)
	require.NoError(t, err)

	_, err = a.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestSubjectFromClaims(t *testing.T) {
	id, err := SubjectFromClaims(map[string]interface{}{"sub": "7"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = SubjectFromClaims(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = SubjectFromClaims(map[string]interface{}{"sub": "0"})
	assert.ErrorIs(t, err, ErrInvalidSubject)
}
