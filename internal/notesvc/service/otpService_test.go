package service

import (
	"context"
	"testing"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otpClock struct{ t time.Time }

func (c *otpClock) Now() time.Time { return c.t }

func newTestOTPService(m store.Manager, codes ...string) (*OTPService, *otpClock) {
	clock := &otpClock{t: time.Date(2024, 8, 14, 12, 0, 0, 0, time.UTC)}
	s := NewOTPService(m, 6, 10*time.Minute)
	s.now = clock.Now
	s.generate = func(int) (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	return s, clock
}

func issue(t *testing.T, m store.Manager, s *OTPService, userID int64) *models.OTP {
	t.Helper()
	var o *models.OTP
	require.NoError(t, m.RunInTx(context.Background(), func(ctx context.Context, r store.Repositories) (err error) {
		o, err = s.Issue(ctx, r, userID)
		return err
	}))
	return o
}

func validate(t *testing.T, m store.Manager, s *OTPService, userID int64, code string) bool {
	t.Helper()
	var ok bool
	require.NoError(t, m.RunInTx(context.Background(), func(ctx context.Context, r store.Repositories) (err error) {
		ok, err = s.Validate(ctx, r, userID, code)
		return err
	}))
	return ok
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{8}$`, code)
}

func TestOTP_ValidateConsumesOnce(t *testing.T) {
	m := store.NewMemoryManager()
	u := mustRegister(t, m, "a@example.com")
	s, clock := newTestOTPService(m, "123456")

	o := issue(t, m, s, u.ID)
	assert.Equal(t, clock.t.Add(10*time.Minute), o.ExpiresAt)
	assert.False(t, o.Consumed)

	assert.False(t, validate(t, m, s, u.ID, "654321"), "wrong code")
	assert.False(t, validate(t, m, s, u.ID+1, "123456"), "other user")
	assert.True(t, validate(t, m, s, u.ID, "123456"))
	assert.False(t, validate(t, m, s, u.ID, "123456"), "already consumed")
}

func TestOTP_MultipleOutstandingCodes(t *testing.T) {
	m := store.NewMemoryManager()
	u := mustRegister(t, m, "a@example.com")
	s, _ := newTestOTPService(m, "111111", "222222")

	issue(t, m, s, u.ID)
	issue(t, m, s, u.ID)

	assert.True(t, validate(t, m, s, u.ID, "111111"))
	assert.True(t, validate(t, m, s, u.ID, "222222"))
}

func TestOTP_Expiry(t *testing.T) {
	m := store.NewMemoryManager()
	u := mustRegister(t, m, "a@example.com")
	s, clock := newTestOTPService(m, "123456", "999999")

	issue(t, m, s, u.ID)
	clock.t = clock.t.Add(10 * time.Minute)
	assert.False(t, validate(t, m, s, u.ID, "123456"), "expiry is exclusive")

	issue(t, m, s, u.ID)
	n, err := s.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.True(t, validate(t, m, s, u.ID, "999999"), "live code survives cleanup")
}

func TestOTP_WrongLengthIsRejected(t *testing.T) {
	m := store.NewMemoryManager()
	u := mustRegister(t, m, "a@example.com")
	s, _ := newTestOTPService(m, "123456")
	issue(t, m, s, u.ID)

	assert.False(t, validate(t, m, s, u.ID, "12345"))
	assert.False(t, validate(t, m, s, u.ID, ""))
}

func TestRunCleanup_StopsWithContext(t *testing.T) {
	m := store.NewMemoryManager()
	s, _ := newTestOTPService(m)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		s.RunCleanup(ctx, time.Millisecond, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("cleanup never ran")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}

func TestRunCleanup_DisabledInterval(t *testing.T) {
	s, _ := newTestOTPService(store.NewMemoryManager())
	s.RunCleanup(context.Background(), 0)
}
