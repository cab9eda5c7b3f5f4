package otp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialapp/internal/apperr"
	"socialapp/internal/models"
	"socialapp/internal/otp"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newManager(clock *fakeClock) *otp.Manager {
	codes := []string{"111111", "222222", "333333", "444444", "555555", "666666"}
	i := 0
	gen := func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
	return otp.NewManager(otp.DefaultConfig, otp.WithClock(clock.Now), otp.WithGenerator(gen))
}

func freshProfile() *models.Profile {
	return &models.Profile{ID: "p1", MaxOTPTry: otp.DefaultConfig.MaxTry}
}

func TestIssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(clock)
	p := freshProfile()

	assert.Equal(t, otp.StateUnverified, m.StateOf(p))

	code, expiry, err := m.Issue(p)
	require.NoError(t, err)
	assert.Equal(t, "111111", code)
	assert.Equal(t, clock.t.Add(5*time.Minute), expiry)
	assert.Equal(t, otp.StatePending, m.StateOf(p))

	assert.False(t, m.Verify(p, "999999"))
	assert.Equal(t, otp.DefaultConfig.MaxTry, p.MaxOTPTry, "a failed verify does not spend attempts")

	assert.True(t, m.Verify(p, code))
	assert.True(t, p.IsActive)
	assert.Empty(t, p.OTP)
	assert.Nil(t, p.OTPExpiry)
	assert.Nil(t, p.OTPMaxOut)
	assert.Equal(t, otp.StateVerified, m.StateOf(p))

	// already active: the same code no longer verifies
	p.OTP = code
	future := clock.t.Add(time.Minute)
	p.OTPExpiry = &future
	assert.False(t, m.Verify(p, code))
}

func TestVerify_ExpiredCode(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(clock)
	p := freshProfile()

	code, _, err := m.Issue(p)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.False(t, m.Verify(p, code), "now == expiry is already expired")
	assert.False(t, p.IsActive)
}

func TestRegenerate_BudgetLockoutAndWrapAround(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(clock)
	p := freshProfile()

	_, _, err := m.Regenerate(p)
	require.NoError(t, err)
	assert.Equal(t, 2, p.MaxOTPTry)
	assert.Nil(t, p.OTPMaxOut)

	_, _, err = m.Regenerate(p)
	require.NoError(t, err)
	assert.Equal(t, 1, p.MaxOTPTry)

	_, _, err = m.Regenerate(p)
	require.NoError(t, err)
	assert.Equal(t, 0, p.MaxOTPTry)
	require.NotNil(t, p.OTPMaxOut)
	assert.Equal(t, clock.t.Add(time.Hour), *p.OTPMaxOut)
	assert.Equal(t, otp.StateLocked, m.StateOf(p))

	_, _, err = m.Regenerate(p)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindLocked, e.Kind)
	assert.Equal(t, time.Hour, e.RetryAfter)

	_, _, err = m.Issue(p)
	assert.True(t, apperr.Is(err, apperr.KindLocked))

	clock.Advance(time.Hour)
	code, _, err := m.Regenerate(p)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, otp.DefaultConfig.MaxTry, p.MaxOTPTry, "decrement past zero resets to max")
	assert.NotNil(t, p.OTPMaxOut, "stale lockout timestamp is kept")
	assert.Equal(t, otp.StatePending, m.StateOf(p))
}

func TestRegenerate_AttemptsStayInRange(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(clock)
	p := freshProfile()

	for i := 0; i < 20; i++ {
		_, _, err := m.Regenerate(p)
		if err != nil {
			clock.Advance(time.Hour)
			continue
		}
		assert.GreaterOrEqual(t, p.MaxOTPTry, 0)
		assert.LessOrEqual(t, p.MaxOTPTry, otp.DefaultConfig.MaxTry)
	}
}

func TestCheckReset(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(clock)
	p := freshProfile()
	p.IsActive = true

	code, _, err := m.Issue(p)
	require.NoError(t, err)
	assert.True(t, m.CheckReset(p, code))
	assert.False(t, m.CheckReset(p, "000000"))

	m.ClearExpiry(p)
	assert.False(t, m.CheckReset(p, code))
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := otp.GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
