// Package otp implements the one-time passcode lifecycle of a profile:
// issue, verify, regenerate and the lockout that follows an exhausted
// regeneration budget.
//
// Manager only mutates the profile in memory. Callers persist the result
// inside the same transaction that loaded the profile.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"socialapp/internal/apperr"
	"socialapp/internal/models"
)

// State is the derived lifecycle state of a profile.
type State string

const (
	StateUnverified State = "UNVERIFIED"
	StatePending    State = "PENDING"
	StateLocked     State = "LOCKED"
	StateVerified   State = "VERIFIED"
)

const codeLength = 6

// Config holds the lifecycle constants.
type Config struct {
	MaxTry  int
	TTL     time.Duration
	Lockout time.Duration
}

// DefaultConfig is three regenerations, five minute codes and a one hour lockout.
var DefaultConfig = Config{MaxTry: 3, TTL: 5 * time.Minute, Lockout: time.Hour}

// Manager applies lifecycle transitions.
type Manager struct {
	cfg      Config
	now      func() time.Time
	generate func() (string, error)
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGenerator replaces the random code source.
func WithGenerator(gen func() (string, error)) Option {
	return func(m *Manager) { m.generate = gen }
}

// NewManager creates a Manager.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, now: time.Now, generate: GenerateCode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxTry is the regeneration budget a fresh profile starts with.
func (m *Manager) MaxTry() int { return m.cfg.MaxTry }

// Now returns the manager's current time.
func (m *Manager) Now() time.Time { return m.now() }

// StateOf derives the lifecycle state of p.
func (m *Manager) StateOf(p *models.Profile) State {
	now := m.now()
	switch {
	case p.IsActive:
		return StateVerified
	case m.lockedUntil(p, now) > 0:
		return StateLocked
	case p.OTPExpiry != nil:
		return StatePending
	default:
		return StateUnverified
	}
}

// Issue sets a fresh code on p without touching the regeneration budget.
func (m *Manager) Issue(p *models.Profile) (string, time.Time, error) {
	now := m.now()
	if wait := m.lockedUntil(p, now); wait > 0 {
		return "", time.Time{}, apperr.Locked(wait, "verification attempts exhausted, try again later")
	}
	return m.setCode(p, now)
}

// Verify reports whether code activates p. On success the OTP fields are
// cleared and the budget is restored. A failed attempt changes nothing.
func (m *Manager) Verify(p *models.Profile, code string) bool {
	now := m.now()
	if p.IsActive || p.OTP == "" || p.OTP != code || p.OTPExpiry == nil || !now.Before(*p.OTPExpiry) {
		return false
	}
	p.IsActive = true
	p.OTP = ""
	p.OTPExpiry = nil
	p.MaxOTPTry = m.cfg.MaxTry
	p.OTPMaxOut = nil
	return true
}

// Regenerate issues a new code and spends one unit of the budget. When the
// budget hits zero a lockout starts. A budget that would go below zero, which
// only happens once a lockout has elapsed, is reset to the maximum.
func (m *Manager) Regenerate(p *models.Profile) (string, time.Time, error) {
	now := m.now()
	if wait := m.lockedUntil(p, now); wait > 0 {
		return "", time.Time{}, apperr.Locked(wait, "verification attempts exhausted, try again in %s", wait.Round(time.Minute))
	}

	code, expiry, err := m.setCode(p, now)
	if err != nil {
		return "", time.Time{}, err
	}

	remaining := p.MaxOTPTry - 1
	switch {
	case remaining == 0:
		lockout := now.Add(m.cfg.Lockout)
		p.MaxOTPTry = 0
		p.OTPMaxOut = &lockout
	case remaining < 0:
		// the lockout timestamp is left in place, it is already in the past
		p.MaxOTPTry = m.cfg.MaxTry
	default:
		p.MaxOTPTry = remaining
		p.OTPMaxOut = nil
	}
	return code, expiry, nil
}

// CheckReset validates a password-reset code. Unlike Verify it does not
// require the profile to be inactive.
func (m *Manager) CheckReset(p *models.Profile, code string) bool {
	now := m.now()
	return p.OTP != "" && p.OTP == code && p.OTPExpiry != nil && !now.After(*p.OTPExpiry)
}

// ClearExpiry invalidates the current code.
func (m *Manager) ClearExpiry(p *models.Profile) {
	p.OTPExpiry = nil
}

func (m *Manager) setCode(p *models.Profile, now time.Time) (string, time.Time, error) {
	code, err := m.generate()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate otp: %w", err)
	}
	expiry := now.Add(m.cfg.TTL)
	p.OTP = code
	p.OTPExpiry = &expiry
	return code, expiry, nil
}

// lockedUntil returns the remaining lockout, or zero when p is not locked.
func (m *Manager) lockedUntil(p *models.Profile, now time.Time) time.Duration {
	if p.MaxOTPTry != 0 || p.OTPMaxOut == nil || !now.Before(*p.OTPMaxOut) {
		return 0
	}
	return p.OTPMaxOut.Sub(now)
}

// GenerateCode returns a random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}
