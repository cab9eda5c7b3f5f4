package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactMasksCredentials(t *testing.T) {
	in := []interface{}{"username", "alice", "password", "hunter22", "OTP", "123456"}
	out := redact(in)

	assert.Equal(t, "alice", out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Equal(t, "[REDACTED]", out[5])
	// input is left untouched
	assert.Equal(t, "hunter22", in[3])
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Info("otp issued", "profile_id", "p1", "code", "654321")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "test", fields["component"])
		assert.Equal(t, "p1", fields["profile_id"])
		assert.Equal(t, "[REDACTED]", fields["code"])
	}
}

func TestNew(t *testing.T) {
	l, err := New("production")
	assert.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)

	l, err = New("dev")
	assert.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)
}
