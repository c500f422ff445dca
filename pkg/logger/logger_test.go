package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "DEBUG"} {
		assert.NoError(t, Setup(level), level)
	}
	require.Error(t, Setup("chatty"))
}

func TestWithContextRoundTrip(t *testing.T) {
	tagged := slog.Default().With("command", "dpctl query")
	ctx := WithContext(context.Background(), tagged)
	assert.Same(t, tagged, FromContext(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWithError(t *testing.T) {
	log := slog.Default()
	assert.Same(t, log, WithError(log, nil))
	assert.NotSame(t, log, WithError(log, errors.New("boom")))
}
