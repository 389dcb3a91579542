package env

import (
	"context"
	"testing"

	"github.com/bnema/ngmetro/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceReturnsConfiguredCredentials(t *testing.T) {
	t.Parallel()

	creds, err := NewSource("  user@example.com ", "hunter2").Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.Credentials{Username: "user@example.com", Password: "hunter2"}, creds)
	assert.True(t, creds.Complete())
}

func TestSourceReturnsIncompleteCredentialsWithoutError(t *testing.T) {
	t.Parallel()

	creds, err := NewSource("", "").Credentials(context.Background())
	require.NoError(t, err)
	assert.False(t, creds.Complete())
}

func TestSourceHonoursCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource("u", "p").Credentials(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
