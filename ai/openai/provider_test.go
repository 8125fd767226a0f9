package openai

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/poiesic/docrag/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_MissingCredential(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig())
	assert.ErrorIs(t, err, ai.ErrMissingCredential)
	assert.Nil(t, provider)
}

func TestNewProvider_LocalHost(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Generator())
}

func TestNewProvider_SharesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	provider, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, provider.Close())

	assert.Contains(t, buf.String(), "component=openai-provider")
	assert.Contains(t, buf.String(), "provider ready")

	p := provider.(*Provider)
	assert.Same(t, p.embedder.logger, p.embedder.policy.logger)
}

func TestNewEmbedder_InvalidConfig(t *testing.T) {
	_, err := NewEmbedder(ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithEmbeddingModel("")))
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
}
