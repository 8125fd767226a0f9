package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "same text")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, []string{"same text", "same text"}, m.Texts())

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedder_Failing(t *testing.T) {
	boom := errors.New("unreachable")
	m := NewFailingEmbedder(boom)

	_, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	vectors, err := m.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockGenerator(t *testing.T) {
	g := NewMockGenerator("hello")

	_, ok := g.LastCall()
	assert.False(t, ok)

	text, err := g.Complete(context.Background(), "system", "user", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	call, ok := g.LastCall()
	require.True(t, ok)
	assert.Equal(t, GenerateCall{System: "system", User: "user", Temperature: 0.4}, call)

	failing := NewFailingGenerator(errors.New("timeout"))
	_, err = failing.Complete(context.Background(), "s", "u", 0.7)
	assert.Error(t, err)
	assert.Equal(t, 1, failing.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()

	mp := p.(*MockProvider)
	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockGenerator(), p.Generator())

	mp.CloseErr = errors.New("busy")
	assert.ErrorIs(t, p.Close(), mp.CloseErr)
	assert.Equal(t, 1, mp.CloseCount())
}
