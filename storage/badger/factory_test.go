package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/docrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_NamespacesAreIsolated(t *testing.T) {
	root := t.TempDir()
	factory, err := NewFactory(root)
	require.NoError(t, err)
	ctx := context.Background()

	alpha, err := factory.Open("alpha")
	require.NoError(t, err)
	defer alpha.Close()
	beta, err := factory.Open("beta")
	require.NoError(t, err)
	defer beta.Close()

	require.NoError(t, alpha.Replace(ctx, []*core.IndexEntry{entry("alpha secret", 1, 0)}))

	results, err := beta.FindSimilar(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.True(t, factory.Exists("alpha"))
	assert.DirExists(t, filepath.Join(root, "alpha"))
	assert.False(t, factory.Exists("gamma"))
}

func TestFactory_RejectsBadNamespace(t *testing.T) {
	factory, err := NewFactory(t.TempDir())
	require.NoError(t, err)

	_, err = factory.Open("../escape")
	assert.ErrorIs(t, err, core.ErrInvalidSession)

	_, err = NewFactory("")
	assert.Error(t, err)
}

func TestMemoryFactory(t *testing.T) {
	factory := NewMemoryFactory()

	store, err := factory.Open("session")
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, factory.Exists("session"))
}
