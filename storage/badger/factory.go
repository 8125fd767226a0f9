package badger

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

// Factory opens one store per session namespace.
// On disk every namespace gets its own directory under the root.
type Factory struct {
	root     string
	inMemory bool
}

var _ storage.StoreFactory = (*Factory)(nil)

// NewFactory creates a factory persisting stores under root.
func NewFactory(root string) (*Factory, error) {
	if root == "" {
		return nil, errors.New("index root directory required")
	}
	return &Factory{root: root}, nil
}

// NewMemoryFactory creates a factory whose stores live only in memory.
// Every Open returns a fresh, empty store.
func NewMemoryFactory() *Factory {
	return &Factory{inMemory: true}
}

// Root returns the directory holding namespace directories.
func (f *Factory) Root() string {
	return f.root
}

// Path returns the directory used for namespace.
func (f *Factory) Path(namespace string) string {
	return filepath.Join(f.root, namespace)
}

// Exists reports whether a persisted store directory exists for namespace.
func (f *Factory) Exists(namespace string) bool {
	if f.inMemory {
		return false
	}
	info, err := os.Stat(f.Path(namespace))
	return err == nil && info.IsDir()
}

// Open returns the store for namespace, creating its directory on first use.
func (f *Factory) Open(namespace string) (storage.VectorStore, error) {
	if err := core.ValidateSession(core.SessionContext{Namespace: namespace}); err != nil {
		return nil, err
	}
	if f.inMemory {
		return NewMemoryStore()
	}
	return NewStore(f.Path(namespace))
}
