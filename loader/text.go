package loader

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/documentloaders"
)

// ExtractText returns the whole file as a single unit.
func ExtractText(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, err
	}

	units := make([]string, len(docs))
	for i, doc := range docs {
		units[i] = doc.PageContent
	}
	return units, nil
}
