package loader

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/documentloaders"
)

// ExtractPDF returns the plain text of each page.
func ExtractPDF(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pages, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, err
	}

	units := make([]string, len(pages))
	for i, page := range pages {
		units[i] = page.PageContent
	}
	return units, nil
}
