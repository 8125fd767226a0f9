package loader

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
)

const slidePrefix = "ppt/slides/slide"

// ExtractPPTX returns one unit per slide in slide-number order. Each text
// paragraph on a slide becomes one line.
func ExtractPPTX(ctx context.Context, file string) ([]string, error) {
	r, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range r.File {
		if path.Dir(f.Name) != "ppt/slides" || !strings.HasPrefix(f.Name, slidePrefix) || path.Ext(f.Name) != ".xml" {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(f.Name, slidePrefix), ".xml"))
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: f})
	}
	slices.SortFunc(slides, func(a, b slide) int { return a.num - b.num })

	units := make([]string, 0, len(slides))
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := partText(s.file, false)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		units = append(units, text)
	}
	return units, nil
}
