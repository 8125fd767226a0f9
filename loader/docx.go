package loader

import (
	"archive/zip"
	"context"
	"strings"

	"github.com/unidoc/unioffice/document"
)

const docxBody = "word/document.xml"

// ExtractDOCX reads the text runs of word/document.xml as one unit, one
// line per paragraph. Table cells appear in reading order. Needs no license.
func ExtractDOCX(ctx context.Context, path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := findPart(&r.Reader, docxBody)
	if err != nil {
		return nil, err
	}
	text, err := partText(body, true)
	if err != nil {
		return nil, err
	}
	return []string{text}, nil
}

// ExtractDOCXOffice uses unioffice and returns body paragraphs followed by
// table rows, cells separated by tabs, as one unit. unioffice refuses to open
// documents until a metered key is registered, so the Loader only uses this
// extractor after WithOfficeLicenseKey succeeds.
func ExtractDOCXOffice(_ context.Context, path string) ([]string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var lines []string
	for _, para := range doc.Paragraphs() {
		if text := paragraphText(para); text != "" {
			lines = append(lines, text)
		}
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var parts []string
				for _, para := range cell.Paragraphs() {
					if text := paragraphText(para); text != "" {
						parts = append(parts, text)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return []string{strings.Join(lines, "\n")}, nil
}

func paragraphText(para document.Paragraph) string {
	var sb strings.Builder
	for _, run := range para.Runs() {
		sb.WriteString(run.Text())
	}
	return strings.TrimSpace(sb.String())
}
