package loader

import (
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractHTML returns the page title and the text of headings, paragraphs
// and list items as one unit. Content inside main or article elements is
// preferred when present.
func ExtractHTML(_ context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h1,h2,h3,h4,h5,h6,p,li,td,pre").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	return []string{strings.Join(parts, "\n")}, nil
}
