package loader

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExtractXLSX returns one unit per non-empty sheet, rows separated by
// newlines and cells by tabs.
func ExtractXLSX(_ context.Context, path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var units []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			units = append(units, strings.Join(lines, "\n"))
		}
	}
	return units, nil
}
