package corpus

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// loadXLSX reads the first sheet of a spreadsheet whose header row names
// the ChemDocument fields (doc_id, type, iupac_name, formula, image_path,
// audio_path). Column order is free; unknown columns are ignored.
func loadXLSX(path string) ([]domain.ChemDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDataLoad, "open corpus xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrDataLoad, "read corpus xlsx", fmt.Errorf("%s has no sheets", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.WrapError(domain.ErrDataLoad, "read corpus xlsx rows", err)
	}
	if len(rows) < 2 {
		return nil, domain.WrapError(domain.ErrDataLoad, "read corpus xlsx", fmt.Errorf("%s sheet %q has no data rows", path, sheets[0]))
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"doc_id", "type", "iupac_name", "formula"} {
		if _, ok := cols[required]; !ok {
			return nil, domain.WrapError(domain.ErrDataLoad, "read corpus xlsx", fmt.Errorf("missing column %q", required))
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	docs := make([]domain.ChemDocument, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		docs = append(docs, domain.ChemDocument{
			DocID:     cell(row, "doc_id"),
			Type:      domain.DocumentType(cell(row, "type")),
			IUPACName: cell(row, "iupac_name"),
			Formula:   cell(row, "formula"),
			ImagePath: cell(row, "image_path"),
			AudioPath: cell(row, "audio_path"),
		})
	}
	return docs, nil
}
