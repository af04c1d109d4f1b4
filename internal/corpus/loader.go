package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

// Load reads a corpus source and returns a validated Store. The format is
// picked by extension: .json (the canonical export) or .xlsx (how the
// periodic-table source data usually arrives).
func Load(path string) (*Store, error) {
	var (
		docs []domain.ChemDocument
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		docs, err = loadXLSX(path)
	default:
		docs, err = loadJSON(path)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(docs)
}

func loadJSON(path string) ([]domain.ChemDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDataLoad, "read corpus file", err)
	}

	var docs []domain.ChemDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, domain.WrapError(domain.ErrDataLoad, "decode corpus json", err)
	}
	// An empty corpus is valid: search simply finds nothing until a
	// populated export is deployed.
	return docs, nil
}
