package domain

import (
	"fmt"
	"strings"
)

type DocumentType string

const (
	TypeElement  DocumentType = "element"
	TypeCompound DocumentType = "compound"
)

// ChemDocument is one entry of the chemistry corpus: a periodic-table
// element or a curated compound. The corpus is loaded once at startup and
// read-only afterwards.
type ChemDocument struct {
	DocID     string       `json:"doc_id"`
	Type      DocumentType `json:"type"`
	IUPACName string       `json:"iupac_name"`
	Formula   string       `json:"formula"`
	ImagePath string       `json:"image_path,omitempty"`
	AudioPath string       `json:"audio_path,omitempty"`
}

func (d ChemDocument) Validate() error {
	if strings.TrimSpace(d.DocID) == "" {
		return fmt.Errorf("doc_id is required")
	}
	if d.Type != TypeElement && d.Type != TypeCompound {
		return fmt.Errorf("doc %q: type must be %q or %q, got %q", d.DocID, TypeElement, TypeCompound, d.Type)
	}
	if strings.TrimSpace(d.IUPACName) == "" {
		return fmt.Errorf("doc %q: iupac_name is required", d.DocID)
	}
	if strings.TrimSpace(d.Formula) == "" {
		return fmt.Errorf("doc %q: formula is required", d.DocID)
	}
	return nil
}

// SearchableText is the unit indexed by both the dense and the sparse
// representation. It must be built identically at ingest time and at query
// time, so keep this the single place that derives it.
func (d ChemDocument) SearchableText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.IUPACName, d.Formula, string(d.Type), d.DocID} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
