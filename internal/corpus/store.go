// Package corpus owns the canonical chemistry document collection. It is
// loaded whole at process start and immutable afterwards, which makes it
// safe for concurrent reads without locking.
package corpus

import (
	"fmt"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

type Store struct {
	docs []domain.ChemDocument
	byID map[string]domain.ChemDocument
}

// NewStore validates every document eagerly. A single malformed entry or a
// duplicate doc_id fails the whole store: either the full corpus is
// available or search is not initialized at all.
func NewStore(docs []domain.ChemDocument) (*Store, error) {
	byID := make(map[string]domain.ChemDocument, len(docs))
	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, domain.WrapError(domain.ErrDataLoad, fmt.Sprintf("validate entry %d", i), err)
		}
		if _, exists := byID[doc.DocID]; exists {
			return nil, domain.WrapError(domain.ErrDataLoad, "validate corpus", fmt.Errorf("duplicate doc_id %q", doc.DocID))
		}
		byID[doc.DocID] = doc
	}
	out := make([]domain.ChemDocument, len(docs))
	copy(out, docs)
	return &Store{docs: out, byID: byID}, nil
}

// All returns documents in load order. Callers must treat the slice as
// read-only.
func (s *Store) All() []domain.ChemDocument {
	return s.docs
}

func (s *Store) ByID(docID string) (domain.ChemDocument, bool) {
	doc, ok := s.byID[docID]
	return doc, ok
}

func (s *Store) Len() int {
	return len(s.docs)
}
