package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

func writeJSONCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadJSONCorpus(t *testing.T) {
	path := writeJSONCorpus(t, `[
		{"doc_id": "element_011", "type": "element", "iupac_name": "sodium", "formula": "Na"},
		{"doc_id": "compound_042", "type": "compound", "iupac_name": "ethanol", "formula": "C2H5OH", "image_path": "compounds/ethanol.png"}
	]`)

	store, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 docs, got %d", store.Len())
	}
	doc, ok := store.ByID("compound_042")
	if !ok || doc.ImagePath != "compounds/ethanol.png" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !domain.IsKind(err, domain.ErrDataLoad) {
		t.Fatalf("expected data load error, got %v", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeJSONCorpus(t, `{"not": "a list"}`)

	_, err := Load(path)
	if !domain.IsKind(err, domain.ErrDataLoad) {
		t.Fatalf("expected data load error, got %v", err)
	}
}

func TestLoadEmptyCorpusIsSearchable(t *testing.T) {
	path := writeJSONCorpus(t, `[]`)

	store, err := Load(path)
	if err != nil {
		t.Fatalf("an empty corpus must load cleanly, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected zero documents, got %d", store.Len())
	}
	if _, ok := store.ByID("element_011"); ok {
		t.Fatal("expected no documents by id")
	}
}

func TestLoadXLSXCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"doc_id", "type", "iupac_name", "formula", "image_path"},
		{"element_011", "element", "sodium", "Na", "elements/na.png"},
		{"compound_007", "compound", "sodium chloride", "NaCl", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	store, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 docs, got %d", store.Len())
	}
	doc, ok := store.ByID("element_011")
	if !ok || doc.ImagePath != "elements/na.png" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestLoadXLSXMissingRequiredColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{"doc_id", "type", "iupac_name"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	row := []any{"element_011", "element", "sodium"}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	_, err := Load(path)
	if !domain.IsKind(err, domain.ErrDataLoad) {
		t.Fatalf("expected data load error for missing column, got %v", err)
	}
}
