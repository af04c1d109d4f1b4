package usecase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandQueryKnownShorthand(t *testing.T) {
	expansions := DefaultExpansions()

	if got := expandQuery("NaCl", expansions); got != "sodium chloride" {
		t.Fatalf("expected sodium chloride, got %q", got)
	}
	if got := expandQuery("H2O", expansions); got != "water" {
		t.Fatalf("expected water, got %q", got)
	}
}

func TestExpandQueryIsExactAndCaseSensitive(t *testing.T) {
	expansions := DefaultExpansions()

	if got := expandQuery("nacl", expansions); got != "nacl" {
		t.Fatalf("expected lowercase query untouched, got %q", got)
	}
	if got := expandQuery("NaCl solution", expansions); got != "NaCl solution" {
		t.Fatalf("expected partial match untouched, got %q", got)
	}
}

func TestDefaultExpansionsReturnsCopy(t *testing.T) {
	first := DefaultExpansions()
	first["NaCl"] = "mutated"

	second := DefaultExpansions()
	if second["NaCl"] != "sodium chloride" {
		t.Fatalf("defaults were mutated through a returned map: %q", second["NaCl"])
	}
}

func TestLoadExpansionsMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expansions.yml")
	content := "NaCl: table salt\nKOH: potassium hydroxide\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	expansions, err := LoadExpansions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expansions["NaCl"] != "table salt" {
		t.Fatalf("expected override to win, got %q", expansions["NaCl"])
	}
	if expansions["KOH"] != "potassium hydroxide" {
		t.Fatalf("expected new entry, got %q", expansions["KOH"])
	}
	if expansions["H2O"] != "water" {
		t.Fatalf("expected untouched default to survive, got %q", expansions["H2O"])
	}
}

func TestLoadExpansionsEmptyPathReturnsDefaults(t *testing.T) {
	expansions, err := LoadExpansions("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expansions) != len(defaultExpansions) {
		t.Fatalf("expected %d defaults, got %d", len(defaultExpansions), len(expansions))
	}
}

func TestLoadExpansionsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expansions.yml")
	if err := os.WriteFile(path, []byte("key: [unclosed"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadExpansions(path); err == nil {
		t.Fatal("expected decode error")
	}
}
