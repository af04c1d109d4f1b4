package usecase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultExpansions maps well-known formula shorthands to the common name
// students mean by them. Expansion is an exact, case-sensitive whole-query
// substitution applied before both retrieval passes.
var defaultExpansions = map[string]string{
	"NaCl": "sodium chloride",
	"HCl":  "hydrogen chloride",
	"H2O":  "water",
}

func DefaultExpansions() map[string]string {
	out := make(map[string]string, len(defaultExpansions))
	for k, v := range defaultExpansions {
		out[k] = v
	}
	return out
}

// LoadExpansions merges a YAML mapping of query -> replacement over the
// built-in defaults. An empty path returns the defaults unchanged.
func LoadExpansions(path string) (map[string]string, error) {
	out := DefaultExpansions()
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expansions file: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("decode expansions yaml: %w", err)
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out, nil
}

func expandQuery(query string, expansions map[string]string) string {
	if expanded, ok := expansions[query]; ok {
		return expanded
	}
	return query
}
