package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// LoadGoldenCases reads and parses a golden case set from a JSON file.
func LoadGoldenCases(path string) ([]GoldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden cases file: %w", err)
	}

	var cases []GoldenCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse golden cases: %w", err)
	}

	return cases, nil
}

var knownFields = func() map[string]struct{} {
	m := make(map[string]struct{}, len(entities.TargetFields))
	for _, f := range entities.TargetFields {
		m[f] = struct{}{}
	}
	return m
}()

// ValidateGoldenCases checks that all golden cases have required fields and valid values.
func ValidateGoldenCases(cases []GoldenCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("case %q: missing text", c.ID)
		}
		for field := range c.ExpectedFields {
			if _, ok := knownFields[field]; !ok {
				return fmt.Errorf("case %q: unknown expected field %q", c.ID, field)
			}
		}
		for _, t := range c.ExpectedFlagTypes {
			if !t.IsValid() {
				return fmt.Errorf("case %q: invalid flag type %q", c.ID, t)
			}
		}
		if !c.Difficulty.IsValid() {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
	}

	return nil
}
