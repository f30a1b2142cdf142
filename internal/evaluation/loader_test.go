package evaluation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

func TestLoadGoldenCases_ValidFile(t *testing.T) {
	content := `[
		{"id": "c1", "text": "Plan Name: Acme Gold HMO", "expected_fields": {"policy_name": "Acme Gold HMO"}, "expected_flag_types": [], "difficulty": "easy"},
		{"id": "c2", "text": "Prior authorization is required.", "expected_fields": {}, "expected_flag_types": ["preauth_required"], "difficulty": "medium"}
	]`
	path := writeTempFile(t, content)

	cases, err := LoadGoldenCases(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ExpectedFields[entities.FieldPolicyName] != "Acme Gold HMO" {
		t.Errorf("expected policy_name Acme Gold HMO, got %q", cases[0].ExpectedFields[entities.FieldPolicyName])
	}
	if cases[1].Difficulty != DifficultyMedium {
		t.Errorf("expected difficulty medium, got %s", cases[1].Difficulty)
	}
	if len(cases[1].ExpectedFlagTypes) != 1 || cases[1].ExpectedFlagTypes[0] != entities.RedFlagPreauthRequired {
		t.Errorf("expected [preauth_required], got %v", cases[1].ExpectedFlagTypes)
	}
}

func TestLoadGoldenCases_InvalidFile(t *testing.T) {
	_, err := LoadGoldenCases("/nonexistent/path.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenCases_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	_, err := LoadGoldenCases(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenCases_ShippedSetIsValid(t *testing.T) {
	cases, err := LoadGoldenCases(filepath.Join("..", "..", "config", "golden_policies.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("expected at least one golden case")
	}
	if err := ValidateGoldenCases(cases); err != nil {
		t.Errorf("shipped golden cases invalid: %v", err)
	}
}

func TestValidateGoldenCases(t *testing.T) {
	valid := GoldenCase{
		ID:                "c1",
		Text:              "Plan Name: Acme",
		ExpectedFields:    map[string]string{entities.FieldPolicyName: "Acme"},
		ExpectedFlagTypes: []entities.RedFlagType{entities.RedFlagExclusion},
		Difficulty:        DifficultyEasy,
	}

	tests := []struct {
		name    string
		mutate  func(c *GoldenCase)
		wantErr string
	}{
		{name: "valid", mutate: func(c *GoldenCase) {}},
		{name: "missing id", mutate: func(c *GoldenCase) { c.ID = "" }, wantErr: "missing id"},
		{name: "blank text", mutate: func(c *GoldenCase) { c.Text = "  " }, wantErr: "missing text"},
		{name: "unknown field", mutate: func(c *GoldenCase) { c.ExpectedFields = map[string]string{"copay": "20"} }, wantErr: "unknown expected field"},
		{name: "bad flag type", mutate: func(c *GoldenCase) { c.ExpectedFlagTypes = []entities.RedFlagType{"scary"} }, wantErr: "invalid flag type"},
		{name: "bad difficulty", mutate: func(c *GoldenCase) { c.Difficulty = "extreme" }, wantErr: "invalid difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := ValidateGoldenCases([]GoldenCase{c})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateGoldenCases_DuplicateID(t *testing.T) {
	c := GoldenCase{ID: "dup", Text: "x", Difficulty: DifficultyHard}
	err := ValidateGoldenCases([]GoldenCase{c, c})
	if err == nil || !strings.Contains(err.Error(), "duplicate id") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
