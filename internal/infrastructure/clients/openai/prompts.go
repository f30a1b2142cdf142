package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const extractionSystemPrompt = `You extract structured data from US health insurance policy documents. Return ONLY valid JSON with this shape:
{
  "fields": { %s },
  "confidence": number between 0 and 1
}
Rules:
- Use null for any field not stated in the document. Never guess.
- Money amounts are plain numbers in US dollars without symbols or commas.
- Dates use YYYY-MM-DD.
- plan_year is a four digit integer.
- policy_type is one of: health, dental, vision, life, disability, other.
- confidence reflects how sure you are about the extracted values as a whole.`

// buildSystemPrompt lists the requested fields in the expected response shape.
func buildSystemPrompt(fields []string) string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = fmt.Sprintf("%q: ...", f)
	}
	return fmt.Sprintf(extractionSystemPrompt, strings.Join(keys, ", "))
}

func buildUserPrompt(rawText string, limit int) string {
	text := strings.TrimSpace(rawText)
	if limit > 0 && len(text) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return "Policy document text:\n" + text
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// responseSchema is the JSON schema every model answer must satisfy.
var responseSchema = map[string]any{
	"type":     "object",
	"required": []string{"fields", "confidence"},
	"properties": map[string]any{
		"fields": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": []string{"string", "number", "null"},
			},
		},
		"confidence": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
	},
}

type extractionPayload struct {
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
}

type responseValidator struct {
	schema *jsonschema.Schema
}

func newResponseValidator() (*responseValidator, error) {
	b, err := json.Marshal(responseSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &responseValidator{schema: schema}, nil
}

// parse validates data against the schema and decodes it.
func (v *responseValidator) parse(data []byte) (*extractionPayload, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := v.schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}
	var payload extractionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
