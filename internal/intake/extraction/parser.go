// internal/intake/extraction/parser.go

// Package extraction turns raw model output into a typed three-state result.
package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrParseFailure = errors.New("PARSE_FAILURE")

// resultSchemaJSON checks the payload shape before decoding is trusted.
// Unknown fields stay allowed so the prompt can evolve without breaking older
// binaries.
const resultSchemaJSON = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"raciocinio": {"type": ["string", "null"]},
		"status": {"enum": ["INCOMPLETE", "COMPLETED", "IGNORE"]},
		"dados": {
			"type": ["object", "null"],
			"properties": {
				"nome_solicitante": {"type": ["string", "null"]},
				"destino": {"type": ["string", "null"]},
				"data_hora_iso": {"type": ["string", "null"]},
				"passageiros": {"type": ["array", "null"], "items": {"type": "string"}},
				"aguardar_retorno": {"type": ["boolean", "null"]},
				"proad": {"type": ["string", "null"]},
				"tipo_veiculo": {"type": ["string", "null"]}
			}
		},
		"mensagem_usuario": {"type": ["string", "null"]},
		"message": {"type": ["string", "null"]}
	}
}`

var resultSchema = mustCompileSchema(resultSchemaJSON)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("extraction: invalid result schema: %v", err))
	}
	return schema
}

// wireResult mirrors the provider payload. "message" is an accepted alias of
// "mensagem_usuario".
type wireResult struct {
	Reasoning string    `json:"raciocinio"`
	Status    Status    `json:"status"`
	Data      *TripData `json:"dados"`
	UserReply *string   `json:"mensagem_usuario"`
	Message   *string   `json:"message"`
}

// Parse strips markdown code fences the model may wrap around the JSON
// payload, validates the shape, and decodes. Blank or undecodable input is
// always an ErrParseFailure, never a silently empty Result.
func Parse(raw string) (*Result, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty model output", ErrParseFailure)
	}

	validation, err := resultSchema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if !validation.Valid() {
		issues := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrParseFailure, strings.Join(issues, "; "))
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	reply := ""
	switch {
	case wire.UserReply != nil:
		reply = *wire.UserReply
	case wire.Message != nil:
		reply = *wire.Message
	}

	return &Result{
		Reasoning: wire.Reasoning,
		Status:    wire.Status,
		Data:      wire.Data,
		UserReply: reply,
	}, nil
}

// StripFences removes common markdown code-fence wrappers.
func StripFences(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
