package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// querySchema constrains the incoming request payload before the pipeline
// touches it. Kept permissive on additional fields so transports can attach
// their own metadata.
const querySchema = `{
	"type": "object",
	"properties": {
		"query":           {"type": "string", "minLength": 1, "maxLength": 2000},
		"language_hint":   {"type": "string", "enum": ["en", "hi", "hinglish"]},
		"session_id":      {"type": "string", "minLength": 1, "maxLength": 128},
		"client_identity": {"type": "string", "maxLength": 128},
		"latitude":        {"type": "number", "minimum": -90, "maximum": 90},
		"longitude":       {"type": "number", "minimum": -180, "maximum": 180}
	},
	"required": ["query", "session_id"]
}`

// ValidateQueryPayload validates a raw JSON request body against the query
// schema. The returned error lists every violation.
func ValidateQueryPayload(body []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(querySchema)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("payload validation failed: %s", strings.Join(msgs, "; "))
}
