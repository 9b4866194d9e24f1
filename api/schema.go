package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// maxBodyBytes caps request bodies. A month of entries is a few KB.
const maxBodyBytes = 1 << 20

const dayItemSchema = `{
  "type": "object",
  "required": ["date", "startTime", "endTime"],
  "properties": {
    "id": { "type": "string", "maxLength": 64 },
    "date": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$" },
    "startTime": { "type": "string", "pattern": "^\\d{2}:\\d{2}$" },
    "endTime": { "type": "string", "pattern": "^\\d{2}:\\d{2}$" },
    "projectWorked": { "type": "string", "maxLength": 200 },
    "calculationModelId": { "type": "string", "maxLength": 64 }
  }
}`

const modelItemSchema = `{
  "type": "object",
  "required": ["id", "name", "multiplier"],
  "properties": {
    "id": { "type": "string" },
    "name": { "type": "string", "maxLength": 100 },
    "multiplier": { "type": "number" }
  }
}`

var (
	registerSchema = mustSchema(`{
  "type": "object",
  "required": ["name", "email", "password"],
  "properties": {
    "name": { "type": "string" },
    "email": { "type": "string" },
    "password": { "type": "string" }
  }
}`)

	loginSchema = mustSchema(`{
  "type": "object",
  "required": ["email", "password"],
  "properties": {
    "email": { "type": "string" },
    "password": { "type": "string", "minLength": 1 },
    "deviceName": { "type": "string", "maxLength": 100 }
  }
}`)

	refreshSchema = mustSchema(`{
  "type": "object",
  "required": ["refreshToken"],
  "properties": {
    "refreshToken": { "type": "string", "minLength": 1 }
  }
}`)

	saveHoursSchema = mustSchema(`{
  "type": "object",
  "required": ["salary", "days"],
  "properties": {
    "salary": { "type": "number", "minimum": 0 },
    "days": { "type": "array", "items": ` + dayItemSchema + ` }
  }
}`)

	saveModelsSchema = mustSchema(`{
  "type": "object",
  "required": ["models"],
  "properties": {
    "models": { "type": "array", "items": ` + modelItemSchema + ` }
  }
}`)

	addModelSchema = mustSchema(`{
  "type": "object",
  "properties": {
    "name": { "type": "string", "maxLength": 100 },
    "multiplier": { "type": "number", "minimum": 1 }
  }
}`)

	updateModelSchema = mustSchema(`{
  "type": "object",
  "minProperties": 1,
  "properties": {
    "name": { "type": "string", "maxLength": 100 },
    "multiplier": { "type": "number" }
  }
}`)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("api: invalid request schema: %v", err))
	}
	return schema
}

// SchemaError lists the JSON Schema violations of a request body.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "request body does not match schema: " + strings.Join(e.Issues, "; ")
}

// validateBody checks raw JSON against a schema.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaError{Issues: []string{"body must be valid JSON"}}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		issues[i] = fmt.Sprintf("%s: %s", e.Field(), e.Description())
	}
	return &SchemaError{Issues: issues}
}

// decode reads, validates and unmarshals a request body. On failure it
// writes a 400 (or 413) response and returns false.
func decode(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
			return false
		}
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return false
	}

	if err := validateBody(schema, body); err != nil {
		var se *SchemaError
		errors.As(err, &se)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    codeValidation,
			Details: se.Issues,
		})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}
