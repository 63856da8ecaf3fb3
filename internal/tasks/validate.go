package tasks

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://tareas.local/schemas/"

// ValidationError lists what is wrong with a request body, split into
// errors about the body as a whole and errors about single fields.
type ValidationError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationError() *ValidationError {
	return &ValidationError{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{},
	}
}

func (e *ValidationError) Error() string {
	parts := append([]string(nil), e.FormErrors...)

	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.FieldErrors[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) addField(field, msg string) {
	e.FieldErrors[field] = append(e.FieldErrors[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.FormErrors) == 0 && len(e.FieldErrors) == 0
}

// bodySchema is a compiled request schema plus the messages that replace
// the library's wording for specific field/keyword pairs.
type bodySchema struct {
	name     string
	raw      json.RawMessage
	schema   *jsonschema.Schema
	required []string
	types    map[string]string // field -> JSON Schema type; "" is the body
	messages map[string]string // "field/keyword" -> message
}

var (
	createSchema = mustLoadSchema("create.json", []string{"titulo"}, map[string]string{
		"titulo/minLength": "Título requerido",
	})
	patchSchema = mustLoadSchema("patch.json", nil, map[string]string{
		"titulo/minLength": "String must contain at least 1 character(s)",
	})
)

func mustLoadSchema(name string, required []string, messages map[string]string) *bodySchema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("tasks: read schema %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	url := schemaBaseURL + name
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("tasks: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("tasks: compile schema %s: %v", name, err))
	}

	var shape struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		panic(fmt.Sprintf("tasks: read types of schema %s: %v", name, err))
	}
	types := map[string]string{"": shape.Type}
	for field, prop := range shape.Properties {
		types[field] = prop.Type
	}

	return &bodySchema{
		name:     name,
		raw:      raw,
		schema:   schema,
		required: required,
		types:    types,
		messages: messages,
	}
}

// CreateSchema and PatchSchema expose the raw request schemas, e.g. for
// the API description.
func CreateSchema() json.RawMessage { return createSchema.raw }
func PatchSchema() json.RawMessage { return patchSchema.raw }

// ParseCreate validates a create payload. On success hecho defaults to false.
func ParseCreate(body []byte) (CreateInput, *ValidationError) {
	var in CreateInput
	if verr := createSchema.decode(body, &in); verr != nil {
		return CreateInput{}, verr
	}
	return in, nil
}

// ParsePatch validates a partial update payload. Fields absent from the
// body stay nil in the result.
func ParsePatch(body []byte) (PatchInput, *ValidationError) {
	var in PatchInput
	if verr := patchSchema.decode(body, &in); verr != nil {
		return PatchInput{}, verr
	}
	return in, nil
}

func (s *bodySchema) decode(body []byte, dst any) *ValidationError {
	verr := newValidationError()

	if len(bytes.TrimSpace(body)) == 0 {
		verr.FormErrors = append(verr.FormErrors, "Required")
		return verr
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		verr.FormErrors = append(verr.FormErrors, "invalid JSON body")
		return verr
	}

	if err := s.schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			verr.FormErrors = append(verr.FormErrors, err.Error())
			return verr
		}
		s.collect(ve, doc, verr)
		if verr.empty() {
			verr.FormErrors = append(verr.FormErrors, ve.Message)
		}
		return verr
	}

	// The schema has already checked every type, so this only copies values.
	if err := json.Unmarshal(body, dst); err != nil {
		verr.FormErrors = append(verr.FormErrors, err.Error())
		return verr
	}
	return nil
}

// collect walks down to the leaf causes and files each one under the field
// it concerns, or under the form when it concerns the whole body.
func (s *bodySchema) collect(ve *jsonschema.ValidationError, doc any, out *ValidationError) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			s.collect(cause, doc, out)
		}
		return
	}

	keyword := path.Base(ve.KeywordLocation)
	field := fieldOf(ve.InstanceLocation)

	if keyword == "required" && field == "" {
		obj, _ := doc.(map[string]any)
		for _, name := range s.required {
			if _, ok := obj[name]; !ok {
				out.addField(name, "Required")
			}
		}
		return
	}

	msg := ve.Message
	if keyword == "type" {
		msg = s.typeMessage(field, doc)
	}
	if custom, ok := s.messages[field+"/"+keyword]; ok {
		msg = custom
	}

	if field == "" {
		out.FormErrors = append(out.FormErrors, msg)
		return
	}
	out.addField(field, msg)
}

// typeMessage words a type mismatch as "Expected <want>, received <got>".
func (s *bodySchema) typeMessage(field string, doc any) string {
	value := doc
	if field != "" {
		obj, _ := doc.(map[string]any)
		value = obj[field]
	}
	return fmt.Sprintf("Expected %s, received %s", s.types[field], typeName(value))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// fieldOf returns the top-level property a JSON pointer points into.
func fieldOf(pointer string) string {
	p := strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	p = strings.ReplaceAll(p, "~1", "/")
	return strings.ReplaceAll(p, "~0", "~")
}
