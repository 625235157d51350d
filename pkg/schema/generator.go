package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSONSchema represents a JSON Schema document
type JSONSchema struct {
	Schema      string                 `json:"$schema,omitempty"`
	ID          string                 `json:"$id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Type        string                 `json:"type"`
	Required    []string               `json:"required,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []any                  `json:"enum,omitempty"`
	Default     any                    `json:"default,omitempty"`
	Pattern     string                 `json:"pattern,omitempty"`
	MinLength   *int                   `json:"minLength,omitempty"`
	MaxLength   *int                   `json:"maxLength,omitempty"`
	MinItems    *int                   `json:"minItems,omitempty"`
	MaxItems    *int                   `json:"maxItems,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
}

const schemaRef = "https://json-schema.org/draft/2020-12/schema"

const DefaultBaseID = "https://schemas.context-bench.dev"

// Generator generates JSON schemas from Go types. Field names follow the json
// tag; constraints come from a `schema:"required,minLength=1,..."` tag and
// descriptions from a `description:"..."` tag.
type Generator struct {
	baseID string
}

type Option func(*Generator)

func WithBaseID(id string) Option {
	return func(g *Generator) {
		g.baseID = strings.TrimSuffix(id, "/")
	}
}

// NewGenerator creates a new schema generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{baseID: DefaultBaseID}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSchema generates a root JSON schema named title for type t.
func (g *Generator) GenerateSchema(title string, t reflect.Type) (*JSONSchema, error) {
	s, err := g.generateSchemaForType(t)
	if err != nil {
		return nil, err
	}
	s.Schema = schemaRef
	s.Title = title
	s.ID = fmt.Sprintf("%s/%s", g.baseID, strings.ToLower(title))
	return s, nil
}

func (g *Generator) generateSchemaForType(t reflect.Type) (*JSONSchema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.generateStructSchema(t)
	case reflect.Slice, reflect.Array:
		return g.generateSliceSchema(t)
	case reflect.String:
		return &JSONSchema{Type: "string"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &JSONSchema{Type: "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return &JSONSchema{Type: "number"}, nil
	case reflect.Bool:
		return &JSONSchema{Type: "boolean"}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.Kind())
	}
}

func (g *Generator) generateStructSchema(t reflect.Type) (*JSONSchema, error) {
	schema := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema),
	}

	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName := getFieldName(field)
		if fieldName == "" {
			continue
		}

		fieldSchema, err := g.generateFieldSchema(field)
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for field %s: %w", field.Name, err)
		}
		schema.Properties[fieldName] = fieldSchema

		if isFieldRequired(field) {
			required = append(required, fieldName)
		}
	}

	if len(required) > 0 {
		schema.Required = required
	}
	return schema, nil
}

func (g *Generator) generateSliceSchema(t reflect.Type) (*JSONSchema, error) {
	itemSchema, err := g.generateSchemaForType(t.Elem())
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for array items: %w", err)
	}
	return &JSONSchema{Type: "array", Items: itemSchema}, nil
}

func (g *Generator) generateFieldSchema(field reflect.StructField) (*JSONSchema, error) {
	fieldSchema, err := g.generateSchemaForType(field.Type)
	if err != nil {
		return nil, err
	}

	if desc := field.Tag.Get("description"); desc != "" {
		fieldSchema.Description = desc
	}
	if schemaTag := field.Tag.Get("schema"); schemaTag != "" {
		parseSchemaTag(schemaTag, fieldSchema)
	}
	return fieldSchema, nil
}

func parseSchemaTag(tag string, schema *JSONSchema) {
	intPtr := func(s string) *int {
		if v, err := strconv.Atoi(s); err == nil {
			return &v
		}
		return nil
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "enum":
			for _, e := range strings.Split(value, "|") {
				schema.Enum = append(schema.Enum, e)
			}
		case "default":
			schema.Default = value
		case "pattern":
			schema.Pattern = value
		case "minLength":
			schema.MinLength = intPtr(value)
		case "maxLength":
			schema.MaxLength = intPtr(value)
		case "minItems":
			schema.MinItems = intPtr(value)
		case "maxItems":
			schema.MaxItems = intPtr(value)
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		}
	}
}

func getFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	return name
}

func isFieldRequired(field reflect.StructField) bool {
	for _, part := range strings.Split(field.Tag.Get("schema"), ",") {
		if strings.TrimSpace(part) == "required" {
			return true
		}
	}
	return false
}

// GenerateJSONSchema generates an indented JSON schema for the type of v.
func (g *Generator) GenerateJSONSchema(title string, v any) (string, error) {
	schema, err := g.GenerateSchema(title, reflect.TypeOf(v))
	if err != nil {
		return "", err
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
