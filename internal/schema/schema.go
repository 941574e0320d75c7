// Package schema converts JSON Schema documents into record definitions, so
// the scaffold command can start from a schema instead of a sample.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsonbind/internal/analyzer"
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first type other than "null", or "null" when that is
// the only type, or "" when none is declared.
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return "null"
	}
	return ""
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// AdditionalProperties handles JSON Schema additionalProperties which can be bool or Schema
type AdditionalProperties struct {
	Allowed bool    // If true, any additional properties allowed; if false, none allowed
	Schema  *Schema // If set, additional properties must match this schema
}

// UnmarshalJSON handles both boolean and schema forms
func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		ap.Allowed = b
		ap.Schema = nil
		return nil
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err == nil {
		ap.Allowed = true
		ap.Schema = &s
		return nil
	}

	return fmt.Errorf("additionalProperties must be boolean or schema")
}

// Schema is the subset of a JSON Schema document that shapes records.
// Validation keywords are accepted and ignored: binding is lenient.
type Schema struct {
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type SchemaType `json:"type,omitempty"`

	Properties           map[string]*Schema    `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	Items       *Schema `json:"items,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	Format string `json:"format,omitempty"`

	// Nullable (OpenAPI style)
	Nullable bool `json:"nullable,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"` // JSON Schema draft 2019-09+
}

// nullable reports whether null is an allowed value
func (s *Schema) nullable() bool {
	return s.Nullable || s.Type.IsNullable()
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse JSON Schema: %w", err)
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Converter converts a JSON Schema into record definitions
type Converter struct {
	schema       *Schema
	records      []analyzer.RecordDef
	recordNames  map[string]int               // Track used names to avoid collisions
	definitions  map[string]*Schema           // Merged definitions for $ref resolution
	resolvedRefs map[string]analyzer.TypeInfo // Cache for already resolved $refs
}

// NewConverter creates a new schema converter
func NewConverter(schema *Schema) *Converter {
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	return &Converter{
		schema:       schema,
		recordNames:  make(map[string]int),
		definitions:  definitions,
		resolvedRefs: make(map[string]analyzer.TypeInfo),
	}
}

// Convert processes the schema and returns the records it describes. The
// root schema must describe an object. rootName falls back to the schema
// title, then to analyzer.DefaultRootName.
func (c *Converter) Convert(rootName string) (analyzer.Result, error) {
	if rootName == "" {
		rootName = c.schema.Title
		if rootName == "" {
			rootName = analyzer.DefaultRootName
		}
	}
	rootName = analyzer.PascalCase(rootName)

	root, err := c.convertSchema(c.schema, rootName)
	if err != nil {
		return analyzer.Result{}, fmt.Errorf("failed to convert schema: %w", err)
	}
	if root.Kind != analyzer.KindRecord {
		return analyzer.Result{}, fmt.Errorf("root schema does not describe an object")
	}

	for i := range c.records {
		if c.records[i].Name == root.Record {
			c.records[i].IsRoot = true
		}
	}

	return analyzer.Result{
		Records: c.records,
		Imports: analyzer.ImportsFor(c.records),
	}, nil
}

// convertSchema recursively converts a schema to a field type
func (c *Converter) convertSchema(schema *Schema, suggestedName string) (analyzer.TypeInfo, error) {
	if schema.Ref != "" {
		return c.resolveRef(schema.Ref)
	}

	if len(schema.AllOf) > 0 {
		return c.convertSchema(c.mergeAllOf(schema.AllOf), suggestedName)
	}

	if alternatives := slices.Concat(schema.AnyOf, schema.OneOf); len(alternatives) > 0 {
		return c.convertAlternatives(alternatives, suggestedName)
	}

	schemaType := schema.Type.Primary()
	if schemaType == "" {
		// Infer type from properties
		if len(schema.Properties) > 0 {
			schemaType = "object"
		} else if schema.Items != nil {
			schemaType = "array"
		}
	}

	switch schemaType {
	case "object":
		return c.convertObject(schema, suggestedName)
	case "array":
		return c.convertArray(schema, suggestedName)
	case "string":
		return convertString(schema), nil
	case "integer":
		return analyzer.TypeInfo{Kind: analyzer.KindInt}, nil
	case "number":
		return analyzer.TypeInfo{Kind: analyzer.KindFloat}, nil
	case "boolean":
		return analyzer.TypeInfo{Kind: analyzer.KindBool}, nil
	default:
		// null, or no type at all
		return analyzer.TypeInfo{Kind: analyzer.KindAny}, nil
	}
}

// convertAlternatives handles anyOf and oneOf. A single non-null alternative
// is used as an optional value; anything else is kept raw.
func (c *Converter) convertAlternatives(alternatives []*Schema, suggestedName string) (analyzer.TypeInfo, error) {
	var picked *Schema
	nullable := false
	for _, alt := range alternatives {
		if alt.Ref == "" && alt.Type.Primary() == "null" {
			nullable = true
			continue
		}
		if picked != nil {
			return analyzer.TypeInfo{Kind: analyzer.KindAny}, nil
		}
		picked = alt
	}
	if picked == nil {
		return analyzer.TypeInfo{Kind: analyzer.KindAny}, nil
	}

	t, err := c.convertSchema(picked, suggestedName)
	if err != nil {
		return analyzer.TypeInfo{}, err
	}
	t.Optional = t.Optional || nullable
	return t, nil
}

// convertObject converts an object schema to a record. Objects without
// declared properties become string-keyed maps.
func (c *Converter) convertObject(schema *Schema, recordName string) (analyzer.TypeInfo, error) {
	if len(schema.Properties) == 0 {
		elem := analyzer.TypeInfo{Kind: analyzer.KindAny}
		if ap := schema.AdditionalProperties; ap != nil && ap.Schema != nil {
			var err error
			elem, err = c.convertSchema(ap.Schema, analyzer.Singularize(recordName))
			if err != nil {
				return analyzer.TypeInfo{}, fmt.Errorf("failed to convert additional properties: %w", err)
			}
			elem.Optional = elem.Optional || ap.Schema.nullable()
		}
		return analyzer.TypeInfo{Kind: analyzer.KindMap, Elem: &elem}, nil
	}

	finalName := c.generateUniqueName(recordName)
	if err := c.buildRecord(schema, finalName); err != nil {
		return analyzer.TypeInfo{}, err
	}
	return analyzer.TypeInfo{Kind: analyzer.KindRecord, Record: finalName}, nil
}

// buildRecord converts the properties of schema into a record called name
func (c *Converter) buildRecord(schema *Schema, name string) error {
	requiredSet := make(map[string]bool)
	for _, r := range schema.Required {
		requiredSet[r] = true
	}

	// Sort property names for deterministic output
	propNames := make([]string, 0, len(schema.Properties))
	for propName := range schema.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	def := analyzer.RecordDef{Name: name, Fields: make([]analyzer.FieldDef, 0, len(propNames))}
	// Fields is taken by the generated method
	goNames := map[string]int{"Fields": 1}
	for _, propName := range propNames {
		propSchema := schema.Properties[propName]

		goName := analyzer.PascalCase(propName)
		if n := goNames[goName]; n > 0 {
			goNames[goName]++
			goName = fmt.Sprintf("%s%d", goName, n)
		} else {
			goNames[goName] = 1
		}

		t, err := c.convertSchema(propSchema, name+analyzer.PascalCase(propName))
		if err != nil {
			return fmt.Errorf("failed to convert property %s: %w", propName, err)
		}
		if !requiredSet[propName] || propSchema.nullable() {
			t.Optional = true
		}

		def.Fields = append(def.Fields, analyzer.FieldDef{Key: propName, GoName: goName, Type: t})
	}

	c.records = append(c.records, def)
	return nil
}

// convertArray converts an array schema to a list, or to a set when items
// are unique scalars
func (c *Converter) convertArray(schema *Schema, suggestedName string) (analyzer.TypeInfo, error) {
	elem := analyzer.TypeInfo{Kind: analyzer.KindAny}
	if schema.Items != nil {
		var err error
		elem, err = c.convertSchema(schema.Items, analyzer.Singularize(suggestedName))
		if err != nil {
			return analyzer.TypeInfo{}, fmt.Errorf("failed to convert array items: %w", err)
		}
		elem.Optional = elem.Optional || schema.Items.nullable()
	}

	if schema.UniqueItems && !elem.Optional && isScalar(elem.Kind) {
		return analyzer.TypeInfo{Kind: analyzer.KindSet, Elem: &elem}, nil
	}
	return analyzer.TypeInfo{Kind: analyzer.KindList, Elem: &elem}, nil
}

func isScalar(k analyzer.Kind) bool {
	switch k {
	case analyzer.KindString, analyzer.KindBool, analyzer.KindInt, analyzer.KindFloat, analyzer.KindDate:
		return true
	}
	return false
}

// convertString maps string formats onto date fields
func convertString(schema *Schema) analyzer.TypeInfo {
	switch schema.Format {
	case "date-time":
		return analyzer.TypeInfo{Kind: analyzer.KindDate, DateFormat: "time.RFC3339"}
	case "date":
		return analyzer.TypeInfo{Kind: analyzer.KindDate}
	case "time":
		return analyzer.TypeInfo{Kind: analyzer.KindDate, DateFormat: strconv.Quote("HH:mm:ss")}
	default:
		return analyzer.TypeInfo{Kind: analyzer.KindString}
	}
}

// lookupRef returns the definition a local $ref points at
func (c *Converter) lookupRef(ref string) (string, *Schema, error) {
	for _, prefix := range []string{"#/definitions/", "#/$defs/"} {
		if defName, ok := strings.CutPrefix(ref, prefix); ok {
			if defSchema, ok := c.definitions[defName]; ok {
				return defName, defSchema, nil
			}
			return "", nil, fmt.Errorf("unresolved $ref: %s", ref)
		}
	}
	return "", nil, fmt.Errorf("external $ref not supported: %s", ref)
}

// resolveRef resolves a $ref to a type. Object definitions are registered
// before their properties are converted, so recursive references resolve to
// the record being built.
func (c *Converter) resolveRef(ref string) (analyzer.TypeInfo, error) {
	if cached, ok := c.resolvedRefs[ref]; ok {
		return cached, nil
	}

	defName, defSchema, err := c.lookupRef(ref)
	if err != nil {
		return analyzer.TypeInfo{}, err
	}

	if len(defSchema.Properties) > 0 && defSchema.Ref == "" && len(defSchema.AllOf) == 0 {
		name := c.generateUniqueName(analyzer.PascalCase(defName))
		t := analyzer.TypeInfo{Kind: analyzer.KindRecord, Record: name}
		c.resolvedRefs[ref] = t
		if err := c.buildRecord(defSchema, name); err != nil {
			return analyzer.TypeInfo{}, err
		}
		return t, nil
	}

	t, err := c.convertSchema(defSchema, analyzer.PascalCase(defName))
	if err != nil {
		return analyzer.TypeInfo{}, err
	}
	c.resolvedRefs[ref] = t
	return t, nil
}

// mergeAllOf merges multiple schemas from allOf
func (c *Converter) mergeAllOf(schemas []*Schema) *Schema {
	merged := &Schema{
		Properties: make(map[string]*Schema),
		Required:   make([]string, 0),
	}

	for _, s := range schemas {
		resolved := s
		if s.Ref != "" {
			if _, defSchema, err := c.lookupRef(s.Ref); err == nil {
				resolved = defSchema
			}
		}

		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}
		merged.Required = append(merged.Required, resolved.Required...)

		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
	}

	merged.Type = SchemaType{Types: []string{"object"}}
	return merged
}

// generateUniqueName ensures record names are unique
func (c *Converter) generateUniqueName(baseName string) string {
	name := baseName
	count := c.recordNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	c.recordNames[baseName] = count + 1
	return name
}
