// Package analyzer infers record declarations from a sample document. The
// result drives the scaffold command, which writes the Go types and their
// binder registrations.
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonbind/internal/models"
)

// DefaultRootName is the default name for the root record if not specified.
const DefaultRootName = "Record"

// Import paths the generated code may need
const (
	BinderImport = "github.com/mcncl/jsonbind/internal/binder"
	ModelsImport = "github.com/mcncl/jsonbind/internal/models"
	TimeImport   = "time"
)

// Date shapes recognised in string values (most specific first)
var (
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`) // 2006-01-02T15:04:05Z
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)                         // 2006-01-02 15:04:05
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                           // 2006-01-02
)

// Kind is the inferred kind of a field.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindDate
	KindRecord
	KindList
	KindSet
	KindMap
)

// TypeInfo is the Go type and codec inferred for a value.
type TypeInfo struct {
	Kind Kind
	// Record names the nested record for KindRecord.
	Record string
	// Elem is the element type for KindList, KindSet and KindMap.
	Elem *TypeInfo
	// Optional marks values that were null or missing in part of the sample.
	Optional bool
	// DateFormat is a Go expression for a non-default date pattern.
	DateFormat string
}

// nullable reports whether the type gets a pointer and an Opt codec when
// optional. Collections and raw values represent absence on their own.
func (t TypeInfo) nullable() bool {
	switch t.Kind {
	case KindList, KindSet, KindMap, KindAny:
		return false
	}
	return t.Optional
}

// GoType returns the Go type of a field holding t.
func (t TypeInfo) GoType() string {
	var base string
	switch t.Kind {
	case KindString:
		base = "string"
	case KindBool:
		base = "bool"
	case KindInt:
		base = "int"
	case KindFloat:
		base = "float64"
	case KindDate:
		base = "time.Time"
	case KindRecord:
		base = t.Record
	case KindList:
		base = "[]" + t.Elem.GoType()
	case KindSet:
		base = "*binder.Set[" + t.Elem.GoType() + "]"
	case KindMap:
		base = "map[string]" + t.Elem.GoType()
	default:
		base = "models.Value"
	}
	if t.nullable() {
		return "*" + base
	}
	return base
}

// Codec returns the binder codec expression for t.
func (t TypeInfo) Codec() string {
	var c string
	switch t.Kind {
	case KindString:
		c = "binder.Str()"
	case KindBool:
		c = "binder.Bool()"
	case KindInt:
		c = "binder.Int[int]()"
	case KindFloat:
		c = "binder.Float[float64]()"
	case KindDate:
		c = "binder.Date()"
	case KindRecord:
		c = "binder.Nested[" + t.Record + "]()"
	case KindList:
		c = "binder.List(" + t.Elem.Codec() + ")"
	case KindSet:
		c = "binder.SetOf(" + t.Elem.Codec() + ")"
	case KindMap:
		c = "binder.Dict(" + t.Elem.Codec() + ")"
	default:
		c = "binder.Any()"
	}
	if t.nullable() {
		return "binder.Opt(" + c + ")"
	}
	return c
}

// Equal reports whether both describe the same Go type and codec.
func (t TypeInfo) Equal(o TypeInfo) bool {
	if t.Kind != o.Kind || t.Record != o.Record || t.DateFormat != o.DateFormat || t.nullable() != o.nullable() {
		return false
	}
	if t.Elem != nil && o.Elem != nil {
		return t.Elem.Equal(*o.Elem)
	}
	return t.Elem == nil && o.Elem == nil
}

// dateFormat returns the first date override found in t or its elements.
func (t TypeInfo) dateFormat() string {
	if t.DateFormat != "" {
		return t.DateFormat
	}
	if t.Elem != nil {
		return t.Elem.dateFormat()
	}
	return ""
}

// FieldDef is one field of an inferred record.
type FieldDef struct {
	// Key is the JSON key, used as the declared field name.
	Key    string
	GoName string
	Type   TypeInfo
}

// DateFormat returns the Go expression passed to the field's DateFormat
// option, or "" when the default pattern applies.
func (f FieldDef) DateFormat() string { return f.Type.dateFormat() }

// RecordDef is an inferred record type.
type RecordDef struct {
	Name   string
	Fields []FieldDef
	IsRoot bool
}

// Result holds the inferred records and the imports their code needs.
type Result struct {
	Records []RecordDef
	Imports map[string]struct{}
}

// Analyzer infers records from sample documents
type Analyzer struct {
	// recordNames tracks generated record names to avoid collisions
	recordNames map[string]int
	result      Result
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		recordNames: make(map[string]int),
		result: Result{
			Records: make([]RecordDef, 0),
			Imports: make(map[string]struct{}),
		},
	}
}

// Analyze infers the records needed to bind documents shaped like ir. The
// root must be an object, or an array of objects that are merged into one
// record. The root record comes first in the result.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation, rootName string) (Result, error) {
	if rootName == "" {
		rootName = DefaultRootName
	}
	rootName = jsonKeyToPascalCase(rootName)

	var objects []models.Value
	switch ir.Root.Kind() {
	case models.Object:
		objects = []models.Value{ir.Root}
	case models.Array:
		items, _ := ir.Root.Items()
		for i, item := range items {
			if item.Kind() != models.Object {
				return Result{}, fmt.Errorf("element %d of the root array is %s, not an object", i, item.Kind())
			}
			objects = append(objects, item)
		}
		if len(objects) == 0 {
			return Result{}, fmt.Errorf("root array is empty")
		}
	default:
		return Result{}, fmt.Errorf("root value is %s, not an object", ir.Root.Kind())
	}

	// Reserve the root name so nested records never take it
	a.recordNames[rootName]++
	root := a.mergeObjects(objects, rootName)
	root.IsRoot = true
	a.result.Records = append([]RecordDef{root}, a.result.Records...)

	a.result.Imports = ImportsFor(a.result.Records)
	return a.result, nil
}

// mergeObjects builds one record from every object given. Keys keep the
// order of their first appearance; a key missing from some objects, or null
// in some, becomes optional.
func (a *Analyzer) mergeObjects(objects []models.Value, name string) RecordDef {
	var order []string
	seen := make(map[string]struct{})
	for _, obj := range objects {
		members, _ := obj.Members()
		for _, m := range members {
			if _, ok := seen[m.Key]; !ok {
				seen[m.Key] = struct{}{}
				order = append(order, m.Key)
			}
		}
	}

	def := RecordDef{Name: name, Fields: make([]FieldDef, 0, len(order))}
	// Fields is taken by the generated method
	goNames := map[string]int{"Fields": 1}
	for _, key := range order {
		var values []models.Value
		optional := false
		for _, obj := range objects {
			v, ok := obj.Get(key)
			if !ok || v.IsNull() {
				optional = true
				continue
			}
			values = append(values, v)
		}

		goName := jsonKeyToPascalCase(key)
		if n := goNames[goName]; n > 0 {
			goNames[goName]++
			goName = fmt.Sprintf("%s%d", goName, n)
		} else {
			goNames[goName] = 1
		}

		t := a.inferAll(values, name+jsonKeyToPascalCase(key))
		t.Optional = optional
		def.Fields = append(def.Fields, FieldDef{Key: key, GoName: goName, Type: t})
	}
	return def
}

// inferAll returns one type able to hold every value. suggestedName is used
// when the values need a record of their own.
func (a *Analyzer) inferAll(values []models.Value, suggestedName string) TypeInfo {
	if len(values) == 0 {
		return TypeInfo{Kind: KindAny}
	}

	if allOfKind(values, models.Object) {
		def := a.mergeObjects(values, suggestedName)
		return TypeInfo{Kind: KindRecord, Record: a.findOrAddRecord(def, suggestedName)}
	}

	if allOfKind(values, models.Array) {
		var elems []models.Value
		nullElems := false
		for _, v := range values {
			items, _ := v.Items()
			for _, item := range items {
				if item.IsNull() {
					nullElems = true
					continue
				}
				elems = append(elems, item)
			}
		}
		elem := a.inferAll(elems, singularize(suggestedName))
		// Null elements keep their index only with an optional element codec
		elem.Optional = nullElems
		return TypeInfo{Kind: KindList, Elem: &elem}
	}

	t := scalarType(values[0])
	for _, v := range values[1:] {
		t = widen(t, scalarType(v))
	}
	return t
}

func scalarType(v models.Value) TypeInfo {
	switch v.Kind() {
	case models.Bool:
		return TypeInfo{Kind: KindBool}
	case models.Number:
		lit, _ := v.Literal()
		if _, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return TypeInfo{Kind: KindInt}
		}
		return TypeInfo{Kind: KindFloat}
	case models.String:
		s, _ := v.AsString()
		return analyzeString(s)
	default:
		return TypeInfo{Kind: KindAny}
	}
}

func analyzeString(s string) TypeInfo {
	switch {
	case rfc3339Regex.MatchString(s):
		return TypeInfo{Kind: KindDate, DateFormat: "time.RFC3339"}
	case dateTimeRegex.MatchString(s):
		return TypeInfo{Kind: KindDate, DateFormat: strconv.Quote("yyyy-MM-dd HH:mm:ss")}
	case dateOnlyRegex.MatchString(s):
		return TypeInfo{Kind: KindDate}
	default:
		return TypeInfo{Kind: KindString}
	}
}

// widen combines the types of two sample values of one field.
func widen(t, o TypeInfo) TypeInfo {
	switch {
	case t.Equal(o):
		return t
	case isNumber(t) && isNumber(o):
		return TypeInfo{Kind: KindFloat}
	case isText(t) && isText(o):
		// Dates in different shapes, or dates mixed with plain text
		return TypeInfo{Kind: KindString}
	default:
		return TypeInfo{Kind: KindAny}
	}
}

func isNumber(t TypeInfo) bool { return t.Kind == KindInt || t.Kind == KindFloat }
func isText(t TypeInfo) bool   { return t.Kind == KindString || t.Kind == KindDate }

func allOfKind(values []models.Value, kind models.Kind) bool {
	for _, v := range values {
		if v.Kind() != kind {
			return false
		}
	}
	return true
}

// ImportsFor returns the imports the generated code for records needs.
func ImportsFor(records []RecordDef) map[string]struct{} {
	imports := map[string]struct{}{BinderImport: {}}
	for _, rec := range records {
		for _, f := range rec.Fields {
			t := f.Type
			for t.Elem != nil {
				t = *t.Elem
			}
			switch t.Kind {
			case KindDate:
				imports[TimeImport] = struct{}{}
			case KindAny:
				imports[ModelsImport] = struct{}{}
			}
		}
	}
	return imports
}

// findOrAddRecord returns the name of an existing record equivalent to def,
// or adds def under a unique name derived from suggestedName.
func (a *Analyzer) findOrAddRecord(def RecordDef, suggestedName string) string {
	for _, existing := range a.result.Records {
		if areRecordDefsEquivalent(&def, &existing) {
			return existing.Name
		}
	}

	def.Name = a.generateUniqueRecordName(suggestedName)
	a.result.Records = append(a.result.Records, def)
	return def.Name
}

// generateUniqueRecordName ensures that the record name is unique by appending a number if needed.
func (a *Analyzer) generateUniqueRecordName(baseName string) string {
	name := baseName
	count := a.recordNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.recordNames[baseName] = count + 1
	return name
}

// areRecordDefsEquivalent compares two records for structural equality.
// Keys, Go names and types must match; field order does not matter.
func areRecordDefsEquivalent(r1, r2 *RecordDef) bool {
	if len(r1.Fields) != len(r2.Fields) {
		return false
	}
	byKey := make(map[string]FieldDef, len(r1.Fields))
	for _, f := range r1.Fields {
		byKey[f.Key] = f
	}
	for _, f2 := range r2.Fields {
		f1, ok := byKey[f2.Key]
		if !ok || f1.GoName != f2.GoName || !f1.Type.Equal(f2.Type) {
			return false
		}
	}
	return true
}

// jsonKeyToPascalCase converts a JSON key to a Go-style PascalCase identifier.
// PascalCase converts a JSON key to an exported Go identifier.
func PascalCase(key string) string { return jsonKeyToPascalCase(key) }

// Singularize returns the singular form of a PascalCase name, changing only
// its last word.
func Singularize(name string) string { return singularize(name) }

func jsonKeyToPascalCase(jsonKey string) string {
	name := strcase.ToCamel(jsonKey)
	if name == "" {
		// Purely symbolic keys such as "_"
		return "Field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "F" + name
	}
	return name
}

// knownSingulars lists plurals the suffix rules below get wrong
var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

// singularize names the element record of an array field, e.g. Jobs -> Job.
// Only the last word of a PascalCase name is changed.
func singularize(plural string) string {
	head, last := splitLastWord(plural)

	if singular, ok := knownSingulars[strings.ToLower(last)]; ok {
		return head + strcase.ToCamel(singular)
	}

	lower := strings.ToLower(last)
	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return head + last[:len(last)-3] + "y"
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"), strings.HasSuffix(lower, "is"):
		return plural
	case strings.HasSuffix(lower, "s") && len(lower) > 1:
		return head + last[:len(last)-1]
	}
	return plural
}

// splitLastWord splits "PersonJobs" into "Person" and "Jobs".
func splitLastWord(name string) (string, string) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] >= 'A' && name[i] <= 'Z' {
			return name[:i], name[i:]
		}
	}
	return "", name
}

// SortRecords orders records with the root first, then by name.
func SortRecords(records []RecordDef) []RecordDef {
	sorted := make([]RecordDef, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsRoot != sorted[j].IsRoot {
			return sorted[i].IsRoot
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
