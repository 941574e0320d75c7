package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/mcncl/jsonbind/internal/analyzer"
)

// Generator is responsible for generating record declarations from analysis results
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateRecords writes a Go source file declaring every record in result
// together with the Fields method that registers it with the binder. The
// output is gofmt-formatted.
func (g *Generator) GenerateRecords(result analyzer.Result, packageName string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("// Code scaffolded by jsonbind from a sample document.\n\n")
	buf.WriteString(fmt.Sprintf("package %s\n", packageName))

	writeImports(&buf, result.Imports)

	for _, rec := range analyzer.SortRecords(result.Records) {
		buf.WriteString("\n")
		writeRecord(&buf, rec)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w", err)
	}
	return string(formatted), nil
}

// writeImports writes standard library imports first, then the rest, with a
// blank line in between
func writeImports(buf *bytes.Buffer, imports map[string]struct{}) {
	if len(imports) == 0 {
		return
	}

	paths := make([]string, 0, len(imports))
	for imp := range imports {
		paths = append(paths, imp)
	}
	sort.Strings(paths)

	var stdLibImports, thirdPartyImports []string
	for _, imp := range paths {
		if !strings.Contains(imp, ".") { // Standard library imports don't have dots
			stdLibImports = append(stdLibImports, imp)
		} else {
			thirdPartyImports = append(thirdPartyImports, imp)
		}
	}

	buf.WriteString("\nimport (\n")
	for _, imp := range stdLibImports {
		buf.WriteString(fmt.Sprintf("\t%q\n", imp))
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		buf.WriteString(fmt.Sprintf("\t%q\n", imp))
	}
	buf.WriteString(")\n")
}

func writeRecord(buf *bytes.Buffer, rec analyzer.RecordDef) {
	if len(rec.Fields) == 0 {
		buf.WriteString(fmt.Sprintf("type %s struct{}\n\n", rec.Name))
		buf.WriteString("// Fields implements binder.Record.\n")
		buf.WriteString(fmt.Sprintf("func (r *%s) Fields() []binder.Descriptor {\n", rec.Name))
		buf.WriteString("\treturn []binder.Descriptor{}\n}\n")
		return
	}

	buf.WriteString(fmt.Sprintf("type %s struct {\n", rec.Name))
	for _, f := range rec.Fields {
		buf.WriteString(fmt.Sprintf("\t%s %s\n", f.GoName, f.Type.GoType()))
	}
	buf.WriteString("}\n\n")

	buf.WriteString("// Fields implements binder.Record.\n")
	buf.WriteString(fmt.Sprintf("func (r *%s) Fields() []binder.Descriptor {\n", rec.Name))
	buf.WriteString("\treturn []binder.Descriptor{\n")
	for _, f := range rec.Fields {
		buf.WriteString(fmt.Sprintf("\t\t%s,\n", fieldExpr(f)))
	}
	buf.WriteString("\t}\n}\n")
}

// fieldExpr returns the binder.Field call registering f
func fieldExpr(f analyzer.FieldDef) string {
	expr := fmt.Sprintf("binder.Field(%q, &r.%s, %s)", f.Key, f.GoName, f.Type.Codec())
	if df := f.DateFormat(); df != "" {
		expr += ".DateFormat(" + df + ")"
	}
	return expr
}
