package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

// MissingField is rendered in place of a key the record does not provide.
const MissingField = "Erro"

//go:embed template.html
var defaultTemplate string

// Template is a parsed dashboard template whose keys have been checked
// against the record's field set.
type Template struct {
	tmpl *template.Template
}

// NewTemplate parses src and dry-runs it against the zero Record. Any key
// outside the record's field set fails construction.
func NewTemplate(src string) (*Template, error) {
	tmpl, err := template.New("report").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	if err := tmpl.Execute(io.Discard, newView(Record{}, true)); err != nil {
		return nil, fmt.Errorf("validate report template: %w", err)
	}

	return &Template{tmpl: tmpl}, nil
}

// DefaultTemplate is the embedded YTD dashboard.
func DefaultTemplate() (*Template, error) {
	return NewTemplate(defaultTemplate)
}

func (t *Template) Render(rec Record) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, newView(rec, false)); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// view is what the template sees. In strict mode unknown keys are errors;
// otherwise they render as MissingField.
type view struct {
	fields map[string]string
	charts map[string]template.URL
	strict bool
}

func newView(rec Record, strict bool) view {
	return view{fields: rec.Fields(), charts: rec.Charts(), strict: strict}
}

func (v view) Field(key string) (string, error) {
	if s, ok := v.fields[key]; ok {
		return s, nil
	}
	if v.strict {
		return "", fmt.Errorf("unknown report field %q", key)
	}
	return MissingField, nil
}

func (v view) Chart(name string) (template.URL, error) {
	if uri, ok := v.charts[name]; ok {
		return uri, nil
	}
	if v.strict {
		return "", fmt.Errorf("unknown report chart %q", name)
	}
	return "", nil
}
