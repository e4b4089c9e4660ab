package export_test

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/export"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
	"github.com/jlevy/markform/internal/markform/patchapply"
)

func mustParse(t *testing.T, src string) *model.ParsedForm {
	t.Helper()
	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return form
}

func sampleForm(t *testing.T) *model.ParsedForm {
	return mustParse(t, strings.Join([]string{
		`{% form id="f" title="Intake" %}`,
		`{% group id="g" title="Basics" %}`,
		`{% field kind="string" id="name" label="Name" required=true %}`,
		"{% /field %}",
		`{% field kind="string" id="secret" label="Secret" report=false %}`,
		"{% /field %}",
		"{% /group %}",
		"{% /form %}",
	}, "\n"))
}

func TestValuesMap_ReflectsAnsweredAndUnansweredFields(t *testing.T) {
	form := sampleForm(t)
	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetString, FieldID: "name", Value: "Alice"},
	})

	vm := export.ValuesMap(result.NewForm)
	if vm["name"].State != model.StateAnswered || vm["name"].Value != "Alice" {
		t.Fatalf("unexpected name entry: %+v", vm["name"])
	}
	if vm["secret"].State != model.StateUnanswered {
		t.Fatalf("unexpected secret entry: %+v", vm["secret"])
	}
}

func TestRenderReport_OmitsReportFalseFieldsAndIsWellFormedMarkdown(t *testing.T) {
	form := sampleForm(t)
	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetString, FieldID: "name", Value: "Alice"},
	})

	out, err := export.RenderReport(result.NewForm)
	if err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	if !strings.Contains(out, "Alice") {
		t.Fatalf("expected report to inline the answered value, got: %s", out)
	}
	if strings.Contains(out, "Secret") {
		t.Fatalf("expected report=false field to be omitted, got: %s", out)
	}
}

func TestSchema_MapsStringAndSelectKinds(t *testing.T) {
	form := sampleForm(t)
	s := export.Schema(form)

	nameSchema, ok := s.Properties["name"]
	if !ok {
		t.Fatalf("expected a schema entry for 'name'")
	}
	if nameSchema.Type != "string" {
		t.Fatalf("expected string type, got %s", nameSchema.Type)
	}
	if nameSchema.XMarkform == nil || !nameSchema.XMarkform.Required {
		t.Fatalf("expected x-markform.required=true for 'name', got %+v", nameSchema.XMarkform)
	}

	found := false
	for _, id := range s.Required {
		if id == "name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'name' in schema.Required, got %v", s.Required)
	}
}
