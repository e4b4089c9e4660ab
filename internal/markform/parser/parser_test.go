package parser

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/model"
)

func TestParse_BasicStringField(t *testing.T) {
	src := strings.Join([]string{
		"---",
		"markform:",
		"  spec: \"MF/0.1\"",
		"  title: Basic Intake",
		"---",
		"",
		`{% form id="intake" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"```value",
		"Alice",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n")

	form, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if form.Metadata.Title != "Basic Intake" {
		t.Fatalf("title = %q", form.Metadata.Title)
	}
	if form.Metadata.SpecVersion != "MF/0.1" {
		t.Fatalf("spec = %q", form.Metadata.SpecVersion)
	}
	field := form.FieldByID("name")
	if field == nil {
		t.Fatal("field \"name\" not found")
	}
	if !field.Required || field.Kind != model.KindString {
		t.Fatalf("field = %+v", field)
	}
	val := form.ValueFor("name")
	if val.State != model.StateAnswered || val.String == nil || *val.String != "Alice" {
		t.Fatalf("value = %+v", val)
	}
	if len(form.OrderIndex) != 1 || form.OrderIndex[0] != "name" {
		t.Fatalf("orderIndex = %+v", form.OrderIndex)
	}
}

func TestParse_DuplicateIDFails(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="x" /%}`,
		`{% field kind="number" id="x" /%}`,
		"{% /form %}",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestParse_UnfencedValueContainingTagLikeTextFails(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="x" %}`,
		"```value",
		"literal {% tag %} text",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected an error for a value fence containing \"{%\" without process=false")
	}
}

func TestParse_LegacyFieldTagRejected(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% string-field id="x" %}`,
		"{% /string-field %}",
		"{% /form %}",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected legacy field tag error")
	}
}

func TestParse_SingleSelectWithOptionsAndChecklist(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="single_select" id="color" %}`,
		`{% option id="red" label="Red" /%}`,
		`{% option id="blue" label="Blue" /%}`,
		"- [ ] red Red",
		"- [x] blue Blue",
		"{% /field %}",
		"{% /form %}",
	}, "\n")
	form, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	field := form.FieldByID("color")
	if len(field.SingleSelect.Options) != 2 {
		t.Fatalf("options = %+v", field.SingleSelect.Options)
	}
	val := form.ValueFor("color")
	if val.State != model.StateAnswered || val.SingleSelect == nil || *val.SingleSelect != "blue" {
		t.Fatalf("value = %+v", val)
	}
}

func TestParse_CheckboxesModeAllAttribute(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="checkboxes" id="tasks" mode="all" /%}`,
		"{% /form %}",
	}, "\n")
	form, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	field := form.FieldByID("tasks")
	if field.Checkboxes.Mode != model.ModeAll {
		t.Fatalf("mode = %v", field.Checkboxes.Mode)
	}
}

func TestParse_TableField(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="table" id="rows" %}`,
		`{% column id="task" label="Task" type="string" /%}`,
		`{% column id="due" label="Due" type="date" /%}`,
		"| task | due |",
		"| --- | --- |",
		"| Ship it | 2026-08-01 |",
		"{% /field %}",
		"{% /form %}",
	}, "\n")
	form, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	field := form.FieldByID("rows")
	if len(field.Table.ColumnIDs) != 2 {
		t.Fatalf("columns = %+v", field.Table.ColumnIDs)
	}
	val := form.ValueFor("rows")
	if val.State != model.StateAnswered || len(val.Table) != 1 {
		t.Fatalf("value = %+v", val)
	}
	if val.Table[0]["task"] != "Ship it" {
		t.Fatalf("row = %+v", val.Table[0])
	}
}

func TestParse_SentinelSkip(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" %}`,
		"```value",
		"%SKIP% not applicable",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n")
	form, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	val := form.ValueFor("name")
	if val.State != model.StateSkipped || val.SkipReason != "not applicable" {
		t.Fatalf("value = %+v", val)
	}
}

func TestParse_DocumentationRefMustResolve(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% description ref="missing" %}`,
		"text",
		"{% /description %}",
		"{% /form %}",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected unresolved ref error")
	}
}

func TestParse_UnknownAttributeFails(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="x" bogus="1" /%}`,
		"{% /form %}",
	}, "\n")
	if _, err := Parse(src); err == nil {
		t.Fatal("expected unknown attribute error")
	}
}
