package serializer_test

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
	"github.com/jlevy/markform/internal/markform/serializer"
)

func TestSerialize_BasicFillRoundTrips(t *testing.T) {
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

	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := serializer.Serialize(form)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "```value\nAlice\n```") {
		t.Fatalf("serialized output missing value fence:\n%s", out)
	}
	if !strings.Contains(out, `kind="string"`) || !strings.Contains(out, `id="name"`) {
		t.Fatalf("serialized field tag missing attrs:\n%s", out)
	}
	if strings.Contains(out, `role="agent"`) {
		t.Fatalf("default role should be omitted:\n%s", out)
	}

	reparsed, err := parser.Parse(out)
	if err != nil {
		t.Fatalf("re-parse of serialized output failed: %v\n%s", err, out)
	}
	val := reparsed.ValueFor("name")
	if val.State != model.StateAnswered || val.String == nil || *val.String != "Alice" {
		t.Fatalf("round-tripped value = %+v", val)
	}

	out2, err := serializer.Serialize(reparsed)
	if err != nil {
		t.Fatalf("second Serialize: %v", err)
	}
	if out != out2 {
		t.Fatalf("serializer not idempotent:\nfirst:\n%s\nsecond:\n%s", out, out2)
	}
}

func TestSerialize_SingleSelectChecklist(t *testing.T) {
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
	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := serializer.Serialize(form)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "- [x] blue Blue") || !strings.Contains(out, "- [ ] red Red") {
		t.Fatalf("checklist not rendered correctly:\n%s", out)
	}
}

func TestSerialize_SkippedFieldEmitsSentinel(t *testing.T) {
	src := strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" %}`,
		"```value",
		"%SKIP% n/a",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n")
	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := serializer.Serialize(form)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, "%SKIP% n/a") {
		t.Fatalf("sentinel not preserved:\n%s", out)
	}
}
