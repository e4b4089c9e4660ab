package coerce_test

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/coerce"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
)

func TestNormalizeStringList_ScalarCoercesWithWarning(t *testing.T) {
	res, err := coerce.NormalizeStringList("solo")
	if err != nil {
		t.Fatalf("NormalizeStringList: %v", err)
	}
	if res.Warning == "" {
		t.Fatalf("expected a coercion warning for scalar input")
	}
	list, ok := res.Value.([]string)
	if !ok || len(list) != 1 || list[0] != "solo" {
		t.Fatalf("unexpected value: %+v", res.Value)
	}
}

func TestNormalizeCheckboxes_OptionIDArrayExpandsToFullMap(t *testing.T) {
	options := []model.Option{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	res, err := coerce.NormalizeCheckboxes([]string{"a", "c"}, model.ModeAll, options)
	if err != nil {
		t.Fatalf("NormalizeCheckboxes: %v", err)
	}
	if res.Warning == "" {
		t.Fatalf("expected a coercion warning")
	}
	m, ok := res.Value.(map[model.OptionId]model.CheckState)
	if !ok {
		t.Fatalf("unexpected value type %T", res.Value)
	}
	if m["a"] != model.CheckDone || m["c"] != model.CheckDone || m["b"] != model.CheckTodo {
		t.Fatalf("unexpected states: %+v", m)
	}
}

func TestNormalizeCheckboxes_EmptyArrayProducesNoWarning(t *testing.T) {
	options := []model.Option{{ID: "a"}}
	res, err := coerce.NormalizeCheckboxes([]string{}, model.ModeAll, options)
	if err != nil {
		t.Fatalf("NormalizeCheckboxes: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("expected no warning for an empty array, got %q", res.Warning)
	}
	m, ok := res.Value.(map[model.OptionId]model.CheckState)
	if !ok {
		t.Fatalf("unexpected value type %T", res.Value)
	}
	if len(m) != 0 {
		t.Fatalf("expected an empty array to coerce to an empty map, got %+v", m)
	}
}

func TestFromContext_UnknownFieldProducesCoerceError(t *testing.T) {
	form, err := parser.Parse(strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, errs := coerce.FromContext(form, coerce.InputContext{"nope": "x"})
	if len(errs) != 1 {
		t.Fatalf("expected exactly one CoerceError, got %+v", errs)
	}
}

func TestFromContext_KnownFieldProducesPatch(t *testing.T) {
	form, err := parser.Parse(strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	patches, errs := coerce.FromContext(form, coerce.InputContext{"name": "Alice"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(patches) != 1 || patches[0].Op != model.OpSetString || patches[0].FieldID != "name" {
		t.Fatalf("unexpected patches: %+v", patches)
	}
}
