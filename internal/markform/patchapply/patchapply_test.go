package patchapply_test

import (
	"strings"
	"testing"

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

func TestApply_BasicSetStringApplies(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetString, FieldID: "name", Value: "Alice"},
	})

	if result.Status != model.StatusApplied {
		t.Fatalf("expected applied, got %s (%+v)", result.Status, result.RejectedPatches)
	}
	val := result.NewForm.ValueFor("name")
	if val.State != model.StateAnswered || *val.String != "Alice" {
		t.Fatalf("unexpected value: %+v", val)
	}
}

func TestApply_UnknownFieldRejectsButDoesNotAbortBatch(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetString, FieldID: "ghost", Value: "x"},
		{Op: model.OpSetString, FieldID: "name", Value: "Alice"},
	})

	if result.Status != model.StatusPartial {
		t.Fatalf("expected partial, got %s", result.Status)
	}
	if len(result.RejectedPatches) != 1 || len(result.AppliedPatches) != 1 {
		t.Fatalf("unexpected split: applied=%d rejected=%d", len(result.AppliedPatches), len(result.RejectedPatches))
	}
}

func TestApply_PatternViolationRejectsSinglePatch(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="code" pattern="^[A-Z]{3}$" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetString, FieldID: "code", Value: "abc"},
	})

	if result.Status != model.StatusRejected {
		t.Fatalf("expected rejected, got %s", result.Status)
	}
	if len(result.RejectedPatches) != 1 {
		t.Fatalf("expected one rejected patch, got %+v", result.RejectedPatches)
	}
}

func TestApply_CheckboxArrayCoercionProducesWarningAndMergedMap(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="checkboxes" id="tasks" mode="all" %}`,
		`{% option id="a" label="A" /%}`,
		`{% option id="b" label="B" /%}`,
		`{% option id="c" label="C" /%}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSetCheckboxes, FieldID: "tasks", Value: []string{"a", "c"}},
	})

	if result.Status != model.StatusApplied {
		t.Fatalf("expected applied, got %s (%+v)", result.Status, result.RejectedPatches)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected exactly one coercion warning, got %+v", result.Warnings)
	}
	val := result.NewForm.ValueFor("tasks")
	if val.Checkboxes["a"] != model.CheckDone || val.Checkboxes["c"] != model.CheckDone || val.Checkboxes["b"] != model.CheckTodo {
		t.Fatalf("unexpected checkbox states: %+v", val.Checkboxes)
	}
}

func TestApply_AbortFormStopsRemainingPatches(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="a" %}`,
		"{% /field %}",
		`{% field kind="string" id="b" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpAbortForm, Reason: "user cancelled"},
		{Op: model.OpSetString, FieldID: "b", Value: "late"},
	})

	if len(result.RejectedPatches) != 1 {
		t.Fatalf("expected the patch after abort to be rejected, got %+v", result.RejectedPatches)
	}
}

func TestApply_SkipFieldRecordsReason(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	result := patchapply.Apply(form, []model.Patch{
		{Op: model.OpSkipField, FieldID: "name", Reason: "not applicable"},
	})

	val := result.NewForm.ValueFor("name")
	if val.State != model.StateSkipped || val.SkipReason != "not applicable" {
		t.Fatalf("unexpected value: %+v", val)
	}
}
