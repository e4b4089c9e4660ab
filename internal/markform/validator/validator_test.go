package validator_test

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
	"github.com/jlevy/markform/internal/markform/validator"
)

func mustParse(t *testing.T, src string) *model.ParsedForm {
	t.Helper()
	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return form
}

func TestValidate_RequiredMissingProducesError(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{})
	found := false
	for _, iss := range issues {
		if iss.Code == model.CodeRequiredMissing && iss.Ref == "name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected required_missing issue, got %+v", issues)
	}
}

func TestValidate_PatternMismatch(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="code" pattern="^[A-Z]{3}$" %}`,
		"```value",
		"abc",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{})
	found := false
	for _, iss := range issues {
		if iss.Code == model.CodePatternMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected pattern_mismatch issue, got %+v", issues)
	}
}

func TestValidate_CheckboxesAllModeIncompleteUntilEveryOptionDoneOrNA(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="checkboxes" id="steps" mode="all" %}`,
		`{% option id="a" label="A" /%}`,
		`{% option id="b" label="B" /%}`,
		"- [x] a A",
		"- [ ] b B",
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{})
	found := false
	for _, iss := range issues {
		if iss.Code == model.CodeCheckboxIncomplete {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected checkbox_incomplete issue for option b, got %+v", issues)
	}
}

func TestValidate_SkippedFieldIsNotMissing(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"```value",
		"%SKIP% n/a",
		"```",
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{})
	for _, iss := range issues {
		if iss.Ref == "name" {
			t.Fatalf("skipped required field should not raise an issue, got %+v", iss)
		}
	}
}

func TestValidate_PositiveMinItemsIsImplicitlyRequired(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string_list" id="tags" minItems=1 %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{})
	var found *model.Issue
	for i, iss := range issues {
		if iss.Ref == "tags" {
			found = &issues[i]
		}
	}
	if found == nil || found.Code != model.CodeRequiredMissing || found.Severity != model.SeverityError {
		t.Fatalf("expected a required_missing error for an unanswered minItems>0 field, got %+v", issues)
	}
}

func TestEffectivelyRequired_TrueForPositiveMinSelectionsEvenWithoutRequired(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="multi_select" id="picks" minSelections=2 %}`,
		`{% option id="a" label="A" /%}`,
		`{% option id="b" label="B" /%}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	field := form.FieldByID("picks")
	if field.Required {
		t.Fatalf("fixture should leave Required unset to exercise the implicit-required path")
	}
	if !validator.EffectivelyRequired(field) {
		t.Fatalf("expected a positive minSelections to count as effectively required")
	}
}

func TestValidate_UndeclaredRoleWarnsNotFails(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" role="reviewer" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	issues := validator.Validate(form, validator.Options{DeclaredRoles: map[string]bool{"agent": true, "user": true}})
	found := false
	for _, iss := range issues {
		if iss.Ref == "name" && iss.Severity == model.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning-level issue for undeclared role, got %+v", issues)
	}
}
