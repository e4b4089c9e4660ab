package inspector_test

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/inspector"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/parser"
)

func mustParse(t *testing.T, src string) *model.ParsedForm {
	t.Helper()
	form, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return form
}

func TestInspect_StructureCounts(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="a" required=true %}`,
		"```value",
		"hi",
		"```",
		"{% /field %}",
		`{% field kind="string" id="b" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	report := inspector.Inspect(form, inspector.Options{})
	if report.Structure.FieldCount != 2 || report.Structure.RequiredCount != 2 {
		t.Fatalf("unexpected structure: %+v", report.Structure)
	}
	if report.Structure.CompletedCount != 1 {
		t.Fatalf("expected 1 completed field, got %+v", report.Structure)
	}
}

func TestInspect_RequiredCountIncludesImplicitlyRequiredFields(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="a" %}`,
		"{% /field %}",
		`{% field kind="string_list" id="tags" minItems=1 %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	report := inspector.Inspect(form, inspector.Options{})
	if report.Structure.FieldCount != 2 {
		t.Fatalf("unexpected field count: %+v", report.Structure)
	}
	if report.Structure.RequiredCount != 1 {
		t.Fatalf("expected only the minItems>0 field to count as required, got %+v", report.Structure)
	}
}

func TestInspect_BlockingCheckpointBlocksLaterFields(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="checkboxes" id="approve" mode="all" required=true approvalMode="blocking" %}`,
		`{% option id="ok" label="OK" /%}`,
		"{% /field %}",
		`{% field kind="string" id="next" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	report := inspector.Inspect(form, inspector.Options{})

	var nextBlocked bool
	for _, iss := range report.Issues {
		if iss.Ref == "next" && iss.BlockedBy == "approve" {
			nextBlocked = true
		}
	}
	if !nextBlocked {
		t.Fatalf("expected field %q to be blocked by the checkpoint, got %+v", "next", report.Issues)
	}
}

func TestInspect_RoleFilteringKeepsCheckpointEvenIfOutsideSet(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="checkboxes" id="approve" mode="all" required=true approvalMode="blocking" role="reviewer" %}`,
		`{% option id="ok" label="OK" /%}`,
		"{% /field %}",
		`{% field kind="string" id="next" required=true role="agent" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	report := inspector.Inspect(form, inspector.Options{TargetRoles: map[string]bool{"agent": true}})

	foundCheckpoint := false
	for _, iss := range report.Issues {
		if iss.Ref == "approve" {
			foundCheckpoint = true
		}
	}
	if !foundCheckpoint {
		t.Fatalf("expected the blocking checkpoint to be included even though its role is outside TargetRoles, got %+v", report.Issues)
	}
}

func TestInspect_ProgressByRole(t *testing.T) {
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="a" role="user" %}`,
		"```value",
		"hi",
		"```",
		"{% /field %}",
		`{% field kind="string" id="b" role="agent" %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))

	report := inspector.Inspect(form, inspector.Options{})
	byRole := map[string]inspector.ProgressSummary{}
	for _, p := range report.Progress {
		byRole[p.Role] = p
	}
	if byRole["user"].CompletedCount != 1 || byRole["agent"].CompletedCount != 0 {
		t.Fatalf("unexpected progress: %+v", report.Progress)
	}
}
