package mcpserver_test

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jlevy/markform/internal/markform/mcpserver"
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

func newTestSession(t *testing.T) *mcpserver.Session {
	t.Helper()
	form := mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))
	return mcpserver.NewSession(form)
}

func TestRegister_AttachesFourToolsWithoutPanicking(t *testing.T) {
	sess := newTestSession(t)
	srv := server.NewMCPServer("markform-test", "0.0.0")
	mcpserver.Register(srv, sess)
}

func TestInspect_ReportsRequiredMissingIssue(t *testing.T) {
	sess := newTestSession(t)
	report := mcpserver.Inspect(sess)
	if len(report.Issues) == 0 {
		t.Fatalf("expected an issue for the unanswered required field")
	}
	if report.Issues[0].Ref != "name" {
		t.Fatalf("unexpected issue ref: %+v", report.Issues[0])
	}
}

func TestApply_UpdatesSessionForm(t *testing.T) {
	sess := newTestSession(t)
	result := mcpserver.Apply(sess, []model.Patch{
		{Op: model.OpSetString, FieldID: "name", Value: "Alice"},
	})
	if result.Status != model.StatusApplied {
		t.Fatalf("expected applied, got %s", result.Status)
	}
	if v := sess.Form().ValueFor("name"); v.State != model.StateAnswered || *v.String != "Alice" {
		t.Fatalf("expected session to reflect the applied patch, got %+v", v)
	}
}

func TestExport_ReturnsSchemaAndValues(t *testing.T) {
	sess := newTestSession(t)
	schema, values := mcpserver.Export(sess)
	if schema.Properties["name"] == nil {
		t.Fatalf("expected a schema entry for 'name'")
	}
	if _, ok := values["name"]; !ok {
		t.Fatalf("expected a values map entry for 'name'")
	}
}

func TestMarkdown_RoundTripsTheParsedForm(t *testing.T) {
	sess := newTestSession(t)
	src, err := mcpserver.Markdown(sess)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(src, `id="name"`) {
		t.Fatalf("expected serialized form to contain the 'name' field, got: %s", src)
	}
}
