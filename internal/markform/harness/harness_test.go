package harness_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/jlevy/markform/internal/markform/agent"
	"github.com/jlevy/markform/internal/markform/harness"
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

func twoFieldForm(t *testing.T) *model.ParsedForm {
	return mustParse(t, strings.Join([]string{
		`{% form id="f" %}`,
		`{% field kind="string" id="name" required=true %}`,
		"{% /field %}",
		`{% field kind="string" id="email" required=true %}`,
		"{% /field %}",
		"{% /form %}",
	}, "\n"))
}

func awaitResult(t *testing.T, sr *schema.StreamReader[*harness.TurnEvent], await func() *harness.Result) *harness.Result {
	t.Helper()
	defer sr.Close()
	for {
		_, err := sr.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("sr.Recv: %v", err)
		}
	}
	return await()
}

func TestRun_BasicFillCompletesAcrossTwoTurns(t *testing.T) {
	form := twoFieldForm(t)
	mock := &agent.MockAgent{Responses: []agent.MockResponse{
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "name", Value: "Alice"}}},
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "email", Value: "alice@example.com"}}},
	}}

	sr, await := harness.Run(context.Background(), form, mock, harness.Options{MaxTurns: 5}, nil)
	result := awaitResult(t, sr, await)

	if result.Status != harness.StatusOK {
		t.Fatalf("expected ok, got %s", result.Status)
	}
	if len(result.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(result.Turns), result.Turns)
	}
	if v := result.NewForm.ValueFor("name"); v.State != model.StateAnswered || *v.String != "Alice" {
		t.Fatalf("unexpected name value: %+v", v)
	}
	if v := result.NewForm.ValueFor("email"); v.State != model.StateAnswered || *v.String != "alice@example.com" {
		t.Fatalf("unexpected email value: %+v", v)
	}
}

func TestRun_StopsAtMaxTurnsWhenAgentNeverFinishes(t *testing.T) {
	form := twoFieldForm(t)
	mock := &agent.MockAgent{Responses: []agent.MockResponse{
		{Patches: nil}, {Patches: nil}, {Patches: nil},
	}}

	sr, await := harness.Run(context.Background(), form, mock, harness.Options{MaxTurns: 2}, nil)
	result := awaitResult(t, sr, await)

	if result.Status != harness.StatusMaxTurns {
		t.Fatalf("expected max_turns, got %s", result.Status)
	}
}

func TestRun_AbortFormPatchStopsTheLoop(t *testing.T) {
	form := twoFieldForm(t)
	mock := &agent.MockAgent{Responses: []agent.MockResponse{
		{Patches: []model.Patch{{Op: model.OpAbortForm, FieldID: "f"}}},
	}}

	sr, await := harness.Run(context.Background(), form, mock, harness.Options{MaxTurns: 5}, nil)
	result := awaitResult(t, sr, await)

	if result.Status != harness.StatusAborted {
		t.Fatalf("expected aborted, got %s", result.Status)
	}
	if len(result.Turns) != 1 {
		t.Fatalf("expected exactly 1 turn before abort, got %d", len(result.Turns))
	}
}

func TestRun_RecordsTranscriptToDisk(t *testing.T) {
	form := twoFieldForm(t)
	mock := &agent.MockAgent{Responses: []agent.MockResponse{
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "name", Value: "Alice"}}},
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "email", Value: "a@b.com"}}},
	}}

	dir := t.TempDir()
	rec := harness.NewTranscriptRecorder(filepath.Join(dir, "session.yaml"))

	sr, await := harness.Run(context.Background(), form, mock, harness.Options{MaxTurns: 5}, rec)
	result := awaitResult(t, sr, await)

	if result.Status != harness.StatusOK {
		t.Fatalf("expected ok, got %s", result.Status)
	}
	data, err := os.ReadFile(rec.Path())
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if !strings.Contains(string(data), "turns:") {
		t.Fatalf("expected transcript to contain turn records, got: %s", data)
	}
}
