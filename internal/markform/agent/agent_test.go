package agent_test

import (
	"context"
	"testing"

	"github.com/jlevy/markform/internal/markform/agent"
	"github.com/jlevy/markform/internal/markform/model"
)

func TestFuncAgent_SatisfiesInterface(t *testing.T) {
	var a agent.Agent = agent.FuncAgent(func(ctx context.Context, in *agent.FillStepInput) ([]model.Patch, error) {
		return []model.Patch{{Op: model.OpSetString, FieldID: "x", Value: "y"}}, nil
	})
	patches, err := a.GeneratePatches(context.Background(), &agent.FillStepInput{})
	if err != nil {
		t.Fatalf("GeneratePatches: %v", err)
	}
	if len(patches) != 1 || patches[0].FieldID != "x" {
		t.Fatalf("unexpected patches: %+v", patches)
	}
}

func TestMockAgent_PopsResponsesInOrderAndRecordsInputs(t *testing.T) {
	m := &agent.MockAgent{Responses: []agent.MockResponse{
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "a", Value: "1"}}},
		{Patches: []model.Patch{{Op: model.OpSetString, FieldID: "b", Value: "2"}}},
	}}

	p1, err := m.GeneratePatches(context.Background(), &agent.FillStepInput{MaxPatches: 1})
	if err != nil || len(p1) != 1 || p1[0].FieldID != "a" {
		t.Fatalf("unexpected first call: %+v, %v", p1, err)
	}
	p2, err := m.GeneratePatches(context.Background(), &agent.FillStepInput{MaxPatches: 1})
	if err != nil || len(p2) != 1 || p2[0].FieldID != "b" {
		t.Fatalf("unexpected second call: %+v, %v", p2, err)
	}
	p3, err := m.GeneratePatches(context.Background(), &agent.FillStepInput{MaxPatches: 1})
	if err != nil || len(p3) != 0 {
		t.Fatalf("expected empty response after responses are exhausted, got %+v, %v", p3, err)
	}
	if m.Calls() != 2 {
		t.Fatalf("expected 2 scripted calls consumed, got %d", m.Calls())
	}
	if len(m.Recorded) != 3 {
		t.Fatalf("expected every call recorded, got %d", len(m.Recorded))
	}
}
