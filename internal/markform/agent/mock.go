package agent

import (
	"context"

	"github.com/jlevy/markform/internal/markform/model"
)

// MockAgent is a scripted test double: each call to GeneratePatches pops
// the next response off Responses, in order, so a golden test can drive a
// fixed multi-turn fill scenario deterministically. It is the harness's
// golden-test driver (SPEC_FULL.md §C "Agent interface").
type MockAgent struct {
	Responses []MockResponse
	calls     int

	// Recorded captures every FillStepInput this agent was asked about, for
	// assertions about what the harness sent down on each turn.
	Recorded []*FillStepInput
}

// MockResponse is one scripted turn's output.
type MockResponse struct {
	Patches []model.Patch
	Err     error
}

func (m *MockAgent) GeneratePatches(_ context.Context, in *FillStepInput) ([]model.Patch, error) {
	m.Recorded = append(m.Recorded, in)
	if m.calls >= len(m.Responses) {
		return nil, nil
	}
	resp := m.Responses[m.calls]
	m.calls++
	return resp.Patches, resp.Err
}

// Calls reports how many times GeneratePatches has been invoked.
func (m *MockAgent) Calls() int { return m.calls }
