// Package agent defines the abstract fill-harness driver contract (spec
// §4.7): the engine calls out to an Agent for patches and never inspects
// what produced them, whether that's an LLM, a scripted fixture, or a human
// relay.
package agent

import (
	"context"

	"github.com/jlevy/markform/internal/markform/model"
)

// FillStepInput is everything an Agent needs to produce one turn's patches:
// the current form state and the prioritized, already-filtered issue list
// the harness wants addressed this turn (spec §4.7 step 5 "Ask the agent
// for patches").
type FillStepInput struct {
	Form       *model.ParsedForm
	Issues     []model.InspectIssue
	MaxPatches int
}

// Agent is the one-method capability the fill harness drives (spec §4.7
// "generatePatches(form, issues, maxPatches) -> Promise<Patch[]>").
// Implementations must not mutate in.Form.
type Agent interface {
	GeneratePatches(ctx context.Context, in *FillStepInput) ([]model.Patch, error)
}

// FuncAgent adapts a plain function literal to the Agent interface, the
// same "one-method capability, multiple implementations" shape spec.md §9
// calls for (mirrors http.HandlerFunc).
type FuncAgent func(ctx context.Context, in *FillStepInput) ([]model.Patch, error)

func (f FuncAgent) GeneratePatches(ctx context.Context, in *FillStepInput) ([]model.Patch, error) {
	return f(ctx, in)
}
