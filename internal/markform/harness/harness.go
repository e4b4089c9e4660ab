// Package harness implements the L7 fill harness (spec §4.7): an agentic
// loop that repeatedly inspects a form, hands the agent a priority-ordered,
// budget-capped slice of issues, applies whatever patches come back, and
// records a turn-by-turn transcript, stopping on one of the conditions
// spec §4.7 names.
package harness

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/jlevy/markform/internal/markform/agent"
	"github.com/jlevy/markform/internal/markform/inspector"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/patchapply"
	"github.com/jlevy/markform/pkg/logger"
	"github.com/jlevy/markform/pkg/safego"
)

// ModuleName tags every log line this package emits (logger.*X calls).
const ModuleName = "markform.harness"

// FillStatus is the terminal outcome of a Run (spec §4.7 "FillResult").
type FillStatus string

const (
	StatusOK        FillStatus = "ok"
	StatusMaxTurns  FillStatus = "max_turns"
	StatusCancelled FillStatus = "cancelled"
	StatusAborted   FillStatus = "aborted"
	StatusError     FillStatus = "error"
)

// FillMode controls whether already-answered fields are revisited.
type FillMode string

const (
	FillContinue  FillMode = "continue"
	FillOverwrite FillMode = "overwrite"
)

// Options configures a Run (spec §4.7 "Config").
type Options struct {
	MaxTurns          int
	MaxIssuesPerTurn  int
	MaxFieldsPerTurn  int
	MaxGroupsPerTurn  int
	MaxPatchesPerTurn int
	TargetRoles       inspector.RoleSet
	FillMode          FillMode
	AbortSignal       <-chan struct{}
}

// TurnProgress is the per-turn record spec §4.7 step 7 describes.
type TurnProgress struct {
	TurnNumber    int
	Issues        []model.InspectIssue
	Patches       []model.Patch
	AppliedCount  int
	RejectedCount int
	Warnings      []model.PatchWarning
	StartedAt     time.Time
	FinishedAt    time.Time
}

// TurnEvent is streamed to callers via schema.Pipe as each turn completes,
// mirroring the teacher's schema.Pipe[*entity.AgentEvent] idiom
// (runtime/runner.go).
type TurnEvent struct {
	SessionID string
	Turn      *TurnProgress
	Done      bool
	Err       error
}

// Result is the harness's final output (spec §4.7 "FillResult").
type Result struct {
	Status   FillStatus
	NewForm  *model.ParsedForm
	Turns    []*TurnProgress
	Warnings []model.PatchWarning
	Session  string // session id (a UUID), also the key of any transcript records
}

// Run drives agt through the per-turn algorithm (spec §4.7) until a stop
// condition fires. It returns immediately with a StreamReader of TurnEvents
// plus a function to await the final Result, the same "launch async, stream
// back" shape as the teacher's AgentRunner.Run.
func Run(ctx context.Context, form *model.ParsedForm, agt agent.Agent, opts Options, rec *TranscriptRecorder) (*schema.StreamReader[*TurnEvent], func() *Result) {
	sessionID := uuid.New().String()
	sr, sw := schema.Pipe[*TurnEvent](8)

	resultCh := make(chan *Result, 1)

	safego.Go(ctx, func() {
		defer sw.Close()
		result := runLoop(ctx, sessionID, form, agt, opts, rec, sw)
		resultCh <- result
	})

	await := func() *Result {
		return <-resultCh
	}
	return sr, await
}

func runLoop(ctx context.Context, sessionID string, form *model.ParsedForm, agt agent.Agent, opts Options, rec *TranscriptRecorder, sw *schema.StreamWriter[*TurnEvent]) *Result {
	opts = withDefaults(opts)
	working := form

	var turns []*TurnProgress
	var allWarnings []model.PatchWarning
	status := StatusOK

	for turnNumber := 1; ; turnNumber++ {
		if aborted(opts.AbortSignal) {
			status = StatusCancelled
			break
		}
		if turnNumber > opts.MaxTurns {
			status = StatusMaxTurns
			break
		}

		report := inspector.Inspect(working, inspector.Options{TargetRoles: opts.TargetRoles})
		issues := selectIssuesForTurn(working, report.Issues, opts)
		if len(issues) == 0 {
			break
		}
		if allBlocked(issues) {
			break
		}

		started := time.Now()
		patches, err := agt.GeneratePatches(ctx, &agent.FillStepInput{
			Form:       working,
			Issues:     issues,
			MaxPatches: opts.MaxPatchesPerTurn,
		})
		if err != nil {
			logger.ErrorX(ModuleName, "[harness] turn %d: agent error: %v", turnNumber, err)
			status = StatusError
			break
		}
		if len(patches) > opts.MaxPatchesPerTurn {
			patches = patches[:opts.MaxPatchesPerTurn]
		}

		applyResult := patchapply.Apply(working, patches)
		working = applyResult.NewForm
		allWarnings = append(allWarnings, applyResult.Warnings...)

		turn := &TurnProgress{
			TurnNumber:    turnNumber,
			Issues:        issues,
			Patches:       patches,
			AppliedCount:  len(applyResult.AppliedPatches),
			RejectedCount: len(applyResult.RejectedPatches),
			Warnings:      applyResult.Warnings,
			StartedAt:     started,
			FinishedAt:    time.Now(),
		}
		turns = append(turns, turn)
		if rec != nil {
			if err := rec.Record(sessionID, turn); err != nil {
				logger.WarnX(ModuleName, "[harness] turn %d: transcript write failed: %v", turnNumber, err)
			}
		}
		sw.Send(&TurnEvent{SessionID: sessionID, Turn: turn}, nil)

		if formAborted(patches, applyResult) {
			status = StatusAborted
			break
		}
	}

	sw.Send(&TurnEvent{SessionID: sessionID, Done: true}, nil)

	logger.InfoX(ModuleName, "[harness] session %s finished after %d turn(s), status=%s", sessionID, len(turns), status)

	return &Result{
		Status:   status,
		NewForm:  working,
		Turns:    turns,
		Warnings: allWarnings,
		Session:  sessionID,
	}
}

// withDefaults fills in the Glossary's default budgets for any zero-valued
// field. MaxFieldsPerTurn/MaxGroupsPerTurn default to 0, the sentinel this
// package treats as "unbounded" throughout, so they are deliberately left
// alone here.
func withDefaults(o Options) Options {
	if o.MaxTurns <= 0 {
		o.MaxTurns = 100
	}
	if o.MaxIssuesPerTurn <= 0 {
		o.MaxIssuesPerTurn = 10
	}
	if o.MaxPatchesPerTurn <= 0 {
		o.MaxPatchesPerTurn = 20
	}
	if o.FillMode == "" {
		o.FillMode = FillContinue
	}
	return o
}

func aborted(sig <-chan struct{}) bool {
	if sig == nil {
		return false
	}
	select {
	case <-sig:
		return true
	default:
		return false
	}
}

// selectIssuesForTurn implements spec §4.7 steps 2-4: stop at (and
// include) the first blocking checkpoint, cap the distinct field/group
// count, then truncate to maxIssuesPerTurn.
func selectIssuesForTurn(form *model.ParsedForm, all []model.InspectIssue, opts Options) []model.InspectIssue {
	var selected []model.InspectIssue
	fields := map[string]bool{}
	groups := map[string]bool{}
	groupOf := map[string]string{}
	for _, fd := range form.Forms {
		for _, g := range fd.Groups {
			groupOf[string(g.ID)] = string(g.ID)
			for _, f := range g.Fields {
				groupOf[string(f.ID)] = string(g.ID)
			}
		}
	}

	for _, iss := range all {
		isCheckpoint := iss.BlockedBy == "" && iss.Scope == model.ScopeField && isBlockingCheckpointIssue(iss)

		if iss.BlockedBy != "" && !isCheckpoint {
			// A blocked field's issue is only included if it *is* the
			// checkpoint itself (handled above); otherwise stop here, spec
			// §4.7 step 2 "stop at the first blocking checkpoint (include it)".
			if len(selected) > 0 {
				break
			}
			continue
		}

		candidateFields := cloneKeys(fields)
		candidateGroups := cloneKeys(groups)
		if iss.Scope == model.ScopeField {
			candidateFields[iss.Ref] = true
		}
		if groupRef := groupOf[iss.Ref]; groupRef != "" {
			candidateGroups[groupRef] = true
		}
		if overCap(len(candidateFields), opts.MaxFieldsPerTurn) || overCap(len(candidateGroups), opts.MaxGroupsPerTurn) {
			continue
		}

		selected = append(selected, iss)
		fields, groups = candidateFields, candidateGroups
		if len(selected) >= opts.MaxIssuesPerTurn {
			break
		}
	}
	return selected
}

// overCap reports whether n exceeds limit, where limit==0 means unbounded
// (Glossary "maxFieldsPerTurn=∞, maxGroupsPerTurn=∞").
func overCap(n, limit int) bool {
	if limit == 0 {
		return false
	}
	return n > limit
}

func cloneKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k := range m {
		out[k] = true
	}
	return out
}

func isBlockingCheckpointIssue(iss model.InspectIssue) bool {
	return iss.Code == model.CodeCheckboxIncomplete
}

func allBlocked(issues []model.InspectIssue) bool {
	for _, iss := range issues {
		if iss.BlockedBy == "" {
			return false
		}
	}
	return len(issues) > 0
}

func formAborted(patches []model.Patch, result model.ApplyResult) bool {
	for _, p := range result.AppliedPatches {
		if p.Op == model.OpAbortForm {
			return true
		}
	}
	return false
}
