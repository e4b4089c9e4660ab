// Package inspector implements the L6 inspector (spec §4.6): a read-only
// pass over a ParsedForm that computes structure/progress summaries and a
// priority-ordered, blocking-aware issue list, without mutating anything.
package inspector

import (
	"sort"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/validator"
)

// StructureSummary counts the shape of a form (spec §4.6).
type StructureSummary struct {
	GroupCount       int `json:"groupCount"`
	FieldCount       int `json:"fieldCount"`
	OptionCount      int `json:"optionCount"`
	TableColumnCount int `json:"tableColumnCount"`
	RequiredCount    int `json:"requiredCount"`
	CompletedCount   int `json:"completedCount"`
}

// ProgressSummary tallies completion for one role.
type ProgressSummary struct {
	Role           string `json:"role"`
	FieldCount     int    `json:"fieldCount"`
	CompletedCount int    `json:"completedCount"`
}

// Report is the inspector's full output.
type Report struct {
	Structure StructureSummary     `json:"structure"`
	Progress  []ProgressSummary    `json:"progress"`
	Issues    []model.InspectIssue `json:"issues"`
}

// Options configures an Inspect call.
type Options struct {
	// TargetRoles restricts the returned Issues to fields whose role is in
	// this set (spec §4.6 "Role filtering"). Nil/empty means no filtering.
	TargetRoles RoleSet
	// ValidatorOptions is passed through to validator.Validate.
	ValidatorOptions validator.Options
}

// Inspect computes a full Report without mutating form.
func Inspect(form *model.ParsedForm, opts Options) Report {
	structure := computeStructure(form)
	progress := computeProgress(form)
	issues := computeIssues(form, opts)

	return Report{Structure: structure, Progress: progress, Issues: issues}
}

func computeStructure(form *model.ParsedForm) StructureSummary {
	var s StructureSummary
	for _, f := range form.Forms {
		s.GroupCount += len(f.Groups)
	}
	for _, field := range form.AllFields() {
		s.FieldCount++
		if validator.EffectivelyRequired(field) {
			s.RequiredCount++
		}
		if isComplete(form, field) {
			s.CompletedCount++
		}
		switch field.Kind {
		case model.KindSingleSelect:
			s.OptionCount += len(field.SingleSelect.Options)
		case model.KindMultiSelect:
			s.OptionCount += len(field.MultiSelect.Options)
		case model.KindCheckboxes:
			s.OptionCount += len(field.Checkboxes.Options)
		case model.KindTable:
			s.TableColumnCount += len(field.Table.ColumnIDs)
		}
	}
	return s
}

func computeProgress(form *model.ParsedForm) []ProgressSummary {
	byRole := map[string]*ProgressSummary{}
	var order []string
	for _, field := range form.AllFields() {
		role := field.EffectiveRole()
		p, ok := byRole[role]
		if !ok {
			p = &ProgressSummary{Role: role}
			byRole[role] = p
			order = append(order, role)
		}
		p.FieldCount++
		if isComplete(form, field) {
			p.CompletedCount++
		}
	}
	sort.Strings(order)
	out := make([]ProgressSummary, 0, len(order))
	for _, role := range order {
		out = append(out, *byRole[role])
	}
	return out
}

// isComplete mirrors the validator's notion of "no outstanding
// required/pattern/range/etc. issue for this field" (spec §4.4) without
// re-running the whole-form required/optional pass, so inspector and
// validator never diverge on what counts as done.
func isComplete(form *model.ParsedForm, field *model.Field) bool {
	val := form.ValueFor(field.ID)
	if val == nil || val.State == model.StateUnanswered {
		return false
	}
	if val.State == model.StateSkipped || val.State == model.StateAborted {
		return true
	}
	return len(validator.ValidateOne(field, val)) == 0
}

// computeIssues runs the validator, enriches each Issue into an
// InspectIssue with priority/blocking, and applies role filtering.
func computeIssues(form *model.ParsedForm, opts Options) []model.InspectIssue {
	raw := validator.Validate(form, opts.ValidatorOptions)

	score := 0
	for _, iss := range raw {
		score += model.IssueScoreFor(iss.Code, iss.Severity)
	}
	priority := model.PriorityForScore(score)

	checkpointID, blockedStartIdx := findBlockingCheckpoint(form)

	var out []model.InspectIssue
	for _, iss := range raw {
		enriched := model.InspectIssue{Issue: iss, Priority: priority}
		if iss.Scope == model.ScopeField {
			if f := form.FieldByID(model.Id(iss.Ref)); f != nil {
				enriched.TargetRole = f.EffectiveRole()
				if checkpointID != "" && fieldOrderIndex(form, f.ID) > blockedStartIdx {
					enriched.BlockedBy = string(checkpointID)
				}
			}
		}
		out = append(out, enriched)
	}

	if len(opts.TargetRoles) == 0 {
		return out
	}
	var filtered []model.InspectIssue
	for _, iss := range out {
		if iss.Ref == string(checkpointID) || opts.TargetRoles.Contains(iss.TargetRole) {
			filtered = append(filtered, iss)
		}
	}
	return filtered
}

// findBlockingCheckpoint returns the id of the first incomplete required
// blocking checkboxes field, in OrderIndex order, and its position. Returns
// ("", -1) if no such checkpoint exists (spec §4.6 "Blocking checkpoints").
func findBlockingCheckpoint(form *model.ParsedForm) (model.Id, int) {
	for idx, id := range form.OrderIndex {
		f := form.FieldByID(id)
		if f == nil || f.Kind != model.KindCheckboxes || f.Checkboxes == nil {
			continue
		}
		if f.Checkboxes.ApprovalMode != model.ApprovalBlocking || !f.Required {
			continue
		}
		if !isComplete(form, f) {
			return id, idx
		}
	}
	return "", -1
}

func fieldOrderIndex(form *model.ParsedForm, id model.Id) int {
	for i, oid := range form.OrderIndex {
		if oid == id {
			return i
		}
	}
	return -1
}
