// Package patchapply implements the L5 patch applicator (spec §4.5):
// best-effort application of a Patch batch against a ParsedForm, producing
// a three-way applied/partial/rejected ApplyResult without ever rolling
// back patches that already succeeded in the same batch.
package patchapply

import (
	"fmt"

	"github.com/jlevy/markform/internal/markform/coerce"
	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/validator"
)

// Apply runs the full five-step algorithm from spec §4.5 over patches
// against form, returning a fresh ParsedForm (form itself is never
// mutated).
func Apply(form *model.ParsedForm, patches []model.Patch) model.ApplyResult {
	working := form.Clone()

	var applied []model.Patch
	var rejected []model.RejectedPatch
	var warnings []model.PatchWarning
	aborted := false

	for i, p := range patches {
		if aborted {
			rejected = append(rejected, model.RejectedPatch{
				PatchIndex: i, Patch: p, Message: "form already aborted by an earlier patch in this batch", Kind: string(errno.KindAbort),
			})
			continue
		}

		field := working.FieldByID(p.FieldID)
		if p.Op != model.OpAbortForm && field == nil {
			rejected = append(rejected, model.RejectedPatch{
				PatchIndex: i, Patch: p, Message: fmt.Sprintf("unknown field id %q", p.FieldID), Kind: string(errno.KindPatch),
			})
			continue
		}

		if p.Op != model.OpAbortForm && !opMatchesKind(p.Op, field.Kind) {
			rejected = append(rejected, model.RejectedPatch{
				PatchIndex: i, Patch: p,
				Message: fmt.Sprintf("op %q does not target field kind %q", p.Op, field.Kind),
				Kind:    string(errno.KindPatch),
			})
			continue
		}

		newVal, warning, err := applyOne(working, field, p)
		if err != nil {
			rejected = append(rejected, model.RejectedPatch{
				PatchIndex: i, Patch: p, Message: err.Error(), Kind: string(errno.KindPatch),
			})
			continue
		}
		if warning != "" {
			warnings = append(warnings, model.PatchWarning{
				PatchIndex: i, FieldID: p.FieldID, Kind: model.WarnCoercion, Message: warning,
			})
		}

		if p.Op == model.OpAbortForm {
			aborted = true
			applied = append(applied, p)
			continue
		}

		if issues := semanticIssues(field, newVal); len(issues) > 0 {
			rejected = append(rejected, model.RejectedPatch{
				PatchIndex: i, Patch: p, Message: issues[0].Message, Kind: string(errno.KindValidation),
			})
			continue
		}

		working.Values[p.FieldID] = newVal
		applied = append(applied, p)
	}

	refreshIndices(working)

	status := model.StatusApplied
	switch {
	case len(applied) == 0:
		status = model.StatusRejected
	case len(rejected) > 0:
		status = model.StatusPartial
	}

	return model.ApplyResult{
		Status:          status,
		NewForm:         working,
		AppliedPatches:  applied,
		RejectedPatches: rejected,
		Warnings:        warnings,
	}
}

func opMatchesKind(op model.PatchOp, kind model.FieldKind) bool {
	switch op {
	case model.OpClearField, model.OpSkipField:
		return true
	case model.OpSetString:
		return kind == model.KindString || kind == model.KindURL || kind == model.KindDate
	case model.OpSetNumber:
		return kind == model.KindNumber || kind == model.KindYear
	case model.OpSetStringList:
		return kind == model.KindStringList
	case model.OpSetURLList:
		return kind == model.KindURLList
	case model.OpSetSingleSelect:
		return kind == model.KindSingleSelect
	case model.OpSetMultiSelect:
		return kind == model.KindMultiSelect
	case model.OpSetCheckboxes:
		return kind == model.KindCheckboxes
	case model.OpSetTable:
		return kind == model.KindTable
	default:
		return false
	}
}

// applyOne computes the new FieldValue for a single patch, applying
// coercion where the raw payload doesn't already match the field kind's Go
// shape. It never writes into working.Values itself (the caller does that
// only after semantic validation passes, per spec §4.5 step 3).
func applyOne(working *model.ParsedForm, field *model.Field, p model.Patch) (*model.FieldValue, string, error) {
	switch p.Op {
	case model.OpClearField:
		return model.NewUnanswered(field.ID, field.Kind), "", nil
	case model.OpSkipField:
		v := model.NewUnanswered(field.ID, field.Kind)
		v.State = model.StateSkipped
		v.SkipReason = p.Reason
		return v, "", nil
	case model.OpAbortForm:
		return nil, "", nil
	case model.OpSetString:
		s, warn, err := coerceScalarString(p.Value)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		if s == nil {
			return v, warn, nil
		}
		v.State = model.StateAnswered
		switch field.Kind {
		case model.KindString:
			v.String = s
		case model.KindURL:
			v.URL = s
		case model.KindDate:
			v.Date = s
		}
		return v, warn, nil
	case model.OpSetNumber:
		n, warn, err := coerceScalarNumber(p.Value)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		if n == nil {
			return v, warn, nil
		}
		v.State = model.StateAnswered
		switch field.Kind {
		case model.KindNumber:
			v.Number = n
		case model.KindYear:
			y := int(*n)
			v.Year = &y
		}
		return v, warn, nil
	case model.OpSetStringList:
		res, err := coerce.NormalizeStringList(p.Value)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		v.State = model.StateAnswered
		v.StringList = res.Value.([]string)
		return v, res.Warning, nil
	case model.OpSetURLList:
		res, err := coerce.NormalizeURLList(p.Value)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		v.State = model.StateAnswered
		v.URLList = res.Value.([]string)
		return v, res.Warning, nil
	case model.OpSetSingleSelect:
		return coerceSingleSelect(field, p.Value)
	case model.OpSetMultiSelect:
		res, err := coerce.NormalizeMultiSelect(p.Value)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		v.State = model.StateAnswered
		v.MultiSelect = res.Value.([]model.OptionId)
		return v, res.Warning, nil
	case model.OpSetCheckboxes:
		mode := field.Checkboxes.Mode
		res, err := coerce.NormalizeCheckboxes(p.Value, mode, field.Checkboxes.Options)
		if err != nil {
			return nil, "", err
		}
		v := model.NewUnanswered(field.ID, field.Kind)
		v.State = model.StateAnswered
		newMap := res.Value.(map[model.OptionId]model.CheckState)
		// set_checkboxes merges into the existing map (spec §4.5 payload table).
		existing := working.ValueFor(field.ID)
		merged := map[model.OptionId]model.CheckState{}
		if existing != nil && existing.Checkboxes != nil {
			for k, s := range existing.Checkboxes {
				merged[k] = s
			}
		}
		for k, s := range newMap {
			merged[k] = s
		}
		v.Checkboxes = merged
		return v, res.Warning, nil
	case model.OpSetTable:
		return coerceTable(field, p.Value)
	default:
		return nil, "", fmt.Errorf("unsupported patch op %q", p.Op)
	}
}

func coerceScalarString(raw any) (*string, string, error) {
	if raw == nil {
		return nil, "", nil
	}
	if s, ok := raw.(string); ok {
		return &s, "", nil
	}
	return nil, "", fmt.Errorf("set_string value %v is not a string or null", raw)
}

func coerceScalarNumber(raw any) (*float64, string, error) {
	if raw == nil {
		return nil, "", nil
	}
	switch v := raw.(type) {
	case float64:
		return &v, "", nil
	case int:
		f := float64(v)
		return &f, "", nil
	default:
		return nil, "", fmt.Errorf("set_number value %v is not a number or null", raw)
	}
}

func coerceSingleSelect(field *model.Field, raw any) (*model.FieldValue, string, error) {
	v := model.NewUnanswered(field.ID, field.Kind)
	if raw == nil {
		return v, "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, "", fmt.Errorf("set_single_select value %v is not an option id or null", raw)
	}
	opt := model.OptionId(s)
	v.State = model.StateAnswered
	v.SingleSelect = &opt
	return v, "", nil
}

func coerceTable(field *model.Field, raw any) (*model.FieldValue, string, error) {
	rows, ok := raw.([]map[string]string)
	if !ok {
		// Accept []map[string]any as the loosely-typed wire shape and
		// coerce each cell to a string (spec §4.8 "raw ... object").
		generic, ok2 := raw.([]map[string]any)
		if !ok2 {
			return nil, "", fmt.Errorf("set_table value %v is not an array of row objects", raw)
		}
		rows = make([]map[string]string, len(generic))
		for i, row := range generic {
			r := make(map[string]string, len(row))
			for k, cell := range row {
				r[k] = fmt.Sprintf("%v", cell)
			}
			rows[i] = r
		}
	}
	v := model.NewUnanswered(field.ID, field.Kind)
	v.State = model.StateAnswered
	v.Table = make([]model.TableRow, len(rows))
	for i, row := range rows {
		r := model.TableRow{}
		for k, cell := range row {
			r[model.Id(k)] = cell
		}
		v.Table[i] = r
	}
	return v, "", nil
}

// semanticIssues runs just the per-field deterministic checks (spec §4.5
// step 3 "semantic validation"), reusing the validator's per-kind rules so
// the applicator and validator never drift apart on what "valid" means.
func semanticIssues(field *model.Field, val *model.FieldValue) []model.Issue {
	return validator.ValidateOne(field, val)
}

// refreshIndices rebuilds OrderIndex-dependent derived state after a batch.
// The structural indices (IDIndex/OptionIndex/ColumnIndex) never change
// across a patch application — only Values does — so there is nothing to
// recompute there; this hook exists for parity with spec §4.5 step 5's
// "refreshed indices" wording and as the place future derived caches would
// be rebuilt.
func refreshIndices(_ *model.ParsedForm) {}
