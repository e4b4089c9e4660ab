// Package coerce implements L8 value coercion (spec §4.8): turning a loosely
// typed external InputContext into a typed Patch list, and the best-effort
// normalization table the patch applicator (L5) reuses on each individual
// patch value before structural/semantic validation.
package coerce

import (
	"fmt"
	"net/url"

	"github.com/jlevy/markform/internal/markform/model"
)

// CoerceError is returned for an InputContext entry that cannot be turned
// into a patch at all (unknown field, impossible shape); it's distinct from
// a PatchWarning, which records a coercion that *did* succeed.
type CoerceError struct {
	FieldID model.Id
	Raw     any
	Msg     string
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("coerce: field %q: %s (raw=%v)", e.FieldID, e.Msg, e.Raw)
}

// InputContext is the raw external payload: fieldId -> string | number |
// boolean | []any | map[string]any (spec §4.8).
type InputContext map[model.Id]any

// FromContext turns every entry of ctx into a Patch, looking up each
// field's kind in form to choose the right op. Entries for unknown field
// ids produce a CoerceError rather than a Patch; callers may discard or
// surface those per spec §4.8 ("callers may surface or discard them").
func FromContext(form *model.ParsedForm, ctx InputContext) ([]model.Patch, []*CoerceError) {
	var patches []model.Patch
	var errs []*CoerceError

	for id, raw := range ctx {
		field := form.FieldByID(id)
		if field == nil {
			errs = append(errs, &CoerceError{FieldID: id, Raw: raw, Msg: "unknown field id"})
			continue
		}
		patch, err := patchFor(field, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		patches = append(patches, patch)
	}
	return patches, errs
}

func patchFor(f *model.Field, raw any) (model.Patch, *CoerceError) {
	switch f.Kind {
	case model.KindString, model.KindURL, model.KindDate:
		return model.Patch{Op: model.OpSetString, FieldID: f.ID, Value: raw}, nil
	case model.KindNumber, model.KindYear:
		return model.Patch{Op: model.OpSetNumber, FieldID: f.ID, Value: raw}, nil
	case model.KindStringList:
		return model.Patch{Op: model.OpSetStringList, FieldID: f.ID, Value: raw}, nil
	case model.KindURLList:
		return model.Patch{Op: model.OpSetURLList, FieldID: f.ID, Value: raw}, nil
	case model.KindSingleSelect:
		return model.Patch{Op: model.OpSetSingleSelect, FieldID: f.ID, Value: raw}, nil
	case model.KindMultiSelect:
		return model.Patch{Op: model.OpSetMultiSelect, FieldID: f.ID, Value: raw}, nil
	case model.KindCheckboxes:
		return model.Patch{Op: model.OpSetCheckboxes, FieldID: f.ID, Value: raw}, nil
	case model.KindTable:
		return model.Patch{Op: model.OpSetTable, FieldID: f.ID, Value: raw}, nil
	default:
		return model.Patch{}, &CoerceError{FieldID: f.ID, Raw: raw, Msg: "no coercion available for this field kind"}
	}
}

// Result is one successful normalization: the narrowed Go value plus an
// optional warning describing the coercion that was applied (spec §4.5
// "Normalization / coercion").
type Result struct {
	Value   any
	Warning string // empty if the input needed no coercion
}

// NormalizeStringList applies "string -> string_list (single item)" (spec
// §4.5) and otherwise expects []string or []any of strings.
func NormalizeStringList(raw any) (Result, error) {
	switch v := raw.(type) {
	case string:
		return Result{Value: []string{v}, Warning: "coerced scalar string to a single-item string_list"}, nil
	case []string:
		return Result{Value: v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Result{}, fmt.Errorf("string_list item %v is not a string", item)
			}
			out = append(out, s)
		}
		return Result{Value: out}, nil
	default:
		return Result{}, fmt.Errorf("cannot coerce %T to string_list", raw)
	}
}

// NormalizeURLList applies "string -> url_list (single item if URL-shaped)".
func NormalizeURLList(raw any) (Result, error) {
	switch v := raw.(type) {
	case string:
		if !isURLShaped(v) {
			return Result{}, fmt.Errorf("%q is not URL-shaped", v)
		}
		return Result{Value: []string{v}, Warning: "coerced scalar URL string to a single-item url_list"}, nil
	case []string:
		return Result{Value: v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Result{}, fmt.Errorf("url_list item %v is not a string", item)
			}
			out = append(out, s)
		}
		return Result{Value: out}, nil
	default:
		return Result{}, fmt.Errorf("cannot coerce %T to url_list", raw)
	}
}

// NormalizeMultiSelect applies "OptionId -> multi_select (single element)".
func NormalizeMultiSelect(raw any) (Result, error) {
	switch v := raw.(type) {
	case string:
		return Result{Value: []model.OptionId{model.OptionId(v)}, Warning: "coerced a single option id to a one-element multi_select"}, nil
	case model.OptionId:
		return Result{Value: []model.OptionId{v}, Warning: "coerced a single option id to a one-element multi_select"}, nil
	case []string:
		out := make([]model.OptionId, len(v))
		for i, s := range v {
			out[i] = model.OptionId(s)
		}
		return Result{Value: out}, nil
	case []model.OptionId:
		return Result{Value: v}, nil
	case []any:
		out := make([]model.OptionId, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Result{}, fmt.Errorf("multi_select item %v is not an option id", item)
			}
			out = append(out, model.OptionId(s))
		}
		return Result{Value: out}, nil
	default:
		return Result{}, fmt.Errorf("cannot coerce %T to multi_select", raw)
	}
}

// NormalizeCheckboxes applies "boolean -> checkbox state" and
// "OptionId[] -> checkboxes map" (spec §4.5). mode determines the state
// vocabulary; options is the field's declared option set, used to expand an
// OptionId[] "mark these done, leave the rest default" shorthand into a
// full map.
func NormalizeCheckboxes(raw any, mode model.CheckboxMode, options []model.Option) (Result, error) {
	switch v := raw.(type) {
	case bool:
		state := model.DefaultState(mode)
		if v {
			state = model.DoneState(mode)
		}
		out := map[model.OptionId]model.CheckState{}
		for _, o := range options {
			out[o.ID] = state
		}
		return Result{Value: out, Warning: "coerced a single boolean to a full checkboxes map"}, nil
	case map[model.OptionId]model.CheckState:
		return Result{Value: v}, nil
	case map[string]any:
		out := map[model.OptionId]model.CheckState{}
		for k, sv := range v {
			s, ok := sv.(string)
			if !ok {
				return Result{}, fmt.Errorf("checkboxes state for %q is not a string", k)
			}
			out[model.OptionId(k)] = model.CheckState(s)
		}
		return Result{Value: out}, nil
	case []string:
		return coerceCheckboxIDList(toOptionIDs(v), mode, options), nil
	case []model.OptionId:
		return coerceCheckboxIDList(v, mode, options), nil
	case []any:
		ids := make([]model.OptionId, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Result{}, fmt.Errorf("checkboxes id list item %v is not a string", item)
			}
			ids = append(ids, model.OptionId(s))
		}
		return coerceCheckboxIDList(ids, mode, options), nil
	default:
		return Result{}, fmt.Errorf("cannot coerce %T to checkboxes", raw)
	}
}

func coerceCheckboxIDList(ids []model.OptionId, mode model.CheckboxMode, options []model.Option) Result {
	if len(ids) == 0 {
		return Result{Value: map[model.OptionId]model.CheckState{}}
	}
	marked := map[model.OptionId]bool{}
	for _, id := range ids {
		marked[id] = true
	}
	out := map[model.OptionId]model.CheckState{}
	for _, o := range options {
		if marked[o.ID] {
			out[o.ID] = model.DoneState(mode)
		} else {
			out[o.ID] = model.DefaultState(mode)
		}
	}
	warning := "coerced an option id array into a full checkboxes map (default-state chosen per mode)"
	return Result{Value: out, Warning: warning}
}

func toOptionIDs(ss []string) []model.OptionId {
	out := make([]model.OptionId, len(ss))
	for i, s := range ss {
		out[i] = model.OptionId(s)
	}
	return out
}

func isURLShaped(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
