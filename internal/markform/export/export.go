// Package export implements the L9 projections (spec §4.9): derived,
// read-only views of a ParsedForm that never feed back into the engine —
// the values map, a report-mode Markdown rendering, and a JSON Schema.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/yuin/goldmark"

	"github.com/jlevy/markform/internal/markform/model"
)

// ValueEntry is one entry of the values map (spec §4.9 "fieldId -> typed
// value | {state, reason}").
type ValueEntry struct {
	State  model.ValueState `json:"state"`
	Reason string           `json:"reason,omitempty"`
	Value  any              `json:"value,omitempty"`
}

// ValuesMap reduces form to `{ fieldId -> typed value | {state, reason} }`.
func ValuesMap(form *model.ParsedForm) map[model.Id]ValueEntry {
	out := make(map[model.Id]ValueEntry, len(form.Values))
	for _, f := range form.AllFields() {
		v := form.ValueFor(f.ID)
		entry := ValueEntry{State: v.State}
		switch v.State {
		case model.StateSkipped:
			entry.Reason = v.SkipReason
		case model.StateAborted:
			entry.Reason = v.AbortReason
		case model.StateAnswered:
			entry.Value = scalarValue(v)
		}
		out[f.ID] = entry
	}
	return out
}

// scalarValue extracts the Go-native payload out of a FieldValue's
// Kind-discriminated pointer fields, for JSON-friendly emission.
func scalarValue(v *model.FieldValue) any {
	switch v.Kind {
	case model.KindString, model.KindURL:
		if v.String != nil {
			return *v.String
		}
		if v.URL != nil {
			return *v.URL
		}
		return nil
	case model.KindNumber:
		if v.Number != nil {
			return *v.Number
		}
		return nil
	case model.KindStringList:
		return v.StringList
	case model.KindURLList:
		return v.URLList
	case model.KindSingleSelect:
		if v.SingleSelect != nil {
			return *v.SingleSelect
		}
		return nil
	case model.KindMultiSelect:
		return v.MultiSelect
	case model.KindCheckboxes:
		return v.Checkboxes
	case model.KindDate:
		if v.Date != nil {
			return *v.Date
		}
		return nil
	case model.KindYear:
		if v.Year != nil {
			return *v.Year
		}
		return nil
	case model.KindTable:
		return v.Table
	default:
		return nil
	}
}

// ValuesJSON marshals ValuesMap via sonic, the teacher's drop-in
// encoding/json replacement for wire payloads.
func ValuesJSON(form *model.ParsedForm) ([]byte, error) {
	return sonic.Marshal(ValuesMap(form))
}

// RenderReport produces the report-mode Markdown rendering (spec §4.9):
// values substituted inline, fields/groups/documentation blocks whose
// `report` attribute is false omitted entirely.
func RenderReport(form *model.ParsedForm) (string, error) {
	var b strings.Builder

	fd := form.PrimaryForm()
	if fd != nil {
		if fd.Title != "" {
			fmt.Fprintf(&b, "# %s\n\n", fd.Title)
		}
		for _, g := range fd.Groups {
			if !g.ReportEnabled() {
				continue
			}
			renderGroupReport(&b, form, g)
		}
		renderFieldsReport(&b, form, fd.Fields)
	}

	out := b.String()
	if err := wellFormed(out); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}

func renderGroupReport(b *strings.Builder, form *model.ParsedForm, g *model.FieldGroup) {
	if g.Title != "" {
		fmt.Fprintf(b, "## %s\n\n", g.Title)
	}
	renderFieldsReport(b, form, g.Fields)
}

func renderFieldsReport(b *strings.Builder, form *model.ParsedForm, fields []*model.Field) {
	for _, f := range fields {
		if !f.ReportEnabled() {
			continue
		}
		label := f.Label
		if label == "" {
			label = string(f.ID)
		}
		if doc := form.DocFor(f.ID, model.DocInstructions); doc != nil {
			fmt.Fprintf(b, "%s\n\n", doc.BodyMarkdown)
		}
		fmt.Fprintf(b, "**%s:** %s\n\n", label, renderValueReport(form.ValueFor(f.ID)))
	}
}

// renderValueReport renders a single field's value for report mode; an
// unanswered/skipped/aborted value shows its sentinel rather than blank
// space, so a reviewer can tell "never addressed" from "empty answer".
func renderValueReport(v *model.FieldValue) string {
	switch v.State {
	case model.StateSkipped:
		return fmt.Sprintf("_skipped: %s_", orDash(v.SkipReason))
	case model.StateAborted:
		return fmt.Sprintf("_aborted: %s_", orDash(v.AbortReason))
	case model.StateUnanswered:
		return "_unanswered_"
	}

	switch val := scalarValue(v).(type) {
	case nil:
		return "_unanswered_"
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []model.OptionId:
		ids := make([]string, len(val))
		for i, id := range val {
			ids[i] = string(id)
		}
		return strings.Join(ids, ", ")
	case model.OptionId:
		return string(val)
	case map[model.OptionId]model.CheckState:
		return renderCheckboxesReport(val)
	case []model.TableRow:
		return renderTableReport(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func renderCheckboxesReport(m map[model.OptionId]model.CheckState) string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s=%s", id, m[model.OptionId(id)])
	}
	return strings.Join(parts, ", ")
}

func renderTableReport(rows []model.TableRow) string {
	if len(rows) == 0 {
		return "_(no rows)_"
	}
	return fmt.Sprintf("%d row(s)", len(rows))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// wellFormed parses markdown through goldmark as a sanity gate: the report
// renderer builds valid Markdown from plain string concatenation, and a
// parse failure here means a bug in the renderer, not bad input.
func wellFormed(markdown string) error {
	var discard strings.Builder
	if err := goldmark.Convert([]byte(markdown), &discard); err != nil {
		return fmt.Errorf("report markdown failed the well-formedness gate: %w", err)
	}
	return nil
}
