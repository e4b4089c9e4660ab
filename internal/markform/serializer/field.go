package serializer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jlevy/markform/internal/markform/model"
)

func writeField(w *strings.Builder, form *model.ParsedForm, f *model.Field) error {
	attrs := fieldAttrs(f)
	hasBody := fieldNeedsBody(f)

	if hasBody {
		writeOpenTag(w, "field", orderedAttrs("field", attrs))
	} else {
		writeSelfClosedTag(w, "field", orderedAttrs("field", attrs))
	}
	w.WriteString("\n")

	if hasBody {
		writeFieldBody(w, form, f)
		w.WriteString("{% /field %}\n")
	}
	w.WriteString("\n")

	return writeDocsFor(w, form, f.ID)
}

func fieldAttrs(f *model.Field) map[string]attrValue {
	attrs := map[string]attrValue{
		"kind":  {str: string(f.Kind)},
		"id":    {str: string(f.ID)},
		"label": {str: f.Label, omitEmpty: true},
		"role":  {str: f.Role},
	}
	required := f.Required
	attrs["required"] = attrValue{boolVal: &required}
	if f.Report != nil {
		v := *f.Report
		attrs["report"] = attrValue{boolVal: &v}
	}
	if f.Instructions != nil {
		attrs["instructions"] = attrValue{str: string(*f.Instructions)}
	}

	switch f.Kind {
	case model.KindString, model.KindURL:
		c := f.String
		if f.Kind == model.KindURL {
			c = f.URL
		}
		if c != nil {
			addIntAttr(attrs, "minLength", c.MinLength)
			addIntAttr(attrs, "maxLength", c.MaxLength)
			if c.Pattern != "" {
				attrs["pattern"] = attrValue{str: c.Pattern}
			}
		}
	case model.KindNumber:
		if c := f.Number; c != nil {
			addFloatAttr(attrs, "min", c.Min)
			addFloatAttr(attrs, "max", c.Max)
			integer := c.Integer
			attrs["integer"] = attrValue{boolVal: &integer}
		}
	case model.KindStringList, model.KindURLList:
		c := f.StringList
		if f.Kind == model.KindURLList {
			c = f.URLList
		}
		if c != nil {
			addIntAttr(attrs, "minItems", c.MinItems)
			addIntAttr(attrs, "maxItems", c.MaxItems)
			unique := c.UniqueItems
			attrs["uniqueItems"] = attrValue{boolVal: &unique}
			if c.ItemPattern != "" {
				attrs["itemPattern"] = attrValue{str: c.ItemPattern}
			}
		}
	case model.KindMultiSelect:
		if c := f.MultiSelect; c != nil {
			addIntAttr(attrs, "minSelections", c.MinSelections)
			addIntAttr(attrs, "maxSelections", c.MaxSelections)
		}
	case model.KindCheckboxes:
		if c := f.Checkboxes; c != nil {
			attrs["mode"] = attrValue{str: string(c.Mode)}
			attrs["approvalMode"] = attrValue{str: string(c.ApprovalMode)}
			addIntAttr(attrs, "minDone", c.MinDone)
		}
	case model.KindDate:
		if c := f.Date; c != nil {
			if c.Min != "" {
				attrs["min"] = attrValue{str: c.Min}
			}
			if c.Max != "" {
				attrs["max"] = attrValue{str: c.Max}
			}
		}
	case model.KindYear:
		if c := f.Year; c != nil {
			if c.Min != 0 {
				attrs["min"] = attrValue{numVal: floatPtr(float64(c.Min))}
			}
			if c.Max != 0 {
				attrs["max"] = attrValue{numVal: floatPtr(float64(c.Max))}
			}
		}
	case model.KindTable:
		if c := f.Table; c != nil {
			addIntAttr(attrs, "minRows", c.MinRows)
			addIntAttr(attrs, "maxRows", c.MaxRows)
		}
	}
	return attrs
}

func fieldNeedsBody(f *model.Field) bool {
	switch f.Kind {
	case model.KindSingleSelect, model.KindMultiSelect, model.KindCheckboxes, model.KindTable:
		return true
	default:
		return true // every kind at minimum carries (or could carry) a value fence
	}
}

func addIntAttr(attrs map[string]attrValue, name string, v *int) {
	if v == nil {
		return
	}
	attrs[name] = attrValue{numVal: floatPtr(float64(*v))}
}

func addFloatAttr(attrs map[string]attrValue, name string, v *float64) {
	if v == nil {
		return
	}
	attrs[name] = attrValue{numVal: v}
}

func floatPtr(f float64) *float64 { return &f }

func writeFieldBody(w *strings.Builder, form *model.ParsedForm, f *model.Field) {
	val := form.ValueFor(f.ID)

	switch f.Kind {
	case model.KindString, model.KindURL, model.KindDate:
		writeScalarValue(w, val, scalarText(f.Kind, val))
	case model.KindNumber:
		writeScalarValue(w, val, numberText(val.Number))
	case model.KindYear:
		writeScalarValue(w, val, yearText(val.Year))
	case model.KindStringList:
		writeListValue(w, val, val.StringList)
	case model.KindURLList:
		writeListValue(w, val, val.URLList)
	case model.KindSingleSelect:
		writeOptionTags(w, f.SingleSelect.Options)
		writeSingleSelectChecklist(w, f.SingleSelect.Options, val)
	case model.KindMultiSelect:
		writeOptionTags(w, f.MultiSelect.Options)
		writeMultiSelectChecklist(w, f.MultiSelect.Options, val)
	case model.KindCheckboxes:
		writeOptionTags(w, f.Checkboxes.Options)
		writeCheckboxesChecklist(w, f.Checkboxes.Options, f.Checkboxes.Mode, val)
	case model.KindTable:
		writeColumnTags(w, f.Table)
		writeTableValue(w, f.Table, val)
	}
}

func scalarText(kind model.FieldKind, v *model.FieldValue) *string {
	switch kind {
	case model.KindString:
		return v.String
	case model.KindURL:
		return v.URL
	case model.KindDate:
		return v.Date
	}
	return nil
}

func numberText(n *float64) *string {
	if n == nil {
		return nil
	}
	s := formatNumber(*n)
	return &s
}

func yearText(y *int) *string {
	if y == nil {
		return nil
	}
	s := strconv.Itoa(*y)
	return &s
}

func writeScalarValue(w *strings.Builder, val *model.FieldValue, text *string) {
	content := sentinelOrContent(val, text)
	if content == nil {
		return
	}
	w.WriteString(renderFence(*content))
}

func writeListValue(w *strings.Builder, val *model.FieldValue, items []string) {
	if val.State == model.StateSkipped || val.State == model.StateAborted {
		w.WriteString(renderFence(*sentinelText(val)))
		return
	}
	if val.State != model.StateAnswered {
		return
	}
	var lines []string
	for _, it := range items {
		lines = append(lines, "- "+it)
	}
	w.WriteString(renderFence(strings.Join(lines, "\n")))
}

// sentinelOrContent returns the fence content to emit: the sentinel marker
// if the value is skipped/aborted, the scalar text if answered, or nil if
// there is nothing to render (field stays self-closed-equivalent, empty body).
func sentinelOrContent(val *model.FieldValue, text *string) *string {
	if val.State == model.StateSkipped || val.State == model.StateAborted {
		return sentinelText(val)
	}
	if val.State == model.StateAnswered && text != nil {
		return text
	}
	return nil
}

func sentinelText(val *model.FieldValue) *string {
	var s string
	switch val.State {
	case model.StateSkipped:
		s = model.SentinelSkip
		if val.SkipReason != "" {
			s += " " + val.SkipReason
		}
	case model.StateAborted:
		s = model.SentinelAbort
		if val.AbortReason != "" {
			s += " " + val.AbortReason
		}
	}
	return &s
}

func writeOptionTags(w *strings.Builder, opts []model.Option) {
	for _, o := range opts {
		fmt.Fprintf(w, "{%% option id=%q label=%q /%%}\n", string(o.ID), o.Label)
	}
}

func writeColumnTags(w *strings.Builder, t *model.TableConstraints) {
	for _, id := range t.ColumnIDs {
		label := t.ColumnLabels[id]
		colType := t.ColumnTypes[id]
		if label != "" {
			fmt.Fprintf(w, "{%% column id=%q label=%q type=%q /%%}\n", string(id), label, string(colType))
		} else {
			fmt.Fprintf(w, "{%% column id=%q type=%q /%%}\n", string(id), string(colType))
		}
	}
}
