package export

import (
	"github.com/bytedance/sonic"

	"github.com/jlevy/markform/internal/markform/model"
)

// JSONSchema is a minimal subset of the JSON Schema object model, just
// enough to describe every field kind the Glossary's mapping table names.
// Field order is not meaningful for json.Marshal's map output, so callers
// that need deterministic byte-for-byte output should sort Properties'
// keys themselves before diffing.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Format      string                 `json:"format,omitempty"`
	Pattern     string                 `json:"pattern,omitempty"`
	MinLength   *int                   `json:"minLength,omitempty"`
	MaxLength   *int                   `json:"maxLength,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
	MinItems    *int                   `json:"minItems,omitempty"`
	MaxItems    *int                   `json:"maxItems,omitempty"`
	UniqueItems bool                   `json:"uniqueItems,omitempty"`

	// XMarkform carries metadata the JSON Schema vocabulary has no slot for
	// (spec §4.9 "non-standard Markform metadata goes under x-markform").
	XMarkform *XMarkformMeta `json:"x-markform,omitempty"`
}

// XMarkformMeta is the field-level metadata spec §4.9 says belongs under
// the vendor extension key rather than forcing it into standard keywords.
type XMarkformMeta struct {
	Kind     model.FieldKind `json:"kind"`
	Role     string          `json:"role,omitempty"`
	Required bool            `json:"required,omitempty"`
}

// Schema translates form into a JSON Schema document, one property per
// field, mapped per the Glossary's field-kind table.
func Schema(form *model.ParsedForm) *JSONSchema {
	root := &JSONSchema{Type: "object", Properties: map[string]*JSONSchema{}}

	for _, f := range form.AllFields() {
		root.Properties[string(f.ID)] = fieldSchema(f)
		if f.Required {
			root.Required = append(root.Required, string(f.ID))
		}
	}
	return root
}

func fieldSchema(f *model.Field) *JSONSchema {
	s := &JSONSchema{XMarkform: &XMarkformMeta{Kind: f.Kind, Role: f.EffectiveRole(), Required: f.Required}}

	switch f.Kind {
	case model.KindString:
		s.Type = "string"
		if f.String != nil {
			s.MinLength, s.MaxLength, s.Pattern = f.String.MinLength, f.String.MaxLength, f.String.Pattern
		}
	case model.KindURL:
		s.Type = "string"
		s.Format = "uri"
		if f.URL != nil {
			s.MinLength, s.MaxLength, s.Pattern = f.URL.MinLength, f.URL.MaxLength, f.URL.Pattern
		}
	case model.KindNumber:
		s.Type = "number"
		if f.Number != nil {
			if f.Number.Integer {
				s.Type = "integer"
			}
			s.Minimum, s.Maximum = f.Number.Min, f.Number.Max
		}
	case model.KindStringList:
		s.Type = "array"
		s.Items = &JSONSchema{Type: "string"}
		if f.StringList != nil {
			s.MinItems, s.MaxItems, s.UniqueItems = f.StringList.MinItems, f.StringList.MaxItems, f.StringList.UniqueItems
			s.Items.Pattern = f.StringList.ItemPattern
		}
	case model.KindURLList:
		s.Type = "array"
		s.Items = &JSONSchema{Type: "string", Format: "uri"}
		if f.URLList != nil {
			s.MinItems, s.MaxItems, s.UniqueItems = f.URLList.MinItems, f.URLList.MaxItems, f.URLList.UniqueItems
		}
	case model.KindSingleSelect:
		s.Type = "string"
		if f.SingleSelect != nil {
			s.Enum = optionIDs(f.SingleSelect.Options)
		}
	case model.KindMultiSelect:
		s.Type = "array"
		items := &JSONSchema{Type: "string"}
		if f.MultiSelect != nil {
			items.Enum = optionIDs(f.MultiSelect.Options)
			s.MinItems, s.MaxItems = f.MultiSelect.MinSelections, f.MultiSelect.MaxSelections
		}
		s.Items = items
	case model.KindCheckboxes:
		s.Type = "object"
		if f.Checkboxes != nil {
			s.Properties = map[string]*JSONSchema{}
			for _, opt := range f.Checkboxes.Options {
				s.Properties[string(opt.ID)] = &JSONSchema{Type: "string", Enum: checkStateEnum(f.Checkboxes.Mode)}
			}
		}
	case model.KindDate:
		s.Type = "string"
		s.Format = "date"
	case model.KindYear:
		s.Type = "integer"
		if f.Year != nil {
			min, max := float64(f.Year.EffectiveMin()), float64(f.Year.EffectiveMax())
			s.Minimum, s.Maximum = &min, &max
		}
	case model.KindTable:
		s.Type = "array"
		s.Items = tableRowSchema(f.Table)
		if f.Table != nil {
			s.MinItems, s.MaxItems = f.Table.MinRows, f.Table.MaxRows
		}
	}
	return s
}

func tableRowSchema(t *model.TableConstraints) *JSONSchema {
	row := &JSONSchema{Type: "object", Properties: map[string]*JSONSchema{}}
	if t == nil {
		return row
	}
	for _, colID := range t.ColumnIDs {
		row.Properties[string(colID)] = &JSONSchema{Type: columnJSONType(t.ColumnTypes[colID])}
	}
	return row
}

func columnJSONType(ct model.ColumnType) string {
	switch ct {
	case model.ColumnNumber, model.ColumnYear:
		return "string" // table cells are stored as text (model.TableRow is map[Id]string); the numeric/year shape is advisory, not a storage type
	default:
		return "string"
	}
}

func optionIDs(opts []model.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = string(o.ID)
	}
	return out
}

func checkStateEnum(mode model.CheckboxMode) []string {
	if mode == model.ModeExplicit {
		return []string{string(model.CheckYes), string(model.CheckNo), string(model.CheckUnfilled)}
	}
	return []string{string(model.CheckTodo), string(model.CheckDone), string(model.CheckNA)}
}

// SchemaJSON marshals Schema(form) via sonic.
func SchemaJSON(form *model.ParsedForm) ([]byte, error) {
	return sonic.MarshalIndent(Schema(form), "", "  ")
}
