package parser

import (
	"fmt"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/tagast"
)

// commonFieldAttrs are accepted on every {% field %} tag regardless of kind.
var commonFieldAttrs = map[string]bool{
	"kind": true, "id": true, "label": true, "role": true,
	"required": true, "report": true, "instructions": true,
}

// kindAttrs enumerates the additional attributes each field kind accepts
// (spec §4.2 "attribute contracts ... enumerated in the Glossary").
var kindAttrs = map[model.FieldKind]map[string]bool{
	model.KindString:       {"minLength": true, "maxLength": true, "pattern": true},
	model.KindNumber:       {"min": true, "max": true, "integer": true},
	model.KindStringList:   {"minItems": true, "maxItems": true, "uniqueItems": true, "itemPattern": true},
	model.KindURL:          {"minLength": true, "maxLength": true, "pattern": true},
	model.KindURLList:      {"minItems": true, "maxItems": true, "uniqueItems": true, "itemPattern": true},
	model.KindSingleSelect: {},
	model.KindMultiSelect:  {"minSelections": true, "maxSelections": true},
	model.KindCheckboxes:   {"mode": true, "approvalMode": true, "minDone": true},
	model.KindDate:         {"min": true, "max": true},
	model.KindYear:         {"min": true, "max": true},
	model.KindTable:        {"minRows": true, "maxRows": true},
}

// walkField parses one {% field kind="..." id="..." ... %} tag, either
// self-closed (no value supplied) or with a body holding option/column
// declarations and the field's current value.
func (b *builder) walkField(n *tagast.Node) (*model.Field, error) {
	kindStr := n.AttrString("kind")
	kind := model.FieldKind(kindStr)
	if kindStr == "" || !kind.Valid() {
		return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("field has missing or invalid kind %q", kindStr)}
	}

	id, err := requiredIDAttr(n, "id")
	if err != nil {
		return nil, err
	}
	if err := validateAttrNames(n, kind); err != nil {
		return nil, err
	}
	if err := b.register(id, "field", []string{string(id)}); err != nil {
		return nil, err
	}

	field := &model.Field{ID: id, Kind: kind, Label: n.AttrString("label")}
	field.Required = n.AttrBool("required", false)

	if v, ok := n.Attr("report"); ok {
		rb, ok := v.(bool)
		if !ok {
			return nil, attrTypeError(n, "report", "boolean")
		}
		field.Report = &rb
	}

	role, err := normalizeRole(n)
	if err != nil {
		return nil, err
	}
	field.Role = role

	if v, ok := n.Attr("instructions"); ok {
		s, ok := v.(string)
		if !ok {
			return nil, attrTypeError(n, "instructions", "string")
		}
		ref := model.Id(s)
		field.Instructions = &ref
	}

	if err := attachConstraints(n, field); err != nil {
		return nil, err
	}

	value, err := b.parseFieldBody(n, field)
	if err != nil {
		return nil, err
	}
	b.values[id] = value
	b.orderIndex = append(b.orderIndex, id)
	return field, nil
}

func validateAttrNames(n *tagast.Node, kind model.FieldKind) error {
	allowed := kindAttrs[kind]
	for _, name := range n.Order {
		if commonFieldAttrs[name] || allowed[name] {
			continue
		}
		return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("unknown attribute %q for field kind %q", name, kind), Cause: errno.ErrUnknownAttribute}
	}
	return nil
}

func normalizeRole(n *tagast.Node) (string, error) {
	raw := n.AttrString("role")
	if raw == "" {
		return "", nil
	}
	role := normalizeRoleString(raw)
	if role == model.ReservedRole {
		return "", &errno.ParseError{Line: n.Line, Msg: "reserved role \"*\" may not be used on a field"}
	}
	if !model.ValidRole(role) {
		return "", &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("invalid role %q: must match [a-z0-9_-]+", role)}
	}
	return role, nil
}

func attachConstraints(n *tagast.Node, field *model.Field) error {
	switch field.Kind {
	case model.KindString, model.KindURL:
		c := &model.StringConstraints{Pattern: n.AttrString("pattern")}
		c.MinLength = intAttr(n, "minLength")
		c.MaxLength = intAttr(n, "maxLength")
		if field.Kind == model.KindString {
			field.String = c
		} else {
			field.URL = c
		}
	case model.KindNumber:
		field.Number = &model.NumberConstraints{
			Min:     floatAttr(n, "min"),
			Max:     floatAttr(n, "max"),
			Integer: n.AttrBool("integer", false),
		}
	case model.KindStringList, model.KindURLList:
		c := &model.ListConstraints{
			MinItems:    intAttr(n, "minItems"),
			MaxItems:    intAttr(n, "maxItems"),
			UniqueItems: n.AttrBool("uniqueItems", false),
			ItemPattern: n.AttrString("itemPattern"),
		}
		if field.Kind == model.KindStringList {
			field.StringList = c
		} else {
			field.URLList = c
		}
	case model.KindSingleSelect:
		field.SingleSelect = &model.SelectConstraints{}
	case model.KindMultiSelect:
		field.MultiSelect = &model.MultiSelectConstraints{
			MinSelections: intAttr(n, "minSelections"),
			MaxSelections: intAttr(n, "maxSelections"),
		}
	case model.KindCheckboxes:
		mode := model.CheckboxMode(defaultString(n.AttrString("mode"), string(model.ModeAll)))
		if !mode.Valid() {
			return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("invalid checkboxes mode %q", mode)}
		}
		approval := model.ApprovalMode(defaultString(n.AttrString("approvalMode"), string(model.ApprovalNone)))
		if approval != model.ApprovalNone && approval != model.ApprovalBlocking {
			return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("invalid approvalMode %q", approval)}
		}
		field.Checkboxes = &model.CheckboxesConstraints{
			Mode:         mode,
			ApprovalMode: approval,
			MinDone:      intAttr(n, "minDone"),
		}
	case model.KindDate:
		field.Date = &model.DateConstraints{Min: n.AttrString("min"), Max: n.AttrString("max")}
	case model.KindYear:
		field.Year = &model.YearConstraints{Min: intOrZero(n, "min"), Max: intOrZero(n, "max")}
	case model.KindTable:
		field.Table = &model.TableConstraints{
			ColumnLabels: map[model.Id]string{},
			ColumnTypes:  map[model.Id]model.ColumnType{},
			MinRows:      intAttr(n, "minRows"),
			MaxRows:      intAttr(n, "maxRows"),
		}
	}
	return nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intAttr(n *tagast.Node, name string) *int {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}

func intOrZero(n *tagast.Node, name string) int {
	if p := intAttr(n, name); p != nil {
		return *p
	}
	return 0
}

func floatAttr(n *tagast.Node, name string) *float64 {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
