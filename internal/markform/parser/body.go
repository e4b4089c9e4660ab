package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/tagast"
)

// parseFieldBody walks a field tag's children, registering any nested
// option/column declarations onto field's constraints and extracting the
// field's current FieldValue (spec §4.2 "value extraction").
func (b *builder) parseFieldBody(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	switch field.Kind {
	case model.KindString, model.KindURL, model.KindDate:
		return parseScalarTextValue(n, field)
	case model.KindNumber:
		return parseNumberValue(n, field)
	case model.KindYear:
		return parseYearValue(n, field)
	case model.KindStringList:
		return parseListValue(n, field, false)
	case model.KindURLList:
		return parseListValue(n, field, true)
	case model.KindSingleSelect:
		return b.parseSingleSelectBody(n, field)
	case model.KindMultiSelect:
		return b.parseMultiSelectBody(n, field)
	case model.KindCheckboxes:
		return b.parseCheckboxesBody(n, field)
	case model.KindTable:
		return b.parseTableBody(n, field)
	default:
		return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("unhandled field kind %q", field.Kind)}
	}
}

func soleValueFence(children []*tagast.Node) *tagast.Node {
	for _, c := range children {
		if c.Kind == tagast.NodeValueFence {
			return c
		}
	}
	return nil
}

func textOf(children []*tagast.Node) string {
	var sb strings.Builder
	for _, c := range children {
		if c.Kind == tagast.NodeText {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func optionTags(children []*tagast.Node) []*tagast.Node {
	var out []*tagast.Node
	for _, c := range children {
		if (c.Kind == tagast.NodeTag || c.Kind == tagast.NodeSelfClosed) && c.Name == "option" {
			out = append(out, c)
		}
	}
	return out
}

func columnTags(children []*tagast.Node) []*tagast.Node {
	var out []*tagast.Node
	for _, c := range children {
		if (c.Kind == tagast.NodeTag || c.Kind == tagast.NodeSelfClosed) && c.Name == "column" {
			out = append(out, c)
		}
	}
	return out
}

func applySentinel(v *model.FieldValue, m sentinelMatch) {
	if m.isSkip {
		v.State = model.StateSkipped
		v.SkipReason = m.reason
	} else if m.isAbort {
		v.State = model.StateAborted
		v.AbortReason = m.reason
	}
}

func parseScalarTextValue(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	v := model.NewUnanswered(field.ID, field.Kind)
	fence := soleValueFence(n.Children)
	if fence == nil {
		return v, nil
	}
	content := trimOneTrailingNewline(fence.Content)
	if m, ok := matchSentinel(content); ok {
		applySentinel(v, m)
		return v, nil
	}
	v.State = model.StateAnswered
	switch field.Kind {
	case model.KindString:
		v.String = &content
	case model.KindURL:
		v.URL = &content
	case model.KindDate:
		v.Date = &content
	}
	return v, nil
}

func parseNumberValue(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	v := model.NewUnanswered(field.ID, model.KindNumber)
	fence := soleValueFence(n.Children)
	if fence == nil {
		return v, nil
	}
	content := strings.TrimSpace(trimOneTrailingNewline(fence.Content))
	if m, ok := matchSentinel(content); ok {
		applySentinel(v, m)
		return v, nil
	}
	f, err := strconv.ParseFloat(content, 64)
	if err != nil {
		return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("field %q: value %q is not a number", field.ID, content), Cause: err}
	}
	v.State = model.StateAnswered
	v.Number = &f
	return v, nil
}

func parseYearValue(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	v := model.NewUnanswered(field.ID, model.KindYear)
	fence := soleValueFence(n.Children)
	if fence == nil {
		return v, nil
	}
	content := strings.TrimSpace(trimOneTrailingNewline(fence.Content))
	if m, ok := matchSentinel(content); ok {
		applySentinel(v, m)
		return v, nil
	}
	i, err := strconv.Atoi(content)
	if err != nil {
		return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("field %q: value %q is not an integer year", field.ID, content), Cause: err}
	}
	v.State = model.StateAnswered
	v.Year = &i
	return v, nil
}

func parseListValue(n *tagast.Node, field *model.Field, isURL bool) (*model.FieldValue, error) {
	kind := model.KindStringList
	if isURL {
		kind = model.KindURLList
	}
	v := model.NewUnanswered(field.ID, kind)
	fence := soleValueFence(n.Children)
	if fence == nil {
		return v, nil
	}
	raw := trimOneTrailingNewline(fence.Content)
	if m, ok := matchSentinel(raw); ok {
		applySentinel(v, m)
		return v, nil
	}
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		item := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	v.State = model.StateAnswered
	if isURL {
		v.URLList = items
	} else {
		v.StringList = items
	}
	return v, nil
}

func (b *builder) parseSingleSelectBody(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	opts, err := b.collectOptions(n, field.ID)
	if err != nil {
		return nil, err
	}
	field.SingleSelect.Options = opts

	text := textOf(n.Children)
	if m, ok := matchSentinel(text); ok {
		v := model.NewUnanswered(field.ID, model.KindSingleSelect)
		applySentinel(v, m)
		return v, nil
	}
	lines, err := parseChecklistLines(text)
	if err != nil {
		return nil, err
	}
	return buildSingleSelectValue(field.ID, lines)
}

func (b *builder) parseMultiSelectBody(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	opts, err := b.collectOptions(n, field.ID)
	if err != nil {
		return nil, err
	}
	field.MultiSelect.Options = opts

	text := textOf(n.Children)
	if m, ok := matchSentinel(text); ok {
		v := model.NewUnanswered(field.ID, model.KindMultiSelect)
		applySentinel(v, m)
		return v, nil
	}
	lines, err := parseChecklistLines(text)
	if err != nil {
		return nil, err
	}
	return buildMultiSelectValue(field.ID, lines), nil
}

func (b *builder) parseCheckboxesBody(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	opts, err := b.collectOptions(n, field.ID)
	if err != nil {
		return nil, err
	}
	field.Checkboxes.Options = opts

	text := textOf(n.Children)
	if m, ok := matchSentinel(text); ok {
		v := model.NewUnanswered(field.ID, model.KindCheckboxes)
		applySentinel(v, m)
		return v, nil
	}
	lines, err := parseChecklistLines(text)
	if err != nil {
		return nil, err
	}
	return buildCheckboxesValue(field.ID, field.Checkboxes.Mode, lines)
}

func (b *builder) collectOptions(n *tagast.Node, fieldID model.Id) ([]model.Option, error) {
	var opts []model.Option
	for _, tag := range optionTags(n.Children) {
		optID, err := requiredIDAttr(tag, "id")
		if err != nil {
			return nil, err
		}
		for _, existing := range opts {
			if existing.ID == model.OptionId(optID) {
				return nil, &errno.ParseError{Line: tag.Line, Msg: fmt.Sprintf("duplicate option id %q in field %q", optID, fieldID)}
			}
		}
		opts = append(opts, model.Option{ID: model.OptionId(optID), Label: tag.AttrString("label")})
		b.optionIndex[model.NewQualifiedOptionRef(fieldID, model.OptionId(optID))] = model.OptionIndexEntry{FieldID: fieldID, OptionID: model.OptionId(optID)}
	}
	return opts, nil
}

func (b *builder) parseTableBody(n *tagast.Node, field *model.Field) (*model.FieldValue, error) {
	for _, tag := range columnTags(n.Children) {
		colID, err := requiredIDAttr(tag, "id")
		if err != nil {
			return nil, err
		}
		for _, existing := range field.Table.ColumnIDs {
			if existing == colID {
				return nil, &errno.ParseError{Line: tag.Line, Msg: fmt.Sprintf("duplicate column id %q in field %q", colID, field.ID)}
			}
		}
		colType := model.ColumnType(defaultString(tag.AttrString("type"), string(model.ColumnString)))
		if !colType.Valid() {
			return nil, &errno.ParseError{Line: tag.Line, Msg: fmt.Sprintf("invalid column type %q for column %q", colType, colID)}
		}
		field.Table.ColumnIDs = append(field.Table.ColumnIDs, colID)
		if label := tag.AttrString("label"); label != "" {
			field.Table.ColumnLabels[colID] = label
		}
		field.Table.ColumnTypes[colID] = colType
		b.columnIndex[model.NewQualifiedColumnRef(field.ID, colID)] = model.ColumnIndexEntry{FieldID: field.ID, ColumnType: colType}
	}

	text := textOf(n.Children)
	v := model.NewUnanswered(field.ID, model.KindTable)
	if m, ok := matchSentinel(text); ok {
		applySentinel(v, m)
		return v, nil
	}
	if strings.TrimSpace(text) == "" {
		return v, nil
	}
	rows, err := parseTableRows(text, field.Table.ColumnIDs)
	if err != nil {
		return nil, err
	}
	v.State = model.StateAnswered
	v.Table = rows
	return v, nil
}
