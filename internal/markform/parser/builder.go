package parser

import (
	"fmt"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/tagast"
)

// builder accumulates the pieces of a ParsedForm while walking the tag tree.
// It is single-use: create one per Parse call.
type builder struct {
	forms []*model.FormDef
	docs  []*model.DocumentationBlock
	prose []model.ProseBlock

	idIndex     map[model.Id]model.IndexEntry
	optionIndex map[model.QualifiedOptionRef]model.OptionIndexEntry
	columnIndex map[model.QualifiedColumnRef]model.ColumnIndexEntry
	orderIndex  []model.Id

	values map[model.Id]*model.FieldValue

	lastID model.Id // most recently registered id, used to anchor prose blocks
}

func newBuilder() *builder {
	return &builder{
		idIndex:     map[model.Id]model.IndexEntry{},
		optionIndex: map[model.QualifiedOptionRef]model.OptionIndexEntry{},
		columnIndex: map[model.QualifiedColumnRef]model.ColumnIndexEntry{},
		values:      map[model.Id]*model.FieldValue{},
	}
}

func (b *builder) register(id model.Id, kind string, path []string) error {
	if !id.Valid() {
		return errno.NewParseError(fmt.Sprintf("invalid id %q: must match [a-z][a-z0-9_]*", id), nil)
	}
	if _, exists := b.idIndex[id]; exists {
		return &errno.ParseError{Msg: fmt.Sprintf("duplicate id %q", id), Cause: errno.ErrDuplicateID}
	}
	b.idIndex[id] = model.IndexEntry{EntityKind: kind, Path: path}
	b.lastID = id
	return nil
}

func (b *builder) appendProse(text string) {
	if text == "" {
		return
	}
	b.prose = append(b.prose, model.ProseBlock{AfterID: b.lastID, Text: text})
}

// walkTop handles the document root: a mix of narrative text, annotations
// and one or more {% form %} blocks.
func (b *builder) walkTop(nodes []*tagast.Node) error {
	for _, n := range nodes {
		switch n.Kind {
		case tagast.NodeText:
			b.appendProse(n.Text)
		case tagast.NodeAnnotation:
			b.appendProse(renderAnnotation(n))
		case tagast.NodeTag:
			if n.Name != "form" {
				return unknownTopLevelTag(n)
			}
			form, err := b.walkForm(n)
			if err != nil {
				return err
			}
			b.forms = append(b.forms, form)
		default:
			return unknownTopLevelTag(n)
		}
	}
	return nil
}

func unknownTopLevelTag(n *tagast.Node) error {
	return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("unexpected top-level tag %q (expected \"form\")", n.Name), Cause: errno.ErrUnknownTag}
}

func renderAnnotation(n *tagast.Node) string {
	return "{% " + n.Name + " %}"
}

// walkForm parses one {% form id="..." %}...{% /form %} block.
func (b *builder) walkForm(n *tagast.Node) (*model.FormDef, error) {
	id, err := requiredIDAttr(n, "id")
	if err != nil {
		return nil, err
	}
	if err := b.register(id, "form", []string{string(id)}); err != nil {
		return nil, err
	}

	form := &model.FormDef{ID: id, Title: n.AttrString("title")}

	for _, child := range n.Children {
		switch child.Kind {
		case tagast.NodeText:
			b.appendProse(child.Text)
		case tagast.NodeAnnotation:
			b.appendProse(renderAnnotation(child))
		case tagast.NodeTag, tagast.NodeSelfClosed:
			switch child.Name {
			case "group":
				group, err := b.walkGroup(child)
				if err != nil {
					return nil, err
				}
				form.Groups = append(form.Groups, group)
			case "field":
				field, err := b.walkField(child)
				if err != nil {
					return nil, err
				}
				form.Fields = append(form.Fields, field)
			case "description", "instructions", "documentation":
				doc, err := b.walkDoc(child)
				if err != nil {
					return nil, err
				}
				b.docs = append(b.docs, doc)
			case "string-field", "number-field", "select-field", "checkbox-field":
				return nil, legacyFieldTagError(child)
			default:
				return nil, unknownTagError(child)
			}
		default:
			return nil, unknownTagError(child)
		}
	}
	return form, nil
}

// walkGroup parses one {% group id="..." %}...{% /group %} block.
func (b *builder) walkGroup(n *tagast.Node) (*model.FieldGroup, error) {
	id, err := requiredIDAttr(n, "id")
	if err != nil {
		return nil, err
	}
	if err := b.register(id, "group", []string{string(id)}); err != nil {
		return nil, err
	}

	group := &model.FieldGroup{ID: id, Title: n.AttrString("title")}
	if v, ok := n.Attr("report"); ok {
		rb, ok := v.(bool)
		if !ok {
			return nil, attrTypeError(n, "report", "boolean")
		}
		group.Report = &rb
	}

	for _, child := range n.Children {
		switch child.Kind {
		case tagast.NodeText:
			b.appendProse(child.Text)
		case tagast.NodeAnnotation:
			b.appendProse(renderAnnotation(child))
		case tagast.NodeTag, tagast.NodeSelfClosed:
			switch child.Name {
			case "field":
				field, err := b.walkField(child)
				if err != nil {
					return nil, err
				}
				group.Fields = append(group.Fields, field)
			case "description", "instructions", "documentation":
				doc, err := b.walkDoc(child)
				if err != nil {
					return nil, err
				}
				b.docs = append(b.docs, doc)
			case "group":
				return nil, &errno.ParseError{Line: child.Line, Msg: "groups do not nest (MF/0.1)"}
			case "string-field", "number-field", "select-field", "checkbox-field":
				return nil, legacyFieldTagError(child)
			default:
				return nil, unknownTagError(child)
			}
		default:
			return nil, unknownTagError(child)
		}
	}
	return group, nil
}

func (b *builder) walkDoc(n *tagast.Node) (*model.DocumentationBlock, error) {
	ref, err := requiredIDAttr(n, "ref")
	if err != nil {
		return nil, err
	}
	if _, known := b.idIndex[ref]; !known {
		return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("documentation ref %q does not resolve to a preceding id", ref), Cause: errno.ErrUnresolvedRef}
	}
	tag := model.DocTag(n.Name)
	for _, existing := range b.docs {
		if existing.Ref == ref && existing.Tag == tag {
			return nil, &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("duplicate %s block for %q", n.Name, ref)}
		}
	}
	body := renderChildrenAsMarkdown(n.Children)
	return &model.DocumentationBlock{Tag: tag, Ref: ref, BodyMarkdown: body}, nil
}

func renderChildrenAsMarkdown(children []*tagast.Node) string {
	var out string
	for _, c := range children {
		switch c.Kind {
		case tagast.NodeText:
			out += c.Text
		case tagast.NodeAnnotation:
			out += renderAnnotation(c)
		}
	}
	return out
}

func requiredIDAttr(n *tagast.Node, attr string) (model.Id, error) {
	v, ok := n.Attr(attr)
	if !ok {
		return "", &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("tag %q missing required attribute %q", n.Name, attr)}
	}
	s, ok := v.(string)
	if !ok {
		return "", attrTypeError(n, attr, "string")
	}
	id := model.Id(s)
	if !id.Valid() {
		return "", &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("invalid %s %q: must match [a-z][a-z0-9_]*", attr, s)}
	}
	return id, nil
}

func attrTypeError(n *tagast.Node, attr, expected string) error {
	return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("attribute %q on tag %q must be a %s", attr, n.Name, expected)}
}

func unknownTagError(n *tagast.Node) error {
	return &errno.ParseError{Line: n.Line, Msg: fmt.Sprintf("unknown tag %q", n.Name), Cause: errno.ErrUnknownTag}
}

func legacyFieldTagError(n *tagast.Node) error {
	return &errno.ParseError{
		Line: n.Line,
		Msg:  fmt.Sprintf("legacy per-kind field tag %q is no longer supported; use {%% field kind=\"...\" %%} instead", n.Name),
		Cause: errno.ErrLegacyFieldTag,
	}
}
