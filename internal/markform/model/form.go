package model

// SyntaxStyle records which on-disk tag syntax a form was authored in, so
// the serializer can round-trip it (spec §4.1, §4.3).
type SyntaxStyle string

const (
	SyntaxMarkdoc      SyntaxStyle = "markdoc"
	SyntaxHTMLComment  SyntaxStyle = "html-comment"
)

// RunMode is a form-level hint consumed by the (out-of-scope) CLI front-end;
// the engine treats it as opaque data (spec §4.2, Glossary).
type RunMode string

const (
	RunInteractive RunMode = "interactive"
	RunFill        RunMode = "fill"
	RunResearch    RunMode = "research"
)

// HarnessHints are optional per-form overrides of the harness's process-level
// defaults (spec §6.1 "harness" frontmatter key).
type HarnessHints struct {
	MaxTurns          *int
	MaxIssuesPerTurn  *int
	MaxFieldsPerTurn  *int
	MaxGroupsPerTurn  *int
	MaxPatchesPerTurn *int
}

// FormMetadata is the normalized `markform:` frontmatter (spec §6.1).
type FormMetadata struct {
	SpecVersion      string
	Title            string
	Description      string
	Roles            []string // defaults to ["user", "agent"]
	RoleInstructions map[string]string
	RunMode          RunMode
	Harness          HarnessHints
}

// DefaultRoles is FormMetadata.Roles' value when the frontmatter omits it.
var DefaultRoles = []string{"user", "agent"}

// FormDef is one `{% form %}` block. spec.md allows ParsedForm.forms[] to
// hold more than one, though in practice forms carry exactly one; cross-form
// interaction is an explicit non-goal (spec §1).
type FormDef struct {
	ID     Id
	Title  string
	Groups []*FieldGroup
	// Fields holds fields declared directly under the form tag, outside any
	// group; Groups and Fields are disjoint and both optional.
	Fields []*Field
}

// AllFields returns every field in this form, grouped and ungrouped, in
// declaration order (groups first, matching typical author layout).
func (f *FormDef) AllFields() []*Field {
	var out []*Field
	for _, g := range f.Groups {
		out = append(out, g.Fields...)
	}
	out = append(out, f.Fields...)
	return out
}

// IndexEntry is what ParsedForm.IDIndex resolves an Id to (spec §3).
type IndexEntry struct {
	EntityKind string // "form" | "group" | "field"
	Path       []string
}

// OptionIndexEntry is what ParsedForm.OptionIndex resolves a
// QualifiedOptionRef to (spec §3).
type OptionIndexEntry struct {
	FieldID  Id
	OptionID OptionId
}

// ColumnIndexEntry is what ParsedForm.ColumnIndex resolves a
// QualifiedColumnRef to (spec §3).
type ColumnIndexEntry struct {
	FieldID    Id
	ColumnType ColumnType
}

// ParsedForm is the single in-memory aggregate every layer above the parser
// operates on (spec §3). It is logically immutable: patch application
// produces a new ParsedForm rather than mutating this one in place (spec §5).
type ParsedForm struct {
	Metadata       FormMetadata
	Forms          []*FormDef
	Docs           []*DocumentationBlock
	SyntaxStyle    SyntaxStyle
	RawFrontmatter map[string]any // preserves unknown keys for round-trip fidelity
	BodyProse      []ProseBlock   // narrative Markdown outside any tag, for round-trip

	IDIndex     map[Id]IndexEntry
	OptionIndex map[QualifiedOptionRef]OptionIndexEntry
	ColumnIndex map[QualifiedColumnRef]ColumnIndexEntry
	OrderIndex  []Id // field ids, document order (spec §3)

	Values map[Id]*FieldValue
}

// ProseBlock is a span of narrative Markdown preserved verbatim between tags
// so the serializer can reproduce it byte-for-byte (spec §4.3 round-trip law).
type ProseBlock struct {
	// AfterID anchors this block's position: it is emitted immediately after
	// the tag/value belonging to AfterID, or at the very top of the document
	// when AfterID is empty.
	AfterID Id
	Text    string
}

// PrimaryForm returns the first (and, outside the excluded multi-form case,
// only) FormDef.
func (p *ParsedForm) PrimaryForm() *FormDef {
	if len(p.Forms) == 0 {
		return nil
	}
	return p.Forms[0]
}

// FieldByID looks up a field by id across every FormDef.
func (p *ParsedForm) FieldByID(id Id) *Field {
	for _, f := range p.Forms {
		for _, g := range f.Groups {
			for _, field := range g.Fields {
				if field.ID == id {
					return field
				}
			}
		}
		for _, field := range f.Fields {
			if field.ID == id {
				return field
			}
		}
	}
	return nil
}

// GroupByID looks up a group by id across every FormDef.
func (p *ParsedForm) GroupByID(id Id) *FieldGroup {
	for _, f := range p.Forms {
		for _, g := range f.Groups {
			if g.ID == id {
				return g
			}
		}
	}
	return nil
}

// AllFields returns every field across every FormDef, in OrderIndex order
// when OrderIndex is populated (post-parse), falling back to declaration
// order otherwise.
func (p *ParsedForm) AllFields() []*Field {
	if len(p.OrderIndex) > 0 {
		out := make([]*Field, 0, len(p.OrderIndex))
		for _, id := range p.OrderIndex {
			if f := p.FieldByID(id); f != nil {
				out = append(out, f)
			}
		}
		return out
	}
	var out []*Field
	for _, f := range p.Forms {
		out = append(out, f.AllFields()...)
	}
	return out
}

// DocFor returns the documentation block for (ref, tag), or nil.
func (p *ParsedForm) DocFor(ref Id, tag DocTag) *DocumentationBlock {
	for _, d := range p.Docs {
		if d.Ref == ref && d.Tag == tag {
			return d
		}
	}
	return nil
}

// ValueFor returns the current value for a field, creating an unanswered
// placeholder if the field has never been touched.
func (p *ParsedForm) ValueFor(id Id) *FieldValue {
	if v, ok := p.Values[id]; ok {
		return v
	}
	if f := p.FieldByID(id); f != nil {
		return NewUnanswered(id, f.Kind)
	}
	return nil
}

// Clone returns a new ParsedForm with independently mutable Values; the
// structural definition (Forms, Docs, indices) is immutable once built and
// is safely shared by reference (spec §5: "ParsedForm owns all child
// structures"; nothing downstream of parsing ever rewrites Forms/Docs).
func (p *ParsedForm) Clone() *ParsedForm {
	out := *p
	out.Values = make(map[Id]*FieldValue, len(p.Values))
	for id, v := range p.Values {
		out.Values[id] = v.Clone()
	}
	return &out
}
