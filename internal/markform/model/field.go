package model

// FieldKind is the closed union of field shapes a form may declare (spec §3).
type FieldKind string

const (
	KindString       FieldKind = "string"
	KindNumber       FieldKind = "number"
	KindStringList   FieldKind = "string_list"
	KindURL          FieldKind = "url"
	KindURLList      FieldKind = "url_list"
	KindSingleSelect FieldKind = "single_select"
	KindMultiSelect  FieldKind = "multi_select"
	KindCheckboxes   FieldKind = "checkboxes"
	KindDate         FieldKind = "date"
	KindYear         FieldKind = "year"
	KindTable        FieldKind = "table"
)

// AllFieldKinds enumerates the closed union, in the order the Glossary lists them.
var AllFieldKinds = []FieldKind{
	KindString, KindNumber, KindStringList, KindURL, KindURLList,
	KindSingleSelect, KindMultiSelect, KindCheckboxes, KindDate, KindYear, KindTable,
}

func (k FieldKind) Valid() bool {
	for _, v := range AllFieldKinds {
		if v == k {
			return true
		}
	}
	return false
}

// DefaultRole is the role a field carries when none is declared (spec §3).
const DefaultRole = "agent"

// ColumnType is the scalar data type of a table column (spec §3, kind 11).
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnNumber ColumnType = "number"
	ColumnURL    ColumnType = "url"
	ColumnDate   ColumnType = "date"
	ColumnYear   ColumnType = "year"
)

func (c ColumnType) Valid() bool {
	switch c {
	case ColumnString, ColumnNumber, ColumnURL, ColumnDate, ColumnYear:
		return true
	default:
		return false
	}
}

// CheckboxMode controls the state vocabulary and completion rule for a
// checkboxes field (spec §3, §4.4).
type CheckboxMode string

const (
	ModeAll      CheckboxMode = "all"
	ModeAny      CheckboxMode = "any"
	ModeExplicit CheckboxMode = "explicit"
)

func (m CheckboxMode) Valid() bool {
	switch m {
	case ModeAll, ModeAny, ModeExplicit:
		return true
	default:
		return false
	}
}

// ApprovalMode marks whether a checkboxes field can act as a blocking
// checkpoint (spec §4.6).
type ApprovalMode string

const (
	ApprovalNone     ApprovalMode = "none"
	ApprovalBlocking ApprovalMode = "blocking"
)

// Field is the tagged union of all field declarations (spec §3).
// Kind discriminates which of the pointer fields below is populated; callers
// should exhaustively switch on Kind rather than nil-check every pointer.
type Field struct {
	ID           Id
	Label        string
	Role         string // defaulted to DefaultRole during parsing
	Required     bool
	Report       *bool // nil means default (true); pointer distinguishes "unset" from explicit false
	Instructions *Id   // ref to a DocumentationBlock, if any
	Kind         FieldKind

	String       *StringConstraints
	Number       *NumberConstraints
	StringList   *ListConstraints
	URL          *StringConstraints // url reuses string's length/pattern shape; pattern is URL syntax when unset
	URLList      *ListConstraints
	SingleSelect *SelectConstraints
	MultiSelect  *MultiSelectConstraints
	Checkboxes   *CheckboxesConstraints
	Date         *DateConstraints
	Year         *YearConstraints
	Table        *TableConstraints
}

// ReportEnabled returns whether this field participates in report-mode
// export (spec §4.9); the zero value (nil Report) means true.
func (f *Field) ReportEnabled() bool {
	return f.Report == nil || *f.Report
}

// EffectiveRole returns Role, defaulting to DefaultRole.
func (f *Field) EffectiveRole() string {
	if f.Role == "" {
		return DefaultRole
	}
	return f.Role
}

// StringConstraints covers string, url field kinds.
type StringConstraints struct {
	MinLength *int
	MaxLength *int
	Pattern   string // ECMA regex source; empty means unconstrained
}

// NumberConstraints covers the number field kind.
type NumberConstraints struct {
	Min     *float64
	Max     *float64
	Integer bool
}

// ListConstraints covers string_list, url_list field kinds.
type ListConstraints struct {
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	ItemPattern string
}

// Option is a declared choice for single_select, multi_select, checkboxes.
type Option struct {
	ID    OptionId
	Label string
}

// SelectConstraints covers the single_select field kind.
type SelectConstraints struct {
	Options []Option
}

// MultiSelectConstraints covers the multi_select field kind.
type MultiSelectConstraints struct {
	Options       []Option
	MinSelections *int
	MaxSelections *int
}

// CheckboxesConstraints covers the checkboxes field kind.
type CheckboxesConstraints struct {
	Options      []Option
	Mode         CheckboxMode
	ApprovalMode ApprovalMode
	MinDone      *int
}

// DateConstraints covers the date field kind. Min/Max are ISO 8601 dates
// ("2006-01-02"); empty means unconstrained.
type DateConstraints struct {
	Min string
	Max string
}

// YearConstraints covers the year field kind (spec §3: range 1000-9999).
type YearConstraints struct {
	Min int // defaults to 1000 when zero
	Max int // defaults to 9999 when zero
}

func (y YearConstraints) EffectiveMin() int {
	if y.Min == 0 {
		return 1000
	}
	return y.Min
}

func (y YearConstraints) EffectiveMax() int {
	if y.Max == 0 {
		return 9999
	}
	return y.Max
}

// TableConstraints covers the table field kind.
type TableConstraints struct {
	ColumnIDs     []Id
	ColumnLabels  map[Id]string
	ColumnTypes   map[Id]ColumnType
	MinRows       *int
	MaxRows       *int
}

// FieldGroup is an ordered collection of fields; groups do not nest (MF/0.1).
type FieldGroup struct {
	ID     Id
	Title  string
	Fields []*Field
	Report *bool
}

func (g *FieldGroup) ReportEnabled() bool {
	return g.Report == nil || *g.Report
}
