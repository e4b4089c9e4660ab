package model

// ValueState is the lifecycle state of a field's value (spec §3).
type ValueState string

const (
	StateAnswered   ValueState = "answered"
	StateSkipped    ValueState = "skipped"
	StateAborted    ValueState = "aborted"
	StateUnanswered ValueState = "unanswered"
)

// CheckState is a single checkbox's state. The active vocabulary depends on
// the parent field's CheckboxMode (spec §3):
//   - all/any modes:   CheckTodo, CheckDone, CheckNA
//   - explicit mode:   CheckYes, CheckNo, CheckUnfilled
type CheckState string

const (
	CheckTodo     CheckState = "todo"
	CheckDone     CheckState = "done"
	CheckNA       CheckState = "na"
	CheckYes      CheckState = "yes"
	CheckNo       CheckState = "no"
	CheckUnfilled CheckState = "unfilled"
	// CheckIncomplete and CheckActive belong to the multi-style vocabulary
	// spec.md's Glossary reserves for future checkbox presentation modes;
	// the engine accepts them from external input but never emits them for
	// mode=all/any/explicit.
	CheckIncomplete CheckState = "incomplete"
	CheckActive     CheckState = "active"
)

// ValidForMode reports whether s is a legal state for the given checkbox mode.
func (s CheckState) ValidForMode(mode CheckboxMode) bool {
	switch mode {
	case ModeAll, ModeAny:
		return s == CheckTodo || s == CheckDone || s == CheckNA
	case ModeExplicit:
		return s == CheckYes || s == CheckNo || s == CheckUnfilled
	default:
		return false
	}
}

// DefaultState returns the "not yet acted on" state for a mode.
func DefaultState(mode CheckboxMode) CheckState {
	if mode == ModeExplicit {
		return CheckUnfilled
	}
	return CheckTodo
}

// DoneState returns the "acted on" state for a mode.
func DoneState(mode CheckboxMode) CheckState {
	if mode == ModeExplicit {
		return CheckYes
	}
	return CheckDone
}

// TableRow is one row of a table field's value: columnId -> cell text.
type TableRow map[Id]string

// FieldValue is the tagged union of a field's current value (spec §3),
// mirroring Field's Kind-discriminated shape.
type FieldValue struct {
	FieldID Id
	Kind    FieldKind
	State   ValueState

	// SkipReason / AbortReason hold the sentinel payload when State is
	// StateSkipped / StateAborted (spec §3 "sentinel values").
	SkipReason  string
	AbortReason string

	String       *string
	Number       *float64
	StringList   []string
	URL          *string
	URLList      []string
	SingleSelect *OptionId
	MultiSelect  []OptionId
	Checkboxes   map[OptionId]CheckState
	Date         *string // ISO 8601, e.g. "2026-07-31"
	Year         *int
	Table        []TableRow
}

// NewUnanswered returns the empty value for a field of the given kind.
func NewUnanswered(fieldID Id, kind FieldKind) *FieldValue {
	v := &FieldValue{FieldID: fieldID, Kind: kind, State: StateUnanswered}
	if kind == KindCheckboxes {
		v.Checkboxes = map[OptionId]CheckState{}
	}
	return v
}

// IsAnswered reports whether the value carries a real payload.
func (v *FieldValue) IsAnswered() bool { return v != nil && v.State == StateAnswered }

// Clone deep-copies a FieldValue so the applicator's working copy never
// aliases a prior ParsedForm's state (spec §5: "callers must never observe
// half-applied intermediate states").
func (v *FieldValue) Clone() *FieldValue {
	if v == nil {
		return nil
	}
	out := *v
	if v.StringList != nil {
		out.StringList = append([]string(nil), v.StringList...)
	}
	if v.URLList != nil {
		out.URLList = append([]string(nil), v.URLList...)
	}
	if v.MultiSelect != nil {
		out.MultiSelect = append([]OptionId(nil), v.MultiSelect...)
	}
	if v.Checkboxes != nil {
		out.Checkboxes = make(map[OptionId]CheckState, len(v.Checkboxes))
		for k, s := range v.Checkboxes {
			out.Checkboxes[k] = s
		}
	}
	if v.Table != nil {
		out.Table = make([]TableRow, len(v.Table))
		for i, row := range v.Table {
			r := make(TableRow, len(row))
			for k, c := range row {
				r[k] = c
			}
			out.Table[i] = r
		}
	}
	return &out
}

// Sentinel text markers recognized inside scalar text values (spec §3).
const (
	SentinelSkip  = "%SKIP%"
	SentinelAbort = "%ABORT%"
)
