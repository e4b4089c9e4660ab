package model

// Severity classifies a validator/inspector finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueScope is the level of the form tree an issue targets (spec §4.6).
type IssueScope string

const (
	ScopeForm   IssueScope = "form"
	ScopeGroup  IssueScope = "group"
	ScopeField  IssueScope = "field"
	ScopeOption IssueScope = "option"
)

// IssueCode enumerates the deterministic/completion checks the validator
// performs (spec §4.4); new codes are additive, never repurposed.
type IssueCode string

const (
	CodeRequiredMissing    IssueCode = "required_missing"
	CodePatternMismatch    IssueCode = "pattern_mismatch"
	CodeRangeViolation     IssueCode = "range_violation"
	CodeLengthViolation    IssueCode = "length_violation"
	CodeListSizeViolation  IssueCode = "list_size_violation"
	CodeListNotUnique      IssueCode = "list_not_unique"
	CodeSelectionCount     IssueCode = "selection_count_violation"
	CodeUnknownOption      IssueCode = "unknown_option"
	CodeUnknownColumn      IssueCode = "unknown_column"
	CodeMalformedURL       IssueCode = "malformed_url"
	CodeMalformedDate      IssueCode = "malformed_date"
	CodeMalformedYear      IssueCode = "malformed_year"
	CodeCheckboxIncomplete IssueCode = "checkbox_incomplete"
	CodeTableRowCount      IssueCode = "table_row_count_violation"
	CodeOptionalMissing    IssueCode = "optional_missing"
	CodeHookValidator      IssueCode = "hook_validator"
)

// Priority is the P1 (most urgent) .. P5 tier a form's aggregate issue score
// maps to (spec §4.6).
type Priority int

const (
	P1 Priority = 1
	P2 Priority = 2
	P3 Priority = 3
	P4 Priority = 4
	P5 Priority = 5
)

// Issue is what the Validator computes (no priority/blocking: those are the
// Inspector's job, spec §4.4 vs §4.6).
type Issue struct {
	Scope    IssueScope `json:"scope"`
	Ref      string     `json:"ref"` // form id, group id, field id, or QualifiedOptionRef/QualifiedColumnRef
	Severity Severity   `json:"severity"`
	Code     IssueCode  `json:"code"`
	Message  string     `json:"message"`
}

// InspectIssue is an Issue enriched with priority and blocking information
// (spec §4.6).
type InspectIssue struct {
	Issue
	Priority   Priority `json:"priority"`
	BlockedBy  string   `json:"blockedBy,omitempty"`  // checkpoint field id, empty if not blocked
	TargetRole string   `json:"targetRole,omitempty"` // the role of the field this issue is about, if scope==field
}

// IssueScoreFor returns the score contribution of an issue toward the form's
// total priority score (spec §4.6): required field missing = 3, validation
// error = 2, optional missing = 1.
func IssueScoreFor(code IssueCode, severity Severity) int {
	switch {
	case code == CodeRequiredMissing:
		return 3
	case code == CodeOptionalMissing:
		return 1
	case severity == SeverityError:
		return 2
	default:
		return 0
	}
}

// PriorityForScore maps a total issue score to a P1..P5 tier (spec §4.6:
// "Total maps to P1...P5 thresholds (>=5 / >=4 / >=3 / >=2 / >=1)").
func PriorityForScore(score int) Priority {
	switch {
	case score >= 5:
		return P1
	case score >= 4:
		return P2
	case score >= 3:
		return P3
	case score >= 2:
		return P4
	case score >= 1:
		return P5
	default:
		return P5
	}
}
