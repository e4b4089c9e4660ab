// Package validator implements the L4 deterministic and completion checks
// (spec §4.4): per-field constraint checks plus required/optional
// completeness, producing a flat list of model.Issue with no priority or
// blocking information attached (that enrichment belongs to the inspector,
// L6).
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/jlevy/markform/internal/markform/model"
)

// HookValidator is a caller-supplied check that runs in addition to the
// built-in deterministic rules (spec §4.4 "pluggable hook validators").
// Implementations inspect the current value and return zero or more issues;
// they must not mutate form.
type HookValidator interface {
	Name() string
	Validate(form *model.ParsedForm, field *model.Field, val *model.FieldValue) []model.Issue
}

// Options configures a Validate call.
type Options struct {
	// Hooks run after the built-in checks for every field, in order.
	Hooks []HookValidator
	// DeclaredRoles is the set of roles named in markform.roles (plus the
	// implicit defaults); a field whose role isn't in this set produces a
	// warning-level issue rather than a parse failure (see
	// internal/markform/parser's role-warning deferral, recorded in
	// DESIGN.md).
	DeclaredRoles map[string]bool
}

// Validate runs every deterministic and completion check over form and
// returns the full flat issue list (spec §4.4). It never mutates form.
func Validate(form *model.ParsedForm, opts Options) []model.Issue {
	var issues []model.Issue

	for _, field := range form.AllFields() {
		val := form.ValueFor(field.ID)
		issues = append(issues, validateField(field, val)...)
		issues = append(issues, validateRole(field, opts.DeclaredRoles)...)
		for _, h := range opts.Hooks {
			for _, iss := range h.Validate(form, field, val) {
				iss.Code = model.CodeHookValidator
				issues = append(issues, iss)
			}
		}
	}
	return issues
}

func validateRole(field *model.Field, declared map[string]bool) []model.Issue {
	if declared == nil {
		return nil
	}
	role := field.EffectiveRole()
	if declared[role] {
		return nil
	}
	return []model.Issue{{
		Scope:    model.ScopeField,
		Ref:      string(field.ID),
		Severity: model.SeverityWarning,
		Code:     model.CodeHookValidator,
		Message:  fmt.Sprintf("field %q declares role %q, which is not listed in markform.roles", field.ID, role),
	}}
}

// ValidateOne runs just the per-kind deterministic checks for a single
// field/value pair, without the completeness (required/optional-missing)
// checks. The patch applicator (L5) uses this to validate one patch's
// resulting value in isolation, since completeness is a whole-form concern
// that belongs to a full Validate pass, not a single patch (spec §4.5 step 3
// "semantic validation").
func ValidateOne(f *model.Field, val *model.FieldValue) []model.Issue {
	if val == nil || val.State != model.StateAnswered {
		return nil
	}
	return kindConstraintIssues(f, val)
}

// validateField applies completeness (required/missing) and per-kind
// constraint checks to one field's current value.
func validateField(f *model.Field, val *model.FieldValue) []model.Issue {
	var issues []model.Issue

	missing := val == nil || val.State == model.StateUnanswered
	skippedOrAborted := val != nil && (val.State == model.StateSkipped || val.State == model.StateAborted)

	if missing {
		if EffectivelyRequired(f) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeRequiredMissing,
				fmt.Sprintf("field %q is required but has no value", f.ID)))
		} else {
			issues = append(issues, newIssue(f, model.SeverityWarning, model.CodeOptionalMissing,
				fmt.Sprintf("field %q is optional and unanswered", f.ID)))
		}
		return issues
	}
	if skippedOrAborted {
		// A skip/abort sentinel satisfies completeness regardless of
		// Required; spec §4.4 treats these as terminal, not "missing".
		return issues
	}

	issues = append(issues, kindConstraintIssues(f, val)...)
	return issues
}

// EffectivelyRequired reports whether f counts as required for completion
// purposes: either Required is set explicitly, or f declares a positive
// minItems/minSelections constraint (spec §4.4: "the model treats positive
// min constraints as implicit requiredness for progress tallies"). The
// source oscillated on this; the spec picks implicit-required, and this is
// the one place that decision is made so inspector and validator can't drift.
func EffectivelyRequired(f *model.Field) bool {
	if f.Required {
		return true
	}
	switch f.Kind {
	case model.KindStringList:
		return f.StringList != nil && f.StringList.MinItems != nil && *f.StringList.MinItems > 0
	case model.KindURLList:
		return f.URLList != nil && f.URLList.MinItems != nil && *f.URLList.MinItems > 0
	case model.KindMultiSelect:
		return f.MultiSelect != nil && f.MultiSelect.MinSelections != nil && *f.MultiSelect.MinSelections > 0
	default:
		return false
	}
}

// kindConstraintIssues applies only the per-kind constraint checks
// (pattern/range/length/etc.), assuming val is already answered.
func kindConstraintIssues(f *model.Field, val *model.FieldValue) []model.Issue {
	var issues []model.Issue
	switch f.Kind {
	case model.KindString:
		issues = append(issues, validateStringConstraints(f, f.String, val.String)...)
	case model.KindURL:
		issues = append(issues, validateStringConstraints(f, f.URL, val.URL)...)
		issues = append(issues, validateURL(f, val.URL)...)
	case model.KindNumber:
		issues = append(issues, validateNumber(f, val.Number)...)
	case model.KindStringList:
		issues = append(issues, validateList(f, f.StringList, val.StringList, false)...)
	case model.KindURLList:
		issues = append(issues, validateList(f, f.URLList, val.URLList, true)...)
	case model.KindSingleSelect:
		issues = append(issues, validateSingleSelect(f, val)...)
	case model.KindMultiSelect:
		issues = append(issues, validateMultiSelect(f, val)...)
	case model.KindCheckboxes:
		issues = append(issues, validateCheckboxes(f, val)...)
	case model.KindDate:
		issues = append(issues, validateDate(f, val.Date)...)
	case model.KindYear:
		issues = append(issues, validateYear(f, val.Year)...)
	case model.KindTable:
		issues = append(issues, validateTable(f, val)...)
	}
	return issues
}

func newIssue(f *model.Field, sev model.Severity, code model.IssueCode, msg string) model.Issue {
	return model.Issue{Scope: model.ScopeField, Ref: string(f.ID), Severity: sev, Code: code, Message: msg}
}

func validateStringConstraints(f *model.Field, c *model.StringConstraints, s *string) []model.Issue {
	if c == nil || s == nil {
		return nil
	}
	var issues []model.Issue
	n := len([]rune(*s))
	if c.MinLength != nil && n < *c.MinLength {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeLengthViolation,
			fmt.Sprintf("field %q value is %d characters, shorter than minLength=%d", f.ID, n, *c.MinLength)))
	}
	if c.MaxLength != nil && n > *c.MaxLength {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeLengthViolation,
			fmt.Sprintf("field %q value is %d characters, longer than maxLength=%d", f.ID, n, *c.MaxLength)))
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err == nil && !re.MatchString(*s) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodePatternMismatch,
				fmt.Sprintf("field %q value does not match pattern %q", f.ID, c.Pattern)))
		}
	}
	return issues
}

func validateURL(f *model.Field, s *string) []model.Issue {
	if s == nil {
		return nil
	}
	u, err := url.Parse(*s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []model.Issue{newIssue(f, model.SeverityError, model.CodeMalformedURL,
			fmt.Sprintf("field %q value %q is not a well-formed absolute URL", f.ID, *s))}
	}
	return nil
}

func validateNumber(f *model.Field, n *float64) []model.Issue {
	c := f.Number
	if c == nil || n == nil {
		return nil
	}
	var issues []model.Issue
	if c.Min != nil && *n < *c.Min {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeRangeViolation,
			fmt.Sprintf("field %q value %v is less than min=%v", f.ID, *n, *c.Min)))
	}
	if c.Max != nil && *n > *c.Max {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeRangeViolation,
			fmt.Sprintf("field %q value %v is greater than max=%v", f.ID, *n, *c.Max)))
	}
	if c.Integer && *n != float64(int64(*n)) {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeRangeViolation,
			fmt.Sprintf("field %q requires an integer value, got %v", f.ID, *n)))
	}
	return issues
}

func validateList(f *model.Field, c *model.ListConstraints, items []string, isURL bool) []model.Issue {
	if c == nil {
		return nil
	}
	var issues []model.Issue
	n := len(items)
	if c.MinItems != nil && n < *c.MinItems {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeListSizeViolation,
			fmt.Sprintf("field %q has %d item(s), fewer than minItems=%d", f.ID, n, *c.MinItems)))
	}
	if c.MaxItems != nil && n > *c.MaxItems {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeListSizeViolation,
			fmt.Sprintf("field %q has %d item(s), more than maxItems=%d", f.ID, n, *c.MaxItems)))
	}
	if c.UniqueItems {
		seen := map[string]bool{}
		for _, it := range items {
			if seen[it] {
				issues = append(issues, newIssue(f, model.SeverityError, model.CodeListNotUnique,
					fmt.Sprintf("field %q has a duplicate item %q but requires uniqueItems", f.ID, it)))
				break
			}
			seen[it] = true
		}
	}
	var itemRE *regexp.Regexp
	if c.ItemPattern != "" {
		itemRE, _ = regexp.Compile(c.ItemPattern)
	}
	for _, it := range items {
		if isURL {
			if u, err := url.Parse(it); err != nil || u.Scheme == "" || u.Host == "" {
				issues = append(issues, newIssue(f, model.SeverityError, model.CodeMalformedURL,
					fmt.Sprintf("field %q item %q is not a well-formed absolute URL", f.ID, it)))
			}
		}
		if itemRE != nil && !itemRE.MatchString(it) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodePatternMismatch,
				fmt.Sprintf("field %q item %q does not match itemPattern %q", f.ID, it, c.ItemPattern)))
		}
	}
	return issues
}

func validateSingleSelect(f *model.Field, val *model.FieldValue) []model.Issue {
	if val.SingleSelect == nil {
		return nil
	}
	if !optionExists(f.SingleSelect.Options, *val.SingleSelect) {
		return []model.Issue{newIssue(f, model.SeverityError, model.CodeUnknownOption,
			fmt.Sprintf("field %q selects undeclared option %q", f.ID, *val.SingleSelect))}
	}
	return nil
}

func validateMultiSelect(f *model.Field, val *model.FieldValue) []model.Issue {
	c := f.MultiSelect
	var issues []model.Issue
	for _, opt := range val.MultiSelect {
		if !optionExists(c.Options, opt) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeUnknownOption,
				fmt.Sprintf("field %q selects undeclared option %q", f.ID, opt)))
		}
	}
	n := len(val.MultiSelect)
	if c.MinSelections != nil && n < *c.MinSelections {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeSelectionCount,
			fmt.Sprintf("field %q has %d selection(s), fewer than minSelections=%d", f.ID, n, *c.MinSelections)))
	}
	if c.MaxSelections != nil && n > *c.MaxSelections {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeSelectionCount,
			fmt.Sprintf("field %q has %d selection(s), more than maxSelections=%d", f.ID, n, *c.MaxSelections)))
	}
	return issues
}

func validateCheckboxes(f *model.Field, val *model.FieldValue) []model.Issue {
	c := f.Checkboxes
	var issues []model.Issue
	done := 0
	for opt, state := range val.Checkboxes {
		if !optionExists(c.Options, opt) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeUnknownOption,
				fmt.Sprintf("field %q has state for undeclared option %q", f.ID, opt)))
			continue
		}
		if !state.ValidForMode(c.Mode) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeCheckboxIncomplete,
				fmt.Sprintf("field %q option %q carries state %q, invalid for mode %q", f.ID, opt, state, c.Mode)))
			continue
		}
		if state == model.DoneState(c.Mode) {
			done++
		}
	}

	switch c.Mode {
	case model.ModeAll:
		for _, opt := range c.Options {
			state, ok := val.Checkboxes[opt.ID]
			if !ok || (state != model.CheckDone && state != model.CheckNA) {
				issues = append(issues, newIssue(f, model.SeverityError, model.CodeCheckboxIncomplete,
					fmt.Sprintf("field %q: option %q is not done or marked n/a", f.ID, opt.ID)))
			}
		}
	case model.ModeAny:
		if done == 0 {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeCheckboxIncomplete,
				fmt.Sprintf("field %q requires at least one option done", f.ID)))
		}
	case model.ModeExplicit:
		for _, opt := range c.Options {
			state, ok := val.Checkboxes[opt.ID]
			if !ok || state == model.CheckUnfilled {
				issues = append(issues, newIssue(f, model.SeverityError, model.CodeCheckboxIncomplete,
					fmt.Sprintf("field %q: option %q has not been explicitly answered yes/no", f.ID, opt.ID)))
			}
		}
	}
	if c.MinDone != nil && done < *c.MinDone {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeCheckboxIncomplete,
			fmt.Sprintf("field %q has %d item(s) done, fewer than minDone=%d", f.ID, done, *c.MinDone)))
	}
	return issues
}

func validateDate(f *model.Field, s *string) []model.Issue {
	c := f.Date
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return []model.Issue{newIssue(f, model.SeverityError, model.CodeMalformedDate,
			fmt.Sprintf("field %q value %q is not an ISO 8601 date (YYYY-MM-DD)", f.ID, *s))}
	}
	if c == nil {
		return nil
	}
	var issues []model.Issue
	if c.Min != "" {
		if min, err := time.Parse("2006-01-02", c.Min); err == nil && t.Before(min) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeRangeViolation,
				fmt.Sprintf("field %q date %q is before min=%q", f.ID, *s, c.Min)))
		}
	}
	if c.Max != "" {
		if max, err := time.Parse("2006-01-02", c.Max); err == nil && t.After(max) {
			issues = append(issues, newIssue(f, model.SeverityError, model.CodeRangeViolation,
				fmt.Sprintf("field %q date %q is after max=%q", f.ID, *s, c.Max)))
		}
	}
	return issues
}

func validateYear(f *model.Field, y *int) []model.Issue {
	if y == nil {
		return nil
	}
	c := f.Year
	min, max := 1000, 9999
	if c != nil {
		min, max = c.EffectiveMin(), c.EffectiveMax()
	}
	if *y < min || *y > max {
		return []model.Issue{newIssue(f, model.SeverityError, model.CodeMalformedYear,
			fmt.Sprintf("field %q year %d is outside [%d, %d]", f.ID, *y, min, max))}
	}
	return nil
}

func validateTable(f *model.Field, val *model.FieldValue) []model.Issue {
	c := f.Table
	var issues []model.Issue
	n := len(val.Table)
	if c.MinRows != nil && n < *c.MinRows {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeTableRowCount,
			fmt.Sprintf("field %q has %d row(s), fewer than minRows=%d", f.ID, n, *c.MinRows)))
	}
	if c.MaxRows != nil && n > *c.MaxRows {
		issues = append(issues, newIssue(f, model.SeverityError, model.CodeTableRowCount,
			fmt.Sprintf("field %q has %d row(s), more than maxRows=%d", f.ID, n, *c.MaxRows)))
	}
	for i, row := range val.Table {
		for colID := range row {
			if !columnExists(c.ColumnIDs, colID) {
				issues = append(issues, newIssue(f, model.SeverityError, model.CodeUnknownColumn,
					fmt.Sprintf("field %q row %d references undeclared column %q", f.ID, i, colID)))
			}
		}
	}
	return issues
}

func optionExists(opts []model.Option, id model.OptionId) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

func columnExists(ids []model.Id, id model.Id) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}
