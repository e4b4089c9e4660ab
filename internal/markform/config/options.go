// Package config follows the teacher's Options -> Config split
// (internal/hivemind/options, internal/hivemind/config): HarnessOptions
// carries pflag-bindable process defaults for the fill harness, Config
// wraps a completed Options the same way Config{*options.Options} does.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Default harness budgets (spec.md Glossary "Default budgets"). Fields and
// groups are unbounded by default (Glossary: "maxFieldsPerTurn=∞,
// maxGroupsPerTurn=∞"); zero is the in-memory sentinel for "no cap" and is
// treated that way throughout internal/markform/harness.
const (
	DefaultMaxTurns          = 100
	DefaultMaxIssuesPerTurn  = 10
	DefaultMaxFieldsPerTurn  = 0
	DefaultMaxGroupsPerTurn  = 0
	DefaultMaxPatchesPerTurn = 20
)

// HarnessOptions is the process-level default budget for a fill run.
// FormMetadata.Harness (frontmatter) carries per-form hints, but nothing
// applies them to these options (SPEC_FULL.md §A "Configuration").
type HarnessOptions struct {
	MaxTurns          int    `json:"max-turns"            mapstructure:"max-turns"            validate:"gt=0"`
	MaxIssuesPerTurn  int    `json:"max-issues-per-turn"   mapstructure:"max-issues-per-turn"   validate:"gt=0"`
	MaxFieldsPerTurn  int    `json:"max-fields-per-turn"   mapstructure:"max-fields-per-turn"   validate:"gte=0"`
	MaxGroupsPerTurn  int    `json:"max-groups-per-turn"   mapstructure:"max-groups-per-turn"   validate:"gte=0"`
	MaxPatchesPerTurn int    `json:"max-patches-per-turn"  mapstructure:"max-patches-per-turn"  validate:"gt=0"`
	FillMode          string `json:"fill-mode"             mapstructure:"fill-mode"             validate:"oneof=continue overwrite"`
}

// NewHarnessOptions returns the Glossary default budget.
func NewHarnessOptions() *HarnessOptions {
	return &HarnessOptions{
		MaxTurns:          DefaultMaxTurns,
		MaxIssuesPerTurn:  DefaultMaxIssuesPerTurn,
		MaxFieldsPerTurn:  DefaultMaxFieldsPerTurn,
		MaxGroupsPerTurn:  DefaultMaxGroupsPerTurn,
		MaxPatchesPerTurn: DefaultMaxPatchesPerTurn,
		FillMode:          "continue",
	}
}

// AddFlags registers pflag bindings, matching the teacher's per-Options
// AddFlags(fs *pflag.FlagSet) convention.
func (o *HarnessOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxTurns, "harness.max-turns", o.MaxTurns, "Maximum fill-harness turns before stopping.")
	fs.IntVar(&o.MaxIssuesPerTurn, "harness.max-issues-per-turn", o.MaxIssuesPerTurn, "Maximum issues surfaced to the agent per turn.")
	fs.IntVar(&o.MaxFieldsPerTurn, "harness.max-fields-per-turn", o.MaxFieldsPerTurn, "Maximum distinct fields addressed per turn (0 = unbounded).")
	fs.IntVar(&o.MaxGroupsPerTurn, "harness.max-groups-per-turn", o.MaxGroupsPerTurn, "Maximum distinct groups addressed per turn (0 = unbounded).")
	fs.IntVar(&o.MaxPatchesPerTurn, "harness.max-patches-per-turn", o.MaxPatchesPerTurn, "Maximum patches the agent may return per turn.")
	fs.StringVar(&o.FillMode, "harness.fill-mode", o.FillMode, "Fill mode: 'continue' or 'overwrite'.")
}

// Complete fills in any zero-valued budget from the Glossary defaults.
func (o *HarnessOptions) Complete() error {
	if o.MaxTurns == 0 {
		o.MaxTurns = DefaultMaxTurns
	}
	if o.MaxIssuesPerTurn == 0 {
		o.MaxIssuesPerTurn = DefaultMaxIssuesPerTurn
	}
	if o.MaxFieldsPerTurn == 0 {
		o.MaxFieldsPerTurn = DefaultMaxFieldsPerTurn
	}
	if o.MaxGroupsPerTurn == 0 {
		o.MaxGroupsPerTurn = DefaultMaxGroupsPerTurn
	}
	if o.MaxPatchesPerTurn == 0 {
		o.MaxPatchesPerTurn = DefaultMaxPatchesPerTurn
	}
	if o.FillMode == "" {
		o.FillMode = "continue"
	}
	return nil
}

// Validate runs struct-tag validation via go-playground/validator, the
// same library the teacher's dependency graph already carries for request
// binding, reused here for HarnessOptions' own budget/enum invariants.
func (o *HarnessOptions) Validate() error {
	if err := structValidator.Struct(o); err != nil {
		return fmt.Errorf("harness options: %w", err)
	}
	return nil
}
