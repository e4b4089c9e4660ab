package serializer

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jlevy/markform/internal/markform/model"
)

// renderFrontmatter emits the YAML frontmatter body (without the `---`
// fences) in spec §4.3's fixed key order: spec, title, description, roles,
// role_instructions, run_mode, harness. Unknown top-level keys preserved
// from the original parse (spec §3 "raw frontmatter") are appended
// afterward for round-trip fidelity.
func renderFrontmatter(form *model.ParsedForm) string {
	m := form.Metadata
	if isZeroMetadata(m) && len(form.RawFrontmatter) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("markform:\n")
	if m.SpecVersion != "" {
		fmt.Fprintf(&sb, "  spec: %q\n", m.SpecVersion)
	}
	if m.Title != "" {
		fmt.Fprintf(&sb, "  title: %q\n", m.Title)
	}
	if m.Description != "" {
		fmt.Fprintf(&sb, "  description: %q\n", m.Description)
	}
	if len(m.Roles) > 0 && !equalStrings(m.Roles, model.DefaultRoles) {
		sb.WriteString("  roles:\n")
		for _, r := range m.Roles {
			fmt.Fprintf(&sb, "    - %q\n", r)
		}
	}
	if len(m.RoleInstructions) > 0 {
		sb.WriteString("  role_instructions:\n")
		keys := make([]string, 0, len(m.RoleInstructions))
		for k := range m.RoleInstructions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "    %s: %q\n", k, m.RoleInstructions[k])
		}
	}
	if m.RunMode != "" {
		fmt.Fprintf(&sb, "  run_mode: %q\n", string(m.RunMode))
	}
	if h := m.Harness; h.MaxTurns != nil || h.MaxIssuesPerTurn != nil || h.MaxFieldsPerTurn != nil || h.MaxGroupsPerTurn != nil || h.MaxPatchesPerTurn != nil {
		sb.WriteString("  harness:\n")
		writeIntKey(&sb, "max_turns", h.MaxTurns)
		writeIntKey(&sb, "max_issues_per_turn", h.MaxIssuesPerTurn)
		writeIntKey(&sb, "max_fields_per_turn", h.MaxFieldsPerTurn)
		writeIntKey(&sb, "max_groups_per_turn", h.MaxGroupsPerTurn)
		writeIntKey(&sb, "max_patches_per_turn", h.MaxPatchesPerTurn)
	}

	if extra := otherTopLevelKeys(form.RawFrontmatter); len(extra) > 0 {
		out, err := yaml.Marshal(extra)
		if err == nil {
			sb.Write(out)
		}
	}

	return sb.String()
}

func writeIntKey(sb *strings.Builder, key string, v *int) {
	if v == nil {
		return
	}
	fmt.Fprintf(sb, "    %s: %d\n", key, *v)
}

func otherTopLevelKeys(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]any{}
	for k, v := range raw {
		if k != "markform" {
			out[k] = v
		}
	}
	return out
}

func isZeroMetadata(m model.FormMetadata) bool {
	return m.SpecVersion == "" && m.Title == "" && m.Description == "" &&
		len(m.RoleInstructions) == 0 && m.RunMode == "" &&
		m.Harness.MaxTurns == nil && m.Harness.MaxIssuesPerTurn == nil &&
		m.Harness.MaxFieldsPerTurn == nil && m.Harness.MaxGroupsPerTurn == nil &&
		m.Harness.MaxPatchesPerTurn == nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
