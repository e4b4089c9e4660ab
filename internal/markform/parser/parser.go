// Package parser implements the L2 form parser (spec §4.2): it walks the
// tagast tree produced from preprocessed source and yields a fully indexed
// model.ParsedForm. Syntactic and schema violations are reported as
// *errno.ParseError; no ValidationError is ever produced here (that class
// belongs to the patch applicator).
package parser

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jlevy/markform/internal/markform/errno"
	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/syntax"
	"github.com/jlevy/markform/internal/markform/tagast"
)

const frontmatterFence = "---"

// Parse parses a complete .form.md source document.
func Parse(source string) (*model.ParsedForm, error) {
	rawFront, bodySource := splitFrontmatter(source)
	meta, rawMap, err := parseFrontmatter(rawFront)
	if err != nil {
		return nil, err
	}

	markdocBody, style := syntax.Preprocess(bodySource)
	nodes, err := tagast.Parse(markdocBody)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	if err := b.walkTop(nodes); err != nil {
		return nil, err
	}

	form := &model.ParsedForm{
		Metadata:       meta,
		Forms:          b.forms,
		Docs:           b.docs,
		SyntaxStyle:    style,
		RawFrontmatter: rawMap,
		BodyProse:      b.prose,
		IDIndex:        b.idIndex,
		OptionIndex:    b.optionIndex,
		ColumnIndex:    b.columnIndex,
		OrderIndex:     b.orderIndex,
		Values:         b.values,
	}
	return form, nil
}

// splitFrontmatter separates a leading `---\n...\n---\n` YAML block from the
// rest of the document. A missing or unterminated fence means there is no
// frontmatter; the whole input is treated as body.
func splitFrontmatter(source string) (raw string, body string) {
	lines := strings.Split(source, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterFence {
		return "", source
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", source
}

func parseFrontmatter(raw string) (model.FormMetadata, map[string]any, error) {
	meta := model.FormMetadata{Roles: append([]string(nil), model.DefaultRoles...)}
	if strings.TrimSpace(raw) == "" {
		return meta, nil, nil
	}

	var top map[string]any
	if err := yaml.Unmarshal([]byte(raw), &top); err != nil {
		return meta, nil, errno.NewParseError("invalid frontmatter YAML", err)
	}

	mfRaw, ok := top["markform"]
	if !ok {
		return meta, top, nil
	}
	mf, ok := mfRaw.(map[string]any)
	if !ok {
		return meta, top, errno.NewParseError("markform frontmatter key must be a mapping", nil)
	}

	if v, ok := mf["spec"].(string); ok {
		meta.SpecVersion = v
	}
	if v, ok := mf["title"].(string); ok {
		meta.Title = v
	}
	if v, ok := mf["description"].(string); ok {
		meta.Description = v
	}
	if v, ok := mf["roles"]; ok {
		roles, err := toStringSlice(v)
		if err != nil {
			return meta, top, errno.NewParseError("markform.roles must be a list of strings", err)
		}
		meta.Roles = roles
	}
	if v, ok := mf["role_instructions"]; ok {
		ri, err := toStringMap(v)
		if err != nil {
			return meta, top, errno.NewParseError("markform.role_instructions must be a string map", err)
		}
		meta.RoleInstructions = ri
	}
	if v, ok := mf["run_mode"].(string); ok {
		meta.RunMode = model.RunMode(v)
	}
	if v, ok := mf["harness"]; ok {
		hm, err := toAnyMap(v)
		if err != nil {
			return meta, top, errno.NewParseError("markform.harness must be a mapping", err)
		}
		meta.Harness = model.HarnessHints{
			MaxTurns:          toIntPtr(hm["max_turns"]),
			MaxIssuesPerTurn:  toIntPtr(hm["max_issues_per_turn"]),
			MaxFieldsPerTurn:  toIntPtr(hm["max_fields_per_turn"]),
			MaxGroupsPerTurn:  toIntPtr(hm["max_groups_per_turn"]),
			MaxPatchesPerTurn: toIntPtr(hm["max_patches_per_turn"]),
		}
	}

	for _, r := range meta.Roles {
		if r == model.ReservedRole {
			return meta, top, errno.NewParseError("reserved role \"*\" may not appear in markform.roles", nil)
		}
		if !model.ValidRole(r) {
			return meta, top, errno.NewParseError("invalid role name: "+r, nil)
		}
	}
	return meta, top, nil
}
