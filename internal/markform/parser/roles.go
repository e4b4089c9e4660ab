package parser

import "strings"

// normalizeRoleString lowercases and trims a role name. Pattern validity
// ([a-z0-9_-]+) is checked by the caller via model.ValidRole; whether the
// role is one of the form's declared roles is a semantic concern left to
// the validator/inspector (spec §4.2: unknown roles warn, they don't fail
// parsing).
func normalizeRoleString(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
