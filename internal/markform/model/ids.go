package model

import "regexp"

// idPattern matches spec.md §3: "[a-z][a-z0-9_]*".
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// rolePattern matches spec.md §4.2: "[a-z0-9_-]+".
var rolePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Id is a form/group/field identifier, unique within its namespace (spec §3).
type Id string

// Valid reports whether id matches the required snake_case token shape.
func (id Id) Valid() bool {
	return idPattern.MatchString(string(id))
}

func (id Id) String() string { return string(id) }

// OptionId is an Id unique within its parent field.
type OptionId string

func (id OptionId) Valid() bool { return idPattern.MatchString(string(id)) }

func (id OptionId) String() string { return string(id) }

// QualifiedOptionRef is "<fieldId>.<optionId>".
type QualifiedOptionRef string

func NewQualifiedOptionRef(fieldID Id, optionID OptionId) QualifiedOptionRef {
	return QualifiedOptionRef(string(fieldID) + "." + string(optionID))
}

// QualifiedColumnRef is "<fieldId>.<columnId>".
type QualifiedColumnRef string

func NewQualifiedColumnRef(fieldID Id, columnID Id) QualifiedColumnRef {
	return QualifiedColumnRef(string(fieldID) + "." + string(columnID))
}

// ValidRole reports whether a role name matches spec §4.2's normalization
// rule. The reserved role "*" is rejected by this check; callers must also
// reject it explicitly where spec.md calls it out as forbidden.
func ValidRole(role string) bool {
	return role != "" && rolePattern.MatchString(role)
}

// ReservedRole is the wildcard role forbidden in FormMetadata.Roles.
const ReservedRole = "*"
