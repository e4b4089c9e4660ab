package model

// DocTag is the kind of a documentation block (spec §3).
type DocTag string

const (
	DocDescription  DocTag = "description"
	DocInstructions DocTag = "instructions"
	DocDocumentation DocTag = "documentation"
)

// DocumentationBlock attaches narrative Markdown to a form/group/field by
// id reference; it never holds a pointer to its target (spec §9).
type DocumentationBlock struct {
	Tag         DocTag
	Ref         Id
	BodyMarkdown string
}

// docKey identifies a (ref, tag) pair for the "unique per pair" invariant (spec §3).
type docKey struct {
	Ref Id
	Tag DocTag
}
