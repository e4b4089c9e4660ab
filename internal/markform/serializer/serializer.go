// Package serializer implements the L3 canonical serializer (spec §4.3):
// a byte-stable textual rendering of a model.ParsedForm, with deterministic
// attribute ordering, smart fence selection, and an optional postprocess
// pass back to HTML-comment syntax.
package serializer

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/syntax"
)

// Serialize renders form to its canonical on-disk text, honoring
// form.SyntaxStyle (spec §4.3 "syntax-style output").
func Serialize(form *model.ParsedForm) (string, error) {
	var body strings.Builder
	writeProseAfter(&body, form, "")
	for i, f := range form.Forms {
		if i > 0 {
			body.WriteString("\n")
		}
		if err := writeForm(&body, form, f); err != nil {
			return "", err
		}
	}

	front := renderFrontmatter(form)
	var out strings.Builder
	if front != "" {
		out.WriteString("---\n")
		out.WriteString(front)
		out.WriteString("---\n\n")
	}
	out.WriteString(body.String())

	result := out.String()
	if form.SyntaxStyle == model.SyntaxHTMLComment {
		result = syntax.Postprocess(result)
	}
	return result, nil
}

func writeForm(w *strings.Builder, form *model.ParsedForm, f *model.FormDef) error {
	writeOpenTag(w, "form", orderedAttrs("form", map[string]attrValue{
		"id":    {str: string(f.ID)},
		"title": {str: f.Title, omitEmpty: true},
	}))
	w.WriteString("\n")

	writeProseAfter(w, form, f.ID)
	if err := writeDocsFor(w, form, model.Id(f.ID)); err != nil {
		return err
	}

	for _, g := range f.Groups {
		if err := writeGroup(w, form, g); err != nil {
			return err
		}
	}
	for _, field := range f.Fields {
		if err := writeField(w, form, field); err != nil {
			return err
		}
	}

	w.WriteString("{% /form %}\n")
	return nil
}

func writeGroup(w *strings.Builder, form *model.ParsedForm, g *model.FieldGroup) error {
	attrs := map[string]attrValue{
		"id":    {str: string(g.ID)},
		"title": {str: g.Title, omitEmpty: true},
	}
	if g.Report != nil && !*g.Report {
		attrs["report"] = attrValue{boolVal: boolPtr(false)}
	}
	writeOpenTag(w, "group", orderedAttrs("group", attrs))
	w.WriteString("\n")

	writeProseAfter(w, form, g.ID)
	if err := writeDocsFor(w, form, g.ID); err != nil {
		return err
	}
	for _, field := range g.Fields {
		if err := writeField(w, form, field); err != nil {
			return err
		}
	}

	w.WriteString("{% /group %}\n\n")
	return nil
}

func writeDocsFor(w *strings.Builder, form *model.ParsedForm, ref model.Id) error {
	for _, tag := range []model.DocTag{model.DocDescription, model.DocInstructions, model.DocDocumentation} {
		doc := form.DocFor(ref, tag)
		if doc == nil {
			continue
		}
		fmt.Fprintf(w, "{%% %s ref=%q %%}\n", string(tag), string(ref))
		w.WriteString(doc.BodyMarkdown)
		if !strings.HasSuffix(doc.BodyMarkdown, "\n") {
			w.WriteString("\n")
		}
		fmt.Fprintf(w, "{%% /%s %%}\n\n", string(tag))
	}
	return nil
}

// writeProseAfter emits narrative text anchored at id. Pure-whitespace
// blocks are dropped: spec §4.3's "exactly one blank line between adjacent
// top-level blocks" rule means inter-block spacing is normalized by the
// serializer's own formatting, not preserved verbatim, so whitespace-only
// prose carries no round-trip-relevant information.
func writeProseAfter(w *strings.Builder, form *model.ParsedForm, id model.Id) {
	for _, p := range form.BodyProse {
		if p.AfterID == id && strings.TrimSpace(p.Text) != "" {
			w.WriteString(p.Text)
			if !strings.HasSuffix(p.Text, "\n") {
				w.WriteString("\n")
			}
			w.WriteString("\n")
		}
	}
}

func boolPtr(b bool) *bool { return &b }
