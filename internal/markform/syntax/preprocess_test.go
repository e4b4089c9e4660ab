package syntax

import (
	"strings"
	"testing"

	"github.com/jlevy/markform/internal/markform/model"
)

func TestPreprocess_RewritesOpenCloseAndSelfClose(t *testing.T) {
	input := strings.Join([]string{
		`<!-- f:field kind="string" id="name" -->`,
		"body",
		`<!-- /f:field -->`,
		`<!-- f:field kind="string" id="other" /-->`,
	}, "\n")

	got, style := Preprocess(input)

	if style != model.SyntaxHTMLComment {
		t.Fatalf("style = %v, want html-comment", style)
	}
	want := strings.Join([]string{
		`{% field kind="string" id="name" %}`,
		"body",
		`{% /field %}`,
		`{% field kind="string" id="other" /%}`,
	}, "\n")
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPreprocess_AnnotationMarkers(t *testing.T) {
	got, style := Preprocess(`<!-- #intro -->` + "\n" + `<!-- .highlight -->`)
	if style != model.SyntaxHTMLComment {
		t.Fatalf("style = %v, want html-comment", style)
	}
	want := "{% #intro %}\n{% .highlight %}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPreprocess_NoTransformWhenNoComments(t *testing.T) {
	input := "{% field kind=\"string\" id=\"x\" %}\nvalue\n{% /field %}"
	got, style := Preprocess(input)
	if style != model.SyntaxMarkdoc {
		t.Fatalf("style = %v, want markdoc", style)
	}
	if got != input {
		t.Fatalf("got %q want unchanged %q", got, input)
	}
}

func TestPreprocess_SkipsFencedCodeBlock(t *testing.T) {
	input := strings.Join([]string{
		"```",
		`<!-- f:field kind="string" id="name" -->`,
		"```",
	}, "\n")
	got, style := Preprocess(input)
	if style != model.SyntaxMarkdoc {
		t.Fatalf("style = %v, want markdoc (fenced content untouched)", style)
	}
	if got != input {
		t.Fatalf("fenced content was rewritten:\n%s", got)
	}
}

func TestPreprocess_SkipsInlineCodeSpan(t *testing.T) {
	input := "Use `<!-- f:field -->` literally in prose."
	got, style := Preprocess(input)
	if style != model.SyntaxMarkdoc {
		t.Fatalf("style = %v, want markdoc (inline code untouched)", style)
	}
	if got != input {
		t.Fatalf("inline code span was rewritten: %q", got)
	}
}

func TestPreprocess_TildeFenceWithLongerBacktickRunInside(t *testing.T) {
	input := strings.Join([]string{
		"~~~",
		"```` not a real close ````",
		`<!-- f:field -->`,
		"~~~",
	}, "\n")
	got, _ := Preprocess(input)
	if got != input {
		t.Fatalf("tilde-fenced content with embedded backticks was rewritten:\n%s", got)
	}
}

func TestPostprocess_IsInverseOfPreprocess(t *testing.T) {
	original := strings.Join([]string{
		`<!-- f:field kind="string" id="name" -->`,
		"body",
		`<!-- /f:field -->`,
	}, "\n")

	markdoc, _ := Preprocess(original)
	roundTripped := Postprocess(markdoc)

	if roundTripped != original {
		t.Fatalf("postprocess(preprocess(x)) != x\ngot:\n%s\nwant:\n%s", roundTripped, original)
	}
}
