package tagast

import (
	"strings"
	"testing"
)

func TestParse_SimpleFieldWithValueFence(t *testing.T) {
	body := strings.Join([]string{
		`{% field kind="string" id="name" required=true %}`,
		"```value",
		"Alice",
		"```",
		"{% /field %}",
	}, "\n")

	nodes, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Kind != NodeTag || nodes[0].Name != "field" {
		t.Fatalf("unexpected top-level nodes: %+v", nodes)
	}
	field := nodes[0]
	if field.AttrString("kind") != "string" || field.AttrString("id") != "name" {
		t.Fatalf("attrs = %+v", field.Attrs)
	}
	if !field.AttrBool("required", false) {
		t.Fatalf("required attr not parsed as true: %+v", field.Attrs)
	}
	if len(field.Children) != 1 || field.Children[0].Kind != NodeValueFence {
		t.Fatalf("expected one value fence child, got %+v", field.Children)
	}
	if field.Children[0].Content != "Alice\n" {
		t.Fatalf("fence content = %q", field.Children[0].Content)
	}
}

func TestParse_NestedGroupAndField(t *testing.T) {
	body := strings.Join([]string{
		`{% group id="basics" %}`,
		`{% field kind="number" id="age" %}`,
		"```value",
		"30",
		"```",
		"{% /field %}",
		"{% /group %}",
	}, "\n")

	nodes, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "group" {
		t.Fatalf("nodes = %+v", nodes)
	}
	group := nodes[0]
	if len(group.Children) != 1 || group.Children[0].Name != "field" {
		t.Fatalf("group children = %+v", group.Children)
	}
}

func TestParse_SelfClosedAndAnnotation(t *testing.T) {
	body := strings.Join([]string{
		`{% field kind="string" id="x" /%}`,
		`{% #intro %}`,
		`{% .highlight %}`,
	}, "\n")

	nodes, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %+v", len(nodes), nodes)
	}
	if nodes[0].Kind != NodeSelfClosed {
		t.Fatalf("node0 kind = %v", nodes[0].Kind)
	}
	if nodes[1].Kind != NodeAnnotation || nodes[1].Name != "#intro" {
		t.Fatalf("node1 = %+v", nodes[1])
	}
	if nodes[2].Kind != NodeAnnotation || nodes[2].Name != ".highlight" {
		t.Fatalf("node2 = %+v", nodes[2])
	}
}

func TestParse_UnterminatedTagFails(t *testing.T) {
	body := `{% field kind="string" id="x" %}` + "\nvalue\n"
	if _, err := Parse(body); err == nil {
		t.Fatal("expected error for unterminated tag")
	}
}

func TestParse_MismatchedCloseFails(t *testing.T) {
	body := strings.Join([]string{
		`{% field kind="string" id="x" %}`,
		`{% /group %}`,
	}, "\n")
	if _, err := Parse(body); err == nil {
		t.Fatal("expected error for mismatched close tag")
	}
}

func TestParse_ValueFenceWithProcessFalse(t *testing.T) {
	body := strings.Join([]string{
		`{% field kind="string" id="x" %}`,
		"```value process=false",
		"literal {% tag %} text",
		"```",
		"{% /field %}",
	}, "\n")
	nodes, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fence := nodes[0].Children[0]
	if !fence.ProcessFalse {
		t.Fatalf("expected process=false to be recognized")
	}
	if fence.Content != "literal {% tag %} text\n" {
		t.Fatalf("content = %q", fence.Content)
	}
}

func TestParse_ValueFenceWithTagLikeTextRequiresProcessFalse(t *testing.T) {
	body := strings.Join([]string{
		`{% field kind="string" id="x" %}`,
		"```value",
		"literal {% tag %} text",
		"```",
		"{% /field %}",
	}, "\n")
	if _, err := Parse(body); err == nil {
		t.Fatal("expected an error for an un-fenced value containing \"{%\"")
	}
}

func TestParse_ProseTextPreserved(t *testing.T) {
	body := strings.Join([]string{
		"Some narrative text.",
		"",
		`{% field kind="string" id="x" /%}`,
	}, "\n")
	nodes, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Kind != NodeText {
		t.Fatalf("nodes = %+v", nodes)
	}
	if nodes[0].Text != "Some narrative text.\n\n" {
		t.Fatalf("text = %q", nodes[0].Text)
	}
}
