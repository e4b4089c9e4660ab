// Package tagast implements the L1 layer (spec §4.2's AST precursor): a
// hand-rolled scanner/parser for the Markdoc-style `{% tag attrs %}...{% /tag %}`
// grammar used by Markform bodies (already normalized to braces by
// internal/markform/syntax). No maintained Go port of Markdoc exists in the
// retrieval pack this project was grounded on, so this tag tree is built
// directly, the same fence-aware line-scanning style the L0 preprocessor
// uses, rather than adapting a third-party Markdoc implementation.
//
// Tags are expected one per line, the convention every Markform example in
// spec.md §8 uses; a `{%` appearing mid-paragraph is left as literal prose
// (spec §4.2's process=false fencing rule exists precisely so that any
// tag-like text inside a value is never mistaken for a real tag).
package tagast

import (
	"fmt"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
)

// NodeKind discriminates the small set of node shapes in a Markform body.
type NodeKind string

const (
	NodeTag         NodeKind = "tag"          // {% name attrs %} ... {% /name %}
	NodeSelfClosed  NodeKind = "self_closed"  // {% name attrs /%}
	NodeAnnotation  NodeKind = "annotation"   // {% #id %} or {% .class %}
	NodeText        NodeKind = "text"         // narrative Markdown prose
	NodeValueFence  NodeKind = "value_fence"  // fenced code block, info string "value..."
	NodeOpaqueFence NodeKind = "opaque_fence" // any other fenced code block, kept verbatim
)

// Node is one element of the tag tree.
type Node struct {
	Kind NodeKind

	// NodeTag / NodeSelfClosed / NodeAnnotation
	Name  string
	Attrs map[string]any
	Order []string // attribute names in source order, for diagnostics/round-trip

	// NodeText
	Text string

	// NodeValueFence / NodeOpaqueFence
	FenceChar    byte
	FenceLen     int
	Info         string // full info string, e.g. "value process=false"
	ProcessFalse bool
	Content      string // raw content between the fences

	Children []*Node
	Line     int
}

// Attr returns an attribute by name and whether it was present.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrString returns an attribute as a string, or "" if absent or non-string.
func (n *Node) AttrString(name string) string {
	if v, ok := n.Attrs[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AttrBool returns an attribute as a bool, defaulting to def if absent.
func (n *Node) AttrBool(name string, def bool) bool {
	if v, ok := n.Attrs[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Parse scans markdoc-braced markdown (already preprocessed by
// internal/markform/syntax) and returns the root node's children.
func Parse(body string) ([]*Node, error) {
	p := &parser{lines: splitLinesKeepEOL(body)}
	nodes, err := p.parseUntil("", 0)
	return nodes, err
}

type parser struct {
	lines []string
	pos   int // current line index
}

func splitLinesKeepEOL(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		if i < len(raw)-1 {
			out[i] = l + "\n"
		} else {
			out[i] = l
		}
	}
	return out
}

// parseUntil parses nodes until it sees a closing tag for openName (or end
// of input, when openName is "").
func (p *parser) parseUntil(openName string, openLine int) ([]*Node, error) {
	var nodes []*Node
	var textBuf strings.Builder
	flushText := func() {
		if textBuf.Len() > 0 {
			nodes = append(nodes, &Node{Kind: NodeText, Text: textBuf.String()})
			textBuf.Reset()
		}
	}

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		body, _ := splitTrailingNewline(line)
		lineNo := p.pos + 1

		if m := matchFenceOpen(body); m != nil {
			flushText()
			fenceNode, err := p.consumeFence(*m, lineNo)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, fenceNode)
			continue
		}

		trimmed := strings.TrimSpace(body)
		if looksLikeTag(trimmed) {
			node, closeName, isClose, err := parseTagSpan(trimmed, lineNo)
			if err != nil {
				return nil, err
			}
			if isClose {
				flushText()
				if closeName != openName {
					return nil, &errno.ParseError{
						Line: lineNo,
						Msg:  fmt.Sprintf("unmatched closing tag {%% /%s %%}, expected /%s (opened at line %d)", closeName, openName, openLine),
					}
				}
				p.pos++
				return nodes, nil
			}
			p.pos++
			flushText()
			if node.Kind == NodeTag {
				children, err := p.parseUntil(node.Name, lineNo)
				if err != nil {
					return nil, err
				}
				node.Children = children
			}
			nodes = append(nodes, node)
			continue
		}

		textBuf.WriteString(line)
		p.pos++
	}

	if openName != "" {
		return nil, &errno.ParseError{
			Line: openLine,
			Msg:  fmt.Sprintf("unterminated tag {%% %s %%}: missing {%% /%s %%}", openName, openName),
		}
	}
	flushText()
	return nodes, nil
}

func splitTrailingNewline(line string) (string, string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

func looksLikeTag(trimmed string) bool {
	return strings.HasPrefix(trimmed, "{%") && strings.HasSuffix(trimmed, "%}")
}
