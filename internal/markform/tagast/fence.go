package tagast

import (
	"regexp"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
)

var reFenceOpen = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})(.*)$")

type fenceOpenMatch struct {
	Char   byte
	Length int
	Info   string
}

func matchFenceOpen(body string) *fenceOpenMatch {
	m := reFenceOpen.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	return &fenceOpenMatch{Char: m[2][0], Length: len(m[2]), Info: strings.TrimSpace(m[3])}
}

func fenceCloses(body string, char byte, length int) bool {
	trimmed := strings.TrimLeft(body, " ")
	indent := len(body) - len(trimmed)
	if indent > 3 {
		return false
	}
	run := 0
	for run < len(trimmed) && trimmed[run] == char {
		run++
	}
	if run < length {
		return false
	}
	return strings.TrimSpace(trimmed[run:]) == ""
}

// consumeFence reads lines from the opening fence (already identified by m,
// whose line is the current p.pos) through its matching close, returning a
// value-fence or opaque-fence node depending on the info string (spec §4.2
// "process=false fences").
func (p *parser) consumeFence(m fenceOpenMatch, openLine int) (*Node, error) {
	p.pos++ // step past the opening fence line

	var contentLines []string
	closed := false
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		body, _ := splitTrailingNewline(line)
		if fenceCloses(body, m.Char, m.Length) {
			p.pos++
			closed = true
			break
		}
		contentLines = append(contentLines, line)
		p.pos++
	}
	if !closed {
		return nil, &errno.ParseError{Line: openLine, Msg: "unterminated fenced code block"}
	}

	content := strings.Join(contentLines, "")
	infoParts := strings.Fields(m.Info)
	isValue := len(infoParts) > 0 && infoParts[0] == "value"
	processFalse := false
	for _, part := range infoParts[1:] {
		if part == "process=false" {
			processFalse = true
		}
	}

	if isValue && !processFalse && strings.Contains(content, "{%") {
		return nil, &errno.ParseError{Line: openLine, Msg: "value fence content contains \"{%\" and must be fenced with process=false", Cause: errno.ErrUnfenced}
	}

	kind := NodeOpaqueFence
	if isValue {
		kind = NodeValueFence
	}
	return &Node{
		Kind:         kind,
		FenceChar:    m.Char,
		FenceLen:     m.Length,
		Info:         m.Info,
		ProcessFalse: processFalse,
		Content:      content,
		Line:         openLine,
	}, nil
}
