package tagast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jlevy/markform/internal/markform/errno"
)

// parseTagSpan parses a single-line tag span like `{% field kind="string" id="x" %}`,
// `{% /field %}`, `{% field kind="string" /%}`, `{% #id %}` or `{% .class %}`.
//
// It returns (node, "", false, nil) for an opening or self-closed tag or an
// annotation, and (nil, closeName, true, nil) for a closing tag.
func parseTagSpan(trimmed string, lineNo int) (*Node, string, bool, error) {
	if !strings.HasPrefix(trimmed, "{%") || !strings.HasSuffix(trimmed, "%}") {
		return nil, "", false, &errno.ParseError{Line: lineNo, Msg: "malformed tag: " + trimmed}
	}
	inner := trimmed[2 : len(trimmed)-2]

	selfClosed := false
	trimmedInner := strings.TrimRight(inner, " \t")
	if strings.HasSuffix(trimmedInner, "/") {
		selfClosed = true
		inner = trimmedInner[:len(trimmedInner)-1]
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, "", false, &errno.ParseError{Line: lineNo, Msg: "empty tag"}
	}

	if strings.HasPrefix(inner, "/") {
		return nil, strings.TrimSpace(inner[1:]), true, nil
	}

	if strings.HasPrefix(inner, "#") || strings.HasPrefix(inner, ".") {
		return &Node{Kind: NodeAnnotation, Name: inner, Line: lineNo}, "", false, nil
	}

	name, attrs, order, err := parseNameAndAttrs(inner, lineNo)
	if err != nil {
		return nil, "", false, err
	}
	kind := NodeTag
	if selfClosed {
		kind = NodeSelfClosed
	}
	return &Node{Kind: kind, Name: name, Attrs: attrs, Order: order, Line: lineNo}, "", false, nil
}

// parseNameAndAttrs tokenizes "name key1=\"v1\" key2=123 key3" respecting
// double-quoted string values.
func parseNameAndAttrs(s string, lineNo int) (string, map[string]any, []string, error) {
	tokens, err := tokenizeAttrLine(s, lineNo)
	if err != nil {
		return "", nil, nil, err
	}
	if len(tokens) == 0 {
		return "", nil, nil, &errno.ParseError{Line: lineNo, Msg: "tag has no name"}
	}
	name := tokens[0]
	attrs := map[string]any{}
	var order []string
	for _, tok := range tokens[1:] {
		key, val, err := parseAttrToken(tok, lineNo)
		if err != nil {
			return "", nil, nil, err
		}
		if _, exists := attrs[key]; exists {
			return "", nil, nil, &errno.ParseError{Line: lineNo, Msg: fmt.Sprintf("duplicate attribute %q", key)}
		}
		attrs[key] = val
		order = append(order, key)
	}
	return name, attrs, order, nil
}

// tokenizeAttrLine splits on whitespace outside double-quoted spans.
func tokenizeAttrLine(s string, lineNo int) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			cur.WriteByte(c)
			inQuotes = !inQuotes
		case c == '\\' && inQuotes && i+1 < len(s):
			cur.WriteByte(c)
			i++
			cur.WriteByte(s[i])
		case (c == ' ' || c == '\t') && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	if inQuotes {
		return nil, &errno.ParseError{Line: lineNo, Msg: "unterminated quoted attribute value"}
	}
	return tokens, nil
}

// parseAttrToken parses one "key=value" or bare "key" (boolean shorthand) token.
func parseAttrToken(tok string, lineNo int) (string, any, error) {
	eq := strings.IndexByte(tok, '=')
	if eq == -1 {
		return tok, true, nil
	}
	key := tok[:eq]
	raw := tok[eq+1:]
	val, err := parseAttrValue(raw, lineNo)
	if err != nil {
		return "", nil, err
	}
	return key, val, nil
}

func parseAttrValue(raw string, lineNo int) (any, error) {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unescapeQuoted(raw[1 : len(raw)-1]), nil
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	if strings.HasPrefix(raw, "\"") || strings.HasSuffix(raw, "\"") {
		return nil, &errno.ParseError{Line: lineNo, Msg: fmt.Sprintf("malformed quoted value: %s", raw)}
	}
	// Bare word: treated as a string (e.g. an id reference).
	return raw, nil
}

func unescapeQuoted(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			out.WriteByte(s[i+1])
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}
