// Package syntax implements the L0 preprocessor (spec §4.1): it rewrites the
// HTML-comment tag syntax `<!-- f:tag ... -->` into canonical Markdoc braces
// `{% tag ... %}` outside of fenced and inline code, and reports which style
// the input used so the serializer can round-trip it.
package syntax

import (
	"regexp"
	"strings"

	"github.com/jlevy/markform/internal/markform/model"
)

var (
	// Closed block open: <!-- f:name attrs -->
	reOpen = regexp.MustCompile(`<!--\s*f:([a-zA-Z][\w-]*)((?:\s+[^>]*?)?)\s*-->`)
	// Close: <!-- /f:name -->
	reClose = regexp.MustCompile(`<!--\s*/f:([a-zA-Z][\w-]*)\s*-->`)
	// Self-closed: <!-- f:name attrs /-->
	reSelfClose = regexp.MustCompile(`<!--\s*f:([a-zA-Z][\w-]*)((?:\s+[^>]*?)?)\s*/-->`)
	// Annotation: <!-- #id --> or <!-- .class -->
	reAnnotation = regexp.MustCompile(`<!--\s*([#.][\w-]+)\s*-->`)

	reFenceLine = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})")
)

// Preprocess rewrites the HTML-comment tag syntax to Markdoc braces, skipping
// fenced and inline code, and returns the rewritten markdown plus which
// syntax style the input used.
func Preprocess(input string) (string, model.SyntaxStyle) {
	lines := splitKeepNewlines(input)

	var out strings.Builder
	style := model.SyntaxMarkdoc
	var fence *fenceState

	for _, line := range lines {
		body, newline := splitNewline(line)

		if fence != nil {
			out.WriteString(body)
			out.WriteString(newline)
			if fence.closes(body) {
				fence = nil
			}
			continue
		}

		if m := reFenceLine.FindStringSubmatch(body); m != nil {
			fence = &fenceState{char: m[2][0], length: len(m[2])}
			out.WriteString(body)
			out.WriteString(newline)
			continue
		}

		rewritten, changed := rewriteLine(body)
		if changed {
			style = model.SyntaxHTMLComment
		}
		out.WriteString(rewritten)
		out.WriteString(newline)
	}

	return out.String(), style
}

type fenceState struct {
	char   byte
	length int
}

// closes reports whether body is a valid closing fence for this state: same
// character, run length >= opening length, indent <= 3, nothing else on the
// line (CommonMark closing-fence rule).
func (f *fenceState) closes(body string) bool {
	trimmed := strings.TrimLeft(body, " ")
	indent := len(body) - len(trimmed)
	if indent > 3 {
		return false
	}
	run := 0
	for run < len(trimmed) && trimmed[run] == f.char {
		run++
	}
	if run < f.length {
		return false
	}
	return strings.TrimSpace(trimmed[run:]) == ""
}

// rewriteLine applies the span-level HTML-comment -> Markdoc transforms to a
// single line, skipping inline code spans.
func rewriteLine(line string) (string, bool) {
	segments := splitInlineCode(line)
	changed := false
	var out strings.Builder
	for _, seg := range segments {
		if seg.isCode {
			out.WriteString(seg.text)
			continue
		}
		rewritten, segChanged := rewriteSpan(seg.text)
		if segChanged {
			changed = true
		}
		out.WriteString(rewritten)
	}
	return out.String(), changed
}

func rewriteSpan(text string) (string, bool) {
	changed := false

	text = reSelfClose.ReplaceAllStringFunc(text, func(m string) string {
		sub := reSelfClose.FindStringSubmatch(m)
		changed = true
		return "{% " + strings.TrimSpace(sub[1]+sub[2]) + " /%}"
	})
	text = reOpen.ReplaceAllStringFunc(text, func(m string) string {
		sub := reOpen.FindStringSubmatch(m)
		changed = true
		return "{% " + strings.TrimSpace(sub[1]+sub[2]) + " %}"
	})
	text = reClose.ReplaceAllStringFunc(text, func(m string) string {
		sub := reClose.FindStringSubmatch(m)
		changed = true
		return "{% /" + sub[1] + " %}"
	})
	text = reAnnotation.ReplaceAllStringFunc(text, func(m string) string {
		sub := reAnnotation.FindStringSubmatch(m)
		changed = true
		return "{% " + sub[1] + " %}"
	})

	return text, changed
}

type codeSegment struct {
	text   string
	isCode bool
}

// splitInlineCode partitions a line into code-span and non-code-span
// segments per CommonMark's matched-backtick-run rule. Inline code spans are
// assumed not to cross line boundaries, a deliberate simplification for a
// line-oriented preprocessor.
func splitInlineCode(line string) []codeSegment {
	var segs []codeSegment
	i := 0
	textStart := 0
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		runStart := i
		for i < len(line) && line[i] == '`' {
			i++
		}
		runLen := i - runStart

		closeAt := findClosingRun(line, i, runLen)
		if closeAt == -1 {
			// No matching close: not a code span, keep scanning as text.
			continue
		}
		if runStart > textStart {
			segs = append(segs, codeSegment{text: line[textStart:runStart]})
		}
		segs = append(segs, codeSegment{text: line[runStart : closeAt+runLen], isCode: true})
		textStart = closeAt + runLen
		i = textStart
	}
	if textStart < len(line) {
		segs = append(segs, codeSegment{text: line[textStart:]})
	}
	return segs
}

func findClosingRun(line string, from, runLen int) int {
	i := from
	for i < len(line) {
		if line[i] != '`' {
			i++
			continue
		}
		start := i
		for i < len(line) && line[i] == '`' {
			i++
		}
		if i-start == runLen {
			return start
		}
	}
	return -1
}

func splitKeepNewlines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func splitNewline(line string) (body, newline string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
