package serializer

import (
	"strings"
)

// chooseFence implements spec §4.3's "smart fence selection": pick backtick
// or tilde, then a fence length of max(3, maxRun+1) where maxRun is the
// longest run of that fence character at a line start (indent <= 3) inside
// content. Ties prefer backticks.
func chooseFence(content string) (char byte, length int) {
	backtickRun := maxRunAtLineStart(content, '`')
	tildeRun := maxRunAtLineStart(content, '~')
	if backtickRun <= tildeRun {
		return '`', max(3, backtickRun+1)
	}
	return '~', max(3, tildeRun+1)
}

func maxRunAtLineStart(content string, ch byte) int {
	best := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		run := 0
		for run < len(trimmed) && trimmed[run] == ch {
			run++
		}
		if run > best {
			best = run
		}
	}
	return best
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// needsProcessFalse reports whether content contains Markdoc tag-like text
// that would otherwise be mistaken for a real tag on re-parse (spec §4.2's
// process=false fencing rule). This checks the raw content rather than
// tracking nested code spans inside the value itself, since field values
// are flat text/markers, never nested fenced code.
func needsProcessFalse(content string) bool {
	return strings.Contains(content, "{%")
}

func renderFence(content string) string {
	char, length := chooseFence(content)
	fence := strings.Repeat(string(char), length)
	info := "value"
	if needsProcessFalse(content) {
		info += " process=false"
	}
	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteString(info)
	sb.WriteString("\n")
	sb.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence)
	sb.WriteString("\n")
	return sb.String()
}
