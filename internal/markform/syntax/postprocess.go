package syntax

import (
	"regexp"
	"strings"
)

var (
	reTagSelfClose = regexp.MustCompile(`\{%\s*([#.]?[\w-]+)((?:\s+[^%]*?)?)\s*/%\}`)
	reTagClose     = regexp.MustCompile(`\{%\s*/([\w-]+)\s*%\}`)
	reTagOpen      = regexp.MustCompile(`\{%\s*([#.]?[\w-]+)((?:\s+[^%]*?)?)\s*%\}`)
)

// Postprocess rewrites canonical Markdoc braces back into the HTML-comment
// tag syntax, the inverse of Preprocess, skipping fenced and inline code
// exactly the way Preprocess does (spec §4.3 "syntax-style output").
func Postprocess(input string) string {
	lines := splitKeepNewlines(input)

	var out strings.Builder
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

		out.WriteString(postprocessLine(body))
		out.WriteString(newline)
	}

	return out.String()
}

func postprocessLine(line string) string {
	segments := splitInlineCode(line)
	var out strings.Builder
	for _, seg := range segments {
		if seg.isCode {
			out.WriteString(seg.text)
			continue
		}
		out.WriteString(postprocessSpan(seg.text))
	}
	return out.String()
}

func postprocessSpan(text string) string {
	text = reTagSelfClose.ReplaceAllStringFunc(text, func(m string) string {
		sub := reTagSelfClose.FindStringSubmatch(m)
		return annotationOrTag(sub[1], sub[2], true)
	})
	text = reTagClose.ReplaceAllStringFunc(text, func(m string) string {
		sub := reTagClose.FindStringSubmatch(m)
		return "<!-- /f:" + sub[1] + " -->"
	})
	text = reTagOpen.ReplaceAllStringFunc(text, func(m string) string {
		sub := reTagOpen.FindStringSubmatch(m)
		return annotationOrTag(sub[1], sub[2], false)
	})
	return text
}

func annotationOrTag(name, attrs string, selfClosed bool) string {
	if strings.HasPrefix(name, "#") || strings.HasPrefix(name, ".") {
		return "<!-- " + name + " -->"
	}
	body := strings.TrimSpace("f:" + name + " " + strings.TrimSpace(attrs))
	body = strings.TrimSuffix(body, " ")
	if selfClosed {
		return "<!-- " + body + " /-->"
	}
	return "<!-- " + body + " -->"
}
