package parser

import "strings"

// sentinelMatch reports whether trimmed content is exactly a %SKIP%/%ABORT%
// sentinel, optionally followed by a free-text reason (spec §3 "sentinel
// values").
type sentinelMatch struct {
	isSkip  bool
	isAbort bool
	reason  string
}

func matchSentinel(content string) (sentinelMatch, bool) {
	trimmed := strings.TrimSpace(content)
	for _, s := range []struct {
		token   string
		isSkip  bool
		isAbort bool
	}{
		{"%SKIP%", true, false},
		{"%ABORT%", false, true},
	} {
		if trimmed == s.token {
			return sentinelMatch{isSkip: s.isSkip, isAbort: s.isAbort}, true
		}
		if strings.HasPrefix(trimmed, s.token) {
			rest := strings.TrimSpace(trimmed[len(s.token):])
			return sentinelMatch{isSkip: s.isSkip, isAbort: s.isAbort, reason: rest}, true
		}
	}
	return sentinelMatch{}, false
}

func trimOneTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1]
	}
	return s
}
