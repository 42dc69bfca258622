// Package policy implements the kernel's auto-approve/forbidden tool policy
// and the anchored glob matcher it is built on. The matcher is ported in
// spirit (not code) from the original Rust prototype's
// permissions.rs::matches_pattern: literal segments separated by '*' must
// appear in order, '?' matches exactly one character, and both ends of the
// pattern are anchored to the subject string.
package policy

import "strings"

// Match reports whether subject matches pattern, where '*' matches any run
// of characters (including none) and '?' matches exactly one character.
// Matching is anchored: the whole subject must match, not a substring.
func Match(pattern, subject string) bool {
	pattern = strings.TrimSpace(pattern)
	subject = strings.TrimSpace(subject)

	if pattern == "*" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return subject == pattern
	}
	if !strings.Contains(pattern, "*") {
		return matchFixedLength(pattern, subject)
	}
	return matchSegments(pattern, subject)
}

// matchFixedLength matches a pattern containing only '?' wildcards: lengths
// must agree and every non-'?' position must match exactly.
func matchFixedLength(pattern, subject string) bool {
	if len(pattern) != len(subject) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '?' && pattern[i] != subject[i] {
			return false
		}
	}
	return true
}

// matchSegments matches a pattern containing at least one '*'. It splits on
// '*' and requires the first segment to anchor the start (if non-empty),
// the last segment to anchor the end (if non-empty), and every middle
// segment to appear, in order, somewhere after the previous match.
func matchSegments(pattern, subject string) bool {
	segments := strings.Split(pattern, "*")

	first := segments[0]
	if first != "" {
		if len(subject) < len(first) || !matchFixedLength(first, subject[:len(first)]) {
			return false
		}
	}

	last := segments[len(segments)-1]
	pos := len(first)
	for i := 1; i < len(segments)-1; i++ {
		seg := segments[i]
		if seg == "" {
			continue // consecutive '*'
		}
		idx := findSegment(subject, seg, pos)
		if idx < 0 {
			return false
		}
		pos = idx + len(seg)
	}

	if last != "" {
		if len(subject) < len(last) {
			return false
		}
		if !matchFixedLength(last, subject[len(subject)-len(last):]) {
			return false
		}
		if pos > len(subject)-len(last) {
			return false
		}
	}

	return true
}

// findSegment locates seg (which may contain '?' wildcards) within
// subject at or after from, returning its start index or -1.
func findSegment(subject, seg string, from int) int {
	for i := from; i+len(seg) <= len(subject); i++ {
		if matchFixedLength(seg, subject[i:i+len(seg)]) {
			return i
		}
	}
	return -1
}
