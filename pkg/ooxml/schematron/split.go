package schematron

import "strings"

// splitTopLevel splits expr on the keyword op ("and" or "or") at
// parenthesis depth zero only, so that "(a) or (b and c)" splits into
// exactly two branches on "or" rather than three, and the "and" inside
// the second branch is left untouched for that branch's own
// classification. Matching is whole-word: "android" never matches the
// keyword "and".
//
// The two (or more) branches are trimmed and, when wrapped in a single
// matching pair of redundant parentheses, unwrapped one layer so the
// classifier sees the inner expression directly.
func splitTopLevel(expr, op string) []string {
	depth := 0
	var parts []string
	last := 0
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch c {
		case '(':
			depth++
			i++
			continue
		case ')':
			depth--
			i++
			continue
		}
		if depth == 0 && isKeywordAt(expr, i, op) {
			parts = append(parts, expr[last:i])
			i += len(op)
			last = i
			continue
		}
		i++
	}
	parts = append(parts, expr[last:])
	if len(parts) == 1 {
		return parts
	}
	for i, p := range parts {
		parts[i] = unwrapParens(strings.TrimSpace(p))
	}
	return parts
}

// isKeywordAt reports whether expr contains the word kw starting at
// index i, bounded by non-identifier characters (or the string edges)
// on both sides, so "and" doesn't match inside "standard".
func isKeywordAt(expr string, i int, kw string) bool {
	if i+len(kw) > len(expr) || !strings.EqualFold(expr[i:i+len(kw)], kw) {
		return false
	}
	if i > 0 && isIdentByte(expr[i-1]) {
		return false
	}
	end := i + len(kw)
	if end < len(expr) && isIdentByte(expr[end]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '-' || b == ':' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// unwrapParens strips exactly one layer of enclosing parentheses when
// they wrap the entire expression (not merely its first sub-term).
func unwrapParens(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// hasTopLevel reports whether op appears at parenthesis depth zero
// anywhere in expr, by splitting on it and counting the parts.
func hasTopLevel(expr, op string) bool {
	return len(splitTopLevel(expr, op)) > 1
}
