package compiler

import (
	"regexp"
	"strings"
)

// markerPattern matches a {{ expression }} marker.
var markerPattern = regexp.MustCompile(`(?s)\{\{(.+?)\}\}`)

// HasInterpolation reports whether text contains at least one marker.
func HasInterpolation(text string) bool {
	return markerPattern.MatchString(text)
}

// Expressions returns the trimmed expression of every marker in text, in
// order of appearance.
func Expressions(text string) []string {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	exprs := make([]string, 0, len(matches))
	for _, m := range matches {
		exprs = append(exprs, strings.TrimSpace(m[1]))
	}
	return exprs
}

// Interpolate replaces every marker in text with resolve(expression).
// The first resolve error aborts the substitution.
func Interpolate(text string, resolve func(expr string) (string, error)) (string, error) {
	var firstErr error
	out := markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		if firstErr != nil {
			return ""
		}
		expr := strings.TrimSpace(marker[2 : len(marker)-2])
		s, err := resolve(expr)
		if err != nil {
			firstErr = err
			return ""
		}
		return s
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
