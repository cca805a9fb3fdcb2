package shopping

import (
	"regexp"
	"strings"
)

var (
	punctRe      = regexp.MustCompile(`[.,;:!?()\[\]{}"'` + "`" + `´/\\|]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeIngredient reduces an ingredient line to a comparison key:
// lowercase, punctuation stripped, whitespace collapsed, and single
// words naively singularized so "tomatoes" and "tomato" fold together.
func NormalizeIngredient(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = punctRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, " ") {
		if strings.HasSuffix(s, "es") && len(s) > 4 {
			s = s[:len(s)-2]
		} else if strings.HasSuffix(s, "s") && len(s) > 3 {
			s = s[:len(s)-1]
		}
	}
	return s
}

// CleanDisplayName trims and collapses whitespace without changing case.
func CleanDisplayName(value string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
}
