// Package sanitize turns user supplied post text into markup. Escape keeps
// every character of the value; Content keeps a small set of inline elements
// and drops everything else with bluemonday.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy

	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)
)

// Escape returns raw as escaped HTML text with line breaks as <br>. The value
// reads back unchanged once the markup is parsed.
func Escape(raw string) string {
	return lineBreaks.ReplaceAllString(html.EscapeString(raw), "<br>")
}

// Content returns raw as safe inline HTML. Line breaks become <br>. Allowed
// elements: b, strong, i, em, u, code, br and a[href] (rel="nofollow").
func Content(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	withBreaks := lineBreaks.ReplaceAllString(trimmed, "<br>")
	return strings.TrimSpace(contentSanitizer().Sanitize(withBreaks))
}

// Text strips every element from raw and returns unescaped plain text, for
// output that is not markup (terminals, page titles before autoescaping).
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(trimmed)))
}

func contentSanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "code", "br")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		contentPolicy = policy
	})
	return contentPolicy
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
