package content

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// MetaDescription returns the explicit description when set, otherwise the
// post body rendered, stripped of markup, and cut to 157 characters with a
// trailing ellipsis. The 157-character cut counts runes, so non-ASCII text
// is never split mid-codepoint; mid-word cuts are accepted.
func MetaDescription(explicit, body string) string {
	if explicit != "" {
		return explicit
	}
	return truncate(Unmark(body), 157) + "..."
}

// RenderHTML renders a markdown body to HTML. On a render failure the raw
// body is returned as-is.
func RenderHTML(body string) string {
	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(body), &rendered); err != nil {
		return body
	}
	return rendered.String()
}

// Unmark renders markdown and strips the resulting tags, leaving plain text.
func Unmark(body string) string {
	var rendered bytes.Buffer
	if err := markdown.Convert([]byte(body), &rendered); err != nil {
		// Fall back to the raw body; truncation still applies.
		return collapseWhitespace(body)
	}
	return collapseWhitespace(html.UnescapeString(stripTags(rendered.String())))
}

func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
