package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMetaDescriptionExplicitWins(t *testing.T) {
	got := MetaDescription("A hand-written summary.", "# Body\n\nLong body text.")
	assert.Equal(t, "A hand-written summary.", got)
}

func TestMetaDescriptionStripsMarkup(t *testing.T) {
	got := MetaDescription("", "# Heading\n\nSome **bold** and [a link](https://example.com).")

	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "](")
	assert.Contains(t, got, "Heading")
	assert.Contains(t, got, "bold")
	assert.Contains(t, got, "a link")
}

func TestMetaDescriptionTruncates(t *testing.T) {
	body := strings.Repeat("word ", 100)
	got := MetaDescription("", body)

	assert.True(t, strings.HasSuffix(got, "..."))
	trimmed := strings.TrimSuffix(got, "...")
	assert.Equal(t, 157, utf8.RuneCountInString(trimmed))
}

func TestMetaDescriptionTruncatesRunesNotBytes(t *testing.T) {
	body := strings.Repeat("é", 300)
	got := MetaDescription("", body)

	trimmed := strings.TrimSuffix(got, "...")
	assert.Equal(t, 157, utf8.RuneCountInString(trimmed))
	assert.True(t, utf8.ValidString(got))
}

func TestMetaDescriptionShortBodyKeepsEllipsis(t *testing.T) {
	got := MetaDescription("", "Short body.")
	assert.Equal(t, "Short body....", got)
}

func TestMetaDescriptionUnescapesEntities(t *testing.T) {
	got := MetaDescription("", "Fish & chips")
	assert.Contains(t, got, "Fish & chips")
	assert.NotContains(t, got, "&amp;")
}

func TestUnmarkCollapsesWhitespace(t *testing.T) {
	got := Unmark("line one\n\nline two\n\n\nline three")
	assert.Equal(t, "line one line two line three", got)
}

func TestRenderHTML(t *testing.T) {
	got := RenderHTML("# Title\n\nbody")
	assert.Contains(t, got, "<h1>")
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "<p>body</p>")
}
