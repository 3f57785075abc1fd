package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMetaTagAccepted(t *testing.T) {
	for _, tag := range []string{
		"",
		`<meta name="twitter:card" content="summary">`,
		`<meta property="og:type" content="article">`,
	} {
		assert.NoError(t, validateMetaTag(tag), tag)
	}
}

func TestValidateMetaTagRejected(t *testing.T) {
	for _, tag := range []string{
		`<script>alert(1)</script>`,
		`<meta name="a" content="b"><script>alert(1)</script>`,
		`plain text`,
		`<meta http-equiv="refresh" content="0; url=https://evil.example">`,
		`<meta name="x" content="javascript:alert(1)">`,
		`<img src=x onerror=alert(1)>`,
	} {
		assert.Error(t, validateMetaTag(tag), tag)
	}
}
