package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	c := map[string]string{"PORT": "9090", "EMPTY": ""}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetString(c, "MISSING", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))
}

func TestGetInt(t *testing.T) {
	c := map[string]string{"LIMIT": "25", "BAD": "abc"}

	assert.Equal(t, 25, GetInt(c, "LIMIT", 10))
	assert.Equal(t, 10, GetInt(c, "BAD", 10))
	assert.Equal(t, 10, GetInt(c, "MISSING", 10))
}

func TestGetBool(t *testing.T) {
	c := map[string]string{"ON": "true", "OFF": "0", "BAD": "maybe"}

	assert.True(t, GetBool(c, "ON", false))
	assert.False(t, GetBool(c, "OFF", true))
	assert.True(t, GetBool(c, "BAD", true))
	assert.False(t, GetBool(c, "MISSING", false))
}

func TestGetStrings(t *testing.T) {
	c := map[string]string{
		"HOSTS":  "a.example, b.example ,c.example",
		"BLANKS": " , ,",
	}

	assert.Equal(t, []string{"a.example", "b.example", "c.example"},
		GetStrings(c, "HOSTS", nil))
	assert.Equal(t, []string{"fallback"}, GetStrings(c, "BLANKS", []string{"fallback"}))
	assert.Equal(t, []string{"fallback"}, GetStrings(c, "MISSING", []string{"fallback"}))
}
