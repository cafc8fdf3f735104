package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testGap struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func TestExtractJSONArray_Plain(t *testing.T) {
	var out []testGap
	ok := ExtractJSONArray(`[{"type":"semantic","description":"a gap"}]`, &out)

	assert.True(t, ok)
	assert.Len(t, out, 1)
	assert.Equal(t, "semantic", out[0].Type)
}

func TestExtractJSONArray_CodeFence(t *testing.T) {
	content := "Here are the gaps:\n```json\n[{\"type\":\"temporal\",\"description\":\"declining\"}]\n```\nDone."

	var out []testGap
	ok := ExtractJSONArray(content, &out)

	assert.True(t, ok)
	assert.Len(t, out, 1)
	assert.Equal(t, "temporal", out[0].Type)
}

func TestExtractJSONArray_SurroundingProse(t *testing.T) {
	content := `I found two gaps. [{"type":"semantic","description":"first"},{"type":"semantic","description":"second"}] Hope this helps!`

	var out []testGap
	ok := ExtractJSONArray(content, &out)

	assert.True(t, ok)
	assert.Len(t, out, 2)
}

func TestExtractJSONArray_NestedArraysAndStrings(t *testing.T) {
	content := `[{"type":"semantic","description":"uses [brackets] and \"quotes\"","evidence":["a","b"]}]`

	var out []map[string]any
	ok := ExtractJSONArray(content, &out)

	assert.True(t, ok)
	assert.Len(t, out, 1)
	assert.Equal(t, `uses [brackets] and "quotes"`, out[0]["description"])
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	var out []testGap

	assert.False(t, ExtractJSONArray("no structured output here", &out))
	assert.False(t, ExtractJSONArray("unterminated [ {\"type\":", &out))
	assert.False(t, ExtractJSONArray("", &out))
}
