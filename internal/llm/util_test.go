package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"insight": "the key claim"}`,
			expected: `{"insight": "the key claim"}`,
		},
		{
			name:     "json code block",
			input:    "```json\n{\"insight\": null}\n```",
			expected: `{"insight": null}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"sections\": []}\n```",
			expected: `{"sections": []}`,
		},
		{
			name:     "generic code block with language tag",
			input:    "```javascript\n{\"sections\": []}\n```",
			expected: `{"sections": []}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	span, ok := ExtractJSONObject("Sure! Here you go: {\"a\": {\"b\": 1}} hope that helps")
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, span)

	_, ok = ExtractJSONObject("no braces here")
	assert.False(t, ok)
}

func TestDecodeLenient(t *testing.T) {
	type payload struct {
		Insight *string `json:"insight"`
	}

	t.Run("strict", func(t *testing.T) {
		var p payload
		require.NoError(t, DecodeLenient(`{"insight": "core point"}`, &p))
		require.NotNil(t, p.Insight)
		assert.Equal(t, "core point", *p.Insight)
	})

	t.Run("wrapped in prose", func(t *testing.T) {
		var p payload
		require.NoError(t, DecodeLenient("Here is the JSON:\n{\"insight\": \"core point\"}\nDone.", &p))
		require.NotNil(t, p.Insight)
		assert.Equal(t, "core point", *p.Insight)
	})

	t.Run("null insight", func(t *testing.T) {
		var p payload
		require.NoError(t, DecodeLenient(`{"insight": null}`, &p))
		assert.Nil(t, p.Insight)
	})

	t.Run("no object", func(t *testing.T) {
		var p payload
		err := DecodeLenient("I cannot help with that.", &p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoJSONObject))
	})

	t.Run("malformed object", func(t *testing.T) {
		var p payload
		err := DecodeLenient("prefix {\"insight\": } suffix", &p)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoJSONObject))
	})
}

func TestJSONText(t *testing.T) {
	doc, err := JSONText("  {\"sections\": []}  ")
	require.NoError(t, err)
	assert.Equal(t, `{"sections": []}`, doc)

	doc, err = JSONText("Result:\n{\"sections\": [1]}\nThanks")
	require.NoError(t, err)
	assert.Equal(t, `{"sections": [1]}`, doc)

	_, err = JSONText("nothing")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = JSONText("{broken")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = JSONText("a {not: json} b")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSONObject)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(PastedArticleSchema(), "Some pasted text")

	assert.Contains(t, prompt, "Some pasted text")
	assert.Contains(t, prompt, `"title": "string" (required)`)
	assert.Contains(t, prompt, `"paragraphs": ["string"] (required)`)
	assert.Contains(t, prompt, `"author": "string" | null`)
	assert.Contains(t, prompt, "Keep all original text")
}
