//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateReadTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{1001, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateReadTime(tt.words), "words=%d", tt.words)
	}
}

func TestArticleMetadata_NullFields(t *testing.T) {
	article := &ExtractedArticle{
		Title:       "Pasted Content",
		Content:     "<p>Body</p>",
		TextContent: "Body",
		Paragraphs:  []string{"Body"},
		WordCount:   1,
	}

	data, err := json.Marshal(article.Metadata())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["author"])
	assert.Contains(t, decoded, "author")
	assert.Contains(t, decoded, "publishedDate")
	assert.NotContains(t, decoded, "textContent")
	assert.NotContains(t, decoded, "language")
}

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	f := &Failure{Code: CodeFetchFailed, Message: "Failed to fetch the URL", Cause: cause}

	assert.Contains(t, f.Error(), "FETCH_FAILED")
	assert.Contains(t, f.Error(), "connection refused")
	assert.ErrorIs(t, f, cause)

	var wrapped error = f
	var target *Failure
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, CodeFetchFailed, target.Code)
}

func TestErrorCode_InputRejection(t *testing.T) {
	assert.True(t, CodeTooShort.InputRejection())
	assert.True(t, CodeIsCode.InputRejection())
	assert.False(t, CodePaywall.InputRejection())
	assert.False(t, CodeParseFailed.InputRejection())
}

func TestInsightResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(NullInsight(4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":4,"insight":null,"startIndex":0,"endIndex":0}`, string(data))

	text := "key claim"
	located := InsightResult{Index: 1, Insight: &text, StartIndex: 3, EndIndex: 12}
	assert.True(t, located.Located())
	assert.False(t, InsightResult{Index: 1, Insight: &text}.Located())
}
