package structure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/types"
)

func paragraphs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Paragraph %d of the article.", i)
	}
	return out
}

func TestFallback_Partitions(t *testing.T) {
	for n := 1; n <= 20; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			s := Fallback(n, "Title")

			require.NotEmpty(t, s.Sections)
			assert.LessOrEqual(t, len(s.Sections), 3)
			assert.Equal(t, 0, s.Sections[0].StartParagraphIndex)
			assert.Equal(t, n-1, s.Sections[len(s.Sections)-1].EndParagraphIndex)
			for i := 1; i < len(s.Sections); i++ {
				assert.Equal(t, s.Sections[i-1].EndParagraphIndex+1, s.Sections[i].StartParagraphIndex, "gap or overlap")
			}
			for i, sec := range s.Sections {
				assert.Equal(t, fmt.Sprintf("section-%d", i), sec.ID)
				assert.Equal(t, types.LevelMain, sec.Level)
				assert.LessOrEqual(t, sec.StartParagraphIndex, sec.EndParagraphIndex)
			}
			require.NotNil(t, s.TLDR)
			assert.Equal(t, "Article: Title", *s.TLDR)
		})
	}
}

func TestFallback_Shapes(t *testing.T) {
	s := Fallback(7, "T")
	require.Len(t, s.Sections, 3)
	assert.Equal(t, []string{"Opening", "Main Points", "Conclusion"},
		[]string{s.Sections[0].Title, s.Sections[1].Title, s.Sections[2].Title})
	assert.Equal(t, [2]int{0, 2}, [2]int{s.Sections[0].StartParagraphIndex, s.Sections[0].EndParagraphIndex})
	assert.Equal(t, [2]int{3, 5}, [2]int{s.Sections[1].StartParagraphIndex, s.Sections[1].EndParagraphIndex})
	assert.Equal(t, [2]int{6, 6}, [2]int{s.Sections[2].StartParagraphIndex, s.Sections[2].EndParagraphIndex})
	assert.Equal(t, "3 paragraphs in this section.", s.Sections[0].Summary)
	assert.Equal(t, "1 paragraph in this section.", s.Sections[2].Summary)

	// 4 paragraphs: blocks of 2 cover everything in two sections.
	s = Fallback(4, "T")
	require.Len(t, s.Sections, 2)
	assert.Equal(t, 3, s.Sections[1].EndParagraphIndex)

	s = Fallback(1, "")
	require.Len(t, s.Sections, 1)
	assert.Equal(t, "Article: "+DefaultTitle, *s.TLDR)
}

func TestParse_ClampsAndDefaults(t *testing.T) {
	response := `{
		"sections": [
			{"title": "Setup", "summary": "Why it matters.", "startParagraphIndex": -4, "endParagraphIndex": 1.9},
			{"id": 7, "title": "Details", "startParagraphIndex": 2, "endParagraphIndex": 99, "level": 2},
			{"id": "", "title": "Odd level", "startParagraphIndex": 3, "endParagraphIndex": 4, "level": 5}
		],
		"generatedTitle": "  A Better Title ",
		"tldr": ""
	}`

	s, err := Parse(response, 5)
	require.NoError(t, err)
	require.Len(t, s.Sections, 3)

	assert.Equal(t, "section-0", s.Sections[0].ID)
	assert.Equal(t, 0, s.Sections[0].StartParagraphIndex)
	assert.Equal(t, 1, s.Sections[0].EndParagraphIndex)
	assert.Equal(t, types.LevelMain, s.Sections[0].Level)

	assert.Equal(t, "7", s.Sections[1].ID)
	assert.Equal(t, 4, s.Sections[1].EndParagraphIndex)
	assert.Equal(t, types.LevelSub, s.Sections[1].Level)

	assert.Equal(t, "section-2", s.Sections[2].ID)
	assert.Equal(t, types.LevelMain, s.Sections[2].Level)

	require.NotNil(t, s.GeneratedTitle)
	assert.Equal(t, "A Better Title", *s.GeneratedTitle)
	assert.Nil(t, s.TLDR)
}

func TestParse_MissingIndicesDefault(t *testing.T) {
	s, err := Parse(`{"sections":[{"title":"A","startParagraphIndex":2}]}`, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Sections[0].StartParagraphIndex)
	assert.Equal(t, 2, s.Sections[0].EndParagraphIndex)
}

func TestParse_TolerantFieldTypes(t *testing.T) {
	response := `{
		"sections": [
			"not a section",
			{"id": "intro", "title": 3, "startParagraphIndex": "1", "endParagraphIndex": " 2 ", "level": "2"},
			42,
			{"title": "Rest", "startParagraphIndex": 3, "endParagraphIndex": "many"}
		],
		"generatedTitle": 2024
	}`

	s, err := Parse(response, 5)
	require.NoError(t, err)
	require.Len(t, s.Sections, 2)

	assert.Equal(t, "intro", s.Sections[0].ID)
	assert.Equal(t, "3", s.Sections[0].Title)
	assert.Equal(t, 1, s.Sections[0].StartParagraphIndex)
	assert.Equal(t, 2, s.Sections[0].EndParagraphIndex)
	assert.Equal(t, types.LevelSub, s.Sections[0].Level)

	assert.Equal(t, "section-1", s.Sections[1].ID)
	assert.Equal(t, 3, s.Sections[1].StartParagraphIndex)
	assert.Equal(t, 3, s.Sections[1].EndParagraphIndex)
	assert.Equal(t, types.LevelMain, s.Sections[1].Level)

	require.NotNil(t, s.GeneratedTitle)
	assert.Equal(t, "2024", *s.GeneratedTitle)
}

func TestParse_Rejects(t *testing.T) {
	for name, text := range map[string]string{
		"no json":         "Sorry, I can't do that.",
		"no sections":     `{"tldr": "x"}`,
		"sections string": `{"sections": "none"}`,
		"empty sections":  `{"sections": []}`,
		"only scalars":    `{"sections": [1, "two", null]}`,
		"malformed":       `{"sections": [`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text, 3)
			assert.Error(t, err)
		})
	}
}

func TestParse_ProseWrapped(t *testing.T) {
	s, err := Parse("Here is the outline:\n{\"sections\":[{\"id\":\"a\",\"title\":\"A\",\"summary\":\"s\",\"startParagraphIndex\":0,\"endParagraphIndex\":1,\"level\":1}]}\nEnjoy!", 2)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Sections[0].ID)
}

func TestFormatParagraphs(t *testing.T) {
	long := strings.Repeat("é", PromptParagraphChars+5)
	got := FormatParagraphs([]string{"first", long})

	assert.Equal(t, "[0] first\n\n[1] "+strings.Repeat("é", PromptParagraphChars)+"...", got)
}

func TestGenerate(t *testing.T) {
	var prompt string
	client := &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, p string, _ llm.ModelTier) (string, error) {
			prompt = p
			return `{"sections":[{"id":"s1","title":"Everything","summary":"All of it.","startParagraphIndex":0,"endParagraphIndex":3,"level":1}],"tldr":"Short."}`, nil
		},
	}
	g := New(client, logging.Discard())

	s, err := g.Generate(context.Background(), paragraphs(4), "")
	require.NoError(t, err)
	require.Len(t, s.Sections, 1)
	assert.Equal(t, "Everything", s.Sections[0].Title)
	assert.Contains(t, prompt, `Article Title: "`+DefaultTitle+`"`)
	assert.Contains(t, prompt, "[3] Paragraph 3 of the article.")
}

func TestGenerate_FallbackOnFailures(t *testing.T) {
	tests := map[string]func(context.Context, string, llm.ModelTier) (string, error){
		"model error": func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("unavailable")
		},
		"garbage": func(context.Context, string, llm.ModelTier) (string, error) {
			return "not json at all", nil
		},
		"panic": func(context.Context, string, llm.ModelTier) (string, error) {
			panic("boom")
		},
	}

	for name, generate := range tests {
		t.Run(name, func(t *testing.T) {
			g := New(&llm.MockClient{GenerateContentFunc: generate}, logging.Discard())
			s, err := g.Generate(context.Background(), paragraphs(6), "My Title")
			require.NoError(t, err)
			assert.Equal(t, Fallback(6, "My Title"), s)
		})
	}
}

func TestGenerate_NilClientAndEmptyInput(t *testing.T) {
	g := New(nil, logging.Discard())

	s, err := g.Generate(context.Background(), paragraphs(2), "T")
	require.NoError(t, err)
	assert.Equal(t, Fallback(2, "T"), s)

	_, err = g.Generate(context.Background(), nil, "T")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
