//nolint:revive // types is a standard Go package name pattern
package types

// InsightResult is the enhancement outcome for one paragraph.
// When Insight is set and StartIndex != EndIndex, paragraph[StartIndex:EndIndex] == *Insight.
// Both offsets are 0 when there is no insight or it could not be located.
type InsightResult struct {
	Index      int     `json:"index"`
	Insight    *string `json:"insight"`
	StartIndex int     `json:"startIndex"`
	EndIndex   int     `json:"endIndex"`
}

// NullInsight returns the empty result for a paragraph.
func NullInsight(index int) InsightResult {
	return InsightResult{Index: index}
}

// Located reports whether the insight has position metadata.
func (r InsightResult) Located() bool {
	return r.Insight != nil && r.StartIndex != r.EndIndex
}

// SectionLevel is 1 for main sections and 2 for subsections.
type SectionLevel int

// Section levels
const (
	LevelMain SectionLevel = 1
	LevelSub  SectionLevel = 2
)

// ArticleSection groups consecutive paragraphs under a navigation title.
type ArticleSection struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Summary             string       `json:"summary"`
	StartParagraphIndex int          `json:"startParagraphIndex"`
	EndParagraphIndex   int          `json:"endParagraphIndex"`
	Level               SectionLevel `json:"level"`
}

// ArticleStructure is a navigation outline over an article's paragraphs.
type ArticleStructure struct {
	Sections       []ArticleSection `json:"sections"`
	GeneratedTitle *string          `json:"generatedTitle,omitempty"`
	TLDR           *string          `json:"tldr,omitempty"`
}
