package structure

import (
	"fmt"

	"github.com/jonathan/premium-reader/internal/types"
)

var fallbackTitles = [3]string{"Opening", "Main Points", "Conclusion"}

// Fallback splits count paragraphs into up to three contiguous blocks of
// ceil(count/3) paragraphs. It is deterministic and cannot fail.
func Fallback(count int, title string) *types.ArticleStructure {
	if title == "" {
		title = DefaultTitle
	}
	tldr := "Article: " + title
	structure := &types.ArticleStructure{
		Sections: []types.ArticleSection{},
		TLDR:     &tldr,
	}
	if count <= 0 {
		return structure
	}

	size := (count + 2) / 3
	for i := 0; i < len(fallbackTitles) && i*size < count; i++ {
		start := i * size
		end := min((i+1)*size-1, count-1)
		structure.Sections = append(structure.Sections, types.ArticleSection{
			ID:                  fmt.Sprintf("section-%d", i),
			Title:               fallbackTitles[i],
			Summary:             paragraphSummary(end - start + 1),
			StartParagraphIndex: start,
			EndParagraphIndex:   end,
			Level:               types.LevelMain,
		})
	}
	return structure
}

func paragraphSummary(n int) string {
	if n == 1 {
		return "1 paragraph in this section."
	}
	return fmt.Sprintf("%d paragraphs in this section.", n)
}
