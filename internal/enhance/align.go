package enhance

import (
	"strings"

	"github.com/jonathan/premium-reader/internal/types"
)

// Align locates the first exact occurrence of insight in paragraph.
// Offsets are byte offsets. An insight that cannot be found, for example because
// the model paraphrased, is kept with both offsets zeroed.
func Align(index int, paragraph, insight string) types.InsightResult {
	if insight == "" {
		return types.NullInsight(index)
	}

	result := types.InsightResult{Index: index, Insight: &insight}
	if start := strings.Index(paragraph, insight); start >= 0 {
		result.StartIndex = start
		result.EndIndex = start + len(insight)
	}
	return result
}
