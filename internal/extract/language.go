package extract

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Languages considered by detection. Restricting the set keeps the detector small.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

// Sample size handed to the detector.
const languageSampleChars = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithLowAccuracyMode().
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}

// DetectLanguage returns the ISO 639-1 code of text in lower case, or "" when
// detection is not confident.
func DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > languageSampleChars {
		text = string(runes[:languageSampleChars])
	}

	language, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
