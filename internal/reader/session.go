// Package reader holds the state of one reading session: paragraphs with their
// current insights and the article outline, merged from asynchronous results.
package reader

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/premium-reader/internal/segment"
	"github.com/jonathan/premium-reader/internal/types"
)

// MinSentenceChars is the length a first sentence must exceed to serve as a provisional insight.
const MinSentenceChars = 20

var firstSentencePattern = regexp.MustCompile(`^[^.!?]+[.!?]`)

// ParagraphState is the display state of one paragraph.
type ParagraphState struct {
	Index       int     `json:"index"`
	HTML        string  `json:"html"`
	InsightText *string `json:"insightText"`
	// StartIndex and EndIndex locate InsightText in the paragraph text; both
	// are zero for provisional or unlocated insights.
	StartIndex  int  `json:"startIndex"`
	EndIndex    int  `json:"endIndex"`
	IsEnhanced  bool `json:"isEnhanced"`
	IsEnhancing bool `json:"isEnhancing"`
}

// Session is the canonical in-memory copy of an article being read.
type Session struct {
	mu               sync.RWMutex
	paragraphs       []ParagraphState
	structure        *types.ArticleStructure
	loadingStructure bool
	activeSection    string
}

// NewSession creates a session for paragraphs. Every paragraph starts enhanced
// with a provisional insight so nothing waits on the model to render.
func NewSession(paragraphs []string) *Session {
	states := make([]ParagraphState, len(paragraphs))
	for i, html := range paragraphs {
		states[i] = ParagraphState{
			Index:       i,
			HTML:        html,
			InsightText: ProvisionalInsight(html),
			IsEnhanced:  true,
		}
	}
	return &Session{paragraphs: states, loadingStructure: true}
}

// NewTextSession creates a session for plain-text paragraphs, escaping them
// so characters like < are never read as markup.
func NewTextSession(paragraphs []string) *Session {
	escaped := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		escaped[i] = segment.EscapeHTML(p)
	}
	return NewSession(escaped)
}

// ProvisionalInsight returns the joined text of any strong/b elements in html,
// else its first sentence when longer than MinSentenceChars characters, else nil.
func ProvisionalInsight(html string) *string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var bold []string
	doc.Find("strong, b").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			bold = append(bold, text)
		}
	})
	if len(bold) > 0 {
		joined := strings.Join(bold, " ")
		return &joined
	}

	plain := strings.TrimSpace(doc.Text())
	sentence := strings.TrimSpace(firstSentencePattern.FindString(plain))
	if utf8.RuneCountInString(sentence) > MinSentenceChars {
		return &sentence
	}
	return nil
}

// ApplyInsight overwrites the insight for result.Index. Repeated results for the
// same index simply overwrite; indices outside the session are ignored.
func (s *Session) ApplyInsight(result types.InsightResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Index < 0 || result.Index >= len(s.paragraphs) {
		return
	}

	p := &s.paragraphs[result.Index]
	p.InsightText = nil
	p.StartIndex, p.EndIndex = 0, 0
	if result.Insight != nil && *result.Insight != "" {
		text := *result.Insight
		p.InsightText = &text
		p.StartIndex, p.EndIndex = result.StartIndex, result.EndIndex
	}
	p.IsEnhanced = true
	p.IsEnhancing = false
}

// SetStructure replaces the outline. Sections are stored ordered by start index.
func (s *Session) SetStructure(structure *types.ArticleStructure) {
	if structure == nil {
		return
	}

	replacement := *structure
	replacement.Sections = append([]types.ArticleSection(nil), structure.Sections...)
	sort.SliceStable(replacement.Sections, func(i, j int) bool {
		return replacement.Sections[i].StartParagraphIndex < replacement.Sections[j].StartParagraphIndex
	})

	s.mu.Lock()
	s.structure = &replacement
	s.loadingStructure = false
	s.mu.Unlock()
}

// Structure returns the current outline, or nil before one arrives.
func (s *Session) Structure() *types.ArticleStructure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.structure
}

// IsLoadingStructure reports whether no outline has arrived yet.
func (s *Session) IsLoadingStructure() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingStructure
}

// Paragraphs returns a copy of the paragraph states.
func (s *Session) Paragraphs() []ParagraphState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ParagraphState(nil), s.paragraphs...)
}

// Paragraph returns the state at index.
func (s *Session) Paragraph(index int) (ParagraphState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.paragraphs) {
		return ParagraphState{}, false
	}
	return s.paragraphs[index], true
}

// Progress returns the enhanced share of paragraphs as a percentage, 0 when empty.
func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.paragraphs) == 0 {
		return 0
	}
	return float64(s.enhancedCount()) / float64(len(s.paragraphs)) * 100
}

// IsEnhancing reports whether any paragraph is still waiting for its insight.
func (s *Session) IsEnhancing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enhancedCount() < len(s.paragraphs)
}

func (s *Session) enhancedCount() int {
	n := 0
	for _, p := range s.paragraphs {
		if p.IsEnhanced {
			n++
		}
	}
	return n
}

// SectionFor returns the section covering a paragraph. When sections overlap,
// the one starting latest wins, so subsections take precedence.
func (s *Session) SectionFor(index int) (types.ArticleSection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found types.ArticleSection
		ok    bool
	)
	if s.structure == nil {
		return found, false
	}
	for _, section := range s.structure.Sections {
		if section.StartParagraphIndex <= index && index <= section.EndParagraphIndex {
			found, ok = section, true
		}
	}
	return found, ok
}

// SetActiveSection records the section the reader navigated to.
func (s *Session) SetActiveSection(id string) {
	s.mu.Lock()
	s.activeSection = id
	s.mu.Unlock()
}

// ActiveSection returns the last section navigated to, or "".
func (s *Session) ActiveSection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSection
}

// Consume merges insight results and structures until both channels are
// closed or ctx is done. Either channel may be nil.
func (s *Session) Consume(ctx context.Context, insights <-chan types.InsightResult, structures <-chan *types.ArticleStructure) error {
	for insights != nil || structures != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-insights:
			if !ok {
				insights = nil
				continue
			}
			s.ApplyInsight(result)
		case structure, ok := <-structures:
			if !ok {
				structures = nil
				continue
			}
			s.SetStructure(structure)
		}
	}
	return nil
}
