package enhance

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/premium-reader/internal/llm"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/types"
)

var markerPattern = regexp.MustCompile(`Marker (\d+) says`)

func numberedParagraphs(n int) []string {
	paragraphs := make([]string, n)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("Marker %d says something long enough to be worth sending to the model.", i)
	}
	return paragraphs
}

func markerIndex(t *testing.T, prompt string) int {
	t.Helper()
	m := markerPattern.FindStringSubmatch(prompt)
	require.NotNil(t, m, "prompt does not contain a marker")
	i, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	return i
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, ev)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func TestAlign(t *testing.T) {
	paragraph := "Setup sentence. The key claim is here. More text."

	located := Align(2, paragraph, "The key claim is here.")
	require.NotNil(t, located.Insight)
	assert.Equal(t, 2, located.Index)
	assert.Equal(t, "The key claim is here.", paragraph[located.StartIndex:located.EndIndex])
	assert.True(t, located.Located())

	paraphrased := Align(0, paragraph, "The main claim")
	require.NotNil(t, paraphrased.Insight)
	assert.Equal(t, "The main claim", *paraphrased.Insight)
	assert.Zero(t, paraphrased.StartIndex)
	assert.Zero(t, paraphrased.EndIndex)
	assert.False(t, paraphrased.Located())

	caseMismatch := Align(0, paragraph, "the key claim is here.")
	assert.Zero(t, caseMismatch.EndIndex)

	empty := Align(4, paragraph, "")
	assert.Nil(t, empty.Insight)
	assert.Equal(t, 4, empty.Index)
}

func TestAlign_MultiByte(t *testing.T) {
	paragraph := "Café culture — a brief history. Naïve résumés abound."
	result := Align(0, paragraph, "Naïve résumés abound.")
	assert.Equal(t, "Naïve résumés abound.", paragraph[result.StartIndex:result.EndIndex])
}

func TestParagraph_ShortSkipsModel(t *testing.T) {
	client := &llm.MockClient{}
	e := New(client, logging.Discard())

	result, err := e.Paragraph(context.Background(), 5, "Short.")
	require.NoError(t, err)
	assert.Equal(t, types.InsightResult{Index: 5}, result)
	assert.Zero(t, client.Calls())
}

func TestParagraph_NilClient(t *testing.T) {
	e := New(nil, logging.Discard())
	result, err := e.Paragraph(context.Background(), 0, strings.Repeat("long enough text ", 5))
	require.NoError(t, err)
	assert.Nil(t, result.Insight)
}

func TestParagraph_Responses(t *testing.T) {
	paragraph := "Most teams underestimate migrations. The real cost is the long tail of edge cases nobody planned for."

	tests := []struct {
		name      string
		response  string
		err       error
		panics    bool
		want      *string
		wantStart int
	}{
		{
			name:      "strict JSON",
			response:  `{"insight": "The real cost is the long tail of edge cases nobody planned for."}`,
			want:      strPtr("The real cost is the long tail of edge cases nobody planned for."),
			wantStart: strings.Index(paragraph, "The real cost"),
		},
		{
			name:      "JSON wrapped in prose",
			response:  "Here you go:\n{\"insight\": \"The real cost is the long tail of edge cases nobody planned for.\"}\n",
			want:      strPtr("The real cost is the long tail of edge cases nobody planned for."),
			wantStart: strings.Index(paragraph, "The real cost"),
		},
		{
			name:     "code fenced JSON",
			response: "```json\n{\"insight\": \"Most teams underestimate migrations.\"}\n```",
			want:     strPtr("Most teams underestimate migrations."),
		},
		{name: "null insight", response: `{"insight": null}`},
		{name: "empty insight", response: `{"insight": ""}`},
		{name: "non-string insight", response: `{"insight": 42}`},
		{name: "malformed", response: `{"insight": "unterminated`},
		{name: "no JSON", response: "I think the second sentence matters most."},
		{name: "model error", err: errors.New("503 from upstream")},
		{name: "panic", panics: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &llm.MockClient{
				GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
					if tt.panics {
						panic("boom")
					}
					return tt.response, tt.err
				},
			}
			e := New(client, logging.Discard())

			result, err := e.Paragraph(context.Background(), 1, paragraph)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Index)
			assert.Equal(t, 1, client.Calls())

			if tt.want == nil {
				assert.Nil(t, result.Insight)
				assert.Zero(t, result.StartIndex)
				assert.Zero(t, result.EndIndex)
				return
			}
			require.NotNil(t, result.Insight)
			assert.Equal(t, *tt.want, *result.Insight)
			assert.Equal(t, tt.wantStart, result.StartIndex)
			assert.Equal(t, *tt.want, paragraph[result.StartIndex:result.EndIndex])
		})
	}
}

func strPtr(s string) *string { return &s }

func TestStream_EmptyInput(t *testing.T) {
	e := New(&llm.MockClient{}, logging.Discard())
	_, err := e.Stream(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestStream_OrderedDespiteLatency(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 7, 10} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			client := &llm.MockClient{
				GenerateContentFunc: func(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
					i := markerIndex(t, prompt)
					time.Sleep(time.Duration(rand.Intn(15)) * time.Millisecond)
					return fmt.Sprintf(`{"insight": "Marker %d says"}`, i), nil
				},
			}
			e := New(client, logging.Discard())
			paragraphs := numberedParagraphs(n)

			events, err := e.Stream(context.Background(), paragraphs)
			require.NoError(t, err)
			all := collect(t, events)

			require.Len(t, all, n+1)
			for i, ev := range all[:n] {
				require.Equal(t, EventInsight, ev.Kind)
				assert.Equal(t, i, ev.Insight.Index)
				require.NotNil(t, ev.Insight.Insight)
				assert.Equal(t, *ev.Insight.Insight, paragraphs[i][ev.Insight.StartIndex:ev.Insight.EndIndex])
			}
			assert.Equal(t, EventDone, all[n].Kind)
		})
	}
}

func TestStream_BatchesOfThree(t *testing.T) {
	var (
		mu       sync.Mutex
		log      []string
		inFlight int
		maxIn    int
	)
	client := &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			i := markerIndex(t, prompt)
			mu.Lock()
			inFlight++
			maxIn = max(maxIn, inFlight)
			log = append(log, fmt.Sprintf("start %d", i))
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			log = append(log, fmt.Sprintf("end %d", i))
			mu.Unlock()
			return `{"insight": null}`, nil
		},
	}
	e := New(client, logging.Discard())

	events, err := e.Stream(context.Background(), numberedParagraphs(7))
	require.NoError(t, err)
	all := collect(t, events)

	require.Len(t, all, 8)
	assert.Equal(t, EventDone, all[7].Kind)
	assert.LessOrEqual(t, maxIn, BatchSize)
	assert.Equal(t, 7, client.Calls())

	position := make(map[string]int, len(log))
	for i, entry := range log {
		position[entry] = i
	}
	batches := [][]int{{0, 1, 2}, {3, 4, 5}, {6}}
	for b := 1; b < len(batches); b++ {
		for _, prev := range batches[b-1] {
			for _, next := range batches[b] {
				assert.Less(t, position[fmt.Sprintf("end %d", prev)], position[fmt.Sprintf("start %d", next)],
					"paragraph %d started before %d finished", next, prev)
			}
		}
	}
}

func TestStream_ShortParagraphsInterleaved(t *testing.T) {
	client := &llm.MockClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return `{"insight": null}`, nil
		},
	}
	e := New(client, logging.Discard())
	paragraphs := []string{"Short.", numberedParagraphs(1)[0], "Tiny one."}

	events, err := e.Stream(context.Background(), paragraphs)
	require.NoError(t, err)
	all := collect(t, events)

	require.Len(t, all, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, all[i].Insight.Index)
		assert.Nil(t, all[i].Insight.Insight)
	}
	assert.Equal(t, 1, client.Calls())
}

func TestStream_BatchFailureContinues(t *testing.T) {
	client := &llm.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			return fmt.Sprintf(`{"insight": "Marker %d says"}`, markerIndex(t, prompt)), nil
		},
	}
	e := New(client, logging.Discard())
	e.prompt = func(paragraph string) (string, error) {
		if strings.HasPrefix(paragraph, "Marker 1 ") {
			return "", errors.New("template missing")
		}
		return renderPrompt(paragraph)
	}

	events, err := e.Stream(context.Background(), numberedParagraphs(4))
	require.NoError(t, err)
	all := collect(t, events)

	kinds := make([]EventKind, len(all))
	for i, ev := range all {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []EventKind{EventInsight, EventInsight, EventInsight, EventError, EventInsight, EventDone}, kinds)
	assert.Equal(t, BatchFailedMessage, all[3].Err)
	assert.Nil(t, all[1].Insight.Insight)
	assert.Equal(t, 3, all[4].Insight.Index)
	require.NotNil(t, all[4].Insight.Insight)
}

func TestStream_CancellationStopsWithoutDone(t *testing.T) {
	client := &llm.MockClient{
		GenerateContentFunc: func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
			select {
			case <-time.After(20 * time.Millisecond):
				return `{"insight": null}`, nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}
	e := New(client, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	events, err := e.Stream(ctx, numberedParagraphs(9))
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, EventInsight, first.Kind)
	cancel()

	rest := collect(t, events)
	for _, ev := range rest {
		assert.NotEqual(t, EventDone, ev.Kind)
	}
	assert.Less(t, client.Calls(), 9)
}

func TestEventPayload(t *testing.T) {
	insight := "x"
	assert.Equal(t, types.InsightResult{Index: 1, Insight: &insight}, Event{Kind: EventInsight, Insight: types.InsightResult{Index: 1, Insight: &insight}}.Payload())
	assert.Equal(t, errorPayload{Error: "bad"}, Event{Kind: EventError, Err: "bad"}.Payload())
	assert.Equal(t, donePayload{Done: true}, Event{Kind: EventDone}.Payload())
}

func TestInsights(t *testing.T) {
	events := make(chan Event, 3)
	events <- Event{Kind: EventInsight, Insight: types.InsightResult{Index: 0}}
	events <- Event{Kind: EventError, Err: "x"}
	events <- Event{Kind: EventDone}
	close(events)

	var got []types.InsightResult
	for r := range Insights(context.Background(), events) {
		got = append(got, r)
	}
	assert.Equal(t, []types.InsightResult{{Index: 0}}, got)
}
