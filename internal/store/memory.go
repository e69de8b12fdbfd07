package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/premium-reader/internal/types"
)

// Memory keeps articles in process memory. It is the default when no database is configured.
type Memory struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]types.SavedArticle
	now      func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		articles: make(map[uuid.UUID]types.SavedArticle),
		now:      time.Now,
	}
}

func (m *Memory) Save(_ context.Context, article *types.SavedArticle) (*types.SavedArticle, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := cloneArticle(*article)
	saved.SavedAt = m.now().UTC()
	created := true

	for id, existing := range m.articles {
		if existing.URL == saved.URL && existing.UserID == saved.UserID {
			saved.ID = id
			saved.Tags = existing.Tags
			created = false
			break
		}
	}
	if created {
		saved.ID = uuid.New()
	}

	m.articles[saved.ID] = saved
	out := cloneArticle(saved)
	return &out, created, nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*types.SavedArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	article, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneArticle(article)
	return &out, nil
}

func (m *Memory) List(_ context.Context, opts ListOptions) ([]types.SavedArticle, int, error) {
	opts = opts.Normalize()

	m.mu.RLock()
	matching := make([]types.SavedArticle, 0, len(m.articles))
	for _, article := range m.articles {
		if opts.UserID != "" && article.UserID != opts.UserID {
			continue
		}
		matching = append(matching, cloneArticle(article))
	}
	m.mu.RUnlock()

	slices.SortStableFunc(matching, func(a, b types.SavedArticle) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	total := len(matching)
	if opts.Offset >= total {
		return []types.SavedArticle{}, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	return matching[opts.Offset:end], total, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return false, nil
	}
	delete(m.articles, id)
	return true, nil
}

func (m *Memory) Backend() string { return BackendMemory }

func (m *Memory) Close() {}

func cloneArticle(a types.SavedArticle) types.SavedArticle {
	a.Insights = slices.Clone(a.Insights)
	a.Tags = slices.Clone(a.Tags)
	if a.Insights == nil {
		a.Insights = []types.Insight{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}
