package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/premium-reader/internal/store"
	"github.com/jonathan/premium-reader/internal/types"
)

// failingStore fails every operation.
type failingStore struct{ *store.Memory }

var errStoreDown = errors.New("store down")

func (failingStore) Save(context.Context, *types.SavedArticle) (*types.SavedArticle, bool, error) {
	return nil, false, errStoreDown
}

func (failingStore) Get(context.Context, uuid.UUID) (*types.SavedArticle, error) {
	return nil, errStoreDown
}

func (failingStore) List(context.Context, store.ListOptions) ([]types.SavedArticle, int, error) {
	return nil, 0, errStoreDown
}

func (failingStore) Delete(context.Context, uuid.UUID) (bool, error) {
	return false, errStoreDown
}

func saveBody(url string) map[string]any {
	return map[string]any{
		"url":     url,
		"title":   "Saved Title",
		"author":  "Ada",
		"content": "<p>Saved <em>body</em> text.</p>",
		"insights": []map[string]any{
			{"paragraphIndex": 0, "text": "body text", "startIndex": 6, "endIndex": 15},
		},
	}
}

func TestArticles_CRUD(t *testing.T) {
	s := newTestServer(t, testDeps{})
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/articles", saveBody("https://example.com/a"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[SaveArticleResponse](t, w)
	assert.True(t, created.Created)
	assert.False(t, created.Updated)
	require.NotNil(t, created.Article)
	assert.Equal(t, types.LocalUserID, created.Article.UserID)
	id := created.Article.ID

	t.Run("save again updates", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPost, "/articles", saveBody("https://example.com/a"))
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[SaveArticleResponse](t, w)
		assert.True(t, resp.Updated)
		assert.Equal(t, id, resp.Article.ID)
	})

	t.Run("get", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/articles/"+id.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ArticleResponse](t, w)
		assert.Equal(t, "Saved Title", resp.Article.Title)
		require.Len(t, resp.Article.Insights, 1)
	})

	t.Run("markdown", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/articles/"+id.String()+"/markdown", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "# Saved Title")
		assert.Contains(t, w.Body.String(), "*body*")
		assert.Contains(t, w.Body.String(), "- body text")
	})

	t.Run("list", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/articles", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ListArticlesResponse](t, w)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, 50, resp.Limit)
		assert.Equal(t, 0, resp.Offset)
		assert.Len(t, resp.Articles, 1)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, h, http.MethodDelete, "/articles/"+id.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[DeleteArticleResponse](t, w).Deleted)

		w = doJSON(t, h, http.MethodDelete, "/articles/"+id.String(), nil)
		assert.False(t, decode[DeleteArticleResponse](t, w).Deleted)

		w = doJSON(t, h, http.MethodGet, "/articles/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestArticles_List_Paging(t *testing.T) {
	s := newTestServer(t, testDeps{})
	h := s.Handler()

	for i := range 3 {
		w := doJSON(t, h, http.MethodPost, "/articles", saveBody(fmt.Sprintf("https://example.com/%d", i)))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, h, http.MethodGet, "/articles?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ListArticlesResponse](t, w)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 2, resp.Offset)
	assert.Len(t, resp.Articles, 1)

	w = doJSON(t, h, http.MethodGet, "/articles?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticles_SaveValidation(t *testing.T) {
	s := newTestServer(t, testDeps{})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing title", map[string]any{"url": "https://example.com", "content": "x"}, "Missing required fields: url, title, content"},
		{"bad insight", map[string]any{
			"url": "https://example.com", "title": "t", "content": "x",
			"insights": []map[string]any{{"paragraphIndex": -1, "text": "x"}},
		}, "Invalid insights"},
		{"not json", "{", "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.Handler(), http.MethodPost, "/articles", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[ErrorResponse](t, w).Error, tt.want)
		})
	}
}

func TestArticles_NotFound(t *testing.T) {
	s := newTestServer(t, testDeps{})

	for _, path := range []string{"/articles/" + uuid.NewString(), "/articles/not-a-uuid", "/articles/not-a-uuid/markdown"} {
		w := doJSON(t, s.Handler(), http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, articleNotFound, decode[ErrorResponse](t, w).Error)
	}

	w := doJSON(t, s.Handler(), http.MethodDelete, "/articles/not-a-uuid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[DeleteArticleResponse](t, w).Deleted)
}

func TestArticles_StoreErrors(t *testing.T) {
	s := newTestServer(t, testDeps{store: failingStore{store.NewMemory()}})
	h := s.Handler()

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/articles", saveBody("https://example.com/a")},
		{http.MethodGet, "/articles", nil},
		{http.MethodGet, "/articles/" + uuid.NewString(), nil},
		{http.MethodDelete, "/articles/" + uuid.NewString(), nil},
	}
	for _, r := range requests {
		w := doJSON(t, h, r.method, r.path, r.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", r.method, r.path)
	}
}
