package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/premium-reader/internal/rendering"
	"github.com/jonathan/premium-reader/internal/store"
	"github.com/jonathan/premium-reader/internal/types"
)

const articleNotFound = "Article not found"

// SaveArticleResponse is the body of POST /articles.
type SaveArticleResponse struct {
	Article *types.SavedArticle `json:"article"`
	Created bool                `json:"created,omitempty"`
	Updated bool                `json:"updated,omitempty"`
}

// ListArticlesResponse is the body of GET /articles.
type ListArticlesResponse struct {
	Articles []types.SavedArticle `json:"articles"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// ArticleResponse is the body of GET /articles/{id}.
type ArticleResponse struct {
	Article *types.SavedArticle `json:"article"`
}

// DeleteArticleResponse is the body of DELETE /articles/{id}.
type DeleteArticleResponse struct {
	Deleted bool `json:"deleted"`
}

// handleSaveArticle saves an article, updating an earlier save of the same URL
func (s *Server) handleSaveArticle(w http.ResponseWriter, r *http.Request) {
	var req types.SaveArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	saved, created, err := s.store.Save(r.Context(), req.ToArticle())
	if err != nil {
		s.logger.Error("saving article failed", "url", req.URL, "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save article")
		return
	}
	s.jsonResponse(w, http.StatusOK, SaveArticleResponse{Article: saved, Created: created, Updated: !created})
}

// handleListArticles lists saved articles, newest first
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOptions{UserID: r.URL.Query().Get("userId")}

	var err error
	if opts.Limit, err = queryInt(r, "limit", store.DefaultLimit); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if opts.Offset, err = queryInt(r, "offset", 0); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	opts = opts.Normalize()

	articles, total, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.logger.Error("listing articles failed", "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list articles")
		return
	}
	s.jsonResponse(w, http.StatusOK, ListArticlesResponse{
		Articles: articles,
		Total:    total,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
}

// handleGetArticle returns one saved article
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := s.lookupArticle(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, ArticleResponse{Article: article})
}

// handleArticleMarkdown exports one saved article as Markdown
func (s *Server) handleArticleMarkdown(w http.ResponseWriter, r *http.Request) {
	article, ok := s.lookupArticle(w, r)
	if !ok {
		return
	}

	md, err := rendering.Markdown(article)
	if err != nil {
		s.logger.Error("rendering markdown failed", "id", article.ID, "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to render article")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

// handleDeleteArticle deletes a saved article
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonResponse(w, http.StatusOK, DeleteArticleResponse{Deleted: false})
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("deleting article failed", "id", id, "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete article")
		return
	}
	s.jsonResponse(w, http.StatusOK, DeleteArticleResponse{Deleted: deleted})
}

// lookupArticle resolves the {id} path value, writing the error response itself.
func (s *Server) lookupArticle(w http.ResponseWriter, r *http.Request) (*types.SavedArticle, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, articleNotFound)
		return nil, false
	}

	article, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, articleNotFound)
		return nil, false
	}
	if err != nil {
		s.logger.Error("loading article failed", "id", id, "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load article")
		return nil, false
	}
	return article, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// validationMessage reports missing required fields the way callers expect,
// and falls back to the validator's message otherwise.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" && !strings.Contains(fe.Namespace(), "Insights") {
				return "Missing required fields: url, title, content"
			}
		}
		return "Invalid insights: " + verrs[0].Namespace()
	}
	return err.Error()
}
