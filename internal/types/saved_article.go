//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// LocalUserID owns articles saved without an authenticated user.
const LocalUserID = "local-user"

// Insight is a persisted highlight within a paragraph.
type Insight struct {
	ParagraphIndex int    `json:"paragraphIndex" validate:"min=0"`
	Text           string `json:"text" validate:"required"`
	StartIndex     int    `json:"startIndex" validate:"min=0"`
	EndIndex       int    `json:"endIndex" validate:"min=0"`
}

// SavedArticle is an article handed to the store collaborator.
type SavedArticle struct {
	ID              uuid.UUID `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	SiteName        string    `json:"siteName,omitempty"`
	PublishedAt     string    `json:"publishedAt,omitempty"`
	Content         string    `json:"content"`
	EnhancedContent string    `json:"enhancedContent,omitempty"`
	Insights        []Insight `json:"insights"`
	SavedAt         time.Time `json:"savedAt"`
	Tags            []string  `json:"tags"`
	UserID          string    `json:"userId"`
}

// SaveArticleRequest is the body of POST /articles.
type SaveArticleRequest struct {
	URL             string    `json:"url" validate:"required"`
	Title           string    `json:"title" validate:"required"`
	Author          string    `json:"author,omitempty"`
	SiteName        string    `json:"siteName,omitempty"`
	PublishedAt     string    `json:"publishedAt,omitempty"`
	Content         string    `json:"content" validate:"required"`
	EnhancedContent string    `json:"enhancedContent,omitempty"`
	Insights        []Insight `json:"insights,omitempty" validate:"dive"`
	UserID          string    `json:"userId,omitempty"`
}

// Validate validates the SaveArticleRequest using the validator.
func (r *SaveArticleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToArticle converts the request into an unsaved article.
func (r *SaveArticleRequest) ToArticle() *SavedArticle {
	userID := r.UserID
	if userID == "" {
		userID = LocalUserID
	}
	insights := r.Insights
	if insights == nil {
		insights = []Insight{}
	}
	return &SavedArticle{
		URL:             r.URL,
		Title:           r.Title,
		Author:          r.Author,
		SiteName:        r.SiteName,
		PublishedAt:     r.PublishedAt,
		Content:         r.Content,
		EnhancedContent: r.EnhancedContent,
		Insights:        insights,
		Tags:            []string{},
		UserID:          userID,
	}
}

// FetchRequest is the body of POST /fetch.
type FetchRequest struct {
	URL string `json:"url" validate:"required"`
}

// Validate validates the FetchRequest using the validator.
func (r *FetchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
