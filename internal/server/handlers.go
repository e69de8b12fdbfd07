package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonathan/premium-reader/internal/enhance"
	"github.com/jonathan/premium-reader/internal/extract"
	"github.com/jonathan/premium-reader/internal/store"
	"github.com/jonathan/premium-reader/internal/types"
)

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	Content *string `json:"content"`
}

// EnhanceRequest is the body of POST /enhance.
type EnhanceRequest struct {
	Paragraphs []string `json:"paragraphs"`
}

// EnhanceSingleRequest is the body of POST /enhance/single.
type EnhanceSingleRequest struct {
	Paragraph string `json:"paragraph"`
}

// StructureRequest is the body of POST /structure.
type StructureRequest struct {
	Paragraphs []string `json:"paragraphs"`
	Title      string   `json:"title,omitempty"`
}

// FetchResponse is the success body of POST /fetch.
type FetchResponse struct {
	Success      bool                  `json:"success"`
	Article      types.ArticleMetadata `json:"article"`
	URL          string                `json:"url"`
	CanonicalURL *string               `json:"canonicalUrl"`
	InputMethod  types.InputMethod     `json:"inputMethod"`
}

// ParseResponse is the success body of POST /parse.
type ParseResponse struct {
	Success     bool                  `json:"success"`
	Article     types.ArticleMetadata `json:"article"`
	InputMethod types.InputMethod     `json:"inputMethod"`
}

// StructureResponse is the success body of POST /structure.
type StructureResponse struct {
	Success   bool                    `json:"success"`
	Structure *types.ArticleStructure `json:"structure"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	LLMConfigured bool   `json:"llmConfigured"`
	StoreBackend  string `json:"storeBackend"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Mode      string            `json:"mode"`
	Endpoints map[string]string `json:"endpoints"`
}

// handleFetch fetches an article from a URL and extracts its content
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req types.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Validate() != nil {
		s.jsonResponse(w, http.StatusBadRequest, ErrorResponse{
			Error: "URL is required",
			Code:  string(types.CodeInvalidURL),
		})
		return
	}

	result, err := s.fetcher.Ingest(r.Context(), req.URL)
	if err != nil {
		// Fetch failures are 422, malformed URLs included.
		s.jsonResponse(w, http.StatusUnprocessableEntity, FailureResponse(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, FetchResponse{
		Success:      true,
		Article:      result.Article.Metadata(),
		URL:          result.URL,
		CanonicalURL: result.CanonicalURL,
		InputMethod:  types.InputMethodURL,
	})
}

// handleParse parses pasted text or HTML into an article
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		s.failureResponse(w, types.NewFailure(types.CodeMissingContent,
			"Content is required",
			"Paste the article text you want to read."))
		return
	}

	result, err := s.parser.Parse(r.Context(), *req.Content)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ParseResponse{
		Success:     true,
		Article:     result.Article.Metadata(),
		InputMethod: types.InputMethodPaste,
	})
}

// handleEnhance streams one insight event per paragraph, then a done event
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Paragraphs == nil {
		s.errorResponse(w, http.StatusBadRequest, "paragraphs array required")
		return
	}
	if len(req.Paragraphs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, enhance.ErrEmptyInput.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := s.enhancer.Stream(ctx, req.Paragraphs)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w, r.Header.Get("Origin"), s.allowedOrigins)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	for ev := range events {
		if err := sse.WriteData(ev.Payload()); err != nil {
			s.logger.Debug("enhancement stream closed by client", "err", err)
			return
		}
	}
}

// handleEnhanceSingle enhances one paragraph synchronously
func (s *Server) handleEnhanceSingle(w http.ResponseWriter, r *http.Request) {
	var req EnhanceSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Paragraph == "" {
		s.errorResponse(w, http.StatusBadRequest, "paragraph string required")
		return
	}

	result, err := s.enhancer.Paragraph(r.Context(), 0, req.Paragraph)
	if err != nil {
		s.logger.Error("single enhancement failed", "err", err)
		s.errorResponse(w, http.StatusInternalServerError, enhance.BatchFailedMessage)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleStructure generates the navigation outline
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Paragraphs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "paragraphs array required")
		return
	}

	st, err := s.structurer.Generate(r.Context(), req.Paragraphs, req.Title)
	if err != nil {
		s.logger.Error("structure generation failed", "err", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate structure")
		return
	}
	s.jsonResponse(w, http.StatusOK, StructureResponse{Success: true, Structure: st})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     extract.FormatISO(s.now()),
		LLMConfigured: s.llmConfigured,
		StoreBackend:  s.store.Backend(),
	})
}

// handleIndex describes the service
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	mode := "demo"
	if s.store.Backend() != store.BackendMemory {
		mode = "production"
	}
	s.jsonResponse(w, http.StatusOK, IndexResponse{
		Name:    ServiceName,
		Version: ServiceVersion,
		Mode:    mode,
		Endpoints: map[string]string{
			"health":    "/health",
			"fetch":     "POST /fetch - Extract article from URL",
			"parse":     "POST /parse - Parse pasted content",
			"enhance":   "POST /enhance - AI highlight key insights",
			"structure": "POST /structure - Generate article navigation structure",
			"articles":  "/articles",
		},
	})
}
