// Package server provides the HTTP API for the premium reader.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jonathan/premium-reader/internal/enhance"
	"github.com/jonathan/premium-reader/internal/logging"
	"github.com/jonathan/premium-reader/internal/server/middleware"
	"github.com/jonathan/premium-reader/internal/server/ratelimit"
	"github.com/jonathan/premium-reader/internal/store"
	"github.com/jonathan/premium-reader/internal/structure"
	"github.com/jonathan/premium-reader/internal/types"
)

// Service identity reported by the index route.
const (
	ServiceName    = "Premium Reader API"
	ServiceVersion = "1.0.0"
)

// DefaultOrigin is echoed on streams when the caller sends no Origin header.
const DefaultOrigin = "http://localhost:3000"

// Fetcher retrieves and extracts an article from a URL.
type Fetcher interface {
	Ingest(ctx context.Context, rawURL string) (*types.FetchResult, error)
}

// Parser turns pasted content into an article.
type Parser interface {
	Parse(ctx context.Context, content string) (*types.ParseResult, error)
}

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      *ratelimit.Config // nil uses the limiter defaults
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Fetcher       Fetcher
	Parser        Parser
	Enhancer      *enhance.Enhancer
	Structurer    *structure.Generator
	Store         store.Store
	LLMConfigured bool
	Logger        *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	fetcher        Fetcher
	parser         Parser
	enhancer       *enhance.Enhancer
	structurer     *structure.Generator
	store          store.Store
	llmConfigured  bool
	rateLimiter    *ratelimit.Limiter
	allowedOrigins []string
	logger         *slog.Logger
	now            func() time.Time
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		fetcher:        deps.Fetcher,
		parser:         deps.Parser,
		enhancer:       deps.Enhancer,
		structurer:     deps.Structurer,
		store:          deps.Store,
		llmConfigured:  deps.LLMConfigured,
		rateLimiter:    ratelimit.NewLimiter(cfg.RateLimit),
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logging.OrDefault(deps.Logger),
		now:            time.Now,
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /fetch", s.handleFetch)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("POST /enhance", s.handleEnhance)
	mux.HandleFunc("POST /enhance/single", s.handleEnhanceSingle)
	mux.HandleFunc("POST /structure", s.handleStructure)

	mux.HandleFunc("POST /articles", s.handleSaveArticle)
	mux.HandleFunc("GET /articles", s.handleListArticles)
	mux.HandleFunc("GET /articles/{id}", s.handleGetArticle)
	mux.HandleFunc("GET /articles/{id}/markdown", s.handleArticleMarkdown)
	mux.HandleFunc("DELETE /articles/{id}", s.handleDeleteArticle)

	var handler http.Handler = mux
	handler = s.withRateLimit(handler)
	handler = withAPIPrefix(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute, // enhancement streams stay open for the whole article
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is done or the process receives SIGINT/SIGTERM, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "store", s.store.Backend(), "llm", s.llmConfigured)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	s.rateLimiter.Stop()
	s.store.Close()
}

// withAPIPrefix serves every route under /api as well, for clients built
// against the prefixed paths.
func withAPIPrefix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rest, ok := strings.CutPrefix(r.URL.Path, "/api/"); ok {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + rest
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the IP from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	s.logger.Warn("rate limit exceeded",
		"client", extractClientID(r),
		"path", r.URL.Path,
		"limit", info.Limit,
		"retry_after", retryAfter)

	s.jsonResponse(w, http.StatusTooManyRequests, ErrorResponse{
		Success: false,
		Error:   "Rate limit exceeded. Please try again later.",
		Code:    CodeRateLimited,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "err", err)
	}
}

// errorResponse writes an error envelope without a code.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Success: false, Error: message})
}
