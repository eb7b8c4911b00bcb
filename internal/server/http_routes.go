package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"

	"interviewcoach/internal/errors"
	"interviewcoach/internal/observability"

	"github.com/google/uuid"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

type requestIDKey struct{}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) http.Handler {
	mux := http.NewServeMux()

	rateLimitHandler := s.createRateLimitMiddleware(om)
	requestLimitHandler := s.requestSizeLimitMiddleware()

	mux.HandleFunc("GET /{$}", s.pageHandler(pageIndex))
	mux.HandleFunc("GET /interview", s.pageHandler(pageInterview))
	mux.HandleFunc("GET /results", s.pageHandler(pageResults))

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("GET /test_api", rateLimitHandler(s.createTestAPIHandler(om)))
	mux.HandleFunc("POST /generate_questions",
		rateLimitHandler(requestLimitHandler(s.createGenerateHandler(om))),
	)
	mux.HandleFunc("POST /evaluate",
		rateLimitHandler(requestLimitHandler(s.createEvaluateHandler(om))),
	)

	mux.HandleFunc("/", s.notFoundHandler)

	return s.requestIDMiddleware(s.recoveryMiddleware(mux))
}

// requestIDMiddleware tags every request and response with an X-Request-ID
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// recoveryMiddleware turns handler panics into a JSON 500
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := errors.NewInternalError("HANDLER_PANIC", "Handler panicked", nil).
				WithContext("panic", rec)
			s.Logger.LogError(err, "Recovered from handler panic",
				"endpoint", r.URL.Path,
				"request_id", requestIDFrom(r.Context()),
				"stack", string(debug.Stack()))
			writeErrorResponse(w, "Internal server error", "", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}
