package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"registro/internal/metrics"
	"registro/internal/session"
)

// Server exposes the ledger JSON API. It embeds http.Server and owns the
// rate limiter lifecycle.
type Server struct {
	http.Server
	sessions     *session.Manager
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Options tunes the server beyond its dependencies.
type Options struct {
	RateLimitPerMinute int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, sessions *session.Manager, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions:    sessions,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("GET /api/categories", s.withCommon("categories", s.handleCategories))

	mux.HandleFunc("GET /api/bins/{bin}/entries", s.withCommon("entries_list", s.handleListEntries))
	mux.HandleFunc("POST /api/bins/{bin}/entries", s.withCommon("entries_create", s.handleCreateEntry))
	mux.HandleFunc("PUT /api/bins/{bin}/entries/{id}", s.withCommon("entries_update", s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/bins/{bin}/entries/{id}", s.withCommon("entries_delete", s.handleDeleteEntry))

	mux.HandleFunc("POST /api/bins/{bin}/clear", s.withCommon("clear", s.handleClear))
	mux.HandleFunc("POST /api/bins/{bin}/load", s.withCommon("load", s.handleLoad))
	mux.HandleFunc("POST /api/bins/{bin}/save", s.withCommon("save", s.handleSave))

	mux.HandleFunc("GET /api/bins/{bin}/export/{format}", s.withCommon("export", s.handleExport))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommon adds security headers, rate limiting on mutating methods,
// request IDs, request logging, and latency metrics.
func (s *Server) withCommon(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).
			Observe(duration.Seconds())
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
