package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shelfd/shelfd/internal/store"
	"github.com/shelfd/shelfd/storecache"
)

// Server exposes the resource API over HTTP. Routing uses method-qualified
// ServeMux patterns; every handler runs under a per-request deadline.
type Server struct {
	books   *storecache.Books
	users   *storecache.Users
	store   store.Store
	log     *slog.Logger
	timeout time.Duration
}

func NewServer(books *storecache.Books, users *storecache.Users, st store.Store, log *slog.Logger, timeout time.Duration) *Server {
	return &Server{books: books, users: users, store: st, log: log, timeout: timeout}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /books", s.handleCreateBook)
	mux.HandleFunc("GET /books", s.handleListBooks)
	mux.HandleFunc("GET /books/popular", s.handlePopularBooks)
	mux.HandleFunc("GET /books/{id}", s.handleGetBook)
	mux.HandleFunc("PUT /books/{id}", s.handleUpdateBook)
	mux.HandleFunc("DELETE /books/{id}", s.handleDeleteBook)

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /users/{userId}/books/{bookId}", s.handleAssignBook)
	mux.HandleFunc("DELETE /users/{userId}/books/{bookId}", s.handleRemoveBook)
	mux.HandleFunc("GET /users/{userId}/books", s.handleUserBooks)

	return s.middleware(mux)
}

// middleware applies the request deadline and emits one log line per
// request.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
