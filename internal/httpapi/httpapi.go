// Package httpapi exposes the library's JSON HTTP API and handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/schema"
)

type Server struct {
	DB       *db.DB
	Logger   *slog.Logger
	BindAddr string
	Port     int
}

func (s *Server) ListenAndServe() error {
	if s.DB == nil {
		return errors.New("db is required")
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	httpServer := &http.Server{
		Addr:              s.BindAddr + ":" + strconv.Itoa(s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.Logger.Info("listening", "addr", httpServer.Addr)
	return httpServer.ListenAndServe()
}

// Handler builds the route table wrapped in recover and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)

	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/create-account", s.handleCreateAccount)
	mux.HandleFunc("POST /auth/all-users", s.handleAllUsers)
	mux.HandleFunc("POST /auth/promote-user", s.handlePromoteUser)
	mux.HandleFunc("POST /auth/delete-user", s.handleDeleteUser)

	mux.HandleFunc("GET /books", s.handleBooks)
	mux.HandleFunc("GET /authors", s.handleAuthors)
	mux.HandleFunc("POST /change-book-details", s.handleChangeBookDetails)
	mux.HandleFunc("POST /change-author-details", s.handleChangeAuthorDetails)
	mux.HandleFunc("POST /delete-book/{bookId}", s.handleDeleteBook)

	mux.HandleFunc("POST /borrow", s.handleBorrow)
	mux.HandleFunc("POST /borrowed-by/{userId}", s.handleBorrowedBy)
	mux.HandleFunc("POST /borrows", s.handleBorrows)
	mux.HandleFunc("POST /lengthen-borrow/{borrowId}", s.handleLengthenBorrow)
	mux.HandleFunc("POST /end-borrow/{borrowId}", s.handleEndBorrow)
	mux.HandleFunc("POST /return-book/{borrowId}", s.handleReturnBook)
	mux.HandleFunc("POST /update-borrow-chapters-read/{borrowId}", s.handleUpdateChaptersRead)

	return s.withRecover(s.withRequestLog(mux))
}

// handleRoot serves the hello banner on "/" and a JSON 404 everywhere else.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello BD project"))
}

// requireLibrarian re-fetches the requester's role; roles can change between
// requests, so the check is never cached.
func (s *Server) requireLibrarian(ctx context.Context, cookie schema.Cookie) (int, string) {
	kind, ok, err := s.DB.GetUserKind(ctx, cookie.ID)
	if err != nil {
		return http.StatusInternalServerError, "server error"
	}
	if !ok {
		return http.StatusUnauthorized, "not authenticated"
	}
	if kind != schema.Librarian {
		return http.StatusForbidden, "librarian role required"
	}
	return http.StatusOK, ""
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, schema.ErrorReply{Error: msg})
}

// writeDBError logs a storage failure and maps transient lock errors to 503.
func (s *Server) writeDBError(w http.ResponseWriter, op string, err error) {
	s.Logger.Error("storage failure", "op", op, "err", err)
	if isRetryableDBErr(err) {
		writeError(w, http.StatusServiceUnavailable, "database busy")
		return
	}
	writeError(w, http.StatusInternalServerError, "server error")
}
