package httpapi

import (
	"net/http"
	"strconv"

	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/schema"
)

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req schema.BorrowRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, ok, err := s.DB.GetUserByID(r.Context(), req.Cookie.ID); err != nil {
		s.writeDBError(w, "borrow", err)
		return
	} else if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	already, err := s.DB.BorrowBook(r.Context(), req.Cookie.ID, req.BookID)
	if err == db.ErrBookNotFound {
		writeError(w, http.StatusNotFound, "book does not exist")
		return
	}
	if err != nil {
		s.writeDBError(w, "borrow", err)
		return
	}
	writeJSON(w, http.StatusOK, schema.BorrowReply{AlreadyBorrowed: already})
}

// handleBorrowedBy lists a user's active borrows. Callers may only query
// themselves unless they are librarians.
func (s *Server) handleBorrowedBy(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req schema.BorrowedByRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Cookie.ID != userID {
		if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
			writeError(w, status, msg)
			return
		}
	}

	borrows, err := s.DB.ListBorrowsByUser(r.Context(), userID)
	if err != nil {
		s.writeDBError(w, "list borrowed by", err)
		return
	}
	out := make([]schema.BorrowedBook, 0, len(borrows))
	for _, b := range borrows {
		out = append(out, schema.BorrowedBook{
			BorrowID:     b.BorrowID,
			BookID:       b.BookID,
			ValidUntil:   b.ValidUntil,
			ChaptersRead: b.ChaptersRead,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBorrows(w http.ResponseWriter, r *http.Request) {
	var req schema.BorrowsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	borrows, err := s.DB.ListAllBorrows(r.Context())
	if err != nil {
		s.writeDBError(w, "list borrows", err)
		return
	}
	out := make([]schema.Borrow, 0, len(borrows))
	for _, b := range borrows {
		out = append(out, schema.Borrow{
			BorrowID:   b.ID,
			BookID:     b.BookID,
			UserID:     b.UserID,
			ValidUntil: b.ValidUntil,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLengthenBorrow(w http.ResponseWriter, r *http.Request) {
	borrowID, err := pathID(r, "borrowId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := strconv.ParseInt(r.URL.Query().Get("days"), 10, 64)
	if err != nil || days <= 0 {
		writeError(w, http.StatusBadRequest, "invalid days")
		return
	}
	var cookie schema.Cookie
	if err := readJSON(r, &cookie); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	err = s.DB.LengthenBorrow(r.Context(), borrowID, days)
	if err == db.ErrBorrowNotFound {
		writeError(w, http.StatusNotFound, "borrow does not exist")
		return
	}
	if err != nil {
		s.writeDBError(w, "lengthen borrow", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleEndBorrow(w http.ResponseWriter, r *http.Request) {
	borrowID, err := pathID(r, "borrowId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var cookie schema.Cookie
	if err := readJSON(r, &cookie); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	err = s.DB.EndBorrow(r.Context(), borrowID)
	if err == db.ErrBorrowNotFound {
		writeError(w, http.StatusNotFound, "borrow does not exist")
		return
	}
	if err != nil {
		s.writeDBError(w, "end borrow", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleReturnBook deletes a borrow. Only the borrowing user or a librarian
// may return it.
func (s *Server) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	borrowID, err := pathID(r, "borrowId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var cookie schema.Cookie
	if err := readJSON(r, &cookie); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	owner, ok, err := s.DB.GetBorrowOwner(r.Context(), borrowID)
	if err != nil {
		s.writeDBError(w, "return book", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "borrow does not exist")
		return
	}
	if owner != cookie.ID {
		if status, msg := s.requireLibrarian(r.Context(), cookie); status != http.StatusOK {
			writeError(w, status, msg)
			return
		}
	}

	if err := s.DB.ReturnBook(r.Context(), borrowID); err != nil {
		s.writeDBError(w, "return book", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleUpdateChaptersRead stores reading progress. Only the borrowing user
// may update it.
func (s *Server) handleUpdateChaptersRead(w http.ResponseWriter, r *http.Request) {
	borrowID, err := pathID(r, "borrowId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	value, err := strconv.ParseInt(r.URL.Query().Get("value"), 10, 64)
	if err != nil || value < 0 {
		writeError(w, http.StatusBadRequest, "invalid value")
		return
	}
	var cookie schema.Cookie
	if err := readJSON(r, &cookie); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	owner, ok, err := s.DB.GetBorrowOwner(r.Context(), borrowID)
	if err != nil {
		s.writeDBError(w, "update chapters read", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "borrow does not exist")
		return
	}
	if owner != cookie.ID {
		writeError(w, http.StatusForbidden, "not your borrow")
		return
	}

	if err := s.DB.SetChaptersRead(r.Context(), borrowID, value); err != nil {
		s.writeDBError(w, "update chapters read", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
