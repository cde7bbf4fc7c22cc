package httpapi

import (
	"net/http"

	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/schema"
	"github.com/RealKC/bd-homework/internal/validate"
)

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.DB.ListBooks(r.Context())
	if err != nil {
		s.writeDBError(w, "list books", err)
		return
	}
	out := make([]schema.Book, 0, len(books))
	for _, b := range books {
		out = append(out, schema.Book{
			BookID: b.ID,
			Title:  b.Title,
			Author: schema.Author{
				AuthorID:    b.Author.ID,
				Name:        b.Author.Name,
				DateOfBirth: b.Author.DateOfBirth,
				DateOfDeath: b.Author.DateOfDeath,
				Description: b.Author.Description,
			},
			PublishDate:   b.PublishDate,
			Publisher:     b.Publisher,
			Count:         b.Count,
			Synopsis:      b.Synopsis,
			CanBeBorrowed: b.CanBeBorrowed,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAuthors returns the id+name projection used to fill the author
// dropdown; the other Author fields are intentionally zero.
func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.DB.ListAuthorNames(r.Context())
	if err != nil {
		s.writeDBError(w, "list authors", err)
		return
	}
	out := make([]schema.Author, 0, len(authors))
	for _, a := range authors {
		out = append(out, schema.Author{AuthorID: a.ID, Name: a.Name, Description: ""})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChangeBookDetails(w http.ResponseWriter, r *http.Request) {
	var req schema.ChangeBookDetailsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	if err := validate.ID(req.AuthorID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid author id")
		return
	}
	if req.Count < 0 {
		writeError(w, http.StatusBadRequest, "count cannot be negative")
		return
	}

	var err error
	if req.BookID == nil {
		_, err = s.DB.InsertBook(r.Context(), req.Title, req.AuthorID, req.PublishDate, req.Publisher, req.Count, req.Synopsis)
	} else {
		err = s.DB.UpdateBook(r.Context(), *req.BookID, req.Title, req.AuthorID, req.PublishDate, req.Publisher, req.Count, req.Synopsis)
	}
	if err == db.ErrAuthorNotFound {
		writeError(w, http.StatusBadRequest, "author does not exist")
		return
	}
	if err != nil {
		s.writeDBError(w, "change book details", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleChangeAuthorDetails is create-only: requests carrying an author id
// are rejected.
func (s *Server) handleChangeAuthorDetails(w http.ResponseWriter, r *http.Request) {
	var req schema.ChangeAuthorDetailsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	if req.AuthorID != nil {
		writeError(w, http.StatusBadRequest, "author details are create-only")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "author name is required")
		return
	}

	if _, err := s.DB.CreateAuthor(r.Context(), req.Name, req.DateOfBirth, req.DateOfDeath, req.Description); err != nil {
		s.writeDBError(w, "create author", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
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

	res, err := s.DB.DeleteBook(r.Context(), bookID)
	if err != nil {
		s.writeDBError(w, "delete book", err)
		return
	}
	if res == db.BookStillBorrowed {
		writeError(w, http.StatusForbidden, "book is still borrowed")
		return
	}
	w.WriteHeader(http.StatusOK)
}
