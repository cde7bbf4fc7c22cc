package httpapi

import (
	"net/http"

	"github.com/RealKC/bd-homework/internal/auth"
	"github.com/RealKC/bd-homework/internal/db"
	"github.com/RealKC/bd-homework/internal/schema"
	"github.com/RealKC/bd-homework/internal/validate"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req schema.Login
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, ok, err := s.DB.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeDBError(w, "login", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no account with given email")
		return
	}
	okPw, err := auth.VerifyPassword(req.Password, u.PassHash)
	if err != nil || !okPw {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.Logger.Info("successful login", "user_id", u.ID)
	writeJSON(w, http.StatusOK, schema.LoginReply{ID: u.ID, Kind: u.Kind})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req schema.CreateAccount
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Signup(req.Name, req.Email, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, auth.DefaultArgon2Params())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	id, err := s.DB.CreateUser(r.Context(), req.Name, req.Email, hash)
	if err == db.ErrEmailTaken {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.writeDBError(w, "create account", err)
		return
	}

	writeJSON(w, http.StatusOK, schema.LoginReply{ID: id, Kind: schema.NormalUser})
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	var req schema.GetAllUsersRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	users, err := s.DB.ListUsersWithBorrowCount(r.Context())
	if err != nil {
		s.writeDBError(w, "list users", err)
		return
	}
	out := make([]schema.User, 0, len(users))
	for _, u := range users {
		out = append(out, schema.User{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			Kind:              u.Kind,
			BorrowedBookCount: u.BorrowedBookCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	var req schema.PromoteUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	if err := validate.ID(req.UserToBePromoted); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.DB.PromoteUser(r.Context(), req.UserToBePromoted); err != nil {
		s.writeDBError(w, "promote user", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req schema.DeleteUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if status, msg := s.requireLibrarian(r.Context(), req.Cookie); status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	if err := validate.ID(req.UserToBeDeleted); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserToBeDeleted == req.Cookie.ID {
		writeJSON(w, http.StatusOK, schema.DeleteUserCannotDeleteSelf)
		return
	}

	res, err := s.DB.DeleteUser(r.Context(), req.UserToBeDeleted)
	if err != nil {
		s.writeDBError(w, "delete user", err)
		return
	}
	switch res {
	case db.UserStillHasBorrows:
		writeJSON(w, http.StatusOK, schema.DeleteUserStillHadBooks)
	default:
		writeJSON(w, http.StatusOK, schema.DeleteUserOk)
	}
}
