package api

import (
	"net/http"

	"github.com/shelfd/shelfd/internal/domain"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := decodeBody(r, &user); err != nil {
		writeError(w, s.log, err)
		return
	}
	created, err := s.users.Create(r.Context(), &user)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var patch domain.UserPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, s.log, err)
		return
	}
	updated, err := s.users.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": updated.ID})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignBook(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.users.Assign(r.Context(), userID, bookID); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book assigned to user"})
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.users.Remove(r.Context(), userID, bookID); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserBooks(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	books, err := s.users.Books(r.Context(), userID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}
