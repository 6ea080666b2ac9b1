package api

import (
	"net/http"
	"strconv"

	"github.com/shelfd/shelfd/internal/domain"
)

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := decodeBody(r, &book); err != nil {
		writeError(w, s.log, err)
		return
	}
	created, err := s.books.Create(r.Context(), &book)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParseBookFilter(r.URL.Query())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	books, err := s.books.List(r.Context(), filter)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handlePopularBooks(w http.ResponseWriter, r *http.Request) {
	limit := -1 // absent selects the default
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, s.log, domain.Validationf("invalid limit %q: must be a non-negative integer", raw))
			return
		}
		limit = n
	}
	books, err := s.books.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	book, err := s.books.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var patch domain.BookPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, s.log, err)
		return
	}
	updated, err := s.books.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": updated.ID})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.books.Delete(r.Context(), id); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
