package http

import (
	"net/http"
	"strings"

	"finboard/internal/core"
	"finboard/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		f   storage.TransactionFilter
		err error
	)
	if f.AccountID, err = queryID(q, "account_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.CategoryID, err = queryID(q, "category_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Page, err = queryInt(q, "page", 1); err != nil {
		writeError(w, r, err)
		return
	}
	if f.PerPage, err = queryInt(q, "per_page", storage.DefaultPerPage); err != nil {
		writeError(w, r, err)
		return
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	f.Type = core.TransactionType(strings.ToLower(sanitizeInput(q.Get("type"))))
	if f.Type != "" && !f.Type.IsValid() {
		writeError(w, r, core.ErrInvalidTransactionType)
		return
	}

	page, err := s.deps.Transactions.List(r.Context(), currentUser(r).ID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateTransaction stores a transaction dated today unless the body
// says otherwise. The response lists the budgets that triggered an alert.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	if t.Date.IsZero() {
		t.Date = s.today()
	}
	result, err := s.deps.Transactions.Create(r.Context(), currentUser(r), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.deps.Transactions.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.deps.Transactions.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = id
	updated, err := s.deps.Transactions.Update(r.Context(), userID, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Transactions.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
