package http

import (
	"net/http"
	"strings"

	"finboard/internal/core"
	"finboard/internal/services"
)

type accountsResponse struct {
	Accounts     []core.AccountBalance `json:"accounts"`
	TotalBalance core.Money            `json:"total_balance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("include_inactive") != "true"
	balances, err := services.AccountBalances(r.Context(), s.deps.Store, currentUser(r).ID, activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountsResponse{Accounts: balances, TotalBalance: services.TotalBalance(balances)})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var a core.Account
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateAccount(r.Context(), currentUser(r).ID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ab, err := s.deps.Ledger.AccountWithBalance(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ab)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.deps.Store.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = id
	updated, err := s.deps.Ledger.UpdateAccount(r.Context(), userID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Ledger.CloseAccount(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.CategoryType(strings.ToLower(sanitizeInput(r.URL.Query().Get("type"))))
	if typ != "" && !typ.IsValid() {
		writeError(w, r, core.ErrInvalidCategoryType)
		return
	}
	cats, err := s.deps.Store.ListCategories(r.Context(), currentUser(r).ID, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateCategory(r.Context(), currentUser(r).ID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.deps.Store.GetCategory(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c.IsSystem {
		writeError(w, r, core.ErrImmutableCategory)
		return
	}
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = id
	updated, err := s.deps.Ledger.UpdateCategory(r.Context(), userID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
