package http

import (
	"net/http"

	"finboard/internal/core"
	"finboard/internal/services"
)

type budgetProgressResponse struct {
	Period  string                `json:"period"`
	Budgets []core.BudgetProgress `json:"budgets"`
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := services.EvaluateBudgets(r.Context(), s.deps.Store, currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetProgressResponse{Period: period.String(), Budgets: progress})
}

func (s *Server) handleBudgetOverages(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := services.BudgetOverages(r.Context(), s.deps.Store, currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateBudget(r.Context(), currentUser(r).ID, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Ledger.GetBudget(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Ledger.GetBudget(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = id
	updated, err := s.deps.Ledger.UpdateBudget(r.Context(), userID, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Ledger.DeactivateBudget(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalsProgress(w http.ResponseWriter, r *http.Request) {
	goals, err := services.GoalsProgress(r.Context(), s.deps.Store, currentUser(r).ID, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.SavingsGoal
	if err := decodeJSON(w, r, &g); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateGoal(r.Context(), currentUser(r).ID, g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Ledger.GoalProgress(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.deps.Store.GetGoal(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &g); err != nil {
		writeError(w, r, err)
		return
	}
	g.ID = id
	updated, err := s.deps.Ledger.UpdateGoal(r.Context(), userID, g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Ledger.DeleteGoal(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	days, err := queryIntMax(r.URL.Query(), "days", services.DefaultUpcomingDays, services.MaxUpcomingDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bills, err := services.UpcomingBills(r.Context(), s.deps.Store, currentUser(r).ID, days, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var b core.Bill
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.deps.Ledger.CreateBill(r.Context(), currentUser(r).ID, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.deps.Store.GetBill(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = id
	updated, err := s.deps.Ledger.UpdateBill(r.Context(), userID, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := s.deps.Ledger.PayBill(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
