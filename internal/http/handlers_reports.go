package http

import (
	"net/http"

	"finboard/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := services.BuildDashboard(r.Context(), s.deps.Store, currentUser(r).ID, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	nw, err := services.NetWorth(r.Context(), s.deps.Store, currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nw)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months, err := queryIntMax(r.URL.Query(), "months", services.DefaultTrendMonths, services.MaxTrendMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trend, err := services.IncomeExpenseTrend(r.Context(), s.deps.Store, currentUser(r).ID, months, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleCategorySpending(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	spending, err := services.CategorySpending(r.Context(), s.deps.Store, currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period.String(), "categories": spending})
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	score, err := services.HealthScoreFor(r.Context(), s.deps.Store, currentUser(r).ID, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"health_score": score})
}

// Chart series carry plain numbers for the charting frontend.
type spendingChart struct {
	Labels          []string  `json:"labels"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

type trendChart struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

func (s *Server) handleSpendingChart(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	spending, err := services.CategorySpending(r.Context(), s.deps.Store, currentUser(r).ID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	chart := spendingChart{Labels: []string{}, Data: []float64{}, BackgroundColor: []string{}}
	for _, cs := range spending {
		chart.Labels = append(chart.Labels, cs.Name)
		chart.Data = append(chart.Data, cs.Total.Float64())
		chart.BackgroundColor = append(chart.BackgroundColor, cs.Color)
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleIncomeExpenseChart(w http.ResponseWriter, r *http.Request) {
	months, err := queryIntMax(r.URL.Query(), "months", services.DefaultTrendMonths, services.MaxTrendMonths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trend, err := services.IncomeExpenseTrend(r.Context(), s.deps.Store, currentUser(r).ID, months, s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	labels := trend.Labels()
	chart := trendChart{Labels: labels, Income: make([]float64, len(labels)), Expense: make([]float64, len(labels))}
	for i, month := range labels {
		chart.Income[i] = trend[month].Income.Float64()
		chart.Expense[i] = trend[month].Expense.Float64()
	}
	writeJSON(w, http.StatusOK, chart)
}
