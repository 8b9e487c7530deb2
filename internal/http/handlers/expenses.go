package handlers

import "net/http"

// Expense is a line in the finance dashboard. No backing ledger exists yet,
// so Expenses always returns an empty list.
type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	IncurredAt  string  `json:"incurredAt"`
}

// Expenses handles GET /api/finance/expenses.
func Expenses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []Expense{})
}
