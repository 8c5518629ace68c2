package domain

// ============================================================
// Dashboard summary
// ============================================================

// MonthlySummary is returned by GET /v1/summary?month=YYYY-MM and drives the
// dashboard cards and charts.
type MonthlySummary struct {
	Month         string          `json:"month"` // YYYY-MM
	TotalExpenses float64         `json:"totalExpenses"`
	TotalIncomes  float64         `json:"totalIncomes"`
	Balance       float64         `json:"balance"`
	ByCategory    []CategoryTotal `json:"byCategory"`
	ByCard        []CardTotal     `json:"byCard"`
	ExpenseCount  int             `json:"expenseCount"`
	PendingBills  int             `json:"pendingBills"` // active bills with no expense this month
}

// CategoryTotal is the spend aggregated per category name.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CardTotal is the credit spend aggregated per card.
type CardTotal struct {
	CardID   string  `json:"cardId"`
	CardName string  `json:"cardName"`
	Total    float64 `json:"total"`
}
