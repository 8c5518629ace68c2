package domain

import "time"

// Income is money received in a given month (salary, freelance, refunds).
type Income struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	Source string    `json:"source"`
	Payer  string    `json:"payer,omitempty"`
	UserID string    `json:"userId"`
	Date   time.Time `json:"date"`
}

// IncomeRequest is the body for POST /v1/incomes and PUT /v1/incomes/{incomeId}.
type IncomeRequest struct {
	Amount float64 `json:"amount"`
	Source string  `json:"source"`
	Payer  string  `json:"payer,omitempty"`
	Date   string  `json:"date"` // YYYY-MM-DD
}
