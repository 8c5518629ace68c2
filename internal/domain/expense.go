package domain

import "time"

// Payment methods accepted by Synapse. "debit_pix" covers both debit card
// and instant Pix payments, mirroring how users actually record them.
const (
	PaymentDebitPix = "debit_pix"
	PaymentCredit   = "credit"
)

// ============================================================
// Expenses
// ============================================================

// Expense is a single spending record. Installment fragments are plain
// expenses that additionally carry the installment group fields; the group
// is self-describing via InstallmentID, no external index required.
type Expense struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	Category      string    `json:"category"` // category name, not id (dangling after category delete is accepted)
	Location      string    `json:"location,omitempty"`
	PaymentMethod string    `json:"paymentMethod"` // debit_pix | credit
	CardID        string    `json:"cardId,omitempty"`
	UserID        string    `json:"userId"`
	Date          time.Time `json:"date"` // effective date of this record
	Notes         string    `json:"notes,omitempty"`

	// Installment group fields: all-or-nothing. If IsInstallment is set,
	// InstallmentNumber, TotalInstallments, TotalAmount, InstallmentID and
	// PurchaseDate must all be present.
	IsInstallment     bool       `json:"isInstallment,omitempty"`
	InstallmentNumber int        `json:"installmentNumber,omitempty"` // 1-based
	TotalInstallments int        `json:"totalInstallments,omitempty"`
	TotalAmount       float64    `json:"totalAmount,omitempty"` // pre-split purchase amount
	InstallmentID     string     `json:"installmentId,omitempty"`
	PurchaseDate      *time.Time `json:"purchaseDate,omitempty"` // original transaction date
}

// ExpenseRequest is the body for POST /v1/expenses and PUT /v1/expenses/{expenseId}.
type ExpenseRequest struct {
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Location      string  `json:"location,omitempty"`
	PaymentMethod string  `json:"paymentMethod"`
	CardID        string  `json:"cardId,omitempty"`
	Date          string  `json:"date"` // YYYY-MM-DD
	Notes         string  `json:"notes,omitempty"`
}

// InstallmentRequest is the body for POST /v1/expenses/installments.
type InstallmentRequest struct {
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	Location          string  `json:"location,omitempty"`
	PaymentMethod     string  `json:"paymentMethod"`
	CardID            string  `json:"cardId,omitempty"`
	TotalAmount       float64 `json:"totalAmount"`
	TotalInstallments int     `json:"totalInstallments"`
	PurchaseDate      string  `json:"purchaseDate"` // YYYY-MM-DD
	Notes             string  `json:"notes,omitempty"`
}

// GenerateResponse is returned by POST /v1/expenses/generate.
type GenerateResponse struct {
	Generated int    `json:"generated"`
	Month     string `json:"month"` // YYYY-MM
}
