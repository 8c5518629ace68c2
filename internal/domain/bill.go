package domain

// ============================================================
// Recurring Bills
// ============================================================

// Bill is a recurring monthly obligation (rent, subscriptions, utilities).
// When IsAutomatic is set the monthly generator materializes an expense for
// it; automatic bills must carry a payment method, which the service layer
// enforces before anything is persisted.
type Bill struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	DueDay        int     `json:"dueDay"` // 1-31; days past the month's end roll over on generation (known quirk, see DESIGN.md)
	Category      string  `json:"category"`
	IsActive      bool    `json:"isActive"`
	UserID        string  `json:"userId"`
	IsAutomatic   bool    `json:"isAutomatic,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"` // required when IsAutomatic
	CardID        string  `json:"cardId,omitempty"`
}

// BillRequest is the body for POST /v1/bills and PUT /v1/bills/{billId}.
type BillRequest struct {
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	DueDay        int     `json:"dueDay"`
	Category      string  `json:"category"`
	IsActive      bool    `json:"isActive"`
	IsAutomatic   bool    `json:"isAutomatic,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	CardID        string  `json:"cardId,omitempty"`
}

// GenerationMarker records, per user, the last month for which automatic
// expenses were generated. Absence of the marker means "never generated".
// It is written in the same atomic commit as the generated expenses, so a
// failed commit leaves it untouched and the next attempt retries everything.
type GenerationMarker struct {
	UserID                  string `json:"userId"`
	LastBillsGeneratedMonth string `json:"lastBillsGeneratedMonth"` // YYYY-MM
}
