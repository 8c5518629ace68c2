package domain

// ============================================================
// Credit Cards
// ============================================================

// Card is a credit card registered by the user. LogoURL and StoragePath are
// paired: both set when a logo was uploaded, both empty otherwise.
type Card struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LastFourDigits string `json:"lastFourDigits"`
	ClosingDay     int    `json:"closingDay"`
	DueDay         int    `json:"dueDay"`
	UserID         string `json:"userId"`
	LogoURL        string `json:"logoUrl,omitempty"`
	StoragePath    string `json:"storagePath,omitempty"`
}

// CardRequest is the body for POST /v1/cards and PUT /v1/cards/{cardId}.
type CardRequest struct {
	Name           string `json:"name"`
	LastFourDigits string `json:"lastFourDigits"`
	ClosingDay     int    `json:"closingDay"`
	DueDay         int    `json:"dueDay"`
}

// CardLogoResponse is returned by POST /v1/cards/{cardId}/logo.
type CardLogoResponse struct {
	LogoURL     string `json:"logoUrl"`
	StoragePath string `json:"storagePath"`
}
