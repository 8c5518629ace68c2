package domain

// Category groups expenses by name. Expenses reference categories by name,
// so deleting a category leaves existing expenses pointing at a name that no
// longer exists. That dangling reference is accepted behavior.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Color  string `json:"color,omitempty"`
}

// CategoryRequest is the body for POST /v1/categories and PUT /v1/categories/{categoryId}.
type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}
