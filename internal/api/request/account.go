package request

// CreateAccountRequest carries the fields for a new account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}
