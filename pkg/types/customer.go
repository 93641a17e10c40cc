package types

import "strings"

// CustomerInfo is the contact snapshot captured at checkout. It doubles as the
// recognition record so returning shoppers skip the form; it is never treated
// as an authenticated identity.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"tax_id,omitempty"`
}

// Complete reports whether the fields required to place an order are present.
func (c CustomerInfo) Complete() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Phone) != ""
}
