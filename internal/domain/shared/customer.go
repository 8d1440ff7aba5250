package shared

import "strings"

// CustomerSnapshot is customer contact data copied onto a document at the time it is created
type CustomerSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// IsIdentified reports whether the snapshot has both a name and a phone number,
// the minimum needed to issue a warranty to the customer.
func (c CustomerSnapshot) IsIdentified() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Phone) != ""
}

// Normalized returns the snapshot with surrounding whitespace removed
func (c CustomerSnapshot) Normalized() CustomerSnapshot {
	return CustomerSnapshot{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
}
