package model

import "strings"

// NotAvailable is stored in place of identity fields Telegram did not provide.
const NotAvailable = "N/A"

// Identity is the minimal shape of a chat user as delivered by the transport.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// DisplayName returns the first name, falling back to the handle.
func (i Identity) DisplayName() string {
	if strings.TrimSpace(i.FirstName) != "" {
		return i.FirstName
	}
	if strings.TrimSpace(i.Username) != "" {
		return i.Username
	}
	return NotAvailable
}
